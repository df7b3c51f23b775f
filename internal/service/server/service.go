package server

import (
	"context"
	"fmt"

	domain "github.com/oshokin/button-presser/internal/domain/actuator"
	"github.com/oshokin/button-presser/internal/logger"
	repo "github.com/oshokin/button-presser/internal/repository/settings"
	"github.com/oshokin/button-presser/internal/service/sequencer"
)

// sender is the producer side of the command queue.
type sender interface {
	Send(source string) error
	Len() int
}

// statsSource reports sequencer progress.
type statsSource interface {
	Stats() sequencer.Stats
}

// service holds the operations command sources may perform.
// It is unexported to keep the transports decoupled from the implementation.
type service struct {
	// repo handles persistent storage of the settings.
	repo repo.Repository
	// queue carries triggers to the sequencer.
	queue sender
	// stats reports sequencer progress; nil before the sequencer exists.
	stats statsSource
}

// newService creates a service over the settings repository and the queue.
func newService(repository repo.Repository, queue sender, stats statsSource) *service {
	return &service{
		repo:  repository,
		queue: queue,
		stats: stats,
	}
}

// Press enqueues one actuation. It never waits for the actuation itself.
func (s *service) Press(ctx context.Context, source string) error {
	if err := s.queue.Send(source); err != nil {
		return fmt.Errorf("enqueue press: %w", err)
	}

	logger.DebugKV(ctx, "Press queued", "source", source, "pending", s.queue.Len())

	return nil
}

// GetSetting returns a stored value and whether it was ever set.
func (s *service) GetSetting(ctx context.Context, key domain.Key) (uint8, bool, error) {
	value, ok, err := s.repo.Get(ctx, key)
	if err != nil {
		return 0, false, fmt.Errorf("get %s: %w", key, err)
	}

	return value, ok, nil
}

// SetSetting stores a value. It takes effect on the next dequeued press.
func (s *service) SetSetting(ctx context.Context, key domain.Key, value uint8) error {
	if err := s.repo.Set(ctx, key, value); err != nil {
		logger.Errorf(ctx, "Failed to persist %s: %v", key, err)

		return fmt.Errorf("set %s: %w", key, err)
	}

	logger.InfoKV(ctx, "Setting stored", "key", key, "value", value)

	return nil
}

// Status reports the sequencer state, its counters and the queue depth.
func (s *service) Status(context.Context) domain.Status {
	st := domain.Status{
		Pending: s.queue.Len(),
	}

	if s.stats != nil {
		stats := s.stats.Stats()
		st.State = stats.State
		st.Completed = stats.Completed
		st.Aborted = stats.Aborted
	}

	return st
}
