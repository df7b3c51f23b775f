package sequencer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/oshokin/button-presser/internal/actuator"
	domain "github.com/oshokin/button-presser/internal/domain/actuator"
	"github.com/oshokin/button-presser/internal/logger"
)

// Receiver is the consumer side of the command queue.
type Receiver interface {
	Receive(ctx context.Context) (domain.Trigger, error)
}

// SnapshotReader reads both settings at once.
type SnapshotReader interface {
	Snapshot(ctx context.Context) (domain.Snapshot, error)
}

// Stats summarises the cycles run so far.
type Stats struct {
	// State is the current sequencer state.
	State domain.State
	// Completed counts cycles that reached disable without error.
	Completed uint64
	// Aborted counts cycles abandoned because of missing settings or errors.
	Aborted uint64
}

// Sequencer drives the actuator for each trigger, one at a time.
type Sequencer struct {
	// queue yields triggers in arrival order.
	queue Receiver
	// store provides the per-cycle settings snapshot.
	store SnapshotReader
	// driver is owned exclusively by the Run goroutine.
	driver actuator.Driver

	// state, completed and aborted are written by Run and read by Stats.
	state     atomic.Int32
	completed atomic.Uint64
	aborted   atomic.Uint64
	cycle     atomic.Uint64
}

// errDriverPanic wraps a recovered driver panic.
var errDriverPanic = errors.New("driver panic")

// New creates a sequencer. The driver must not be used by anyone else afterwards.
func New(queue Receiver, store SnapshotReader, driver actuator.Driver) *Sequencer {
	return &Sequencer{
		queue:  queue,
		store:  store,
		driver: driver,
	}
}

// Reset forces the output off. Call it once before Run so a press interrupted
// by a crash or power loss does not stay energized.
func (s *Sequencer) Reset(ctx context.Context) error {
	if err := s.driver.Disable(); err != nil {
		return fmt.Errorf("force actuator off: %w", err)
	}

	s.state.Store(int32(domain.StateIdle))
	logger.Debug(ctx, "Actuator forced off")

	return nil
}

// Run consumes triggers until the queue is closed or ctx is canceled.
// Errors inside a cycle are logged and never stop the loop.
func (s *Sequencer) Run(ctx context.Context) error {
	ctx = logger.WithName(ctx, "sequencer")

	logger.Info(ctx, "Sequencer started")

	for {
		trigger, err := s.queue.Receive(ctx)

		switch {
		case err == nil:
			s.runCycle(ctx, trigger)
		case errors.Is(err, domain.ErrChannelClosed):
			logger.Info(ctx, "Command queue closed, sequencer stopped")

			return nil
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			logger.Info(ctx, "Sequencer stopped")

			return nil
		default:
			return fmt.Errorf("receive trigger: %w", err)
		}
	}
}

// Stats returns a consistent-enough view for status reporting.
func (s *Sequencer) Stats() Stats {
	return Stats{
		State:     domain.State(s.state.Load()),
		Completed: s.completed.Load(),
		Aborted:   s.aborted.Load(),
	}
}

// runCycle performs one actuation and records its outcome.
func (s *Sequencer) runCycle(ctx context.Context, trigger domain.Trigger) {
	n := s.cycle.Add(1)
	ctx = logger.WithFields(ctx, "cycle", n, "source", trigger.Source)

	started := time.Now()

	err := s.actuate(ctx)

	s.state.Store(int32(domain.StateIdle))

	if err != nil {
		s.aborted.Add(1)

		if errors.Is(err, domain.ErrHardware) || errors.Is(err, errDriverPanic) {
			logger.ErrorKV(ctx, "Actuation aborted", "error", err)
		} else {
			logger.WarnKV(ctx, "Actuation skipped", "error", err)
		}

		return
	}

	s.completed.Add(1)
	logger.InfoKV(ctx, "Actuation finished",
		"elapsed", time.Since(started).String(),
		"queued_for", started.Sub(trigger.EnqueuedAt).String(),
	)
}

// actuate runs Idle -> Energized -> Idle. A driver panic is converted to an error.
func (s *Sequencer) actuate(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errDriverPanic, r)
		}
	}()

	snapshot, err := s.store.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("read settings: %w", err)
	}

	if err = s.driver.SetDuty(snapshot.DutyCycle); err != nil {
		return err
	}

	if err = s.driver.Enable(); err != nil {
		return err
	}

	s.state.Store(int32(domain.StateEnergized))
	logger.DebugKV(ctx, "Actuator energized",
		"duty_cycle", snapshot.DutyCycle,
		"press_duration_ms", snapshot.PressDurationMs,
	)

	// time.Sleep measures on the monotonic clock and is not interruptible.
	time.Sleep(snapshot.PressDuration())

	return s.driver.Disable()
}
