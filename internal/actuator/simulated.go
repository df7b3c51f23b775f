package actuator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/oshokin/button-presser/internal/logger"
)

// Call is one recorded driver invocation.
type Call struct {
	// Op is "set_duty", "enable" or "disable".
	Op string
	// Duty is the argument of set_duty.
	Duty uint8
	// At is when the call was made.
	At time.Time
}

// Simulated is a Driver without hardware. It logs every call and keeps a log
// readable from other goroutines for diagnostics and tests.
type Simulated struct {
	// ctx carries the logger.
	ctx context.Context //nolint:containedctx // Only used for logging.
	// mu guards calls, the observer side of the recorder.
	mu sync.Mutex
	// calls is the history of invocations.
	calls []Call
	// enabled tracks the simulated output.
	enabled bool
	// closed is set by Close.
	closed bool
}

var errSimulatedClosed = errors.New("simulated driver closed")

// NewSimulated creates a simulated driver logging through ctx.
func NewSimulated(ctx context.Context) *Simulated {
	return &Simulated{
		ctx: logger.WithName(ctx, "simulated-pwm"),
	}
}

// SetDuty records the duty cycle.
func (s *Simulated) SetDuty(duty uint8) error {
	if err := s.record(Call{Op: "set_duty", Duty: duty}); err != nil {
		return hardwareError("set duty", err)
	}

	logger.DebugKV(s.ctx, "Duty cycle set", "duty_cycle", duty)

	return nil
}

// Enable records enabling the output.
func (s *Simulated) Enable() error {
	if err := s.record(Call{Op: "enable"}); err != nil {
		return hardwareError("enable", err)
	}

	logger.Debug(s.ctx, "Output enabled")

	return nil
}

// Disable records disabling the output.
func (s *Simulated) Disable() error {
	if err := s.record(Call{Op: "disable"}); err != nil {
		return hardwareError("disable", err)
	}

	logger.Debug(s.ctx, "Output disabled")

	return nil
}

// Enabled reports whether the simulated output is currently driven.
func (s *Simulated) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.enabled
}

// Calls returns a copy of the recorded calls.
func (s *Simulated) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Call(nil), s.calls...)
}

// Close marks the driver closed; further calls fail.
func (s *Simulated) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.enabled = false

	return nil
}

func (s *Simulated) record(c Call) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return errSimulatedClosed
	}

	c.At = time.Now()
	s.calls = append(s.calls, c)

	switch c.Op {
	case "enable":
		s.enabled = true
	case "disable":
		s.enabled = false
	}

	return nil
}
