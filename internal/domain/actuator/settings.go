package actuator

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Key names a persisted setting.
type Key string

const (
	// KeyPressDuration holds the press duration in milliseconds.
	KeyPressDuration Key = "press_duration"
	// KeyDutyCycle holds the PWM duty cycle, 0..255.
	KeyDutyCycle Key = "duty_cycle"
)

// Keys lists every persisted setting in display order.
func Keys() []Key {
	return []Key{KeyPressDuration, KeyDutyCycle}
}

// Valid reports whether k is a known setting key.
func (k Key) Valid() bool {
	return k == KeyPressDuration || k == KeyDutyCycle
}

// String implements fmt.Stringer.
func (k Key) String() string {
	return string(k)
}

// Snapshot is the pair of settings an actuation cycle runs with.
type Snapshot struct {
	// PressDurationMs is how long the actuator stays energized.
	PressDurationMs uint8
	// DutyCycle is the PWM duty applied while energized.
	DutyCycle uint8
}

// PressDuration returns the hold time as a time.Duration.
func (s Snapshot) PressDuration() time.Duration {
	return time.Duration(s.PressDurationMs) * time.Millisecond
}

// ParseValue converts command source input into a setting value.
// Surrounding whitespace is ignored; anything that is not a base-10 integer in 0..255 is rejected.
func ParseValue(raw string) (uint8, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("empty value: %w", ErrValidation)
	}

	v, err := strconv.ParseUint(raw, 10, 8)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", raw, ErrValidation)
	}

	return uint8(v), nil
}

// CheckValue validates a wider integer coming from a typed transport.
func CheckValue(v uint64) (uint8, error) {
	if v > math.MaxUint8 {
		return 0, fmt.Errorf("value %d exceeds %d: %w", v, math.MaxUint8, ErrValidation)
	}

	return uint8(v), nil
}
