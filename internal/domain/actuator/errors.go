package actuator

import "errors"

var (
	// ErrStorage is returned when the durable settings backend is unreadable or unwritable.
	ErrStorage = errors.New("storage error")
	// ErrChannelClosed is returned when the command queue no longer accepts or yields triggers.
	ErrChannelClosed = errors.New("command channel closed")
	// ErrHardware is returned when the PWM peripheral rejects an operation.
	ErrHardware = errors.New("hardware error")
	// ErrValidation is returned for malformed or out-of-range input from a command source.
	ErrValidation = errors.New("validation error")
)
