package actuator

import (
	"context"
	"fmt"
	"io"

	"github.com/oshokin/button-presser/internal/config"
	domain "github.com/oshokin/button-presser/internal/domain/actuator"
)

// Driver is the PWM output the sequencer drives.
// Every method returns an error wrapping domain.ErrHardware on failure.
type Driver interface {
	// SetDuty sets the duty cycle applied while enabled, 0..255.
	SetDuty(duty uint8) error
	// Enable starts driving the output.
	Enable() error
	// Disable stops driving the output.
	Disable() error
}

// Device is a Driver that holds an underlying resource.
type Device interface {
	Driver
	io.Closer
}

// New opens the backend selected by cfg.
func New(ctx context.Context, cfg config.Driver) (Device, error) {
	switch cfg.Kind {
	case config.DriverSimulated, "":
		return NewSimulated(ctx), nil
	case config.DriverSysfs:
		return OpenSysfs(cfg.SysfsChip, cfg.SysfsChannel, cfg.FrequencyHz)
	case config.DriverSerial:
		return OpenSerial(ctx, cfg.SerialPort, cfg.BaudRate)
	default:
		return nil, fmt.Errorf("unsupported driver %q", cfg.Kind)
	}
}

// hardwareError tags err with the failed operation and domain.ErrHardware.
func hardwareError(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrHardware, err)
}
