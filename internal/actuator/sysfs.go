package actuator

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// sysfsExportTimeout bounds the wait for udev to create the channel directory.
	sysfsExportTimeout = time.Second
	// sysfsExportPoll is the interval between channel directory checks.
	sysfsExportPoll = 10 * time.Millisecond
	// sysfsFileMode is used when writing attribute files.
	sysfsFileMode = 0o644
)

var (
	errInvalidFrequency = errors.New("frequency must be positive")
	errExportTimeout    = errors.New("pwm channel did not appear after export")
)

// Sysfs drives one channel of a Linux PWM chip through /sys/class/pwm.
// The 8-bit duty is scaled onto the channel period.
type Sysfs struct {
	// dir is the channel directory, e.g. /sys/class/pwm/pwmchip0/pwm0.
	dir string
	// periodNs is the configured PWM period.
	periodNs uint64
}

// OpenSysfs exports channel on chip if needed, sets the period for
// frequencyHz and leaves the output disabled.
func OpenSysfs(chip string, channel, frequencyHz int) (*Sysfs, error) {
	if frequencyHz <= 0 {
		return nil, hardwareError("open sysfs pwm", errInvalidFrequency)
	}

	s := &Sysfs{
		dir:      filepath.Join(chip, "pwm"+strconv.Itoa(channel)),
		periodNs: uint64(time.Second) / uint64(frequencyHz),
	}

	if err := s.export(chip, channel); err != nil {
		return nil, hardwareError("export sysfs pwm", err)
	}

	// duty_cycle must never exceed period, so it is zeroed first.
	if err := s.write("duty_cycle", 0); err != nil {
		return nil, hardwareError("reset duty", err)
	}

	if err := s.write("period", s.periodNs); err != nil {
		return nil, hardwareError("set period", err)
	}

	if err := s.write("enable", 0); err != nil {
		return nil, hardwareError("disable", err)
	}

	return s, nil
}

// SetDuty writes the scaled duty cycle in nanoseconds.
func (s *Sysfs) SetDuty(duty uint8) error {
	if err := s.write("duty_cycle", s.dutyNs(duty)); err != nil {
		return hardwareError("set duty", err)
	}

	return nil
}

// Enable turns the channel on.
func (s *Sysfs) Enable() error {
	if err := s.write("enable", 1); err != nil {
		return hardwareError("enable", err)
	}

	return nil
}

// Disable turns the channel off.
func (s *Sysfs) Disable() error {
	if err := s.write("enable", 0); err != nil {
		return hardwareError("disable", err)
	}

	return nil
}

// Close leaves the channel disabled. The channel stays exported.
func (s *Sysfs) Close() error {
	return s.Disable()
}

func (s *Sysfs) dutyNs(duty uint8) uint64 {
	return s.periodNs * uint64(duty) / math.MaxUint8
}

func (s *Sysfs) export(chip string, channel int) error {
	if _, err := os.Stat(s.dir); err == nil {
		return nil
	}

	exportPath := filepath.Join(chip, "export")
	if err := os.WriteFile(exportPath, []byte(strconv.Itoa(channel)), sysfsFileMode); err != nil {
		return fmt.Errorf("write %s: %w", exportPath, err)
	}

	deadline := time.Now().Add(sysfsExportTimeout)
	for {
		if _, err := os.Stat(s.dir); err == nil {
			return nil
		}

		if time.Now().After(deadline) {
			return fmt.Errorf("%s: %w", s.dir, errExportTimeout)
		}

		time.Sleep(sysfsExportPoll)
	}
}

func (s *Sysfs) write(attr string, v uint64) error {
	path := filepath.Join(s.dir, attr)
	if err := os.WriteFile(path, []byte(strconv.FormatUint(v, 10)), sysfsFileMode); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
