package firmware

import (
	"errors"
	"io"

	"github.com/oshokin/button-presser/internal/actuator/wire"
)

// FrequencyHz is the PWM frequency of the output.
const FrequencyHz = 50

// PeriodNs is the PWM period matching FrequencyHz.
const PeriodNs = 1_000_000_000 / FrequencyHz

// maxLineLength bounds a request line; the longest valid one is "D255@65535".
const maxLineLength = 16

// PWM is the part of a TinyGo PWM peripheral the firmware uses.
// It matches the methods of tinygo.org/x/drivers/servo.PWM.
type PWM interface {
	Top() uint32
	Set(channel uint8, value uint32)
}

// Controller holds the output state.
type Controller struct {
	pwm     PWM
	channel uint8
	duty    uint8
	enabled bool
}

var errLineTooLong = errors.New("line too long")

// New returns a controller with the output forced off.
func New(pwm PWM, channel uint8) *Controller {
	c := &Controller{pwm: pwm, channel: channel}
	c.apply()

	return c
}

// Enabled reports whether the output is driven.
func (c *Controller) Enabled() bool { return c.enabled }

// Duty returns the configured 8-bit duty.
func (c *Controller) Duty() uint8 { return c.duty }

// Handle executes one request line and returns the reply line.
func (c *Controller) Handle(line []byte) []byte {
	cmd, err := wire.Parse(line)
	if err != nil {
		return wire.FormatError(cmd.Seq, err.Error())
	}

	switch cmd.Op {
	case wire.OpDuty:
		c.duty = cmd.Duty
	case wire.OpEnable:
		c.enabled = true
	case wire.OpDisable:
		c.enabled = false
	case wire.OpPing:
	}

	c.apply()

	return wire.FormatOK(cmd.Seq)
}

// Serve reads request lines from r and writes replies to w until r reports io.EOF.
// Other read errors, such as an empty UART buffer, are retried.
func (c *Controller) Serve(r io.ByteReader, w io.Writer) error {
	line := make([]byte, 0, maxLineLength)
	overflow := false

	for {
		b, err := r.ReadByte()
		if errors.Is(err, io.EOF) {
			return nil
		}

		if err != nil {
			continue
		}

		if b != wire.Terminator {
			if len(line) == maxLineLength {
				overflow = true

				continue
			}

			line = append(line, b)

			continue
		}

		// An overflowed line is never executed, even if its prefix parses.
		var reply []byte
		if overflow {
			reply = wire.FormatError(0, errLineTooLong.Error())
		} else {
			reply = c.Handle(line)
		}

		if _, err = w.Write(reply); err != nil {
			return err
		}

		line = line[:0]
		overflow = false
	}
}

// apply writes the current state to the peripheral. Duty 255 is fully on.
func (c *Controller) apply() {
	if !c.enabled {
		c.pwm.Set(c.channel, 0)

		return
	}

	c.pwm.Set(c.channel, uint32(uint64(c.pwm.Top())*uint64(c.duty)/255))
}
