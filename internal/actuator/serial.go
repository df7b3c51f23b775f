package actuator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
	"go.uber.org/multierr"

	"github.com/oshokin/button-presser/internal/actuator/wire"
	"github.com/oshokin/button-presser/internal/logger"
)

const (
	// serialReplyTimeout bounds the wait for one reply line.
	serialReplyTimeout = 500 * time.Millisecond
	// serialPollTimeout is the port read timeout; replies are assembled across polls.
	serialPollTimeout = 50 * time.Millisecond
	// maxReplyLength caps a reply line so a noisy line cannot grow without bound.
	maxReplyLength = 256
)

var (
	errReplyTimeout = errors.New("no reply from firmware")
	errReplyTooLong = errors.New("reply line too long")
)

// Serial drives the button firmware over a serial line using the wire protocol.
type Serial struct {
	// ctx carries the logger.
	ctx context.Context //nolint:containedctx // Only used for logging.
	// port is the open serial connection.
	port io.ReadWriteCloser
	// timeout bounds each request/reply exchange.
	timeout time.Duration
	// seq is the tag of the last request; replies with any other tag are stale.
	seq uint16
}

// OpenSerial opens portName at baudRate and pings the firmware.
func OpenSerial(ctx context.Context, portName string, baudRate int) (*Serial, error) {
	mode := &serial.Mode{
		BaudRate: baudRate,
	}

	port, err := serial.Open(portName, mode)
	if err != nil {
		return nil, hardwareError("open serial port "+portName, err)
	}

	if err = port.SetReadTimeout(serialPollTimeout); err != nil {
		_ = port.Close()

		return nil, hardwareError("set serial read timeout", err)
	}

	// Drop anything the firmware printed before we connected.
	_ = port.ResetInputBuffer()

	s := newSerial(logger.WithKV(ctx, "serial_port", portName), port, serialReplyTimeout)
	if err = s.exchange(wire.Ping()); err != nil {
		_ = port.Close()

		return nil, hardwareError("ping firmware", err)
	}

	logger.InfoKV(s.ctx, "Firmware connected", "baud_rate", baudRate)

	return s, nil
}

func newSerial(ctx context.Context, port io.ReadWriteCloser, timeout time.Duration) *Serial {
	return &Serial{
		ctx:     logger.WithName(ctx, "serial-pwm"),
		port:    port,
		timeout: timeout,
	}
}

// SetDuty sends D<duty>.
func (s *Serial) SetDuty(duty uint8) error {
	if err := s.exchange(wire.Duty(duty)); err != nil {
		return hardwareError("set duty", err)
	}

	return nil
}

// Enable sends E.
func (s *Serial) Enable() error {
	if err := s.exchange(wire.Enable()); err != nil {
		return hardwareError("enable", err)
	}

	return nil
}

// Disable sends X.
func (s *Serial) Disable() error {
	if err := s.exchange(wire.Disable()); err != nil {
		return hardwareError("disable", err)
	}

	return nil
}

// Close disables the output on a best-effort basis and closes the port.
func (s *Serial) Close() error {
	disableErr := s.exchange(wire.Disable())
	closeErr := s.port.Close()

	return multierr.Combine(disableErr, closeErr)
}

// exchange writes cmd under a fresh sequence tag and waits for the reply
// echoing it. Diagnostic lines and replies left over from earlier timed out
// requests are skipped.
func (s *Serial) exchange(cmd wire.Command) error {
	s.seq++
	if s.seq == 0 {
		s.seq = 1
	}

	req := cmd.Tagged(s.seq)

	if _, err := s.port.Write(req.Encode()); err != nil {
		return fmt.Errorf("write %s: %w", cmd, err)
	}

	deadline := time.Now().Add(s.timeout)

	for {
		line, err := s.readLine(deadline)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}

		if line == "" || wire.IsComment(line) {
			logger.DebugKV(s.ctx, "Firmware diagnostic", "line", line)

			continue
		}

		reply, err := wire.ParseReply(line)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}

		if reply.Seq != req.Seq {
			logger.WarnKV(s.ctx, "Discarding stale firmware reply", "line", line, "request", req.String())

			continue
		}

		if reply.Err != nil {
			return fmt.Errorf("%s: %w", cmd, reply.Err)
		}

		return nil
	}
}

// readLine assembles one line from the port until deadline.
// A read that returns no data and no error is a poll timeout.
func (s *Serial) readLine(deadline time.Time) (string, error) {
	var (
		line []byte
		b    = make([]byte, 1)
	)

	for {
		n, err := s.port.Read(b)
		if err != nil {
			return "", fmt.Errorf("read reply: %w", err)
		}

		if n == 0 {
			if time.Now().After(deadline) {
				return "", errReplyTimeout
			}

			continue
		}

		if b[0] == wire.Terminator {
			return strings.TrimRight(string(line), "\r"), nil
		}

		if len(line) >= maxReplyLength {
			return "", errReplyTooLong
		}

		line = append(line, b[0])
	}
}
