// Package wire defines the line protocol between the serial actuator driver
// and the button firmware.
//
// Each request is one line: D<0..255> sets the duty cycle, E enables the
// output, X disables it and P pings. A request may carry a sequence tag,
// as in E@12, which the reply echoes: OK@12 or ERR@12 <reason>. Each request
// gets exactly one reply line. Lines starting with '#' are diagnostics and
// carry no reply.
package wire

import (
	"errors"
	"strconv"
	"strings"
)

// Op is a single-letter request opcode.
type Op byte

// Request opcodes.
const (
	OpDuty    Op = 'D'
	OpEnable  Op = 'E'
	OpDisable Op = 'X'
	OpPing    Op = 'P'
)

const (
	// ReplyOK acknowledges a request.
	ReplyOK = "OK"
	// replyErrPrefix starts a rejection reply.
	replyErrPrefix = "ERR"
	// CommentPrefix marks diagnostic lines.
	CommentPrefix = '#'
	// Terminator ends every line.
	Terminator = '\n'
	// SeqSeparator joins a line and its sequence tag.
	SeqSeparator = '@'
)

var (
	// ErrMalformed is returned for lines that are not valid requests or replies.
	ErrMalformed = errors.New("malformed line")
	// ErrRejected is returned when the firmware answers ERR.
	ErrRejected = errors.New("rejected by firmware")
)

// Command is a decoded request.
type Command struct {
	// Op is the request opcode.
	Op Op
	// Duty is the duty cycle for OpDuty and zero otherwise.
	Duty uint8
	// Seq is the sequence tag; zero leaves the request untagged.
	Seq uint16
}

// Duty builds a set-duty request.
func Duty(v uint8) Command { return Command{Op: OpDuty, Duty: v} }

// Enable builds an enable request.
func Enable() Command { return Command{Op: OpEnable} }

// Disable builds a disable request.
func Disable() Command { return Command{Op: OpDisable} }

// Ping builds a ping request.
func Ping() Command { return Command{Op: OpPing} }

// Tagged returns a copy of c carrying sequence tag seq.
func (c Command) Tagged(seq uint16) Command {
	c.Seq = seq

	return c
}

// Encode renders the command as a terminated line.
func (c Command) Encode() []byte {
	buf := []byte{byte(c.Op)}
	if c.Op == OpDuty {
		buf = strconv.AppendUint(buf, uint64(c.Duty), 10)
	}

	return append(appendSeq(buf, c.Seq), Terminator)
}

// String implements fmt.Stringer.
func (c Command) String() string {
	return strings.TrimSuffix(string(c.Encode()), string(Terminator))
}

// Parse decodes a request line. The terminator and a trailing '\r' are optional.
// When only the payload is invalid, the returned command still carries the
// tag so the rejection can echo it.
func Parse(line []byte) (Command, error) {
	s := strings.TrimRight(string(line), "\r\n")

	s, seq, err := cutSeq(s)
	if err != nil {
		return Command{}, ErrMalformed
	}

	if s == "" {
		return Command{Seq: seq}, ErrMalformed
	}

	op := Op(s[0])
	arg := s[1:]

	switch op {
	case OpEnable, OpDisable, OpPing:
		if arg != "" {
			return Command{Seq: seq}, ErrMalformed
		}

		return Command{Op: op, Seq: seq}, nil
	case OpDuty:
		v, err := strconv.ParseUint(arg, 10, 8)
		if err != nil {
			return Command{Seq: seq}, ErrMalformed
		}

		return Duty(uint8(v)).Tagged(seq), nil
	default:
		return Command{Seq: seq}, ErrMalformed
	}
}

// FormatOK returns the acknowledgement line for a request tagged seq.
func FormatOK(seq uint16) []byte {
	buf := appendSeq([]byte(ReplyOK), seq)

	return append(buf, Terminator)
}

// FormatError returns a rejection line for a request tagged seq.
func FormatError(seq uint16, reason string) []byte {
	reason = strings.ReplaceAll(reason, string(Terminator), " ")

	buf := appendSeq([]byte(replyErrPrefix), seq)
	buf = append(buf, ' ')
	buf = append(buf, reason...)

	return append(buf, Terminator)
}

// IsComment reports whether line is a diagnostic line.
func IsComment(line string) bool {
	return line != "" && line[0] == CommentPrefix
}

// Reply is a decoded reply line.
type Reply struct {
	// Seq echoes the request's sequence tag, zero when untagged.
	Seq uint16
	// Err is nil for OK and an ErrRejected wrap for ERR.
	Err error
}

// ParseReply decodes a reply line. It fails with ErrMalformed only when the
// line is neither OK nor ERR; a rejection is reported in Reply.Err.
func ParseReply(line string) (Reply, error) {
	line = strings.TrimRight(line, "\r\n")

	head, reason, hasReason := strings.Cut(line, " ")

	head, seq, err := cutSeq(head)
	if err != nil {
		return Reply{}, ErrMalformed
	}

	switch {
	case head == ReplyOK && !hasReason:
		return Reply{Seq: seq}, nil
	case head == replyErrPrefix && reason == "":
		return Reply{Seq: seq, Err: ErrRejected}, nil
	case head == replyErrPrefix:
		return Reply{Seq: seq, Err: &RejectedError{Reason: reason}}, nil
	default:
		return Reply{}, ErrMalformed
	}
}

// RejectedError carries the firmware's rejection reason.
type RejectedError struct {
	// Reason is the text after ERR.
	Reason string
}

// Error implements error.
func (e *RejectedError) Error() string {
	return ErrRejected.Error() + ": " + e.Reason
}

// Unwrap lets errors.Is match ErrRejected.
func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

// appendSeq appends the tag suffix for seq, or nothing for zero.
func appendSeq(buf []byte, seq uint16) []byte {
	if seq == 0 {
		return buf
	}

	buf = append(buf, SeqSeparator)

	return strconv.AppendUint(buf, uint64(seq), 10)
}

// cutSeq splits an optional sequence tag off s. A present tag must be a
// non-zero 16-bit number.
func cutSeq(s string) (string, uint16, error) {
	head, tag, found := strings.Cut(s, string(SeqSeparator))
	if !found {
		return s, 0, nil
	}

	v, err := strconv.ParseUint(tag, 10, 16)
	if err != nil || v == 0 {
		return "", 0, ErrMalformed
	}

	return head, uint16(v), nil
}
