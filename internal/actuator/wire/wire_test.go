package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestEncodeParse checks each request kind survives an encode/parse pass.
func TestEncodeParse(t *testing.T) {
	t.Parallel()

	for _, cmd := range []Command{
		Duty(0), Duty(128), Duty(255), Enable(), Disable(), Ping(),
		Duty(42).Tagged(1), Enable().Tagged(65535),
	} {
		got, err := Parse(cmd.Encode())
		require.NoError(t, err)
		require.Equal(t, cmd, got)
	}

	require.Equal(t, "D128\n", string(Duty(128).Encode()))
	require.Equal(t, "E", Enable().String())
	require.Equal(t, "D9@300\n", string(Duty(9).Tagged(300).Encode()))
}

// TestParse_Malformed rejects unknown opcodes, bad arguments and stray payloads.
func TestParse_Malformed(t *testing.T) {
	t.Parallel()

	for _, line := range []string{"", "\n", "Q", "D", "D256", "D-1", "Dxx", "E1", "X ", "P?", "E@", "E@0", "E@65536", "D1@x", "@5"} {
		_, err := Parse([]byte(line))
		require.ErrorIs(t, err, ErrMalformed, line)
	}

	cmd, err := Parse([]byte("D256@9"))
	require.ErrorIs(t, err, ErrMalformed)
	require.Equal(t, uint16(9), cmd.Seq)

	cmd, err = Parse([]byte("D7\r\n"))
	require.NoError(t, err)
	require.Equal(t, Duty(7), cmd)
}

// TestParseReply covers OK, ERR with and without a reason, tags and garbage.
func TestParseReply(t *testing.T) {
	t.Parallel()

	reply, err := ParseReply("OK\r\n")
	require.NoError(t, err)
	require.Equal(t, Reply{}, reply)

	reply, err = ParseReply(string(FormatOK(17)))
	require.NoError(t, err)
	require.Equal(t, Reply{Seq: 17}, reply)

	reply, err = ParseReply(string(FormatError(3, "pwm not configured")))
	require.NoError(t, err)
	require.Equal(t, uint16(3), reply.Seq)
	require.ErrorIs(t, reply.Err, ErrRejected)

	var rejected *RejectedError
	require.ErrorAs(t, reply.Err, &rejected)
	require.Equal(t, "pwm not configured", rejected.Reason)

	reply, err = ParseReply("ERR")
	require.NoError(t, err)
	require.ErrorIs(t, reply.Err, ErrRejected)

	for _, line := range []string{"hello", "OK extra", "OK@0", "ERR@x oops", "OK@"} {
		_, err = ParseReply(line)
		require.ErrorIs(t, err, ErrMalformed, line)
	}

	require.True(t, IsComment("# booted"))
	require.False(t, IsComment("OK"))
}
