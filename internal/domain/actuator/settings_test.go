package actuator

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestParseValue covers the accepted range and the rejected inputs.
func TestParseValue(t *testing.T) {
	t.Parallel()

	for i := 0; i <= 255; i++ {
		got, err := ParseValue(" " + strconv.Itoa(i) + " ")
		require.NoError(t, err)
		require.Equal(t, uint8(i), got)
	}

	for _, raw := range []string{"", "256", "-1", "abc", "1.5", "0x10", "99999999999999999999"} {
		_, err := ParseValue(raw)
		require.ErrorIs(t, err, ErrValidation, raw)
	}
}

// TestCheckValue verifies the upper bound for typed inputs.
func TestCheckValue(t *testing.T) {
	t.Parallel()

	v, err := CheckValue(255)
	require.NoError(t, err)
	require.Equal(t, uint8(255), v)

	_, err = CheckValue(256)
	require.ErrorIs(t, err, ErrValidation)
}

// TestKeysAndSnapshot checks key validity and duration conversion.
func TestKeysAndSnapshot(t *testing.T) {
	t.Parallel()

	for _, k := range Keys() {
		require.True(t, k.Valid())
	}

	require.False(t, Key("other").Valid())
	require.Equal(t, 100*time.Millisecond, Snapshot{PressDurationMs: 100}.PressDuration())
	require.Equal(t, "energized", StateEnergized.String())
	require.Equal(t, "idle", StateIdle.String())
}
