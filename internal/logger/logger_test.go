package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestParseLogLevel verifies mapping from strings to zapcore.Level and handling of unknown values.
func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"panic": zapcore.PanicLevel,
		"fatal": zapcore.FatalLevel,
	}
	for s, lvl := range cases {
		got, ok := ParseLogLevel(s)
		require.True(t, ok)
		require.Equal(t, lvl, got)
	}

	_, ok := ParseLogLevel("unknown")
	require.False(t, ok)
}

// TestContextLogger verifies the context helpers carry names and fields.
func TestContextLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ToContext(context.Background(), zap.New(core).Sugar())

	ctx = WithName(ctx, "sequencer")
	ctx = WithKV(ctx, "cycle", 1)
	ctx = WithFields(ctx, "source", "http")

	InfoKV(ctx, "Actuation finished", "duty_cycle", 128)

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "sequencer", entries[0].LoggerName)
	require.Equal(t, "Actuation finished", entries[0].Message)

	fields := entries[0].ContextMap()
	require.EqualValues(t, 1, fields["cycle"])
	require.Equal(t, "http", fields["source"])
	require.EqualValues(t, 128, fields["duty_cycle"])
}

// TestFromContextFallsBackToGlobal ensures a bare context yields the global logger.
func TestFromContextFallsBackToGlobal(t *testing.T) {
	t.Parallel()

	require.Same(t, Logger(), FromContext(context.Background()))
}

// TestConfigure switches encoding and level; it is not parallel because it replaces the global logger.
//
//nolint:paralleltest // Mutates package state.
func TestConfigure(t *testing.T) {
	previous, previousLevel := Logger(), Level()

	t.Cleanup(func() {
		SetLogger(previous)
		SetLevel(previousLevel)
	})

	var buf bytes.Buffer

	require.NoError(t, Configure(&buf, "warn", EncodingJSON))
	require.Equal(t, zapcore.WarnLevel, Level())

	ctx := WithName(context.Background(), "button-server")
	Info(ctx, "dropped")
	WarnKV(ctx, "Dropping queued presses", "pending", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "Dropping queued presses", entry["message"])
	require.Equal(t, "button-server", entry["logger"])
	require.InDelta(t, 2, entry["pending"], 0)

	require.Error(t, Configure(&buf, "loud", EncodingJSON))
	require.Error(t, Configure(&buf, "info", "xml"))
}
