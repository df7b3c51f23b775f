package integration

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/button-presser/internal/config"
	"github.com/oshokin/button-presser/internal/service/server"
)

// reservePort returns a free local address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// testServer is a running button-server with the simulated driver.
type testServer struct {
	grpcAddr   string
	httpAddr   string
	configPath string
}

// writeConfig stores a config for a server listening on fresh ports.
func writeConfig(t *testing.T, settingsPath string) *testServer {
	t.Helper()

	ts := &testServer{
		grpcAddr:   reservePort(t),
		httpAddr:   reservePort(t),
		configPath: filepath.Join(t.TempDir(), "settings.yaml"),
	}

	require.NoError(t, config.Save(ts.configPath, &config.Config{
		GRPCAddress:  ts.grpcAddr,
		HTTPAddress:  ts.httpAddr,
		SettingsFile: settingsPath,
		Timeout:      3 * time.Second,
		LogLevel:     "warn",
		Driver:       config.Driver{Kind: config.DriverSimulated},
	}))

	return ts
}

// start runs the server until stop is called. stop returns the Run error.
func (ts *testServer) start(t *testing.T) (stop func() error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	go func() {
		done <- server.Run(ctx, &server.Options{ConfigPath: ts.configPath})
	}()

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", ts.httpAddr, 50*time.Millisecond)
		if err != nil {
			return false
		}

		_ = conn.Close()

		return true
	}, 3*time.Second, 20*time.Millisecond)

	stopped := false

	stop = func() error {
		if stopped {
			return nil
		}

		stopped = true

		cancel()

		return <-done
	}

	t.Cleanup(func() {
		_ = stop()
	})

	return stop
}
