package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/button-presser/internal/domain/actuator"
	"github.com/oshokin/button-presser/internal/service/common"
)

// TestGRPC_Roundtrip starts the real server and exercises settings, presses and status.
func TestGRPC_Roundtrip(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "state.json")
	ts := writeConfig(t, settingsPath)
	stop := ts.start(t)

	ctx := context.Background()

	c, err := common.Dial(ctx, ts.grpcAddr, common.WithCallTimeout(3*time.Second), common.WithSource("test@host"))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	settings, err := c.GetSettings(ctx)
	require.NoError(t, err)
	require.Empty(t, settings)

	// Without configuration a press is aborted and never reaches the driver.
	require.NoError(t, c.Press(ctx))
	require.Eventually(t, func() bool {
		st, statusErr := c.GetStatus(ctx)

		return statusErr == nil && st.Aborted == 1
	}, 3*time.Second, 10*time.Millisecond)

	require.NoError(t, c.SetPressDuration(ctx, 20))
	require.NoError(t, c.SetDutyCycle(ctx, 128))

	settings, err = c.GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, common.Settings{domain.KeyPressDuration: 20, domain.KeyDutyCycle: 128}, settings)

	for range 3 {
		require.NoError(t, c.Press(ctx))
	}

	require.Eventually(t, func() bool {
		st, statusErr := c.GetStatus(ctx)

		return statusErr == nil && st.Completed == 3 && st.Pending == 0 && st.State == domain.StateIdle
	}, 3*time.Second, 10*time.Millisecond)

	_, err = os.Stat(settingsPath)
	require.NoError(t, err)

	require.NoError(t, stop())

	// A stopped server is unreachable.
	err = c.Press(ctx)
	require.Error(t, err)
	require.Equal(t, codes.Unavailable, status.Code(err))
}

// TestSettings_SurviveRestart verifies the stored values outlive the process.
func TestSettings_SurviveRestart(t *testing.T) {
	t.Parallel()

	settingsPath := filepath.Join(t.TempDir(), "state.json")
	ctx := context.Background()

	first := writeConfig(t, settingsPath)
	stop := first.start(t)

	c, err := common.Dial(ctx, first.grpcAddr)
	require.NoError(t, err)
	require.NoError(t, c.SetPressDuration(ctx, 0))
	require.NoError(t, c.SetDutyCycle(ctx, 255))
	require.NoError(t, c.Close())
	require.NoError(t, stop())

	second := writeConfig(t, settingsPath)
	second.start(t)

	c, err = common.Dial(ctx, second.grpcAddr)
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	settings, err := c.GetSettings(ctx)
	require.NoError(t, err)
	require.Equal(t, common.Settings{domain.KeyPressDuration: 0, domain.KeyDutyCycle: 255}, settings)
}
