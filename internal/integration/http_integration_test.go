package integration

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	httpapi "github.com/oshokin/button-presser/internal/api/http/presser"
	"github.com/oshokin/button-presser/internal/service/common"
)

// get performs a GET and returns the status code.
func get(t *testing.T, url string) int {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	return resp.StatusCode
}

// home decodes GET /.
func home(t *testing.T, base string) httpapi.HomePage {
	t.Helper()

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, base+httpapi.RouteHome, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)

	defer func() {
		_ = resp.Body.Close()
	}()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page httpapi.HomePage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))

	return page
}

// TestHTTP_Contract walks the plain HTTP routes against the real server.
func TestHTTP_Contract(t *testing.T) {
	t.Parallel()

	ts := writeConfig(t, filepath.Join(t.TempDir(), "state.json"))
	ts.start(t)

	base := "http://" + ts.httpAddr

	// Never configured: both values render as 0.
	page := home(t, base)
	require.Zero(t, page.PressDuration)
	require.Zero(t, page.DutyCycle)
	require.Equal(t, "idle", page.State)

	require.Equal(t, http.StatusOK, get(t, base+httpapi.RouteSetPressDuration+"?value=30"))
	require.Equal(t, http.StatusOK, get(t, base+httpapi.RouteSetDutyCycle+"?v=200"))

	// Invalid values are ignored and still answered with 200.
	require.Equal(t, http.StatusOK, get(t, base+httpapi.RouteSetPressDuration+"?value=256"))
	require.Equal(t, http.StatusOK, get(t, base+httpapi.RouteSetDutyCycle+"?value=abc"))
	require.Equal(t, http.StatusOK, get(t, base+httpapi.RouteSetDutyCycle+"?value=-1"))

	page = home(t, base)
	require.Equal(t, uint8(30), page.PressDuration)
	require.Equal(t, uint8(200), page.DutyCycle)

	require.Equal(t, http.StatusOK, get(t, base+httpapi.RoutePress))
	require.Equal(t, http.StatusOK, get(t, base+httpapi.RoutePress))

	c, err := common.Dial(context.Background(), ts.grpcAddr)
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	require.Eventually(t, func() bool {
		st, statusErr := c.GetStatus(context.Background())

		return statusErr == nil && st.Completed == 2
	}, 3*time.Second, 10*time.Millisecond)

	require.Equal(t, http.StatusNotFound, get(t, base+"/unknown"))
}
