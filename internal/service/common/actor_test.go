//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestDetectSource ensures hostname and username are detected and non-empty.
func TestDetectSource(t *testing.T) {
	t.Parallel()

	source, err := DetectSource()
	require.NoError(t, err)

	user, host, ok := strings.Cut(source, "@")
	require.True(t, ok)
	require.NotEmpty(t, user)
	require.NotEmpty(t, host)
}
