//go:build nominatim

package nominatim

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real Nominatim API and are excluded from normal runs.
// Run with: go test -tags=nominatim ./internal/adapter/nominatim/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	return NewClient(
		"osint-monitor-smoke-test/1.0",
		10*time.Second,
		time.Second,
		testMetrics(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
}

func TestSmoke_Geocode(t *testing.T) {
	c := smokeClient(t)

	result, err := c.Geocode(context.Background(), "Tokyo")
	require.NoError(t, err)

	assert.True(t, result.Found())
	assert.InDelta(t, 35.68, result.Lat, 0.5, "lat should be near Tokyo")
	assert.InDelta(t, 139.76, result.Lon, 0.5, "lon should be near Tokyo")
	assert.Contains(t, result.DisplayName, "Japan")
}

func TestSmoke_Geocode_Nonsense(t *testing.T) {
	c := smokeClient(t)

	result, err := c.Geocode(context.Background(), "zzqqxxyy-not-a-place-941")
	require.NoError(t, err)
	assert.False(t, result.Found())
}
