package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDecimal(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantLat float64
		wantLon float64
		wantOK  bool
	}{
		{"comma separated", "strikes near 35.68,139.69 overnight", 35.68, 139.69, true},
		{"slash separated", "position 48.85/2.35 confirmed", 48.85, 2.35, true},
		{"spaced", "at 35.68 , 139.69", 35.68, 139.69, true},
		{"negative pair", "-33.87,151.21", -33.87, 151.21, true},
		{"latitude out of range", "seen at 95.1,10.0", 0, 0, false},
		{"longitude out of range", "seen at 45.0,190.5", 0, 0, false},
		{"no coordinates", "no numbers of interest here", 0, 0, false},
		{"integers ignored", "route 66, exit 12", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lat, lon, ok := ExtractDecimal(tt.text)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.InDelta(t, tt.wantLat, lat, 1e-9)
				assert.InDelta(t, tt.wantLon, lon, 1e-9)
			}
		})
	}
}

func TestExtractDMS(t *testing.T) {
	t.Run("north east", func(t *testing.T) {
		lat, lon, ok := ExtractDMS("Paris sits at 48°51′N 2°21′E roughly")
		require.True(t, ok)
		assert.InDelta(t, 48.85, lat, 0.01)
		assert.InDelta(t, 2.35, lon, 0.01)
	})

	t.Run("south west negates", func(t *testing.T) {
		lat, lon, ok := ExtractDMS("33°52′S 70°40′W")
		require.True(t, ok)
		assert.InDelta(t, -33.866, lat, 0.01)
		assert.InDelta(t, -70.666, lon, 0.01)
	})

	t.Run("out of range discarded", func(t *testing.T) {
		_, _, ok := ExtractDMS("120°30′N 10°10′E")
		assert.False(t, ok)
	})

	t.Run("no match", func(t *testing.T) {
		_, _, ok := ExtractDMS("plain text")
		assert.False(t, ok)
	})
}
