package geo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geowatch/osint-monitor/internal/domain"
)

// --- fakes ---

type fakeExtractor struct {
	names []string
}

func (f *fakeExtractor) PlaceNames(_ string) []string { return f.names }

type fakeGeocoder struct {
	results map[string]domain.GeocodeResult
	errs    map[string]error
	calls   []string
}

func (f *fakeGeocoder) Geocode(_ context.Context, name string) (domain.GeocodeResult, error) {
	f.calls = append(f.calls, name)
	if err := f.errs[name]; err != nil {
		return domain.GeocodeResult{}, err
	}
	return f.results[name], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- tests ---

func TestResolver_RawCoordinatesWin(t *testing.T) {
	gc := &fakeGeocoder{}
	r := NewResolver(&fakeExtractor{names: []string{"Tokyo"}}, gc, discardLogger())

	result, ok := r.Resolve(context.Background(), "Earthquake of magnitude 7.1 strikes near 35.68,139.69", nil)
	require.True(t, ok)
	assert.InDelta(t, 35.68, result.Lat, 1e-9)
	assert.InDelta(t, 139.69, result.Lon, 1e-9)

	// Raw coordinates carry no display strings and skip geocoding entirely.
	assert.Empty(t, result.LocationName)
	assert.Empty(t, result.CountryCode)
	assert.Empty(t, gc.calls)
}

func TestResolver_DMSFallback(t *testing.T) {
	r := NewResolver(&fakeExtractor{}, &fakeGeocoder{}, discardLogger())

	result, ok := r.Resolve(context.Background(), "observed at 48°51′N 2°21′E", nil)
	require.True(t, ok)
	assert.InDelta(t, 48.85, result.Lat, 0.01)
}

func TestResolver_HintsTriedBeforeExtracted(t *testing.T) {
	gc := &fakeGeocoder{
		results: map[string]domain.GeocodeResult{
			"Kharkiv": {Lat: 49.99, Lon: 36.23, DisplayName: "Kharkiv, Kharkiv Oblast, Ukraine"},
		},
	}
	r := NewResolver(&fakeExtractor{names: []string{"Dnipro"}}, gc, discardLogger())

	result, ok := r.Resolve(context.Background(), "shelling reported downtown", []string{"Kharkiv"})
	require.True(t, ok)
	assert.Equal(t, "Kharkiv", result.LocationName)
	assert.Equal(t, "UK", result.CountryCode) // first two chars of "Ukraine"
	assert.Equal(t, []string{"Kharkiv"}, gc.calls)
}

func TestResolver_FallsThroughFailedCandidates(t *testing.T) {
	gc := &fakeGeocoder{
		results: map[string]domain.GeocodeResult{
			"Osaka": {Lat: 34.69, Lon: 135.5, DisplayName: "Osaka, Japan"},
		},
		errs: map[string]error{"Nowhereville": errors.New("timeout")},
	}
	r := NewResolver(&fakeExtractor{names: []string{"Nowhereville", "Atlantis", "Osaka"}}, gc, discardLogger())

	result, ok := r.Resolve(context.Background(), "no coordinates in this text", nil)
	require.True(t, ok)
	assert.Equal(t, "Osaka", result.LocationName)
	assert.Equal(t, "JA", result.CountryCode)
	// Error and not-found candidates are both skipped, in order.
	assert.Equal(t, []string{"Nowhereville", "Atlantis", "Osaka"}, gc.calls)
}

func TestResolver_AllStagesFail(t *testing.T) {
	r := NewResolver(&fakeExtractor{names: []string{"Atlantis"}}, &fakeGeocoder{}, discardLogger())

	_, ok := r.Resolve(context.Background(), "nothing locatable here", nil)
	assert.False(t, ok)
}

func TestResolver_NilGeocoder(t *testing.T) {
	r := NewResolver(&fakeExtractor{names: []string{"Tokyo"}}, nil, discardLogger())

	// Coordinates still work.
	_, ok := r.Resolve(context.Background(), "at 35.68,139.69", nil)
	assert.True(t, ok)

	// Name resolution is disabled.
	_, ok = r.Resolve(context.Background(), "somewhere in Tokyo", nil)
	assert.False(t, ok)
}

func TestCountryCode(t *testing.T) {
	tests := []struct {
		display string
		want    string
	}{
		{"Tokyo, Japan", "JA"},
		{"Paris, Île-de-France, France", "FR"},
		{"Luxembourg", "LU"},
		{"", ""},
		{"X", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, countryCode(tt.display), tt.display)
	}
}
