package geo

import (
	"context"
	"log/slog"
	"strings"

	"github.com/geowatch/osint-monitor/internal/domain"
)

// Resolver composes coordinate extraction and name geocoding into a single
// best-effort location-resolution call per item.
type Resolver struct {
	extractor EntityExtractor
	geocoder  domain.Geocoder
	logger    *slog.Logger
}

// NewResolver creates a Resolver. A nil geocoder disables the name-resolution
// stage; coordinate extraction still works.
func NewResolver(extractor EntityExtractor, geocoder domain.Geocoder, logger *slog.Logger) *Resolver {
	return &Resolver{extractor: extractor, geocoder: geocoder, logger: logger}
}

// Resolve runs the ordered fallback chain over the item text, first success
// wins:
//
//  1. raw coordinates embedded in the text (decimal, then degree-minute)
//  2. hint names followed by NER-extracted place names, geocoded in order
//
// ok is false when every stage fails; callers decide whether an
// ungeotaggable item is kept or dropped.
func (r *Resolver) Resolve(ctx context.Context, text string, hints []string) (domain.GeoResult, bool) {
	if lat, lon, found := ExtractDecimal(text); found {
		return domain.GeoResult{Lat: lat, Lon: lon}, true
	}
	if lat, lon, found := ExtractDMS(text); found {
		return domain.GeoResult{Lat: lat, Lon: lon}, true
	}

	if r.geocoder == nil {
		return domain.GeoResult{}, false
	}

	candidates := hints
	if r.extractor != nil {
		candidates = append(append([]string{}, hints...), r.extractor.PlaceNames(text)...)
	}

	for _, name := range candidates {
		result, err := r.geocoder.Geocode(ctx, name)
		if err != nil {
			r.logger.Warn("geocode failed", "name", name, "error", err)
			continue
		}
		if !result.Found() {
			continue
		}
		return domain.GeoResult{
			Lat:          result.Lat,
			Lon:          result.Lon,
			LocationName: name,
			CountryCode:  countryCode(result.DisplayName),
		}, true
	}

	return domain.GeoResult{}, false
}

// countryCode approximates an ISO code from a geocoder display address: the
// last comma-separated component, first two characters uppercased. A lossy
// heuristic, not a lookup against a country registry.
func countryCode(displayName string) string {
	parts := strings.Split(displayName, ",")
	if len(parts) == 0 {
		return ""
	}
	last := strings.TrimSpace(parts[len(parts)-1])
	if len(last) < 2 {
		return ""
	}
	return strings.ToUpper(last[:2])
}
