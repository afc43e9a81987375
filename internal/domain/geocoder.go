package domain

import "context"

// GeocodeResult contains location data returned by a geocoding provider.
// An empty DisplayName means the provider had no match for the name.
type GeocodeResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
}

// Found reports whether the provider resolved the name.
func (r GeocodeResult) Found() bool {
	return r.DisplayName != ""
}

// Geocoder resolves a free-form place name to coordinates.
type Geocoder interface {
	Geocode(ctx context.Context, name string) (GeocodeResult, error)
}

// GeoResult is the outcome of the full geo-resolution pipeline over an
// item's text. LocationName and CountryCode stay empty when the resolution
// came from raw coordinates embedded in the text.
type GeoResult struct {
	Lat          float64
	Lon          float64
	LocationName string
	CountryCode  string
}
