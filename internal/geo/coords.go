// Package geo resolves item text to coordinates: a fast regex pass for
// embedded coordinates, then NER-extracted place names resolved through a
// geocoding provider.
package geo

import (
	"regexp"
	"strconv"
)

var (
	// decimalCoordRe matches a decimal pair like "35.68,139.69" or "35.68 / 139.69".
	decimalCoordRe = regexp.MustCompile(`(-?\d{1,3}\.\d+)\s*[,/]\s*(-?\d{1,3}\.\d+)`)

	// dmsCoordRe matches degree-minute pairs with hemisphere letters,
	// e.g. "48°51′N 2°21′E".
	dmsCoordRe = regexp.MustCompile(`(\d{1,3})°(\d{1,2})′([NS])\s+(\d{1,3})°(\d{1,2})′([EW])`)
)

// ExtractDecimal returns the first decimal coordinate pair found in text.
// Pairs outside the valid WGS-84 range are discarded silently; that is "no
// coordinate found", not an error.
func ExtractDecimal(text string) (lat, lon float64, ok bool) {
	m := decimalCoordRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}
	lat, errLat := strconv.ParseFloat(m[1], 64)
	lon, errLon := strconv.ParseFloat(m[2], 64)
	if errLat != nil || errLon != nil || !validCoords(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

// ExtractDMS returns the first degree-minute coordinate pair found in text,
// converted via degrees + minutes/60 and negated for S/W hemispheres.
func ExtractDMS(text string) (lat, lon float64, ok bool) {
	m := dmsCoordRe.FindStringSubmatch(text)
	if m == nil {
		return 0, 0, false
	}

	latDeg, _ := strconv.Atoi(m[1])
	latMin, _ := strconv.Atoi(m[2])
	lonDeg, _ := strconv.Atoi(m[4])
	lonMin, _ := strconv.Atoi(m[5])

	lat = float64(latDeg) + float64(latMin)/60
	if m[3] == "S" {
		lat = -lat
	}
	lon = float64(lonDeg) + float64(lonMin)/60
	if m[6] == "W" {
		lon = -lon
	}

	if !validCoords(lat, lon) {
		return 0, 0, false
	}
	return lat, lon, true
}

func validCoords(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}
