// Package geo provides coordinate detection, address validation and geocoding
// for job pickup/dropoff locations.
package geo

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// Coordinate patterns, kept together so the recognized shapes are reviewable
// in one place.
var (
	// decimalPattern matches "<lat>, <lng>" anchored to the whole string,
	// e.g. "33.6846, -117.8265".
	decimalPattern = regexp.MustCompile(`^\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*$`)

	// dmsPattern matches degrees/minutes/seconds with hemisphere letters,
	// e.g. `33°41'4.6"N 117°49'35.4"W`.
	dmsPattern = regexp.MustCompile(`(?i)^\s*` +
		`(\d+(?:\.\d+)?)°\s*(\d+(?:\.\d+)?)'\s*(\d+(?:\.\d+)?)"\s*([NS])` +
		`[\s,]+` +
		`(\d+(?:\.\d+)?)°\s*(\d+(?:\.\d+)?)'\s*(\d+(?:\.\d+)?)"\s*([EW])` +
		`\s*$`)
)

// DetectCoordinate interprets a location string as literal coordinates.
// Returns false when the string is not coordinate-shaped; that is a
// fallthrough to address geocoding, not a failure.
func DetectCoordinate(s string) (models.Coordinate, bool) {
	if m := decimalPattern.FindStringSubmatch(s); m != nil {
		lat, err1 := strconv.ParseFloat(m[1], 64)
		lng, err2 := strconv.ParseFloat(m[2], 64)
		if err1 != nil || err2 != nil {
			return models.Coordinate{}, false
		}
		return models.Coordinate{Lat: lat, Lng: lng}, true
	}

	if m := dmsPattern.FindStringSubmatch(s); m != nil {
		lat := dmsToDecimal(m[1], m[2], m[3])
		if strings.EqualFold(m[4], "S") {
			lat = -lat
		}
		lng := dmsToDecimal(m[5], m[6], m[7])
		if strings.EqualFold(m[8], "W") {
			lng = -lng
		}
		return models.Coordinate{Lat: lat, Lng: lng}, true
	}

	return models.Coordinate{}, false
}

func dmsToDecimal(deg, min, sec string) float64 {
	d, _ := strconv.ParseFloat(deg, 64)
	m, _ := strconv.ParseFloat(min, 64)
	s, _ := strconv.ParseFloat(sec, 64)
	return d + m/60 + s/3600
}
