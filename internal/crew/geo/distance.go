// Package geo estimates travel distance between crew homes and job sites.
package geo

import (
	"math"
	"strings"

	"crew-workers/internal/models"
)

const (
	// EarthRadiusMiles is the mean Earth radius used by Haversine.
	EarthRadiusMiles = 3959.0

	SamePostalCodeMiles   = 5.0
	SamePostalPrefixMiles = 15.0
	DifferentPostalMiles  = 30.0

	// DefaultDistanceMiles is used when the two locations cannot be compared.
	DefaultDistanceMiles = 25.0

	postalPrefixLength = 3
)

// Distance returns an estimated distance in miles between a and b.
// Coordinates win over postal codes; anything else is DefaultDistanceMiles.
func Distance(a, b *models.Location) float64 {
	switch {
	case a.HasCoordinates() && b.HasCoordinates():
		return Haversine(*a.Latitude, *a.Longitude, *b.Latitude, *b.Longitude)
	case a.HasPostalCode() && b.HasPostalCode():
		return postalDistance(a.PostalCode, b.PostalCode)
	default:
		return DefaultDistanceMiles
	}
}

// Haversine is the great-circle distance in miles between two points given in degrees.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return EarthRadiusMiles * c
}

func postalDistance(a, b string) float64 {
	a = normalizePostal(a)
	b = normalizePostal(b)
	if a == b {
		return SamePostalCodeMiles
	}
	if len(a) >= postalPrefixLength && len(b) >= postalPrefixLength && a[:postalPrefixLength] == b[:postalPrefixLength] {
		return SamePostalPrefixMiles
	}
	return DifferentPostalMiles
}

func normalizePostal(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ProximityPoints converts a distance into the proximity score band.
func ProximityPoints(miles float64) float64 {
	switch {
	case miles < 10:
		return 20
	case miles < 25:
		return 15
	case miles < 50:
		return 10
	default:
		return 5
	}
}
