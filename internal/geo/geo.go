// Package geo provides great-circle distance and geofence containment
// primitives.
package geo

import (
	"math"

	"github.com/snoutly/trackwatch/internal/models"
)

// earthRadiusMeters is the mean Earth radius used by the Haversine formula.
const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two points
// given in degrees, via the Haversine formula.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)

	// Floating-point error can push a just over 1 (or under 0) for
	// numerically identical or antipodal points; clamp before the roots.
	if a < 0 {
		a = 0
	} else if a > 1 {
		a = 1
	}

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMeters * c
}

// Inside reports whether a position lies within a geofence's radius.
func Inside(p *models.TrackerPosition, f *models.Geofence) bool {
	d := DistanceMeters(p.Latitude, p.Longitude, f.CenterLatitude, f.CenterLongitude)
	return d <= f.RadiusMeters
}
