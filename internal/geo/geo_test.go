package geo

import (
	"math"
	"testing"

	"github.com/snoutly/trackwatch/internal/models"
)

func TestDistanceMetersZero(t *testing.T) {
	points := [][2]float64{
		{0, 0},
		{51.5074, -0.1278},
		{-33.8688, 151.2093},
		{90, 0},
	}
	for _, p := range points {
		if d := DistanceMeters(p[0], p[1], p[0], p[1]); d != 0 {
			t.Errorf("DistanceMeters(%v, %v, same) = %v, want 0", p[0], p[1], d)
		}
	}
}

func TestDistanceMetersSymmetric(t *testing.T) {
	d1 := DistanceMeters(48.8566, 2.3522, 40.7128, -74.0060)
	d2 := DistanceMeters(40.7128, -74.0060, 48.8566, 2.3522)
	if d1 != d2 {
		t.Errorf("distance not symmetric: %v != %v", d1, d2)
	}
}

func TestDistanceMetersKnownPairs(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lng1, lat2, lng2 float64
		want                   float64 // meters
	}{
		{"one degree of latitude", 0, 0, 1, 0, 111195},
		{"one degree of longitude at equator", 0, 0, 0, 1, 111195},
		{"paris to new york", 48.8566, 2.3522, 40.7128, -74.0060, 5837000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.lat1, tt.lng1, tt.lat2, tt.lng2)
			if math.Abs(got-tt.want)/tt.want > 0.005 {
				t.Errorf("DistanceMeters = %v, want %v within 0.5%%", got, tt.want)
			}
		})
	}
}

func TestDistanceMetersAntipodal(t *testing.T) {
	d := DistanceMeters(0, 0, 0, 180)
	if math.IsNaN(d) {
		t.Fatal("antipodal distance is NaN")
	}
	// Half of Earth's circumference.
	want := math.Pi * 6371000.0
	if math.Abs(d-want)/want > 0.005 {
		t.Errorf("antipodal distance = %v, want %v", d, want)
	}
}

func TestInside(t *testing.T) {
	fence := &models.Geofence{
		CenterLatitude:  51.5074,
		CenterLongitude: -0.1278,
		RadiusMeters:    500,
	}

	tests := []struct {
		name     string
		lat, lng float64
		want     bool
	}{
		{"at center", 51.5074, -0.1278, true},
		{"well inside", 51.5078, -0.1280, true},
		{"well outside", 51.52, -0.1278, false},
		{"far away", 48.8566, 2.3522, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &models.TrackerPosition{Latitude: tt.lat, Longitude: tt.lng}
			if got := Inside(p, fence); got != tt.want {
				t.Errorf("Inside = %v, want %v", got, tt.want)
			}
		})
	}
}
