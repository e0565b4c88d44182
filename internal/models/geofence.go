package models

import (
	"time"

	"github.com/google/uuid"
)

// Geofence is a circular region defined by a center coordinate and a
// radius in meters.
type Geofence struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Name            string    `json:"name"`
	CenterLatitude  float64   `json:"center_latitude"`
	CenterLongitude float64   `json:"center_longitude"`
	RadiusMeters    float64   `json:"radius_meters"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewGeofence creates a new Geofence with initialized ID and timestamps.
func NewGeofence(userID, name string, lat, lng, radiusMeters float64) *Geofence {
	now := time.Now()
	return &Geofence{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            name,
		CenterLatitude:  lat,
		CenterLongitude: lng,
		RadiusMeters:    radiusMeters,
		Active:          true,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
