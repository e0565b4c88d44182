package models

import (
	"time"

	"github.com/google/uuid"
)

// ContainmentState is the last known relation of a tracker to a geofence.
type ContainmentState string

const (
	ContainmentUnknown ContainmentState = "unknown"
	ContainmentInside  ContainmentState = "inside"
	ContainmentOutside ContainmentState = "outside"
)

// ParseContainmentState converts a string to ContainmentState.
// Unrecognized values map to ContainmentUnknown.
func ParseContainmentState(s string) ContainmentState {
	switch s {
	case "inside":
		return ContainmentInside
	case "outside":
		return ContainmentOutside
	default:
		return ContainmentUnknown
	}
}

// GeofenceLink associates a tracker with a geofence and records the
// containment state as of the previous evaluation. LastState is the one
// piece of state the geofence evaluator mutates; it is what prevents a
// duplicate enter alert on every tick while the tracker stays inside.
type GeofenceLink struct {
	ID           string           `json:"id"`
	TrackerID    string           `json:"tracker_id"`
	GeofenceID   string           `json:"geofence_id"`
	AlertOnEnter bool             `json:"alert_on_enter"`
	AlertOnExit  bool             `json:"alert_on_exit"`
	LastState    ContainmentState `json:"last_state"`
	// StateObservedAt is the observation timestamp of the position that
	// produced LastState. Conditional state writes compare against it so
	// a stale write loses to a fresher one.
	StateObservedAt time.Time `json:"state_observed_at"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewGeofenceLink creates a link with alerts enabled in both directions
// and an unknown baseline state.
func NewGeofenceLink(trackerID, geofenceID string) *GeofenceLink {
	now := time.Now()
	return &GeofenceLink{
		ID:           uuid.NewString(),
		TrackerID:    trackerID,
		GeofenceID:   geofenceID,
		AlertOnEnter: true,
		AlertOnExit:  true,
		LastState:    ContainmentUnknown,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
