package models

import (
	"time"

	"github.com/google/uuid"
)

// AlertKind identifies what produced an alert.
type AlertKind string

const (
	AlertGeofenceEnter AlertKind = "geofence_enter"
	AlertGeofenceExit  AlertKind = "geofence_exit"
	AlertScheduled     AlertKind = "scheduled"
)

// Alert is the output artifact of an evaluation pass. Write-once; the
// store owns it after insertion.
type Alert struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TrackerID string    `json:"tracker_id"`
	Kind      AlertKind `json:"kind"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	// Metadata references the rule or link that produced the alert,
	// stored as a JSON column.
	Metadata  map[string]string `json:"metadata,omitempty"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewAlert creates an unread alert stamped with the given creation time.
// The caller supplies the time so every alert from one evaluation pass
// shares the pass's reference instant.
func NewAlert(userID, trackerID string, kind AlertKind, title, message string, createdAt time.Time) *Alert {
	return &Alert{
		ID:        uuid.NewString(),
		UserID:    userID,
		TrackerID: trackerID,
		Kind:      kind,
		Title:     title,
		Message:   message,
		Metadata:  map[string]string{},
		CreatedAt: createdAt,
	}
}
