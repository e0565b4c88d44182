// Package models defines domain models for trackwatch.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Tracker is a tracked device owned by a user.
type Tracker struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewTracker creates a new Tracker with initialized ID and timestamps.
func NewTracker(userID, name string) *Tracker {
	now := time.Now()
	return &Tracker{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      name,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
