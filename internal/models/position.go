package models

import "time"

// TrackerPosition is a single position report from a tracker.
// Positions are append-only; the evaluators only ever read the latest
// report per tracker.
type TrackerPosition struct {
	ID         string    `json:"id"`
	TrackerID  string    `json:"tracker_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ObservedAt time.Time `json:"observed_at"`
}
