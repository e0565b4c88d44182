// Package storage provides database storage interfaces and implementations.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/snoutly/trackwatch/internal/models"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// Storage is the main interface for database operations.
type Storage interface {
	// Open initializes the database connection.
	Open() error
	// Close closes the database connection.
	Close() error
	// Migrate runs database migrations.
	Migrate() error

	// Repository accessors
	Trackers() TrackerRepository
	Positions() PositionRepository
	Geofences() GeofenceRepository
	Links() LinkRepository
	Rules() RuleRepository
	Alerts() AlertRepository
}

// TrackerRepository defines operations for tracked devices.
type TrackerRepository interface {
	Create(ctx context.Context, tracker *models.Tracker) error
	GetByID(ctx context.Context, id string) (*models.Tracker, error)
	List(ctx context.Context) ([]*models.Tracker, error)
}

// PositionRepository defines operations for tracker position reports.
type PositionRepository interface {
	Insert(ctx context.Context, pos *models.TrackerPosition) error
	// Latest returns the most recent position for a tracker, or
	// ErrNotFound if the tracker has never reported.
	Latest(ctx context.Context, trackerID string) (*models.TrackerPosition, error)
}

// GeofenceRepository defines operations for geofence management.
type GeofenceRepository interface {
	Create(ctx context.Context, fence *models.Geofence) error
	GetByID(ctx context.Context, id string) (*models.Geofence, error)
	List(ctx context.Context) ([]*models.Geofence, error)
}

// LinkRepository defines operations for tracker-to-geofence links.
type LinkRepository interface {
	Create(ctx context.Context, link *models.GeofenceLink) error
	// ListActive returns links whose tracker and geofence are both active.
	ListActive(ctx context.Context) ([]*models.GeofenceLink, error)
	// UpdateState records a new containment state for a link. The write
	// is conditional on observedAt being newer than the stored
	// observation timestamp; a stale write is a silent no-op so a
	// lagging run cannot clobber a fresher one.
	UpdateState(ctx context.Context, linkID string, state models.ContainmentState, observedAt time.Time) error
}

// RuleRepository defines operations for scheduled alert rules.
type RuleRepository interface {
	Create(ctx context.Context, rule *models.ScheduledAlertRule) error
	GetByID(ctx context.Context, id string) (*models.ScheduledAlertRule, error)
	ListActive(ctx context.Context) ([]*models.ScheduledAlertRule, error)
	// UpdateTrigger records a firing: sets last_triggered and, when
	// deactivate is true (one_time rules), clears the active flag.
	UpdateTrigger(ctx context.Context, ruleID string, lastTriggered time.Time, deactivate bool) error
}

// AlertRepository defines operations for emitted alert records.
type AlertRepository interface {
	Insert(ctx context.Context, alert *models.Alert) error
	ListRecent(ctx context.Context, limit int) ([]*models.Alert, error)
	MarkRead(ctx context.Context, id string) error
}
