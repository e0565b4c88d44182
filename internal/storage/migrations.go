package storage

import (
	"database/sql"
	"fmt"
	"time"
)

// Migration represents a database migration.
type Migration struct {
	Version int
	Name    string
	Up      string
}

// migrations holds all database migrations in order.
var migrations = []Migration{
	{
		Version: 1,
		Name:    "initial_schema",
		Up: `
			-- Tracked devices
			CREATE TABLE IF NOT EXISTS trackers (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			-- Position reports, append-only
			CREATE TABLE IF NOT EXISTS tracker_positions (
				id TEXT PRIMARY KEY,
				tracker_id TEXT NOT NULL,
				latitude REAL NOT NULL,
				longitude REAL NOT NULL,
				observed_at DATETIME NOT NULL,
				FOREIGN KEY (tracker_id) REFERENCES trackers(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_positions_tracker_observed
				ON tracker_positions(tracker_id, observed_at DESC);

			-- Geofences
			CREATE TABLE IF NOT EXISTS geofences (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				center_latitude REAL NOT NULL,
				center_longitude REAL NOT NULL,
				radius_meters REAL NOT NULL,
				is_active INTEGER NOT NULL DEFAULT 1,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL
			);

			-- Tracker-to-geofence links with last containment state
			CREATE TABLE IF NOT EXISTS geofence_links (
				id TEXT PRIMARY KEY,
				tracker_id TEXT NOT NULL,
				geofence_id TEXT NOT NULL,
				alert_on_enter INTEGER NOT NULL DEFAULT 1,
				alert_on_exit INTEGER NOT NULL DEFAULT 1,
				last_state TEXT NOT NULL DEFAULT 'unknown',
				state_observed_at DATETIME,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				UNIQUE (tracker_id, geofence_id),
				FOREIGN KEY (tracker_id) REFERENCES trackers(id) ON DELETE CASCADE,
				FOREIGN KEY (geofence_id) REFERENCES geofences(id) ON DELETE CASCADE
			);

			-- Scheduled alert rules
			CREATE TABLE IF NOT EXISTS scheduled_alerts (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				tracker_id TEXT NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL,
				schedule_kind TEXT NOT NULL,
				schedule_hour INTEGER NOT NULL,
				schedule_minute INTEGER NOT NULL,
				scheduled_date TEXT,
				day_of_week INTEGER,
				day_of_month INTEGER,
				is_active INTEGER NOT NULL DEFAULT 1,
				last_triggered DATETIME,
				created_at DATETIME NOT NULL,
				updated_at DATETIME NOT NULL,
				FOREIGN KEY (tracker_id) REFERENCES trackers(id) ON DELETE CASCADE
			);
			CREATE INDEX IF NOT EXISTS idx_scheduled_alerts_active
				ON scheduled_alerts(is_active);

			-- Emitted alert records
			CREATE TABLE IF NOT EXISTS alerts (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				tracker_id TEXT NOT NULL,
				kind TEXT NOT NULL,
				title TEXT NOT NULL,
				message TEXT NOT NULL,
				metadata_json TEXT,
				is_read INTEGER NOT NULL DEFAULT 0,
				created_at DATETIME NOT NULL
			);
			CREATE INDEX IF NOT EXISTS idx_alerts_created
				ON alerts(created_at DESC);
		`,
	},
}

// runMigrations applies all pending migrations.
func runMigrations(db *sql.DB) error {
	// Create migrations table if not exists
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at DATETIME NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	// Get current version
	var currentVersion int
	err = db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("get current version: %w", err)
	}

	// Apply pending migrations
	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		// Run migration in transaction
		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction for migration %d: %w", m.Version, err)
		}

		_, err = tx.Exec(m.Up)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("execute migration %d (%s): %w", m.Version, m.Name, err)
		}

		_, err = tx.Exec(
			"INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)",
			m.Version, m.Name, time.Now(),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}
