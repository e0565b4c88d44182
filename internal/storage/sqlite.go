package storage

import (
	"context"
	"database/sql"
	"fmt"

	// Pure-Go SQLite driver.
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements Storage using SQLite.
type SQLiteStorage struct {
	path string
	db   *sql.DB

	trackers  *sqliteTrackerRepo
	positions *sqlitePositionRepo
	geofences *sqliteGeofenceRepo
	links     *sqliteLinkRepo
	rules     *sqliteRuleRepo
	alerts    *sqliteAlertRepo
}

// NewSQLiteStorage creates a new SQLite storage.
func NewSQLiteStorage(path string) *SQLiteStorage {
	return &SQLiteStorage{path: path}
}

// Open initializes the database connection.
func (s *SQLiteStorage) Open() error {
	ctx := context.Background()

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", s.path)

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("ping database: %w", err)
	}

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	s.db = db

	s.trackers = &sqliteTrackerRepo{db: db}
	s.positions = &sqlitePositionRepo{db: db}
	s.geofences = &sqliteGeofenceRepo{db: db}
	s.links = &sqliteLinkRepo{db: db}
	s.rules = &sqliteRuleRepo{db: db}
	s.alerts = &sqliteAlertRepo{db: db}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// DB returns the underlying database connection for health checks.
func (s *SQLiteStorage) DB() *sql.DB {
	return s.db
}

// Migrate runs database migrations.
func (s *SQLiteStorage) Migrate() error {
	return runMigrations(s.db)
}

// Trackers returns the tracker repository.
func (s *SQLiteStorage) Trackers() TrackerRepository { return s.trackers }

// Positions returns the position repository.
func (s *SQLiteStorage) Positions() PositionRepository { return s.positions }

// Geofences returns the geofence repository.
func (s *SQLiteStorage) Geofences() GeofenceRepository { return s.geofences }

// Links returns the geofence link repository.
func (s *SQLiteStorage) Links() LinkRepository { return s.links }

// Rules returns the scheduled alert rule repository.
func (s *SQLiteStorage) Rules() RuleRepository { return s.rules }

// Alerts returns the alert repository.
func (s *SQLiteStorage) Alerts() AlertRepository { return s.alerts }
