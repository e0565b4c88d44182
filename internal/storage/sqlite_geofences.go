package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/snoutly/trackwatch/internal/models"
)

type sqliteGeofenceRepo struct {
	db *sql.DB
}

func (r *sqliteGeofenceRepo) Create(ctx context.Context, fence *models.Geofence) error {
	query := `
		INSERT INTO geofences (id, user_id, name, center_latitude, center_longitude,
			radius_meters, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		fence.ID, fence.UserID, fence.Name,
		fence.CenterLatitude, fence.CenterLongitude, fence.RadiusMeters,
		boolToInt(fence.Active), fence.CreatedAt, fence.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert geofence: %w", err)
	}
	return nil
}

func (r *sqliteGeofenceRepo) GetByID(ctx context.Context, id string) (*models.Geofence, error) {
	query := `
		SELECT id, user_id, name, center_latitude, center_longitude,
			radius_meters, is_active, created_at, updated_at
		FROM geofences WHERE id = ?
	`
	return scanGeofence(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteGeofenceRepo) List(ctx context.Context) ([]*models.Geofence, error) {
	query := `
		SELECT id, user_id, name, center_latitude, center_longitude,
			radius_meters, is_active, created_at, updated_at
		FROM geofences ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list geofences: %w", err)
	}
	defer rows.Close()

	var fences []*models.Geofence
	for rows.Next() {
		f, err := scanGeofence(rows)
		if err != nil {
			return nil, err
		}
		fences = append(fences, f)
	}
	return fences, rows.Err()
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanGeofence(s scanner) (*models.Geofence, error) {
	var f models.Geofence
	var active int
	err := s.Scan(
		&f.ID, &f.UserID, &f.Name,
		&f.CenterLatitude, &f.CenterLongitude, &f.RadiusMeters,
		&active, &f.CreatedAt, &f.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan geofence: %w", err)
	}
	f.Active = active != 0
	return &f, nil
}
