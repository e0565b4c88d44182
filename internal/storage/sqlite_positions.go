package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/snoutly/trackwatch/internal/models"
)

type sqlitePositionRepo struct {
	db *sql.DB
}

func (r *sqlitePositionRepo) Insert(ctx context.Context, pos *models.TrackerPosition) error {
	query := `
		INSERT INTO tracker_positions (id, tracker_id, latitude, longitude, observed_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		pos.ID, pos.TrackerID, pos.Latitude, pos.Longitude, pos.ObservedAt,
	)
	if err != nil {
		return fmt.Errorf("insert position: %w", err)
	}
	return nil
}

func (r *sqlitePositionRepo) Latest(ctx context.Context, trackerID string) (*models.TrackerPosition, error) {
	query := `
		SELECT id, tracker_id, latitude, longitude, observed_at
		FROM tracker_positions
		WHERE tracker_id = ?
		ORDER BY observed_at DESC
		LIMIT 1
	`
	var p models.TrackerPosition
	err := r.db.QueryRowContext(ctx, query, trackerID).Scan(
		&p.ID, &p.TrackerID, &p.Latitude, &p.Longitude, &p.ObservedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("latest position: %w", err)
	}
	return &p, nil
}
