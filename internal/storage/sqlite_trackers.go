package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/snoutly/trackwatch/internal/models"
)

type sqliteTrackerRepo struct {
	db *sql.DB
}

func (r *sqliteTrackerRepo) Create(ctx context.Context, tracker *models.Tracker) error {
	query := `
		INSERT INTO trackers (id, user_id, name, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		tracker.ID, tracker.UserID, tracker.Name, boolToInt(tracker.Active),
		tracker.CreatedAt, tracker.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert tracker: %w", err)
	}
	return nil
}

func (r *sqliteTrackerRepo) GetByID(ctx context.Context, id string) (*models.Tracker, error) {
	query := `
		SELECT id, user_id, name, is_active, created_at, updated_at
		FROM trackers WHERE id = ?
	`
	var t models.Tracker
	var active int
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&t.ID, &t.UserID, &t.Name, &active, &t.CreatedAt, &t.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tracker: %w", err)
	}
	t.Active = active != 0
	return &t, nil
}

func (r *sqliteTrackerRepo) List(ctx context.Context) ([]*models.Tracker, error) {
	query := `
		SELECT id, user_id, name, is_active, created_at, updated_at
		FROM trackers ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list trackers: %w", err)
	}
	defer rows.Close()

	var trackers []*models.Tracker
	for rows.Next() {
		var t models.Tracker
		var active int
		if err := rows.Scan(&t.ID, &t.UserID, &t.Name, &active, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan tracker: %w", err)
		}
		t.Active = active != 0
		trackers = append(trackers, &t)
	}
	return trackers, rows.Err()
}
