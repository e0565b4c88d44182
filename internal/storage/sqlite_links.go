package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/snoutly/trackwatch/internal/models"
)

type sqliteLinkRepo struct {
	db *sql.DB
}

func (r *sqliteLinkRepo) Create(ctx context.Context, link *models.GeofenceLink) error {
	query := `
		INSERT INTO geofence_links (id, tracker_id, geofence_id, alert_on_enter,
			alert_on_exit, last_state, state_observed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	var observedAt any
	if !link.StateObservedAt.IsZero() {
		observedAt = link.StateObservedAt
	}
	_, err := r.db.ExecContext(ctx, query,
		link.ID, link.TrackerID, link.GeofenceID,
		boolToInt(link.AlertOnEnter), boolToInt(link.AlertOnExit),
		string(link.LastState), observedAt,
		link.CreatedAt, link.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert geofence link: %w", err)
	}
	return nil
}

func (r *sqliteLinkRepo) ListActive(ctx context.Context) ([]*models.GeofenceLink, error) {
	// Active means both ends of the link are active.
	query := `
		SELECT l.id, l.tracker_id, l.geofence_id, l.alert_on_enter, l.alert_on_exit,
			l.last_state, l.state_observed_at, l.created_at, l.updated_at
		FROM geofence_links l
		JOIN trackers t ON t.id = l.tracker_id
		JOIN geofences g ON g.id = l.geofence_id
		WHERE t.is_active = 1 AND g.is_active = 1
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active geofence links: %w", err)
	}
	defer rows.Close()

	var links []*models.GeofenceLink
	for rows.Next() {
		var l models.GeofenceLink
		var enter, exit int
		var state string
		var observedAt sql.NullTime
		err := rows.Scan(
			&l.ID, &l.TrackerID, &l.GeofenceID, &enter, &exit,
			&state, &observedAt, &l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan geofence link: %w", err)
		}
		l.AlertOnEnter = enter != 0
		l.AlertOnExit = exit != 0
		l.LastState = models.ParseContainmentState(state)
		if observedAt.Valid {
			l.StateObservedAt = observedAt.Time
		}
		links = append(links, &l)
	}
	return links, rows.Err()
}

func (r *sqliteLinkRepo) UpdateState(ctx context.Context, linkID string, state models.ContainmentState, observedAt time.Time) error {
	// Conditional on observation recency: a write based on an older
	// position than the one already recorded loses, so an overlapping
	// slow run cannot clobber a fresher result. Equal timestamps apply:
	// containment can change without a fresher position (a geofence
	// edit), and that transition still has to be recorded.
	query := `
		UPDATE geofence_links
		SET last_state = ?, state_observed_at = ?, updated_at = ?
		WHERE id = ? AND (state_observed_at IS NULL OR state_observed_at <= ?)
	`
	result, err := r.db.ExecContext(ctx, query,
		string(state), observedAt, time.Now(), linkID, observedAt,
	)
	if err != nil {
		return fmt.Errorf("update link state: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	// Zero rows is either a missing link or a stale write; only the
	// former is an error.
	var exists int
	err = r.db.QueryRowContext(ctx, "SELECT COUNT(1) FROM geofence_links WHERE id = ?", linkID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check link exists: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("link %s: %w", linkID, ErrNotFound)
	}
	return nil
}
