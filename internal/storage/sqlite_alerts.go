package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/snoutly/trackwatch/internal/models"
)

type sqliteAlertRepo struct {
	db *sql.DB
}

func (r *sqliteAlertRepo) Insert(ctx context.Context, alert *models.Alert) error {
	var metadataJSON any
	if len(alert.Metadata) > 0 {
		data, err := json.Marshal(alert.Metadata)
		if err != nil {
			return fmt.Errorf("marshal metadata: %w", err)
		}
		metadataJSON = string(data)
	}

	query := `
		INSERT INTO alerts (id, user_id, tracker_id, kind, title, message,
			metadata_json, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		alert.ID, alert.UserID, alert.TrackerID, string(alert.Kind),
		alert.Title, alert.Message, metadataJSON,
		boolToInt(alert.IsRead), alert.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	return nil
}

func (r *sqliteAlertRepo) ListRecent(ctx context.Context, limit int) ([]*models.Alert, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, user_id, tracker_id, kind, title, message, metadata_json, is_read, created_at
		FROM alerts ORDER BY created_at DESC LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*models.Alert
	for rows.Next() {
		var a models.Alert
		var kind string
		var metadataJSON sql.NullString
		var isRead int
		err := rows.Scan(
			&a.ID, &a.UserID, &a.TrackerID, &kind, &a.Title, &a.Message,
			&metadataJSON, &isRead, &a.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		a.Kind = models.AlertKind(kind)
		a.IsRead = isRead != 0
		if metadataJSON.Valid {
			if err := json.Unmarshal([]byte(metadataJSON.String), &a.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal metadata: %w", err)
			}
		}
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

func (r *sqliteAlertRepo) MarkRead(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "UPDATE alerts SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("mark alert read: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("alert %s: %w", id, ErrNotFound)
	}
	return nil
}
