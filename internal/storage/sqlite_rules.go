package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/snoutly/trackwatch/internal/models"
)

type sqliteRuleRepo struct {
	db *sql.DB
}

func (r *sqliteRuleRepo) Create(ctx context.Context, rule *models.ScheduledAlertRule) error {
	if err := rule.Recurrence.Validate(); err != nil {
		return fmt.Errorf("invalid recurrence: %w", err)
	}

	query := `
		INSERT INTO scheduled_alerts (id, user_id, tracker_id, title, message,
			schedule_kind, schedule_hour, schedule_minute, scheduled_date,
			day_of_week, day_of_month, is_active, last_triggered, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	rec := rule.Recurrence
	_, err := r.db.ExecContext(ctx, query,
		rule.ID, rule.UserID, rule.TrackerID, rule.Title, rule.Message,
		string(rec.Kind), rec.Hour, rec.Minute,
		nullString(rec.Date),
		nullInt(rec.Kind == models.ScheduleWeekly, int(rec.DayOfWeek)),
		nullInt(rec.Kind == models.ScheduleMonthly, rec.DayOfMonth),
		boolToInt(rule.Active), rule.LastTriggered,
		rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert scheduled alert rule: %w", err)
	}
	return nil
}

func (r *sqliteRuleRepo) GetByID(ctx context.Context, id string) (*models.ScheduledAlertRule, error) {
	query := ruleSelect + ` WHERE id = ?`
	return scanRule(r.db.QueryRowContext(ctx, query, id))
}

func (r *sqliteRuleRepo) ListActive(ctx context.Context) ([]*models.ScheduledAlertRule, error) {
	query := ruleSelect + ` WHERE is_active = 1`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active scheduled alert rules: %w", err)
	}
	defer rows.Close()

	var rules []*models.ScheduledAlertRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *sqliteRuleRepo) UpdateTrigger(ctx context.Context, ruleID string, lastTriggered time.Time, deactivate bool) error {
	query := `
		UPDATE scheduled_alerts
		SET last_triggered = ?, is_active = CASE WHEN ? THEN 0 ELSE is_active END, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		lastTriggered, boolToInt(deactivate), time.Now(), ruleID,
	)
	if err != nil {
		return fmt.Errorf("update rule trigger: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("rule %s: %w", ruleID, ErrNotFound)
	}
	return nil
}

const ruleSelect = `
	SELECT id, user_id, tracker_id, title, message,
		schedule_kind, schedule_hour, schedule_minute, scheduled_date,
		day_of_week, day_of_month, is_active, last_triggered, created_at, updated_at
	FROM scheduled_alerts
`

func scanRule(s scanner) (*models.ScheduledAlertRule, error) {
	var rule models.ScheduledAlertRule
	var kind string
	var date sql.NullString
	var dayOfWeek, dayOfMonth sql.NullInt64
	var active int
	var lastTriggered sql.NullTime
	err := s.Scan(
		&rule.ID, &rule.UserID, &rule.TrackerID, &rule.Title, &rule.Message,
		&kind, &rule.Recurrence.Hour, &rule.Recurrence.Minute, &date,
		&dayOfWeek, &dayOfMonth, &active, &lastTriggered,
		&rule.CreatedAt, &rule.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan scheduled alert rule: %w", err)
	}

	rule.Recurrence.Kind = models.ScheduleKind(kind)
	if date.Valid {
		rule.Recurrence.Date = date.String
	}
	// NULL maps below the valid weekday range so a weekly rule missing
	// its day fails Validate instead of reading as Sunday.
	rule.Recurrence.DayOfWeek = time.Weekday(-1)
	if dayOfWeek.Valid {
		rule.Recurrence.DayOfWeek = time.Weekday(dayOfWeek.Int64)
	}
	if dayOfMonth.Valid {
		rule.Recurrence.DayOfMonth = int(dayOfMonth.Int64)
	}
	rule.Active = active != 0
	if lastTriggered.Valid {
		t := lastTriggered.Time
		rule.LastTriggered = &t
	}
	return &rule, nil
}
