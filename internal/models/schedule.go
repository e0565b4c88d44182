package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ScheduleKind identifies the recurrence pattern of a scheduled alert rule.
type ScheduleKind string

const (
	ScheduleOneTime ScheduleKind = "one_time"
	ScheduleDaily   ScheduleKind = "daily"
	ScheduleWeekly  ScheduleKind = "weekly"
	ScheduleMonthly ScheduleKind = "monthly"
)

// recurrenceDateLayout is the calendar date format for one_time rules.
const recurrenceDateLayout = "2006-01-02"

// Recurrence is a tagged variant: Kind selects which of the optional
// fields are meaningful. Hour and Minute apply to every kind.
type Recurrence struct {
	Kind   ScheduleKind `json:"kind"`
	Hour   int          `json:"hour"`
	Minute int          `json:"minute"`

	// Date is the YYYY-MM-DD calendar date; one_time only.
	Date string `json:"date,omitempty"`
	// DayOfWeek is 0-6 for Sunday-Saturday; weekly only.
	DayOfWeek time.Weekday `json:"day_of_week,omitempty"`
	// DayOfMonth is 1-31; monthly only.
	DayOfMonth int `json:"day_of_month,omitempty"`
}

// Validate checks that the recurrence carries the fields its kind requires.
func (r Recurrence) Validate() error {
	if r.Hour < 0 || r.Hour > 23 {
		return fmt.Errorf("hour must be 0-23, got %d", r.Hour)
	}
	if r.Minute < 0 || r.Minute > 59 {
		return fmt.Errorf("minute must be 0-59, got %d", r.Minute)
	}

	switch r.Kind {
	case ScheduleOneTime:
		if _, err := time.Parse(recurrenceDateLayout, r.Date); err != nil {
			return fmt.Errorf("one_time rule requires a valid date: %w", err)
		}
	case ScheduleDaily:
		// No extra fields.
	case ScheduleWeekly:
		if r.DayOfWeek < time.Sunday || r.DayOfWeek > time.Saturday {
			return fmt.Errorf("weekly rule requires day_of_week 0-6, got %d", r.DayOfWeek)
		}
	case ScheduleMonthly:
		if r.DayOfMonth < 1 || r.DayOfMonth > 31 {
			return fmt.Errorf("monthly rule requires day_of_month 1-31, got %d", r.DayOfMonth)
		}
	default:
		return fmt.Errorf("invalid schedule kind: %q", r.Kind)
	}
	return nil
}

// Matches reports whether now falls on the recurrence. The time-of-day
// match is minute-exact; callers are expected to evaluate at least once
// per minute to catch the matching minute.
func (r Recurrence) Matches(now time.Time) bool {
	if now.Hour() != r.Hour || now.Minute() != r.Minute {
		return false
	}

	switch r.Kind {
	case ScheduleOneTime:
		return now.Format(recurrenceDateLayout) == r.Date
	case ScheduleDaily:
		return true
	case ScheduleWeekly:
		return now.Weekday() == r.DayOfWeek
	case ScheduleMonthly:
		return now.Day() == r.DayOfMonth
	default:
		return false
	}
}

// ScheduledAlertRule is a user-defined, time-based rule that produces a
// notification at matching instants. The evaluator mutates only
// LastTriggered (and Active, for one_time rules after they fire).
type ScheduledAlertRule struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	TrackerID     string     `json:"tracker_id"`
	Title         string     `json:"title"`
	Message       string     `json:"message"`
	Recurrence    Recurrence `json:"recurrence"`
	Active        bool       `json:"active"`
	LastTriggered *time.Time `json:"last_triggered,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// NewScheduledAlertRule creates an active rule with initialized ID and
// timestamps.
func NewScheduledAlertRule(userID, trackerID, title, message string, rec Recurrence) *ScheduledAlertRule {
	now := time.Now()
	return &ScheduledAlertRule{
		ID:         uuid.NewString(),
		UserID:     userID,
		TrackerID:  trackerID,
		Title:      title,
		Message:    message,
		Recurrence: rec,
		Active:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
