package evaluator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/snoutly/trackwatch/internal/models"
)

func dailyRule(id string) *models.ScheduledAlertRule {
	return &models.ScheduledAlertRule{
		ID:        id,
		UserID:    "user-1",
		TrackerID: "tracker-1",
		Title:     "Walk time",
		Message:   "Time for a walk",
		Recurrence: models.Recurrence{
			Kind: models.ScheduleDaily, Hour: 9, Minute: 0,
		},
		Active: true,
	}
}

func newScheduleTestEnv() (*fakeStore, *ScheduleEvaluator) {
	store := newFakeStore()
	return store, NewScheduleEvaluator(store, 2, 0, zerolog.Nop())
}

func TestScheduleExactMinuteMatch(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"exact minute", time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC), 1},
		{"within matching minute", time.Date(2025, 6, 1, 9, 0, 45, 0, time.UTC), 1},
		{"one minute late", time.Date(2025, 6, 1, 9, 1, 0, 0, time.UTC), 0},
		{"one minute early", time.Date(2025, 6, 1, 8, 59, 0, 0, time.UTC), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, eval := newScheduleTestEnv()
			store.rules = []*models.ScheduledAlertRule{dailyRule("rule-1")}

			res, err := eval.EvaluateAt(context.Background(), tt.at)
			if err != nil {
				t.Fatalf("EvaluateAt: %v", err)
			}
			if res.Triggered != tt.want {
				t.Errorf("triggered = %d, want %d", res.Triggered, tt.want)
			}
		})
	}
}

func TestScheduleSuppressionWindow(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		lastTriggered time.Duration // before now
		want          int
	}{
		{"fired 30 minutes ago", 30 * time.Minute, 0},
		{"fired 90 minutes ago", 90 * time.Minute, 1},
		{"fired exactly an hour ago", time.Hour, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, eval := newScheduleTestEnv()
			rule := dailyRule("rule-1")
			last := now.Add(-tt.lastTriggered)
			rule.LastTriggered = &last
			store.rules = []*models.ScheduledAlertRule{rule}

			res, err := eval.EvaluateAt(context.Background(), now)
			if err != nil {
				t.Fatalf("EvaluateAt: %v", err)
			}
			if res.Triggered != tt.want {
				t.Errorf("triggered = %d, want %d", res.Triggered, tt.want)
			}
		})
	}
}

func TestScheduleSuppressionWindowTunable(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store, eval := newScheduleTestEnv()
	eval.SetSuppressionWindow(10 * time.Minute)

	rule := dailyRule("rule-1")
	last := now.Add(-30 * time.Minute)
	rule.LastTriggered = &last
	store.rules = []*models.ScheduledAlertRule{rule}

	res, _ := eval.EvaluateAt(context.Background(), now)
	if res.Triggered != 1 {
		t.Errorf("triggered = %d with 10m window and 30m-old firing, want 1", res.Triggered)
	}
}

func TestScheduleOneTimeExhaustion(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store, eval := newScheduleTestEnv()

	rule := dailyRule("rule-1")
	rule.Recurrence = models.Recurrence{
		Kind: models.ScheduleOneTime, Hour: 9, Minute: 0, Date: "2025-06-01",
	}
	store.rules = []*models.ScheduledAlertRule{rule}

	// First qualifying pass fires and deactivates.
	res, err := eval.EvaluateAt(context.Background(), now)
	if err != nil {
		t.Fatalf("EvaluateAt: %v", err)
	}
	if res.Triggered != 1 {
		t.Fatalf("first pass triggered = %d, want 1", res.Triggered)
	}
	upd, ok := store.triggerUpdates["rule-1"]
	if !ok || !upd.deactivated {
		t.Fatalf("one_time rule not deactivated after firing: %+v", upd)
	}

	// Second pass at the same matching instant produces nothing: the
	// rule is no longer active.
	res, err = eval.EvaluateAt(context.Background(), now)
	if err != nil {
		t.Fatalf("EvaluateAt: %v", err)
	}
	if res.Triggered != 0 {
		t.Errorf("second pass triggered = %d, want 0", res.Triggered)
	}
	if len(store.alerts) != 1 {
		t.Errorf("total alerts = %d, want 1", len(store.alerts))
	}
}

func TestScheduleWeeklyAndMonthly(t *testing.T) {
	// Sunday, June 1st 2025.
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

	weekly := dailyRule("weekly")
	weekly.Recurrence = models.Recurrence{Kind: models.ScheduleWeekly, Hour: 9, Minute: 0, DayOfWeek: time.Sunday}
	wrongDay := dailyRule("wrong-day")
	wrongDay.Recurrence = models.Recurrence{Kind: models.ScheduleWeekly, Hour: 9, Minute: 0, DayOfWeek: time.Wednesday}
	monthly := dailyRule("monthly")
	monthly.Recurrence = models.Recurrence{Kind: models.ScheduleMonthly, Hour: 9, Minute: 0, DayOfMonth: 1}

	store, eval := newScheduleTestEnv()
	store.rules = []*models.ScheduledAlertRule{weekly, wrongDay, monthly}

	res, err := eval.EvaluateAt(context.Background(), now)
	if err != nil {
		t.Fatalf("EvaluateAt: %v", err)
	}
	if res.Triggered != 2 {
		t.Errorf("triggered = %d, want 2 (weekly sunday + monthly 1st)", res.Triggered)
	}
	if _, fired := store.triggerUpdates["wrong-day"]; fired {
		t.Error("wednesday rule fired on a sunday")
	}
}

func TestScheduleMalformedRuleIsItemError(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store, eval := newScheduleTestEnv()

	bad := dailyRule("bad")
	bad.Recurrence = models.Recurrence{Kind: models.ScheduleMonthly, Hour: 9, Minute: 0} // missing day_of_month
	good := dailyRule("good")
	store.rules = []*models.ScheduledAlertRule{bad, good}

	res, err := eval.EvaluateAt(context.Background(), now)
	if err != nil {
		t.Fatalf("EvaluateAt: %v", err)
	}
	if res.Triggered != 1 {
		t.Errorf("triggered = %d, want 1 (the valid rule)", res.Triggered)
	}
	if len(res.Errors) != 1 || res.Errors[0].ID != "bad" {
		t.Errorf("errors = %+v, want one for the malformed rule", res.Errors)
	}
}

func TestSchedulePartialFailureIsolation(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	store, eval := newScheduleTestEnv()

	store.rules = []*models.ScheduledAlertRule{
		dailyRule("rule-1"), dailyRule("rule-2"), dailyRule("rule-3"),
	}
	store.updateTrigErr["rule-2"] = errors.New("write failed")

	res, err := eval.EvaluateAt(context.Background(), now)
	if err != nil {
		t.Fatalf("EvaluateAt: %v", err)
	}
	if res.Triggered != 2 {
		t.Errorf("triggered = %d, want 2", res.Triggered)
	}
	if len(res.Errors) != 1 || res.Errors[0].ID != "rule-2" {
		t.Errorf("errors = %+v, want one for rule-2", res.Errors)
	}
}

func TestScheduleListingFailure(t *testing.T) {
	store, eval := newScheduleTestEnv()
	store.rulesErr = errors.New("store unavailable")

	if _, err := eval.EvaluateAt(context.Background(), time.Now()); err == nil {
		t.Fatal("expected listing error")
	}
}
