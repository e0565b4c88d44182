package evaluator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/snoutly/trackwatch/internal/metrics"
	"github.com/snoutly/trackwatch/internal/models"
	"github.com/snoutly/trackwatch/internal/storage"
)

// DefaultSuppressionWindow is the minimum interval between two firings
// of the same rule. It tolerates re-runs within the same matching
// minute and clock skew across invocations.
const DefaultSuppressionWindow = time.Hour

// ScheduleEvaluator fires scheduled alert rules whose recurrence
// matches the pass's reference instant.
type ScheduleEvaluator struct {
	store   storage.Storage
	workers int
	log     zerolog.Logger

	// suppression holds the window as nanoseconds so it can be retuned
	// at runtime by the config watcher.
	suppression atomic.Int64
}

// NewScheduleEvaluator creates a schedule evaluator. A zero suppression
// window falls back to DefaultSuppressionWindow.
func NewScheduleEvaluator(store storage.Storage, workers int, suppression time.Duration, log zerolog.Logger) *ScheduleEvaluator {
	e := &ScheduleEvaluator{
		store:   store,
		workers: workers,
		log:     log.With().Str("evaluator", "schedule").Logger(),
	}
	e.SetSuppressionWindow(suppression)
	return e
}

// SuppressionWindow returns the current suppression window.
func (e *ScheduleEvaluator) SuppressionWindow() time.Duration {
	return time.Duration(e.suppression.Load())
}

// SetSuppressionWindow retunes the suppression window; non-positive
// values restore the default.
func (e *ScheduleEvaluator) SetSuppressionWindow(d time.Duration) {
	if d <= 0 {
		d = DefaultSuppressionWindow
	}
	e.suppression.Store(int64(d))
}

// EvaluateAt runs one pass over all active rules at the reference
// instant now. Now is sampled once by the caller, never per rule, so
// every rule sees the same evaluation snapshot.
func (e *ScheduleEvaluator) EvaluateAt(ctx context.Context, now time.Time) (*Result, error) {
	rules, err := e.store.Rules().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active scheduled alert rules: %w", err)
	}

	res := &Result{}
	var mu sync.Mutex

	p := newPool(e.workers)
	p.start(ctx)
	for _, rule := range rules {
		rule := rule
		err := p.submit(ctx, func() {
			metrics.ItemsEvaluatedTotal.WithLabelValues("schedule").Inc()
			triggered, err := e.evaluateRule(ctx, rule, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.log.Warn().Str("rule_id", rule.ID).Err(err).Msg("rule evaluation failed")
				metrics.ItemErrorsTotal.WithLabelValues("schedule").Inc()
				res.Errors = append(res.Errors, ItemError{ID: rule.ID, Err: err})
				return
			}
			res.Triggered += triggered
		})
		if err != nil {
			break
		}
	}
	p.close()

	return res, nil
}

// evaluateRule evaluates a single rule and returns the number of alerts
// it emitted (0 or 1).
func (e *ScheduleEvaluator) evaluateRule(ctx context.Context, rule *models.ScheduledAlertRule, now time.Time) (int, error) {
	if err := rule.Recurrence.Validate(); err != nil {
		return 0, fmt.Errorf("malformed rule: %w", err)
	}

	if !rule.Recurrence.Matches(now) {
		return 0, nil
	}

	// Suppression window: the sole duplicate-prevention mechanism.
	// Applied even though the time-of-day match is minute-exact, to
	// tolerate re-runs within the same matching minute.
	if rule.LastTriggered != nil && now.Sub(*rule.LastTriggered) < e.SuppressionWindow() {
		return 0, nil
	}

	alert := models.NewAlert(rule.UserID, rule.TrackerID, models.AlertScheduled, rule.Title, rule.Message, now)
	alert.Metadata["schedule_id"] = rule.ID
	alert.Metadata["schedule_kind"] = string(rule.Recurrence.Kind)
	if err := e.store.Alerts().Insert(ctx, alert); err != nil {
		return 0, fmt.Errorf("insert alert: %w", err)
	}

	// A one_time rule fires at most once, ever.
	deactivate := rule.Recurrence.Kind == models.ScheduleOneTime
	if err := e.store.Rules().UpdateTrigger(ctx, rule.ID, now, deactivate); err != nil {
		return 0, fmt.Errorf("update trigger bookkeeping: %w", err)
	}

	metrics.AlertsTriggeredTotal.WithLabelValues(string(models.AlertScheduled)).Inc()
	e.log.Info().
		Str("rule_id", rule.ID).
		Str("kind", string(rule.Recurrence.Kind)).
		Str("title", rule.Title).
		Msg("scheduled alert triggered")
	return 1, nil
}
