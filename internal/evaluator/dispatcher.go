package evaluator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/snoutly/trackwatch/internal/logging"
	"github.com/snoutly/trackwatch/internal/metrics"
	"github.com/snoutly/trackwatch/internal/storage"
)

// Options configures the evaluation engine.
type Options struct {
	// Workers bounds per-item fan-out within each evaluator.
	Workers int
	// SuppressionWindow is the minimum interval between two firings of
	// the same scheduled rule. Zero means DefaultSuppressionWindow.
	SuppressionWindow time.Duration
}

// Dispatcher invokes both evaluators and aggregates their results into
// a single run summary. It performs no business logic of its own.
type Dispatcher struct {
	geofence *GeofenceEvaluator
	schedule *ScheduleEvaluator
	log      zerolog.Logger
}

// NewDispatcher builds the engine on top of the given store.
func NewDispatcher(store storage.Storage, opts Options, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		geofence: NewGeofenceEvaluator(store, opts.Workers, log),
		schedule: NewScheduleEvaluator(store, opts.Workers, opts.SuppressionWindow, log),
		log:      logging.Component(log, "dispatcher"),
	}
}

// SetSuppressionWindow retunes the schedule evaluator's suppression
// window at runtime.
func (d *Dispatcher) SetSuppressionWindow(w time.Duration) {
	d.schedule.SetSuppressionWindow(w)
}

// RunEvaluationPass runs both evaluators concurrently (they share no
// mutable state) and returns the aggregated summary. No failure escapes
// as an error: listing failures, per-item failures, and even a panic in
// one evaluator all land in the summary's error lists, and one
// evaluator's failure never prevents the other from completing.
func (d *Dispatcher) RunEvaluationPass(ctx context.Context, now time.Time) *RunSummary {
	start := time.Now()
	summary := &RunSummary{
		Timestamp:      now,
		GeofenceErrors: []string{},
		ScheduleErrors: []string{},
	}

	var g errgroup.Group
	g.Go(func() error {
		defer recoverInto(&summary.GeofenceErrors)
		res, err := d.geofence.EvaluateAt(ctx, now)
		if err != nil {
			// Store unavailable: this evaluator had nothing to iterate.
			summary.GeofenceErrors = append(summary.GeofenceErrors, err.Error())
			return nil
		}
		summary.GeofenceTriggered = res.Triggered
		summary.GeofenceErrors = append(summary.GeofenceErrors, errorStrings(res.Errors)...)
		return nil
	})
	g.Go(func() error {
		defer recoverInto(&summary.ScheduleErrors)
		res, err := d.schedule.EvaluateAt(ctx, now)
		if err != nil {
			summary.ScheduleErrors = append(summary.ScheduleErrors, err.Error())
			return nil
		}
		summary.ScheduleTriggered = res.Triggered
		summary.ScheduleErrors = append(summary.ScheduleErrors, errorStrings(res.Errors)...)
		return nil
	})
	g.Wait()

	metrics.EvaluationRunsTotal.Inc()
	metrics.EvaluationRunDuration.Observe(time.Since(start).Seconds())

	d.log.Info().
		Time("at", now).
		Int("geofence_triggered", summary.GeofenceTriggered).
		Int("geofence_errors", len(summary.GeofenceErrors)).
		Int("schedule_triggered", summary.ScheduleTriggered).
		Int("schedule_errors", len(summary.ScheduleErrors)).
		Dur("took", time.Since(start)).
		Msg("evaluation pass complete")

	return summary
}

// recoverInto converts an evaluator panic into an entry in its error
// list so the pass always returns a summary.
func recoverInto(errs *[]string) {
	if r := recover(); r != nil {
		*errs = append(*errs, fmt.Sprintf("evaluator panic: %v", r))
	}
}
