package evaluator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/snoutly/trackwatch/internal/geo"
	"github.com/snoutly/trackwatch/internal/metrics"
	"github.com/snoutly/trackwatch/internal/models"
	"github.com/snoutly/trackwatch/internal/storage"
)

// GeofenceEvaluator raises alerts on containment transitions: for every
// active tracker-to-geofence link it compares the tracker's current
// containment against the link's recorded state and alerts on
// enter/exit, recording the new state so the next pass stays quiet
// while nothing changes.
type GeofenceEvaluator struct {
	store   storage.Storage
	workers int
	log     zerolog.Logger
}

// NewGeofenceEvaluator creates a geofence evaluator with the given
// fan-out bound.
func NewGeofenceEvaluator(store storage.Storage, workers int, log zerolog.Logger) *GeofenceEvaluator {
	return &GeofenceEvaluator{
		store:   store,
		workers: workers,
		log:     log.With().Str("evaluator", "geofence").Logger(),
	}
}

// EvaluateAt runs one pass over all active links at the reference
// instant now. A non-nil error means the listing call itself failed and
// there was nothing to iterate; per-link failures land in the result.
func (e *GeofenceEvaluator) EvaluateAt(ctx context.Context, now time.Time) (*Result, error) {
	links, err := e.store.Links().ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list active geofence links: %w", err)
	}

	res := &Result{}
	var mu sync.Mutex

	p := newPool(e.workers)
	p.start(ctx)
	for _, link := range links {
		link := link
		err := p.submit(ctx, func() {
			metrics.ItemsEvaluatedTotal.WithLabelValues("geofence").Inc()
			triggered, err := e.evaluateLink(ctx, link, now)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				e.log.Warn().Str("link_id", link.ID).Err(err).Msg("link evaluation failed")
				metrics.ItemErrorsTotal.WithLabelValues("geofence").Inc()
				res.Errors = append(res.Errors, ItemError{ID: link.ID, Err: err})
				return
			}
			res.Triggered += triggered
		})
		if err != nil {
			// Canceled: stop issuing new work, let in-flight items finish.
			break
		}
	}
	p.close()

	return res, nil
}

// evaluateLink evaluates a single link and returns the number of alerts
// it emitted (0 or 1).
func (e *GeofenceEvaluator) evaluateLink(ctx context.Context, link *models.GeofenceLink, now time.Time) (int, error) {
	pos, err := e.store.Positions().Latest(ctx, link.TrackerID)
	if errors.Is(err, storage.ErrNotFound) {
		// Tracker has never reported; nothing to evaluate.
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("latest position: %w", err)
	}

	fence, err := e.store.Geofences().GetByID(ctx, link.GeofenceID)
	if err != nil {
		return 0, fmt.Errorf("load geofence: %w", err)
	}

	state := models.ContainmentOutside
	if geo.Inside(pos, fence) {
		state = models.ContainmentInside
	}

	if state == link.LastState {
		// No transition; the recorded state already reflects this pass.
		return 0, nil
	}

	var alert *models.Alert
	switch {
	case link.LastState == models.ContainmentUnknown:
		// First observation establishes the baseline without alerting,
		// so bootstrap never produces an alert storm.
	case state == models.ContainmentInside && link.AlertOnEnter:
		alert = models.NewAlert(fence.UserID, link.TrackerID, models.AlertGeofenceEnter,
			"Geofence entered",
			fmt.Sprintf("Tracker entered %q", fence.Name), now)
	case state == models.ContainmentOutside && link.AlertOnExit:
		alert = models.NewAlert(fence.UserID, link.TrackerID, models.AlertGeofenceExit,
			"Geofence exited",
			fmt.Sprintf("Tracker left %q", fence.Name), now)
	}

	if alert != nil {
		alert.Metadata["link_id"] = link.ID
		alert.Metadata["geofence_id"] = fence.ID
		if err := e.store.Alerts().Insert(ctx, alert); err != nil {
			// State is deliberately not updated on failure, so the
			// transition is re-detected on the next pass.
			return 0, fmt.Errorf("insert alert: %w", err)
		}
	}

	if err := e.store.Links().UpdateState(ctx, link.ID, state, pos.ObservedAt); err != nil {
		return 0, fmt.Errorf("update link state: %w", err)
	}

	if alert == nil {
		return 0, nil
	}
	metrics.AlertsTriggeredTotal.WithLabelValues(string(alert.Kind)).Inc()
	e.log.Info().
		Str("link_id", link.ID).
		Str("kind", string(alert.Kind)).
		Str("geofence", fence.Name).
		Msg("geofence alert triggered")
	return 1, nil
}
