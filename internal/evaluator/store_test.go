package evaluator

import (
	"context"
	"sync"
	"time"

	"github.com/snoutly/trackwatch/internal/models"
	"github.com/snoutly/trackwatch/internal/storage"
)

// fakeStore is an in-memory storage.Storage for evaluator tests. Error
// fields let individual tests inject failures per call or per item.
type fakeStore struct {
	mu sync.Mutex

	links    []*models.GeofenceLink
	linksErr error

	positions map[string]*models.TrackerPosition
	fences    map[string]*models.Geofence

	rules    []*models.ScheduledAlertRule
	rulesErr error

	alerts         []*models.Alert
	insertAlertErr error

	stateUpdates   map[string]models.ContainmentState
	updateStateErr map[string]error

	triggerUpdates map[string]triggerUpdate
	updateTrigErr  map[string]error
}

type triggerUpdate struct {
	lastTriggered time.Time
	deactivated   bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		positions:      make(map[string]*models.TrackerPosition),
		fences:         make(map[string]*models.Geofence),
		stateUpdates:   make(map[string]models.ContainmentState),
		updateStateErr: make(map[string]error),
		triggerUpdates: make(map[string]triggerUpdate),
		updateTrigErr:  make(map[string]error),
	}
}

func (f *fakeStore) Open() error    { return nil }
func (f *fakeStore) Close() error   { return nil }
func (f *fakeStore) Migrate() error { return nil }

func (f *fakeStore) Trackers() storage.TrackerRepository   { return nil }
func (f *fakeStore) Positions() storage.PositionRepository { return &fakePositionRepo{f} }
func (f *fakeStore) Geofences() storage.GeofenceRepository { return &fakeGeofenceRepo{f} }
func (f *fakeStore) Links() storage.LinkRepository         { return &fakeLinkRepo{f} }
func (f *fakeStore) Rules() storage.RuleRepository         { return &fakeRuleRepo{f} }
func (f *fakeStore) Alerts() storage.AlertRepository       { return &fakeAlertRepo{f} }

// alertsByKind counts collected alerts per kind.
func (f *fakeStore) alertsByKind(kind models.AlertKind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, a := range f.alerts {
		if a.Kind == kind {
			n++
		}
	}
	return n
}

type fakePositionRepo struct{ s *fakeStore }

func (r *fakePositionRepo) Insert(ctx context.Context, pos *models.TrackerPosition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.positions[pos.TrackerID] = pos
	return nil
}

func (r *fakePositionRepo) Latest(ctx context.Context, trackerID string) (*models.TrackerPosition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	pos, ok := r.s.positions[trackerID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return pos, nil
}

type fakeGeofenceRepo struct{ s *fakeStore }

func (r *fakeGeofenceRepo) Create(ctx context.Context, fence *models.Geofence) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.fences[fence.ID] = fence
	return nil
}

func (r *fakeGeofenceRepo) GetByID(ctx context.Context, id string) (*models.Geofence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	fence, ok := r.s.fences[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return fence, nil
}

func (r *fakeGeofenceRepo) List(ctx context.Context) ([]*models.Geofence, error) {
	return nil, nil
}

type fakeLinkRepo struct{ s *fakeStore }

func (r *fakeLinkRepo) Create(ctx context.Context, link *models.GeofenceLink) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.links = append(r.s.links, link)
	return nil
}

func (r *fakeLinkRepo) ListActive(ctx context.Context) ([]*models.GeofenceLink, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.linksErr != nil {
		return nil, r.s.linksErr
	}
	return r.s.links, nil
}

func (r *fakeLinkRepo) UpdateState(ctx context.Context, linkID string, state models.ContainmentState, observedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.updateStateErr[linkID]; err != nil {
		return err
	}
	for _, l := range r.s.links {
		if l.ID == linkID {
			// Same recency contract as the sqlite store: an older
			// observation loses, an equal or newer one applies.
			if observedAt.Before(l.StateObservedAt) {
				return nil
			}
			l.LastState = state
			l.StateObservedAt = observedAt
			r.s.stateUpdates[linkID] = state
		}
	}
	return nil
}

type fakeRuleRepo struct{ s *fakeStore }

func (r *fakeRuleRepo) Create(ctx context.Context, rule *models.ScheduledAlertRule) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.rules = append(r.s.rules, rule)
	return nil
}

func (r *fakeRuleRepo) GetByID(ctx context.Context, id string) (*models.ScheduledAlertRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rule := range r.s.rules {
		if rule.ID == id {
			return rule, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (r *fakeRuleRepo) ListActive(ctx context.Context) ([]*models.ScheduledAlertRule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.rulesErr != nil {
		return nil, r.s.rulesErr
	}
	var active []*models.ScheduledAlertRule
	for _, rule := range r.s.rules {
		if rule.Active {
			active = append(active, rule)
		}
	}
	return active, nil
}

func (r *fakeRuleRepo) UpdateTrigger(ctx context.Context, ruleID string, lastTriggered time.Time, deactivate bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.updateTrigErr[ruleID]; err != nil {
		return err
	}
	r.s.triggerUpdates[ruleID] = triggerUpdate{lastTriggered: lastTriggered, deactivated: deactivate}
	for _, rule := range r.s.rules {
		if rule.ID == ruleID {
			t := lastTriggered
			rule.LastTriggered = &t
			if deactivate {
				rule.Active = false
			}
		}
	}
	return nil
}

type fakeAlertRepo struct{ s *fakeStore }

func (r *fakeAlertRepo) Insert(ctx context.Context, alert *models.Alert) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.insertAlertErr != nil {
		return r.s.insertAlertErr
	}
	r.s.alerts = append(r.s.alerts, alert)
	return nil
}

func (r *fakeAlertRepo) ListRecent(ctx context.Context, limit int) ([]*models.Alert, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.alerts, nil
}

func (r *fakeAlertRepo) MarkRead(ctx context.Context, id string) error { return nil }

var _ storage.Storage = (*fakeStore)(nil)
