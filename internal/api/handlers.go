package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/snoutly/trackwatch/internal/models"
	"github.com/snoutly/trackwatch/internal/storage"
)

// handleHealth reports liveness and store reachability.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	if _, err := s.storage.Alerts().ListRecent(ctx, 1); err != nil {
		status = "degraded"
	}
	OK(w, map[string]string{"status": status})
}

// handleEvaluate runs one evaluation pass and returns the run summary.
// The optional "at" query parameter (RFC 3339) overrides the reference
// instant, which is useful for backfills and testing.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	if at := r.URL.Query().Get("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			JSONError(w, NewBadRequest("invalid 'at' timestamp, want RFC 3339"))
			return
		}
		now = parsed
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.config.EvaluateTimeout)
	defer cancel()

	summary := s.dispatcher.RunEvaluationPass(ctx, now)
	OK(w, summary)
}

// ingestPositionRequest is the position report payload.
type ingestPositionRequest struct {
	TrackerID  string    `json:"tracker_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ObservedAt time.Time `json:"observed_at"`
}

func (s *Server) handleIngestPosition(w http.ResponseWriter, r *http.Request) {
	var req ingestPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		JSONError(w, NewBadRequest("invalid JSON body"))
		return
	}
	if req.TrackerID == "" {
		JSONError(w, NewBadRequest("tracker_id is required"))
		return
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		JSONError(w, NewBadRequest("latitude must be -90..90"))
		return
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		JSONError(w, NewBadRequest("longitude must be -180..180"))
		return
	}
	if req.ObservedAt.IsZero() {
		req.ObservedAt = time.Now()
	}

	pos := &models.TrackerPosition{
		ID:         uuid.NewString(),
		TrackerID:  req.TrackerID,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		ObservedAt: req.ObservedAt,
	}
	if err := s.storage.Positions().Insert(r.Context(), pos); err != nil {
		s.log.Error().Err(err).Str("tracker_id", req.TrackerID).Msg("position ingest failed")
		JSONError(w, ErrInternalServer)
		return
	}
	Created(w, pos)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 500 {
			JSONError(w, NewBadRequest("limit must be 1..500"))
			return
		}
		limit = parsed
	}

	alerts, err := s.storage.Alerts().ListRecent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list alerts failed")
		JSONError(w, ErrInternalServer)
		return
	}
	if alerts == nil {
		alerts = []*models.Alert{}
	}
	OK(w, alerts)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	err := s.storage.Alerts().MarkRead(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		JSONError(w, ErrNotFound)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Str("alert_id", id).Msg("mark alert read failed")
		JSONError(w, ErrInternalServer)
		return
	}
	OK(w, map[string]string{"id": id})
}
