// Package server exposes the intake pipeline and job store over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/ganbatte-hq/ganbatte/internal/config"
	"github.com/ganbatte-hq/ganbatte/internal/db"
	"github.com/ganbatte-hq/ganbatte/internal/intake"
	"github.com/ganbatte-hq/ganbatte/internal/metrics"
	"github.com/ganbatte-hq/ganbatte/internal/models"
)

// TurnProcessor runs one turn of the intake clarification loop.
type TurnProcessor interface {
	ProcessTurn(ctx context.Context, message string, state models.ConversationState, overrideField string) (intake.TurnResult, error)
}

// RouteEnricher resolves coordinates and trip metrics for finalized drafts.
type RouteEnricher interface {
	Enrich(ctx context.Context, legs []models.Leg) models.RouteMetrics
	GeocodeLegs(ctx context.Context, legs []models.Leg) []models.Leg
}

// JobStore is the persistence surface the handlers need.
type JobStore interface {
	Ping(ctx context.Context) error
	CreateJob(ctx context.Context, p db.CreateJobParams) (*models.DeliveryJob, error)
	GetJob(ctx context.Context, id string) (*models.DeliveryJob, error)
	ListJobs(ctx context.Context, status *models.JobStatus, limit int) ([]models.DeliveryJob, error)
	UpdateStatus(ctx context.Context, id string, status models.JobStatus) (*models.DeliveryJob, error)
	CountByStatus(ctx context.Context) (map[models.JobStatus]int, error)
}

// Server wires the pipeline, job store and sessions behind HTTP handlers.
type Server struct {
	cfg        config.Config
	controller TurnProcessor
	enricher   RouteEnricher
	store      JobStore
	collector  *metrics.Collector
	sessions   *SessionManager
	logger     *slog.Logger
}

// New creates a server with its own session manager.
func New(cfg config.Config, controller TurnProcessor, enricher RouteEnricher, store JobStore, collector *metrics.Collector, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:        cfg,
		controller: controller,
		enricher:   enricher,
		store:      store,
		collector:  collector,
		sessions:   NewSessionManager(),
		logger:     logger,
	}
}

// Sessions returns the session manager, e.g. for periodic pruning.
func (s *Server) Sessions() *SessionManager {
	return s.sessions
}

// Handler returns the routed HTTP handler with logging middleware applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /v1/intake/turn", s.handleTurn)
	mux.HandleFunc("GET /v1/jobs", s.handleListJobs)
	mux.HandleFunc("GET /v1/jobs/{id}", s.handleGetJob)
	mux.HandleFunc("POST /v1/jobs/{id}/status", s.handleUpdateStatus)
	mux.HandleFunc("GET /v1/stats", s.handleStats)
	mux.HandleFunc("GET /ws/jobs/{id}", s.handleWatchJob)

	return LoggingMiddleware(s.logger)(mux)
}

type turnRequest struct {
	SessionID     string `json:"session_id,omitempty"`
	Message       string `json:"message"`
	OverrideField string `json:"override_field,omitempty"`
}

// TurnResponse is the intake turn reply. Exactly one of Draft (clarification
// still pending) or Job (finalized and persisted) carries the outcome.
type TurnResponse struct {
	SessionID          string              `json:"session_id"`
	NeedsClarification bool                `json:"needs_clarification"`
	Field              string              `json:"field,omitempty"`
	Message            string              `json:"message,omitempty"`
	Draft              *models.DraftJob    `json:"draft,omitempty"`
	Job                *models.DeliveryJob `json:"job,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(r.Context()); err != nil {
		s.logger.Error("health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTurn(w http.ResponseWriter, r *http.Request) {
	var req turnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}
	if req.OverrideField != "" {
		switch req.OverrideField {
		case intake.FieldPickup, intake.FieldDropoff, intake.FieldDeadline:
		default:
			writeError(w, http.StatusBadRequest, "unknown override_field")
			return
		}
	}

	sessionID, state := s.sessions.GetOrCreate(req.SessionID, s.cfg.DefaultAddress)

	res, err := s.controller.ProcessTurn(r.Context(), req.Message, state, req.OverrideField)
	if err != nil {
		// Extraction failures are upstream model problems, not client errors.
		s.logger.Error("turn failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusBadGateway, "could not understand the request, please try again")
		return
	}

	state.Append("customer", req.Message)

	if res.NeedsClarification {
		state.Append("assistant", res.Message)
		state.LastConfirmed = res.Job
		s.sessions.Save(sessionID, state)

		writeJSON(w, http.StatusOK, TurnResponse{
			SessionID:          sessionID,
			NeedsClarification: true,
			Field:              res.Field,
			Message:            res.Message,
			Draft:              res.Job,
		})
		return
	}

	job, err := s.finalizeJob(r.Context(), sessionID, res.Job)
	if err != nil {
		s.logger.Error("finalize failed", "session_id", sessionID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save the job")
		return
	}
	s.sessions.Delete(sessionID)

	writeJSON(w, http.StatusOK, TurnResponse{
		SessionID: sessionID,
		Job:       job,
	})
}

// finalizeJob resolves coordinates, computes route metrics and the quote, and
// persists the job. Route failures degrade to a job without metrics.
func (s *Server) finalizeJob(ctx context.Context, sessionID string, draft *models.DraftJob) (*models.DeliveryJob, error) {
	legs := s.enricher.GeocodeLegs(ctx, []models.Leg{{
		Pickup:       draft.PickupResolved,
		Dropoff:      draft.DropoffResolved,
		PickupCoord:  draft.PickupCoord,
		DropoffCoord: draft.DropoffCoord,
	}})
	rm := s.enricher.Enrich(ctx, legs)

	return s.store.CreateJob(ctx, db.CreateJobParams{
		ID:              uuid.New().String()[:8],
		Parts:           draft.Parts,
		Pickup:          draft.PickupResolved,
		Dropoff:         draft.DropoffResolved,
		PickupCoord:     legs[0].PickupCoord,
		DropoffCoord:    legs[0].DropoffCoord,
		DeadlineISO:     draft.DeadlineISO,
		DeadlineDisplay: draft.DeadlineDisplay,
		DistanceMeters:  rm.DistanceMeters,
		DurationSeconds: rm.DurationSeconds,
		PriceCents:      s.quoteCents(rm.DistanceMeters),
		SessionID:       &sessionID,
	})
}

// quoteCents prices a job as base fee plus a per-kilometer rate. Without a
// route distance there is no quote.
func (s *Server) quoteCents(distanceMeters *int64) *int64 {
	if distanceMeters == nil {
		return nil
	}
	km := float64(*distanceMeters) / 1000.0
	price := s.cfg.BaseFeeCents + int64(math.Round(km*float64(s.cfg.PerKmCents)))
	return &price
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	var status *models.JobStatus
	if raw := r.URL.Query().Get("status"); raw != "" {
		parsed, ok := models.ParseJobStatus(raw)
		if !ok {
			writeError(w, http.StatusBadRequest, "unknown status")
			return
		}
		status = &parsed
	}

	jobs, err := s.store.ListJobs(r.Context(), status, limit)
	if err != nil {
		s.logger.Error("list jobs failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list jobs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	job, err := s.store.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("get job failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	status, ok := models.ParseJobStatus(req.Status)
	if !ok {
		writeError(w, http.StatusBadRequest, "unknown status")
		return
	}

	id := r.PathValue("id")
	current, err := s.store.GetJob(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		s.logger.Error("get job failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load job")
		return
	}
	if current.Status.Terminal() && status != current.Status {
		writeError(w, http.StatusConflict, "job is already "+string(current.Status))
		return
	}

	job, err := s.store.UpdateStatus(r.Context(), id, status)
	if err != nil {
		switch {
		case errors.Is(err, db.ErrNotFound):
			writeError(w, http.StatusNotFound, "job not found")
		case errors.Is(err, db.ErrInvalidTransition):
			writeError(w, http.StatusConflict, "invalid status transition")
		default:
			s.logger.Error("update status failed", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := s.store.CountByStatus(r.Context())
	if err != nil {
		s.logger.Error("count by status failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	resp := map[string]any{
		"jobs":     counts,
		"sessions": s.sessions.Len(),
	}
	if s.collector != nil {
		resp["operations"] = s.collector.Snapshot()
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
