package psod

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/logger"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
)

const maxRequestBody = 1 << 20

type HTTPServer struct {
	router   chi.Router
	store    *RunStore
	archive  Archive
	Executor *RunExecutor
}

// NewHTTPServer builds the HTTP API. archive may be nil, in which case the
// archive endpoint reports 404.
func NewHTTPServer(store *RunStore, executor *RunExecutor, archive Archive) *HTTPServer {
	s := &HTTPServer{
		router:   chi.NewRouter(),
		store:    store,
		archive:  archive,
		Executor: executor,
	}

	r := s.router
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	r.Route("/v1/runs", func(r chi.Router) {
		r.Post("/", s.handleCreateRun)
		r.Get("/", s.handleListRuns)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetRun)
			r.Post("/start", s.handleStartRun)
			r.Post("/stop", s.handleStopRun)
			r.Get("/metrics", s.handleGetRunMetrics)
			r.Get("/metrics/series", s.handleSeries)
		})
	})
	r.Get("/v1/archive", s.handleListArchive)
	r.Get("/v1/archive/{id}", s.handleGetArchived)

	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.router
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleCreateRun handles POST /v1/runs. JSON bodies carry
// {"run_id": ..., "params": {...}}; YAML bodies are the params document
// itself, with the run ID taken from the run_id query parameter.
func (s *HTTPServer) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "failed to read request body: "+err.Error())
		return
	}

	runID := r.URL.Query().Get("run_id")
	var params *config.Params
	if isYAML(r.Header.Get("Content-Type")) {
		params, err = config.ParseParamsYAML(body)
	} else {
		var req struct {
			RunID  string          `json:"run_id,omitempty"`
			Params json.RawMessage `json:"params"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
		if len(req.Params) == 0 {
			s.writeError(w, http.StatusBadRequest, "params is required")
			return
		}
		if req.RunID != "" {
			runID = req.RunID
		}
		params, err = config.ParseParamsJSON(req.Params)
	}
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, err := s.store.Create(runID, params)
	if err != nil {
		switch {
		case errors.Is(err, ErrRunExists):
			s.writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, ErrInvalidRunID):
			s.writeError(w, http.StatusBadRequest, err.Error())
		default:
			s.writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	logger.Info("run created (HTTP)", "run_id", rec.Run.ID, "objective", params.Objective)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"run":    rec.Run,
		"params": rec.Params,
	})
}

// handleListRuns handles GET /v1/runs with pagination and filtering
func (s *HTTPServer) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = min(parsed, 1000)
		}
	}
	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		if parsed, err := strconv.Atoi(offsetStr); err == nil && parsed >= 0 {
			offset = parsed
		}
	}
	status := models.RunStatus(r.URL.Query().Get("status"))

	recs := s.store.List(limit, offset, status)
	runs := make([]*models.Run, 0, len(recs))
	for _, rec := range recs {
		runs = append(runs, rec.Run)
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"runs":   runs,
		"limit":  limit,
		"offset": offset,
	})
}

func (s *HTTPServer) handleGetRun(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.store.Get(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run":    rec.Run,
		"params": rec.Params,
	})
}

func (s *HTTPServer) handleStartRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	updated, err := s.Executor.Start(runID)
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	logger.Info("run started (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{"run": updated.Run})
}

func (s *HTTPServer) handleStopRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	updated, err := s.Executor.Stop(runID)
	if err != nil {
		s.writeRunError(w, err)
		return
	}
	logger.Info("run cancelled (HTTP)", "run_id", runID)
	s.writeJSON(w, http.StatusOK, map[string]any{"run": updated.Run})
}

// handleGetRunMetrics returns the aggregated metrics of a finished run, or a
// live aggregation of what has been recorded so far.
func (s *HTTPServer) handleGetRunMetrics(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	rm := rec.Run.Metrics
	if rm == nil {
		if rec.Run.Status == models.RunStatusPending {
			s.writeError(w, http.StatusPreconditionFailed, "metrics not available")
			return
		}
		rm = metrics.ConvertToRunMetrics(rec.Collector, metrics.CreateRunLabels(runID))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":  runID,
		"status":  rec.Run.Status,
		"metrics": rm,
	})
}

// handleSeries handles GET /v1/runs/{id}/metrics/series?metric=best_objective
func (s *HTTPServer) handleSeries(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "id")
	rec, ok := s.store.Get(runID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "run not found")
		return
	}
	name := r.URL.Query().Get("metric")
	if name == "" {
		name = metrics.MetricBestObjective
	}
	points := rec.Collector.GetSeries(name, metrics.CreateRunLabels(runID))
	if points == nil {
		points = []*models.MetricPoint{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id": runID,
		"metric": name,
		"points": points,
	})
}

func (s *HTTPServer) handleListArchive(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeError(w, http.StatusNotFound, "archive is disabled")
		return
	}
	limit := 50
	if parsed, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && parsed > 0 {
		limit = min(parsed, 1000)
	}
	runs, err := s.archive.List(r.Context(), limit)
	if err != nil {
		logger.Error("failed to list archive", "error", err)
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *HTTPServer) handleGetArchived(w http.ResponseWriter, r *http.Request) {
	if s.archive == nil {
		s.writeError(w, http.StatusNotFound, "archive is disabled")
		return
	}
	run, err := s.archive.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"run": run})
}

func (s *HTTPServer) writeRunError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrRunNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ErrRunTerminal):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrRunIDMissing):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}

func isYAML(contentType string) bool {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml", "text/x-yaml":
		return true
	}
	return false
}
