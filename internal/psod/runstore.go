package psod

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GoSim-25-26J-441/swarm-core/internal/metrics"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/config"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/models"
	"github.com/GoSim-25-26J-441/swarm-core/pkg/utils"
)

var (
	ErrRunNotFound  = errors.New("run not found")
	ErrRunTerminal  = errors.New("run is terminal")
	ErrRunIDMissing = errors.New("run_id is required")
	ErrRunExists    = errors.New("run already exists")
	ErrInvalidRunID = errors.New("invalid run_id")
)

// RunRecord is everything the daemon keeps about one run.
type RunRecord struct {
	Run       *models.Run
	Params    *config.Params
	Collector *metrics.Collector
}

// RunStore keeps runs in memory. Records handed out are copies, so callers
// never observe a record mid-update.
type RunStore struct {
	mu   sync.RWMutex
	runs map[string]*RunRecord
}

func NewRunStore() *RunStore {
	return &RunStore{
		runs: make(map[string]*RunRecord),
	}
}

// Create registers a pending run. An empty runID is replaced by a generated
// one.
func (s *RunStore) Create(runID string, params *config.Params) (*RunRecord, error) {
	if params == nil {
		return nil, errors.New("params are required")
	}
	if strings.ContainsAny(runID, "/?#: ") {
		return nil, fmt.Errorf("%w: %q cannot contain '/', '?', '#', ':' or spaces", ErrInvalidRunID, runID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if runID == "" {
		runID = utils.GenerateRunID()
	}
	if _, exists := s.runs[runID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrRunExists, runID)
	}

	p := *params
	p.SeedPoint = append([]float64(nil), params.SeedPoint...)
	rec := &RunRecord{
		Run: &models.Run{
			ID:        runID,
			Status:    models.RunStatusPending,
			Objective: p.Objective,
			CreatedAt: time.Now().UTC(),
		},
		Params:    &p,
		Collector: metrics.NewCollector(),
	}
	s.runs[runID] = rec
	return rec.snapshot(), nil
}

func (s *RunStore) Get(runID string) (*RunRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.runs[runID]
	if !ok {
		return nil, false
	}
	return rec.snapshot(), true
}

// List returns up to limit runs, oldest first, skipping offset runs. An empty
// status matches every run.
func (s *RunStore) List(limit, offset int, status models.RunStatus) []*RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	all := make([]*RunRecord, 0, len(s.runs))
	for _, rec := range s.runs {
		if status == "" || rec.Run.Status == status {
			all = append(all, rec)
		}
	}
	sort.Slice(all, func(i, j int) bool {
		a, b := all[i].Run, all[j].Run
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})

	if offset >= len(all) {
		return []*RunRecord{}
	}
	all = all[offset:]
	out := make([]*RunRecord, 0, min(limit, len(all)))
	for _, rec := range all[:min(limit, len(all))] {
		out = append(out, rec.snapshot())
	}
	return out
}

// SetStatus moves a run to status. Terminal runs cannot change.
func (s *RunStore) SetStatus(runID string, status models.RunStatus, errMsg string) (*RunRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: %s is %s", ErrRunTerminal, runID, rec.Run.Status)
	}

	rec.Run.Status = status
	if errMsg != "" {
		rec.Run.Error = errMsg
	}

	now := time.Now().UTC()
	switch {
	case status == models.RunStatusRunning:
		if rec.Run.StartTime.IsZero() {
			rec.Run.StartTime = now
		}
	case status.IsTerminal():
		rec.Run.EndTime = now
		if !rec.Run.StartTime.IsZero() {
			rec.Run.Duration = now.Sub(rec.Run.StartTime)
		}
	}
	return rec.snapshot(), nil
}

// SetResult stores the outcome and metrics of a run. It is accepted even
// after a run turned terminal, so a stopped run keeps its partial result.
func (s *RunStore) SetResult(runID string, result *models.RunResult, runMetrics *models.RunMetrics) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	rec.Run.Result = result
	rec.Run.Metrics = runMetrics
	return nil
}

// SetMetadata records a key on a run, e.g. the effective random seed.
func (s *RunStore) SetMetadata(runID, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.runs[runID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	if rec.Run.Metadata == nil {
		rec.Run.Metadata = make(map[string]string)
	}
	rec.Run.Metadata[key] = value
	return nil
}

// snapshot copies the mutable parts of a record. Results are never modified
// once stored and are shared.
func (r *RunRecord) snapshot() *RunRecord {
	run := *r.Run
	if r.Run.Metadata != nil {
		run.Metadata = make(map[string]string, len(r.Run.Metadata))
		for k, v := range r.Run.Metadata {
			run.Metadata[k] = v
		}
	}
	return &RunRecord{Run: &run, Params: r.Params, Collector: r.Collector}
}
