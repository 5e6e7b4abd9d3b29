package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"

	"github.com/azybler/graco/pkg/level"
)

// Handlers holds the HTTP handlers and the hierarchy they drive. A single
// Hierarchy is shared across requests (this is a demo server, not a
// multi-tenant service): POST /api/v1/advance mutates it one coarsening
// round at a time, guarded by mu.
type Handlers struct {
	mu  sync.Mutex
	hie *level.Hierarchy
}

// NewHandlers creates handlers driving hie.
func NewHandlers(hie *level.Hierarchy) *Handlers {
	return &Handlers{hie: hie}
}

// HandleAdvance handles POST /api/v1/advance: runs one round of matching
// and contraction on the current coarsest level.
func (h *Handlers) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	progressed, err := h.hie.Advance(r.Context())
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			writeError(w, http.StatusServiceUnavailable, "request_timeout")
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error")
		return
	}

	idx := len(h.hie.Levels) - 1
	writeJSON(w, http.StatusOK, AdvanceResponse{
		Progressed: progressed,
		Level:      levelSummary(h.hie, idx, false),
	})
}

// HandleLevel handles GET /api/v1/level?index=N&full=1. index defaults to
// the coarsest level; full=1 includes the CSR arrays, omitted by default.
func (h *Handlers) HandleLevel(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := len(h.hie.Levels) - 1
	if raw := r.URL.Query().Get("index"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 || parsed >= len(h.hie.Levels) {
			writeError(w, http.StatusBadRequest, "invalid_index")
			return
		}
		idx = parsed
	}
	full := r.URL.Query().Get("full") == "1"
	writeJSON(w, http.StatusOK, levelSummary(h.hie, idx, full))
}

// HandleHealth handles GET /api/v1/health.
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

// HandleStats handles GET /api/v1/stats.
func (h *Handlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()

	writeJSON(w, http.StatusOK, StatsResponse{
		NumLevels: len(h.hie.Levels),
		Finest:    levelSummary(h.hie, 0, false),
		Coarsest:  levelSummary(h.hie, len(h.hie.Levels)-1, false),
	})
}

func levelSummary(hie *level.Hierarchy, idx int, full bool) LevelResponse {
	l := hie.Levels[idx]
	resp := LevelResponse{Index: idx, N: l.N, M: l.M}
	if full {
		resp.EdgeOffset = l.EdgeOffset
		resp.Edges = l.Edges
		resp.EdgeWeights = l.EdgeWeights
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, ErrorResponse{Error: code})
}
