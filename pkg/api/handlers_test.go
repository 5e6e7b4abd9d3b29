package api

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/azybler/graco/internal/compute"
	"github.com/azybler/graco/pkg/graph"
	"github.com/azybler/graco/pkg/level"
)

func fourPathHierarchy() *level.Hierarchy {
	base := &graph.Level{
		N:           4,
		M:           6,
		EdgeOffset:  []uint32{0, 1, 3, 5},
		Edges:       []uint32{1, 0, 2, 1, 3, 2},
		EdgeWeights: []uint32{1, 1, 1, 1, 1, 1},
	}
	return level.NewHierarchy(compute.NewDevice(), base, level.DefaultConfig())
}

func TestHandleAdvance(t *testing.T) {
	h := NewHandlers(fourPathHierarchy())

	req := httptest.NewRequest("POST", "/api/v1/advance", nil)
	w := httptest.NewRecorder()
	h.HandleAdvance(w, req)

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200, body: %s", w.Code, w.Body.String())
	}
	var resp AdvanceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Progressed {
		t.Error("expected progress on a fully-matchable path")
	}
	if resp.Level.N != 2 {
		t.Errorf("N = %d, want 2", resp.Level.N)
	}
}

func TestHandleLevelDefaultsToCoarsest(t *testing.T) {
	h := NewHandlers(fourPathHierarchy())
	h.hie.Advance(context.Background())

	req := httptest.NewRequest("GET", "/api/v1/level", nil)
	w := httptest.NewRecorder()
	h.HandleLevel(w, req)

	if w.Code != 200 {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var resp LevelResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Index != 1 {
		t.Errorf("index = %d, want 1 (coarsest after one advance)", resp.Index)
	}
	if resp.EdgeOffset != nil {
		t.Error("expected no CSR arrays without full=1")
	}
}

func TestHandleLevelFull(t *testing.T) {
	h := NewHandlers(fourPathHierarchy())

	req := httptest.NewRequest("GET", "/api/v1/level?index=0&full=1", nil)
	w := httptest.NewRecorder()
	h.HandleLevel(w, req)

	var resp LevelResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Edges) != 6 {
		t.Errorf("Edges length = %d, want 6", len(resp.Edges))
	}
}

func TestHandleLevelInvalidIndex(t *testing.T) {
	h := NewHandlers(fourPathHierarchy())

	req := httptest.NewRequest("GET", "/api/v1/level?index=99", nil)
	w := httptest.NewRecorder()
	h.HandleLevel(w, req)

	if w.Code != 400 {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestHandleHealth(t *testing.T) {
	h := NewHandlers(fourPathHierarchy())

	req := httptest.NewRequest("GET", "/api/v1/health", nil)
	w := httptest.NewRecorder()
	h.HandleHealth(w, req)

	var resp HealthResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
}

func TestHandleStats(t *testing.T) {
	h := NewHandlers(fourPathHierarchy())

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	h.HandleStats(w, req)

	var resp StatsResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.NumLevels != 1 {
		t.Errorf("NumLevels = %d, want 1", resp.NumLevels)
	}
	if resp.Finest.N != 4 {
		t.Errorf("Finest.N = %d, want 4", resp.Finest.N)
	}
}
