package level

import (
	"context"
	"testing"

	"github.com/azybler/graco/internal/compute"
	"github.com/azybler/graco/pkg/graph"
)

// fourPath builds a 0-1-2-3 path, uniform weight, which TestMatchFourPath
// (pkg/matching) establishes collapses into two pairs (0,1) and (2,3).
func fourPath() *graph.Level {
	return &graph.Level{
		N:           4,
		M:           6,
		EdgeOffset:  []uint32{0, 1, 3, 5},
		Edges:       []uint32{1, 0, 2, 1, 3, 2},
		EdgeWeights: []uint32{1, 1, 1, 1, 1, 1},
	}
}

func TestHierarchyAdvanceOnce(t *testing.T) {
	h := NewHierarchy(compute.NewDevice(), fourPath(), DefaultConfig())
	progressed, err := h.Advance(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !progressed {
		t.Fatal("expected Advance to make progress on a fully-matchable path")
	}
	if len(h.Levels) != 2 {
		t.Fatalf("len(Levels) = %d, want 2", len(h.Levels))
	}
	if h.Coarsest().N != 2 {
		t.Fatalf("coarsest N = %d, want 2", h.Coarsest().N)
	}
	if h.Coarsest().M != 2 {
		t.Fatalf("coarsest M = %d, want 2", h.Coarsest().M)
	}
}

func TestHierarchyBuildStopsWhenNoProgress(t *testing.T) {
	h := NewHierarchy(compute.NewDevice(), fourPath(), DefaultConfig())
	if err := h.Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	// 4 -> 2 -> (single edge, fully matches) -> 1. Build should stop once
	// the coarsest level has a single node with nothing left to match.
	if h.Coarsest().N != 1 {
		t.Fatalf("coarsest N = %d, want 1", h.Coarsest().N)
	}
	if len(h.Mappings) != len(h.Levels)-1 {
		t.Fatalf("len(Mappings) = %d, want %d", len(h.Mappings), len(h.Levels)-1)
	}
}

func TestHierarchyFineToCoarse(t *testing.T) {
	h := NewHierarchy(compute.NewDevice(), fourPath(), DefaultConfig())
	if err := h.Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	top := len(h.Levels) - 1
	mapping, err := h.FineToCoarse(top)
	if err != nil {
		t.Fatal(err)
	}
	if len(mapping) != 4 {
		t.Fatalf("mapping length = %d, want 4", len(mapping))
	}
	for i, c := range mapping {
		if c != 0 {
			t.Errorf("node %d maps to coarse id %d, want 0 (single surviving node)", i, c)
		}
	}
}

func TestHierarchyMinNodesStop(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MinNodes = 2
	h := NewHierarchy(compute.NewDevice(), fourPath(), cfg)
	if err := h.Build(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h.Coarsest().N != 2 {
		t.Fatalf("coarsest N = %d, want 2 (MinNodes floor)", h.Coarsest().N)
	}
}
