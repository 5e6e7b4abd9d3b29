// Package level drives the coarsening hierarchy: repeatedly matching and
// contracting a graph.Level until no further progress is made or a stop
// condition is reached, keeping every intermediate level and its mapping
// to the next.
package level

import (
	"context"
	"fmt"

	"github.com/azybler/graco/internal/compute"
	"github.com/azybler/graco/pkg/coarsen"
	"github.com/azybler/graco/pkg/graph"
	"github.com/azybler/graco/pkg/matching"
)

// Config controls how far a Hierarchy coarsens.
type Config struct {
	Match matching.Config
	// MinNodes stops Advance once the current level's node count is at
	// or below this threshold. Zero means "only stop when a round makes
	// no progress" (every live node ends up its own coarse node).
	MinNodes uint32
	// MaxLevels caps the total number of coarsening rounds performed by
	// Hierarchy.Build (0 means unbounded, relying on MinNodes/no-progress
	// to terminate).
	MaxLevels int
}

// DefaultConfig returns reasonable defaults: the matching package's own
// defaults, no node-count floor, and no level cap.
func DefaultConfig() Config {
	return Config{Match: matching.DefaultConfig()}
}

// Hierarchy holds the chain of levels produced by successive Advance
// calls, finest first, and the mapping from each level to the next.
type Hierarchy struct {
	dev    *compute.Device
	cfg    Config
	Levels []*graph.Level
	// Mappings[i] maps Levels[i] to Levels[i+1]; len(Mappings) ==
	// len(Levels)-1.
	Mappings []coarsen.Mapping
}

// NewHierarchy starts a Hierarchy at base, the finest level. base is not
// copied; Advance never mutates it.
func NewHierarchy(dev *compute.Device, base *graph.Level, cfg Config) *Hierarchy {
	return &Hierarchy{
		dev:    dev,
		cfg:    cfg,
		Levels: []*graph.Level{base},
	}
}

// Finest returns the original, uncoarsened level.
func (h *Hierarchy) Finest() *graph.Level { return h.Levels[0] }

// Coarsest returns the most recently produced level.
func (h *Hierarchy) Coarsest() *graph.Level { return h.Levels[len(h.Levels)-1] }

// Advance runs one round of matching plus contraction on the coarsest
// level and appends the result, reporting whether it made progress.
// Returns false, nil (not an error) once the coarsest level has reached
// MinNodes or a round fails to reduce the node count at all -- a fully
// unmatched level (every node DEAD) is indistinguishable from "as coarse
// as this graph gets" and Advance treats it as the natural stopping
// point rather than an error.
func (h *Hierarchy) Advance(ctx context.Context) (bool, error) {
	current := h.Coarsest()
	if current.N == 0 || current.N <= h.cfg.MinNodes {
		return false, nil
	}

	csr := current.Buffers()
	match, err := matching.Match(ctx, h.dev, matching.CSR(csr), current.N, current.M, h.cfg.Match)
	if err != nil {
		return false, fmt.Errorf("level: match: %w", err)
	}

	result, err := coarsen.Contract(ctx, h.dev, coarsen.CSR(csr), match, current.N, current.M)
	if err != nil {
		return false, fmt.Errorf("level: contract: %w", err)
	}
	if result.N >= current.N {
		return false, nil
	}

	next := &graph.Level{
		N:           result.N,
		M:           result.M,
		EdgeOffset:  result.EdgeOffset,
		Edges:       result.Edges,
		EdgeWeights: result.EdgeWeights,
	}
	h.Levels = append(h.Levels, next)
	h.Mappings = append(h.Mappings, result.Mapping)
	return true, nil
}

// Build repeatedly calls Advance until it reports no progress, an error,
// or MaxLevels rounds have run (if MaxLevels > 0).
func (h *Hierarchy) Build(ctx context.Context) error {
	for h.cfg.MaxLevels <= 0 || len(h.Levels)-1 < h.cfg.MaxLevels {
		progressed, err := h.Advance(ctx)
		if err != nil {
			return err
		}
		if !progressed {
			return nil
		}
	}
	return nil
}

// FineToCoarse composes the per-level F2C mappings into a single array
// mapping a node in the finest level directly to its id in level `target`
// (0 being the finest level itself, in which case the identity mapping is
// returned).
func (h *Hierarchy) FineToCoarse(target int) ([]uint32, error) {
	if target < 0 || target >= len(h.Levels) {
		return nil, fmt.Errorf("level: target level %d out of range [0,%d)", target, len(h.Levels))
	}
	out := make([]uint32, h.Levels[0].N)
	for i := range out {
		out[i] = uint32(i)
	}
	for lvl := 0; lvl < target; lvl++ {
		f2c := h.Mappings[lvl].F2C
		for i, coarseID := range out {
			out[i] = f2c[coarseID]
		}
	}
	return out, nil
}
