// Package coarsen implements graph contraction: given a fine-level CSR
// graph and a matching over it, it produces the coarsened CSR, a
// fine-to-coarse node mapping, and its inverse.
package coarsen

import "github.com/azybler/graco/internal/compute"

// CSR is the device-resident buffer view of a fine-level graph, the same
// shape as graph.CSR -- kept as its own type so this package has no
// dependency on package graph (callers convert at the boundary).
type CSR struct {
	EdgeOffset  *compute.Buffer
	Edges       *compute.Buffer
	EdgeWeights *compute.Buffer
}

// Mapping is the fine<->coarse correspondence contraction produces.
// F2C[i] is the coarse index of fine node i. Group r of
// C2F[C2FOffset[r]:end] (end being C2FOffset[r+1], or len(C2F) for the
// last group) lists the 1 or 2 fine indices belonging to coarse node r.
type Mapping struct {
	F2C       []uint32
	C2FOffset []uint32
	C2F       []uint32
}

// Validity tag packed into the top two bits of a mapped-edge word during
// compaction, so the tag survives the destructive in-place prefix sum
// over the buffer that otherwise carries it (S1).
const (
	ValiditySelfLoop  uint32 = 0
	ValidityDuplicate uint32 = 1
	ValidityValid     uint32 = 2

	validityShift    = 30
	coarseTargetMask = 0x3FFFFFFF
	validityMask     = 0xC0000000
)

func packValidity(validity, target uint32) uint32 {
	return (validity << validityShift) | (target & coarseTargetMask)
}

func unpackValidity(w uint32) uint32 { return (w & validityMask) >> validityShift }
func unpackTarget(w uint32) uint32   { return w & coarseTargetMask }

// Result is the coarsened level plus the mapping that produced it.
type Result struct {
	N, M        uint32
	EdgeOffset  []uint32
	Edges       []uint32
	EdgeWeights []uint32
	Mapping     Mapping
}
