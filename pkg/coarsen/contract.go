package coarsen

import (
	"context"
	"fmt"

	"github.com/azybler/graco/internal/compute"
	"github.com/azybler/graco/pkg/dispatch"
	"github.com/azybler/graco/pkg/primitives"
)

// Contract builds the coarse-level CSR implied by match (fine.n entries,
// match[i] the coarse id fine node i collapsed into -- exactly
// matching.Match's output) over fine (n nodes, m edge-refs).
//
// It runs in three phases, records and submits one command stream, and
// reads the result back to host slices:
//
//   - Phase A builds f2c/c2f: radix-sort (match, identity) pairs by match
//     value, find-runs over the sorted keys to assign dense coarse ids,
//     scatter those ids back into fine-index order.
//   - Phase B builds the coarse edge list: map every fine edge's target
//     through f2c, then a compound sort (inner key = mapped target, outer
//     key = coarse owner) brings every edge-ref belonging to the same
//     coarse node together, with same-target duplicates adjacent.
//   - Phase C compacts: find-runs over the owners to get a preliminary
//     per-node edge-offset, classify every edge-ref SELF_LOOP/DUPLICATE/
//     VALID, prefix-sum the VALID flags into compacted slot indices,
//     atomically fold each DUPLICATE's weight into its representative
//     VALID edge's slot, compact the surviving edges, and finalize
//     coarse_edge_offset from the preliminary offsets and the scan.
func Contract(ctx context.Context, dev *compute.Device, fine CSR, match []uint32, n, m uint32) (*Result, error) {
	if n == 0 {
		return &Result{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("coarsen: %w", err)
	}

	enc := dev.NewEncoder()

	// Phase A: f2c / c2f.
	c2f := dev.NewBuffer(int(n))
	primitives.GenerateIndexList(enc, c2f, compute.Direct(n))

	matchBuf := compute.NewBufferFromSlice(append([]uint32(nil), match...))
	scratchKeysA := dev.NewBuffer(int(n))
	scratchValuesA := dev.NewBuffer(int(n))
	primitives.RadixSortByKey(dev, enc, matchBuf, c2f, scratchKeysA, scratchValuesA, int(n), compute.Direct(n))

	isNewRunA := dev.NewBuffer(int(n))
	scratchPSA := dev.NewBuffer(int(n))
	runMappingA := dev.NewBuffer(int(n))
	c2fOffset := dev.NewBuffer(int(n))
	nPrimeBuf := dev.NewBuffer(1)
	primitives.FindRuns(enc, matchBuf, compute.Direct(n), isNewRunA, scratchPSA, runMappingA, c2fOffset, nPrimeBuf)

	f2c := dev.NewBuffer(int(n))
	primitives.ScatterBy(enc, runMappingA, c2f, f2c, compute.Direct(n))

	var result Result
	if m == 0 {
		coarseEdgeOffsetBuf := dev.NewBuffer(int(n))
		enc.ClearBuffer(coarseEdgeOffsetBuf)

		if err := enc.Submit(ctx); err != nil {
			return nil, fmt.Errorf("coarsen: %w", err)
		}
		nPrime := nPrimeBuf.At(0)
		result = Result{
			N:          nPrime,
			EdgeOffset: append([]uint32(nil), coarseEdgeOffsetBuf.Slice()[:nPrime]...),
			Mapping: Mapping{
				F2C:       append([]uint32(nil), f2c.Slice()...),
				C2FOffset: append([]uint32(nil), c2fOffset.Slice()[:nPrime]...),
				C2F:       append([]uint32(nil), c2f.Slice()...),
			},
		}
		return &result, nil
	}

	// Phase B: compound-sorted coarse edge list. Four m-sized buffers
	// s0..s3 are reused across the steps below. Two more m-sized buffers
	// hold the per-edge owner list (ownersRaw) and the recomputed mapped
	// targets (tmpMapped), and Phase C allocates two further m-sized
	// buffers for its find-runs pass.
	s0 := dev.NewBuffer(int(m))
	s1 := dev.NewBuffer(int(m))
	s2 := dev.NewBuffer(int(m))
	s3 := dev.NewBuffer(int(m))

	primitives.GatherBy(enc, f2c, fine.Edges, s0, compute.Direct(m)) // s0[k] = f2c[edges_fine[k]]
	primitives.GenerateIndexList(enc, s1, compute.Direct(m))
	primitives.RadixSortByKey(dev, enc, s0, s1, s2, s3, int(m), compute.Direct(m)) // sort by inner key

	ownersRaw := dev.NewBuffer(int(m))
	EncodeGatherEdgeOwnerList(enc, fine.EdgeOffset, f2c, ownersRaw, compute.Direct(n), int(m))
	primitives.GatherBy(enc, ownersRaw, s1, s0, compute.Direct(m)) // owners reordered to inner-sorted order
	primitives.RadixSortByKey(dev, enc, s0, s1, s2, s3, int(m), compute.Direct(m)) // sort by outer key (owner)

	tmpMapped := dev.NewBuffer(int(m))
	primitives.GatherBy(enc, f2c, fine.Edges, tmpMapped, compute.Direct(m)) // recompute mapped targets
	primitives.GatherBy(enc, tmpMapped, s1, s3, compute.Direct(m))          // mapped targets, compound order
	primitives.GatherBy(enc, fine.EdgeWeights, s1, s2, compute.Direct(m))   // weights, compound order
	// s0 now holds owners in compound order (already sorted in place).

	// Phase C: compaction.
	isNewRunC := dev.NewBuffer(int(m))
	scratchPSC := dev.NewBuffer(int(m))
	prelimOffset := dev.NewBuffer(int(n))
	nPrimeCheck := dev.NewBuffer(1)
	primitives.FindRuns(enc, s0, compute.Direct(m), isNewRunC, scratchPSC, s1, prelimOffset, nPrimeCheck)

	EncodeMarkCoarseEdgeValidity(enc, s3, s0, s1, compute.Direct(m))
	primitives.PrefixSumInclusive(enc, s1, scratchPSC, compute.Direct(m))

	mPrimeBuf := dev.NewBuffer(1)
	EncodeResolveCoarseEdgeRefCount(enc, s1, mPrimeBuf, int(m))

	EncodeCollectCoarseNodesEdgeWeights(enc, s3, s1, s2, s0, compute.Direct(m)) // s0 := collected weights
	EncodeCompactCoarseEdges(enc, s3, s1, s3, s2, compute.Direct(m))            // s2 := compacted edges

	nPrimeIndirect := dev.NewBuffer(3)
	dispatch.EncodeGenerateDispatches(enc, []*compute.Buffer{nPrimeBuf}, compute.GroupSize, nPrimeIndirect)
	coarseEdgeOffsetBuf := dev.NewBuffer(int(n))
	EncodeFinalizeCoarseNodesEdgeOffset(enc, prelimOffset, s1, s3, coarseEdgeOffsetBuf, nPrimeIndirect, nPrimeBuf)

	if err := enc.Submit(ctx); err != nil {
		return nil, fmt.Errorf("coarsen: %w", err)
	}

	nPrime := nPrimeBuf.At(0)
	mPrime := mPrimeBuf.At(0)
	result = Result{
		N:           nPrime,
		M:           mPrime,
		EdgeOffset:  append([]uint32(nil), coarseEdgeOffsetBuf.Slice()[:nPrime]...),
		Edges:       append([]uint32(nil), s2.Slice()[:mPrime]...),
		EdgeWeights: append([]uint32(nil), s0.Slice()[:mPrime]...),
		Mapping: Mapping{
			F2C:       append([]uint32(nil), f2c.Slice()...),
			C2FOffset: append([]uint32(nil), c2fOffset.Slice()[:nPrime]...),
			C2F:       append([]uint32(nil), c2f.Slice()...),
		},
	}
	return &result, nil
}
