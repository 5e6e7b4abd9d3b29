package coarsen

import (
	"sync/atomic"

	"github.com/azybler/graco/internal/compute"
)

func edgeRange(edgeOffset []uint32, m int, i int) (int, int) {
	start := int(edgeOffset[i])
	if i+1 < len(edgeOffset) {
		return start, int(edgeOffset[i+1])
	}
	return start, m
}

// EncodeGatherEdgeOwnerList writes, for every fine edge-ref belonging to
// fine node i, that node's coarse id f2c[i] into owners at the same slot.
// Dispatched over the n node-indexed domain rather than the m edge-ref
// domain, but every write lands in the m-sized owners buffer; race-free
// because each node's own edge-ref range is disjoint from every other's.
func EncodeGatherEdgeOwnerList(enc *compute.CommandEncoder, fineEdgeOffset, f2c, owners *compute.Buffer, n compute.CountSource, m int) {
	enc.DispatchWorkgroups(n, func(start, end int) {
		offs := fineEdgeOffset.Slice()
		coarse := f2c.Slice()
		out := owners.Slice()
		for i := start; i < end; i++ {
			owner := coarse[i]
			lo, hi := edgeRange(offs, m, i)
			for k := lo; k < hi; k++ {
				out[k] = owner
			}
		}
	})
}

// EncodeMarkCoarseEdgeValidity classifies every compound-sorted edge-ref k
// (mappedTargets[k] holds the raw, unpacked coarse target; owners[k] its
// coarse owner) as SELF_LOOP, DUPLICATE (same owner and target as its
// immediate predecessor), or VALID, and:
//   - packs the tag into mappedTargets[k]'s top two bits (see packValidity),
//     so the tag survives even after newSlotFlag below is destroyed by the
//     prefix sum that follows it;
//   - writes a binary "this edge starts a new compacted output slot" flag
//     into newSlotFlag[k] -- 1 only for VALID. Only VALID edges advance the
//     compaction counter; a DUPLICATE's weight must land in the *same*
//     output slot as the VALID edge it duplicates, and a SELF_LOOP produces
//     no output slot at all. Storing the raw validity code itself into the
//     buffer the following prefix sum consumes would not give a dense
//     0..m'-1 compaction (a VALID/DUPLICATE/VALID run would jump the
//     running total by 2, 1, 2 instead of 1, 0, 1), so this flag is
//     deliberately binary rather than the three-way code.
//
// Reads of a neighboring element k-1 are always masked with
// coarseTargetMask before comparison, which makes the predecessor check
// correct regardless of whether k-1's own invocation (in a different,
// concurrently-running workgroup) has already packed its validity bits in
// or not: packing only ever touches the top two bits, never the target.
func EncodeMarkCoarseEdgeValidity(enc *compute.CommandEncoder, mappedTargets, owners, newSlotFlag *compute.Buffer, m compute.CountSource) {
	enc.DispatchWorkgroups(m, func(start, end int) {
		targets := mappedTargets.Slice()
		own := owners.Slice()
		flags := newSlotFlag.Slice()
		for k := start; k < end; k++ {
			target := unpackTarget(targets[k])
			owner := own[k]
			var validity uint32
			switch {
			case target == owner:
				validity = ValiditySelfLoop
			case k > 0 && own[k] == own[k-1] && target == unpackTarget(targets[k-1]):
				validity = ValidityDuplicate
			default:
				validity = ValidityValid
			}
			if validity == ValidityValid {
				flags[k] = 1
			} else {
				flags[k] = 0
			}
			targets[k] = packValidity(validity, target)
		}
	})
}

// EncodeCollectCoarseNodesEdgeWeights clears weightsOut and then, for every
// edge-ref k whose validity is DUPLICATE or VALID, atomically adds
// fineWeights[k] into weightsOut[slotIndex[k]-1] -- merging a duplicate's
// weight into the same compacted slot as the VALID edge it duplicates.
// This is the sole atomic-accumulation point in the whole pipeline: the
// only place several edge-refs (a VALID edge and all the DUPLICATEs that
// collapsed onto it) can legitimately race to update the same word.
func EncodeCollectCoarseNodesEdgeWeights(enc *compute.CommandEncoder, validity, slotIndex, fineWeights, weightsOut *compute.Buffer, m compute.CountSource) {
	enc.ClearBuffer(weightsOut)
	enc.DispatchWorkgroups(m, func(start, end int) {
		tags := validity.Slice()
		slots := slotIndex.Slice()
		w := fineWeights.Slice()
		out := weightsOut.Slice()
		for k := start; k < end; k++ {
			tag := unpackValidity(tags[k])
			if tag == ValiditySelfLoop {
				continue
			}
			slot := slots[k] - 1
			atomic.AddUint32(&out[slot], w[k])
		}
	})
}

// EncodeCompactCoarseEdges writes, for every VALID edge-ref k, its coarse
// target into edgesOut[slotIndex[k]-1]. DUPLICATE and SELF_LOOP edge-refs
// produce no output -- their weight was already folded into the
// representative VALID edge's slot by EncodeCollectCoarseNodesEdgeWeights.
func EncodeCompactCoarseEdges(enc *compute.CommandEncoder, validity, slotIndex, mappedTargets, edgesOut *compute.Buffer, m compute.CountSource) {
	enc.DispatchWorkgroups(m, func(start, end int) {
		tags := validity.Slice()
		slots := slotIndex.Slice()
		targets := mappedTargets.Slice()
		out := edgesOut.Slice()
		for k := start; k < end; k++ {
			if unpackValidity(tags[k]) != ValidityValid {
				continue
			}
			slot := slots[k] - 1
			out[slot] = unpackTarget(targets[k])
		}
	})
}

// EncodeResolveCoarseEdgeRefCount copies slotIndex[m-1] -- the total number
// of compacted edge-refs, m' -- into the single-word out buffer.
func EncodeResolveCoarseEdgeRefCount(enc *compute.CommandEncoder, slotIndex, out *compute.Buffer, m int) {
	enc.DispatchWorkgroups(compute.Direct(1), func(start, end int) {
		slots := slotIndex.Slice()
		if m == 0 {
			out.Set(0, 0)
			return
		}
		out.Set(0, slots[m-1])
	})
}

// EncodeFinalizeCoarseNodesEdgeOffset rewrites coarseEdgeOffset[r] for each
// coarse node r in [0, n') from the preliminary per-owner run offset
// (prelimOffset[r], into the pre-compaction, compound-sorted space) and the
// already-scanned slotIndex: coarseEdgeOffset[r] = slotIndex[prelimOffset[r]]
// minus 1 if that first edge-ref is itself VALID, else minus 0. A run's
// first edge-ref is never a DUPLICATE (a duplicate is only ever detected
// against a predecessor sharing its own owner, and a run's first element by
// definition has no such predecessor within the run), so it is always
// either SELF_LOOP or VALID.
//
// n' only becomes known mid-pipeline (the output of the Phase A find-runs
// pass), so this dispatch is sized indirectly: indirectBuf is the 3-word
// {x,y,z} record a dispatch.EncodeGenerateDispatches call already derived
// from nPrimeBuf, and nPrimeBuf itself doubles as the in-kernel live-count
// bound -- no host round-trip between n' becoming known and this kernel
// running.
func EncodeFinalizeCoarseNodesEdgeOffset(enc *compute.CommandEncoder, prelimOffset, slotIndex, validity, coarseEdgeOffset, indirectBuf, nPrimeBuf *compute.Buffer) {
	enc.DispatchWorkgroupsIndirect(indirectBuf, nPrimeBuf, func(start, end int) {
		prelim := prelimOffset.Slice()
		slots := slotIndex.Slice()
		tags := validity.Slice()
		out := coarseEdgeOffset.Slice()
		for r := start; r < end; r++ {
			k := prelim[r]
			slot := slots[k]
			if unpackValidity(tags[k]) == ValidityValid {
				slot--
			}
			out[r] = slot
		}
	})
}
