package matching

import (
	"github.com/azybler/graco/internal/compute"
	"github.com/azybler/graco/pkg/dispatch"
)

// CSR is the read-only fine-level adjacency this package matches over:
// EdgeOffset[i] is the start of node i's adjacency range in Edges/
// EdgeWeights; the range's end is EdgeOffset[i+1], or M for the last
// node (no sentinel is stored).
type CSR struct {
	EdgeOffset  *compute.Buffer
	Edges       *compute.Buffer
	EdgeWeights *compute.Buffer
}

func edgeRange(edgeOffset []uint32, m int, i int) (int, int) {
	start := int(edgeOffset[i])
	if i+1 < len(edgeOffset) {
		return start, int(edgeOffset[i+1])
	}
	return start, m
}

// EncodeAssignNodeColors recolors every live node (status BLUE or RED)
// to BLUE or RED again for this round, drawing the color bit from
// roundSeed hashed with the node index. DEAD/MATCHED nodes are left
// untouched -- those are terminal. Also resets proposals[i] to the
// sentinel value n (out of range for any real node index), so a stale
// proposal from an earlier round a node no longer makes can never be
// misread as live.
func EncodeAssignNodeColors(enc *compute.CommandEncoder, match, proposals *compute.Buffer, n compute.CountSource, roundSeed uint64) {
	enc.DispatchWorkgroups(n, func(start, end int) {
		m := match.Slice()
		p := proposals.Slice()
		sentinel := uint32(n.Resolve())
		for i := start; i < end; i++ {
			p[i] = sentinel
			status := unpackStatus(m[i])
			if !isLive(status) {
				continue
			}
			if colorBit(roundSeed, uint32(i)) {
				m[i] = packWord(StatusRed, 0)
			} else {
				m[i] = packWord(StatusBlue, 0)
			}
		}
	})
}

// EncodeMakeProposals has every live node scan its adjacency list and
// propose to the not-yet-MATCHED neighbor with the heaviest edge (ties
// broken toward the smaller neighbor index). A node with no eligible
// neighbor transitions to DEAD. This runs for both colors: every live
// node proposes each round, and a later mutual-check (EncodeFindMatches)
// stands in for the separate BLUE-proposes/RED-accepts roles.
func EncodeMakeProposals(enc *compute.CommandEncoder, csr CSR, match, proposals *compute.Buffer, n compute.CountSource, m int) {
	enc.DispatchWorkgroups(n, func(start, end int) {
		mt := match.Slice()
		pr := proposals.Slice()
		offs := csr.EdgeOffset.Slice()
		edges := csr.Edges.Slice()
		weights := csr.EdgeWeights.Slice()
		for i := start; i < end; i++ {
			status := unpackStatus(mt[i])
			if !isLive(status) {
				continue
			}
			lo, hi := edgeRange(offs, m, i)
			best := -1
			var bestWeight uint32
			for k := lo; k < hi; k++ {
				j := edges[k]
				if unpackStatus(mt[j]) == StatusMatched {
					continue
				}
				w := weights[k]
				if best == -1 || w > bestWeight || (w == bestWeight && j < edges[best]) {
					best = k
					bestWeight = w
				}
			}
			if best == -1 {
				mt[i] = packWord(StatusDead, 0)
				continue
			}
			pr[i] = edges[best]
		}
	})
}

// EncodeFindMatches transitions every live node i whose proposal's
// proposal points back at i into MATCHED, storing the partner as payload.
func EncodeFindMatches(enc *compute.CommandEncoder, match, proposals *compute.Buffer, n compute.CountSource) {
	enc.DispatchWorkgroups(n, func(start, end int) {
		mt := match.Slice()
		pr := proposals.Slice()
		sentinel := uint32(n.Resolve())
		for i := start; i < end; i++ {
			status := unpackStatus(mt[i])
			if !isLive(status) {
				continue
			}
			p := pr[i]
			if p == sentinel || p >= uint32(len(pr)) {
				continue
			}
			if pr[p] == uint32(i) {
				mt[i] = packWord(StatusMatched, p)
			}
		}
	})
}

// EncodeFinalizeMatching rewrites every word to a stable coarse-node
// index: a MATCHED pair (i, j) both resolve to min(i, j); a DEAD or
// still-live node resolves to its own index. Each node computes this
// independently from its own word, so the pass needs no cross-node
// coordination -- matching is symmetric by construction (if i matched j,
// j's own word also records i as partner).
func EncodeFinalizeMatching(enc *compute.CommandEncoder, match *compute.Buffer, n compute.CountSource) {
	enc.DispatchWorkgroups(n, func(start, end int) {
		mt := match.Slice()
		for i := start; i < end; i++ {
			w := mt[i]
			if unpackStatus(w) == StatusMatched {
				partner := unpackPayload(w)
				if partner < uint32(i) {
					mt[i] = partner
				} else {
					mt[i] = uint32(i)
				}
				continue
			}
			mt[i] = uint32(i)
		}
	})
}

// EncodeGenerateDispatch writes the indirect-dispatch record for a
// single GPU-resident node count nBuf into out, at the fixed 256-wide
// workgroup size every kernel in this package dispatches with. Exposed
// for drivers that want to chain a coarsening pass's emitted node count
// directly into the next round's dispatches without a host round-trip;
// Match and pkg/level do not call it and dispatch with host-known counts.
func EncodeGenerateDispatch(enc *compute.CommandEncoder, nBuf *compute.Buffer, out *compute.Buffer) {
	dispatch.EncodeGenerateDispatches(enc, []*compute.Buffer{nBuf}, compute.GroupSize, out)
}
