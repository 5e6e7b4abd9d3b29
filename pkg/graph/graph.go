// Package graph holds the CSR data model coarsening operates over: a
// Level (host-resident, serializable) and the buffer view of it that the
// matching/coarsening drivers dispatch kernels against.
package graph

import "github.com/azybler/graco/internal/compute"

// Level is a weighted undirected graph in compressed-sparse-row form.
// EdgeOffset has length N: node i's adjacency range is
// EdgeOffset[i]..end, where end is EdgeOffset[i+1] for i+1 < N and M for
// the last node -- no sentinel is stored. Edges are bidirectional (if
// slot k under node a names b, some slot under b names a with the same
// weight) and self-loop-free.
type Level struct {
	N, M        uint32
	EdgeOffset  []uint32
	Edges       []uint32
	EdgeWeights []uint32
}

// EdgeRange returns the half-open range of edge-ref slots belonging to
// node i.
func (l *Level) EdgeRange(i uint32) (start, end uint32) {
	start = l.EdgeOffset[i]
	if i+1 < l.N {
		return start, l.EdgeOffset[i+1]
	}
	return start, l.M
}

// CSR is the device-resident buffer view of a Level: EdgeOffset, Edges,
// and EdgeWeights wrapped as compute.Buffer without copying, so the
// matching and coarsening drivers dispatch kernels directly against a
// Level's backing slices.
type CSR struct {
	EdgeOffset  *compute.Buffer
	Edges       *compute.Buffer
	EdgeWeights *compute.Buffer
}

// Buffers wraps l's CSR arrays as device buffers, zero-copy.
func (l *Level) Buffers() CSR {
	return CSR{
		EdgeOffset:  compute.NewBufferFromSlice(l.EdgeOffset),
		Edges:       compute.NewBufferFromSlice(l.Edges),
		EdgeWeights: compute.NewBufferFromSlice(l.EdgeWeights),
	}
}
