package graph

// UnionFind implements a disjoint-set data structure with path halving
// and union by rank.
type UnionFind struct {
	parent []uint32
	rank   []byte // byte is sufficient -- max rank ~30 for realistic graphs
	size   []uint32
}

// NewUnionFind creates a UnionFind for n elements.
func NewUnionFind(n uint32) *UnionFind {
	parent := make([]uint32, n)
	size := make([]uint32, n)
	for i := range n {
		parent[i] = i
		size[i] = 1
	}
	return &UnionFind{
		parent: parent,
		rank:   make([]byte, n),
		size:   size,
	}
}

// Find returns the representative of the set containing x, with path halving.
func (uf *UnionFind) Find(x uint32) uint32 {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

// Union merges the sets containing x and y. Returns false if already the same set.
func (uf *UnionFind) Union(x, y uint32) bool {
	rx := uf.Find(x)
	ry := uf.Find(y)
	if rx == ry {
		return false
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	uf.size[rx] += uf.size[ry]
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
	return true
}

// LargestComponent returns the node indices belonging to the largest
// connected component of l, treating its edges as undirected (which they
// already are, per the CSR invariant).
func LargestComponent(l *Level) []uint32 {
	if l.N == 0 {
		return nil
	}
	uf := NewUnionFind(l.N)
	for u := uint32(0); u < l.N; u++ {
		start, end := l.EdgeRange(u)
		for e := start; e < end; e++ {
			uf.Union(u, l.Edges[e])
		}
	}

	bestRoot := uint32(0)
	bestSize := uint32(0)
	for i := uint32(0); i < l.N; i++ {
		root := uf.Find(i)
		if uf.size[root] > bestSize {
			bestRoot = root
			bestSize = uf.size[root]
		}
	}

	nodes := make([]uint32, 0, bestSize)
	for i := uint32(0); i < l.N; i++ {
		if uf.Find(i) == bestRoot {
			nodes = append(nodes, i)
		}
	}
	return nodes
}

// FilterToComponent builds the Level induced by nodes (renumbered
// 0..len(nodes)-1), keeping only edges with both endpoints in the set.
func FilterToComponent(l *Level, nodes []uint32) *Level {
	if len(nodes) == 0 {
		return &Level{}
	}

	oldToNew := make(map[uint32]uint32, len(nodes))
	for newIdx, oldIdx := range nodes {
		oldToNew[oldIdx] = uint32(newIdx)
	}

	type edge struct{ from, to, weight uint32 }
	var edges []edge
	for _, oldU := range nodes {
		start, end := l.EdgeRange(oldU)
		for e := start; e < end; e++ {
			oldV := l.Edges[e]
			if newV, ok := oldToNew[oldV]; ok {
				edges = append(edges, edge{from: oldToNew[oldU], to: newV, weight: l.EdgeWeights[e]})
			}
		}
	}

	n := uint32(len(nodes))
	m := uint32(len(edges))
	offset := make([]uint32, n)
	count := make([]uint32, n)
	for _, e := range edges {
		count[e.from]++
	}
	var running uint32
	for i := uint32(0); i < n; i++ {
		offset[i] = running
		running += count[i]
	}

	edgeList := make([]uint32, m)
	weights := make([]uint32, m)
	pos := make([]uint32, n)
	copy(pos, offset)
	for _, e := range edges {
		idx := pos[e.from]
		edgeList[idx] = e.to
		weights[idx] = e.weight
		pos[e.from]++
	}

	return &Level{N: n, M: m, EdgeOffset: offset, Edges: edgeList, EdgeWeights: weights}
}
