// Package examplegraph builds small graph.Level instances for tests,
// demos, and the benchmark CLI. Graph loading from real-world sources is
// out of scope for the coarsening pipeline itself; this package is just
// enough scaffolding to hand the CLIs and tests real input.
package examplegraph

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/azybler/graco/pkg/graph"
)

// Grid builds the 4-connectivity unit-weight grid graph on rows*cols
// nodes, row-major indexed (node y*cols+x), the same neighbor-offset
// convention as katalvlaran/lvlath's gridgraph package.
func Grid(rows, cols int) *graph.Level {
	if rows <= 0 || cols <= 0 {
		return &graph.Level{}
	}
	n := rows * cols
	index := func(x, y int) int { return y*cols + x }
	inBounds := func(x, y int) bool { return x >= 0 && x < cols && y >= 0 && y < rows }
	offsets := [][2]int{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

	degree := make([]uint32, n)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			for _, d := range offsets {
				if inBounds(x+d[0], y+d[1]) {
					degree[index(x, y)]++
				}
			}
		}
	}

	edgeOffset := make([]uint32, n)
	var running uint32
	for i := 0; i < n; i++ {
		edgeOffset[i] = running
		running += degree[i]
	}
	m := running

	edges := make([]uint32, m)
	weights := make([]uint32, m)
	pos := make([]uint32, n)
	copy(pos, edgeOffset)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			u := index(x, y)
			for _, d := range offsets {
				nx, ny := x+d[0], y+d[1]
				if !inBounds(nx, ny) {
					continue
				}
				v := index(nx, ny)
				slot := pos[u]
				edges[slot] = uint32(v)
				weights[slot] = 1
				pos[u]++
			}
		}
	}

	return &graph.Level{N: uint32(n), M: m, EdgeOffset: edgeOffset, Edges: edges, EdgeWeights: weights}
}

// ParseText reads the per-vertex adjacency-list format: a first line
// "vertex_count edge_count" giving the node count and the total number of
// edge references (the sum of all vertices' degrees, i.e. the CSR M), then
// one line per vertex in order, each a whitespace-separated list of that
// vertex's neighbors as 1-indexed node ids. There is no weight field;
// every edge is synthesized with weight 1. Edge references are expected
// to already be symmetric (if u lists v, v is expected to list u) since
// each line is taken at face value as that vertex's outgoing adjacency.
func ParseText(r io.Reader) (*graph.Level, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	if !sc.Scan() {
		return nil, fmt.Errorf("examplegraph: empty input")
	}
	var n, numEdges int
	if _, err := fmt.Sscanf(sc.Text(), "%d %d", &n, &numEdges); err != nil {
		return nil, fmt.Errorf("examplegraph: parse header: %w", err)
	}
	if n < 0 || numEdges < 0 {
		return nil, fmt.Errorf("examplegraph: negative vertex_count or edge_count in header")
	}

	edgeOffset := make([]uint32, n)
	edges := make([]uint32, 0, numEdges)
	for i := 0; i < n; i++ {
		edgeOffset[i] = uint32(len(edges))
		if !sc.Scan() {
			return nil, fmt.Errorf("examplegraph: expected %d vertex lines, got %d", n, i)
		}
		for _, field := range strings.Fields(sc.Text()) {
			ref, err := strconv.ParseUint(field, 10, 32)
			if err != nil {
				return nil, fmt.Errorf("examplegraph: vertex %d: %w", i, err)
			}
			if ref == 0 {
				return nil, fmt.Errorf("examplegraph: vertex %d: neighbor refs are 1-indexed, got 0", i)
			}
			v := uint32(ref) - 1
			if uint64(v) >= uint64(n) {
				return nil, fmt.Errorf("examplegraph: vertex %d: neighbor ref %d out of range [1,%d]", i, ref, n)
			}
			edges = append(edges, v)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("examplegraph: scan: %w", err)
	}
	if len(edges) != numEdges {
		return nil, fmt.Errorf("examplegraph: header declared edge_count %d, got %d", numEdges, len(edges))
	}

	weights := make([]uint32, len(edges))
	for i := range weights {
		weights[i] = 1
	}

	return &graph.Level{N: uint32(n), M: uint32(len(edges)), EdgeOffset: edgeOffset, Edges: edges, EdgeWeights: weights}, nil
}
