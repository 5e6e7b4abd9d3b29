package graph_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/azybler/graco/pkg/graph"
)

func buildTestLevel() *graph.Level {
	// Triangle 0-1-2 plus a pendant edge 0-3.
	return &graph.Level{
		N:           4,
		M:           8,
		EdgeOffset:  []uint32{0, 3, 5, 7},
		Edges:       []uint32{1, 2, 3, 0, 2, 0, 1, 0},
		EdgeWeights: []uint32{10, 20, 30, 10, 40, 20, 40, 30},
	}
}

func TestWriteReadLevelRoundTrip(t *testing.T) {
	original := buildTestLevel()

	dir := t.TempDir()
	path := filepath.Join(dir, "test.level.bin")

	if err := graph.WriteLevel(path, original); err != nil {
		t.Fatalf("WriteLevel: %v", err)
	}

	loaded, err := graph.ReadLevel(path)
	if err != nil {
		t.Fatalf("ReadLevel: %v", err)
	}

	if loaded.N != original.N || loaded.M != original.M {
		t.Fatalf("N/M: got (%d,%d), want (%d,%d)", loaded.N, loaded.M, original.N, original.M)
	}
	for i := range original.EdgeOffset {
		if loaded.EdgeOffset[i] != original.EdgeOffset[i] {
			t.Errorf("EdgeOffset[%d]: got %d, want %d", i, loaded.EdgeOffset[i], original.EdgeOffset[i])
		}
	}
	for i := range original.Edges {
		if loaded.Edges[i] != original.Edges[i] {
			t.Errorf("Edges[%d]: got %d, want %d", i, loaded.Edges[i], original.Edges[i])
		}
		if loaded.EdgeWeights[i] != original.EdgeWeights[i] {
			t.Errorf("EdgeWeights[%d]: got %d, want %d", i, loaded.EdgeWeights[i], original.EdgeWeights[i])
		}
	}
}

func TestReadLevelRejectsBadCSR(t *testing.T) {
	bad := buildTestLevel()
	bad.Edges[0] = 0 // self-loop on node 0

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.level.bin")
	if err := graph.WriteLevel(path, bad); err != nil {
		t.Fatalf("WriteLevel: %v", err)
	}
	if _, err := graph.ReadLevel(path); err == nil {
		t.Fatal("expected ValidateCSR to reject a self-loop on readback")
	}
}

func TestReadLevelInvalidMagic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.level.bin")
	os.WriteFile(path, []byte("NOT_THE_RIGHT_MAGIC_BYTES_AT_ALL"), 0644)

	if _, err := graph.ReadLevel(path); err == nil {
		t.Fatal("expected error for invalid magic bytes")
	}
}

func TestReadLevelTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "truncated.level.bin")
	os.WriteFile(path, []byte("GRACOLVL"), 0644)

	if _, err := graph.ReadLevel(path); err == nil {
		t.Fatal("expected error for truncated file")
	}
}
