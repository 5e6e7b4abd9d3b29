package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/azybler/graco/internal/compute"
	"github.com/azybler/graco/internal/examplegraph"
	"github.com/azybler/graco/pkg/graph"
	"github.com/azybler/graco/pkg/level"
)

func main() {
	input := flag.String("input", "", "Path to a per-vertex adjacency-list text file (see internal/examplegraph.ParseText)")
	gridDims := flag.String("grid", "", "Alternative to --input: build a ROWSxCOLS 4-connectivity grid graph, e.g. 64x64")
	outDir := flag.String("output", "levels", "Directory to write one graph.bin-style file per level into")
	minNodes := flag.Uint("min-nodes", 0, "Stop coarsening once a level reaches this many nodes or fewer")
	maxLevels := flag.Int("max-levels", 0, "Cap the number of coarsening rounds (0 = unbounded)")
	flag.Parse()

	if *input == "" && *gridDims == "" {
		fmt.Fprintln(os.Stderr, "Usage: coarsen --input <edges.txt> | --grid RxC [--output levels] [--min-nodes N] [--max-levels N]")
		os.Exit(1)
	}

	start := time.Now()

	var base *graph.Level
	if *gridDims != "" {
		var rows, cols int
		if _, err := fmt.Sscanf(*gridDims, "%dx%d", &rows, &cols); err != nil {
			log.Fatalf("Invalid --grid format (want ROWSxCOLS): %v", err)
		}
		log.Printf("Building %dx%d grid graph...", rows, cols)
		base = examplegraph.Grid(rows, cols)
	} else {
		log.Printf("Parsing edge list from %s...", *input)
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("Failed to open input file: %v", err)
		}
		defer f.Close()
		base, err = examplegraph.ParseText(f)
		if err != nil {
			log.Fatalf("Failed to parse input: %v", err)
		}
	}
	log.Printf("Base level: %d nodes, %d edge-refs", base.N, base.M)

	log.Println("Extracting largest connected component...")
	component := graph.LargestComponent(base)
	if len(component) < int(base.N) {
		base = graph.FilterToComponent(base, component)
		log.Printf("Filtered to largest component: %d nodes, %d edge-refs", base.N, base.M)
	}

	if err := graph.ValidateCSR(base); err != nil {
		log.Fatalf("Base level fails CSR validation: %v", err)
	}

	cfg := level.DefaultConfig()
	cfg.MinNodes = uint32(*minNodes)
	cfg.MaxLevels = *maxLevels
	hie := level.NewHierarchy(compute.NewDevice(), base, cfg)

	log.Println("Building coarsening hierarchy...")
	if err := hie.Build(context.Background()); err != nil {
		log.Fatalf("Coarsening failed: %v", err)
	}
	log.Printf("Hierarchy has %d levels, coarsest has %d nodes", len(hie.Levels), hie.Coarsest().N)

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		log.Fatalf("Failed to create output directory: %v", err)
	}
	for i, lvl := range hie.Levels {
		path := filepath.Join(*outDir, fmt.Sprintf("level-%03d.bin", i))
		if err := graph.WriteLevel(path, lvl); err != nil {
			log.Fatalf("Failed to write level %d: %v", i, err)
		}
	}

	elapsed := time.Since(start)
	log.Printf("Done in %s. Wrote %d levels to %s", elapsed.Round(time.Millisecond), len(hie.Levels), *outDir)
}
