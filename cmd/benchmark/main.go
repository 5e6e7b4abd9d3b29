package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/azybler/graco/internal/compute"
	"github.com/azybler/graco/internal/examplegraph"
	"github.com/azybler/graco/pkg/graph"
	"github.com/azybler/graco/pkg/level"
)

// trialResult holds one seed's one-round matching-and-contraction outcome.
type trialResult struct {
	seed    uint32
	coarseN uint32
	coarseM uint32
	elapsed time.Duration
}

func main() {
	input := flag.String("input", "", "Path to a per-vertex adjacency-list text file (see internal/examplegraph.ParseText)")
	gridDims := flag.String("grid", "16x16", "Alternative to --input: ROWSxCOLS grid graph")
	trials := flag.Int("trials", 8, "Number of independent coarsening trials to fan out")
	baseSeed := flag.Uint("seed", 1, "First PRNG seed; trial i uses seed+i")
	flag.Parse()

	var base *graph.Level
	if *input != "" {
		f, err := os.Open(*input)
		if err != nil {
			log.Fatalf("Failed to open input file: %v", err)
		}
		defer f.Close()
		base, err = examplegraph.ParseText(f)
		if err != nil {
			log.Fatalf("Failed to parse input: %v", err)
		}
	} else {
		var rows, cols int
		if _, err := fmt.Sscanf(*gridDims, "%dx%d", &rows, &cols); err != nil {
			log.Fatalf("Invalid --grid format (want ROWSxCOLS): %v", err)
		}
		base = examplegraph.Grid(rows, cols)
	}
	log.Printf("Base level: %d nodes, %d edge-refs, fanning out %d trials", base.N, base.M, *trials)

	results := make([]trialResult, *trials)
	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < *trials; i++ {
		i := i
		g.Go(func() error {
			seed := uint32(*baseSeed) + uint32(i)
			start := time.Now()

			dev := compute.NewDevice()
			cfg := level.DefaultConfig()
			cfg.Match.PRNGSeed = seed
			cfg.MaxLevels = 1
			hie := level.NewHierarchy(dev, base, cfg)
			if err := hie.Build(ctx); err != nil {
				return fmt.Errorf("trial seed=%d: %w", seed, err)
			}

			coarsest := hie.Coarsest()
			results[i] = trialResult{
				seed:    seed,
				coarseN: coarsest.N,
				coarseM: coarsest.M,
				elapsed: time.Since(start),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		log.Fatalf("Benchmark run failed: %v", err)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].seed < results[j].seed })
	fmt.Printf("%-8s %-12s %-12s %-10s\n", "seed", "coarse_n", "coarse_m", "elapsed")
	minN, maxN := results[0].coarseN, results[0].coarseN
	for _, r := range results {
		fmt.Printf("%-8d %-12d %-12d %-10s\n", r.seed, r.coarseN, r.coarseM, r.elapsed.Round(time.Microsecond))
		if r.coarseN < minN {
			minN = r.coarseN
		}
		if r.coarseN > maxN {
			maxN = r.coarseN
		}
	}
	// Matching is a deterministic function of the adjacency/weight
	// structure alone (color never gates proposal eligibility), so every
	// seed collapses the same edges; minN == maxN here is expected, not a
	// bug in the fan-out.
	fmt.Printf("\ncoarse_n range across seeds: [%d, %d]\n", minN, maxN)
}
