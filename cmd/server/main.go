package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/azybler/graco/internal/compute"
	"github.com/azybler/graco/pkg/api"
	"github.com/azybler/graco/pkg/graph"
	"github.com/azybler/graco/pkg/level"
)

func main() {
	graphPath := flag.String("graph", "graph.bin", "Path to a graph.Level written by cmd/coarsen -output")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	minNodes := flag.Uint("min-nodes", 0, "Stop coarsening once a level reaches this many nodes or fewer")
	flag.Parse()

	start := time.Now()

	log.Printf("Loading graph from %s...", *graphPath)
	base, err := graph.ReadLevel(*graphPath)
	if err != nil {
		log.Fatalf("Failed to load graph: %v", err)
	}
	log.Printf("Loaded: %d nodes, %d edge-refs", base.N, base.M)

	cfg := level.DefaultConfig()
	cfg.MinNodes = uint32(*minNodes)
	hie := level.NewHierarchy(compute.NewDevice(), base, cfg)

	// Reclaim memory from init-time temporaries: Go's heap otherwise
	// retains peak RSS from building the initial buffers.
	runtime.GC()
	debug.FreeOSMemory()

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	addr := fmt.Sprintf(":%d", *port)
	srvCfg := api.DefaultConfig(addr)
	srvCfg.CORSOrigin = *corsOrigin

	handlers := api.NewHandlers(hie)
	srv := api.NewServer(srvCfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}
