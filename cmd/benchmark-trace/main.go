package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/tmh-gis/sewertrace/pkg/network"
	"github.com/tmh-gis/sewertrace/pkg/trace"
)

// Benchmarks graph build and trace over a synthetic gravity network:
// a branching tree draining to one outfall, plus a configurable
// fraction of cross-connections so the multigraph/cycle paths get
// exercised too.

func main() {
	pipeCount := flag.Int("pipes", 100000, "Number of pipes to generate")
	crossFrac := flag.Float64("cross", 0.02, "Fraction of extra cross-connection pipes")
	seedCount := flag.Int("seeds", 10, "Number of trace seeds to sample")
	runs := flag.Int("runs", 5, "Trace repetitions per direction")
	rngSeed := flag.Int64("rng", 42, "RNG seed")
	flag.Parse()

	rng := rand.New(rand.NewSource(*rngSeed))

	fmt.Printf("Generating synthetic network: %d pipes, %.1f%% cross-connections\n", *pipeCount, *crossFrac*100)
	pipes := generate(rng, *pipeCount, *crossFrac)

	start := time.Now()
	g, warnings := network.Build("synthetic", pipes, nil)
	buildTime := time.Since(start)
	fmt.Printf("Build: %d pipes, %d nodes in %v (%d warnings)\n",
		g.PipeCount(), g.NodeCount(), buildTime, len(warnings))

	seeds := make([]network.PipeID, 0, *seedCount)
	for i := 0; i < *seedCount; i++ {
		seeds = append(seeds, pipes[rng.Intn(len(pipes))].ID)
	}

	for _, dir := range []network.Direction{network.Upstream, network.Downstream} {
		var total time.Duration
		var visited int
		for i := 0; i < *runs; i++ {
			start := time.Now()
			res, err := trace.Run(g, seeds, trace.Options{Direction: dir})
			if err != nil {
				fmt.Fprintf(os.Stderr, "trace failed: %v\n", err)
				os.Exit(1)
			}
			total += time.Since(start)
			visited = len(res.Pipes)
		}
		avg := total / time.Duration(*runs)
		fmt.Printf("Trace %-10s: %d seeds -> %d pipes, avg %v (%.0f pipes/sec)\n",
			dir, len(seeds), visited, avg, float64(visited)/avg.Seconds())
	}
}

// generate builds a random drainage tree: pipe i runs from node i+1
// down to a random earlier node, so everything eventually reaches node
// 0 (the outfall). Cross-connections add parallel paths and loops.
func generate(rng *rand.Rand, count int, crossFrac float64) []network.Pipe {
	pipes := make([]network.Pipe, 0, count)

	for i := 0; i < count; i++ {
		from := i + 1
		to := rng.Intn(from)
		pipes = append(pipes, network.Pipe{
			ID:        network.PipeID(fmt.Sprintf("P%06d", i)),
			StartNode: network.NodeID(fmt.Sprintf("N%06d", from)),
			EndNode:   network.NodeID(fmt.Sprintf("N%06d", to)),
		})
	}

	crosses := int(float64(count) * crossFrac)
	for i := 0; i < crosses; i++ {
		a := rng.Intn(count + 1)
		b := rng.Intn(count + 1)
		pipes = append(pipes, network.Pipe{
			ID:        network.PipeID(fmt.Sprintf("X%06d", i)),
			StartNode: network.NodeID(fmt.Sprintf("N%06d", a)),
			EndNode:   network.NodeID(fmt.Sprintf("N%06d", b)),
		})
	}
	return pipes
}
