package main

import (
	"context"
	"fmt"
	"log"
	"runtime"
	"time"

	"github.com/beetlebugorg/waterway/pkg/waterway"
	"github.com/viant/afs"
)

// Compares serial and parallel compilation of the same dataset. Both runs
// produce byte-identical output; only wall time differs.
func main() {
	ctx := context.Background()
	fs := afs.New()

	dataset, err := waterway.LoadDataset(ctx, fs, "canals.json")
	if err != nil {
		log.Fatal(err)
	}

	serial := waterway.DefaultCompileOptions()
	serial.Parallel = false

	start := time.Now()
	serialResult, err := waterway.Compile(dataset, serial)
	if err != nil {
		log.Fatal(err)
	}
	serialTime := time.Since(start)

	parallel := waterway.DefaultCompileOptions()
	parallel.Workers = runtime.NumCPU()

	start = time.Now()
	parallelResult, err := waterway.Compile(dataset, parallel)
	if err != nil {
		log.Fatal(err)
	}
	parallelTime := time.Since(start)

	fmt.Printf("Serial:   %d nodes in %v\n", serialResult.Stats.Nodes, serialTime)
	fmt.Printf("Parallel: %d nodes in %v (%d workers)\n",
		parallelResult.Stats.Nodes, parallelTime, parallel.Workers)
	fmt.Printf("Speedup:  %.1fx\n", float64(serialTime)/float64(parallelTime))
}
