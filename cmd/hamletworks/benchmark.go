package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hamletworks/internal/persistence/indexdb"
	"hamletworks/internal/sim/scenario"
	"hamletworks/internal/sim/world"
	"hamletworks/internal/sim/worldgen"
)

// Benchmark presets size the scripted economy and the run length.
var benchPresets = map[string]struct {
	pairs int
	ticks uint64
}{
	"quick":    {pairs: 2, ticks: 1000},
	"standard": {pairs: 4, ticks: 6000},
	"long":     {pairs: 8, ticks: 20000},
}

func newBenchmarkCmd(root *rootFlags) *cobra.Command {
	var (
		seed        int64
		tps         int
		ticks       uint64
		scenarioArg string
		iterations  int
		indexPath   string
	)
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Time the simulation loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(os.Stdout, "[benchmark] ", log.LstdFlags|log.Lmsgprefix)

			set, err := root.loadContent()
			if err != nil {
				return err
			}
			preset, ok := benchPresets[scenarioArg]
			if !ok {
				return fmt.Errorf("unknown benchmark scenario %q (quick, standard, long)", scenarioArg)
			}
			script := scenario.Benchmark(preset.pairs)
			if ticks == 0 {
				ticks = preset.ticks
			}

			var idx *indexdb.Index
			var runID string
			if indexPath != "" {
				idx, err = indexdb.Open(indexPath)
				if err != nil {
					return err
				}
				defer idx.Close()
				runID, err = idx.StartRun(seed, tps, scenarioArg, set.Digest, "")
				if err != nil {
					return err
				}
			}

			for i := 0; i < iterations; i++ {
				g := worldgen.Generate(set.MapGen, seed)
				w := world.New(world.Config{Seed: seed, TPS: tps}, set, g)

				start := time.Now()
				for w.CurrentTick() < ticks {
					events, err := script.EventsFor(w.CurrentTick())
					if err != nil {
						return err
					}
					if _, err := w.Step(events); err != nil {
						return err
					}
				}
				elapsed := time.Since(start)

				cache := w.PathCache()
				perSec := float64(ticks) / elapsed.Seconds()
				logger.Printf("iteration %d: %d ticks in %s (%.0f ticks/s), cache %d hits / %d misses / %d live",
					i+1, ticks, elapsed.Round(time.Millisecond), perSec, cache.Hits, cache.Misses, cache.Len())

				if idx != nil {
					err := idx.RecordBenchmark(indexdb.BenchmarkResult{
						RunID:       runID,
						Scenario:    scenarioArg,
						Ticks:       ticks,
						WallMillis:  elapsed.Milliseconds(),
						TicksPerSec: perSec,
						CacheHits:   cache.Hits,
						CacheMisses: cache.Misses,
					})
					if err != nil {
						return err
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "world seed")
	cmd.Flags().IntVar(&tps, "tps", 20, "simulation ticks per second")
	cmd.Flags().Uint64Var(&ticks, "ticks", 0, "ticks per iteration (0 = scenario default)")
	cmd.Flags().StringVar(&scenarioArg, "scenario", "standard", "benchmark scenario: quick, standard or long")
	cmd.Flags().IntVar(&iterations, "iterations", 3, "number of timed iterations")
	cmd.Flags().StringVar(&indexPath, "index", "", "record results in this sqlite database")
	return cmd
}
