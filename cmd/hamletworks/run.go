package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"

	"hamletworks/internal/persistence/indexdb"
	"hamletworks/internal/persistence/replay"
	"hamletworks/internal/persistence/snapshot"
	"hamletworks/internal/sim/scenario"
	"hamletworks/internal/sim/world"
	"hamletworks/internal/sim/worldgen"
	"hamletworks/internal/transport/observer"
)

func newRunCmd(root *rootFlags) *cobra.Command {
	var (
		seed        int64
		tps         int
		ticks       uint64
		scenarioArg string
		recordPath  string
		loadPath    string
		savePath    string
		speed       int
		listenAddr  string
		indexPath   string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(os.Stdout, "[run] ", log.LstdFlags|log.Lmsgprefix)

			set, err := root.loadContent()
			if err != nil {
				return err
			}

			var w *world.World
			if loadPath != "" {
				w, err = snapshot.Read(loadPath, set)
				if err != nil {
					return err
				}
				logger.Printf("restored snapshot %s at tick %d", loadPath, w.CurrentTick())
			} else {
				g := worldgen.Generate(set.MapGen, seed)
				w = world.New(world.Config{Seed: seed, TPS: tps}, set, g)
			}
			w.SetSpeed(speed)

			var script *scenario.Scenario
			if scenarioArg != "" {
				script, err = scenario.Lookup(scenarioArg)
				if err != nil {
					return err
				}
			}

			if recordPath != "" {
				if loadPath != "" {
					return fmt.Errorf("--record starts from tick 0 and cannot be combined with --load")
				}
				rw, err := replay.Create(recordPath, replay.Header{
					Seed:          seed,
					TPS:           w.TPS(),
					MapGen:        set.MapGen,
					ContentDigest: set.Digest,
				})
				if err != nil {
					return err
				}
				defer rw.Close()
				w.SetSink(rw)
				logger.Printf("recording to %s", recordPath)
			}

			var idx *indexdb.Index
			var runID string
			if indexPath != "" {
				idx, err = indexdb.Open(indexPath)
				if err != nil {
					return err
				}
				defer idx.Close()
				runID, err = idx.StartRun(seed, w.TPS(), scenarioArg, set.Digest, recordPath)
				if err != nil {
					return err
				}
				logger.Printf("run %s", runID)
			}

			var obs *observer.Server
			if listenAddr != "" {
				obs = observer.NewServer(log.New(os.Stdout, "[observer] ", log.LstdFlags|log.Lmsgprefix))
				if err := obs.SetBootstrap(w.Render(true)); err != nil {
					return err
				}
				go func() {
					if err := obs.ListenAndServe(listenAddr); err != nil {
						logger.Printf("observer server stopped: %v", err)
					}
				}()
			}

			var pacing <-chan time.Time
			if m := w.SpeedMultiplier(); m > 0 {
				t := time.NewTicker(time.Second / time.Duration(w.TPS()*m))
				defer t.Stop()
				pacing = t.C
			}

			start := time.Now()
			end := w.CurrentTick() + ticks
			var last world.TickResult
			for w.CurrentTick() < end {
				var events [][]byte
				if script != nil {
					events, err = script.EventsFor(w.CurrentTick())
					if err != nil {
						return err
					}
				}
				res, err := w.Step(events)
				if err != nil {
					return err
				}
				last = res
				for _, rej := range res.Rejections {
					logger.Printf("tick %d rejected %s: %s", rej.Tick, rej.Kind, rej.Reason)
				}
				for _, warn := range res.Warnings {
					logger.Printf("tick %d warning: %s", warn.Tick, warn.Message)
					if idx != nil {
						idx.RecordWarning(runID, warn.Tick, warn.Message)
					}
				}
				if obs != nil {
					_ = obs.Publish(w.Render(false))
				}
				if pacing != nil {
					<-pacing
				}
			}
			elapsed := time.Since(start)
			logger.Printf("simulated %d ticks in %s, final digest %s", ticks, elapsed.Round(time.Millisecond), last.Digest)

			if idx != nil {
				if err := idx.FinishRun(runID, last.Tick, last.Digest); err != nil {
					return err
				}
			}
			if savePath != "" {
				if err := snapshot.Write(savePath, w); err != nil {
					return err
				}
				logger.Printf("snapshot written to %s", savePath)
			}
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "world seed")
	cmd.Flags().IntVar(&tps, "tps", 20, "simulation ticks per second")
	cmd.Flags().Uint64Var(&ticks, "ticks", 1200, "number of ticks to simulate")
	cmd.Flags().StringVar(&scenarioArg, "scenario", "", "scripted scenario to feed (demo, benchmark)")
	cmd.Flags().StringVar(&recordPath, "record", "", "record a replay to this file")
	cmd.Flags().StringVar(&loadPath, "load", "", "start from a snapshot file")
	cmd.Flags().StringVar(&savePath, "save", "", "write a snapshot at the end")
	cmd.Flags().IntVar(&speed, "speed", 0, "pacing multiplier (0 = unthrottled, 1, 2, 4)")
	cmd.Flags().StringVar(&listenAddr, "listen", "", "serve observer websocket on this address")
	cmd.Flags().StringVar(&indexPath, "index", "", "record run metadata in this sqlite database")
	return cmd
}
