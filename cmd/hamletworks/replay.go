package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"hamletworks/internal/persistence/replay"
)

func newReplayCmd(root *rootFlags) *cobra.Command {
	var verify bool
	cmd := &cobra.Command{
		Use:   "replay <file>",
		Short: "Inspect or verify a recorded replay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := log.New(os.Stdout, "[replay] ", log.LstdFlags|log.Lmsgprefix)
			path := args[0]

			r, err := replay.Open(path)
			if err != nil {
				return err
			}
			hdr := r.Header
			r.Close()
			logger.Printf("replay %s: seed=%d tps=%d map=%dx%d content=%s",
				path, hdr.Seed, hdr.TPS, hdr.MapGen.Width, hdr.MapGen.Height, hdr.ContentDigest)

			if !verify {
				return nil
			}
			set, err := root.loadContent()
			if err != nil {
				return err
			}
			ticks, err := replay.Verify(path, set)
			if err != nil {
				return fmt.Errorf("verification failed after %d ticks: %w", ticks, err)
			}
			logger.Printf("verified %d ticks, all digests match", ticks)
			return nil
		},
	}
	cmd.Flags().BoolVar(&verify, "verify", false, "re-simulate and check every recorded digest")
	return cmd
}
