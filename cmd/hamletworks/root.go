package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hamletworks/internal/content"
)

type rootFlags struct {
	dataDir string
	modsDir string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	cmd := &cobra.Command{
		Use:           "hamletworks",
		Short:         "Deterministic settlement economy simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVar(&flags.dataDir, "data", "configs/data", "base content directory")
	cmd.PersistentFlags().StringVar(&flags.modsDir, "mods", "configs/mods", "mods directory")

	cmd.AddCommand(
		newRunCmd(flags),
		newReplayCmd(flags),
		newBenchmarkCmd(flags),
		newGenerateMapCmd(flags),
		newValidateDataCmd(flags),
	)
	return cmd
}

func (f *rootFlags) loadContent() (*content.Set, error) {
	set, err := content.Load(f.dataDir, f.modsDir)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	return set, nil
}
