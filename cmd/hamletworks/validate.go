package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateDataCmd(root *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate-data",
		Short: "Validate content and mods without running",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := root.loadContent()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "content digest: %s\n", set.Digest)
			fmt.Fprintf(out, "buildings: %d, recipes: %d, workers: %d\n",
				len(set.Buildings), len(set.Recipes), len(set.Workers))
			for _, mod := range set.Mods {
				fmt.Fprintf(out, "mod %s %s (priority %d)\n", mod.ID, mod.Version, mod.Priority)
			}
			return nil
		},
	}
	return cmd
}
