package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"hamletworks/internal/sim/grid"
	"hamletworks/internal/sim/worldgen"
)

var terrainGlyphs = map[grid.TerrainKind]byte{
	grid.Grass:  '.',
	grid.Water:  '~',
	grid.Stone:  '^',
	grid.Forest: 'T',
	grid.Road:   '=',
}

func newGenerateMapCmd(root *rootFlags) *cobra.Command {
	var (
		seed   int64
		width  int
		height int
		output string
	)
	cmd := &cobra.Command{
		Use:   "generate-map",
		Short: "Generate a map and print it as ASCII",
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := root.loadContent()
			if err != nil {
				return err
			}
			def := set.MapGen
			if width > 0 {
				def.Width = width
			}
			if height > 0 {
				def.Height = height
			}
			g := worldgen.Generate(def, seed)
			var sb strings.Builder
			for y := 0; y < g.Height(); y++ {
				for x := 0; x < g.Width(); x++ {
					sb.WriteByte(terrainGlyphs[g.At(grid.Pos{X: x, Y: y}).Terrain])
				}
				sb.WriteByte('\n')
			}
			if output != "" {
				return os.WriteFile(output, []byte(sb.String()), 0o644)
			}
			fmt.Fprint(cmd.OutOrStdout(), sb.String())
			return nil
		},
	}
	cmd.Flags().Int64Var(&seed, "seed", 42, "world seed")
	cmd.Flags().IntVar(&width, "width", 0, "map width (0 = content default)")
	cmd.Flags().IntVar(&height, "height", 0, "map height (0 = content default)")
	cmd.Flags().StringVar(&output, "output", "", "write the map to this file instead of stdout")
	return cmd
}
