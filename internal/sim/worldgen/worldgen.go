// Package worldgen produces terrain deterministically from a seed and
// mapgen parameters. The same seed and parameters always yield the same
// grid, tile for tile.
package worldgen

import (
	"math/rand"

	"github.com/aquilax/go-perlin"

	"hamletworks/internal/content"
	"hamletworks/internal/sim/grid"
)

const (
	noiseAlpha = 2.0
	noiseBeta  = 2.0
	noiseDepth = 3
	noiseScale = 0.1
)

// Generate builds a fresh grid. A non-zero seed in the mapgen def wins
// over the run seed so content can pin a fixed map.
func Generate(def content.MapGenDef, seed int64) *grid.Grid {
	if def.Seed != 0 {
		seed = def.Seed
	}
	g := grid.New(def.Width, def.Height)

	forest := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseDepth, seed)
	stone := perlin.NewPerlin(noiseAlpha, noiseBeta, noiseDepth, seed+1)

	for y := 0; y < def.Height; y++ {
		for x := 0; x < def.Width; x++ {
			p := grid.Pos{X: x, Y: y}
			fx, fy := float64(x)*noiseScale, float64(y)*noiseScale
			// Noise2D is in [-1,1]; map to [0,1] and compare against the
			// density so density 0 yields none and 1 covers everything.
			fn := (forest.Noise2D(fx, fy) + 1) / 2
			sn := (stone.Noise2D(fx, fy) + 1) / 2
			switch {
			case fn > 1-def.ForestDensity:
				g.SetTerrain(p, grid.Forest)
			case sn > 1-def.StoneDensity:
				g.SetTerrain(p, grid.Stone)
			}
		}
	}

	carveWater(g, def, seed)
	return g
}

// carveWater stamps small lakes at PRNG-chosen centers. The stream is
// seeded independently of the noise so parameter tweaks to densities do
// not move the lakes.
func carveWater(g *grid.Grid, def content.MapGenDef, seed int64) {
	rng := rand.New(rand.NewSource(seed ^ 0x77a7e5))
	for i := 0; i < def.WaterPatches; i++ {
		cx := rng.Intn(def.Width)
		cy := rng.Intn(def.Height)
		radius := 2 + rng.Intn(2)
		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx*dx+dy*dy > radius*radius {
					continue
				}
				g.SetTerrain(grid.Pos{X: cx + dx, Y: cy + dy}, grid.Water)
			}
		}
	}
}

// LayRoad draws an L-shaped road between two points, horizontal leg
// first. Water is not bridged.
func LayRoad(g *grid.Grid, from, to grid.Pos) {
	step := func(p grid.Pos) {
		if g.At(p).Terrain != grid.Water {
			g.SetTerrain(p, grid.Road)
		}
	}
	x := from.X
	for x != to.X {
		step(grid.Pos{X: x, Y: from.Y})
		if x < to.X {
			x++
		} else {
			x--
		}
	}
	y := from.Y
	for {
		step(grid.Pos{X: to.X, Y: y})
		if y == to.Y {
			break
		}
		if y < to.Y {
			y++
		} else {
			y--
		}
	}
}
