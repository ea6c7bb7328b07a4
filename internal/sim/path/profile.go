package path

import "hamletworks/internal/sim/grid"

// A Profile is a named weighting of terrain entry costs. Profile ids are
// part of the cache key; two movers with different profiles never share a
// cached path.
type Profile struct {
	ID string
	// multiplierMilli scales the grid's base cost per terrain kind;
	// 1000 = unchanged. Missing entries fall back to 1000.
	multiplierMilli map[grid.TerrainKind]int
}

// DefaultProfile is the on-foot porter weighting: base terrain costs
// as-is.
const DefaultProfile = "porter"

var profiles = map[string]Profile{
	"porter": {ID: "porter"},
	// Cart haulers pay extra off-road and less on roads.
	"cart": {ID: "cart", multiplierMilli: map[grid.TerrainKind]int{
		grid.Road:   600,
		grid.Grass:  1400,
		grid.Stone:  1800,
		grid.Forest: 2500,
	}},
}

// Lookup resolves a profile id, falling back to the porter profile for
// empty or unknown ids so content omissions stay non-fatal.
func Lookup(id string) Profile {
	if p, ok := profiles[id]; ok {
		return p
	}
	return profiles[DefaultProfile]
}

func (pr Profile) multiplier(k grid.TerrainKind) int {
	if pr.multiplierMilli != nil {
		if m, ok := pr.multiplierMilli[k]; ok && m > 0 {
			return m
		}
	}
	return 1000
}

// EntryCostMilli is the profile-adjusted cost to step onto p; 0 means the
// tile is impassable under this profile.
func (pr Profile) EntryCostMilli(g *grid.Grid, p grid.Pos) int {
	base := g.BaseCostMilli(p)
	if base == 0 {
		return 0
	}
	return base * pr.multiplier(g.At(p).Terrain) / 1000
}

// minCostMilli is the cheapest possible per-tile cost under the profile,
// used to scale the Manhattan heuristic so it stays admissible.
func (pr Profile) minCostMilli() int {
	min := 1 << 30
	for _, k := range []grid.TerrainKind{grid.Grass, grid.Stone, grid.Forest, grid.Road} {
		base := grid.KindCostMilli(k)
		if base == 0 {
			continue
		}
		if c := base * pr.multiplier(k) / 1000; c > 0 && c < min {
			min = c
		}
	}
	return min
}
