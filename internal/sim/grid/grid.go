// Package grid owns tile state: terrain, movement cost, occupancy. It is
// mutated only through SetOccupant/ClearOccupant/SetTerrain so that every
// change can be pushed synchronously to the path cache.
package grid

import "fmt"

type TerrainKind uint8

const (
	Grass TerrainKind = iota
	Water
	Stone
	Forest
	Road
)

func (k TerrainKind) String() string {
	switch k {
	case Grass:
		return "grass"
	case Water:
		return "water"
	case Stone:
		return "stone"
	case Forest:
		return "forest"
	case Road:
		return "road"
	}
	return fmt.Sprintf("terrain(%d)", uint8(k))
}

// baseCostMilli is the cost to enter a tile of the given terrain, in
// thousandths of a plain-tile step. Zero means impassable.
var baseCostMilli = [...]int{
	Grass:  1000,
	Water:  0,
	Stone:  1500,
	Forest: 2000,
	Road:   500,
}

// Pos is a tile coordinate.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// ManhattanTo is the grid distance ignoring terrain; the A* heuristic
// scales it by the cheapest per-tile cost to stay admissible.
func (p Pos) ManhattanTo(o Pos) int {
	dx := p.X - o.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - o.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// BuildingID indexes buildings in the world; 0 means no occupant.
type BuildingID uint64

type Tile struct {
	Terrain  TerrainKind `json:"terrain"`
	Occupant BuildingID  `json:"occupant,omitempty"`
}

// MutationHook observes every occupancy or terrain change, in the same
// tick it happens.
type MutationHook func(Pos)

type Grid struct {
	width, height int
	tiles         []Tile
	hooks         []MutationHook
}

func New(width, height int) *Grid {
	return &Grid{
		width:  width,
		height: height,
		tiles:  make([]Tile, width*height),
	}
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

func (g *Grid) InBounds(p Pos) bool {
	return p.X >= 0 && p.Y >= 0 && p.X < g.width && p.Y < g.height
}

func (g *Grid) idx(p Pos) int { return p.Y*g.width + p.X }

// At returns the tile at p. Out-of-bounds positions read as water so
// callers uniformly treat them as impassable and unbuildable.
func (g *Grid) At(p Pos) Tile {
	if !g.InBounds(p) {
		return Tile{Terrain: Water}
	}
	return g.tiles[g.idx(p)]
}

// BaseCostMilli is the terrain entry cost at p; 0 = impassable.
func (g *Grid) BaseCostMilli(p Pos) int {
	return baseCostMilli[g.At(p).Terrain]
}

// KindCostMilli is the base entry cost for a terrain kind; 0 = impassable.
func KindCostMilli(k TerrainKind) int {
	return baseCostMilli[k]
}

// OnMutate registers a hook fired for every tile change.
func (g *Grid) OnMutate(h MutationHook) {
	g.hooks = append(g.hooks, h)
}

func (g *Grid) notify(p Pos) {
	for _, h := range g.hooks {
		h(p)
	}
}

// SetTerrain is used by map generation and load; it fires mutation hooks
// because terrain cost affects cached paths.
func (g *Grid) SetTerrain(p Pos, k TerrainKind) {
	if !g.InBounds(p) {
		return
	}
	t := &g.tiles[g.idx(p)]
	if t.Terrain == k {
		return
	}
	t.Terrain = k
	g.notify(p)
}

// IsBuildable reports whether every tile covered by a footprint anchored
// at origin is in bounds, unoccupied, and on ground that permits building
// (water and forest do not).
func (g *Grid) IsBuildable(origin Pos, w, h int) bool {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			p := Pos{origin.X + dx, origin.Y + dy}
			if !g.InBounds(p) {
				return false
			}
			t := g.tiles[g.idx(p)]
			if t.Occupant != 0 {
				return false
			}
			if t.Terrain == Water || t.Terrain == Forest {
				return false
			}
		}
	}
	return true
}

// SetOccupant marks the footprint as occupied by id. Callers must have
// checked IsBuildable; double occupation is a programming error.
func (g *Grid) SetOccupant(origin Pos, w, h int, id BuildingID) error {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			p := Pos{origin.X + dx, origin.Y + dy}
			if !g.InBounds(p) {
				return fmt.Errorf("grid: footprint %dx%d at (%d,%d) out of bounds", w, h, origin.X, origin.Y)
			}
			if cur := g.tiles[g.idx(p)].Occupant; cur != 0 {
				return fmt.Errorf("grid: tile (%d,%d) already occupied by building %d", p.X, p.Y, cur)
			}
		}
	}
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			p := Pos{origin.X + dx, origin.Y + dy}
			g.tiles[g.idx(p)].Occupant = id
			g.notify(p)
		}
	}
	return nil
}

// ClearOccupant releases every tile held by id within the footprint.
func (g *Grid) ClearOccupant(origin Pos, w, h int, id BuildingID) {
	for dy := 0; dy < h; dy++ {
		for dx := 0; dx < w; dx++ {
			p := Pos{origin.X + dx, origin.Y + dy}
			if !g.InBounds(p) {
				continue
			}
			t := &g.tiles[g.idx(p)]
			if t.Occupant == id {
				t.Occupant = 0
				g.notify(p)
			}
		}
	}
}

// Tiles exposes the raw tile slice for digesting and serialization.
// Read-only by convention.
func (g *Grid) Tiles() []Tile { return g.tiles }

// SetTileRaw restores one tile during snapshot import without firing
// hooks (the cache is empty at that point).
func (g *Grid) SetTileRaw(i int, t Tile) { g.tiles[i] = t }
