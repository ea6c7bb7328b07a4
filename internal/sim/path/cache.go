package path

import "hamletworks/internal/sim/grid"

// Key identifies a cached search: origin, destination, cost profile.
type Key struct {
	Origin  grid.Pos
	Dest    grid.Pos
	Profile string
}

// Cache holds completed searches across ticks. It is the only cross-tick,
// multiply-read structure in the engine; grid mutations invalidate
// exactly the entries whose sequences touch the changed tile,
// synchronously in the mutating tick.
type Cache struct {
	entries map[Key]Path
	byTile  map[grid.Pos]map[Key]struct{}

	Hits   uint64
	Misses uint64
}

func NewCache() *Cache {
	return &Cache{
		entries: map[Key]Path{},
		byTile:  map[grid.Pos]map[Key]struct{}{},
	}
}

// Attach registers the cache's invalidation hook on the grid.
func (c *Cache) Attach(g *grid.Grid) {
	g.OnMutate(c.Invalidate)
}

// Find consults the cache, running and recording a fresh search on miss.
func (c *Cache) Find(g *grid.Grid, origin, dest grid.Pos, pr Profile) (Path, bool) {
	k := Key{Origin: origin, Dest: dest, Profile: pr.ID}
	if p, ok := c.entries[k]; ok {
		c.Hits++
		return p, true
	}
	c.Misses++
	p, ok := Find(g, origin, dest, pr)
	if !ok {
		// NoPath results are not cached: the mutation that would unblock
		// them cannot be tied to a tile sequence to invalidate.
		return Path{}, false
	}
	c.entries[k] = p
	for _, t := range p.Tiles {
		set, ok := c.byTile[t]
		if !ok {
			set = map[Key]struct{}{}
			c.byTile[t] = set
		}
		set[k] = struct{}{}
	}
	return p, true
}

// Invalidate removes every entry whose tile sequence includes p.
func (c *Cache) Invalidate(p grid.Pos) {
	set, ok := c.byTile[p]
	if !ok {
		return
	}
	for k := range set {
		pth, ok := c.entries[k]
		if !ok {
			continue
		}
		delete(c.entries, k)
		for _, t := range pth.Tiles {
			if s, ok := c.byTile[t]; ok {
				delete(s, k)
				if len(s) == 0 {
					delete(c.byTile, t)
				}
			}
		}
	}
}

// Len reports the number of live entries (for tests and benchmark stats).
func (c *Cache) Len() int { return len(c.entries) }
