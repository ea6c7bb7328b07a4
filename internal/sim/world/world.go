// Package world holds the single mutable simulation aggregate and the
// fixed-order tick scheduler that advances it. All cross-references
// between entities are ids, never pointers, so snapshots serialize
// trivially and systems cannot retain aliases across ticks.
package world

import (
	"math"
	"sort"

	"hamletworks/internal/content"
	"hamletworks/internal/sim/grid"
	"hamletworks/internal/sim/path"
)

type WorkerID uint64

// Clock is owned exclusively by the scheduler. Speed is presentation
// pacing only (0 = unthrottled or paused, at the runner's discretion)
// and is excluded from the state digest.
type Clock struct {
	Tick  uint64
	TPS   int
	Speed int
}

// Counters allocate entity ids; they are part of saved state so ids stay
// stable across save/load.
type Counters struct {
	NextBuilding uint64 `json:"next_building"`
	NextWorker   uint64 `json:"next_worker"`
}

type Config struct {
	Seed int64
	TPS  int
}

// TickSink receives the applied events and digest of each completed tick.
// The world buffers nothing itself; the sink decides whether to persist.
type TickSink interface {
	Append(tick uint64, events [][]byte, digest string) error
}

type World struct {
	clock   Clock
	seed    int64
	content *content.Set

	grid  *grid.Grid
	cache *path.Cache

	buildings map[grid.BuildingID]*Building
	workers   map[WorkerID]*Worker

	globalStock map[string]int
	counters    Counters

	sink TickSink

	// gridDirty marks that some tile changed this tick; NoPath cooldowns
	// are released so blocked movers retry against the new layout.
	gridDirty bool

	warnings   []Warning
	rejections []Rejection
}

// New assembles a world over an already-generated grid. The path cache is
// attached before any building exists, so its invalidation hook sees
// every later mutation.
func New(cfg Config, set *content.Set, g *grid.Grid) *World {
	if cfg.TPS <= 0 {
		cfg.TPS = 20
	}
	w := &World{
		clock:       Clock{TPS: cfg.TPS, Speed: 1},
		seed:        cfg.Seed,
		content:     set,
		grid:        g,
		cache:       path.NewCache(),
		buildings:   map[grid.BuildingID]*Building{},
		workers:     map[WorkerID]*Worker{},
		globalStock: map[string]int{},
		counters:    Counters{NextBuilding: 1, NextWorker: 1},
	}
	w.cache.Attach(g)
	g.OnMutate(func(grid.Pos) { w.gridDirty = true })
	return w
}

func (w *World) CurrentTick() uint64    { return w.clock.Tick }
func (w *World) TPS() int               { return w.clock.TPS }
func (w *World) Seed() int64            { return w.seed }
func (w *World) Content() *content.Set  { return w.content }
func (w *World) Grid() *grid.Grid       { return w.grid }
func (w *World) PathCache() *path.Cache { return w.cache }

// SetSink installs the replay sink; nil disables recording.
func (w *World) SetSink(s TickSink) { w.sink = s }

// SetSpeed adjusts the pacing multiplier (0, 1, 2, 4). It never affects
// simulation outcomes, only how fast the runner steps.
func (w *World) SetSpeed(s int) {
	switch s {
	case 0, 1, 2, 4:
		w.clock.Speed = s
	}
}

func (w *World) SpeedMultiplier() int { return w.clock.Speed }

// GlobalStock reports the shared construction stock for one resource.
func (w *World) GlobalStock(res string) int { return w.globalStock[res] }

// ticksFor converts a content duration in seconds to whole ticks, at
// least one. Content floats only touch simulation math here, at init;
// everything past this point is integer.
func (w *World) ticksFor(seconds float64) int {
	t := int(math.Round(seconds * float64(w.clock.TPS)))
	if t < 1 {
		t = 1
	}
	return t
}

func (w *World) speedMilliPerTick(tilesPerSecond float64) int {
	v := int(math.Round(tilesPerSecond * 1000 / float64(w.clock.TPS)))
	if v < 1 {
		v = 1
	}
	return v
}

// buildingIDs returns all building ids in ascending order; every system
// iterates in this order so outcomes never depend on map layout.
func (w *World) buildingIDs() []grid.BuildingID {
	ids := make([]grid.BuildingID, 0, len(w.buildings))
	for id := range w.buildings {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (w *World) workerIDs() []WorkerID {
	ids := make([]WorkerID, 0, len(w.workers))
	for id := range w.workers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Building looks up a building by id (read access for tests and the
// renderer boundary).
func (w *World) Building(id grid.BuildingID) (*Building, bool) {
	b, ok := w.buildings[id]
	return b, ok
}

func (w *World) Worker(id WorkerID) (*Worker, bool) {
	wk, ok := w.workers[id]
	return wk, ok
}

func (w *World) BuildingCount() int { return len(w.buildings) }
func (w *World) WorkerCount() int   { return len(w.workers) }
