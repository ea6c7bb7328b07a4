package world

import (
	"fmt"
	"sort"

	"hamletworks/internal/sim/grid"
)

type BuildingState uint8

const (
	UnderConstruction BuildingState = iota
	Active
)

func (s BuildingState) String() string {
	if s == UnderConstruction {
		return "under_construction"
	}
	return "active"
}

type Building struct {
	ID    grid.BuildingID `json:"id"`
	Type  string          `json:"type"`
	Pos   grid.Pos        `json:"pos"` // top-left corner of the footprint
	W     int             `json:"w"`
	H     int             `json:"h"`
	State BuildingState   `json:"state"`

	// Construction progress in milli-ticks of work; completes when it
	// reaches ConstructionTicks*1000.
	ProgressMilli     int `json:"progress_milli"`
	ConstructionTicks int `json:"construction_ticks"`

	WorkerCap int        `json:"worker_cap"`
	Workers   []WorkerID `json:"workers"` // kept sorted ascending

	Stock *Stockpile `json:"stock"`

	RecipeID            string `json:"recipe_id,omitempty"`
	RecipeProgressMilli int    `json:"recipe_progress_milli"`
	RecipeTicks         int    `json:"recipe_ticks"`
}

// Entrance is the approach tile workers path to: one tile below the
// bottom-left corner of the footprint.
func (b *Building) Entrance() grid.Pos {
	return grid.Pos{X: b.Pos.X, Y: b.Pos.Y + b.H}
}

func (b *Building) addWorker(id WorkerID) {
	b.Workers = append(b.Workers, id)
	sort.Slice(b.Workers, func(i, j int) bool { return b.Workers[i] < b.Workers[j] })
}

func (b *Building) removeWorker(id WorkerID) bool {
	for i, w := range b.Workers {
		if w == id {
			b.Workers = append(b.Workers[:i], b.Workers[i+1:]...)
			return true
		}
	}
	return false
}

// placeBuilding validates footprint and spawns a new building in
// under-construction state. Used by the place_building event and by
// snapshot import.
func (w *World) placeBuilding(typ string, at grid.Pos) (*Building, error) {
	def, ok := w.content.Building(typ)
	if !ok {
		return nil, fmt.Errorf("unknown building type %q", typ)
	}
	if !w.grid.IsBuildable(at, def.Width, def.Height) {
		return nil, fmt.Errorf("cannot build %q at %d,%d", typ, at.X, at.Y)
	}

	id := grid.BuildingID(w.counters.NextBuilding)
	w.counters.NextBuilding++

	b := &Building{
		ID:                id,
		Type:              typ,
		Pos:               at,
		W:                 def.Width,
		H:                 def.Height,
		State:             UnderConstruction,
		ConstructionTicks: w.ticksFor(def.ConstructionTime),
		WorkerCap:         def.WorkerCapacity,
		Stock:             NewStockpile(def.StockpileCap),
	}
	if err := w.grid.SetOccupant(at, b.W, b.H, id); err != nil {
		return nil, err
	}
	w.buildings[id] = b
	return b, nil
}

// demolishBuilding removes a building, frees its tiles, unassigns its
// workers, and returns its stockpile contents to the global stock.
func (w *World) demolishBuilding(id grid.BuildingID) error {
	b, ok := w.buildings[id]
	if !ok {
		return fmt.Errorf("no building %d", id)
	}
	for _, wid := range append([]WorkerID(nil), b.Workers...) {
		if wk, ok := w.workers[wid]; ok {
			wk.Home = 0
			w.abandonTasks(wk)
		}
	}
	for _, res := range b.Stock.resourceKinds() {
		w.globalStock[res] += b.Stock.Count(res)
	}
	w.grid.ClearOccupant(b.Pos, b.W, b.H, b.ID)
	// Haul tasks pointing at the demolished building are abandoned; the
	// transport system re-plans those workers next tick.
	for _, wid := range w.workerIDs() {
		wk := w.workers[wid]
		if wk.Haul != nil && (wk.Haul.Source == id || wk.Haul.Dest == id) {
			w.abandonTasks(wk)
		}
	}
	delete(w.buildings, id)
	return nil
}
