package world

import "hamletworks/internal/sim/grid"

// RenderState is the read-only projection handed to observers (the
// websocket broadcaster, the CLI printer). It is rebuilt on demand and
// never aliases live simulation state.
type RenderState struct {
	Tick      uint64          `json:"tick"`
	TPS       int             `json:"tps"`
	Speed     int             `json:"speed"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Stock     map[string]int  `json:"stock"`
	Buildings []BuildingView  `json:"buildings"`
	Workers   []WorkerView    `json:"workers"`
	Terrain   []TerrainRow    `json:"terrain,omitempty"`
}

type TerrainRow struct {
	Y     int      `json:"y"`
	Kinds []string `json:"kinds"`
}

type BuildingView struct {
	ID       grid.BuildingID `json:"id"`
	Type     string          `json:"type"`
	X        int             `json:"x"`
	Y        int             `json:"y"`
	W        int             `json:"w"`
	H        int             `json:"h"`
	State    string          `json:"state"`
	Progress float64         `json:"progress"` // 0..1 of construction or recipe run
	Recipe   string          `json:"recipe,omitempty"`
	Workers  []WorkerID      `json:"workers,omitempty"`
	Stock    map[string]int  `json:"stock,omitempty"`
}

type WorkerView struct {
	ID       WorkerID    `json:"id"`
	Type     string      `json:"type"`
	X        int         `json:"x"`
	Y        int         `json:"y"`
	State    WorkerState `json:"state"`
	Home     uint64      `json:"home,omitempty"`
	Resource string      `json:"resource,omitempty"`
	Amount   int         `json:"amount,omitempty"`
}

// Render builds the current view. withTerrain includes the full terrain
// raster; observers request it once and then apply incremental frames.
func (w *World) Render(withTerrain bool) RenderState {
	rs := RenderState{
		Tick:   w.clock.Tick,
		TPS:    w.clock.TPS,
		Speed:  w.clock.Speed,
		Width:  w.grid.Width(),
		Height: w.grid.Height(),
		Stock:  map[string]int{},
	}
	for res, qty := range w.globalStock {
		rs.Stock[res] = qty
	}

	for _, id := range w.buildingIDs() {
		b := w.buildings[id]
		bv := BuildingView{
			ID: b.ID, Type: b.Type,
			X: b.Pos.X, Y: b.Pos.Y, W: b.W, H: b.H,
			State:   b.State.String(),
			Recipe:  b.RecipeID,
			Workers: append([]WorkerID(nil), b.Workers...),
			Stock:   map[string]int{},
		}
		switch {
		case b.State == UnderConstruction && b.ConstructionTicks > 0:
			bv.Progress = float64(b.ProgressMilli) / float64(b.ConstructionTicks*1000)
		case b.RecipeTicks > 0:
			bv.Progress = float64(b.RecipeProgressMilli) / float64(b.RecipeTicks*1000)
		}
		for _, res := range b.Stock.resourceKinds() {
			bv.Stock[res] = b.Stock.Count(res)
		}
		rs.Buildings = append(rs.Buildings, bv)
	}

	for _, id := range w.workerIDs() {
		wk := w.workers[id]
		wv := WorkerView{
			ID: wk.ID, Type: wk.Type,
			X: wk.Pos.X, Y: wk.Pos.Y,
			State: w.workerState(wk),
			Home:  uint64(wk.Home),
		}
		if wk.Haul != nil && wk.Haul.PickedUp {
			wv.Resource = wk.Haul.Resource
			wv.Amount = wk.Haul.Amount
		}
		rs.Workers = append(rs.Workers, wv)
	}

	if withTerrain {
		for y := 0; y < w.grid.Height(); y++ {
			row := TerrainRow{Y: y, Kinds: make([]string, w.grid.Width())}
			for x := 0; x < w.grid.Width(); x++ {
				row.Kinds[x] = w.grid.At(grid.Pos{X: x, Y: y}).Terrain.String()
			}
			rs.Terrain = append(rs.Terrain, row)
		}
	}
	return rs
}
