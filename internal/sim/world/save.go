package world

import (
	"fmt"

	"hamletworks/internal/content"
	"hamletworks/internal/sim/grid"
)

// Save is the complete serializable simulation state. Everything the
// digest covers round-trips through it; Import of an Export produces a
// world with an identical digest.
type Save struct {
	Tick          uint64      `json:"tick"`
	TPS           int         `json:"tps"`
	Seed          int64       `json:"seed"`
	ContentDigest string      `json:"content_digest"`
	Counters      Counters    `json:"counters"`
	Width         int         `json:"width"`
	Height        int         `json:"height"`
	Tiles         []grid.Tile `json:"tiles"`

	GlobalStock map[string]int `json:"global_stock"`
	Buildings   []*Building    `json:"buildings"`
	Workers     []*Worker      `json:"workers"`
}

// Export captures the current state. The path cache and pending reports
// are presentation state and are not included.
func (w *World) Export() *Save {
	s := &Save{
		Tick:          w.clock.Tick,
		TPS:           w.clock.TPS,
		Seed:          w.seed,
		ContentDigest: w.content.Digest,
		Counters:      w.counters,
		Width:         w.grid.Width(),
		Height:        w.grid.Height(),
		Tiles:         append([]grid.Tile(nil), w.grid.Tiles()...),
		GlobalStock:   map[string]int{},
	}
	for res, qty := range w.globalStock {
		s.GlobalStock[res] = qty
	}
	// Deep copies: a save must not alias live simulation state.
	for _, id := range w.buildingIDs() {
		s.Buildings = append(s.Buildings, w.buildings[id].clone())
	}
	for _, id := range w.workerIDs() {
		s.Workers = append(s.Workers, w.workers[id].clone())
	}
	return s
}

func (b *Building) clone() *Building {
	cp := *b
	cp.Workers = append([]WorkerID(nil), b.Workers...)
	cp.Stock = &Stockpile{Capacity: b.Stock.Capacity, Items: map[string]int{}}
	for res, qty := range b.Stock.Items {
		cp.Stock.Items[res] = qty
	}
	return &cp
}

func (wk *Worker) clone() *Worker {
	cp := *wk
	if wk.Move != nil {
		m := *wk.Move
		m.Tiles = append([]grid.Pos(nil), wk.Move.Tiles...)
		cp.Move = &m
	}
	if wk.Haul != nil {
		h := *wk.Haul
		cp.Haul = &h
	}
	return &cp
}

// Import rebuilds a world from a save against the given content set. The
// caller verifies the content digest first; Import re-checks as a guard.
func Import(s *Save, set *content.Set) (*World, error) {
	if s.ContentDigest != set.Digest {
		return nil, fmt.Errorf("save was produced with content digest %s, loaded content has %s",
			s.ContentDigest, set.Digest)
	}
	if len(s.Tiles) != s.Width*s.Height {
		return nil, fmt.Errorf("save has %d tiles for a %dx%d map", len(s.Tiles), s.Width, s.Height)
	}
	g := grid.New(s.Width, s.Height)
	for i, t := range s.Tiles {
		g.SetTileRaw(i, t)
	}
	w := New(Config{Seed: s.Seed, TPS: s.TPS}, set, g)
	w.clock.Tick = s.Tick
	w.counters = s.Counters
	w.gridDirty = false
	for res, qty := range s.GlobalStock {
		w.globalStock[res] = qty
	}
	for _, b := range s.Buildings {
		if b.Stock == nil {
			b.Stock = NewStockpile(0)
		}
		if b.Stock.Items == nil {
			b.Stock.Items = map[string]int{}
		}
		w.buildings[b.ID] = b.clone()
	}
	for _, wk := range s.Workers {
		w.workers[wk.ID] = wk.clone()
	}
	return w, nil
}
