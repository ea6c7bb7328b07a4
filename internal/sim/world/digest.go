package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"
)

// Digest hashes the full simulation state in a fixed traversal order.
// Two worlds that ever produce different digests at the same tick have
// diverged. Presentation state (path cache, warnings, pacing speed) is
// excluded.
func (w *World) Digest() string {
	h := sha256.New()

	writeU64(h, w.clock.Tick)
	writeU64(h, uint64(w.clock.TPS))
	writeI64(h, w.seed)
	writeStr(h, w.content.Digest)
	writeU64(h, w.counters.NextBuilding)
	writeU64(h, w.counters.NextWorker)

	writeU64(h, uint64(w.grid.Width()))
	writeU64(h, uint64(w.grid.Height()))
	for _, t := range w.grid.Tiles() {
		h.Write([]byte{byte(t.Terrain)})
		writeU64(h, uint64(t.Occupant))
	}

	for _, res := range sortedKeys(w.globalStock) {
		writeStr(h, res)
		writeU64(h, uint64(w.globalStock[res]))
	}

	for _, id := range w.buildingIDs() {
		b := w.buildings[id]
		writeU64(h, uint64(b.ID))
		writeStr(h, b.Type)
		writeI64(h, int64(b.Pos.X))
		writeI64(h, int64(b.Pos.Y))
		h.Write([]byte{byte(b.State)})
		writeI64(h, int64(b.ProgressMilli))
		writeI64(h, int64(b.ConstructionTicks))
		writeStr(h, b.RecipeID)
		writeI64(h, int64(b.RecipeProgressMilli))
		writeI64(h, int64(b.RecipeTicks))
		for _, wid := range b.Workers {
			writeU64(h, uint64(wid))
		}
		writeU64(h, uint64(b.Stock.Capacity))
		for _, res := range b.Stock.resourceKinds() {
			writeStr(h, res)
			writeU64(h, uint64(b.Stock.Count(res)))
		}
	}

	for _, id := range w.workerIDs() {
		wk := w.workers[id]
		writeU64(h, uint64(wk.ID))
		writeStr(h, wk.Type)
		writeI64(h, int64(wk.Pos.X))
		writeI64(h, int64(wk.Pos.Y))
		writeU64(h, uint64(wk.Home))
		writeStr(h, wk.Profile)
		writeI64(h, int64(wk.SpeedMilli))
		writeI64(h, int64(wk.Carry))
		writeU64(h, wk.RetryAtTick)
		if m := wk.Move; m != nil {
			h.Write([]byte{1})
			writeI64(h, int64(m.Target.X))
			writeI64(h, int64(m.Target.Y))
			writeI64(h, int64(m.Index))
			writeI64(h, int64(m.BudgetMilli))
			for _, t := range m.Tiles {
				writeI64(h, int64(t.X))
				writeI64(h, int64(t.Y))
			}
		} else {
			h.Write([]byte{0})
		}
		if hl := wk.Haul; hl != nil {
			h.Write([]byte{1})
			writeStr(h, hl.Resource)
			writeI64(h, int64(hl.Amount))
			writeU64(h, uint64(hl.Source))
			writeU64(h, uint64(hl.Dest))
			if hl.PickedUp {
				h.Write([]byte{1})
			} else {
				h.Write([]byte{0})
			}
		} else {
			h.Write([]byte{0})
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

func writeU64(h hash.Hash, v uint64) {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	h.Write(buf[:])
}

func writeI64(h hash.Hash, v int64) { writeU64(h, uint64(v)) }

func writeStr(h hash.Hash, s string) {
	writeU64(h, uint64(len(s)))
	h.Write([]byte(s))
}
