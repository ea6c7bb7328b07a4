package world

import (
	"hamletworks/internal/sim/grid"
	"hamletworks/internal/sim/path"
)

// Transport drives workers in worker-id order: each tick a worker either
// advances along its current path or, when idle, plans a new haul for its
// home building. Planning fetches missing recipe inputs first, then ships
// surplus outputs to the nearest building with stockpile space.

// retryDelaySeconds spaces out re-planning after a NoPath result. The
// cooldown is lifted early when any tile changes.
const retryDelaySeconds = 2

func (w *World) stepTransport() {
	if w.gridDirty {
		for _, id := range w.workerIDs() {
			w.workers[id].RetryAtTick = 0
		}
		w.gridDirty = false
	}
	for _, id := range w.workerIDs() {
		wk := w.workers[id]
		switch {
		case wk.Move != nil:
			w.advanceMove(wk)
		case wk.Haul != nil:
			// A mid-haul worker without a path lost it to a grid change;
			// recompute the current leg.
			w.repathHaul(wk)
		default:
			w.planHaul(wk)
		}
	}
}

// advanceMove spends this tick's movement budget stepping along the
// stored tile sequence. A tile that became occupied since planning drops
// the path; the haul itself survives and is re-pathed next tick.
func (w *World) advanceMove(wk *Worker) {
	m := wk.Move
	m.BudgetMilli += wk.SpeedMilli
	for m.Index < len(m.Tiles) {
		next := m.Tiles[m.Index]
		if w.grid.At(next).Occupant != 0 && next != m.Target {
			wk.Move = nil
			return
		}
		cost := path.Lookup(wk.Profile).EntryCostMilli(w.grid, next)
		if cost == 0 {
			wk.Move = nil
			return
		}
		if m.BudgetMilli < cost {
			return
		}
		m.BudgetMilli -= cost
		wk.Pos = next
		m.Index++
	}
	wk.Move = nil
	w.arrive(wk)
}

// arrive handles the end of a movement leg: load at the haul source or
// unload at the destination.
func (w *World) arrive(wk *Worker) {
	h := wk.Haul
	if h == nil {
		return
	}
	if !h.PickedUp {
		src, ok := w.buildings[h.Source]
		if !ok {
			wk.dropTasks()
			return
		}
		take := min(h.Amount, wk.Carry, src.Stock.Count(h.Resource))
		if take <= 0 {
			wk.dropTasks()
			return
		}
		src.Stock.Remove(h.Resource, take)
		h.Amount = take
		h.PickedUp = true
		if dst, ok := w.buildings[h.Dest]; ok {
			w.startLeg(wk, dst.Entrance())
		} else {
			w.warnf("worker %d discarded %d %s: destination %d gone", wk.ID, h.Amount, h.Resource, h.Dest)
			wk.dropTasks()
		}
		return
	}
	dst, ok := w.buildings[h.Dest]
	if !ok {
		w.warnf("worker %d discarded %d %s: destination %d gone", wk.ID, h.Amount, h.Resource, h.Dest)
		wk.dropTasks()
		return
	}
	added := dst.Stock.Add(h.Resource, h.Amount)
	if added < h.Amount {
		w.warnf("worker %d discarded %d %s: building %d stockpile full", wk.ID, h.Amount-added, h.Resource, dst.ID)
	}
	wk.Haul = nil
}

// repathHaul rebuilds the movement leg for an in-flight haul.
func (w *World) repathHaul(wk *Worker) {
	h := wk.Haul
	var target grid.Pos
	if !h.PickedUp {
		src, ok := w.buildings[h.Source]
		if !ok {
			wk.dropTasks()
			return
		}
		target = src.Entrance()
	} else {
		dst, ok := w.buildings[h.Dest]
		if !ok {
			w.warnf("worker %d discarded %d %s: destination %d gone", wk.ID, h.Amount, h.Resource, h.Dest)
			wk.dropTasks()
			return
		}
		target = dst.Entrance()
	}
	w.startLeg(wk, target)
}

// startLeg paths from the worker's position to target. NoPath keeps the
// haul and sets a retry cooldown.
func (w *World) startLeg(wk *Worker, target grid.Pos) {
	if wk.Pos == target {
		wk.Move = nil
		w.arrive(wk)
		return
	}
	p, ok := w.cache.Find(w.grid, wk.Pos, target, path.Lookup(wk.Profile))
	if !ok {
		wk.Move = nil
		wk.RetryAtTick = w.clock.Tick + uint64(retryDelaySeconds*w.clock.TPS)
		return
	}
	wk.Move = &MoveTask{Target: target, Tiles: p.Tiles, Index: 1}
}

// planHaul picks the next job for an idle assigned worker.
func (w *World) planHaul(wk *Worker) {
	if wk.RetryAtTick > w.clock.Tick || wk.Home == 0 {
		return
	}
	home, ok := w.buildings[wk.Home]
	if !ok || home.State != Active || home.RecipeID == "" {
		return
	}
	r, ok := w.content.Recipe(home.RecipeID)
	if !ok {
		return
	}
	pr := path.Lookup(wk.Profile)

	// Fetch any input the home lacks a full run of.
	for _, res := range sortedKeys(r.Inputs) {
		need := r.Inputs[res]
		if home.Stock.Count(res) >= need {
			continue
		}
		src, found, unreachable := w.nearestSource(home, res, pr)
		if !found {
			if unreachable {
				wk.RetryAtTick = w.clock.Tick + uint64(retryDelaySeconds*w.clock.TPS)
			}
			continue
		}
		amount := min(wk.Carry, w.surplus(src, res))
		wk.Haul = &HaulTask{Resource: res, Amount: amount, Source: src.ID, Dest: home.ID}
		w.startLeg(wk, src.Entrance())
		return
	}

	// Ship surplus output to the nearest building with space.
	for _, res := range sortedKeys(r.Outputs) {
		avail := w.surplus(home, res)
		if avail <= 0 {
			continue
		}
		dst, found, unreachable := w.nearestDropoff(home, res, pr)
		if !found {
			if unreachable {
				wk.RetryAtTick = w.clock.Tick + uint64(retryDelaySeconds*w.clock.TPS)
			}
			continue
		}
		amount := min(wk.Carry, avail)
		wk.Haul = &HaulTask{Resource: res, Amount: amount, Source: home.ID, Dest: dst.ID}
		w.startLeg(wk, home.Entrance())
		return
	}
}

// surplus is what b can give away of res: its stock minus one run's worth
// of its own recipe input, so a fetcher never starves the source.
func (w *World) surplus(b *Building, res string) int {
	reserve := 0
	if b.RecipeID != "" {
		if r, ok := w.content.Recipe(b.RecipeID); ok {
			reserve = r.Inputs[res]
		}
	}
	s := b.Stock.Count(res) - reserve
	if s < 0 {
		return 0
	}
	return s
}

// nearestSource finds the active building with surplus res that is
// closest to home by cached path cost between entrances. Ascending id
// iteration with strict comparison makes the lowest id win cost ties.
// unreachable reports that candidates existed but none could be pathed.
func (w *World) nearestSource(home *Building, res string, pr path.Profile) (best *Building, found, unreachable bool) {
	bestCost := 0
	sawCandidate := false
	for _, id := range w.buildingIDs() {
		b := w.buildings[id]
		if b.ID == home.ID || b.State != Active || w.surplus(b, res) <= 0 {
			continue
		}
		sawCandidate = true
		p, ok := w.cache.Find(w.grid, b.Entrance(), home.Entrance(), pr)
		if !ok {
			continue
		}
		if best == nil || p.CostMilli < bestCost {
			best = b
			bestCost = p.CostMilli
		}
	}
	if best != nil {
		return best, true, false
	}
	return nil, false, sawCandidate
}

// nearestDropoff finds the closest active building with stockpile space
// for res. Buildings whose recipe consumes res are preferred over plain
// storage so output tends to flow toward demand; within each class the
// lowest id wins cost ties.
func (w *World) nearestDropoff(home *Building, res string, pr path.Profile) (best *Building, found, unreachable bool) {
	var bestAny, bestConsumer *Building
	anyCost, consumerCost := 0, 0
	sawCandidate := false
	for _, id := range w.buildingIDs() {
		b := w.buildings[id]
		if b.ID == home.ID || b.State != Active || b.Stock.Space() <= 0 {
			continue
		}
		sawCandidate = true
		p, ok := w.cache.Find(w.grid, home.Entrance(), b.Entrance(), pr)
		if !ok {
			continue
		}
		consumes := false
		if b.RecipeID != "" {
			if r, ok := w.content.Recipe(b.RecipeID); ok && r.Inputs[res] > 0 {
				consumes = true
			}
		}
		if consumes && (bestConsumer == nil || p.CostMilli < consumerCost) {
			bestConsumer = b
			consumerCost = p.CostMilli
		}
		if bestAny == nil || p.CostMilli < anyCost {
			bestAny = b
			anyCost = p.CostMilli
		}
	}
	if bestConsumer != nil {
		return bestConsumer, true, false
	}
	if bestAny != nil {
		return bestAny, true, false
	}
	return nil, false, sawCandidate
}
