package world

// stepProduction runs recipes in active buildings. Progress scales with
// assigned workers relative to capacity; a run completes when progress
// reaches RecipeTicks*1000, consuming inputs and emitting outputs into
// the local stockpile. Output that does not fit is discarded with a
// warning rather than stalling the recipe.
func (w *World) stepProduction() {
	for _, id := range w.buildingIDs() {
		b := w.buildings[id]
		if b.State != Active || b.RecipeID == "" {
			continue
		}
		r, ok := w.content.Recipe(b.RecipeID)
		if !ok {
			continue
		}
		assigned := len(b.Workers)
		if assigned == 0 || b.WorkerCap == 0 {
			continue
		}
		if assigned > b.WorkerCap {
			assigned = b.WorkerCap
		}

		// A run only starts or continues while every input is on hand.
		// Partial progress is retained when inputs drain mid-run.
		ready := true
		for res, qty := range r.Inputs {
			if b.Stock.Count(res) < qty {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}

		b.RecipeProgressMilli += 1000 * assigned / b.WorkerCap
		if b.RecipeProgressMilli < b.RecipeTicks*1000 {
			continue
		}
		b.RecipeProgressMilli = 0

		for _, res := range sortedKeys(r.Inputs) {
			b.Stock.Remove(res, r.Inputs[res])
		}
		for _, res := range sortedKeys(r.Outputs) {
			qty := r.Outputs[res]
			added := b.Stock.Add(res, qty)
			if added < qty {
				w.warnf("building %d discarded %d %s: stockpile full", b.ID, qty-added, res)
			}
		}
	}
}
