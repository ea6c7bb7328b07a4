package world

// stepConstruction advances under-construction buildings with at least
// one assigned worker and activates those that finish. Construction cost
// was already paid at placement; progress scales with staffing the same
// way production does.
func (w *World) stepConstruction() {
	for _, id := range w.buildingIDs() {
		b := w.buildings[id]
		if b.State != UnderConstruction {
			continue
		}
		assigned := len(b.Workers)
		if assigned == 0 || b.WorkerCap == 0 {
			continue
		}
		if assigned > b.WorkerCap {
			assigned = b.WorkerCap
		}
		b.ProgressMilli += 1000 * assigned / b.WorkerCap
		if b.ProgressMilli >= b.ConstructionTicks*1000 {
			b.ProgressMilli = b.ConstructionTicks * 1000
			b.State = Active
		}
	}
}
