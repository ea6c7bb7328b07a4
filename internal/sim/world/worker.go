package world

import (
	"fmt"

	"hamletworks/internal/sim/grid"
	"hamletworks/internal/sim/path"
)

// MoveTask walks a precomputed tile sequence. BudgetMilli accumulates
// movement allowance; a step to the next tile is taken when the budget
// covers that tile's entry cost.
type MoveTask struct {
	Target      grid.Pos   `json:"target"`
	Tiles       []grid.Pos `json:"tiles"`
	Index       int        `json:"index"`
	BudgetMilli int        `json:"budget_milli"`
}

// HaulTask carries Amount of Resource from Source to Dest. PickedUp
// flips once the worker has loaded at the source.
type HaulTask struct {
	Resource string          `json:"resource"`
	Amount   int             `json:"amount"`
	Source   grid.BuildingID `json:"source"`
	Dest     grid.BuildingID `json:"dest"`
	PickedUp bool            `json:"picked_up"`
}

type Worker struct {
	ID      WorkerID        `json:"id"`
	Type    string          `json:"type"`
	Pos     grid.Pos        `json:"pos"`
	Home    grid.BuildingID `json:"home,omitempty"`
	Profile string          `json:"profile"`

	SpeedMilli int `json:"speed_milli"` // milli-tiles per tick
	Carry      int `json:"carry"`

	Move *MoveTask `json:"move,omitempty"`
	Haul *HaulTask `json:"haul,omitempty"`

	// RetryAtTick defers re-planning after a NoPath result. Cleared
	// early whenever the grid changes.
	RetryAtTick uint64 `json:"retry_at_tick,omitempty"`
}

func (wk *Worker) idle() bool { return wk.Move == nil && wk.Haul == nil }

func (wk *Worker) dropTasks() {
	wk.Move = nil
	wk.Haul = nil
	wk.RetryAtTick = 0
}

// abandonTasks drops a worker's tasks, reporting a carried load that is
// lost with them. The load was already removed from the source, so
// dropping it silently would hide the shrinkage.
func (w *World) abandonTasks(wk *Worker) {
	if h := wk.Haul; h != nil && h.PickedUp {
		w.warnf("worker %d discarded %d %s: haul abandoned", wk.ID, h.Amount, h.Resource)
	}
	wk.dropTasks()
}

// WorkerState is the presentation-level summary derived from tasks.
type WorkerState string

const (
	StateIdle     WorkerState = "idle"
	StateMoving   WorkerState = "moving"
	StateCarrying WorkerState = "carrying"
	StateWorking  WorkerState = "working"
)

func (w *World) workerState(wk *Worker) WorkerState {
	switch {
	case wk.Haul != nil && wk.Haul.PickedUp:
		return StateCarrying
	case wk.Move != nil:
		return StateMoving
	case wk.Home != 0:
		if b, ok := w.buildings[wk.Home]; ok && b.State == Active && b.RecipeID != "" {
			return StateWorking
		}
	}
	return StateIdle
}

// recruitWorker spawns a worker of the given type at a position.
func (w *World) recruitWorker(typ string, at grid.Pos) (*Worker, error) {
	def, ok := w.content.Worker(typ)
	if !ok {
		return nil, fmt.Errorf("unknown worker type %q", typ)
	}
	if !w.grid.InBounds(at) {
		return nil, fmt.Errorf("spawn position %d,%d out of bounds", at.X, at.Y)
	}
	id := WorkerID(w.counters.NextWorker)
	w.counters.NextWorker++
	profile := def.CostProfile
	if profile == "" {
		profile = path.DefaultProfile
	}
	wk := &Worker{
		ID:         id,
		Type:       typ,
		Pos:        at,
		Profile:    profile,
		SpeedMilli: w.speedMilliPerTick(def.MoveSpeed),
		Carry:      def.CarryCap,
	}
	w.workers[id] = wk
	return wk, nil
}

// assignWorker attaches an idle worker to a building with spare capacity.
func (w *World) assignWorker(wid WorkerID, bid grid.BuildingID) error {
	wk, ok := w.workers[wid]
	if !ok {
		return fmt.Errorf("no worker %d", wid)
	}
	b, ok := w.buildings[bid]
	if !ok {
		return fmt.Errorf("no building %d", bid)
	}
	if wk.Home != 0 {
		return fmt.Errorf("worker %d already assigned to building %d", wid, wk.Home)
	}
	if len(b.Workers) >= b.WorkerCap {
		return fmt.Errorf("building %d is at worker capacity %d", bid, b.WorkerCap)
	}
	wk.Home = bid
	b.addWorker(wid)
	return nil
}

func (w *World) unassignWorker(wid WorkerID) error {
	wk, ok := w.workers[wid]
	if !ok {
		return fmt.Errorf("no worker %d", wid)
	}
	if wk.Home == 0 {
		return fmt.Errorf("worker %d is not assigned", wid)
	}
	if b, ok := w.buildings[wk.Home]; ok {
		b.removeWorker(wid)
	}
	wk.Home = 0
	w.abandonTasks(wk)
	return nil
}
