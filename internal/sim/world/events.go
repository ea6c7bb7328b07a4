package world

import (
	"encoding/json"
	"fmt"
	"sort"

	"hamletworks/internal/sim/grid"
)

// Events are the only external mutation path. Each carries a type tag in
// its JSON envelope; Step validates then applies them in submission
// order, and rejected events leave the world untouched.

type Event interface {
	Kind() string
	validate(w *World) error
	apply(w *World) error
}

type envelope struct {
	Type string `json:"type"`
}

type PlaceBuilding struct {
	Type     string `json:"type"`
	Building string `json:"building"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
}

func (e *PlaceBuilding) Kind() string { return "place_building" }

func (e *PlaceBuilding) validate(w *World) error {
	def, ok := w.content.Building(e.Building)
	if !ok {
		return fmt.Errorf("unknown building type %q", e.Building)
	}
	for res, qty := range def.ConstructionCost {
		if w.globalStock[res] < qty {
			return fmt.Errorf("need %d %s, have %d", qty, res, w.globalStock[res])
		}
	}
	if !w.grid.IsBuildable(grid.Pos{X: e.X, Y: e.Y}, def.Width, def.Height) {
		return fmt.Errorf("cannot build %q at %d,%d", e.Building, e.X, e.Y)
	}
	return nil
}

func (e *PlaceBuilding) apply(w *World) error {
	def, _ := w.content.Building(e.Building)
	for _, res := range sortedKeys(def.ConstructionCost) {
		w.globalStock[res] -= def.ConstructionCost[res]
		if w.globalStock[res] == 0 {
			delete(w.globalStock, res)
		}
	}
	_, err := w.placeBuilding(e.Building, grid.Pos{X: e.X, Y: e.Y})
	return err
}

type DemolishBuilding struct {
	Type     string          `json:"type"`
	Building grid.BuildingID `json:"building"`
}

func (e *DemolishBuilding) Kind() string { return "demolish_building" }

func (e *DemolishBuilding) validate(w *World) error {
	if _, ok := w.buildings[e.Building]; !ok {
		return fmt.Errorf("no building %d", e.Building)
	}
	return nil
}

func (e *DemolishBuilding) apply(w *World) error {
	return w.demolishBuilding(e.Building)
}

type AssignWorker struct {
	Type     string          `json:"type"`
	Worker   WorkerID        `json:"worker"`
	Building grid.BuildingID `json:"building"`
}

func (e *AssignWorker) Kind() string { return "assign_worker" }

func (e *AssignWorker) validate(w *World) error {
	wk, ok := w.workers[e.Worker]
	if !ok {
		return fmt.Errorf("no worker %d", e.Worker)
	}
	if wk.Home != 0 {
		return fmt.Errorf("worker %d already assigned to building %d", e.Worker, wk.Home)
	}
	b, ok := w.buildings[e.Building]
	if !ok {
		return fmt.Errorf("no building %d", e.Building)
	}
	if len(b.Workers) >= b.WorkerCap {
		return fmt.Errorf("building %d is at worker capacity %d", e.Building, b.WorkerCap)
	}
	return nil
}

func (e *AssignWorker) apply(w *World) error {
	return w.assignWorker(e.Worker, e.Building)
}

type UnassignWorker struct {
	Type   string   `json:"type"`
	Worker WorkerID `json:"worker"`
}

func (e *UnassignWorker) Kind() string { return "unassign_worker" }

func (e *UnassignWorker) validate(w *World) error {
	wk, ok := w.workers[e.Worker]
	if !ok {
		return fmt.Errorf("no worker %d", e.Worker)
	}
	if wk.Home == 0 {
		return fmt.Errorf("worker %d is not assigned", e.Worker)
	}
	return nil
}

func (e *UnassignWorker) apply(w *World) error {
	return w.unassignWorker(e.Worker)
}

type SetRecipe struct {
	Type     string          `json:"type"`
	Building grid.BuildingID `json:"building"`
	Recipe   string          `json:"recipe"` // empty clears the recipe
}

func (e *SetRecipe) Kind() string { return "set_recipe" }

func (e *SetRecipe) validate(w *World) error {
	b, ok := w.buildings[e.Building]
	if !ok {
		return fmt.Errorf("no building %d", e.Building)
	}
	if e.Recipe == "" {
		return nil
	}
	r, ok := w.content.Recipe(e.Recipe)
	if !ok {
		return fmt.Errorf("unknown recipe %q", e.Recipe)
	}
	if r.RequiredBuilding != b.Type {
		return fmt.Errorf("recipe %q requires building type %q, got %q", e.Recipe, r.RequiredBuilding, b.Type)
	}
	return nil
}

func (e *SetRecipe) apply(w *World) error {
	b := w.buildings[e.Building]
	if b.RecipeID == e.Recipe {
		return nil
	}
	b.RecipeID = e.Recipe
	b.RecipeProgressMilli = 0
	b.RecipeTicks = 0
	if e.Recipe != "" {
		r, _ := w.content.Recipe(e.Recipe)
		b.RecipeTicks = w.ticksFor(r.ProductionTime)
	}
	return nil
}

type RecruitWorker struct {
	Type   string `json:"type"`
	Worker string `json:"worker"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
}

func (e *RecruitWorker) Kind() string { return "recruit_worker" }

func (e *RecruitWorker) validate(w *World) error {
	if _, ok := w.content.Worker(e.Worker); !ok {
		return fmt.Errorf("unknown worker type %q", e.Worker)
	}
	if !w.grid.InBounds(grid.Pos{X: e.X, Y: e.Y}) {
		return fmt.Errorf("spawn position %d,%d out of bounds", e.X, e.Y)
	}
	return nil
}

func (e *RecruitWorker) apply(w *World) error {
	_, err := w.recruitWorker(e.Worker, grid.Pos{X: e.X, Y: e.Y})
	return err
}

// GrantResources credits the shared global stock. Scenario scripts use it
// for starting resources.
type GrantResources struct {
	Type      string         `json:"type"`
	Resources map[string]int `json:"resources"`
}

func (e *GrantResources) Kind() string { return "grant_resources" }

func (e *GrantResources) validate(w *World) error {
	for res, qty := range e.Resources {
		if qty <= 0 {
			return fmt.Errorf("grant of %d %s is not positive", qty, res)
		}
	}
	return nil
}

func (e *GrantResources) apply(w *World) error {
	for _, res := range sortedKeys(e.Resources) {
		w.globalStock[res] += e.Resources[res]
	}
	return nil
}

// DecodeEvent parses one type-tagged event from raw JSON.
func DecodeEvent(raw []byte) (Event, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("decode event envelope: %w", err)
	}
	var ev Event
	switch env.Type {
	case "place_building":
		ev = &PlaceBuilding{}
	case "demolish_building":
		ev = &DemolishBuilding{}
	case "assign_worker":
		ev = &AssignWorker{}
	case "unassign_worker":
		ev = &UnassignWorker{}
	case "set_recipe":
		ev = &SetRecipe{}
	case "recruit_worker":
		ev = &RecruitWorker{}
	case "grant_resources":
		ev = &GrantResources{}
	default:
		return nil, fmt.Errorf("unknown event type %q", env.Type)
	}
	if err := json.Unmarshal(raw, ev); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", env.Type, err)
	}
	return ev, nil
}

// EncodeEvent serializes an event with its type tag filled in.
func EncodeEvent(ev Event) ([]byte, error) {
	setKind(ev)
	return json.Marshal(ev)
}

func setKind(ev Event) {
	switch e := ev.(type) {
	case *PlaceBuilding:
		e.Type = e.Kind()
	case *DemolishBuilding:
		e.Type = e.Kind()
	case *AssignWorker:
		e.Type = e.Kind()
	case *UnassignWorker:
		e.Type = e.Kind()
	case *SetRecipe:
		e.Type = e.Kind()
	case *RecruitWorker:
		e.Type = e.Kind()
	case *GrantResources:
		e.Type = e.Kind()
	}
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
