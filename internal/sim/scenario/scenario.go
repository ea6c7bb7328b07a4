// Package scenario provides scripted event streams for demo runs and
// benchmarks. A scenario maps ticks to events; the runner feeds them into
// the world as if a player had submitted them.
package scenario

import (
	"fmt"

	"hamletworks/internal/sim/grid"
	"hamletworks/internal/sim/world"
)

type Scenario struct {
	Name   string
	script map[uint64][]world.Event
}

// EventsFor returns the encoded events scheduled for tick, or nil.
func (s *Scenario) EventsFor(tick uint64) ([][]byte, error) {
	evs, ok := s.script[tick]
	if !ok {
		return nil, nil
	}
	raw, err := world.Encode(evs...)
	if err != nil {
		return nil, fmt.Errorf("scenario %s tick %d: %w", s.Name, tick, err)
	}
	return raw, nil
}

func (s *Scenario) at(tick uint64, evs ...world.Event) {
	s.script[tick] = append(s.script[tick], evs...)
}

// Lookup resolves a scenario by name.
func Lookup(name string) (*Scenario, error) {
	switch name {
	case "demo":
		return Demo(), nil
	case "benchmark":
		return Benchmark(4), nil
	default:
		return nil, fmt.Errorf("unknown scenario %q", name)
	}
}

// Demo sets up a small wood economy: a lumberjack harvesting wood, a
// sawmill turning it into planks, and porters hauling between them.
func Demo() *Scenario {
	s := &Scenario{Name: "demo", script: map[uint64][]world.Event{}}
	s.at(0,
		&world.GrantResources{Resources: map[string]int{"wood": 20, "stone": 10}},
		&world.PlaceBuilding{Building: "lumberjack", X: 10, Y: 10},
		&world.PlaceBuilding{Building: "sawmill", X: 16, Y: 10},
		&world.RecruitWorker{Worker: "porter", X: 10, Y: 13},
		&world.RecruitWorker{Worker: "porter", X: 16, Y: 14},
		&world.RecruitWorker{Worker: "porter", X: 17, Y: 14},
	)
	// Construction sites only progress with a crew, so assignments
	// follow placement immediately. Recipes sit idle until activation.
	s.at(1,
		&world.AssignWorker{Worker: 1, Building: 1},
		&world.AssignWorker{Worker: 2, Building: 2},
		&world.AssignWorker{Worker: 3, Building: 2},
		&world.SetRecipe{Building: 1, Recipe: "harvest_wood"},
		&world.SetRecipe{Building: 2, Recipe: "make_planks"},
	)
	return s
}

// Benchmark lays out pairs of lumberjack and sawmill columns with
// assigned porters, sized to stress production, transport, and the path
// cache together.
func Benchmark(pairs int) *Scenario {
	s := &Scenario{Name: "benchmark", script: map[uint64][]world.Event{}}
	s.at(0, &world.GrantResources{Resources: map[string]int{
		"wood": 20 * pairs, "stone": 10 * pairs,
	}})
	var bid uint64 = 1
	var wid uint64 = 1
	for i := 0; i < pairs; i++ {
		y := 6 + i*7
		s.at(0,
			&world.PlaceBuilding{Building: "lumberjack", X: 6, Y: y},
			&world.PlaceBuilding{Building: "sawmill", X: 20, Y: y},
			&world.RecruitWorker{Worker: "porter", X: 6, Y: y + 3},
			&world.RecruitWorker{Worker: "porter", X: 20, Y: y + 4},
		)
		s.at(1,
			&world.AssignWorker{Worker: world.WorkerID(wid), Building: grid.BuildingID(bid)},
			&world.AssignWorker{Worker: world.WorkerID(wid + 1), Building: grid.BuildingID(bid + 1)},
			&world.SetRecipe{Building: grid.BuildingID(bid), Recipe: "harvest_wood"},
			&world.SetRecipe{Building: grid.BuildingID(bid + 1), Recipe: "make_planks"},
		)
		bid += 2
		wid += 2
	}
	return s
}
