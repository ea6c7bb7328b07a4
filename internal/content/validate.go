package content

import (
	"sort"
	"strings"
)

// validate runs the cross-record checks on the merged set: numeric ranges
// (belt-and-braces after the schema pass), reference resolution, and
// production-graph acyclicity. Problems accumulate in errs.
func validate(s *Set, errs *Errors) {
	bids := make([]string, 0, len(s.Buildings))
	for id := range s.Buildings {
		bids = append(bids, id)
	}
	sort.Strings(bids)
	for _, id := range bids {
		d := s.Buildings[id]
		if d.ConstructionTime <= 0 {
			errs.add("building %q: construction_time must be > 0", id)
		}
		if d.WorkerCapacity <= 0 {
			errs.add("building %q: worker_capacity must be > 0", id)
		}
		if d.StockpileCap <= 0 {
			errs.add("building %q: stockpile_capacity must be > 0", id)
		}
		if d.Width <= 0 || d.Height <= 0 {
			errs.add("building %q: size must be > 0", id)
		}
		for res, n := range d.ConstructionCost {
			if n <= 0 {
				errs.add("building %q: construction_cost[%s] must be > 0", id, res)
			}
		}
	}

	rids := make([]string, 0, len(s.Recipes))
	for id := range s.Recipes {
		rids = append(rids, id)
	}
	sort.Strings(rids)
	for _, id := range rids {
		r := s.Recipes[id]
		if r.ProductionTime <= 0 {
			errs.add("recipe %q: production_time must be > 0", id)
		}
		if len(r.Outputs) == 0 {
			errs.add("recipe %q: must have at least one output", id)
		}
		for res, n := range r.Inputs {
			if n <= 0 {
				errs.add("recipe %q: inputs[%s] must be > 0", id, res)
			}
		}
		for res, n := range r.Outputs {
			if n <= 0 {
				errs.add("recipe %q: outputs[%s] must be > 0", id, res)
			}
		}
		if _, ok := s.Buildings[r.RequiredBuilding]; !ok {
			errs.add("recipe %q: required_building %q is not a known building", id, r.RequiredBuilding)
		}
	}

	wids := make([]string, 0, len(s.Workers))
	for id := range s.Workers {
		wids = append(wids, id)
	}
	sort.Strings(wids)
	for _, id := range wids {
		w := s.Workers[id]
		if w.MoveSpeed <= 0 {
			errs.add("worker %q: movement_speed must be > 0", id)
		}
		if w.CarryCap <= 0 {
			errs.add("worker %q: carrying_capacity must be > 0", id)
		}
	}

	for _, cycle := range findRecipeCycles(s) {
		errs.add("production graph cycle: %s", strings.Join(cycle, " -> "))
	}
}

// Three-color depth-first traversal over the recipe graph. An edge runs
// from a recipe producing resource R to every recipe consuming R; a
// back-edge to an in-progress node is a cycle, reported as the offending
// recipe ids in traversal order.
func findRecipeCycles(s *Set) [][]string {
	consumers := map[string][]string{} // resource -> recipe ids, sorted
	rids := make([]string, 0, len(s.Recipes))
	for id := range s.Recipes {
		rids = append(rids, id)
	}
	sort.Strings(rids)
	for _, id := range rids {
		for res := range s.Recipes[id].Inputs {
			consumers[res] = append(consumers[res], id)
		}
	}

	const (
		white = iota // unvisited
		gray         // in progress
		black        // done
	)
	color := map[string]int{}
	var stack []string
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		color[id] = gray
		stack = append(stack, id)

		outs := make([]string, 0, len(s.Recipes[id].Outputs))
		for res := range s.Recipes[id].Outputs {
			outs = append(outs, res)
		}
		sort.Strings(outs)
		for _, res := range outs {
			for _, next := range consumers[res] {
				switch color[next] {
				case white:
					visit(next)
				case gray:
					// The stack from the first occurrence of next, closed
					// with next, names the cycle.
					for i, sid := range stack {
						if sid == next {
							cyc := append(append([]string{}, stack[i:]...), next)
							cycles = append(cycles, cyc)
							break
						}
					}
				}
			}
		}

		stack = stack[:len(stack)-1]
		color[id] = black
	}

	for _, id := range rids {
		if color[id] == white {
			visit(id)
		}
	}
	return cycles
}
