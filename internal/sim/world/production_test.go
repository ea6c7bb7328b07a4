package world

import (
	"strings"
	"testing"

	"hamletworks/internal/sim/grid"
)

func TestProductionFullCrew(t *testing.T) {
	w := testWorld(t)
	b := activeBuilding(t, w, "hut", grid.Pos{X: 3, Y: 3}, "cut_wood")
	for i := 0; i < 2; i++ {
		wk, _ := w.recruitWorker("porter", grid.Pos{X: 1, Y: 1})
		if err := w.assignWorker(wk.ID, b.ID); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}

	// Full crew: one 10-tick run per 10 ticks.
	stepN(t, w, 10)
	if got := b.Stock.Count("wood"); got != 2 {
		t.Fatalf("wood = %d after one run, want 2", got)
	}
	stepN(t, w, 20)
	if got := b.Stock.Count("wood"); got != 6 {
		t.Fatalf("wood = %d after three runs, want 6", got)
	}
}

func TestProductionScalesWithCrew(t *testing.T) {
	w := testWorld(t)
	b := activeBuilding(t, w, "hut", grid.Pos{X: 3, Y: 3}, "cut_wood")
	wk, _ := w.recruitWorker("porter", grid.Pos{X: 1, Y: 1})
	if err := w.assignWorker(wk.ID, b.ID); err != nil {
		t.Fatalf("assign: %v", err)
	}

	// Half crew, half speed: a run takes 20 ticks.
	stepN(t, w, 19)
	if got := b.Stock.Count("wood"); got != 0 {
		t.Fatalf("wood = %d before the run completes, want 0", got)
	}
	stepN(t, w, 1)
	if got := b.Stock.Count("wood"); got != 2 {
		t.Fatalf("wood = %d after the run, want 2", got)
	}
}

func TestProductionIdleWithoutWorkers(t *testing.T) {
	w := testWorld(t)
	b := activeBuilding(t, w, "hut", grid.Pos{X: 3, Y: 3}, "cut_wood")

	stepN(t, w, 50)
	if b.RecipeProgressMilli != 0 || b.Stock.Total() != 0 {
		t.Fatalf("unstaffed building produced: progress %d stock %d",
			b.RecipeProgressMilli, b.Stock.Total())
	}
}

func TestProductionWaitsForInputs(t *testing.T) {
	w := testWorld(t)
	b := activeBuilding(t, w, "mill", grid.Pos{X: 3, Y: 3}, "grind")
	for i := 0; i < 2; i++ {
		wk, _ := w.recruitWorker("porter", grid.Pos{X: 1, Y: 1})
		if err := w.assignWorker(wk.ID, b.ID); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}
	stepN(t, w, 15)
	if b.RecipeProgressMilli != 0 {
		t.Fatalf("progress %d without inputs, want 0", b.RecipeProgressMilli)
	}

	b.Stock.Add("wood", 3)
	stepN(t, w, 10)
	if got := b.Stock.Count("chips"); got != 1 {
		t.Fatalf("chips = %d after one run, want 1", got)
	}
	if got := b.Stock.Count("wood"); got != 2 {
		t.Fatalf("wood = %d after one run, want 2", got)
	}
}

func TestProductionOverflowDiscards(t *testing.T) {
	w := testWorld(t)
	b := activeBuilding(t, w, "hut", grid.Pos{X: 3, Y: 3}, "cut_wood")
	for i := 0; i < 2; i++ {
		wk, _ := w.recruitWorker("porter", grid.Pos{X: 1, Y: 1})
		if err := w.assignWorker(wk.ID, b.ID); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}
	b.Stock.Add("wood", 19) // capacity 20, one unit of space

	var warned []Warning
	for i := 0; i < 10; i++ {
		res, err := w.Step(nil)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		warned = append(warned, res.Warnings...)
	}

	if got := b.Stock.Count("wood"); got != 20 {
		t.Fatalf("wood = %d, want capacity-clamped 20", got)
	}
	if len(warned) == 0 || !strings.Contains(warned[0].Message, "discarded") {
		t.Fatalf("no discard warning emitted: %+v", warned)
	}
}

func TestSharedStockpileCapacity(t *testing.T) {
	s := NewStockpile(10)
	if added := s.Add("wood", 6); added != 6 {
		t.Fatalf("added %d, want 6", added)
	}
	if added := s.Add("stone", 6); added != 4 {
		t.Fatalf("added %d with 4 space left, want 4", added)
	}
	if s.Space() != 0 || s.Total() != 10 {
		t.Fatalf("space %d total %d, want 0 and 10", s.Space(), s.Total())
	}
	if got := s.Remove("wood", 99); got != 6 {
		t.Fatalf("removed %d, want all 6", got)
	}
	if s.Count("wood") != 0 {
		t.Fatalf("wood remains after removal")
	}
}
