package world

import (
	"testing"

	"hamletworks/internal/content"
	"hamletworks/internal/sim/grid"
	"hamletworks/internal/sim/path"
	"hamletworks/internal/sim/worldgen"
)

func scriptedRun(t *testing.T, set *content.Set, ticks int) []string {
	t.Helper()
	g := worldgen.Generate(content.MapGenDef{
		Width: 24, Height: 24, ForestDensity: 0.2, StoneDensity: 0.1,
		WaterPatches: 1, Seed: 9,
	}, 9)
	w := New(Config{Seed: 9, TPS: 10}, set, g)

	script := map[uint64][]Event{
		0: {
			&GrantResources{Resources: map[string]int{"wood": 10}},
			&RecruitWorker{Worker: "porter", X: 1, Y: 1},
			&RecruitWorker{Worker: "porter", X: 2, Y: 1},
		},
		2: {
			&PlaceBuilding{Building: "hut", X: 4, Y: 4},
			&PlaceBuilding{Building: "mill", X: 10, Y: 4},
		},
		20: {
			&AssignWorker{Worker: 1, Building: 1},
			&AssignWorker{Worker: 2, Building: 2},
			&SetRecipe{Building: 1, Recipe: "cut_wood"},
			&SetRecipe{Building: 2, Recipe: "grind"},
		},
	}

	digests := make([]string, 0, ticks)
	for i := 0; i < ticks; i++ {
		var raw [][]byte
		if evs, ok := script[w.CurrentTick()]; ok {
			var err error
			raw, err = Encode(evs...)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
		}
		res, err := w.Step(raw)
		if err != nil {
			t.Fatalf("step: %v", err)
		}
		digests = append(digests, res.Digest)
	}
	return digests
}

func TestSameSeedSameDigests(t *testing.T) {
	a := scriptedRun(t, testSet(), 400)
	b := scriptedRun(t, testSet(), 400)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("digests diverge at tick %d", i)
		}
	}
}

func TestDigestTracksState(t *testing.T) {
	w := testWorld(t)
	d0 := w.Digest()

	mustStep(t, w, &GrantResources{Resources: map[string]int{"wood": 1}})
	d1 := w.Digest()
	if d0 == d1 {
		t.Fatalf("digest unchanged after a state mutation")
	}
}

func TestDigestIgnoresPresentationState(t *testing.T) {
	w := testWorld(t)
	d0 := w.Digest()

	w.SetSpeed(4)
	w.DrainWarnings()
	// Warming the path cache must not affect the digest either.
	w.PathCache().Find(w.Grid(), grid.Pos{X: 0, Y: 0}, grid.Pos{X: 9, Y: 9}, path.Lookup(path.DefaultProfile))
	if got := w.Digest(); got != d0 {
		t.Fatalf("presentation state leaked into the digest")
	}
}
