package snapshot

import (
	"path/filepath"
	"testing"

	"hamletworks/internal/content"
	"hamletworks/internal/sim/grid"
	"hamletworks/internal/sim/world"
)

func fixtureSet() *content.Set {
	return &content.Set{
		Buildings: map[string]content.BuildingDef{
			"hut": {
				Name: "Hut", ConstructionTime: 1.0,
				WorkerCapacity: 2, StockpileCap: 20, Width: 1, Height: 1,
			},
		},
		Recipes: map[string]content.RecipeDef{
			"cut_wood": {
				Name: "Cut Wood", ProductionTime: 1.0,
				Outputs:          map[string]int{"wood": 2},
				RequiredBuilding: "hut",
			},
		},
		Workers: map[string]content.WorkerDef{
			"porter": {Name: "Porter", MoveSpeed: 1.0, CarryCap: 5},
		},
		Digest: "fixture",
	}
}

func buildWorld(t *testing.T, set *content.Set) *world.World {
	t.Helper()
	w := world.New(world.Config{Seed: 5, TPS: 10}, set, grid.New(16, 16))
	raw, err := world.Encode(
		&world.GrantResources{Resources: map[string]int{"stone": 4}},
		&world.PlaceBuilding{Building: "hut", X: 3, Y: 3},
		&world.RecruitWorker{Worker: "porter", X: 1, Y: 1},
	)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if res, err := w.Step(raw); err != nil {
		t.Fatalf("step: %v", err)
	} else if len(res.Rejections) > 0 {
		t.Fatalf("rejections: %+v", res.Rejections)
	}
	for i := 0; i < 40; i++ {
		if _, err := w.Step(nil); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	return w
}

func TestWriteReadRoundTrip(t *testing.T) {
	set := fixtureSet()
	w := buildWorld(t, set)
	path := filepath.Join(t.TempDir(), "world.snap.zst")

	if err := Write(path, w); err != nil {
		t.Fatalf("write: %v", err)
	}
	restored, err := Read(path, set)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	if restored.Digest() != w.Digest() {
		t.Fatalf("digest mismatch after round trip")
	}
	if restored.CurrentTick() != w.CurrentTick() {
		t.Fatalf("tick %d, want %d", restored.CurrentTick(), w.CurrentTick())
	}

	// The restored world keeps simulating in lockstep with the original.
	for i := 0; i < 30; i++ {
		ra, err := w.Step(nil)
		if err != nil {
			t.Fatalf("step original: %v", err)
		}
		rb, err := restored.Step(nil)
		if err != nil {
			t.Fatalf("step restored: %v", err)
		}
		if ra.Digest != rb.Digest {
			t.Fatalf("diverged at tick %d", ra.Tick)
		}
	}
}

func TestReadRejectsWrongContent(t *testing.T) {
	set := fixtureSet()
	w := buildWorld(t, set)
	path := filepath.Join(t.TempDir(), "world.snap.zst")
	if err := Write(path, w); err != nil {
		t.Fatalf("write: %v", err)
	}

	other := fixtureSet()
	other.Digest = "changed"
	if _, err := Read(path, other); err == nil {
		t.Fatalf("read accepted a snapshot from different content")
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.snap.zst"), fixtureSet()); err == nil {
		t.Fatalf("read of a missing file succeeded")
	}
}
