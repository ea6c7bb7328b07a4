package grid

import "testing"

func TestOutOfBoundsReadsAsWater(t *testing.T) {
	g := New(4, 4)
	if got := g.At(Pos{X: -1, Y: 0}).Terrain; got != Water {
		t.Fatalf("oob terrain = %v, want water", got)
	}
	if g.BaseCostMilli(Pos{X: 4, Y: 4}) != 0 {
		t.Fatalf("oob tile should be impassable")
	}
}

func TestIsBuildable(t *testing.T) {
	g := New(8, 8)
	g.SetTerrain(Pos{X: 2, Y: 2}, Forest)
	g.SetTerrain(Pos{X: 5, Y: 5}, Water)
	g.SetTerrain(Pos{X: 0, Y: 0}, Road)

	cases := []struct {
		name   string
		origin Pos
		w, h   int
		want   bool
	}{
		{"open grass", Pos{X: 3, Y: 3}, 2, 2, true},
		{"on road", Pos{X: 0, Y: 0}, 1, 1, true},
		{"touches forest", Pos{X: 1, Y: 1}, 2, 2, false},
		{"touches water", Pos{X: 4, Y: 4}, 2, 2, false},
		{"out of bounds", Pos{X: 7, Y: 7}, 2, 2, false},
	}
	for _, tc := range cases {
		if got := g.IsBuildable(tc.origin, tc.w, tc.h); got != tc.want {
			t.Errorf("%s: IsBuildable = %v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestOccupancyLifecycle(t *testing.T) {
	g := New(8, 8)
	if err := g.SetOccupant(Pos{X: 1, Y: 1}, 2, 2, 7); err != nil {
		t.Fatalf("SetOccupant: %v", err)
	}
	if g.At(Pos{X: 2, Y: 2}).Occupant != 7 {
		t.Fatalf("tile not occupied after SetOccupant")
	}
	if g.IsBuildable(Pos{X: 2, Y: 2}, 1, 1) {
		t.Fatalf("occupied tile reported buildable")
	}
	if err := g.SetOccupant(Pos{X: 2, Y: 2}, 1, 1, 8); err == nil {
		t.Fatalf("double occupation not rejected")
	}

	g.ClearOccupant(Pos{X: 1, Y: 1}, 2, 2, 7)
	if g.At(Pos{X: 2, Y: 2}).Occupant != 0 {
		t.Fatalf("tile still occupied after ClearOccupant")
	}
}

func TestMutationHooksFire(t *testing.T) {
	g := New(4, 4)
	var fired []Pos
	g.OnMutate(func(p Pos) { fired = append(fired, p) })

	g.SetTerrain(Pos{X: 1, Y: 1}, Road)
	g.SetTerrain(Pos{X: 1, Y: 1}, Road) // no-op, must not fire
	if err := g.SetOccupant(Pos{X: 2, Y: 2}, 1, 1, 1); err != nil {
		t.Fatalf("SetOccupant: %v", err)
	}
	g.ClearOccupant(Pos{X: 2, Y: 2}, 1, 1, 1)

	if len(fired) != 3 {
		t.Fatalf("hooks fired %d times, want 3: %v", len(fired), fired)
	}
}

func TestManhattan(t *testing.T) {
	if d := (Pos{X: 1, Y: 2}).ManhattanTo(Pos{X: 4, Y: 0}); d != 5 {
		t.Fatalf("manhattan = %d, want 5", d)
	}
}
