package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func writeBase(t *testing.T, dir string) {
	writeFile(t, filepath.Join(dir, "buildings.yaml"), `
hut:
  name: Hut
  construction_time: 2.0
  construction_cost:
    wood: 1
  worker_capacity: 2
  stockpile_capacity: 10
  width: 1
  height: 1
mill:
  name: Mill
  construction_time: 3.0
  worker_capacity: 2
  stockpile_capacity: 10
  width: 2
  height: 2
`)
	writeFile(t, filepath.Join(dir, "recipes.yaml"), `
cut_wood:
  name: Cut Wood
  production_time: 2.0
  inputs: {}
  outputs:
    wood: 2
  required_building: hut
grind:
  name: Grind
  production_time: 1.0
  inputs:
    wood: 1
  outputs:
    chips: 1
  required_building: mill
`)
	writeFile(t, filepath.Join(dir, "workers.yaml"), `
porter:
  name: Porter
  movement_speed: 1.0
  carrying_capacity: 5
`)
	writeFile(t, filepath.Join(dir, "mapgen.yaml"), `
width: 16
height: 16
forest_density: 0.2
stone_density: 0.1
water_patches: 0
seed: 7
`)
}

func TestLoadBase(t *testing.T) {
	base := t.TempDir()
	writeBase(t, base)

	set, err := Load(base, "")
	require.NoError(t, err)

	assert.Len(t, set.Buildings, 2)
	assert.Len(t, set.Recipes, 2)
	assert.Len(t, set.Workers, 1)
	assert.Equal(t, 16, set.MapGen.Width)
	assert.NotEmpty(t, set.Digest)

	hut, ok := set.Building("hut")
	require.True(t, ok)
	assert.Equal(t, 2, hut.WorkerCapacity)
	assert.Equal(t, map[string]int{"wood": 1}, hut.ConstructionCost)
}

func TestLoadDigestStable(t *testing.T) {
	base := t.TempDir()
	writeBase(t, base)

	a, err := Load(base, "")
	require.NoError(t, err)
	b, err := Load(base, "")
	require.NoError(t, err)
	assert.Equal(t, a.Digest, b.Digest)
}

func TestModOverridesByPriority(t *testing.T) {
	base := t.TempDir()
	writeBase(t, base)
	mods := t.TempDir()

	writeFile(t, filepath.Join(mods, "low", "mod.yaml"), `
id: low
name: Low
version: 1.0.0
priority: 1
`)
	writeFile(t, filepath.Join(mods, "low", "workers.yaml"), `
porter:
  name: Porter
  movement_speed: 2.0
  carrying_capacity: 5
`)
	writeFile(t, filepath.Join(mods, "high", "mod.yaml"), `
id: high
name: High
version: 1.0.0
priority: 5
`)
	writeFile(t, filepath.Join(mods, "high", "workers.yaml"), `
porter:
  name: Porter
  movement_speed: 3.0
  carrying_capacity: 8
`)

	set, err := Load(base, mods)
	require.NoError(t, err)

	// Whole-record replacement: the high-priority mod's record wins in
	// full, it is not field-merged.
	porter, ok := set.Worker("porter")
	require.True(t, ok)
	assert.Equal(t, 3.0, porter.MoveSpeed)
	assert.Equal(t, 8, porter.CarryCap)

	require.Len(t, set.Mods, 2)
	assert.Equal(t, "low", set.Mods[0].ID)
	assert.Equal(t, "high", set.Mods[1].ID)
}

func TestModAddsNewRecords(t *testing.T) {
	base := t.TempDir()
	writeBase(t, base)
	mods := t.TempDir()

	writeFile(t, filepath.Join(mods, "extra", "mod.yaml"), `
id: extra
name: Extra
version: 1.0.0
priority: 1
`)
	writeFile(t, filepath.Join(mods, "extra", "buildings.yaml"), `
kiln:
  name: Kiln
  construction_time: 4.0
  worker_capacity: 1
  stockpile_capacity: 8
  width: 1
  height: 1
`)

	set, err := Load(base, mods)
	require.NoError(t, err)
	_, ok := set.Building("kiln")
	assert.True(t, ok)
	assert.Len(t, set.Buildings, 3)
}

func TestLoadCollectsAllErrors(t *testing.T) {
	base := t.TempDir()
	writeBase(t, base)
	writeFile(t, filepath.Join(base, "recipes.yaml"), `
bad_time:
  name: Bad Time
  production_time: -1.0
  outputs:
    x: 1
  required_building: hut
bad_ref:
  name: Bad Ref
  production_time: 1.0
  outputs:
    y: 1
  required_building: nowhere
`)

	_, err := Load(base, "")
	require.Error(t, err)
	errs, ok := err.(*Errors)
	require.True(t, ok)
	// Both problems reported in one pass.
	assert.GreaterOrEqual(t, len(errs.Problems), 2)
	assert.Contains(t, err.Error(), "bad_time")
	assert.Contains(t, err.Error(), "nowhere")
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	base := t.TempDir()
	writeBase(t, base)
	writeFile(t, filepath.Join(base, "workers.yaml"), `
porter:
  name: Porter
  movement_speed: 1.0
  carrying_capacity: 5
  carry_capacity: 5
`)

	_, err := Load(base, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "porter")
}

func TestRecipeCycleRejected(t *testing.T) {
	base := t.TempDir()
	writeBase(t, base)
	writeFile(t, filepath.Join(base, "recipes.yaml"), `
a_to_b:
  name: A to B
  production_time: 1.0
  inputs:
    a: 1
  outputs:
    b: 1
  required_building: hut
b_to_a:
  name: B to A
  production_time: 1.0
  inputs:
    b: 1
  outputs:
    a: 1
  required_building: mill
`)

	_, err := Load(base, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestMissingModsDirIsFine(t *testing.T) {
	base := t.TempDir()
	writeBase(t, base)

	set, err := Load(base, filepath.Join(base, "no-such-dir"))
	require.NoError(t, err)
	assert.Empty(t, set.Mods)
}
