package content

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Errors collects every load-time failure so a data author sees all
// problems in one pass. Loading is atomic: a non-empty Errors means no Set.
type Errors struct {
	Problems []string
}

func (e *Errors) add(format string, args ...any) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

func (e *Errors) Error() string {
	return fmt.Sprintf("content: %d error(s):\n  %s", len(e.Problems), strings.Join(e.Problems, "\n  "))
}

// source is one contributor of content tables, in merge order.
type source struct {
	label      string
	priority   int
	descriptor *ModDescriptor // nil for base

	buildings map[string]BuildingDef
	recipes   map[string]RecipeDef
	workers   map[string]WorkerDef
	mapgen    *MapGenDef
}

// Load reads base content from baseDir and every mod under modsDir (may
// be empty), merges by priority with whole-record replacement, validates,
// and returns the immutable Set. All collected errors are returned
// together; loading never partially succeeds.
func Load(baseDir, modsDir string) (*Set, error) {
	errs := &Errors{}

	base := loadSource(baseDir, "base", -1, errs)

	sources := []*source{base}
	mods := discoverMods(modsDir, errs)
	for i := range mods {
		sources = append(sources, &mods[i])
	}

	// Higher priority applies later and overrides; equal priorities apply
	// in mod id order so the outcome never depends on directory listing.
	sort.SliceStable(sources[1:], func(i, j int) bool {
		a, b := sources[1+i], sources[1+j]
		if a.priority != b.priority {
			return a.priority < b.priority
		}
		return a.label < b.label
	})

	set := &Set{
		Buildings: map[string]BuildingDef{},
		Recipes:   map[string]RecipeDef{},
		Workers:   map[string]WorkerDef{},
	}
	for _, src := range sources {
		if src.descriptor != nil {
			set.Mods = append(set.Mods, *src.descriptor)
		}
		for id, d := range src.buildings {
			set.Buildings[id] = d
		}
		for id, d := range src.recipes {
			set.Recipes[id] = d
		}
		for id, d := range src.workers {
			set.Workers[id] = d
		}
		if src.mapgen != nil {
			set.MapGen = *src.mapgen
		}
	}

	validate(set, errs)

	if len(errs.Problems) > 0 {
		return nil, errs
	}

	set.Digest = digest(set)
	return set, nil
}

// discoverMods finds mod directories (those containing mod.yaml) and loads
// their descriptors and tables.
func discoverMods(modsDir string, errs *Errors) []source {
	if modsDir == "" {
		return nil
	}
	ents, err := os.ReadDir(modsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		errs.add("mods dir %s: %v", modsDir, err)
		return nil
	}

	var out []source
	for _, ent := range ents {
		if !ent.IsDir() {
			continue
		}
		dir := filepath.Join(modsDir, ent.Name())
		descPath := filepath.Join(dir, "mod.yaml")
		raw, err := os.ReadFile(descPath)
		if err != nil {
			if os.IsNotExist(err) {
				continue // not a mod
			}
			errs.add("%s: %v", descPath, err)
			continue
		}
		var desc ModDescriptor
		if err := yaml.Unmarshal(raw, &desc); err != nil {
			errs.add("%s: %v", descPath, err)
			continue
		}
		if desc.ID == "" {
			errs.add("%s: missing id", descPath)
			continue
		}
		src := loadSource(dir, desc.ID, desc.Priority, errs)
		src.descriptor = &desc
		out = append(out, *src)
	}
	return out
}

func loadSource(dir, label string, priority int, errs *Errors) *source {
	src := &source{
		label:     label,
		priority:  priority,
		buildings: map[string]BuildingDef{},
		recipes:   map[string]RecipeDef{},
		workers:   map[string]WorkerDef{},
	}

	loadTable(filepath.Join(dir, "buildings.yaml"), label, "building", buildingSchema, &src.buildings, errs)
	loadTable(filepath.Join(dir, "recipes.yaml"), label, "recipe", recipeSchema, &src.recipes, errs)
	loadTable(filepath.Join(dir, "workers.yaml"), label, "worker", workerSchema, &src.workers, errs)

	mgPath := filepath.Join(dir, "mapgen.yaml")
	if raw, err := os.ReadFile(mgPath); err == nil {
		if err := validateYAML(raw, mapgenSchema); err != nil {
			errs.add("%s: mapgen: %v", label, err)
		} else {
			var mg MapGenDef
			if err := yaml.Unmarshal(raw, &mg); err != nil {
				errs.add("%s: mapgen.yaml: %v", label, err)
			} else {
				src.mapgen = &mg
			}
		}
	} else if !os.IsNotExist(err) {
		errs.add("%s: %v", mgPath, err)
	}

	return src
}

// loadTable reads one keyed YAML table. Missing files are fine (a mod may
// contribute a subset of tables); malformed records are collected errors.
func loadTable[T any](path, label, kind string, schemaSrc string, out *map[string]T, errs *Errors) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		errs.add("%s: %v", path, err)
		return
	}

	// The schema check runs on the generic decoding before the typed one
	// so the author gets field-level diagnostics instead of Go decode
	// errors.
	var generic map[string]any
	if err := yaml.Unmarshal(raw, &generic); err != nil {
		errs.add("%s: %s: %v", label, filepath.Base(path), err)
		return
	}
	ids := make([]string, 0, len(generic))
	for id := range generic {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	// Records are decoded one by one so a schema-invalid entry only
	// drops itself; the valid siblings still merge and reach the
	// cross-record checks, keeping the error report complete.
	schema := compiledSchema(schemaSrc)
	for _, id := range ids {
		if err := schema.Validate(toJSONValue(generic[id])); err != nil {
			errs.add("%s: %s %q: %v", label, kind, id, schemaErrSummary(err))
			continue
		}
		buf, err := yaml.Marshal(generic[id])
		if err != nil {
			errs.add("%s: %s %q: %v", label, kind, id, err)
			continue
		}
		var rec T
		if err := yaml.Unmarshal(buf, &rec); err != nil {
			errs.add("%s: %s %q: %v", label, kind, id, err)
			continue
		}
		(*out)[id] = rec
	}
}

// digest hashes the canonical JSON of the merged tables (encoding/json
// sorts map keys), so identical content yields an identical digest
// regardless of source layout.
func digest(s *Set) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	_ = enc.Encode(s.Buildings)
	_ = enc.Encode(s.Recipes)
	_ = enc.Encode(s.Workers)
	_ = enc.Encode(s.MapGen)
	return hex.EncodeToString(h.Sum(nil))
}
