package content

// Content definitions are immutable after Load. Systems interpret them by
// id; new content never needs new code paths.

// BuildingDef describes a placeable building type.
type BuildingDef struct {
	Name             string         `yaml:"name" json:"name"`
	ConstructionTime float64        `yaml:"construction_time" json:"construction_time"` // seconds
	ConstructionCost map[string]int `yaml:"construction_cost" json:"construction_cost"`
	WorkerCapacity   int            `yaml:"worker_capacity" json:"worker_capacity"`
	StockpileCap     int            `yaml:"stockpile_capacity" json:"stockpile_capacity"`
	Width            int            `yaml:"width" json:"width"`
	Height           int            `yaml:"height" json:"height"`
}

// RecipeDef is a timed input->output transformation tied to a building
// type. An empty input table means raw extraction.
type RecipeDef struct {
	Name             string         `yaml:"name" json:"name"`
	ProductionTime   float64        `yaml:"production_time" json:"production_time"` // seconds
	Inputs           map[string]int `yaml:"inputs" json:"inputs"`
	Outputs          map[string]int `yaml:"outputs" json:"outputs"`
	RequiredBuilding string         `yaml:"required_building" json:"required_building"`
}

// WorkerDef describes a recruitable worker type.
type WorkerDef struct {
	Name        string  `yaml:"name" json:"name"`
	MoveSpeed   float64 `yaml:"movement_speed" json:"movement_speed"` // tiles per second
	CarryCap    int     `yaml:"carrying_capacity" json:"carrying_capacity"`
	CostProfile string  `yaml:"cost_profile,omitempty" json:"cost_profile,omitempty"`
}

// MapGenDef parameterizes deterministic map generation.
type MapGenDef struct {
	Width         int     `yaml:"width" json:"width"`
	Height        int     `yaml:"height" json:"height"`
	ForestDensity float64 `yaml:"forest_density" json:"forest_density"`
	StoneDensity  float64 `yaml:"stone_density" json:"stone_density"`
	WaterPatches  int     `yaml:"water_patches" json:"water_patches"`
	Seed          int64   `yaml:"seed" json:"seed"`
}

// ModDescriptor is the mod.yaml record at the root of each mod directory.
// Higher priority wins id collisions; base content has implicit priority
// below every mod.
type ModDescriptor struct {
	ID          string `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Author      string `yaml:"author,omitempty" json:"author,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Priority    int    `yaml:"priority" json:"priority"`
}

// Set is the validated, merged content set consumed read-only by the
// engine.
type Set struct {
	Buildings map[string]BuildingDef
	Recipes   map[string]RecipeDef
	Workers   map[string]WorkerDef
	MapGen    MapGenDef
	Mods      []ModDescriptor

	// Digest covers the canonical JSON form of the merged tables; save and
	// replay files refuse to load against a different content set.
	Digest string
}

// Building returns the def for id, reporting whether it exists.
func (s *Set) Building(id string) (BuildingDef, bool) {
	d, ok := s.Buildings[id]
	return d, ok
}

// Recipe returns the def for id, reporting whether it exists.
func (s *Set) Recipe(id string) (RecipeDef, bool) {
	d, ok := s.Recipes[id]
	return d, ok
}

// Worker returns the def for id, reporting whether it exists.
func (s *Set) Worker(id string) (WorkerDef, bool) {
	d, ok := s.Workers[id]
	return d, ok
}
