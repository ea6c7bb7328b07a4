package content

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Record schemas catch shape problems (wrong types, negative counts,
// unknown fields) before the range/reference checks run. Kept strict:
// additionalProperties false so typos in field names fail loudly.

const buildingSchema = `{
  "type": "object",
  "required": ["name", "construction_time", "worker_capacity", "stockpile_capacity", "width", "height"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "construction_time": {"type": "number", "exclusiveMinimum": 0},
    "construction_cost": {"type": "object", "additionalProperties": {"type": "integer", "minimum": 1}},
    "worker_capacity": {"type": "integer", "minimum": 1},
    "stockpile_capacity": {"type": "integer", "minimum": 1},
    "width": {"type": "integer", "minimum": 1},
    "height": {"type": "integer", "minimum": 1}
  }
}`

const recipeSchema = `{
  "type": "object",
  "required": ["name", "production_time", "outputs", "required_building"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "production_time": {"type": "number", "exclusiveMinimum": 0},
    "inputs": {"type": "object", "additionalProperties": {"type": "integer", "minimum": 1}},
    "outputs": {"type": "object", "minProperties": 1, "additionalProperties": {"type": "integer", "minimum": 1}},
    "required_building": {"type": "string", "minLength": 1}
  }
}`

const workerSchema = `{
  "type": "object",
  "required": ["name", "movement_speed", "carrying_capacity"],
  "additionalProperties": false,
  "properties": {
    "name": {"type": "string", "minLength": 1},
    "movement_speed": {"type": "number", "exclusiveMinimum": 0},
    "carrying_capacity": {"type": "integer", "minimum": 1},
    "cost_profile": {"type": "string", "minLength": 1}
  }
}`

const mapgenSchema = `{
  "type": "object",
  "required": ["width", "height", "seed"],
  "additionalProperties": false,
  "properties": {
    "width": {"type": "integer", "minimum": 8},
    "height": {"type": "integer", "minimum": 8},
    "forest_density": {"type": "number", "minimum": 0, "maximum": 1},
    "stone_density": {"type": "number", "minimum": 0, "maximum": 1},
    "water_patches": {"type": "integer", "minimum": 0},
    "seed": {"type": "integer"}
  }
}`

var (
	schemaMu    sync.Mutex
	schemaCache = map[string]*jsonschema.Schema{}
)

func compiledSchema(src string) *jsonschema.Schema {
	schemaMu.Lock()
	defer schemaMu.Unlock()
	if s, ok := schemaCache[src]; ok {
		return s
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource("record.schema.json", strings.NewReader(src)); err != nil {
		panic(err) // schemas are compiled-in constants
	}
	s, err := c.Compile("record.schema.json")
	if err != nil {
		panic(err)
	}
	schemaCache[src] = s
	return s
}

func validateYAML(raw []byte, schemaSrc string) error {
	var v any
	if err := yaml.Unmarshal(raw, &v); err != nil {
		return err
	}
	if err := compiledSchema(schemaSrc).Validate(toJSONValue(v)); err != nil {
		return errors.New(schemaErrSummary(err))
	}
	return nil
}

// toJSONValue round-trips the yaml.v3 decoding through encoding/json so
// the validator sees exactly the shapes json.Unmarshal would produce
// (string keys, float64 numbers).
func toJSONValue(v any) any {
	b, err := json.Marshal(v)
	if err != nil {
		return v
	}
	var out any
	if err := json.Unmarshal(b, &out); err != nil {
		return v
	}
	return out
}

// schemaErrSummary flattens the validator's error tree to its leaf
// causes; the full tree is unreadable in a collected error list.
func schemaErrSummary(err error) string {
	var ve *jsonschema.ValidationError
	if errors.As(err, &ve) {
		leaves := leafCauses(ve)
		parts := make([]string, 0, len(leaves))
		for _, l := range leaves {
			loc := l.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			parts = append(parts, loc+": "+l.Message)
		}
		return strings.Join(parts, "; ")
	}
	return err.Error()
}

func leafCauses(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var out []*jsonschema.ValidationError
	for _, c := range ve.Causes {
		out = append(out, leafCauses(c)...)
	}
	return out
}
