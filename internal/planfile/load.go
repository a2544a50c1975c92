// Package planfile loads a PlanSpec from a YAML file on disk, the format the
// CLI's "create plan" subcommand accepts. PlanSpec already owns the untagged
// args/parallel/serial decoding logic for JSON; rather than duplicate that
// logic for YAML, a plan file is decoded generically and re-marshaled through
// encoding/json so PlanSpec.UnmarshalJSON does the real work.
package planfile

import (
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kestrelrun/kestrel/internal/taskmodel"
)

// Load reads a YAML plan file and decodes it into a PlanSpec.
func Load(path string) (taskmodel.PlanSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return taskmodel.PlanSpec{}, fmt.Errorf("read plan file: %w", err)
	}

	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return taskmodel.PlanSpec{}, fmt.Errorf("parse plan file: %w", err)
	}

	asJSON, err := json.Marshal(normalizeYAML(generic))
	if err != nil {
		return taskmodel.PlanSpec{}, fmt.Errorf("normalize plan file: %w", err)
	}

	var spec taskmodel.PlanSpec
	if err := json.Unmarshal(asJSON, &spec); err != nil {
		return taskmodel.PlanSpec{}, fmt.Errorf("decode plan spec: %w", err)
	}
	return spec, nil
}

// normalizeYAML recursively converts the map[string]interface{} shape
// gopkg.in/yaml.v3 produces into the map[string]interface{} encoding/json
// expects; yaml.v3 itself already uses string keys (unlike yaml.v2's
// map[interface{}]interface{}), so this only needs to recurse through
// slices and maps to reach every nested node.
func normalizeYAML(node any) any {
	switch v := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalizeYAML(val)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalizeYAML(val)
		}
		return out
	default:
		return v
	}
}
