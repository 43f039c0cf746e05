package loader

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// GenerateHierarchyJSONSchema produces a JSON Schema Draft 2020-12
// document for hierarchy YAML documents using invopop/jsonschema.
func GenerateHierarchyJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&Document{})
	s.ID = "https://github.com/diister-dev/quick-permission/schemas/hierarchy-v1.json"
	s.Title = "Permission Hierarchy v1"
	s.Description = "Schema for quick-permission hierarchy YAML documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal hierarchy schema: %w", err)
	}
	return data, nil
}

// GenerateStatesJSONSchema produces a JSON Schema Draft 2020-12
// document for state-source YAML documents.
func GenerateStatesJSONSchema() ([]byte, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = false

	s := r.Reflect(&StatesDocument{})
	s.ID = "https://github.com/diister-dev/quick-permission/schemas/states-v1.json"
	s.Title = "Permission State Sources v1"
	s.Description = "Schema for quick-permission state-source YAML documents (Draft 2020-12)"

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal states schema: %w", err)
	}
	return data, nil
}
