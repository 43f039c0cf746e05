// Package rules provides the built-in rules and schemas: ownership,
// self/target identity, target pattern matching, and time windows.
package rules

import (
	"github.com/diister-dev/quick-permission/pkg/schema"
)

// mustSchema compiles a built-in schema at package init. The documents
// are fixed, so a compile failure is a programming error.
func mustSchema(name string, stateDoc, requestDoc any) schema.Schema {
	s, err := schema.FromJSONSchema(name, stateDoc, requestDoc)
	if err != nil {
		panic(err)
	}
	return s
}

// stringField is the JSON Schema fragment for an optional string field.
func stringField() map[string]any {
	return map[string]any{"type": "string"}
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
