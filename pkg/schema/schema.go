// Package schema defines named structural contracts for permission state
// and request shapes, plus default-state generation.
package schema

// Check validates one object shape. A nil Check means "no constraint".
// Returning a non-nil error marks the object as failing this schema; the
// error text is surfaced verbatim in validation reasons.
type Check func(v map[string]any) error

// Schema pairs a state-shape check with a request-shape check under a
// stable name. Identity is by Name: two schemas sharing a name are the
// same contributor even if they are distinct values.
type Schema struct {
	Name         string
	StateCheck   Check
	RequestCheck Check

	// DefaultState returns a minimal valid state object for this schema
	// alone. Must be pure. Nil means the schema contributes no default.
	DefaultState func() map[string]any
}

// CheckState runs the state-shape check, treating a nil check as a pass.
func (s Schema) CheckState(state map[string]any) error {
	if s.StateCheck == nil {
		return nil
	}
	return s.StateCheck(state)
}

// CheckRequest runs the request-shape check, treating a nil check as a pass.
func (s Schema) CheckRequest(request map[string]any) error {
	if s.RequestCheck == nil {
		return nil
	}
	return s.RequestCheck(request)
}

// Dedupe returns the schemas with duplicate names removed, keeping the
// first occurrence of each name in input order.
func Dedupe(schemas []Schema) []Schema {
	seen := make(map[string]struct{}, len(schemas))
	out := make([]Schema, 0, len(schemas))
	for _, s := range schemas {
		if _, ok := seen[s.Name]; ok {
			continue
		}
		seen[s.Name] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Union merges schema sets by name, preserving first-seen order across
// the sets in argument order.
func Union(sets ...[]Schema) []Schema {
	var all []Schema
	for _, set := range sets {
		all = append(all, set...)
	}
	return Dedupe(all)
}

// MergeDefaults folds the schemas' default states into one object, later
// schemas overriding earlier ones key-by-key, then applies the explicit
// override on top. Always returns a non-nil map.
func MergeDefaults(schemas []Schema, override map[string]any) map[string]any {
	out := make(map[string]any)
	for _, s := range schemas {
		if s.DefaultState == nil {
			continue
		}
		for k, v := range s.DefaultState() {
			out[k] = v
		}
	}
	for k, v := range override {
		out[k] = v
	}
	return out
}
