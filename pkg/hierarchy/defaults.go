package hierarchy

import "github.com/diister-dev/quick-permission/pkg/schema"

// DefaultState synthesizes the baseline state for one path: each
// schema's default merged in order, node-level DefaultState winning
// key-by-key. Returns an empty map for unknown paths.
func (h *Hierarchy) DefaultState(path string) map[string]any {
	e, ok := h.flat[path]
	if !ok {
		return map[string]any{}
	}
	return schema.MergeDefaults(e.Schemas, e.DefaultState)
}

// DefaultStates synthesizes the baseline state for every path. The
// hierarchy is immutable after Build, so callers may cache the result.
func (h *Hierarchy) DefaultStates() map[string]map[string]any {
	out := make(map[string]map[string]any, len(h.flat))
	for path := range h.flat {
		out[path] = h.DefaultState(path)
	}
	return out
}
