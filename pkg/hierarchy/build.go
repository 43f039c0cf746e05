package hierarchy

import (
	"fmt"
	"sort"
	"strings"

	"github.com/diister-dev/quick-permission/pkg/schema"
)

// maxBuildIterations bounds the flattening loop as a safety net against
// cycles that escape identity tracking. A valid hierarchy visits each
// node once, so any real tree stays far below this.
const maxBuildIterations = 1 << 20

// CircularReferenceError is returned when a node is reachable from
// itself (or appears twice anywhere in the traversal).
type CircularReferenceError struct {
	Path string
}

func (e *CircularReferenceError) Error() string {
	return fmt.Sprintf("circular reference detected at %q", e.Path)
}

// Build flattens a tree of nodes into a Hierarchy. roots maps the
// top-level path segments to their nodes. Building fails on circular
// references, nil nodes, and path segments containing ".".
func Build(roots map[string]*Node) (*Hierarchy, error) {
	h := &Hierarchy{flat: make(map[string]Entry)}

	type frame struct {
		path string
		node *Node
	}

	var stack []frame
	for _, key := range sortedKeys(roots) {
		if err := checkSegment(key); err != nil {
			return nil, err
		}
		stack = append(stack, frame{path: key, node: roots[key]})
	}

	visited := make(map[*Node]struct{})
	iterations := 0

	for len(stack) > 0 {
		iterations++
		if iterations > maxBuildIterations {
			return nil, &CircularReferenceError{Path: stack[len(stack)-1].path}
		}

		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node == nil {
			return nil, fmt.Errorf("invalid hierarchy: nil node at %q", f.path)
		}
		if _, seen := visited[f.node]; seen {
			return nil, &CircularReferenceError{Path: f.path}
		}
		visited[f.node] = struct{}{}

		if f.node.def != nil {
			h.flat[f.path] = flatten(f.node.def)
		}

		for _, key := range sortedKeys(f.node.children) {
			if err := checkSegment(key); err != nil {
				return nil, fmt.Errorf("under %q: %w", f.path, err)
			}
			stack = append(stack, frame{
				path: f.path + "." + key,
				node: f.node.children[key],
			})
		}
	}

	h.sortPaths()
	return h, nil
}

// flatten computes the entry for one permission node: explicit schemas
// first, then rule-declared schemas, deduplicated by name.
func flatten(def *Definition) Entry {
	sets := [][]schema.Schema{def.Schemas}
	for _, r := range def.Rules {
		sets = append(sets, r.Schemas)
	}
	return Entry{
		Schemas:      schema.Union(sets...),
		Rules:        def.Rules,
		DefaultState: def.DefaultState,
	}
}

func checkSegment(key string) error {
	if key == "" {
		return fmt.Errorf("invalid hierarchy: empty path segment")
	}
	if strings.Contains(key, ".") {
		return fmt.Errorf("invalid hierarchy: path segment %q contains %q", key, ".")
	}
	return nil
}

func sortedKeys(m map[string]*Node) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
