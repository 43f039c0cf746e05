// Package hierarchy implements the permission tree model: tagged
// group/permission nodes, flattening into dot-delimited paths with cycle
// detection, ancestor-chain resolution, and default-state synthesis.
package hierarchy

import (
	"sort"

	"github.com/diister-dev/quick-permission/pkg/rule"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

// Definition is the checkable content of a permission node.
type Definition struct {
	// Schemas explicitly attached to the node, in addition to those the
	// node's rules declare.
	Schemas []schema.Schema
	Rules   []rule.Rule
	// DefaultState is the node-level override merged on top of the
	// schema-contributed defaults.
	DefaultState map[string]any
}

// Node is one tree node: either a permission (checkable, possibly with
// children) or a plain group that only nests children.
type Node struct {
	def      *Definition
	children map[string]*Node
}

// Permission builds a checkable node. children may be nil for a leaf.
func Permission(def Definition, children map[string]*Node) *Node {
	d := def
	return &Node{def: &d, children: children}
}

// Group builds a plain nesting node. It contributes a path segment but
// no flattened entry of its own.
func Group(children map[string]*Node) *Node {
	return &Node{children: children}
}

// Entry is the flattened content recorded for one path. Schemas is the
// union (by name) of the node's explicit schemas and every schema its
// rules declare, node schemas first.
type Entry struct {
	Schemas      []schema.Schema
	Rules        []rule.Rule
	DefaultState map[string]any
}

// Hierarchy is the read-only flat map from path to permission content.
// Built once by Build and safe for concurrent use afterward.
type Hierarchy struct {
	flat  map[string]Entry
	paths []string
}

// Lookup returns the entry recorded at path.
func (h *Hierarchy) Lookup(path string) (Entry, bool) {
	e, ok := h.flat[path]
	return e, ok
}

// Has reports whether path exists in the flat map.
func (h *Hierarchy) Has(path string) bool {
	_, ok := h.flat[path]
	return ok
}

// Paths returns all flattened paths in sorted order.
func (h *Hierarchy) Paths() []string {
	out := make([]string, len(h.paths))
	copy(out, h.paths)
	return out
}

// Len returns the number of flattened permissions.
func (h *Hierarchy) Len() int {
	return len(h.flat)
}

func (h *Hierarchy) sortPaths() {
	h.paths = make([]string, 0, len(h.flat))
	for p := range h.flat {
		h.paths = append(h.paths, p)
	}
	sort.Strings(h.paths)
}
