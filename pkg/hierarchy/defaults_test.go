package hierarchy

import (
	"testing"

	"github.com/diister-dev/quick-permission/pkg/schema"
)

func withDefault(name string, state map[string]any) schema.Schema {
	return schema.Schema{
		Name:         name,
		DefaultState: func() map[string]any { return state },
	}
}

func TestDefaultState(t *testing.T) {
	h := buildPaths(t, map[string]*Node{
		"p": Permission(Definition{
			Schemas: []schema.Schema{
				withDefault("a", map[string]any{"target": []any{}, "shared": "a"}),
				withDefault("b", map[string]any{"shared": "b"}),
			},
			DefaultState: map[string]any{"explicit": true, "shared": "node"},
		}, nil),
	})

	d := h.DefaultState("p")
	if d["shared"] != "node" {
		t.Errorf("node-level default must win, got shared=%v", d["shared"])
	}
	if d["explicit"] != true {
		t.Error("node-level key missing")
	}
	if _, ok := d["target"]; !ok {
		t.Error("schema-contributed default missing")
	}
}

func TestDefaultStateUnknownPath(t *testing.T) {
	h := buildPaths(t, map[string]*Node{"p": Permission(Definition{}, nil)})
	if d := h.DefaultState("missing"); d == nil || len(d) != 0 {
		t.Errorf("unknown path default = %v, want empty map", d)
	}
}

func TestDefaultStates(t *testing.T) {
	h := buildPaths(t, map[string]*Node{
		"a": Permission(Definition{
			Schemas: []schema.Schema{withDefault("s", map[string]any{"k": 1})},
		}, map[string]*Node{
			"b": Permission(Definition{}, nil),
		}),
	})

	all := h.DefaultStates()
	if len(all) != 2 {
		t.Fatalf("expected defaults for 2 paths, got %d", len(all))
	}
	if all["a"]["k"] != 1 {
		t.Errorf("a default = %v", all["a"])
	}
	if len(all["a.b"]) != 0 {
		t.Errorf("a.b default = %v, want empty", all["a.b"])
	}
}
