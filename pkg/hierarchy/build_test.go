package hierarchy

import (
	"errors"
	"fmt"
	"testing"

	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/rule"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

func neutralRule(name string, schemas ...schema.Schema) rule.Rule {
	return rule.New(name, schemas, func(state, request map[string]any) (outcome.Outcome, error) {
		return outcome.Neutral, nil
	})
}

func TestBuildFlattensPaths(t *testing.T) {
	h, err := Build(map[string]*Node{
		"user": Permission(Definition{Rules: []rule.Rule{neutralRule("r1")}}, map[string]*Node{
			"delete": Permission(Definition{Rules: []rule.Rule{neutralRule("r2")}}, nil),
			"view":   Permission(Definition{}, nil),
		}),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []string{"user", "user.delete", "user.view"}
	got := h.Paths()
	if len(got) != len(want) {
		t.Fatalf("paths = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("paths[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestBuildGroupRecordsNoEntry(t *testing.T) {
	h, err := Build(map[string]*Node{
		"org": Group(map[string]*Node{
			"team": Permission(Definition{}, nil),
		}),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h.Has("org") {
		t.Error("group node must not record a flattened entry")
	}
	if !h.Has("org.team") {
		t.Error("permission under a group must be recorded")
	}
}

func TestBuildSchemaUnion(t *testing.T) {
	explicit := schema.Schema{Name: "explicit"}
	shared := schema.Schema{Name: "shared"}
	ruleOnly := schema.Schema{Name: "ruleOnly"}

	h, err := Build(map[string]*Node{
		"p": Permission(Definition{
			Schemas: []schema.Schema{explicit, shared},
			Rules: []rule.Rule{
				neutralRule("r1", shared, ruleOnly),
			},
		}, nil),
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	e, _ := h.Lookup("p")
	names := make([]string, len(e.Schemas))
	for i, s := range e.Schemas {
		names[i] = s.Name
	}
	want := []string{"explicit", "shared", "ruleOnly"}
	if len(names) != len(want) {
		t.Fatalf("schemas = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("schemas[%d] = %q, want %q (node schemas first, deduplicated)", i, names[i], want[i])
		}
	}
}

func TestBuildSelfReferenceFails(t *testing.T) {
	n := Permission(Definition{}, nil)
	n.children = map[string]*Node{"loop": n}

	_, err := Build(map[string]*Node{"root": n})
	var cerr *CircularReferenceError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CircularReferenceError, got %v", err)
	}
}

func TestBuildTransitiveCycleFails(t *testing.T) {
	a := Permission(Definition{}, nil)
	b := Permission(Definition{}, nil)
	a.children = map[string]*Node{"b": b}
	b.children = map[string]*Node{"a": a}

	_, err := Build(map[string]*Node{"a": a})
	var cerr *CircularReferenceError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CircularReferenceError, got %v", err)
	}
}

func TestBuildSharedNodeFails(t *testing.T) {
	// The flattening treats the tree as shared-nothing: the same node
	// reachable twice is a build error even without a true cycle.
	shared := Permission(Definition{}, nil)
	_, err := Build(map[string]*Node{
		"a": Permission(Definition{}, map[string]*Node{"x": shared}),
		"b": Permission(Definition{}, map[string]*Node{"x": shared}),
	})
	var cerr *CircularReferenceError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected CircularReferenceError, got %v", err)
	}
}

func TestBuildDeepHierarchy(t *testing.T) {
	leaf := Permission(Definition{}, nil)
	node := leaf
	for i := 9; i >= 1; i-- {
		node = Permission(Definition{}, map[string]*Node{fmt.Sprintf("l%d", i+1): node})
	}

	h, err := Build(map[string]*Node{"l1": node})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h.Len() != 10 {
		t.Errorf("expected 10 paths, got %d", h.Len())
	}
	if !h.Has("l1.l2.l3.l4.l5.l6.l7.l8.l9.l10") {
		t.Error("deepest path missing")
	}
}

func TestBuildWideHierarchy(t *testing.T) {
	children := make(map[string]*Node, 100)
	for i := 0; i < 100; i++ {
		children[fmt.Sprintf("c%03d", i)] = Permission(Definition{}, nil)
	}

	h, err := Build(map[string]*Node{"root": Permission(Definition{}, children)})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if h.Len() != 101 {
		t.Errorf("expected 101 paths, got %d", h.Len())
	}
}

func TestBuildRejectsBadSegments(t *testing.T) {
	if _, err := Build(map[string]*Node{"a.b": Permission(Definition{}, nil)}); err == nil {
		t.Error("segment containing '.' must fail")
	}
	if _, err := Build(map[string]*Node{"": Permission(Definition{}, nil)}); err == nil {
		t.Error("empty segment must fail")
	}
	if _, err := Build(map[string]*Node{"a": nil}); err == nil {
		t.Error("nil node must fail")
	}
}
