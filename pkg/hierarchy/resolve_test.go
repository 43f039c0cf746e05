package hierarchy

import (
	"testing"
)

func buildPaths(t *testing.T, tree map[string]*Node) *Hierarchy {
	t.Helper()
	h, err := Build(tree)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return h
}

func TestSatisfiedBy(t *testing.T) {
	h := buildPaths(t, map[string]*Node{
		"org": Permission(Definition{}, map[string]*Node{
			"department": Permission(Definition{}, map[string]*Node{
				"team": Permission(Definition{}, nil),
			}),
		}),
	})

	tests := []struct {
		key  string
		want []string
	}{
		{"org.department.team", []string{"org", "org.department", "org.department.team"}},
		{"org.department", []string{"org", "org.department"}},
		{"org", []string{"org"}},
		{"missing", nil},
		{"org.missing", []string{"org"}},
		{"org.missing.team", []string{"org"}},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := h.SatisfiedBy(tt.key)
			if len(got) != len(tt.want) {
				t.Fatalf("SatisfiedBy(%q) = %v, want %v", tt.key, got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("SatisfiedBy(%q)[%d] = %q, want %q", tt.key, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// Resolution stops at the first missing prefix: with only a and a.b.c in
// the flat map, a.b.c is unreachable because a.b is missing.
func TestSatisfiedByStopsAtGap(t *testing.T) {
	h := buildPaths(t, map[string]*Node{
		"a": Permission(Definition{}, map[string]*Node{
			"b": Group(map[string]*Node{
				"c": Permission(Definition{}, nil),
			}),
		}),
	})

	if h.Has("a.b") {
		t.Fatal("precondition: a.b must not be a flattened path")
	}
	if !h.Has("a.b.c") {
		t.Fatal("precondition: a.b.c must be a flattened path")
	}

	got := h.SatisfiedBy("a.b.c")
	if len(got) != 1 || got[0] != "a" {
		t.Errorf(`SatisfiedBy("a.b.c") = %v, want ["a"]`, got)
	}
}
