package rule

import (
	"strings"
	"testing"

	"github.com/diister-dev/quick-permission/pkg/outcome"
)

func TestFromPredicate(t *testing.T) {
	r := FromPredicate("legacy", nil, func(state, request map[string]any) (bool, bool) {
		v, ok := request["allow"].(bool)
		if !ok {
			return false, false
		}
		return v, true
	})

	tests := []struct {
		name    string
		request map[string]any
		want    outcome.Outcome
	}{
		{"true → granted", map[string]any{"allow": true}, outcome.Granted},
		{"false → rejected", map[string]any{"allow": false}, outcome.Rejected},
		{"undecided → neutral", map[string]any{}, outcome.Neutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Check(nil, tt.request)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFromExpr(t *testing.T) {
	r, err := FromExpr("isOwner", `request.from == state.owner`, outcome.Neutral)
	if err != nil {
		t.Fatalf("FromExpr: %v", err)
	}

	got, err := r.Check(map[string]any{"owner": "u1"}, map[string]any{"from": "u1"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if got != outcome.Granted {
		t.Errorf("matching owner: got %q, want granted", got)
	}

	got, err = r.Check(map[string]any{"owner": "u1"}, map[string]any{"from": "u2"})
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	if got != outcome.Neutral {
		t.Errorf("mismatched owner: got %q, want neutral", got)
	}
}

func TestFromExprOnFalseRejects(t *testing.T) {
	r, err := FromExpr("notRoot", `request.from != "root"`, outcome.Rejected)
	if err != nil {
		t.Fatalf("FromExpr: %v", err)
	}

	got, _ := r.Check(nil, map[string]any{"from": "root"})
	if got != outcome.Rejected {
		t.Errorf("root request: got %q, want rejected", got)
	}
	got, _ = r.Check(nil, map[string]any{"from": "u1"})
	if got != outcome.Granted {
		t.Errorf("non-root request: got %q, want granted", got)
	}
}

func TestFromExprRejectsGrantedOnFalse(t *testing.T) {
	if _, err := FromExpr("bad", `true`, outcome.Granted); err == nil {
		t.Fatal("on_false=granted must be rejected")
	}
}

func TestFromExprCompileError(t *testing.T) {
	_, err := FromExpr("broken", `request.from ==`, outcome.Neutral)
	if err == nil {
		t.Fatal("expected compile error")
	}
	if !strings.Contains(err.Error(), "compile expression") {
		t.Errorf("error should mention compilation, got %q", err)
	}
}

func TestFromExprNilMaps(t *testing.T) {
	r, err := FromExpr("open", `request.from == "u1"`, outcome.Neutral)
	if err != nil {
		t.Fatalf("FromExpr: %v", err)
	}
	got, err := r.Check(nil, nil)
	if err != nil {
		t.Fatalf("nil maps should evaluate, got error: %v", err)
	}
	if got != outcome.Neutral {
		t.Errorf("got %q, want neutral", got)
	}
}
