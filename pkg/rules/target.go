package rules

import (
	"strings"

	"github.com/diister-dev/quick-permission/pkg/rule"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

var targetSchema = func() schema.Schema {
	s := mustSchema("target",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			},
		},
		map[string]any{
			"type":     "object",
			"required": []any{"from", "target"},
			"properties": map[string]any{
				"from":   stringField(),
				"target": stringField(),
			},
		},
	)
	s.DefaultState = func() map[string]any {
		return map[string]any{"target": []any{}}
	}
	return s
}()

// TargetSchema is the structural contract for grant-list checks: the
// state holds a list of allowed target patterns, the request names one
// target. The default state is an empty grant list.
func TargetSchema() schema.Schema { return targetSchema }

// TargetOptions configures AllowTarget.
type TargetOptions struct {
	// Wildcards enables `*` segments in state patterns, matched against
	// `:`-delimited targets (e.g. "doc:*" matches "doc:report").
	Wildcards bool
}

// AllowTarget grants when the request's target matches one of the
// patterns in the state's target list, and abstains otherwise.
func AllowTarget(opts TargetOptions) rule.Rule {
	return rule.FromPredicate("allowTarget", []schema.Schema{targetSchema},
		func(state, request map[string]any) (bool, bool) {
			want := str(request["target"])
			if want == "" {
				return false, false
			}
			for _, p := range stateTargets(state) {
				if matchTarget(p, want, opts.Wildcards) {
					return true, true
				}
			}
			return false, false
		})
}

// stateTargets extracts the pattern list, accepting both []any (decoded
// documents) and []string (Go callers).
func stateTargets(state map[string]any) []string {
	switch v := state["target"].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// matchTarget matches one pattern against a target. Without wildcards it
// is plain equality. With wildcards, `*` matches everything and a `*`
// segment matches any single `:`-delimited segment.
func matchTarget(pattern, target string, wildcards bool) bool {
	if !wildcards {
		return pattern == target
	}
	if pattern == "*" {
		return true
	}
	ps := strings.Split(pattern, ":")
	ts := strings.Split(target, ":")
	if len(ps) != len(ts) {
		return false
	}
	for i := range ps {
		if ps[i] != "*" && ps[i] != ts[i] {
			return false
		}
	}
	return true
}
