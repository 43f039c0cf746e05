package rules

import (
	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/rule"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

var selfSchema = func() schema.Schema {
	s := mustSchema("self",
		map[string]any{"type": "object"},
		map[string]any{
			"type":     "object",
			"required": []any{"from"},
			"properties": map[string]any{
				"from":   stringField(),
				"target": stringField(),
			},
		},
	)
	s.DefaultState = func() map[string]any { return map[string]any{} }
	return s
}()

// SelfSchema is the structural contract for requester/target identity
// checks.
func SelfSchema() schema.Schema { return selfSchema }

// AllowSelf grants when the request targets the requester itself.
func AllowSelf() rule.Rule {
	return rule.FromPredicate("allowSelf", []schema.Schema{selfSchema},
		func(state, request map[string]any) (bool, bool) {
			from := str(request["from"])
			if from != "" && from == str(request["target"]) {
				return true, true
			}
			return false, false
		})
}

// DenySelf rejects when the request targets the requester itself and
// abstains otherwise. Used on ancestor paths to forbid self-directed
// operations regardless of grants further down the chain.
func DenySelf() rule.Rule {
	return rule.New("denySelf", []schema.Schema{selfSchema},
		func(state, request map[string]any) (outcome.Outcome, error) {
			from := str(request["from"])
			if from != "" && from == str(request["target"]) {
				return outcome.Rejected, nil
			}
			return outcome.Neutral, nil
		})
}
