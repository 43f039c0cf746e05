package rules

import (
	"github.com/diister-dev/quick-permission/pkg/rule"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

var ownerSchema = func() schema.Schema {
	s := mustSchema("owner",
		map[string]any{"type": "object"},
		map[string]any{
			"type":     "object",
			"required": []any{"from"},
			"properties": map[string]any{
				"from":  stringField(),
				"owner": stringField(),
			},
		},
	)
	s.DefaultState = func() map[string]any { return map[string]any{} }
	return s
}()

// OwnerSchema is the structural contract for ownership checks: the
// request carries from and optionally owner; the state is unconstrained
// and defaults to empty.
func OwnerSchema() schema.Schema { return ownerSchema }

// AllowOwner grants when the request's owner equals the requester. Only
// the request is inspected, so the rule works against an empty state.
func AllowOwner() rule.Rule {
	return rule.FromPredicate("allowOwner", []schema.Schema{ownerSchema},
		func(state, request map[string]any) (bool, bool) {
			owner := str(request["owner"])
			if owner == "" {
				return false, false
			}
			if owner == str(request["from"]) {
				return true, true
			}
			return false, false
		})
}
