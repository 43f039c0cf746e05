// Package rule defines the named check unit evaluated by the validator,
// constructors for predicate- and expression-based rules, and the
// and/or/not/merge combinators.
package rule

import (
	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

// CheckFunc evaluates one rule against a state entry and a request. It
// must be a pure function of its arguments. A non-nil error is treated
// by the validator as Rejected with the error text recorded verbatim.
type CheckFunc func(state, request map[string]any) (outcome.Outcome, error)

// Rule is a named check bound to the schemas whose shapes its state and
// request parameters require. The validator runs schema checks before
// Check, so Check may assume well-formed input.
type Rule struct {
	Name    string
	Schemas []schema.Schema
	Check   CheckFunc
}

// New builds a rule from a four-state check function.
func New(name string, schemas []schema.Schema, check CheckFunc) Rule {
	return Rule{Name: name, Schemas: schemas, Check: check}
}

// FromPredicate adapts a legacy two-valued rule. decided=false maps to
// Neutral, allowed maps to Granted/Rejected. This is the only place the
// legacy encoding is handled; the engine sees four-state outcomes only.
func FromPredicate(name string, schemas []schema.Schema, pred func(state, request map[string]any) (allowed, decided bool)) Rule {
	return Rule{
		Name:    name,
		Schemas: schemas,
		Check: func(state, request map[string]any) (outcome.Outcome, error) {
			allowed, decided := pred(state, request)
			return outcome.FromBool(allowed, decided), nil
		},
	}
}
