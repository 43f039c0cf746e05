package rule

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

// FromExpr compiles a boolean expression over `state` and `request` into
// a rule. A true result is Granted; onFalse decides what a false result
// means (Neutral for grant-only conditions, Rejected/Blocked for deny
// conditions). Example: FromExpr("isOwner", `request.from == state.owner`,
// outcome.Neutral).
func FromExpr(name, src string, onFalse outcome.Outcome, schemas ...schema.Schema) (Rule, error) {
	if onFalse == outcome.Granted {
		return Rule{}, fmt.Errorf("rule %q: on_false cannot be granted", name)
	}
	env := map[string]any{
		"state":   map[string]any{},
		"request": map[string]any{},
	}
	program, err := expr.Compile(src, expr.Env(env), expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return Rule{}, fmt.Errorf("rule %q: compile expression %q: %w", name, src, err)
	}

	return Rule{
		Name:    name,
		Schemas: schema.Dedupe(schemas),
		Check: func(state, request map[string]any) (outcome.Outcome, error) {
			res, err := runBool(program, state, request)
			if err != nil {
				return outcome.Rejected, fmt.Errorf("rule %q: eval expression: %w", name, err)
			}
			if res {
				return outcome.Granted, nil
			}
			return onFalse, nil
		},
	}, nil
}

func runBool(program *vm.Program, state, request map[string]any) (bool, error) {
	if state == nil {
		state = map[string]any{}
	}
	if request == nil {
		request = map[string]any{}
	}
	out, err := expr.Run(program, map[string]any{
		"state":   state,
		"request": request,
	})
	if err != nil {
		return false, err
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("expression did not return bool (got %T: %v)", out, out)
	}
	return b, nil
}
