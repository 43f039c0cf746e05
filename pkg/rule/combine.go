package rule

import (
	"strings"

	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

// Combinators wrap other rules. Each deduplicates the wrapped rules'
// schemas by name (first-seen order) and evaluates rules left-to-right,
// stopping as soon as the result is decided.

// Merge combines rules with priority Blocked > Rejected > Granted >
// Neutral. Blocked short-circuits; Rejected does not, since a later
// Blocked still outranks it.
func Merge(rules ...Rule) Rule {
	return Rule{
		Name:    combineName("merge", rules),
		Schemas: unionSchemas(rules),
		Check: func(state, request map[string]any) (outcome.Outcome, error) {
			anyRejected := false
			anyGranted := false
			for _, r := range rules {
				o, err := r.Check(state, request)
				if err != nil {
					return outcome.Rejected, err
				}
				switch o {
				case outcome.Blocked:
					return outcome.Blocked, nil
				case outcome.Rejected:
					anyRejected = true
				case outcome.Granted:
					anyGranted = true
				}
			}
			switch {
			case anyRejected:
				return outcome.Rejected, nil
			case anyGranted:
				return outcome.Granted, nil
			default:
				return outcome.Neutral, nil
			}
		},
	}
}

// And grants only if every rule grants. Any deny short-circuits; a
// Neutral among non-deny results yields Neutral, not Granted.
func And(rules ...Rule) Rule {
	return Rule{
		Name:    combineName("and", rules),
		Schemas: unionSchemas(rules),
		Check: func(state, request map[string]any) (outcome.Outcome, error) {
			granted := 0
			for _, r := range rules {
				o, err := r.Check(state, request)
				if err != nil {
					return outcome.Rejected, err
				}
				switch o {
				case outcome.Blocked:
					return outcome.Blocked, nil
				case outcome.Rejected:
					return outcome.Rejected, nil
				case outcome.Granted:
					granted++
				}
			}
			if granted > 0 && granted == len(rules) {
				return outcome.Granted, nil
			}
			return outcome.Neutral, nil
		},
	}
}

// Or grants on the first granting rule and otherwise stays Neutral. Or
// never denies: absence of a positive opinion is not a denial.
func Or(rules ...Rule) Rule {
	return Rule{
		Name:    combineName("or", rules),
		Schemas: unionSchemas(rules),
		Check: func(state, request map[string]any) (outcome.Outcome, error) {
			for _, r := range rules {
				o, err := r.Check(state, request)
				if err != nil {
					return outcome.Rejected, err
				}
				if o == outcome.Granted {
					return outcome.Granted, nil
				}
			}
			return outcome.Neutral, nil
		},
	}
}

// Not inverts a rule: Granted becomes Rejected, Rejected becomes
// Granted, Neutral stays Neutral. Blocked becomes Granted — inverting an
// override yields a plain allow, not another override, so Blocked does
// not survive double negation.
func Not(r Rule) Rule {
	return Rule{
		Name:    "not(" + r.Name + ")",
		Schemas: schema.Dedupe(r.Schemas),
		Check: func(state, request map[string]any) (outcome.Outcome, error) {
			o, err := r.Check(state, request)
			if err != nil {
				return outcome.Rejected, err
			}
			switch o {
			case outcome.Granted:
				return outcome.Rejected, nil
			case outcome.Rejected, outcome.Blocked:
				return outcome.Granted, nil
			default:
				return outcome.Neutral, nil
			}
		},
	}
}

func combineName(op string, rules []Rule) string {
	names := make([]string, len(rules))
	for i, r := range rules {
		names[i] = r.Name
	}
	return op + "(" + strings.Join(names, ",") + ")"
}

func unionSchemas(rules []Rule) []schema.Schema {
	var all []schema.Schema
	for _, r := range rules {
		all = append(all, r.Schemas...)
	}
	return schema.Dedupe(all)
}
