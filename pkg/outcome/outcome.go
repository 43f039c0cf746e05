// Package outcome defines the four-state result model shared by rules,
// combinators, and the validator.
package outcome

// Outcome is the opinion a rule (or a combination of rules) holds about a
// request: no opinion, explicit allow, explicit deny, or overriding deny.
type Outcome string

const (
	// Neutral means the rule holds no opinion about the request.
	Neutral Outcome = "neutral"
	// Granted is an explicit allow.
	Granted Outcome = "granted"
	// Rejected is an explicit deny at normal priority.
	Rejected Outcome = "rejected"
	// Blocked is an overriding deny. It cannot be reversed by any
	// combinator other than not, which turns it into a plain Granted.
	Blocked Outcome = "blocked"
)

// Valid reports whether o is one of the four defined outcomes.
func (o Outcome) Valid() bool {
	switch o {
	case Neutral, Granted, Rejected, Blocked:
		return true
	}
	return false
}

// Denies reports whether o is an explicit deny (Rejected or Blocked).
func (o Outcome) Denies() bool {
	return o == Rejected || o == Blocked
}

// FromBool normalizes a legacy two-valued rule result. decided=false maps
// to Neutral (the legacy "undefined" return).
func FromBool(allowed, decided bool) Outcome {
	if !decided {
		return Neutral
	}
	if allowed {
		return Granted
	}
	return Rejected
}

// CombineOr folds two outcomes with OR priority: Blocked dominates, then
// Granted, then Rejected, then Neutral. Used across state sources and
// across alternative state entries at the same path.
func CombineOr(a, b Outcome) Outcome {
	if a == Blocked || b == Blocked {
		return Blocked
	}
	if a == Granted || b == Granted {
		return Granted
	}
	if a == Rejected || b == Rejected {
		return Rejected
	}
	return Neutral
}

// CombineMerge folds two outcomes with merge priority: any deny wins
// (Blocked over Rejected), then Granted, then Neutral.
func CombineMerge(a, b Outcome) Outcome {
	if a == Blocked || b == Blocked {
		return Blocked
	}
	if a == Rejected || b == Rejected {
		return Rejected
	}
	if a == Granted || b == Granted {
		return Granted
	}
	return Neutral
}
