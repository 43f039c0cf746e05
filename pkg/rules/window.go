package rules

import (
	"fmt"
	"time"

	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/rule"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

var timeSchema = func() schema.Schema {
	s := mustSchema("time",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"not_before": map[string]any{"type": "string", "format": "date-time"},
				"not_after":  map[string]any{"type": "string", "format": "date-time"},
			},
		},
		map[string]any{"type": "object"},
	)
	s.DefaultState = func() map[string]any { return map[string]any{} }
	return s
}()

// TimeSchema is the structural contract for validity-window checks: the
// state optionally carries not_before / not_after RFC 3339 timestamps.
func TimeSchema() schema.Schema { return timeSchema }

// WithinWindow grants while the current time is inside the state's
// validity window and rejects outside it. States without bounds yield
// Neutral. now may be nil (defaults to time.Now) and exists so tests can
// pin the clock.
func WithinWindow(now func() time.Time) rule.Rule {
	if now == nil {
		now = time.Now
	}
	return rule.New("withinWindow", []schema.Schema{timeSchema},
		func(state, request map[string]any) (outcome.Outcome, error) {
			notBefore, hasBefore, err := stateTime(state, "not_before")
			if err != nil {
				return outcome.Rejected, err
			}
			notAfter, hasAfter, err := stateTime(state, "not_after")
			if err != nil {
				return outcome.Rejected, err
			}
			if !hasBefore && !hasAfter {
				return outcome.Neutral, nil
			}

			t := now()
			if hasBefore && t.Before(notBefore) {
				return outcome.Rejected, nil
			}
			if hasAfter && t.After(notAfter) {
				return outcome.Rejected, nil
			}
			return outcome.Granted, nil
		})
}

func stateTime(state map[string]any, key string) (time.Time, bool, error) {
	raw, ok := state[key]
	if !ok {
		return time.Time{}, false, nil
	}
	s, ok := raw.(string)
	if !ok {
		return time.Time{}, false, fmt.Errorf("state %s: expected RFC 3339 string, got %T", key, raw)
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("state %s: %v", key, err)
	}
	return t, true, nil
}
