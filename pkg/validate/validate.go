// Package validate orchestrates permission evaluation: ancestor-chain
// resolution, default-state injection, schema and rule checks, and the
// OR-across-sources / AND-across-chain folds.
package validate

import (
	"context"
	"fmt"
	"time"

	"github.com/diister-dev/quick-permission/pkg/hierarchy"
	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/trace"
)

// Source is one independent provenance of grants (direct grant, role,
// group, ...): a map from permission path to either one state object or
// a list of alternative state objects.
type Source map[string]any

// Reason explains one schema failure, rule error, or explicit denial.
type Reason struct {
	Type          string `json:"type"` // schema, rule
	Name          string `json:"name"`
	Message       string `json:"message"`
	StateIndex    int    `json:"state_index"`
	PermissionKey string `json:"permission_key,omitempty"`
}

func (r *Reason) Error() string {
	return fmt.Sprintf("[%s] %s: %s", r.Type, r.Name, r.Message)
}

// Result is the outcome of one Validate call. Reasons is populated only
// when the combined outcome is an explicit denial: a Neutral result
// (nobody granted, nobody denied) yields Valid=false with no reasons.
type Result struct {
	Valid   bool            `json:"valid"`
	Outcome outcome.Outcome `json:"outcome"`
	Reasons []*Reason       `json:"reasons,omitempty"`
}

// UnknownKeyError is returned when the requested key is not a path in
// the flattened hierarchy. It indicates a setup mistake, not a denial.
type UnknownKeyError struct {
	Key string
}

func (e *UnknownKeyError) Error() string {
	return fmt.Sprintf("unknown permission key %q", e.Key)
}

// Config holds optional validator collaborators.
type Config struct {
	// Trace receives JSONL decision events. Nil disables tracing.
	Trace *trace.Writer
}

// Validator evaluates requests against one immutable hierarchy. Safe
// for concurrent use: validation mutates nothing.
type Validator struct {
	h        *hierarchy.Hierarchy
	cfg      Config
	defaults map[string]map[string]any
}

// New creates a validator. Default states are synthesized once here,
// which is sound because the hierarchy is immutable after Build.
func New(h *hierarchy.Hierarchy, cfg Config) *Validator {
	return &Validator{
		h:        h,
		cfg:      cfg,
		defaults: h.DefaultStates(),
	}
}

// Validate is the convenience form for callers without a Validator.
func Validate(h *hierarchy.Hierarchy, sources []Source, key string, request map[string]any) (*Result, error) {
	return New(h, Config{}).Validate(context.Background(), sources, key, request)
}

// Validate decides whether the request is granted for key. Sources
// combine with OR (Blocked dominates the fold but does not stop source
// iteration); within a source the ancestor chain combines with AND.
// Returns an error only for setup mistakes (unknown key) or context
// cancellation — never for ordinary access-control outcomes.
func (v *Validator) Validate(ctx context.Context, sources []Source, key string, request map[string]any) (*Result, error) {
	start := time.Now()
	tw := v.cfg.Trace
	tw.EmitValidateStart(key, len(sources))

	if !v.h.Has(key) {
		return nil, &UnknownKeyError{Key: key}
	}
	chain := v.h.SatisfiedBy(key)
	tw.EmitChainResolved(key, chain)

	combined := outcome.Neutral
	var collected []*Reason

	for i, src := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		srcOutcome, reasons := v.evaluateSource(i, src, chain, request)
		collected = append(collected, reasons...)
		combined = outcome.CombineOr(combined, srcOutcome)
		tw.EmitSourceResolved(i, string(srcOutcome))
	}

	res := &Result{
		Valid:   combined == outcome.Granted,
		Outcome: combined,
	}
	if combined.Denies() {
		res.Reasons = collected
	}
	tw.EmitValidateComplete(key, string(combined), res.Valid, len(res.Reasons), time.Since(start))
	return res, nil
}

// evaluateSource folds the ancestor chain with AND semantics: the first
// denial short-circuits the chain; otherwise the source grants when at
// least one ancestor granted and none abstained into a denial — all
// Neutral means the source abstains.
func (v *Validator) evaluateSource(idx int, src Source, chain []string, request map[string]any) (outcome.Outcome, []*Reason) {
	var reasons []*Reason
	anyGranted := false

	for _, path := range chain {
		pathOutcome, defaulted, rs := v.evaluatePath(idx, src, path, request)
		reasons = append(reasons, rs...)
		v.cfg.Trace.EmitPathResolved(path, string(pathOutcome), idx, defaulted)

		if pathOutcome.Denies() {
			return pathOutcome, reasons
		}
		if pathOutcome == outcome.Granted {
			anyGranted = true
		}
	}

	if anyGranted {
		return outcome.Granted, reasons
	}
	return outcome.Neutral, reasons
}

// evaluatePath resolves the state entries for one ancestor path and
// folds them with OR priority: entries are alternative grants, so one
// Granted entry clears the path even if a sibling entry was rejected.
func (v *Validator) evaluatePath(idx int, src Source, path string, request map[string]any) (outcome.Outcome, bool, []*Reason) {
	var entries []map[string]any
	defaulted := false

	raw, present := src[path]
	if !present {
		entries = []map[string]any{v.defaults[path]}
		defaulted = true
	} else {
		var err error
		entries, err = normalizeEntries(raw)
		if err != nil {
			reason := &Reason{
				Type:          "schema",
				Name:          path,
				Message:       err.Error(),
				StateIndex:    idx,
				PermissionKey: path,
			}
			return outcome.Rejected, false, []*Reason{reason}
		}
	}

	// A present-but-empty entry list means the path abstains.
	pathOutcome := outcome.Neutral
	var reasons []*Reason
	for j, entry := range entries {
		o, rs := v.evaluateEntry(idx, path, entry, request)
		reasons = append(reasons, rs...)
		pathOutcome = outcome.CombineOr(pathOutcome, o)
		v.cfg.Trace.EmitEntryResolved(path, j, string(o), idx)
	}
	return pathOutcome, defaulted, reasons
}

// evaluateEntry runs every schema check, then folds the path's rules
// conjunctively: any denial (or rule error) short-circuits, and the
// entry is Granted only when every rule granted.
func (v *Validator) evaluateEntry(idx int, path string, state, request map[string]any) (outcome.Outcome, []*Reason) {
	entry, ok := v.h.Lookup(path)
	if !ok {
		return outcome.Neutral, nil
	}

	for _, s := range entry.Schemas {
		if err := s.CheckState(state); err != nil {
			v.cfg.Trace.EmitSchemaFailed(path, s.Name, err.Error(), idx)
			return outcome.Rejected, []*Reason{{
				Type:          "schema",
				Name:          s.Name,
				Message:       err.Error(),
				StateIndex:    idx,
				PermissionKey: path,
			}}
		}
		if err := s.CheckRequest(request); err != nil {
			v.cfg.Trace.EmitSchemaFailed(path, s.Name, err.Error(), idx)
			return outcome.Rejected, []*Reason{{
				Type:          "schema",
				Name:          s.Name,
				Message:       err.Error(),
				StateIndex:    idx,
				PermissionKey: path,
			}}
		}
	}

	granted := 0
	for _, r := range entry.Rules {
		o, err := r.Check(state, request)
		if err != nil {
			v.cfg.Trace.EmitRuleEvaluated(path, r.Name, "error", idx)
			return outcome.Rejected, []*Reason{{
				Type:          "rule",
				Name:          r.Name,
				Message:       err.Error(),
				StateIndex:    idx,
				PermissionKey: path,
			}}
		}
		v.cfg.Trace.EmitRuleEvaluated(path, r.Name, string(o), idx)

		switch o {
		case outcome.Blocked:
			return outcome.Blocked, []*Reason{{
				Type:          "rule",
				Name:          r.Name,
				Message:       "Access blocked: " + r.Name,
				StateIndex:    idx,
				PermissionKey: path,
			}}
		case outcome.Rejected:
			return outcome.Rejected, []*Reason{{
				Type:          "rule",
				Name:          r.Name,
				Message:       "Rule not satisfied: " + r.Name,
				StateIndex:    idx,
				PermissionKey: path,
			}}
		case outcome.Granted:
			granted++
		}
	}

	if len(entry.Rules) > 0 && granted == len(entry.Rules) {
		return outcome.Granted, nil
	}
	return outcome.Neutral, nil
}

// normalizeEntries accepts the two legal state shapes at a path — one
// object or a list of objects — and normalizes them once, here, so the
// engine never branches on value shape.
func normalizeEntries(raw any) ([]map[string]any, error) {
	switch v := raw.(type) {
	case map[string]any:
		return []map[string]any{v}, nil
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for i, e := range v {
			m, ok := e.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("state entry %d: expected object, got %T", i, e)
			}
			out = append(out, m)
		}
		return out, nil
	case nil:
		return nil, nil
	default:
		return nil, fmt.Errorf("state must be an object or a list of objects, got %T", raw)
	}
}
