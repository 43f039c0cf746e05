// Package loader reads hierarchy and state-source documents from YAML
// and builds engine values through a registry of rule factories.
package loader

import (
	"fmt"

	"github.com/diister-dev/quick-permission/pkg/rule"
	"github.com/diister-dev/quick-permission/pkg/rules"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

// Factory builds a rule from the options given in a document rule spec.
type Factory func(options map[string]any) (rule.Rule, error)

// Registry maps rule and schema names to their constructors so
// documents can reference them by name.
type Registry struct {
	factories map[string]Factory
	schemas   map[string]schema.Schema
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
		schemas:   make(map[string]schema.Schema),
	}
}

// DefaultRegistry creates a registry with the built-in rules and
// schemas registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.RegisterRule("allowOwner", func(map[string]any) (rule.Rule, error) {
		return rules.AllowOwner(), nil
	})
	r.RegisterRule("allowSelf", func(map[string]any) (rule.Rule, error) {
		return rules.AllowSelf(), nil
	})
	r.RegisterRule("denySelf", func(map[string]any) (rule.Rule, error) {
		return rules.DenySelf(), nil
	})
	r.RegisterRule("allowTarget", func(options map[string]any) (rule.Rule, error) {
		wildcards, _ := options["wildcards"].(bool)
		return rules.AllowTarget(rules.TargetOptions{Wildcards: wildcards}), nil
	})
	r.RegisterRule("withinWindow", func(map[string]any) (rule.Rule, error) {
		return rules.WithinWindow(nil), nil
	})

	r.RegisterSchema(rules.OwnerSchema())
	r.RegisterSchema(rules.SelfSchema())
	r.RegisterSchema(rules.TargetSchema())
	r.RegisterSchema(rules.TimeSchema())

	return r
}

// RegisterRule adds a rule factory under name, replacing any previous
// registration.
func (r *Registry) RegisterRule(name string, f Factory) {
	r.factories[name] = f
}

// RegisterSchema adds a schema under its own name.
func (r *Registry) RegisterSchema(s schema.Schema) {
	r.schemas[s.Name] = s
}

func (r *Registry) buildRule(name string, options map[string]any) (rule.Rule, error) {
	f, ok := r.factories[name]
	if !ok {
		return rule.Rule{}, fmt.Errorf("unknown rule %q", name)
	}
	return f(options)
}

func (r *Registry) lookupSchema(name string) (schema.Schema, error) {
	s, ok := r.schemas[name]
	if !ok {
		return schema.Schema{}, fmt.Errorf("unknown schema %q", name)
	}
	return s, nil
}
