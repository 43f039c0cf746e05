package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/diister-dev/quick-permission/pkg/hierarchy"
	"github.com/diister-dev/quick-permission/pkg/outcome"
	"github.com/diister-dev/quick-permission/pkg/rule"
	"github.com/diister-dev/quick-permission/pkg/schema"
)

// Document is the YAML form of a permission hierarchy.
type Document struct {
	// Schemas declares custom JSON Schema backed schemas usable from
	// nodes, in addition to the registry's built-ins.
	Schemas     []SchemaDef         `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	Permissions map[string]*NodeDef `yaml:"permissions" json:"permissions"`
}

// SchemaDef declares one custom schema: Draft 2020-12 documents for the
// state and request sides plus an optional default state.
type SchemaDef struct {
	Name         string         `yaml:"name" json:"name"`
	State        map[string]any `yaml:"state,omitempty" json:"state,omitempty"`
	Request      map[string]any `yaml:"request,omitempty" json:"request,omitempty"`
	DefaultState map[string]any `yaml:"default_state,omitempty" json:"default_state,omitempty"`
}

// NodeDef is the YAML form of one tree node. A node is a permission
// unless group is set; groups only nest children and record no path
// entry of their own.
type NodeDef struct {
	Group        bool                `yaml:"group,omitempty" json:"group,omitempty"`
	Rules        []RuleSpec          `yaml:"rules,omitempty" json:"rules,omitempty"`
	Schemas      []string            `yaml:"schemas,omitempty" json:"schemas,omitempty"`
	DefaultState map[string]any      `yaml:"default_state,omitempty" json:"default_state,omitempty"`
	Children     map[string]*NodeDef `yaml:"children,omitempty" json:"children,omitempty"`
}

// RuleSpec references a registered rule by name (with options) or
// declares an inline expression rule. Exactly one of use/expr is set.
// The YAML shorthand `- denySelf` is equivalent to `- use: denySelf`.
type RuleSpec struct {
	Use     string         `yaml:"use,omitempty" json:"use,omitempty"`
	Options map[string]any `yaml:"options,omitempty" json:"options,omitempty"`

	Name    string `yaml:"name,omitempty" json:"name,omitempty"`
	Expr    string `yaml:"expr,omitempty" json:"expr,omitempty"`
	OnFalse string `yaml:"on_false,omitempty" json:"on_false,omitempty"` // neutral (default), rejected, blocked
}

// UnmarshalYAML accepts both the scalar shorthand and the full mapping.
func (r *RuleSpec) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var name string
		if err := node.Decode(&name); err != nil {
			return err
		}
		*r = RuleSpec{Use: name}
		return nil
	}
	type plain RuleSpec
	var v plain
	if err := node.Decode(&v); err != nil {
		return err
	}
	*r = RuleSpec(v)
	return nil
}

// LoadFile reads a hierarchy document from path and builds it.
func LoadFile(path string, reg *Registry) (*hierarchy.Hierarchy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open hierarchy document: %w", err)
	}
	defer f.Close()
	return Load(f, reg)
}

// Load decodes a hierarchy document strictly (unknown fields are
// errors) and builds the flattened hierarchy.
func Load(r io.Reader, reg *Registry) (*hierarchy.Hierarchy, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}
	return BuildDocument(doc, reg)
}

// Decode strictly decodes a hierarchy document without building it.
func Decode(r io.Reader) (*Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc Document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode hierarchy document: %w", err)
	}
	if len(doc.Permissions) == 0 {
		return nil, errors.New("hierarchy document declares no permissions")
	}
	return &doc, nil
}

// BuildDocument resolves a decoded document against the registry and
// flattens the resulting tree. Custom schema declarations are visible
// to the document only; the registry is not mutated.
func BuildDocument(doc *Document, reg *Registry) (*hierarchy.Hierarchy, error) {
	scoped := NewRegistry()
	for name, f := range reg.factories {
		scoped.factories[name] = f
	}
	for name, s := range reg.schemas {
		scoped.schemas[name] = s
	}
	for _, def := range doc.Schemas {
		s, err := buildSchemaDef(def)
		if err != nil {
			return nil, err
		}
		scoped.RegisterSchema(s)
	}

	roots := make(map[string]*hierarchy.Node, len(doc.Permissions))
	for name, def := range doc.Permissions {
		node, err := buildNode(name, def, scoped)
		if err != nil {
			return nil, err
		}
		roots[name] = node
	}
	return hierarchy.Build(roots)
}

func buildSchemaDef(def SchemaDef) (schema.Schema, error) {
	if def.Name == "" {
		return schema.Schema{}, errors.New("schema declaration requires a name")
	}
	var stateDoc, requestDoc any
	if def.State != nil {
		stateDoc = def.State
	}
	if def.Request != nil {
		requestDoc = def.Request
	}
	s, err := schema.FromJSONSchema(def.Name, stateDoc, requestDoc)
	if err != nil {
		return schema.Schema{}, err
	}
	if def.DefaultState != nil {
		d := def.DefaultState
		s.DefaultState = func() map[string]any { return d }
	}
	return s, nil
}

func buildNode(path string, def *NodeDef, reg *Registry) (*hierarchy.Node, error) {
	if def == nil {
		return nil, fmt.Errorf("permission %q: empty definition", path)
	}
	if def.Group && (len(def.Rules) > 0 || len(def.Schemas) > 0 || def.DefaultState != nil) {
		return nil, fmt.Errorf("permission %q: a group cannot carry rules, schemas, or default_state", path)
	}

	var children map[string]*hierarchy.Node
	if len(def.Children) > 0 {
		children = make(map[string]*hierarchy.Node, len(def.Children))
		for name, child := range def.Children {
			node, err := buildNode(path+"."+name, child, reg)
			if err != nil {
				return nil, err
			}
			children[name] = node
		}
	}

	if def.Group {
		return hierarchy.Group(children), nil
	}

	built := hierarchy.Definition{DefaultState: def.DefaultState}
	for _, name := range def.Schemas {
		s, err := reg.lookupSchema(name)
		if err != nil {
			return nil, fmt.Errorf("permission %q: %w", path, err)
		}
		built.Schemas = append(built.Schemas, s)
	}
	for i, spec := range def.Rules {
		r, err := buildRuleSpec(spec, reg)
		if err != nil {
			return nil, fmt.Errorf("permission %q: rules[%d]: %w", path, i, err)
		}
		built.Rules = append(built.Rules, r)
	}
	return hierarchy.Permission(built, children), nil
}

func buildRuleSpec(spec RuleSpec, reg *Registry) (rule.Rule, error) {
	switch {
	case spec.Use != "" && spec.Expr != "":
		return rule.Rule{}, errors.New("rule spec sets both use and expr")
	case spec.Use != "":
		return reg.buildRule(spec.Use, spec.Options)
	case spec.Expr != "":
		onFalse, err := parseOnFalse(spec.OnFalse)
		if err != nil {
			return rule.Rule{}, err
		}
		name := spec.Name
		if name == "" {
			name = "expr"
		}
		return rule.FromExpr(name, spec.Expr, onFalse)
	default:
		return rule.Rule{}, errors.New("rule spec requires use or expr")
	}
}

func parseOnFalse(s string) (outcome.Outcome, error) {
	switch s {
	case "", "neutral":
		return outcome.Neutral, nil
	case "rejected":
		return outcome.Rejected, nil
	case "blocked":
		return outcome.Blocked, nil
	default:
		return outcome.Neutral, fmt.Errorf("invalid on_false %q: must be neutral, rejected, or blocked", s)
	}
}
