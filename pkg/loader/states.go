package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/diister-dev/quick-permission/pkg/validate"
)

// StatesDocument is the YAML form of the state sources passed to the
// validator. Each source is one provenance of grants; its states map
// permission paths to one state object or a list of objects.
type StatesDocument struct {
	Sources []SourceDef `yaml:"sources" json:"sources"`
}

// SourceDef is one named state source.
type SourceDef struct {
	Name   string         `yaml:"name,omitempty" json:"name,omitempty"`
	States map[string]any `yaml:"states" json:"states"`
}

// LoadStatesFile reads a states document from path.
func LoadStatesFile(path string) ([]validate.Source, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open states document: %w", err)
	}
	defer f.Close()
	return LoadStates(f)
}

// LoadStates strictly decodes a states document and returns the sources
// in declaration order, plus their names for reporting.
func LoadStates(r io.Reader) ([]validate.Source, []string, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc StatesDocument
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode states document: %w", err)
	}
	if len(doc.Sources) == 0 {
		return nil, nil, errors.New("states document declares no sources")
	}

	sources := make([]validate.Source, len(doc.Sources))
	names := make([]string, len(doc.Sources))
	for i, def := range doc.Sources {
		sources[i] = validate.Source(def.States)
		if def.Name != "" {
			names[i] = def.Name
		} else {
			names[i] = fmt.Sprintf("source-%d", i)
		}
	}
	return sources, names, nil
}
