package schema

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v6"
)

// FromJSONSchema compiles JSON Schema Draft 2020-12 documents into a
// Schema. stateDoc and requestDoc are decoded schema documents (as
// produced by json/yaml unmarshalling); a nil document means no
// constraint on that side.
func FromJSONSchema(name string, stateDoc, requestDoc any) (Schema, error) {
	s := Schema{Name: name}

	if stateDoc != nil {
		check, err := compileCheck(name, "state", stateDoc)
		if err != nil {
			return Schema{}, err
		}
		s.StateCheck = check
	}
	if requestDoc != nil {
		check, err := compileCheck(name, "request", requestDoc)
		if err != nil {
			return Schema{}, err
		}
		s.RequestCheck = check
	}
	return s, nil
}

// FromType reflects example values into JSON Schema documents and builds
// a Schema from them. A nil example means no constraint on that side.
func FromType(name string, stateExample, requestExample any) (Schema, error) {
	r := new(jsonschema.Reflector)
	r.DoNotReference = true

	var stateDoc, requestDoc any
	if stateExample != nil {
		doc, err := reflectDoc(r, stateExample)
		if err != nil {
			return Schema{}, fmt.Errorf("schema %q: reflect state type: %w", name, err)
		}
		stateDoc = doc
	}
	if requestExample != nil {
		doc, err := reflectDoc(r, requestExample)
		if err != nil {
			return Schema{}, fmt.Errorf("schema %q: reflect request type: %w", name, err)
		}
		requestDoc = doc
	}
	return FromJSONSchema(name, stateDoc, requestDoc)
}

// reflectDoc converts a Go value into a decoded JSON Schema document.
func reflectDoc(r *jsonschema.Reflector, example any) (any, error) {
	s := r.Reflect(example)
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}
	return doc, nil
}

// compileCheck compiles one schema document into a Check. The checked
// object is round-tripped through JSON so that YAML-decoded values (int
// vs float64) validate consistently.
func compileCheck(name, side string, doc any) (Check, error) {
	c := sjsonschema.NewCompiler()
	resource := fmt.Sprintf("%s-%s.json", name, side)
	if err := c.AddResource(resource, doc); err != nil {
		return nil, fmt.Errorf("schema %q: add %s resource: %w", name, side, err)
	}
	sch, err := c.Compile(resource)
	if err != nil {
		return nil, fmt.Errorf("schema %q: compile %s schema: %w", name, side, err)
	}

	return func(v map[string]any) error {
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("schema %q: marshal %s: %w", name, side, err)
		}
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("schema %q: unmarshal %s: %w", name, side, err)
		}
		if err := sch.Validate(doc); err != nil {
			return fmt.Errorf("%s does not satisfy schema %q: %v", side, name, firstCause(err))
		}
		return nil
	}, nil
}

// firstCause digs out the first leaf cause of a jsonschema validation
// error so reasons stay one-line.
func firstCause(err error) error {
	ve, ok := err.(*sjsonschema.ValidationError)
	if !ok {
		return err
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return ve
}
