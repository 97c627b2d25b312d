package features

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var ErrInvalidRecord = errors.New("record does not match schema")

// JSONSchema describes a record of s as a JSON Schema document.
func (s *Schema) JSONSchema() map[string]any {
	props := make(map[string]any, len(s.columns))
	for _, col := range s.columns {
		switch col.Kind {
		case Numeric:
			props[col.Name] = map[string]any{"type": "number"}
		case Categorical:
			enum := append([]string{UnknownCategory}, col.Categories...)
			props[col.Name] = map[string]any{"type": "string", "enum": enum}
		}
	}
	return map[string]any{
		"$schema":              "https://json-schema.org/draft/2020-12/schema",
		"title":                "feature record " + s.version,
		"type":                 "object",
		"properties":           props,
		"required":             s.Names(),
		"additionalProperties": false,
	}
}

// Validator checks records against the schema's JSON Schema.
type Validator struct {
	schema   *Schema
	compiled *jsonschema.Schema
}

// NewValidator compiles the JSON Schema of s.
func NewValidator(s *Schema) (*Validator, error) {
	b, err := json.Marshal(s.JSONSchema())
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}
	url := "record-" + s.version + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: s, compiled: compiled}, nil
}

// Validate checks that rec carries exactly the schema's columns, in order,
// with values of the right type.
func (v *Validator) Validate(rec Record) error {
	if rec.schema != v.schema {
		return fmt.Errorf("%w: record built from a different schema", ErrInvalidRecord)
	}
	if !slices.Equal(rec.Names(), v.schema.Names()) || rec.Len() != v.schema.Len() {
		return fmt.Errorf("%w: column layout differs", ErrInvalidRecord)
	}
	data, err := rec.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("unmarshal record: %w", err)
	}
	if err := v.compiled.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return nil
}
