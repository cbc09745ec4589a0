// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

import (
	"encoding/json"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// Schema describes the data shape of a resource, request or response.
// Exactly one of Reference and Schema is set.
type Schema struct {
	// Reference points to a named definition (e.g., "#/definitions/user")
	Reference *Reference `json:"-" yaml:"-"`

	// Schema is an inline JSON Schema document
	Schema map[string]any `json:"-" yaml:"-"`
}

// SchemaRef creates a schema that points to a named definition.
func SchemaRef(name string) *Schema {
	return &Schema{Reference: DefinitionReference(name)}
}

// InlineSchema creates a schema from a JSON Schema document.
func InlineSchema(doc map[string]any) *Schema {
	return &Schema{Schema: doc}
}

// IsReference reports whether the schema is a pointer to a definition.
func (s *Schema) IsReference() bool {
	return s != nil && s.Reference != nil
}

// Equal reports whether both schemas describe the same shape.
func (s *Schema) Equal(other *Schema) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.Reference.Equal(other.Reference) && cmp.Equal(s.Schema, other.Schema)
}

// MarshalJSON writes a reference schema as {"$ref": ...} and an inline schema as the document itself.
func (s Schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.wire())
}

// UnmarshalJSON reads either form written by MarshalJSON.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	s.fromWire(doc)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (s Schema) MarshalYAML() (interface{}, error) {
	return s.wire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Schema) UnmarshalYAML(value *yaml.Node) error {
	var doc map[string]any
	if err := value.Decode(&doc); err != nil {
		return err
	}
	s.fromWire(doc)
	return nil
}

func (s Schema) wire() map[string]any {
	if s.Reference != nil {
		return map[string]any{"$ref": s.Reference.Value}
	}
	if s.Schema == nil {
		return map[string]any{}
	}
	return s.Schema
}

func (s *Schema) fromWire(doc map[string]any) {
	if ref, ok := doc["$ref"].(string); ok && len(doc) == 1 {
		s.Reference = NewReference(ref)
		s.Schema = nil
		return
	}
	s.Reference = nil
	s.Schema = doc
}

// ParameterSource is where a parameter is taken from.
type ParameterSource string

const (
	// ParameterSourcePath is a parameter taken from the request path.
	ParameterSourcePath ParameterSource = "PATH"

	// ParameterSourceAdditional is an additional request parameter.
	ParameterSourceAdditional ParameterSource = "ADDITIONAL"
)

// Parameter describes an extra parameter supported by a resource or operation.
type Parameter struct {
	// Name is the parameter name
	Name string `json:"name" yaml:"name"`

	// Type is the primitive type of the parameter (string, integer, boolean, ...)
	Type string `json:"type" yaml:"type"`

	// DefaultValue is the value used when the parameter is absent
	DefaultValue string `json:"defaultValue,omitempty" yaml:"defaultValue,omitempty"`

	// Description is a description of the parameter
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Source is PATH or ADDITIONAL
	Source ParameterSource `json:"source" yaml:"source"`

	// Required indicates if the parameter is required
	Required bool `json:"required,omitempty" yaml:"required,omitempty"`

	// EnumValues lists the allowed values
	EnumValues []string `json:"enumValues,omitempty" yaml:"enumValues,omitempty"`
}

// APIError describes an error an operation may return, or references a shared one.
type APIError struct {
	// Reference points to an error defined elsewhere (e.g., "frapi:common#/errors/notFound")
	Reference *Reference `json:"-" yaml:"-"`

	// Code is the HTTP-like status code
	Code int `json:"code,omitempty" yaml:"code,omitempty"`

	// Description describes when the error is returned
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Schema describes the error detail payload
	Schema *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

type apiErrorWire struct {
	Ref         string  `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	Code        int     `json:"code,omitempty" yaml:"code,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Schema      *Schema `json:"schema,omitempty" yaml:"schema,omitempty"`
}

func (e APIError) wire() apiErrorWire {
	return apiErrorWire{
		Ref:         e.Reference.String(),
		Code:        e.Code,
		Description: e.Description,
		Schema:      e.Schema,
	}
}

func (e *APIError) fromWire(w apiErrorWire) {
	e.Reference = nil
	if w.Ref != "" {
		e.Reference = NewReference(w.Ref)
	}
	e.Code = w.Code
	e.Description = w.Description
	e.Schema = w.Schema
}

// MarshalJSON implements json.Marshaler.
func (e APIError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *APIError) UnmarshalJSON(data []byte) error {
	var w apiErrorWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	e.fromWire(w)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e APIError) MarshalYAML() (interface{}, error) {
	return e.wire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *APIError) UnmarshalYAML(value *yaml.Node) error {
	var w apiErrorWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	e.fromWire(w)
	return nil
}

// Equal reports whether both errors are the same.
func (e APIError) Equal(other APIError) bool {
	return e.Reference.Equal(other.Reference) &&
		e.Code == other.Code &&
		e.Description == other.Description &&
		e.Schema.Equal(other.Schema)
}
