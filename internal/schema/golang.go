// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package schema resolves schema declarations into descriptor schemas.
package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
)

const componentsPrefix = "#/components/schemas/"

// GoSchemaGenerator converts Go values to JSON Schemas.
//
// Struct fields are named after their json (or yaml) tag, and go-playground
// "validate" tags are carried over as schema constraints.
type GoSchemaGenerator struct {
	opts []openapi3gen.Option
}

// NewGoSchemaGenerator creates a new Go schema generator.
func NewGoSchemaGenerator() *GoSchemaGenerator {
	return &GoSchemaGenerator{
		opts: []openapi3gen.Option{
			openapi3gen.UseAllExportedFields(),
			openapi3gen.SchemaCustomizer(customize),
		},
	}
}

// Generated is the result of converting a Go value.
type Generated struct {
	// Schema is the schema of the value itself
	Schema map[string]any

	// Definitions holds the named schemas the value refers to (recursive types)
	Definitions map[string]map[string]any
}

// Generate converts the type of v to a JSON Schema. References between
// recursive types point to "#/definitions/<TypeName>".
func (g *GoSchemaGenerator) Generate(v any) (*Generated, error) {
	if v == nil {
		return nil, fmt.Errorf("cannot generate a schema for nil")
	}

	components := openapi3.Schemas{}
	ref, err := openapi3gen.NewSchemaRefForValue(v, components, g.opts...)
	if err != nil {
		return nil, fmt.Errorf("generating schema for %T: %w", v, err)
	}

	out := &Generated{Definitions: make(map[string]map[string]any, len(components))}
	if ref.Ref != "" {
		out.Schema = map[string]any{"$ref": rewriteRef(ref.Ref)}
	} else {
		if out.Schema, err = toDocument(ref.Value); err != nil {
			return nil, err
		}
	}
	for name, component := range components {
		doc, err := toDocument(component.Value)
		if err != nil {
			return nil, err
		}
		out.Definitions[name] = doc
	}
	return out, nil
}

// toDocument converts a kin-openapi schema into a plain JSON document.
func toDocument(s *openapi3.Schema) (map[string]any, error) {
	if s == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	rewriteRefs(doc)
	return doc, nil
}

func rewriteRef(ref string) string {
	if strings.HasPrefix(ref, componentsPrefix) {
		return definitionsPrefix + strings.TrimPrefix(ref, componentsPrefix)
	}
	return ref
}

// rewriteRefs points component references at description definitions, in place.
func rewriteRefs(node any) {
	switch n := node.(type) {
	case map[string]any:
		for k, v := range n {
			if ref, ok := v.(string); ok && k == "$ref" {
				n[k] = rewriteRef(ref)
				continue
			}
			rewriteRefs(v)
		}
	case []any:
		for _, v := range n {
			rewriteRefs(v)
		}
	}
}

// customize applies validation tags of a field and the required fields of a struct.
func customize(_ string, t reflect.Type, tag reflect.StructTag, schema *openapi3.Schema) error {
	if v, ok := tag.Lookup("validate"); ok {
		applyValidationTags(schema, v)
	}
	if t.Kind() == reflect.Struct {
		schema.Required = requiredFields(t, schema)
	}
	return nil
}

// requiredFields lists the properties whose field carries a "required" validate tag.
func requiredFields(t reflect.Type, schema *openapi3.Schema) []string {
	var required []string
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		rules, ok := field.Tag.Lookup("validate")
		if !ok || !hasRule(rules, "required") {
			continue
		}
		name := fieldName(field)
		if _, ok := schema.Properties[name]; ok {
			required = append(required, name)
		}
	}
	return required
}

func fieldName(field reflect.StructField) string {
	for _, key := range []string{"json", "yaml"} {
		if tag, ok := field.Tag.Lookup(key); ok {
			if name, _, _ := strings.Cut(tag, ","); name != "" && name != "-" {
				return name
			}
		}
	}
	return field.Name
}

func hasRule(rules, rule string) bool {
	for _, r := range strings.Split(rules, ",") {
		if r == "dive" {
			return false
		}
		if r == rule {
			return true
		}
	}
	return false
}

// applyValidationTags applies validation constraints to a schema. Rules after
// "dive" apply to elements and are skipped.
func applyValidationTags(schema *openapi3.Schema, rules string) {
	for _, rule := range strings.Split(rules, ",") {
		key, value, _ := strings.Cut(rule, "=")
		switch key {
		case "dive":
			return
		case "min", "gte":
			applyMin(schema, value)
		case "max", "lte":
			applyMax(schema, value)
		case "len":
			applyLen(schema, value)
		case "email":
			schema.Format = "email"
		case "url", "uri":
			schema.Format = "uri"
		case "uuid", "uuid4":
			schema.Format = "uuid"
		case "datetime":
			schema.Format = "date-time"
		case "ip", "ipv4":
			schema.Format = "ipv4"
		case "ipv6":
			schema.Format = "ipv6"
		case "hostname":
			schema.Format = "hostname"
		case "alphanum":
			schema.Pattern = "^[a-zA-Z0-9]+$"
		case "alpha":
			schema.Pattern = "^[a-zA-Z]+$"
		case "numeric":
			schema.Pattern = "^[0-9]+$"
		case "oneof":
			applyOneOf(schema, value)
		}
	}
}

// applyMin applies minimum constraint based on type.
func applyMin(schema *openapi3.Schema, value string) {
	switch {
	case schema.Type.Is("string"):
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			schema.MinLength = v
		}
	case schema.Type.Is("integer"), schema.Type.Is("number"):
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			schema.Min = &v
		}
	case schema.Type.Is("array"):
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			schema.MinItems = v
		}
	}
}

// applyMax applies maximum constraint based on type.
func applyMax(schema *openapi3.Schema, value string) {
	switch {
	case schema.Type.Is("string"):
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			schema.MaxLength = &v
		}
	case schema.Type.Is("integer"), schema.Type.Is("number"):
		if v, err := strconv.ParseFloat(value, 64); err == nil {
			schema.Max = &v
		}
	case schema.Type.Is("array"):
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			schema.MaxItems = &v
		}
	}
}

// applyLen applies exact length constraint.
func applyLen(schema *openapi3.Schema, value string) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return
	}
	switch {
	case schema.Type.Is("string"):
		schema.MinLength = v
		schema.MaxLength = &v
	case schema.Type.Is("array"):
		schema.MinItems = v
		schema.MaxItems = &v
	}
}

// applyOneOf applies enum constraint.
func applyOneOf(schema *openapi3.Schema, value string) {
	// oneof=value1 value2 value3
	parts := strings.Fields(value)
	if len(parts) > 0 {
		schema.Enum = make([]any, len(parts))
		for i, p := range parts {
			schema.Enum[i] = p
		}
	}
}
