// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package schema

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/api2spec/apidesc/pkg/handler"
	"github.com/api2spec/apidesc/pkg/types"
)

// Resolver turns schema declarations into descriptor schemas.
//
// A named reference becomes a "#/definitions/<name>" reference, an inline document is
// checked to be a well-formed JSON Schema, and a Go value is converted with the
// GoSchemaGenerator. Inline and generated schemas declaring an id are registered in
// the description definitions and replaced by a reference.
type Resolver struct {
	generator *GoSchemaGenerator
}

// NewResolver creates a new schema resolver.
func NewResolver() *Resolver {
	return &Resolver{generator: NewGoSchemaGenerator()}
}

// Resolve implements describe.SchemaResolver.
func (r *Resolver) Resolve(decl handler.Schema, owner handler.Type, root *types.APIDescription) (*types.Schema, error) {
	var (
		s   *types.Schema
		err error
	)

	switch {
	case decl.Ref != "":
		return reference(decl.Ref), nil
	case decl.Inline != nil:
		if err := ValidateDocument(decl.Inline); err != nil {
			return nil, fmt.Errorf("inline schema of %s: %w", owner.Name(), err)
		}
		s = types.InlineSchema(decl.Inline)
	case decl.Value != nil:
		if s, err = r.generate(decl.Value, root); err != nil {
			return nil, err
		}
	default:
		return nil, nil
	}

	if decl.ID == "" {
		return s, nil
	}
	if err := root.Definitions.AddDefinition(decl.ID, s); err != nil {
		return nil, err
	}
	return types.SchemaRef(decl.ID), nil
}

func reference(ref string) *types.Schema {
	if strings.ContainsAny(ref, "#:") {
		return &types.Schema{Reference: types.NewReference(ref)}
	}
	return types.SchemaRef(ref)
}

func (r *Resolver) generate(v any, root *types.APIDescription) (*types.Schema, error) {
	gen, err := r.generator.Generate(v)
	if err != nil {
		return nil, err
	}
	for name, doc := range gen.Definitions {
		if err := root.Definitions.AddDefinition(name, types.InlineSchema(doc)); err != nil {
			return nil, err
		}
	}
	if ref, ok := gen.Schema["$ref"].(string); ok && len(gen.Schema) == 1 {
		return &types.Schema{Reference: types.NewReference(ref)}, nil
	}
	return types.InlineSchema(gen.Schema), nil
}

// ValidateDocument checks that doc is a well-formed JSON Schema. Nested
// references are not followed; they are checked against the description.
func ValidateDocument(doc map[string]any) error {
	data, err := json.Marshal(withoutRefs(doc))
	if err != nil {
		return fmt.Errorf("encoding schema: %w", err)
	}

	var s openapi3.Schema
	if err := s.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("decoding schema: %w", err)
	}
	if err := s.Validate(context.Background()); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}
	return nil
}

// withoutRefs returns a copy of node where every reference object is replaced by an empty schema.
func withoutRefs(node any) any {
	switch n := node.(type) {
	case map[string]any:
		if _, ok := n["$ref"]; ok {
			return map[string]any{}
		}
		out := make(map[string]any, len(n))
		for k, v := range n {
			out[k] = withoutRefs(v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = withoutRefs(v)
		}
		return out
	default:
		return node
	}
}
