// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package schema

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/api2spec/apidesc/pkg/types"
)

const definitionsPrefix = "#/definitions/"

// OpenAPISchema converts a descriptor schema into a kin-openapi schema.
// Definition references point at "#/components/schemas/". A reference into
// another document is kept as an opaque object schema carrying the reference
// in its "x-apidesc-ref" extension.
func OpenAPISchema(s *types.Schema) (*openapi3.SchemaRef, error) {
	if s == nil {
		return nil, nil
	}
	if s.IsReference() {
		if name, ok := s.Reference.DefinitionName(); ok {
			return openapi3.NewSchemaRef(componentsPrefix+name, nil), nil
		}
		external := openapi3.NewObjectSchema()
		external.Extensions = map[string]any{"x-apidesc-ref": s.Reference.String()}
		return openapi3.NewSchemaRef("", external), nil
	}

	data, err := json.Marshal(toComponents(s.Schema))
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	var out openapi3.Schema
	if err := out.UnmarshalJSON(data); err != nil {
		return nil, fmt.Errorf("decoding schema: %w", err)
	}
	return openapi3.NewSchemaRef("", &out), nil
}

// toComponents returns a copy of node with definition references pointing at components.
func toComponents(node any) any {
	switch n := node.(type) {
	case map[string]any:
		out := make(map[string]any, len(n))
		for k, v := range n {
			if ref, ok := v.(string); ok && k == "$ref" && strings.HasPrefix(ref, definitionsPrefix) {
				out[k] = componentsPrefix + strings.TrimPrefix(ref, definitionsPrefix)
				continue
			}
			out[k] = toComponents(v)
		}
		return out
	case []any:
		out := make([]any, len(n))
		for i, v := range n {
			out[i] = toComponents(v)
		}
		return out
	default:
		return node
	}
}
