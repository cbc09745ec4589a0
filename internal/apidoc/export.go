// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package apidoc

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/samber/lo"
	"github.com/stoewer/go-strcase"

	"github.com/api2spec/apidesc/internal/commons"
	"github.com/api2spec/apidesc/internal/schema"
	"github.com/api2spec/apidesc/pkg/types"
)

// DefaultOpenAPIVersion is the OpenAPI version of exported documents.
const DefaultOpenAPIVersion = "3.0.3"

var pathParamPattern = regexp.MustCompile(`\{([^}/]+)\}`)

// exporter holds the state of one projection.
type exporter struct {
	desc  *types.APIDescription
	doc   *openapi3.T
	ids   map[string]int
	tags  []string
	first error
}

// ToOpenAPI projects desc onto an OpenAPI 3 document.
//
// Create maps to POST, read to GET, update to PUT, delete to DELETE and patch to
// PATCH on the resource path. Actions are POSTed to "<path>/actions/<name>".
// Queries share one GET on the resource path, or on "<path>/queries" when the
// resource also has a read operation. Items live at "<path>/{id}" and
// sub-resources at "<path>/<name>".
func ToOpenAPI(desc *types.APIDescription, version string) (*openapi3.T, error) {
	if version == "" {
		version = DefaultOpenAPIVersion
	}

	e := &exporter{
		desc: desc,
		doc: &openapi3.T{
			OpenAPI: version,
			Info: &openapi3.Info{
				Title:       lo.Ternary(desc.ID != "", desc.ID, "API"),
				Version:     lo.Ternary(desc.Version != "", desc.Version, "0.0.0"),
				Description: desc.Description,
			},
			Paths: openapi3.NewPaths(),
		},
		ids: make(map[string]int),
	}

	if err := e.components(); err != nil {
		return nil, err
	}
	walkDescription(desc, e.resource)
	if e.first != nil {
		return nil, e.first
	}

	for _, name := range lo.Uniq(e.tags) {
		e.doc.Tags = append(e.doc.Tags, &openapi3.Tag{Name: name})
	}
	return e.doc, nil
}

// ValidateOpenAPI resolves the references of doc and validates it.
func ValidateOpenAPI(ctx context.Context, doc *openapi3.T) error {
	data, err := doc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding OpenAPI document: %w", err)
	}
	loaded, err := openapi3.NewLoader().LoadFromData(data)
	if err != nil {
		return fmt.Errorf("loading OpenAPI document: %w", err)
	}
	if err := loaded.Validate(ctx); err != nil {
		return fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return nil
}

func (e *exporter) components() error {
	names := e.desc.Definitions.Names()
	if len(names) == 0 {
		return nil
	}
	components := openapi3.NewComponents()
	components.Schemas = make(openapi3.Schemas, len(names))
	for _, name := range names {
		def, _ := e.desc.Definitions.Get(name)
		ref, err := schema.OpenAPISchema(def)
		if err != nil {
			return fmt.Errorf("definition %s: %w", name, err)
		}
		components.Schemas[name] = ref
	}
	e.doc.Components = &components
	return nil
}

func (e *exporter) resource(path string, r *types.Resource) {
	if e.first != nil {
		return
	}
	if err := e.addResource(path, r); err != nil {
		e.first = fmt.Errorf("exporting %s: %w", path, err)
	}
}

func (e *exporter) addResource(path string, r *types.Resource) error {
	body, err := schema.OpenAPISchema(r.ResourceSchema())
	if err != nil {
		return err
	}
	tag := tagFor(path)
	e.tags = append(e.tags, tag)

	queryPath := path
	if r.Read() != nil {
		queryPath = path + "/queries"
	}

	var queries []types.Query
	for _, nop := range operationsOf(r) {
		if nop.kind == KindQuery {
			queries = append(queries, nop.value.(types.Query))
			continue
		}
		if nop.kind == KindAction {
			if err := e.addAction(nop, path+"/actions/"+nop.name, r, tag); err != nil {
				return err
			}
			continue
		}

		op := e.operation(nop, path, r, tag)
		switch nop.kind {
		case KindCreate:
			op.RequestBody = requestBody(body)
			op.Responses = e.responses(nop.op, http.StatusCreated, body)
			e.doc.AddOperation(path, http.MethodPost, op)
		case KindRead:
			op.Responses = e.responses(nop.op, http.StatusOK, body)
			e.doc.AddOperation(path, http.MethodGet, op)
		case KindUpdate:
			op.RequestBody = requestBody(body)
			op.Responses = e.responses(nop.op, http.StatusOK, body)
			e.doc.AddOperation(path, http.MethodPut, op)
		case KindDelete:
			op.Responses = e.responses(nop.op, http.StatusNoContent, nil)
			e.doc.AddOperation(path, http.MethodDelete, op)
		case KindPatch:
			op.RequestBody = requestBody(body)
			op.Responses = e.responses(nop.op, http.StatusOK, body)
			e.doc.AddOperation(path, http.MethodPatch, op)
		}
	}

	if len(queries) > 0 {
		e.addQueries(queries, queryPath, r, tag, body)
	}
	return nil
}

func (e *exporter) addAction(nop namedOp, actionPath string, r *types.Resource, tag string) error {
	action := nop.value.(types.Action)

	request, err := schema.OpenAPISchema(action.Request)
	if err != nil {
		return fmt.Errorf("action %s request: %w", action.Name, err)
	}
	response, err := schema.OpenAPISchema(action.Response)
	if err != nil {
		return fmt.Errorf("action %s response: %w", action.Name, err)
	}

	op := e.operation(nop, actionPath, r, tag)
	op.RequestBody = requestBody(request)
	op.Responses = e.responses(nop.op, lo.Ternary(response != nil, http.StatusOK, http.StatusNoContent), response)
	e.doc.AddOperation(actionPath, http.MethodPost, op)
	return nil
}

// addQueries merges the queries of a resource into a single list operation.
func (e *exporter) addQueries(queries []types.Query, path string, r *types.Resource, tag string, body *openapi3.SchemaRef) {
	op := openapi3.NewOperation()
	op.Tags = []string{tag}
	op.Summary = r.Title()
	op.OperationID = e.operationID(KindQuery, path)
	op.Parameters = append(pathParameters(path), resourceParameters(r)...)
	op.Extensions = map[string]any{
		"x-apidesc-queries": lo.Map(queries, func(q types.Query, _ int) string { return q.Key() }),
	}

	var (
		errs          []types.APIError
		queryIDs      []string
		pagingModes   []types.PagingMode
		countPolicies []types.CountPolicy
		descriptions  []string
	)
	for _, q := range queries {
		errs = append(errs, q.Errors...)
		op.Parameters = append(op.Parameters, additional(q.Parameters)...)
		pagingModes = append(pagingModes, q.PagingModes...)
		countPolicies = append(countPolicies, q.CountPolicies...)
		if q.Description != "" {
			descriptions = append(descriptions, q.Description)
		}
		if q.Type == types.QueryTypeID {
			queryIDs = append(queryIDs, q.QueryID)
		}
		if q.Stability == types.StabilityDeprecated {
			op.Deprecated = true
		}
	}
	op.Description = strings.Join(descriptions, "\n\n")

	if len(queryIDs) > 0 {
		op.Parameters = append(op.Parameters, queryParameter("query", enumSchema(lo.Uniq(queryIDs))))
	}
	if lo.Contains(pagingModes, types.PagingModeOffset) {
		op.Parameters = append(op.Parameters,
			queryParameter("offset", openapi3.NewIntegerSchema()),
			queryParameter("limit", openapi3.NewIntegerSchema()))
	}
	if lo.Contains(pagingModes, types.PagingModeCookie) {
		op.Parameters = append(op.Parameters, queryParameter("cookie", openapi3.NewStringSchema()))
	}
	if len(countPolicies) > 0 {
		policies := lo.Uniq(lo.Map(countPolicies, func(c types.CountPolicy, _ int) string { return string(c) }))
		op.Parameters = append(op.Parameters, queryParameter("count", enumSchema(policies)))
	}

	op.Parameters = uniqParameters(op.Parameters)

	var list *openapi3.SchemaRef
	if body != nil {
		list = openapi3.NewSchemaRef("", openapi3.NewArraySchema())
		list.Value.Items = body
	}
	op.Responses = e.responses(types.Operation{Errors: errs}, http.StatusOK, list)
	e.doc.AddOperation(path, http.MethodGet, op)
}

// operation fills the fields every projected operation shares.
func (e *exporter) operation(nop namedOp, path string, r *types.Resource, tag string) *openapi3.Operation {
	op := openapi3.NewOperation()
	op.Tags = []string{tag}
	op.Summary = r.Title()
	op.Description = nop.op.Description
	op.OperationID = e.operationID(nop.kind, path)
	op.Deprecated = nop.op.Stability == types.StabilityDeprecated
	op.Parameters = append(pathParameters(path), resourceParameters(r)...)
	op.Parameters = uniqParameters(append(op.Parameters, additional(nop.op.Parameters)...))

	ext := make(map[string]any)
	if nop.op.Stability != "" {
		ext["x-apidesc-stability"] = string(nop.op.Stability)
	}
	if len(nop.op.SupportedLocales) > 0 {
		ext["x-apidesc-locales"] = nop.op.SupportedLocales
	}
	if mvcc, ok := r.MvccSupported(); ok && mvcc {
		ext["x-apidesc-mvcc"] = true
	}
	if len(ext) > 0 {
		op.Extensions = ext
	}
	return op
}

// operationID derives a unique id ("read /users/{id}" -> "readUsersId").
func (e *exporter) operationID(kind, path string) string {
	words := strings.FieldsFunc(kind+" "+path, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	})
	id := strcase.LowerCamelCase(strings.Join(words, "_"))
	e.ids[id]++
	if n := e.ids[id]; n > 1 {
		id += strconv.Itoa(n)
	}
	return id
}

// responses builds the success response and one response per declared error status.
func (e *exporter) responses(op types.Operation, status int, body *openapi3.SchemaRef) *openapi3.Responses {
	success := openapi3.NewResponse().WithDescription(http.StatusText(status))
	if body != nil {
		success.WithJSONSchemaRef(body)
	}
	responses := openapi3.NewResponses(openapi3.WithStatus(status, &openapi3.ResponseRef{Value: success}))

	byCode := make(map[string][]string)
	details := make(map[string]*openapi3.SchemaRef)
	for _, apiErr := range op.Errors {
		code, description, detail := e.resolveError(apiErr)
		key := "default"
		if code != 0 {
			key = strconv.Itoa(code)
		}
		byCode[key] = append(byCode[key], description)
		if detail != nil {
			details[key] = detail
		}
	}

	keys := lo.Keys(byCode)
	sort.Strings(keys)
	for _, key := range keys {
		resp := openapi3.NewResponse().WithDescription(strings.Join(lo.Uniq(byCode[key]), "; "))
		if detail := details[key]; detail != nil {
			resp.WithJSONSchemaRef(detail)
		}
		responses.Set(key, &openapi3.ResponseRef{Value: resp})
	}
	return responses
}

// resolveError returns the status, description and detail schema of an error,
// following references into the description errors and the common errors.
func (e *exporter) resolveError(apiErr types.APIError) (int, string, *openapi3.SchemaRef) {
	if name, ok := apiErr.Reference.ErrorName(); ok {
		if shared, found := e.desc.Errors.Get(name); found {
			apiErr = shared
		}
	}
	if common, ok := commons.Resolve(apiErr.Reference); ok {
		return common.Code(), common.Description(), nil
	}

	description := apiErr.Description
	if description == "" {
		description = lo.Ternary(apiErr.Code != 0, http.StatusText(apiErr.Code), apiErr.Reference.String())
	}
	detail, err := schema.OpenAPISchema(apiErr.Schema)
	if err != nil {
		detail = nil
	}
	return apiErr.Code, description, detail
}

func requestBody(body *openapi3.SchemaRef) *openapi3.RequestBodyRef {
	if body == nil {
		return nil
	}
	return &openapi3.RequestBodyRef{Value: openapi3.NewRequestBody().WithRequired(true).WithJSONSchemaRef(body)}
}

// pathParameters declares the template parameters of path.
func pathParameters(path string) openapi3.Parameters {
	var params openapi3.Parameters
	for _, m := range pathParamPattern.FindAllStringSubmatch(path, -1) {
		params = append(params, &openapi3.ParameterRef{
			Value: openapi3.NewPathParameter(m[1]).WithSchema(openapi3.NewStringSchema()),
		})
	}
	return params
}

// resourceParameters declares the additional parameters of a resource.
func resourceParameters(r *types.Resource) openapi3.Parameters {
	return additional(r.Parameters())
}

// additional converts ADDITIONAL parameters into query parameters. Path
// parameters are declared from the path template.
func additional(params []types.Parameter) openapi3.Parameters {
	var out openapi3.Parameters
	for _, p := range params {
		if p.Source != types.ParameterSourceAdditional {
			continue
		}
		s := primitiveSchema(p.Type)
		if len(p.EnumValues) > 0 {
			s.Enum = lo.Map(p.EnumValues, func(v string, _ int) any { return v })
		}
		if p.DefaultValue != "" {
			s.Default = p.DefaultValue
		}
		param := openapi3.NewQueryParameter(p.Name).
			WithSchema(s).
			WithRequired(p.Required).
			WithDescription(p.Description)
		out = append(out, &openapi3.ParameterRef{Value: param})
	}
	return out
}

// uniqParameters keeps the first declaration of each parameter.
func uniqParameters(params openapi3.Parameters) openapi3.Parameters {
	return lo.UniqBy(params, func(p *openapi3.ParameterRef) string {
		return p.Value.In + ":" + p.Value.Name
	})
}

func queryParameter(name string, s *openapi3.Schema) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: openapi3.NewQueryParameter(name).WithSchema(s)}
}

func enumSchema(values []string) *openapi3.Schema {
	s := openapi3.NewStringSchema()
	s.Enum = lo.Map(values, func(v string, _ int) any { return v })
	return s
}

func primitiveSchema(typ string) *openapi3.Schema {
	switch strings.ToLower(typ) {
	case "integer", "int", "long":
		return openapi3.NewIntegerSchema()
	case "number", "float", "double":
		return openapi3.NewFloat64Schema()
	case "boolean", "bool":
		return openapi3.NewBoolSchema()
	default:
		return openapi3.NewStringSchema()
	}
}

// tagFor returns the first literal segment of path ("/users/{id}/roles" -> "users").
func tagFor(path string) string {
	segment, _, _ := strings.Cut(strings.Trim(path, "/"), "/")
	if segment == "" {
		return "root"
	}
	return segment
}
