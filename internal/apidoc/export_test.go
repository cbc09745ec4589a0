// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package apidoc

import (
	"context"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/api2spec/apidesc/pkg/types"
)

func TestToOpenAPI(t *testing.T) {
	doc, err := ToOpenAPI(buildUsers(t, Options{}), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultOpenAPIVersion, doc.OpenAPI)
	assert.Equal(t, "example:users", doc.Info.Title)
	assert.Equal(t, "1.0.0", doc.Info.Version)
	require.NotNil(t, doc.Components)
	assert.Contains(t, doc.Components.Schemas, "user")

	users := doc.Paths.Value("/users")
	require.NotNil(t, users)
	require.NotNil(t, users.Post)
	require.NotNil(t, users.Get)
	assert.Equal(t, "createUsers", users.Post.OperationID)
	assert.Equal(t, "queryUsers", users.Get.OperationID)
	assert.Equal(t, []string{"users"}, users.Post.Tags)
	assert.Equal(t, "#/components/schemas/user", users.Post.RequestBody.Value.Content.Get("application/json").Schema.Ref)

	conflict := users.Post.Responses.Status(409)
	require.NotNil(t, conflict)
	assert.Equal(t, "Email address already registered", *conflict.Value.Description)
	assert.NotNil(t, users.Post.Responses.Status(201))
	assert.Equal(t, true, users.Post.Extensions["x-apidesc-mvcc"])

	assert.Equal(t, []string{"FILTER"}, users.Get.Extensions["x-apidesc-queries"])
	names := make([]string, 0, len(users.Get.Parameters))
	for _, p := range users.Get.Parameters {
		names = append(names, p.Value.Name)
	}
	assert.ElementsMatch(t, []string{"offset", "limit"}, names)

	instance := doc.Paths.Value("/users/{id}")
	require.NotNil(t, instance)
	require.NotNil(t, instance.Get)
	require.NotNil(t, instance.Delete)
	require.NotNil(t, instance.Post)
	assert.NotNil(t, instance.Get.Responses.Status(404))
	assert.NotNil(t, instance.Delete.Responses.Status(204))
	require.Len(t, instance.Get.Parameters, 1)
	assert.Equal(t, openapi3.ParameterInPath, instance.Get.Parameters[0].Value.In)
	assert.Equal(t, "id", instance.Get.Parameters[0].Value.Name)

	approve := doc.Paths.Value("/users/{id}/actions/approve")
	require.NotNil(t, approve)
	require.NotNil(t, approve.Post)
	assert.NotNil(t, approve.Post.Responses.Status(204))

	roles := doc.Paths.Value("/users/{id}/roles")
	require.NotNil(t, roles)
	assert.NotNil(t, roles.Get)

	assert.NoError(t, ValidateOpenAPI(context.Background(), doc))
}

func TestToOpenAPI_QueriesBesideRead(t *testing.T) {
	desc := types.NewAPIDescription("", "")
	r, err := types.NewResource().
		ResourceSchema(types.InlineSchema(map[string]any{"type": "object"})).
		MvccSupported(false).
		Read(&types.Read{Operation: types.Operation{Stability: types.StabilityDeprecated}}).
		Query(types.Query{Type: types.QueryTypeID, QueryID: "byName", CountPolicies: []types.CountPolicy{types.CountPolicyExact}}).
		Query(types.Query{Type: types.QueryTypeFilter, PagingModes: []types.PagingMode{types.PagingModeCookie}}).
		Build()
	require.NoError(t, err)
	desc.Paths["/status"] = r

	doc, err := ToOpenAPI(desc, "3.0.0")
	require.NoError(t, err)
	assert.Equal(t, "3.0.0", doc.OpenAPI)
	assert.Equal(t, "API", doc.Info.Title)
	assert.Equal(t, "0.0.0", doc.Info.Version)

	status := doc.Paths.Value("/status")
	require.NotNil(t, status)
	require.NotNil(t, status.Get)
	assert.True(t, status.Get.Deprecated)
	assert.Equal(t, "DEPRECATED", status.Get.Extensions["x-apidesc-stability"])

	queries := doc.Paths.Value("/status/queries")
	require.NotNil(t, queries)
	require.NotNil(t, queries.Get)

	params := make(map[string]*openapi3.Parameter)
	for _, p := range queries.Get.Parameters {
		params[p.Value.Name] = p.Value
	}
	require.Contains(t, params, "query")
	assert.Equal(t, []any{"byName"}, params["query"].Schema.Value.Enum)
	assert.Contains(t, params, "cookie")
	require.Contains(t, params, "count")
	assert.Equal(t, []any{"EXACT"}, params["count"].Schema.Value.Enum)

	assert.NoError(t, ValidateOpenAPI(context.Background(), doc))
}

func TestToOpenAPI_UniqueOperationIDs(t *testing.T) {
	desc := types.NewAPIDescription("x", "1")
	for _, path := range []string{"/a-b", "/a_b"} {
		r, err := types.NewResource().MvccSupported(false).Read(&types.Read{}).Build()
		require.NoError(t, err)
		desc.Paths[path] = r
	}

	doc, err := ToOpenAPI(desc, "")
	require.NoError(t, err)
	assert.Equal(t, "readAB", doc.Paths.Value("/a-b").Get.OperationID)
	assert.Equal(t, "readAB2", doc.Paths.Value("/a_b").Get.OperationID)
	assert.NoError(t, ValidateOpenAPI(context.Background(), doc))
}

func TestTagFor(t *testing.T) {
	assert.Equal(t, "users", tagFor("/users/{id}/roles"))
	assert.Equal(t, "root", tagFor("/"))
}
