// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResourceBuilder_Build(t *testing.T) {
	r, err := NewResource().
		Title("Users").
		Description("Registered users").
		ResourceSchema(SchemaRef("user")).
		MvccSupported(true).
		Create(&Create{Mode: CreateModeIDFromClient}).
		Read(&Read{}).
		Action(Action{Name: "reset"}).
		Query(Query{Type: QueryTypeFilter}).
		Parameter(Parameter{Name: "tenant", Type: "string", Source: ParameterSourceAdditional}).
		Build()
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.Equal(t, "Users", r.Title())
	assert.Equal(t, "Registered users", r.Description())
	assert.True(t, r.ResourceSchema().IsReference())
	assert.False(t, r.IsReference())
	assert.True(t, r.HasOperations())
	assert.Equal(t, CreateModeIDFromClient, r.Create().Mode)
	assert.NotNil(t, r.Read())
	assert.Nil(t, r.Update())
	assert.Len(t, r.Actions(), 1)
	assert.Len(t, r.Queries(), 1)
	assert.Len(t, r.Parameters(), 1)

	mvcc, ok := r.MvccSupported()
	assert.True(t, ok)
	assert.True(t, mvcc)
}

func TestResourceBuilder_BuildEmpty(t *testing.T) {
	tests := []struct {
		name    string
		builder *ResourceBuilder
	}{
		{"nothing set", NewResource()},
		{"only metadata", NewResource().Title("Users").Description("d").MvccSupported(true)},
		{"only schema", NewResource().ResourceSchema(SchemaRef("user"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.builder.Build()
			assert.NoError(t, err)
			assert.Nil(t, r)
		})
	}
}

func TestResourceBuilder_ReferenceWithOperations(t *testing.T) {
	tests := []struct {
		name    string
		builder *ResourceBuilder
	}{
		{"create", NewResource().Reference(ServiceReference("users")).Create(&Create{})},
		{"read", NewResource().Reference(ServiceReference("users")).Read(&Read{})},
		{"update", NewResource().Reference(ServiceReference("users")).Update(&Update{})},
		{"delete", NewResource().Reference(ServiceReference("users")).Delete(&Delete{})},
		{"patch", NewResource().Reference(ServiceReference("users")).Patch(&Patch{})},
		{"action", NewResource().Reference(ServiceReference("users")).Action(Action{Name: "a"})},
		{"query", NewResource().Reference(ServiceReference("users")).Query(Query{Type: QueryTypeFilter})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tt.builder.Build()
			assert.Nil(t, r)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrReferenceWithOperations)

			var verr *ValidationError
			assert.True(t, errors.As(err, &verr))
		})
	}
}

func TestResourceBuilder_MvccRequired(t *testing.T) {
	r, err := NewResource().ResourceSchema(SchemaRef("user")).Read(&Read{}).Build()
	assert.Nil(t, r)
	assert.ErrorIs(t, err, ErrMvccRequired)
}

func TestResourceBuilder_ReferenceNeedsNoMvcc(t *testing.T) {
	r, err := NewResource().Reference(ServiceReference("users")).Build()
	require.NoError(t, err)
	require.NotNil(t, r)

	assert.True(t, r.IsReference())
	assert.False(t, r.HasOperations())
	_, ok := r.MvccSupported()
	assert.False(t, ok)
}

func TestResourceBuilder_ItemsAndSubResourcesAreContent(t *testing.T) {
	child, err := NewResource().Reference(ServiceReference("child")).Build()
	require.NoError(t, err)

	r, err := NewResource().MvccSupported(false).SubResources(SubResources{"child": child}).Build()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.Len(t, r.SubResources(), 1)

	r, err = NewResource().MvccSupported(false).Items(&Items{Resource: child}).Build()
	require.NoError(t, err)
	require.NotNil(t, r)
	assert.NotNil(t, r.Items())
}

func TestResourceBuilder_UseAfterBuild(t *testing.T) {
	b := NewResource()
	_, err := b.Build()
	require.NoError(t, err)

	calls := []struct {
		name string
		call func()
	}{
		{"Reference", func() { b.Reference(ServiceReference("x")) }},
		{"ResourceSchema", func() { b.ResourceSchema(SchemaRef("x")) }},
		{"Title", func() { b.Title("x") }},
		{"Description", func() { b.Description("x") }},
		{"Create", func() { b.Create(&Create{}) }},
		{"Read", func() { b.Read(&Read{}) }},
		{"Update", func() { b.Update(&Update{}) }},
		{"Delete", func() { b.Delete(&Delete{}) }},
		{"Patch", func() { b.Patch(&Patch{}) }},
		{"Action", func() { b.Action(Action{Name: "x"}) }},
		{"Actions", func() { b.Actions(Action{Name: "x"}) }},
		{"Query", func() { b.Query(Query{Type: QueryTypeFilter}) }},
		{"Queries", func() { b.Queries(Query{Type: QueryTypeFilter}) }},
		{"SubResources", func() { b.SubResources(SubResources{}) }},
		{"Items", func() { b.Items(&Items{}) }},
		{"MvccSupported", func() { b.MvccSupported(true) }},
		{"Parameter", func() { b.Parameter(Parameter{}) }},
		{"Parameters", func() { b.Parameters(Parameter{}) }},
		{"Operations", func() { b.Operations(&Read{}) }},
	}

	for i, c := range calls {
		t.Run(c.name, func(t *testing.T) {
			c.call()

			err := b.Err()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrAlreadyBuilt)
			assert.Contains(t, err.Error(), c.name)
			assert.Len(t, b.errs, i+1)
		})
	}

	r, err := b.Build()
	assert.Nil(t, r)
	require.Error(t, err)

	var serr *StateError
	require.True(t, errors.As(err, &serr))
	assert.ErrorIs(t, err, ErrAlreadyBuilt)
}

func TestResourceBuilder_BuildTwiceAfterFailure(t *testing.T) {
	b := NewResource().Read(&Read{})
	_, err := b.Build()
	require.ErrorIs(t, err, ErrMvccRequired)

	_, err = b.Build()
	assert.ErrorIs(t, err, ErrAlreadyBuilt)
}

func TestResourceBuilder_Operations(t *testing.T) {
	r, err := NewResource().
		MvccSupported(true).
		ResourceSchema(SchemaRef("user")).
		Operations(
			&Create{Mode: CreateModeIDFromServer},
			&Read{},
			&Update{},
			&Delete{},
			&Patch{Operations: []PatchOperation{PatchAdd}},
			Action{Name: "b"},
			Action{Name: "a"},
			Query{Type: QueryTypeFilter},
			nil,
		).
		Build()
	require.NoError(t, err)

	assert.NotNil(t, r.Create())
	assert.NotNil(t, r.Read())
	assert.NotNil(t, r.Update())
	assert.NotNil(t, r.Delete())
	assert.Equal(t, []PatchOperation{PatchAdd}, r.Patch().Operations)
	require.Len(t, r.Actions(), 2)
	assert.Equal(t, "a", r.Actions()[0].Name)
	assert.Equal(t, "b", r.Actions()[1].Name)
	assert.Len(t, r.Queries(), 1)
}

func TestResourceBuilder_DuplicateActionIgnored(t *testing.T) {
	r, err := NewResource().
		MvccSupported(true).
		Action(Action{Name: "reset", Operation: Operation{Description: "first"}}).
		Action(Action{Name: "reset", Operation: Operation{Description: "second"}}).
		Build()
	require.NoError(t, err)

	require.Len(t, r.Actions(), 1)
	assert.Equal(t, "first", r.Actions()[0].Description)
}

func TestResourceBuilder_ParametersKeepOrder(t *testing.T) {
	r, err := NewResource().
		MvccSupported(true).
		Read(&Read{}).
		Parameter(Parameter{Name: "z"}).
		Parameters(Parameter{Name: "a"}, Parameter{Name: "m"}).
		Build()
	require.NoError(t, err)

	params := r.Parameters()
	require.Len(t, params, 3)
	assert.Equal(t, "z", params[0].Name)
	assert.Equal(t, "a", params[1].Name)
	assert.Equal(t, "m", params[2].Name)
}
