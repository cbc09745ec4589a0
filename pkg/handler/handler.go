// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package handler defines the metadata a request-handler type exposes to the
// describer: the handler marker and the operations declared on its members.
package handler

import (
	"github.com/api2spec/apidesc/pkg/types"
)

// Type is a request-handler type whose declarations can be described.
type Type interface {
	// Name returns the type name (e.g., "Users").
	Name() string

	// Handler returns the handler marker, or false when the type is not a handler.
	Handler() (*Handler, bool)

	// Members returns the declared members in declaration order.
	Members() []Member
}

// Handler is the marker that makes a type a request handler.
type Handler struct {
	// ID registers the described resource as a shared service when set
	ID string `yaml:"id,omitempty" validate:"omitempty,excludesall=/#"`

	// Title is the resource title
	Title string `yaml:"title,omitempty"`

	// Description is the resource description
	Description string `yaml:"description,omitempty"`

	// MvccSupported declares multi-version concurrency control support
	MvccSupported bool `yaml:"mvccSupported,omitempty"`

	// Schema is the resource body schema
	Schema Schema `yaml:"schema,omitempty"`

	// Parameters are extra parameters of every operation of the handler
	Parameters []types.Parameter `yaml:"parameters,omitempty"`
}

// Schema declares a data shape in one of three forms.
type Schema struct {
	// Ref names a definition ("user") or is a full reference ("#/definitions/user")
	Ref string `yaml:"ref,omitempty" validate:"excluded_with=Inline"`

	// Inline is a JSON Schema document
	Inline map[string]any `yaml:"inline,omitempty"`

	// Value is a Go value the schema is generated from
	Value any `yaml:"-" validate:"-"`

	// ID registers an inline or generated schema as a named definition
	ID string `yaml:"id,omitempty" validate:"omitempty,excludesall=/#"`
}

// IsZero reports whether no schema is declared.
func (s Schema) IsZero() bool {
	return s.Ref == "" && s.Inline == nil && s.Value == nil
}

// Operation holds the declaration fields shared by every operation kind.
type Operation struct {
	Description string            `yaml:"description,omitempty"`
	Locales     []string          `yaml:"locales,omitempty"`
	Errors      []Error           `yaml:"errors,omitempty" validate:"dive"`
	Parameters  []types.Parameter `yaml:"parameters,omitempty"`
	Stability   types.Stability   `yaml:"stability,omitempty" validate:"omitempty,oneof=INTERNAL STABLE EVOLVING DEPRECATED REMOVED"`
}

// Error declares an error an operation may return: either a named error
// (a common error such as "notFound", or a full reference) or an inline one.
type Error struct {
	Name        string `yaml:"name,omitempty" validate:"required_without=Code"`
	Code        int    `yaml:"code,omitempty" validate:"omitempty,min=100,max=599"`
	Description string `yaml:"description,omitempty"`
	Detail      Schema `yaml:"detail,omitempty"`
}

// Create declares a create operation.
type Create struct {
	Operation `yaml:",inline"`
	Mode      types.CreateMode `yaml:"mode,omitempty" validate:"omitempty,oneof=ID_FROM_CLIENT ID_FROM_SERVER"`
	Singleton bool             `yaml:"singleton,omitempty"`
}

// Read declares a read operation.
type Read struct {
	Operation `yaml:",inline"`
}

// Update declares an update operation.
type Update struct {
	Operation `yaml:",inline"`
}

// Delete declares a delete operation.
type Delete struct {
	Operation `yaml:",inline"`
}

// Patch declares a patch operation.
type Patch struct {
	Operation  `yaml:",inline"`
	Operations []types.PatchOperation `yaml:"operations" validate:"required,min=1,dive,oneof=add remove replace increment copy move transform"`
}

// Action declares a named action.
type Action struct {
	Operation `yaml:",inline"`
	Name      string `yaml:"name" validate:"required"`
	Request   Schema `yaml:"request,omitempty"`
	Response  Schema `yaml:"response,omitempty"`
}

// Query declares a query.
type Query struct {
	Operation       `yaml:",inline"`
	Type            types.QueryType     `yaml:"type" validate:"required,oneof=FILTER ID EXPRESSION"`
	QueryID         string              `yaml:"queryId,omitempty" validate:"required_if=Type ID"`
	PagingModes     []types.PagingMode  `yaml:"pagingModes,omitempty" validate:"dive,oneof=COOKIE OFFSET"`
	CountPolicies   []types.CountPolicy `yaml:"countPolicies,omitempty" validate:"dive,oneof=ESTIMATE EXACT NONE"`
	QueryableFields []string            `yaml:"queryableFields,omitempty"`
	SortKeys        []string            `yaml:"sortKeys,omitempty"`
}

// Member is a declared member of a handler type with the operations it carries.
type Member struct {
	// Name is the member name, used in diagnostics
	Name string `yaml:"name" validate:"required"`

	// Instance is set when the member takes the resource id (instance scope)
	Instance bool `yaml:"instance,omitempty"`

	Create  *Create  `yaml:"create,omitempty"`
	Read    *Read    `yaml:"read,omitempty"`
	Update  *Update  `yaml:"update,omitempty"`
	Delete  *Delete  `yaml:"delete,omitempty"`
	Patch   *Patch   `yaml:"patch,omitempty"`
	Action  *Action  `yaml:"action,omitempty"`
	Actions []Action `yaml:"actions,omitempty" validate:"dive"`
	Query   *Query   `yaml:"query,omitempty"`
	Queries []Query  `yaml:"queries,omitempty" validate:"dive"`
}

// Static is a handler type described by a table.
type Static struct {
	TypeName string
	Marker   *Handler
	Declared []Member
}

// NewStatic creates a handler type. A nil marker makes a type that is not a handler.
func NewStatic(name string, marker *Handler, members ...Member) *Static {
	return &Static{
		TypeName: name,
		Marker:   marker,
		Declared: members,
	}
}

// Name implements Type.
func (s *Static) Name() string {
	return s.TypeName
}

// Handler implements Type.
func (s *Static) Handler() (*Handler, bool) {
	return s.Marker, s.Marker != nil
}

// Members implements Type.
func (s *Static) Members() []Member {
	return s.Declared
}
