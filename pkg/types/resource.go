// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package types provides the API descriptor model: resources, their operations,
// and the root description that holds shared services, definitions and errors.
package types

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

// Resource describes the operations supported by one addressable endpoint.
//
// A Resource is either a reference to a resource described elsewhere in the
// description (usually in the services registry) or a full description, never both.
// Resources are created with a ResourceBuilder and are immutable; values returned
// by the accessors must not be modified.
type Resource struct {
	reference      *Reference
	resourceSchema *Schema
	title          string
	description    string
	create         *Create
	read           *Read
	update         *Update
	delete         *Delete
	patch          *Patch
	actions        []Action
	queries        []Query
	subresources   SubResources
	items          *Items
	mvccSupported  *bool
	parameters     []Parameter
}

// SubResources maps a path relative to the parent resource to the sub-resource mounted there.
type SubResources map[string]*Resource

// Items describes the members of a collection resource.
type Items struct {
	// PathParameter is the parameter identifying a member (e.g., "{id}")
	PathParameter *Parameter `json:"pathParameter,omitempty" yaml:"pathParameter,omitempty"`

	// Resource describes the operations of a collection member
	Resource *Resource `json:"resource" yaml:"resource"`
}

// Reference returns the reference of a reference resource, or nil.
func (r *Resource) Reference() *Reference { return r.reference }

// IsReference reports whether the resource only points to a resource described elsewhere.
func (r *Resource) IsReference() bool { return r.reference != nil }

// ResourceSchema returns the schema of the resource body.
func (r *Resource) ResourceSchema() *Schema { return r.resourceSchema }

// Title returns the resource title.
func (r *Resource) Title() string { return r.title }

// Description returns the resource description.
func (r *Resource) Description() string { return r.description }

// Create returns the create operation, if supported.
func (r *Resource) Create() *Create { return r.create }

// Read returns the read operation, if supported.
func (r *Resource) Read() *Read { return r.read }

// Update returns the update operation, if supported.
func (r *Resource) Update() *Update { return r.update }

// Delete returns the delete operation, if supported.
func (r *Resource) Delete() *Delete { return r.delete }

// Patch returns the patch operation, if supported.
func (r *Resource) Patch() *Patch { return r.patch }

// Actions returns the actions ordered by name.
func (r *Resource) Actions() []Action { return slices.Clone(r.actions) }

// Queries returns the queries ordered by key.
func (r *Resource) Queries() []Query { return slices.Clone(r.queries) }

// SubResources returns the sub-resources, if any.
func (r *Resource) SubResources() SubResources { return r.subresources }

// Items returns the collection items description, if any.
func (r *Resource) Items() *Items { return r.items }

// MvccSupported returns the MVCC flag and whether it was set.
func (r *Resource) MvccSupported() (supported bool, ok bool) {
	if r.mvccSupported == nil {
		return false, false
	}
	return *r.mvccSupported, true
}

// Parameters returns the extra parameters in declaration order.
func (r *Resource) Parameters() []Parameter { return slices.Clone(r.parameters) }

// HasOperations reports whether any create, read, update, delete, patch, action or query is present.
func (r *Resource) HasOperations() bool {
	return r.create != nil || r.read != nil || r.update != nil || r.delete != nil || r.patch != nil ||
		len(r.actions) > 0 || len(r.queries) > 0
}

// Equal reports whether both resources are structurally identical.
func (r *Resource) Equal(other *Resource) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.reference.Equal(other.reference) &&
		r.resourceSchema.Equal(other.resourceSchema) &&
		r.title == other.title &&
		r.description == other.description &&
		cmp.Equal(r.create, other.create) &&
		cmp.Equal(r.read, other.read) &&
		cmp.Equal(r.update, other.update) &&
		cmp.Equal(r.delete, other.delete) &&
		cmp.Equal(r.patch, other.patch) &&
		cmp.Equal(r.actions, other.actions) &&
		cmp.Equal(r.queries, other.queries) &&
		cmp.Equal(r.subresources, other.subresources) &&
		cmp.Equal(r.items, other.items) &&
		cmp.Equal(r.mvccSupported, other.mvccSupported) &&
		cmp.Equal(r.parameters, other.parameters)
}

// resourceWire is the serialized form of a Resource. Absent fields and empty
// actions, queries and parameters are omitted.
type resourceWire struct {
	Ref            string       `json:"$ref,omitempty" yaml:"$ref,omitempty"`
	ResourceSchema *Schema      `json:"resourceSchema,omitempty" yaml:"resourceSchema,omitempty"`
	Title          string       `json:"title,omitempty" yaml:"title,omitempty"`
	Description    string       `json:"description,omitempty" yaml:"description,omitempty"`
	Create         *Create      `json:"create,omitempty" yaml:"create,omitempty"`
	Read           *Read        `json:"read,omitempty" yaml:"read,omitempty"`
	Update         *Update      `json:"update,omitempty" yaml:"update,omitempty"`
	Delete         *Delete      `json:"delete,omitempty" yaml:"delete,omitempty"`
	Patch          *Patch       `json:"patch,omitempty" yaml:"patch,omitempty"`
	Actions        []Action     `json:"actions,omitempty" yaml:"actions,omitempty"`
	Queries        []Query      `json:"queries,omitempty" yaml:"queries,omitempty"`
	SubResources   SubResources `json:"subresources,omitempty" yaml:"subresources,omitempty"`
	Items          *Items       `json:"items,omitempty" yaml:"items,omitempty"`
	MvccSupported  *bool        `json:"mvccSupported,omitempty" yaml:"mvccSupported,omitempty"`
	Parameters     []Parameter  `json:"parameters,omitempty" yaml:"parameters,omitempty"`
}

func (r *Resource) wire() resourceWire {
	return resourceWire{
		Ref:            r.reference.String(),
		ResourceSchema: r.resourceSchema,
		Title:          r.title,
		Description:    r.description,
		Create:         r.create,
		Read:           r.read,
		Update:         r.update,
		Delete:         r.delete,
		Patch:          r.patch,
		Actions:        r.actions,
		Queries:        r.queries,
		SubResources:   r.subresources,
		Items:          r.items,
		MvccSupported:  r.mvccSupported,
		Parameters:     r.parameters,
	}
}

// fromWire rebuilds a resource through a ResourceBuilder so decoded documents
// are held to the same invariants as built ones.
func (r *Resource) fromWire(w resourceWire) error {
	b := NewResource().
		ResourceSchema(w.ResourceSchema).
		Title(w.Title).
		Description(w.Description).
		Create(w.Create).
		Read(w.Read).
		Update(w.Update).
		Delete(w.Delete).
		Patch(w.Patch).
		Actions(w.Actions...).
		Queries(w.Queries...).
		SubResources(w.SubResources).
		Items(w.Items).
		Parameters(w.Parameters...)
	if w.Ref != "" {
		b.Reference(NewReference(w.Ref))
	}
	if w.MvccSupported != nil {
		b.MvccSupported(*w.MvccSupported)
	}

	built, err := b.Build()
	if err != nil {
		return err
	}
	if built == nil {
		return errors.New("empty resource description")
	}
	*r = *built
	return nil
}

// MarshalJSON implements json.Marshaler.
func (r *Resource) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Resource) UnmarshalJSON(data []byte) error {
	var w resourceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	return r.fromWire(w)
}

// MarshalYAML implements yaml.Marshaler.
func (r *Resource) MarshalYAML() (interface{}, error) {
	return r.wire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (r *Resource) UnmarshalYAML(value *yaml.Node) error {
	var w resourceWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	return r.fromWire(w)
}
