// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

import (
	"errors"
	"maps"
	"slices"
)

// ResourceBuilder accumulates the attributes of a Resource.
//
// A builder is single use: once Build has been called, every further call records
// a *StateError (wrapping ErrAlreadyBuilt) that is reported by Err and by any
// subsequent Build.
type ResourceBuilder struct {
	reference      *Reference
	resourceSchema *Schema
	title          string
	description    string
	create         *Create
	read           *Read
	update         *Update
	delete         *Delete
	patch          *Patch
	actions        ActionSet
	queries        QuerySet
	subresources   SubResources
	items          *Items
	mvccSupported  *bool
	parameters     []Parameter

	built bool
	errs  []error
}

// NewResource returns an empty builder.
func NewResource() *ResourceBuilder {
	return &ResourceBuilder{}
}

// spent records a state error and reports true when the builder was already consumed.
func (b *ResourceBuilder) spent(call string) bool {
	if !b.built {
		return false
	}
	b.errs = append(b.errs, &StateError{Call: call})
	return true
}

// Reference makes the resource a reference to a resource described elsewhere.
func (b *ResourceBuilder) Reference(ref *Reference) *ResourceBuilder {
	if !b.spent("Reference") {
		b.reference = ref
	}
	return b
}

// ResourceSchema sets the schema of the resource body.
func (b *ResourceBuilder) ResourceSchema(s *Schema) *ResourceBuilder {
	if !b.spent("ResourceSchema") {
		b.resourceSchema = s
	}
	return b
}

// Title sets the resource title.
func (b *ResourceBuilder) Title(title string) *ResourceBuilder {
	if !b.spent("Title") {
		b.title = title
	}
	return b
}

// Description sets the resource description.
func (b *ResourceBuilder) Description(description string) *ResourceBuilder {
	if !b.spent("Description") {
		b.description = description
	}
	return b
}

// Create sets the create operation.
func (b *ResourceBuilder) Create(c *Create) *ResourceBuilder {
	if !b.spent("Create") {
		b.create = c
	}
	return b
}

// Read sets the read operation.
func (b *ResourceBuilder) Read(r *Read) *ResourceBuilder {
	if !b.spent("Read") {
		b.read = r
	}
	return b
}

// Update sets the update operation.
func (b *ResourceBuilder) Update(u *Update) *ResourceBuilder {
	if !b.spent("Update") {
		b.update = u
	}
	return b
}

// Delete sets the delete operation.
func (b *ResourceBuilder) Delete(d *Delete) *ResourceBuilder {
	if !b.spent("Delete") {
		b.delete = d
	}
	return b
}

// Patch sets the patch operation.
func (b *ResourceBuilder) Patch(p *Patch) *ResourceBuilder {
	if !b.spent("Patch") {
		b.patch = p
	}
	return b
}

// Action adds an action. An action whose name is already present is ignored.
func (b *ResourceBuilder) Action(a Action) *ResourceBuilder {
	if !b.spent("Action") {
		b.actions.Add(a)
	}
	return b
}

// Actions adds several actions.
func (b *ResourceBuilder) Actions(actions ...Action) *ResourceBuilder {
	if !b.spent("Actions") {
		for _, a := range actions {
			b.actions.Add(a)
		}
	}
	return b
}

// Query adds a query. A query whose key is already present is ignored.
func (b *ResourceBuilder) Query(q Query) *ResourceBuilder {
	if !b.spent("Query") {
		b.queries.Add(q)
	}
	return b
}

// Queries adds several queries.
func (b *ResourceBuilder) Queries(queries ...Query) *ResourceBuilder {
	if !b.spent("Queries") {
		for _, q := range queries {
			b.queries.Add(q)
		}
	}
	return b
}

// SubResources sets the sub-resources.
func (b *ResourceBuilder) SubResources(sub SubResources) *ResourceBuilder {
	if !b.spent("SubResources") {
		b.subresources = sub
	}
	return b
}

// Items sets the collection items description.
func (b *ResourceBuilder) Items(items *Items) *ResourceBuilder {
	if !b.spent("Items") {
		b.items = items
	}
	return b
}

// MvccSupported sets whether the resource supports multi-version concurrency control.
func (b *ResourceBuilder) MvccSupported(supported bool) *ResourceBuilder {
	if !b.spent("MvccSupported") {
		b.mvccSupported = &supported
	}
	return b
}

// Parameter appends an extra parameter.
func (b *ResourceBuilder) Parameter(p Parameter) *ResourceBuilder {
	if !b.spent("Parameter") {
		b.parameters = append(b.parameters, p)
	}
	return b
}

// Parameters appends extra parameters in order.
func (b *ResourceBuilder) Parameters(params ...Parameter) *ResourceBuilder {
	if !b.spent("Parameters") {
		b.parameters = append(b.parameters, params...)
	}
	return b
}

// Operations places each operation on its slot.
func (b *ResourceBuilder) Operations(ops ...Allocator) *ResourceBuilder {
	if b.spent("Operations") {
		return b
	}
	for _, op := range ops {
		if op != nil {
			op.Allocate(b)
		}
	}
	return b
}

// Err returns the state errors recorded so far, joined, or nil.
func (b *ResourceBuilder) Err() error {
	return errors.Join(b.errs...)
}

func (b *ResourceBuilder) empty() bool {
	return b.reference == nil &&
		b.create == nil && b.read == nil && b.update == nil && b.delete == nil && b.patch == nil &&
		b.actions.Len() == 0 && b.queries.Len() == 0 &&
		b.items == nil && len(b.subresources) == 0
}

func (b *ResourceBuilder) hasOperations() bool {
	return b.create != nil || b.read != nil || b.update != nil || b.delete != nil || b.patch != nil ||
		b.actions.Len() > 0 || b.queries.Len() > 0
}

// Build consumes the builder and returns the resource.
//
// Build returns (nil, nil) when nothing worth describing was accumulated. A
// reference carrying operations and a description without the MVCC flag are
// rejected with a *ValidationError.
func (b *ResourceBuilder) Build() (*Resource, error) {
	if b.spent("Build") {
		return nil, b.Err()
	}
	b.built = true

	if b.empty() {
		return nil, nil
	}
	if b.reference != nil && b.hasOperations() {
		return nil, NewValidationError(ErrReferenceWithOperations, "reference %q also declares operations", b.reference.Value)
	}
	if b.reference == nil && b.mvccSupported == nil {
		return nil, NewValidationError(ErrMvccRequired, "resource %q does not declare mvcc support", b.title)
	}

	r := &Resource{
		reference:      b.reference,
		resourceSchema: b.resourceSchema,
		title:          b.title,
		description:    b.description,
		create:         b.create,
		read:           b.read,
		update:         b.update,
		delete:         b.delete,
		patch:          b.patch,
		actions:        b.actions.Values(),
		queries:        b.queries.Values(),
		items:          b.items,
		mvccSupported:  b.mvccSupported,
		parameters:     slices.Clone(b.parameters),
	}
	if len(b.subresources) > 0 {
		r.subresources = maps.Clone(b.subresources)
	}
	return r, nil
}
