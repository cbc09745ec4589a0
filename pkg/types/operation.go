// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

// Stability marks how settled an operation's contract is.
type Stability string

const (
	StabilityInternal   Stability = "INTERNAL"
	StabilityStable     Stability = "STABLE"
	StabilityEvolving   Stability = "EVOLVING"
	StabilityDeprecated Stability = "DEPRECATED"
	StabilityRemoved    Stability = "REMOVED"
)

// CreateMode tells whether the client or the server chooses the new resource's id.
type CreateMode string

const (
	// CreateModeIDFromClient is a create on an instance endpoint (client-chosen id).
	CreateModeIDFromClient CreateMode = "ID_FROM_CLIENT"

	// CreateModeIDFromServer is a create on a collection endpoint (server-assigned id).
	CreateModeIDFromServer CreateMode = "ID_FROM_SERVER"
)

// PatchOperation is a supported patch operation.
type PatchOperation string

const (
	PatchAdd       PatchOperation = "add"
	PatchRemove    PatchOperation = "remove"
	PatchReplace   PatchOperation = "replace"
	PatchIncrement PatchOperation = "increment"
	PatchCopy      PatchOperation = "copy"
	PatchMove      PatchOperation = "move"
	PatchTransform PatchOperation = "transform"
)

// QueryType is the kind of query a resource supports.
type QueryType string

const (
	QueryTypeFilter     QueryType = "FILTER"
	QueryTypeID         QueryType = "ID"
	QueryTypeExpression QueryType = "EXPRESSION"
)

// PagingMode is a supported paging mode for query results.
type PagingMode string

const (
	PagingModeCookie PagingMode = "COOKIE"
	PagingModeOffset PagingMode = "OFFSET"
)

// CountPolicy is a supported result count policy.
type CountPolicy string

const (
	CountPolicyEstimate CountPolicy = "ESTIMATE"
	CountPolicyExact    CountPolicy = "EXACT"
	CountPolicyNone     CountPolicy = "NONE"
)

// Allocator places an operation on its slot of a ResourceBuilder.
type Allocator interface {
	Allocate(b *ResourceBuilder)
}

// Operation holds the metadata common to every operation variant.
type Operation struct {
	// Description is a description of the operation
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// SupportedLocales lists the locales the operation can answer in
	SupportedLocales []string `json:"supportedLocales,omitempty" yaml:"supportedLocales,omitempty"`

	// Errors lists the errors the operation may return
	Errors []APIError `json:"errors,omitempty" yaml:"errors,omitempty"`

	// Parameters lists extra parameters of the operation
	Parameters []Parameter `json:"parameters,omitempty" yaml:"parameters,omitempty"`

	// Stability marks the operation's contract stability
	Stability Stability `json:"stability,omitempty" yaml:"stability,omitempty"`
}

// Create describes a create operation.
type Create struct {
	Operation `yaml:",inline"`

	// Mode tells who picks the new resource id
	Mode CreateMode `json:"mode" yaml:"mode"`

	// Singleton indicates the created resource is a singleton
	Singleton bool `json:"singleton,omitempty" yaml:"singleton,omitempty"`
}

// Allocate implements Allocator.
func (c *Create) Allocate(b *ResourceBuilder) { b.Create(c) }

// Read describes a read operation.
type Read struct {
	Operation `yaml:",inline"`
}

// Allocate implements Allocator.
func (r *Read) Allocate(b *ResourceBuilder) { b.Read(r) }

// Update describes an update operation.
type Update struct {
	Operation `yaml:",inline"`
}

// Allocate implements Allocator.
func (u *Update) Allocate(b *ResourceBuilder) { b.Update(u) }

// Delete describes a delete operation.
type Delete struct {
	Operation `yaml:",inline"`
}

// Allocate implements Allocator.
func (d *Delete) Allocate(b *ResourceBuilder) { b.Delete(d) }

// Patch describes a patch operation.
type Patch struct {
	Operation `yaml:",inline"`

	// Operations lists the supported patch operations
	Operations []PatchOperation `json:"operations" yaml:"operations"`
}

// Allocate implements Allocator.
func (p *Patch) Allocate(b *ResourceBuilder) { b.Patch(p) }

// Action describes a named action operation.
type Action struct {
	Operation `yaml:",inline"`

	// Name is the action name, unique within a resource
	Name string `json:"name" yaml:"name"`

	// Request is the action request payload shape
	Request *Schema `json:"request,omitempty" yaml:"request,omitempty"`

	// Response is the action response payload shape
	Response *Schema `json:"response,omitempty" yaml:"response,omitempty"`
}

// Allocate implements Allocator.
func (a Action) Allocate(b *ResourceBuilder) { b.Action(a) }

// Key returns the ordering and uniqueness key of the action.
func (a Action) Key() string { return a.Name }

// Query describes a query operation.
type Query struct {
	Operation `yaml:",inline"`

	// Type is the query type
	Type QueryType `json:"type" yaml:"type"`

	// QueryID identifies an ID query
	QueryID string `json:"queryId,omitempty" yaml:"queryId,omitempty"`

	// PagingModes lists the supported paging modes
	PagingModes []PagingMode `json:"pagingModes,omitempty" yaml:"pagingModes,omitempty"`

	// CountPolicies lists the supported count policies
	CountPolicies []CountPolicy `json:"countPolicies,omitempty" yaml:"countPolicies,omitempty"`

	// QueryableFields lists the fields that can be queried
	QueryableFields []string `json:"queryableFields,omitempty" yaml:"queryableFields,omitempty"`

	// SupportedSortKeys lists the fields results can be sorted by
	SupportedSortKeys []string `json:"supportedSortKeys,omitempty" yaml:"supportedSortKeys,omitempty"`
}

// Allocate implements Allocator.
func (q Query) Allocate(b *ResourceBuilder) { b.Query(q) }

// Key returns the ordering and uniqueness key of the query.
// Filter and expression queries are unique by type, ID queries by their query id.
func (q Query) Key() string {
	if q.Type == QueryTypeID {
		return string(q.Type) + ":" + q.QueryID
	}
	return string(q.Type)
}
