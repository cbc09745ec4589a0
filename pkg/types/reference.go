// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

import (
	"strings"
)

const (
	servicesPrefix    = "#/services/"
	definitionsPrefix = "#/definitions/"
	errorsPrefix      = "#/errors/"

	// CommonsErrorsPrefix prefixes references into the common errors description.
	CommonsErrorsPrefix = "frapi:common#/errors/"
)

// Reference is a JSON-Reference style pointer to something defined once elsewhere in a description.
type Reference struct {
	// Value is the reference path (e.g., "#/services/users")
	Value string `json:"$ref" yaml:"$ref"`
}

// NewReference creates a reference to the given path.
func NewReference(value string) *Reference {
	return &Reference{Value: value}
}

// ServiceReference creates a reference to a service registered under id.
func ServiceReference(id string) *Reference {
	return &Reference{Value: servicesPrefix + id}
}

// DefinitionReference creates a reference to a schema definition.
func DefinitionReference(name string) *Reference {
	return &Reference{Value: definitionsPrefix + name}
}

// ErrorReference creates a reference to an error shared in the description.
func ErrorReference(name string) *Reference {
	return &Reference{Value: errorsPrefix + name}
}

// CommonsErrorReference creates a reference to a common error by name.
func CommonsErrorReference(name string) *Reference {
	return &Reference{Value: CommonsErrorsPrefix + name}
}

// ServiceID returns the service id of a "#/services/<id>" reference.
func (r *Reference) ServiceID() (string, bool) {
	if r == nil || !strings.HasPrefix(r.Value, servicesPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(r.Value, servicesPrefix)
	return id, id != ""
}

// DefinitionName returns the definition name of a "#/definitions/<name>" reference.
func (r *Reference) DefinitionName() (string, bool) {
	if r == nil || !strings.HasPrefix(r.Value, definitionsPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(r.Value, definitionsPrefix)
	return name, name != ""
}

// ErrorName returns the error name of a "#/errors/<name>" reference.
func (r *Reference) ErrorName() (string, bool) {
	return r.trim(errorsPrefix)
}

// CommonsErrorName returns the error name of a "frapi:common#/errors/<name>" reference.
func (r *Reference) CommonsErrorName() (string, bool) {
	return r.trim(CommonsErrorsPrefix)
}

func (r *Reference) trim(prefix string) (string, bool) {
	if r == nil || !strings.HasPrefix(r.Value, prefix) {
		return "", false
	}
	name := strings.TrimPrefix(r.Value, prefix)
	return name, name != ""
}

// Equal reports whether both references point to the same path.
func (r *Reference) Equal(other *Reference) bool {
	if r == nil || other == nil {
		return r == other
	}
	return r.Value == other.Value
}

func (r *Reference) String() string {
	if r == nil {
		return ""
	}
	return r.Value
}
