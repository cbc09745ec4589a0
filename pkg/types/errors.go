// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for descriptor validation and registration.
var (
	// ErrReferenceWithOperations is returned when a resource carries both a reference and operations.
	ErrReferenceWithOperations = errors.New("cannot have a reference as well as operations")

	// ErrMvccRequired is returned when a non-reference resource has no mvccSupported flag.
	ErrMvccRequired = errors.New("mvccSupported required for non-reference resources")

	// ErrSchemaRequired is returned when operations are declared without a resource schema.
	ErrSchemaRequired = errors.New("CRUDPQ operation(s) defined, but no resource schema declared")

	// ErrConflictingOperation is returned when a handler declares the same operation kind twice.
	ErrConflictingOperation = errors.New("conflicting operation declaration")

	// ErrInvalidDeclaration is returned when an operation declaration fails validation.
	ErrInvalidDeclaration = errors.New("invalid operation declaration")

	// ErrAlreadyBuilt is returned when a builder is used after Build.
	ErrAlreadyBuilt = errors.New("already built resource")

	// ErrDuplicateService is returned when a service id is registered twice.
	ErrDuplicateService = errors.New("service already registered")

	// ErrDuplicateDefinition is returned when a different schema is registered under an existing name.
	ErrDuplicateDefinition = errors.New("definition already registered")

	// ErrDuplicateError is returned when a different error is registered under an existing name.
	ErrDuplicateError = errors.New("error already registered")

	// ErrDanglingReference is returned when a reference does not resolve.
	ErrDanglingReference = errors.New("dangling reference")
)

// ValidationError is a fatal descriptor invariant violation.
type ValidationError struct {
	// Reason is a human readable description of what was violated.
	Reason string

	// Err is the sentinel identifying the violated invariant.
	Err error
}

// NewValidationError creates a ValidationError for the given sentinel.
func NewValidationError(err error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Reason: fmt.Sprintf(format, args...),
		Err:    err,
	}
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("descriptor validation error: %v", e.Err)
	}
	return fmt.Sprintf("descriptor validation error: %s: %v", e.Reason, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// StateError reports a call on a builder that has already been built.
type StateError struct {
	// Call is the name of the rejected builder method.
	Call string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("%s: %v", e.Call, ErrAlreadyBuilt)
}

func (e *StateError) Unwrap() error {
	return ErrAlreadyBuilt
}

// RegistrationError reports a rejected insertion into one of the description registries.
type RegistrationError struct {
	// Kind is the registry kind ("service", "definition", "error").
	Kind string

	// ID is the rejected key.
	ID string

	Err error
}

func (e *RegistrationError) Error() string {
	return fmt.Sprintf("cannot register %s %q: %v", e.Kind, e.ID, e.Err)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects several validation failures of one document.
type ValidationErrors []error

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	sb.WriteString("description validation errors:\n")
	for _, err := range e {
		sb.WriteString("  - ")
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Unwrap exposes the collected errors to errors.Is and errors.As.
func (e ValidationErrors) Unwrap() []error {
	return e
}
