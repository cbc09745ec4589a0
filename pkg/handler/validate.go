// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/api2spec/apidesc/pkg/types"
)

var validate = NewValidator()

// NewValidator returns a validator that names fields by their yaml keys.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})
	return v
}

// ValidateHandler checks a handler marker's declaration.
func ValidateHandler(typeName string, h *Handler) error {
	if h == nil {
		return nil
	}
	if err := validate.Struct(h); err != nil {
		return declarationError(typeName, "handler", err)
	}
	return nil
}

// ValidateMember checks a member's operation declarations.
func ValidateMember(typeName string, m Member) error {
	if err := validate.Struct(m); err != nil {
		return declarationError(typeName, m.Name, err)
	}
	return nil
}

// declarationError turns validator failures into a *types.ValidationError wrapping
// types.ErrInvalidDeclaration.
func declarationError(typeName, member string, err error) error {
	var valErrs validator.ValidationErrors
	if !errors.As(err, &valErrs) {
		return types.NewValidationError(types.ErrInvalidDeclaration, "%s.%s: %v", typeName, member, err)
	}

	messages := make([]string, 0, len(valErrs))
	for _, ve := range valErrs {
		messages = append(messages, fieldPath(ve)+": "+FormatFieldError(ve))
	}
	return types.NewValidationError(types.ErrInvalidDeclaration, "%s.%s: %s", typeName, member, strings.Join(messages, "; "))
}

// fieldPath drops the top-level struct name from the namespace ("Member.read.stability" -> "read.stability").
func fieldPath(ve validator.FieldError) string {
	ns := ve.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return ns
}

// FormatFieldError renders a single validator failure as a short message.
func FormatFieldError(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "required_without":
		return fmt.Sprintf("required when %s is not set", strings.ToLower(ve.Param()))
	case "required_if":
		return fmt.Sprintf("required when %s", strings.ToLower(ve.Param()))
	case "excluded_with":
		return fmt.Sprintf("cannot be combined with %s", strings.ToLower(ve.Param()))
	case "excludesall":
		return fmt.Sprintf("must not contain any of %q", ve.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "startswith":
		return fmt.Sprintf("must start with %q", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
