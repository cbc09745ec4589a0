// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

// Package manifest loads handler manifests: YAML files declaring handler types,
// shared definitions and errors, and the paths the types are mounted at.
package manifest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/stoewer/go-strcase"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"github.com/api2spec/apidesc/internal/schema"
	"github.com/api2spec/apidesc/pkg/handler"
	"github.com/api2spec/apidesc/pkg/types"
)

// Variant names accepted in a mount besides the describe variants.
const (
	// VariantCollection describes the type as a collection with member items.
	VariantCollection = "collection"

	// DefaultVariant is used when a mount names no variant.
	DefaultVariant = "handler"
)

// File is a decoded manifest.
type File struct {
	// Path is the file the manifest was read from
	Path string `yaml:"-"`

	// Definitions are shared JSON Schema documents keyed by name
	Definitions map[string]map[string]any `yaml:"definitions,omitempty"`

	// Errors are shared errors keyed by name
	Errors map[string]ErrorDecl `yaml:"errors,omitempty" validate:"dive"`

	// Types are the declared handler types
	Types []TypeDecl `yaml:"types,omitempty" validate:"dive"`

	// Mounts expose types at paths of the description
	Mounts []Mount `yaml:"mounts,omitempty" validate:"dive"`
}

// ErrorDecl declares a shared error.
type ErrorDecl struct {
	Code        int            `yaml:"code" validate:"required,min=100,max=599"`
	Description string         `yaml:"description,omitempty"`
	Detail      map[string]any `yaml:"detail,omitempty"`
}

// TypeDecl declares a handler type. A declaration without a handler block
// describes a type that is not a request handler.
type TypeDecl struct {
	Name    string           `yaml:"name" validate:"required"`
	Handler *handler.Handler `yaml:"handler,omitempty"`
	Members []handler.Member `yaml:"members,omitempty" validate:"dive"`
}

// Mount exposes a type at a path.
type Mount struct {
	Path    string  `yaml:"path" validate:"required,startswith=/"`
	Type    string  `yaml:"type" validate:"required"`
	Variant string  `yaml:"variant,omitempty" validate:"omitempty,oneof=singleton collection collection-collection collection-instance handler"`
	Sub     []Mount `yaml:"sub,omitempty" validate:"dive"`
}

// VariantName returns the mount variant, defaulting to DefaultVariant.
func (m Mount) VariantName() string {
	if m.Variant == "" {
		return DefaultVariant
	}
	return m.Variant
}

// Name returns the key the mount uses when nested as a sub-resource.
func (m Mount) Name() string {
	return strings.Trim(m.Path, "/")
}

var validate = handler.NewValidator()

var titleCaser = cases.Title(language.English)

// Load reads and validates a manifest file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	return Parse(path, data)
}

// Parse decodes and validates manifest content. path is used in messages only.
func Parse(path string, data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	f.Path = path

	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks field constraints, unique type names and inline schema documents.
// Every problem is reported as a *types.ValidationError wrapping
// types.ErrInvalidDeclaration.
func (f *File) Validate() error {
	var errs types.ValidationErrors

	if err := validate.Struct(f); err != nil {
		var valErrs validator.ValidationErrors
		if !errors.As(err, &valErrs) {
			return types.NewValidationError(types.ErrInvalidDeclaration, "%s: %v", f.Path, err)
		}
		for _, ve := range valErrs {
			errs = append(errs, types.NewValidationError(types.ErrInvalidDeclaration, "%s: %s: %s", f.Path, fieldPath(ve), handler.FormatFieldError(ve)))
		}
	}

	seen := make(map[string]bool, len(f.Types))
	for _, t := range f.Types {
		if t.Name == "" {
			continue
		}
		if seen[t.Name] {
			errs = append(errs, types.NewValidationError(types.ErrInvalidDeclaration, "%s: type %s declared twice", f.Path, t.Name))
		}
		seen[t.Name] = true
	}

	for name, doc := range f.Definitions {
		if err := schema.ValidateDocument(doc); err != nil {
			errs = append(errs, types.NewValidationError(types.ErrInvalidDeclaration, "%s: definition %s: %v", f.Path, name, err))
		}
	}
	for name, decl := range f.Errors {
		if decl.Detail == nil {
			continue
		}
		if err := schema.ValidateDocument(decl.Detail); err != nil {
			errs = append(errs, types.NewValidationError(types.ErrInvalidDeclaration, "%s: error %s detail: %v", f.Path, name, err))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func fieldPath(ve validator.FieldError) string {
	if _, rest, ok := strings.Cut(ve.Namespace(), "."); ok {
		return rest
	}
	return ve.Namespace()
}

// HandlerTypes converts the type declarations into handler types. Handlers
// without a title get one derived from the type name ("UserAccounts" -> "User Accounts").
func (f *File) HandlerTypes() []handler.Type {
	out := make([]handler.Type, 0, len(f.Types))
	for _, decl := range f.Types {
		out = append(out, decl.handlerType())
	}
	return out
}

func (d TypeDecl) handlerType() *handler.Static {
	var marker *handler.Handler
	if d.Handler != nil {
		h := *d.Handler
		if h.Title == "" {
			h.Title = DefaultTitle(d.Name)
		}
		marker = &h
	}
	return handler.NewStatic(d.Name, marker, d.Members...)
}

// DefaultTitle derives a display title from a type name.
func DefaultTitle(name string) string {
	return titleCaser.String(strings.ReplaceAll(strcase.SnakeCase(name), "_", " "))
}

// Register adds the manifest definitions and errors to root. Re-registering an
// identical entry is accepted.
func (f *File) Register(root *types.APIDescription) error {
	for name, doc := range f.Definitions {
		if err := root.Definitions.AddDefinition(name, types.InlineSchema(doc)); err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	for name, decl := range f.Errors {
		apiErr := types.APIError{Code: decl.Code, Description: decl.Description}
		if decl.Detail != nil {
			apiErr.Schema = types.InlineSchema(decl.Detail)
		}
		if err := root.Errors.AddError(name, apiErr); err != nil {
			return fmt.Errorf("%s: %w", f.Path, err)
		}
	}
	return nil
}
