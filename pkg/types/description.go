// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// APIDescription is the root of an API document. It owns the registries every
// reference in the document resolves against.
type APIDescription struct {
	// ID identifies the description (e.g., "example:products")
	ID string

	// Version is the description version
	Version string

	// Description is a description of the API
	Description string

	// Definitions holds shared schemas
	Definitions *Definitions

	// Errors holds shared errors
	Errors *Errors

	// Services holds shared resources
	Services *Services

	// Paths maps a mount path to the resource exposed there
	Paths map[string]*Resource
}

// NewAPIDescription creates a description with empty registries.
func NewAPIDescription(id, version string) *APIDescription {
	return &APIDescription{
		ID:          id,
		Version:     version,
		Definitions: NewDefinitions(),
		Errors:      NewErrors(),
		Services:    NewServices(),
		Paths:       make(map[string]*Resource),
	}
}

// ensure allocates any registry left nil, e.g., after decoding a document without one.
func (d *APIDescription) ensure() {
	if d.Definitions == nil {
		d.Definitions = NewDefinitions()
	}
	if d.Errors == nil {
		d.Errors = NewErrors()
	}
	if d.Services == nil {
		d.Services = NewServices()
	}
	if d.Paths == nil {
		d.Paths = make(map[string]*Resource)
	}
}

// PathNames returns the mount paths in sorted order.
func (d *APIDescription) PathNames() []string {
	return slices.Sorted(maps.Keys(d.Paths))
}

// Validate checks that every service and definition reference reachable from the
// paths and the services resolves. All dangling references are reported together.
func (d *APIDescription) Validate() error {
	d.ensure()

	var errs ValidationErrors
	for _, path := range d.PathNames() {
		errs = append(errs, d.validateResource("paths"+path, d.Paths[path])...)
	}
	for _, id := range d.Services.Names() {
		r, _ := d.Services.Get(id)
		errs = append(errs, d.validateResource("services/"+id, r)...)
	}
	for _, name := range d.Definitions.Names() {
		s, _ := d.Definitions.Get(name)
		errs = append(errs, d.validateSchema("definitions/"+name, s)...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (d *APIDescription) validateResource(at string, r *Resource) []error {
	if r == nil {
		return nil
	}

	var errs []error
	if ref := r.Reference(); ref != nil {
		if _, ok := ref.ServiceID(); ok {
			if _, err := d.Services.Resolve(ref); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", at, err))
			}
		}
		return errs
	}

	errs = append(errs, d.validateSchema(at+"/resourceSchema", r.ResourceSchema())...)
	for _, a := range r.Actions() {
		errs = append(errs, d.validateSchema(at+"/actions/"+a.Name+"/request", a.Request)...)
		errs = append(errs, d.validateSchema(at+"/actions/"+a.Name+"/response", a.Response)...)
	}
	sub := r.SubResources()
	for _, path := range slices.Sorted(maps.Keys(sub)) {
		errs = append(errs, d.validateResource(at+"/subresources/"+path, sub[path])...)
	}
	if items := r.Items(); items != nil {
		errs = append(errs, d.validateResource(at+"/items", items.Resource)...)
	}
	return errs
}

func (d *APIDescription) validateSchema(at string, s *Schema) []error {
	if !s.IsReference() {
		return nil
	}
	name, ok := s.Reference.DefinitionName()
	if !ok || d.Definitions.Has(name) {
		return nil
	}
	return []error{fmt.Errorf("%s: definition %q: %w", at, name, ErrDanglingReference)}
}

type descriptionWire struct {
	ID          string               `json:"id" yaml:"id"`
	Version     string               `json:"version" yaml:"version"`
	Description string               `json:"description,omitempty" yaml:"description,omitempty"`
	Definitions *Definitions         `json:"definitions,omitempty" yaml:"definitions,omitempty"`
	Errors      *Errors              `json:"errors,omitempty" yaml:"errors,omitempty"`
	Services    *Services            `json:"services,omitempty" yaml:"services,omitempty"`
	Paths       map[string]*Resource `json:"paths,omitempty" yaml:"paths,omitempty"`
}

func (d *APIDescription) wire() descriptionWire {
	w := descriptionWire{
		ID:          d.ID,
		Version:     d.Version,
		Description: d.Description,
		Paths:       d.Paths,
	}
	if d.Definitions != nil && d.Definitions.Count() > 0 {
		w.Definitions = d.Definitions
	}
	if d.Errors != nil && d.Errors.Count() > 0 {
		w.Errors = d.Errors
	}
	if d.Services != nil && d.Services.Count() > 0 {
		w.Services = d.Services
	}
	return w
}

func (d *APIDescription) fromWire(w descriptionWire) {
	d.ID = w.ID
	d.Version = w.Version
	d.Description = w.Description
	d.Definitions = w.Definitions
	d.Errors = w.Errors
	d.Services = w.Services
	d.Paths = w.Paths
	d.ensure()
}

// MarshalJSON implements json.Marshaler.
func (d *APIDescription) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.wire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *APIDescription) UnmarshalJSON(data []byte) error {
	var w descriptionWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	d.fromWire(w)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d *APIDescription) MarshalYAML() (interface{}, error) {
	return d.wire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *APIDescription) UnmarshalYAML(value *yaml.Node) error {
	var w descriptionWire
	if err := value.Decode(&w); err != nil {
		return err
	}
	d.fromWire(w)
	return nil
}
