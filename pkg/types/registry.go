// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"
)

// registry is a name-keyed store shared by the description registries.
// The zero value is empty and ready to use.
type registry[V any] struct {
	mu    sync.RWMutex
	items map[string]V
}

// add inserts v under name. An existing entry is kept; when same is nil or reports
// a difference the insertion fails with a *RegistrationError wrapping dup.
func (r *registry[V]) add(kind string, dup error, name string, v V, same func(a, b V) bool) error {
	if name == "" {
		return &RegistrationError{Kind: kind, ID: name, Err: fmt.Errorf("empty %s id", kind)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.items[name]; ok {
		if same != nil && same(existing, v) {
			return nil
		}
		return &RegistrationError{Kind: kind, ID: name, Err: dup}
	}
	if r.items == nil {
		r.items = make(map[string]V)
	}
	r.items[name] = v
	return nil
}

// Get returns the entry registered under name.
func (r *registry[V]) Get(name string) (V, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.items[name]
	return v, ok
}

// Has checks if an entry exists under name.
func (r *registry[V]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.items[name]
	return ok
}

// Names returns all names in sorted order.
func (r *registry[V]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slices.Sorted(maps.Keys(r.items))
}

// Count returns the number of entries.
func (r *registry[V]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// All returns a copy of the entries.
func (r *registry[V]) All() map[string]V {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make(map[string]V, len(r.items))
	maps.Copy(result, r.items)
	return result
}

func (r *registry[V]) replace(items map[string]V) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items = items
}

// load replaces the entries with decoded items, rejecting empty names and
// entries that decoded to nil.
func (r *registry[V]) load(kind string, items map[string]V, isNil func(V) bool) error {
	for _, name := range slices.Sorted(maps.Keys(items)) {
		if name == "" {
			return &RegistrationError{Kind: kind, ID: name, Err: fmt.Errorf("empty %s id", kind)}
		}
		if isNil(items[name]) {
			return &RegistrationError{Kind: kind, ID: name, Err: fmt.Errorf("null %s", kind)}
		}
	}
	r.replace(items)
	return nil
}

// Services holds the resources described once and referenced by "#/services/<id>".
type Services struct {
	registry[*Resource]
}

// NewServices creates an empty services registry.
func NewServices() *Services {
	return &Services{}
}

// AddService registers a resource under id. It never overwrites an existing
// entry: a second registration of id fails with ErrDuplicateService.
func (s *Services) AddService(id string, r *Resource) error {
	if r == nil {
		return &RegistrationError{Kind: "service", ID: id, Err: fmt.Errorf("nil resource")}
	}
	return s.add("service", ErrDuplicateService, id, r, nil)
}

// Resolve returns the service a "#/services/<id>" reference points to.
func (s *Services) Resolve(ref *Reference) (*Resource, error) {
	id, ok := ref.ServiceID()
	if !ok {
		return nil, fmt.Errorf("%q is not a service reference: %w", ref.String(), ErrDanglingReference)
	}
	r, ok := s.Get(id)
	if !ok {
		return nil, fmt.Errorf("service %q: %w", id, ErrDanglingReference)
	}
	return r, nil
}

// MarshalJSON implements json.Marshaler.
func (s *Services) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.All())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Services) UnmarshalJSON(data []byte) error {
	var items map[string]*Resource
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	return s.load("service", items, func(v *Resource) bool { return v == nil })
}

// MarshalYAML implements yaml.Marshaler.
func (s *Services) MarshalYAML() (interface{}, error) {
	return s.All(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *Services) UnmarshalYAML(value *yaml.Node) error {
	var items map[string]*Resource
	if err := value.Decode(&items); err != nil {
		return err
	}
	return s.load("service", items, func(v *Resource) bool { return v == nil })
}

// Definitions holds named schemas referenced by "#/definitions/<name>".
type Definitions struct {
	registry[*Schema]
}

// NewDefinitions creates an empty definitions registry.
func NewDefinitions() *Definitions {
	return &Definitions{}
}

// AddDefinition registers a schema under name. Registering an equal schema again
// is a no-op; a different schema fails with ErrDuplicateDefinition.
func (d *Definitions) AddDefinition(name string, s *Schema) error {
	if s == nil {
		return &RegistrationError{Kind: "definition", ID: name, Err: fmt.Errorf("nil schema")}
	}
	return d.add("definition", ErrDuplicateDefinition, name, s, (*Schema).Equal)
}

// MarshalJSON implements json.Marshaler.
func (d *Definitions) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.All())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Definitions) UnmarshalJSON(data []byte) error {
	var items map[string]*Schema
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	return d.load("definition", items, func(v *Schema) bool { return v == nil })
}

// MarshalYAML implements yaml.Marshaler.
func (d *Definitions) MarshalYAML() (interface{}, error) {
	return d.All(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Definitions) UnmarshalYAML(value *yaml.Node) error {
	var items map[string]*Schema
	if err := value.Decode(&items); err != nil {
		return err
	}
	return d.load("definition", items, func(v *Schema) bool { return v == nil })
}

// Errors holds named errors shared between operations.
type Errors struct {
	registry[APIError]
}

// NewErrors creates an empty errors registry.
func NewErrors() *Errors {
	return &Errors{}
}

// AddError registers an error under name. Registering an equal error again is a
// no-op; a different error fails with ErrDuplicateError.
func (e *Errors) AddError(name string, apiErr APIError) error {
	return e.add("error", ErrDuplicateError, name, apiErr, APIError.Equal)
}

// MarshalJSON implements json.Marshaler.
func (e *Errors) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.All())
}

// UnmarshalJSON implements json.Unmarshaler.
func (e *Errors) UnmarshalJSON(data []byte) error {
	var items map[string]APIError
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	e.replace(items)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (e *Errors) MarshalYAML() (interface{}, error) {
	return e.All(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (e *Errors) UnmarshalYAML(value *yaml.Node) error {
	var items map[string]APIError
	if err := value.Decode(&items); err != nil {
		return err
	}
	e.replace(items)
	return nil
}
