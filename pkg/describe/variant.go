// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package describe

import (
	"fmt"
	"strings"
)

// Variant selects which declared operations a handler type exposes for one view of a resource.
type Variant struct {
	// Name is the variant name used in manifests
	Name string

	// InstanceCreate forces creates to the client-chosen id mode
	InstanceCreate bool

	// RudpOperations accepts read, update, delete and patch
	RudpOperations bool

	// ActionRequiresID accepts only actions declared with instance scope
	ActionRequiresID bool

	// QueryOperations accepts queries
	QueryOperations bool
}

var (
	// Singleton is a resource with a single instance.
	Singleton = Variant{Name: "singleton", InstanceCreate: true, RudpOperations: true}

	// CollectionCollection is the collection view of a collection resource.
	CollectionCollection = Variant{Name: "collection-collection", QueryOperations: true}

	// CollectionInstance is the member view of a collection resource.
	CollectionInstance = Variant{Name: "collection-instance", InstanceCreate: true, RudpOperations: true, ActionRequiresID: true}

	// GenericHandler is a handler that is neither a singleton nor a collection.
	GenericHandler = Variant{Name: "handler", RudpOperations: true, QueryOperations: true}
)

// Variants returns every known variant.
func Variants() []Variant {
	return []Variant{Singleton, CollectionCollection, CollectionInstance, GenericHandler}
}

// ParseVariant returns the variant with the given name.
func ParseVariant(name string) (Variant, error) {
	for _, v := range Variants() {
		if strings.EqualFold(v.Name, name) {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("unknown variant %q", name)
}

func (v Variant) String() string {
	return v.Name
}
