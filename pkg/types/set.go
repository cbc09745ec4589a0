// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

import (
	"slices"
	"strings"
)

// Keyed is implemented by values stored in an OrderedSet.
type Keyed interface {
	Key() string
}

// OrderedSet keeps values sorted by key and rejects a second value with an existing key.
// The zero value is an empty set.
type OrderedSet[T Keyed] struct {
	items []T
}

// ActionSet is the ordered, duplicate-free set of a resource's actions.
type ActionSet = OrderedSet[Action]

// QuerySet is the ordered, duplicate-free set of a resource's queries.
type QuerySet = OrderedSet[Query]

// Add inserts v in key order. It returns false and leaves the set unchanged
// when a value with the same key is already present.
func (s *OrderedSet[T]) Add(v T) bool {
	i, found := s.search(v.Key())
	if found {
		return false
	}
	s.items = slices.Insert(s.items, i, v)
	return true
}

// Contains reports whether a value with the given key is present.
func (s *OrderedSet[T]) Contains(key string) bool {
	_, found := s.search(key)
	return found
}

// Len returns the number of values in the set.
func (s *OrderedSet[T]) Len() int {
	return len(s.items)
}

// Values returns a copy of the values in key order.
func (s *OrderedSet[T]) Values() []T {
	return slices.Clone(s.items)
}

func (s *OrderedSet[T]) search(key string) (int, bool) {
	return slices.BinarySearchFunc(s.items, key, func(item T, k string) int {
		return strings.Compare(item.Key(), k)
	})
}
