// SPDX-FileCopyrightText: 2026 api2spec
// SPDX-License-Identifier: FSL-1.1-MIT

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionSet_Add(t *testing.T) {
	var set ActionSet

	assert.True(t, set.Add(Action{Name: "reset"}))
	assert.True(t, set.Add(Action{Name: "archive"}))
	assert.False(t, set.Add(Action{Name: "reset", Operation: Operation{Description: "again"}}))

	values := set.Values()
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, "archive", values[0].Name)
	assert.Equal(t, "reset", values[1].Name)
	assert.Empty(t, values[1].Description)
}

func TestQuerySet_Add(t *testing.T) {
	var set QuerySet

	assert.True(t, set.Add(Query{Type: QueryTypeFilter}))
	assert.True(t, set.Add(Query{Type: QueryTypeID, QueryID: "byEmail"}))
	assert.True(t, set.Add(Query{Type: QueryTypeID, QueryID: "byName"}))
	assert.True(t, set.Add(Query{Type: QueryTypeExpression}))
	assert.False(t, set.Add(Query{Type: QueryTypeFilter, QueryableFields: []string{"name"}}))
	assert.False(t, set.Add(Query{Type: QueryTypeID, QueryID: "byEmail"}))

	assert.Equal(t, 4, set.Len())
	assert.True(t, set.Contains("ID:byName"))
	assert.False(t, set.Contains("ID:byAge"))

	var keys []string
	for _, q := range set.Values() {
		keys = append(keys, q.Key())
	}
	assert.Equal(t, []string{"EXPRESSION", "FILTER", "ID:byEmail", "ID:byName"}, keys)
}

func TestOrderedSet_ValuesIsACopy(t *testing.T) {
	var set ActionSet
	set.Add(Action{Name: "a"})

	values := set.Values()
	values[0].Name = "changed"

	assert.True(t, set.Contains("a"))
	assert.False(t, set.Contains("changed"))
}
