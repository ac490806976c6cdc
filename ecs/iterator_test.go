package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func seededIterator(t *testing.T, aliases []string, n int) (*indexBase, *Iterator) {
	t.Helper()
	ix := newTestIndex()
	for i := 1; i <= n; i++ {
		ix.add(Entity(i), []any{&idxA{i}, &idxB{i * 10}})
	}
	return ix, newIterator(ix, aliases)
}

func TestIteratorWalk(t *testing.T) {
	_, it := seededIterator(t, []string{"a", "b"}, 3)

	var seen []Entity
	for it.Start(); it.Next(); {
		seen = append(seen, it.Entity())
		a := At[*idxA](it, "a")
		b := At[*idxB](it, "b")
		require.Equal(t, int(it.Entity()), a.v)
		require.Equal(t, int(it.Entity())*10, b.v)
	}
	require.Equal(t, []Entity{1, 2, 3}, seen)
	require.Equal(t, Null, it.Entity(), "fields cleared on exhaustion")
	require.Nil(t, it.Component("a"))

	// The iterator is reusable.
	require.True(t, it.First())
	require.Equal(t, Entity(1), it.Entity())
}

func TestIteratorSkipsTombstones(t *testing.T) {
	ix, it := seededIterator(t, []string{"a", "b"}, 4)
	ix.remove(1)
	ix.remove(3)

	var seen []Entity
	for it.Start(); it.Next(); {
		seen = append(seen, it.Entity())
	}
	require.Equal(t, []Entity{2, 4}, seen)
}

func TestIteratorEmptyIndex(t *testing.T) {
	_, it := seededIterator(t, []string{"a", "b"}, 0)
	require.False(t, it.First())
	require.Equal(t, Null, it.Entity())
}

func TestIteratorWitnessAlias(t *testing.T) {
	// World.Index blanks witness aliases before construction.
	_, it := seededIterator(t, []string{"a", ""}, 1)
	require.True(t, it.First())
	require.NotNil(t, it.Component("a"))
	require.Nil(t, it.Component("_b"))
	require.Nil(t, it.Component(""))
}

func TestIteratorChangeHints(t *testing.T) {
	ix, it := seededIterator(t, []string{"a", "b"}, 2)

	require.False(t, it.WasAddedTo(), "first call after construction is false")
	require.False(t, it.WasRemovedFrom())

	ix.add(10, []any{&idxA{}, &idxB{}})
	ix.add(11, []any{&idxA{}, &idxB{}})
	require.True(t, it.WasAddedTo(), "any number of adds reads as one change")
	require.False(t, it.WasAddedTo())

	ix.remove(10)
	require.True(t, it.WasRemovedFrom())
	require.False(t, it.WasRemovedFrom())

	// A round-trip add+remove between observations reads as both.
	ix.add(12, []any{&idxA{}, &idxB{}})
	ix.remove(12)
	require.True(t, it.WasChanged())
	require.False(t, it.WasChanged())
}

func TestIteratorIndependentSnapshots(t *testing.T) {
	ix, it1 := seededIterator(t, []string{"a", "b"}, 1)
	it2 := newIterator(ix, []string{"a", "b"})

	ix.add(5, []any{&idxA{}, &idxB{}})
	require.True(t, it1.WasAddedTo())
	require.True(t, it2.WasAddedTo(), "iterators track changes independently")
}
