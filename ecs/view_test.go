package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestViewFizzBuzz(t *testing.T) {
	// S1: entities 0..99, Fizz on i%3==0, Buzz on i%5==0. The (Fizz,Buzz)
	// view visits exactly the multiples of 15.
	w := NewWorld()
	byEntity := make(map[Entity]int)
	for i := 0; i < 100; i++ {
		var comps []any
		if i%3 == 0 {
			comps = append(comps, &Fizz{})
		}
		if i%5 == 0 {
			comps = append(comps, &Buzz{})
		}
		e, err := w.Create(comps...)
		require.NoError(t, err)
		byEntity[e] = i
	}

	v, err := w.View((*Fizz)(nil), (*Buzz)(nil))
	require.NoError(t, err)
	var visited []int
	v.Each(func(e Entity, comps []any) bool {
		require.Len(t, comps, 2)
		require.IsType(t, &Fizz{}, comps[0])
		require.IsType(t, &Buzz{}, comps[1])
		visited = append(visited, byEntity[e])
		return true
	})
	require.ElementsMatch(t, []int{0, 15, 30, 45, 60, 75, 90}, visited)
}

func TestViewEarlyStop(t *testing.T) {
	w := NewWorld()
	for i := 0; i < 10; i++ {
		_, err := w.Create(&Position{X: i})
		require.NoError(t, err)
	}
	v, err := w.View((*Position)(nil))
	require.NoError(t, err)
	count := 0
	v.Each(func(Entity, []any) bool {
		count++
		return count < 3
	})
	require.Equal(t, 3, count)
}

func TestViewComponentOrderFollowsSpec(t *testing.T) {
	w := NewWorld()
	_, err := w.Create(&Position{X: 1}, &Velocity{DX: 2})
	require.NoError(t, err)

	v, err := w.View((*Velocity)(nil), (*Position)(nil))
	require.NoError(t, err)
	v.Each(func(_ Entity, comps []any) bool {
		require.Equal(t, &Velocity{DX: 2}, comps[0], "caller order, not sorted order")
		require.Equal(t, &Position{X: 1}, comps[1])
		return true
	})
}

func TestViewRejectsZeroTypes(t *testing.T) {
	w := NewWorld()
	_, err := w.View()
	require.ErrorIs(t, err, ErrEmptyView)
}

func TestViewCachedPerTypeTuple(t *testing.T) {
	w := NewWorld()
	v1, err := w.View((*Position)(nil))
	require.NoError(t, err)
	v2, err := w.View((*Position)(nil))
	require.NoError(t, err)
	require.Same(t, v1, v2)

	v3, err := w.View((*Position)(nil), (*Velocity)(nil))
	require.NoError(t, err)
	require.NotSame(t, v1, v3)
}

func TestViewSkipsUnknownTypes(t *testing.T) {
	w := NewWorld()
	_, err := w.Create(&Position{})
	require.NoError(t, err)
	v, err := w.View((*Position)(nil), (*Health)(nil))
	require.NoError(t, err)
	calls := 0
	v.Each(func(Entity, []any) bool {
		calls++
		return true
	})
	require.Equal(t, 0, calls, "no Health storage exists yet")
}
