package ecs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIdPoolReserveSequence(t *testing.T) {
	p := NewIdPool()
	for want := Entity(1); want <= 5; want++ {
		require.Equal(t, want, p.Reserve())
	}
}

func TestIdPoolSmallestFreeFirst(t *testing.T) {
	p := NewIdPool()
	for i := 0; i < 10; i++ {
		p.Reserve()
	}
	require.True(t, p.Release(3))
	require.True(t, p.Release(7))
	require.True(t, p.Release(5))

	require.Equal(t, Entity(3), p.Reserve())
	require.Equal(t, Entity(5), p.Reserve())
	require.Equal(t, Entity(7), p.Reserve())
	require.Equal(t, Entity(11), p.Reserve())
}

func TestIdPoolReleaseCoalesces(t *testing.T) {
	p := NewIdPool()
	for i := 0; i < 6; i++ {
		p.Reserve()
	}
	p.Release(2)
	p.Release(4)
	p.Release(3) // bridges [2,3) and [4,5)
	require.Len(t, p.free, 2)
	require.Equal(t, interval{left: 2, right: 5}, p.free[0])
}

func TestIdPoolRejectsBadRelease(t *testing.T) {
	p := NewIdPool()
	require.False(t, p.Release(0))
	require.False(t, p.Release(-1))
	require.False(t, p.Release(MaxEntity))
	require.False(t, p.Release(1), "1 is still free")

	id := p.Reserve()
	require.True(t, p.Release(id))
	require.False(t, p.Release(id), "double release")
}

func TestIdPoolAcquire(t *testing.T) {
	p := NewIdPool()
	require.True(t, p.Acquire(100))
	require.False(t, p.Acquire(100), "already reserved")

	// Reserve still hands out the smallest free IDs around the hole.
	require.Equal(t, Entity(1), p.Reserve())
	require.True(t, p.Release(100))
	require.True(t, p.Acquire(100))
}

func TestIdPoolExhaustion(t *testing.T) {
	p := &IdPool{free: []interval{{left: 1, right: 4}}}
	require.Equal(t, Entity(1), p.Reserve())
	require.Equal(t, Entity(2), p.Reserve())
	require.Equal(t, Entity(3), p.Reserve())
	require.Equal(t, Entity(0), p.Reserve(), "exhausted pool returns the 0 sentinel")
	require.Equal(t, 0, p.FreeCount())
}

func TestIdPoolReserveAfterRelease(t *testing.T) {
	p := &IdPool{free: []interval{{left: 1, right: 4}}}
	p.Reserve()
	p.Reserve()
	p.Reserve()
	require.True(t, p.Release(2))
	require.Equal(t, Entity(2), p.Reserve())
	require.Equal(t, Entity(0), p.Reserve())
}
