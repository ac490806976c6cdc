package sim

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/l1jgo/whalecs/ecs"
	"github.com/l1jgo/whalecs/event"
	"github.com/l1jgo/whalecs/system"
)

func TestMovementSystem(t *testing.T) {
	w := ecs.NewWorld()
	ms, err := NewMovementSystem(w)
	require.NoError(t, err)

	e, err := w.Create(&Position{X: 1, Y: 1}, &Velocity{DX: 2, DY: -1})
	require.NoError(t, err)
	still, err := w.Create(&Position{X: 5, Y: 5})
	require.NoError(t, err)

	ms.Update(time.Millisecond)
	ms.Update(time.Millisecond)

	require.Equal(t, &Position{X: 5, Y: -1}, w.Get(e, (*Position)(nil)))
	require.Equal(t, &Position{X: 5, Y: 5}, w.Get(still, (*Position)(nil)))
}

func TestDecayAndCleanup(t *testing.T) {
	w := ecs.NewWorld()
	var expired []ecs.Entity
	journal := &Journal{}
	ds, err := NewDecaySystem(w, &expired)
	require.NoError(t, err)
	cs := NewCleanupSystem(w, &expired, journal, zap.NewNop())

	short, err := w.Create(&Lifetime{TicksLeft: 1})
	require.NoError(t, err)
	long, err := w.Create(&Lifetime{TicksLeft: 3})
	require.NoError(t, err)

	ds.Update(time.Millisecond)
	cs.Update(time.Millisecond)
	require.False(t, w.Exists(short))
	require.True(t, w.Exists(long))
	require.Empty(t, expired)

	entries := journal.Drain()
	require.Len(t, entries, 1)
	require.Equal(t, "destroy", entries[0].Op)
	require.Equal(t, short, entries[0].Entity)
	require.Empty(t, journal.Drain())
}

func TestFullTickPipeline(t *testing.T) {
	bus := event.NewBus()
	var destroyed []ecs.Entity
	event.Subscribe(bus, func(ev event.EntityDestroyed) {
		destroyed = append(destroyed, ev.Entity)
	})

	w2 := ecs.NewWorld(ecs.WithTracker(event.NewBusTracker(bus)))

	var expired []ecs.Entity
	r := system.NewRunner()
	r.Register(NewEventSystem(bus))
	ms, err := NewMovementSystem(w2)
	require.NoError(t, err)
	r.Register(ms)
	ds, err := NewDecaySystem(w2, &expired)
	require.NoError(t, err)
	r.Register(ds)
	r.Register(NewCleanupSystem(w2, &expired, nil, zap.NewNop()))

	e, err := w2.Create(&Position{}, &Velocity{DX: 1}, &Lifetime{TicksLeft: 2})
	require.NoError(t, err)

	r.Tick(time.Millisecond) // tick 1: moves, decays to 1
	require.True(t, w2.Exists(e))
	r.Tick(time.Millisecond) // tick 2: decays to 0, culled
	require.False(t, w2.Exists(e))
	r.Tick(time.Millisecond) // tick 3: destroy event dispatched
	require.Equal(t, []ecs.Entity{e}, destroyed)
}
