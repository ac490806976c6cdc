package event

import "github.com/l1jgo/whalecs/ecs"

// BusTracker adapts a Bus to the World's Tracker interface: entity
// lifecycle turns into EntityCreated/EntityDestroyed events, delivered on
// the tick after the mutation.
//
//	bus := event.NewBus()
//	w := ecs.NewWorld(ecs.WithTracker(event.NewBusTracker(bus)))
type BusTracker struct {
	bus *Bus
}

func NewBusTracker(bus *Bus) *BusTracker {
	return &BusTracker{bus: bus}
}

func (t *BusTracker) EntityAdded(e ecs.Entity) {
	Emit(t.bus, EntityCreated{Entity: e})
}

func (t *BusTracker) EntityRemoved(e ecs.Entity) {
	Emit(t.bus, EntityDestroyed{Entity: e})
}
