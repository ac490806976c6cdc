package event

import "github.com/l1jgo/whalecs/ecs"

// Entity lifecycle events, emitted by BusTracker.

type EntityCreated struct {
	Entity ecs.Entity
}

type EntityDestroyed struct {
	Entity ecs.Entity
}
