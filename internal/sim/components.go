// Package sim is the demo simulation that exercises the engine end to
// end: prefab-spawned entities move, decay and get culled, with every
// mutation observable on the event bus and the mutation journal.
package sim

import "github.com/l1jgo/whalecs/internal/codec"

type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

type Velocity struct {
	DX int `json:"dx"`
	DY int `json:"dy"`
}

type Health struct {
	HP int `json:"hp"`
}

// Lifetime culls its entity when TicksLeft reaches zero.
type Lifetime struct {
	TicksLeft int `json:"ticks_left"`
}

// RegisterComponents binds the simulation components into a codec
// registry, for prefabs, snapshots and scripting.
func RegisterComponents(reg *codec.Registry) {
	codec.Register[Position](reg, "Position")
	codec.Register[Velocity](reg, "Velocity")
	codec.Register[Health](reg, "Health")
	codec.Register[Lifetime](reg, "Lifetime")
}
