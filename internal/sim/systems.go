package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/l1jgo/whalecs/ecs"
	"github.com/l1jgo/whalecs/event"
	"github.com/l1jgo/whalecs/internal/persist"
	"github.com/l1jgo/whalecs/system"
)

// Journal collects mutation entries during a tick; the driver flushes it
// through persist.JournalRepo after the persist phase.
type Journal struct {
	entries []persist.JournalEntry
}

func (j *Journal) Record(e persist.JournalEntry) {
	j.entries = append(j.entries, e)
}

// Drain returns the collected entries and empties the buffer.
func (j *Journal) Drain() []persist.JournalEntry {
	out := j.entries
	j.entries = nil
	return out
}

// EventSystem rotates and dispatches the event bus at tick start, so
// handlers see last tick's lifecycle events.
type EventSystem struct {
	bus *event.Bus
}

func NewEventSystem(bus *event.Bus) *EventSystem {
	return &EventSystem{bus: bus}
}

func (s *EventSystem) Phase() system.Phase { return system.PhasePreUpdate }

func (s *EventSystem) Update(time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// MovementSystem applies velocities through a (Position, Velocity)
// index.
type MovementSystem struct {
	it *ecs.Iterator
}

func NewMovementSystem(w *ecs.World) (*MovementSystem, error) {
	it, err := w.Index(ecs.Spec{"pos": (*Position)(nil), "vel": (*Velocity)(nil)})
	if err != nil {
		return nil, err
	}
	return &MovementSystem{it: it}, nil
}

func (s *MovementSystem) Phase() system.Phase { return system.PhaseUpdate }

func (s *MovementSystem) Update(time.Duration) {
	for s.it.Start(); s.it.Next(); {
		pos := ecs.At[*Position](s.it, "pos")
		vel := ecs.At[*Velocity](s.it, "vel")
		pos.X += vel.DX
		pos.Y += vel.DY
	}
}

// DecaySystem counts down Lifetime components and queues expired
// entities. Destruction is deferred to CleanupSystem: mutating the index
// mid-walk is the caller's problem, so we don't.
type DecaySystem struct {
	it      *ecs.Iterator
	expired *[]ecs.Entity
}

func NewDecaySystem(w *ecs.World, expired *[]ecs.Entity) (*DecaySystem, error) {
	it, err := w.Index(ecs.Spec{"life": (*Lifetime)(nil)})
	if err != nil {
		return nil, err
	}
	return &DecaySystem{it: it, expired: expired}, nil
}

func (s *DecaySystem) Phase() system.Phase { return system.PhasePostUpdate }

func (s *DecaySystem) Update(time.Duration) {
	for s.it.Start(); s.it.Next(); {
		life := ecs.At[*Lifetime](s.it, "life")
		life.TicksLeft--
		if life.TicksLeft <= 0 {
			*s.expired = append(*s.expired, s.it.Entity())
		}
	}
}

// CleanupSystem destroys queued entities at tick end and records them in
// the journal.
type CleanupSystem struct {
	w       *ecs.World
	expired *[]ecs.Entity
	journal *Journal
	log     *zap.Logger
}

func NewCleanupSystem(w *ecs.World, expired *[]ecs.Entity, journal *Journal, log *zap.Logger) *CleanupSystem {
	return &CleanupSystem{w: w, expired: expired, journal: journal, log: log}
}

func (s *CleanupSystem) Phase() system.Phase { return system.PhaseCleanup }

func (s *CleanupSystem) Update(time.Duration) {
	for _, e := range *s.expired {
		if !s.w.Destroy(e) {
			continue
		}
		if s.journal != nil {
			s.journal.Record(persist.JournalEntry{Op: "destroy", Entity: e})
		}
		s.log.Debug("entity expired", zap.Int32("entity", int32(e)))
	}
	*s.expired = (*s.expired)[:0]
}
