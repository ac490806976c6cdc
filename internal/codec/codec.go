// Package codec maps component types to named byte payloads, so the
// persistence and prefab layers can move components across process
// boundaries without knowing their Go types.
package codec

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/goccy/go-json"
)

type entry struct {
	decode func(data []byte) (any, error)
	sample any
}

// Registry maps component names to encode/decode functions. Components
// register as pointer types: Register[Position](r, "Position") stores and
// restores *Position values.
type Registry struct {
	byName map[string]entry
	names  map[reflect.Type]string
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]entry, 16),
		names:  make(map[reflect.Type]string, 16),
	}
}

// Register binds name to component type T. Later registrations of the
// same name win.
func Register[T any](r *Registry, name string) {
	r.byName[name] = entry{
		decode: func(data []byte) (any, error) {
			c := new(T)
			if err := json.Unmarshal(data, c); err != nil {
				return nil, fmt.Errorf("decode %s: %w", name, err)
			}
			return c, nil
		},
		sample: (*T)(nil),
	}
	r.names[reflect.TypeOf((*T)(nil))] = name
}

// NameFor returns the registered name of a component instance.
func (r *Registry) NameFor(c any) (string, bool) {
	name, ok := r.names[reflect.TypeOf(c)]
	return name, ok
}

// Encode serialises a component to its name and payload. Unregistered
// types fail.
func (r *Registry) Encode(c any) (string, []byte, error) {
	name, ok := r.NameFor(c)
	if !ok {
		return "", nil, fmt.Errorf("encode: unregistered component type %T", c)
	}
	data, err := json.Marshal(c)
	if err != nil {
		return "", nil, fmt.Errorf("encode %s: %w", name, err)
	}
	return name, data, nil
}

// Decode restores a component from its name and payload.
func (r *Registry) Decode(name string, data []byte) (any, error) {
	en, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("decode: unknown component name %q", name)
	}
	return en.decode(data)
}

// Sample returns a typed nil pointer for name, usable as an ecs type
// sample in Get/Has/Remove calls.
func (r *Registry) Sample(name string) (any, bool) {
	en, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return en.sample, true
}

// Names returns the registered component names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.byName))
	for name := range r.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
