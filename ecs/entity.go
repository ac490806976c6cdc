package ecs

import "reflect"

// Entity is an opaque identifier. Positive values are live user entities.
// Zero is reserved by the allocator and doubles as the "pool exhausted"
// return of IdPool.Reserve.
type Entity int32

const (
	// Null is the user-facing sentinel. It is never stored in the world;
	// use it as an "uninitialised" placeholder in component fields.
	Null Entity = -1

	// Singleton is the reserved entity that hosts globally-unique
	// components. It joins the live set on first RegisterSingleton call.
	Singleton Entity = -2

	// MaxEntity is the exclusive upper bound of the ID space.
	MaxEntity Entity = 1 << 30
)

// typeKey identifies a component type: either a concrete Go type or a
// named tag synthesized by TagFor. Storages, indexes and the type-set trie
// are all keyed by it.
//
// Unlike a name-keyed scheme, two independently declared types with the
// same short name in different packages get distinct keys. Tag keys carry
// a "tag:" prefix in their symbol so they can never shadow a Go type.
type typeKey struct {
	rt  reflect.Type
	tag string
}

// symbol is the canonical string form used to order type-sets and to key
// the trie. Stable for the lifetime of the process.
func (k typeKey) symbol() string {
	if k.tag != "" {
		return "tag:" + k.tag
	}
	return k.rt.String()
}

func (k typeKey) isZero() bool {
	return k.rt == nil && k.tag == ""
}

// keyOf derives the storage key of a component instance.
func keyOf(c any) typeKey {
	if t, ok := c.(Tag); ok {
		return typeKey{tag: t.name}
	}
	return typeKey{rt: reflect.TypeOf(c)}
}

// keyFor derives the key for a generic type parameter without an instance.
func keyFor[T any]() typeKey {
	var zero T
	if _, ok := any(zero).(Tag); ok {
		// A bare Tag type parameter has no name; callers must pass a
		// TagFor value through keyOf instead.
		return typeKey{}
	}
	return typeKey{rt: reflect.TypeOf((*T)(nil)).Elem()}
}
