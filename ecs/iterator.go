package ecs

// Iterator is a reusable cursor over one index. The idiom is
//
//	for it.Start(); it.Next(); {
//	    e := it.Entity()
//	    pos := ecs.At[*Position](it, "pos")
//	    ...
//	}
//
// During a Start..Next walk the caller must not mutate the bound index
// (nor run any World operation that would); tombstoned removal keeps the
// cursor valid for removes of visited records, but adds may land before
// or after the cursor depending on free-slot reuse.
type Iterator struct {
	ix      *indexBase
	aliases []string // same order as ix.types; "" marks witness-only
	comps   []any    // parallel to aliases; stays nil for witness slots

	entity     Entity
	iS         int
	addVerSeen uint32
	remVerSeen uint32
}

func newIterator(ix *indexBase, aliases []string) *Iterator {
	it := &Iterator{
		ix:      ix,
		aliases: aliases,
		comps:   make([]any, len(aliases)),
		// Counter snapshots at construction: the first WasAddedTo /
		// WasRemovedFrom call reports false.
		addVerSeen: ix.observeAddVer(),
		remVerSeen: ix.observeRemVer(),
	}
	it.Start()
	return it
}

// Start resets the cursor before a fresh pass and clears exposed fields.
// Returns the iterator for chaining.
func (it *Iterator) Start() *Iterator {
	it.iS = -it.ix.stride()
	it.entity = Null
	for i := range it.comps {
		it.comps[i] = nil
	}
	return it
}

// Next advances past tombstones to the following live record. Reports
// false on exhaustion, leaving the exposed fields cleared.
func (it *Iterator) Next() bool {
	stride := it.ix.stride()
	it.iS += stride
	for it.iS < len(it.ix.storage) && it.ix.storage[it.iS] == nil {
		it.iS += stride
	}
	if it.iS >= len(it.ix.storage) {
		it.entity = Null
		for i := range it.comps {
			it.comps[i] = nil
		}
		return false
	}
	it.entity = it.ix.storage[it.iS].(Entity)
	for i, alias := range it.aliases {
		if alias == "" {
			continue
		}
		it.comps[i] = it.ix.storage[it.iS+1+i]
	}
	return true
}

// First is shorthand for Start().Next().
func (it *Iterator) First() bool {
	return it.Start().Next()
}

// Entity returns the entity at the cursor, or Null outside a hit.
func (it *Iterator) Entity() Entity {
	return it.entity
}

// Component returns the component bound to alias at the cursor. Witness
// aliases and unknown aliases yield nil.
func (it *Iterator) Component(alias string) any {
	for i, a := range it.aliases {
		if a == alias {
			return it.comps[i]
		}
	}
	return nil
}

// At is the typed convenience over Iterator.Component.
func At[T any](it *Iterator, alias string) T {
	c, _ := it.Component(alias).(T)
	return c
}

// WasAddedTo reports whether any entity entered the index since the last
// call (or construction). A coarse monotonic hint: it does not identify
// which entities changed, and an add+remove round trip still reads as
// both added and removed.
func (it *Iterator) WasAddedTo() bool {
	if v := it.ix.observeAddVer(); v != it.addVerSeen {
		it.addVerSeen = v
		return true
	}
	return false
}

// WasRemovedFrom is the removal counterpart of WasAddedTo.
func (it *Iterator) WasRemovedFrom() bool {
	if v := it.ix.observeRemVer(); v != it.remVerSeen {
		it.remVerSeen = v
		return true
	}
	return false
}

// WasChanged reports either kind of change. Both counters are consumed.
func (it *Iterator) WasChanged() bool {
	added := it.WasAddedTo()
	removed := it.WasRemovedFrom()
	return added || removed
}
