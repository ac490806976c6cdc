package ecs

// indexBase is the linearised record store behind one queried type-set.
// storage holds records of stride len(types)+1: slot 0 is the entity (nil
// when tombstoned), slots 1..k the components in types order. Removal
// tombstones rather than swapping so record offsets held by in-progress
// iterators stay valid; vacated offsets are recycled through freeISs.
type indexBase struct {
	types    []typeKey // sorted by symbol, unique
	symbols  []string  // symbols of types, same order
	storage  []any
	entityIS map[Entity]int
	freeISs  []int

	addVer         uint32
	remVer         uint32
	addVerObserved bool
	remVerObserved bool
}

func newIndexBase(types []typeKey, symbols []string) *indexBase {
	return &indexBase{
		types:    types,
		symbols:  symbols,
		entityIS: make(map[Entity]int, 16),
		// Armed so the very first mutation is observable.
		addVerObserved: true,
		remVerObserved: true,
	}
}

func (ix *indexBase) stride() int {
	return len(ix.types) + 1
}

// add writes a full record for entity. comps must be in types order. An
// entity already present has its record overwritten in place.
func (ix *indexBase) add(entity Entity, comps []any) {
	off, ok := ix.entityIS[entity]
	if !ok {
		if n := len(ix.freeISs); n > 0 {
			off = ix.freeISs[n-1]
			ix.freeISs = ix.freeISs[:n-1]
		} else {
			off = len(ix.storage)
			ix.storage = append(ix.storage, make([]any, ix.stride())...)
		}
		ix.entityIS[entity] = off
	}
	ix.storage[off] = entity
	copy(ix.storage[off+1:off+ix.stride()], comps)
	if ix.addVerObserved {
		ix.addVer++
		ix.addVerObserved = false
	}
}

// emplace overwrites one component slot of an existing record. Returns
// false when the entity is not in the index yet (the caller may promote it
// via add). A type outside the index is a caller bug.
func (ix *indexBase) emplace(entity Entity, key typeKey, c any) (bool, error) {
	off, ok := ix.entityIS[entity]
	if !ok {
		return false, nil
	}
	for i, t := range ix.types {
		if t == key {
			ix.storage[off+1+i] = c
			return true, nil
		}
	}
	return false, &TypeNotInIndexError{Type: key.symbol(), IndexTypes: ix.symbols}
}

// remove tombstones the entity's record and recycles its offset.
func (ix *indexBase) remove(entity Entity) bool {
	off, ok := ix.entityIS[entity]
	if !ok {
		return false
	}
	for i := 0; i < ix.stride(); i++ {
		ix.storage[off+i] = nil
	}
	delete(ix.entityIS, entity)
	ix.freeISs = append(ix.freeISs, off)
	if ix.remVerObserved {
		ix.remVer++
		ix.remVerObserved = false
	}
	return true
}

// observeAddVer returns the add counter and arms it: the next add bumps it
// exactly once, no matter how many adds land before the next observation.
func (ix *indexBase) observeAddVer() uint32 {
	ix.addVerObserved = true
	return ix.addVer
}

func (ix *indexBase) observeRemVer() uint32 {
	ix.remVerObserved = true
	return ix.remVer
}

func (ix *indexBase) size() int {
	return len(ix.entityIS)
}
