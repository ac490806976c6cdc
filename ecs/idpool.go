package ecs

import "sort"

// interval is a half-open [left, right) range of free IDs.
type interval struct {
	left, right Entity
}

// IdPool allocates and recycles positive entity IDs. It keeps a sorted
// list of disjoint free intervals, initially [1, MaxEntity), so Reserve
// always returns the smallest free integer. 0 is never handed out.
type IdPool struct {
	free []interval
}

func NewIdPool() *IdPool {
	return &IdPool{free: []interval{{left: 1, right: MaxEntity}}}
}

// Reserve returns the smallest free ID, or 0 when the pool is exhausted.
func (p *IdPool) Reserve() Entity {
	if len(p.free) == 0 {
		return 0
	}
	id := p.free[0].left
	p.free[0].left++
	if p.free[0].left >= p.free[0].right {
		p.free = p.free[1:]
	}
	return id
}

// Acquire carves a specific ID out of the free space, for caller-supplied
// IDs (World.Insert). Returns false when the ID is out of range or already
// reserved.
func (p *IdPool) Acquire(id Entity) bool {
	if id <= 0 || id >= MaxEntity {
		return false
	}
	i := p.findContaining(id)
	if i < 0 {
		return false
	}
	iv := p.free[i]
	switch {
	case iv.left == id && iv.right == id+1:
		p.free = append(p.free[:i], p.free[i+1:]...)
	case iv.left == id:
		p.free[i].left = id + 1
	case iv.right == id+1:
		p.free[i].right = id
	default:
		p.free = append(p.free, interval{})
		copy(p.free[i+2:], p.free[i+1:])
		p.free[i] = interval{left: iv.left, right: id}
		p.free[i+1] = interval{left: id + 1, right: iv.right}
	}
	return true
}

// Release returns an ID to the pool, coalescing with adjacent free
// intervals. Out-of-range and already-free IDs are rejected with false;
// the free list stays totally ordered either way.
func (p *IdPool) Release(id Entity) bool {
	if id <= 0 || id >= MaxEntity {
		return false
	}
	if p.findContaining(id) >= 0 {
		return false
	}
	// Insertion point: first interval starting past id.
	i := sort.Search(len(p.free), func(j int) bool { return p.free[j].left > id })

	joinPrev := i > 0 && p.free[i-1].right == id
	joinNext := i < len(p.free) && p.free[i].left == id+1
	switch {
	case joinPrev && joinNext:
		p.free[i-1].right = p.free[i].right
		p.free = append(p.free[:i], p.free[i+1:]...)
	case joinPrev:
		p.free[i-1].right = id + 1
	case joinNext:
		p.free[i].left = id
	default:
		p.free = append(p.free, interval{})
		copy(p.free[i+1:], p.free[i:])
		p.free[i] = interval{left: id, right: id + 1}
	}
	return true
}

// FreeCount reports how many IDs are currently free.
func (p *IdPool) FreeCount() int {
	n := 0
	for _, iv := range p.free {
		n += int(iv.right - iv.left)
	}
	return n
}

// findContaining returns the index of the free interval holding id, or -1.
func (p *IdPool) findContaining(id Entity) int {
	i := sort.Search(len(p.free), func(j int) bool { return p.free[j].right > id })
	if i < len(p.free) && p.free[i].left <= id {
		return i
	}
	return -1
}
