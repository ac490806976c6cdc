package ecs

import (
	"errors"
	"strings"
)

// ErrEmptyView is returned for a View over zero component types.
var ErrEmptyView = errors.New("view requires at least one component type")

// View is the legacy callback-style query: a thin façade over the
// per-type storages that re-walks the world on every Each call. Prefer
// Index for hot paths; Views carry no state to keep coherent.
type View struct {
	w    *World
	keys []typeKey
}

// View returns the view over the given component types (samples, in the
// order the callback will receive them). One View per distinct type
// tuple is cached on the World.
func (w *World) View(samples ...any) (*View, error) {
	if len(samples) == 0 {
		return nil, ErrEmptyView
	}
	keys := make([]typeKey, len(samples))
	var sb strings.Builder
	for i, s := range samples {
		keys[i] = keyOf(s)
		sb.WriteString(keys[i].symbol())
		sb.WriteByte('|')
	}
	cacheKey := sb.String()
	if v, ok := w.views[cacheKey]; ok {
		return v, nil
	}
	v := &View{w: w, keys: keys}
	w.views[cacheKey] = v
	return v, nil
}

// Each invokes fn for every entity holding all of the view's types, with
// components in the view's type order. Return false to stop early. The
// comps slice is reused between invocations; don't retain it.
//
// Mutating the world during the walk for types that overlap the view's
// is memory-safe but unspecified: new matches may or may not be visited
// and destroyed entities may be skipped.
func (v *View) Each(fn func(e Entity, comps []any) bool) {
	// Probe order: walk the smallest member storage, check the rest.
	var pivot *typeStore
	for _, key := range v.keys {
		st, ok := v.w.stores[key]
		if !ok {
			return
		}
		if pivot == nil || st.set.Size() < pivot.set.Size() {
			pivot = st
		}
	}
	comps := make([]any, len(v.keys))
	for i := 0; i < pivot.set.Size(); i++ {
		e := slotEntity(pivot.set.dense[i])
		match := true
		for j, key := range v.keys {
			c, ok := v.w.stores[key].get(e)
			if !ok {
				match = false
				break
			}
			comps[j] = c
		}
		if !match {
			continue
		}
		if !fn(e, comps) {
			return
		}
	}
}
