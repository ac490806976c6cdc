package ecs

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Added is implemented by components that want a callback when attached
// to an entity. Emplace calls it after the component is stored; Create and
// Insert call it just before storing each component.
type Added interface {
	Added(e Entity)
}

// Removed is implemented by components that want a callback when detached
// from an entity. Remove calls it after the component has left its
// storage; Destroy calls it just before dropping each component from its
// storage, once the entity has already left the live set.
type Removed interface {
	Removed(e Entity)
}

// Freer is implemented by components that own external resources. Free
// runs during Destroy, strictly after the entity has left every storage
// and index, so it may legally re-enter World.Destroy.
type Freer interface {
	Free(w *World, e Entity)
}

// Tracker observes entity lifecycle. See event.BusTracker for the bus
// adapter.
type Tracker interface {
	EntityAdded(e Entity)
	EntityRemoved(e Entity)
}

// Spec declares an index: alias → component type sample. Aliases whose
// first character is '_' are witness-only: the type must be present on an
// entity for it to appear in the index, but the iterator exposes no field
// for it.
type Spec map[string]any

// ErrIDSpaceExhausted is returned by Create when the allocator has no
// free IDs left.
var ErrIDSpaceExhausted = errors.New("entity id space exhausted")

// ErrEmptySpec is returned by Index for a spec with no types.
var ErrEmptySpec = errors.New("index spec requires at least one component type")

// typeStore is the per-type component storage: a sparse set of entity
// slots plus a component slice parallel to its dense array. Swap-on-remove
// in the set is mirrored on the components.
type typeStore struct {
	set   *SparseSet
	comps []any
}

// slotOf maps an entity to its sparse-set slot. Slot 0 belongs to the
// singleton entity; the allocator never issues 0, so slots are unique.
func slotOf(e Entity) int32 {
	if e == Singleton {
		return 0
	}
	return int32(e)
}

func slotEntity(v int32) Entity {
	if v == 0 {
		return Singleton
	}
	return Entity(v)
}

func (st *typeStore) add(e Entity, c any) error {
	slot := slotOf(e)
	if st.set.Has(slot) {
		st.comps[st.set.Get(slot)] = c
		return nil
	}
	idx, err := st.set.Add(slot)
	if err != nil {
		return err
	}
	if idx < len(st.comps) {
		st.comps[idx] = c
	} else {
		st.comps = append(st.comps, c)
	}
	return nil
}

func (st *typeStore) get(e Entity) (any, bool) {
	slot := slotOf(e)
	if !st.set.Has(slot) {
		return nil, false
	}
	return st.comps[st.set.Get(slot)], true
}

func (st *typeStore) has(e Entity) bool {
	return st.set.Has(slotOf(e))
}

func (st *typeStore) remove(e Entity) {
	slot := slotOf(e)
	if !st.set.Has(slot) {
		return
	}
	idx := st.set.Get(slot)
	last := st.set.Size() - 1
	st.comps[idx] = st.comps[last]
	st.comps[last] = nil
	st.comps = st.comps[:last]
	st.set.Remove(slot)
}

// assembled is one (type, component) pair during Create/Insert/Index
// argument processing.
type assembled struct {
	key  typeKey
	sym  string
	comp any
}

// World owns entities, per-type storages and registered indexes, and
// routes every mutation to the affected indexes through the type-set
// trie. Single-writer: not safe for concurrent mutation.
type World struct {
	log           *zap.Logger
	pool          *IdPool
	entities      *SparseSet // live user entities; singleton tracked apart
	singletonLive bool
	stores        map[typeKey]*typeStore
	indexTrie     *trie[*indexBase]
	indexesByType map[typeKey][]*indexBase
	views         map[string]*View
	tracker       Tracker
	entityCap     int

	// Shared scratch, valid only within one public call. Destroy keeps
	// its collection buffers on the stack so Free hooks can re-enter it;
	// Create and Insert are not re-entrant from Added hooks.
	subIt         *trieSubIterator[*indexBase]
	scratchAsm    []assembled
	scratchSyms   []string
	scratchGather []any
}

// Option configures a World at construction.
type Option func(*World)

// WithLogger attaches a structured logger; index registration, seeding
// and clears log at debug level. Default is a nop logger.
func WithLogger(log *zap.Logger) Option {
	return func(w *World) { w.log = log }
}

// WithTracker attaches an entity lifecycle tracker.
func WithTracker(t Tracker) Option {
	return func(w *World) { w.tracker = t }
}

// WithEntityCapacity pre-sizes the live set and new per-type storages.
func WithEntityCapacity(n int) Option {
	return func(w *World) { w.entityCap = n }
}

func NewWorld(opts ...Option) *World {
	w := &World{
		log:           zap.NewNop(),
		pool:          NewIdPool(),
		stores:        make(map[typeKey]*typeStore, 16),
		indexTrie:     newTrie[*indexBase](),
		indexesByType: make(map[typeKey][]*indexBase, 16),
		views:         make(map[string]*View, 4),
		entityCap:     256,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.entities = NewSparseSet(w.entityCap)
	w.subIt = newTrieSubIterator(w.indexTrie, nil)
	return w
}

// Create allocates a fresh entity carrying the given components. Fails
// with DuplicateComponentTypeError before any state changes when a type
// repeats.
func (w *World) Create(comps ...any) (Entity, error) {
	asm, err := w.assemble(comps, "create")
	if err != nil {
		return Null, err
	}
	e := w.pool.Reserve()
	if e == 0 {
		w.resetScratch()
		return Null, ErrIDSpaceExhausted
	}
	if _, err := w.entities.Add(int32(e)); err != nil {
		w.pool.Release(e)
		w.resetScratch()
		return Null, err
	}
	if w.tracker != nil {
		w.tracker.EntityAdded(e)
	}
	if err := w.attach(e, asm); err != nil {
		w.resetScratch()
		return Null, err
	}
	w.reindex(e, w.symbolsOf(asm))
	w.resetScratch()
	return e, nil
}

// Insert is Create with a caller-supplied ID. An already-live entity
// keeps its components of types not in the supplied set; a free ID is
// carved out of the allocator.
func (w *World) Insert(e Entity, comps ...any) error {
	asm, err := w.assemble(comps, "insert")
	if err != nil {
		return err
	}
	if !w.alive(e) {
		if !w.pool.Acquire(e) {
			w.resetScratch()
			return fmt.Errorf("insert: id %d out of range", e)
		}
		if _, err := w.entities.Add(int32(e)); err != nil {
			w.pool.Release(e)
			w.resetScratch()
			return err
		}
		if w.tracker != nil {
			w.tracker.EntityAdded(e)
		}
	}
	if err := w.attach(e, asm); err != nil {
		w.resetScratch()
		return err
	}
	// Index routing needs the entity's full type set, not just the
	// supplied one.
	w.reindex(e, w.typeSymbols(e))
	w.resetScratch()
	return nil
}

// Emplace attaches one component to a live entity, updating every index
// that includes its type. An entity that now holds all of an index's
// types is promoted into it.
func (w *World) Emplace(e Entity, c any) error {
	key := keyOf(c)
	if !w.alive(e) {
		return &DeadEntityError{Type: key.symbol(), Entity: e}
	}
	st := w.storeFor(key)
	if err := st.add(e, c); err != nil {
		return err
	}
	if hook, ok := c.(Added); ok {
		hook.Added(e)
	}
	for _, ix := range w.indexesByType[key] {
		done, err := ix.emplace(e, key, c)
		if err != nil {
			return err
		}
		if done {
			continue
		}
		w.scratchGather = w.scratchGather[:0]
		complete := true
		for _, t := range ix.types {
			if t == key {
				w.scratchGather = append(w.scratchGather, c)
				continue
			}
			other, ok := w.stores[t]
			if !ok {
				complete = false
				break
			}
			cc, ok := other.get(e)
			if !ok {
				complete = false
				break
			}
			w.scratchGather = append(w.scratchGather, cc)
		}
		if complete {
			ix.add(e, w.scratchGather)
		}
	}
	return nil
}

// Remove detaches the component of sample's type from the entity and
// returns it; ownership passes back to the caller (Free is not invoked).
// Missing component, dead entity or unknown type all yield nil.
func (w *World) Remove(e Entity, sample any) any {
	key := keyOf(sample)
	st, ok := w.stores[key]
	if !ok || !st.has(e) {
		return nil
	}
	c, _ := st.get(e)
	st.remove(e)
	if hook, ok := c.(Removed); ok {
		hook.Removed(e)
	}
	for _, ix := range w.indexesByType[key] {
		ix.remove(e)
	}
	return c
}

// Get returns the component of sample's type on the entity, or nil.
func (w *World) Get(e Entity, sample any) any {
	st, ok := w.stores[keyOf(sample)]
	if !ok {
		return nil
	}
	c, _ := st.get(e)
	return c
}

// Has reports whether the entity holds a component of sample's type.
func (w *World) Has(e Entity, sample any) bool {
	st, ok := w.stores[keyOf(sample)]
	return ok && st.has(e)
}

// Lookup is the typed convenience over World.Get. T must be the stored
// type, usually a pointer: Lookup[*Position](w, e).
func Lookup[T any](w *World, e Entity) (T, bool) {
	var zero T
	key := keyFor[T]()
	if key.isZero() {
		return zero, false
	}
	st, ok := w.stores[key]
	if !ok {
		return zero, false
	}
	c, ok := st.get(e)
	if !ok {
		return zero, false
	}
	return c.(T), true
}

// Destroy removes the entity from every storage and index, then runs the
// components' Free hooks. Reports false for dead or never-created IDs.
// Free hooks may re-enter Destroy: the entity is unregistered before any
// hook runs, and Destroy keeps its working state on the stack.
func (w *World) Destroy(e Entity) bool {
	if !w.alive(e) {
		return false
	}
	if e == Singleton {
		w.singletonLive = false
	} else {
		w.entities.Remove(int32(e))
	}

	var freed []any
	var syms []string
	for key, st := range w.stores {
		c, ok := st.get(e)
		if !ok {
			continue
		}
		if hook, ok := c.(Removed); ok {
			hook.Removed(e)
		}
		st.remove(e)
		freed = append(freed, c)
		syms = append(syms, key.symbol())
	}
	sort.Strings(syms)

	w.subIt.reset(syms, nil)
	for {
		ix, ok := w.subIt.next()
		if !ok {
			break
		}
		ix.remove(e)
	}

	if e != Singleton {
		w.pool.Release(e)
	}
	if w.tracker != nil {
		w.tracker.EntityRemoved(e)
	}
	for _, c := range freed {
		if hook, ok := c.(Freer); ok {
			hook.Free(w, e)
		}
	}
	return true
}

// Index returns a fresh iterator over the index described by spec,
// constructing and seeding the index on first use. Equivalent specs share
// one underlying index; iterators are independent.
func (w *World) Index(spec Spec) (*Iterator, error) {
	if len(spec) == 0 {
		return nil, ErrEmptySpec
	}
	type specEntry struct {
		alias string
		key   typeKey
		sym   string
	}
	entries := make([]specEntry, 0, len(spec))
	for alias, sample := range spec {
		key := keyOf(sample)
		entries = append(entries, specEntry{alias: alias, key: key, sym: key.symbol()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].sym < entries[j].sym })
	for i := 1; i < len(entries); i++ {
		if entries[i].sym == entries[i-1].sym {
			return nil, &DuplicateComponentTypeError{Type: entries[i].sym, Context: "index spec"}
		}
	}

	syms := make([]string, len(entries))
	types := make([]typeKey, len(entries))
	aliases := make([]string, len(entries))
	for i, en := range entries {
		syms[i] = en.sym
		types[i] = en.key
		if strings.HasPrefix(en.alias, "_") {
			aliases[i] = "" // witness-only: required, never exposed
		} else {
			aliases[i] = en.alias
		}
	}

	ix, ok := w.indexTrie.get(syms)
	if !ok {
		ix = newIndexBase(types, syms)
		w.indexTrie.set(syms, ix)
		for _, t := range types {
			w.indexesByType[t] = append(w.indexesByType[t], ix)
		}
		w.seedIndex(ix)
		w.log.Debug("index registered",
			zap.Strings("types", syms),
			zap.Int("seeded", ix.size()))
	}
	return newIterator(ix, aliases), nil
}

// seedIndex adds every live entity holding all of the index's types.
func (w *World) seedIndex(ix *indexBase) {
	seedOne := func(e Entity) {
		w.scratchGather = w.scratchGather[:0]
		for _, t := range ix.types {
			st, ok := w.stores[t]
			if !ok {
				return
			}
			c, ok := st.get(e)
			if !ok {
				return
			}
			w.scratchGather = append(w.scratchGather, c)
		}
		ix.add(e, w.scratchGather)
	}
	for _, v := range w.entities.Values() {
		seedOne(slotEntity(v))
	}
	if w.singletonLive {
		seedOne(Singleton)
	}
}

// Clear destroys every entity, singleton included, running Free hooks.
// The allocator gets every ID back, so fresh worlds and cleared worlds
// issue the same sequence.
func (w *World) Clear() {
	for w.entities.Size() > 0 {
		w.Destroy(slotEntity(w.entities.Values()[0]))
	}
	if w.singletonLive {
		w.Destroy(Singleton)
	}
	w.log.Debug("world cleared")
}

// All returns a snapshot of the live user entities. The singleton is not
// included.
func (w *World) All() []Entity {
	out := make([]Entity, 0, w.entities.Size())
	for _, v := range w.entities.Values() {
		out = append(out, slotEntity(v))
	}
	return out
}

// Size reports the number of live user entities.
func (w *World) Size() int {
	return w.entities.Size()
}

// Exists reports liveness of e. Null and never-created IDs are dead.
func (w *World) Exists(e Entity) bool {
	return w.alive(e)
}

// Components returns the entity's components ordered by type symbol.
func (w *World) Components(e Entity) []any {
	var asm []assembled
	for key, st := range w.stores {
		if c, ok := st.get(e); ok {
			asm = append(asm, assembled{sym: key.symbol(), comp: c})
		}
	}
	sort.Slice(asm, func(i, j int) bool { return asm[i].sym < asm[j].sym })
	out := make([]any, len(asm))
	for i, a := range asm {
		out[i] = a.comp
	}
	return out
}

func (w *World) alive(e Entity) bool {
	if e == Singleton {
		return w.singletonLive
	}
	return e > 0 && w.entities.Has(int32(e))
}

func (w *World) storeFor(key typeKey) *typeStore {
	st, ok := w.stores[key]
	if !ok {
		st = &typeStore{set: NewSparseSet(w.entityCap)}
		w.stores[key] = st
	}
	return st
}

// assemble sorts and validates a component argument list into the shared
// scratch buffer. The scratch stays clean across the error return.
func (w *World) assemble(comps []any, context string) ([]assembled, error) {
	w.scratchAsm = w.scratchAsm[:0]
	for _, c := range comps {
		key := keyOf(c)
		w.scratchAsm = append(w.scratchAsm, assembled{key: key, sym: key.symbol(), comp: c})
	}
	sort.Slice(w.scratchAsm, func(i, j int) bool { return w.scratchAsm[i].sym < w.scratchAsm[j].sym })
	for i := 1; i < len(w.scratchAsm); i++ {
		if w.scratchAsm[i].sym == w.scratchAsm[i-1].sym {
			sym := w.scratchAsm[i].sym
			w.resetScratch()
			return nil, &DuplicateComponentTypeError{Type: sym, Context: context}
		}
	}
	return w.scratchAsm, nil
}

// attach stores the assembled components on e, invoking Added hooks.
func (w *World) attach(e Entity, asm []assembled) error {
	for _, a := range asm {
		if hook, ok := a.comp.(Added); ok {
			hook.Added(e)
		}
		if err := w.storeFor(a.key).add(e, a.comp); err != nil {
			return err
		}
	}
	return nil
}

// reindex walks the subsequence trie with the entity's sorted type
// symbols and refreshes every matching index record.
func (w *World) reindex(e Entity, syms []string) {
	w.subIt.reset(syms, nil)
	for {
		ix, ok := w.subIt.next()
		if !ok {
			break
		}
		w.scratchGather = w.scratchGather[:0]
		for _, t := range ix.types {
			c, _ := w.stores[t].get(e)
			w.scratchGather = append(w.scratchGather, c)
		}
		ix.add(e, w.scratchGather)
	}
}

// symbolsOf projects sorted assembled entries onto the shared symbol
// scratch.
func (w *World) symbolsOf(asm []assembled) []string {
	w.scratchSyms = w.scratchSyms[:0]
	for _, a := range asm {
		w.scratchSyms = append(w.scratchSyms, a.sym)
	}
	return w.scratchSyms
}

// typeSymbols collects the entity's full sorted type-symbol list.
func (w *World) typeSymbols(e Entity) []string {
	w.scratchSyms = w.scratchSyms[:0]
	for key, st := range w.stores {
		if st.has(e) {
			w.scratchSyms = append(w.scratchSyms, key.symbol())
		}
	}
	sort.Strings(w.scratchSyms)
	return w.scratchSyms
}

func (w *World) resetScratch() {
	w.scratchAsm = w.scratchAsm[:0]
	w.scratchSyms = w.scratchSyms[:0]
	w.scratchGather = w.scratchGather[:0]
}
