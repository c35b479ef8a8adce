package ecsquery

import "fmt"

// WorldOptions configures a World at construction time. There is no
// environment-variable or config-file layer: a query-core library embedded
// in a game loop has no business reading its own config.
type WorldOptions struct {
	// InitialCapacity is the initial capacity of each new archetype's
	// entity-id array. It does not presize the entity-meta table or the
	// component columns. Zero or a negative value selects the default.
	InitialCapacity int
}

const defaultInitialCapacity = 1024

// World owns the archetype set and the entity-metadata table, the two
// external collaborators the query core needs to walk archetypes and
// resolve entity generations. It also supplies the mutation operations
// (spawn/despawn/add/remove component) that sit outside query iteration
// itself but are necessary for this package to be a runnable, testable
// store rather than a core with no caller.
//
// Entity IDs are recycled through a free list, archetypes are keyed by
// shape in a map plus an ordered slice for deterministic iteration, and
// add/remove moves run through precomputed per-(archetype, component)
// transitions so repeated migrations stay allocation-light.
type World struct {
	nextEntityID    uint32
	freeEntityIDs   []uint32
	meta            entityMetaTable
	archetypes      map[mask]*Archetype
	archetypeList   []*Archetype
	nextArchetypeID uint32
	initialCapacity int

	addTransitions    map[*Archetype]map[ComponentID]*transition
	removeTransitions map[*Archetype]map[ComponentID]*transition

	// liveBorrows counts QueryBorrow/QueryIter instances that have acquired
	// column borrows and not yet released them. Non-zero blocks structural
	// mutation: inserting/removing components, spawning, or despawning
	// entities while any query borrow is live.
	liveBorrows int
}

// transition caches the target archetype and the per-column copy plan for
// an add-component or remove-component move, keyed by the component being
// added/removed.
type transition struct {
	target *Archetype
	copies []copyOp
}

type copyOp struct {
	fromSlot int
	toSlot   int
	size     int
}

// NewWorld creates a World with default capacity.
func NewWorld() *World {
	return NewWorldWithOptions(WorldOptions{})
}

// NewWorldWithOptions creates a World with the given options.
func NewWorldWithOptions(opts WorldOptions) *World {
	cap := opts.InitialCapacity
	if cap <= 0 {
		cap = defaultInitialCapacity
	}
	w := &World{
		archetypes:        make(map[mask]*Archetype, 16),
		archetypeList:     make([]*Archetype, 0, 16),
		initialCapacity:   cap,
		addTransitions:    make(map[*Archetype]map[ComponentID]*transition),
		removeTransitions: make(map[*Archetype]map[ComponentID]*transition),
	}
	w.getOrCreateArchetype(mask{})
	return w
}

func (w *World) getOrCreateArchetype(shape mask) *Archetype {
	if a, ok := w.archetypes[shape]; ok {
		return a
	}
	a := newArchetype(w.nextArchetypeID, shape, w.initialCapacity)
	w.nextArchetypeID++
	w.archetypes[shape] = a
	w.archetypeList = append(w.archetypeList, a)
	return a
}

func (w *World) checkNoLiveBorrow(op string) {
	if w.liveBorrows > 0 {
		panic(fmt.Sprintf("ecsquery: cannot %s while a query borrow is live", op))
	}
}

// CreateEntity spawns a new entity with no components, in the empty
// archetype.
func (w *World) CreateEntity() Entity {
	w.checkNoLiveBorrow("spawn an entity")
	return w.spawnInto(w.getOrCreateArchetype(mask{}))
}

func (w *World) allocID() uint32 {
	if n := len(w.freeEntityIDs); n > 0 {
		id := w.freeEntityIDs[n-1]
		w.freeEntityIDs = w.freeEntityIDs[:n-1]
		return id
	}
	id := w.nextEntityID
	w.nextEntityID++
	return id
}

func (w *World) spawnInto(a *Archetype) Entity {
	id := w.allocID()
	w.meta.ensure(id)
	gen := w.meta.rows[id].generation
	if gen == 0 {
		gen = 1
	}
	row := a.grow(1)
	a.entityIDs[row] = id
	w.meta.rows[id] = entityMeta{archetype: a, index: row, generation: gen}
	return Entity{ID: id, Generation: gen}
}

// DespawnEntity removes e from its archetype and recycles its id. A stale
// (already-despawned, or never-spawned) entity is silently ignored.
func (w *World) DespawnEntity(e Entity) {
	w.checkNoLiveBorrow("despawn an entity")
	if !w.IsAlive(e) {
		return
	}
	meta := w.meta.rows[e.ID]
	a := meta.archetype
	movedID, moved := a.swapRemove(meta.index)
	if moved {
		w.meta.rows[movedID].index = meta.index
	}
	nextGen := meta.generation + 1
	if nextGen == 0 {
		nextGen = 1
	}
	w.meta.rows[e.ID] = entityMeta{generation: nextGen}
	w.freeEntityIDs = append(w.freeEntityIDs, e.ID)
}

// IsAlive reports whether e still refers to a live entity (its generation
// matches the current occupant of its id slot).
func (w *World) IsAlive(e Entity) bool {
	if int(e.ID) >= len(w.meta.rows) {
		return false
	}
	row := w.meta.rows[e.ID]
	return row.archetype != nil && row.generation == e.Generation
}

// Generation returns the current generation stored at id, the lookup the
// query core consults when combining a row's bare entity id with its
// generation at yield time.
func (w *World) Generation(id uint32) uint32 {
	return w.meta.generation(id)
}

// Clear removes every entity from every archetype without discarding the
// registered archetype shapes, so existing archetype pointers (e.g. those
// cached by a Spawner) remain usable for future spawns.
func (w *World) Clear() {
	w.checkNoLiveBorrow("clear the world")
	for _, a := range w.archetypeList {
		a.entityIDs = a.entityIDs[:0]
		for i := range a.columns {
			a.columns[i].data = a.columns[i].data[:0]
		}
	}
	w.meta = entityMetaTable{}
	w.freeEntityIDs = w.freeEntityIDs[:0]
	w.nextEntityID = 0
}

// acquireBorrowSlot / releaseBorrowSlot are called by QueryBorrow around
// its live window; see queryborrow.go.
func (w *World) acquireBorrowSlot() { w.liveBorrows++ }
func (w *World) releaseBorrowSlot() { w.liveBorrows-- }
