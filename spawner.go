package ecsquery

// Spawner creates many entities of one fixed shape in a single archetype
// growth call, instead of paying the per-entity archetype lookup and
// append-by-one cost CreateEntity/SetComponent incur. Named Spawner rather
// than Batch to avoid colliding with this package's own Batch/BatchedIter,
// which partition rows for parallel consumption, an unrelated concern.
type Spawner struct {
	world     *World
	archetype *Archetype
}

// NewSpawner returns a Spawner that will place every entity it creates
// into the archetype carrying exactly the given component ids, creating
// that archetype if it does not exist yet.
func NewSpawner(w *World, componentIDs ...ComponentID) *Spawner {
	w.checkNoLiveBorrow("create a spawner")
	return &Spawner{world: w, archetype: w.getOrCreateArchetype(mask{}.with(componentIDs...))}
}

// SpawnN creates n entities with zero-valued components in the spawner's
// archetype, returning their ids in creation order.
func (s *Spawner) SpawnN(n int) []Entity {
	s.world.checkNoLiveBorrow("spawn entities")
	if n <= 0 {
		return nil
	}
	start := s.archetype.grow(n)
	out := make([]Entity, n)
	for i := 0; i < n; i++ {
		e := s.world.spawnRowInto(s.archetype, start+i)
		out[i] = e
	}
	return out
}

// SpawnWith1 creates n entities carrying exactly component T through a
// Spawner, fills the i-th created entity's T from init(i), and returns the
// entities in creation order.
func SpawnWith1[T any](w *World, n int, init func(i int) T) []Entity {
	id := componentID[T]()
	sp := NewSpawner(w, id)
	entities := sp.SpawnN(n)
	for i, e := range entities {
		meta := w.meta.rows[e.ID]
		*(*T)(meta.archetype.componentPtr(id, meta.index)) = init(i)
	}
	return entities
}

// spawnRowInto registers row (already grown in a) as a freshly created
// entity, mirroring World.spawnInto but for a row a Spawner has already
// allocated in bulk.
func (w *World) spawnRowInto(a *Archetype, row int) Entity {
	id := w.allocID()
	w.meta.ensure(id)
	gen := w.meta.rows[id].generation
	if gen == 0 {
		gen = 1
	}
	a.entityIDs[row] = id
	w.meta.rows[id] = entityMeta{archetype: a, index: row, generation: gen}
	return Entity{ID: id, Generation: gen}
}
