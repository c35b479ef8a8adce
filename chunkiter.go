package ecsquery

// ChunkIter walks every row of a single archetype that a descriptor has
// already been confirmed applicable to, yielding the row's bare entity id
// (generation is resolved later, by QueryIter, against the world's
// entity-meta table) paired with the descriptor's item for that row. It is
// the inner loop of the two-level iteration: archetypes, then rows within
// an archetype.
//
// A zero ChunkIter (no archetype set) is a valid, permanently-exhausted
// iterator, used for archetypes the caller never visits.
type ChunkIter[I any] struct {
	archetype *Archetype
	state     rowState[I]
	row       int
	len       int
}

// newChunkIter builds a ChunkIter over every row currently in a, using
// state to fetch each row's item. Callers must have already borrowed a's
// columns for the lifetime of this iterator.
func newChunkIter[I any](a *Archetype, state rowState[I]) ChunkIter[I] {
	return ChunkIter[I]{archetype: a, state: state, len: a.Len()}
}

// Len returns the number of rows remaining in this chunk.
func (c *ChunkIter[I]) Len() int { return c.len - c.row }

// Next advances the cursor, returning the next (entity id, item) pair and
// true, or the zero value and false once the chunk is exhausted.
func (c *ChunkIter[I]) Next() (id uint32, item I, ok bool) {
	if c.archetype == nil || c.row >= c.len {
		return 0, item, false
	}
	id = c.archetype.entityIDs[c.row]
	item = c.state.get(c.row)
	c.row++
	return id, item, true
}
