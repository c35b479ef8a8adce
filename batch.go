package ecsquery

// BatchedIter partitions every archetype a query applies to into
// consecutive row ranges of at most batchSize rows each, for handing off
// to a worker pool. This is unrelated to Spawner's bulk-entity-creation —
// here "batch" names a unit of parallel *consumption*, not of creation.
//
// Concatenating every yielded Batch's rows, in order, reproduces exactly
// the sequence QueryIter would yield for the same descriptor and world
// state: partitioning never reorders or drops rows.
type BatchedIter[I any, Q term[I]] struct {
	world      *World
	desc       Q
	archetypes []*Archetype
	archIdx    int
	rowOffset  int
	batchSize  int
}

func newBatchedIter[I any, Q term[I]](w *World, desc Q, batchSize int) *BatchedIter[I, Q] {
	b := &BatchedIter[I, Q]{world: w, desc: desc, batchSize: batchSize}
	for _, a := range w.archetypeList {
		if _, ok := desc.access(a); ok {
			b.archetypes = append(b.archetypes, a)
		}
	}
	return b
}

// Next returns the next batch, or false once every matching archetype's
// rows have all been handed out. Empty archetypes, and archetypes whose
// row count is an exact multiple of batchSize, never produce a zero-length
// batch.
func (b *BatchedIter[I, Q]) Next() (*Batch[I, Q], bool) {
	for b.archIdx < len(b.archetypes) {
		a := b.archetypes[b.archIdx]
		if b.rowOffset >= a.Len() {
			b.archIdx++
			b.rowOffset = 0
			continue
		}
		start := b.rowOffset
		end := start + b.batchSize
		if end > a.Len() {
			end = a.Len()
		}
		b.rowOffset = end
		batch := &Batch[I, Q]{
			world:     b.world,
			archetype: a,
			state:     b.desc.newState(a),
			end:       end,
			row:       start,
		}
		return batch, true
	}
	return nil, false
}

// Batch is one contiguous row range of a single archetype, itself an
// iterator yielding (Entity, item) pairs with the same generation-lookup
// rule QueryIter uses.
type Batch[I any, Q term[I]] struct {
	world     *World
	archetype *Archetype
	state     rowState[I]
	row       int
	end       int
}

// Len returns the number of rows remaining in this batch.
func (b *Batch[I, Q]) Len() int { return b.end - b.row }

// Next returns the next (Entity, item) pair in this batch.
func (b *Batch[I, Q]) Next() (Entity, I, bool) {
	if b.row >= b.end {
		var zero I
		return Entity{}, zero, false
	}
	id := b.archetype.entityIDs[b.row]
	item := b.state.get(b.row)
	b.row++
	return Entity{ID: id, Generation: b.world.Generation(id)}, item, true
}
