package ecsquery

// QueryBorrow is a query descriptor paired with a world, not yet holding
// any column borrows. Constructing one has no borrow side effects; borrows
// are acquired lazily, the first time Iter or IterBatched is called, and
// released when the QueryBorrow itself is closed with Close.
//
// Go has no destructor to run that release automatically at scope exit, so
// this package makes it explicit via Close, and callers are expected to
// `defer qb.Close()` immediately after a successful Iter/IterBatched call.
type QueryBorrow[I any, Q term[I]] struct {
	world    *World
	desc     Q
	borrowed bool
	closed   bool
	acquired []*Archetype
}

// NewQuery builds a QueryBorrow for descriptor desc against w. Most
// callers use the arity-specific constructors below (ReadOnly, ReadWrite,
// NewQuery2..NewQuery5) instead of calling this directly.
func NewQuery[I any, Q term[I]](w *World, desc Q) *QueryBorrow[I, Q] {
	return &QueryBorrow[I, Q]{world: w, desc: desc}
}

// acquire walks every archetype, borrowing columns on each one the
// descriptor applies to. If acquiring a later archetype panics (a
// conflicting exclusive borrow held elsewhere), every borrow already taken
// in this call is rolled back before the panic propagates, instead of
// leaving a half-acquired query's borrows stuck until the process exits.
func (q *QueryBorrow[I, Q]) acquire() {
	if q.closed {
		panic("ecsquery: query iterated after Close")
	}
	if q.borrowed {
		panic("ecsquery: query iterated twice")
	}
	q.borrowed = true
	acquired := make([]*Archetype, 0, len(q.world.archetypeList))
	defer func() {
		if r := recover(); r != nil {
			for _, a := range acquired {
				q.desc.releaseAll(a)
			}
			panic(r)
		}
	}()
	for _, a := range q.world.archetypeList {
		if _, ok := q.desc.access(a); ok {
			q.desc.borrowAll(a)
			acquired = append(acquired, a)
		}
	}
	q.acquired = acquired
	q.world.acquireBorrowSlot()
}

func (q *QueryBorrow[I, Q]) release() {
	for _, a := range q.acquired {
		q.desc.releaseAll(a)
	}
	q.acquired = nil
	q.world.releaseBorrowSlot()
}

// Iter acquires this query's borrows and returns a cross-archetype
// iterator over them. Panics if called more than once on the same
// QueryBorrow, after it was closed (by Close, FilterWith or FilterWithout),
// or if a conflicting borrow is already live elsewhere.
func (q *QueryBorrow[I, Q]) Iter() *QueryIter[I, Q] {
	q.acquire()
	return newQueryIter(q.world, q.desc)
}

// IterBatched acquires this query's borrows and returns an iterator of
// row-range batches sized at most batchSize, for parallel consumption.
// Panics if batchSize <= 0.
func (q *QueryBorrow[I, Q]) IterBatched(batchSize int) *BatchedIter[I, Q] {
	if batchSize <= 0 {
		panic("ecsquery: batch size must be positive")
	}
	q.acquire()
	return newBatchedIter(q.world, q.desc, batchSize)
}

// Close releases this query's borrows, if any were acquired. Idempotent:
// calling Close more than once, or on a QueryBorrow that was never
// iterated, is a no-op.
func (q *QueryBorrow[I, Q]) Close() {
	if q.closed {
		return
	}
	q.closed = true
	if q.borrowed {
		q.release()
	}
}

// FilterWith narrows q to archetypes that also carry component T, without
// adding an item or a borrow for T. It marks q closed so the caller cannot
// iterate it separately, and returns a QueryBorrow wrapping the combined
// descriptor. If q had already acquired borrows, those borrows transfer to
// the returned QueryBorrow instead of being orphaned: q is neutralized (its
// own Close becomes a no-op) and the new handle owns releasing them.
func FilterWith[T any, I any, Q term[I]](q *QueryBorrow[I, Q]) *QueryBorrow[I, With[T, I, Q]] {
	nq := NewQuery[I, With[T, I, Q]](q.world, With[T, I, Q]{Inner: q.desc})
	transferBorrow(q, nq)
	return nq
}

// FilterWithout narrows q to archetypes that do NOT carry component T. See
// FilterWith for the borrow-transfer behavior.
func FilterWithout[T any, I any, Q term[I]](q *QueryBorrow[I, Q]) *QueryBorrow[I, Without[T, I, Q]] {
	nq := NewQuery[I, Without[T, I, Q]](q.world, Without[T, I, Q]{Inner: q.desc})
	transferBorrow(q, nq)
	return nq
}

// transferBorrow moves from's live borrow state (if any) onto to, then
// neutralizes from so its Close is a no-op. Used by FilterWith/FilterWithout
// so narrowing a query that already iterated doesn't orphan its borrows.
func transferBorrow[I1 any, Q1 term[I1], I2 any, Q2 term[I2]](from *QueryBorrow[I1, Q1], to *QueryBorrow[I2, Q2]) {
	if from.borrowed {
		to.borrowed = true
		to.acquired = from.acquired
		from.acquired = nil
		from.borrowed = false
	}
	from.closed = true
}

// ---- ergonomic constructors ----

// ReadOnly builds a single-component shared-read query.
func ReadOnly[T any](w *World) *QueryBorrow[*T, Read[T]] {
	return NewQuery[*T, Read[T]](w, Read[T]{})
}

// ReadWrite builds a single-component exclusive-write query.
func ReadWrite[T any](w *World) *QueryBorrow[*T, Write[T]] {
	return NewQuery[*T, Write[T]](w, Write[T]{})
}

// NewQuery2 composes two descriptors into one query.
func NewQuery2[I1 any, Q1 term[I1], I2 any, Q2 term[I2]](w *World, a Q1, b Q2) *QueryBorrow[Item2[I1, I2], Tuple2[I1, Q1, I2, Q2]] {
	return NewQuery[Item2[I1, I2], Tuple2[I1, Q1, I2, Q2]](w, Tuple2[I1, Q1, I2, Q2]{A: a, B: b})
}

// NewQuery3 composes three descriptors into one query.
func NewQuery3[I1 any, Q1 term[I1], I2 any, Q2 term[I2], I3 any, Q3 term[I3]](w *World, a Q1, b Q2, c Q3) *QueryBorrow[Item3[I1, I2, I3], Tuple3[I1, Q1, I2, Q2, I3, Q3]] {
	return NewQuery[Item3[I1, I2, I3], Tuple3[I1, Q1, I2, Q2, I3, Q3]](w, Tuple3[I1, Q1, I2, Q2, I3, Q3]{A: a, B: b, C: c})
}

// NewQuery4 composes four descriptors into one query.
func NewQuery4[I1 any, Q1 term[I1], I2 any, Q2 term[I2], I3 any, Q3 term[I3], I4 any, Q4 term[I4]](w *World, a Q1, b Q2, c Q3, d Q4) *QueryBorrow[Item4[I1, I2, I3, I4], Tuple4[I1, Q1, I2, Q2, I3, Q3, I4, Q4]] {
	return NewQuery[Item4[I1, I2, I3, I4], Tuple4[I1, Q1, I2, Q2, I3, Q3, I4, Q4]](w, Tuple4[I1, Q1, I2, Q2, I3, Q3, I4, Q4]{A: a, B: b, C: c, D: d})
}

// NewQuery5 composes five descriptors into one query.
func NewQuery5[I1 any, Q1 term[I1], I2 any, Q2 term[I2], I3 any, Q3 term[I3], I4 any, Q4 term[I4], I5 any, Q5 term[I5]](w *World, a Q1, b Q2, c Q3, d Q4, e Q5) *QueryBorrow[Item5[I1, I2, I3, I4, I5], Tuple5[I1, Q1, I2, Q2, I3, Q3, I4, Q4, I5, Q5]] {
	return NewQuery[Item5[I1, I2, I3, I4, I5], Tuple5[I1, Q1, I2, Q2, I3, Q3, I4, Q4, I5, Q5]](w, Tuple5[I1, Q1, I2, Q2, I3, Q3, I4, Q4, I5, Q5]{A: a, B: b, C: c, D: d, E: e})
}
