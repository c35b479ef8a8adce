package ecsquery

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// column is one archetype's storage for a single component type: a
// contiguous byte slice plus a dynamic borrow counter encoded as a single
// atomic int32 — zero when free, -1 while exclusively borrowed, and a
// positive live-shared-borrow count otherwise.
type column struct {
	data     []byte
	elemSize uintptr
	// borrowState is 0 when free, -1 while exclusively borrowed, and a
	// positive count of live shared borrows otherwise.
	borrowState int32
}

const borrowConflictPanic = "ecsquery: column already borrowed"

// zeroSizedSentinel backs the pointer columnPtr/componentPtr hand out for a
// zero-sized component (an ordinary tag/marker type, e.g. struct{}). Such a
// column's backing slice stays permanently empty no matter how many rows
// are grown, so indexing it would panic; every row of a zero-sized
// component aliases this single dangling byte instead; readers of
// pointerState never dereference it for anything but identity.
var zeroSizedSentinel byte

func (c *column) borrowShared(id ComponentID) {
	for {
		v := atomic.LoadInt32(&c.borrowState)
		if v < 0 {
			panic(fmt.Sprintf("%s: component %d is exclusively borrowed", borrowConflictPanic, id))
		}
		if atomic.CompareAndSwapInt32(&c.borrowState, v, v+1) {
			return
		}
	}
}

func (c *column) releaseShared() {
	atomic.AddInt32(&c.borrowState, -1)
}

func (c *column) borrowExclusive(id ComponentID) {
	if !atomic.CompareAndSwapInt32(&c.borrowState, 0, -1) {
		panic(fmt.Sprintf("%s: component %d", borrowConflictPanic, id))
	}
}

func (c *column) releaseExclusive() {
	atomic.StoreInt32(&c.borrowState, 0)
}

// Archetype is an ordered collection of same-shaped entities stored as
// parallel columns, one per component type, plus the dense array of entity
// ids. has/columnPtr/entitiesPtr/Len let a descriptor decide applicability
// and build a fetch; borrow/release pairs per access mode implement the
// borrow protocol.
//
// A fixed-size slot lookup array gives O(1) has()/columnPtr(), and row
// removal is swap-and-pop against the last row.
type Archetype struct {
	id           uint32
	shape        mask
	entityIDs    []uint32
	columns      []column
	componentIDs []ComponentID
	slot         [maxComponentTypes]int
}

func newArchetype(id uint32, shape mask, capacity int) *Archetype {
	ids := shape.componentIDs()
	a := &Archetype{
		id:           id,
		shape:        shape,
		entityIDs:    make([]uint32, 0, capacity),
		columns:      make([]column, len(ids)),
		componentIDs: ids,
	}
	for i := range a.slot {
		a.slot[i] = -1
	}
	for i, cid := range ids {
		a.slot[cid] = i
		a.columns[i].elemSize = componentSizes[cid]
	}
	return a
}

// ID returns the archetype's identity within its owning World.
func (a *Archetype) ID() uint32 { return a.id }

// has reports whether the archetype carries a column for component id.
func (a *Archetype) has(id ComponentID) bool {
	return int(id) < maxComponentTypes && a.slot[id] >= 0
}

// columnPtr returns the base pointer of id's column, or nil if the
// archetype does not carry that component or the archetype is empty. The
// pointer is valid for exactly a.len() contiguous elements.
func (a *Archetype) columnPtr(id ComponentID) unsafe.Pointer {
	s := a.slot[id]
	if s < 0 || len(a.entityIDs) == 0 {
		return nil
	}
	c := &a.columns[s]
	if c.elemSize == 0 {
		return unsafe.Pointer(&zeroSizedSentinel)
	}
	return unsafe.Pointer(&c.data[0])
}

// entitiesPtr returns the base pointer of the dense entity-id column, or
// nil when the archetype is empty.
func (a *Archetype) entitiesPtr() unsafe.Pointer {
	if len(a.entityIDs) == 0 {
		return nil
	}
	return unsafe.Pointer(&a.entityIDs[0])
}

// Len returns the archetype's current row count.
func (a *Archetype) Len() int { return len(a.entityIDs) }

// borrow acquires a shared borrow on id's column. Panics if id is absent
// from this archetype (callers must check has(id) first) or if an
// exclusive borrow on the same column is already live.
func (a *Archetype) borrow(id ComponentID) {
	a.columns[a.slot[id]].borrowShared(id)
}

// release releases a shared borrow acquired by borrow.
func (a *Archetype) release(id ComponentID) {
	a.columns[a.slot[id]].releaseShared()
}

// borrowMut acquires an exclusive borrow on id's column. Panics if id is
// absent from this archetype, or if any other borrow on the column
// (shared or exclusive) is already live.
func (a *Archetype) borrowMut(id ComponentID) {
	a.columns[a.slot[id]].borrowExclusive(id)
}

// releaseMut releases an exclusive borrow acquired by borrowMut.
func (a *Archetype) releaseMut(id ComponentID) {
	a.columns[a.slot[id]].releaseExclusive()
}

// grow appends n zero-valued rows of storage to every column and the
// entity-id array; callers fill in the ids and data afterward. It is the
// archetype-local half of entity creation. A zero-sized column's data stays
// empty regardless of n — row count for such a column is tracked only
// through entityIDs, and columnPtr/componentPtr hand out zeroSizedSentinel
// instead of indexing it.
func (a *Archetype) grow(n int) (start int) {
	start = len(a.entityIDs)
	a.entityIDs = append(a.entityIDs, make([]uint32, n)...)
	for i := range a.columns {
		c := &a.columns[i]
		c.data = append(c.data, make([]byte, n*int(c.elemSize))...)
	}
	return start
}

// swapRemove removes the row at index using swap-and-pop (last row moves
// into the hole), returning the id of the entity that now occupies index
// (equal to the removed id itself if index was already last), and whether
// a move actually happened.
func (a *Archetype) swapRemove(index int) (movedID uint32, moved bool) {
	last := len(a.entityIDs) - 1
	if index < 0 || index > last {
		return 0, false
	}
	movedID = a.entityIDs[last]
	a.entityIDs[index] = movedID
	a.entityIDs = a.entityIDs[:last]
	for i := range a.columns {
		c := &a.columns[i]
		size := int(c.elemSize)
		copy(c.data[index*size:(index+1)*size], c.data[last*size:(last+1)*size])
		c.data = c.data[:last*size]
	}
	return movedID, index != last
}

// componentPtr returns a pointer to the element at row for component id,
// or nil if absent. Used by the single-entity random-access helpers in
// mutation.go and spawner.go, not by the query core's Fetch path (which caches base
// pointers once per archetype instead of re-resolving per row).
func (a *Archetype) componentPtr(id ComponentID, row int) unsafe.Pointer {
	s := a.slot[id]
	if s < 0 || row < 0 || row >= len(a.entityIDs) {
		return nil
	}
	c := &a.columns[s]
	if c.elemSize == 0 {
		return unsafe.Pointer(&zeroSizedSentinel)
	}
	return unsafe.Pointer(uintptr(unsafe.Pointer(&c.data[0])) + uintptr(row)*c.elemSize)
}
