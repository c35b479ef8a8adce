package ecsquery

import "unsafe"

// GetComponent returns a pointer to entity e's component T, or nil if e is
// dead or lacks T. It acquires and releases a shared borrow around the
// lookup, so a conflicting exclusive borrow held elsewhere panics exactly
// as a conflicting query would, rather than through a separate error path.
func GetComponent[T any](w *World, e Entity) *T {
	id, ok := TryComponentID[T]()
	if !ok || !w.IsAlive(e) {
		return nil
	}
	meta := w.meta.rows[e.ID]
	a := meta.archetype
	if !a.has(id) {
		return nil
	}
	a.borrow(id)
	defer a.release(id)
	return (*T)(a.componentPtr(id, meta.index))
}

// BorrowComponentMut returns a pointer to entity e's component T under an
// exclusive borrow that the caller must release with the returned release
// function, since Go has no destructor to run it automatically.
func BorrowComponentMut[T any](w *World, e Entity) (ptr *T, release func(), ok bool) {
	id, known := TryComponentID[T]()
	if !known || !w.IsAlive(e) {
		return nil, nil, false
	}
	meta := w.meta.rows[e.ID]
	a := meta.archetype
	if !a.has(id) {
		return nil, nil, false
	}
	a.borrowMut(id)
	p := (*T)(a.componentPtr(id, meta.index))
	return p, func() { a.releaseMut(id) }, true
}

// SetComponent sets entity e's component T to val, adding it (and moving e
// to a new archetype) if e does not already carry it. A no-op if e is dead.
func SetComponent[T any](w *World, e Entity, val T) {
	w.checkNoLiveBorrow("add a component")
	if !w.IsAlive(e) {
		return
	}
	id := componentID[T]()
	meta := &w.meta.rows[e.ID]
	a := meta.archetype
	if a.has(id) {
		a.borrowMut(id)
		*(*T)(a.componentPtr(id, meta.index)) = val
		a.releaseMut(id)
		return
	}
	target := w.addTransitionFor(a, id)
	newIndex := w.moveEntity(e.ID, meta, a, target.target, target.copies)
	dst := target.target.componentPtr(id, newIndex)
	*(*T)(dst) = val
}

// RemoveComponent removes component T from entity e, moving it to a new
// archetype. A no-op if e is dead or lacks T.
func RemoveComponent[T any](w *World, e Entity) {
	w.checkNoLiveBorrow("remove a component")
	if !w.IsAlive(e) {
		return
	}
	id, ok := TryComponentID[T]()
	if !ok {
		return
	}
	meta := &w.meta.rows[e.ID]
	a := meta.archetype
	if !a.has(id) {
		return
	}
	target := w.removeTransitionFor(a, id)
	w.moveEntity(e.ID, meta, a, target.target, target.copies)
}

func (w *World) addTransitionFor(a *Archetype, id ComponentID) *transition {
	byComponent, ok := w.addTransitions[a]
	if !ok {
		byComponent = make(map[ComponentID]*transition)
		w.addTransitions[a] = byComponent
	}
	if t, ok := byComponent[id]; ok {
		return t
	}
	target := w.getOrCreateArchetype(a.shape.with(id))
	t := &transition{target: target, copies: buildCopyPlan(a, target)}
	byComponent[id] = t
	return t
}

func (w *World) removeTransitionFor(a *Archetype, id ComponentID) *transition {
	byComponent, ok := w.removeTransitions[a]
	if !ok {
		byComponent = make(map[ComponentID]*transition)
		w.removeTransitions[a] = byComponent
	}
	if t, ok := byComponent[id]; ok {
		return t
	}
	target := w.getOrCreateArchetype(a.shape.without(id))
	t := &transition{target: target, copies: buildCopyPlan(a, target)}
	byComponent[id] = t
	return t
}

// buildCopyPlan precomputes, for every component common to both
// archetypes, which source slot copies to which destination slot, so
// repeated add/remove of the same component type never re-walks both
// component lists.
func buildCopyPlan(from, to *Archetype) []copyOp {
	plan := make([]copyOp, 0, len(from.componentIDs))
	for _, id := range from.componentIDs {
		if to.has(id) {
			plan = append(plan, copyOp{fromSlot: from.slot[id], toSlot: to.slot[id], size: int(componentSizes[id])})
		}
	}
	return plan
}

// moveEntity relocates the entity at meta (currently in from, at meta.index)
// into to, running the precomputed copy plan, then removes it from from via
// swap-and-pop and updates both entities' metadata. Returns the entity's
// new row index in to.
func (w *World) moveEntity(id uint32, meta *entityMeta, from, to *Archetype, copies []copyOp) int {
	newIndex := to.grow(1)
	to.entityIDs[newIndex] = id
	for _, op := range copies {
		if op.size == 0 {
			continue
		}
		src := unsafe.Pointer(uintptr(unsafe.Pointer(&from.columns[op.fromSlot].data[0])) + uintptr(meta.index)*uintptr(op.size))
		dstOff := newIndex * op.size
		dst := to.columns[op.toSlot].data[dstOff : dstOff+op.size]
		copy(dst, unsafe.Slice((*byte)(src), op.size))
	}
	movedID, moved := from.swapRemove(meta.index)
	if moved {
		w.meta.rows[movedID].index = meta.index
	}
	meta.archetype = to
	meta.index = newIndex
	return newIndex
}
