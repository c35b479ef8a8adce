package ecsquery

import "testing"

type gPosition struct{ X, Y float64 }
type gVelocity struct{ X, Y float64 }
type gHP struct{ V int }
type gTag struct{}

func mustPanic(t *testing.T, why string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic: %s", why)
		}
	}()
	fn()
}

func TestQueryAllEntitiesEnumeratesEveryOne(t *testing.T) {
	w := NewWorld()
	const n = 50
	for i := 0; i < n; i++ {
		w.CreateEntity()
	}
	q := NewQuery[struct{}, Tuple0](w, Tuple0{})
	it := q.Iter()
	defer q.Close()
	if it.Len() != n {
		t.Fatalf("expected Len()=%d, got %d", n, it.Len())
	}
	count := 0
	for {
		_, _, ok := it.Next()
		if !ok {
			break
		}
		count++
	}
	if count != n {
		t.Fatalf("expected to enumerate %d entities, got %d", n, count)
	}
}

func TestQuerySingleComponent(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	SetComponent(w, e, gPosition{X: 1, Y: 2})

	q := ReadOnly[gPosition](w)
	it := q.Iter()
	defer q.Close()
	gotEntity, item, ok := it.Next()
	if !ok {
		t.Fatalf("expected one result")
	}
	if gotEntity != e {
		t.Fatalf("expected entity %+v, got %+v", e, gotEntity)
	}
	if item.X != 1 || item.Y != 2 {
		t.Fatalf("unexpected item %+v", item)
	}
	if _, _, ok := it.Next(); ok {
		t.Fatalf("expected exactly one result")
	}
}

func TestQueryMissingComponentExcludesArchetype(t *testing.T) {
	w := NewWorld()
	bare := w.CreateEntity()
	withPos := w.CreateEntity()
	SetComponent(w, withPos, gPosition{X: 1})
	_ = bare

	q := ReadOnly[gPosition](w)
	it := q.Iter()
	defer q.Close()
	if it.Len() != 1 {
		t.Fatalf("expected exactly one matching entity, got Len()=%d", it.Len())
	}
}

func TestQuerySparseComponentAcrossManyArchetypes(t *testing.T) {
	w := NewWorld()
	var withVelocity []Entity
	for i := 0; i < 20; i++ {
		e := w.CreateEntity()
		SetComponent(w, e, gPosition{X: float64(i)})
		if i%3 == 0 {
			SetComponent(w, e, gVelocity{X: float64(i)})
			withVelocity = append(withVelocity, e)
		}
		if i%5 == 0 {
			SetComponent(w, e, gHP{V: i})
		}
	}
	q := ReadOnly[gVelocity](w)
	it := q.Iter()
	defer q.Close()
	if it.Len() != len(withVelocity) {
		t.Fatalf("expected %d entities with velocity, got %d", len(withVelocity), it.Len())
	}
}

func TestQueryOptionalComponentYieldsNilWhenAbsent(t *testing.T) {
	w := NewWorld()
	onlyPos := w.CreateEntity()
	SetComponent(w, onlyPos, gPosition{X: 1})
	both := w.CreateEntity()
	SetComponent(w, both, gPosition{X: 2})
	SetComponent(w, both, gVelocity{X: 3})

	q := NewQuery2[*gPosition, Read[gPosition], *gVelocity, Optional[*gVelocity, Read[gVelocity]]](
		w, Read[gPosition]{}, Optional[*gVelocity, Read[gVelocity]]{Inner: Read[gVelocity]{}},
	)
	it := q.Iter()
	defer q.Close()
	if it.Len() != 2 {
		t.Fatalf("expected the optional term to include both archetypes, got Len()=%d", it.Len())
	}
	seenNil, seenSome := false, false
	for {
		_, item, ok := it.Next()
		if !ok {
			break
		}
		if item.B == nil {
			seenNil = true
		} else {
			seenSome = true
			if item.B.X != 3 {
				t.Fatalf("unexpected velocity value %+v", item.B)
			}
		}
	}
	if !seenNil || !seenSome {
		t.Fatalf("expected both a nil and a present optional item, got seenNil=%v seenSome=%v", seenNil, seenSome)
	}
}

func TestFilterWithExcludesArchetypesMissingComponent(t *testing.T) {
	w := NewWorld()
	onlyPos := w.CreateEntity()
	SetComponent(w, onlyPos, gPosition{X: 1})
	both := w.CreateEntity()
	SetComponent(w, both, gPosition{X: 2})
	SetComponent(w, both, gVelocity{X: 3})

	q := FilterWith[gVelocity](ReadOnly[gPosition](w))
	it := q.Iter()
	defer q.Close()
	e, _, ok := it.Next()
	if !ok || e != both {
		t.Fatalf("expected only the entity carrying velocity, got entity=%+v ok=%v", e, ok)
	}
	if _, _, ok := it.Next(); ok {
		t.Fatalf("expected exactly one result")
	}
}

func TestFilterWithoutExcludesArchetypesHavingComponent(t *testing.T) {
	w := NewWorld()
	onlyPos := w.CreateEntity()
	SetComponent(w, onlyPos, gPosition{X: 1})
	both := w.CreateEntity()
	SetComponent(w, both, gPosition{X: 2})
	SetComponent(w, both, gVelocity{X: 3})

	q := FilterWithout[gVelocity](ReadOnly[gPosition](w))
	it := q.Iter()
	defer q.Close()
	e, _, ok := it.Next()
	if !ok || e != onlyPos {
		t.Fatalf("expected only the entity lacking velocity, got entity=%+v ok=%v", e, ok)
	}
	if _, _, ok := it.Next(); ok {
		t.Fatalf("expected exactly one result")
	}
}

func TestDynamicComponentsChangeQueryMembership(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	SetComponent(w, e, gPosition{X: 1})

	q1 := NewQuery2[*gPosition, Read[gPosition], *gVelocity, Read[gVelocity]](w, Read[gPosition]{}, Read[gVelocity]{})
	it1 := q1.Iter()
	if it1.Len() != 0 {
		t.Fatalf("expected no matches before velocity is added, got %d", it1.Len())
	}
	q1.Close()

	SetComponent(w, e, gVelocity{X: 2})

	q2 := NewQuery2[*gPosition, Read[gPosition], *gVelocity, Read[gVelocity]](w, Read[gPosition]{}, Read[gVelocity]{})
	it2 := q2.Iter()
	defer q2.Close()
	if it2.Len() != 1 {
		t.Fatalf("expected one match after velocity is added, got %d", it2.Len())
	}
}

func TestQueryIteratedTwicePanics(t *testing.T) {
	w := NewWorld()
	SetComponent(w, w.CreateEntity(), gPosition{X: 1})
	q := ReadOnly[gPosition](w)
	q.Iter()
	mustPanic(t, "iterating the same QueryBorrow twice", func() {
		q.Iter()
	})
}

func TestConflictingExclusiveQueriesPanic(t *testing.T) {
	w := NewWorld()
	SetComponent(w, w.CreateEntity(), gPosition{X: 1})

	q1 := ReadWrite[gPosition](w)
	q1.Iter()
	defer q1.Close()

	q2 := ReadWrite[gPosition](w)
	mustPanic(t, "a second exclusive query over the same component", func() {
		q2.Iter()
	})
}

func TestSharedQueryConflictsWithExclusiveQuery(t *testing.T) {
	w := NewWorld()
	SetComponent(w, w.CreateEntity(), gPosition{X: 1})

	q1 := ReadOnly[gPosition](w)
	q1.Iter()
	defer q1.Close()

	q2 := ReadWrite[gPosition](w)
	mustPanic(t, "an exclusive query while a shared one is live", func() {
		q2.Iter()
	})
}

func TestSharedQueriesCoexist(t *testing.T) {
	w := NewWorld()
	SetComponent(w, w.CreateEntity(), gPosition{X: 1})

	q1 := ReadOnly[gPosition](w)
	q1.Iter()
	defer q1.Close()

	q2 := ReadOnly[gPosition](w)
	it2 := q2.Iter()
	defer q2.Close()
	if it2.Len() != 1 {
		t.Fatalf("expected the second shared query to see the entity too")
	}
}

func TestRandomAccessConflictsWithLiveExclusiveQuery(t *testing.T) {
	w := NewWorld()
	e := w.CreateEntity()
	SetComponent(w, e, gPosition{X: 1})

	q := ReadWrite[gPosition](w)
	q.Iter()
	defer q.Close()

	mustPanic(t, "GetComponent racing a live exclusive query borrow", func() {
		GetComponent[gPosition](w, e)
	})
}

func TestBorrowRollbackOnPartialAcquisitionPanic(t *testing.T) {
	w := NewWorld()
	e1 := w.CreateEntity()
	SetComponent(w, e1, gPosition{X: 1})
	e2 := w.CreateEntity()
	SetComponent(w, e2, gPosition{X: 2})
	SetComponent(w, e2, gVelocity{X: 1})

	posID := componentID[gPosition]()
	a1 := w.meta.rows[e1.ID].archetype
	a2 := w.meta.rows[e2.ID].archetype

	a2.borrowMut(posID)
	func() {
		defer func() { recover() }()
		ReadWrite[gPosition](w).Iter()
	}()
	a2.releaseMut(posID)

	// If the panic mid-acquisition had leaked a1's borrow, this would panic.
	a1.borrowMut(posID)
	a1.releaseMut(posID)
}

func TestBatchedIterPartitionMatchesSequentialOrder(t *testing.T) {
	w := NewWorld()
	var want []Entity
	for i := 0; i < 10; i++ {
		e := w.CreateEntity()
		SetComponent(w, e, gPosition{X: float64(i)})
		want = append(want, e)
	}

	seq := ReadOnly[gPosition](w)
	seqIt := seq.Iter()
	var sequential []Entity
	for {
		e, _, ok := seqIt.Next()
		if !ok {
			break
		}
		sequential = append(sequential, e)
	}
	seq.Close()

	batched := ReadOnly[gPosition](w)
	bIt := batched.IterBatched(3)
	var fromBatches []Entity
	for {
		batch, ok := bIt.Next()
		if !ok {
			break
		}
		if batch.Len() > 3 {
			t.Fatalf("batch exceeded requested size: %d", batch.Len())
		}
		for {
			e, _, ok := batch.Next()
			if !ok {
				break
			}
			fromBatches = append(fromBatches, e)
		}
	}
	batched.Close()

	if len(fromBatches) != len(sequential) {
		t.Fatalf("expected %d entities from batches, got %d", len(sequential), len(fromBatches))
	}
	for i := range sequential {
		if sequential[i] != fromBatches[i] {
			t.Fatalf("batch partition reordered rows at index %d: %+v vs %+v", i, sequential[i], fromBatches[i])
		}
	}
}

func TestZeroSizedComponentSurvivesMutationAndQuery(t *testing.T) {
	w := NewWorld()
	tagged := w.CreateEntity()
	SetComponent(w, tagged, gPosition{X: 1})
	SetComponent(w, tagged, gTag{})
	untagged := w.CreateEntity()
	SetComponent(w, untagged, gPosition{X: 2})

	if p := GetComponent[gTag](w, tagged); p == nil {
		t.Fatalf("expected a non-nil pointer for a zero-sized component")
	}
	if p := GetComponent[gTag](w, untagged); p != nil {
		t.Fatalf("expected nil for an entity lacking the tag, got %+v", p)
	}

	q := FilterWith[gTag](ReadOnly[gPosition](w))
	it := q.Iter()
	defer q.Close()
	e, item, ok := it.Next()
	if !ok || e != tagged {
		t.Fatalf("expected only the tagged entity, got entity=%+v ok=%v", e, ok)
	}
	if item.X != 1 {
		t.Fatalf("unexpected item %+v", item)
	}
	if _, _, ok := it.Next(); ok {
		t.Fatalf("expected exactly one result")
	}
	// Structural mutation is refused while a query borrow is live, so the
	// query is closed before the tag is removed.
	q.Close()

	RemoveComponent[gTag](w, tagged)
	if p := GetComponent[gTag](w, tagged); p != nil {
		t.Fatalf("expected nil after removing the tag, got %+v", p)
	}
}

func TestFilterWithTransfersLiveBorrowInsteadOfOrphaningIt(t *testing.T) {
	w := NewWorld()
	both := w.CreateEntity()
	SetComponent(w, both, gPosition{X: 1})
	SetComponent(w, both, gVelocity{X: 2})

	q := ReadOnly[gPosition](w)
	q.Iter()

	narrowed := FilterWith[gVelocity](q)
	// q is now neutralized; its own Close must be a no-op rather than
	// double-releasing, and the live borrow it had acquired now belongs to
	// narrowed.
	q.Close()
	narrowed.Close()

	// If the borrow had been orphaned, liveBorrows would still be held and
	// this would panic.
	w.CreateEntity()
}

func TestIterBatchedRejectsNonPositiveSize(t *testing.T) {
	w := NewWorld()
	SetComponent(w, w.CreateEntity(), gPosition{X: 1})
	q := ReadOnly[gPosition](w)
	mustPanic(t, "a non-positive batch size", func() {
		q.IterBatched(0)
	})
}
