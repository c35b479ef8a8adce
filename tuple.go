package ecsquery

// Tuple composes N sibling descriptors into one: access is the max of
// every member's access (combine), and the tuple only applies to an
// archetype where every member applies. There is no variadic tuple type
// (Go generics can't express that), so each arity gets its own generic
// type, here through five members, which covers every combination the
// test suite exercises.

// Tuple0 is the empty descriptor: always applicable, at Iterate privilege,
// yielding struct{}. Useful for entity-id-only iteration — a query over no
// components still enumerates every entity.
type Tuple0 struct{}

func (Tuple0) access(a *Archetype) (Access, bool) { return AccessIterate, true }
func (Tuple0) borrowAll(a *Archetype)              {}
func (Tuple0) releaseAll(a *Archetype)             {}
func (Tuple0) newState(a *Archetype) rowState[struct{}] {
	return tuple0State{}
}

type tuple0State struct{}

func (tuple0State) get(row int) struct{} { return struct{}{} }

// Item2 is the item yielded by Tuple2.
type Item2[I1, I2 any] struct {
	A I1
	B I2
}

// Tuple2 composes two descriptors.
type Tuple2[I1 any, Q1 term[I1], I2 any, Q2 term[I2]] struct {
	A Q1
	B Q2
}

func (t Tuple2[I1, Q1, I2, Q2]) access(a *Archetype) (Access, bool) {
	acc1, ok1 := t.A.access(a)
	if !ok1 {
		return 0, false
	}
	acc2, ok2 := t.B.access(a)
	if !ok2 {
		return 0, false
	}
	return combine(acc1, acc2), true
}

func (t Tuple2[I1, Q1, I2, Q2]) borrowAll(a *Archetype) {
	t.A.borrowAll(a)
	t.B.borrowAll(a)
}

func (t Tuple2[I1, Q1, I2, Q2]) releaseAll(a *Archetype) {
	t.A.releaseAll(a)
	t.B.releaseAll(a)
}

func (t Tuple2[I1, Q1, I2, Q2]) newState(a *Archetype) rowState[Item2[I1, I2]] {
	return tuple2State[I1, I2]{a: t.A.newState(a), b: t.B.newState(a)}
}

type tuple2State[I1, I2 any] struct {
	a rowState[I1]
	b rowState[I2]
}

func (s tuple2State[I1, I2]) get(row int) Item2[I1, I2] {
	return Item2[I1, I2]{A: s.a.get(row), B: s.b.get(row)}
}

// Item3 is the item yielded by Tuple3.
type Item3[I1, I2, I3 any] struct {
	A I1
	B I2
	C I3
}

// Tuple3 composes three descriptors.
type Tuple3[I1 any, Q1 term[I1], I2 any, Q2 term[I2], I3 any, Q3 term[I3]] struct {
	A Q1
	B Q2
	C Q3
}

func (t Tuple3[I1, Q1, I2, Q2, I3, Q3]) access(a *Archetype) (Access, bool) {
	acc1, ok1 := t.A.access(a)
	if !ok1 {
		return 0, false
	}
	acc2, ok2 := t.B.access(a)
	if !ok2 {
		return 0, false
	}
	acc3, ok3 := t.C.access(a)
	if !ok3 {
		return 0, false
	}
	return combine(combine(acc1, acc2), acc3), true
}

func (t Tuple3[I1, Q1, I2, Q2, I3, Q3]) borrowAll(a *Archetype) {
	t.A.borrowAll(a)
	t.B.borrowAll(a)
	t.C.borrowAll(a)
}

func (t Tuple3[I1, Q1, I2, Q2, I3, Q3]) releaseAll(a *Archetype) {
	t.A.releaseAll(a)
	t.B.releaseAll(a)
	t.C.releaseAll(a)
}

func (t Tuple3[I1, Q1, I2, Q2, I3, Q3]) newState(a *Archetype) rowState[Item3[I1, I2, I3]] {
	return tuple3State[I1, I2, I3]{a: t.A.newState(a), b: t.B.newState(a), c: t.C.newState(a)}
}

type tuple3State[I1, I2, I3 any] struct {
	a rowState[I1]
	b rowState[I2]
	c rowState[I3]
}

func (s tuple3State[I1, I2, I3]) get(row int) Item3[I1, I2, I3] {
	return Item3[I1, I2, I3]{A: s.a.get(row), B: s.b.get(row), C: s.c.get(row)}
}

// Item4 is the item yielded by Tuple4.
type Item4[I1, I2, I3, I4 any] struct {
	A I1
	B I2
	C I3
	D I4
}

// Tuple4 composes four descriptors.
type Tuple4[I1 any, Q1 term[I1], I2 any, Q2 term[I2], I3 any, Q3 term[I3], I4 any, Q4 term[I4]] struct {
	A Q1
	B Q2
	C Q3
	D Q4
}

func (t Tuple4[I1, Q1, I2, Q2, I3, Q3, I4, Q4]) access(a *Archetype) (Access, bool) {
	acc1, ok1 := t.A.access(a)
	if !ok1 {
		return 0, false
	}
	acc2, ok2 := t.B.access(a)
	if !ok2 {
		return 0, false
	}
	acc3, ok3 := t.C.access(a)
	if !ok3 {
		return 0, false
	}
	acc4, ok4 := t.D.access(a)
	if !ok4 {
		return 0, false
	}
	return combine(combine(combine(acc1, acc2), acc3), acc4), true
}

func (t Tuple4[I1, Q1, I2, Q2, I3, Q3, I4, Q4]) borrowAll(a *Archetype) {
	t.A.borrowAll(a)
	t.B.borrowAll(a)
	t.C.borrowAll(a)
	t.D.borrowAll(a)
}

func (t Tuple4[I1, Q1, I2, Q2, I3, Q3, I4, Q4]) releaseAll(a *Archetype) {
	t.A.releaseAll(a)
	t.B.releaseAll(a)
	t.C.releaseAll(a)
	t.D.releaseAll(a)
}

func (t Tuple4[I1, Q1, I2, Q2, I3, Q3, I4, Q4]) newState(a *Archetype) rowState[Item4[I1, I2, I3, I4]] {
	return tuple4State[I1, I2, I3, I4]{a: t.A.newState(a), b: t.B.newState(a), c: t.C.newState(a), d: t.D.newState(a)}
}

type tuple4State[I1, I2, I3, I4 any] struct {
	a rowState[I1]
	b rowState[I2]
	c rowState[I3]
	d rowState[I4]
}

func (s tuple4State[I1, I2, I3, I4]) get(row int) Item4[I1, I2, I3, I4] {
	return Item4[I1, I2, I3, I4]{A: s.a.get(row), B: s.b.get(row), C: s.c.get(row), D: s.d.get(row)}
}

// Item5 is the item yielded by Tuple5.
type Item5[I1, I2, I3, I4, I5 any] struct {
	A I1
	B I2
	C I3
	D I4
	E I5
}

// Tuple5 composes five descriptors, the largest arity this package gives a
// dedicated type.
type Tuple5[I1 any, Q1 term[I1], I2 any, Q2 term[I2], I3 any, Q3 term[I3], I4 any, Q4 term[I4], I5 any, Q5 term[I5]] struct {
	A Q1
	B Q2
	C Q3
	D Q4
	E Q5
}

func (t Tuple5[I1, Q1, I2, Q2, I3, Q3, I4, Q4, I5, Q5]) access(a *Archetype) (Access, bool) {
	acc1, ok1 := t.A.access(a)
	if !ok1 {
		return 0, false
	}
	acc2, ok2 := t.B.access(a)
	if !ok2 {
		return 0, false
	}
	acc3, ok3 := t.C.access(a)
	if !ok3 {
		return 0, false
	}
	acc4, ok4 := t.D.access(a)
	if !ok4 {
		return 0, false
	}
	acc5, ok5 := t.E.access(a)
	if !ok5 {
		return 0, false
	}
	return combine(combine(combine(combine(acc1, acc2), acc3), acc4), acc5), true
}

func (t Tuple5[I1, Q1, I2, Q2, I3, Q3, I4, Q4, I5, Q5]) borrowAll(a *Archetype) {
	t.A.borrowAll(a)
	t.B.borrowAll(a)
	t.C.borrowAll(a)
	t.D.borrowAll(a)
	t.E.borrowAll(a)
}

func (t Tuple5[I1, Q1, I2, Q2, I3, Q3, I4, Q4, I5, Q5]) releaseAll(a *Archetype) {
	t.A.releaseAll(a)
	t.B.releaseAll(a)
	t.C.releaseAll(a)
	t.D.releaseAll(a)
	t.E.releaseAll(a)
}

func (t Tuple5[I1, Q1, I2, Q2, I3, Q3, I4, Q4, I5, Q5]) newState(a *Archetype) rowState[Item5[I1, I2, I3, I4, I5]] {
	return tuple5State[I1, I2, I3, I4, I5]{
		a: t.A.newState(a), b: t.B.newState(a), c: t.C.newState(a), d: t.D.newState(a), e: t.E.newState(a),
	}
}

type tuple5State[I1, I2, I3, I4, I5 any] struct {
	a rowState[I1]
	b rowState[I2]
	c rowState[I3]
	d rowState[I4]
	e rowState[I5]
}

func (s tuple5State[I1, I2, I3, I4, I5]) get(row int) Item5[I1, I2, I3, I4, I5] {
	return Item5[I1, I2, I3, I4, I5]{A: s.a.get(row), B: s.b.get(row), C: s.c.get(row), D: s.d.get(row), E: s.e.get(row)}
}
