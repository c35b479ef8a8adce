// Package ecsquery implements the query core of an archetype-based
// entity-component store: a statically-typed descriptor algebra, a dynamic
// borrow protocol over archetype columns, and the iteration machinery that
// ties the two together.
package ecsquery

import (
	"fmt"
	"reflect"
	"unsafe"
)

// ComponentID identifies a registered component type. IDs are dense and
// start at zero, so they double as bit positions in an archetype's mask.
type ComponentID uint32

const (
	bitsPerWord       = 64
	maskWords         = 4
	maxComponentTypes = maskWords * bitsPerWord
)

var (
	typeToID       = make(map[reflect.Type]ComponentID, 64)
	idToType       = make(map[ComponentID]reflect.Type, 64)
	componentSizes [maxComponentTypes]uintptr
	nextComponent  ComponentID
)

// ResetGlobalRegistry clears the global component registry. Intended for
// test isolation between packages that each register their own component
// set; calling it while any World is alive invalidates that World's
// archetypes.
func ResetGlobalRegistry() {
	typeToID = make(map[reflect.Type]ComponentID, 64)
	idToType = make(map[ComponentID]reflect.Type, 64)
	componentSizes = [maxComponentTypes]uintptr{}
	nextComponent = 0
}

// RegisterComponent registers T as a component type and returns its ID,
// reusing the existing ID if T was already registered. Panics if the
// maximum number of distinct component types in a process is exceeded.
func RegisterComponent[T any]() ComponentID {
	var zero T
	t := reflect.TypeOf(zero)
	if id, ok := typeToID[t]; ok {
		return id
	}
	if int(nextComponent) >= maxComponentTypes {
		panic(fmt.Sprintf("ecsquery: cannot register component %s: maximum of %d component types reached", t, maxComponentTypes))
	}
	id := nextComponent
	typeToID[t] = id
	idToType[id] = t
	componentSizes[id] = unsafe.Sizeof(zero)
	nextComponent++
	return id
}

// componentID returns the ID for T, registering it on first use. The query
// descriptor algebra calls this lazily so that leaf descriptors (Read[T],
// Write[T], ...) never require an explicit registration step.
func componentID[T any]() ComponentID {
	var zero T
	t := reflect.TypeOf(zero)
	if id, ok := typeToID[t]; ok {
		return id
	}
	return RegisterComponent[T]()
}

// TryComponentID returns the ID for T and whether it has been registered,
// without registering it as a side effect.
func TryComponentID[T any]() (ComponentID, bool) {
	var zero T
	id, ok := typeToID[reflect.TypeOf(zero)]
	return id, ok
}
