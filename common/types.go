// package common contains common types that are used throughout this module. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import "sync/atomic"

// Handle identifies a graphics object and the factory that created it.
// Caches key on handles rather than on the objects themselves, so a cache entry never keeps its key alive.
type Handle struct {
	// ID is unique across the process for the lifetime of the program.
	ID uint64
	// Factory is the ID of the GraphicsFactory that created the object, or 0 for objects created outside a factory.
	Factory uint64
}

var nextID atomic.Uint64

// NextID returns a new process-unique identifier. Identifiers start at 1 so the zero value can mean "unset".
//
// Returns:
//   - uint64: the new identifier
func NextID() uint64 {
	return nextID.Add(1)
}

// Color is an RGBA color with components in the [0, 1] range.
type Color struct {
	R, G, B, A float64
}

// ColorBlack is opaque black, the default clear color.
var ColorBlack = Color{R: 0, G: 0, B: 0, A: 1}
