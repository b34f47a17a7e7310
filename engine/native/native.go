// Package native bridges the procedural geometry module that generates the weaver knot. The module can be a
// shared library bound at runtime or the built-in Go implementation; both expose the same linear-memory call
// contract so the caller owns every buffer it receives.
package native

import (
	"errors"
	"fmt"
)

var (
	// ErrNotLoaded is returned when a geometry call is made without a loaded module.
	ErrNotLoaded = errors.New("native module not loaded")
	// ErrSymbol is returned when a shared library lacks one of the required exports.
	ErrSymbol = errors.New("native module symbol missing")
	// ErrBadPointer is returned when a module is asked to read or free memory it never handed out.
	ErrBadPointer = errors.New("native module pointer out of range")
)

// Module is the call contract of the geometry module. Pointers are addresses in the module's own memory.
type Module interface {
	// Malloc reserves size bytes in module memory.
	//
	// Parameters:
	//   - size: number of bytes to reserve
	//
	// Returns:
	//   - uintptr: address of the region
	//   - error: error if the allocation failed
	Malloc(size int) (uintptr, error)

	// Free releases a region previously returned by Malloc or CreateWeaver.
	//
	// Parameters:
	//   - ptr: address of the region
	//
	// Returns:
	//   - error: error if ptr is not a live allocation
	Free(ptr uintptr) error

	// CreateWeaver generates the (p, q) torus knot point list. The returned region holds float32 triples and
	// the number of floats is written as an int32 into the cell at sizePtr.
	//
	// Parameters:
	//   - detail: resolution multiplier, the knot has detail*100+1 points
	//   - radius: major radius of the knot
	//   - tube: displacement of the knot from the major circle
	//   - p: number of windings around the axis of rotational symmetry
	//   - q: number of windings around the interior circle
	//   - sizePtr: address of a 4 byte output cell
	//
	// Returns:
	//   - uintptr: address of the float data
	//   - error: error if the call failed
	CreateWeaver(detail int32, radius, tube float32, p, q int32, sizePtr uintptr) (uintptr, error)

	// ReadInt32 reads a little-endian int32 from module memory.
	//
	// Parameters:
	//   - ptr: address of the value
	//
	// Returns:
	//   - int32: the value
	//   - error: error if ptr is out of range
	ReadInt32(ptr uintptr) (int32, error)

	// ReadFloat32s copies n float32 values out of module memory.
	//
	// Parameters:
	//   - ptr: address of the first value
	//   - n: number of values
	//
	// Returns:
	//   - []float32: an owned copy of the values
	//   - error: error if the range is out of bounds
	ReadFloat32s(ptr uintptr, n int) ([]float32, error)

	// Close unloads the module. Safe to call more than once.
	//
	// Returns:
	//   - error: error if the module could not be unloaded
	Close() error
}

// WeaverParams are the shape parameters of the weaver knot.
type WeaverParams struct {
	Detail int32
	Radius float32
	Tube   float32
	P      int32
	Q      int32
}

// DefaultWeaverParams is the knot used by the commentators badge.
var DefaultWeaverParams = WeaverParams{Detail: 10, Radius: 1.5, Tube: 0.1, P: 5, Q: 7}

// GenerateWeaverPoints calls the module and copies the knot into owned points. Both the size cell and the
// data region are released before returning, on every path past their allocation, including an empty result.
//
// Parameters:
//   - m: the loaded module
//   - params: knot shape parameters
//
// Returns:
//   - [][3]float32: the knot points
//   - error: ErrNotLoaded when m is nil, or the first module error encountered
func GenerateWeaverPoints(m Module, params WeaverParams) (points [][3]float32, err error) {
	if m == nil {
		return nil, ErrNotLoaded
	}

	sizePtr, err := m.Malloc(4)
	if err != nil {
		return nil, fmt.Errorf("allocate size cell: %w", err)
	}
	defer func() {
		if ferr := m.Free(sizePtr); ferr != nil && err == nil {
			err = fmt.Errorf("free size cell: %w", ferr)
		}
	}()

	dataPtr, err := m.CreateWeaver(params.Detail, params.Radius, params.Tube, params.P, params.Q, sizePtr)
	if err != nil {
		return nil, fmt.Errorf("create weaver: %w", err)
	}
	defer func() {
		if ferr := m.Free(dataPtr); ferr != nil && err == nil {
			err = fmt.Errorf("free weaver data: %w", ferr)
		}
	}()

	count, err := m.ReadInt32(sizePtr)
	if err != nil {
		return nil, fmt.Errorf("read size cell: %w", err)
	}
	if count <= 0 {
		return [][3]float32{}, nil
	}

	floats, err := m.ReadFloat32s(dataPtr, int(count))
	if err != nil {
		return nil, fmt.Errorf("read weaver data: %w", err)
	}
	points = make([][3]float32, len(floats)/3)
	for i := range points {
		points[i] = [3]float32{floats[i*3], floats[i*3+1], floats[i*3+2]}
	}
	return points, nil
}
