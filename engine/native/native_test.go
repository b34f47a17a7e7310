package native

import (
	"errors"
	"math"
	"testing"
)

// countingModule wraps a Module and records frees; it can be told to report a fixed size.
type countingModule struct {
	Module
	frees     []uintptr
	forceSize *int32
	createErr error
}

func (c *countingModule) Free(ptr uintptr) error {
	c.frees = append(c.frees, ptr)
	return c.Module.Free(ptr)
}

func (c *countingModule) CreateWeaver(detail int32, radius, tube float32, p, q int32, sizePtr uintptr) (uintptr, error) {
	if c.createErr != nil {
		return 0, c.createErr
	}
	return c.Module.CreateWeaver(detail, radius, tube, p, q, sizePtr)
}

func (c *countingModule) ReadInt32(ptr uintptr) (int32, error) {
	if c.forceSize != nil {
		return *c.forceSize, nil
	}
	return c.Module.ReadInt32(ptr)
}

func TestGenerateWeaverPoints(t *testing.T) {
	b := NewBuiltin()
	m := &countingModule{Module: b}

	points, err := GenerateWeaverPoints(m, DefaultWeaverParams)
	if err != nil {
		t.Fatalf("GenerateWeaverPoints: %v", err)
	}
	if got, want := len(points), 10*100+1; got != want {
		t.Fatalf("point count: got %d, want %d", got, want)
	}
	if len(m.frees) != 2 {
		t.Fatalf("expected 2 frees, got %d", len(m.frees))
	}
	if b.Live() != 0 {
		t.Fatalf("%d regions still live", b.Live())
	}

	// every knot point lies within radius +- tube of the axis
	for i, p := range points {
		ring := math.Hypot(float64(p[0]), float64(p[1]))
		if ring < 1.4-1e-4 || ring > 1.6+1e-4 {
			t.Fatalf("point %d off the knot: %f", i, ring)
		}
	}
	first, last := points[0], points[len(points)-1]
	for i := range 3 {
		if math.Abs(float64(first[i]-last[i])) > 1e-4 {
			t.Fatalf("knot is not closed: %v vs %v", first, last)
		}
	}
}

func TestGenerateWeaverPointsCopiesTriples(t *testing.T) {
	twelve := int32(12 * 3)
	m := &countingModule{Module: NewBuiltin(), forceSize: &twelve}

	points, err := GenerateWeaverPoints(m, WeaverParams{Detail: 1, Radius: 1, Tube: 0.1, P: 2, Q: 3})
	if err != nil {
		t.Fatalf("GenerateWeaverPoints: %v", err)
	}
	if len(points) != 12 {
		t.Fatalf("expected 12 triples, got %d", len(points))
	}
	if len(m.frees) != 2 {
		t.Fatalf("expected 2 frees, got %d", len(m.frees))
	}
}

func TestGenerateWeaverPointsEmptyStillFrees(t *testing.T) {
	zero := int32(0)
	b := NewBuiltin()
	m := &countingModule{Module: b, forceSize: &zero}

	points, err := GenerateWeaverPoints(m, DefaultWeaverParams)
	if err != nil {
		t.Fatalf("GenerateWeaverPoints: %v", err)
	}
	if len(points) != 0 {
		t.Fatalf("expected no points, got %d", len(points))
	}
	if len(m.frees) != 2 {
		t.Fatalf("expected 2 frees for an empty result, got %d", len(m.frees))
	}
	if allocs, frees := b.Stats(); allocs != frees {
		t.Fatalf("allocs %d != frees %d", allocs, frees)
	}
}

func TestGenerateWeaverPointsCreateError(t *testing.T) {
	boom := errors.New("boom")
	b := NewBuiltin()
	m := &countingModule{Module: b, createErr: boom}

	if _, err := GenerateWeaverPoints(m, DefaultWeaverParams); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped boom, got %v", err)
	}
	if len(m.frees) != 1 {
		t.Fatalf("size cell must be freed exactly once, got %d frees", len(m.frees))
	}
	if b.Live() != 0 {
		t.Fatalf("%d regions still live", b.Live())
	}
}

func TestGenerateWeaverPointsNilModule(t *testing.T) {
	if _, err := GenerateWeaverPoints(nil, DefaultWeaverParams); !errors.Is(err, ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
}

func TestBuiltinRejectsUnknownPointer(t *testing.T) {
	b := NewBuiltin()
	if err := b.Free(1234); !errors.Is(err, ErrBadPointer) {
		t.Fatalf("expected ErrBadPointer, got %v", err)
	}
	ptr, err := b.Malloc(4)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := b.ReadFloat32s(ptr, 2); !errors.Is(err, ErrBadPointer) {
		t.Fatalf("expected out of range read to fail, got %v", err)
	}
	if err := b.Free(ptr); err != nil {
		t.Fatal(err)
	}
	if err := b.Free(ptr); !errors.Is(err, ErrBadPointer) {
		t.Fatalf("double free must fail, got %v", err)
	}
}

func TestLoadBuiltin(t *testing.T) {
	m, err := Load(BuiltinLocator)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer m.Close()
	if _, ok := m.(*Builtin); !ok {
		t.Fatalf("expected *Builtin, got %T", m)
	}
}

func TestLoadMissingLibrary(t *testing.T) {
	if _, err := Load(t.TempDir() + "/missing.so"); err == nil {
		t.Fatal("expected an error for a missing library")
	}
}
