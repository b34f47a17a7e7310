package native

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// Builtin is a Go implementation of the geometry module backed by a private byte arena. Addresses are
// offsets into the arena; zero is never handed out.
type Builtin struct {
	mu     *sync.Mutex
	memory []byte
	next   int
	live   map[uintptr]int
	allocs int
	frees  int
}

var _ Module = &Builtin{}

// NewBuiltin creates an empty built-in module.
func NewBuiltin() *Builtin {
	return &Builtin{
		mu:     &sync.Mutex{},
		memory: make([]byte, 64*1024),
		next:   8,
		live:   make(map[uintptr]int),
	}
}

// Stats reports how many regions have been allocated and freed over the module's lifetime.
func (b *Builtin) Stats() (allocs, frees int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.allocs, b.frees
}

// Live returns the number of regions not yet freed.
func (b *Builtin) Live() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.live)
}

func (b *Builtin) Malloc(size int) (uintptr, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.malloc(size)
}

func (b *Builtin) malloc(size int) (uintptr, error) {
	if size < 0 {
		return 0, fmt.Errorf("malloc %d bytes: negative size", size)
	}
	ptr := (b.next + 7) &^ 7
	end := ptr + max(size, 1)
	for end > len(b.memory) {
		grown := make([]byte, len(b.memory)*2)
		copy(grown, b.memory)
		b.memory = grown
	}
	b.next = end
	b.live[uintptr(ptr)] = size
	b.allocs++
	return uintptr(ptr), nil
}

func (b *Builtin) Free(ptr uintptr) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.live[ptr]; !ok {
		return fmt.Errorf("free %#x: %w", ptr, ErrBadPointer)
	}
	delete(b.live, ptr)
	b.frees++
	if len(b.live) == 0 {
		// arena is empty again, rewind the bump pointer
		b.next = 8
	}
	return nil
}

func (b *Builtin) CreateWeaver(detail int32, radius, tube float32, p, q int32, sizePtr uintptr) (uintptr, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.check(sizePtr, 4); err != nil {
		return 0, err
	}
	segments := int(max(detail, 0)) * 100
	floats := (segments + 1) * 3
	data, err := b.malloc(floats * 4)
	if err != nil {
		return 0, err
	}

	off := int(data)
	for i := 0; i <= segments; i++ {
		u := float64(i) / float64(segments) * 2 * math.Pi * float64(p)
		if segments == 0 {
			u = 0
		}
		qu := float64(q) * u
		r := float64(radius) + float64(tube)*math.Cos(qu)
		xyz := [3]float64{r * math.Cos(u), r * math.Sin(u), float64(tube) * math.Sin(qu)}
		for _, v := range xyz {
			binary.LittleEndian.PutUint32(b.memory[off:], math.Float32bits(float32(v)))
			off += 4
		}
	}
	binary.LittleEndian.PutUint32(b.memory[sizePtr:], uint32(int32(floats)))
	return data, nil
}

func (b *Builtin) ReadInt32(ptr uintptr) (int32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ptr, 4); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(b.memory[ptr:])), nil
}

func (b *Builtin) ReadFloat32s(ptr uintptr, n int) ([]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.check(ptr, n*4); err != nil {
		return nil, err
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b.memory[int(ptr)+i*4:]))
	}
	return out, nil
}

// Close is a no-op for the built-in module.
func (b *Builtin) Close() error {
	return nil
}

// check verifies that [ptr, ptr+n) lies inside a live allocation.
func (b *Builtin) check(ptr uintptr, n int) error {
	size, ok := b.live[ptr]
	if !ok || n > size {
		return fmt.Errorf("access %#x+%d: %w", ptr, n, ErrBadPointer)
	}
	return nil
}
