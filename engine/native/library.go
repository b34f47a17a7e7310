//go:build darwin || linux || freebsd

package native

import (
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// Library is a geometry module loaded from a shared library that exports createComplexWeaverGeometry,
// weaver_malloc and weaver_free.
type Library struct {
	mu     *sync.Mutex
	path   string
	handle uintptr
	live   map[uintptr]int

	createWeaver func(detail int32, radius, tube float32, p, q int32, size unsafe.Pointer) unsafe.Pointer
	malloc       func(size uintptr) unsafe.Pointer
	free         func(ptr unsafe.Pointer)
}

var _ Module = &Library{}

var librarySymbols = []string{"createComplexWeaverGeometry", "weaver_malloc", "weaver_free"}

// OpenLibrary dlopens the shared library at path and binds the weaver exports.
//
// Parameters:
//   - path: filesystem path of the shared library
//
// Returns:
//   - *Library: the bound module
//   - error: error if the library cannot be opened or a symbol is missing
func OpenLibrary(path string) (*Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, fmt.Errorf("dlopen %s: %w", path, err)
	}
	for _, sym := range librarySymbols {
		if _, err := purego.Dlsym(handle, sym); err != nil {
			_ = purego.Dlclose(handle)
			return nil, fmt.Errorf("%s in %s: %w", sym, path, ErrSymbol)
		}
	}

	l := &Library{
		mu:     &sync.Mutex{},
		path:   path,
		handle: handle,
		live:   make(map[uintptr]int),
	}
	purego.RegisterLibFunc(&l.createWeaver, handle, "createComplexWeaverGeometry")
	purego.RegisterLibFunc(&l.malloc, handle, "weaver_malloc")
	purego.RegisterLibFunc(&l.free, handle, "weaver_free")
	return l, nil
}

func (l *Library) Malloc(size int) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return 0, ErrNotLoaded
	}
	ptr := l.malloc(uintptr(size))
	if ptr == nil {
		return 0, fmt.Errorf("weaver_malloc(%d) returned NULL", size)
	}
	l.live[uintptr(ptr)] = size
	return uintptr(ptr), nil
}

func (l *Library) Free(ptr uintptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return ErrNotLoaded
	}
	if _, ok := l.live[ptr]; !ok {
		return fmt.Errorf("free %#x: %w", ptr, ErrBadPointer)
	}
	delete(l.live, ptr)
	l.free(unsafe.Pointer(ptr))
	return nil
}

func (l *Library) CreateWeaver(detail int32, radius, tube float32, p, q int32, sizePtr uintptr) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return 0, ErrNotLoaded
	}
	if size, ok := l.live[sizePtr]; !ok || size < 4 {
		return 0, fmt.Errorf("size cell %#x: %w", sizePtr, ErrBadPointer)
	}
	data := l.createWeaver(detail, radius, tube, p, q, unsafe.Pointer(sizePtr))
	if data == nil {
		return 0, fmt.Errorf("createComplexWeaverGeometry returned NULL")
	}
	count := *(*int32)(unsafe.Pointer(sizePtr))
	l.live[uintptr(data)] = int(count) * 4
	return uintptr(data), nil
}

func (l *Library) ReadInt32(ptr uintptr) (int32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.check(ptr, 4); err != nil {
		return 0, err
	}
	return *(*int32)(unsafe.Pointer(ptr)), nil
}

func (l *Library) ReadFloat32s(ptr uintptr, n int) ([]float32, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.check(ptr, n*4); err != nil {
		return nil, err
	}
	src := unsafe.Slice((*float32)(unsafe.Pointer(ptr)), n)
	return append([]float32(nil), src...), nil
}

// Close unloads the shared library. Regions still live are leaked to the OS.
func (l *Library) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.handle == 0 {
		return nil
	}
	err := purego.Dlclose(l.handle)
	l.handle = 0
	if err != nil {
		return fmt.Errorf("dlclose %s: %w", l.path, err)
	}
	return nil
}

func (l *Library) check(ptr uintptr, n int) error {
	if l.handle == 0 {
		return ErrNotLoaded
	}
	size, ok := l.live[ptr]
	if !ok || n > size {
		return fmt.Errorf("access %#x+%d: %w", ptr, n, ErrBadPointer)
	}
	return nil
}
