package arena

import (
	"unsafe"

	"github.com/pkg/errors"
)

// Allocator is the capability generic containers allocate through. It knows
// nothing about arenas: any implementation can back a container.
type Allocator interface {
	// Allocate returns size bytes aligned to alignment. Failure is reported
	// as an error wrapping ErrOutOfMemory.
	Allocate(size, alignment uintptr) (unsafe.Pointer, error)

	// Deallocate hands back memory obtained from Allocate with the same
	// size and alignment.
	Deallocate(p unsafe.Pointer, size, alignment uintptr)

	// Equal reports whether memory allocated from one allocator may be
	// deallocated through the other.
	Equal(other Allocator) bool
}

var (
	_ Allocator = (*Resource)(nil)
	_ Allocator = (*GoAllocator)(nil)
)

// Resource exposes an Arena as an Allocator.
type Resource struct {
	a *Arena
}

// NewResource returns an Allocator that serves every request from a.
func NewResource(a *Arena) *Resource {
	return &Resource{a: a}
}

// Arena returns the arena behind r.
func (r *Resource) Arena() *Arena { return r.a }

// Allocate forwards to Arena.Allocate.
func (r *Resource) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	return r.a.Allocate(size, alignment)
}

// Deallocate does nothing. Arena memory is reclaimed in bulk by rollback,
// Reset or Release.
func (r *Resource) Deallocate(unsafe.Pointer, uintptr, uintptr) {}

// Equal reports whether other is the same Resource.
func (r *Resource) Equal(other Allocator) bool {
	o, ok := other.(*Resource)
	return ok && o == r
}

// GoAllocator is an Allocator backed by the Go heap. It is safe to use from
// multiple goroutines.
//
// Allocate returns untyped bytes that the garbage collector does not scan
// for pointers. Memory obtained from it must not hold the only reference to
// a heap object. container.Vector recognizes a GoAllocator and allocates
// typed slices instead, so vectors of pointers are safe.
type GoAllocator struct{}

// NewGoAllocator returns a heap-backed Allocator.
func NewGoAllocator() *GoAllocator { return &GoAllocator{} }

// Allocate returns size bytes from the Go heap, padded so that the result is
// aligned to alignment.
func (g *GoAllocator) Allocate(size, alignment uintptr) (p unsafe.Pointer, err error) {
	if size == 0 {
		return nil, nil
	}
	if !validAlign(alignment) {
		alignment = DefaultAlign
	}
	total := size + alignment
	if total < size || total > maxChunkSize {
		return nil, errors.Wrapf(ErrOutOfMemory, "go allocator: %d bytes at alignment %d", size, alignment)
	}
	defer func() {
		if r := recover(); r != nil {
			p = nil
			err = errors.Wrapf(ErrOutOfMemory, "go allocator: %d bytes: %v", size, r)
		}
	}()
	buf := make([]byte, total)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	shift := alignUp(addr, alignment) - addr
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(buf)), shift), nil
}

// Deallocate does nothing; the garbage collector reclaims the memory.
func (g *GoAllocator) Deallocate(unsafe.Pointer, uintptr, uintptr) {}

// Equal reports whether other also allocates from the Go heap.
func (g *GoAllocator) Equal(other Allocator) bool {
	_, ok := other.(*GoAllocator)
	return ok
}
