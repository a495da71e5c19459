// Package container provides dynamic containers that take their storage from
// an arena.Allocator. They work with any allocator, arena-backed or not.
package container

import (
	"math"
	"math/bits"
	"unsafe"

	"github.com/pkg/errors"

	"github.com/pavanmanishd/arena/v2"
)

const minVectorCap = 4

// Vector is a growable sequence of T stored in memory obtained from an
// Allocator. Like a slice it doubles its capacity when full; the old storage
// is passed to Deallocate.
//
// Storage obtained from an arena is not scanned by the garbage collector,
// so T should not hold the only reference to heap objects. With a
// GoAllocator the storage is an ordinary typed Go slice and any T is safe.
type Vector[T any] struct {
	alloc arena.Allocator
	data  []T
}

// New creates an empty Vector with room for capacity elements. A nil
// allocator selects the Go heap.
func New[T any](alloc arena.Allocator, capacity int) (*Vector[T], error) {
	if alloc == nil {
		alloc = arena.NewGoAllocator()
	}
	v := &Vector[T]{alloc: alloc}
	if err := v.Reserve(capacity); err != nil {
		return nil, err
	}
	return v, nil
}

// Allocator returns the allocator v draws its storage from.
func (v *Vector[T]) Allocator() arena.Allocator { return v.alloc }

// Len returns the number of elements.
func (v *Vector[T]) Len() int { return len(v.data) }

// Cap returns the number of elements v can hold without reallocating.
func (v *Vector[T]) Cap() int { return cap(v.data) }

// Empty reports whether v has no elements.
func (v *Vector[T]) Empty() bool { return len(v.data) == 0 }

// At returns the element at index i. It panics if i is out of range.
func (v *Vector[T]) At(i int) T { return v.data[i] }

// Set replaces the element at index i. It panics if i is out of range.
func (v *Vector[T]) Set(i int, x T) { v.data[i] = x }

// Slice returns the elements as a slice sharing v's storage. It is
// invalidated by the next reallocation.
func (v *Vector[T]) Slice() []T { return v.data }

// Push appends x, growing the storage if needed.
func (v *Vector[T]) Push(x T) error {
	if len(v.data) == cap(v.data) {
		if err := v.Reserve(max(minVectorCap, 2*cap(v.data))); err != nil {
			return err
		}
	}
	v.data = append(v.data, x)
	return nil
}

// Pop removes and returns the last element. ok is false if v is empty.
func (v *Vector[T]) Pop() (x T, ok bool) {
	n := len(v.data)
	if n == 0 {
		return x, false
	}
	x = v.data[n-1]
	var zero T
	v.data[n-1] = zero
	v.data = v.data[:n-1]
	return x, true
}

// Clear removes every element but keeps the storage.
func (v *Vector[T]) Clear() {
	clear(v.data)
	v.data = v.data[:0]
}

// Reserve makes room for at least n elements.
func (v *Vector[T]) Reserve(n int) error {
	if n <= cap(v.data) {
		return nil
	}
	var zero T
	elemSize, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)
	if _, heap := v.alloc.(*arena.GoAllocator); heap || elemSize == 0 {
		// make gives the collector T's pointer layout; raw allocator
		// bytes are never scanned.
		data := make([]T, len(v.data), n)
		copy(data, v.data)
		v.data = data
		return nil
	}

	hi, total := bits.Mul(uint(elemSize), uint(n))
	if hi != 0 || total > math.MaxInt {
		return errors.Wrapf(arena.ErrOutOfMemory, "vector of %d elements of %d bytes", n, elemSize)
	}
	p, err := v.alloc.Allocate(uintptr(total), align)
	if err != nil {
		return errors.Wrapf(err, "reserve %d elements", n)
	}
	data := unsafe.Slice((*T)(p), n)[:len(v.data)]
	copy(data, v.data)
	v.deallocate()
	v.data = data
	return nil
}

// MoveFrom replaces v's contents with o's and leaves o empty. When both
// vectors use equal allocators o's storage is taken over as is; otherwise
// the elements are copied into storage from v's allocator.
func (v *Vector[T]) MoveFrom(o *Vector[T]) error {
	if v == o {
		return nil
	}
	if v.alloc.Equal(o.alloc) {
		v.deallocate()
		v.data, o.data = o.data, nil
		return nil
	}

	v.Clear()
	if err := v.Reserve(o.Len()); err != nil {
		return err
	}
	v.data = append(v.data, o.data...)
	o.Clear()
	return nil
}

// deallocate hands v's storage back to the allocator.
func (v *Vector[T]) deallocate() {
	if cap(v.data) == 0 {
		return
	}
	var zero T
	elemSize, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)
	if _, heap := v.alloc.(*arena.GoAllocator); heap || elemSize == 0 {
		return
	}
	v.alloc.Deallocate(unsafe.Pointer(unsafe.SliceData(v.data[:cap(v.data)])), elemSize*uintptr(cap(v.data)), align)
}
