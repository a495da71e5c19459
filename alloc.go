package arena

import (
	"math"
	"math/bits"
	"unsafe"

	"github.com/pkg/errors"
)

// Alloc returns a pointer to a zeroed T stored inside the arena, aligned for
// T. The returned pointer is valid as long as the arena hasn't been rolled
// back past it or released.
//
// The garbage collector does not see pointers stored in arena memory. T may
// hold pointers only to memory that is kept alive some other way.
func Alloc[T any](a *Arena) (*T, error) {
	if a.released {
		return nil, ErrReleased
	}
	var zero T
	size := unsafe.Sizeof(zero)
	if size == 0 {
		return new(T), nil
	}
	p, err := a.Allocate(size, unsafe.Alignof(zero))
	if err != nil {
		return nil, err
	}
	clear(unsafe.Slice((*byte)(p), size))
	return (*T)(p), nil
}

// AllocSlice allocates a zeroed slice of n elements of type T inside the
// arena. Returns nil if n <= 0.
func AllocSlice[T any](a *Arena, n int) ([]T, error) {
	if a.released {
		return nil, ErrReleased
	}
	if n <= 0 {
		return nil, nil
	}
	var zero T
	elemSize := unsafe.Sizeof(zero)
	if elemSize == 0 {
		return make([]T, n), nil
	}
	hi, total := bits.Mul(uint(elemSize), uint(n))
	if hi != 0 || total > math.MaxInt {
		return nil, errors.Wrapf(ErrOutOfMemory, "slice of %d elements of %d bytes", n, elemSize)
	}
	p, err := a.Allocate(uintptr(total), unsafe.Alignof(zero))
	if err != nil {
		return nil, err
	}
	s := unsafe.Slice((*T)(p), n)
	clear(s)
	return s, nil
}

// Construct allocates a zeroed T in the arena and hands it to init to be
// filled in. A nil init leaves the zero value.
//
// If init returns an error, the arena is rolled back to where it was before
// the call and the error is returned unchanged. The same rollback happens
// before a panic in init is propagated. Either way the bytes stay in the
// arena and are handed out again by the next allocation.
func Construct[T any](a *Arena, init func(*T) error) (*T, error) {
	m := a.CreateMarker()
	p, err := Alloc[T](a)
	if err != nil {
		a.RollbackTo(m)
		return nil, err
	}
	if init == nil {
		return p, nil
	}

	ok := false
	defer func() {
		if !ok {
			a.RollbackTo(m)
		}
	}()
	if err := init(p); err != nil {
		return nil, err
	}
	ok = true
	return p, nil
}
