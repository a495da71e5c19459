package arena

import (
	"unsafe"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultBlockSize is the default size of an arena's first chunk (64 KiB).
	DefaultBlockSize = 1 << 16

	// MinBlockSize is the smallest block size an arena accepts. Smaller
	// requests are raised to it.
	MinBlockSize = 1 << 10

	// DefaultAlign is used when a caller passes an alignment that is zero
	// or not a power of two. It covers every Go type as well as 128-bit
	// vector loads.
	DefaultAlign = 16
)

const maxUintptr = ^uintptr(0)

// Arena is a chunked bump allocator. It is not safe for concurrent use.
//
// Chunks form a chain in the order they were created. The active chunk
// serves allocations; when it is full the arena moves on to the next chunk
// emptied by a rollback, or grows the chain by a new chunk at least twice
// the size of the active one.
type Arena struct {
	chunks   []*chunk
	active   int // index into chunks
	seed     int // size of the first chunk, floor for every later one
	src      Source
	log      logrus.FieldLogger
	released bool
}

// NewArena creates a new Arena whose first chunk holds blockSize bytes.
// If blockSize <= 0, DefaultBlockSize is used; sizes below MinBlockSize are
// raised to MinBlockSize.
func NewArena(blockSize int, opts ...Option) (*Arena, error) {
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	if blockSize < MinBlockSize {
		blockSize = MinBlockSize
	}
	o := defaultArenaOptions()
	for _, opt := range opts {
		opt(o)
	}

	head, err := newChunk(o.src, blockSize)
	if err != nil {
		return nil, errors.Wrapf(err, "reserve first chunk of %d bytes", blockSize)
	}
	return &Arena{
		chunks: []*chunk{head},
		seed:   blockSize,
		src:    o.src,
		log:    o.log,
	}, nil
}

// MustNewArena is like NewArena but panics if the first chunk cannot be
// reserved.
func MustNewArena(blockSize int, opts ...Option) *Arena {
	a, err := NewArena(blockSize, opts...)
	if err != nil {
		panic(err)
	}
	return a
}

// Allocate returns size bytes aligned to alignment from the arena.
//
// A zero size returns a nil pointer and leaves the arena untouched. After
// Release every request, zero-sized or not, fails with ErrReleased. An
// alignment that is zero or not a power of two is replaced by DefaultAlign.
// The memory is not zeroed and stays valid until the arena is rolled back
// past it, reset or released.
func (a *Arena) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	if a.released {
		return nil, ErrReleased
	}
	if size == 0 {
		return nil, nil
	}
	if !validAlign(alignment) {
		alignment = DefaultAlign
	}

	// Fast path: bump the active chunk
	if p := a.chunks[a.active].tryAlloc(size, alignment); p != nil {
		return p, nil
	}
	return a.allocateSlow(size, alignment)
}

// allocateSlow handles allocation when the active chunk is full.
func (a *Arena) allocateSlow(size, alignment uintptr) (unsafe.Pointer, error) {
	if i := a.reusable(size, alignment); i >= 0 {
		a.active = i
		return a.chunks[i].tryAlloc(size, alignment), nil
	}

	if err := a.grow(size, alignment); err != nil {
		return nil, err
	}
	if p := a.chunks[a.active].tryAlloc(size, alignment); p != nil {
		return p, nil
	}
	return nil, errors.Wrapf(ErrOutOfMemory, "%d bytes at alignment %d do not fit a fresh chunk", size, alignment)
}

// reusable returns the index of the first chunk after the active one that
// can hold the request, or -1. Chunks after the active one are only ever
// non-full because a rollback emptied them.
func (a *Arena) reusable(size, alignment uintptr) int {
	for i := a.active + 1; i < len(a.chunks); i++ {
		if _, ok := a.chunks[i].fit(size, alignment); ok {
			a.log.WithFields(logrus.Fields{
				"chunk":    i,
				"capacity": a.chunks[i].capacity(),
				"request":  size,
			}).Debug("Reusing rolled back chunk")
			return i
		}
	}
	return -1
}

// grow appends a chunk large enough for size bytes at alignment and makes it
// active. The new capacity is the largest of twice the active chunk, the
// request plus its alignment, and the arena's block size.
func (a *Arena) grow(size, alignment uintptr) error {
	need := size + alignment
	if need < size {
		return errors.Wrapf(ErrOutOfMemory, "request of %d bytes at alignment %d overflows", size, alignment)
	}

	newCap := uintptr(a.chunks[a.active].capacity())
	if newCap > maxUintptr/2 {
		newCap = maxUintptr
	} else {
		newCap *= 2
	}
	newCap = max(newCap, need, uintptr(a.seed))
	if newCap > maxChunkSize {
		return errors.Wrapf(ErrOutOfMemory, "chunk of %d bytes exceeds the maximum chunk size", newCap)
	}

	c, err := newChunk(a.src, int(newCap))
	if err != nil {
		return errors.Wrapf(err, "grow arena by %d bytes", newCap)
	}
	a.chunks = append(a.chunks, c)
	a.active = len(a.chunks) - 1
	a.log.WithFields(logrus.Fields{
		"chunk":    a.active,
		"capacity": newCap,
		"request":  size,
		"source":   a.src.Name(),
	}).Debug("Grew arena")
	return nil
}

// AllocBytes returns a []byte slice of n bytes pointing into the arena,
// aligned to DefaultAlign. The contents are undefined: memory handed back by
// a rollback is not cleared. Returns nil if n <= 0.
func (a *Arena) AllocBytes(n int) ([]byte, error) {
	if a.released {
		return nil, ErrReleased
	}
	if n <= 0 {
		return nil, nil
	}
	p, err := a.Allocate(uintptr(n), DefaultAlign)
	if err != nil {
		return nil, err
	}
	return unsafe.Slice((*byte)(p), n), nil
}

// EnsureCapacity makes sure the next allocation of up to n bytes at
// DefaultAlign succeeds without growing the arena, growing it now if
// necessary.
func (a *Arena) EnsureCapacity(n int) error {
	if a.released {
		return ErrReleased
	}
	if n <= 0 {
		return nil
	}
	size := uintptr(n)
	if _, ok := a.chunks[a.active].fit(size, DefaultAlign); ok {
		return nil
	}
	if i := a.reusable(size, DefaultAlign); i >= 0 {
		a.active = i
		return nil
	}
	return a.grow(size, DefaultAlign)
}

// Reset rolls the arena back to its very first byte. Every chunk is kept for
// reuse; nothing is returned to the source.
func (a *Arena) Reset() {
	a.RollbackTo(Marker{valid: true})
}

// Release returns every chunk to its source, exactly once, and makes the
// arena unusable. Further allocations fail with ErrReleased. Calling Release
// again is a no-op.
func (a *Arena) Release() error {
	if a.released {
		return nil
	}
	a.released = true

	combinedErr := &multierror.Error{}
	for i, c := range a.chunks {
		if err := c.release(); err != nil {
			a.log.WithError(err).WithField("chunk", i).Error("Failed to release chunk")
			combinedErr = multierror.Append(combinedErr, errors.Wrapf(err, "release chunk %d", i))
		}
	}
	a.log.WithFields(logrus.Fields{
		"chunks": len(a.chunks),
		"source": a.src.Name(),
	}).Debug("Released arena")

	a.chunks = nil
	a.active = 0
	return combinedErr.ErrorOrNil()
}
