package arena

import (
	"math"
	"unsafe"

	"github.com/pkg/errors"
)

// maxChunkSize bounds a single chunk request. Anything larger is reported as
// ErrOutOfMemory before a source is asked for it.
const maxChunkSize = math.MaxInt >> 1

// Source reserves and releases the raw spans that back arena chunks.
//
// Reserve must return a buffer of exactly size bytes whose first byte is
// aligned to at least DefaultAlign, or an error wrapping ErrOutOfMemory.
// Free is called exactly once for every buffer returned by Reserve.
type Source interface {
	Reserve(size int) ([]byte, error)
	Free(buf []byte) error
	Name() string
}

// SourceByName returns the chunk source registered under name: "heap" or
// "mmap". An empty name selects the heap.
func SourceByName(name string) (Source, error) {
	switch name {
	case "", "heap":
		return HeapSource{}, nil
	case "mmap":
		if !mmapSupported {
			return nil, errors.Wrapf(ErrSourceUnsupported, "source %q", name)
		}
		return MmapSource{}, nil
	default:
		return nil, errors.Wrapf(ErrUnknownSource, "source %q", name)
	}
}

// HeapSource reserves chunks from the Go heap. Chunks are kept alive by the
// arena and collected once the arena is released and unreachable.
type HeapSource struct{}

// Name implements Source.
func (HeapSource) Name() string { return "heap" }

// Reserve implements Source. The buffer is over-allocated by DefaultAlign
// bytes and shifted so that its first byte is DefaultAlign-aligned.
func (HeapSource) Reserve(size int) (buf []byte, err error) {
	if size <= 0 || size > maxChunkSize-DefaultAlign {
		return nil, errors.Wrapf(ErrOutOfMemory, "heap: cannot reserve %d bytes", size)
	}
	defer func() {
		// make panics instead of returning an error when the length is
		// beyond what the runtime can ever allocate.
		if r := recover(); r != nil {
			buf = nil
			err = errors.Wrapf(ErrOutOfMemory, "heap: reserve %d bytes: %v", size, r)
		}
	}()
	raw := make([]byte, size+DefaultAlign)
	addr := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	shift := int(alignUp(addr, DefaultAlign) - addr)
	return raw[shift : shift+size : shift+size], nil
}

// Free implements Source. Heap chunks are reclaimed by the garbage collector
// once the arena drops its reference.
func (HeapSource) Free([]byte) error { return nil }
