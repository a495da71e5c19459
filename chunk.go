package arena

import "unsafe"

// noCopy lets `go vet -copylocks` flag chunks copied by value. Pointers
// handed out by an arena point into a chunk's buffer, so a chunk has a
// single identity for its whole life.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// chunk represents a single memory chunk within an arena.
type chunk struct {
	_   noCopy
	buf []byte  // backing memory, len(buf) is the capacity
	off uintptr // allocation offset within buf
	src Source  // where buf came from; buf goes back there on release
}

// newChunk reserves size bytes from src.
func newChunk(src Source, size int) (*chunk, error) {
	buf, err := src.Reserve(size)
	if err != nil {
		return nil, err
	}
	return &chunk{buf: buf, src: src}, nil
}

func (c *chunk) base() uintptr {
	return uintptr(unsafe.Pointer(unsafe.SliceData(c.buf)))
}

func (c *chunk) capacity() int {
	return len(c.buf)
}

// fit returns the offset at which size bytes aligned to align would start,
// and whether they fit before the end of the chunk. The cursor is aligned
// as an absolute address, not as an offset.
func (c *chunk) fit(size, align uintptr) (uintptr, bool) {
	base := c.base()
	off := alignUp(base+c.off, align) - base
	if off < c.off || off > uintptr(len(c.buf)) {
		// Rounding wrapped around the address space or ran past the end.
		return 0, false
	}
	return off, uintptr(len(c.buf))-off >= size
}

// tryAlloc bumps the cursor by size bytes at the given alignment. It returns
// nil and leaves the chunk untouched when the request does not fit.
func (c *chunk) tryAlloc(size, align uintptr) unsafe.Pointer {
	off, ok := c.fit(size, align)
	if !ok {
		return nil
	}
	c.off = off + size
	return unsafe.Add(unsafe.Pointer(unsafe.SliceData(c.buf)), off)
}

// release hands the buffer back to its source. Later calls are no-ops.
func (c *chunk) release() error {
	if c.buf == nil {
		return nil
	}
	buf := c.buf
	c.buf = nil
	c.off = 0
	return c.src.Free(buf)
}

// alignUp rounds addr up to the next multiple of align, which must be a
// power of two.
func alignUp(addr, align uintptr) uintptr {
	mask := align - 1
	return (addr + mask) &^ mask
}

// validAlign reports whether align is a usable alignment.
func validAlign(align uintptr) bool {
	return align != 0 && align&(align-1) == 0
}
