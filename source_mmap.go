//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package arena

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

const mmapSupported = true

// MmapSource reserves every chunk as its own anonymous private mapping and
// unmaps it when the arena is released. Memory is handed back to the
// operating system at Release instead of waiting for a garbage collection.
//
// The garbage collector does not scan mapped memory: values stored in an
// mmap-backed arena must not hold the only reference to a Go heap object.
type MmapSource struct{}

// Name implements Source.
func (MmapSource) Name() string { return "mmap" }

// Reserve implements Source. Mappings are page aligned.
func (MmapSource) Reserve(size int) ([]byte, error) {
	if size <= 0 || size > maxChunkSize {
		return nil, errors.Wrapf(ErrOutOfMemory, "mmap: cannot reserve %d bytes", size)
	}
	buf, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, errors.Wrapf(ErrOutOfMemory, "mmap: reserve %d bytes: %v", size, err)
	}
	return buf, nil
}

// Free implements Source.
func (MmapSource) Free(buf []byte) error {
	if err := unix.Munmap(buf); err != nil {
		return errors.Wrapf(err, "munmap %d bytes", len(buf))
	}
	return nil
}
