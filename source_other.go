//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package arena

const mmapSupported = false

// MmapSource is not available on this platform. Every reservation fails
// with ErrSourceUnsupported.
type MmapSource struct{}

// Name implements Source.
func (MmapSource) Name() string { return "mmap" }

// Reserve implements Source.
func (MmapSource) Reserve(int) ([]byte, error) { return nil, ErrSourceUnsupported }

// Free implements Source.
func (MmapSource) Free([]byte) error { return nil }
