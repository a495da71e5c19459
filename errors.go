package arena

import "github.com/pkg/errors"

// Common errors
var (
	// ErrOutOfMemory is returned when a chunk cannot be reserved or a
	// request is too large to be represented.
	ErrOutOfMemory = errors.New("arena: out of memory")

	// ErrReleased is returned by operations on an arena after Release.
	ErrReleased = errors.New("arena: use after Release()")

	// ErrSourceUnsupported is returned when a chunk source is not available
	// on the current platform.
	ErrSourceUnsupported = errors.New("arena: chunk source not supported on this platform")

	// ErrUnknownSource is returned by SourceByName for unrecognised names.
	ErrUnknownSource = errors.New("arena: unknown chunk source")
)
