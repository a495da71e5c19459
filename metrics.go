package arena

// SizeInUse returns the total number of bytes currently allocated in the arena.
// This includes padding inserted for alignment.
func (a *Arena) SizeInUse() int {
	if a.released {
		return 0
	}
	sum := 0
	for _, c := range a.chunks {
		sum += int(c.off)
	}
	return sum
}

// NumChunks returns the number of chunks currently held by the arena.
func (a *Arena) NumChunks() int {
	if a.released {
		return 0
	}
	return len(a.chunks)
}

// Capacity returns the total capacity (in bytes) of all chunks in the arena.
func (a *Arena) Capacity() int {
	if a.released {
		return 0
	}
	sum := 0
	for _, c := range a.chunks {
		sum += c.capacity()
	}
	return sum
}

// Utilization returns the ratio of bytes in use to total capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no capacity.
func (a *Arena) Utilization() float64 {
	capacity := a.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(a.SizeInUse()) / float64(capacity)
}

// BlockSize returns the size of the arena's first chunk, which is also the
// smallest chunk it will ever grow by.
func (a *Arena) BlockSize() int {
	return a.seed
}

// ActiveChunk returns the index of the chunk currently served from, or -1
// once the arena is released.
func (a *Arena) ActiveChunk() int {
	if a.released {
		return -1
	}
	return a.active
}

// Metrics returns a snapshot of arena statistics.
func (a *Arena) Metrics() ArenaMetrics {
	return ArenaMetrics{
		SizeInUse:   a.SizeInUse(),
		Capacity:    a.Capacity(),
		NumChunks:   a.NumChunks(),
		ActiveChunk: a.ActiveChunk(),
		BlockSize:   a.BlockSize(),
		Utilization: a.Utilization(),
		Source:      a.src.Name(),
	}
}

// ArenaMetrics contains statistical information about an arena.
type ArenaMetrics struct {
	SizeInUse   int     // Bytes currently allocated
	Capacity    int     // Total capacity in bytes
	NumChunks   int     // Number of chunks
	ActiveChunk int     // Index of the active chunk, -1 after Release
	BlockSize   int     // Size of the first chunk and growth floor
	Utilization float64 // Ratio of used to total capacity (0.0-1.0)
	Source      string  // Name of the chunk source
}
