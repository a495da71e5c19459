package arena

// Marker is a saved allocation position: the chunk that was active and the
// cursor inside it. Markers are plain values and may be copied freely.
//
// A Marker belongs to the arena that created it. Applying it to another
// arena, or after its arena has been rolled back past it, is undefined.
// The zero Marker rolls back nothing.
type Marker struct {
	chunk int
	off   uintptr
	valid bool
}

// CreateMarker captures the current allocation position in O(1).
func (a *Arena) CreateMarker() Marker {
	if a.released {
		return Marker{}
	}
	return Marker{chunk: a.active, off: a.chunks[a.active].off, valid: true}
}

// RollbackTo discards every allocation made since m was created.
//
// The truncation is coarse: the marker's chunk is cut back to the saved
// cursor and every later chunk in the chain is emptied, whatever other
// markers may have captured in them. Chunks are kept for reuse.
func (a *Arena) RollbackTo(m Marker) {
	if !m.valid || a.released {
		return
	}
	a.active = m.chunk
	a.chunks[m.chunk].off = m.off
	for _, c := range a.chunks[m.chunk+1:] {
		c.off = 0
	}
}
