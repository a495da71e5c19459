package arena

import (
	"sync"
	"unsafe"
)

// SafeArena is a mutex-protected wrapper around Arena for callers that share
// one arena between goroutines. The Arena itself never locks.
//
// SafeArena also satisfies Allocator, so containers can be handed a locked
// capability directly.
type SafeArena struct {
	mu sync.Mutex
	a  *Arena
}

var _ Allocator = (*SafeArena)(nil)

// NewSafeArena creates a new locked arena. Arguments are those of NewArena.
func NewSafeArena(blockSize int, opts ...Option) (*SafeArena, error) {
	a, err := NewArena(blockSize, opts...)
	if err != nil {
		return nil, err
	}
	return &SafeArena{a: a}, nil
}

// Allocate thread-safely reserves size bytes aligned to alignment.
func (s *SafeArena) Allocate(size, alignment uintptr) (unsafe.Pointer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Allocate(size, alignment)
}

// Deallocate is a no-op, memory is reclaimed by RollbackTo, Reset or Release.
func (s *SafeArena) Deallocate(unsafe.Pointer, uintptr, uintptr) {}

// Equal reports whether other is this same SafeArena.
func (s *SafeArena) Equal(other Allocator) bool {
	o, ok := other.(*SafeArena)
	return ok && o == s
}

// AllocBytes thread-safely allocates n bytes.
func (s *SafeArena) AllocBytes(n int) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.AllocBytes(n)
}

// EnsureCapacity thread-safely ensures n bytes can be served without growing.
func (s *SafeArena) EnsureCapacity(n int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.EnsureCapacity(n)
}

// CreateMarker thread-safely captures the current cursor.
func (s *SafeArena) CreateMarker() Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.CreateMarker()
}

// RollbackTo thread-safely rolls the arena back to m. Other goroutines'
// allocations made after m are discarded as well.
func (s *SafeArena) RollbackTo(m Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.RollbackTo(m)
}

// Reset thread-safely resets allocation offsets to zero for arena reuse.
func (s *SafeArena) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.a.Reset()
}

// Release thread-safely returns all chunks to their source.
func (s *SafeArena) Release() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Release()
}

// Metrics returns a consistent snapshot taken under the lock.
func (s *SafeArena) Metrics() ArenaMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.a.Metrics()
}

// SafeAlloc thread-safely returns a zeroed *T stored inside the arena.
func SafeAlloc[T any](s *SafeArena) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Alloc[T](s.a)
}

// SafeAllocSlice thread-safely allocates a zeroed slice of n elements.
func SafeAllocSlice[T any](s *SafeArena, n int) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return AllocSlice[T](s.a, n)
}

// SafeConstruct runs Construct under the lock. init must not call back into s.
func SafeConstruct[T any](s *SafeArena, init func(*T) error) (*T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Construct(s.a, init)
}
