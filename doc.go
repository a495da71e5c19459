// Package arena implements a chunked bump allocator (memory arena) for Go.
//
// # Overview
//
// An arena allocator hands out portions of large, pre-reserved chunks by
// advancing a cursor. Nothing is freed individually: memory comes back in
// bulk when the arena is rolled back to a marker, reset or released. This is
// particularly useful for:
//
//   - Request-scoped allocations in servers
//   - Phases of work that may be abandoned and retried
//   - Reducing garbage collection pressure for pointer-free data
//
// # Basic Usage
//
//	a, err := arena.NewArena(0) // Use default block size
//	if err != nil {
//		return err
//	}
//	defer a.Release()
//
//	// Allocate raw bytes
//	buf, err := a.AllocBytes(1024)
//
//	// Allocate raw storage with an explicit alignment
//	p, err := a.Allocate(256, 64)
//
//	// Allocate typed values
//	ptr, err := arena.Alloc[MyStruct](a)
//	slice, err := arena.AllocSlice[int](a, 100)
//
// # Markers and Rollback
//
// A Marker records the current position. RollbackTo discards everything
// allocated after it, across chunk boundaries:
//
//	m := a.CreateMarker()
//	parseRequest(a) // many allocations
//	if failed {
//		a.RollbackTo(m)
//	}
//
// Construct builds a value in place and rolls the arena back if its
// initializer fails:
//
//	node, err := arena.Construct(a, func(n *Node) error {
//		return n.decode(src)
//	})
//
// # Memory Layout
//
// The first chunk holds the block size (default 64 KiB, at least 1 KiB).
// When the active chunk is full the arena appends a chunk at least twice
// as large, so the cost of growth is amortized over the bytes allocated.
// Chunks emptied by a rollback are reused before the arena grows again.
// Chunks come from a Source: the Go heap by default, or anonymous memory
// mappings with MmapSource.
//
// # Allocator Capability
//
// Resource adapts an arena to the Allocator interface so that containers,
// such as container.Vector, can be backed by it without knowing about
// arenas. Deallocate is a no-op.
//
// # Important Notes
//
//   - The Arena type is not safe for concurrent use; wrap it in a SafeArena
//     when goroutines share one
//   - Allocated memory is only valid while the arena exists and has not been
//     rolled back past it
//   - The garbage collector does not scan arena memory: do not store the only
//     reference to a heap object in it
//   - Memory is not zeroed by Allocate or AllocBytes; Alloc, AllocSlice and
//     Construct zero it
//
// # Metrics and Monitoring
//
// The arena provides detailed metrics for monitoring memory usage:
//
//	metrics := a.Metrics()
//	fmt.Printf("Utilization: %.2f%%\n", metrics.Utilization * 100)
//	fmt.Printf("Memory in use: %d bytes\n", metrics.SizeInUse)
//	fmt.Printf("Total capacity: %d bytes\n", metrics.Capacity)
package arena
