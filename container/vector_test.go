package container

import (
	"runtime"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pavanmanishd/arena/v2"
)

type record struct {
	ID    uint64
	Score float64
	Tag   [6]byte
}

func newResource(t *testing.T) (*arena.Arena, *arena.Resource) {
	t.Helper()
	a, err := arena.NewArena(1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Release() })
	return a, arena.NewResource(a)
}

func TestVectorRoundTrip(t *testing.T) {
	_, r := newResource(t)

	v, err := New[record](r, 0)
	require.NoError(t, err)
	assert.True(t, v.Empty())

	in := record{ID: 42, Score: 0.5, Tag: [6]byte{'a', 'r', 'e', 'n', 'a', 0}}
	require.NoError(t, v.Push(in))
	assert.Equal(t, 1, v.Len())
	assert.Equal(t, in, v.At(0))

	out, ok := v.Pop()
	require.True(t, ok)
	assert.Equal(t, in, out)
	assert.True(t, v.Empty())

	_, ok = v.Pop()
	assert.False(t, ok)
}

func TestVectorStorageComesFromArena(t *testing.T) {
	a, r := newResource(t)

	v, err := New[uint32](r, 8)
	require.NoError(t, err)
	assert.Equal(t, 8, v.Cap())
	assert.Equal(t, 32, a.SizeInUse())
	assert.Same(t, r, v.Allocator())

	for i := 0; i < 1000; i++ {
		require.NoError(t, v.Push(uint32(i)))
	}
	assert.Equal(t, 1000, v.Len())
	assert.GreaterOrEqual(t, v.Cap(), 1000)
	for i := 0; i < 1000; i++ {
		require.Equal(t, uint32(i), v.At(i))
	}
	assert.Greater(t, a.NumChunks(), 1, "growth is served by the arena")
	assert.Zero(t, uintptr(unsafe.Pointer(&v.Slice()[0]))%unsafe.Alignof(uint32(0)))
}

func TestVectorSetAndClear(t *testing.T) {
	_, r := newResource(t)

	v, err := New[int64](r, 0)
	require.NoError(t, err)
	for i := int64(0); i < 10; i++ {
		require.NoError(t, v.Push(i))
	}
	v.Set(3, -3)
	assert.Equal(t, int64(-3), v.At(3))
	assert.Equal(t, []int64{0, 1, 2, -3, 4, 5, 6, 7, 8, 9}, v.Slice())

	c := v.Cap()
	v.Clear()
	assert.True(t, v.Empty())
	assert.Equal(t, c, v.Cap())
	assert.Panics(t, func() { v.At(0) })
}

func TestVectorReserve(t *testing.T) {
	_, r := newResource(t)

	v, err := New[int](r, 0)
	require.NoError(t, err)
	require.NoError(t, v.Push(1))
	require.NoError(t, v.Reserve(100))
	assert.Equal(t, 100, v.Cap())
	assert.Equal(t, []int{1}, v.Slice())

	require.NoError(t, v.Reserve(10), "shrinking is a no-op")
	assert.Equal(t, 100, v.Cap())
}

func TestVectorOutOfMemory(t *testing.T) {
	_, r := newResource(t)

	_, err := New[[1 << 20]byte](r, 1<<30)
	assert.ErrorIs(t, err, arena.ErrOutOfMemory)
}

func TestVectorDefaultsToGoAllocator(t *testing.T) {
	v, err := New[int](nil, 2)
	require.NoError(t, err)
	assert.True(t, v.Allocator().Equal(arena.NewGoAllocator()))

	for i := 0; i < 10; i++ {
		require.NoError(t, v.Push(i))
	}
	assert.Equal(t, 9, v.At(9))
}

type payload struct {
	words [8]uint64
}

func TestVectorGoAllocatorKeepsPointersAlive(t *testing.T) {
	v, err := New[*payload](nil, 0)
	require.NoError(t, err)

	const n = 1000
	for i := 0; i < n; i++ {
		p := &payload{}
		for j := range p.words {
			p.words[j] = 0xC0FFEE
		}
		require.NoError(t, v.Push(p))
	}

	runtime.GC()
	runtime.GC()

	// Churn the heap so freed objects of the same size class get reused.
	churn := make([]*payload, 0, 20000)
	for i := 0; i < 20000; i++ {
		p := &payload{}
		for j := range p.words {
			p.words[j] = 0xDEAD
		}
		churn = append(churn, p)
	}
	runtime.KeepAlive(churn)

	require.Equal(t, n, v.Len())
	corrupted := 0
	for i := 0; i < n; i++ {
		for _, w := range v.At(i).words {
			if w != 0xC0FFEE {
				corrupted++
				break
			}
		}
	}
	assert.Zero(t, corrupted, "elements reclaimed while still referenced")
}

func TestVectorGoAllocatorMoveFrom(t *testing.T) {
	_, r := newResource(t)

	src, err := New[*payload](r, 0)
	require.NoError(t, err)
	dst, err := New[*payload](nil, 0)
	require.NoError(t, err)

	kept := &payload{words: [8]uint64{7}}
	require.NoError(t, src.Push(kept))
	require.NoError(t, dst.MoveFrom(src))

	runtime.GC()
	require.Equal(t, 1, dst.Len())
	assert.Same(t, kept, dst.At(0))
	runtime.KeepAlive(kept)
}

func TestVectorZeroSizeElements(t *testing.T) {
	a, r := newResource(t)

	v, err := New[struct{}](r, 0)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		require.NoError(t, v.Push(struct{}{}))
	}
	assert.Equal(t, 10, v.Len())
	assert.Equal(t, 0, a.SizeInUse())
}

func TestVectorMoveFromEqualAllocator(t *testing.T) {
	a, r := newResource(t)

	src, err := New[int](r, 0)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, src.Push(i))
	}
	storage := unsafe.Pointer(&src.Slice()[0])

	dst, err := New[int](r, 0)
	require.NoError(t, err)
	used := a.SizeInUse()

	require.NoError(t, dst.MoveFrom(src))
	assert.Equal(t, []int{0, 1, 2, 3, 4}, dst.Slice())
	assert.Equal(t, storage, unsafe.Pointer(&dst.Slice()[0]), "storage is taken over")
	assert.Equal(t, used, a.SizeInUse())
	assert.True(t, src.Empty())
	assert.Zero(t, src.Cap())
}

func TestVectorMoveFromOtherAllocator(t *testing.T) {
	_, r1 := newResource(t)
	_, r2 := newResource(t)

	src, err := New[int](r1, 0)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, src.Push(i * i))
	}
	storage := unsafe.Pointer(&src.Slice()[0])

	dst, err := New[int](r2, 0)
	require.NoError(t, err)
	require.NoError(t, dst.Push(99))

	require.NoError(t, dst.MoveFrom(src))
	assert.Equal(t, []int{0, 1, 4, 9, 16}, dst.Slice())
	assert.NotEqual(t, storage, unsafe.Pointer(&dst.Slice()[0]), "elements are copied")
	assert.True(t, src.Empty())

	require.NoError(t, dst.MoveFrom(dst))
	assert.Equal(t, 5, dst.Len())
}

func TestVectorRollbackDiscardsStorage(t *testing.T) {
	a, r := newResource(t)
	m := a.CreateMarker()

	v, err := New[uint64](r, 0)
	require.NoError(t, err)
	for i := 0; i < 64; i++ {
		require.NoError(t, v.Push(uint64(i)))
	}
	assert.NotZero(t, a.SizeInUse())

	a.RollbackTo(m)
	assert.Zero(t, a.SizeInUse())
}

func TestVectorsShareSafeArena(t *testing.T) {
	s, err := arena.NewSafeArena(1024)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Release() })

	const workers = 4
	vs := make([]*Vector[int], workers)
	done := make(chan error, workers)
	for w := 0; w < workers; w++ {
		v, err := New[int](s, 0)
		require.NoError(t, err)
		vs[w] = v
		go func(w int) {
			for i := 0; i < 500; i++ {
				if err := vs[w].Push(w*1000 + i); err != nil {
					done <- err
					return
				}
			}
			done <- nil
		}(w)
	}
	for w := 0; w < workers; w++ {
		require.NoError(t, <-done)
	}

	for w, v := range vs {
		require.Equal(t, 500, v.Len())
		assert.Equal(t, w*1000+499, v.At(499))
		assert.True(t, v.Allocator().Equal(s))
	}
}

func BenchmarkVectorPush(b *testing.B) {
	b.Run("arena", func(b *testing.B) {
		a := arena.MustNewArena(1 << 20)
		defer a.Release()
		r := arena.NewResource(a)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			v, _ := New[int](r, 0)
			for j := 0; j < 100; j++ {
				_ = v.Push(j)
			}
			a.Reset()
		}
	})

	b.Run("builtin", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var s []int
			for j := 0; j < 100; j++ {
				s = append(s, j)
			}
			_ = s
		}
	})
}
