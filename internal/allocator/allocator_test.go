package allocator

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/brickwell/healthcore/internal/config"
	"github.com/brickwell/healthcore/internal/domainerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAllocator(t *testing.T, writerID, writerCount int) *Allocator {
	t.Helper()
	a, err := New(config.Config{WriterID: writerID, WriterCount: writerCount, PrefixYear: 2024})
	require.NoError(t, err)
	return a
}

func TestNew_RejectsOutOfRangeWriter(t *testing.T) {
	_, err := New(config.Config{WriterID: 8, WriterCount: 8, PrefixYear: 2024})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerr.ErrAllocation))

	_, err = New(config.Config{WriterID: -1, WriterCount: 4, PrefixYear: 2024})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerr.ErrAllocation))

	_, err = New(config.Config{WriterID: 0, WriterCount: 2000, PrefixYear: 2024})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerr.ErrAllocation))
}

func TestNextNumber_Format(t *testing.T) {
	a := newTestAllocator(t, 3, 8)

	number, err := a.NextNumber(KindPolicy)
	require.NoError(t, err)
	assert.Equal(t, "POL-W3-2024-000001", number)

	number, err = a.NextNumber(KindClaim)
	require.NoError(t, err)
	assert.Equal(t, "CLM-W3-2024-00000001", number)

	number, err = a.NextNumber(KindPolicy)
	require.NoError(t, err)
	assert.Equal(t, "POL-W3-2024-000002", number)
}

func TestNextNumber_UnknownKind(t *testing.T) {
	a := newTestAllocator(t, 0, 1)
	_, err := a.NextNumber(Kind("widget"))
	assert.True(t, errors.Is(err, domainerr.ErrAllocation))
}

func TestAllocate_DisjointWritersNeverCollide(t *testing.T) {
	const perWriter = 100_000

	w0 := newTestAllocator(t, 0, 2)
	w1 := newTestAllocator(t, 1, 2)

	results := make([][]string, 2)
	var wg sync.WaitGroup
	for i, a := range []*Allocator{w0, w1} {
		wg.Add(1)
		go func(idx int, a *Allocator) {
			defer wg.Done()
			out := make([]string, 0, perWriter)
			for n := 0; n < perWriter; n++ {
				number, err := a.NextNumber(KindClaim)
				if err != nil {
					t.Error(err)
					return
				}
				out = append(out, number)
			}
			results[idx] = out
		}(i, a)
	}
	wg.Wait()

	seen := make(map[string]struct{}, 2*perWriter)
	for _, batch := range results {
		for _, number := range batch {
			_, dup := seen[number]
			require.False(t, dup, "duplicate sequence number %s", number)
			seen[number] = struct{}{}
		}
	}
	assert.Len(t, seen, 2*perWriter)
}

func TestNextNumber_ConcurrentSingleWriter(t *testing.T) {
	a := newTestAllocator(t, 0, 1)

	const goroutines = 8
	const perGoroutine = 1000

	var mu sync.Mutex
	seen := make(map[string]struct{}, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]string, 0, perGoroutine)
			for n := 0; n < perGoroutine; n++ {
				number, err := a.NextNumber(KindInvoice)
				if err != nil {
					t.Error(err)
					return
				}
				local = append(local, number)
			}
			mu.Lock()
			for _, number := range local {
				seen[number] = struct{}{}
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, seen, goroutines*perGoroutine)
}

func TestEventID_MonotonicWithinWriter(t *testing.T) {
	a := newTestAllocator(t, 5, 8)

	prev := a.EventID()
	for i := 0; i < 1000; i++ {
		next := a.EventID()
		require.Greater(t, int64(next), int64(prev))
		prev = next
	}
}

func TestCounters_RestoreRoundTrip(t *testing.T) {
	a := newTestAllocator(t, 0, 1)
	for i := 0; i < 5; i++ {
		_, err := a.NextNumber(KindMember)
		require.NoError(t, err)
	}

	snapshot := a.Counters()
	assert.Equal(t, int64(5), snapshot[KindMember])

	b := newTestAllocator(t, 0, 1)
	b.Restore(snapshot)
	number, err := b.NextNumber(KindMember)
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("MEM-W0-2024-%06d", 6), number)
}
