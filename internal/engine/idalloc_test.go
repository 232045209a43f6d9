package engine

import (
	"sync"
	"testing"
)

func TestIDAllocator_StrictlyIncreasing(t *testing.T) {
	a := NewIDAllocator()
	prev := uint64(0)
	for i := 0; i < 1000; i++ {
		id := a.Next()
		if id <= prev {
			t.Fatalf("Next() = %d after %d, ids must strictly increase", id, prev)
		}
		prev = id
	}
}

func TestIDAllocator_FirstIDIsOne(t *testing.T) {
	a := NewIDAllocator()
	if id := a.Next(); id != 1 {
		t.Errorf("first Next() = %d, want 1", id)
	}
}

func TestIDAllocator_ConcurrentUniqueness(t *testing.T) {
	const goroutines = 16
	const perGoroutine = 1000

	a := NewIDAllocator()
	results := make([][]uint64, goroutines)

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			ids := make([]uint64, 0, perGoroutine)
			for i := 0; i < perGoroutine; i++ {
				ids = append(ids, a.Next())
			}
			results[g] = ids
		}(g)
	}
	wg.Wait()

	seen := make(map[uint64]bool, goroutines*perGoroutine)
	for _, ids := range results {
		for _, id := range ids {
			if seen[id] {
				t.Fatalf("id %d issued twice", id)
			}
			seen[id] = true
		}
	}
	if len(seen) != goroutines*perGoroutine {
		t.Errorf("issued %d unique ids, want %d", len(seen), goroutines*perGoroutine)
	}
}
