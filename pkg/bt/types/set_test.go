package types

import (
	"sync"
	"testing"
)

func TestSetPutIfAbsent(t *testing.T) {
	for name, set := range map[string]Set[string]{
		"basic": NewSet[string](),
		"sync":  NewSyncSet[string](),
	} {
		t.Run(name, func(t *testing.T) {
			if set.Has("a") {
				t.Fatalf("new set should be empty")
			}
			if !set.PutIfAbsent("a") {
				t.Errorf("expected PutIfAbsent to add a new item")
			}
			if set.PutIfAbsent("a") {
				t.Errorf("expected PutIfAbsent to report an existing item")
			}
			if !set.Has("a") || set.Has("b") {
				t.Fatalf("unexpected membership")
			}
		})
	}
}

func TestSyncSetConcurrentPutIfAbsent(t *testing.T) {
	set := NewSyncSet[int]()

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		added int
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if set.PutIfAbsent(1) {
				mu.Lock()
				added++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if added != 1 {
		t.Fatalf("expected exactly one goroutine to add the item, got %d", added)
	}
}
