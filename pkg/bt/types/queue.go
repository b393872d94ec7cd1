package types

import "sync"

// Queue hands out items in the order they were added. Pop reports false once it is empty.
type Queue[K any] interface {
	Add(v K)
	Pop() (K, bool)
}

type sliceQueue[K any] struct {
	items []K
}

func NewSliceQueue[K any]() Queue[K] {
	return &sliceQueue[K]{items: []K{}}
}

func (s *sliceQueue[K]) Add(v K) {
	s.items = append(s.items, v)
}

func (s *sliceQueue[K]) Pop() (K, bool) {
	var value K
	if len(s.items) == 0 {
		return value, false
	}
	value, s.items = s.items[0], s.items[1:]
	return value, true
}

type syncQueue[K any] struct {
	sync.Mutex
	queue Queue[K]
}

// NewSyncQueue returns a queue that several workers can pop from
func NewSyncQueue[K any]() Queue[K] {
	return &syncQueue[K]{queue: NewSliceQueue[K]()}
}

func (s *syncQueue[K]) Add(v K) {
	s.Lock()
	defer s.Unlock()
	s.queue.Add(v)
}

func (s *syncQueue[K]) Pop() (K, bool) {
	s.Lock()
	defer s.Unlock()
	return s.queue.Pop()
}
