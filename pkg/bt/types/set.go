package types

import "sync"

// Set remembers which keys it has seen
type Set[K comparable] interface {
	Has(key K) bool
	PutIfAbsent(key K) bool
}

var _ Set[string] = &SyncSet[string]{}
var _ Set[string] = &BasicSet[string]{}

type BasicSet[K comparable] struct {
	items map[K]struct{}
}

func NewSet[K comparable]() Set[K] {
	return &BasicSet[K]{items: make(map[K]struct{})}
}

func (s *BasicSet[K]) Has(v K) bool {
	_, ok := s.items[v]
	return ok
}

// PutIfAbsent adds v and reports whether it was not in the set before
func (s *BasicSet[K]) PutIfAbsent(v K) bool {
	if s.Has(v) {
		return false
	}
	s.items[v] = struct{}{}
	return true
}

// SyncSet is a BasicSet that can be shared between workers
type SyncSet[K comparable] struct {
	sync.Mutex
	set BasicSet[K]
}

func NewSyncSet[K comparable]() Set[K] {
	return &SyncSet[K]{set: BasicSet[K]{items: make(map[K]struct{})}}
}

func (s *SyncSet[K]) Has(v K) bool {
	s.Lock()
	defer s.Unlock()
	return s.set.Has(v)
}

func (s *SyncSet[K]) PutIfAbsent(v K) bool {
	s.Lock()
	defer s.Unlock()
	return s.set.PutIfAbsent(v)
}
