package testutil

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned by the generic store when an id is absent.
var ErrNotFound = errors.New("item not found")

// ErrAlreadyExists is returned by the generic store on duplicate ids.
var ErrAlreadyExists = errors.New("item already exists")

// InMemoryStore is a threadsafe map-backed store used as the base for
// the in-memory repository implementations in tests.
type InMemoryStore[T any] struct {
	mu    sync.RWMutex
	items map[string]T
}

// NewInMemoryStore creates a new empty in-memory store
func NewInMemoryStore[T any]() *InMemoryStore[T] {
	return &InMemoryStore[T]{items: make(map[string]T)}
}

func (s *InMemoryStore[T]) Create(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; ok {
		return ErrAlreadyExists
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Get(ctx context.Context, id string) (T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		var zero T
		return zero, ErrNotFound
	}
	return item, nil
}

func (s *InMemoryStore[T]) Update(ctx context.Context, id string, item T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	s.items[id] = item
	return nil
}

func (s *InMemoryStore[T]) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

// List returns every item matching the filter, ordered by sortFn when
// one is given.
func (s *InMemoryStore[T]) List(ctx context.Context, match func(T) bool, less func(a, b T) bool) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, item := range s.items {
		if match == nil || match(item) {
			out = append(out, item)
		}
	}
	if less != nil {
		sortSlice(out, less)
	}
	return out
}

// Clear removes all items
func (s *InMemoryStore[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]T)
}

func sortSlice[T any](items []T, less func(a, b T) bool) {
	// insertion sort: test datasets are tiny and stability matters for
	// cursor-based listing assertions
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(items[j], items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}
