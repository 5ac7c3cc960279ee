// Package feed keeps the last published version of a list and reports the
// changeset every new publication introduces.
package feed

import (
	"sync"

	"github.com/okian/golazo/internal/domain/changeset"
)

// Update is the outcome of one publication.
type Update[T any] struct {
	Version   uint64
	Items     []T
	Changeset changeset.Changeset
}

// Feed pairs every new list with the previous one. The first publication is
// diffed against an empty list.
type Feed[T any, K comparable] struct {
	mu           sync.RWMutex
	items        []T
	version      uint64
	last         changeset.Changeset
	key          func(T) K
	contentEqual func(T, T) bool
}

// New creates an empty feed.
func New[T any, K comparable](key func(T) K, contentEqual func(T, T) bool) *Feed[T, K] {
	return &Feed[T, K]{
		items:        []T{},
		key:          key,
		contentEqual: contentEqual,
		last:         changeset.Compute[T, K](nil, nil, key, contentEqual),
	}
}

// Publish replaces the current list and returns the changeset from the previous one.
func (f *Feed[T, K]) Publish(items []T) Update[T] {
	next := make([]T, len(items))
	copy(next, items)

	f.mu.Lock()
	defer f.mu.Unlock()

	cs := changeset.Compute(f.items, next, f.key, f.contentEqual)
	f.items = next
	f.version++
	f.last = cs

	return Update[T]{Version: f.version, Items: f.copyItems(), Changeset: cs}
}

// Latest returns the current list with the changeset that produced it.
func (f *Feed[T, K]) Latest() Update[T] {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return Update[T]{Version: f.version, Items: f.copyItems(), Changeset: f.last}
}

// Items returns a copy of the current list.
func (f *Feed[T, K]) Items() []T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.copyItems()
}

// Version returns the number of publications so far.
func (f *Feed[T, K]) Version() uint64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.version
}

// copyItems must be called with f.mu held.
func (f *Feed[T, K]) copyItems() []T {
	out := make([]T, len(f.items))
	copy(out, f.items)
	return out
}
