// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

// Package store implements the in-memory object table and secondary
// ordered indices that back every entity in the market and asset core:
// assets, their dynamic and bitasset data, and the three order kinds.
// A Store does not maintain the secondary indices described in spec.md
// 4.2; callers that change an indexed field re-key the Index themselves.
package store

import "sync"

// ID is the monotonically assigned integer identity of a stored object.
type ID uint64

// Store is a generic object table keyed by a monotonically assigned ID. It
// is the leaf-level primitive that every entity table (assets, dynamic
// data, bitasset data, orders) is built from, generalizing
// server/book.OrderPQ's "map keyed by UID" half into a standalone,
// reusable table independent of any particular heap ordering.
type Store[T any] struct {
	mtx    sync.Mutex
	nextID ID
	byID   map[ID]*T
}

// New creates an empty Store.
func New[T any]() *Store[T] {
	return &Store[T]{byID: make(map[ID]*T)}
}

// Create allocates a new ID, constructs the object via initFn, and inserts
// it into the table, returning the new ID.
func (s *Store[T]) Create(initFn func(id ID) T) ID {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	id := s.nextID
	s.nextID++
	obj := initFn(id)
	s.byID[id] = &obj
	return id
}

// Get returns a pointer to the stored object, or nil if id is not present.
// Mutations through the returned pointer change the stored object in
// place; any Index built over the Store is not updated by them.
func (s *Store[T]) Get(id ID) *T {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return s.byID[id]
}

// Find is an alias of Get spelled to match the object-store vocabulary of
// spec.md 4.2 ("find(id) -> Option<&T>"); a nil return is the "None" case.
func (s *Store[T]) Find(id ID) *T {
	return s.Get(id)
}

// Modify looks up id and applies fn to the stored value in place, under
// the Store's lock. It reports whether id was present. It does not touch
// any index wrapping this Store; a caller that changes an indexed field
// re-keys that index itself.
func (s *Store[T]) Modify(id ID, fn func(*T)) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	obj, ok := s.byID[id]
	if !ok {
		return false
	}
	fn(obj)
	return true
}

// Remove deletes id from the table, reporting whether it was present.
func (s *Store[T]) Remove(id ID) bool {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	if _, ok := s.byID[id]; !ok {
		return false
	}
	delete(s.byID, id)
	return true
}

// Len returns the number of objects currently stored.
func (s *Store[T]) Len() int {
	s.mtx.Lock()
	defer s.mtx.Unlock()
	return len(s.byID)
}

// Range calls fn for every stored object, in unspecified order. fn must
// not call back into the Store. Range is intended for full-table scans
// such as cycle checks (spec.md 4.3's check_children) where no ordered
// index is warranted.
func (s *Store[T]) Range(fn func(id ID, obj *T)) {
	s.mtx.Lock()
	items := make(map[ID]*T, len(s.byID))
	for id, obj := range s.byID {
		items[id] = obj
	}
	s.mtx.Unlock()
	for id, obj := range items {
		fn(id, obj)
	}
}
