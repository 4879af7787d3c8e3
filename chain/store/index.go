// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package store

import "container/heap"

// Entry is the minimum any value needs to support to live in an Index: a
// stable, comparable identity distinct from its sort key, so that an entry
// already in the index can be found and removed by identity alone (e.g.
// when a call order's collateralization changes and it must be re-keyed).
type Entry[U comparable] interface {
	UID() U
}

// Index is a generic ordered secondary index over entries of type T,
// sorted by a caller-supplied Less function. It generalizes
// server/book.OrderPQ (a heap of *LimitOrder ordered by price-then-time)
// into a reusable ordered index over any Entry-satisfying value type, and
// backs every secondary index spec.md 4.2 requires: limit orders by price,
// call orders by collateralization, settlement orders by date.
//
// Index is not safe for concurrent use; callers serialize access the same
// way the rest of this core does (spec.md 5: single-threaded, synchronous).
type Index[U comparable, T Entry[U]] struct {
	h      indexHeap[U, T]
	byUID  map[U]int // UID -> position in h, kept in sync by heap.Fix/Pop/Push
	lessFn func(a, b T) bool
}

// NewIndex creates an empty Index using lessFn to order entries; the entry
// for which lessFn returns true first is the "best" (Peek) entry.
func NewIndex[U comparable, T Entry[U]](lessFn func(a, b T) bool) *Index[U, T] {
	return &Index[U, T]{
		byUID:  make(map[U]int),
		lessFn: lessFn,
	}
}

// indexHeap implements container/heap.Interface for Index.
type indexHeap[U comparable, T Entry[U]] struct {
	entries []T
	owner   *Index[U, T]
}

func (h *indexHeap[U, T]) Len() int { return len(h.entries) }
func (h *indexHeap[U, T]) Less(i, j int) bool {
	return h.owner.lessFn(h.entries[i], h.entries[j])
}
func (h *indexHeap[U, T]) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.owner.byUID[h.entries[i].UID()] = i
	h.owner.byUID[h.entries[j].UID()] = j
}
func (h *indexHeap[U, T]) Push(x any) {
	e := x.(T)
	h.owner.byUID[e.UID()] = len(h.entries)
	h.entries = append(h.entries, e)
}
func (h *indexHeap[U, T]) Pop() any {
	old := h.entries
	n := len(old)
	e := old[n-1]
	h.entries = old[:n-1]
	delete(h.owner.byUID, e.UID())
	return e
}

// Len returns the number of entries in the index.
func (idx *Index[U, T]) Len() int {
	return len(idx.h.entries)
}

// Insert adds an entry to the index, failing if an entry with the same UID
// is already present.
func (idx *Index[U, T]) Insert(e T) bool {
	if idx.h.owner == nil {
		idx.h.owner = idx
	}
	if _, found := idx.byUID[e.UID()]; found {
		return false
	}
	heap.Push(&idx.h, e)
	return true
}

// Peek returns the best (least, by lessFn) entry without removing it.
func (idx *Index[U, T]) Peek() (T, bool) {
	var zero T
	if idx.Len() == 0 {
		return zero, false
	}
	return idx.h.entries[0], true
}

// Remove deletes the entry with the given UID, returning it.
func (idx *Index[U, T]) Remove(uid U) (T, bool) {
	var zero T
	pos, found := idx.byUID[uid]
	if !found {
		return zero, false
	}
	e := heap.Remove(&idx.h, pos).(T)
	return e, true
}

// Replace re-keys an existing entry: it is removed and reinserted, which
// is the pattern spec.md 5 mandates for every mutation that could change
// an object's secondary key ("snapshot the key, mutate, lower_bound(key)
// again") since container/heap cannot re-sort in place without knowing
// which direction the key moved.
func (idx *Index[U, T]) Replace(uid U, newEntry T) bool {
	if _, found := idx.Remove(uid); !found {
		return false
	}
	return idx.Insert(newEntry)
}

// Contains reports whether uid is currently present in the index.
func (idx *Index[U, T]) Contains(uid U) bool {
	_, found := idx.byUID[uid]
	return found
}

// Entries returns a sorted copy of every entry currently in the index,
// best-first. It is O(n log n) and intended for snapshots (e.g. serving a
// book depth query), not for hot-path matching.
func (idx *Index[U, T]) Entries() []T {
	out := make([]T, len(idx.h.entries))
	copy(out, idx.h.entries)
	// Heap order is only weakly sorted; build a sorted copy via repeated
	// extraction against a scratch copy so the original index is untouched.
	scratch := &Index[U, T]{lessFn: idx.lessFn, byUID: make(map[U]int, len(out))}
	scratch.h.owner = scratch
	for _, e := range out {
		heap.Push(&scratch.h, e)
	}
	sorted := make([]T, 0, len(out))
	for scratch.Len() > 0 {
		best, _ := scratch.Peek()
		sorted = append(sorted, best)
		scratch.Remove(best.UID())
	}
	return sorted
}

// Walk calls fn for each entry in ascending (best-first) order, stopping
// early if fn returns false. Walk is used by scans that must visit
// "least collateralized call order first" (spec.md 4.4.6); it builds the
// full sorted snapshot of Entries first, even when fn stops early.
func (idx *Index[U, T]) Walk(fn func(T) bool) {
	for _, e := range idx.Entries() {
		if !fn(e) {
			return
		}
	}
}
