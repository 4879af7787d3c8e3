// This code is available on the terms of the project LICENSE.md file,
// also available online at https://blueoakcouncil.org/license/1.0.0.

package store

import "testing"

type intEntry struct {
	uid int
	key int
}

func (e intEntry) UID() int { return e.uid }

func byKey(a, b intEntry) bool { return a.key < b.key }

func TestIndexInsertPeekRemove(t *testing.T) {
	idx := NewIndex[int, intEntry](byKey)
	idx.Insert(intEntry{uid: 1, key: 30})
	idx.Insert(intEntry{uid: 2, key: 10})
	idx.Insert(intEntry{uid: 3, key: 20})

	best, ok := idx.Peek()
	if !ok || best.uid != 2 {
		t.Fatalf("Peek() = %+v, %v; want uid 2", best, ok)
	}
	if idx.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", idx.Len())
	}

	removed, ok := idx.Remove(2)
	if !ok || removed.uid != 2 {
		t.Fatalf("Remove(2) = %+v, %v", removed, ok)
	}
	best, ok = idx.Peek()
	if !ok || best.uid != 3 {
		t.Fatalf("Peek() after remove = %+v, %v; want uid 3", best, ok)
	}
}

func TestIndexDuplicateInsertRejected(t *testing.T) {
	idx := NewIndex[int, intEntry](byKey)
	if !idx.Insert(intEntry{uid: 1, key: 1}) {
		t.Fatal("first insert should succeed")
	}
	if idx.Insert(intEntry{uid: 1, key: 2}) {
		t.Fatal("duplicate uid insert should fail")
	}
}

func TestIndexReplaceReKeys(t *testing.T) {
	idx := NewIndex[int, intEntry](byKey)
	idx.Insert(intEntry{uid: 1, key: 50})
	idx.Insert(intEntry{uid: 2, key: 5})

	if !idx.Replace(1, intEntry{uid: 1, key: 1}) {
		t.Fatal("Replace should succeed for existing uid")
	}
	best, _ := idx.Peek()
	if best.uid != 1 {
		t.Fatalf("Peek() after re-key = uid %d, want 1", best.uid)
	}
}

func TestIndexEntriesSorted(t *testing.T) {
	idx := NewIndex[int, intEntry](byKey)
	for uid, key := range []int{5, 1, 4, 2, 3} {
		idx.Insert(intEntry{uid: uid, key: key})
	}
	sorted := idx.Entries()
	for i := 1; i < len(sorted); i++ {
		if sorted[i-1].key > sorted[i].key {
			t.Fatalf("Entries() not sorted: %+v", sorted)
		}
	}
}

func TestIndexWalkStopsEarly(t *testing.T) {
	idx := NewIndex[int, intEntry](byKey)
	for uid, key := range []int{3, 1, 2} {
		idx.Insert(intEntry{uid: uid, key: key})
	}
	var visited []int
	idx.Walk(func(e intEntry) bool {
		visited = append(visited, e.key)
		return len(visited) < 2
	})
	if len(visited) != 2 {
		t.Fatalf("Walk visited %d entries, want 2", len(visited))
	}
}
