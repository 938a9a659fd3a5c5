// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package avl

import (
	"math/rand"
	"sort"
	"testing"
)

func TestInsertFindDelete(t *testing.T) {
	var tr Tree[int]
	keys := []uint32{50, 20, 70, 10, 30, 60, 80, 5, 15}
	for i, k := range keys {
		if !tr.Insert(k, i) {
			t.Fatalf("Insert(%d) reported duplicate on first insert", k)
		}
	}
	if tr.Len() != len(keys) {
		t.Fatalf("Len() = %d, want %d", tr.Len(), len(keys))
	}
	for i, k := range keys {
		v, ok := tr.Find(k)
		if !ok || v != i {
			t.Fatalf("Find(%d) = %d, %v, want %d, true", k, v, ok, i)
		}
	}

	tr.Delete(20)
	if tr.Len() != len(keys)-1 {
		t.Fatalf("Len() after delete = %d, want %d", tr.Len(), len(keys)-1)
	}
	if _, ok := tr.Find(20); ok {
		t.Fatal("Find(20) found a deleted key")
	}

	min, _, ok := tr.Min()
	if !ok || min != 5 {
		t.Fatalf("Min() = %d, %v, want 5, true", min, ok)
	}
}

func TestFloor(t *testing.T) {
	var tr Tree[string]
	tr.Insert(1, "a")
	tr.Insert(5, "b")
	tr.Insert(10, "c")

	cases := []struct {
		key     uint32
		want    uint32
		wantVal string
		wantOk  bool
	}{
		{0, 0, "", false},
		{1, 1, "a", true},
		{4, 1, "a", true},
		{5, 5, "b", true},
		{9, 5, "b", true},
		{10, 10, "c", true},
		{100, 10, "c", true},
	}
	for _, c := range cases {
		k, v, ok := tr.Floor(c.key)
		if ok != c.wantOk || (ok && (k != c.want || v != c.wantVal)) {
			t.Errorf("Floor(%d) = %d, %q, %v, want %d, %q, %v", c.key, k, v, ok, c.want, c.wantVal, c.wantOk)
		}
	}
}

func TestAscendOrder(t *testing.T) {
	var tr Tree[struct{}]
	r := rand.New(rand.NewSource(1))
	want := make([]uint32, 0, 200)
	seen := map[uint32]bool{}
	for len(want) < 200 {
		k := uint32(r.Intn(10000))
		if seen[k] {
			continue
		}
		seen[k] = true
		want = append(want, k)
		tr.Insert(k, struct{}{})
	}
	sort.Slice(want, func(i, j int) bool { return want[i] < want[j] })

	var got []uint32
	tr.Ascend(func(key uint32, _ struct{}) bool {
		got = append(got, key)
		return true
	})
	if len(got) != len(want) {
		t.Fatalf("len(got) = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestAscendStopsEarly(t *testing.T) {
	var tr Tree[int]
	for _, k := range []uint32{1, 2, 3, 4, 5} {
		tr.Insert(k, int(k))
	}
	var count int
	tr.Ascend(func(key uint32, val int) bool {
		count++
		return key < 3
	})
	if count != 3 {
		t.Fatalf("visited %d entries, want 3 (stop right after key 3)", count)
	}
}

func TestHeightStaysBalanced(t *testing.T) {
	var tr Tree[int]
	const n = 1000
	for i := 0; i < n; i++ {
		tr.Insert(uint32(i), i)
	}
	h := height(tr.root)
	// AVL trees guarantee height <= ~1.44*log2(n); for n=1000 that is well
	// under 20.
	if h > 20 {
		t.Fatalf("tree height %d too large for %d balanced inserts", h, n)
	}
}
