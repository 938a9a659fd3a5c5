// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package fenwick_test

import (
	"testing"

	"github.com/sawyerx/coalescent/fenwick"
)

func TestPrefixSumAgainstNaive(t *testing.T) {
	for n := 1; n <= 100; n++ {
		ft := fenwick.New[int](n)
		naive := make([]int, n+1)

		ops := []struct {
			i, delta int
		}{
			{1, 3}, {n, 5}, {n / 2, 2}, {1, 1}, {n, -1},
		}
		for _, op := range ops {
			i := op.i
			if i < 1 {
				i = 1
			}
			if naive[i]+op.delta < 0 {
				continue
			}
			ft.Increment(i, op.delta)
			naive[i] += op.delta
		}

		var want int
		for i := 1; i <= n; i++ {
			want += naive[i]
			if got := ft.PrefixSum(i); got != want {
				t.Fatalf("n=%d: PrefixSum(%d) = %d, want %d", n, i, got, want)
			}
		}
		if got := ft.Total(); got != want {
			t.Fatalf("n=%d: Total() = %d, want %d", n, got, want)
		}
	}
}

func TestFindRoundTrip(t *testing.T) {
	ft := fenwick.New[int](10)
	for i := 1; i <= 10; i++ {
		ft.Set(i, 0)
	}
	ft.Set(3, 4)
	ft.Set(7, 2)
	ft.Set(10, 1)

	// total is 7; every v in [1,4] should resolve to the cell at 3.
	for v := 1; v <= 4; v++ {
		if got := ft.Find(v); got != 3 {
			t.Errorf("Find(%d) = %d, want 3", v, got)
		}
	}
	for v := 5; v <= 6; v++ {
		if got := ft.Find(v); got != 7 {
			t.Errorf("Find(%d) = %d, want 7", v, got)
		}
	}
	if got := ft.Find(7); got != 10 {
		t.Errorf("Find(7) = %d, want 10", got)
	}
	if got := ft.Find(ft.Total()); got != 10 {
		t.Errorf("Find(total) = %d, want largest non-zero index 10", got)
	}
}

func TestSetOverwrites(t *testing.T) {
	ft := fenwick.New[int](5)
	ft.Set(2, 10)
	if got := ft.PrefixSum(2); got != 10 {
		t.Fatalf("PrefixSum(2) = %d, want 10", got)
	}
	ft.Set(2, 3)
	if got := ft.PrefixSum(2); got != 3 {
		t.Fatalf("after overwrite, PrefixSum(2) = %d, want 3", got)
	}
}

func TestIncrementNegativeResultPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on negative cell value")
		}
	}()
	ft := fenwick.New[int](3)
	ft.Increment(1, -1)
}
