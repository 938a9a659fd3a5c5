// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package fenwick implements a Fenwick (binary-indexed) tree of
// non-negative integer weights, used by the coalescent simulator to draw
// a link index weighted by each ancestor's recombinable link count in
// O(log m) time.
package fenwick

import "golang.org/x/exp/constraints"

// A Tree is a 1-indexed Fenwick tree over [1, n] of non-negative values of
// type T. The zero value is not usable; use [New].
type Tree[T constraints.Integer] struct {
	tree []T // tree[0] is unused
	n    int
}

// New returns a Fenwick tree over [1, n], with every cell set to zero.
// New panics if n < 1.
func New[T constraints.Integer](n int) *Tree[T] {
	if n < 1 {
		panic("fenwick: size must be at least 1")
	}
	return &Tree[T]{
		tree: make([]T, n+1),
		n:    n,
	}
}

// Len returns the size of the tree, i.e. the largest valid index.
func (t *Tree[T]) Len() int {
	return t.n
}

// Increment adds delta to the cell at i (1-based). The resulting cell value
// must remain non-negative; Increment panics otherwise, since a negative
// weight would make PrefixSum non-monotonic and Find unsound.
func (t *Tree[T]) Increment(i int, delta T) {
	if i < 1 || i > t.n {
		panic("fenwick: index out of range")
	}
	if v := t.valueAt(i) + delta; v < 0 {
		panic("fenwick: cell would become negative")
	}
	for ; i <= t.n; i += i & -i {
		t.tree[i] += delta
	}
}

// Set sets the cell at i (1-based) to v. v must be non-negative.
func (t *Tree[T]) Set(i int, v T) {
	if v < 0 {
		panic("fenwick: value must be non-negative")
	}
	t.Increment(i, v-t.valueAt(i))
}

// valueAt returns the value of the single cell at i, without the
// non-negativity bookkeeping Increment does.
func (t *Tree[T]) valueAt(i int) T {
	return t.PrefixSum(i) - t.PrefixSum(i-1)
}

// PrefixSum returns the sum of cells 1..=i. PrefixSum(0) is always 0.
func (t *Tree[T]) PrefixSum(i int) T {
	if i <= 0 {
		var zero T
		return zero
	}
	if i > t.n {
		i = t.n
	}
	var sum T
	for ; i > 0; i -= i & -i {
		sum += t.tree[i]
	}
	return sum
}

// Total returns PrefixSum(Len()), the sum of every cell.
func (t *Tree[T]) Total() T {
	return t.PrefixSum(t.n)
}

// Find returns the smallest index i in [1, n] such that PrefixSum(i) >= v.
// Find requires 1 <= v <= Total(); the caller is expected to only invoke it
// when Total() > 0, as the simulator does (it never draws a link index when
// there is nothing to recombine).
func (t *Tree[T]) Find(v T) int {
	var pos int
	var cum T

	// highest power of two <= n
	logSize := 1
	for logSize*2 <= t.n {
		logSize *= 2
	}

	for step := logSize; step > 0; step /= 2 {
		next := pos + step
		if next <= t.n && cum+t.tree[next] < v {
			pos = next
			cum += t.tree[pos]
		}
	}
	return pos + 1
}
