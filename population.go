// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package coalescent

import "github.com/sawyerx/coalescent/internal/avl"

// population is the ordered index of live ancestors, keyed by the left
// coordinate of each ancestor's head segment, as specified in §4.3.
//
// Open question resolved (see DESIGN.md): the spec notes the source keys
// the population uniquely by left, yet at t=0 every sample ancestor shares
// left=1. Rather than silently overwriting one ancestor with another (a
// real data-loss bug) or perturbing keys (which would desynchronize the
// Fenwick index, also keyed by left), this implementation makes the
// population index a genuine multimap: each AVL entry is the head of a
// singly-linked bucket of ancestors that currently share that left
// coordinate, chained through ancestor.bucketNx. The Fenwick cell at a key
// holds the sum of every bucketed ancestor's link count, and resolving a
// drawn link back to one specific ancestor walks the bucket the same way
// resolving a link within an ancestor walks its segment chain. This keeps
// every live ancestor represented exactly once and leaves the observable
// ARG distribution unchanged, as the spec requires.
type population struct {
	buckets avl.Tree[*ancestor]
	count   int
}

// insert adds a as a live ancestor, bucketed at a.head.left.
func (p *population) insert(a *ancestor) {
	key := a.head.left
	if first, ok := p.buckets.Find(key); ok {
		a.bucketNx = first
	} else {
		a.bucketNx = nil
	}
	p.buckets.Insert(key, a)
	p.count++
}

// remove deletes a specific ancestor from its bucket.
func (p *population) remove(a *ancestor) {
	key := a.head.left
	first, ok := p.buckets.Find(key)
	if !ok {
		panic("coalescent: removing ancestor not present in population")
	}
	if first == a {
		if a.bucketNx != nil {
			p.buckets.Insert(key, a.bucketNx)
		} else {
			p.buckets.Delete(key)
		}
	} else {
		prev := first
		for prev.bucketNx != a {
			if prev.bucketNx == nil {
				panic("coalescent: removing ancestor not present in its bucket")
			}
			prev = prev.bucketNx
		}
		prev.bucketNx = a.bucketNx
	}
	a.bucketNx = nil
	p.count--
}

// bucketAt returns the first ancestor bucketed at key (or nil), to be
// walked via ancestor.bucketNx.
func (p *population) bucketAt(key uint32) *ancestor {
	a, _ := p.buckets.Find(key)
	return a
}

// ascend visits every live ancestor once, in ascending bucket-key order
// (ancestors sharing a key are visited in bucket order), stopping early if
// f returns false.
func (p *population) ascend(f func(*ancestor) bool) {
	p.buckets.Ascend(func(_ uint32, first *ancestor) bool {
		for a := first; a != nil; a = a.bucketNx {
			if !f(a) {
				return false
			}
		}
		return true
	})
}

// len returns the number of live ancestors.
func (p *population) len() int {
	return p.count
}

// overlapCounter is the "node-mapping" auxiliary of §4.4.4: a run-length
// interval map from locus to the number of currently-live ancestors whose
// segments cover that locus. A coalescing sub-interval whose overlap count
// (after removing the two ancestors being merged) has dropped to zero has
// just received its final, grand-MRCA coalescence: the merged material is
// consumed rather than passed forward. This is the standard
// overlap-counting technique for detecting "this locus is now fully
// coalesced" without re-scanning the whole population, and is the same
// contract the spec allows to be implemented as "an equivalent left-right
// interval map".
type overlapCounter struct {
	runs avl.Tree[int]
}

// newOverlapCounter returns a counter over [1, m] with every locus starting
// at count n.
func newOverlapCounter(m uint32, n int) *overlapCounter {
	c := &overlapCounter{}
	c.runs.Insert(1, n)
	c.runs.Insert(m+1, 0)
	return c
}

// at returns the overlap count covering locus.
func (c *overlapCounter) at(locus uint32) int {
	_, v, _ := c.runs.Floor(locus)
	return v
}

// splitAt ensures a run boundary exists at pos (a no-op if one already
// does), without changing the count covering any locus.
func (c *overlapCounter) splitAt(pos uint32) {
	if _, ok := c.runs.Find(pos); ok {
		return
	}
	c.runs.Insert(pos, c.at(pos))
}

// add adjusts the overlap count by delta across [left, right).
func (c *overlapCounter) add(left, right uint32, delta int) {
	if left >= right {
		return
	}
	c.splitAt(left)
	c.splitAt(right)

	var keys []uint32
	c.runs.Ascend(func(k uint32, _ int) bool {
		if k >= right {
			return false
		}
		if k >= left {
			keys = append(keys, k)
		}
		return true
	})
	for _, k := range keys {
		v, _ := c.runs.Find(k)
		c.runs.Insert(k, v+delta)
	}
}
