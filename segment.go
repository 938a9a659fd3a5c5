// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package coalescent

// A segment is a contiguous block of ancestral material: the half-open
// locus range [left, right) currently traces its ancestry through node.
// next chains to the following segment of the same ancestor (segments of
// one ancestor are kept sorted by left and pairwise disjoint); it is nil at
// the tail. Segments are allocated from a [pool.Pool] and returned to it
// once consumed by a coalescence.
type segment struct {
	left, right uint32
	node        uint32
	next        *segment
}

// numLinks returns the number of recombination links spanned by a chain of
// segments starting at head: the distance between the leftmost and
// rightmost loci covered, including any gap between disjoint segments
// (a recombination breakpoint inside a gap still splits the ancestor, it
// just does not split any single segment — case (b) of §4.4.3).
func numLinks(head *segment) uint32 {
	if head == nil {
		return 0
	}
	tail := head
	for tail.next != nil {
		tail = tail.next
	}
	if tail.right <= head.left+1 {
		return 0
	}
	return tail.right - head.left - 1
}

// an ancestor is one currently-live lineage: a chain of segments plus its
// cached link count (kept in sync by the simulator whenever the chain
// changes) and the singly-linked pointer used to chain ancestors that share
// a population bucket key (see population.go).
type ancestor struct {
	head     *segment
	links    uint32
	bucketNx *ancestor
}

func (a *ancestor) recomputeLinks() {
	a.links = numLinks(a.head)
}

// tail returns the last segment of the ancestor's chain.
func (a *ancestor) tail() *segment {
	s := a.head
	for s.next != nil {
		s = s.next
	}
	return s
}
