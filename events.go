// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package coalescent

import (
	"fmt"
	"math"
)

// recombinationWaitingTimeInf stands in for "no recombination event can
// occur this step" (rate zero or no ancestral links remain).
var recombinationWaitingTimeInf = math.Inf(1)

// recombine implements §4.4.3: draw a breakpoint uniformly among the L
// currently live recombination links, locate the ancestor and in-ancestor
// position it falls at, and split that ancestor in two.
func (s *Simulator) recombine(L int64) error {
	h := s.rng.Int63n(L) + 1
	bucketKey := s.fen.Find(h)
	if bucketKey == 0 {
		return fmt.Errorf("%w: recombination draw %d exceeds total links %d", ErrInvariant, h, L)
	}
	offset := h - s.fen.PrefixSum(bucketKey-1)

	var chosen *ancestor
	remaining := offset
	for a := s.pop.bucketAt(uint32(bucketKey)); a != nil; a = a.bucketNx {
		if remaining <= int64(a.links) {
			chosen = a
			break
		}
		remaining -= int64(a.links)
	}
	if chosen == nil {
		return fmt.Errorf("%w: recombination offset %d exceeds bucket %d link total", ErrInvariant, offset, bucketKey)
	}
	position := chosen.head.left + uint32(remaining)

	s.removeAncestor(chosen)
	other, err := s.splitAncestor(chosen, position)
	if err != nil {
		return err
	}
	s.insertAncestor(chosen)
	s.insertAncestor(other)
	return nil
}

// splitAncestor breaks anc into two ancestors at locus position: anc keeps
// everything left of position, and the returned ancestor holds everything
// from position onward. position must fall strictly after anc.head.left.
// Per §4.4.3, a breakpoint landing inside a segment truncates it and
// allocates a fresh segment for the remainder (case a); one landing in a
// gap between segments simply detaches the later segments as the new
// ancestor's chain (case b).
func (s *Simulator) splitAncestor(anc *ancestor, position uint32) (*ancestor, error) {
	var prev *segment
	cur := anc.head
	for cur != nil && cur.right <= position {
		prev = cur
		cur = cur.next
	}
	if cur == nil {
		return nil, fmt.Errorf("%w: recombination breakpoint %d beyond ancestor span", ErrInvariant, position)
	}

	var newHead *segment
	if cur.left < position {
		rest, err := s.segPool.Alloc()
		if err != nil {
			return nil, mapAllocErr(err)
		}
		rest.left, rest.right, rest.node = position, cur.right, cur.node
		rest.next = cur.next
		cur.right = position
		cur.next = nil
		newHead = rest
	} else {
		if prev == nil {
			return nil, fmt.Errorf("%w: recombination breakpoint %d at ancestor head", ErrInvariant, position)
		}
		prev.next = nil
		newHead = cur
	}
	anc.recomputeLinks()

	other, err := s.ancPool.Alloc()
	if err != nil {
		return nil, mapAllocErr(err)
	}
	other.head = newHead
	other.bucketNx = nil
	other.recomputeLinks()
	return other, nil
}

// coalesce implements §4.4.4: pick two distinct live ancestors uniformly,
// merge their segment chains using the node-mapping overlap counter to
// decide which sub-intervals have reached their grand-MRCA, and reinsert
// the merged ancestor if it retains any material.
func (s *Simulator) coalesce() error {
	k := s.pop.len()
	all := make([]*ancestor, 0, k)
	s.pop.ascend(func(a *ancestor) bool {
		all = append(all, a)
		return true
	})

	i := s.rng.Intn(k)
	j := s.rng.Intn(k - 1)
	if j >= i {
		j++
	}
	x, y := all[i], all[j]

	s.removeAncestor(x)
	s.removeAncestor(y)
	for seg := x.head; seg != nil; seg = seg.next {
		s.overlap.add(seg.left, seg.right, -1)
	}
	for seg := y.head; seg != nil; seg = seg.next {
		s.overlap.add(seg.left, seg.right, -1)
	}

	merged, err := s.mergeAncestors(x.head, y.head)
	if err != nil {
		return err
	}

	s.freeChain(x.head)
	s.ancPool.Free(x)
	s.freeChain(y.head)
	s.ancPool.Free(y)

	if merged != nil {
		na, err := s.ancPool.Alloc()
		if err != nil {
			return mapAllocErr(err)
		}
		na.head = merged
		na.recomputeLinks()
		s.insertAncestor(na)
	}
	return nil
}

// mergeAncestors builds the merged segment chain for a coalescence of the
// ancestors whose chains start at xHead and yHead, emitting a Record for
// every sub-interval covered by both (§4.4.4 step 2). The two ancestors'
// own overlap contributions must already have been removed from
// s.overlap before calling this.
func (s *Simulator) mergeAncestors(xHead, yHead *segment) (*segment, error) {
	bounds := collectBoundaries(xHead, yHead)
	var head, tail *segment
	appendSeg := func(left, right, node uint32) error {
		ns, err := s.segPool.Alloc()
		if err != nil {
			return mapAllocErr(err)
		}
		ns.left, ns.right, ns.node, ns.next = left, right, node, nil
		if head == nil {
			head = ns
		} else {
			tail.next = ns
		}
		tail = ns
		return nil
	}

	for idx := 0; idx+1 < len(bounds); idx++ {
		a, b := bounds[idx], bounds[idx+1]
		if a >= b {
			continue
		}
		xs := findCovering(xHead, a)
		ys := findCovering(yHead, a)
		switch {
		case xs != nil && ys == nil:
			if err := appendSeg(a, b, xs.node); err != nil {
				return nil, err
			}
			s.overlap.add(a, b, 1)
		case xs == nil && ys != nil:
			if err := appendSeg(a, b, ys.node); err != nil {
				return nil, err
			}
			s.overlap.add(a, b, 1)
		case xs != nil && ys != nil:
			child0, child1 := xs.node, ys.node
			if child0 > child1 {
				child0, child1 = child1, child0
			}
			node := s.nextNode
			s.nextNode++
			s.records = append(s.records, Record{
				Left: a, Right: b, Node: node,
				Children: [2]uint32{child0, child1},
				Time:     s.t,
			})
			// The overlap count can change inside [a, b) at other
			// ancestors' segment ends, so it is checked run by run.
			var cuts []uint32
			s.overlap.runs.Ascend(func(k uint32, _ int) bool {
				if k > a && k < b {
					cuts = append(cuts, k)
				}
				return k < b
			})
			lo := a
			for _, hi := range append(cuts, b) {
				if s.overlap.at(lo) > 0 {
					if err := appendSeg(lo, hi, node); err != nil {
						return nil, err
					}
					s.overlap.add(lo, hi, 1)
				}
				lo = hi
			}
		}
	}
	return head, nil
}
