// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeseq

import "github.com/sawyerx/coalescent"

// A DiffIterator walks a [TreeSequence]'s insertion_order and
// removal_order permutations left to right, yielding, for each genomic
// interval, the records that leave the tree at its right boundary and the
// records that enter at its new left boundary (§4.6).
type DiffIterator struct {
	ts             *TreeSequence
	insertionIndex int
	removalIndex   int
	treeLeft       uint32
	done           bool
}

// NewDiffIterator returns a DiffIterator positioned before the first
// interval of ts.
func NewDiffIterator(ts *TreeSequence) *DiffIterator {
	left := uint32(1)
	if ts.NumRecords() > 0 {
		first, _ := ts.Record(0, LeftOrder)
		left = first.Left
	}
	return &DiffIterator{ts: ts, treeLeft: left}
}

// Next advances to the next genomic interval, returning its length and
// the records leaving (out) and entering (in) the tree. It returns
// ok == false once every record has been inserted (the final interval has
// already been returned).
func (d *DiffIterator) Next() (length uint32, out, in []coalescent.Record, ok bool) {
	if d.done {
		return 0, nil, nil, false
	}
	ts := d.ts
	r := ts.NumRecords()

	for d.removalIndex < r {
		rec, _ := ts.Record(d.removalIndex, RightOrder)
		if rec.Right != d.treeLeft {
			break
		}
		out = append(out, rec)
		d.removalIndex++
	}
	for d.insertionIndex < r {
		rec, _ := ts.Record(d.insertionIndex, LeftOrder)
		if rec.Left != d.treeLeft {
			break
		}
		in = append(in, rec)
		d.insertionIndex++
	}

	newLeft := ts.numLoci + 1
	if d.removalIndex < r {
		rec, _ := ts.Record(d.removalIndex, RightOrder)
		newLeft = rec.Right
	}
	length = newLeft - d.treeLeft
	d.treeLeft = newLeft

	if d.insertionIndex >= r {
		d.done = true
	}
	return length, out, in, true
}

// Left returns the left coordinate of the interval that the next call to
// Next will produce (or the first interval's left, before any call).
func (d *DiffIterator) Left() uint32 { return d.treeLeft }
