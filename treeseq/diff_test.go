// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeseq_test

import (
	"testing"

	"github.com/sawyerx/coalescent"
	"github.com/sawyerx/coalescent/treeseq"
)

func TestDiffIteratorCoversWholeGenome(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 8, NumLoci: 60, RecombinationRate: 1, RandomSeed: 51})

	d := treeseq.NewDiffIterator(ts)
	var total uint32
	var active = map[uint32]coalescent.Record{}
	for {
		length, out, in, ok := d.Next()
		if !ok {
			break
		}
		if length == 0 {
			t.Fatal("zero-length interval returned")
		}
		for _, r := range out {
			if _, present := active[r.Node]; !present {
				t.Fatalf("record for node %d removed before it was inserted", r.Node)
			}
			delete(active, r.Node)
		}
		for _, r := range in {
			active[r.Node] = r
		}
		total += length
	}
	if total != ts.NumLoci() {
		t.Fatalf("intervals summed to %d loci, want %d", total, ts.NumLoci())
	}
	if want := int(ts.NumSamples()) - 1; len(active) != want {
		t.Fatalf("%d records still active after the last interval, want %d (the final tree's internal nodes)", len(active), want)
	}
}

func TestDiffIteratorSingleLocusNoRecombination(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 2, NumLoci: 1, RandomSeed: 52})
	d := treeseq.NewDiffIterator(ts)

	length, out, in, ok := d.Next()
	if !ok {
		t.Fatal("Next returned ok=false on the first call")
	}
	if length != 1 {
		t.Fatalf("length = %d, want 1", length)
	}
	if len(out) != 0 {
		t.Fatalf("out = %v, want empty", out)
	}
	if len(in) != 1 {
		t.Fatalf("in = %v, want one record", in)
	}

	if _, _, _, ok := d.Next(); ok {
		t.Fatal("Next returned ok=true after the only interval")
	}
}
