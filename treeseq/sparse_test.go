// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeseq_test

import (
	"testing"

	"github.com/sawyerx/coalescent"
	"github.com/sawyerx/coalescent/treeseq"
)

func TestSparseTreeCoversGenomeAndRootIsGrandMRCA(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 6, NumLoci: 40, RecombinationRate: 0.7, RandomSeed: 61})
	st := treeseq.NewSparseTree(ts, true)

	var left uint32 = 1
	grand := ts.NumNodes()
	for {
		ok, err := st.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		if st.Left() != left {
			t.Fatalf("tree left = %d, want %d", st.Left(), left)
		}
		if st.Root() != grand {
			t.Fatalf("tree root = %d, want grand-MRCA %d", st.Root(), grand)
		}
		n, err := st.NumLeaves(st.Root())
		if err != nil {
			t.Fatalf("NumLeaves: %v", err)
		}
		if n != int(ts.NumSamples()) {
			t.Fatalf("NumLeaves(root) = %d, want %d", n, ts.NumSamples())
		}
		left = st.Right()
	}
	if left != ts.NumLoci()+1 {
		t.Fatalf("final right boundary = %d, want %d", left, ts.NumLoci()+1)
	}
}

func TestSparseTreeLeafCountsMatchDFS(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 7, NumLoci: 25, RecombinationRate: 0.6, RandomSeed: 62})
	st := treeseq.NewSparseTree(ts, true)

	for {
		ok, err := st.Next()
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		var walk func(v uint32) int
		walk = func(v uint32) int {
			if st.IsLeaf(v) {
				return 1
			}
			c := st.Children(v)
			if c[0] == 0 && c[1] == 0 {
				return 0
			}
			return walk(c[0]) + walk(c[1])
		}
		want := walk(st.Root())
		got, err := st.NumLeaves(st.Root())
		if err != nil {
			t.Fatalf("NumLeaves: %v", err)
		}
		if got != want {
			t.Fatalf("NumLeaves(root) = %d, DFS recomputation = %d", got, want)
		}
	}
}

func TestMRCAIsAncestorOfBoth(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 5, NumLoci: 10, RandomSeed: 63})
	st := treeseq.NewSparseTree(ts, false)

	ok, err := st.Next()
	if err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}

	isAncestor := func(anc, v uint32) bool {
		for n := v; n != 0; n = st.Parent(n) {
			if n == anc {
				return true
			}
		}
		return false
	}

	m, err := st.MRCA(1, 2)
	if err != nil {
		t.Fatalf("MRCA: %v", err)
	}
	if !isAncestor(m, 1) || !isAncestor(m, 2) {
		t.Fatalf("MRCA(1, 2) = %d is not an ancestor of both", m)
	}

	// MRCA with itself is itself.
	if m2, err := st.MRCA(1, 1); err != nil || m2 != 1 {
		t.Fatalf("MRCA(1, 1) = %d, err = %v, want 1, nil", m2, err)
	}
}

func TestUntrackedLeavesReportUnsupported(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 3, NumLoci: 5, RandomSeed: 64})
	st := treeseq.NewSparseTree(ts, false)
	if ok, err := st.Next(); err != nil || !ok {
		t.Fatalf("Next: ok=%v err=%v", ok, err)
	}
	if _, err := st.NumLeaves(st.Root()); err == nil {
		t.Fatal("NumLeaves on a tree built with trackLeaves=false succeeded, want error")
	}
}
