// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeseq_test

import (
	"testing"

	"golang.org/x/exp/rand"

	"github.com/sawyerx/coalescent"
	"github.com/sawyerx/coalescent/treeseq"
)

// Scenario 5 of §8: µ=0 yields no mutations.
func TestGenerateMutationsZeroRateYieldsNone(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 5, NumLoci: 20, RandomSeed: 71})
	rng := rand.New(rand.NewSource(1))
	muts, err := ts.GenerateMutations(0, rng)
	if err != nil {
		t.Fatalf("GenerateMutations: %v", err)
	}
	if len(muts) != 0 {
		t.Fatalf("len(muts) = %d, want 0", len(muts))
	}
	if ts.NumMutations() != 0 {
		t.Fatalf("NumMutations() = %d, want 0", ts.NumMutations())
	}
}

func TestGenerateMutationsSortedAndInRange(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 6, NumLoci: 30, RecombinationRate: 0.4, RandomSeed: 72})
	rng := rand.New(rand.NewSource(2))
	muts, err := ts.GenerateMutations(2.0, rng)
	if err != nil {
		t.Fatalf("GenerateMutations: %v", err)
	}
	if len(muts) == 0 {
		t.Fatal("no mutations generated with a generous mutation rate")
	}
	for i, mu := range muts {
		if mu.Position < 0 || mu.Position > float64(ts.NumLoci()) {
			t.Fatalf("mutation %d position %g out of range", i, mu.Position)
		}
		if i > 0 && muts[i-1].Position > mu.Position {
			t.Fatalf("mutations not sorted by position at %d", i)
		}
	}
}
