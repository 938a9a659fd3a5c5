// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeseq_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sawyerx/coalescent"
	"github.com/sawyerx/coalescent/treeseq"
)

func TestWriteNewickTwoSamples(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 2, NumLoci: 1, RandomSeed: 81})
	var buf bytes.Buffer
	if err := treeseq.WriteNewick(ts, &buf); err != nil {
		t.Fatalf("WriteNewick: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "[1](") {
		t.Fatalf("output = %q, want interval marker [1] followed by '('", out)
	}
	if !strings.Contains(out, "1:") || !strings.Contains(out, "2:") {
		t.Fatalf("output = %q, want both sample leaves", out)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), ";") {
		t.Fatalf("output = %q, want trailing ';'", out)
	}
}

func TestWriteNewickMultipleIntervals(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 5, NumLoci: 30, RecombinationRate: 0.8, RandomSeed: 82})
	var buf bytes.Buffer
	if err := treeseq.WriteNewick(ts, &buf); err != nil {
		t.Fatalf("WriteNewick: %v", err)
	}
	if strings.Count(buf.String(), ";") < 1 {
		t.Fatal("no trees written")
	}
}
