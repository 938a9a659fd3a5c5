// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeseq_test

import (
	"math"
	"path/filepath"
	"testing"

	"github.com/sawyerx/coalescent"
	"github.com/sawyerx/coalescent/treeseq"
)

// Legacy round-trips are lossy (§9: time is stored as float32), so this
// test checks equality within float32 epsilon rather than exactly, unlike
// the archive format's exact round-trip test.
func TestLegacyRoundTripWithinFloat32Epsilon(t *testing.T) {
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 3, NumLoci: 1, RandomSeed: 101})
	path := filepath.Join(t.TempDir(), "legacy.trees")

	flags := treeseq.LegacyComplete | treeseq.LegacySorted
	if err := treeseq.DumpLegacy(ts, path, flags, `{"note":"legacy"}`); err != nil {
		t.Fatalf("DumpLegacy: %v", err)
	}

	loaded, metadata, gotFlags, err := treeseq.LoadLegacy(path)
	if err != nil {
		t.Fatalf("LoadLegacy: %v", err)
	}
	if gotFlags != flags {
		t.Fatalf("flags = %#x, want %#x", gotFlags, flags)
	}
	if metadata != `{"note":"legacy"}` {
		t.Fatalf("metadata = %q, want {\"note\":\"legacy\"}", metadata)
	}
	if loaded.NumRecords() != ts.NumRecords() {
		t.Fatalf("NumRecords() = %d, want %d", loaded.NumRecords(), ts.NumRecords())
	}

	for i := 0; i < ts.NumRecords(); i++ {
		want, _ := ts.Record(i, treeseq.TimeOrder)
		got, _ := loaded.Record(i, treeseq.TimeOrder)
		if want.Node != got.Node || want.Children != got.Children {
			t.Fatalf("record %d topology differs: want %+v, got %+v", i, want, got)
		}
		if math.Abs(want.Time-got.Time) > 1e-6 {
			t.Fatalf("record %d time differs beyond float32 epsilon: want %g, got %g", i, want.Time, got.Time)
		}
	}
}

func TestLoadLegacyRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.trees")
	if err := writeGarbage(path); err != nil {
		t.Fatalf("writeGarbage: %v", err)
	}
	if _, _, _, err := treeseq.LoadLegacy(path); err == nil {
		t.Fatal("LoadLegacy of a non-legacy file succeeded, want error")
	}
}
