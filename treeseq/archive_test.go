// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeseq_test

import (
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/google/go-cmp/cmp"

	"github.com/sawyerx/coalescent"
	"github.com/sawyerx/coalescent/treeseq"
)

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("not an archive"), 0o644)
}

// Scenario 4 of §8: after dump/load, the tree sequence equals the
// in-memory instance.
func testArchiveRoundTrip(t *testing.T, flags treeseq.DumpFlags) {
	t.Helper()
	ts := buildTreeSeq(t, coalescent.Config{SampleSize: 4, NumLoci: 100, RecombinationRate: 0.6, RandomSeed: 91})
	rng := rand.New(rand.NewSource(5))
	if _, err := ts.GenerateMutations(1.5, rng); err != nil {
		t.Fatalf("GenerateMutations: %v", err)
	}

	env := treeseq.NewEnvironment()
	path := filepath.Join(t.TempDir(), "run.carg")
	if err := treeseq.Dump(ts, path, env, `{"seed":91}`, flags); err != nil {
		t.Fatalf("Dump: %v", err)
	}

	arc, err := treeseq.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(ts.Mutations(), arc.TreeSequence.Mutations()); diff != "" {
		t.Fatalf("mutations differ after round trip (-want +got):\n%s", diff)
	}
	if arc.TreeSequence.NumRecords() != ts.NumRecords() {
		t.Fatalf("NumRecords() = %d, want %d", arc.TreeSequence.NumRecords(), ts.NumRecords())
	}
	for i := 0; i < ts.NumRecords(); i++ {
		want, _ := ts.Record(i, treeseq.TimeOrder)
		got, _ := arc.TreeSequence.Record(i, treeseq.TimeOrder)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("record %d differs after round trip (-want +got):\n%s", i, diff)
		}
	}
	if arc.Environment.RunID != env.RunID {
		t.Fatalf("RunID = %q, want %q", arc.Environment.RunID, env.RunID)
	}
	if arc.Parameters != `{"seed":91}` {
		t.Fatalf("Parameters = %q, want {\"seed\":91}", arc.Parameters)
	}
}

func TestArchiveRoundTripUncompressed(t *testing.T) {
	testArchiveRoundTrip(t, treeseq.FlagNone)
}

func TestArchiveRoundTripCompressed(t *testing.T) {
	testArchiveRoundTrip(t, treeseq.FlagCompress)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.carg")
	if err := writeGarbage(path); err != nil {
		t.Fatalf("writeGarbage: %v", err)
	}
	if _, err := treeseq.Load(path); err == nil {
		t.Fatal("Load of a non-archive file succeeded, want error")
	}
}
