// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeseq

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
)

// legacyMagic is the fixed 4-byte magic of §6's legacy flat file.
const legacyMagic uint32 = 0xa52cd4a4

const legacyVersion uint32 = 1

// Legacy flags, as bits of the header's flags field.
const (
	LegacyComplete uint32 = 1 << 0
	LegacySorted   uint32 = 1 << 1
)

const legacyHeaderSize = 28
const legacyRecordSize = 20

// legacyRecord is one 20-byte flat-file blob: left, the two children, the
// parent node, and time stored as a float32 bit pattern. The right
// endpoint is not stored in the blob itself (§6); see legacyTrailer.
type legacyRecord struct {
	Left     uint32
	Child0   uint32
	Child1   uint32
	Parent   uint32
	TimeBits uint32
}

// legacyTrailer is the JSON metadata trailer. §6 leaves the right endpoint
// out of the fixed-width record blob and says only that it "is inferred
// when the records are re-sorted and fed into a tree sequence" — but
// records sharing the same left do not in general share the same right
// (two coalescences over the same single-locus genome both span [1,2),
// while in a multi-locus run a narrower sub-interval can start at a left
// some wider record also starts at), so reconstructing right from sort
// order alone is not sound. This writer instead carries the right column
// itself inside the trailer's JSON, alongside the caller's own metadata
// string; the fixed 28-byte header and 20-byte record blobs are exactly
// as specified, and the trailer's content is JSON whose schema §6 does
// not constrain.
type legacyTrailer struct {
	Rights   []uint32 `json:"rights"`
	Metadata string   `json:"metadata"`
}

// DumpLegacy writes ts to path in the deprecated flat-file format of §6.
// The format stores time as float32, so this path is lossy; see the
// "legacy f32 precision" note in DESIGN.md. The right endpoint, which the
// fixed-width record has no room for, is kept exactly in the JSON trailer
// (see legacyTrailer). flags should combine [LegacyComplete] and
// [LegacySorted] as appropriate for the caller's run.
func DumpLegacy(ts *TreeSequence, path string, flags uint32, metadata string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: creating %q: %v", ErrIO, path, err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("%w: closing %q: %v", ErrIO, path, e)
		}
	}()

	w := bufio.NewWriter(f)
	recordBytes := make([]byte, legacyRecordSize*len(ts.left))
	for i := range ts.left {
		off := i * legacyRecordSize
		binary.LittleEndian.PutUint32(recordBytes[off:], ts.left[i])
		binary.LittleEndian.PutUint32(recordBytes[off+4:], ts.children[i][0])
		binary.LittleEndian.PutUint32(recordBytes[off+8:], ts.children[i][1])
		binary.LittleEndian.PutUint32(recordBytes[off+12:], ts.node[i])
		binary.LittleEndian.PutUint32(recordBytes[off+16:], math.Float32bits(float32(ts.time[i])))
	}

	trailer, err := json.Marshal(legacyTrailer{Rights: append([]uint32(nil), ts.right...), Metadata: metadata})
	if err != nil {
		return fmt.Errorf("%w: encoding trailer: %v", ErrFileFormat, err)
	}

	metaOffset := uint64(legacyHeaderSize + len(recordBytes))
	if err := writeLegacyHeader(w, ts.numSamples, ts.numLoci, flags, metaOffset); err != nil {
		return err
	}
	if _, err := w.Write(recordBytes); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if _, err := w.Write(trailer); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func writeLegacyHeader(w io.Writer, sampleSize, numLoci, flags uint32, metaOffset uint64) error {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, legacyMagic)
	binary.Write(&buf, binary.LittleEndian, legacyVersion)
	binary.Write(&buf, binary.LittleEndian, sampleSize)
	binary.Write(&buf, binary.LittleEndian, numLoci)
	binary.Write(&buf, binary.LittleEndian, flags)
	binary.Write(&buf, binary.LittleEndian, metaOffset)
	if buf.Len() != legacyHeaderSize {
		return fmt.Errorf("%w: internal header size %d, want %d", ErrFileFormat, buf.Len(), legacyHeaderSize)
	}
	_, err := w.Write(buf.Bytes())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

// LoadLegacy reads a flat file written by [DumpLegacy] (or the legacy
// tool it mimics) and builds a [TreeSequence] from it. The right endpoint
// of each record is recovered from the trailer (see legacyTrailer); this
// is advisory for files written by other tools that used the trailer for
// something else, matching §9's note to treat update-mode on legacy
// files as advisory.
func LoadLegacy(path string) (ts *TreeSequence, metadata string, flags uint32, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: opening %q: %v", ErrIO, path, err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("%w: closing %q: %v", ErrIO, path, e)
		}
	}()

	header := make([]byte, legacyHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, "", 0, fmt.Errorf("%w: reading header: %v", ErrIO, err)
	}
	magic := binary.LittleEndian.Uint32(header[0:])
	if magic != legacyMagic {
		return nil, "", 0, fmt.Errorf("%w: bad magic %x", ErrFileFormat, magic)
	}
	version := binary.LittleEndian.Uint32(header[4:])
	if version != legacyVersion {
		return nil, "", 0, fmt.Errorf("%w: legacy version %d, reader supports %d", ErrUnsupportedFileVersion, version, legacyVersion)
	}
	sampleSize := binary.LittleEndian.Uint32(header[8:])
	numLoci := binary.LittleEndian.Uint32(header[12:])
	flags = binary.LittleEndian.Uint32(header[16:])
	metaOffset := binary.LittleEndian.Uint64(header[20:])

	recordBytes := make([]byte, metaOffset-legacyHeaderSize)
	if _, err := io.ReadFull(f, recordBytes); err != nil {
		return nil, "", 0, fmt.Errorf("%w: reading records: %v", ErrIO, err)
	}
	metaBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, "", 0, fmt.Errorf("%w: reading metadata: %v", ErrIO, err)
	}
	var trailer legacyTrailer
	if err := json.Unmarshal(metaBytes, &trailer); err != nil {
		return nil, "", 0, fmt.Errorf("%w: decoding trailer: %v", ErrFileFormat, err)
	}
	metadata = trailer.Metadata

	if len(recordBytes)%legacyRecordSize != 0 {
		return nil, "", 0, fmt.Errorf("%w: record section size %d not a multiple of %d", ErrFileFormat, len(recordBytes), legacyRecordSize)
	}
	n := len(recordBytes) / legacyRecordSize
	recs := make([]legacyRecord, n)
	for i := 0; i < n; i++ {
		off := i * legacyRecordSize
		recs[i] = legacyRecord{
			Left:     binary.LittleEndian.Uint32(recordBytes[off:]),
			Child0:   binary.LittleEndian.Uint32(recordBytes[off+4:]),
			Child1:   binary.LittleEndian.Uint32(recordBytes[off+8:]),
			Parent:   binary.LittleEndian.Uint32(recordBytes[off+12:]),
			TimeBits: binary.LittleEndian.Uint32(recordBytes[off+16:]),
		}
	}

	if len(trailer.Rights) != n {
		return nil, "", 0, fmt.Errorf("%w: trailer has %d right endpoints, want %d", ErrFileFormat, len(trailer.Rights), n)
	}

	records := make([]struct {
		Left, Right, Node uint32
		Children          [2]uint32
		Time              float64
	}, n)
	for i, r := range recs {
		c0, c1 := r.Child0, r.Child1
		if c0 > c1 {
			c0, c1 = c1, c0
		}
		records[i] = struct {
			Left, Right, Node uint32
			Children          [2]uint32
			Time              float64
		}{
			Left: r.Left, Right: trailer.Rights[i], Node: r.Parent,
			Children: [2]uint32{c0, c1}, Time: float64(math.Float32frombits(r.TimeBits)),
		}
	}

	// Re-sort by time ascending, the order TreeSequence.New requires.
	sort.SliceStable(records, func(a, b int) bool { return records[a].Time < records[b].Time })

	ts = &TreeSequence{numSamples: sampleSize, numLoci: numLoci}
	ts.left = make([]uint32, n)
	ts.right = make([]uint32, n)
	ts.node = make([]uint32, n)
	ts.children = make([][2]uint32, n)
	ts.time = make([]float64, n)
	for i, r := range records {
		ts.left[i] = r.Left
		ts.right[i] = r.Right
		ts.node[i] = r.Node
		ts.children[i] = r.Children
		ts.time[i] = r.Time
	}
	ts.buildIndexes()
	ts.buildNodeTimes()

	return ts, metadata, flags, nil
}
