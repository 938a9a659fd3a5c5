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
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
)

// archiveMagic identifies the hierarchical numeric archive container of
// §6. No HDF5 Go binding appears anywhere in the retrieved pack, so the
// container itself — a directory-free, fixed-order sequence of checksummed
// datasets — is hand-rolled on encoding/binary rather than binding a real
// HDF5 library; the two real domain dependencies the spec calls for,
// optional deflate compression and a run-id, are wired in below.
const archiveMagic = "CARG"

// DumpFlags selects archive-writing options.
type DumpFlags uint32

// FlagCompress enables byte-shuffle + deflate-level-9 compression of every
// dataset.
const (
	FlagNone     DumpFlags = 0
	FlagCompress DumpFlags = 1 << 0
)

const (
	formatMajor = 1
	formatMinor = 0
)

// Environment stamps an archive with the run metadata §3.1 describes: a
// unique run id and basic host/toolchain diagnostics, carried in the
// archive's "environment" JSON attribute.
type Environment struct {
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	GoVersion string    `json:"go_version"`
	Host      string    `json:"host"`
}

// NewEnvironment returns an Environment stamped with a fresh v4 UUID run
// id and the current host/toolchain diagnostics.
func NewEnvironment() Environment {
	host, _ := os.Hostname()
	return Environment{
		RunID:     uuid.NewString(),
		StartedAt: time.Now().UTC(),
		GoVersion: runtime.Version(),
		Host:      host,
	}
}

// Archive is the result of [Load]: the tree sequence plus the two JSON
// attributes §6 requires every archive group to carry.
type Archive struct {
	TreeSequence *TreeSequence
	Environment  Environment
	Parameters   string
}

// Dump writes ts to path as a hierarchical numeric archive (§6), stamped
// with env and the caller-supplied parameters JSON string. flags selects
// optional compression.
func Dump(ts *TreeSequence, path string, env Environment, parameters string, flags DumpFlags) (err error) {
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
	if err := dumpTo(w, ts, env, parameters, flags); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: flushing %q: %v", ErrIO, path, err)
	}
	return nil
}

func dumpTo(w io.Writer, ts *TreeSequence, env Environment, parameters string, flags DumpFlags) error {
	if _, err := io.WriteString(w, archiveMagic); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	if err := writeUint16(w, formatMajor); err != nil {
		return err
	}
	if err := writeUint16(w, formatMinor); err != nil {
		return err
	}
	if err := writeUint32(w, ts.numSamples); err != nil {
		return err
	}
	if err := writeUint32(w, ts.numLoci); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(ts.NumRecords())); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(ts.NumMutations())); err != nil {
		return err
	}
	if err := writeUint32(w, uint32(flags)); err != nil {
		return err
	}

	envJSON, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("%w: marshaling environment: %v", ErrFileFormat, err)
	}
	if err := writeBlob(w, envJSON); err != nil {
		return err
	}
	if err := writeBlob(w, []byte(parameters)); err != nil {
		return err
	}

	compress := flags&FlagCompress != 0
	if err := writeDataset(w, encodeUint32s(ts.left), 4, compress); err != nil {
		return err
	}
	if err := writeDataset(w, encodeUint32s(ts.right), 4, compress); err != nil {
		return err
	}
	if err := writeDataset(w, encodeUint32s(ts.node), 4, compress); err != nil {
		return err
	}
	if err := writeDataset(w, encodeUint32s(flattenChildren(ts.children)), 4, compress); err != nil {
		return err
	}
	if err := writeDataset(w, encodeFloat64s(ts.time), 8, compress); err != nil {
		return err
	}

	if ts.NumMutations() > 0 {
		if err := writeDataset(w, encodeFloat64s(ts.mutPosition), 8, compress); err != nil {
			return err
		}
		if err := writeDataset(w, encodeUint32s(ts.mutNode), 4, compress); err != nil {
			return err
		}
	}
	return nil
}

// Load reads an archive written by [Dump]. Compression is detected from
// the file's own stored flags, so the caller does not repeat it. Load
// returns [ErrUnsupportedFileVersion] if the file's major format version
// does not match the version this package writes.
func Load(path string) (arc *Archive, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %q: %v", ErrIO, path, err)
	}
	defer func() {
		if e := f.Close(); e != nil && err == nil {
			err = fmt.Errorf("%w: closing %q: %v", ErrIO, path, e)
		}
	}()
	return loadFrom(bufio.NewReader(f))
}

func loadFrom(r io.Reader) (*Archive, error) {
	magic := make([]byte, len(archiveMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("%w: reading magic: %v", ErrIO, err)
	}
	if string(magic) != archiveMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrFileFormat, magic)
	}
	major, err := readUint16(r)
	if err != nil {
		return nil, err
	}
	if _, err := readUint16(r); err != nil {
		return nil, err
	}
	if major != formatMajor {
		return nil, fmt.Errorf("%w: archive major version %d, reader supports %d", ErrUnsupportedFileVersion, major, formatMajor)
	}

	numSamples, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	numLoci, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	numRecords, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	numMutations, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	fileFlags, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	compress := DumpFlags(fileFlags)&FlagCompress != 0

	envJSON, err := readBlob(r)
	if err != nil {
		return nil, err
	}
	var env Environment
	if err := json.Unmarshal(envJSON, &env); err != nil {
		return nil, fmt.Errorf("%w: unmarshaling environment: %v", ErrFileFormat, err)
	}
	paramsJSON, err := readBlob(r)
	if err != nil {
		return nil, err
	}

	left, err := readDataset(r, int(numRecords), 4, compress)
	if err != nil {
		return nil, err
	}
	right, err := readDataset(r, int(numRecords), 4, compress)
	if err != nil {
		return nil, err
	}
	node, err := readDataset(r, int(numRecords), 4, compress)
	if err != nil {
		return nil, err
	}
	childrenFlat, err := readDataset(r, int(numRecords)*2, 4, compress)
	if err != nil {
		return nil, err
	}
	timeBytes, err := readDataset(r, int(numRecords), 8, compress)
	if err != nil {
		return nil, err
	}

	ts := &TreeSequence{
		numSamples: numSamples,
		numLoci:    numLoci,
		left:       decodeUint32s(left),
		right:      decodeUint32s(right),
		node:       decodeUint32s(node),
		children:   unflattenChildren(decodeUint32s(childrenFlat)),
		time:       decodeFloat64s(timeBytes),
	}
	ts.buildIndexes()
	ts.buildNodeTimes()

	if numMutations > 0 {
		posBytes, err := readDataset(r, int(numMutations), 8, compress)
		if err != nil {
			return nil, err
		}
		nodeBytes, err := readDataset(r, int(numMutations), 4, compress)
		if err != nil {
			return nil, err
		}
		ts.mutPosition = decodeFloat64s(posBytes)
		ts.mutNode = decodeUint32s(nodeBytes)
	}

	return &Archive{TreeSequence: ts, Environment: env, Parameters: string(paramsJSON)}, nil
}

func flattenChildren(children [][2]uint32) []uint32 {
	out := make([]uint32, 0, len(children)*2)
	for _, c := range children {
		out = append(out, c[0], c[1])
	}
	return out
}

func unflattenChildren(flat []uint32) [][2]uint32 {
	out := make([][2]uint32, len(flat)/2)
	for i := range out {
		out[i] = [2]uint32{flat[2*i], flat[2*i+1]}
	}
	return out
}

func encodeUint32s(v []uint32) []byte {
	out := make([]byte, len(v)*4)
	for i, x := range v {
		binary.LittleEndian.PutUint32(out[i*4:], x)
	}
	return out
}

func decodeUint32s(b []byte) []uint32 {
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	return out
}

func encodeFloat64s(v []float64) []byte {
	out := make([]byte, len(v)*8)
	for i, x := range v {
		binary.LittleEndian.PutUint64(out[i*8:], math.Float64bits(x))
	}
	return out
}

func decodeFloat64s(b []byte) []float64 {
	out := make([]float64, len(b)/8)
	for i := range out {
		out[i] = math.Float64frombits(binary.LittleEndian.Uint64(b[i*8:]))
	}
	return out
}

func writeUint16(w io.Writer, v uint16) error {
	var buf [2]byte
	binary.LittleEndian.PutUint16(buf[:], v)
	_, err := w.Write(buf[:])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func readUint16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeBlob(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func readBlob(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrIO, err)
	}
	return b, nil
}

// writeDataset writes one fixed-width column: its raw (pre-shuffle)
// length, a Fletcher-32 checksum of the shuffled bytes, the (possibly
// deflated) payload length, then the payload itself.
func writeDataset(w io.Writer, raw []byte, elemSize int, compress bool) error {
	shuffled := shuffle(raw, elemSize)
	checksum := fletcher32(shuffled)

	payload := shuffled
	if compress {
		var buf bytes.Buffer
		fw, err := flate.NewWriter(&buf, flate.BestCompression)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		if _, err := fw.Write(shuffled); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		if err := fw.Close(); err != nil {
			return fmt.Errorf("%w: %v", ErrIO, err)
		}
		payload = buf.Bytes()
	}

	if err := writeUint32(w, uint32(len(raw))); err != nil {
		return err
	}
	if err := writeUint32(w, checksum); err != nil {
		return err
	}
	if err := writeBlob(w, payload); err != nil {
		return err
	}
	return nil
}

func readDataset(r io.Reader, wantElems, elemSize int, compress bool) ([]byte, error) {
	rawLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	checksum, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	payload, err := readBlob(r)
	if err != nil {
		return nil, err
	}

	shuffled := payload
	if compress {
		fr := flate.NewReader(bytes.NewReader(payload))
		shuffled, err = io.ReadAll(fr)
		if err != nil {
			return nil, fmt.Errorf("%w: inflating dataset: %v", ErrFileFormat, err)
		}
		if err := fr.Close(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrIO, err)
		}
	}
	if uint32(len(shuffled)) != rawLen {
		return nil, fmt.Errorf("%w: dataset length %d, expected %d", ErrFileFormat, len(shuffled), rawLen)
	}
	if got := fletcher32(shuffled); got != checksum {
		return nil, fmt.Errorf("%w: dataset checksum %x, expected %x", ErrChecksum, got, checksum)
	}

	raw := unshuffle(shuffled, elemSize)
	if wantElems >= 0 && len(raw) != wantElems*elemSize {
		return nil, fmt.Errorf("%w: dataset has %d elements, expected %d", ErrFileFormat, len(raw)/elemSize, wantElems)
	}
	return raw, nil
}
