// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package coalescent

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/sawyerx/coalescent/fenwick"
	"github.com/sawyerx/coalescent/internal/pool"
)

// mapAllocErr translates a [pool.Pool] allocation failure into the
// simulator's own error vocabulary, distinguishing a caller-configured
// memory budget from an unexpected allocation failure.
func mapAllocErr(err error) error {
	if errors.Is(err, pool.ErrOutOfMemory) {
		return fmt.Errorf("%w: %v", ErrMaxMemoryExceeded, err)
	}
	return fmt.Errorf("%w: %v", ErrNoMemory, err)
}

// A Config parameterizes a [Simulator]. It mirrors the configuration
// surface §6 of the specification assigns to the (out of scope) driver,
// bound here to concrete Go types so library callers can construct it
// directly without going through a configuration file.
type Config struct {
	SampleSize        uint32
	NumLoci           uint32
	RandomSeed        uint64
	RecombinationRate float64
	MutationRate      float64
	PopulationModels  []PopulationModel

	MaxMemory uint64

	// Block sizes for the simulator's allocation pools. Zero selects a
	// reasonable default. AVLBlockSize and NodeMapBlockSize are accepted
	// for configuration-surface fidelity but are not consumed: this
	// implementation leaves the population's AVL nodes and the node-
	// mapping auxiliary's run-length entries on ordinary Go allocation,
	// since both are small relative to segment churn and Go's garbage
	// collector already amortizes that cost well — see DESIGN.md.
	SegmentBlockSize int
	AVLBlockSize     int
	NodeMapBlockSize int
	RecordBlockSize  int
}

const defaultBlockSize = 256

// A Simulator runs the coalescent-with-recombination event loop of §4.4
// over one sample. A Simulator is not safe for concurrent use; it is owned
// by a single goroutine for its entire lifetime, as §5 requires.
type Simulator struct {
	cfg    Config
	epochs []epoch
	rng    *rand.Rand

	budget  *pool.Budget
	segPool *pool.Pool[segment]
	ancPool *pool.Pool[ancestor]

	pop     population
	overlap *overlapCounter
	fen     *fenwick.Tree[int64]

	nextNode uint32
	t        float64
	epochIdx int

	records []Record
	done    bool
}

// New validates cfg and returns a Simulator set up with n sample ancestors
// at time 0, ready to [Simulator.Run]. It returns a fatal, non-recoverable
// error for n < 2, m < 1, a negative rate, or an invalid population model
// sequence.
func New(cfg Config) (*Simulator, error) {
	if cfg.SampleSize < 2 {
		return nil, fmt.Errorf("%w: sample size must be at least 2, got %d", ErrBadParameter, cfg.SampleSize)
	}
	if cfg.NumLoci < 1 {
		return nil, fmt.Errorf("%w: number of loci must be at least 1, got %d", ErrBadParameter, cfg.NumLoci)
	}
	if cfg.RecombinationRate < 0 {
		return nil, fmt.Errorf("%w: negative recombination rate %g", ErrBadParameter, cfg.RecombinationRate)
	}
	if cfg.MutationRate < 0 {
		return nil, fmt.Errorf("%w: negative mutation rate %g", ErrBadParameter, cfg.MutationRate)
	}
	if err := ValidatePopulationModels(cfg.PopulationModels); err != nil {
		return nil, err
	}

	segBlock := cfg.SegmentBlockSize
	if segBlock <= 0 {
		segBlock = defaultBlockSize
	}
	ancBlock := cfg.RecordBlockSize
	if ancBlock <= 0 {
		ancBlock = defaultBlockSize
	}

	budget := pool.NewBudget(cfg.MaxMemory)
	s := &Simulator{
		cfg:     cfg,
		epochs:  buildEpochs(cfg.PopulationModels),
		rng:     rand.New(rand.NewSource(cfg.RandomSeed)),
		budget:  budget,
		segPool: pool.New[segment](budget, segBlock),
		ancPool: pool.New[ancestor](budget, ancBlock),
		fen:     fenwick.New[int64](int(cfg.NumLoci)),
		overlap: newOverlapCounter(cfg.NumLoci, int(cfg.SampleSize)),
		nextNode: cfg.SampleSize + 1,
	}
	if err := s.setup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Simulator) setup() error {
	for i := uint32(1); i <= s.cfg.SampleSize; i++ {
		seg, err := s.segPool.Alloc()
		if err != nil {
			return fmt.Errorf("allocating sample %d: %w", i, mapAllocErr(err))
		}
		seg.left, seg.right, seg.node = 1, s.cfg.NumLoci+1, i

		a, err := s.ancPool.Alloc()
		if err != nil {
			return fmt.Errorf("allocating sample %d: %w", i, mapAllocErr(err))
		}
		a.head = seg
		a.recomputeLinks()
		s.insertAncestor(a)
	}
	return nil
}

// insertAncestor adds a to the population index and its Fenwick bucket.
func (s *Simulator) insertAncestor(a *ancestor) {
	s.pop.insert(a)
	s.fen.Increment(int(a.head.left), int64(a.links))
}

// removeAncestor removes a from the population index and its Fenwick
// bucket, using a's current link count.
func (s *Simulator) removeAncestor(a *ancestor) {
	s.pop.remove(a)
	s.fen.Increment(int(a.head.left), -int64(a.links))
}

func (s *Simulator) freeChain(head *segment) {
	for head != nil {
		next := head.next
		s.segPool.Free(head)
		head = next
	}
}

// RunOptions bounds a single [Simulator.Run] call.
type RunOptions struct {
	// MaxEvents caps the number of events processed by this call; zero
	// means unlimited. Reaching the cap returns [ErrPaused].
	MaxEvents int
}

// Run drives the event loop of §4.4.2 until the sample has fully
// coalesced, the context is cancelled, or MaxEvents is reached. On a
// non-fatal pause it returns [ErrPaused] and leaves the Simulator in a
// consistent state that a later Run call resumes. On success it returns
// nil; Records then holds every emitted coalescence record, in time order.
func (s *Simulator) Run(ctx context.Context, opts RunOptions) error {
	if s.done {
		return nil
	}
	events := 0
	for s.pop.len() > 1 {
		select {
		case <-ctx.Done():
			return ErrPaused
		default:
		}
		if opts.MaxEvents > 0 && events >= opts.MaxEvents {
			return ErrPaused
		}
		if err := s.step(); err != nil {
			return err
		}
		events++
	}
	s.done = true
	return nil
}

// step advances the simulator by exactly one event, redrawing across
// population-model epoch boundaries as described in §4.4.2 step 3.
func (s *Simulator) step() error {
	for {
		k := s.pop.len()
		L := s.fen.Total()

		tc := distuv.Exponential{Rate: 1, Src: s.rng}.Rand()
		tc = s.epochs[s.epochIdx].coalescenceWaitingTime(s.t, k, tc)

		tr := recombinationWaitingTimeInf
		if L > 0 && s.cfg.RecombinationRate > 0 {
			tr = distuv.Exponential{Rate: s.cfg.RecombinationRate * float64(L), Src: s.rng}.Rand()
		}

		candidate := tc
		isCoalescence := true
		if tr < candidate {
			candidate = tr
			isCoalescence = false
		}

		e := s.epochs[s.epochIdx]
		if e.hasBoundary && s.t+candidate > e.boundary {
			s.t = e.boundary
			s.epochIdx++
			continue
		}

		s.t += candidate
		if isCoalescence {
			return s.coalesce()
		}
		return s.recombine(L)
	}
}

// Records returns every coalescence record emitted so far, in the order
// they were produced (non-decreasing time: the records of one event share
// its time and are in ascending left order).
func (s *Simulator) Records() []Record {
	out := make([]Record, len(s.records))
	copy(out, s.records)
	return out
}

// NumNodes returns the highest node id assigned so far (n if no
// coalescence has yet occurred).
func (s *Simulator) NumNodes() uint32 {
	return s.nextNode - 1
}

// Done reports whether the sample has fully coalesced.
func (s *Simulator) Done() bool {
	return s.done
}

// collectBoundaries returns the sorted, deduplicated set of segment
// endpoints across every chain given.
func collectBoundaries(chains ...*segment) []uint32 {
	seen := make(map[uint32]bool)
	var out []uint32
	for _, head := range chains {
		for seg := head; seg != nil; seg = seg.next {
			if !seen[seg.left] {
				seen[seg.left] = true
				out = append(out, seg.left)
			}
			if !seen[seg.right] {
				seen[seg.right] = true
				out = append(out, seg.right)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// findCovering returns the segment in the chain starting at head covering
// locus pos, or nil.
func findCovering(head *segment, pos uint32) *segment {
	for seg := head; seg != nil; seg = seg.next {
		if seg.left > pos {
			return nil
		}
		if pos < seg.right {
			return seg
		}
	}
	return nil
}
