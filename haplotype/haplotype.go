// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package haplotype materializes the segregating-site matrix (§4.9) from a
// tree sequence plus the mutations dropped onto it: an n×S bit matrix
// where row i is sample i+1's haplotype and column s is the site defined
// by the s-th mutation in position order.
package haplotype

import (
	"fmt"
	"math/bits"

	"github.com/sawyerx/coalescent/treeseq"
)

// A Matrix is a packed n×S bitset, one row per sample, one column per
// segregating site. Rows are stored as []uint64 words, the same dense
// presence-bitmap idiom the retrieved pack's radix-tree implementations
// use for per-node child presence, applied here to per-sample site
// membership.
type Matrix struct {
	numSamples int
	numSites   int
	words      int
	rows       [][]uint64
}

// NumSamples returns n.
func (m *Matrix) NumSamples() int { return m.numSamples }

// NumSites returns S, the number of segregating sites.
func (m *Matrix) NumSites() int { return m.numSites }

// Get reports whether sample (1-based, 1..=NumSamples) carries the
// derived allele at site (0-based, 0..<NumSites).
func (m *Matrix) Get(sample int, site int) bool {
	row := m.rows[sample-1]
	return row[site/64]&(1<<uint(site%64)) != 0
}

func (m *Matrix) set(sample int, site int) {
	row := m.rows[sample-1]
	row[site/64] |= 1 << uint(site%64)
}

// Count returns the number of samples carrying the derived allele at
// site — its allele count.
func (m *Matrix) Count(site int) int {
	n := 0
	for s := 1; s <= m.numSamples; s++ {
		row := m.rows[s-1]
		if row[site/64]&(1<<uint(site%64)) != 0 {
			n++
		}
	}
	return n
}

// PopCount returns the total number of set bits across the whole matrix,
// using math/bits.OnesCount64 the way the pack's trie implementations
// count populated slots in their presence bitmaps.
func (m *Matrix) PopCount() int {
	total := 0
	for _, row := range m.rows {
		for _, w := range row {
			total += bits.OnesCount64(w)
		}
	}
	return total
}

// Generate builds the haplotype matrix for ts's current mutations (§4.9):
// for every marginal tree the sparse tree iterator visits, each mutation
// whose position falls in [tree.left, tree.right) is placed by a
// depth-first walk from its node down to every sample leaf beneath it,
// setting that sample's bit in the mutation's column.
func Generate(ts *treeseq.TreeSequence) (*Matrix, error) {
	n := int(ts.NumSamples())
	muts := ts.Mutations()
	s := len(muts)

	words := (n + 63) / 64
	rows := make([][]uint64, n)
	for i := range rows {
		rows[i] = make([]uint64, words)
	}
	m := &Matrix{numSamples: n, numSites: s, words: words, rows: rows}
	if s == 0 {
		return m, nil
	}

	st := treeseq.NewSparseTree(ts, false)
	col := 0
	for col < s {
		ok, err := st.Next()
		if err != nil {
			return nil, fmt.Errorf("treeseq: generating haplotypes: %w", err)
		}
		if !ok {
			break
		}
		for col < s && muts[col].Position < float64(st.Right()) {
			if muts[col].Position < float64(st.Left()) {
				col++
				continue
			}
			markSubtree(st, muts[col].Node, m, col)
			col++
		}
	}
	return m, nil
}

// markSubtree sets column site for every sample leaf in the subtree of st
// rooted at node, via an explicit stack (no recursion depth tied to
// sample count).
func markSubtree(st *treeseq.SparseTree, node uint32, m *Matrix, site int) {
	stack := []uint32{node}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if st.IsLeaf(v) {
			m.set(int(v), site)
			continue
		}
		children := st.Children(v)
		if children[0] != 0 {
			stack = append(stack, children[0])
		}
		if children[1] != 0 {
			stack = append(stack, children[1])
		}
	}
}
