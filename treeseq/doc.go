// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package treeseq implements the tree-sequence representation of an
// ancestral recombination graph: a columnar store of coalescence records
// produced by [github.com/sawyerx/coalescent.Simulator], indexed for
// efficient left-to-right iteration of the marginal trees it encodes.
//
// A [TreeSequence] is built once (from a simulator's records, or loaded
// from an archive or legacy file) and is then read-only. [NewDiffIterator]
// and [NewSparseTree] walk it left to right, recovering each marginal tree
// in amortized constant time per move. [TreeSequence.GenerateMutations]
// drops infinite-sites mutations onto its branches, and
// [github.com/sawyerx/coalescent/haplotype] turns those mutations plus the
// tree sequence into a segregating-site matrix.
package treeseq
