// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

// Package coalescent simulates the coalescent with recombination over a
// sample of n haploid chromosomes along a finite linear genome of m
// discrete loci, under a history of demographic events, producing the
// ancestral recombination graph as a stream of coalescence records.
//
// The simulator (this package) sits on top of a small dependency chain:
// [github.com/sawyerx/coalescent/fenwick] for the weighted random choice
// over recombination links, [github.com/sawyerx/coalescent/internal/avl]
// for the ordered population index, and
// [github.com/sawyerx/coalescent/internal/pool] for the segment/ancestor
// allocation pools. Its output feeds
// [github.com/sawyerx/coalescent/treeseq], which builds the queryable
// tree-sequence representation and derives marginal trees, mutations, and
// haplotypes from it.
package coalescent
