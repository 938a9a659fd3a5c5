// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeseq

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// GenerateMutations drops infinite-sites mutations over every branch of
// the tree sequence (§4.8): for each coalescence record and each of its
// two children, a Poisson-distributed count with mean
// mu·(time−timeChild)·(right−left) is drawn, and each drawn mutation is
// placed at a uniformly random real position in [left, right). The result
// is sorted by position and installed via [TreeSequence.SetMutations]
// before being returned; rng selects the random stream (construct it with
// golang.org/x/exp/rand.New(golang.org/x/exp/rand.NewSource(seed)), the
// same source type gonum's distuv package requires, to match the
// simulator's own convention).
func (ts *TreeSequence) GenerateMutations(mu float64, rng *rand.Rand) ([]Mutation, error) {
	var muts []Mutation
	poisson := distuv.Poisson{Src: rng}
	uniform := distuv.Uniform{Src: rng}

	for i := range ts.left {
		left, right, t := ts.left[i], ts.right[i], ts.time[i]
		span := float64(right - left)
		for _, child := range ts.children[i] {
			childTime := ts.NodeTime(child)
			mean := mu * (t - childTime) * span
			if mean <= 0 {
				continue
			}
			poisson.Lambda = mean
			count := int(poisson.Rand())
			uniform.Min, uniform.Max = float64(left), float64(right)
			for k := 0; k < count; k++ {
				muts = append(muts, Mutation{
					Position: uniform.Rand(),
					Node:     child,
				})
			}
		}
	}

	if err := ts.SetMutations(muts); err != nil {
		return nil, err
	}
	return ts.Mutations(), nil
}
