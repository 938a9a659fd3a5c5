// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package coalescent

// A Record describes a coalescence: over the genomic half-open interval
// [Left, Right), Node is the parent of Children at coalescence Time.
// Children are always stored in ascending order.
type Record struct {
	Left, Right uint32
	Node        uint32
	Children    [2]uint32
	Time        float64
}
