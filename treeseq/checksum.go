// Copyright © 2022 J. Salvador Arias <jsalarias@gmail.com>
// All rights reserved.
// Distributed under BSD2 license that can be found in the LICENSE file.

package treeseq

// fletcher32 computes the Fletcher-32 checksum of data, the checksum §6
// requires guarding every archive dataset. data is consumed as
// little-endian 16-bit words, zero-padded in the high byte if its length
// is odd. No library in the retrieved pack implements this specific
// checksum, so it is hand-written here from its well-known arithmetic
// definition.
func fletcher32(data []byte) uint32 {
	var c0, c1 uint32
	i := 0
	for i+1 < len(data) {
		w := uint32(data[i]) | uint32(data[i+1])<<8
		c0 = (c0 + w) % 65535
		c1 = (c1 + c0) % 65535
		i += 2
	}
	if i < len(data) {
		w := uint32(data[i])
		c0 = (c0 + w) % 65535
		c1 = (c1 + c0) % 65535
	}
	return c1<<16 | c0
}
