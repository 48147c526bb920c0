// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

const (
	WordSize = 5            // size of a Phase-2 word, in bytes
	wordBits = 8 * WordSize // size of a Phase-2 word, in bits

	hdrMarker = 0x500   // 0b10100000000: event header marker (11 bits)
	csmMarker = 0x0     // 0b000: CSM id of this deployment (3 bits)
	thdMarker = 0xf8    // 0b11111000: TDC header marker (8 bits)
	ttrMarker = 0xf0000 // 0b11110000000000000000: TDC trailer marker (20 bits)
	trlMarker = 0xc     // 0b1100: event trailer marker (4 bits)

	tdcMode = 1 // acquisition mode of TDC data words

	edgeBits = 17
	edgeMask = 1<<edgeBits - 1

	// frame overhead, in words: one header and one trailer.
	frameOverhead = 2
	// words per hit: one TDC header, one TDC data, one TDC trailer.
	hitWords = 3
)

const (
	// MaxEventID is the largest event identifier a header can carry.
	MaxEventID = 1<<12 - 1
	// MaxHits is the largest number of hits a trailer can count.
	MaxHits = 1<<4 - 1
)

// FrameSize returns the size in bytes of a frame holding n hits.
func FrameSize(n int) int {
	return WordSize * (frameOverhead + hitWords*n)
}
