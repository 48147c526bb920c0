// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Word is a 40-bit Phase-2 word, stored in the low bits of a uint64.
type Word uint64

// ReadWord interprets the first WordSize bytes of p as a big-endian word.
func ReadWord(p []byte) Word {
	_ = p[WordSize-1] // bounds check hint to compiler; see golang.org/issue/14808
	return Word(p[0])<<32 | Word(p[1])<<24 | Word(p[2])<<16 | Word(p[3])<<8 | Word(p[4])
}

// Bits returns the bits [lo, hi) of the word, bit 0 being the most
// significant one.
func (w Word) Bits(lo, hi int) uint64 {
	n := hi - lo
	return uint64(w>>(wordBits-hi)) & (1<<n - 1)
}

// String returns the 40 bits of the word, most significant bit first.
func (w Word) String() string {
	s, _ := FormatBits(uint64(w), wordBits)
	return s
}

// IsHeader returns whether the word starts with the event header marker.
func (w Word) IsHeader() bool {
	return w.Bits(0, 11) == hdrMarker
}

func (w Word) isTDCHeader() bool {
	return w.Bits(8, 16) == thdMarker
}

func (w Word) isTDCTrailer() bool {
	return w.Bits(8, 28) == ttrMarker
}

func (w Word) isTrailer() bool {
	return w.Bits(0, 4) == trlMarker
}

func fits(v uint64, width int) bool {
	if width >= 64 {
		return true
	}
	return v < 1<<width
}

// FormatBits returns the width-bits binary representation of v,
// zero padded, most significant bit first.
// FormatBits returns an error wrapping ErrEncoding if v needs more
// than width bits.
func FormatBits(v uint64, width int) (string, error) {
	if width <= 0 || !fits(v, width) {
		return "", xerrors.Errorf("tdc: value %d does not fit in %d bits: %w", v, width, ErrEncoding)
	}
	s := strconv.FormatUint(v, 2)
	if n := width - len(s); n > 0 {
		s = strings.Repeat("0", n) + s
	}
	return s, nil
}

// bitWriter packs bit fields into bytes, most significant bit first.
// Bits that do not complete a byte are held until the next write.
type bitWriter struct {
	buf []byte
	acc uint64 // pending bits
	n   int    // number of pending bits, always < 8 between writes
	err error
}

func (bw *bitWriter) reset() {
	bw.buf = bw.buf[:0]
	bw.acc = 0
	bw.n = 0
	bw.err = nil
}

// write appends the width low bits of v.
func (bw *bitWriter) write(name string, v uint64, width int) {
	if bw.err != nil {
		return
	}
	if width <= 0 || width > 56 || !fits(v, width) {
		bw.err = xerrors.Errorf("tdc: %s=%d does not fit in %d bits: %w", name, v, width, ErrEncoding)
		return
	}
	bw.acc = bw.acc<<width | v
	bw.n += width
	for bw.n >= 8 {
		bw.n -= 8
		bw.buf = append(bw.buf, byte(bw.acc>>bw.n))
	}
	bw.acc &= 1<<bw.n - 1
}

func (bw *bitWriter) writeBool(name string, v bool) {
	var b uint64
	if v {
		b = 1
	}
	bw.write(name, b, 1)
}

// close checks no partial byte is left in the accumulator.
func (bw *bitWriter) close() error {
	if bw.err != nil {
		return bw.err
	}
	if bw.n != 0 {
		return xerrors.Errorf("tdc: %d dangling bits at end of frame: %w", bw.n, ErrEncoding)
	}
	return nil
}
