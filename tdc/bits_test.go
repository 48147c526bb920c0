// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"bytes"
	"errors"
	"testing"
)

func TestFormatBits(t *testing.T) {
	for _, tc := range []struct {
		v     uint64
		width int
		want  string
		err   bool
	}{
		{v: 0, width: 3, want: "000"},
		{v: 1, width: 2, want: "01"},
		{v: 0x500, width: 11, want: "10100000000"},
		{v: 0xf8, width: 8, want: "11111000"},
		{v: 0xf0000, width: 20, want: "11110000000000000000"},
		{v: 255, width: 8, want: "11111111"},
		{v: 256, width: 8, err: true},
		{v: 32, width: 5, err: true},
		{v: 1, width: 0, err: true},
	} {
		got, err := FormatBits(tc.v, tc.width)
		switch {
		case tc.err:
			if !errors.Is(err, ErrEncoding) {
				t.Fatalf("v=%d, width=%d: invalid error: %+v", tc.v, tc.width, err)
			}
		case err != nil:
			t.Fatalf("v=%d, width=%d: could not format bits: %+v", tc.v, tc.width, err)
		default:
			if got != tc.want {
				t.Fatalf("v=%d, width=%d: got=%q, want=%q", tc.v, tc.width, got, tc.want)
			}
		}
	}
}

func TestWord(t *testing.T) {
	// header of event 0x123 with trigger time 0x1abcd.
	raw := []byte{0xa0, 0x02, 0x47, 0xab, 0xcd}
	w := ReadWord(raw)

	if got, want := w.String(), "1010000000000010010001111010101111001101"; got != want {
		t.Fatalf("invalid word:\ngot= %s\nwant=%s", got, want)
	}

	if !w.IsHeader() {
		t.Fatalf("word should be a header")
	}

	for _, tc := range []struct {
		lo, hi int
		want   uint64
	}{
		{0, 11, hdrMarker},
		{11, 23, 0x123},
		{23, 40, 0x1abcd},
		{0, 40, 0xa00247abcd},
		{39, 40, 1},
	} {
		if got := w.Bits(tc.lo, tc.hi); got != tc.want {
			t.Fatalf("bits[%d:%d]: got=0x%x, want=0x%x", tc.lo, tc.hi, got, tc.want)
		}
	}

	if ReadWord(make([]byte, WordSize)).IsHeader() {
		t.Fatalf("zero word should not be a header")
	}
}

func TestBitWriter(t *testing.T) {
	var bw bitWriter

	bw.write("a", 0x5, 3)
	if got, want := len(bw.buf), 0; got != want {
		t.Fatalf("partial byte should be held: got=%d bytes", got)
	}
	bw.write("b", 0x1, 2)
	bw.write("c", 0x7, 3)
	if got, want := bw.buf, []byte{0xaf}; !bytes.Equal(got, want) {
		t.Fatalf("invalid byte: got=%x, want=%x", got, want)
	}

	bw.write("d", 0x3, 4)
	if err := bw.close(); !errors.Is(err, ErrEncoding) {
		t.Fatalf("expected a dangling bits error: %+v", err)
	}

	bw.write("e", 0xabc, 12)
	if err := bw.close(); err != nil {
		t.Fatalf("could not close bit writer: %+v", err)
	}
	if got, want := bw.buf, []byte{0xaf, 0x3a, 0xbc}; !bytes.Equal(got, want) {
		t.Fatalf("invalid bytes: got=%x, want=%x", got, want)
	}

	bw.write("f", 0x10, 4)
	err := bw.close()
	if got, want := err.Error(), "tdc: f=16 does not fit in 4 bits: tdc: encoding error"; got != want {
		t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
	}

	bw.reset()
	if len(bw.buf) != 0 || bw.err != nil || bw.n != 0 {
		t.Fatalf("invalid reset bit writer")
	}
}
