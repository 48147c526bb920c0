// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"errors"
	"io"

	"golang.org/x/xerrors"
)

// Scanner locates event header candidates in a Phase-2 stream.
//
// The stream is read word by word from its beginning.
// A trailing partial word is silently ignored.
type Scanner struct {
	r   io.Reader
	buf []byte
	off int64 // offset of the next word
	cur int64 // offset of the current header
	hdr Word  // current header
	err error
	eof bool
}

// NewScanner returns a new Scanner reading from r.
func NewScanner(r io.Reader) *Scanner {
	return &Scanner{
		r:   r,
		buf: make([]byte, WordSize),
		cur: -1,
	}
}

// Scan advances the scanner to the next header candidate.
// Scan returns false once the stream is exhausted or an error occurred.
func (sc *Scanner) Scan() bool {
	for !sc.eof {
		_, err := io.ReadFull(sc.r, sc.buf)
		if err != nil {
			sc.eof = true
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				sc.err = xerrors.Errorf("tdc: could not read word at offset %d: %w", sc.off, err)
			}
			break
		}
		off := sc.off
		sc.off += WordSize
		if w := ReadWord(sc.buf); w.IsHeader() {
			sc.cur = off
			sc.hdr = w
			return true
		}
	}
	return false
}

// Offset returns the byte offset of the current header candidate.
func (sc *Scanner) Offset() int64 { return sc.cur }

// Word returns the current header candidate.
func (sc *Scanner) Word() Word { return sc.hdr }

// Err returns the first non-EOF error encountered while scanning.
func (sc *Scanner) Err() error { return sc.err }

// FindHeaders returns the ordered byte offsets of all the header candidates of r.
func FindHeaders(r io.Reader) ([]int64, error) {
	var (
		sc   = NewScanner(r)
		hdrs []int64
	)
	for sc.Scan() {
		hdrs = append(hdrs, sc.Offset())
	}
	return hdrs, sc.Err()
}
