// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rawio provides access to raw data files.
//
// Files with a ".zst" or ".lz4" extension are transparently
// (de)compressed with Zstandard or LZ4.
// Uncompressed files are memory-mapped when read.
package rawio // import "github.com/go-lpc/mdt/internal/rawio"

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-lpc/mdt/internal/mmap"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

type codec int

const (
	none codec = iota
	zstdCodec
	lz4Codec
)

func codecFrom(fname string) codec {
	switch strings.ToLower(filepath.Ext(fname)) {
	case ".zst", ".zstd":
		return zstdCodec
	case ".lz4":
		return lz4Codec
	default:
		return none
	}
}

// Reader gives random access to the uncompressed content of a raw file.
type Reader struct {
	r io.ReaderAt
	n int64
	c io.Closer
}

// Open opens the named raw file for reading.
func Open(fname string) (*Reader, error) {
	if codecFrom(fname) == none {
		h, err := mmap.Open(fname)
		if err != nil {
			return nil, fmt.Errorf("rawio: could not open raw file: %w", err)
		}
		return &Reader{r: h, n: h.Size(), c: h}, nil
	}

	f, err := os.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("rawio: could not open raw file: %w", err)
	}
	defer f.Close()

	raw, err := decompress(f, codecFrom(fname))
	if err != nil {
		return nil, fmt.Errorf("rawio: could not decompress %q: %w", fname, err)
	}

	return &Reader{r: bytes.NewReader(raw), n: int64(len(raw))}, nil
}

func decompress(r io.Reader, c codec) ([]byte, error) {
	switch c {
	case zstdCodec:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("could not create zstd reader: %w", err)
		}
		defer dec.Close()
		return io.ReadAll(dec)
	case lz4Codec:
		return io.ReadAll(lz4.NewReader(r))
	default:
		return io.ReadAll(r)
	}
}

// ReadAt implements io.ReaderAt.
func (r *Reader) ReadAt(p []byte, off int64) (int, error) {
	return r.r.ReadAt(p, off)
}

// Size returns the size of the uncompressed content.
func (r *Reader) Size() int64 { return r.n }

// Close releases the resources held by the reader.
// Close is idempotent.
func (r *Reader) Close() error {
	if r.c == nil {
		return nil
	}
	c := r.c
	r.c = nil
	return c.Close()
}

// Writer writes raw data to a file, compressing it if needed.
type Writer struct {
	f *os.File
	w *bufio.Writer
	z io.WriteCloser // compressor, if any
}

// Create creates the named raw file, truncating it if it already exists.
func Create(fname string) (*Writer, error) {
	f, err := os.Create(fname)
	if err != nil {
		return nil, fmt.Errorf("rawio: could not create raw file: %w", err)
	}
	return newWriter(f, codecFrom(fname))
}

// Append opens the named uncompressed raw file for appending,
// creating it if needed.
func Append(fname string) (*Writer, error) {
	if codecFrom(fname) != none {
		return nil, fmt.Errorf("rawio: can not append to compressed file %q", fname)
	}
	f, err := os.OpenFile(fname, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("rawio: could not open raw file: %w", err)
	}
	return newWriter(f, none)
}

func newWriter(f *os.File, c codec) (*Writer, error) {
	w := &Writer{f: f}
	switch c {
	case zstdCodec:
		enc, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("rawio: could not create zstd writer: %w", err)
		}
		w.z = enc
		w.w = bufio.NewWriter(enc)
	case lz4Codec:
		enc := lz4.NewWriter(f)
		w.z = enc
		w.w = bufio.NewWriter(enc)
	default:
		w.w = bufio.NewWriter(f)
	}
	return w, nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.w.Write(p)
}

// Close flushes all pending data and closes the underlying file.
// Close is idempotent.
func (w *Writer) Close() error {
	if w.f == nil {
		return nil
	}
	f := w.f
	w.f = nil
	defer f.Close()

	err := w.w.Flush()
	if err != nil {
		return fmt.Errorf("rawio: could not flush raw file: %w", err)
	}

	if w.z != nil {
		err = w.z.Close()
		if err != nil {
			return fmt.Errorf("rawio: could not close compressor: %w", err)
		}
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("rawio: could not close raw file: %w", err)
	}
	return nil
}

var (
	_ io.ReaderAt    = (*Reader)(nil)
	_ io.Closer      = (*Reader)(nil)
	_ io.WriteCloser = (*Writer)(nil)
)
