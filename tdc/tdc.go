// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tdc holds functions to encode and decode the Phase-2 binary
// format produced by the TDC/CSM readout chain of MDT chambers.
//
// A Phase-2 stream is a sequence of 40-bit words.
// Each event is sent as a frame made of one header word, one
// (TDC header, TDC data, TDC trailer) triplet per hit and one trailer word.
// Frames carry no length field: the decoder locates header words and
// validates the distance between consecutive headers against the
// configured minimum and maximum number of hits.
package tdc // import "github.com/go-lpc/mdt/tdc"

import (
	"errors"
	"fmt"

	"golang.org/x/xerrors"
)

// Phase2 is the only supported data type.
const Phase2 = "Phase2"

var (
	ErrUnsupportedFormat = errors.New("tdc: unsupported data format")
	ErrEncoding          = errors.New("tdc: encoding error")
	ErrMalformedFrame    = errors.New("tdc: malformed frame")
	ErrGeometryLookup    = errors.New("tdc: geometry lookup failed")
)

// Config describes the data format and the frame validation bounds.
type Config struct {
	DataType string // data type, only "Phase2" is supported
	MinHits  int    // minimum number of hits in a valid frame
	MaxHits  int    // maximum number of hits in a valid frame
}

// Validate checks the configuration is usable by an encoder or a decoder.
func (cfg Config) Validate() error {
	if cfg.DataType != Phase2 {
		return xerrors.Errorf("tdc: invalid data type %q: %w", cfg.DataType, ErrUnsupportedFormat)
	}
	if cfg.MinHits < 0 || cfg.MaxHits < cfg.MinHits {
		return fmt.Errorf("tdc: invalid hit bounds (min=%d, max=%d)", cfg.MinHits, cfg.MaxHits)
	}
	return nil
}

// Geometry maps a (TDC, channel) pair to the position of a tube.
type Geometry interface {
	Lookup(tdc, channel uint8) (x, y float32, err error)
}

// Event is a detector event.
//
// Encoders only read the TDC, Channel, Time and Width fields of each hit.
type Event struct {
	ID      uint16 // event id
	Trigger uint32 // trigger time, in raw clock units
	Hits    []Hit
	Trailer Trailer
}

// Hit is one channel firing.
type Hit struct {
	CSM     uint8
	TDC     uint8
	Channel uint8
	Time    float32 // TDC time relative to the trigger, in ns
	Width   float32 // pulse width, in raw units
	X       float32 // local x coordinate of the tube center
	Y       float32 // local y coordinate of the tube center
}

// Trailer holds the content of an event trailer word.
type Trailer struct {
	Headers    uint8 // number of TDC headers
	Trailers   uint8 // number of TDC trailers
	ID         uint16
	HeaderErr  bool // TDC header count error
	TrailerErr bool // TDC trailer count error
	Hits       uint16
}

// Span is a byte range of a stream, starting at a header candidate.
type Span struct {
	Beg  int64
	End  int64
	Good bool // whether the span passed the frame validation
}

// Len returns the size of the span in bytes.
func (sp Span) Len() int64 { return sp.End - sp.Beg }

// Err returns a non-nil error wrapping ErrMalformedFrame for invalid spans.
func (sp Span) Err() error {
	if sp.Good {
		return nil
	}
	return xerrors.Errorf(
		"tdc: span [%d, %d) of %d bytes: %w",
		sp.Beg, sp.End, sp.Len(), ErrMalformedFrame,
	)
}

// HitError describes a hit rejected by the decoder.
type HitError struct {
	Offset  int64 // offset of the TDC data word in the stream
	Event   uint16
	TDC     uint8
	Channel uint8
	Err     error
}

func (e *HitError) Error() string {
	return fmt.Sprintf(
		"tdc: event %d: hit at offset %d (tdc=%d, channel=%d): %v",
		e.Event, e.Offset, e.TDC, e.Channel, e.Err,
	)
}

func (e *HitError) Unwrap() error { return e.Err }

// Report summarizes the decoding of a stream.
type Report struct {
	Words     int64      // number of complete words read
	Truncated int64      // number of trailing bytes not forming a complete word
	Headers   int        // number of header candidates
	Frames    int        // number of decoded frames
	Discarded []Span     // spans rejected by the frame validation
	Rejected  []HitError // hits rejected by the geometry lookup
}
