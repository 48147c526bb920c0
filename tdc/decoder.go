// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"bufio"
	"fmt"
	"io"

	"github.com/go-lpc/mdt/internal/rawio"
	"golang.org/x/xerrors"
)

// Decoder reconstructs events from Phase-2 streams.
//
// Decoding a stream takes two passes: the first one locates all the
// header candidates, the second one re-reads the stream word by word,
// discards the spans that failed the validation and parses the others.
type Decoder struct {
	geo Geometry
	val Validator
}

// NewDecoder creates a decoder using geo to locate the hit tubes.
func NewDecoder(cfg Config, geo Geometry) (*Decoder, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("tdc: could not create decoder: %w", err)
	}
	if geo == nil {
		return nil, fmt.Errorf("tdc: could not create decoder: nil geometry")
	}
	return &Decoder{
		geo: geo,
		val: Validator{MinHits: cfg.MinHits, MaxHits: cfg.MaxHits},
	}, nil
}

// DecodeFile decodes all the events of the named file.
func (dec *Decoder) DecodeFile(fname string) ([]Event, Report, error) {
	f, err := rawio.Open(fname)
	if err != nil {
		return nil, Report{}, fmt.Errorf("tdc: could not open %q: %w", fname, err)
	}
	defer f.Close()

	evts, rep, err := dec.Decode(f, f.Size())
	if err != nil {
		return evts, rep, fmt.Errorf("tdc: could not decode %q: %w", fname, err)
	}

	err = f.Close()
	if err != nil {
		return evts, rep, fmt.Errorf("tdc: could not close %q: %w", fname, err)
	}
	return evts, rep, nil
}

// Spans returns the validated partition of the size bytes of r.
// Bytes before the first header candidate are not part of any span.
func (dec *Decoder) Spans(r io.ReaderAt, size int64) ([]Span, error) {
	hdrs, err := FindHeaders(io.NewSectionReader(r, 0, size))
	if err != nil {
		return nil, fmt.Errorf("tdc: could not scan for headers: %w", err)
	}
	return dec.val.Spans(hdrs, size), nil
}

// Decode decodes all the events held in the size bytes of r.
// Spans failing the validation are reported, not returned as errors.
func (dec *Decoder) Decode(r io.ReaderAt, size int64) ([]Event, Report, error) {
	rep := Report{
		Words:     size / WordSize,
		Truncated: size % WordSize,
	}

	spans, err := dec.Spans(r, size)
	if err != nil {
		return nil, rep, err
	}
	rep.Headers = len(spans)

	var (
		src   = bufio.NewReader(io.NewSectionReader(r, 0, size))
		buf   = make([]byte, WordSize)
		evts  = make([]Event, 0, len(spans))
		frame []Word
		cur   = -1 // index of the span being accumulated
	)

	flush := func() {
		if cur < 0 {
			return
		}
		span := spans[cur]
		if !span.Good {
			rep.Discarded = append(rep.Discarded, span)
			return
		}
		evts = append(evts, dec.parse(span.Beg, frame, &rep))
		rep.Frames++
	}

	for off := int64(0); off+WordSize <= size; off += WordSize {
		_, err := io.ReadFull(src, buf)
		if err != nil {
			return evts, rep, xerrors.Errorf("tdc: could not read word at offset %d: %w", off, err)
		}
		if next := cur + 1; next < len(spans) && off == spans[next].Beg {
			flush()
			frame = frame[:0]
			cur = next
		}
		if cur < 0 {
			// noise before the first header.
			continue
		}
		frame = append(frame, ReadWord(buf))
	}
	flush()

	return evts, rep, nil
}

// parse converts the words of a validated frame starting at offset beg
// into an event.
func (dec *Decoder) parse(beg int64, frame []Word, rep *Report) Event {
	var (
		hdr = frame[0]
		evt = Event{
			ID:      uint16(hdr.Bits(11, 23)),
			Trigger: uint32(hdr.Bits(23, 40)),
		}
	)

	next := 1 // index of the word following the last triplet
	for i := 1; i+2 < len(frame); {
		if !frame[i].isTDCHeader() || !frame[i+2].isTDCTrailer() {
			i++
			continue
		}
		hit, err := dec.hit(frame[i+1], evt.Trigger)
		if err != nil {
			rep.Rejected = append(rep.Rejected, HitError{
				Offset:  beg + int64(i+1)*WordSize,
				Event:   evt.ID,
				TDC:     hit.TDC,
				Channel: hit.Channel,
				Err:     err,
			})
		} else {
			evt.Hits = append(evt.Hits, hit)
		}
		i += hitWords
		next = i
	}

	if next < len(frame) && frame[next].isTrailer() {
		trl := frame[next]
		evt.Trailer = Trailer{
			Headers:    uint8(trl.Bits(4, 8)),
			Trailers:   uint8(trl.Bits(8, 12)),
			ID:         uint16(trl.Bits(12, 24)),
			HeaderErr:  trl.Bits(24, 25) == 1,
			TrailerErr: trl.Bits(25, 26) == 1,
			Hits:       uint16(trl.Bits(30, 40)),
		}
	}

	return evt
}

func (dec *Decoder) hit(w Word, trig uint32) (Hit, error) {
	var (
		edge = w.Bits(15, 32)
		hit  = Hit{
			CSM:     uint8(w.Bits(0, 3)),
			TDC:     uint8(w.Bits(3, 8)),
			Channel: uint8(w.Bits(8, 13)),
			Width:   float32(w.Bits(32, 40)),
		}
		ticks = (edge - uint64(trig)) & edgeMask
	)
	hit.Time = float32(float64(ticks) * 25 / 32)

	x, y, err := dec.geo.Lookup(hit.TDC, hit.Channel)
	if err != nil {
		return hit, fmt.Errorf("%w: %w", ErrGeometryLookup, err)
	}
	hit.X = x
	hit.Y = y
	return hit, nil
}
