// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"fmt"
	"io"
	"math"

	"golang.org/x/exp/rand"
	"golang.org/x/xerrors"
)

// Encoder writes Phase-2 frames to an output stream.
//
// Each frame is staged in memory and only written once all of its
// fields have been validated: a frame that fails to encode leaves the
// output stream untouched.
type Encoder struct {
	w   io.Writer
	rnd *rand.Rand
	bw  bitWriter
}

// NewEncoder returns a new Encoder that writes to w.
//
// rnd is used to fill the fields the decoder never reads (trigger time,
// TDC event id, BCID, status flags).
// A nil rnd encodes all of them as zero.
func NewEncoder(w io.Writer, cfg Config, rnd *rand.Rand) (*Encoder, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("tdc: could not create encoder: %w", err)
	}
	return &Encoder{
		w:   w,
		rnd: rnd,
		bw:  bitWriter{buf: make([]byte, 0, FrameSize(MaxHits))},
	}, nil
}

func (enc *Encoder) bits(n int) uint64 {
	if enc.rnd == nil {
		return 0
	}
	return enc.rnd.Uint64() & (1<<n - 1)
}

func (enc *Encoder) flag() bool {
	return enc.bits(1) == 1
}

// Encode writes the hits of evt as one frame with the provided event id.
func (enc *Encoder) Encode(evt *Event, id int) error {
	if evt == nil {
		return nil
	}
	if id < 0 {
		return xerrors.Errorf("tdc: invalid negative event id %d: %w", id, ErrEncoding)
	}

	var (
		bw   = &enc.bw
		n    = uint64(len(evt.Hits))
		evid = uint64(id)
		trig = enc.bits(edgeBits)
	)
	bw.reset()

	bw.write("header marker", hdrMarker, 11)
	bw.write("event id", evid, 12)
	bw.write("trigger time", trig, edgeBits)
	if bw.err != nil {
		return fmt.Errorf("tdc: could not encode header of event %d: %w", id, bw.err)
	}

	for i := range evt.Hits {
		enc.writeHit(&evt.Hits[i], trig)
		if bw.err != nil {
			return fmt.Errorf("tdc: could not encode hit %d of event %d: %w", i, id, bw.err)
		}
	}

	bw.write("trailer marker", trlMarker, 4)
	bw.write("TDC header count", n, 4)
	bw.write("TDC trailer count", n, 4)
	bw.write("event id", evid, 12)
	bw.writeBool("header count error", enc.flag())
	bw.writeBool("trailer count error", enc.flag())
	bw.write("zeros", 0, 4)
	bw.write("hit count", n, 10)

	err := bw.close()
	if err != nil {
		return fmt.Errorf("tdc: could not encode event %d: %w", id, err)
	}

	_, err = enc.w.Write(bw.buf)
	if err != nil {
		return fmt.Errorf("tdc: could not write frame of event %d: %w", id, err)
	}
	return nil
}

func (enc *Encoder) writeHit(hit *Hit, trig uint64) {
	bw := &enc.bw

	edge, err := leadingEdge(hit.Time, trig)
	if err != nil {
		bw.err = err
		return
	}
	width := float64(hit.Width)
	if !(width >= 0) { // also catches NaN.
		bw.err = xerrors.Errorf("tdc: invalid pulse width %v: %w", hit.Width, ErrEncoding)
		return
	}

	if hit.CSM != csmMarker {
		bw.err = xerrors.Errorf("tdc: invalid CSM id %d (want=%d): %w", hit.CSM, csmMarker, ErrEncoding)
		return
	}

	var (
		csm = uint64(csmMarker)
		tdc = uint64(hit.TDC)
	)

	// TDC header
	bw.write("CSM id", csm, 3)
	bw.write("TDC id", tdc, 5)
	bw.write("TDC header marker", thdMarker, 8)
	bw.write("TDC event id", enc.bits(12), 12)
	bw.write("trigger BCID", enc.bits(12), 12)

	// TDC data
	bw.write("CSM id", csm, 3)
	bw.write("TDC id", tdc, 5)
	bw.write("channel", uint64(hit.Channel), 5)
	bw.write("mode", tdcMode, 2)
	bw.write("leading edge", edge, edgeBits)
	bw.write("pulse width", uint64(width), 8)

	// TDC trailer
	bw.write("CSM id", csm, 3)
	bw.write("TDC id", tdc, 5)
	bw.write("TDC trailer marker", ttrMarker, 20)
	bw.writeBool("trigger lost", enc.flag())
	bw.writeBool("timeout", enc.flag())
	bw.write("TDC hit count", enc.bits(10), 10)
}

// leadingEdge converts a hit time (in ns, relative to the trigger) into
// the raw leading edge clock counter, which rolls over every 2^17 ticks.
func leadingEdge(t float32, trig uint64) (uint64, error) {
	v := float64(t)
	if !(v >= 0) {
		return 0, xerrors.Errorf("tdc: invalid hit time %v: %w", t, ErrEncoding)
	}
	raw := math.Ceil(v * 32 / 25)
	if raw > edgeMask {
		return 0, xerrors.Errorf("tdc: hit time %v ns overflows %d bits: %w", t, edgeBits, ErrEncoding)
	}
	return (trig + uint64(raw)) & edgeMask, nil
}

// EncodeAll writes all events, in order.
// The event id of each frame is its index in evts, modulo 2^12.
func (enc *Encoder) EncodeAll(evts []Event) error {
	for i := range evts {
		err := enc.Encode(&evts[i], i%(MaxEventID+1))
		if err != nil {
			return err
		}
	}
	return nil
}
