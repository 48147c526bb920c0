// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-lpc/mdt/geom"
	"github.com/go-lpc/mdt/internal/rawio"
	"golang.org/x/exp/rand"
)

func TestNewDecoder(t *testing.T) {
	for _, tc := range []struct {
		name string
		cfg  Config
		geo  Geometry
		want string
	}{
		{
			name: "phase1",
			cfg:  Config{DataType: "Phase1", MinHits: 1, MaxHits: 2},
			geo:  newChamber(t),
			want: `tdc: could not create decoder: tdc: invalid data type "Phase1": tdc: unsupported data format`,
		},
		{
			name: "hit-bounds",
			cfg:  Config{DataType: Phase2, MinHits: 3, MaxHits: 2},
			geo:  newChamber(t),
			want: "tdc: could not create decoder: tdc: invalid hit bounds (min=3, max=2)",
		},
		{
			name: "nil-geometry",
			cfg:  phase2,
			want: "tdc: could not create decoder: nil geometry",
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewDecoder(tc.cfg, tc.geo)
			if err == nil {
				t.Fatalf("expected an error")
			}
			if got, want := err.Error(), tc.want; got != want {
				t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
			}
		})
	}
}

func TestDecodeBounds(t *testing.T) {
	var (
		cfg = Config{DataType: Phase2, MinHits: 2, MaxHits: 4}
		dec = newDecoder(t, cfg)
		rnd = rand.New(rand.NewSource(1))
	)

	for _, tc := range []struct {
		name string
		hits []int
		want []int // number of hits of each decoded event
		disc []int // number of hits of each discarded frame
	}{
		{
			name: "interior",
			hits: []int{1, 2, 3, 4, 5, 2},
			want: []int{2, 3, 4, 2},
			disc: []int{1, 5},
		},
		{
			name: "tail-max-hits",
			hits: []int{2, 4},
			want: []int{2},
			disc: []int{4},
		},
		{
			name: "tail-min-hits",
			hits: []int{2, 2},
			want: []int{2, 2},
		},
		{
			name: "single-frame",
			hits: []int{3},
			want: []int{3},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			evts := make([]Event, len(tc.hits))
			for i, n := range tc.hits {
				evts[i] = mkEvent(n)
			}
			raw := encode(t, rnd, evts...)

			got, rep := decode(t, dec, raw)
			if got, want := len(got), len(tc.want); got != want {
				t.Fatalf("invalid number of events: got=%d, want=%d", got, want)
			}
			for i, evt := range got {
				if got, want := len(evt.Hits), tc.want[i]; got != want {
					t.Fatalf("evt[%d]: invalid number of hits: got=%d, want=%d", i, got, want)
				}
			}

			if got, want := len(rep.Discarded), len(tc.disc); got != want {
				t.Fatalf("invalid number of discarded spans: got=%d, want=%d", got, want)
			}
			for i, sp := range rep.Discarded {
				if got, want := sp.Len(), int64(FrameSize(tc.disc[i])); got != want {
					t.Fatalf("span[%d]: invalid length: got=%d, want=%d", i, got, want)
				}
				if !errors.Is(sp.Err(), ErrMalformedFrame) {
					t.Fatalf("span[%d]: invalid error: %+v", i, sp.Err())
				}
			}
			if got, want := rep.Headers, len(tc.hits); got != want {
				t.Fatalf("invalid number of headers: got=%d, want=%d", got, want)
			}
			if got, want := rep.Frames, len(tc.want); got != want {
				t.Fatalf("invalid number of frames: got=%d, want=%d", got, want)
			}
		})
	}
}

func TestDecodeNoise(t *testing.T) {
	var (
		cfg   = Config{DataType: Phase2, MinHits: 2, MaxHits: 3}
		dec   = newDecoder(t, cfg)
		rnd   = rand.New(rand.NewSource(1234))
		noise = bytes.Repeat([]byte{0x5a}, 10)
	)

	var raw []byte
	raw = append(raw, noise...) // noise before the first header.
	raw = append(raw, encode(t, rnd, mkEvent(2))...)
	raw = append(raw, noise...) // noise within the frame bounds.
	raw = append(raw, encode(t, rnd, mkEvent(2))...)
	raw = append(raw, noise...) // noise out of the frame bounds.
	raw = append(raw, noise...)
	raw = append(raw, encode(t, rnd, mkEvent(3), mkEvent(2))...)

	got, rep := decode(t, dec, raw)
	if got, want := rep.Headers, 4; got != want {
		t.Fatalf("invalid number of headers: got=%d, want=%d", got, want)
	}
	if got, want := rep.Discarded, []Span{{Beg: 60, End: 120}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("invalid discarded spans:\ngot= %+v\nwant=%+v", got, want)
	}

	if got, want := len(got), 3; got != want {
		t.Fatalf("invalid number of events: got=%d, want=%d", got, want)
	}
	for i, n := range []int{2, 3, 2} {
		evt := got[i]
		if got, want := len(evt.Hits), n; got != want {
			t.Fatalf("evt[%d]: invalid number of hits: got=%d, want=%d", i, got, want)
		}
		if got, want := evt.Trailer.Hits, uint16(n); got != want {
			t.Fatalf("evt[%d]: invalid trailer hit count: got=%d, want=%d", i, got, want)
		}
	}
}

func TestDecodeTruncated(t *testing.T) {
	var (
		dec = newDecoder(t, phase2)
		raw = encode(t, nil, mkEvent(2), mkEvent(1))
	)
	raw = append(raw, 0xa0, 0x00, 0x00)

	got, rep := decode(t, dec, raw)
	if got, want := len(got), 2; got != want {
		t.Fatalf("invalid number of events: got=%d, want=%d", got, want)
	}
	if got, want := rep.Truncated, int64(3); got != want {
		t.Fatalf("invalid truncated bytes: got=%d, want=%d", got, want)
	}
	if got, want := rep.Words, int64(FrameSize(2)+FrameSize(1))/WordSize; got != want {
		t.Fatalf("invalid number of words: got=%d, want=%d", got, want)
	}
}

func TestDecodeEmpty(t *testing.T) {
	dec := newDecoder(t, phase2)
	for _, raw := range [][]byte{
		nil,
		{0x5a, 0x5a},
		make([]byte, 10*WordSize),
	} {
		got, rep := decode(t, dec, raw)
		if len(got) != 0 {
			t.Fatalf("invalid number of events: got=%d, want=0", len(got))
		}
		if rep.Headers != 0 || rep.Frames != 0 {
			t.Fatalf("invalid report: %+v", rep)
		}
	}
}

func TestDecodeGeometry(t *testing.T) {
	var (
		dec = newDecoder(t, phase2)
		evt = Event{
			Hits: []Hit{
				{TDC: 1, Channel: 2, Time: 10},
				{TDC: 20, Channel: 2, Time: 20},
				{TDC: 2, Channel: 30, Time: 30},
				{TDC: 3, Channel: 4, Time: 40},
			},
		}
		raw = encode(t, nil, evt)
	)

	got, rep := decode(t, dec, raw)
	if got, want := len(got), 1; got != want {
		t.Fatalf("invalid number of events: got=%d, want=%d", got, want)
	}
	if got, want := len(got[0].Hits), 2; got != want {
		t.Fatalf("invalid number of hits: got=%d, want=%d", got, want)
	}
	if got, want := got[0].Trailer.Hits, uint16(4); got != want {
		t.Fatalf("invalid trailer hit count: got=%d, want=%d", got, want)
	}

	if got, want := len(rep.Rejected), 2; got != want {
		t.Fatalf("invalid number of rejected hits: got=%d, want=%d", got, want)
	}
	for i, tc := range []struct {
		off int64
		tdc uint8
		ch  uint8
	}{
		{off: 5 + 3*5 + 5, tdc: 20, ch: 2},
		{off: 5 + 2*3*5 + 5, tdc: 2, ch: 30},
	} {
		herr := rep.Rejected[i]
		if herr.Offset != tc.off || herr.TDC != tc.tdc || herr.Channel != tc.ch {
			t.Fatalf("rejected[%d]: got=%+v", i, herr)
		}
		if !errors.Is(&herr, ErrGeometryLookup) {
			t.Fatalf("rejected[%d]: invalid error: %+v", i, herr.Err)
		}
		if !errors.Is(&herr, geom.ErrNotFound) {
			t.Fatalf("rejected[%d]: invalid error: %+v", i, herr.Err)
		}
	}

	if got, want := rep.Rejected[0].Error(), "tdc: event 0: hit at offset 25 (tdc=20, channel=2): tdc: geometry lookup failed: geom: no tube for (tdc=20, channel=2): geom: tube not found"; got != want {
		t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
	}
}

func TestDecodeReadError(t *testing.T) {
	var (
		dec = newDecoder(t, phase2)
		raw = encode(t, nil, mkEvent(2))
	)

	_, _, err := dec.Decode(&failingReaderAt{r: bytes.NewReader(raw), n: 10}, int64(len(raw)))
	if !errors.Is(err, io.ErrClosedPipe) {
		t.Fatalf("invalid error: %+v", err)
	}
}

func TestDecodeFile(t *testing.T) {
	tmp, err := os.MkdirTemp("", "mdt-tdc-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	var (
		dec  = newDecoder(t, phase2)
		evts = []Event{mkEvent(3), mkEvent(1), mkEvent(5)}
		raw  = encode(t, rand.New(rand.NewSource(2)), evts...)
	)

	want, _ := decode(t, dec, raw)

	for _, name := range []string{"run.bin", "run.zst", "run.lz4"} {
		t.Run(name, func(t *testing.T) {
			fname := filepath.Join(tmp, name)
			w, err := rawio.Create(fname)
			if err != nil {
				t.Fatalf("could not create file: %+v", err)
			}
			_, err = w.Write(raw)
			if err != nil {
				t.Fatalf("could not write file: %+v", err)
			}
			err = w.Close()
			if err != nil {
				t.Fatalf("could not close file: %+v", err)
			}

			got, rep, err := dec.DecodeFile(fname)
			if err != nil {
				t.Fatalf("could not decode file: %+v", err)
			}
			if rep.Frames != len(evts) {
				t.Fatalf("invalid report: %+v", rep)
			}
			if !reflect.DeepEqual(got, want) {
				t.Fatalf("invalid events:\ngot= %+v\nwant=%+v", got, want)
			}
		})
	}

	_, _, err = dec.DecodeFile(filepath.Join(tmp, "not-there.bin"))
	if err == nil {
		t.Fatalf("expected an error")
	}
}

type failingReaderAt struct {
	r io.ReaderAt
	n int64
}

func (r *failingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off+int64(len(p)) > r.n {
		return 0, io.ErrClosedPipe
	}
	return r.r.ReadAt(p, off)
}
