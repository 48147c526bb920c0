// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdo

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/gen"
	"github.com/go-lpc/mdt/tdc"
)

// blind yields an event with hits every n tracks, or never if n is zero.
type blind struct {
	n      int
	tracks int
}

func (b *blind) Generate(n int) ([]tdc.Event, gen.Stats) {
	stats := gen.Stats{Tracks: n}
	var evts []tdc.Event
	for i := 0; i < n; i++ {
		b.tracks++
		if b.n == 0 || b.tracks%b.n != 0 {
			stats.Missed++
			continue
		}
		evts = append(evts, tdc.Event{Hits: []tdc.Hit{{TDC: 1, Channel: 2, Time: 10, Width: 20}}})
	}
	return evts, stats
}

func newTestStream(t *testing.T, src source) *stream {
	t.Helper()
	buf := new(bytes.Buffer)
	enc, err := tdc.NewEncoder(buf, config.Default().Codec(), nil)
	if err != nil {
		t.Fatalf("could not create encoder: %+v", err)
	}
	return &stream{src: src, enc: enc, buf: buf}
}

func TestStreamNoHits(t *testing.T) {
	src := &blind{}
	str := newTestStream(t, src)

	raw, err := str.next(2)
	if err == nil {
		t.Fatalf("expected an error")
	}
	if got, want := err.Error(), fmt.Sprintf("rdo: no event with hits after %d tracks", maxMisses); got != want {
		t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
	}
	if raw != nil {
		t.Fatalf("unexpected frames: %d bytes", len(raw))
	}
	if got, want := src.tracks, maxMisses; got != want {
		t.Fatalf("invalid number of tracks: got=%d, want=%d", got, want)
	}
	if got, want := str.stats.Missed, maxMisses; got != want {
		t.Fatalf("invalid number of missed tracks: got=%d, want=%d", got, want)
	}
}

func TestStreamSparseHits(t *testing.T) {
	// misses are only counted between two events with hits.
	src := &blind{n: maxMisses}
	str := newTestStream(t, src)

	raw, err := str.next(3)
	if err != nil {
		t.Fatalf("could not produce frames: %+v", err)
	}
	if got, want := len(raw), 3*tdc.FrameSize(1); got != want {
		t.Fatalf("invalid batch size: got=%d, want=%d", got, want)
	}
	if got, want := str.evid, 3; got != want {
		t.Fatalf("invalid next event id: got=%d, want=%d", got, want)
	}
	if got, want := src.tracks, 3*maxMisses; got != want {
		t.Fatalf("invalid number of tracks: got=%d, want=%d", got, want)
	}
}
