// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"context"
	"io"
	"log"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/go-lpc/mdt"
	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/internal/xcnv"
	"github.com/go-lpc/mdt/tdc"
	"go-hep.org/x/hep/lcio"
)

func TestLCIO2MDT(t *testing.T) {
	tmp, err := os.MkdirTemp("", "lcio2mdt-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	want := []tdc.Event{
		{
			ID:      42,
			Trigger: 27853,
			Hits: []tdc.Hit{
				{TDC: 3, Channel: 10, Time: 120.3125, Width: 190},
				{TDC: 7, Channel: 21, Time: 340.625, Width: 205},
			},
		},
		{
			ID:      4095,
			Trigger: 12,
			Hits:    []tdc.Hit{{TDC: 1, Channel: 2, Time: 50, Width: 100}},
		},
	}

	fname := filepath.Join(tmp, "mdt.lcio")
	w, err := lcio.Create(fname)
	if err != nil {
		t.Fatalf("could not create LCIO file: %+v", err)
	}
	defer w.Close()

	err = xcnv.MDT2LCIO(w, want, 1, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("could not write LCIO file: %+v", err)
	}

	err = w.Close()
	if err != nil {
		t.Fatalf("could not close LCIO file: %+v", err)
	}

	n, err := numEvents(fname)
	if err != nil {
		t.Fatalf("could not count events: %+v", err)
	}
	if got, want := n, int64(len(want)); got != want {
		t.Fatalf("invalid number of events: got=%d, want=%d", got, want)
	}

	oname := filepath.Join(tmp, "out.bin.lz4")
	err = process(oname, fname, 1)
	if err != nil {
		t.Fatalf("could not convert LCIO file: %+v", err)
	}

	dec, err := mdt.NewDecoder(context.Background(), config.Default())
	if err != nil {
		t.Fatalf("could not create decoder: %+v", err)
	}

	got, rep, err := dec.DecodeFile(oname)
	if err != nil {
		t.Fatalf("could not decode MDT file: %+v", err)
	}
	if got, want := rep.Frames, len(want); got != want {
		t.Fatalf("invalid number of frames: got=%d, want=%d", got, want)
	}

	for i := range got {
		evt := &got[i]
		if got, want := evt.ID, want[i].ID; got != want {
			t.Fatalf("invalid event id: got=%d, want=%d", got, want)
		}
		hits := make([]tdc.Hit, len(evt.Hits))
		for j, hit := range evt.Hits {
			hit.X = 0
			hit.Y = 0
			hits[j] = hit
		}
		if got, want := hits, want[i].Hits; !reflect.DeepEqual(got, want) {
			t.Fatalf("invalid hits for event %d:\ngot= %+v\nwant=%+v", evt.ID, got, want)
		}
	}

	err = process(oname, filepath.Join(tmp, "not-there.lcio"), 1)
	if err == nil {
		t.Fatalf("expected an error")
	}
}
