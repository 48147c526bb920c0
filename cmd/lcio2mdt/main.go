// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command lcio2mdt converts a LCIO file into an MDT Phase-2 raw data file.
//
// Event identifiers and hit times relative to the trigger are preserved.
// Absolute trigger times and the tube positions are not.
package main // import "github.com/go-lpc/mdt/cmd/lcio2mdt"

import (
	"flag"
	"fmt"
	"io"
	"log"

	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/internal/rawio"
	"github.com/go-lpc/mdt/internal/xcnv"
	"github.com/go-lpc/mdt/tdc"
	"go-hep.org/x/hep/lcio"
)

func main() {
	log.SetPrefix("lcio2mdt: ")
	log.SetFlags(0)

	var (
		oname = flag.String("o", "out.bin", "path to output MDT raw file")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: lcio2mdt [OPTIONS] file.lcio

ex:
 $> lcio2mdt -o out.bin ./input.lcio
 $> lcio2mdt -o out.bin.zst ./input.lcio

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		log.Fatalf("missing input LCIO file")
	}

	if *oname == "" {
		flag.Usage()
		log.Fatalf("invalid output MDT file name")
	}

	n, err := numEvents(flag.Arg(0))
	if err != nil {
		log.Fatalf("could not assess number of events: %+v", err)
	}
	log.Printf("input:  %s", flag.Arg(0))
	log.Printf("events: %d", n)

	err = process(*oname, flag.Arg(0), int(n/10)+1)
	if err != nil {
		log.Fatalf("could not convert LCIO file: %+v", err)
	}
}

func numEvents(fname string) (int64, error) {
	r, err := lcio.Open(fname)
	if err != nil {
		return 0, fmt.Errorf("could not open %q: %w", fname, err)
	}
	defer r.Close()

	var n int64
	for r.Next() {
		n++
	}

	err = r.Err()
	if err != nil && err != io.EOF {
		return 0, fmt.Errorf("could not assess number of events in %q: %w", fname, err)
	}

	return n, nil
}

func process(oname, fname string, freq int) error {
	r, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	evts, err := xcnv.LCIO2MDT(r, freq, log.Default())
	if err != nil {
		return fmt.Errorf("could not read MDT events: %w", err)
	}

	f, err := rawio.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output MDT file: %w", err)
	}
	defer f.Close()

	enc, err := tdc.NewEncoder(f, config.Default().Codec(), nil)
	if err != nil {
		return fmt.Errorf("could not create MDT encoder: %w", err)
	}

	for i := range evts {
		evt := &evts[i]
		err = enc.Encode(evt, int(evt.ID))
		if err != nil {
			return fmt.Errorf("could not encode MDT event %d: %w", i, err)
		}
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("could not close output MDT file: %w", err)
	}
	return nil
}
