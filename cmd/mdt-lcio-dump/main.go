// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mdt-lcio-dump displays the MDT events stored in LCIO files.
//
// Usage: mdt-lcio-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> mdt-lcio-dump ./testdata/mdt_063.lcio
//	=== run 63 (MDT) ===
//	=== event 0x02a ===
//	trigger:       27853
//	hits:              2
//	  csm=0 tdc=03 ch=10 time=   120.312 width=190 x= 615.700 y=  71.779
//	  csm=0 tdc=07 ch=21 time=   340.625 width=205 x= 585.665 y= 371.834
//	[...]
package main // import "github.com/go-lpc/mdt/cmd/mdt-lcio-dump"

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-lpc/mdt/internal/xcnv"
	"go-hep.org/x/hep/lcio"
)

const usage = `mdt-lcio-dump displays the MDT events stored in LCIO files.

Usage: mdt-lcio-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> mdt-lcio-dump ./testdata/mdt_063.lcio
 $> mdt-lcio-dump -n 10 ./testdata/mdt_063.lcio

`

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	log.SetPrefix("mdt-lcio-dump: ")
	log.SetFlags(0)

	var (
		fset = flag.NewFlagSet("mdt-lcio-dump", flag.ExitOnError)

		nmax = fset.Int("n", -1, "maximum number of events to display per file")
	)

	fset.Usage = func() {
		fmt.Print(usage)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		log.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		log.Fatalf("missing path to input LCIO file")
	}

	for _, fname := range fset.Args() {
		err := process(w, fname, *nmax)
		if err != nil {
			log.Fatalf("could not dump file %q: %+v", fname, err)
		}
	}
}

func process(w io.Writer, fname string, nmax int) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	r, err := lcio.Open(fname)
	if err != nil {
		return fmt.Errorf("could not open LCIO file: %w", err)
	}
	defer r.Close()

	msg := log.New(io.Discard, "", 0)
	evts, err := xcnv.LCIO2MDT(r, 100, msg)
	if err != nil {
		return fmt.Errorf("could not read MDT events: %w", err)
	}

	rhdr := r.RunHeader()
	fmt.Fprintf(wbuf, "=== run %d (%s) ===\n", rhdr.RunNumber, rhdr.Detector)

	if nmax >= 0 && nmax < len(evts) {
		evts = evts[:nmax]
	}

	for _, evt := range evts {
		fmt.Fprintf(wbuf, "=== event 0x%03x ===\n", evt.ID)
		fmt.Fprintf(wbuf, "trigger:  % 10d\n", evt.Trigger)
		fmt.Fprintf(wbuf, "hits:     % 10d\n", len(evt.Hits))
		for _, hit := range evt.Hits {
			fmt.Fprintf(wbuf,
				"  csm=%d tdc=%02d ch=%02d time=%10.3f width=%3.0f x=%8.3f y=%8.3f\n",
				hit.CSM, hit.TDC, hit.Channel, hit.Time, hit.Width, hit.X, hit.Y,
			)
		}
	}

	return nil
}
