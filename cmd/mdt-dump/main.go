// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// mdt-dump decodes and displays MDT Phase-2 raw data files.
//
// Usage: mdt-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]
//
// Example:
//
//	$> mdt-dump -cfg run.yaml ./testdata/run.bin
//	=== file ./testdata/run.bin ===
//	words:        8 (truncated: 0 bytes)
//	frames:       1/1 (discarded: 0, rejected hits: 0)
//	=== event 0x02a ===
//	trigger:           0
//	TDC headers:       2
//	TDC trailers:      2
//	hits:              2 (hdr-err=false, trl-err=false)
//	  csm=0 tdc=03 ch=10 time=   120.312 width=190 x= 615.700 y=  71.779
//	  csm=0 tdc=07 ch=21 time=   340.625 width=205 x= 585.665 y= 371.834
package main // import "github.com/go-lpc/mdt/cmd/mdt-dump"

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/go-lpc/mdt"
	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/internal/rawio"
	"github.com/go-lpc/mdt/tdc"
	"golang.org/x/sync/errgroup"
)

var (
	msg = log.New(os.Stderr, "mdt-dump: ", 0)
)

func main() {
	xmain(os.Stdout, os.Args[1:])
}

func xmain(w io.Writer, args []string) {
	var (
		fset = flag.NewFlagSet("mdt-dump", flag.ExitOnError)

		cname = fset.String("cfg", "", "path to YAML configuration file")
		raw   = fset.Bool("raw", false, "display the bits of all the words")
		njobs = fset.Int("j", runtime.NumCPU(), "number of files decoded concurrently")
	)

	fset.Usage = func() {
		fmt.Printf(`mdt-dump decodes and displays MDT Phase-2 raw data files.

Usage: mdt-dump [OPTIONS] FILE1 [FILE2 [FILE3 ...]]

Example:

 $> mdt-dump -cfg run.yaml ./testdata/run.bin
 $> mdt-dump -raw ./testdata/run.bin.zst

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		msg.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() == 0 {
		fset.Usage()
		msg.Fatalf("missing path to input raw file")
	}

	cfg, err := loadConfig(*cname)
	if err != nil {
		msg.Fatalf("could not load configuration: %+v", err)
	}

	dec, err := mdt.NewDecoder(context.Background(), cfg)
	if err != nil {
		msg.Fatalf("could not create decoder: %+v", err)
	}

	err = run(w, dec, fset.Args(), *raw, *njobs)
	if err != nil {
		msg.Fatalf("could not dump files: %+v", err)
	}
}

func loadConfig(fname string) (config.Config, error) {
	if fname == "" {
		return config.Default(), nil
	}
	return config.Load(fname)
}

// run dumps all the files, decoded concurrently and displayed in order.
func run(w io.Writer, dec *tdc.Decoder, fnames []string, raw bool, njobs int) error {
	var (
		grp  errgroup.Group
		outs = make([]strings.Builder, len(fnames))
	)
	if njobs > 0 {
		grp.SetLimit(njobs)
	}

	for i := range fnames {
		i := i
		grp.Go(func() error {
			err := process(&outs[i], dec, fnames[i], raw)
			if err != nil {
				return fmt.Errorf("could not dump file %q: %w", fnames[i], err)
			}
			return nil
		})
	}

	err := grp.Wait()
	if err != nil {
		return err
	}

	for i := range outs {
		_, err = io.WriteString(w, outs[i].String())
		if err != nil {
			return fmt.Errorf("could not write output: %w", err)
		}
	}
	return nil
}

func process(w io.Writer, dec *tdc.Decoder, fname string, raw bool) error {
	wbuf := bufio.NewWriter(w)
	defer wbuf.Flush()

	evts, rep, err := dec.DecodeFile(fname)
	if err != nil {
		return fmt.Errorf("could not decode file: %w", err)
	}

	fmt.Fprintf(wbuf, "=== file %s ===\n", fname)
	fmt.Fprintf(wbuf, "words:     % 4d (truncated: %d bytes)\n", rep.Words, rep.Truncated)
	fmt.Fprintf(wbuf, "frames:    % 4d/%d (discarded: %d, rejected hits: %d)\n",
		rep.Frames, rep.Headers, len(rep.Discarded), len(rep.Rejected),
	)

	if raw {
		err = dumpWords(wbuf, fname)
		if err != nil {
			return fmt.Errorf("could not dump words: %w", err)
		}
	}

	for _, evt := range evts {
		trl := evt.Trailer
		fmt.Fprintf(wbuf, "=== event 0x%03x ===\n", evt.ID)
		fmt.Fprintf(wbuf, "trigger:      % 6d\n", evt.Trigger)
		fmt.Fprintf(wbuf, "TDC headers:  % 6d\n", trl.Headers)
		fmt.Fprintf(wbuf, "TDC trailers: % 6d\n", trl.Trailers)
		fmt.Fprintf(wbuf, "hits:         % 6d (hdr-err=%v, trl-err=%v)\n",
			trl.Hits, trl.HeaderErr, trl.TrailerErr,
		)
		for _, hit := range evt.Hits {
			fmt.Fprintf(wbuf,
				"  csm=%d tdc=%02d ch=%02d time=%10.3f width=%3.0f x=%8.3f y=%8.3f\n",
				hit.CSM, hit.TDC, hit.Channel, hit.Time, hit.Width, hit.X, hit.Y,
			)
		}
	}

	for _, span := range rep.Discarded {
		fmt.Fprintf(wbuf, "discarded: %v\n", span.Err())
	}
	for i := range rep.Rejected {
		fmt.Fprintf(wbuf, "rejected:  %v\n", &rep.Rejected[i])
	}

	return nil
}

func dumpWords(w io.Writer, fname string) error {
	f, err := rawio.Open(fname)
	if err != nil {
		return err
	}
	defer f.Close()

	var (
		size = f.Size()
		buf  = make([]byte, tdc.WordSize)
	)
	for off := int64(0); off+tdc.WordSize <= size; off += tdc.WordSize {
		_, err = f.ReadAt(buf, off)
		if err != nil {
			return fmt.Errorf("could not read word at offset %d: %w", off, err)
		}
		word := tdc.ReadWord(buf)
		mark := ""
		if word.IsHeader() {
			mark = " <- header"
		}
		fmt.Fprintf(w, "%08d %s 0x%010x%s\n", off, word, uint64(word), mark)
	}

	return f.Close()
}
