// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command mdt-split copies the validated frames of a raw MDT Phase-2
// capture into chunked files of at most n frames each.
//
// Malformed spans are dropped.
//
// The last frame of each output file is validated as a tail frame when
// that file is decoded again: a chunk ending with a frame of MaxHits hits
// loses that frame on re-decoding. Pick n so that such frames are not
// chunk-final, or keep the original capture.
package main // import "github.com/go-lpc/mdt/cmd/mdt-split"

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-lpc/mdt"
	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/internal/rawio"
	"github.com/go-lpc/mdt/tdc"
)

var (
	msg = log.New(os.Stdout, "mdt-split: ", 0)
)

func main() {
	xmain(os.Args[1:])
}

func xmain(args []string) {
	var (
		fset = flag.NewFlagSet("mdt-split", flag.ExitOnError)

		oname = fset.String("o", "out.bin", "path to output raw file")
		cname = fset.String("cfg", "", "path to YAML configuration file")
		nmax  = fset.Int("n", 1000, "maximum number of frames per output file")
	)

	fset.Usage = func() {
		fmt.Printf(`Usage: mdt-split [OPTIONS] file.bin

ex:
 $> mdt-split -o out.bin -n 100 ./input.bin
 $> mdt-split -o out.bin.zst ./input.bin.lz4

note:
 the last frame of each output file is decoded as a tail frame:
 a chunk ending with a frame of MaxHits hits drops it on re-decoding.

options:
`)
		fset.PrintDefaults()
	}

	err := fset.Parse(args)
	if err != nil {
		msg.Fatalf("could not parse input arguments: %+v", err)
	}

	if fset.NArg() != 1 {
		fset.Usage()
		msg.Fatalf("missing input raw file")
	}

	if *oname == "" {
		fset.Usage()
		msg.Fatalf("invalid output raw file")
	}

	if *nmax <= 0 {
		fset.Usage()
		msg.Fatalf("invalid number of frames per file (n=%d)", *nmax)
	}

	cfg := config.Default()
	if *cname != "" {
		cfg, err = config.Load(*cname)
		if err != nil {
			msg.Fatalf("could not load configuration: %+v", err)
		}
	}

	dec, err := mdt.NewDecoder(context.Background(), cfg)
	if err != nil {
		msg.Fatalf("could not create decoder: %+v", err)
	}

	_, err = process(*oname, *nmax, dec, fset.Arg(0))
	if err != nil {
		msg.Fatalf("could not split raw file %q: %+v", fset.Arg(0), err)
	}
}

// process splits fname and returns the names of the created files.
func process(oname string, nmax int, dec *tdc.Decoder, fname string) ([]string, error) {
	f, err := rawio.Open(fname)
	if err != nil {
		return nil, fmt.Errorf("could not open raw file: %w", err)
	}
	defer f.Close()

	spans, err := dec.Spans(f, f.Size())
	if err != nil {
		return nil, fmt.Errorf("could not validate frames: %w", err)
	}

	var (
		onames []string
		out    *rawio.Writer
		nfrms  = 0
		ndrops = 0
		buf    []byte
	)
	defer func() {
		if out != nil {
			_ = out.Close()
		}
	}()

	for _, span := range spans {
		if !span.Good {
			ndrops++
			continue
		}

		if out == nil || nfrms == nmax {
			if out != nil {
				err = out.Close()
				if err != nil {
					return onames, fmt.Errorf("could not close output file: %w", err)
				}
			}
			oid := outFileFrom(oname, len(onames))
			msg.Printf("creating output file %q...", oid)
			out, err = rawio.Create(oid)
			if err != nil {
				return onames, fmt.Errorf("could not create output file: %w", err)
			}
			onames = append(onames, oid)
			nfrms = 0
		}

		n := span.End - span.Beg
		if int64(cap(buf)) < n {
			buf = make([]byte, n)
		}
		buf = buf[:n]
		_, err = f.ReadAt(buf, span.Beg)
		if err != nil && err != io.EOF {
			return onames, fmt.Errorf("could not read frame at offset %d: %w", span.Beg, err)
		}

		_, err = out.Write(buf)
		if err != nil {
			return onames, fmt.Errorf("could not write frame: %w", err)
		}
		nfrms++
	}

	if out != nil {
		err = out.Close()
		if err != nil {
			return onames, fmt.Errorf("could not close output file: %w", err)
		}
	}

	if ndrops > 0 {
		msg.Printf("dropped %d malformed frame(s)", ndrops)
	}

	return onames, nil
}

// outFileFrom returns the name of the i-th chunk, inserting the
// chunk number before the first extension of fname.
func outFileFrom(fname string, i int) string {
	var (
		dir  = filepath.Dir(fname)
		base = filepath.Base(fname)
		ext  = ""
	)
	if j := strings.Index(base, "."); j > 0 {
		base, ext = base[:j], base[j:]
	}
	return filepath.Join(dir, fmt.Sprintf("%s-%03d%s", base, i, ext))
}
