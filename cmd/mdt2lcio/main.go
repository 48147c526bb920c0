// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command mdt2lcio converts an MDT Phase-2 raw data file to an LCIO one.
package main // import "github.com/go-lpc/mdt/cmd/mdt2lcio"

import (
	"compress/flate"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/go-lpc/mdt"
	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/internal/xcnv"
	"github.com/go-lpc/mdt/tdc"
	"go-hep.org/x/hep/lcio"
)

var (
	msg = log.New(os.Stdout, "mdt2lcio: ", 0)
)

func main() {
	var (
		oname = flag.String("o", "out.lcio", "path to output LCIO file")
		compr = flag.Int("lvl", flate.DefaultCompression, "compression level for output LCIO file")
		cname = flag.String("cfg", "", "path to YAML configuration file")
		run   = flag.Int("run", -1, "run number (default: inferred from the input file name)")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: mdt2lcio [OPTIONS] file.bin

ex:
 $> mdt2lcio -o out.lcio -lvl=9 ./mdt_063.000.bin
 $> mdt2lcio -cfg run.yaml -run 42 ./capture.bin.zst

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		msg.Fatalf("missing input MDT raw file")
	}

	if *oname == "" {
		flag.Usage()
		msg.Fatalf("invalid output LCIO file name")
	}

	cfg := config.Default()
	if *cname != "" {
		var err error
		cfg, err = config.Load(*cname)
		if err != nil {
			msg.Fatalf("could not load configuration: %+v", err)
		}
	}

	dec, err := mdt.NewDecoder(context.Background(), cfg)
	if err != nil {
		msg.Fatalf("could not create decoder: %+v", err)
	}

	err = process(*oname, *compr, int32(*run), dec, flag.Arg(0))
	if err != nil {
		msg.Fatalf("could not convert MDT file: %+v", err)
	}
}

func process(oname string, lvl int, run int32, dec *tdc.Decoder, fname string) error {
	if run < 0 {
		var err error
		run, err = runNbrFrom(fname)
		if err != nil {
			return fmt.Errorf("could not infer run from %q: %w", fname, err)
		}
	}

	evts, rep, err := dec.DecodeFile(fname)
	if err != nil {
		return fmt.Errorf("could not decode MDT file: %w", err)
	}
	msg.Printf("decoded %d/%d frames (discarded: %d, rejected hits: %d)",
		rep.Frames, rep.Headers, len(rep.Discarded), len(rep.Rejected),
	)

	w, err := lcio.Create(oname)
	if err != nil {
		return fmt.Errorf("could not create output LCIO file: %w", err)
	}
	defer w.Close()

	w.SetCompressionLevel(lvl)

	err = xcnv.MDT2LCIO(w, evts, run, msg)
	if err != nil {
		return fmt.Errorf("could not convert MDT to LCIO: %w", err)
	}

	err = w.Close()
	if err != nil {
		return fmt.Errorf("could not close output LCIO file: %w", err)
	}

	return nil
}

func runNbrFrom(fname string) (int32, error) {
	var (
		name = filepath.Base(fname)
		run  int32
	)
	_, err := fmt.Sscanf(name, "mdt_%d.", &run)
	return run, err
}
