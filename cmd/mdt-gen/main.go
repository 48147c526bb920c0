// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command mdt-gen simulates cosmic muons crossing an MDT chamber and
// writes the corresponding Phase-2 frames to a raw data file.
//
// Usage: mdt-gen [OPTIONS]
//
// Example:
//
//	$> mdt-gen -cfg run.yaml -o mdt_001.000.bin -n 10000
//	$> mdt-gen -o mdt_001.000.bin.zst -seed 42
package main // import "github.com/go-lpc/mdt/cmd/mdt-gen"

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/go-lpc/mdt"
	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/gen"
	"github.com/go-lpc/mdt/internal/rawio"
	"github.com/go-lpc/mdt/internal/xlog"
	"github.com/go-lpc/mdt/tdc"
	"golang.org/x/exp/rand"
)

func main() {
	var (
		cname = flag.String("cfg", "", "path to YAML configuration file")
		oname = flag.String("o", "out.bin", "path to output raw file")
		nevts = flag.Int("n", -1, "number of tracks to simulate (default: from configuration)")
		seed  = flag.Int64("seed", -1, "seed of the simulation (default: from configuration)")
		app   = flag.Bool("append", false, "append frames to an existing uncompressed raw file")
	)

	flag.Usage = func() {
		fmt.Printf(`Usage: mdt-gen [OPTIONS]

ex:
 $> mdt-gen -cfg run.yaml -o mdt_001.000.bin -n 10000
 $> mdt-gen -o mdt_001.000.bin.zst -seed 42

options:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	cfg := config.Default()
	if *cname != "" {
		var err error
		cfg, err = config.Load(*cname)
		if err != nil {
			log.Fatalf("could not load configuration: %+v", err)
		}
	}

	if *nevts >= 0 {
		cfg.Simulator.NEvents = *nevts
	}
	if *seed >= 0 {
		cfg.Simulator.Seed = uint64(*seed)
	}

	msg, err := xlog.New("mdt-gen: ", cfg.Log)
	if err != nil {
		log.Fatalf("could not create logger: %+v", err)
	}
	defer msg.Close()

	if v, sum := mdt.Version(); v != "" {
		msg.Printf("mdt %s (%s)", v, sum)
	}

	_, err = process(*oname, *app, cfg, msg.Logger)
	if err != nil {
		msg.Fatalf("could not generate events: %+v", err)
	}
}

func process(oname string, app bool, cfg config.Config, msg *log.Logger) (gen.Stats, error) {
	var stats gen.Stats

	codec, geo, err := mdt.Setup(context.Background(), cfg)
	if err != nil {
		return stats, fmt.Errorf("could not setup chamber: %w", err)
	}

	var (
		seed = cfg.Simulator.Seed
		nevt = cfg.Simulator.NEvents
	)

	g, err := gen.New(geo, cfg.Simulator, rand.New(rand.NewSource(seed)))
	if err != nil {
		return stats, fmt.Errorf("could not create generator: %w", err)
	}

	var f *rawio.Writer
	switch {
	case app:
		f, err = rawio.Append(oname)
	default:
		f, err = rawio.Create(oname)
	}
	if err != nil {
		return stats, fmt.Errorf("could not open output file: %w", err)
	}
	defer f.Close()

	enc, err := tdc.NewEncoder(f, codec, rand.New(rand.NewSource(seed+1)))
	if err != nil {
		return stats, fmt.Errorf("could not create encoder: %w", err)
	}

	msg.Printf("simulating %d tracks in %s chamber (%d tubes)...", nevt, geo.Kind(), len(geo.Tubes()))
	evts, stats := g.Generate(nevt)

	var (
		skip = 0
		id   = 0
	)
	for i := range evts {
		evt := &evts[i]
		if n := len(evt.Hits); n < codec.MinHits || codec.MaxHits < n {
			skip++
			continue
		}
		err = enc.Encode(evt, id%(tdc.MaxEventID+1))
		if err != nil {
			return stats, fmt.Errorf("could not encode event %d: %w", id, err)
		}
		id++
	}

	err = f.Close()
	if err != nil {
		return stats, fmt.Errorf("could not close output file: %w", err)
	}

	msg.Printf("tracks:   %d", stats.Tracks)
	msg.Printf("missed:   %d", stats.Missed)
	msg.Printf("overflow: %d", stats.Overflow)
	msg.Printf("skipped:  %d", skip)
	msg.Printf("frames:   %d -> %q", id, oname)

	return stats, nil
}
