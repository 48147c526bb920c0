// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command mdt-rdo starts a TDAQ process emulating the CSM of an MDT
// chamber, serving simulated Phase-2 frames on its /frames output.
//
// Usage: mdt-rdo [TDAQ-OPTIONS] [config.yaml]
package main // import "github.com/go-lpc/mdt/cmd/mdt-rdo"

import (
	"context"
	"log"
	"os"

	"github.com/go-daq/tdaq"
	"github.com/go-daq/tdaq/flags"
	"github.com/go-lpc/mdt"
	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/rdo"
)

func main() {
	cmd := flags.New()

	cfg := config.Default()
	if len(cmd.Args) > 0 {
		var err error
		cfg, err = config.Load(cmd.Args[0])
		if err != nil {
			log.Fatalf("could not load configuration %q: %+v", cmd.Args[0], err)
		}
	}

	codec, geo, err := mdt.Setup(context.Background(), cfg)
	if err != nil {
		log.Fatalf("could not setup chamber: %+v", err)
	}
	cfg.Reconstruction.MinHits = codec.MinHits
	cfg.Reconstruction.MaxHits = codec.MaxHits

	dev := rdo.New(cfg, geo)

	srv := tdaq.New(cmd, os.Stdout)
	srv.CmdHandle("/config", dev.OnConfig)
	srv.CmdHandle("/init", dev.OnInit)
	srv.CmdHandle("/reset", dev.OnReset)
	srv.CmdHandle("/start", dev.OnStart)
	srv.CmdHandle("/stop", dev.OnStop)
	srv.CmdHandle("/quit", dev.OnQuit)

	srv.OutputHandle("/frames", dev.Output)

	srv.RunHandle(dev.Run)

	err = srv.Run(context.Background())
	if err != nil {
		log.Panicf("error: %+v", err)
	}
}
