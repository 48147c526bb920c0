// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config describes the YAML configuration of the MDT tools.
package config // import "github.com/go-lpc/mdt/config"

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-lpc/mdt/geom"
	"github.com/go-lpc/mdt/tdc"
	"gopkg.in/yaml.v3"
)

// Config is the configuration of a run.
type Config struct {
	General        General        `yaml:"General"`
	Signal         Signal         `yaml:"Signal"`
	Reconstruction Reconstruction `yaml:"Reconstruction"`
	Geometry       Geometry       `yaml:"Geometry"`
	Simulator      Simulator      `yaml:"Simulator"`
	Log            Log            `yaml:"Log"`
}

type General struct {
	RunName   string `yaml:"run_name"`
	InputFile string `yaml:"input_file"`
}

type Signal struct {
	DataType string `yaml:"DataType"`
}

type Reconstruction struct {
	MinHits int `yaml:"MinHits"`
	MaxHits int `yaml:"MaxHits"`
}

// Geometry selects the chamber layout used to locate hits.
//
// A mapping table file takes precedence over the condition DB, which
// takes precedence over the nominal layout.
type Geometry struct {
	ChamberType string `yaml:"chamber_type"`
	TDCs        int    `yaml:"tdcs"`        // TDCs per multilayer
	Multilayers int    `yaml:"multilayers"` // number of multilayers
	Table       string `yaml:"table"`       // mapping table file
	CondDB      string `yaml:"conddb"`      // condition DB name
	Chamber     string `yaml:"chamber"`     // chamber name in the condition DB
}

// Simulator configures the event generator.
type Simulator struct {
	NEvents    int     `yaml:"nevents"`
	Seed       uint64  `yaml:"seed"`
	MaxAngle   float64 `yaml:"max_angle"`  // in rad
	MinEnergy  float64 `yaml:"min_energy"` // in GeV
	MaxEnergy  float64 `yaml:"max_energy"` // in GeV
	Field      float64 `yaml:"field"`      // magnetic field, in T
	TimeDelay  float64 `yaml:"tdc_time_delay"`
	TimeSigma  float64 `yaml:"tdc_time_sigma"`
	WidthMean  float64 `yaml:"pulse_width_mean"`
	WidthSigma float64 `yaml:"pulse_width_sigma"`
}

// Log configures the optional rotating log file.
type Log struct {
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		General: General{RunName: "run"},
		Signal:  Signal{DataType: tdc.Phase2},
		Reconstruction: Reconstruction{
			MinHits: 1,
			MaxHits: tdc.MaxHits,
		},
		Geometry: Geometry{
			ChamberType: geom.MDT,
			TDCs:        4,
			Multilayers: 2,
		},
		Simulator: Simulator{
			NEvents:    1000,
			MaxAngle:   0.1,
			MinEnergy:  10,
			MaxEnergy:  1000,
			TimeDelay:  70,
			TimeSigma:  10,
			WidthMean:  200,
			WidthSigma: 25,
		},
		Log: Log{
			MaxSizeMB:  25,
			MaxBackups: 5,
			MaxAgeDays: 7,
		},
	}
}

// Load reads and validates the named configuration file.
// Relative file names in the configuration are resolved against the
// directory of the configuration file.
func Load(fname string) (Config, error) {
	f, err := os.Open(fname)
	if err != nil {
		return Config{}, fmt.Errorf("config: could not open %q: %w", fname, err)
	}
	defer f.Close()

	cfg, err := Decode(f)
	if err != nil {
		return cfg, fmt.Errorf("config: could not load %q: %w", fname, err)
	}

	dir := filepath.Dir(fname)
	cfg.General.InputFile = resolve(dir, cfg.General.InputFile)
	cfg.Geometry.Table = resolve(dir, cfg.Geometry.Table)
	cfg.Log.File = resolve(dir, cfg.Log.File)

	return cfg, nil
}

// Decode reads a configuration from r, on top of the default one.
// Unknown keys are rejected.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil && err != io.EOF {
		return cfg, fmt.Errorf("config: could not decode YAML: %w", err)
	}

	err = cfg.Validate()
	if err != nil {
		return cfg, err
	}
	return cfg, nil
}

func resolve(dir, fname string) string {
	fname = strings.TrimSpace(fname)
	if fname == "" || filepath.IsAbs(fname) {
		return fname
	}
	return filepath.Join(dir, fname)
}

// Validate checks the consistency of the configuration.
func (cfg Config) Validate() error {
	err := cfg.Codec().Validate()
	if err != nil {
		return fmt.Errorf("config: invalid codec configuration: %w", err)
	}
	if cfg.Reconstruction.MaxHits > tdc.MaxHits {
		return fmt.Errorf(
			"config: invalid MaxHits=%d (max=%d)",
			cfg.Reconstruction.MaxHits, tdc.MaxHits,
		)
	}

	geo := cfg.Geometry
	switch geo.ChamberType {
	case geom.MDT, geom.SMDT:
	default:
		return fmt.Errorf("config: invalid chamber type %q", geo.ChamberType)
	}
	if geo.Table == "" && geo.CondDB == "" && (geo.TDCs <= 0 || geo.Multilayers <= 0) {
		return fmt.Errorf(
			"config: invalid geometry (tdcs=%d, multilayers=%d)",
			geo.TDCs, geo.Multilayers,
		)
	}
	if geo.CondDB != "" && geo.Chamber == "" {
		return fmt.Errorf("config: condition DB %q needs a chamber name", geo.CondDB)
	}

	sim := cfg.Simulator
	switch {
	case sim.NEvents < 0:
		return fmt.Errorf("config: invalid number of events %d", sim.NEvents)
	case sim.MaxAngle < 0:
		return fmt.Errorf("config: invalid max angle %v", sim.MaxAngle)
	case sim.MinEnergy > sim.MaxEnergy:
		return fmt.Errorf(
			"config: invalid energy range [%v, %v]",
			sim.MinEnergy, sim.MaxEnergy,
		)
	case sim.TimeSigma < 0 || sim.WidthSigma < 0:
		return fmt.Errorf(
			"config: invalid sigmas (time=%v, width=%v)",
			sim.TimeSigma, sim.WidthSigma,
		)
	}

	return nil
}

// Codec returns the configuration of the Phase-2 encoders and decoders.
func (cfg Config) Codec() tdc.Config {
	return tdc.Config{
		DataType: cfg.Signal.DataType,
		MinHits:  cfg.Reconstruction.MinHits,
		MaxHits:  cfg.Reconstruction.MaxHits,
	}
}
