// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package mdt

import (
	"context"
	"fmt"
	"os"

	"github.com/go-lpc/mdt/conddb"
	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/geom"
	"github.com/go-lpc/mdt/tdc"
)

// Setup returns the codec configuration and the chamber described by cfg.
//
// The chamber is read from the mapping table file, the condition DB or
// built from its nominal layout, in that order of precedence.
// Hit bounds registered in the condition DB override the ones of cfg.
func Setup(ctx context.Context, cfg config.Config) (tdc.Config, *geom.Chamber, error) {
	var (
		codec = cfg.Codec()
		geo   = cfg.Geometry
	)

	switch {
	case geo.Table != "":
		f, err := os.Open(geo.Table)
		if err != nil {
			return codec, nil, fmt.Errorf("mdt: could not open mapping table: %w", err)
		}
		defer f.Close()

		ch, err := geom.ReadTable(f, geo.ChamberType)
		if err != nil {
			return codec, nil, fmt.Errorf("mdt: could not read mapping table %q: %w", geo.Table, err)
		}
		return codec, ch, nil

	case geo.CondDB != "":
		db, err := conddb.Open(geo.CondDB)
		if err != nil {
			return codec, nil, fmt.Errorf("mdt: could not open condition DB: %w", err)
		}
		defer db.Close()

		ch, err := db.Geometry(ctx, geo.Chamber)
		if err != nil {
			return codec, nil, fmt.Errorf("mdt: could not retrieve chamber %q: %w", geo.Chamber, err)
		}

		codec.MinHits, codec.MaxHits, err = db.HitBounds(ctx, geo.Chamber)
		if err != nil {
			return codec, nil, fmt.Errorf("mdt: could not retrieve chamber %q: %w", geo.Chamber, err)
		}
		return codec, ch, nil

	default:
		ch, err := geom.New(geo.ChamberType, geo.TDCs, geo.Multilayers)
		if err != nil {
			return codec, nil, fmt.Errorf("mdt: could not create chamber: %w", err)
		}
		return codec, ch, nil
	}
}

// NewDecoder returns a Phase-2 decoder configured from cfg.
func NewDecoder(ctx context.Context, cfg config.Config) (*tdc.Decoder, error) {
	codec, ch, err := Setup(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return tdc.NewDecoder(codec, ch)
}
