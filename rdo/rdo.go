// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rdo emulates the readout of an MDT chamber: simulated events
// are sent as Phase-2 frames by a TDAQ process.
package rdo // import "github.com/go-lpc/mdt/rdo"

import (
	"bytes"
	"fmt"

	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/gen"
	"github.com/go-lpc/mdt/geom"
	"github.com/go-lpc/mdt/tdc"
	"golang.org/x/exp/rand"
)

// maxMisses is the number of consecutive empty events after which a
// stream gives up.
const maxMisses = 10000

type source interface {
	Generate(n int) ([]tdc.Event, gen.Stats)
}

// stream produces batches of encoded frames.
type stream struct {
	src  source
	enc  *tdc.Encoder
	buf  *bytes.Buffer
	evid int // id of the next frame

	stats gen.Stats
}

func newStream(cfg config.Config, geo *geom.Chamber) (*stream, error) {
	var (
		seed = cfg.Simulator.Seed
		buf  = new(bytes.Buffer)
	)

	g, err := gen.New(geo, cfg.Simulator, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, fmt.Errorf("rdo: could not create generator: %w", err)
	}

	enc, err := tdc.NewEncoder(buf, cfg.Codec(), rand.New(rand.NewSource(seed+1)))
	if err != nil {
		return nil, fmt.Errorf("rdo: could not create encoder: %w", err)
	}

	return &stream{src: g, enc: enc, buf: buf}, nil
}

// next returns n frames, encoded back to back.
func (s *stream) next(n int) ([]byte, error) {
	s.buf.Reset()
	for i, miss := 0, 0; i < n; {
		evts, stats := s.src.Generate(1)
		s.stats.Tracks += stats.Tracks
		s.stats.Missed += stats.Missed
		s.stats.Overflow += stats.Overflow
		if len(evts) == 0 {
			miss++
			if miss >= maxMisses {
				return nil, fmt.Errorf("rdo: no event with hits after %d tracks", miss)
			}
			continue
		}
		miss = 0

		err := s.enc.Encode(&evts[0], s.evid)
		if err != nil {
			return nil, fmt.Errorf("rdo: could not encode frame %d: %w", s.evid, err)
		}
		s.evid = (s.evid + 1) % (tdc.MaxEventID + 1)
		i++
	}

	raw := make([]byte, s.buf.Len())
	copy(raw, s.buf.Bytes())
	return raw, nil
}
