// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom describes the layout of MDT chambers and maps
// (TDC, channel) pairs to tube positions.
package geom // import "github.com/go-lpc/mdt/geom"

import (
	"errors"
	"fmt"
	"sort"
)

var ErrNotFound = errors.New("geom: tube not found")

const (
	MDT  = "MDT"  // monitored drift tube chamber
	SMDT = "sMDT" // small-diameter monitored drift tube chamber
)

const (
	nLayers      = 4 // layers read out by one TDC
	nTubes       = 6 // tubes per layer read out by one TDC
	nChannels    = nLayers * nTubes
	maxTDCs      = 32 // TDC ids are 5 bits wide
	maxChannels  = 32 // channel ids are 5 bits wide
	tableChannel = 100
)

// channel of the i-th tube of a layer.
var channelMap = [nTubes]uint8{5, 3, 4, 2, 0, 1}

// layout holds the nominal dimensions of a chamber type, in mm.
type layout struct {
	radius float64 // tube outer radius
	pitch  float64 // distance between adjacent tubes of a layer
	layer  float64 // distance between adjacent layers
	y0     float64 // position of the first layer
	spacer float64 // distance between multilayers
}

var layouts = map[string]layout{
	MDT:  {radius: 15.0, pitch: 30.035, layer: 26.0111, y0: 45.7675, spacer: 170.0},
	SMDT: {radius: 7.5, pitch: 15.1, layer: 13.0769836, y0: 22.8838, spacer: 85.0},
}

// Tube describes one drift tube.
type Tube struct {
	TDC        uint8
	Channel    uint8
	Layer      uint8 // layer within the multilayer, starting at 1
	Multilayer uint8 // starting at 1
	X          float32
	Y          float32
}

type key struct {
	tdc uint8
	ch  uint8
}

// Chamber maps (TDC, channel) pairs to tubes.
type Chamber struct {
	kind   string
	radius float32
	tubes  []Tube
	index  map[key]int
}

// New builds the nominal layout of a chamber of the provided kind with
// ntdcs TDCs per multilayer.
// TDC ids are assigned multilayer by multilayer, from left to right.
func New(kind string, ntdcs, nmls int) (*Chamber, error) {
	lay, ok := layouts[kind]
	if !ok {
		return nil, fmt.Errorf("geom: unknown chamber type %q", kind)
	}
	if ntdcs <= 0 || nmls <= 0 || ntdcs*nmls > maxTDCs {
		return nil, fmt.Errorf(
			"geom: invalid number of TDCs (tdcs=%d, multilayers=%d)",
			ntdcs, nmls,
		)
	}

	tubes := make([]Tube, 0, ntdcs*nmls*nChannels)
	for ml := 0; ml < nmls; ml++ {
		y0 := lay.y0 + float64(ml)*(float64(nLayers-1)*lay.layer+lay.spacer)
		for k := 0; k < ntdcs; k++ {
			x0 := float64(k*nTubes) * lay.pitch
			for l := 0; l < nLayers; l++ {
				x := x0 + lay.radius
				if l%2 == 0 {
					x += 0.5 * lay.pitch
				}
				y := y0 + float64(l)*lay.layer
				for i, ch := range channelMap {
					tubes = append(tubes, Tube{
						TDC:        uint8(ml*ntdcs + k),
						Channel:    ch + uint8(nTubes*l),
						Layer:      uint8(l + 1),
						Multilayer: uint8(ml + 1),
						X:          float32(x + float64(i)*lay.pitch),
						Y:          float32(y),
					})
				}
			}
		}
	}

	return NewChamber(kind, tubes)
}

// NewChamber creates a chamber of the provided kind from a list of tubes.
func NewChamber(kind string, tubes []Tube) (*Chamber, error) {
	lay, ok := layouts[kind]
	if !ok {
		return nil, fmt.Errorf("geom: unknown chamber type %q", kind)
	}

	ch := &Chamber{
		kind:   kind,
		radius: float32(lay.radius),
		tubes:  make([]Tube, len(tubes)),
		index:  make(map[key]int, len(tubes)),
	}
	copy(ch.tubes, tubes)
	sort.SliceStable(ch.tubes, func(i, j int) bool {
		ti, tj := ch.tubes[i], ch.tubes[j]
		if ti.TDC != tj.TDC {
			return ti.TDC < tj.TDC
		}
		return ti.Channel < tj.Channel
	})

	for i, tube := range ch.tubes {
		if tube.TDC >= maxTDCs || tube.Channel >= maxChannels {
			return nil, fmt.Errorf(
				"geom: invalid tube (tdc=%d, channel=%d)",
				tube.TDC, tube.Channel,
			)
		}
		k := key{tube.TDC, tube.Channel}
		if _, dup := ch.index[k]; dup {
			return nil, fmt.Errorf(
				"geom: duplicate tube (tdc=%d, channel=%d)",
				tube.TDC, tube.Channel,
			)
		}
		ch.index[k] = i
	}

	return ch, nil
}

// Kind returns the chamber type.
func (ch *Chamber) Kind() string { return ch.kind }

// Radius returns the radius of the chamber tubes, in mm.
func (ch *Chamber) Radius() float32 { return ch.radius }

// Tubes returns the tubes of the chamber, sorted by TDC and channel.
func (ch *Chamber) Tubes() []Tube {
	tubes := make([]Tube, len(ch.tubes))
	copy(tubes, ch.tubes)
	return tubes
}

// Tube returns the tube read out by the provided TDC channel.
func (ch *Chamber) Tube(tdc, channel uint8) (Tube, error) {
	i, ok := ch.index[key{tdc, channel}]
	if !ok {
		return Tube{}, fmt.Errorf("geom: no tube for (tdc=%d, channel=%d): %w", tdc, channel, ErrNotFound)
	}
	return ch.tubes[i], nil
}

// Lookup returns the position of the tube read out by the provided TDC channel.
func (ch *Chamber) Lookup(tdc, channel uint8) (x, y float32, err error) {
	tube, err := ch.Tube(tdc, channel)
	if err != nil {
		return 0, 0, err
	}
	return tube.X, tube.Y, nil
}
