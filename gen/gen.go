// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gen simulates cosmic muons crossing an MDT chamber.
package gen // import "github.com/go-lpc/mdt/gen"

import (
	"fmt"
	"math"

	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/geom"
	"github.com/go-lpc/mdt/tdc"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	muonMass = 0.10566 // GeV
	margin   = 30      // mm
)

// Track is a straight muon track.
type Track struct {
	X0, Y0 float64 // starting point, in mm
	Angle  float64 // angle with respect to the vertical, in rad
	Energy float64 // GeV
	P      float64 // momentum, in GeV/c
}

// Px returns the horizontal momentum component.
func (trk Track) Px() float64 { return trk.P * math.Sin(trk.Angle) }

// Py returns the vertical momentum component.
func (trk Track) Py() float64 { return trk.P * math.Cos(trk.Angle) }

// Dist returns the distance between the track and the (x,y) point.
func (trk Track) Dist(x, y float64) float64 {
	sin, cos := math.Sincos(trk.Angle)
	return math.Abs((x-trk.X0)*cos - (y-trk.Y0)*sin)
}

// Stats counts the outcome of the simulated tracks.
type Stats struct {
	Tracks   int // number of simulated tracks
	Missed   int // tracks crossing no tube
	Overflow int // tracks crossing more than tdc.MaxHits tubes
}

// Generator simulates events for a chamber.
type Generator struct {
	geo   *geom.Chamber
	tubes []geom.Tube

	x, y   distuv.Uniform
	angle  distuv.Uniform
	energy distuv.Uniform
	time   distuv.Normal
	width  distuv.Normal
}

// New creates a generator for the provided chamber, drawing random
// numbers from rnd.
func New(geo *geom.Chamber, cfg config.Simulator, rnd *rand.Rand) (*Generator, error) {
	if rnd == nil {
		return nil, fmt.Errorf("gen: nil random number generator")
	}
	if cfg.Field != 0 {
		return nil, fmt.Errorf("gen: tracks in a magnetic field (B=%v T) are not supported", cfg.Field)
	}
	if cfg.MinEnergy < muonMass || cfg.MaxEnergy < cfg.MinEnergy {
		return nil, fmt.Errorf("gen: invalid energy range [%v, %v] GeV", cfg.MinEnergy, cfg.MaxEnergy)
	}

	tubes := geo.Tubes()
	if len(tubes) == 0 {
		return nil, fmt.Errorf("gen: chamber with no tube")
	}

	xmin, xmax := math.Inf(+1), math.Inf(-1)
	ymax := math.Inf(-1)
	for _, tube := range tubes {
		x, y := float64(tube.X), float64(tube.Y)
		xmin = math.Min(xmin, x)
		xmax = math.Max(xmax, x)
		ymax = math.Max(ymax, y)
	}

	return &Generator{
		geo:    geo,
		tubes:  tubes,
		x:      distuv.Uniform{Min: xmin - margin, Max: xmax + margin, Src: rnd},
		y:      distuv.Uniform{Min: ymax + margin, Max: ymax + 2*margin, Src: rnd},
		angle:  distuv.Uniform{Min: -cfg.MaxAngle, Max: +cfg.MaxAngle, Src: rnd},
		energy: distuv.Uniform{Min: cfg.MinEnergy, Max: cfg.MaxEnergy, Src: rnd},
		time:   distuv.Normal{Mu: cfg.TimeDelay, Sigma: cfg.TimeSigma, Src: rnd},
		width:  distuv.Normal{Mu: cfg.WidthMean, Sigma: cfg.WidthSigma, Src: rnd},
	}, nil
}

// Track simulates a muon track.
func (g *Generator) Track() Track {
	trk := Track{
		X0:     g.x.Rand(),
		Y0:     g.y.Rand(),
		Energy: g.energy.Rand(),
		Angle:  g.angle.Rand(),
	}
	trk.P = math.Sqrt(trk.Energy*trk.Energy - muonMass*muonMass)
	return trk
}

// Event returns the hits of all the tubes crossed by the track.
func (g *Generator) Event(trk Track) tdc.Event {
	var (
		evt tdc.Event
		rad = float64(g.geo.Radius())
	)
	for _, tube := range g.tubes {
		r := trk.Dist(float64(tube.X), float64(tube.Y))
		if r >= rad {
			continue
		}
		evt.Hits = append(evt.Hits, tdc.Hit{
			TDC:     tube.TDC,
			Channel: tube.Channel,
			Time:    float32(math.Max(0, g.time.Rand()+DriftTime(r))),
			Width:   float32(math.Min(math.Max(0, g.width.Rand()), 255)),
			X:       tube.X,
			Y:       tube.Y,
		})
	}
	return evt
}

// Generate simulates n tracks and returns the events that can be
// sent as a Phase-2 frame.
func (g *Generator) Generate(n int) ([]tdc.Event, Stats) {
	var (
		evts  = make([]tdc.Event, 0, n)
		stats = Stats{Tracks: n}
	)
	for i := 0; i < n; i++ {
		evt := g.Event(g.Track())
		switch {
		case len(evt.Hits) == 0:
			stats.Missed++
		case len(evt.Hits) > tdc.MaxHits:
			stats.Overflow++
		default:
			evts = append(evts, evt)
		}
	}
	return evts, stats
}

// DriftTime returns the drift time (in ns) of a hit at r mm from the
// anode wire.
func DriftTime(r float64) float64 {
	return 3.5 * r * r
}
