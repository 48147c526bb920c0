// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rdo

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/go-daq/tdaq"
	"github.com/go-lpc/mdt/config"
	"github.com/go-lpc/mdt/geom"
)

// Server is a TDAQ process emulating the CSM of a chamber.
type Server struct {
	cfg config.Config
	geo *geom.Chamber

	Batch  int           // number of frames per output message
	Period time.Duration // time between two output messages

	str  *stream
	data chan []byte
	n    atomic.Int64 // number of sent frames
}

// New creates a new readout server for the provided chamber.
func New(cfg config.Config, geo *geom.Chamber) *Server {
	return &Server{
		cfg:    cfg,
		geo:    geo,
		Batch:  10,
		Period: 100 * time.Millisecond,
	}
}

// Frames returns the number of frames sent since the last /init or /reset.
func (srv *Server) Frames() int64 {
	return srv.n.Load()
}

func (srv *Server) reset() error {
	str, err := newStream(srv.cfg, srv.geo)
	if err != nil {
		return err
	}
	srv.str = str
	srv.data = make(chan []byte, 1024)
	srv.n.Store(0)
	return nil
}

func (srv *Server) OnConfig(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /config command...")
	err := srv.cfg.Validate()
	if err != nil {
		ctx.Msg.Errorf("invalid configuration: %+v", err)
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if srv.Batch <= 0 {
		return fmt.Errorf("invalid batch size %d", srv.Batch)
	}
	ctx.Msg.Infof(
		"chamber %s with %d tubes, %d frames every %v",
		srv.geo.Kind(), len(srv.geo.Tubes()), srv.Batch, srv.Period,
	)
	return nil
}

func (srv *Server) OnInit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /init command...")
	err := srv.reset()
	if err != nil {
		ctx.Msg.Errorf("could not initialize readout: %+v", err)
		return fmt.Errorf("could not initialize readout: %w", err)
	}
	return nil
}

func (srv *Server) OnReset(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /reset command...")
	err := srv.reset()
	if err != nil {
		ctx.Msg.Errorf("could not reset readout: %+v", err)
		return fmt.Errorf("could not reset readout: %w", err)
	}
	return nil
}

func (srv *Server) OnStart(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /start command...")
	if srv.str == nil {
		return fmt.Errorf("readout not initialized")
	}
	return nil
}

func (srv *Server) OnStop(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	n := srv.n.Load()
	ctx.Msg.Debugf("received /stop command... -> n=%d", n)
	if srv.str != nil {
		stats := srv.str.stats
		ctx.Msg.Infof(
			"tracks=%d missed=%d overflow=%d frames=%d",
			stats.Tracks, stats.Missed, stats.Overflow, n,
		)
	}
	return nil
}

func (srv *Server) OnQuit(ctx tdaq.Context, resp *tdaq.Frame, req tdaq.Frame) error {
	ctx.Msg.Debugf("received /quit command...")
	return nil
}

// Output sends the next batch of frames.
func (srv *Server) Output(ctx tdaq.Context, dst *tdaq.Frame) error {
	select {
	case <-ctx.Ctx.Done():
		dst.Body = nil
		return nil
	case data := <-srv.data:
		dst.Body = data
	}
	return nil
}

// Run produces a batch of frames every period, until the run is stopped.
// Batches are dropped when no consumer keeps up.
func (srv *Server) Run(ctx tdaq.Context) error {
	if srv.str == nil {
		return fmt.Errorf("readout not initialized")
	}

	tick := time.NewTicker(srv.Period)
	defer tick.Stop()

	for {
		raw, err := srv.str.next(srv.Batch)
		if err != nil {
			ctx.Msg.Errorf("could not produce frames: %+v", err)
			return err
		}
		select {
		case srv.data <- raw:
			srv.n.Add(int64(srv.Batch))
		default:
			ctx.Msg.Warnf("dropping %d frames", srv.Batch)
		}

		select {
		case <-ctx.Ctx.Done():
			return nil
		case <-tick.C:
		}
	}
}
