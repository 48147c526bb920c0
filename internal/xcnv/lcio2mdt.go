// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"fmt"
	"io"
	"log"
	"math"

	"github.com/go-lpc/mdt/tdc"
	"go-hep.org/x/hep/lcio"
)

// LCIO2MDT reads back all the MDT events of r.
func LCIO2MDT(r *lcio.Reader, freq int, msg *log.Logger) ([]tdc.Event, error) {
	var evts []tdc.Event
	for r.Next() {
		i := len(evts)
		if i%freq == 0 {
			msg.Printf("processing evt %d...", i)
		}
		evt := r.Event()
		o, err := mdtEvent(&evt)
		if err != nil {
			return evts, fmt.Errorf("could not convert evt %d: %w", evt.EventNumber, err)
		}
		evts = append(evts, o)
	}

	err := r.Err()
	if err != nil && err != io.EOF {
		return evts, fmt.Errorf("could not read LCIO file: %w", err)
	}

	return evts, nil
}

func mdtEvent(evt *lcio.Event) (tdc.Event, error) {
	var (
		o    tdc.Event
		ints = evt.Params.Ints
	)

	if v := ints["EventID"]; len(v) == 1 {
		o.ID = uint16(v[0])
	}
	if v := ints["Trigger"]; len(v) == 1 {
		o.Trigger = uint32(v[0])
	}
	if v := ints["Trailer"]; len(v) == 6 {
		o.Trailer = tdc.Trailer{
			Headers:    uint8(v[0]),
			Trailers:   uint8(v[1]),
			ID:         uint16(v[2]),
			HeaderErr:  v[3] == 1,
			TrailerErr: v[4] == 1,
			Hits:       uint16(v[5]),
		}
	}

	if !evt.Has(Collection) {
		return o, fmt.Errorf("no %q collection", Collection)
	}
	raw, ok := evt.Get(Collection).(*lcio.GenericObject)
	if !ok {
		return o, fmt.Errorf("invalid %q collection type %T", Collection, evt.Get(Collection))
	}

	if len(raw.Data) > 0 {
		o.Hits = make([]tdc.Hit, len(raw.Data))
	}
	for i, data := range raw.Data {
		if len(data.I32s) != 3 || len(data.F32s) != 4 {
			return o, fmt.Errorf(
				"invalid hit %d (i32s=%d, f32s=%d)",
				i, len(data.I32s), len(data.F32s),
			)
		}
		for j, name := range []string{"CSM id", "TDC id", "channel"} {
			if v := data.I32s[j]; v < 0 || v > math.MaxUint8 {
				return o, fmt.Errorf("invalid hit %d: %s=%d out of range", i, name, v)
			}
		}
		o.Hits[i] = tdc.Hit{
			CSM:     uint8(data.I32s[0]),
			TDC:     uint8(data.I32s[1]),
			Channel: uint8(data.I32s[2]),
			Time:    data.F32s[0],
			Width:   data.F32s[1],
			X:       data.F32s[2],
			Y:       data.F32s[3],
		}
	}

	return o, nil
}
