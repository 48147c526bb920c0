// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xcnv

import (
	"fmt"
	"log"

	"github.com/go-lpc/mdt/tdc"
	"go-hep.org/x/hep/lcio"
)

// MDT2LCIO writes the provided events to w, under the run number run.
func MDT2LCIO(w *lcio.Writer, evts []tdc.Event, run int32, msg *log.Logger) error {
	err := w.WriteRunHeader(&lcio.RunHeader{
		RunNumber: run,
		Detector:  Detector,
		Descr:     "MDT Phase-2 readout",
		Params: lcio.Params{
			Ints: map[string][]int32{
				"MaxHits": {tdc.MaxHits},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("could not write run header: %w", err)
	}

	for i := range evts {
		if i%100 == 0 {
			msg.Printf("processing evt %d...", i)
		}
		evt := lcioEvent(&evts[i], run, int32(i))
		err = w.WriteEvent(&evt)
		if err != nil {
			return fmt.Errorf("could not write MDT event %d: %w", i, err)
		}
	}

	return nil
}

func lcioEvent(evt *tdc.Event, run, i int32) lcio.Event {
	var (
		trl = evt.Trailer
		raw = &lcio.GenericObject{
			Data: make([]lcio.GenericObjectData, len(evt.Hits)),
		}
		o = lcio.Event{
			RunNumber:   run,
			EventNumber: i,
			TimeStamp:   int64(evt.Trigger),
			Detector:    Detector,
			Params: lcio.Params{
				Ints: map[string][]int32{
					"EventID": {int32(evt.ID)},
					"Trigger": {int32(evt.Trigger)},
					"Trailer": {
						int32(trl.Headers), int32(trl.Trailers), int32(trl.ID),
						i32From(trl.HeaderErr), i32From(trl.TrailerErr),
						int32(trl.Hits),
					},
				},
			},
		}
	)

	for i, hit := range evt.Hits {
		raw.Data[i] = lcio.GenericObjectData{
			I32s: []int32{int32(hit.CSM), int32(hit.TDC), int32(hit.Channel)},
			F32s: []float32{hit.Time, hit.Width, hit.X, hit.Y},
		}
	}
	o.Add(Collection, raw)

	return o
}

func i32From(v bool) int32 {
	if v {
		return 1
	}
	return 0
}
