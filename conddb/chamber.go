// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conddb

import "fmt"

// Chamber describes a chamber and its readout.
type Chamber struct {
	Name        string
	Kind        string // chamber type (MDT, sMDT)
	TDCs        int    // TDCs per multilayer
	Multilayers int
	MinHits     int // minimum number of hits of a valid frame
	MaxHits     int // maximum number of hits of a valid frame
}

func (ch Chamber) String() string {
	return fmt.Sprintf(
		"%s (%s, tdcs=%d, multilayers=%d, hits=[%d, %d])",
		ch.Name, ch.Kind, ch.TDCs, ch.Multilayers, ch.MinHits, ch.MaxHits,
	)
}
