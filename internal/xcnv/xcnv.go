// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xcnv provides tools to convert MDT events to/from LCIO.
package xcnv // import "github.com/go-lpc/mdt/internal/xcnv"

const (
	// Detector is the detector name of the LCIO run headers and events.
	Detector = "MDT"

	// Collection is the name of the LCIO collection holding the hits.
	// Each hit is stored as a GenericObjectData with:
	//  - I32s: CSM id, TDC id, channel
	//  - F32s: time, pulse width, x, y
	Collection = "MDT_RAW"
)
