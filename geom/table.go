// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

var tableColumns = []string{"MZ", "MezzCh", "locY", "locZ", "Layer", "Tube_y", "ML"}

// ReadTable reads a chamber mapping table.
//
// The table is a whitespace separated text file with the columns:
//
//	MZ MezzCh locY locZ Layer Tube_y ML
//
// MZ is the TDC (mezzanine) id, MezzCh the channel id offset by 100,
// locY and locZ the vertical and horizontal positions of the tube.
// Blank lines and lines starting with '#' are ignored.
func ReadTable(r io.Reader, kind string) (*Chamber, error) {
	var (
		sc    = bufio.NewScanner(r)
		tubes []Tube
		line  = 0
		head  = false
	)

	for sc.Scan() {
		line++
		txt := strings.TrimSpace(sc.Text())
		if txt == "" || strings.HasPrefix(txt, "#") {
			continue
		}
		toks := strings.Fields(txt)
		if !head {
			if strings.Join(toks, " ") != strings.Join(tableColumns, " ") {
				return nil, fmt.Errorf("geom: line %d: invalid table header %q", line, txt)
			}
			head = true
			continue
		}
		tube, err := parseTube(toks)
		if err != nil {
			return nil, fmt.Errorf("geom: line %d: %w", line, err)
		}
		tubes = append(tubes, tube)
	}

	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("geom: could not read table: %w", err)
	}

	if !head {
		return nil, fmt.Errorf("geom: missing table header")
	}

	return NewChamber(kind, tubes)
}

func parseTube(toks []string) (Tube, error) {
	var tube Tube
	if len(toks) != len(tableColumns) {
		return tube, fmt.Errorf("invalid number of columns (got=%d, want=%d)", len(toks), len(tableColumns))
	}

	ints := make([]uint64, 0, 5)
	for _, i := range []int{0, 1, 4, 5, 6} {
		v, err := strconv.ParseUint(toks[i], 10, 8)
		if err != nil {
			return tube, fmt.Errorf("could not parse %s: %w", tableColumns[i], err)
		}
		ints = append(ints, v)
	}
	if ints[1] < tableChannel {
		return tube, fmt.Errorf("invalid MezzCh value %d", ints[1])
	}

	var flts [2]float64
	for j, i := range []int{2, 3} {
		v, err := strconv.ParseFloat(toks[i], 32)
		if err != nil {
			return tube, fmt.Errorf("could not parse %s: %w", tableColumns[i], err)
		}
		flts[j] = v
	}

	tube = Tube{
		TDC:        uint8(ints[0]),
		Channel:    uint8(ints[1] - tableChannel),
		Layer:      uint8(ints[2]),
		Multilayer: uint8(ints[4]),
		X:          float32(flts[1]),
		Y:          float32(flts[0]),
	}
	return tube, nil
}

// WriteTable writes the tubes of a chamber as a mapping table.
func WriteTable(w io.Writer, ch *Chamber) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", strings.Join(tableColumns, " "))
	for _, tube := range ch.tubes {
		fmt.Fprintf(
			bw, "%d %d %g %g %d %d %d\n",
			tube.TDC, tube.Channel+tableChannel, tube.Y, tube.X,
			tube.Layer, tube.column(ch), tube.Multilayer,
		)
	}
	return bw.Flush()
}

// column returns the position of the tube within its layer, starting at 1.
func (tube Tube) column(ch *Chamber) int {
	n := 1
	for _, o := range ch.tubes {
		if o.TDC == tube.TDC && o.Layer == tube.Layer && o.Multilayer == tube.Multilayer && o.X < tube.X {
			n++
		}
	}
	return n
}
