// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

import (
	"errors"
	"reflect"
	"testing"
)

func TestValidator(t *testing.T) {
	val := Validator{MinHits: 2, MaxHits: 4}
	for _, tc := range []struct {
		name string
		hdrs []int64
		size int64
		want []Span
	}{
		{
			name: "no-header",
			size: 100,
		},
		{
			name: "interior-bounds",
			// spans of 35, 40, 70, 75 bytes, then a tail of 30 bytes.
			hdrs: []int64{0, 35, 75, 145, 220},
			size: 250,
			want: []Span{
				{Beg: 0, End: 35, Good: false},
				{Beg: 35, End: 75, Good: true},
				{Beg: 75, End: 145, Good: true},
				{Beg: 145, End: 220, Good: false},
				{Beg: 220, End: 250, Good: true},
			},
		},
		{
			name: "tail-bounds",
			hdrs: []int64{0, 40},
			size: 40 + 60,
			want: []Span{
				{Beg: 0, End: 40, Good: true},
				{Beg: 40, End: 100, Good: true},
			},
		},
		{
			name: "tail-max-hits",
			hdrs: []int64{0},
			size: int64(FrameSize(4)),
			want: []Span{
				{Beg: 0, End: 70, Good: false},
			},
		},
		{
			name: "tail-too-short",
			hdrs: []int64{0},
			size: 29,
			want: []Span{
				{Beg: 0, End: 29, Good: false},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := val.Spans(tc.hdrs, tc.size)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("invalid spans:\ngot= %+v\nwant=%+v", got, tc.want)
			}
		})
	}
}

func TestSpanErr(t *testing.T) {
	if err := (Span{Beg: 0, End: 40, Good: true}).Err(); err != nil {
		t.Fatalf("invalid error: %+v", err)
	}

	err := Span{Beg: 10, End: 20}.Err()
	if !errors.Is(err, ErrMalformedFrame) {
		t.Fatalf("invalid error: %+v", err)
	}
	if got, want := err.Error(), "tdc: span [10, 20) of 10 bytes: tdc: malformed frame"; got != want {
		t.Fatalf("invalid error:\ngot= %v\nwant=%v", got, want)
	}
}
