// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tdc

// Validator classifies the spans between consecutive header candidates.
type Validator struct {
	MinHits int
	MaxHits int
}

// interior returns whether a span followed by another header candidate
// can hold a frame.
func (v Validator) interior(n int64) bool {
	const (
		hit      = hitWords * WordSize
		overhead = frameOverhead * WordSize
	)
	var (
		lo = int64(v.MinHits)*hit + overhead
		hi = int64(v.MaxHits)*hit + overhead
	)
	return lo <= n && n <= hi
}

// tail returns whether the last span of a stream can hold a frame.
//
// The bounds do not include the header and trailer words, as done by
// the acquisition software: a final frame holding exactly MaxHits hits
// is thus discarded.
// This is kept as is until checked against hardware captures.
func (v Validator) tail(n int64) bool {
	const hit = hitWords * WordSize
	var (
		lo = int64(v.MinHits) * hit
		hi = int64(v.MaxHits) * hit
	)
	return lo <= n && n <= hi
}

// Spans partitions a stream of size bytes into spans starting at each
// of the provided header offsets, and validates them.
// hdrs must be sorted in increasing order.
func (v Validator) Spans(hdrs []int64, size int64) []Span {
	if len(hdrs) == 0 {
		return nil
	}
	spans := make([]Span, len(hdrs))
	last := len(hdrs) - 1
	for i, beg := range hdrs[:last] {
		end := hdrs[i+1]
		spans[i] = Span{Beg: beg, End: end, Good: v.interior(end - beg)}
	}
	beg := hdrs[last]
	spans[last] = Span{Beg: beg, End: size, Good: v.tail(size - beg)}
	return spans
}
