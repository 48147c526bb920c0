// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package mdt holds code to simulate, encode and decode the Phase-2
// readout data of MDT chambers.
//
// The codec lives in package tdc. This package wires it to the chamber
// geometry described by a run configuration.
package mdt // import "github.com/go-lpc/mdt"

import (
	"runtime/debug"
)

const modulePath = "github.com/go-lpc/mdt"

// Version returns the version of mdt and its checksum, as recorded in
// the build information of the running binary.
// Empty strings are returned for binaries built without module support.
func Version() (version, sum string) {
	b, ok := debug.ReadBuildInfo()
	if !ok {
		return "", ""
	}
	return versionOf(b)
}

func versionOf(b *debug.BuildInfo) (version, sum string) {
	if b == nil {
		return "", ""
	}

	if b.Main.Path == modulePath {
		return b.Main.Version, b.Main.Sum
	}

	for _, m := range b.Deps {
		if m.Path == modulePath {
			return moduleVersion(m)
		}
	}
	return "", ""
}

// moduleVersion returns the version of m, following its replacement.
// A local replacement without version is reported with its path and an
// unknown checksum.
func moduleVersion(m *debug.Module) (version, sum string) {
	r := m.Replace
	switch {
	case r == nil:
		return m.Version, m.Sum
	case r.Path != "" && r.Version != "":
		return r.Path + " " + r.Version, r.Sum
	case r.Version != "":
		return r.Version, r.Sum
	case r.Path != "":
		return r.Path, r.Sum
	default:
		return m.Version + "*", ""
	}
}
