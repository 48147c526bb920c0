// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xlog

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-lpc/mdt/config"
)

func TestStdout(t *testing.T) {
	buf := new(bytes.Buffer)
	msg, err := newLogger(buf, "mdt-dump: ", config.Log{})
	if err != nil {
		t.Fatalf("could not create logger: %+v", err)
	}
	defer msg.Close()

	msg.Printf("decoded %d events", 42)
	if got, want := buf.String(), "mdt-dump: decoded 42 events\n"; got != want {
		t.Fatalf("invalid log:\ngot= %q\nwant=%q", got, want)
	}

	err = msg.Close()
	if err != nil {
		t.Fatalf("could not close logger: %+v", err)
	}
}

func TestRotate(t *testing.T) {
	tmp, err := os.MkdirTemp("", "mdt-xlog-")
	if err != nil {
		t.Fatalf("could not create tmp dir: %+v", err)
	}
	defer os.RemoveAll(tmp)

	var (
		buf   = new(bytes.Buffer)
		fname = filepath.Join(tmp, "logs", "mdt.log")
	)
	msg, err := newLogger(buf, "mdt-gen: ", config.Log{File: fname, MaxSizeMB: 1})
	if err != nil {
		t.Fatalf("could not create logger: %+v", err)
	}

	msg.Printf("generated %d events", 10)

	err = msg.Close()
	if err != nil {
		t.Fatalf("could not close logger: %+v", err)
	}

	raw, err := os.ReadFile(fname)
	if err != nil {
		t.Fatalf("could not read log file: %+v", err)
	}
	if got := string(raw); !strings.HasPrefix(got, "mdt-gen: ") || !strings.HasSuffix(got, "generated 10 events\n") {
		t.Fatalf("invalid log file content: %q", got)
	}
	if got, want := buf.String(), string(raw); got != want {
		t.Fatalf("stdout and log file differ:\ngot= %q\nwant=%q", got, want)
	}
}
