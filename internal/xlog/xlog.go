// Copyright 2025 The go-lpc Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xlog creates the loggers of the MDT commands.
package xlog // import "github.com/go-lpc/mdt/internal/xlog"

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/go-lpc/mdt/config"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a logger whose output may be duplicated into a rotating
// log file.
type Logger struct {
	*log.Logger
	file io.Closer
}

// New returns a logger writing to os.Stdout with the provided prefix.
// When cfg.File is set, messages are also written to that file, rotated
// according to cfg.
func New(prefix string, cfg config.Log) (*Logger, error) {
	return newLogger(os.Stdout, prefix, cfg)
}

func newLogger(w io.Writer, prefix string, cfg config.Log) (*Logger, error) {
	if cfg.File == "" {
		return &Logger{Logger: log.New(w, prefix, 0)}, nil
	}

	err := os.MkdirAll(filepath.Dir(cfg.File), 0755)
	if err != nil {
		return nil, fmt.Errorf("xlog: could not create log dir: %w", err)
	}

	rot := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	}
	return &Logger{
		Logger: log.New(io.MultiWriter(w, rot), prefix, log.LstdFlags|log.Lmicroseconds),
		file:   rot,
	}, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
