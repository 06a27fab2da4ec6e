// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// newLogger builds the process logger. Format "auto" picks a colored
// console handler when stderr is a terminal and JSON otherwise, so a
// daemon started by systemd logs structured records to the journal.
func newLogger(output *os.File, level, format string) (*slog.Logger, error) {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	if format == "auto" {
		format = "json"
		if term.IsTerminal(int(output.Fd())) {
			format = "text"
		}
	}
	return slog.New(newHandler(output, slogLevel, format)), nil
}

func newHandler(output io.Writer, level slog.Level, format string) slog.Handler {
	if format == "text" {
		return tint.NewHandler(output, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	}
	return slog.NewJSONHandler(output, &slog.HandlerOptions{Level: level})
}
