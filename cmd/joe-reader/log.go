package main

import (
	"fmt"
	"io"
	"log/slog"
)

// setupLogger builds the root logger from the log.level and log.format
// settings and installs it as the slog default, which also routes the
// standard log package (goose, scs) through it.
func setupLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid READER_LOG_LEVEL %q: %w", level, err)
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var logger *slog.Logger
	if format == "json" {
		logger = slog.New(slog.NewJSONHandler(w, opts))
	} else {
		logger = slog.New(slog.NewTextHandler(w, opts))
	}
	slog.SetDefault(logger)
	return logger, nil
}
