package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/sakif/imageboard/internal/config"
)

// newLogger builds the process logger from the log section of the config.
// Levels: debug → info → warn → error; format is text (human-readable) or json.
func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", cfg.Level, err)
	}

	opts := &slog.HandlerOptions{Level: level}
	switch cfg.Format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	}
	return nil, fmt.Errorf("invalid log.format %q", cfg.Format)
}
