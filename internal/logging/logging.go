// Package logging builds the structured logger shared by the server.
//
// Logs never go to stdout: in stdio mode stdout carries the MCP stream.
package logging

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

const prefix = "codemagic-mcp"

// Options selects level and destination.
type Options struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// File, when set, receives the log instead of stderr.
	File string
}

// New returns a logger for opts and a closer for any file it opened.
func New(opts Options) (*log.Logger, io.Closer, error) {
	level := log.InfoLevel
	if opts.Level != "" {
		var err error
		level, err = log.ParseLevel(opts.Level)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		w, closer = f, f
	}

	logger := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          prefix,
		Level:           level,
	})
	return logger, closer, nil
}

// NewTestLogger creates a debug-level logger writing to a buffer.
func NewTestLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{
		ReportTimestamp: false,
		Prefix:          "test",
		Level:           log.DebugLevel,
	})
	return logger, &buf
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
