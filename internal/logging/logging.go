// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging provides the debug file logger for astro-tui.
//
// The TUI owns the terminal, so nothing may log to stdout or stderr while
// the program runs. Swallowed failures (search augmentation, title
// generation, persistence warnings) go to a structured log file instead,
// where they can be inspected after the fact.
package logging

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps zap.Logger.
type Logger struct {
	*zap.Logger
}

// New creates a file-backed structured logger at dataDir/debug.log.
func New(dataDir string) (*Logger, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, err
	}
	logPath := filepath.Join(dataDir, "debug.log")

	config := zap.Config{
		Level:       zap.NewAtomicLevelAt(zapcore.InfoLevel),
		Development: false,
		Encoding:    "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			MessageKey:     "msg",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
		},
		// Never stdout/stderr: the TUI owns the terminal
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	}

	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: logger}, nil
}

// NewNop returns a logger that discards everything. Used in tests and as a
// fallback when the log file cannot be opened.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}
