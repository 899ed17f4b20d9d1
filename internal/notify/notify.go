// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package notify delivers user-visible acknowledgments and warnings,
// the terminal equivalent of a blocking browser alert.
package notify

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Level classifies a notice.
type Level string

// Notice levels.
const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
)

// Notice is a message the user must see.
type Notice struct {
	Level   Level
	Message string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notice)
}

// Writer prints notices to an io.Writer, one per line.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a Writer notifier.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify implements Notifier.
func (n *Writer) Notify(_ context.Context, notice Notice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if notice.Level == LevelWarning {
		_, _ = fmt.Fprintf(n.w, "warning: %s\n", notice.Message)
		return
	}
	_, _ = fmt.Fprintln(n.w, notice.Message)
}

// Log sends notices to a logger. It is the fallback when no UI is attached.
type Log struct {
	logger *slog.Logger
}

// NewLog creates a Log notifier. A nil logger uses slog.Default().
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

// Notify implements Notifier.
func (n *Log) Notify(ctx context.Context, notice Notice) {
	level := slog.LevelInfo
	if notice.Level == LevelWarning {
		level = slog.LevelWarn
	}
	n.logger.Log(ctx, level, notice.Message, "notice", true)
}

// Recorder keeps every notice in memory.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, n Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}
