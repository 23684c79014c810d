// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xrframe

import (
	"log/slog"

	"github.com/gogpu/xrframe/internal/xrlog"
)

// SetLogger configures the logger for xrframe and all its sub-packages.
// By default, xrframe produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger
// atomically. Pass nil to disable logging (restore default silent
// behavior).
//
// Log levels used by xrframe:
//   - [slog.LevelDebug]: per-frame diagnostics (frame begun, eye collected)
//   - [slog.LevelInfo]: lifecycle events (session running, adapter selected)
//   - [slog.LevelWarn]: non-fatal issues (retry scheduled, frame aborted)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	xrframe.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	xrframe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	xrlog.SetLogger(l)
}

// Logger returns the current logger used by xrframe.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return xrlog.Logger()
}
