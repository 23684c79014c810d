// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package session drives the lifecycle of an XR session.
//
// A Machine probes for a runtime, creates the instance, the system, the
// session with its swapchains and the input actions, follows the
// runtime's session state events, and tears everything down again when
// the session stops or is lost. Tick advances the machine by at most
// one creation step and must be called once per render-thread
// iteration, whatever the current state.
//
// Failures never escape the machine. A failed creation step tears down
// what it created and is retried after a fixed interval; losses reported
// through ReportResult or runtime events are handled on the next Tick:
//
//	DesktopOnly → InstanceReady → SystemReady → SessionCreated → SessionRunning
//	SessionRunning → SessionStopping → DesktopOnly
//	any → SessionLost → RecreatePending → DesktopOnly
package session
