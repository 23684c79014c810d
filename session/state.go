// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package session

import "github.com/gogpu/xrframe/xr"

// State is the lifecycle state of a Machine.
type State int32

const (
	// DesktopOnly is the initial state and the state after teardown.
	// The machine probes for a runtime by creating an instance.
	DesktopOnly State = iota

	// InstanceReady means an instance exists and the system is queried.
	InstanceReady

	// SystemReady means a system id is known; the session and its
	// swapchains are created next.
	SystemReady

	// SessionCreated means session and swapchains exist and the machine
	// waits for the runtime to start the session.
	SessionCreated

	// SessionRunning means the runtime reported the session
	// synchronized, visible or focused.
	SessionRunning

	// SessionStopping means the runtime asked the session to stop.
	SessionStopping

	// SessionLost means a loss was signaled and is being handled.
	SessionLost

	// RecreatePending means the machine waits out the retry interval
	// after a loss before probing again.
	RecreatePending
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case DesktopOnly:
		return "DesktopOnly"
	case InstanceReady:
		return "InstanceReady"
	case SystemReady:
		return "SystemReady"
	case SessionCreated:
		return "SessionCreated"
	case SessionRunning:
		return "SessionRunning"
	case SessionStopping:
		return "SessionStopping"
	case SessionLost:
		return "SessionLost"
	case RecreatePending:
		return "RecreatePending"
	default:
		return "Unknown"
	}
}

// LossReason classifies why a session went away.
type LossReason int32

const (
	LossNone LossReason = iota
	LossSessionExiting
	LossSessionLossPending
	LossSessionLostError
	LossInstanceLostError
	LossRuntimeUnavailable
	LossShutdownRequested
)

// String returns the reason name.
func (r LossReason) String() string {
	switch r {
	case LossNone:
		return "none"
	case LossSessionExiting:
		return "session-exiting"
	case LossSessionLossPending:
		return "session-loss-pending"
	case LossSessionLostError:
		return "session-lost-error"
	case LossInstanceLostError:
		return "instance-lost-error"
	case LossRuntimeUnavailable:
		return "runtime-unavailable"
	case LossShutdownRequested:
		return "shutdown-requested"
	default:
		return "unknown"
	}
}

// InvalidatesInstance reports whether the instance must be destroyed
// along with the session.
func (r LossReason) InvalidatesInstance() bool {
	switch r {
	case LossSessionExiting, LossInstanceLostError, LossRuntimeUnavailable, LossShutdownRequested:
		return true
	}
	return false
}

// Classify maps a runtime error to a loss reason. Errors that do not
// invalidate the session map to LossNone.
func Classify(err error) LossReason {
	if err == nil {
		return LossNone
	}
	switch {
	case xr.IsInstanceLoss(err):
		return LossInstanceLostError
	case xr.ResultOf(err) == xr.ErrorSessionLost:
		return LossSessionLostError
	case xr.ResultOf(err) == xr.SessionLossPending:
		return LossSessionLossPending
	case xr.IsRuntimeUnavailable(err):
		return LossRuntimeUnavailable
	}
	return LossNone
}
