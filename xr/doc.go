// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package xr describes the contract between xrframe and an OpenXR runtime.
//
// The package mirrors the subset of the OpenXR API that a stereo frame
// coordinator needs: instance and system discovery, session lifecycle,
// swapchains, frame timing, view location and pose actions. Handles are
// opaque 64-bit values, every input struct carries a [StructureType] tag
// that must be set before each call, and timeouts are expressed in
// nanoseconds.
//
// A [Runtime] implementation wraps the native loader (through cgo or an
// FFI layer) or simulates one; see package xr/noop for the in-process
// simulation used by tests.
//
// # Results
//
// Runtime methods return nil on XR_SUCCESS and a [Result] for every other
// code, including qualified success codes such as [SessionLossPending].
// Use [Succeeded] to accept qualified successes and [ResultOf] to recover
// the code from a wrapped error:
//
//	if err := rt.EndFrame(s, &info); !xr.Succeeded(err) {
//	    // failure path
//	}
package xr
