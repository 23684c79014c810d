// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package noop provides an in-process OpenXR runtime simulation.
//
// The simulated runtime exposes one head-mounted display with a stereo
// view configuration, swaying head poses and two hand controllers. It
// enforces the frame call-ordering contract (WaitFrame before BeginFrame,
// no overlapping BeginFrame/EndFrame pairs, Acquire before Wait before
// Release) and the structure type tags of every input struct, recording
// each violation instead of crashing.
//
// Tests drive failure paths through fault injection:
//
//	rt := noop.New(noop.Config{})
//	rt.Fail(noop.CallAcquireSwapchainImage, xr.ErrorRuntimeFailure, 1)
//	rt.SetShouldRender(func(frame uint64) bool { return frame != 3 })
//	rt.LoseSession()
//
// Every call is appended to a call log available through Calls, and every
// EndFrame is recorded with its layer contents.
package noop
