// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package frame runs the XR frame loop as a handoff between two
// execution contexts.
//
// The render context calls RenderTick once per iteration, after the
// session machine's Tick. RenderTick submits the frame the collect
// context has published, resampling eye poses just before rendering,
// and then prepares the next frame: WaitFrame, BeginFrame and view
// location into the Predicted pose snapshot.
//
// The collect context calls Collect. Collect claims the prepared frame,
// points each eye camera at the Predicted poses, builds both draw lists
// and publishes them. Only then may RenderTick submit the frame.
//
// The contexts share nothing but the pose cache and a few atomic flags:
//
//	pending   a frame is begun and not yet ended (render context)
//	collect   NotStarted → InProgress → Done claim state (collect context)
//	prepared  the frame's draw lists are published (collect context)
//	skip      the runtime asked not to render this frame
//
// A frame that cannot be completed is always ended with zero layers so
// the runtime's frame timing never stalls.
package frame
