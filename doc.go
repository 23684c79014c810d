// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package xrframe drives the frame lifecycle of an OpenXR stereo
// headset.
//
// # Overview
//
// A [Headset] negotiates a session with an XR runtime, manages the
// per-eye swapchains and pipelines every frame across two contexts:
//
//   - The render context calls [Headset.RenderTick]. It polls runtime
//     events, resamples poses just before rendering, renders and
//     submits the previous frame, then waits for and begins the next.
//   - The collect context calls [Headset.Collect]. It builds each eye's
//     draw list from the predicted poses of the pending frame and
//     publishes it back to the render context.
//
// The two contexts meet only through atomic flags and the pose cache,
// so they can run on separate goroutines.
//
// # Quick Start
//
//	rt := noop.New(noop.Config{})
//	hs, err := xrframe.New(rt, renderer, viewports, scenes,
//	    xrframe.WithTrackerRoles("waist"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer hs.Close()
//	hs.Start()
//
//	go func() {
//	    for ctx.Err() == nil {
//	        if err := hs.Collect(); err != nil {
//	            log.Print(err)
//	        }
//	    }
//	}()
//	for ctx.Err() == nil {
//	    hs.RenderTick()
//	}
//
// # Runtime Loss
//
// Session and instance loss are classified and recovered from without
// host involvement: the session is torn down in dependency order and
// recreated after [DefaultRetryInterval]. Nothing in this package
// terminates the process on a bad frame.
//
// # Packages
//
//   - xr: runtime contract and result codes
//   - xr/noop: simulated runtime for tests and demos
//   - session: session state machine
//   - binding: graphics binding adapters (binding/vulkan, binding/gles)
//   - frame: frame pipeline
//   - posecache, input: tracked poses
//   - render: engine-side collaborator interfaces
//   - loader, config: host setup
package xrframe

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0-alpha.1"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0

	// VersionPrerelease is the prerelease identifier
	VersionPrerelease = "alpha.1"
)
