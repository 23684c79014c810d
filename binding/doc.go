// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package binding binds an engine renderer to an XR session.
//
// An [Adapter] exists once per graphics backend. It builds the backend's
// session create struct, negotiates per-eye swapchains, wraps each
// runtime-owned image as an engine render target and performs the
// acquire, wait and release calls of the frame loop.
//
// Adapters register themselves from init functions in their own
// packages, like database drivers:
//
//	import (
//	    "github.com/gogpu/xrframe/binding"
//	    _ "github.com/gogpu/xrframe/binding/gles"
//	    _ "github.com/gogpu/xrframe/binding/vulkan"
//	)
//
//	adapter, err := binding.Select(renderer)
//
// [Select] is called once per renderer; the frame loop never re-checks
// the backend.
//
// # Swapchain negotiation
//
// For each eye the adapter takes the runtime's format list and prefers
// an 8-bit sRGB color format, then an 8-bit linear one, and otherwise the
// first listed format it can map to a [gputypes.TextureFormat]. Sample
// counts are tried from the runtime-recommended value down to 1.
//
// [Core] owns the swapchains and the per-image metadata for their whole
// lifetime and releases both in DestroySwapchains.
package binding
