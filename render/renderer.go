// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import "github.com/gogpu/gputypes"

// Renderer is the engine renderer the XR layer binds a session to.
//
// A graphics binding adapter inspects Backend and NativeHandles to build
// the runtime's session create struct, wraps swapchain images through
// Textures, and calls Flush before each frame is submitted.
//
// Thread Safety: OnRenderThread may be called from any goroutine. All
// other methods are called from the render context.
type Renderer interface {
	DeviceHandle

	// Backend returns the graphics API the engine renders with.
	Backend() gputypes.Backend

	// NativeHandles returns the raw API handles bound into the session.
	NativeHandles() NativeHandles

	// OnRenderThread reports whether the caller runs on the goroutine
	// that owns the graphics context.
	OnRenderThread() bool

	// QueueCount returns the number of independent submission-capable
	// queues the device exposes.
	QueueCount() int

	// Textures returns the adapter that wraps swapchain images.
	Textures() TextureAdapter

	// Flush submits pending GPU work.
	Flush() error
}

// NativeHandles carries the raw graphics API handles of an engine
// device. Only the fields of the engine's backend are set.
type NativeHandles struct {
	// Vulkan.
	Instance         uintptr
	PhysicalDevice   uintptr
	Device           uintptr
	QueueFamilyIndex uint32
	QueueIndex       uint32

	// OpenGL on Xlib.
	Display  uintptr
	Drawable uintptr
	Context  uintptr
}
