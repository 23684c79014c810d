// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package binding

import (
	"errors"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/xrframe/render"
	"github.com/gogpu/xrframe/xr"
)

// Adapter names.
const (
	Vulkan = "vulkan"
	GLES   = "gles"
)

// Sentinel errors.
var (
	// ErrDeferred reports that session creation must run on the render
	// thread. The caller retries on the next render-thread tick.
	ErrDeferred = errors.New("binding: session creation deferred to the render thread")

	// ErrViewCount reports a view configuration that is not stereo.
	ErrViewCount = errors.New("binding: stereo rendering needs exactly 2 views")

	// ErrNoFormat reports that no runtime format maps to an engine format.
	ErrNoFormat = errors.New("binding: no usable swapchain color format")

	// ErrNoAdapter reports that no registered adapter accepts the renderer.
	ErrNoAdapter = errors.New("binding: no compatible graphics binding")

	// ErrNoSwapchain reports an eye without a swapchain.
	ErrNoSwapchain = errors.New("binding: no swapchain for eye")

	// ErrNotAcquired reports an image operation without an acquired image.
	ErrNotAcquired = errors.New("binding: no acquired image")
)

// ViewCount is the number of views of the stereo configuration.
const ViewCount = 2

// Context carries the runtime handles an adapter works with.
type Context struct {
	Runtime  xr.Runtime
	Instance xr.Instance
	System   xr.SystemID

	// Session is set for swapchain creation.
	Session xr.Session
}

// Adapter binds one graphics backend to the XR runtime.
//
// Thread Safety: every method except IsCompatible and
// SupportsParallelCollect is called from the render context.
type Adapter interface {
	// Name returns the registry name.
	Name() string

	// Backend returns the graphics API the adapter serves.
	Backend() gputypes.Backend

	// Extension returns the instance extension that enables the
	// adapter's graphics binding.
	Extension() string

	// IsCompatible reports whether the adapter can bind r.
	IsCompatible(r render.Renderer) bool

	// CreateSession creates the session with the backend's graphics
	// binding. It returns ErrDeferred when it must run on the render
	// thread and the caller is elsewhere.
	CreateSession(ctx Context, r render.Renderer) (xr.Session, error)

	// CreateSwapchains creates one swapchain per eye and wraps every
	// image. On failure everything created so far is destroyed.
	CreateSwapchains(ctx Context, r render.Renderer) error

	// Swapchains returns the per-eye swapchains, nil before creation.
	Swapchains() []*Swapchain

	// AcquireImage acquires the next image of eye's swapchain.
	AcquireImage(eye int) (uint32, error)

	// WaitImage waits for the acquired image with an unbounded timeout.
	WaitImage(eye int) error

	// ReleaseImage releases the acquired image.
	ReleaseImage(eye int) error

	// WaitForGPUIdle blocks until the device has finished all work.
	WaitForGPUIdle() error

	// SupportsParallelCollect reports whether both eyes can be
	// collected concurrently on r.
	SupportsParallelCollect(r render.Renderer) bool

	// DestroySwapchains releases every swapchain and engine resource.
	DestroySwapchains()
}
