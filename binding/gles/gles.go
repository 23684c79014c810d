// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gles binds OpenGL renderers to XR sessions.
//
// Importing the package registers the adapter under binding.GLES.
// The session must be created while the engine's GL context is current,
// so CreateSession returns binding.ErrDeferred off the render thread
// instead of making the context current elsewhere. Per-eye collection
// always runs sequentially.
package gles

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/gles/gl"

	"github.com/gogpu/xrframe/binding"
	"github.com/gogpu/xrframe/internal/xrlog"
	"github.com/gogpu/xrframe/render"
	"github.com/gogpu/xrframe/xr"
)

// Extension is the instance extension of the binding.
const Extension = "XR_KHR_opengl_enable"

// Formats maps GL internal format values to engine texture formats.
var Formats = binding.FormatTable{
	gl.RGBA8:             gputypes.TextureFormatRGBA8Unorm,
	gl.SRGB8_ALPHA8:      gputypes.TextureFormatRGBA8UnormSrgb,
	gl.RGBA16F:           gputypes.TextureFormatRGBA16Float,
	gl.DEPTH24_STENCIL8:  gputypes.TextureFormatDepth24PlusStencil8,
	gl.DEPTH_COMPONENT32: gputypes.TextureFormatDepth32Float,
}

func init() {
	binding.Register(binding.GLES, func() binding.Adapter { return New() })
}

// Adapter is the OpenGL graphics binding.
type Adapter struct {
	*binding.Core
}

// New returns an OpenGL adapter.
func New() *Adapter {
	return &Adapter{Core: binding.NewCore(binding.CoreConfig{
		Name:        binding.GLES,
		Backend:     gputypes.BackendGL,
		Extension:   Extension,
		Formats:     Formats,
		DepthFormat: gputypes.TextureFormatDepth24PlusStencil8,
		ImageType:   xr.TypeSwapchainImageOpenGL,
	})}
}

// IsCompatible implements binding.Adapter.
func (a *Adapter) IsCompatible(r render.Renderer) bool {
	return r != nil && r.Backend() == gputypes.BackendGL && r.NativeHandles().Context != 0
}

// CreateSession implements binding.Adapter.
func (a *Adapter) CreateSession(ctx binding.Context, r render.Renderer) (xr.Session, error) {
	if !r.OnRenderThread() {
		xrlog.Logger().Debug("gles: session creation deferred to the render thread")
		return 0, binding.ErrDeferred
	}
	h := r.NativeHandles()
	return a.CreateSessionWith(ctx, &xr.GraphicsBindingOpenGL{
		Type:     xr.TypeGraphicsBindingOpenGLXlib,
		Display:  h.Display,
		Drawable: h.Drawable,
		Context:  h.Context,
	})
}

// SupportsParallelCollect implements binding.Adapter. A GL context is
// current on one thread only.
func (a *Adapter) SupportsParallelCollect(render.Renderer) bool { return false }

var _ binding.Adapter = (*Adapter)(nil)
