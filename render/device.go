// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// DeviceHandle provides GPU device access from the host engine.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, so any
// gpucontext-compatible host can drive the XR layer directly.
type DeviceHandle = gpucontext.DeviceProvider

// HalProvider is implemented by hosts that expose their HAL device.
// The XR layer uses it to allocate per-image depth textures and to wait
// for GPU idle before releasing swapchains.
//
// The values are typed any to keep the interface free of a hard hal
// dependency in hosts; they must hold a hal.Device and a hal.Queue.
type HalProvider interface {
	HalDevice() any
	HalQueue() any
}

// HalDevice extracts the hal.Device behind h, if any.
func HalDevice(h any) (hal.Device, bool) {
	hp, ok := h.(HalProvider)
	if !ok {
		return nil, false
	}
	dev, ok := hp.HalDevice().(hal.Device)
	return dev, ok && dev != nil
}

// TextureDescriptor describes an engine-owned texture.
type TextureDescriptor struct {
	// Label is an optional debug label for the texture.
	Label string

	// Width and Height are the texture size in pixels.
	Width, Height uint32

	// SampleCount is the number of samples per pixel. Use 1 for no
	// multisampling.
	SampleCount uint32

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage
}

// DepthTextureDescriptor returns the descriptor of a depth attachment
// matching a color target of the given size and sample count.
func DepthTextureDescriptor(label string, width, height, samples uint32, format gputypes.TextureFormat) TextureDescriptor {
	if samples == 0 {
		samples = 1
	}
	return TextureDescriptor{
		Label:       label,
		Width:       width,
		Height:      height,
		SampleCount: samples,
		Format:      format,
		Usage:       gputypes.TextureUsageRenderAttachment,
	}
}

// HAL converts d to a single-level 2D hal texture descriptor.
func (d *TextureDescriptor) HAL() *hal.TextureDescriptor {
	return &hal.TextureDescriptor{
		Label: d.Label,
		Size: hal.Extent3D{
			Width:              d.Width,
			Height:             d.Height,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   d.SampleCount,
		Dimension:     gputypes.TextureDimension2D,
		Format:        d.Format,
		Usage:         d.Usage,
	}
}

// TextureView represents a view into a texture.
type TextureView interface {
	// Destroy releases resources associated with this view.
	Destroy()
}
