// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package vulkan binds Vulkan renderers to XR sessions.
//
// Importing the package registers the adapter under binding.Vulkan.
// Session creation may run on any goroutine, and both eyes can be
// collected in parallel when the device has at least MinParallelQueues
// submission queues.
package vulkan

import (
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/vulkan/vk"

	"github.com/gogpu/xrframe/binding"
	"github.com/gogpu/xrframe/render"
	"github.com/gogpu/xrframe/xr"
)

// MinParallelQueues is the queue count from which per-eye collection
// runs in parallel.
const MinParallelQueues = 2

// Extension is the instance extension of the binding.
const Extension = "XR_KHR_vulkan_enable2"

// Formats maps VkFormat values to engine texture formats.
var Formats = binding.FormatTable{
	int64(vk.FormatR8g8b8a8Unorm):      gputypes.TextureFormatRGBA8Unorm,
	int64(vk.FormatR8g8b8a8Srgb):       gputypes.TextureFormatRGBA8UnormSrgb,
	int64(vk.FormatB8g8r8a8Unorm):      gputypes.TextureFormatBGRA8Unorm,
	int64(vk.FormatB8g8r8a8Srgb):       gputypes.TextureFormatBGRA8UnormSrgb,
	int64(vk.FormatR16g16b16a16Sfloat): gputypes.TextureFormatRGBA16Float,
	int64(vk.FormatD32Sfloat):          gputypes.TextureFormatDepth32Float,
	int64(vk.FormatD24UnormS8Uint):     gputypes.TextureFormatDepth24PlusStencil8,
}

func init() {
	binding.Register(binding.Vulkan, func() binding.Adapter { return New() })
}

// Adapter is the Vulkan graphics binding.
type Adapter struct {
	*binding.Core
}

// New returns a Vulkan adapter.
func New() *Adapter {
	return &Adapter{Core: binding.NewCore(binding.CoreConfig{
		Name:        binding.Vulkan,
		Backend:     gputypes.BackendVulkan,
		Extension:   Extension,
		Formats:     Formats,
		DepthFormat: gputypes.TextureFormatDepth32Float,
		ImageType:   xr.TypeSwapchainImageVulkan,
	})}
}

// IsCompatible implements binding.Adapter.
func (a *Adapter) IsCompatible(r render.Renderer) bool {
	return r != nil && r.Backend() == gputypes.BackendVulkan && r.NativeHandles().Device != 0
}

// CreateSession implements binding.Adapter. Vulkan handles are valid on
// every thread, so the call is never deferred.
func (a *Adapter) CreateSession(ctx binding.Context, r render.Renderer) (xr.Session, error) {
	h := r.NativeHandles()
	return a.CreateSessionWith(ctx, &xr.GraphicsBindingVulkan{
		Type:             xr.TypeGraphicsBindingVulkan,
		Instance:         h.Instance,
		PhysicalDevice:   h.PhysicalDevice,
		Device:           h.Device,
		QueueFamilyIndex: h.QueueFamilyIndex,
		QueueIndex:       h.QueueIndex,
	})
}

// SupportsParallelCollect implements binding.Adapter.
func (a *Adapter) SupportsParallelCollect(r render.Renderer) bool {
	return r != nil && r.QueueCount() >= MinParallelQueues
}

var _ binding.Adapter = (*Adapter)(nil)
