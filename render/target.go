// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"image"
	"image/color"

	"github.com/gogpu/gputypes"
)

// RenderTarget defines where rendering output goes.
//
// Targets may support CPU access (Pixels), GPU access (TextureView), or both.
// The Viewport implementation chooses the appropriate access method.
type RenderTarget interface {
	// Width returns the target width in pixels.
	Width() int

	// Height returns the target height in pixels.
	Height() int

	// Format returns the pixel format of the target.
	Format() gputypes.TextureFormat

	// TextureView returns the GPU texture view for this target.
	// Returns nil for CPU-only targets.
	TextureView() TextureView

	// Pixels returns direct access to pixel data.
	// Returns nil for GPU-only targets.
	Pixels() []byte

	// Stride returns the number of bytes per row.
	Stride() int
}

// SwapchainImage identifies one runtime-owned swapchain image handed to a
// TextureAdapter.
type SwapchainImage struct {
	// Handle is the native image: a VkImage or a GL texture name.
	Handle uint64

	// Eye and Index locate the image in the per-eye ring.
	Eye, Index int

	Width, Height int
	SampleCount   uint32
	Format        gputypes.TextureFormat
}

// TextureAdapter turns runtime-owned swapchain images into engine render
// targets.
type TextureAdapter interface {
	// WrapSwapchainImage returns a render target drawing into img.
	// The target does not own img.
	WrapSwapchainImage(img SwapchainImage) (RenderTarget, error)

	// DestroyTarget releases the engine resources of a wrapped target.
	DestroyTarget(t RenderTarget)
}

// PixmapTarget is a CPU-backed render target using *image.RGBA.
//
// Example:
//
//	target := render.NewPixmapTarget(1440, 1600)
//	viewport.Render(target, world, camera, false, nil)
//	img := target.Image()
type PixmapTarget struct {
	img *image.RGBA
}

// NewPixmapTarget creates a new CPU-backed render target.
func NewPixmapTarget(width, height int) *PixmapTarget {
	return &PixmapTarget{
		img: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
}

// NewPixmapTargetFromImage wraps an existing *image.RGBA as a render target.
// The image is used directly without copying.
func NewPixmapTargetFromImage(img *image.RGBA) *PixmapTarget {
	return &PixmapTarget{img: img}
}

// Width returns the target width in pixels.
func (t *PixmapTarget) Width() int { return t.img.Bounds().Dx() }

// Height returns the target height in pixels.
func (t *PixmapTarget) Height() int { return t.img.Bounds().Dy() }

// Format returns the pixel format (RGBA8).
func (t *PixmapTarget) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// TextureView returns nil as this is a CPU-only target.
func (t *PixmapTarget) TextureView() TextureView { return nil }

// Pixels returns direct access to the pixel data.
func (t *PixmapTarget) Pixels() []byte { return t.img.Pix }

// Stride returns the number of bytes per row.
func (t *PixmapTarget) Stride() int { return t.img.Stride }

// Image returns the underlying *image.RGBA.
// The returned image shares memory with the target.
func (t *PixmapTarget) Image() *image.RGBA { return t.img }

// Fill sets every pixel to c.
func (t *PixmapTarget) Fill(c color.RGBA) {
	pix := t.img.Pix
	if len(pix) < 4 {
		return
	}
	pix[0], pix[1], pix[2], pix[3] = c.R, c.G, c.B, c.A
	for filled := 4; filled < len(pix); filled *= 2 {
		copy(pix[filled:], pix[:filled])
	}
}

// Ensure PixmapTarget implements RenderTarget.
var _ RenderTarget = (*PixmapTarget)(nil)

// SwapchainTarget is a render target backed by a runtime-owned swapchain
// image. Engines that render on the GPU attach a TextureView; CPU
// simulations attach a Pixmap instead.
type SwapchainTarget struct {
	image  SwapchainImage
	view   TextureView
	pixmap *PixmapTarget
}

// NewSwapchainTarget wraps img. Either view or pixmap may be nil.
func NewSwapchainTarget(img SwapchainImage, view TextureView, pixmap *PixmapTarget) *SwapchainTarget {
	return &SwapchainTarget{image: img, view: view, pixmap: pixmap}
}

// Image returns the wrapped swapchain image.
func (t *SwapchainTarget) Image() SwapchainImage { return t.image }

// Width returns the image width in pixels.
func (t *SwapchainTarget) Width() int { return t.image.Width }

// Height returns the image height in pixels.
func (t *SwapchainTarget) Height() int { return t.image.Height }

// Format returns the negotiated swapchain format.
func (t *SwapchainTarget) Format() gputypes.TextureFormat { return t.image.Format }

// TextureView returns the engine view of the image, if any.
func (t *SwapchainTarget) TextureView() TextureView { return t.view }

// Pixels returns the CPU backing of a simulated image, if any.
func (t *SwapchainTarget) Pixels() []byte {
	if t.pixmap == nil {
		return nil
	}
	return t.pixmap.Pixels()
}

// Stride returns the row pitch of the CPU backing, or 0.
func (t *SwapchainTarget) Stride() int {
	if t.pixmap == nil {
		return 0
	}
	return t.pixmap.Stride()
}

// Pixmap returns the CPU backing of a simulated image, if any.
func (t *SwapchainTarget) Pixmap() *PixmapTarget { return t.pixmap }

// Destroy releases the texture view.
func (t *SwapchainTarget) Destroy() {
	if t.view != nil {
		t.view.Destroy()
		t.view = nil
	}
	t.pixmap = nil
}

// Ensure SwapchainTarget implements RenderTarget.
var _ RenderTarget = (*SwapchainTarget)(nil)
