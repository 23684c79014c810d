// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package binding

import (
	"errors"
	"fmt"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/xrframe/internal/xrlog"
	"github.com/gogpu/xrframe/render"
	"github.com/gogpu/xrframe/xr"
)

// Image is one swapchain image with its engine-side wrappers.
type Image struct {
	Native xr.SwapchainImage
	Target render.RenderTarget

	// Depth is the engine depth attachment; nil when the renderer has
	// no HAL device.
	Depth hal.Texture
}

// Swapchain is the swapchain of one eye.
type Swapchain struct {
	Handle       xr.Swapchain
	Eye          int
	Width        uint32
	Height       uint32
	SampleCount  uint32
	NativeFormat int64
	Format       gputypes.TextureFormat

	// Images is sized to the runtime's image count when the swapchain
	// is created and released with it.
	Images []Image

	index    uint32
	acquired bool
}

// Current returns the acquired image, or nil.
func (s *Swapchain) Current() *Image {
	if !s.acquired {
		return nil
	}
	return &s.Images[s.index]
}

// Acquired reports whether an image is held and returns its index.
func (s *Swapchain) Acquired() (uint32, bool) { return s.index, s.acquired }

// Rect returns the full image rectangle.
func (s *Swapchain) Rect() xr.Rect2Di {
	return xr.Rect2Di{Extent: xr.Extent2Di{Width: int32(s.Width), Height: int32(s.Height)}}
}

// CoreConfig describes a backend for Core.
type CoreConfig struct {
	Name        string
	Backend     gputypes.Backend
	Extension   string
	Formats     FormatTable
	DepthFormat gputypes.TextureFormat

	// ImageType is the structure type the runtime tags images with.
	ImageType xr.StructureType
}

// Core implements the backend-independent part of an Adapter: swapchain
// negotiation, per-image wrapping and the acquire/wait/release calls.
// Backend adapters embed it and add session creation.
type Core struct {
	cfg CoreConfig

	rt         xr.Runtime
	textures   render.TextureAdapter
	device     hal.Device
	swapchains []*Swapchain
}

// NewCore returns a Core for the backend described by cfg.
func NewCore(cfg CoreConfig) *Core {
	return &Core{cfg: cfg}
}

// Name implements Adapter.
func (c *Core) Name() string { return c.cfg.Name }

// Backend implements Adapter.
func (c *Core) Backend() gputypes.Backend { return c.cfg.Backend }

// Extension implements Adapter.
func (c *Core) Extension() string { return c.cfg.Extension }

// Formats returns the backend's format table.
func (c *Core) Formats() FormatTable { return c.cfg.Formats }

// CreateSessionWith creates a session whose create struct chains next.
func (c *Core) CreateSessionWith(ctx Context, next any) (xr.Session, error) {
	s, err := ctx.Runtime.CreateSession(ctx.Instance, &xr.SessionCreateInfo{
		Type:     xr.TypeSessionCreateInfo,
		Next:     next,
		SystemID: ctx.System,
	})
	if err != nil {
		return 0, fmt.Errorf("binding: %s: create session: %w", c.cfg.Name, err)
	}
	c.rt = ctx.Runtime
	return s, nil
}

// CreateSwapchains implements Adapter.
func (c *Core) CreateSwapchains(ctx Context, r render.Renderer) error {
	if len(c.swapchains) != 0 {
		return nil
	}
	c.rt = ctx.Runtime
	c.textures = r.Textures()
	c.device, _ = render.HalDevice(r)

	views, err := ctx.Runtime.EnumerateViewConfigurationViews(ctx.Instance, ctx.System, xr.ViewConfigurationPrimaryStereo)
	if err != nil {
		return fmt.Errorf("binding: enumerate views: %w", err)
	}
	if len(views) != ViewCount {
		return fmt.Errorf("%w: runtime reports %d", ErrViewCount, len(views))
	}
	supported, err := ctx.Runtime.EnumerateSwapchainFormats(ctx.Session)
	if err != nil {
		return fmt.Errorf("binding: enumerate formats: %w", err)
	}
	native, format, err := SelectColorFormat(supported, c.cfg.Formats)
	if err != nil {
		return err
	}
	xrlog.Logger().Debug("binding: swapchain format", "adapter", c.cfg.Name, "format", format.String(), "native", native)

	for eye, v := range views {
		sc, err := c.createSwapchain(ctx, eye, &v, native, format)
		if err != nil {
			c.DestroySwapchains()
			return err
		}
		c.swapchains = append(c.swapchains, sc)
		if err := c.wrapImages(sc); err != nil {
			c.DestroySwapchains()
			return err
		}
	}
	return nil
}

func (c *Core) createSwapchain(ctx Context, eye int, v *xr.ViewConfigurationView, native int64, format gputypes.TextureFormat) (*Swapchain, error) {
	info := xr.SwapchainCreateInfo{
		Type:       xr.TypeSwapchainCreateInfo,
		UsageFlags: xr.SwapchainUsageColorAttachment | xr.SwapchainUsageSampled,
		Format:     native,
		Width:      v.RecommendedImageRectWidth,
		Height:     v.RecommendedImageRectHeight,
		FaceCount:  1,
		ArraySize:  1,
		MipCount:   1,
	}
	var lastErr error
	for _, samples := range SampleCounts(v.RecommendedSwapchainSampleCount) {
		info.SampleCount = samples
		h, err := ctx.Runtime.CreateSwapchain(ctx.Session, &info)
		if err == nil {
			return &Swapchain{
				Handle:       h,
				Eye:          eye,
				Width:        info.Width,
				Height:       info.Height,
				SampleCount:  samples,
				NativeFormat: native,
				Format:       format,
			}, nil
		}
		if xr.IsSessionLoss(err) || xr.IsInstanceLoss(err) {
			return nil, fmt.Errorf("binding: create swapchain for eye %d: %w", eye, err)
		}
		xrlog.Logger().Debug("binding: swapchain sample count rejected", "eye", eye, "samples", samples, "err", err)
		lastErr = err
	}
	return nil, fmt.Errorf("binding: create swapchain for eye %d: %w", eye, lastErr)
}

func (c *Core) wrapImages(sc *Swapchain) error {
	natives, err := c.rt.EnumerateSwapchainImages(sc.Handle)
	if err != nil {
		return fmt.Errorf("binding: enumerate images for eye %d: %w", sc.Eye, err)
	}
	sc.Images = make([]Image, len(natives))
	for i, n := range natives {
		if c.cfg.ImageType != 0 && n.Type != c.cfg.ImageType {
			return fmt.Errorf("binding: eye %d image %d has structure type %d, want %d", sc.Eye, i, n.Type, c.cfg.ImageType)
		}
		target, err := c.textures.WrapSwapchainImage(render.SwapchainImage{
			Handle:      n.Image,
			Eye:         sc.Eye,
			Index:       i,
			Width:       int(sc.Width),
			Height:      int(sc.Height),
			SampleCount: sc.SampleCount,
			Format:      sc.Format,
		})
		if err != nil {
			return fmt.Errorf("binding: wrap eye %d image %d: %w", sc.Eye, i, err)
		}
		sc.Images[i] = Image{Native: n, Target: target}

		if c.device != nil {
			desc := render.DepthTextureDescriptor(fmt.Sprintf("xr-eye%d-depth%d", sc.Eye, i),
				sc.Width, sc.Height, sc.SampleCount, c.cfg.DepthFormat)
			depth, err := c.device.CreateTexture(desc.HAL())
			if err != nil {
				return fmt.Errorf("binding: depth texture for eye %d image %d: %w", sc.Eye, i, err)
			}
			sc.Images[i].Depth = depth
		}
	}
	return nil
}

// Swapchains implements Adapter.
func (c *Core) Swapchains() []*Swapchain { return c.swapchains }

func (c *Core) swapchain(eye int) (*Swapchain, error) {
	if eye < 0 || eye >= len(c.swapchains) {
		return nil, fmt.Errorf("%w %d", ErrNoSwapchain, eye)
	}
	return c.swapchains[eye], nil
}

// AcquireImage implements Adapter.
func (c *Core) AcquireImage(eye int) (uint32, error) {
	sc, err := c.swapchain(eye)
	if err != nil {
		return 0, err
	}
	idx, err := c.rt.AcquireSwapchainImage(sc.Handle, &xr.SwapchainImageAcquireInfo{Type: xr.TypeSwapchainImageAcquireInfo})
	if err != nil {
		return 0, err
	}
	if int(idx) >= len(sc.Images) {
		return 0, fmt.Errorf("binding: eye %d acquired image %d of %d", eye, idx, len(sc.Images))
	}
	sc.index, sc.acquired = idx, true
	return idx, nil
}

// WaitImage implements Adapter.
func (c *Core) WaitImage(eye int) error {
	sc, err := c.swapchain(eye)
	if err != nil {
		return err
	}
	if !sc.acquired {
		return ErrNotAcquired
	}
	return c.rt.WaitSwapchainImage(sc.Handle, &xr.SwapchainImageWaitInfo{
		Type:    xr.TypeSwapchainImageWaitInfo,
		Timeout: xr.InfiniteDuration,
	})
}

// ReleaseImage implements Adapter.
func (c *Core) ReleaseImage(eye int) error {
	sc, err := c.swapchain(eye)
	if err != nil {
		return err
	}
	if !sc.acquired {
		return ErrNotAcquired
	}
	sc.acquired = false
	return c.rt.ReleaseSwapchainImage(sc.Handle, &xr.SwapchainImageReleaseInfo{Type: xr.TypeSwapchainImageReleaseInfo})
}

// WaitForGPUIdle implements Adapter.
func (c *Core) WaitForGPUIdle() error {
	if c.device == nil {
		return nil
	}
	return c.device.WaitIdle()
}

// DestroySwapchains implements Adapter. Engine targets and depth textures
// go first, then the runtime swapchains.
func (c *Core) DestroySwapchains() {
	var errs []error
	for _, sc := range c.swapchains {
		for i := range sc.Images {
			img := &sc.Images[i]
			if img.Target != nil && c.textures != nil {
				c.textures.DestroyTarget(img.Target)
			}
			if img.Depth != nil && c.device != nil {
				c.device.DestroyTexture(img.Depth)
			}
		}
		sc.Images = nil
		sc.acquired = false
		if err := c.rt.DestroySwapchain(sc.Handle); err != nil {
			errs = append(errs, fmt.Errorf("eye %d: %w", sc.Eye, err))
		}
	}
	c.swapchains = nil
	if err := errors.Join(errs...); err != nil {
		xrlog.Logger().Warn("binding: destroy swapchains", "adapter", c.cfg.Name, "err", err)
	}
}
