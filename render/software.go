// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"errors"
	"fmt"
	"image/color"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/xrframe/linear"
)

// StaticWorld is a World with a fixed number of drawable objects.
type StaticWorld struct {
	WorldName string
	Objects   int
}

// Name implements World.
func (w *StaticWorld) Name() string { return w.WorldName }

// ObjectCount returns the number of drawable objects.
func (w *StaticWorld) ObjectCount() int { return w.Objects }

// DrawList is the CPU-side result of one CollectVisible call.
type DrawList struct {
	// Pose is the camera pose the list was collected with.
	Pose     linear.M4
	Commands int
	World    string
}

// SoftwareViewport is a CPU Viewport. Collecting records the camera pose
// and the number of visible objects; rendering fills the target with a
// color derived from the published list.
type SoftwareViewport struct {
	eye    int
	camera *BasicCamera

	// CollectHook, if set, runs at the start of every CollectVisible.
	// An error or panic from it fails the collection.
	CollectHook func(eye int) error

	mu       sync.Mutex
	building DrawList
	ready    DrawList
	collects int
	renders  int
	swaps    int
	rendered linear.M4
}

// NewSoftwareViewport returns the viewport of one eye.
func NewSoftwareViewport(eye int) *SoftwareViewport {
	return &SoftwareViewport{eye: eye, camera: NewBasicCamera()}
}

// Camera implements Viewport.
func (v *SoftwareViewport) Camera() Camera { return v.camera }

// CollectVisible implements Viewport.
func (v *SoftwareViewport) CollectVisible(world World, camera Camera, _, _ bool) (int, error) {
	if hook := v.CollectHook; hook != nil {
		if err := hook(v.eye); err != nil {
			return 0, err
		}
	}
	if world == nil {
		return 0, errors.New("render: nil world")
	}
	n := 1
	if w, ok := world.(interface{ ObjectCount() int }); ok {
		n = w.ObjectCount()
	}
	list := DrawList{Pose: camera.RenderPose(), Commands: n, World: world.Name()}

	v.mu.Lock()
	v.building = list
	v.collects++
	v.mu.Unlock()
	return n, nil
}

// SwapBuffers implements Viewport.
func (v *SoftwareViewport) SwapBuffers(bool) {
	v.mu.Lock()
	v.ready = v.building
	v.building = DrawList{}
	v.swaps++
	v.mu.Unlock()
}

// Render implements Viewport.
func (v *SoftwareViewport) Render(target RenderTarget, _ World, camera Camera, _ bool, _ any) error {
	if target == nil {
		return errors.New("render: nil target")
	}
	v.mu.Lock()
	list := v.ready
	v.renders++
	v.rendered = camera.RenderPose()
	v.mu.Unlock()

	if st, ok := target.(*SwapchainTarget); ok && st.Pixmap() != nil {
		st.Pixmap().Fill(v.shade(list))
	} else if pt, ok := target.(*PixmapTarget); ok {
		pt.Fill(v.shade(list))
	}
	return nil
}

// shade derives a stable color from the eye and the head position.
func (v *SoftwareViewport) shade(list DrawList) color.RGBA {
	t := list.Pose.Translation()
	g := uint8(int(t[1]*100) & 0xff)
	b := uint8(int(t[0]*1000) & 0xff)
	if v.eye == 0 {
		return color.RGBA{R: 200, G: g, B: b, A: 255}
	}
	return color.RGBA{R: b, G: g, B: 200, A: 255}
}

// Ready returns the published draw list.
func (v *SoftwareViewport) Ready() DrawList {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.ready
}

// LastRenderPose returns the camera pose of the most recent Render.
func (v *SoftwareViewport) LastRenderPose() linear.M4 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.rendered
}

// Counts returns how many times each method ran.
func (v *SoftwareViewport) Counts() (collects, swaps, renders int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.collects, v.swaps, v.renders
}

// SoftwareTextures is a TextureAdapter that backs every swapchain image
// with an optional CPU pixmap.
type SoftwareTextures struct {
	cpu bool

	mu      sync.Mutex
	live    map[*SwapchainTarget]struct{}
	wrapErr error
}

// NewSoftwareTextures returns an adapter. With cpu set, each wrapped
// image gets a pixmap so rendered frames can be inspected.
func NewSoftwareTextures(cpu bool) *SoftwareTextures {
	return &SoftwareTextures{cpu: cpu, live: make(map[*SwapchainTarget]struct{})}
}

// FailWrap makes subsequent WrapSwapchainImage calls return err.
func (t *SoftwareTextures) FailWrap(err error) {
	t.mu.Lock()
	t.wrapErr = err
	t.mu.Unlock()
}

// WrapSwapchainImage implements TextureAdapter.
func (t *SoftwareTextures) WrapSwapchainImage(img SwapchainImage) (RenderTarget, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.wrapErr != nil {
		return nil, t.wrapErr
	}
	if img.Width <= 0 || img.Height <= 0 {
		return nil, fmt.Errorf("render: invalid swapchain image size %dx%d", img.Width, img.Height)
	}
	var pm *PixmapTarget
	if t.cpu {
		pm = NewPixmapTarget(img.Width, img.Height)
	}
	st := NewSwapchainTarget(img, nil, pm)
	t.live[st] = struct{}{}
	return st, nil
}

// DestroyTarget implements TextureAdapter.
func (t *SoftwareTextures) DestroyTarget(rt RenderTarget) {
	st, ok := rt.(*SwapchainTarget)
	if !ok {
		return
	}
	t.mu.Lock()
	delete(t.live, st)
	t.mu.Unlock()
	st.Destroy()
}

// Live returns the number of wrapped targets not yet destroyed.
func (t *SoftwareTextures) Live() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.live)
}

// Target returns a live target wrapping the image of eye at index.
func (t *SoftwareTextures) Target(eye, index int) (*SwapchainTarget, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for st := range t.live {
		if st.image.Eye == eye && st.image.Index == index {
			return st, true
		}
	}
	return nil, false
}

// SoftwareRenderer is a Renderer backed by the wgpu noop HAL device. It
// reports whichever backend it is configured with so that both graphics
// bindings can be exercised without a GPU.
type SoftwareRenderer struct {
	backend  gputypes.Backend
	queues   int
	device   hal.Device
	queue    hal.Queue
	textures *SoftwareTextures

	renderThread atomic.Pointer[func() bool]
	flushes      atomic.Int64
}

// NewSoftwareRenderer opens a noop HAL device.
func NewSoftwareRenderer(backend gputypes.Backend, queues int, textures *SoftwareTextures) (*SoftwareRenderer, error) {
	instance, err := noop.API{}.CreateInstance(nil)
	if err != nil {
		return nil, fmt.Errorf("render: create noop instance: %w", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return nil, errors.New("render: no noop adapter")
	}
	open, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		return nil, fmt.Errorf("render: open noop device: %w", err)
	}
	if queues < 1 {
		queues = 1
	}
	if textures == nil {
		textures = NewSoftwareTextures(false)
	}
	return &SoftwareRenderer{
		backend:  backend,
		queues:   queues,
		device:   open.Device,
		queue:    open.Queue,
		textures: textures,
	}, nil
}

// SetRenderThread installs the predicate behind OnRenderThread.
func (r *SoftwareRenderer) SetRenderThread(fn func() bool) {
	r.renderThread.Store(&fn)
}

// Device implements DeviceHandle. The noop device has no gpucontext view.
func (r *SoftwareRenderer) Device() gpucontext.Device { return nil }

// Queue implements DeviceHandle.
func (r *SoftwareRenderer) Queue() gpucontext.Queue { return nil }

// Adapter implements DeviceHandle.
func (r *SoftwareRenderer) Adapter() gpucontext.Adapter { return nil }

// SurfaceFormat implements DeviceHandle.
func (r *SoftwareRenderer) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8UnormSrgb
}

// AdapterInfo implements DeviceHandle.
func (r *SoftwareRenderer) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "Noop Adapter", Type: gpucontext.AdapterTypeSoftware}
}

// HalDevice implements HalProvider.
func (r *SoftwareRenderer) HalDevice() any { return r.device }

// HalQueue implements HalProvider.
func (r *SoftwareRenderer) HalQueue() any { return r.queue }

// Backend implements Renderer.
func (r *SoftwareRenderer) Backend() gputypes.Backend { return r.backend }

// NativeHandles implements Renderer with placeholder non-zero handles.
func (r *SoftwareRenderer) NativeHandles() NativeHandles {
	return NativeHandles{
		Instance:       1,
		PhysicalDevice: 1,
		Device:         1,
		Display:        1,
		Drawable:       1,
		Context:        1,
	}
}

// OnRenderThread implements Renderer. Without a predicate every caller
// counts as the render thread.
func (r *SoftwareRenderer) OnRenderThread() bool {
	if fn := r.renderThread.Load(); fn != nil && *fn != nil {
		return (*fn)()
	}
	return true
}

// QueueCount implements Renderer.
func (r *SoftwareRenderer) QueueCount() int { return r.queues }

// Textures implements Renderer.
func (r *SoftwareRenderer) Textures() TextureAdapter { return r.textures }

// Flush implements Renderer.
func (r *SoftwareRenderer) Flush() error {
	r.flushes.Add(1)
	return nil
}

// Flushes returns the number of Flush calls.
func (r *SoftwareRenderer) Flushes() int64 { return r.flushes.Load() }

// Close releases the noop device.
func (r *SoftwareRenderer) Close() {
	if r.device != nil {
		r.device.Destroy()
		r.device = nil
	}
}

var (
	_ Renderer       = (*SoftwareRenderer)(nil)
	_ HalProvider    = (*SoftwareRenderer)(nil)
	_ Viewport       = (*SoftwareViewport)(nil)
	_ TextureAdapter = (*SoftwareTextures)(nil)
)
