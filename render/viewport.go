// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package render

import (
	"sync"

	"github.com/gogpu/xrframe/linear"
	"github.com/gogpu/xrframe/xr"
)

// World is an opaque engine scene.
type World interface {
	Name() string
}

// Camera is a virtual camera whose pose and projection the XR layer
// overrides each frame.
type Camera interface {
	// RenderPose returns the world-space pose used for rendering.
	RenderPose() linear.M4

	// SetRenderPose sets the world-space pose used for rendering.
	SetRenderPose(m linear.M4)

	// SetProjection sets near/far planes and asymmetric field of view.
	SetProjection(near, far float32, fov xr.Fovf)
}

// Viewport collects and renders one eye.
//
// CollectVisible builds a draw list into a back buffer and SwapBuffers
// publishes it; Render always draws the published list.
type Viewport interface {
	// Camera returns the eye camera.
	Camera() Camera

	// CollectVisible builds the draw list for world seen from camera and
	// returns the number of draw commands.
	CollectVisible(world World, camera Camera, collectMirrors, allowUI bool) (int, error)

	// Render draws the published draw list into target.
	Render(target RenderTarget, world World, camera Camera, shadowPass bool, materialOverride any) error

	// SwapBuffers publishes the list built by CollectVisible.
	SwapBuffers(allowUISwap bool)
}

// Scene names what to draw and where the tracking origin sits.
type Scene struct {
	World World

	// Origin is the world-space pose of the tracking space.
	Origin linear.M4
}

// SceneResolver finds the scene currently shown on the desktop.
type SceneResolver interface {
	// ActiveScene reports the active scene, or false when no desktop
	// viewport has both a world and an active camera.
	ActiveScene() (Scene, bool)
}

// SceneFunc adapts a function to SceneResolver.
type SceneFunc func() (Scene, bool)

// ActiveScene calls f.
func (f SceneFunc) ActiveScene() (Scene, bool) { return f() }

// RigResolver resolves the desktop scene and falls back to a VR rig.
type RigResolver struct {
	// Desktop may be nil.
	Desktop SceneResolver

	// Rig is used when Desktop reports no active scene.
	Rig Scene
}

// ActiveScene implements SceneResolver. It reports false only when both
// the desktop and the rig lack a world.
func (r *RigResolver) ActiveScene() (Scene, bool) {
	if r.Desktop != nil {
		if s, ok := r.Desktop.ActiveScene(); ok && s.World != nil {
			return s, true
		}
	}
	return r.Rig, r.Rig.World != nil
}

// BasicCamera is a Camera safe for use from both contexts.
type BasicCamera struct {
	mu   sync.Mutex
	pose linear.M4
	near float32
	far  float32
	fov  xr.Fovf
}

// NewBasicCamera returns a camera at the origin.
func NewBasicCamera() *BasicCamera {
	c := &BasicCamera{near: 0.05, far: 1000}
	c.pose.I()
	return c
}

// RenderPose implements Camera.
func (c *BasicCamera) RenderPose() linear.M4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

// SetRenderPose implements Camera.
func (c *BasicCamera) SetRenderPose(m linear.M4) {
	c.mu.Lock()
	c.pose = m
	c.mu.Unlock()
}

// SetProjection implements Camera.
func (c *BasicCamera) SetProjection(near, far float32, fov xr.Fovf) {
	c.mu.Lock()
	c.near, c.far, c.fov = near, far, fov
	c.mu.Unlock()
}

// Projection returns the projection parameters.
func (c *BasicCamera) Projection() (near, far float32, fov xr.Fovf) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.near, c.far, c.fov
}

// ProjectionMatrix returns the asymmetric perspective projection.
func (c *BasicCamera) ProjectionMatrix() linear.M4 {
	near, far, fov := c.Projection()
	var m linear.M4
	m.FovProjection(fov.AngleLeft, fov.AngleRight, fov.AngleUp, fov.AngleDown, near, far)
	return m
}
