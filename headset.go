// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xrframe

import (
	"errors"

	// Register the graphics bindings selected by session creation.
	_ "github.com/gogpu/xrframe/binding/gles"
	_ "github.com/gogpu/xrframe/binding/vulkan"

	"github.com/gogpu/xrframe/frame"
	"github.com/gogpu/xrframe/posecache"
	"github.com/gogpu/xrframe/render"
	"github.com/gogpu/xrframe/session"
	"github.com/gogpu/xrframe/xr"
)

// DefaultRetryInterval is the delay before session creation is retried.
const DefaultRetryInterval = session.DefaultRetryInterval

// Headset composes the session state machine, the pose cache and the
// frame pipeline.
//
// RenderTick and Close belong to the render context and Collect to the
// collect context. Everything else is safe from any goroutine.
type Headset struct {
	machine  *session.Machine
	pipeline *frame.Pipeline
	cache    *posecache.Cache
}

// New returns a headset for rt that renders with r into viewports,
// drawing the scene reported by scenes. Monitoring starts disabled;
// call Start.
func New(rt xr.Runtime, r render.Renderer, viewports [2]render.Viewport, scenes render.SceneResolver, opts ...Option) (*Headset, error) {
	if scenes == nil {
		return nil, errors.New("xrframe: nil scene resolver")
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	cache := posecache.New()
	m, err := session.New(session.Config{
		Runtime:         rt,
		Renderer:        r,
		Adapter:         o.adapter,
		Cache:           cache,
		TrackerRoles:    o.trackerRoles,
		ApplicationName: o.appName,
		Space:           o.space,
		RetryInterval:   o.retryInterval,
		Now:             o.now,
	})
	if err != nil {
		return nil, err
	}
	p, err := frame.New(frame.Config{
		Runtime:         rt,
		Renderer:        r,
		Session:         m,
		Cache:           cache,
		Scenes:          scenes,
		Viewports:       viewports,
		Transform:       o.transform,
		ReverseEyeOrder: o.reverseEyeOrder,
		ParallelCollect: o.parallelCollect,
		CollectMirrors:  o.collectMirrors,
		AllowUI:         o.allowUI,
		Near:            o.near,
		Far:             o.far,
	})
	if err != nil {
		return nil, err
	}
	m.OnTeardown(func(session.LossReason) { p.Reset() })
	return &Headset{machine: m, pipeline: p, cache: cache}, nil
}

// Start enables runtime monitoring. The session is created over the
// following render ticks.
func (h *Headset) Start() { h.machine.EnableMonitoring() }

// Stop disables monitoring and shuts a live session down on the next
// render tick.
func (h *Headset) Stop() { h.machine.DisableMonitoring() }

// RequestShutdown tears the session and instance down on the next
// render tick.
func (h *Headset) RequestShutdown() { h.machine.RequestShutdown() }

// RenderTick advances the session state machine and runs the render
// side of the frame loop.
func (h *Headset) RenderTick() {
	h.machine.Tick()
	h.pipeline.RenderTick()
}

// Collect runs the collect side of the frame loop. See
// [frame.Pipeline.Collect].
func (h *Headset) Collect() error { return h.pipeline.Collect() }

// OnSessionReady registers fn to run on the render context whenever a
// session starts running. Register hooks before Start.
func (h *Headset) OnSessionReady(fn func(session.Handles)) { h.machine.OnSessionReady(fn) }

// OnTeardown registers fn to run on the render context before session
// resources are destroyed. Register hooks before Start.
func (h *Headset) OnTeardown(fn func(session.LossReason)) { h.machine.OnTeardown(fn) }

// State returns the session state.
func (h *Headset) State() session.State { return h.machine.State() }

// Running reports whether frames are being submitted.
func (h *Headset) Running() bool { return h.machine.State() == session.SessionRunning }

// LastLoss returns the reason of the most recent loss.
func (h *Headset) LastLoss() session.LossReason { return h.machine.LastLoss() }

// Handles returns the live runtime objects.
func (h *Headset) Handles() session.Handles { return h.machine.Handles() }

// Stats returns the frame counters.
func (h *Headset) Stats() frame.Stats { return h.pipeline.Stats() }

// EyeOrder returns the eye processing order.
func (h *Headset) EyeOrder() [2]int { return h.pipeline.EyeOrder() }

// Poses returns a copy of the snapshot for timing t.
func (h *Headset) Poses(t posecache.Timing) posecache.Snapshot { return h.cache.Load(t) }

// Controller returns the late pose of hand.
func (h *Headset) Controller(hand posecache.Hand) posecache.ControllerPose {
	return h.cache.Controller(posecache.Late, hand)
}

// Tracker returns the late pose of the tracker with role.
func (h *Headset) Tracker(role string) (posecache.ControllerPose, bool) {
	return h.cache.Tracker(posecache.Late, role)
}

// Close destroys every runtime object and stops the collect workers.
// Collect must not run concurrently.
func (h *Headset) Close() {
	h.machine.Close()
	h.pipeline.Close()
}
