// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/gogpu/xrframe/binding"
	"github.com/gogpu/xrframe/internal/xrlog"
	"github.com/gogpu/xrframe/linear"
	"github.com/gogpu/xrframe/posecache"
	"github.com/gogpu/xrframe/render"
	"github.com/gogpu/xrframe/session"
	"github.com/gogpu/xrframe/xr"
)

// Sentinel errors.
var (
	// ErrNoScene reports that neither the desktop nor the rig has a world.
	ErrNoScene = errors.New("frame: no active scene")

	// ErrPoseInvalid reports a view or head locate without valid poses.
	ErrPoseInvalid = errors.New("frame: located pose is not valid")

	// ErrStaleSnapshot reports a Predicted snapshot written for another
	// frame than the one being collected.
	ErrStaleSnapshot = errors.New("frame: predicted snapshot belongs to another frame")
)

// Default clip planes.
const (
	DefaultNear = 0.05
	DefaultFar  = 1000
)

// TransformHook recalculates dependent transforms from the snapshot of
// the given timing.
type TransformHook func(t posecache.Timing)

// Session is the part of the session machine the pipeline uses.
type Session interface {
	Handles() session.Handles
	ReportResult(err error) bool
}

// Config configures a Pipeline.
type Config struct {
	Runtime  xr.Runtime
	Renderer render.Renderer
	Session  Session
	Cache    *posecache.Cache

	// Scenes resolves the world and tracking origin to draw.
	Scenes render.SceneResolver

	// Viewports are the per-eye viewports, left first.
	Viewports [2]render.Viewport

	// Transform is called after each pose write. May be nil.
	Transform TransformHook

	// ReverseEyeOrder processes the right eye first. It is fixed for the
	// lifetime of the pipeline.
	ReverseEyeOrder bool

	// ParallelCollect starts two collect workers, used whenever the
	// graphics binding supports parallel collection.
	ParallelCollect bool

	// CollectMirrors and AllowUI are passed to CollectVisible.
	CollectMirrors bool
	AllowUI        bool

	// Near and Far are the clip planes. Defaults: DefaultNear, DefaultFar.
	Near, Far float32
}

// Stats are cumulative frame counters.
type Stats struct {
	// Begun counts frames that passed WaitFrame and BeginFrame.
	Begun uint64

	// Submitted counts frames ended with a projection layer.
	Submitted uint64

	// Skipped counts frames ended without layers at the runtime's request.
	Skipped uint64

	// Aborted counts frames ended without layers after a failure and
	// frames the runtime rejected in EndFrame.
	Aborted uint64

	// CollectFailures counts failed Collect calls.
	CollectFailures uint64
}

type stats struct {
	begun, submitted, skipped, aborted, collectFailures atomic.Uint64
}

// Pipeline coordinates the render and collect contexts.
type Pipeline struct {
	cfg   Config
	order [2]int
	flags handoff
	stats stats

	// Render context state of the pending frame.
	displayTime xr.Time
	predicted   [2]xr.View
	late        [2]xr.View
	haveLate    bool

	// Written by Collect before prepared is set, read by RenderTick
	// after it observed prepared.
	scene render.Scene

	pool *eyePool
}

// New returns a pipeline for cfg.
func New(cfg Config) (*Pipeline, error) {
	switch {
	case cfg.Runtime == nil:
		return nil, errors.New("frame: nil runtime")
	case cfg.Renderer == nil:
		return nil, errors.New("frame: nil renderer")
	case cfg.Session == nil:
		return nil, errors.New("frame: nil session")
	case cfg.Cache == nil:
		return nil, errors.New("frame: nil pose cache")
	case cfg.Scenes == nil:
		return nil, errors.New("frame: nil scene resolver")
	case cfg.Viewports[0] == nil || cfg.Viewports[1] == nil:
		return nil, errors.New("frame: both eye viewports are required")
	}
	if cfg.Near <= 0 {
		cfg.Near = DefaultNear
	}
	if cfg.Far <= cfg.Near {
		cfg.Far = DefaultFar
	}
	p := &Pipeline{cfg: cfg, order: [2]int{0, 1}}
	if cfg.ReverseEyeOrder {
		p.order = [2]int{1, 0}
	}
	if cfg.ParallelCollect {
		p.pool = newEyePool()
	}
	return p, nil
}

// EyeOrder returns the order in which eyes are collected and rendered.
func (p *Pipeline) EyeOrder() [2]int { return p.order }

// Frame returns the token of the most recently begun frame.
func (p *Pipeline) Frame() uint64 { return p.flags.frame.Load() }

// Pending reports whether a frame is begun and not yet ended.
func (p *Pipeline) Pending() bool { return p.flags.pending.Load() }

// CollectState returns the claim state of the pending frame.
func (p *Pipeline) CollectState() CollectState { return p.flags.collect.Load() }

// Stats returns the frame counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Begun:           p.stats.begun.Load(),
		Submitted:       p.stats.submitted.Load(),
		Skipped:         p.stats.skipped.Load(),
		Aborted:         p.stats.aborted.Load(),
		CollectFailures: p.stats.collectFailures.Load(),
	}
}

// Reset clears every handoff flag. The session machine calls it before
// tearing down a session; a begun frame dies with the session.
func (p *Pipeline) Reset() {
	p.flags.clear()
	p.haveLate = false
	p.cfg.Cache.Reset()
}

// Close stops the collect workers. Collect must not run concurrently.
func (p *Pipeline) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// report hands err to the session machine and logs anything that is
// not a loss.
func (p *Pipeline) report(step string, err error) {
	if p.cfg.Session.ReportResult(err) {
		xrlog.Logger().Warn("frame: "+step+" lost the session", "err", err)
		return
	}
	xrlog.Logger().Warn("frame: "+step+" failed", "frame", p.flags.frame.Load(), "err", err)
}

// RenderTick runs the render side of the loop: late pose resample and
// submission of the published frame, then preparation of the next.
func (p *Pipeline) RenderTick() {
	h := p.cfg.Session.Handles()
	if h.Session == 0 || !h.Begun || h.Adapter == nil {
		return
	}
	if p.flags.pending.Load() && p.flags.prepared.Load() {
		if !p.flags.skip.Load() && !p.flags.failed.Load() {
			p.resampleLate(h)
		}
		p.submit(h)
	}
	p.prepare(h)
}

// prepare begins the next frame and locates its Predicted views.
func (p *Pipeline) prepare(h session.Handles) {
	if p.flags.pending.Load() {
		return
	}
	p.flags.clear()
	p.haveLate = false

	rt := p.cfg.Runtime
	state := xr.FrameState{Type: xr.TypeFrameState}
	if err := rt.WaitFrame(h.Session, &xr.FrameWaitInfo{Type: xr.TypeFrameWaitInfo}, &state); err != nil {
		p.report("wait frame", err)
		return
	}
	if err := rt.BeginFrame(h.Session, &xr.FrameBeginInfo{Type: xr.TypeFrameBeginInfo}); err != nil {
		p.report("begin frame", err)
		return
	}
	frame := p.flags.frame.Add(1)
	p.displayTime = state.PredictedDisplayTime
	p.stats.begun.Add(1)

	if !state.ShouldRender {
		xrlog.Logger().Debug("frame: runtime skipped rendering", "frame", frame)
		p.flags.skip.Store(true)
		p.flags.pending.Store(true)
		return
	}

	views, err := p.locate(h, posecache.Predicted)
	if err == nil && h.Input != nil {
		err = h.Input.Update(posecache.Predicted, h.AppSpace, p.displayTime)
	}
	if err != nil {
		p.report("locate predicted views", err)
		p.endFrame(h, nil)
		p.stats.aborted.Add(1)
		return
	}
	p.predicted = views
	if p.cfg.Transform != nil {
		p.cfg.Transform(posecache.Predicted)
	}
	p.flags.pending.Store(true)
}

// locate locates both views and the head at the pending display time
// and stores them under timing t.
func (p *Pipeline) locate(h session.Handles, t posecache.Timing) ([2]xr.View, error) {
	rt := p.cfg.Runtime
	views := [2]xr.View{{Type: xr.TypeView}, {Type: xr.TypeView}}
	state := xr.ViewState{Type: xr.TypeViewState}
	n, err := rt.LocateViews(h.Session, &xr.ViewLocateInfo{
		Type:                  xr.TypeViewLocateInfo,
		ViewConfigurationType: xr.ViewConfigurationPrimaryStereo,
		DisplayTime:           p.displayTime,
		Space:                 h.AppSpace,
	}, &state, views[:])
	if err != nil {
		return views, err
	}
	if n != binding.ViewCount {
		return views, fmt.Errorf("%w: located %d views", binding.ErrViewCount, n)
	}
	if !state.ViewStateFlags.PoseValid() {
		return views, ErrPoseInvalid
	}

	v := posecache.Views{Frame: p.flags.frame.Load(), DisplayTime: p.displayTime}
	v.Head.I()
	if h.ViewSpace != 0 {
		loc := xr.SpaceLocation{Type: xr.TypeSpaceLocation}
		if err := rt.LocateSpace(h.ViewSpace, h.AppSpace, p.displayTime, &loc); err != nil {
			return views, err
		}
		if !loc.LocationFlags.PoseValid() {
			return views, ErrPoseInvalid
		}
		v.Head = posecache.PoseMatrix(loc.Pose)
	}
	for eye := range views {
		v.Eyes[eye] = posecache.PoseMatrix(views[eye].Pose)
		v.Fov[eye] = views[eye].Fov
	}
	p.cfg.Cache.StoreViews(t, v)
	return views, nil
}

// resampleLate relocates the views right before rendering and points
// the eye cameras at the Late poses. On failure the Predicted poses
// set by Collect are kept.
func (p *Pipeline) resampleLate(h session.Handles) {
	views, err := p.locate(h, posecache.Late)
	if err != nil {
		p.report("locate late views", err)
		return
	}
	if h.Input != nil {
		if err := h.Input.Update(posecache.Late, h.AppSpace, p.displayTime); err != nil {
			p.report("update late input", err)
		}
	}
	p.late, p.haveLate = views, true
	if p.cfg.Transform != nil {
		p.cfg.Transform(posecache.Late)
	}
	snap := p.cfg.Cache.Load(posecache.Late)
	for eye, vp := range p.cfg.Viewports {
		var world linear.M4
		world.Mul(&p.scene.Origin, &snap.Eyes[eye])
		vp.Camera().SetRenderPose(world)
		vp.Camera().SetProjection(p.cfg.Near, p.cfg.Far, snap.Fov[eye])
	}
}
