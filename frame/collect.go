// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"errors"
	"fmt"

	"github.com/gogpu/xrframe/internal/xrlog"
	"github.com/gogpu/xrframe/linear"
	"github.com/gogpu/xrframe/posecache"
)

// Collect runs the collect side of the loop: it claims the pending
// frame, builds both eyes' draw lists from the Predicted poses and
// publishes them.
//
// Collect is a no-op without a pending frame, or when the frame is
// already claimed or published. A failed collection is still published
// so the render side ends the frame without layers; the error is
// returned, joined across eyes when both failed.
func (p *Pipeline) Collect() (err error) {
	f := &p.flags
	frame := f.frame.Load()
	if !f.pending.Load() || f.prepared.Load() {
		return nil
	}
	if !f.claim(frame) {
		return nil
	}
	if f.frame.Load() != frame || !f.pending.Load() {
		// The frame ended between the check and the claim.
		return nil
	}
	f.collect.CompareAndSwap(NotStarted, InProgress)

	if f.skip.Load() {
		f.collect.Store(Done)
		f.prepared.Store(true)
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("frame: collect panicked: %v", r)
		}
		if f.frame.Load() != frame || !f.pending.Load() {
			// Reset while collecting: the result belongs to a dead frame.
			return
		}
		if err != nil {
			p.stats.collectFailures.Add(1)
			xrlog.Logger().Warn("frame: collect failed", "frame", frame, "err", err)
			f.collect.Store(NotStarted)
			f.failed.Store(true)
			f.prepared.Store(true)
			return
		}
		for _, eye := range p.order {
			p.cfg.Viewports[eye].SwapBuffers(p.cfg.AllowUI)
		}
		f.collect.Store(Done)
		f.prepared.Store(true)
	}()

	scene, ok := p.cfg.Scenes.ActiveScene()
	if !ok {
		return ErrNoScene
	}
	snap := p.cfg.Cache.Load(posecache.Predicted)
	if snap.Frame != frame {
		return fmt.Errorf("%w: snapshot %d, frame %d", ErrStaleSnapshot, snap.Frame, frame)
	}
	p.scene = scene
	for eye, vp := range p.cfg.Viewports {
		var world linear.M4
		world.Mul(&scene.Origin, &snap.Eyes[eye])
		cam := vp.Camera()
		cam.SetRenderPose(world)
		cam.SetProjection(p.cfg.Near, p.cfg.Far, snap.Fov[eye])
	}

	collect := func(eye int) error {
		vp := p.cfg.Viewports[eye]
		n, err := vp.CollectVisible(scene.World, vp.Camera(), p.cfg.CollectMirrors, p.cfg.AllowUI)
		if err != nil {
			return fmt.Errorf("frame: collect eye %d: %w", eye, err)
		}
		xrlog.Logger().Debug("frame: collected", "frame", frame, "eye", eye, "commands", n)
		return nil
	}
	if p.parallel() {
		return p.pool.Run(collect)
	}
	var errs [2]error
	for _, eye := range p.order {
		errs[eye] = runEye(eye, collect)
	}
	return errors.Join(errs[0], errs[1])
}

// parallel reports whether both eyes are collected concurrently.
func (p *Pipeline) parallel() bool {
	if p.pool == nil {
		return false
	}
	a := p.cfg.Session.Handles().Adapter
	return a != nil && a.SupportsParallelCollect(p.cfg.Renderer)
}
