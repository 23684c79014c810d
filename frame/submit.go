// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"errors"
	"fmt"

	"github.com/gogpu/xrframe/binding"
	"github.com/gogpu/xrframe/internal/xrlog"
	"github.com/gogpu/xrframe/session"
	"github.com/gogpu/xrframe/xr"
)

// submit renders both eyes of the published frame and ends it. The
// handoff flags are cleared however the frame ends.
func (p *Pipeline) submit(h session.Handles) {
	defer p.flags.clear()

	if p.flags.skip.Load() {
		if p.endFrame(h, nil) {
			p.stats.skipped.Add(1)
		} else {
			p.stats.aborted.Add(1)
		}
		return
	}
	if p.flags.failed.Load() {
		p.endFrame(h, nil)
		p.stats.aborted.Add(1)
		return
	}

	views := make([]xr.CompositionLayerProjectionView, 0, binding.ViewCount)
	for _, eye := range p.order {
		v, err := p.renderEye(h.Adapter, eye)
		if err != nil {
			p.report(fmt.Sprintf("render eye %d", eye), err)
			p.endFrame(h, nil)
			p.stats.aborted.Add(1)
			return
		}
		views = append(views, v)
	}
	if err := p.cfg.Renderer.Flush(); err != nil {
		p.report("flush", err)
		p.endFrame(h, nil)
		p.stats.aborted.Add(1)
		return
	}

	// Views are submitted left first whatever the render order.
	if p.order[0] != 0 {
		views[0], views[1] = views[1], views[0]
	}
	ok := p.endFrame(h, []xr.CompositionLayer{&xr.CompositionLayerProjection{
		Type:  xr.TypeCompositionLayerProjection,
		Space: h.AppSpace,
		Views: views,
	}})
	if !ok {
		p.stats.aborted.Add(1)
		return
	}
	p.stats.submitted.Add(1)
}

// renderEye acquires, waits on, renders and releases one eye's image.
// An acquired image is always released, even when waiting or rendering
// failed.
func (p *Pipeline) renderEye(a binding.Adapter, eye int) (view xr.CompositionLayerProjectionView, err error) {
	scs := a.Swapchains()
	if eye >= len(scs) {
		return view, fmt.Errorf("%w %d", binding.ErrNoSwapchain, eye)
	}
	sc := scs[eye]

	if _, err := a.AcquireImage(eye); err != nil {
		return view, err
	}
	defer func() {
		if rerr := a.ReleaseImage(eye); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	if err := a.WaitImage(eye); err != nil {
		return view, err
	}

	img := sc.Current()
	vp := p.cfg.Viewports[eye]
	if err := vp.Render(img.Target, p.scene.World, vp.Camera(), false, nil); err != nil {
		return view, fmt.Errorf("frame: render eye %d: %w", eye, err)
	}

	located := p.predicted[eye]
	if p.haveLate {
		located = p.late[eye]
	}
	return xr.CompositionLayerProjectionView{
		Type: xr.TypeCompositionLayerProjectionView,
		Pose: located.Pose,
		Fov:  located.Fov,
		SubImage: xr.SwapchainSubImage{
			Swapchain: sc.Handle,
			ImageRect: sc.Rect(),
		},
	}, nil
}

// endFrame ends the begun frame with layers; nil ends it empty. It
// reports whether the runtime accepted the frame.
func (p *Pipeline) endFrame(h session.Handles, layers []xr.CompositionLayer) bool {
	err := p.cfg.Runtime.EndFrame(h.Session, &xr.FrameEndInfo{
		Type:                 xr.TypeFrameEndInfo,
		DisplayTime:          p.displayTime,
		EnvironmentBlendMode: xr.EnvironmentBlendModeOpaque,
		Layers:               layers,
	})
	if err != nil {
		p.report("end frame", err)
		return false
	}
	xrlog.Logger().Debug("frame: ended", "frame", p.flags.frame.Load(), "layers", len(layers))
	return true
}
