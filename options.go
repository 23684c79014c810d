// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package xrframe

import (
	"time"

	"github.com/gogpu/xrframe/binding"
	"github.com/gogpu/xrframe/config"
	"github.com/gogpu/xrframe/frame"
	"github.com/gogpu/xrframe/xr"
)

// Option configures a Headset during creation.
//
// Example:
//
//	hs, err := xrframe.New(rt, renderer, viewports, scenes,
//	    xrframe.WithReverseEyeOrder(true),
//	    xrframe.WithTrackerRoles("waist", "left_foot"))
type Option func(*options)

type options struct {
	appName         string
	trackerRoles    []string
	retryInterval   time.Duration
	space           xr.ReferenceSpaceType
	adapter         binding.Adapter
	now             func() time.Time
	reverseEyeOrder bool
	parallelCollect bool
	collectMirrors  bool
	allowUI         bool
	near, far       float32
	transform       frame.TransformHook
}

func defaultOptions() options {
	return options{
		appName:         "xrframe",
		parallelCollect: true,
		allowUI:         true,
	}
}

// WithApplicationName sets the name reported to the runtime.
func WithApplicationName(name string) Option {
	return func(o *options) {
		o.appName = name
	}
}

// WithTrackerRoles selects the tracked body roles. With no roles only
// the hands are tracked. Without this option input.DefaultRoles are used.
func WithTrackerRoles(roles ...string) Option {
	return func(o *options) {
		o.trackerRoles = append([]string{}, roles...)
	}
}

// WithRetryInterval sets the delay between failed session creation
// attempts and after a loss.
func WithRetryInterval(d time.Duration) Option {
	return func(o *options) {
		o.retryInterval = d
	}
}

// WithReferenceSpace sets the reference space poses are reported in.
func WithReferenceSpace(t xr.ReferenceSpaceType) Option {
	return func(o *options) {
		o.space = t
	}
}

// WithAdapter forces a graphics binding instead of selecting the first
// compatible registered one.
func WithAdapter(a binding.Adapter) Option {
	return func(o *options) {
		o.adapter = a
	}
}

// WithClock replaces time.Now for retry scheduling.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		o.now = now
	}
}

// WithReverseEyeOrder collects and renders the right eye first. Some
// drivers misbehave unless the eyes are processed in a particular
// order.
func WithReverseEyeOrder(reverse bool) Option {
	return func(o *options) {
		o.reverseEyeOrder = reverse
	}
}

// WithParallelCollect collects both eyes concurrently when the graphics
// binding allows it. Enabled by default.
func WithParallelCollect(parallel bool) Option {
	return func(o *options) {
		o.parallelCollect = parallel
	}
}

// WithCollectFlags sets the flags passed to every CollectVisible call.
func WithCollectFlags(collectMirrors, allowUI bool) Option {
	return func(o *options) {
		o.collectMirrors = collectMirrors
		o.allowUI = allowUI
	}
}

// WithClipPlanes sets the near and far clip distances of both eyes.
func WithClipPlanes(near, far float32) Option {
	return func(o *options) {
		o.near, o.far = near, far
	}
}

// WithTransform installs a hook run after every pose update, on the
// render context.
func WithTransform(fn frame.TransformHook) Option {
	return func(o *options) {
		o.transform = fn
	}
}

// WithConfig applies the headset settings of cfg.
func WithConfig(cfg *config.Config) Option {
	return func(o *options) {
		o.appName = cfg.ApplicationName
		o.trackerRoles = append([]string{}, cfg.TrackerRoles...)
		o.retryInterval = cfg.RetryInterval.Duration
		o.reverseEyeOrder = cfg.ReverseEyeOrder
		o.parallelCollect = cfg.ParallelCollect
		o.collectMirrors = cfg.CollectMirrors
		o.allowUI = cfg.AllowUI
		o.near, o.far = cfg.Near, cfg.Far
	}
}
