// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/spf13/cobra"

	"github.com/gogpu/xrframe"
	"github.com/gogpu/xrframe/config"
	"github.com/gogpu/xrframe/linear"
	"github.com/gogpu/xrframe/render"
	"github.com/gogpu/xrframe/session"
	"github.com/gogpu/xrframe/xr/noop"
)

// statsInterval is how often the run loop logs frame counters.
const statsInterval = 2 * time.Second

func newRunCmd(g *globals) *cobra.Command {
	var (
		frames int
		mirror string
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the frame loop until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("frames") {
				cfg.Demo.Frames = frames
			}
			if mirror != "" {
				cfg.Demo.Mirror = mirror
			}
			return run(cmd.Context(), g, cfg)
		},
	}
	cmd.Flags().IntVarP(&frames, "frames", "n", 0, "stop after this many submitted frames")
	cmd.Flags().StringVar(&mirror, "mirror", "", "write a side-by-side PNG of the last frame")
	return cmd
}

func run(ctx context.Context, g *globals, cfg *config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	log := xrframe.Logger()

	backend := gputypes.BackendVulkan
	if cfg.Demo.Backend == "gles" {
		backend = gputypes.BackendGL
	}
	rt := noop.New(noop.Config{Pace: cfg.Demo.Pace})
	renderer, err := render.NewSoftwareRenderer(backend, cfg.Demo.Queues, render.NewSoftwareTextures(cfg.Demo.Mirror != ""))
	if err != nil {
		return err
	}
	defer renderer.Close()

	m := &mirror{}
	var viewports [2]render.Viewport
	for eye := range viewports {
		viewports[eye] = &mirrorViewport{Viewport: render.NewSoftwareViewport(eye), eye: eye, m: m}
	}
	scenes := &render.RigResolver{Rig: render.Scene{
		World:  &render.StaticWorld{WorldName: "demo", Objects: 64},
		Origin: linear.Identity(),
	}}

	hs, err := xrframe.New(rt, renderer, viewports, scenes, xrframe.WithConfig(cfg))
	if err != nil {
		return err
	}
	hs.OnSessionReady(func(h session.Handles) {
		log.Info("xrdemo: session ready", "adapter", h.Adapter.Name(), "views", len(h.Views))
	})
	hs.Start()

	if g.configPath != "" {
		go func() {
			err := config.Watch(ctx, g.configPath, func(c *config.Config, err error) {
				if err != nil {
					return
				}
				if level, err := c.Level(); err == nil {
					g.level.Set(level)
				}
			})
			if err != nil {
				log.Warn("xrdemo: config watch stopped", "err", err)
			}
		}()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		collectLoop(ctx, hs)
	}()

	renderLoop(ctx, hs, cfg.Demo.Frames)
	cancel()
	wg.Wait()

	stats := hs.Stats()
	hs.Close()
	log.Info("xrdemo: stopped", "submitted", stats.Submitted, "skipped", stats.Skipped,
		"aborted", stats.Aborted, "collect_failures", stats.CollectFailures)

	if cfg.Demo.Mirror != "" {
		if err := m.save(cfg.Demo.Mirror, cfg.Demo.MirrorWidth); err != nil {
			return fmt.Errorf("mirror: %w", err)
		}
		log.Info("xrdemo: mirror written", "path", cfg.Demo.Mirror)
	}
	return nil
}

// renderLoop ticks the render context until ctx is done or limit
// frames were submitted. Without a running session it idles briefly
// between ticks so that retries do not spin.
func renderLoop(ctx context.Context, hs *xrframe.Headset, limit int) {
	log := xrframe.Logger()
	next := time.Now().Add(statsInterval)
	for ctx.Err() == nil {
		hs.RenderTick()
		s := hs.Stats()
		if limit > 0 && s.Submitted >= uint64(limit) {
			return
		}
		if now := time.Now(); now.After(next) {
			next = now.Add(statsInterval)
			log.Info("xrdemo: frames", "state", hs.State(), "submitted", s.Submitted,
				"skipped", s.Skipped, "aborted", s.Aborted)
		}
		if !hs.Running() {
			select {
			case <-ctx.Done():
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}

// collectLoop runs the collect context. Collect returns immediately
// when no frame is pending, so the loop yields between polls.
func collectLoop(ctx context.Context, hs *xrframe.Headset) {
	log := xrframe.Logger()
	idle := time.NewTicker(500 * time.Microsecond)
	defer idle.Stop()
	for {
		if err := hs.Collect(); err != nil {
			log.Warn("xrdemo: collect failed", "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-idle.C:
		}
	}
}
