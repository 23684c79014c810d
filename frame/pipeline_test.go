// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/gputypes"
	_ "github.com/gogpu/xrframe/binding/vulkan"
	"github.com/gogpu/xrframe/linear"
	"github.com/gogpu/xrframe/posecache"
	"github.com/gogpu/xrframe/render"
	"github.com/gogpu/xrframe/session"
	"github.com/gogpu/xrframe/xr"
	"github.com/gogpu/xrframe/xr/noop"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type options struct {
	queues   int
	parallel bool
	reverse  bool
	scenes   render.SceneResolver
	wrap     func(eye int, vp render.Viewport) render.Viewport
}

type fixture struct {
	rt     *noop.Runtime
	clock  *fakeClock
	cache  *posecache.Cache
	m      *session.Machine
	p      *Pipeline
	vps    [2]*render.SoftwareViewport
	origin linear.M4

	mu    sync.Mutex
	hooks []posecache.Timing
}

func newFixture(t *testing.T, opts options) *fixture {
	t.Helper()
	if opts.queues == 0 {
		opts.queues = 1
	}
	f := &fixture{
		rt:    noop.New(noop.Config{}),
		clock: &fakeClock{now: time.Unix(1000, 0)},
		cache: posecache.New(),
	}
	f.origin.I()
	f.origin[3] = linear.V4{0, 0, -2, 1}

	r, err := render.NewSoftwareRenderer(gputypes.BackendVulkan, opts.queues, render.NewSoftwareTextures(false))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(r.Close)

	f.m, err = session.New(session.Config{
		Runtime:      f.rt,
		Renderer:     r,
		Cache:        f.cache,
		TrackerRoles: []string{},
		Now:          f.clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(f.m.Close)

	var viewports [2]render.Viewport
	for eye := range f.vps {
		f.vps[eye] = render.NewSoftwareViewport(eye)
		viewports[eye] = f.vps[eye]
		if opts.wrap != nil {
			viewports[eye] = opts.wrap(eye, f.vps[eye])
		}
	}
	scenes := opts.scenes
	if scenes == nil {
		scenes = &render.RigResolver{Rig: render.Scene{
			World:  &render.StaticWorld{WorldName: "rig", Objects: 7},
			Origin: f.origin,
		}}
	}
	f.p, err = New(Config{
		Runtime:         f.rt,
		Renderer:        r,
		Session:         f.m,
		Cache:           f.cache,
		Scenes:          scenes,
		Viewports:       viewports,
		ReverseEyeOrder: opts.reverse,
		ParallelCollect: opts.parallel,
		Transform: func(t posecache.Timing) {
			f.mu.Lock()
			f.hooks = append(f.hooks, t)
			f.mu.Unlock()
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(f.p.Close)
	f.m.OnTeardown(func(session.LossReason) { f.p.Reset() })

	f.m.EnableMonitoring()
	f.tickUntil(t, session.SessionRunning)
	return f
}

func (f *fixture) tickUntil(t *testing.T, want session.State) {
	t.Helper()
	for range 16 {
		if f.m.State() == want {
			return
		}
		f.m.Tick()
	}
	if f.m.State() != want {
		t.Fatalf("state = %v, want %v", f.m.State(), want)
	}
}

// step runs one iteration of both contexts.
func (f *fixture) step() error {
	f.m.Tick()
	f.p.RenderTick()
	return f.p.Collect()
}

func (f *fixture) steps(t *testing.T, n int) {
	t.Helper()
	for range n {
		if err := f.step(); err != nil {
			t.Fatal(err)
		}
	}
}

func (f *fixture) noViolations(t *testing.T) {
	t.Helper()
	if v := f.rt.Violations(); len(v) != 0 {
		t.Errorf("violations: %v", v)
	}
	if n := f.rt.Outstanding(); n != 0 {
		t.Errorf("outstanding images = %d", n)
	}
}

func nearM4(a, b linear.M4) bool {
	for i := range a {
		for j := range a[i] {
			if math.Abs(float64(a[i][j]-b[i][j])) > 1e-4 {
				return false
			}
		}
	}
	return true
}

func eyeWorld(origin linear.M4, eye int, t xr.Time) linear.M4 {
	pose := posecache.PoseMatrix(noop.EyePose(eye, t))
	var m linear.M4
	m.Mul(&origin, &pose)
	return m
}

func TestNewValidates(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New(Config{}) succeeded")
	}
}

func TestSubmitsStereoLayer(t *testing.T) {
	f := newFixture(t, options{})
	f.steps(t, 5)

	ends := f.rt.FrameEnds()
	if len(ends) != 4 {
		t.Fatalf("frame ends = %d, want 4", len(ends))
	}
	scs := f.m.Handles().Adapter.Swapchains()
	for i, end := range ends {
		if end.Frame != uint64(i+1) {
			t.Errorf("end %d: frame %d", i, end.Frame)
		}
		if end.Layers != 1 || len(end.Views) != 2 {
			t.Fatalf("end %d: %d layers, %d views", i, end.Layers, len(end.Views))
		}
		for eye, v := range end.Views {
			if v.SubImage.Swapchain != scs[eye].Handle {
				t.Errorf("end %d view %d: swapchain %v, want %v", i, eye, v.SubImage.Swapchain, scs[eye].Handle)
			}
			if v.Fov != noop.EyeFov(eye) {
				t.Errorf("end %d view %d: fov %+v", i, eye, v.Fov)
			}
		}
	}
	want := Stats{Begun: 5, Submitted: 4}
	if got := f.p.Stats(); got != want {
		t.Errorf("stats = %+v, want %+v", got, want)
	}
	for eye, vp := range f.vps {
		collects, swaps, renders := vp.Counts()
		if collects != 5 || swaps != 5 || renders != 4 {
			t.Errorf("eye %d: collects %d swaps %d renders %d", eye, collects, swaps, renders)
		}
	}
	f.noViolations(t)
}

func TestNoOverlappingFrames(t *testing.T) {
	f := newFixture(t, options{})
	for range 5 {
		f.m.Tick()
		f.p.RenderTick()
	}
	if n := f.rt.Count(noop.CallBeginFrame); n != 1 {
		t.Fatalf("BeginFrame calls = %d before collect, want 1", n)
	}
	if !f.p.Pending() {
		t.Fatal("no pending frame")
	}
	if err := f.p.Collect(); err != nil {
		t.Fatal(err)
	}
	f.p.RenderTick()
	if n := f.rt.Count(noop.CallEndFrame); n != 1 {
		t.Errorf("EndFrame calls = %d, want 1", n)
	}
	if n := f.rt.Count(noop.CallBeginFrame); n != 2 {
		t.Errorf("BeginFrame calls = %d, want 2", n)
	}
	f.noViolations(t)
}

func TestCollectUsesFramePoses(t *testing.T) {
	f := newFixture(t, options{})

	var prev [2]linear.M4
	for frame := uint64(1); frame <= 3; frame++ {
		if err := f.step(); err != nil {
			t.Fatal(err)
		}
		snap := f.cache.Load(posecache.Predicted)
		if snap.Frame != frame {
			t.Fatalf("snapshot frame = %d, want %d", snap.Frame, frame)
		}
		for eye, vp := range f.vps {
			got := vp.Ready().Pose
			if want := eyeWorld(f.origin, eye, snap.DisplayTime); !nearM4(got, want) {
				t.Errorf("frame %d eye %d: collected pose\n%v\nwant\n%v", frame, eye, got, want)
			}
			if frame > 1 && got == prev[eye] {
				t.Errorf("frame %d eye %d: pose did not change", frame, eye)
			}
			prev[eye] = got
		}
	}
}

func TestLateResample(t *testing.T) {
	f := newFixture(t, options{})
	f.steps(t, 1)
	first := f.cache.Load(posecache.Predicted)
	f.steps(t, 1)

	late := f.cache.Load(posecache.Late)
	if late.Frame != 1 || late.DisplayTime != first.DisplayTime {
		t.Errorf("late snapshot = frame %d at %d, want frame 1 at %d", late.Frame, late.DisplayTime, first.DisplayTime)
	}
	for eye, vp := range f.vps {
		if want := eyeWorld(f.origin, eye, first.DisplayTime); !nearM4(vp.LastRenderPose(), want) {
			t.Errorf("eye %d: rendered with %v, want %v", eye, vp.LastRenderPose(), want)
		}
	}
	want := []posecache.Timing{posecache.Predicted, posecache.Late, posecache.Predicted}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !slices.Equal(f.hooks, want) {
		t.Errorf("transform hooks = %v, want %v", f.hooks, want)
	}
}

func TestSkipRender(t *testing.T) {
	f := newFixture(t, options{})
	f.rt.SetShouldRender(func(frame uint64) bool { return frame != 2 })
	f.steps(t, 3)

	ends := f.rt.FrameEnds()
	if len(ends) != 2 {
		t.Fatalf("frame ends = %d, want 2", len(ends))
	}
	if ends[1].Frame != 2 || ends[1].Layers != 0 {
		t.Errorf("frame 2 ended with %d layers", ends[1].Layers)
	}
	for _, c := range f.rt.CallsInFrame(2) {
		switch c {
		case noop.CallAcquireSwapchainImage, noop.CallWaitSwapchainImage, noop.CallReleaseSwapchainImage, noop.CallLocateViews:
			t.Errorf("skipped frame made %s call", c)
		}
	}
	for eye, vp := range f.vps {
		collects, _, renders := vp.Counts()
		if collects != 2 || renders != 1 {
			t.Errorf("eye %d: collects %d renders %d, want 2 and 1", eye, collects, renders)
		}
	}
	if s := f.p.Stats(); s.Skipped != 1 || s.Submitted != 1 {
		t.Errorf("stats = %+v", s)
	}
	f.noViolations(t)
}

func TestImageWaitFailureReleases(t *testing.T) {
	f := newFixture(t, options{})
	f.steps(t, 1)
	f.rt.Fail(noop.CallWaitSwapchainImage, xr.ErrorValidationFailure, 1)
	f.steps(t, 2)

	ends := f.rt.FrameEnds()
	if len(ends) != 2 {
		t.Fatalf("frame ends = %d, want 2", len(ends))
	}
	if ends[0].Layers != 0 {
		t.Errorf("failed frame ended with %d layers", ends[0].Layers)
	}
	if ends[1].Layers != 1 {
		t.Errorf("next frame ended with %d layers", ends[1].Layers)
	}
	calls := f.rt.CallsInFrame(1)
	acquires, releases := 0, 0
	for _, c := range calls {
		switch c {
		case noop.CallAcquireSwapchainImage:
			acquires++
		case noop.CallReleaseSwapchainImage:
			releases++
		}
	}
	if acquires != 1 || releases != 1 {
		t.Errorf("frame 1: %d acquires, %d releases, want 1 each", acquires, releases)
	}
	if s := f.p.Stats(); s.Aborted != 1 || s.Submitted != 1 {
		t.Errorf("stats = %+v", s)
	}
	if f.m.State() != session.SessionRunning {
		t.Errorf("state = %v", f.m.State())
	}
	f.noViolations(t)
}

func TestAcquireFailureEndsFrame(t *testing.T) {
	f := newFixture(t, options{})
	f.steps(t, 1)
	f.rt.Fail(noop.CallAcquireSwapchainImage, xr.ErrorValidationFailure, 1)
	f.steps(t, 1)

	if n := f.rt.Count(noop.CallReleaseSwapchainImage); n != 0 {
		t.Errorf("release calls = %d, want 0", n)
	}
	ends := f.rt.FrameEnds()
	if len(ends) != 1 || ends[0].Layers != 0 {
		t.Fatalf("frame ends = %+v", ends)
	}
	f.noViolations(t)
}

func TestCollectFailureEndsEmptyFrame(t *testing.T) {
	f := newFixture(t, options{})
	boom := errors.New("out of memory")
	f.vps[1].CollectHook = func(int) error { return boom }

	f.m.Tick()
	f.p.RenderTick()
	err := f.p.Collect()
	if !errors.Is(err, boom) {
		t.Fatalf("Collect = %v, want %v", err, boom)
	}
	if c, _, _ := f.vps[0].Counts(); c != 1 {
		t.Errorf("left eye collects = %d, want 1", c)
	}
	if st := f.p.CollectState(); st != NotStarted {
		t.Errorf("collect state = %v, want %v", st, NotStarted)
	}

	f.vps[1].CollectHook = nil
	f.steps(t, 2)
	ends := f.rt.FrameEnds()
	if len(ends) != 2 || ends[0].Layers != 0 || ends[1].Layers != 1 {
		t.Fatalf("frame ends = %+v", ends)
	}
	if s := f.p.Stats(); s.CollectFailures != 1 || s.Aborted != 1 {
		t.Errorf("stats = %+v", s)
	}
	f.noViolations(t)
}

func TestNoSceneFailsCollect(t *testing.T) {
	f := newFixture(t, options{
		scenes: render.SceneFunc(func() (render.Scene, bool) { return render.Scene{}, false }),
	})
	f.m.Tick()
	f.p.RenderTick()
	if err := f.p.Collect(); !errors.Is(err, ErrNoScene) {
		t.Fatalf("Collect = %v, want %v", err, ErrNoScene)
	}
	f.p.RenderTick()
	ends := f.rt.FrameEnds()
	if len(ends) != 1 || ends[0].Layers != 0 {
		t.Fatalf("frame ends = %+v", ends)
	}
	f.noViolations(t)
}

func TestCollectWithoutFrame(t *testing.T) {
	f := newFixture(t, options{})
	if err := f.p.Collect(); err != nil {
		t.Fatal(err)
	}
	if c, _, _ := f.vps[0].Counts(); c != 0 {
		t.Errorf("collects = %d", c)
	}
}

func TestConcurrentCollectClaimsOnce(t *testing.T) {
	f := newFixture(t, options{})
	f.m.Tick()
	f.p.RenderTick()

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := f.p.Collect(); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()
	for eye, vp := range f.vps {
		if c, s, _ := vp.Counts(); c != 1 || s != 1 {
			t.Errorf("eye %d: collects %d swaps %d, want 1", eye, c, s)
		}
	}
	if st := f.p.CollectState(); st != Done {
		t.Errorf("collect state = %v", st)
	}
}

func TestParallelCollect(t *testing.T) {
	f := newFixture(t, options{queues: 2, parallel: true})
	started := [2]chan struct{}{make(chan struct{}), make(chan struct{})}
	for _, vp := range f.vps {
		vp.CollectHook = func(eye int) error {
			close(started[eye])
			select {
			case <-started[1-eye]:
				return nil
			case <-time.After(5 * time.Second):
				return errors.New("eyes collected sequentially")
			}
		}
	}
	f.steps(t, 1)
	for _, vp := range f.vps {
		vp.CollectHook = nil
	}
	f.steps(t, 1)
	if ends := f.rt.FrameEnds(); len(ends) != 1 || ends[0].Layers != 1 {
		t.Fatalf("frame ends = %+v", ends)
	}
	f.noViolations(t)
}

func TestParallelCollectPanic(t *testing.T) {
	f := newFixture(t, options{queues: 2, parallel: true})
	f.vps[0].CollectHook = func(int) error { panic("driver crash") }

	f.m.Tick()
	f.p.RenderTick()
	err := f.p.Collect()
	if err == nil || !strings.Contains(err.Error(), "panicked: driver crash") {
		t.Fatalf("Collect = %v", err)
	}
	if c, _, _ := f.vps[1].Counts(); c != 1 {
		t.Errorf("right eye collects = %d, want 1", c)
	}
	f.vps[0].CollectHook = nil
	f.steps(t, 1)
	if ends := f.rt.FrameEnds(); len(ends) != 1 || ends[0].Layers != 0 {
		t.Fatalf("frame ends = %+v", ends)
	}
	if s := f.p.Stats(); s.CollectFailures != 1 {
		t.Errorf("stats = %+v", s)
	}
}

// orderViewport records the order of collect and render calls.
type orderViewport struct {
	render.Viewport
	eye int
	log *[]string
}

func (v *orderViewport) CollectVisible(w render.World, c render.Camera, mirrors, ui bool) (int, error) {
	*v.log = append(*v.log, fmt.Sprintf("collect%d", v.eye))
	return v.Viewport.CollectVisible(w, c, mirrors, ui)
}

func (v *orderViewport) Render(rt render.RenderTarget, w render.World, c render.Camera, shadow bool, mat any) error {
	*v.log = append(*v.log, fmt.Sprintf("render%d", v.eye))
	return v.Viewport.Render(rt, w, c, shadow, mat)
}

func TestReverseEyeOrder(t *testing.T) {
	var log []string
	f := newFixture(t, options{
		reverse: true,
		wrap: func(eye int, vp render.Viewport) render.Viewport {
			return &orderViewport{Viewport: vp, eye: eye, log: &log}
		},
	})
	if got := f.p.EyeOrder(); got != [2]int{1, 0} {
		t.Fatalf("eye order = %v", got)
	}
	f.steps(t, 1)
	f.m.Tick()
	f.p.RenderTick()

	want := []string{"collect1", "collect0", "render1", "render0"}
	if !slices.Equal(log, want) {
		t.Errorf("calls = %v, want %v", log, want)
	}
	ends := f.rt.FrameEnds()
	if len(ends) != 1 || len(ends[0].Views) != 2 {
		t.Fatalf("frame ends = %+v", ends)
	}
	scs := f.m.Handles().Adapter.Swapchains()
	for eye, v := range ends[0].Views {
		if v.SubImage.Swapchain != scs[eye].Handle {
			t.Errorf("view %d: swapchain %v, want %v", eye, v.SubImage.Swapchain, scs[eye].Handle)
		}
	}
	f.noViolations(t)
}

func TestSessionLossResetsPipeline(t *testing.T) {
	f := newFixture(t, options{})
	f.steps(t, 1)
	f.rt.Fail(noop.CallWaitFrame, xr.ErrorSessionLost, 1)
	f.steps(t, 1)
	if f.p.Pending() {
		t.Fatal("frame pending after failed wait")
	}

	f.m.Tick()
	if st := f.m.State(); st != session.RecreatePending {
		t.Fatalf("state = %v, want %v", st, session.RecreatePending)
	}
	if snap := f.cache.Load(posecache.Predicted); snap.Frame != 0 {
		t.Errorf("pose cache not reset: frame %d", snap.Frame)
	}
	f.p.RenderTick()
	if f.p.Pending() {
		t.Error("frame begun without a session")
	}

	f.clock.Advance(session.DefaultRetryInterval)
	f.tickUntil(t, session.SessionRunning)
	f.steps(t, 2)
	ends := f.rt.FrameEnds()
	if last := ends[len(ends)-1]; last.Layers != 1 {
		t.Errorf("frame after recovery ended with %d layers", last.Layers)
	}
	f.noViolations(t)
}

func TestEndFrameFailureNotSubmitted(t *testing.T) {
	f := newFixture(t, options{})
	f.steps(t, 1)
	f.rt.Fail(noop.CallEndFrame, xr.ErrorValidationFailure, 1)
	f.steps(t, 2)

	if s := f.p.Stats(); s.Submitted != 1 || s.Aborted != 1 || s.Begun != 3 {
		t.Errorf("stats = %+v, want 1 submitted and 1 aborted of 3", s)
	}
	if ends := f.rt.FrameEnds(); len(ends) != 1 || ends[0].Frame != 2 {
		t.Errorf("frame ends = %+v", ends)
	}
	f.noViolations(t)
}

func TestStaleTokenCannotClaimNextFrame(t *testing.T) {
	f := newFixture(t, options{})
	f.m.Tick()
	f.p.RenderTick()
	stale := f.p.Frame()
	if err := f.p.Collect(); err != nil {
		t.Fatal(err)
	}

	// Submits the collected frame and begins the next one.
	f.p.RenderTick()
	if !f.p.Pending() || f.p.Frame() != stale+1 {
		t.Fatalf("pending %v frame %d, want frame %d pending", f.p.Pending(), f.p.Frame(), stale+1)
	}
	if f.p.flags.claim(stale) {
		t.Fatal("a submitted frame's token claimed the next frame")
	}
	if st := f.p.CollectState(); st != NotStarted {
		t.Errorf("collect state = %v, want %v", st, NotStarted)
	}

	if err := f.p.Collect(); err != nil {
		t.Fatal(err)
	}
	f.p.RenderTick()
	ends := f.rt.FrameEnds()
	if len(ends) != 2 || ends[1].Layers != 1 {
		t.Fatalf("frame ends = %+v", ends)
	}
	f.noViolations(t)
}

func TestCollectBlockedAcrossResetDoesNotWedge(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	var origin linear.M4
	origin.I()
	scene := render.Scene{World: &render.StaticWorld{WorldName: "rig", Objects: 3}, Origin: origin}
	f := newFixture(t, options{
		scenes: render.SceneFunc(func() (render.Scene, bool) {
			if calls.Add(1) == 1 {
				close(entered)
				<-release
			}
			return scene, true
		}),
	})

	f.m.Tick()
	f.p.RenderTick()
	blocked := make(chan error, 1)
	go func() { blocked <- f.p.Collect() }()
	<-entered

	// The session dies while the claimed frame is being collected.
	f.rt.LoseSession()
	f.m.Tick()
	if f.p.Pending() {
		t.Fatal("frame pending after session loss")
	}
	f.clock.Advance(session.DefaultRetryInterval)
	f.tickUntil(t, session.SessionRunning)

	f.p.RenderTick()
	if !f.p.Pending() {
		t.Fatal("no frame begun after recovery")
	}
	if err := f.p.Collect(); err != nil {
		t.Fatal(err)
	}
	f.p.RenderTick()

	close(release)
	if err := <-blocked; !errors.Is(err, ErrStaleSnapshot) {
		t.Errorf("blocked Collect = %v, want %v", err, ErrStaleSnapshot)
	}
	if s := f.p.Stats(); s.CollectFailures != 0 {
		t.Errorf("dead frame counted as collect failure: %+v", s)
	}

	f.steps(t, 2)
	ends := f.rt.FrameEnds()
	if len(ends) < 2 {
		t.Fatalf("frame ends = %+v", ends)
	}
	for _, end := range ends[len(ends)-2:] {
		if end.Layers != 1 {
			t.Errorf("frame %d ended with %d layers", end.Frame, end.Layers)
		}
	}
	f.noViolations(t)
}
