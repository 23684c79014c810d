// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package session

import (
	"slices"
	"testing"
	"time"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/xrframe/binding"
	_ "github.com/gogpu/xrframe/binding/gles"
	_ "github.com/gogpu/xrframe/binding/vulkan"
	"github.com/gogpu/xrframe/posecache"
	"github.com/gogpu/xrframe/render"
	"github.com/gogpu/xrframe/xr"
	"github.com/gogpu/xrframe/xr/noop"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type harness struct {
	rt       *noop.Runtime
	renderer *render.SoftwareRenderer
	clock    *fakeClock
	m        *Machine
}

func newHarness(t *testing.T, cfg noop.Config, backend gputypes.Backend) *harness {
	t.Helper()
	rt := noop.New(cfg)
	r, err := render.NewSoftwareRenderer(backend, 1, render.NewSoftwareTextures(false))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(r.Close)
	clock := &fakeClock{now: time.Unix(1000, 0)}
	m, err := New(Config{
		Runtime:      rt,
		Renderer:     r,
		Cache:        posecache.New(),
		TrackerRoles: []string{"waist"},
		Now:          clock.Now,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(m.Close)
	return &harness{rt: rt, renderer: r, clock: clock, m: m}
}

// tickUntil ticks until the machine reaches want.
func (h *harness) tickUntil(t *testing.T, want State) {
	t.Helper()
	for range 16 {
		if h.m.State() == want {
			return
		}
		h.m.Tick()
	}
	if h.m.State() != want {
		t.Fatalf("state = %v, want %v", h.m.State(), want)
	}
}

func (h *harness) running(t *testing.T) {
	t.Helper()
	h.m.EnableMonitoring()
	h.tickUntil(t, SessionRunning)
}

func TestStartup(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	var ready []Handles
	h.m.OnSessionReady(func(hs Handles) { ready = append(ready, hs) })

	h.m.Tick()
	if h.rt.Count(noop.CallCreateInstance) != 0 {
		t.Fatal("machine probed without monitoring")
	}

	h.m.EnableMonitoring()
	want := []State{InstanceReady, SystemReady, SessionCreated, SessionRunning}
	for _, s := range want {
		h.m.Tick()
		if h.m.State() != s {
			t.Fatalf("state = %v, want %v", h.m.State(), s)
		}
	}

	hs := h.m.Handles()
	if !hs.Begun || hs.SessionState != xr.SessionStateFocused {
		t.Errorf("handles = %+v", hs)
	}
	if hs.Session == 0 || hs.AppSpace == 0 || hs.ViewSpace == 0 || len(hs.Views) != 2 || hs.Input == nil {
		t.Errorf("incomplete handles %+v", hs)
	}
	if hs.Adapter == nil || hs.Adapter.Name() != binding.Vulkan {
		t.Errorf("adapter = %v", hs.Adapter)
	}
	if len(ready) != 1 || ready[0].Session != hs.Session {
		t.Errorf("ready hooks = %d", len(ready))
	}
	live := h.rt.Live()
	// App and view spaces plus two hands and one tracker.
	if live.Sessions != 1 || live.Swapchains != 2 || live.Spaces != 5 {
		t.Errorf("live = %+v", live)
	}
}

func TestRuntimeUnavailableRetries(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	h.rt.SetAvailable(false)
	h.m.EnableMonitoring()

	h.m.Tick()
	h.m.Tick()
	if got := h.rt.Count(noop.CallCreateInstance); got != 1 {
		t.Fatalf("CreateInstance calls = %d, want 1 before the retry interval", got)
	}
	if h.m.State() != DesktopOnly {
		t.Fatalf("state = %v", h.m.State())
	}

	h.clock.Advance(DefaultRetryInterval)
	h.m.Tick()
	if got := h.rt.Count(noop.CallCreateInstance); got != 2 {
		t.Fatalf("CreateInstance calls = %d, want 2", got)
	}

	h.rt.SetAvailable(true)
	h.clock.Advance(DefaultRetryInterval)
	h.tickUntil(t, SessionRunning)
}

func TestSessionLostRecreates(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	var reasons []LossReason
	h.m.OnTeardown(func(r LossReason) { reasons = append(reasons, r) })
	h.running(t)
	first := h.m.Handles()

	if !h.m.ReportResult(xr.ErrorSessionLost) {
		t.Fatal("session lost not classified as loss")
	}
	if h.m.ReportResult(xr.ErrorTimeInvalid) {
		t.Fatal("time invalid classified as loss")
	}
	h.m.Tick()
	if h.m.State() != RecreatePending || h.m.LastLoss() != LossSessionLostError {
		t.Fatalf("state = %v loss = %v", h.m.State(), h.m.LastLoss())
	}
	live := h.rt.Live()
	if live.Sessions != 0 || live.Swapchains != 0 || live.Spaces != 0 || live.Instances != 1 {
		t.Errorf("after session loss live = %+v", live)
	}
	if len(reasons) != 1 || reasons[0] != LossSessionLostError {
		t.Errorf("teardown hooks = %v", reasons)
	}

	h.m.Tick()
	if h.m.State() != RecreatePending {
		t.Fatal("left RecreatePending before the retry interval")
	}
	h.clock.Advance(DefaultRetryInterval)
	h.m.Tick()
	if h.m.State() != DesktopOnly {
		t.Fatalf("state = %v, want DesktopOnly", h.m.State())
	}
	h.tickUntil(t, SessionRunning)
	again := h.m.Handles()
	if again.Instance != first.Instance || again.Session == first.Session {
		t.Errorf("recreated handles = %+v, first = %+v", again, first)
	}
}

func TestLossPendingEvent(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	h.running(t)
	h.rt.LoseSession()
	h.m.Tick()
	if h.m.State() != RecreatePending || h.m.LastLoss() != LossSessionLossPending {
		t.Fatalf("state = %v loss = %v", h.m.State(), h.m.LastLoss())
	}
	if h.rt.Live().Sessions != 0 {
		t.Error("lost session not destroyed")
	}
}

func TestInstanceLossDestroysInstance(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	h.running(t)
	h.rt.LoseInstance()
	h.m.Tick()
	if h.m.LastLoss() != LossInstanceLostError {
		t.Fatalf("loss = %v", h.m.LastLoss())
	}
	live := h.rt.Live()
	if live.Instances != 0 || live.Sessions != 0 || live.ActionSets != 0 {
		t.Errorf("live = %+v", live)
	}
	if hs := h.m.Handles(); hs.Instance != 0 || hs.Input != nil {
		t.Errorf("handles = %+v", hs)
	}
	h.clock.Advance(DefaultRetryInterval)
	h.tickUntil(t, SessionRunning)
}

func TestRuntimeStopKeepsInstance(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	h.running(t)
	h.rt.RequestStop()
	h.m.Tick()
	if h.m.State() != DesktopOnly {
		t.Fatalf("state = %v, want DesktopOnly", h.m.State())
	}
	if h.rt.Count(noop.CallEndSession) != 1 {
		t.Error("EndSession not called on STOPPING")
	}
	if live := h.rt.Live(); live.Sessions != 0 || live.Instances != 1 {
		t.Errorf("live = %+v", live)
	}
	h.clock.Advance(DefaultRetryInterval)
	h.tickUntil(t, SessionRunning)
}

func TestExitingTearsDownInstance(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	h.running(t)
	if err := h.rt.RequestExitSession(h.m.Handles().Session); err != nil {
		t.Fatal(err)
	}
	h.m.Tick()
	if h.m.LastLoss() != LossSessionExiting || h.m.State() != RecreatePending {
		t.Fatalf("state = %v loss = %v", h.m.State(), h.m.LastLoss())
	}
	if h.rt.Live().Instances != 0 {
		t.Error("instance kept after exit")
	}
}

func TestRequestShutdown(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	h.running(t)
	h.m.RequestShutdown()
	h.m.Tick()
	if h.m.State() != DesktopOnly || h.m.LastLoss() != LossShutdownRequested {
		t.Fatalf("state = %v loss = %v", h.m.State(), h.m.LastLoss())
	}
	if live := h.rt.Live(); live != (noop.Live{}) {
		t.Errorf("live = %+v", live)
	}
	calls := h.rt.Count(noop.CallCreateInstance)
	h.clock.Advance(10 * DefaultRetryInterval)
	h.m.Tick()
	if h.rt.Count(noop.CallCreateInstance) != calls {
		t.Error("machine probed after shutdown")
	}
}

func TestDisableMonitoringShutsDown(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	h.running(t)
	h.m.DisableMonitoring()
	h.m.Tick()
	if h.rt.Live().Instances != 0 || h.m.State() != DesktopOnly {
		t.Errorf("state = %v live = %+v", h.m.State(), h.rt.Live())
	}
}

func TestTeardownOrder(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	var destroyedAtHook int
	h.m.OnTeardown(func(LossReason) { destroyedAtHook = h.rt.Count(noop.CallDestroySwapchain) })
	h.running(t)
	start := len(h.rt.Calls())
	h.m.ReportResult(xr.ErrorSessionLost)
	h.m.Tick()
	if destroyedAtHook != 0 {
		t.Error("teardown hook ran after swapchains were destroyed")
	}

	var calls []noop.Call
	for _, rec := range h.rt.Calls()[start:] {
		calls = append(calls, rec.Call)
	}
	firstSwapchain := slices.Index(calls, noop.CallDestroySwapchain)
	lastSpace := -1
	for i, c := range calls {
		if c == noop.CallDestroySpace {
			lastSpace = i
		}
	}
	session := slices.Index(calls, noop.CallDestroySession)
	if firstSwapchain < 0 || session < 0 {
		t.Fatalf("calls = %v", calls)
	}
	if slices.Index(calls, noop.CallDestroySpace) > firstSwapchain {
		t.Error("input spaces must go before swapchains")
	}
	if lastSpace < firstSwapchain || session < lastSpace {
		t.Errorf("teardown order = %v", calls)
	}
}

func TestGLSessionDeferredToRenderThread(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendGL)
	h.renderer.SetRenderThread(func() bool { return false })
	h.m.EnableMonitoring()
	h.tickUntil(t, SystemReady)
	h.m.Tick()
	h.m.Tick()
	if h.m.State() != SystemReady || h.rt.Count(noop.CallCreateSession) != 0 {
		t.Fatalf("state = %v", h.m.State())
	}

	// Deferral retries on the next tick without waiting.
	h.renderer.SetRenderThread(nil)
	h.m.Tick()
	if h.m.State() != SessionCreated {
		t.Fatalf("state = %v, want SessionCreated", h.m.State())
	}
	if h.m.Handles().Adapter.Name() != binding.GLES {
		t.Errorf("adapter = %s", h.m.Handles().Adapter.Name())
	}
}

func TestNonStereoNeverCreatesSession(t *testing.T) {
	h := newHarness(t, noop.Config{ViewCount: 3}, gputypes.BackendVulkan)
	h.m.EnableMonitoring()
	for range 5 {
		h.m.Tick()
		h.clock.Advance(DefaultRetryInterval)
	}
	if h.m.State() != SystemReady || h.rt.Count(noop.CallCreateSession) != 0 {
		t.Errorf("state = %v sessions = %d", h.m.State(), h.rt.Count(noop.CallCreateSession))
	}
}

func TestSwapchainFailureTearsDownSession(t *testing.T) {
	h := newHarness(t, noop.Config{}, gputypes.BackendVulkan)
	h.rt.Fail(noop.CallCreateSwapchain, xr.ErrorValidationFailure, 1)
	h.m.EnableMonitoring()
	h.tickUntil(t, SystemReady)
	h.m.Tick()
	if h.m.State() != SystemReady {
		t.Fatalf("state = %v, want SystemReady", h.m.State())
	}
	if live := h.rt.Live(); live.Sessions != 0 || live.Swapchains != 0 || live.Spaces != 0 {
		t.Errorf("partial session left behind: %+v", live)
	}
	h.clock.Advance(DefaultRetryInterval)
	h.tickUntil(t, SessionRunning)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		err  error
		want LossReason
	}{
		{nil, LossNone},
		{xr.ErrorSessionLost, LossSessionLostError},
		{xr.SessionLossPending, LossSessionLossPending},
		{xr.ErrorInstanceLost, LossInstanceLostError},
		{xr.ErrorRuntimeUnavailable, LossRuntimeUnavailable},
		{xr.ErrorRuntimeFailure, LossRuntimeUnavailable},
		{xr.ErrorValidationFailure, LossNone},
	}
	for _, tt := range tests {
		if got := Classify(tt.err); got != tt.want {
			t.Errorf("Classify(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
	if !LossShutdownRequested.InvalidatesInstance() || LossSessionLostError.InvalidatesInstance() {
		t.Error("InvalidatesInstance")
	}
}
