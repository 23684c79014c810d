// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package noop

import (
	"errors"
	"math"
	"testing"

	"github.com/gogpu/xrframe/xr"
)

// startSession creates an instance and a running Vulkan session.
func startSession(t *testing.T, rt *Runtime) (xr.Instance, xr.Session) {
	t.Helper()
	inst, err := rt.CreateInstance(&xr.InstanceCreateInfo{Type: xr.TypeInstanceCreateInfo})
	if err != nil {
		t.Fatalf("CreateInstance: %v", err)
	}
	sys, err := rt.GetSystem(inst, &xr.SystemGetInfo{Type: xr.TypeSystemGetInfo, FormFactor: xr.FormFactorHeadMountedDisplay})
	if err != nil {
		t.Fatalf("GetSystem: %v", err)
	}
	s, err := rt.CreateSession(inst, &xr.SessionCreateInfo{
		Type:     xr.TypeSessionCreateInfo,
		SystemID: sys,
		Next:     &xr.GraphicsBindingVulkan{Type: xr.TypeGraphicsBindingVulkan, Device: 1},
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	err = rt.BeginSession(s, &xr.SessionBeginInfo{
		Type:                         xr.TypeSessionBeginInfo,
		PrimaryViewConfigurationType: xr.ViewConfigurationPrimaryStereo,
	})
	if err != nil {
		t.Fatalf("BeginSession: %v", err)
	}
	return inst, s
}

func drainStates(t *testing.T, rt *Runtime, inst xr.Instance) []xr.SessionState {
	t.Helper()
	var states []xr.SessionState
	for {
		ev := xr.EventDataBuffer{Type: xr.TypeEventDataBuffer}
		ok, err := rt.PollEvent(inst, &ev)
		if err != nil {
			t.Fatalf("PollEvent: %v", err)
		}
		if !ok {
			return states
		}
		if ev.Type == xr.TypeEventDataSessionStateChanged {
			states = append(states, ev.State)
		}
	}
}

func TestSessionEventSequence(t *testing.T) {
	rt := New(Config{})
	inst, s := startSession(t, rt)
	want := []xr.SessionState{
		xr.SessionStateIdle, xr.SessionStateReady,
		xr.SessionStateSynchronized, xr.SessionStateVisible, xr.SessionStateFocused,
	}
	got := drainStates(t, rt, inst)
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("state[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if err := rt.RequestExitSession(s); err != nil {
		t.Fatalf("RequestExitSession: %v", err)
	}
	if err := rt.EndSession(s); err != nil {
		t.Fatalf("EndSession: %v", err)
	}
	got = drainStates(t, rt, inst)
	if len(got) != 3 || got[0] != xr.SessionStateStopping || got[2] != xr.SessionStateExiting {
		t.Errorf("exit states = %v", got)
	}
}

func TestPollEventRequiresResetType(t *testing.T) {
	rt := New(Config{})
	inst, _ := startSession(t, rt)
	ev := xr.EventDataBuffer{Type: xr.TypeEventDataBuffer}
	if ok, err := rt.PollEvent(inst, &ev); !ok || err != nil {
		t.Fatalf("first poll = %v, %v", ok, err)
	}
	// ev.Type now holds the concrete event type.
	_, err := rt.PollEvent(inst, &ev)
	if xr.ResultOf(err) != xr.ErrorValidationFailure {
		t.Errorf("poll with stale type = %v, want validation failure", err)
	}
	if len(rt.Violations()) != 1 {
		t.Errorf("violations = %v", rt.Violations())
	}
}

func TestFrameCallOrder(t *testing.T) {
	rt := New(Config{})
	_, s := startSession(t, rt)
	begin := &xr.FrameBeginInfo{Type: xr.TypeFrameBeginInfo}

	if err := rt.BeginFrame(s, begin); xr.ResultOf(err) != xr.ErrorCallOrderInvalid {
		t.Errorf("BeginFrame without WaitFrame = %v", err)
	}

	state := xr.FrameState{Type: xr.TypeFrameState}
	if err := rt.WaitFrame(s, &xr.FrameWaitInfo{Type: xr.TypeFrameWaitInfo}, &state); err != nil {
		t.Fatalf("WaitFrame: %v", err)
	}
	if !state.ShouldRender || state.PredictedDisplayTime <= 0 {
		t.Errorf("frame state = %+v", state)
	}
	if err := rt.BeginFrame(s, begin); err != nil {
		t.Fatalf("BeginFrame: %v", err)
	}
	if err := rt.WaitFrame(s, &xr.FrameWaitInfo{Type: xr.TypeFrameWaitInfo}, &state); err != nil {
		t.Fatalf("second WaitFrame: %v", err)
	}
	if err := rt.BeginFrame(s, begin); xr.ResultOf(err) != xr.ErrorCallOrderInvalid {
		t.Errorf("overlapping BeginFrame = %v", err)
	}
	end := &xr.FrameEndInfo{
		Type:                 xr.TypeFrameEndInfo,
		DisplayTime:          state.PredictedDisplayTime,
		EnvironmentBlendMode: xr.EnvironmentBlendModeOpaque,
	}
	if err := rt.EndFrame(s, end); err != nil {
		t.Fatalf("EndFrame: %v", err)
	}
	if err := rt.EndFrame(s, end); xr.ResultOf(err) != xr.ErrorCallOrderInvalid {
		t.Errorf("EndFrame without BeginFrame = %v", err)
	}
	if n := len(rt.Violations()); n != 3 {
		t.Errorf("violations = %d, want 3: %v", n, rt.Violations())
	}
	ends := rt.FrameEnds()
	if len(ends) != 1 || ends[0].Frame != 1 || ends[0].Layers != 0 {
		t.Errorf("frame ends = %+v", ends)
	}
}

func TestSwapchainAcquireWaitRelease(t *testing.T) {
	rt := New(Config{ImageCount: 2})
	_, s := startSession(t, rt)
	sc, err := rt.CreateSwapchain(s, &xr.SwapchainCreateInfo{
		Type:        xr.TypeSwapchainCreateInfo,
		Format:      VulkanFormats[3],
		SampleCount: 1,
		Width:       1440,
		Height:      1600,
		FaceCount:   1,
		ArraySize:   1,
		MipCount:    1,
	})
	if err != nil {
		t.Fatalf("CreateSwapchain: %v", err)
	}
	images, err := rt.EnumerateSwapchainImages(sc)
	if err != nil || len(images) != 2 {
		t.Fatalf("images = %v, %v", images, err)
	}
	if images[0].Type != xr.TypeSwapchainImageVulkan {
		t.Errorf("image type = %d", images[0].Type)
	}

	wait := &xr.SwapchainImageWaitInfo{Type: xr.TypeSwapchainImageWaitInfo, Timeout: xr.InfiniteDuration}
	release := &xr.SwapchainImageReleaseInfo{Type: xr.TypeSwapchainImageReleaseInfo}
	if err := rt.WaitSwapchainImage(sc, wait); xr.ResultOf(err) != xr.ErrorCallOrderInvalid {
		t.Errorf("wait before acquire = %v", err)
	}
	if err := rt.ReleaseSwapchainImage(sc, release); xr.ResultOf(err) != xr.ErrorCallOrderInvalid {
		t.Errorf("release before acquire = %v", err)
	}
	for want := uint32(0); want < 3; want++ {
		idx, err := rt.AcquireSwapchainImage(sc, &xr.SwapchainImageAcquireInfo{Type: xr.TypeSwapchainImageAcquireInfo})
		if err != nil {
			t.Fatalf("acquire: %v", err)
		}
		if idx != want%2 {
			t.Errorf("index = %d, want %d", idx, want%2)
		}
		if rt.Outstanding() != 1 {
			t.Errorf("outstanding = %d, want 1", rt.Outstanding())
		}
		if err := rt.WaitSwapchainImage(sc, wait); err != nil {
			t.Fatalf("wait: %v", err)
		}
		if err := rt.ReleaseSwapchainImage(sc, release); err != nil {
			t.Fatalf("release: %v", err)
		}
	}
	if rt.Outstanding() != 0 {
		t.Errorf("outstanding = %d after release", rt.Outstanding())
	}
}

func TestSwapchainNegotiationErrors(t *testing.T) {
	rt := New(Config{SampleCount: 4, MaxSampleCount: 2})
	_, s := startSession(t, rt)
	info := xr.SwapchainCreateInfo{
		Type: xr.TypeSwapchainCreateInfo, Format: 12345, SampleCount: 1, Width: 100, Height: 100,
	}
	if _, err := rt.CreateSwapchain(s, &info); xr.ResultOf(err) != xr.ErrorSwapchainFormatUnsupported {
		t.Errorf("unknown format = %v", err)
	}
	info.Format = VulkanFormats[1]
	info.SampleCount = 4
	if _, err := rt.CreateSwapchain(s, &info); xr.ResultOf(err) != xr.ErrorFeatureUnsupported {
		t.Errorf("too many samples = %v", err)
	}
	info.SampleCount = 2
	if _, err := rt.CreateSwapchain(s, &info); err != nil {
		t.Errorf("two samples = %v", err)
	}
}

func TestFaultInjection(t *testing.T) {
	rt := New(Config{})
	rt.Fail(CallCreateInstance, xr.ErrorRuntimeUnavailable, 2)
	info := &xr.InstanceCreateInfo{Type: xr.TypeInstanceCreateInfo}
	for i := 0; i < 2; i++ {
		if _, err := rt.CreateInstance(info); !errors.Is(err, xr.ErrorRuntimeUnavailable) {
			t.Errorf("call %d = %v, want injected failure", i, err)
		}
	}
	if _, err := rt.CreateInstance(info); err != nil {
		t.Errorf("third call = %v, want success", err)
	}
	if got := rt.Count(CallCreateInstance); got != 3 {
		t.Errorf("Count = %d, want 3", got)
	}
}

func TestShouldRenderPredicate(t *testing.T) {
	rt := New(Config{})
	_, s := startSession(t, rt)
	rt.SetShouldRender(func(frame uint64) bool { return frame != 2 })
	for frame := uint64(1); frame <= 3; frame++ {
		state := xr.FrameState{Type: xr.TypeFrameState}
		if err := rt.WaitFrame(s, &xr.FrameWaitInfo{Type: xr.TypeFrameWaitInfo}, &state); err != nil {
			t.Fatal(err)
		}
		if state.ShouldRender != (frame != 2) {
			t.Errorf("frame %d ShouldRender = %v", frame, state.ShouldRender)
		}
		if err := rt.BeginFrame(s, &xr.FrameBeginInfo{Type: xr.TypeFrameBeginInfo}); err != nil {
			t.Fatal(err)
		}
		end := &xr.FrameEndInfo{Type: xr.TypeFrameEndInfo, DisplayTime: state.PredictedDisplayTime}
		if err := rt.EndFrame(s, end); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLoseSession(t *testing.T) {
	rt := New(Config{})
	inst, s := startSession(t, rt)
	drainStates(t, rt, inst)
	rt.LoseSession()
	if got := drainStates(t, rt, inst); len(got) != 1 || got[0] != xr.SessionStateLossPending {
		t.Errorf("states = %v, want [LossPending]", got)
	}
	state := xr.FrameState{Type: xr.TypeFrameState}
	err := rt.WaitFrame(s, &xr.FrameWaitInfo{Type: xr.TypeFrameWaitInfo}, &state)
	if !xr.IsSessionLoss(err) {
		t.Errorf("WaitFrame after loss = %v", err)
	}
	if err := rt.DestroySession(s); err != nil {
		t.Errorf("DestroySession after loss = %v", err)
	}
	if live := rt.Live(); live.Sessions != 0 || live.Instances != 1 {
		t.Errorf("live = %+v", live)
	}
}

func TestLocateViews(t *testing.T) {
	rt := New(Config{})
	_, s := startSession(t, rt)
	local, err := rt.CreateReferenceSpace(s, &xr.ReferenceSpaceCreateInfo{
		Type:                 xr.TypeReferenceSpaceCreateInfo,
		ReferenceSpaceType:   xr.ReferenceSpaceLocal,
		PoseInReferenceSpace: xr.IdentityPose(),
	})
	if err != nil {
		t.Fatal(err)
	}
	info := &xr.ViewLocateInfo{
		Type:                  xr.TypeViewLocateInfo,
		ViewConfigurationType: xr.ViewConfigurationPrimaryStereo,
		DisplayTime:           5e9,
		Space:                 local,
	}
	views := make([]xr.View, 2)
	if _, err := rt.LocateViews(s, info, &xr.ViewState{Type: xr.TypeViewState}, views); xr.ResultOf(err) != xr.ErrorValidationFailure {
		t.Errorf("untagged views = %v", err)
	}
	for i := range views {
		views[i].Type = xr.TypeView
	}
	state := xr.ViewState{Type: xr.TypeViewState}
	n, err := rt.LocateViews(s, info, &state, views)
	if err != nil || n != 2 {
		t.Fatalf("LocateViews = %d, %v", n, err)
	}
	if !state.ViewStateFlags.PoseValid() {
		t.Error("view state not valid")
	}
	dx := views[1].Pose.Position.X - views[0].Pose.Position.X
	dz := views[1].Pose.Position.Z - views[0].Pose.Position.Z
	if d := math.Hypot(float64(dx), float64(dz)); math.Abs(d-IPD) > 1e-4 {
		t.Errorf("eye separation = %v, want %v", d, IPD)
	}
	if views[0].Fov != EyeFov(0) {
		t.Errorf("fov = %+v", views[0].Fov)
	}
}

func TestRelativeInverse(t *testing.T) {
	head := HeadPose(3e9)
	got := relative(head, head)
	if math.Abs(float64(got.Orientation.W)-1) > 1e-5 {
		t.Errorf("orientation = %+v, want identity", got.Orientation)
	}
	p := got.Position
	if math.Abs(float64(p.X))+math.Abs(float64(p.Y))+math.Abs(float64(p.Z)) > 1e-5 {
		t.Errorf("position = %+v, want zero", p)
	}
}
