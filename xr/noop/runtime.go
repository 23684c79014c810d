// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package noop

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gogpu/wgpu/hal/gles/gl"
	"github.com/gogpu/wgpu/hal/vulkan/vk"

	"github.com/gogpu/xrframe/xr"
)

// Config describes the simulated headset. Zero fields take defaults.
type Config struct {
	// ViewCount is the number of views in the stereo configuration.
	// Default: 2.
	ViewCount int

	// Width and Height are the recommended per-eye image size.
	// Default: 1440x1600.
	Width, Height uint32

	// SampleCount is the recommended swapchain sample count. Default: 1.
	SampleCount uint32

	// MaxSampleCount is the largest sample count CreateSwapchain accepts.
	// Default: SampleCount. A value below SampleCount simulates a runtime
	// that recommends more than it supports.
	MaxSampleCount uint32

	// ImageCount is the number of images per swapchain. Default: 3.
	ImageCount int

	// Formats overrides the swapchain formats reported for every session.
	// By default the list depends on the session's graphics binding.
	Formats []int64

	// FramePeriod is the predicted display period. Default: 90 Hz.
	FramePeriod xr.Duration

	// Pace makes WaitFrame sleep for one frame period.
	Pace bool
}

func (c *Config) defaults() {
	if c.ViewCount == 0 {
		c.ViewCount = 2
	}
	if c.Width == 0 {
		c.Width = 1440
	}
	if c.Height == 0 {
		c.Height = 1600
	}
	if c.SampleCount == 0 {
		c.SampleCount = 1
	}
	if c.MaxSampleCount == 0 {
		c.MaxSampleCount = c.SampleCount
	}
	if c.ImageCount == 0 {
		c.ImageCount = 3
	}
	if c.FramePeriod == 0 {
		c.FramePeriod = xr.Duration(time.Second / 90)
	}
}

// VulkanFormats is the format list reported for Vulkan sessions, in the
// order a typical runtime reports them.
var VulkanFormats = []int64{
	int64(vk.FormatR16g16b16a16Sfloat),
	int64(vk.FormatR8g8b8a8Unorm),
	int64(vk.FormatB8g8r8a8Srgb),
	int64(vk.FormatR8g8b8a8Srgb),
	int64(vk.FormatD32Sfloat),
}

// GLFormats is the format list reported for OpenGL sessions.
var GLFormats = []int64{
	gl.RGBA16F,
	gl.RGBA8,
	gl.SRGB8_ALPHA8,
	gl.DEPTH24_STENCIL8,
}

// Record is one entry of the call log.
type Record struct {
	Call Call

	// Frame is the number of the most recently begun frame when the call
	// was made, zero before the first BeginFrame.
	Frame uint64
}

// FrameEnd records one EndFrame call.
type FrameEnd struct {
	Frame       uint64
	DisplayTime xr.Time
	Layers      int
	Views       []xr.CompositionLayerProjectionView
}

type fault struct {
	result xr.Result
	times  int
}

type queued struct {
	instance xr.Instance
	ev       xr.EventDataBuffer
}

type instanceState struct {
	lost    bool
	session xr.Session
}

type sessionState struct {
	instance      xr.Instance
	binding       any
	state         xr.SessionState
	lost          bool
	exitRequested bool
	attached      bool

	displayTime xr.Time
	waits       uint64
	waited      bool
	begun       bool
	frame       uint64
}

type spaceState struct {
	session   xr.Session
	reference xr.ReferenceSpaceType
	action    xr.Action
	path      xr.Path
}

type swapchainState struct {
	session  xr.Session
	info     xr.SwapchainCreateInfo
	images   []xr.SwapchainImage
	next     uint32
	acquired []uint32
	waited   int
}

type actionState struct {
	set        xr.ActionSet
	name       string
	subactions []xr.Path
}

// Runtime is a simulated OpenXR runtime. It implements xr.Runtime.
//
// Thread safety: Runtime is safe for concurrent use.
type Runtime struct {
	mu  sync.Mutex
	cfg Config

	next       uint64
	instances  map[xr.Instance]*instanceState
	sessions   map[xr.Session]*sessionState
	spaces     map[xr.Space]*spaceState
	swapchains map[xr.Swapchain]*swapchainState
	actionSets map[xr.ActionSet]xr.Instance
	actions    map[xr.Action]*actionState
	paths      map[string]xr.Path
	pathNames  map[xr.Path]string

	events       []queued
	faults       map[Call]*fault
	unavailable  bool
	shouldRender func(frame uint64) bool
	poseValid    map[string]bool
	suggested    map[string]int

	frame      uint64
	calls      []Record
	ends       []FrameEnd
	violations []string
}

var _ xr.Runtime = (*Runtime)(nil)

// New returns a simulated runtime.
func New(cfg Config) *Runtime {
	cfg.defaults()
	return &Runtime{
		cfg:        cfg,
		instances:  make(map[xr.Instance]*instanceState),
		sessions:   make(map[xr.Session]*sessionState),
		spaces:     make(map[xr.Space]*spaceState),
		swapchains: make(map[xr.Swapchain]*swapchainState),
		actionSets: make(map[xr.ActionSet]xr.Instance),
		actions:    make(map[xr.Action]*actionState),
		paths:      make(map[string]xr.Path),
		pathNames:  make(map[xr.Path]string),
		faults:     make(map[Call]*fault),
		poseValid: map[string]bool{
			"/user/hand/left":  true,
			"/user/hand/right": true,
		},
		suggested: make(map[string]int),
	}
}

// Config returns the effective configuration.
func (r *Runtime) Config() Config {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cfg
}

func (r *Runtime) handle() uint64 {
	r.next++
	return r.next
}

// enter logs c and returns an injected fault, if any. r.mu must be held.
func (r *Runtime) enter(c Call) error {
	r.calls = append(r.calls, Record{Call: c, Frame: r.frame})
	f, ok := r.faults[c]
	if !ok {
		return nil
	}
	if f.times > 0 {
		f.times--
		if f.times == 0 {
			delete(r.faults, c)
		}
	}
	return f.result
}

func (r *Runtime) violate(format string, args ...any) {
	r.violations = append(r.violations, fmt.Sprintf(format, args...))
}

func tag(got, want xr.StructureType) error {
	if got != want {
		return xr.ErrorValidationFailure
	}
	return nil
}

func (r *Runtime) instance(h xr.Instance) (*instanceState, error) {
	in, ok := r.instances[h]
	if !ok {
		return nil, xr.ErrorHandleInvalid
	}
	if in.lost {
		return nil, xr.ErrorInstanceLost
	}
	return in, nil
}

func (r *Runtime) session(h xr.Session) (*sessionState, error) {
	s, ok := r.sessions[h]
	if !ok {
		return nil, xr.ErrorHandleInvalid
	}
	if r.instances[s.instance].lost {
		return nil, xr.ErrorInstanceLost
	}
	if s.lost {
		return nil, xr.ErrorSessionLost
	}
	return s, nil
}

func (r *Runtime) swapchain(h xr.Swapchain) (*swapchainState, error) {
	sc, ok := r.swapchains[h]
	if !ok {
		return nil, xr.ErrorHandleInvalid
	}
	if _, err := r.session(sc.session); err != nil {
		return nil, err
	}
	return sc, nil
}

func (r *Runtime) push(instance xr.Instance, ev xr.EventDataBuffer) {
	r.events = append(r.events, queued{instance: instance, ev: ev})
}

func (r *Runtime) pushState(s xr.Session, st *sessionState, state xr.SessionState) {
	st.state = state
	r.push(st.instance, xr.EventDataBuffer{
		Type:    xr.TypeEventDataSessionStateChanged,
		Session: s,
		State:   state,
		Time:    st.displayTime,
	})
}

// CreateInstance implements xr.Runtime.
func (r *Runtime) CreateInstance(info *xr.InstanceCreateInfo) (xr.Instance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallCreateInstance); err != nil {
		return 0, err
	}
	if r.unavailable {
		return 0, xr.ErrorRuntimeUnavailable
	}
	if err := tag(info.Type, xr.TypeInstanceCreateInfo); err != nil {
		return 0, err
	}
	h := xr.Instance(r.handle())
	r.instances[h] = &instanceState{}
	return h, nil
}

// DestroyInstance implements xr.Runtime. Child objects are destroyed
// with the instance.
func (r *Runtime) DestroyInstance(h xr.Instance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallDestroyInstance); err != nil {
		return err
	}
	in, ok := r.instances[h]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	if in.session != 0 {
		r.destroySession(in.session)
	}
	for set, owner := range r.actionSets {
		if owner == h {
			r.destroyActionSet(set)
		}
	}
	kept := r.events[:0]
	for _, q := range r.events {
		if q.instance != h {
			kept = append(kept, q)
		}
	}
	r.events = kept
	delete(r.instances, h)
	return nil
}

// PollEvent implements xr.Runtime.
func (r *Runtime) PollEvent(h xr.Instance, ev *xr.EventDataBuffer) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallPollEvent); err != nil {
		return false, err
	}
	if _, ok := r.instances[h]; !ok {
		return false, xr.ErrorHandleInvalid
	}
	if err := tag(ev.Type, xr.TypeEventDataBuffer); err != nil {
		r.violate("PollEvent with stale event buffer type %d", ev.Type)
		return false, err
	}
	for i, q := range r.events {
		if q.instance != h {
			continue
		}
		*ev = q.ev
		r.events = append(r.events[:i], r.events[i+1:]...)
		return true, nil
	}
	return false, nil
}

// GetSystem implements xr.Runtime.
func (r *Runtime) GetSystem(h xr.Instance, info *xr.SystemGetInfo) (xr.SystemID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallGetSystem); err != nil {
		return 0, err
	}
	if _, err := r.instance(h); err != nil {
		return 0, err
	}
	if err := tag(info.Type, xr.TypeSystemGetInfo); err != nil {
		return 0, err
	}
	if info.FormFactor != xr.FormFactorHeadMountedDisplay {
		return 0, xr.ErrorFormFactorUnsupported
	}
	return xr.SystemID(h)<<8 | 1, nil
}

// EnumerateViewConfigurationViews implements xr.Runtime.
func (r *Runtime) EnumerateViewConfigurationViews(h xr.Instance, _ xr.SystemID, viewType xr.ViewConfigurationType) ([]xr.ViewConfigurationView, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallEnumerateViewConfigurationViews); err != nil {
		return nil, err
	}
	if _, err := r.instance(h); err != nil {
		return nil, err
	}
	if viewType != xr.ViewConfigurationPrimaryStereo {
		return nil, xr.ErrorViewConfigurationTypeUnsupported
	}
	views := make([]xr.ViewConfigurationView, r.cfg.ViewCount)
	for i := range views {
		views[i] = xr.ViewConfigurationView{
			Type:                            xr.TypeViewConfigurationView,
			RecommendedImageRectWidth:       r.cfg.Width,
			MaxImageRectWidth:               r.cfg.Width * 2,
			RecommendedImageRectHeight:      r.cfg.Height,
			MaxImageRectHeight:              r.cfg.Height * 2,
			RecommendedSwapchainSampleCount: r.cfg.SampleCount,
			MaxSwapchainSampleCount:         r.cfg.MaxSampleCount,
		}
	}
	return views, nil
}

// StringToPath implements xr.Runtime.
func (r *Runtime) StringToPath(h xr.Instance, path string) (xr.Path, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallStringToPath); err != nil {
		return 0, err
	}
	if _, err := r.instance(h); err != nil {
		return 0, err
	}
	if !strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") {
		return 0, xr.ErrorPathInvalid
	}
	if p, ok := r.paths[path]; ok {
		return p, nil
	}
	p := xr.Path(r.handle())
	r.paths[path] = p
	r.pathNames[p] = path
	return p, nil
}

// CreateSession implements xr.Runtime. The graphics binding in info.Next
// must be a tagged *xr.GraphicsBindingVulkan or *xr.GraphicsBindingOpenGL
// carrying a non-zero device or context.
func (r *Runtime) CreateSession(h xr.Instance, info *xr.SessionCreateInfo) (xr.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallCreateSession); err != nil {
		return 0, err
	}
	in, err := r.instance(h)
	if err != nil {
		return 0, err
	}
	if err := tag(info.Type, xr.TypeSessionCreateInfo); err != nil {
		return 0, err
	}
	switch b := info.Next.(type) {
	case *xr.GraphicsBindingVulkan:
		if err := tag(b.Type, xr.TypeGraphicsBindingVulkan); err != nil {
			return 0, err
		}
		if b.Device == 0 {
			return 0, xr.ErrorGraphicsDeviceInvalid
		}
	case *xr.GraphicsBindingOpenGL:
		if err := tag(b.Type, xr.TypeGraphicsBindingOpenGLXlib); err != nil {
			return 0, err
		}
		if b.Context == 0 {
			return 0, xr.ErrorGraphicsDeviceInvalid
		}
	default:
		return 0, xr.ErrorGraphicsDeviceInvalid
	}
	if in.session != 0 {
		return 0, xr.ErrorLimitReached
	}
	s := xr.Session(r.handle())
	st := &sessionState{instance: h, binding: info.Next, displayTime: xr.Time(time.Second)}
	r.sessions[s] = st
	in.session = s
	r.pushState(s, st, xr.SessionStateIdle)
	r.pushState(s, st, xr.SessionStateReady)
	return s, nil
}

// DestroySession implements xr.Runtime. Spaces and swapchains of the
// session are destroyed with it.
func (r *Runtime) DestroySession(s xr.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallDestroySession); err != nil {
		return err
	}
	if _, ok := r.sessions[s]; !ok {
		return xr.ErrorHandleInvalid
	}
	r.destroySession(s)
	return nil
}

func (r *Runtime) destroySession(s xr.Session) {
	st := r.sessions[s]
	for h, sp := range r.spaces {
		if sp.session == s {
			delete(r.spaces, h)
		}
	}
	for h, sc := range r.swapchains {
		if sc.session == s {
			delete(r.swapchains, h)
		}
	}
	if in, ok := r.instances[st.instance]; ok && in.session == s {
		in.session = 0
	}
	delete(r.sessions, s)
}

// BeginSession implements xr.Runtime. The session must be READY.
func (r *Runtime) BeginSession(s xr.Session, info *xr.SessionBeginInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallBeginSession); err != nil {
		return err
	}
	st, err := r.session(s)
	if err != nil {
		return err
	}
	if err := tag(info.Type, xr.TypeSessionBeginInfo); err != nil {
		return err
	}
	if info.PrimaryViewConfigurationType != xr.ViewConfigurationPrimaryStereo {
		return xr.ErrorViewConfigurationTypeUnsupported
	}
	if st.state != xr.SessionStateReady {
		if st.state >= xr.SessionStateSynchronized && st.state <= xr.SessionStateFocused {
			return xr.ErrorSessionRunning
		}
		return xr.ErrorSessionNotReady
	}
	r.pushState(s, st, xr.SessionStateSynchronized)
	r.pushState(s, st, xr.SessionStateVisible)
	r.pushState(s, st, xr.SessionStateFocused)
	return nil
}

// EndSession implements xr.Runtime. The session must be STOPPING.
func (r *Runtime) EndSession(s xr.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallEndSession); err != nil {
		return err
	}
	st, err := r.session(s)
	if err != nil {
		return err
	}
	if st.state != xr.SessionStateStopping {
		return xr.ErrorSessionNotStopping
	}
	st.begun = false
	st.waited = false
	r.pushState(s, st, xr.SessionStateIdle)
	if st.exitRequested {
		r.pushState(s, st, xr.SessionStateExiting)
	}
	return nil
}

// RequestExitSession implements xr.Runtime.
func (r *Runtime) RequestExitSession(s xr.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallRequestExitSession); err != nil {
		return err
	}
	st, err := r.session(s)
	if err != nil {
		return err
	}
	if !running(st.state) {
		return xr.ErrorSessionNotRunning
	}
	st.exitRequested = true
	r.pushState(s, st, xr.SessionStateStopping)
	return nil
}

func running(s xr.SessionState) bool {
	return s >= xr.SessionStateSynchronized && s <= xr.SessionStateStopping
}

// CreateReferenceSpace implements xr.Runtime.
func (r *Runtime) CreateReferenceSpace(s xr.Session, info *xr.ReferenceSpaceCreateInfo) (xr.Space, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallCreateReferenceSpace); err != nil {
		return 0, err
	}
	if _, err := r.session(s); err != nil {
		return 0, err
	}
	if err := tag(info.Type, xr.TypeReferenceSpaceCreateInfo); err != nil {
		return 0, err
	}
	switch info.ReferenceSpaceType {
	case xr.ReferenceSpaceView, xr.ReferenceSpaceLocal, xr.ReferenceSpaceStage:
	default:
		return 0, xr.ErrorReferenceSpaceUnsupported
	}
	h := xr.Space(r.handle())
	r.spaces[h] = &spaceState{session: s, reference: info.ReferenceSpaceType}
	return h, nil
}

// DestroySpace implements xr.Runtime.
func (r *Runtime) DestroySpace(h xr.Space) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallDestroySpace); err != nil {
		return err
	}
	if _, ok := r.spaces[h]; !ok {
		return xr.ErrorHandleInvalid
	}
	delete(r.spaces, h)
	return nil
}

// LocateSpace implements xr.Runtime.
func (r *Runtime) LocateSpace(h, base xr.Space, t xr.Time, loc *xr.SpaceLocation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallLocateSpace); err != nil {
		return err
	}
	sp, ok := r.spaces[h]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	bs, ok := r.spaces[base]
	if !ok {
		return xr.ErrorHandleInvalid
	}
	if _, err := r.session(sp.session); err != nil {
		return err
	}
	if err := tag(loc.Type, xr.TypeSpaceLocation); err != nil {
		return err
	}
	if t <= 0 {
		return xr.ErrorTimeInvalid
	}
	pose, valid := r.spacePose(sp, t)
	basePose, baseValid := r.spacePose(bs, t)
	if !valid || !baseValid {
		loc.LocationFlags = 0
		return nil
	}
	loc.Pose = relative(basePose, pose)
	loc.LocationFlags = xr.LocationOrientationValid | xr.LocationPositionValid |
		xr.LocationOrientationTracked | xr.LocationPositionTracked
	return nil
}

func (r *Runtime) spacePose(sp *spaceState, t xr.Time) (xr.Posef, bool) {
	if sp.action == 0 {
		if sp.reference == xr.ReferenceSpaceView {
			return HeadPose(t), true
		}
		return xr.IdentityPose(), true
	}
	name := r.pathNames[sp.path]
	if !r.poseValid[name] {
		return xr.Posef{}, false
	}
	return DevicePose(name, t), true
}

// EnumerateSwapchainFormats implements xr.Runtime.
func (r *Runtime) EnumerateSwapchainFormats(s xr.Session) ([]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallEnumerateSwapchainFormats); err != nil {
		return nil, err
	}
	st, err := r.session(s)
	if err != nil {
		return nil, err
	}
	return append([]int64(nil), r.formats(st)...), nil
}

func (r *Runtime) formats(st *sessionState) []int64 {
	if r.cfg.Formats != nil {
		return r.cfg.Formats
	}
	if _, ok := st.binding.(*xr.GraphicsBindingOpenGL); ok {
		return GLFormats
	}
	return VulkanFormats
}

// CreateSwapchain implements xr.Runtime.
func (r *Runtime) CreateSwapchain(s xr.Session, info *xr.SwapchainCreateInfo) (xr.Swapchain, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallCreateSwapchain); err != nil {
		return 0, err
	}
	st, err := r.session(s)
	if err != nil {
		return 0, err
	}
	if err := tag(info.Type, xr.TypeSwapchainCreateInfo); err != nil {
		return 0, err
	}
	supported := false
	for _, f := range r.formats(st) {
		if f == info.Format {
			supported = true
			break
		}
	}
	if !supported {
		return 0, xr.ErrorSwapchainFormatUnsupported
	}
	if info.SampleCount == 0 || info.SampleCount > r.cfg.MaxSampleCount {
		return 0, xr.ErrorFeatureUnsupported
	}
	if info.Width == 0 || info.Height == 0 || info.Width > r.cfg.Width*2 || info.Height > r.cfg.Height*2 {
		return 0, xr.ErrorSwapchainRectInvalid
	}
	imageType := xr.TypeSwapchainImageVulkan
	if _, ok := st.binding.(*xr.GraphicsBindingOpenGL); ok {
		imageType = xr.TypeSwapchainImageOpenGL
	}
	sc := &swapchainState{session: s, info: *info, images: make([]xr.SwapchainImage, r.cfg.ImageCount)}
	for i := range sc.images {
		sc.images[i] = xr.SwapchainImage{Type: imageType, Image: 0x1000 + r.handle()}
	}
	h := xr.Swapchain(r.handle())
	r.swapchains[h] = sc
	return h, nil
}

// DestroySwapchain implements xr.Runtime.
func (r *Runtime) DestroySwapchain(h xr.Swapchain) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallDestroySwapchain); err != nil {
		return err
	}
	if _, ok := r.swapchains[h]; !ok {
		return xr.ErrorHandleInvalid
	}
	delete(r.swapchains, h)
	return nil
}

// EnumerateSwapchainImages implements xr.Runtime.
func (r *Runtime) EnumerateSwapchainImages(h xr.Swapchain) ([]xr.SwapchainImage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallEnumerateSwapchainImages); err != nil {
		return nil, err
	}
	sc, err := r.swapchain(h)
	if err != nil {
		return nil, err
	}
	return append([]xr.SwapchainImage(nil), sc.images...), nil
}

// AcquireSwapchainImage implements xr.Runtime.
func (r *Runtime) AcquireSwapchainImage(h xr.Swapchain, info *xr.SwapchainImageAcquireInfo) (uint32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallAcquireSwapchainImage); err != nil {
		return 0, err
	}
	sc, err := r.swapchain(h)
	if err != nil {
		return 0, err
	}
	if err := tag(info.Type, xr.TypeSwapchainImageAcquireInfo); err != nil {
		return 0, err
	}
	if len(sc.acquired) == len(sc.images) {
		r.violate("AcquireSwapchainImage on swapchain %d with every image acquired", h)
		return 0, xr.ErrorCallOrderInvalid
	}
	idx := sc.next
	sc.next = (sc.next + 1) % uint32(len(sc.images))
	sc.acquired = append(sc.acquired, idx)
	return idx, nil
}

// WaitSwapchainImage implements xr.Runtime. It never blocks.
func (r *Runtime) WaitSwapchainImage(h xr.Swapchain, info *xr.SwapchainImageWaitInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallWaitSwapchainImage); err != nil {
		return err
	}
	sc, err := r.swapchain(h)
	if err != nil {
		return err
	}
	if err := tag(info.Type, xr.TypeSwapchainImageWaitInfo); err != nil {
		return err
	}
	if sc.waited >= len(sc.acquired) {
		r.violate("WaitSwapchainImage on swapchain %d without an acquired image", h)
		return xr.ErrorCallOrderInvalid
	}
	if info.Timeout <= 0 {
		return xr.TimeoutExpired
	}
	sc.waited++
	return nil
}

// ReleaseSwapchainImage implements xr.Runtime. The oldest acquired
// image is released.
func (r *Runtime) ReleaseSwapchainImage(h xr.Swapchain, info *xr.SwapchainImageReleaseInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallReleaseSwapchainImage); err != nil {
		return err
	}
	sc, err := r.swapchain(h)
	if err != nil {
		return err
	}
	if err := tag(info.Type, xr.TypeSwapchainImageReleaseInfo); err != nil {
		return err
	}
	if len(sc.acquired) == 0 {
		r.violate("ReleaseSwapchainImage on swapchain %d without an acquired image", h)
		return xr.ErrorCallOrderInvalid
	}
	// Releasing an image whose wait failed is accepted so that callers
	// can always give back what they acquired.
	sc.acquired = sc.acquired[1:]
	if sc.waited > 0 {
		sc.waited--
	}
	return nil
}

// WaitFrame implements xr.Runtime. Frames are numbered from 1 in the
// order WaitFrame returns them.
func (r *Runtime) WaitFrame(s xr.Session, info *xr.FrameWaitInfo, state *xr.FrameState) error {
	r.mu.Lock()
	if err := r.enter(CallWaitFrame); err != nil {
		r.mu.Unlock()
		return err
	}
	st, err := r.session(s)
	if err != nil {
		r.mu.Unlock()
		return err
	}
	if err := tag(info.Type, xr.TypeFrameWaitInfo); err != nil {
		r.mu.Unlock()
		return err
	}
	if err := tag(state.Type, xr.TypeFrameState); err != nil {
		r.mu.Unlock()
		return err
	}
	if !running(st.state) {
		r.mu.Unlock()
		return xr.ErrorSessionNotRunning
	}
	st.waits++
	st.waited = true
	st.displayTime += xr.Time(r.cfg.FramePeriod)
	state.PredictedDisplayTime = st.displayTime
	state.PredictedDisplayPeriod = r.cfg.FramePeriod
	state.ShouldRender = st.state == xr.SessionStateVisible || st.state == xr.SessionStateFocused
	if state.ShouldRender && r.shouldRender != nil {
		state.ShouldRender = r.shouldRender(st.waits)
	}
	pace := r.cfg.Pace
	period := time.Duration(r.cfg.FramePeriod)
	r.mu.Unlock()

	if pace {
		time.Sleep(period)
	}
	return nil
}

// BeginFrame implements xr.Runtime. A BeginFrame without a preceding
// WaitFrame, or while another frame is begun, is a call-order violation.
func (r *Runtime) BeginFrame(s xr.Session, info *xr.FrameBeginInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallBeginFrame); err != nil {
		return err
	}
	st, err := r.session(s)
	if err != nil {
		return err
	}
	if err := tag(info.Type, xr.TypeFrameBeginInfo); err != nil {
		return err
	}
	if st.begun {
		r.violate("BeginFrame for frame %d while frame %d is in flight", st.waits, st.frame)
		return xr.ErrorCallOrderInvalid
	}
	if !st.waited {
		r.violate("BeginFrame without WaitFrame")
		return xr.ErrorCallOrderInvalid
	}
	st.waited = false
	st.begun = true
	st.frame = st.waits
	r.frame = st.frame
	return nil
}

// EndFrame implements xr.Runtime.
func (r *Runtime) EndFrame(s xr.Session, info *xr.FrameEndInfo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallEndFrame); err != nil {
		// A failed EndFrame still ends the frame.
		if st, ok := r.sessions[s]; ok {
			st.begun = false
		}
		return err
	}
	st, err := r.session(s)
	if err != nil {
		return err
	}
	if err := tag(info.Type, xr.TypeFrameEndInfo); err != nil {
		return err
	}
	if !st.begun {
		r.violate("EndFrame without BeginFrame")
		return xr.ErrorCallOrderInvalid
	}
	st.begun = false
	if info.DisplayTime <= 0 {
		return xr.ErrorTimeInvalid
	}
	end := FrameEnd{Frame: st.frame, DisplayTime: info.DisplayTime, Layers: len(info.Layers)}
	for _, l := range info.Layers {
		p, ok := l.(*xr.CompositionLayerProjection)
		if !ok || p.Type != xr.TypeCompositionLayerProjection {
			return xr.ErrorLayerInvalid
		}
		if len(p.Views) != r.cfg.ViewCount {
			return xr.ErrorValidationFailure
		}
		if _, ok := r.spaces[p.Space]; !ok {
			return xr.ErrorHandleInvalid
		}
		for _, v := range p.Views {
			if v.Type != xr.TypeCompositionLayerProjectionView {
				return xr.ErrorValidationFailure
			}
			sc, ok := r.swapchains[v.SubImage.Swapchain]
			if !ok {
				return xr.ErrorHandleInvalid
			}
			if len(sc.acquired) != 0 {
				r.violate("EndFrame with unreleased image on swapchain %d", v.SubImage.Swapchain)
				return xr.ErrorLayerInvalid
			}
			if v.SubImage.ImageRect.Extent.Width <= 0 || v.SubImage.ImageRect.Extent.Height <= 0 {
				return xr.ErrorSwapchainRectInvalid
			}
		}
		end.Views = append(end.Views, p.Views...)
	}
	r.ends = append(r.ends, end)
	return nil
}

// LocateViews implements xr.Runtime.
func (r *Runtime) LocateViews(s xr.Session, info *xr.ViewLocateInfo, state *xr.ViewState, views []xr.View) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.enter(CallLocateViews); err != nil {
		return 0, err
	}
	if _, err := r.session(s); err != nil {
		return 0, err
	}
	if err := tag(info.Type, xr.TypeViewLocateInfo); err != nil {
		return 0, err
	}
	if err := tag(state.Type, xr.TypeViewState); err != nil {
		return 0, err
	}
	if info.ViewConfigurationType != xr.ViewConfigurationPrimaryStereo {
		return 0, xr.ErrorViewConfigurationTypeUnsupported
	}
	base, ok := r.spaces[info.Space]
	if !ok {
		return 0, xr.ErrorHandleInvalid
	}
	if info.DisplayTime <= 0 {
		return 0, xr.ErrorTimeInvalid
	}
	if len(views) < r.cfg.ViewCount {
		return 0, xr.ErrorSizeInsufficient
	}
	basePose, _ := r.spacePose(base, info.DisplayTime)
	for i := 0; i < r.cfg.ViewCount; i++ {
		if err := tag(views[i].Type, xr.TypeView); err != nil {
			return 0, err
		}
		views[i].Pose = relative(basePose, EyePose(i, info.DisplayTime))
		views[i].Fov = EyeFov(i)
	}
	state.ViewStateFlags = xr.LocationOrientationValid | xr.LocationPositionValid |
		xr.LocationOrientationTracked | xr.LocationPositionTracked
	return r.cfg.ViewCount, nil
}
