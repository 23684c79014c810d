// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package session

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/xrframe/binding"
	"github.com/gogpu/xrframe/input"
	"github.com/gogpu/xrframe/internal/xrlog"
	"github.com/gogpu/xrframe/posecache"
	"github.com/gogpu/xrframe/render"
	"github.com/gogpu/xrframe/xr"
)

// DefaultRetryInterval is the delay between failed creation attempts.
const DefaultRetryInterval = 1500 * time.Millisecond

// maxEventsPerTick bounds one poll loop.
const maxEventsPerTick = 64

// TrackerExtension enables the tracker interaction profile.
const TrackerExtension = "XR_HTCX_vive_tracker_interaction"

// Config configures a Machine.
type Config struct {
	Runtime  xr.Runtime
	Renderer render.Renderer

	// Adapter forces a graphics binding. When nil the first compatible
	// registered adapter is selected.
	Adapter binding.Adapter

	// Cache receives input poses. Input is disabled when nil.
	Cache *posecache.Cache

	// TrackerRoles lists tracked body roles; nil selects
	// input.DefaultRoles.
	TrackerRoles []string

	// ApplicationName is reported to the runtime.
	ApplicationName string

	// Space is the app space reference type. Default: local.
	Space xr.ReferenceSpaceType

	// RetryInterval is the delay after a failed step or a loss.
	// Default: DefaultRetryInterval.
	RetryInterval time.Duration

	// Now returns the current time. Default: time.Now.
	Now func() time.Time
}

// Handles is a consistent snapshot of the live runtime objects.
type Handles struct {
	Instance xr.Instance
	System   xr.SystemID
	Session  xr.Session
	AppSpace xr.Space
	Views    []xr.ViewConfigurationView

	// ViewSpace tracks the head.
	ViewSpace xr.Space

	// SessionState is the last state the runtime reported.
	SessionState xr.SessionState

	// Begun is set between BeginSession and EndSession. Frames may
	// only be submitted while it is set.
	Begun bool

	Adapter binding.Adapter
	Input   *input.System
}

// Machine is the session state machine.
//
// Tick, Close and the hooks run on the render context. State,
// Handles, ReportResult, RequestShutdown and the monitoring switches
// are safe from any goroutine.
type Machine struct {
	cfg Config

	state      atomic.Int32
	monitoring atomic.Bool
	loss       atomic.Int32
	lastLoss   atomic.Int32

	nextTry time.Time

	mu sync.Mutex
	h  Handles

	onReady    []func(Handles)
	onTeardown []func(LossReason)
}

// New returns a Machine in DesktopOnly with monitoring disabled.
func New(cfg Config) (*Machine, error) {
	if cfg.Runtime == nil {
		return nil, errors.New("session: nil runtime")
	}
	if cfg.Renderer == nil {
		return nil, errors.New("session: nil renderer")
	}
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = DefaultRetryInterval
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Space == 0 {
		cfg.Space = xr.ReferenceSpaceLocal
	}
	if cfg.ApplicationName == "" {
		cfg.ApplicationName = "xrframe"
	}
	m := &Machine{cfg: cfg}
	m.h.Adapter = cfg.Adapter
	return m, nil
}

// State returns the current state.
func (m *Machine) State() State { return State(m.state.Load()) }

// LastLoss returns the reason of the most recently handled loss.
func (m *Machine) LastLoss() LossReason { return LossReason(m.lastLoss.Load()) }

// Handles returns a snapshot of the live handles.
func (m *Machine) Handles() Handles {
	m.mu.Lock()
	defer m.mu.Unlock()
	h := m.h
	h.Views = append([]xr.ViewConfigurationView(nil), m.h.Views...)
	return h
}

// OnSessionReady registers fn to run when the session starts running.
func (m *Machine) OnSessionReady(fn func(Handles)) {
	m.onReady = append(m.onReady, fn)
}

// OnTeardown registers fn to run before session resources are
// destroyed.
func (m *Machine) OnTeardown(fn func(LossReason)) {
	m.onTeardown = append(m.onTeardown, fn)
}

// EnableMonitoring starts probing for a runtime on the next Tick.
func (m *Machine) EnableMonitoring() {
	if !m.monitoring.Swap(true) {
		xrlog.Logger().Info("session: monitoring enabled")
	}
}

// DisableMonitoring stops probing. A live session is shut down on the
// next Tick.
func (m *Machine) DisableMonitoring() {
	if !m.monitoring.Swap(false) {
		return
	}
	xrlog.Logger().Info("session: monitoring disabled")
	if m.State() != DesktopOnly || m.Handles().Instance != 0 {
		m.markLoss(LossShutdownRequested)
	}
}

// RequestShutdown tears down the session and instance on the next Tick
// and disables monitoring.
func (m *Machine) RequestShutdown() {
	m.monitoring.Store(false)
	m.markLoss(LossShutdownRequested)
}

// ReportResult classifies err from any runtime call. Losses are
// recorded for the next Tick and reported as true.
func (m *Machine) ReportResult(err error) bool {
	reason := Classify(err)
	if reason == LossNone {
		return false
	}
	m.markLoss(reason)
	return true
}

// markLoss records the first loss since the last Tick.
func (m *Machine) markLoss(r LossReason) {
	if m.loss.CompareAndSwap(int32(LossNone), int32(r)) {
		xrlog.Logger().Debug("session: loss signaled", "reason", r)
	}
}

func (m *Machine) setState(s State) {
	old := State(m.state.Swap(int32(s)))
	if old != s {
		xrlog.Logger().Info("session: state", "from", old, "to", s)
	}
}

func (m *Machine) update(fn func(h *Handles)) {
	m.mu.Lock()
	fn(&m.h)
	m.mu.Unlock()
}

// Tick advances the machine by one step.
func (m *Machine) Tick() {
	if m.h.Instance != 0 {
		m.pollEvents()
	}
	if r := LossReason(m.loss.Swap(int32(LossNone))); r != LossNone {
		m.handleLoss(r)
		return
	}
	if !m.monitoring.Load() {
		return
	}

	now := m.cfg.Now()
	switch m.State() {
	case DesktopOnly:
		if now.Before(m.nextTry) {
			return
		}
		m.createInstance()
	case InstanceReady:
		if now.Before(m.nextTry) {
			return
		}
		m.getSystem()
	case SystemReady:
		if now.Before(m.nextTry) {
			return
		}
		m.createSession()
	case SessionStopping:
		m.teardownSession(LossNone)
		m.setState(DesktopOnly)
		m.retryLater()
	case RecreatePending:
		if now.Before(m.nextTry) {
			return
		}
		m.setState(DesktopOnly)
	}
}

// Close tears down every runtime object immediately and disables
// monitoring.
func (m *Machine) Close() {
	m.monitoring.Store(false)
	m.loss.Store(int32(LossNone))
	if m.h.Instance == 0 && m.h.Session == 0 {
		return
	}
	m.handleLoss(LossShutdownRequested)
}

func (m *Machine) retryLater() {
	m.nextTry = m.cfg.Now().Add(m.cfg.RetryInterval)
}

// fail handles a failed creation step: losses go to the loss path,
// anything else waits for the retry interval.
func (m *Machine) fail(step string, err error) {
	if m.h.Instance != 0 && m.ReportResult(err) {
		xrlog.Logger().Warn("session: "+step+" lost the runtime", "err", err)
		return
	}
	xrlog.Logger().Warn("session: "+step+" failed, retrying", "err", err, "retry", m.cfg.RetryInterval)
	m.retryLater()
}

func (m *Machine) createInstance() {
	if m.h.Instance != 0 {
		m.setState(InstanceReady)
		return
	}
	if m.h.Adapter == nil {
		a, err := binding.Select(m.cfg.Renderer)
		if err != nil {
			m.fail("select graphics binding", err)
			return
		}
		m.update(func(h *Handles) { h.Adapter = a })
	}
	exts := []string{m.h.Adapter.Extension()}
	if m.cfg.Cache != nil {
		exts = append(exts, TrackerExtension)
	}
	inst, err := m.cfg.Runtime.CreateInstance(&xr.InstanceCreateInfo{
		Type:              xr.TypeInstanceCreateInfo,
		ApplicationName:   m.cfg.ApplicationName,
		EngineName:        "xrframe",
		EnabledExtensions: exts,
	})
	if err != nil {
		m.fail("create instance", err)
		return
	}
	m.update(func(h *Handles) { h.Instance = inst })
	m.setState(InstanceReady)
}

func (m *Machine) getSystem() {
	sys, err := m.cfg.Runtime.GetSystem(m.h.Instance, &xr.SystemGetInfo{
		Type:       xr.TypeSystemGetInfo,
		FormFactor: xr.FormFactorHeadMountedDisplay,
	})
	if err != nil {
		m.fail("get system", err)
		return
	}
	m.update(func(h *Handles) { h.System = sys })
	m.setState(SystemReady)
}

func (m *Machine) bindingContext() binding.Context {
	return binding.Context{
		Runtime:  m.cfg.Runtime,
		Instance: m.h.Instance,
		System:   m.h.System,
		Session:  m.h.Session,
	}
}

func (m *Machine) createSession() {
	rt := m.cfg.Runtime
	views, err := rt.EnumerateViewConfigurationViews(m.h.Instance, m.h.System, xr.ViewConfigurationPrimaryStereo)
	if err != nil {
		m.fail("enumerate views", err)
		return
	}
	if len(views) != binding.ViewCount {
		m.fail("view configuration", fmt.Errorf("%w: runtime reports %d", binding.ErrViewCount, len(views)))
		return
	}

	s, err := m.h.Adapter.CreateSession(m.bindingContext(), m.cfg.Renderer)
	if errors.Is(err, binding.ErrDeferred) {
		return
	}
	if err != nil {
		m.fail("create session", err)
		return
	}
	m.update(func(h *Handles) {
		h.Session = s
		h.Views = views
		h.SessionState = xr.SessionStateUnknown
	})

	if err := m.createSessionObjects(); err != nil {
		m.teardownSession(LossNone)
		m.fail("create session objects", err)
		return
	}
	m.setState(SessionCreated)
}

func (m *Machine) createSessionObjects() error {
	rt := m.cfg.Runtime
	space, err := rt.CreateReferenceSpace(m.h.Session, &xr.ReferenceSpaceCreateInfo{
		Type:                 xr.TypeReferenceSpaceCreateInfo,
		ReferenceSpaceType:   m.cfg.Space,
		PoseInReferenceSpace: xr.IdentityPose(),
	})
	if err != nil {
		return err
	}
	m.update(func(h *Handles) { h.AppSpace = space })
	head, err := rt.CreateReferenceSpace(m.h.Session, &xr.ReferenceSpaceCreateInfo{
		Type:                 xr.TypeReferenceSpaceCreateInfo,
		ReferenceSpaceType:   xr.ReferenceSpaceView,
		PoseInReferenceSpace: xr.IdentityPose(),
	})
	if err != nil {
		return err
	}
	m.update(func(h *Handles) { h.ViewSpace = head })

	if err := m.h.Adapter.CreateSwapchains(m.bindingContext(), m.cfg.Renderer); err != nil {
		return err
	}

	if m.cfg.Cache == nil {
		return nil
	}
	in := m.h.Input
	if in == nil {
		in, err = input.New(rt, m.h.Instance, m.cfg.Cache, m.cfg.TrackerRoles)
		if err != nil {
			return err
		}
		m.update(func(h *Handles) { h.Input = in })
	}
	return in.Attach(m.h.Session)
}

// teardownSession destroys session-scoped objects: input spaces,
// swapchains after the GPU is idle, the reference spaces and the
// session.
func (m *Machine) teardownSession(reason LossReason) {
	if m.h.Session == 0 {
		return
	}
	for _, fn := range m.onTeardown {
		fn(reason)
	}
	log := xrlog.Logger()
	if m.h.Input != nil {
		m.h.Input.Detach()
	}
	if a := m.h.Adapter; a != nil {
		if err := a.WaitForGPUIdle(); err != nil {
			log.Warn("session: wait for GPU idle", "err", err)
		}
		a.DestroySwapchains()
	}
	for _, sp := range []xr.Space{m.h.ViewSpace, m.h.AppSpace} {
		if sp == 0 {
			continue
		}
		if err := m.cfg.Runtime.DestroySpace(sp); err != nil {
			log.Debug("session: destroy space", "err", err)
		}
	}
	if err := m.cfg.Runtime.DestroySession(m.h.Session); err != nil {
		log.Debug("session: destroy session", "err", err)
	}
	m.update(func(h *Handles) {
		h.Session = 0
		h.AppSpace = 0
		h.ViewSpace = 0
		h.Views = nil
		h.Begun = false
		h.SessionState = xr.SessionStateUnknown
	})
	log.Info("session: session destroyed", "reason", reason)
}

func (m *Machine) teardownInstance() {
	if m.h.Input != nil {
		m.h.Input.Destroy()
	}
	if m.h.Instance != 0 {
		if err := m.cfg.Runtime.DestroyInstance(m.h.Instance); err != nil {
			xrlog.Logger().Debug("session: destroy instance", "err", err)
		}
	}
	m.update(func(h *Handles) {
		h.Input = nil
		h.Instance = 0
		h.System = 0
	})
}

// handleLoss tears down what reason invalidates and schedules recovery.
func (m *Machine) handleLoss(reason LossReason) {
	m.lastLoss.Store(int32(reason))
	m.setState(SessionLost)
	log := xrlog.Logger()
	log.Warn("session: lost", "reason", reason)

	m.teardownSession(reason)
	if reason.InvalidatesInstance() {
		m.teardownInstance()
	}
	if reason == LossShutdownRequested {
		m.setState(DesktopOnly)
		return
	}
	m.setState(RecreatePending)
	m.retryLater()
}
