// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package session

import (
	"github.com/gogpu/xrframe/internal/xrlog"
	"github.com/gogpu/xrframe/xr"
)

// pollEvents drains the runtime event queue. Poll failures are logged
// and end the loop; the next Tick polls again.
func (m *Machine) pollEvents() {
	var ev xr.EventDataBuffer
	for range maxEventsPerTick {
		// The runtime overwrites the buffer in place.
		ev = xr.EventDataBuffer{Type: xr.TypeEventDataBuffer}
		ok, err := m.cfg.Runtime.PollEvent(m.h.Instance, &ev)
		if err != nil {
			if !m.ReportResult(err) {
				xrlog.Logger().Warn("session: poll event", "err", err)
			}
			return
		}
		if !ok {
			return
		}
		m.handleEvent(&ev)
	}
}

func (m *Machine) handleEvent(ev *xr.EventDataBuffer) {
	log := xrlog.Logger()
	switch ev.Type {
	case xr.TypeEventDataSessionStateChanged:
		if ev.Session != m.h.Session || m.h.Session == 0 {
			log.Debug("session: event for stale session", "state", ev.State)
			return
		}
		m.sessionStateChanged(ev.State)
	case xr.TypeEventDataInstanceLossPending:
		log.Warn("session: instance loss pending", "time", ev.LossTime)
		m.markLoss(LossInstanceLostError)
	case xr.TypeEventDataEventsLost:
		log.Warn("session: runtime dropped events", "count", ev.LostEventCount)
	default:
		log.Debug("session: ignored event", "type", ev.Type)
	}
}

func (m *Machine) sessionStateChanged(state xr.SessionState) {
	log := xrlog.Logger()
	log.Debug("session: runtime state", "state", state)
	m.update(func(h *Handles) { h.SessionState = state })

	rt := m.cfg.Runtime
	switch state {
	case xr.SessionStateReady:
		err := rt.BeginSession(m.h.Session, &xr.SessionBeginInfo{
			Type:                         xr.TypeSessionBeginInfo,
			PrimaryViewConfigurationType: xr.ViewConfigurationPrimaryStereo,
		})
		if err != nil {
			if !m.ReportResult(err) {
				log.Warn("session: begin session", "err", err)
			}
			return
		}
		m.update(func(h *Handles) { h.Begun = true })
	case xr.SessionStateSynchronized, xr.SessionStateVisible, xr.SessionStateFocused:
		if m.State() != SessionCreated {
			return
		}
		m.setState(SessionRunning)
		h := m.Handles()
		for _, fn := range m.onReady {
			fn(h)
		}
	case xr.SessionStateStopping:
		m.update(func(h *Handles) { h.Begun = false })
		if err := rt.EndSession(m.h.Session); err != nil && !m.ReportResult(err) {
			log.Warn("session: end session", "err", err)
		}
		m.setState(SessionStopping)
	case xr.SessionStateLossPending:
		m.markLoss(LossSessionLossPending)
	case xr.SessionStateExiting:
		m.markLoss(LossSessionExiting)
	}
}
