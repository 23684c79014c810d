// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package noop

import "github.com/gogpu/xrframe/xr"

// Fail makes the next times calls of c return result. A times value of
// zero or less fails every call until ClearFaults.
func (r *Runtime) Fail(c Call, result xr.Result, times int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.faults[c] = &fault{result: result, times: times}
}

// ClearFaults removes every injected fault.
func (r *Runtime) ClearFaults() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.faults)
}

// SetAvailable controls whether CreateInstance can reach the runtime.
func (r *Runtime) SetAvailable(available bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unavailable = !available
}

// SetShouldRender installs a predicate deciding FrameState.ShouldRender
// for each frame number. A nil predicate renders every visible frame.
func (r *Runtime) SetShouldRender(fn func(frame uint64) bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.shouldRender = fn
}

// SetTracked connects or disconnects the simulated device on path, for
// example "/user/hand/left" or "/user/vive_tracker_htcx/role/waist".
func (r *Runtime) SetTracked(path string, tracked bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.poseValid[path] = tracked
}

// PushEvent queues ev for every live instance.
func (r *Runtime) PushEvent(ev xr.EventDataBuffer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h := range r.instances {
		r.push(h, ev)
	}
}

// LoseSession marks every live session lost. A LOSS_PENDING event is
// queued and later session calls fail with ErrorSessionLost.
func (r *Runtime) LoseSession() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, st := range r.sessions {
		st.lost = true
		r.pushState(h, st, xr.SessionStateLossPending)
	}
}

// LoseInstance marks every live instance lost. An instance-loss-pending
// event is queued and later calls fail with ErrorInstanceLost.
func (r *Runtime) LoseInstance() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, in := range r.instances {
		in.lost = true
		r.push(h, xr.EventDataBuffer{Type: xr.TypeEventDataInstanceLossPending})
	}
}

// RequestStop simulates the user leaving the application from the
// runtime's system menu: every running session is asked to stop.
func (r *Runtime) RequestStop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for h, st := range r.sessions {
		if running(st.state) && st.state != xr.SessionStateStopping {
			r.pushState(h, st, xr.SessionStateStopping)
		}
	}
}

// Calls returns a copy of the call log.
func (r *Runtime) Calls() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Record(nil), r.calls...)
}

// Count returns how many times c was called.
func (r *Runtime) Count(c Call) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rec := range r.calls {
		if rec.Call == c {
			n++
		}
	}
	return n
}

// CallsInFrame returns the calls made while frame was the most recently
// begun frame.
func (r *Runtime) CallsInFrame(frame uint64) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, rec := range r.calls {
		if rec.Frame == frame {
			out = append(out, rec.Call)
		}
	}
	return out
}

// FrameEnds returns every successful EndFrame in call order.
func (r *Runtime) FrameEnds() []FrameEnd {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]FrameEnd(nil), r.ends...)
}

// Violations returns the call-order and tagging violations observed.
func (r *Runtime) Violations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.violations...)
}

// Outstanding returns the number of acquired swapchain images that have
// not been released.
func (r *Runtime) Outstanding() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, sc := range r.swapchains {
		n += len(sc.acquired)
	}
	return n
}

// Live reports the number of live objects of each kind.
type Live struct {
	Instances  int
	Sessions   int
	Spaces     int
	Swapchains int
	ActionSets int
}

// Live returns the current object counts.
func (r *Runtime) Live() Live {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Live{
		Instances:  len(r.instances),
		Sessions:   len(r.sessions),
		Spaces:     len(r.spaces),
		Swapchains: len(r.swapchains),
		ActionSets: len(r.actionSets),
	}
}

// SwapchainInfo returns the create info of a live swapchain.
func (r *Runtime) SwapchainInfo(h xr.Swapchain) (xr.SwapchainCreateInfo, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sc, ok := r.swapchains[h]
	if !ok {
		return xr.SwapchainCreateInfo{}, false
	}
	return sc.info, true
}

// Suggested returns the number of bindings suggested per interaction
// profile path.
func (r *Runtime) Suggested() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]int, len(r.suggested))
	for k, v := range r.suggested {
		out[k] = v
	}
	return out
}
