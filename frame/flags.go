// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import "sync/atomic"

// CollectState is the claim state of the pending frame's collection.
// The claim itself is taken on the frame token (see handoff.claim);
// CollectState reports its progress.
//
// Transitions:
//
//	NotStarted → InProgress   Collect claimed the frame
//	InProgress → Done         collection succeeded
//	InProgress → NotStarted   collection failed
//	any        → NotStarted   the frame is submitted or reset
type CollectState int32

const (
	NotStarted CollectState = iota
	InProgress
	Done
)

// String returns the state name.
func (s CollectState) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case InProgress:
		return "InProgress"
	case Done:
		return "Done"
	default:
		return "Unknown"
	}
}

// collectFlag is an atomic CollectState.
type collectFlag struct {
	v atomic.Int32
}

func (f *collectFlag) Load() CollectState { return CollectState(f.v.Load()) }

func (f *collectFlag) Store(s CollectState) { f.v.Store(int32(s)) }

func (f *collectFlag) CompareAndSwap(from, to CollectState) bool {
	return f.v.CompareAndSwap(int32(from), int32(to))
}

// handoff holds the flags shared by the two contexts.
type handoff struct {
	pending  atomic.Bool
	prepared atomic.Bool
	skip     atomic.Bool

	// failed marks a published frame whose collection failed.
	failed  atomic.Bool
	collect collectFlag

	// frame is the token of the pending frame.
	frame atomic.Uint64

	// claimed is the newest frame token taken by a collector. It only
	// grows and is never cleared.
	claimed atomic.Uint64
}

// claim takes the collection of frame. A token is claimed at most once,
// and never once a newer token has been claimed.
func (h *handoff) claim(frame uint64) bool {
	for {
		c := h.claimed.Load()
		if c >= frame {
			return false
		}
		if h.claimed.CompareAndSwap(c, frame) {
			return true
		}
	}
}

// clear resets everything but the frame token and the claim.
func (h *handoff) clear() {
	h.prepared.Store(false)
	h.skip.Store(false)
	h.failed.Store(false)
	h.collect.Store(NotStarted)
	h.pending.Store(false)
}
