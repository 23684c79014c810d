// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestClaimOncePerFrame(t *testing.T) {
	var h handoff
	if !h.claim(1) {
		t.Fatal("claim(1) failed on a fresh handoff")
	}
	if h.claim(1) {
		t.Error("frame 1 claimed twice")
	}
	h.clear()
	if h.claim(1) {
		t.Error("clear released the claim of frame 1")
	}
	if !h.claim(2) {
		t.Error("claim(2) failed after frame 1")
	}
}

func TestClaimOlderTokenAfterNewer(t *testing.T) {
	var h handoff
	if !h.claim(5) {
		t.Fatal("claim(5) failed")
	}
	for _, frame := range []uint64{0, 3, 4, 5} {
		if h.claim(frame) {
			t.Errorf("claim(%d) succeeded after frame 5", frame)
		}
	}
	if !h.claim(7) {
		t.Error("claim(7) failed")
	}
}

func TestClaimConcurrent(t *testing.T) {
	var h handoff
	var wins atomic.Int32
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if h.claim(1) {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if n := wins.Load(); n != 1 {
		t.Errorf("claims won = %d, want 1", n)
	}
}
