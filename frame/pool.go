// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package frame

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// errPoolClosed is returned by Run after Close.
var errPoolClosed = errors.New("frame: eye pool closed")

type eyeResult struct {
	eye int
	err error
}

// eyePool runs one task per eye on two long-lived workers.
//
// Each worker blocks on its own start channel, runs the task for its
// eye and reports on the shared done channel. Run waits for both
// reports; there is no timeout.
//
// Thread safety: Run must not be called concurrently.
type eyePool struct {
	start [2]chan func(eye int) error
	done  chan eyeResult

	wg      sync.WaitGroup
	running atomic.Bool
}

func newEyePool() *eyePool {
	p := &eyePool{done: make(chan eyeResult, 2)}
	for i := range p.start {
		p.start[i] = make(chan func(eye int) error, 1)
	}
	p.running.Store(true)
	p.wg.Add(len(p.start))
	for i := range p.start {
		go p.worker(i)
	}
	return p
}

func (p *eyePool) worker(eye int) {
	defer p.wg.Done()
	for task := range p.start[eye] {
		p.done <- eyeResult{eye: eye, err: runEye(eye, task)}
	}
}

// runEye runs task, turning a panic into an error.
func runEye(eye int, task func(eye int) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("frame: eye %d panicked: %v", eye, r)
		}
	}()
	return task(eye)
}

// Run runs task for both eyes in parallel and joins their errors.
func (p *eyePool) Run(task func(eye int) error) error {
	if !p.running.Load() {
		return errPoolClosed
	}
	for i := range p.start {
		p.start[i] <- task
	}
	var errs [2]error
	for range p.start {
		r := <-p.done
		errs[r.eye] = r.err
	}
	return errors.Join(errs[0], errs[1])
}

// Close stops both workers and waits for them. Close is safe to call
// multiple times.
func (p *eyePool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	for i := range p.start {
		close(p.start[i])
	}
	p.wg.Wait()
}
