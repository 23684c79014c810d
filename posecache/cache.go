// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package posecache stores the tracked poses shared between the render
// and collect contexts.
//
// Two snapshots are kept. The Predicted snapshot is written once per
// frame while the frame is prepared and drives visibility collection for
// that whole frame. The Late snapshot is resampled right before the eyes
// are rendered. A single mutex covers a full snapshot read or write, so
// readers never observe a snapshot assembled from two different writes.
package posecache

import (
	"sync"

	"github.com/gogpu/xrframe/linear"
	"github.com/gogpu/xrframe/xr"
)

// Timing selects one of the two snapshots.
type Timing int

const (
	// Predicted poses are forecast for the frame's display time when the
	// frame is prepared.
	Predicted Timing = iota

	// Late poses are resampled immediately before rendering.
	Late
)

// String returns the timing name.
func (t Timing) String() string {
	switch t {
	case Predicted:
		return "predicted"
	case Late:
		return "late"
	default:
		return "unknown"
	}
}

// Hand indexes the two hand controllers.
type Hand int

const (
	LeftHand Hand = iota
	RightHand
)

// ControllerPose is a cached controller pose.
type ControllerPose struct {
	// Pose is the last valid local pose.
	Pose linear.M4

	// Valid is set once a valid pose has been stored.
	Valid bool

	// Tracked reports whether the most recent locate produced a valid pose.
	Tracked bool
}

// Snapshot is one timing tier of tracked state.
type Snapshot struct {
	// Frame is the frame token of the write that produced the views.
	Frame uint64

	// DisplayTime is the predicted display time the views were located for.
	DisplayTime xr.Time

	Head        linear.M4
	Eyes        [2]linear.M4
	Fov         [2]xr.Fovf
	Controllers [2]ControllerPose
	Trackers    map[string]ControllerPose
}

func newSnapshot() Snapshot {
	s := Snapshot{Trackers: make(map[string]ControllerPose)}
	s.Head.I()
	for i := range s.Eyes {
		s.Eyes[i].I()
		s.Controllers[i].Pose.I()
	}
	return s
}

// clone returns a copy of s that shares no memory with it.
func (s *Snapshot) clone() Snapshot {
	c := *s
	c.Trackers = make(map[string]ControllerPose, len(s.Trackers))
	for k, v := range s.Trackers {
		c.Trackers[k] = v
	}
	return c
}

// Cache holds the Predicted and Late snapshots.
//
// Thread safety: Cache is safe for concurrent use.
type Cache struct {
	mu    sync.Mutex
	snaps [2]Snapshot
}

// New returns a cache with identity poses in both snapshots.
func New() *Cache {
	c := &Cache{}
	c.Reset()
	return c
}

// Reset restores identity poses in both snapshots.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.snaps {
		c.snaps[i] = newSnapshot()
	}
}

// Load returns a copy of the snapshot for t.
func (c *Cache) Load(t Timing) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snaps[t].clone()
}

// Store replaces the snapshot for t with a copy of s.
func (c *Cache) Store(t Timing, s Snapshot) {
	s = s.clone()
	c.mu.Lock()
	c.snaps[t] = s
	c.mu.Unlock()
}

// Views holds the view-dependent part of a snapshot.
type Views struct {
	Frame       uint64
	DisplayTime xr.Time
	Head        linear.M4
	Eyes        [2]linear.M4
	Fov         [2]xr.Fovf
}

// StoreViews updates the head, eye and field-of-view values for t in
// one write. Controller and tracker poses are left untouched.
func (c *Cache) StoreViews(t Timing, v Views) {
	c.mu.Lock()
	s := &c.snaps[t]
	s.Frame = v.Frame
	s.DisplayTime = v.DisplayTime
	s.Head = v.Head
	s.Eyes = v.Eyes
	s.Fov = v.Fov
	c.mu.Unlock()
}

// StoreController records a located controller pose. An invalid locate
// keeps the previous pose and only clears Tracked.
func (c *Cache) StoreController(t Timing, h Hand, pose linear.M4, valid bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := &c.snaps[t].Controllers[h]
	cp.Tracked = valid
	if !valid {
		return
	}
	cp.Pose = pose
	cp.Valid = true
}

// StoreTracker records a located tracker pose under role, with the
// same retention rule as StoreController.
func (c *Cache) StoreTracker(t Timing, role string, pose linear.M4, valid bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	trackers := c.snaps[t].Trackers
	tp, ok := trackers[role]
	if !ok {
		tp.Pose.I()
	}
	tp.Tracked = valid
	if valid {
		tp.Pose = pose
		tp.Valid = true
	}
	trackers[role] = tp
}

// Controller returns the cached pose of hand h for t.
func (c *Cache) Controller(t Timing, h Hand) ControllerPose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snaps[t].Controllers[h]
}

// Tracker returns the cached pose for role and whether one was ever stored.
func (c *Cache) Tracker(t Timing, role string) (ControllerPose, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tp, ok := c.snaps[t].Trackers[role]
	return tp, ok
}

// PoseMatrix converts a runtime pose to a rigid transform matrix.
func PoseMatrix(p xr.Posef) linear.M4 {
	q := linear.Q{
		V: linear.V3{p.Orientation.X, p.Orientation.Y, p.Orientation.Z},
		R: p.Orientation.W,
	}
	q.Norm(&q)
	t := linear.V3{p.Position.X, p.Position.Y, p.Position.Z}
	var m linear.M4
	m.Rigid(&q, &t)
	return m
}
