// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package noop

import (
	"math"
	"strings"

	"github.com/gogpu/xrframe/linear"
	"github.com/gogpu/xrframe/xr"
)

// Simulated head geometry.
const (
	EyeHeight = 1.6
	IPD       = 0.064
)

func seconds(t xr.Time) float64 { return float64(t) / 1e9 }

func yaw(rad float64) linear.Q {
	s, c := math.Sincos(rad / 2)
	return linear.Q{V: linear.V3{0, float32(s), 0}, R: float32(c)}
}

func toPose(q linear.Q, p linear.V3) xr.Posef {
	return xr.Posef{
		Orientation: xr.Quaternionf{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.R},
		Position:    xr.Vector3f{X: p[0], Y: p[1], Z: p[2]},
	}
}

func fromPose(p xr.Posef) (linear.Q, linear.V3) {
	q := linear.Q{V: linear.V3{p.Orientation.X, p.Orientation.Y, p.Orientation.Z}, R: p.Orientation.W}
	return q, linear.V3{p.Position.X, p.Position.Y, p.Position.Z}
}

// HeadPose returns the simulated head pose at t in the local space.
// The head sways slowly left and right and turns a little.
func HeadPose(t xr.Time) xr.Posef {
	s := seconds(t)
	q := yaw(0.2 * math.Sin(0.25*s))
	p := linear.V3{
		float32(0.05 * math.Sin(0.5*s)),
		float32(EyeHeight + 0.01*math.Sin(1.3*s)),
		0,
	}
	return toPose(q, p)
}

// EyePose returns the pose of view i at t. View 0 is the left eye.
func EyePose(i int, t xr.Time) xr.Posef {
	head := HeadPose(t)
	q, p := fromPose(head)
	off := linear.V3{-IPD / 2, 0, 0}
	if i%2 == 1 {
		off[0] = IPD / 2
	}
	q.Rotate(&off, &off)
	p.Add(&p, &off)
	return toPose(q, p)
}

// EyeFov returns the field of view of view i. The two eyes are mirror
// images of each other.
func EyeFov(i int) xr.Fovf {
	if i%2 == 1 {
		return xr.Fovf{AngleLeft: -0.698, AngleRight: 0.942, AngleUp: 0.768, AngleDown: -0.838}
	}
	return xr.Fovf{AngleLeft: -0.942, AngleRight: 0.698, AngleUp: 0.768, AngleDown: -0.838}
}

// DevicePose returns the pose of the tracked device on path at t.
// Hands hang in front of the body; trackers sit on the body centre line.
func DevicePose(path string, t xr.Time) xr.Posef {
	head := HeadPose(t)
	_, p := fromPose(head)
	var off linear.V3
	switch {
	case path == "/user/hand/left":
		off = linear.V3{-0.2, -0.45, -0.3}
	case path == "/user/hand/right":
		off = linear.V3{0.2, -0.45, -0.3}
	case strings.HasSuffix(path, "foot"):
		off = linear.V3{0, -EyeHeight, 0}
	default:
		off = linear.V3{0, -0.6, 0}
	}
	p.Add(&p, &off)
	return toPose(linear.Q{R: 1}, p)
}

// relative expresses pose in the frame of base.
func relative(base, pose xr.Posef) xr.Posef {
	bq, bp := fromPose(base)
	pq, pp := fromPose(pose)
	var inv, q linear.Q
	inv.Conj(&bq)
	q.Mul(&inv, &pq)
	var d linear.V3
	d.Sub(&pp, &bp)
	inv.Rotate(&d, &d)
	return toPose(q, d)
}
