// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause
//
// Portions adapted from the linear package of github.com/gviegas/scene,
// Copyright 2022 Gustavo C. Viegas. All rights reserved.

// Package linear implements the small amount of vector, quaternion and
// matrix math needed to turn tracked poses into render transforms.
//
// Matrices are column-major and use float32, matching what the GPU consumes.
package linear

import "math"

// V3 is a 3-component vector of float32.
type V3 [3]float32

// V4 is a 4-component vector of float32.
type V4 [4]float32

// Add sets v to contain l + r.
func (v *V3) Add(l, r *V3) {
	for i := range v {
		v[i] = l[i] + r[i]
	}
}

// Sub sets v to contain l - r.
func (v *V3) Sub(l, r *V3) {
	for i := range v {
		v[i] = l[i] - r[i]
	}
}

// Scale sets v to contain s ⋅ w.
func (v *V3) Scale(s float32, w *V3) {
	for i := range v {
		v[i] = s * w[i]
	}
}

// Dot returns v ⋅ w.
func (v *V3) Dot(w *V3) float32 {
	return v[0]*w[0] + v[1]*w[1] + v[2]*w[2]
}

// Cross sets v to contain l × r.
func (v *V3) Cross(l, r *V3) {
	*v = V3{
		l[1]*r[2] - l[2]*r[1],
		l[2]*r[0] - l[0]*r[2],
		l[0]*r[1] - l[1]*r[0],
	}
}

// Len returns the length of v.
func (v *V3) Len() float32 {
	return float32(math.Sqrt(float64(v.Dot(v))))
}

// Norm sets v to contain w normalized.
func (v *V3) Norm(w *V3) {
	l := w.Len()
	if l == 0 {
		*v = V3{}
		return
	}
	v.Scale(1/l, w)
}
