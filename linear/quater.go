// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause
//
// Portions adapted from the linear package of github.com/gviegas/scene,
// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import "math"

// Q is a quaternion of float32. V is the vector part and R the real part.
type Q struct {
	V V3
	R float32
}

// I makes q an identity quaternion.
func (q *Q) I() { *q = Q{R: 1} }

// Mul sets q to contain l ⋅ r.
func (q *Q) Mul(l, r *Q) {
	var v, w V3
	v.Scale(r.R, &l.V)
	w.Scale(l.R, &r.V)
	v.Add(&v, &w)
	w.Cross(&l.V, &r.V)
	d := l.V.Dot(&r.V)
	q.V.Add(&v, &w)
	q.R = l.R*r.R - d
}

// Conj sets q to contain the conjugate of p.
func (q *Q) Conj(p *Q) {
	q.V.Scale(-1, &p.V)
	q.R = p.R
}

// Norm sets q to contain p normalized.
// A zero quaternion normalizes to identity.
func (q *Q) Norm(p *Q) {
	l := float32(math.Sqrt(float64(p.V.Dot(&p.V) + p.R*p.R)))
	if l == 0 {
		q.I()
		return
	}
	q.V.Scale(1/l, &p.V)
	q.R = p.R / l
}

// Rotate sets v to contain w rotated by q. q must be normalized.
func (q *Q) Rotate(v, w *V3) {
	var t, u V3
	t.Cross(&q.V, w)
	t.Scale(2, &t)
	u.Cross(&q.V, &t)
	t.Scale(q.R, &t)
	t.Add(&t, &u)
	v.Add(w, &t)
}
