// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause
//
// Portions adapted from the linear package of github.com/gviegas/scene,
// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package linear

import "math"

// M4 is a column-major 4x4 matrix of float32.
type M4 [4]V4

// I makes m an identity matrix.
func (m *M4) I() { *m = M4{{1}, {0, 1}, {0, 0, 1}, {0, 0, 0, 1}} }

// Identity returns an identity matrix.
func Identity() M4 {
	var m M4
	m.I()
	return m
}

// Mul sets m to contain l ⋅ r.
func (m *M4) Mul(l, r *M4) {
	var p M4
	for i := range p {
		for j := range p {
			for k := range p {
				p[i][j] += l[k][j] * r[i][k]
			}
		}
	}
	*m = p
}

// Rigid sets m to the transform that rotates by q and then
// translates by t. q must be normalized.
func (m *M4) Rigid(q *Q, t *V3) {
	x, y, z, w := q.V[0], q.V[1], q.V[2], q.R
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z
	*m = M4{
		{1 - 2*(yy+zz), 2 * (xy + wz), 2 * (xz - wy), 0},
		{2 * (xy - wz), 1 - 2*(xx+zz), 2 * (yz + wx), 0},
		{2 * (xz + wy), 2 * (yz - wx), 1 - 2*(xx+yy), 0},
		{t[0], t[1], t[2], 1},
	}
}

// InvertRigid sets m to contain the inverse of n, which must be a
// rotation followed by a translation.
func (m *M4) InvertRigid(n *M4) {
	var r M4
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = n[j][i]
		}
	}
	t := V3{n[3][0], n[3][1], n[3][2]}
	for j := 0; j < 3; j++ {
		r[3][j] = -(r[0][j]*t[0] + r[1][j]*t[1] + r[2][j]*t[2])
	}
	r[3][3] = 1
	*m = r
}

// Translation returns the translation column of m.
func (m *M4) Translation() V3 { return V3{m[3][0], m[3][1], m[3][2]} }

// FovProjection sets m to an asymmetric perspective projection built
// from the four field-of-view half angles in radians (left and down
// negative). Depth maps to [0, 1].
func (m *M4) FovProjection(left, right, up, down, near, far float32) {
	tl := float32(math.Tan(float64(left)))
	tr := float32(math.Tan(float64(right)))
	tu := float32(math.Tan(float64(up)))
	td := float32(math.Tan(float64(down)))
	w := tr - tl
	h := tu - td
	*m = M4{
		{2 / w, 0, 0, 0},
		{0, 2 / h, 0, 0},
		{(tr + tl) / w, (tu + td) / h, -far / (far - near), -1},
		{0, 0, -(far * near) / (far - near), 0},
	}
}

// ApproxEqual reports whether every element of m and n differs by at
// most eps.
func (m *M4) ApproxEqual(n *M4, eps float32) bool {
	for i := range m {
		for j := range m[i] {
			d := m[i][j] - n[i][j]
			if d > eps || d < -eps {
				return false
			}
		}
	}
	return true
}
