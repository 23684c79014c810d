// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package linear

import (
	"math"
	"testing"
)

const eps = 1e-5

func yaw(rad float64) Q {
	s, c := math.Sincos(rad / 2)
	return Q{V: V3{0, float32(s), 0}, R: float32(c)}
}

func TestMulIdentity(t *testing.T) {
	var m, i, p M4
	q := yaw(0.7)
	m.Rigid(&q, &V3{1, 2, 3})
	i.I()
	p.Mul(&m, &i)
	if !p.ApproxEqual(&m, eps) {
		t.Errorf("m ⋅ I = %v, want %v", p, m)
	}
	p.Mul(&i, &m)
	if !p.ApproxEqual(&m, eps) {
		t.Errorf("I ⋅ m = %v, want %v", p, m)
	}
}

func TestInvertRigid(t *testing.T) {
	var m, inv, p M4
	q := yaw(1.2)
	m.Rigid(&q, &V3{-0.5, 1.6, 0.25})
	inv.InvertRigid(&m)
	p.Mul(&m, &inv)
	id := Identity()
	if !p.ApproxEqual(&id, eps) {
		t.Errorf("m ⋅ m⁻¹ = %v, want identity", p)
	}
}

func TestRigidTranslation(t *testing.T) {
	var m M4
	var q Q
	q.I()
	m.Rigid(&q, &V3{4, 5, 6})
	if got := m.Translation(); got != (V3{4, 5, 6}) {
		t.Errorf("Translation() = %v, want [4 5 6]", got)
	}
}

func TestQuaternionRotate(t *testing.T) {
	q := yaw(math.Pi / 2)
	var v V3
	q.Rotate(&v, &V3{1, 0, 0})
	want := V3{0, 0, -1}
	for i := range v {
		if math.Abs(float64(v[i]-want[i])) > eps {
			t.Fatalf("Rotate = %v, want %v", v, want)
		}
	}
}

func TestQuaternionMulConj(t *testing.T) {
	q := yaw(0.4)
	var c, p Q
	c.Conj(&q)
	p.Mul(&q, &c)
	if math.Abs(float64(p.R-1)) > eps || p.V.Len() > eps {
		t.Errorf("q ⋅ q* = %v, want identity", p)
	}
}

func TestNormZero(t *testing.T) {
	var q Q
	q.Norm(&Q{})
	if q != (Q{R: 1}) {
		t.Errorf("Norm(0) = %v, want identity", q)
	}
}

func TestFovProjectionSymmetric(t *testing.T) {
	var m M4
	a := float32(math.Pi / 4)
	m.FovProjection(-a, a, a, -a, 0.1, 100)
	if math.Abs(float64(m[0][0]-1)) > eps || math.Abs(float64(m[1][1]-1)) > eps {
		t.Errorf("scale = (%v, %v), want (1, 1)", m[0][0], m[1][1])
	}
	if m[2][0] != 0 || m[2][1] != 0 {
		t.Errorf("symmetric fov should have no skew, got (%v, %v)", m[2][0], m[2][1])
	}
}
