package linalg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestEye4Identity(t *testing.T) {
	a := Mat4{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	assert.Equal(t, a, Eye4(1).Mul(a))
	assert.Equal(t, a, a.Mul(Eye4(1)))

	s := Eye4(2.5)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			want := 0.0
			if i == j {
				want = 2.5
			}
			assert.Equal(t, want, s[i][j])
		}
	}
}

func TestTransposeInvolution(t *testing.T) {
	a := Mat4{
		{1, 2, 3, 4},
		{5, 6, 7, 8},
		{9, 10, 11, 12},
		{13, 14, 15, 16},
	}
	assert.Equal(t, a, a.T().T())

	h := Mat2x4{{1, 0, 0, 0}, {0, 1, 0, 0}}
	assert.Equal(t, h, h.T().T())
}

func TestMat2Inv(t *testing.T) {
	a := Mat2{{4, 7}, {2, 6}}
	inv := a.Inv()

	// a * a^-1 == I
	prod := Mat2{
		{a[0][0]*inv[0][0] + a[0][1]*inv[1][0], a[0][0]*inv[0][1] + a[0][1]*inv[1][1]},
		{a[1][0]*inv[0][0] + a[1][1]*inv[1][0], a[1][0]*inv[0][1] + a[1][1]*inv[1][1]},
	}
	assert.InDelta(t, 1, prod[0][0], 1e-12)
	assert.InDelta(t, 0, prod[0][1], 1e-12)
	assert.InDelta(t, 0, prod[1][0], 1e-12)
	assert.InDelta(t, 1, prod[1][1], 1e-12)
}

func TestMat2InvDegenerate(t *testing.T) {
	// Singular matrix: the determinant is floored, not reported as an error,
	// so the result must stay finite.
	a := Mat2{{1, 2}, {2, 4}}
	inv := a.Inv()
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			assert.False(t, inv[i][j] != inv[i][j], "NaN at %d,%d", i, j)
		}
	}
	// det floored at 1e-9 means entries on the order of 1e9.
	assert.InDelta(t, 4e9, inv[0][0], 1e3)
}

// TestProductsAgainstGonum cross-checks every typed product against a dense
// reference computation.
func TestProductsAgainstGonum(t *testing.T) {
	p := Mat4{
		{4, 1, 0.5, 0},
		{1, 5, 0, 0.5},
		{0.5, 0, 3, 1},
		{0, 0.5, 1, 2},
	}
	h := Mat2x4{{1, 0, 0, 0}, {0, 1, 0, 0}}

	pd := dense44(p)
	hd := mat.NewDense(2, 4, []float64{1, 0, 0, 0, 0, 1, 0, 0})

	// P * H^T
	var want mat.Dense
	want.Mul(pd, hd.T())
	checkDense42(t, p.Mul42(h.T()), &want)

	// H * (P * H^T)
	var s mat.Dense
	s.Mul(hd, &want)
	got := h.Mul42(p.Mul42(h.T()))
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			require.InDelta(t, s.At(i, j), got[i][j], 1e-12)
		}
	}

	// (P * H^T) * S  and  K * H
	k := p.Mul42(h.T()).Mul22(got)
	var kd mat.Dense
	kd.Mul(&want, &s)
	checkDense42(t, k, &kd)

	var kh mat.Dense
	kh.Mul(&kd, hd)
	ghk := k.Mul24(h)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			require.InDelta(t, kh.At(i, j), ghk[i][j], 1e-12)
		}
	}
}

func TestMatVec(t *testing.T) {
	f := Mat4{
		{1, 0, 0.5, 0},
		{0, 1, 0, 0.5},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	v := Vec4{10, 20, 2, 4}
	assert.Equal(t, Vec4{11, 22, 2, 4}, f.MulVec(v))

	h := Mat2x4{{1, 0, 0, 0}, {0, 1, 0, 0}}
	assert.Equal(t, Vec2{X: 10, Y: 20}, h.MulVec(v))
}

func TestVec2Ops(t *testing.T) {
	a := Vec2{X: 3, Y: 4}
	b := Vec2{X: 1, Y: -2}
	assert.Equal(t, Vec2{X: 4, Y: 2}, a.Add(b))
	assert.Equal(t, Vec2{X: 2, Y: 6}, a.Sub(b))
	assert.Equal(t, Vec2{X: 6, Y: 8}, a.Scale(2))
	assert.Equal(t, -5.0, a.Dot(b))
	assert.Equal(t, 5.0, a.Norm())
	assert.Equal(t, 5.0, Hypot(3, 4))
}

func dense44(a Mat4) *mat.Dense {
	d := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			d.Set(i, j, a[i][j])
		}
	}
	return d
}

func checkDense42(t *testing.T, got Mat4x2, want *mat.Dense) {
	t.Helper()
	for i := 0; i < 4; i++ {
		for j := 0; j < 2; j++ {
			require.InDelta(t, want.At(i, j), got[i][j], 1e-12)
		}
	}
}
