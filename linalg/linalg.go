// Package linalg provides the fixed-size vector and matrix arithmetic used by
// the estimator and safety packages. Every shape the filters need (2x2, 4x4,
// 2x4, 4x2) is its own value type, so a dimension mismatch cannot be
// expressed at a call site.
package linalg

import "math"

// Vec2 is a 2-D point or direction.
type Vec2 struct {
	X, Y float64
}

// Vec4 is a 4-D column vector, laid out [px, py, vx, vy] by the estimator.
type Vec4 [4]float64

// Mat2 is a 2x2 matrix in row-major order.
type Mat2 [2][2]float64

// Mat4 is a 4x4 matrix in row-major order.
type Mat4 [4][4]float64

// Mat2x4 is a 2-row, 4-column matrix.
type Mat2x4 [2][4]float64

// Mat4x2 is a 4-row, 2-column matrix.
type Mat4x2 [4][2]float64

// detFloor substitutes for a vanishing 2x2 determinant instead of failing.
// Stability over exactness: downstream gain computation keeps going.
const detFloor = 1e-9

// Hypot returns sqrt(x*x + y*y).
func Hypot(x, y float64) float64 { return math.Hypot(x, y) }

// Vec2 -----------------------------------------------------------------

func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

func (v Vec2) Dot(o Vec2) float64 { return v.X*o.X + v.Y*o.Y }

// Norm returns the Euclidean length of v.
func (v Vec2) Norm() float64 { return math.Hypot(v.X, v.Y) }

// Vec4 -----------------------------------------------------------------

func (v Vec4) Add(o Vec4) Vec4 {
	return Vec4{v[0] + o[0], v[1] + o[1], v[2] + o[2], v[3] + o[3]}
}

// Mat2 -----------------------------------------------------------------

func (a Mat2) Add(b Mat2) Mat2 {
	var out Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = a[i][j] + b[i][j]
		}
	}
	return out
}

func (a Mat2) T() Mat2 {
	return Mat2{{a[0][0], a[1][0]}, {a[0][1], a[1][1]}}
}

// Inv returns the closed-form inverse of a. A near-zero determinant is
// replaced with detFloor rather than reported as an error.
func (a Mat2) Inv() Mat2 {
	det := a[0][0]*a[1][1] - a[0][1]*a[1][0]
	if math.Abs(det) < detFloor {
		det = detFloor
	}
	return Mat2{
		{a[1][1] / det, -a[0][1] / det},
		{-a[1][0] / det, a[0][0] / det},
	}
}

// MulVec returns a*v.
func (a Mat2) MulVec(v Vec2) Vec2 {
	return Vec2{
		a[0][0]*v.X + a[0][1]*v.Y,
		a[1][0]*v.X + a[1][1]*v.Y,
	}
}

// Mat4 -----------------------------------------------------------------

// Eye4 returns a 4x4 matrix with scale on the diagonal.
func Eye4(scale float64) Mat4 {
	var m Mat4
	for i := 0; i < 4; i++ {
		m[i][i] = scale
	}
	return m
}

// Diag4 returns a 4x4 diagonal matrix with the given entries.
func Diag4(d0, d1, d2, d3 float64) Mat4 {
	var m Mat4
	m[0][0], m[1][1], m[2][2], m[3][3] = d0, d1, d2, d3
	return m
}

func (a Mat4) Add(b Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = a[i][j] + b[i][j]
		}
	}
	return out
}

func (a Mat4) Sub(b Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = a[i][j] - b[i][j]
		}
	}
	return out
}

func (a Mat4) Mul(b Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for t := 0; t < 4; t++ {
				sum += a[i][t] * b[t][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

func (a Mat4) T() Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[j][i] = a[i][j]
		}
	}
	return out
}

// MulVec returns a*v.
func (a Mat4) MulVec(v Vec4) Vec4 {
	var out Vec4
	for i := 0; i < 4; i++ {
		sum := 0.0
		for j := 0; j < 4; j++ {
			sum += a[i][j] * v[j]
		}
		out[i] = sum
	}
	return out
}

// Mul42 returns a*b for a 4x4 times 4x2 product.
func (a Mat4) Mul42(b Mat4x2) Mat4x2 {
	var out Mat4x2
	for i := 0; i < 4; i++ {
		for j := 0; j < 2; j++ {
			sum := 0.0
			for t := 0; t < 4; t++ {
				sum += a[i][t] * b[t][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Trace returns the sum of the diagonal entries.
func (a Mat4) Trace() float64 {
	return a[0][0] + a[1][1] + a[2][2] + a[3][3]
}

// Mat2x4 ---------------------------------------------------------------

func (a Mat2x4) T() Mat4x2 {
	var out Mat4x2
	for i := 0; i < 2; i++ {
		for j := 0; j < 4; j++ {
			out[j][i] = a[i][j]
		}
	}
	return out
}

// MulVec returns a*v, projecting a Vec4 down to a Vec2.
func (a Mat2x4) MulVec(v Vec4) Vec2 {
	var out [2]float64
	for i := 0; i < 2; i++ {
		sum := 0.0
		for j := 0; j < 4; j++ {
			sum += a[i][j] * v[j]
		}
		out[i] = sum
	}
	return Vec2{out[0], out[1]}
}

// Mul42 returns a*b for a 2x4 times 4x2 product.
func (a Mat2x4) Mul42(b Mat4x2) Mat2 {
	var out Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			sum := 0.0
			for t := 0; t < 4; t++ {
				sum += a[i][t] * b[t][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Mul44 returns a*b for a 2x4 times 4x4 product.
func (a Mat2x4) Mul44(b Mat4) Mat2x4 {
	var out Mat2x4
	for i := 0; i < 2; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for t := 0; t < 4; t++ {
				sum += a[i][t] * b[t][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Mat4x2 ---------------------------------------------------------------

func (a Mat4x2) T() Mat2x4 {
	var out Mat2x4
	for i := 0; i < 4; i++ {
		for j := 0; j < 2; j++ {
			out[j][i] = a[i][j]
		}
	}
	return out
}

// Mul22 returns a*b for a 4x2 times 2x2 product.
func (a Mat4x2) Mul22(b Mat2) Mat4x2 {
	var out Mat4x2
	for i := 0; i < 4; i++ {
		for j := 0; j < 2; j++ {
			sum := 0.0
			for t := 0; t < 2; t++ {
				sum += a[i][t] * b[t][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// Mul24 returns a*b for a 4x2 times 2x4 product.
func (a Mat4x2) Mul24(b Mat2x4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			sum := 0.0
			for t := 0; t < 2; t++ {
				sum += a[i][t] * b[t][j]
			}
			out[i][j] = sum
		}
	}
	return out
}

// MulVec returns a*v, lifting a Vec2 up to a Vec4.
func (a Mat4x2) MulVec(v Vec2) Vec4 {
	var out Vec4
	for i := 0; i < 4; i++ {
		out[i] = a[i][0]*v.X + a[i][1]*v.Y
	}
	return out
}
