// Package synth turns small unitaries back into gate sequences: ZYZ
// and ZSX rewrites for one qubit, and a canonical two-qubit
// decomposition that never spends more than three entangling gates.
//
// Matrices use a fixed basis convention throughout: for two qubits the
// first operand is the most significant bit, so basis states order as
// |00>, |01>, |10>, |11> with the first operand owning the left bit.
package synth

import (
	"math"
	"math/cmplx"
)

// Mat2 is a 2x2 complex matrix in row-major order.
type Mat2 [2][2]complex128

// Mat4 is a 4x4 complex matrix in row-major order.
type Mat4 [4][4]complex128

// I2 is the 2x2 identity.
var I2 = Mat2{{1, 0}, {0, 1}}

// I4 is the 4x4 identity.
var I4 = Mat4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}

// Mul2 returns a*b.
func Mul2(a, b Mat2) Mat2 {
	var out Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = a[i][0]*b[0][j] + a[i][1]*b[1][j]
		}
	}
	return out
}

// Mul4 returns a*b.
func Mul4(a, b Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var s complex128
			for k := 0; k < 4; k++ {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// Kron returns the tensor product a (first operand) with b (second
// operand).
func Kron(a, b Mat2) Mat4 {
	var out Mat4
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			for k := 0; k < 2; k++ {
				for l := 0; l < 2; l++ {
					out[2*i+k][2*j+l] = a[i][j] * b[k][l]
				}
			}
		}
	}
	return out
}

// Dagger2 returns the conjugate transpose.
func Dagger2(a Mat2) Mat2 {
	var out Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = cmplx.Conj(a[j][i])
		}
	}
	return out
}

// Dagger4 returns the conjugate transpose.
func Dagger4(a Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = cmplx.Conj(a[j][i])
		}
	}
	return out
}

// Transpose4 returns the plain transpose.
func Transpose4(a Mat4) Mat4 {
	var out Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i][j] = a[j][i]
		}
	}
	return out
}

// Scale2 multiplies every entry by s.
func Scale2(a Mat2, s complex128) Mat2 {
	for i := range a {
		for j := range a[i] {
			a[i][j] *= s
		}
	}
	return a
}

// Scale4 multiplies every entry by s.
func Scale4(a Mat4, s complex128) Mat4 {
	for i := range a {
		for j := range a[i] {
			a[i][j] *= s
		}
	}
	return a
}

// Det2 returns the determinant.
func Det2(a Mat2) complex128 {
	return a[0][0]*a[1][1] - a[0][1]*a[1][0]
}

// Det4 returns the determinant by cofactor expansion along the first
// row.
func Det4(a Mat4) complex128 {
	var det complex128
	sign := complex128(1)
	for c := 0; c < 4; c++ {
		var m [3][3]complex128
		for i := 1; i < 4; i++ {
			cc := 0
			for j := 0; j < 4; j++ {
				if j == c {
					continue
				}
				m[i-1][cc] = a[i][j]
				cc++
			}
		}
		minor := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
			m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
			m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
		det += sign * a[0][c] * minor
		sign = -sign
	}
	return det
}

// maxAbsEntry4 returns the indices of the largest-magnitude entry.
func maxAbsEntry4(a Mat4) (int, int) {
	bi, bj, best := 0, 0, 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if m := cmplx.Abs(a[i][j]); m > best {
				best, bi, bj = m, i, j
			}
		}
	}
	return bi, bj
}

// PhaseAlign4 scales b so its largest entry matches a's phase at the
// same position, then returns the aligned copy. Comparing the result
// entrywise against a tests equality up to global phase.
func PhaseAlign4(a, b Mat4) Mat4 {
	i, j := maxAbsEntry4(a)
	if cmplx.Abs(b[i][j]) < 1e-12 {
		return b
	}
	phase := a[i][j] / b[i][j]
	phase /= complex(cmplx.Abs(phase), 0)
	return Scale4(b, phase)
}

// AllClose4 reports entrywise closeness within tol.
func AllClose4(a, b Mat4, tol float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if cmplx.Abs(a[i][j]-b[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// EqualUpToPhase4 reports whether a and b agree up to a global phase.
func EqualUpToPhase4(a, b Mat4, tol float64) bool {
	return AllClose4(a, PhaseAlign4(a, b), tol)
}

// AllClose2 reports entrywise closeness within tol.
func AllClose2(a, b Mat2, tol float64) bool {
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if cmplx.Abs(a[i][j]-b[i][j]) > tol {
				return false
			}
		}
	}
	return true
}

// EqualUpToPhase2 reports whether a and b agree up to a global phase.
func EqualUpToPhase2(a, b Mat2, tol float64) bool {
	var bi, bj int
	best := 0.0
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			if m := cmplx.Abs(a[i][j]); m > best {
				best, bi, bj = m, i, j
			}
		}
	}
	if cmplx.Abs(b[bi][bj]) < 1e-12 {
		return AllClose2(a, b, tol)
	}
	phase := a[bi][bj] / b[bi][bj]
	phase /= complex(cmplx.Abs(phase), 0)
	for i := range b {
		for j := range b[i] {
			b[i][j] *= phase
		}
	}
	return AllClose2(a, b, tol)
}

// SU2 rescales a 2x2 unitary to determinant one and returns the
// rescaled matrix plus the removed phase angle, so that
// a = e^{i phase} * su.
func SU2(a Mat2) (su Mat2, phase float64) {
	det := Det2(a)
	phase = cmplx.Phase(det) / 2
	return Scale2(a, cmplx.Exp(complex(0, -phase))), phase
}

// SU4 rescales a 4x4 unitary to determinant one and returns the
// removed phase angle, so that a = e^{i phase} * su.
func SU4(a Mat4) (su Mat4, phase float64) {
	det := Det4(a)
	phase = cmplx.Phase(det) / 4
	return Scale4(a, cmplx.Exp(complex(0, -phase))), phase
}

// Expand1 lifts a one-qubit matrix onto a two-qubit register. Slot 0
// is the first (most significant) operand.
func Expand1(u Mat2, slot int) Mat4 {
	if slot == 0 {
		return Kron(u, I2)
	}
	return Kron(I2, u)
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
