package synth

import (
	"math"
	"math/cmplx"
	"sort"
)

// Two-qubit resynthesis via the canonical (Weyl) decomposition. Any
// 4x4 unitary factors as
//
//	U = e^{i p} (k1a (x) k1b) Can(x) (k2a (x) k2b)
//
// with Can(x) = exp(i(x0 XX + x1 YY + x2 ZZ)). In the magic (Bell)
// basis the local factors become real orthogonal matrices and Can
// becomes diagonal, which reduces the factorization to a real
// symmetric eigenproblem. The entangling part is then rebuilt from a
// fixed skeleton spending zero to three cx gates, and every produced
// sequence is checked against the input before being accepted.

// magicB columns are the Bell states (|00>+|11>, i|00>-i|11>,
// i|01>+i|10>, |01>-|10>)/sqrt2.
var magicB = Mat4{
	{sq2, complex(0, 1/math.Sqrt2), 0, 0},
	{0, 0, complex(0, 1/math.Sqrt2), sq2},
	{0, 0, complex(0, 1/math.Sqrt2), -sq2},
	{sq2, complex(0, -1/math.Sqrt2), 0, 0},
}

// lambdaTbl[j][k] is the j-th diagonal entry of the k-th Pauli pair
// (XX, YY, ZZ) in the magic basis. Filled at init from the gate
// matrices so the basis convention stays in one place.
var lambdaTbl [4][3]float64

func init() {
	pairs := [3]Mat4{
		Kron(matX, matX),
		Kron(matY, matY),
		Kron(matZ, matZ),
	}
	bd := Dagger4(magicB)
	for k, p := range pairs {
		m := Mul4(Mul4(bd, p), magicB)
		for j := 0; j < 4; j++ {
			lambdaTbl[j][k] = real(m[j][j])
		}
	}
}

// canMat builds Can(x) in the computational basis.
func canMat(x [3]float64) Mat4 {
	var d Mat4
	for j := 0; j < 4; j++ {
		ang := lambdaTbl[j][0]*x[0] + lambdaTbl[j][1]*x[1] + lambdaTbl[j][2]*x[2]
		d[j][j] = cmplx.Exp(complex(0, ang))
	}
	return Mul4(Mul4(magicB, d), Dagger4(magicB))
}

// jacobi4 diagonalizes a real symmetric 4x4 matrix by cyclic Jacobi
// rotations, returning the orthogonal matrix whose columns are
// eigenvectors.
func jacobi4(a [4][4]float64) [4][4]float64 {
	v := [4][4]float64{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 1, 0}, {0, 0, 0, 1}}
	for sweep := 0; sweep < 100; sweep++ {
		off := 0.0
		for i := 0; i < 4; i++ {
			for j := i + 1; j < 4; j++ {
				off += a[i][j] * a[i][j]
			}
		}
		if off < 1e-26 {
			break
		}
		for p := 0; p < 4; p++ {
			for q := p + 1; q < 4; q++ {
				if math.Abs(a[p][q]) < 1e-15 {
					continue
				}
				theta := (a[q][q] - a[p][p]) / (2 * a[p][q])
				t := math.Copysign(1, theta) / (math.Abs(theta) + math.Sqrt(theta*theta+1))
				c := 1 / math.Sqrt(t*t+1)
				s := t * c
				for k := 0; k < 4; k++ {
					akp, akq := a[k][p], a[k][q]
					a[k][p] = c*akp - s*akq
					a[k][q] = s*akp + c*akq
				}
				for k := 0; k < 4; k++ {
					apk, aqk := a[p][k], a[q][k]
					a[p][k] = c*apk - s*aqk
					a[q][k] = s*apk + c*aqk
				}
				for k := 0; k < 4; k++ {
					vkp, vkq := v[k][p], v[k][q]
					v[k][p] = c*vkp - s*vkq
					v[k][q] = s*vkp + c*vkq
				}
			}
		}
	}
	return v
}

func detReal4(m [4][4]float64) float64 {
	var c Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			c[i][j] = complex(m[i][j], 0)
		}
	}
	return real(Det4(c))
}

// weylDecomp is the canonical factorization of one 4x4 unitary:
// su = K1 * Can(X) * K2 up to global phase, Theta sorted descending.
type weylDecomp struct {
	K1, K2 Mat4
	Theta  [4]float64
	X      [3]float64
}

// weylDecompose computes the canonical decomposition. The second
// result is false when the eigenproblem cannot be solved to working
// precision.
func weylDecompose(u Mat4) (weylDecomp, bool) {
	su, _ := SU4(u)
	bd := Dagger4(magicB)
	m := Mul4(Mul4(bd, su), magicB)
	m2 := Mul4(Transpose4(m), m)

	// m2 is complex symmetric unitary; its real and imaginary parts
	// are commuting real symmetric matrices, so one Jacobi run on a
	// generic combination diagonalizes both. A few mixing constants
	// guard against eigenvalue collisions.
	var p [4][4]float64
	found := false
	for _, mix := range []float64{0.618034, 1.324718, 0.207879} {
		var g [4][4]float64
		for i := 0; i < 4; i++ {
			for j := 0; j < 4; j++ {
				g[i][j] = real(m2[i][j]) + mix*imag(m2[i][j])
			}
		}
		cand := jacobi4(g)
		if offDiagNorm(cand, m2) < 1e-9 {
			p = cand
			found = true
			break
		}
	}
	if !found {
		return weylDecomp{}, false
	}

	// Eigenphases, halved into (-pi/2, pi/2], then shifted so they
	// sum to zero.
	var theta [4]float64
	for j := 0; j < 4; j++ {
		d := diagEntry(p, m2, j)
		theta[j] = cmplx.Phase(d) / 2
	}
	sum := theta[0] + theta[1] + theta[2] + theta[3]
	for k := int(math.Round(sum / math.Pi)); k > 0; k-- {
		theta[argMax(theta[:])] -= math.Pi
	}
	for k := int(math.Round(sum / math.Pi)); k < 0; k++ {
		theta[argMin(theta[:])] += math.Pi
	}

	// Sort columns by descending eigenphase, then restore a positive
	// determinant.
	order := []int{0, 1, 2, 3}
	sort.SliceStable(order, func(i, j int) bool { return theta[order[i]] > theta[order[j]] })
	var ps [4][4]float64
	var ts [4]float64
	for col, src := range order {
		ts[col] = theta[src]
		for row := 0; row < 4; row++ {
			ps[row][col] = p[row][src]
		}
	}
	if detReal4(ps) < 0 {
		for row := 0; row < 4; row++ {
			ps[row][3] = -ps[row][3]
		}
	}

	// m = K1 * diag(e^{i theta}) * K2 with K2 = P^T, both real
	// orthogonal in the magic basis.
	var k2m, adag Mat4
	for i := 0; i < 4; i++ {
		adag[i][i] = cmplx.Exp(complex(0, -ts[i]))
		for j := 0; j < 4; j++ {
			k2m[i][j] = complex(ps[j][i], 0)
		}
	}
	pc := Mat4{}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			pc[i][j] = complex(ps[i][j], 0)
		}
	}
	k1m := Mul4(Mul4(m, pc), adag)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.Abs(imag(k1m[i][j])) > 1e-7 {
				return weylDecomp{}, false
			}
			k1m[i][j] = complex(real(k1m[i][j]), 0)
		}
	}

	var x [3]float64
	for k := 0; k < 3; k++ {
		for j := 0; j < 4; j++ {
			x[k] += lambdaTbl[j][k] * ts[j]
		}
		x[k] /= 4
	}

	return weylDecomp{
		K1:    Mul4(Mul4(magicB, k1m), bd),
		K2:    Mul4(Mul4(magicB, k2m), bd),
		Theta: ts,
		X:     x,
	}, true
}

func offDiagNorm(p [4][4]float64, m2 Mat4) float64 {
	var pc Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			pc[i][j] = complex(p[i][j], 0)
		}
	}
	d := Mul4(Mul4(Transpose4(pc), m2), pc)
	norm := 0.0
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if i != j {
				norm += cmplx.Abs(d[i][j])
			}
		}
	}
	return norm
}

func diagEntry(p [4][4]float64, m2 Mat4, j int) complex128 {
	var d complex128
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			d += complex(p[r][j], 0) * m2[r][c] * complex(p[c][j], 0)
		}
	}
	return d
}

func argMax(v []float64) int {
	best := 0
	for i := range v {
		if v[i] > v[best] {
			best = i
		}
	}
	return best
}

func argMin(v []float64) int {
	best := 0
	for i := range v {
		if v[i] < v[best] {
			best = i
		}
	}
	return best
}

// KronFactor splits a local two-qubit unitary into its one-qubit
// tensor factors, up to global phase.
func KronFactor(l Mat4) (Mat2, Mat2, bool) {
	ri, ci := maxAbsEntry4(l)
	bi, bj := ri/2, ci/2
	var braw Mat2
	for k := 0; k < 2; k++ {
		for m := 0; m < 2; m++ {
			braw[k][m] = l[2*bi+k][2*bj+m]
		}
	}
	det := Det2(braw)
	if cmplx.Abs(det) < 1e-12 {
		return Mat2{}, Mat2{}, false
	}
	b := Scale2(braw, 1/cmplx.Sqrt(det))

	bdag := Dagger2(b)
	var a Mat2
	for k := 0; k < 2; k++ {
		for m := 0; m < 2; m++ {
			var block Mat2
			for r := 0; r < 2; r++ {
				for c := 0; c < 2; c++ {
					block[r][c] = l[2*k+r][2*m+c]
				}
			}
			prod := Mul2(bdag, block)
			a[k][m] = (prod[0][0] + prod[1][1]) / 2
		}
	}
	if !EqualUpToPhase4(l, Kron(a, b), 1e-6) {
		return Mat2{}, Mat2{}, false
	}
	return a, b, true
}
