package synth

import (
	"math"

	"qpiler/circuit"
)

// Emit1Q rewrites one single-qubit unitary into basis operations on a
// given qubit. Decompose2Q is parameterized over it so the produced
// sequence lands directly in the caller's vocabulary.
type Emit1Q func(u Mat2, qubit int) []circuit.Operation

// skelGate is one slot-indexed gate of an entangling skeleton, in
// applied order.
type skelGate struct {
	cx   bool
	ctrl int // control slot for cx
	u    Mat2
	slot int // slot for a one-qubit gate
	name string
	arg  float64
}

func skelRZ(slot int, a float64) skelGate {
	return skelGate{u: RZ(a), slot: slot, name: "rz", arg: a}
}
func skelRY(slot int, a float64) skelGate {
	return skelGate{u: RY(a), slot: slot, name: "ry", arg: a}
}
func skelRX(slot int, a float64) skelGate {
	return skelGate{u: RX(a), slot: slot, name: "rx", arg: a}
}

var (
	cx01 = Mat4{{1, 0, 0, 0}, {0, 1, 0, 0}, {0, 0, 0, 1}, {0, 0, 1, 0}}
	cx10 = Mat4{{1, 0, 0, 0}, {0, 0, 0, 1}, {0, 0, 1, 0}, {0, 1, 0, 0}}
)

func skelMatrix(gates []skelGate) Mat4 {
	acc := I4
	for _, g := range gates {
		var u Mat4
		if g.cx {
			if g.ctrl == 0 {
				u = cx01
			} else {
				u = cx10
			}
		} else {
			u = Expand1(g.u, g.slot)
		}
		acc = Mul4(u, acc)
	}
	return acc
}

// skeleton3 is the three-cx entangler: in matrix order
//
//	CX10 * (I (x) RY(t3)) * CX01 * (RZ(t1) (x) RY(t2)) * CX10
//
// which covers every two-qubit interaction class.
func skeleton3(t1, t2, t3 float64) []skelGate {
	return []skelGate{
		{cx: true, ctrl: 1},
		skelRZ(0, t1),
		skelRY(1, t2),
		{cx: true, ctrl: 0},
		skelRY(1, t3),
		{cx: true, ctrl: 1},
	}
}

// skeleton2 is the two-cx entangler exp(i(a XX + c ZZ)) up to locals:
// conjugating RX on the control and RZ on the target by CX01.
func skeleton2(tx, tz float64) []skelGate {
	return []skelGate{
		{cx: true, ctrl: 0},
		skelRX(0, tx),
		skelRZ(1, tz),
		{cx: true, ctrl: 0},
	}
}

func thetaClose(a, b [4]float64) bool {
	for i := 0; i < 4; i++ {
		if math.Abs(a[i]-b[i]) > 1e-7 {
			return false
		}
	}
	return true
}

var permutations3 = [][3]int{
	{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0},
}

var signs3 = [][3]float64{
	{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
	{-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}, {-1, -1, -1},
}

// candidates3 enumerates three-cx skeleton angle assignments for the
// canonical coordinates x. The leading assignment is the analytic one
// for chamber-ordered coordinates; permutation and sign variants
// absorb the branch freedom of the eigenphase extraction.
func candidates3(x [3]float64) [][3]float64 {
	var out [][3]float64
	for _, p := range permutations3 {
		for _, s := range signs3 {
			a := s[0] * x[p[0]]
			b := s[1] * x[p[1]]
			c := s[2] * x[p[2]]
			out = append(out, [3]float64{
				math.Pi/2 - 2*c,
				2*a - math.Pi/2,
				math.Pi/2 - 2*b,
			})
		}
	}
	return out
}

// candidates2 enumerates two-cx skeleton angle pairs from the
// canonical coordinates.
func candidates2(x [3]float64) [][2]float64 {
	var out [][2]float64
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if i == j {
				continue
			}
			for _, si := range []float64{1, -1} {
				for _, sj := range []float64{1, -1} {
					out = append(out, [2]float64{-2 * si * x[i], -2 * sj * x[j]})
				}
			}
		}
	}
	for i := 0; i < 3; i++ {
		for _, si := range []float64{1, -1} {
			out = append(out, [2]float64{-2 * si * x[i], 0})
			out = append(out, [2]float64{0, -2 * si * x[i]})
		}
	}
	return out
}

// emitSkeleton renders skeleton gates onto real qubit indices,
// sending one-qubit rotations through the emitter so the whole
// sequence lands in the caller's basis.
func emitSkeleton(gates []skelGate, q0, q1 int, emit Emit1Q) []circuit.Operation {
	var ops []circuit.Operation
	qs := [2]int{q0, q1}
	for _, g := range gates {
		if g.cx {
			tgt := 1 - g.ctrl
			ops = append(ops, circuit.Operation{Name: "cx", Qubits: []int{qs[g.ctrl], qs[tgt]}})
			continue
		}
		ops = append(ops, emit(g.u, qs[g.slot])...)
	}
	return ops
}

// snapCoords zeroes canonical coordinates smaller than the
// approximation window and snaps near-pi/4 entries exactly, trading
// fidelity for cheaper entangling structure.
func snapCoords(x [3]float64, approx float64) [3]float64 {
	tol := 1e-9 + (1-clamp01(approx))*0.25
	for i := range x {
		if math.Abs(x[i]) < tol {
			x[i] = 0
		}
		if math.Abs(math.Abs(x[i])-math.Pi/4) < tol {
			x[i] = math.Copysign(math.Pi/4, x[i])
		}
	}
	return x
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Decompose2Q rewrites an arbitrary two-qubit unitary into cx gates
// plus emitter output, spending at most three cx. approx below 1
// allows snapping small interaction coordinates to zero. The produced
// sequence is verified against u before being returned; on any
// numerical failure the second result is false and the caller should
// keep its original gates.
func Decompose2Q(u Mat4, q0, q1 int, emit Emit1Q, approx float64) ([]circuit.Operation, bool) {
	du, ok := weylDecompose(u)
	if !ok {
		return nil, false
	}

	// When approximation is allowed, replace u by its nearest
	// cheaper-class neighbor and resynthesize that exactly.
	target := u
	if snapped := snapCoords(du.X, approx); snapped != du.X {
		target = Mul4(Mul4(du.K1, canMat(snapped)), du.K2)
		if du, ok = weylDecompose(target); !ok {
			return nil, false
		}
	}

	try := func(gates []skelGate) ([]circuit.Operation, bool) {
		ds, ok := weylDecompose(skelMatrix(gates))
		if !ok || !thetaClose(ds.Theta, du.Theta) {
			return nil, false
		}
		l1 := Mul4(du.K1, Dagger4(ds.K1))
		l2 := Mul4(Dagger4(ds.K2), du.K2)
		a1, b1, ok1 := KronFactor(l1)
		a2, b2, ok2 := KronFactor(l2)
		if !ok1 || !ok2 {
			return nil, false
		}
		var ops []circuit.Operation
		ops = append(ops, emit(a2, q0)...)
		ops = append(ops, emit(b2, q1)...)
		ops = append(ops, emitSkeleton(gates, q0, q1, emit)...)
		ops = append(ops, emit(a1, q0)...)
		ops = append(ops, emit(b1, q1)...)
		if !verifySequence(ops, q0, q1, target, 1e-6) {
			return nil, false
		}
		return ops, true
	}

	// Cheapest entangling structure first.
	if ops, ok := try(nil); ok {
		return ops, true
	}
	if ops, ok := try([]skelGate{{cx: true, ctrl: 0}}); ok {
		return ops, true
	}
	if ops, ok := try([]skelGate{{cx: true, ctrl: 1}}); ok {
		return ops, true
	}
	for _, c := range candidates2(du.X) {
		if ops, ok := try(skeleton2(c[0], c[1])); ok {
			return ops, true
		}
	}
	for _, c := range candidates3(du.X) {
		if ops, ok := try(skeleton3(c[0], c[1], c[2])); ok {
			return ops, true
		}
	}
	return nil, false
}

func verifySequence(ops []circuit.Operation, q0, q1 int, want Mat4, tol float64) bool {
	got, ok := SequenceMatrix4(ops, map[int]int{q0: 0, q1: 1})
	if !ok {
		return false
	}
	return EqualUpToPhase4(want, got, tol)
}
