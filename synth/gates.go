package synth

import (
	"math"
	"math/cmplx"

	"qpiler/circuit"
)

// RX returns the X-axis rotation matrix.
func RX(theta float64) Mat2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(0, -math.Sin(theta/2))
	return Mat2{{c, s}, {s, c}}
}

// RY returns the Y-axis rotation matrix.
func RY(theta float64) Mat2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return Mat2{{c, -s}, {s, c}}
}

// RZ returns the Z-axis rotation matrix.
func RZ(theta float64) Mat2 {
	return Mat2{
		{cmplx.Exp(complex(0, -theta/2)), 0},
		{0, cmplx.Exp(complex(0, theta/2))},
	}
}

// Phase returns the phase gate diag(1, e^{i lambda}).
func Phase(lambda float64) Mat2 {
	return Mat2{{1, 0}, {0, cmplx.Exp(complex(0, lambda))}}
}

// U3 returns the generic one-qubit rotation.
func U3(theta, phi, lambda float64) Mat2 {
	c := complex(math.Cos(theta/2), 0)
	s := complex(math.Sin(theta/2), 0)
	return Mat2{
		{c, -s * cmplx.Exp(complex(0, lambda))},
		{s * cmplx.Exp(complex(0, phi)), c * cmplx.Exp(complex(0, phi+lambda))},
	}
}

var (
	sq2 = complex(1/math.Sqrt2, 0)

	matX = Mat2{{0, 1}, {1, 0}}
	matY = Mat2{{0, -1i}, {1i, 0}}
	matZ = Mat2{{1, 0}, {0, -1}}
	matH = Mat2{{sq2, sq2}, {sq2, -sq2}}
	matS = Mat2{{1, 0}, {0, 1i}}
	matSX = Mat2{
		{complex(0.5, 0.5), complex(0.5, -0.5)},
		{complex(0.5, -0.5), complex(0.5, 0.5)},
	}
)

func numeric(params []circuit.Param) ([]float64, bool) {
	vals := make([]float64, len(params))
	for i, p := range params {
		if p.Symbolic() {
			return nil, false
		}
		vals[i] = p.Value
	}
	return vals, true
}

// Gate1 returns the matrix of a named one-qubit gate. The second
// result is false for unknown names or symbolic parameters.
func Gate1(name string, params []circuit.Param) (Mat2, bool) {
	vals, ok := numeric(params)
	if !ok {
		return Mat2{}, false
	}
	switch name {
	case "id":
		return I2, true
	case "x":
		return matX, true
	case "y":
		return matY, true
	case "z":
		return matZ, true
	case "h":
		return matH, true
	case "s":
		return matS, true
	case "sdg":
		return Dagger2(matS), true
	case "t":
		return Phase(math.Pi / 4), true
	case "tdg":
		return Phase(-math.Pi / 4), true
	case "sx":
		return matSX, true
	case "sxdg":
		return Dagger2(matSX), true
	case "rx":
		return RX(vals[0]), true
	case "ry":
		return RY(vals[0]), true
	case "rz":
		return RZ(vals[0]), true
	case "p", "u1":
		return Phase(vals[0]), true
	case "u2":
		return U3(math.Pi/2, vals[0], vals[1]), true
	case "u3":
		return U3(vals[0], vals[1], vals[2]), true
	}
	return Mat2{}, false
}

// controlled lifts a one-qubit matrix into a controlled two-qubit
// gate with the first operand as control.
func controlled(u Mat2) Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, u[0][0], u[0][1]},
		{0, 0, u[1][0], u[1][1]},
	}
}

// matECR is the echoed cross-resonance gate, (X(x)I - Y(x)X)/sqrt2 in
// the first-operand-most-significant convention.
var matECR = Mat4{
	{0, 0, sq2, complex(0, 1/math.Sqrt2)},
	{0, 0, complex(0, 1/math.Sqrt2), sq2},
	{sq2, complex(0, -1/math.Sqrt2), 0, 0},
	{complex(0, -1/math.Sqrt2), sq2, 0, 0},
}

// Gate2 returns the matrix of a named two-qubit gate in operand
// order. The second result is false for unknown names or symbolic
// parameters.
func Gate2(name string, params []circuit.Param) (Mat4, bool) {
	vals, ok := numeric(params)
	if !ok {
		return Mat4{}, false
	}
	switch name {
	case "cx":
		return controlled(matX), true
	case "cz":
		return controlled(matZ), true
	case "ch":
		return controlled(matH), true
	case "crx":
		return controlled(RX(vals[0])), true
	case "cry":
		return controlled(RY(vals[0])), true
	case "crz":
		return controlled(RZ(vals[0])), true
	case "cp":
		return controlled(Phase(vals[0])), true
	case "swap":
		return Mat4{
			{1, 0, 0, 0},
			{0, 0, 1, 0},
			{0, 1, 0, 0},
			{0, 0, 0, 1},
		}, true
	case "iswap":
		return Mat4{
			{1, 0, 0, 0},
			{0, 0, 1i, 0},
			{0, 1i, 0, 0},
			{0, 0, 0, 1},
		}, true
	case "ecr":
		return matECR, true
	}
	return Mat4{}, false
}

// OpMatrix4 returns one operation's matrix lifted onto a two-qubit
// block. slots maps the operation's qubit operands onto block slots 0
// and 1.
func OpMatrix4(op circuit.Operation, slots []int) (Mat4, bool) {
	switch len(op.Qubits) {
	case 1:
		u, ok := Gate1(op.Name, op.Params)
		if !ok {
			return Mat4{}, false
		}
		return Expand1(u, slots[0]), true
	case 2:
		u, ok := Gate2(op.Name, op.Params)
		if !ok {
			return Mat4{}, false
		}
		if slots[0] == 0 && slots[1] == 1 {
			return u, true
		}
		// Operands reversed relative to block slots: conjugate by
		// swap.
		sw, _ := Gate2("swap", nil)
		return Mul4(sw, Mul4(u, sw)), true
	}
	return Mat4{}, false
}

// SequenceMatrix4 multiplies an operation sequence into one two-qubit
// unitary. slotOf maps physical or logical qubit index to block slot
// (0 or 1). Non-unitary operations abort with false.
func SequenceMatrix4(ops []circuit.Operation, slotOf map[int]int) (Mat4, bool) {
	acc := I4
	for _, op := range ops {
		if op.Directive() || op.Cond != nil {
			return Mat4{}, false
		}
		slots := make([]int, len(op.Qubits))
		for i, q := range op.Qubits {
			s, ok := slotOf[q]
			if !ok {
				return Mat4{}, false
			}
			slots[i] = s
		}
		u, ok := OpMatrix4(op, slots)
		if !ok {
			return Mat4{}, false
		}
		acc = Mul4(u, acc)
	}
	return acc, true
}
