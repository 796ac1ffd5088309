package synth

import (
	"math"
	"math/cmplx"

	"qpiler/circuit"
)

const angleEps = 1e-10

// ZYZ factors a one-qubit unitary as
//
//	u = e^{i phase} * RZ(phi) * RY(theta) * RZ(lambda)
//
// with theta in [0, pi].
func ZYZ(u Mat2) (theta, phi, lambda, phase float64) {
	su, phase := SU2(u)
	theta = 2 * math.Atan2(cmplx.Abs(su[1][0]), cmplx.Abs(su[0][0]))
	switch {
	case theta < angleEps:
		// Diagonal: fold everything into phi.
		phi = 2 * cmplx.Phase(su[1][1])
		lambda = 0
	case math.Pi-theta < angleEps:
		// Anti-diagonal.
		phi = 2 * cmplx.Phase(su[1][0])
		lambda = 0
	default:
		sum := -2 * cmplx.Phase(su[0][0])
		diff := 2 * cmplx.Phase(su[1][0])
		phi = (sum + diff) / 2
		lambda = (sum - diff) / 2
	}
	phi, lambda = wrapAngle(phi), wrapAngle(lambda)

	// The angles rebuild su only up to sign; angle wrapping or a
	// determinant on the -1 branch cut can land on -su. Compare the
	// larger first-column entry and fold a mismatch into the phase.
	rec := cmplx.Exp(complex(0, -(phi+lambda)/2)) * complex(math.Cos(theta/2), 0)
	ref := su[0][0]
	if theta > math.Pi/2 {
		rec = cmplx.Exp(complex(0, (phi-lambda)/2)) * complex(math.Sin(theta/2), 0)
		ref = su[1][0]
	}
	if cmplx.Abs(rec-ref) > cmplx.Abs(rec+ref) {
		phase = wrapAngle(phase + math.Pi)
	}
	return theta, phi, lambda, phase
}

func rzOp(qubit int, angle float64) circuit.Operation {
	return circuit.Operation{Name: "rz", Qubits: []int{qubit}, Params: []circuit.Param{circuit.Num(angle)}}
}

func appendRZ(ops []circuit.Operation, qubit int, angle float64) []circuit.Operation {
	angle = wrapAngle(angle)
	if math.Abs(angle) < angleEps {
		return ops
	}
	return append(ops, rzOp(qubit, angle))
}

// ZSXOps rewrites a one-qubit unitary into the rz/sx vocabulary, up to
// global phase:
//
//	RZ(p)RY(t)RZ(l) ~ RZ(p+pi) SX RZ(t+pi) SX RZ(l)
//
// The theta ~ 0 and theta ~ pi cases collapse to one rotation or a
// rotation pair around a bit flip. haveX selects a native x over an sx
// pair for the flip.
func ZSXOps(u Mat2, qubit int, haveX bool) []circuit.Operation {
	theta, phi, lambda, _ := ZYZ(u)

	sx := circuit.Operation{Name: "sx", Qubits: []int{qubit}}
	flip := func(ops []circuit.Operation) []circuit.Operation {
		if haveX {
			return append(ops, circuit.Operation{Name: "x", Qubits: []int{qubit}})
		}
		return append(ops, sx.Clone(), sx.Clone())
	}

	var ops []circuit.Operation
	switch {
	case theta < angleEps:
		ops = appendRZ(ops, qubit, phi+lambda)
	case math.Pi-theta < angleEps:
		ops = appendRZ(ops, qubit, lambda+math.Pi)
		ops = flip(ops)
		ops = appendRZ(ops, qubit, phi)
	default:
		ops = appendRZ(ops, qubit, lambda)
		ops = append(ops, sx.Clone())
		ops = appendRZ(ops, qubit, theta+math.Pi)
		ops = append(ops, sx.Clone())
		ops = appendRZ(ops, qubit, phi+math.Pi)
	}
	return ops
}

// ZYZOps rewrites a one-qubit unitary into rz/ry rotations, up to
// global phase. Used when the target carries ry instead of sx.
func ZYZOps(u Mat2, qubit int) []circuit.Operation {
	theta, phi, lambda, _ := ZYZ(u)
	var ops []circuit.Operation
	ops = appendRZ(ops, qubit, lambda)
	if math.Abs(theta) >= angleEps {
		ops = append(ops, circuit.Operation{
			Name: "ry", Qubits: []int{qubit}, Params: []circuit.Param{circuit.Num(theta)},
		})
	}
	ops = appendRZ(ops, qubit, phi)
	return ops
}
