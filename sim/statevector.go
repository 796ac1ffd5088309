// Package sim is a small state-vector simulator used to check that a
// rewritten circuit still implements the same operator as its input.
package sim

import (
	"fmt"
	"math/cmplx"

	"qpiler/circuit"
	"qpiler/qerr"
	"qpiler/synth"
)

// StateVector holds 2^n amplitudes; bit q of a basis index is qubit
// q's value.
type StateVector struct {
	Amplitudes []complex128
	NumQubits  int
}

// New returns |0...0>.
func New(numQubits int) *StateVector {
	amps := make([]complex128, 1<<numQubits)
	amps[0] = 1
	return &StateVector{Amplitudes: amps, NumQubits: numQubits}
}

// Clone deep-copies the state.
func (s *StateVector) Clone() *StateVector {
	amps := make([]complex128, len(s.Amplitudes))
	copy(amps, s.Amplitudes)
	return &StateVector{Amplitudes: amps, NumQubits: s.NumQubits}
}

// ApplyMat1 applies a one-qubit matrix to qubit q.
func (s *StateVector) ApplyMat1(q int, u synth.Mat2) {
	n := len(s.Amplitudes)
	bit := 1 << q
	for i := 0; i < n; i++ {
		if i&bit == 0 {
			j := i | bit
			ai, aj := s.Amplitudes[i], s.Amplitudes[j]
			s.Amplitudes[i] = u[0][0]*ai + u[0][1]*aj
			s.Amplitudes[j] = u[1][0]*ai + u[1][1]*aj
		}
	}
}

// ApplyMat2 applies a two-qubit matrix with q0 as the most
// significant operand, matching the matrix convention in package
// synth.
func (s *StateVector) ApplyMat2(q0, q1 int, u synth.Mat4) {
	n := len(s.Amplitudes)
	b0, b1 := 1<<q0, 1<<q1
	for i := 0; i < n; i++ {
		if i&b0 == 0 && i&b1 == 0 {
			var idx [4]int
			for v := 0; v < 4; v++ {
				j := i
				if v&2 != 0 {
					j |= b0
				}
				if v&1 != 0 {
					j |= b1
				}
				idx[v] = j
			}
			var in [4]complex128
			for v := 0; v < 4; v++ {
				in[v] = s.Amplitudes[idx[v]]
			}
			for r := 0; r < 4; r++ {
				var acc complex128
				for c := 0; c < 4; c++ {
					acc += u[r][c] * in[c]
				}
				s.Amplitudes[idx[r]] = acc
			}
		}
	}
}

// applyToffoli flips the target bit wherever both control bits are
// set.
func (s *StateVector) applyToffoli(c1, c2, tq int) {
	b1, b2, bt := 1<<c1, 1<<c2, 1<<tq
	for i := range s.Amplitudes {
		if i&b1 != 0 && i&b2 != 0 && i&bt == 0 {
			j := i | bt
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// applyFredkin swaps the two target bits wherever the control bit is
// set.
func (s *StateVector) applyFredkin(c, t1, t2 int) {
	bc, b1, b2 := 1<<c, 1<<t1, 1<<t2
	for i := range s.Amplitudes {
		if i&bc != 0 && i&b1 != 0 && i&b2 == 0 {
			j := i&^b1 | b2
			s.Amplitudes[i], s.Amplitudes[j] = s.Amplitudes[j], s.Amplitudes[i]
		}
	}
}

// ApplyOp applies one unitary operation. Barriers are skipped;
// measurements, resets and guarded operations have no unitary matrix
// and return an error.
func (s *StateVector) ApplyOp(op circuit.Operation) error {
	if op.Name == "barrier" {
		return nil
	}
	if op.Directive() || op.Cond != nil {
		return &qerr.ValidationError{Op: op.Name, Detail: "not a unitary operation"}
	}
	switch len(op.Qubits) {
	case 1:
		u, ok := synth.Gate1(op.Name, op.Params)
		if !ok {
			return &qerr.ValidationError{Op: op.Name, Detail: "no known matrix"}
		}
		s.ApplyMat1(op.Qubits[0], u)
		return nil
	case 2:
		u, ok := synth.Gate2(op.Name, op.Params)
		if !ok {
			return &qerr.ValidationError{Op: op.Name, Detail: "no known matrix"}
		}
		s.ApplyMat2(op.Qubits[0], op.Qubits[1], u)
		return nil
	case 3:
		switch op.Name {
		case "ccx":
			s.applyToffoli(op.Qubits[0], op.Qubits[1], op.Qubits[2])
			return nil
		case "cswap":
			s.applyFredkin(op.Qubits[0], op.Qubits[1], op.Qubits[2])
			return nil
		}
		return &qerr.ValidationError{Op: op.Name, Detail: "no known matrix"}
	}
	return &qerr.ValidationError{Op: op.Name, Detail: fmt.Sprintf("unsupported arity %d", len(op.Qubits))}
}

// Run simulates a unitary circuit from |0...0>.
func Run(c *circuit.Circuit) (*StateVector, error) {
	s := New(c.NumQubits)
	for _, op := range c.Ops {
		if err := s.ApplyOp(op); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Embed places this state's qubit v at physical position v2p[v] in a
// larger register, extra qubits staying |0>. Used to compare a
// logical circuit's state against its routed form.
func (s *StateVector) Embed(v2p []int, numPhys int) *StateVector {
	out := &StateVector{
		Amplitudes: make([]complex128, 1<<numPhys),
		NumQubits:  numPhys,
	}
	for i, amp := range s.Amplitudes {
		j := 0
		for v := 0; v < s.NumQubits; v++ {
			if i&(1<<v) != 0 {
				j |= 1 << v2p[v]
			}
		}
		out.Amplitudes[j] = amp
	}
	return out
}

// EqualUpToPhase reports whether two states agree up to one global
// phase.
func EqualUpToPhase(a, b *StateVector, tol float64) bool {
	if len(a.Amplitudes) != len(b.Amplitudes) {
		return false
	}
	phase := complex(1, 0)
	aligned := false
	for i := range a.Amplitudes {
		if cmplx.Abs(a.Amplitudes[i]) > 1e-9 && cmplx.Abs(b.Amplitudes[i]) > 1e-9 {
			phase = a.Amplitudes[i] / b.Amplitudes[i]
			phase /= complex(cmplx.Abs(phase), 0)
			aligned = true
			break
		}
	}
	if !aligned && len(a.Amplitudes) > 0 {
		phase = 1
	}
	for i := range a.Amplitudes {
		if cmplx.Abs(a.Amplitudes[i]-phase*b.Amplitudes[i]) > tol {
			return false
		}
	}
	return true
}
