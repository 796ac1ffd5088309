package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"qpiler/circuit"
)

func TestBellState(t *testing.T) {
	c := circuit.New(2, 0)
	c.Gate("h", 0)
	c.Gate("cx", 0, 1)

	s, err := Run(c)
	require.NoError(t, err)

	inv := 1 / math.Sqrt2
	require.InDelta(t, inv, real(s.Amplitudes[0]), 1e-12)
	require.InDelta(t, inv, real(s.Amplitudes[3]), 1e-12)
	require.InDelta(t, 0, real(s.Amplitudes[1]), 1e-12)
	require.InDelta(t, 0, real(s.Amplitudes[2]), 1e-12)
}

func TestOperandOrderMatters(t *testing.T) {
	// cx with control on qubit 1 flips qubit 0 only when qubit 1 is set
	c := circuit.New(2, 0)
	c.Gate("x", 1)
	c.Gate("cx", 1, 0)

	s, err := Run(c)
	require.NoError(t, err)
	// qubit 0 and qubit 1 both set: amplitude index 0b11
	require.InDelta(t, 1, real(s.Amplitudes[3]), 1e-12)
}

func TestToffoli(t *testing.T) {
	c := circuit.New(3, 0)
	c.Gate("x", 0)
	c.Gate("x", 1)
	c.Gate("ccx", 0, 1, 2)

	s, err := Run(c)
	require.NoError(t, err)
	require.InDelta(t, 1, real(s.Amplitudes[0b111]), 1e-12)

	// one control unset leaves the target alone
	c2 := circuit.New(3, 0)
	c2.Gate("x", 0)
	c2.Gate("ccx", 0, 1, 2)
	s2, err := Run(c2)
	require.NoError(t, err)
	require.InDelta(t, 1, real(s2.Amplitudes[0b001]), 1e-12)
}

func TestFredkin(t *testing.T) {
	c := circuit.New(3, 0)
	c.Gate("x", 0)
	c.Gate("x", 1)
	c.Gate("cswap", 0, 1, 2)

	s, err := Run(c)
	require.NoError(t, err)
	// qubit 1's excitation moved to qubit 2
	require.InDelta(t, 1, real(s.Amplitudes[0b101]), 1e-12)
}

func TestApplyOpRejectsNonUnitary(t *testing.T) {
	s := New(1)
	err := s.ApplyOp(circuit.Operation{Name: "measure", Qubits: []int{0}, Clbits: []int{0}})
	require.Error(t, err)

	err = s.ApplyOp(circuit.Operation{Name: "rz", Qubits: []int{0}, Params: []circuit.Param{circuit.Sym("a")}})
	require.Error(t, err)

	require.NoError(t, s.ApplyOp(circuit.Operation{Name: "barrier"}))
}

func TestEmbed(t *testing.T) {
	c := circuit.New(2, 0)
	c.Gate("x", 0)
	s, err := Run(c)
	require.NoError(t, err)

	// place qubit 0 at physical 2, qubit 1 at physical 0
	e := s.Embed([]int{2, 0}, 3)
	require.InDelta(t, 1, real(e.Amplitudes[1<<2]), 1e-12)
}

func TestEqualUpToPhase(t *testing.T) {
	c := circuit.New(1, 0)
	c.Gate("h", 0)
	a, err := Run(c)
	require.NoError(t, err)

	b := a.Clone()
	phase := complex(math.Cos(0.7), math.Sin(0.7))
	for i := range b.Amplitudes {
		b.Amplitudes[i] *= phase
	}
	require.True(t, EqualUpToPhase(a, b, 1e-9))

	b.Amplitudes[0] = 0
	require.False(t, EqualUpToPhase(a, b, 1e-9))
}
