package synth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"qpiler/circuit"
)

func countCX(ops []circuit.Operation) int {
	n := 0
	for _, op := range ops {
		if op.Name == "cx" {
			n++
		}
	}
	return n
}

func zsxEmitter(u Mat2, qubit int) []circuit.Operation {
	return ZSXOps(u, qubit, true)
}

func checkDecompose(t *testing.T, name string, u Mat4, maxCX int) []circuit.Operation {
	t.Helper()
	ops, ok := Decompose2Q(u, 0, 1, zsxEmitter, 1)
	require.True(t, ok, name)
	require.LessOrEqual(t, countCX(ops), maxCX, name)
	got, ok := SequenceMatrix4(ops, map[int]int{0: 0, 1: 1})
	require.True(t, ok, name)
	require.True(t, EqualUpToPhase4(u, got, 1e-6), name)
	return ops
}

func TestDecompose2QLocal(t *testing.T) {
	ops := checkDecompose(t, "h(x)x", Kron(matH, matX), 0)
	require.Equal(t, 0, countCX(ops))

	checkDecompose(t, "identity", I4, 0)
	checkDecompose(t, "rz(x)ry", Kron(RZ(0.4), RY(-0.9)), 0)
}

func TestDecompose2QSingleCX(t *testing.T) {
	cxMat, _ := Gate2("cx", nil)
	checkDecompose(t, "cx", cxMat, 1)

	czMat, _ := Gate2("cz", nil)
	checkDecompose(t, "cz", czMat, 1)

	ecrMat, _ := Gate2("ecr", nil)
	checkDecompose(t, "ecr", ecrMat, 1)

	// cx dressed in locals stays one interaction
	dressed := Mul4(Kron(matH, RZ(0.3)), Mul4(cxMat, Kron(RY(1.2), matS)))
	checkDecompose(t, "dressed cx", dressed, 1)
}

func TestDecompose2QThreeCX(t *testing.T) {
	swapMat, _ := Gate2("swap", nil)
	checkDecompose(t, "swap", swapMat, 3)

	iswapMat, _ := Gate2("iswap", nil)
	checkDecompose(t, "iswap", iswapMat, 2)
}

func TestDecompose2QGeneric(t *testing.T) {
	// A composite with no special structure: four entangling layers
	// interleaved with locals still compiles to at most three cx.
	cxMat, _ := Gate2("cx", nil)
	u := cxMat
	u = Mul4(Kron(RX(0.7), RZ(-0.3)), u)
	u = Mul4(cxMat, u)
	u = Mul4(Kron(RY(1.1), RX(0.5)), u)
	u = Mul4(cxMat, u)
	u = Mul4(Kron(RZ(-1.9), RY(0.2)), u)
	u = Mul4(cxMat, u)
	checkDecompose(t, "generic", u, 3)
}

func TestDecompose2QApproximation(t *testing.T) {
	// A barely-entangling unitary collapses to locals when the
	// approximation window exceeds its interaction strength.
	u := skelMatrix(skeleton2(0.02, 0))

	exact, ok := Decompose2Q(u, 0, 1, zsxEmitter, 1)
	require.True(t, ok)
	require.Greater(t, countCX(exact), 0)

	approx, ok := Decompose2Q(u, 0, 1, zsxEmitter, 0.9)
	require.True(t, ok)
	require.Equal(t, 0, countCX(approx))
}

func TestDecompose2QArbitraryQubits(t *testing.T) {
	// Operand order matters: decomposing onto reversed qubit indices
	// still verifies against the same matrix with swapped slots.
	swapMat, _ := Gate2("swap", nil)
	ops, ok := Decompose2Q(swapMat, 5, 2, zsxEmitter, 1)
	require.True(t, ok)
	got, ok := SequenceMatrix4(ops, map[int]int{5: 0, 2: 1})
	require.True(t, ok)
	require.True(t, EqualUpToPhase4(swapMat, got, 1e-6))
}

func TestKronFactor(t *testing.T) {
	a := U3(0.3, 0.2, 0.1)
	b := matH
	fa, fb, ok := KronFactor(Kron(a, b))
	require.True(t, ok)
	require.True(t, EqualUpToPhase4(Kron(a, b), Kron(fa, fb), 1e-9))

	// an entangling matrix has no tensor factorization
	cxMat, _ := Gate2("cx", nil)
	_, _, ok = KronFactor(cxMat)
	require.False(t, ok)
}

func TestSequenceMatrix4RejectsNonUnitary(t *testing.T) {
	_, ok := SequenceMatrix4([]circuit.Operation{
		{Name: "measure", Qubits: []int{0}, Clbits: []int{0}},
	}, map[int]int{0: 0})
	require.False(t, ok)

	_, ok = SequenceMatrix4([]circuit.Operation{
		{Name: "rz", Qubits: []int{0}, Params: []circuit.Param{circuit.Sym("theta")}},
	}, map[int]int{0: 0})
	require.False(t, ok)
}
