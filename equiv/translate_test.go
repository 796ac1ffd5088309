package equiv

import (
	"testing"

	"github.com/stretchr/testify/require"

	"qpiler/circuit"
	"qpiler/qerr"
	"qpiler/synth"
	"qpiler/target"
)

// verify2q checks a translated sequence against the source gate's
// matrix on the same operands.
func verify2q(t *testing.T, src circuit.Operation, out []circuit.Operation) {
	t.Helper()
	want, ok := synth.Gate2(src.Name, src.Params)
	require.True(t, ok)
	slotOf := map[int]int{src.Qubits[0]: 0, src.Qubits[1]: 1}
	got, ok := synth.SequenceMatrix4(out, slotOf)
	require.True(t, ok)
	require.True(t, synth.EqualUpToPhase4(want, got, 1e-9), "%s -> %v", src.Name, out)
}

func verify1q(t *testing.T, src circuit.Operation, out []circuit.Operation) {
	t.Helper()
	want, ok := synth.Gate1(src.Name, src.Params)
	require.True(t, ok)
	got := synth.I2
	for _, op := range out {
		u, ok := synth.Gate1(op.Name, op.Params)
		require.True(t, ok)
		got = synth.Mul2(u, got)
	}
	require.True(t, synth.EqualUpToPhase2(want, got, 1e-9), "%s -> %v", src.Name, out)
}

func allNative(t *testing.T, tgt *target.Target, ops []circuit.Operation) {
	t.Helper()
	for _, op := range ops {
		require.True(t, tgt.Supports(op.Name), "non-native %s", op.Name)
	}
}

func TestTranslateNativePassthrough(t *testing.T) {
	tgt := target.Line(3)
	tr := NewTranslator(nil, tgt)

	op := circuit.Operation{Name: "cx", Qubits: []int{0, 1}}
	out, err := tr.Translate(op)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "cx", out[0].Name)

	meas := circuit.Operation{Name: "measure", Qubits: []int{0}, Clbits: []int{0}}
	out, err = tr.Translate(meas)
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Equal(t, "measure", out[0].Name)
}

func TestTranslateOneQubit(t *testing.T) {
	tgt := target.Line(2) // basis rz, sx, x, cx
	tr := NewTranslator(nil, tgt)

	for _, name := range []string{"h", "y", "z", "s", "sdg", "t", "tdg", "sxdg", "id"} {
		src := circuit.Operation{Name: name, Qubits: []int{0}}
		out, err := tr.Translate(src)
		require.NoError(t, err, name)
		allNative(t, tgt, out)
		if name == "id" {
			require.Empty(t, out)
			continue
		}
		verify1q(t, src, out)
	}

	src := circuit.Operation{Name: "u3", Qubits: []int{1}, Params: []circuit.Param{
		circuit.Num(0.3), circuit.Num(-0.8), circuit.Num(1.2),
	}}
	out, err := tr.Translate(src)
	require.NoError(t, err)
	allNative(t, tgt, out)
	for _, op := range out {
		require.Equal(t, []int{1}, op.Qubits)
	}
	verify1q(t, src, out)
}

func TestTranslateCXToECRBasis(t *testing.T) {
	tgt := target.New("ecr-dev", 3, []string{"rz", "sx", "x", "ecr"}, false)
	tgt.AddEdge(0, 1)
	tgt.AddEdge(1, 2)
	tr := NewTranslator(nil, tgt)

	src := circuit.Operation{Name: "cx", Qubits: []int{2, 1}}
	out, err := tr.Translate(src)
	require.NoError(t, err)
	allNative(t, tgt, out)
	verify2q(t, src, out)
}

func TestTranslateCXToCZBasis(t *testing.T) {
	tgt := target.New("cz-dev", 2, []string{"rz", "sx", "x", "cz"}, false)
	tgt.AddEdge(0, 1)
	tr := NewTranslator(nil, tgt)

	src := circuit.Operation{Name: "cx", Qubits: []int{0, 1}}
	out, err := tr.Translate(src)
	require.NoError(t, err)
	allNative(t, tgt, out)
	verify2q(t, src, out)

	// and the other direction: ecr down to a cx machine
	line := target.Line(2)
	tr2 := NewTranslator(nil, line)
	src2 := circuit.Operation{Name: "ecr", Qubits: []int{0, 1}}
	out2, err := tr2.Translate(src2)
	require.NoError(t, err)
	allNative(t, line, out2)
	verify2q(t, src2, out2)
}

func TestTranslateSwap(t *testing.T) {
	tgt := target.Line(2)
	tr := NewTranslator(nil, tgt)

	src := circuit.Operation{Name: "swap", Qubits: []int{1, 0}}
	out, err := tr.Translate(src)
	require.NoError(t, err)
	allNative(t, tgt, out)
	require.Len(t, out, 3)
	verify2q(t, src, out)
}

func TestTranslateControlledRotations(t *testing.T) {
	tgt := target.Line(2)
	tr := NewTranslator(nil, tgt)

	for _, name := range []string{"crz", "crx", "cry", "cp"} {
		src := circuit.Operation{Name: name, Qubits: []int{0, 1}, Params: []circuit.Param{circuit.Num(0.7)}}
		out, err := tr.Translate(src)
		require.NoError(t, err, name)
		allNative(t, tgt, out)
		verify2q(t, src, out)
	}
}

func TestTranslateCCXProducesNative(t *testing.T) {
	tgt := target.Line(3)
	tr := NewTranslator(nil, tgt)

	src := circuit.Operation{Name: "ccx", Qubits: []int{0, 1, 2}}
	out, err := tr.Translate(src)
	require.NoError(t, err)
	allNative(t, tgt, out)

	ncx := 0
	for _, op := range out {
		if op.Name == "cx" {
			ncx++
		}
	}
	require.Equal(t, 6, ncx)
}

func TestTranslateSymbolic(t *testing.T) {
	tgt := target.New("hrz", 2, []string{"h", "rz", "cx"}, false)
	tgt.AddEdge(0, 1)
	tr := NewTranslator(nil, tgt)

	// rx forwards its parameter, so a symbol passes through
	src := circuit.Operation{Name: "rx", Qubits: []int{0}, Params: []circuit.Param{circuit.Sym("theta")}}
	out, err := tr.Translate(src)
	require.NoError(t, err)
	allNative(t, tgt, out)
	found := false
	for _, op := range out {
		if op.Name == "rz" && len(op.Params) == 1 && op.Params[0].Symbolic() {
			found = true
		}
	}
	require.True(t, found)

	// crz needs the half angle, which a symbol cannot provide
	bad := circuit.Operation{Name: "crz", Qubits: []int{0, 1}, Params: []circuit.Param{circuit.Sym("theta")}}
	_, err = tr.Translate(bad)
	var uerr *qerr.UnsupportedOperationError
	require.ErrorAs(t, err, &uerr)
}

func TestTranslateUnknownGate(t *testing.T) {
	tr := NewTranslator(nil, target.Line(2))
	_, err := tr.Translate(circuit.Operation{Name: "frob", Qubits: []int{0}})
	var uerr *qerr.UnsupportedOperationError
	require.ErrorAs(t, err, &uerr)
	require.False(t, tr.Translatable("frob"))
	require.True(t, tr.Translatable("swap"))
}

func TestTranslateGuardInherited(t *testing.T) {
	tgt := target.Line(2)
	tr := NewTranslator(nil, tgt)

	src := circuit.Operation{
		Name: "h", Qubits: []int{0},
		Cond: &circuit.Condition{Clbit: 1, Value: 1},
	}
	out, err := tr.Translate(src)
	require.NoError(t, err)
	for _, op := range out {
		require.NotNil(t, op.Cond)
		require.Equal(t, 1, op.Cond.Clbit)
	}
}

func TestTranslateCacheHit(t *testing.T) {
	tr := NewTranslator(nil, target.Line(2))
	op := circuit.Operation{Name: "h", Qubits: []int{0}}
	a, err := tr.Translate(op)
	require.NoError(t, err)
	b, err := tr.Translate(op)
	require.NoError(t, err)
	require.Equal(t, a, b)
}
