package qpiler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"qpiler/circuit"
	"qpiler/pipeline"
	"qpiler/qerr"
	"qpiler/sim"
	"qpiler/target"
)

// requireCompiled asserts the full output contract: native basis,
// legal coupling, and operator equivalence with the input through the
// final layout.
func requireCompiled(t *testing.T, in *circuit.Circuit, res *Result, tgt *target.Target) {
	t.Helper()
	require.Equal(t, tgt.NumQubits, res.Circuit.NumQubits)
	for _, op := range res.Circuit.Ops {
		require.True(t, tgt.Supports(op.Name), "non-native %s", op.Name)
		if len(op.Qubits) == 2 && op.Name != "barrier" {
			require.True(t, tgt.Coupled(op.Qubits[0], op.Qubits[1]),
				"%s on uncoupled pair %v", op.Name, op.Qubits)
		}
	}
	require.NotNil(t, res.InitialLayout)
	require.NotNil(t, res.FinalLayout)

	want, err := sim.Run(in)
	require.NoError(t, err)
	got, err := sim.Run(res.Circuit)
	require.NoError(t, err)
	require.True(t, sim.EqualUpToPhase(want.Embed(res.FinalLayout.V2P, tgt.NumQubits), got, 1e-6),
		"output is not equivalent to input")
}

func TestTranspileLineTopology(t *testing.T) {
	tgt := target.Line(3)
	c := circuit.New(3, 0)
	c.Gate("h", 0)
	c.Gate("cx", 0, 2)
	c.Gate("cx", 1, 2)

	for effort := 0; effort <= 3; effort++ {
		res, err := Transpile(context.Background(), c, tgt, Options{Effort: effort, Seed: 7})
		require.NoError(t, err, "effort %d", effort)
		requireCompiled(t, c, res, tgt)
	}
}

func TestTranspileECRBasis(t *testing.T) {
	tgt := target.New("ecr-dev", 3, []string{"rz", "sx", "x", "ecr"}, false)
	tgt.AddEdge(0, 1)
	tgt.AddEdge(1, 2)

	c := circuit.New(2, 0)
	c.Gate("h", 0)
	c.Gate("cx", 0, 1)
	c.Gate("t", 1)

	res, err := Transpile(context.Background(), c, tgt, Options{Effort: 1, Seed: 3})
	require.NoError(t, err)
	requireCompiled(t, c, res, tgt)
	require.GreaterOrEqual(t, res.Circuit.CountOps()["ecr"], 1)
}

func TestTranspileDirectedTarget(t *testing.T) {
	// routing inserts a swap oriented by the undirected path; lowering
	// it onto a directed cx basis must flip, not abort
	tgt := target.New("onedir-3", 3, []string{"rz", "sx", "x", "cx"}, true)
	tgt.AddEdge(1, 0)
	tgt.AddEdge(1, 2)

	c := circuit.New(3, 0)
	c.Gate("h", 0)
	c.Gate("cx", 0, 2)

	for effort := 0; effort <= 2; effort++ {
		res, err := Transpile(context.Background(), c, tgt, Options{Effort: effort, Seed: 5})
		require.NoError(t, err, "effort %d", effort)
		requireCompiled(t, c, res, tgt)
		for _, op := range res.Circuit.Ops {
			if len(op.Qubits) == 2 && op.Name != "barrier" {
				require.True(t, tgt.HasEdge(op.Qubits[0], op.Qubits[1]),
					"%s %v against the coupling direction", op.Name, op.Qubits)
			}
		}
	}
}

func TestTranspileUnrollsWideGates(t *testing.T) {
	tgt := target.Line(4)
	c := circuit.New(3, 0)
	c.Gate("ccx", 0, 1, 2)

	res, err := Transpile(context.Background(), c, tgt, Options{Effort: 1, Seed: 9})
	require.NoError(t, err)
	requireCompiled(t, c, res, tgt)
	for _, op := range res.Circuit.Ops {
		require.LessOrEqual(t, len(op.Qubits), 2)
	}
}

func TestTranspileReducesChainedInteractions(t *testing.T) {
	tgt := target.Line(2)
	c := circuit.New(2, 0)
	c.Gate("cx", 0, 1)
	c.PGate("rz", []circuit.Param{circuit.Num(0.4)}, 1)
	c.Gate("cx", 0, 1)
	c.PGate("rx", []circuit.Param{circuit.Num(0.9)}, 0)
	c.Gate("cx", 0, 1)
	c.PGate("ry", []circuit.Param{circuit.Num(-0.6)}, 1)
	c.Gate("cx", 0, 1)

	res, err := Transpile(context.Background(), c, tgt, Options{Effort: 1, Seed: 2})
	require.NoError(t, err)
	requireCompiled(t, c, res, tgt)
	require.LessOrEqual(t, res.Circuit.TwoQubitOps(), 3)
}

func TestTranspileMeasurementAndGuards(t *testing.T) {
	tgt := target.Line(3)
	c := circuit.New(2, 2)
	c.Gate("h", 0)
	c.Gate("cx", 0, 1)
	c.Measure(0, 0)
	c.Append(circuit.Operation{
		Name: "x", Qubits: []int{1},
		Cond: &circuit.Condition{Clbit: 0, Value: 1},
	})
	c.Measure(1, 1)

	res, err := Transpile(context.Background(), c, tgt, Options{Effort: 1, Seed: 4})
	require.NoError(t, err)
	require.Equal(t, 2, res.Circuit.CountOps()["measure"])
	guarded := 0
	for _, op := range res.Circuit.Ops {
		require.True(t, tgt.Supports(op.Name))
		if op.Cond != nil {
			guarded++
		}
	}
	require.GreaterOrEqual(t, guarded, 1)
}

func TestTranspileDeterministicUnderSeed(t *testing.T) {
	tgt := target.Ring(5)
	c := circuit.New(4, 0)
	c.Gate("h", 0)
	c.Gate("cx", 0, 2)
	c.Gate("cx", 1, 3)
	c.Gate("cx", 3, 0)

	a, err := Transpile(context.Background(), c, tgt, Options{Effort: 2, Seed: 42})
	require.NoError(t, err)
	b, err := Transpile(context.Background(), c, tgt, Options{Effort: 2, Seed: 42})
	require.NoError(t, err)
	require.Equal(t, a.Circuit.ToQASM(), b.Circuit.ToQASM())
	require.Equal(t, a.InitialLayout.V2P, b.InitialLayout.V2P)
	require.Equal(t, a.FinalLayout.V2P, b.FinalLayout.V2P)
}

func TestTranspileDeadline(t *testing.T) {
	tgt := target.Line(3)
	c := circuit.New(3, 0)
	c.Gate("cx", 0, 2)

	_, err := Transpile(context.Background(), c, tgt, Options{
		Effort:   1,
		Deadline: time.Nanosecond,
	})
	var terr *qerr.TimeoutError
	require.ErrorAs(t, err, &terr)
	require.NotEmpty(t, terr.Stage)
}

func TestTranspileUnsupportedGate(t *testing.T) {
	tgt := target.New("rz-only", 2, []string{"rz"}, false)
	tgt.AddEdge(0, 1)
	c := circuit.New(1, 0)
	c.Gate("h", 0)

	_, err := Transpile(context.Background(), c, tgt, Options{Effort: 1})
	var uerr *qerr.UnsupportedOperationError
	require.ErrorAs(t, err, &uerr)
}

func TestTranspileCapacityError(t *testing.T) {
	c := circuit.New(5, 0)
	c.Gate("h", 4)
	_, err := Transpile(context.Background(), c, target.Line(3), Options{})
	var verr *qerr.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestTranspileCallback(t *testing.T) {
	tgt := target.Line(2)
	c := circuit.New(2, 0)
	c.Gate("h", 0)
	c.Gate("cx", 0, 1)

	var events []pipeline.CallbackEvent
	_, err := Transpile(context.Background(), c, tgt, Options{
		Effort:   1,
		Seed:     1,
		Callback: func(ev pipeline.CallbackEvent) { events = append(events, ev) },
	})
	require.NoError(t, err)
	require.NotEmpty(t, events)
	for i, ev := range events {
		require.Equal(t, i+1, ev.Ordinal)
		require.NotEmpty(t, ev.Stage)
		require.NotEmpty(t, ev.Pass)
	}
}

func TestTranspileAll(t *testing.T) {
	tgt := target.Line(3)
	circs := make([]*circuit.Circuit, 3)
	for i := range circs {
		c := circuit.New(3, 0)
		c.Gate("h", i)
		c.Gate("cx", 0, 2)
		circs[i] = c
	}

	a, err := TranspileAll(context.Background(), circs, tgt, Options{Effort: 1, Seed: 10})
	require.NoError(t, err)
	require.Len(t, a, 3)
	for i, res := range a {
		require.NotNil(t, res)
		requireCompiled(t, circs[i], res, tgt)
	}

	// batch output is reproducible under a fixed seed
	b, err := TranspileAll(context.Background(), circs, tgt, Options{Effort: 1, Seed: 10})
	require.NoError(t, err)
	for i := range a {
		require.Equal(t, a[i].Circuit.ToQASM(), b[i].Circuit.ToQASM())
	}
}

func TestTranspileAllFailureCancels(t *testing.T) {
	tgt := target.Line(2)
	good := circuit.New(2, 0)
	good.Gate("cx", 0, 1)
	bad := circuit.New(5, 0)
	bad.Gate("h", 4)

	_, err := TranspileAll(context.Background(), []*circuit.Circuit{good, bad}, tgt, Options{Effort: 1})
	require.Error(t, err)
}
