package route

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"qpiler/circuit"
	"qpiler/qerr"
	"qpiler/sim"
	"qpiler/target"
)

// requireLegal asserts every two-qubit operation sits on a coupled
// pair.
func requireLegal(t *testing.T, c *circuit.Circuit, tgt *target.Target) {
	t.Helper()
	for _, op := range c.Ops {
		if len(op.Qubits) == 2 && op.Name != "barrier" {
			require.True(t, tgt.Coupled(op.Qubits[0], op.Qubits[1]),
				"%s on uncoupled pair (%d, %d)", op.Name, op.Qubits[0], op.Qubits[1])
		}
	}
}

// requireEquivalent simulates both circuits and compares states, the
// logical one embedded through the final layout.
func requireEquivalent(t *testing.T, logical *circuit.Circuit, res *Result, numPhys int) {
	t.Helper()
	want, err := sim.Run(logical)
	require.NoError(t, err)
	got, err := sim.Run(res.Circuit)
	require.NoError(t, err)
	require.True(t, sim.EqualUpToPhase(want.Embed(res.Final.V2P, numPhys), got, 1e-9))
}

func lineCircuit() *circuit.Circuit {
	c := circuit.New(3, 0)
	c.Gate("h", 0)
	c.Gate("cx", 0, 2) // endpoints of the line, needs a swap
	c.Gate("cx", 1, 2)
	return c
}

func TestRouteInsertsSwapOnLine(t *testing.T) {
	tgt := target.Line(3)
	c := lineCircuit()

	for effort := 0; effort <= 3; effort++ {
		res, err := Route(c, tgt, Options{Effort: effort, Seed: 11})
		require.NoError(t, err, "effort %d", effort)
		requireLegal(t, res.Circuit, tgt)
		if effort == 0 {
			// trivial placement leaves cx(0,2) non-adjacent
			require.GreaterOrEqual(t, res.Circuit.CountOps()["swap"], 1)
		}
		requireEquivalent(t, c, res, tgt.NumQubits)
	}
}

func TestRouteAdjacentNeedsNoSwap(t *testing.T) {
	tgt := target.Line(3)
	c := circuit.New(3, 0)
	c.Gate("cx", 0, 1)
	c.Gate("cx", 1, 2)

	res, err := Route(c, tgt, Options{Effort: 0})
	require.NoError(t, err)
	require.Equal(t, 0, res.Circuit.CountOps()["swap"])
	requireLegal(t, res.Circuit, tgt)
}

func TestRouteRefinesToLowerErrorRegion(t *testing.T) {
	tgt := target.Line(3)
	tgt.SetProps("cx", []int{0, 1}, target.GateProps{Error: 0.1})
	tgt.SetProps("cx", []int{1, 2}, target.GateProps{Error: 0.001})

	c := circuit.New(2, 0)
	c.Gate("cx", 0, 1)

	res, err := Route(c, tgt, Options{Effort: 1, Seed: 3})
	require.NoError(t, err)
	requireLegal(t, res.Circuit, tgt)
	requireEquivalent(t, c, res, tgt.NumQubits)
	for _, op := range res.Circuit.Ops {
		if op.Name == "cx" {
			require.ElementsMatch(t, []int{1, 2}, op.Qubits,
				"interaction left on the higher-error pair")
		}
	}
}

func TestRefineSubgraphKeepsUncalibratedResult(t *testing.T) {
	tgt := target.Line(3)
	c := circuit.New(2, 0)
	c.Gate("cx", 0, 1)
	init, err := Trivial(2, 3)
	require.NoError(t, err)

	out, i2, f2 := refineSubgraph(c, init, init.Clone(), 2, tgt)
	require.Equal(t, c.ToQASM(), out.ToQASM())
	require.Equal(t, init.V2P, i2.V2P)
	require.Equal(t, init.V2P, f2.V2P)
}

func TestTrialLayoutSeeding(t *testing.T) {
	l, err := trialLayout(0, 3, 5, rand.New(rand.NewSource(1)), true)
	require.NoError(t, err)
	triv, err := Trivial(3, 5)
	require.NoError(t, err)
	require.Equal(t, triv.V2P, l.V2P)

	// without the identity attempt, trial 0 draws from the same random
	// stream as every later trial
	want, err := Random(3, 5, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	got, err := trialLayout(0, 3, 5, rand.New(rand.NewSource(11)), false)
	require.NoError(t, err)
	require.Equal(t, want.V2P, got.V2P)
}

func TestRouteDeterministicUnderSeed(t *testing.T) {
	tgt := target.Ring(6)
	c := circuit.New(5, 0)
	c.Gate("h", 0)
	c.Gate("cx", 0, 3)
	c.Gate("cx", 1, 4)
	c.Gate("cx", 2, 0)
	c.Gate("cx", 4, 3)

	a, err := Route(c, tgt, Options{Effort: 2, Seed: 99})
	require.NoError(t, err)
	b, err := Route(c, tgt, Options{Effort: 2, Seed: 99})
	require.NoError(t, err)
	require.Equal(t, a.Circuit.ToQASM(), b.Circuit.ToQASM())
	require.Equal(t, a.Initial.V2P, b.Initial.V2P)
	require.Equal(t, a.Final.V2P, b.Final.V2P)
}

func TestRouteHeavyCircuit(t *testing.T) {
	tgt := target.Line(5)
	c := circuit.New(5, 0)
	rng := rand.New(rand.NewSource(4))
	for i := 0; i < 30; i++ {
		a := rng.Intn(5)
		b := rng.Intn(5)
		if a == b {
			continue
		}
		c.Gate("cx", a, b)
	}
	c.Gate("h", 2)

	for _, effort := range []int{1, 3} {
		res, err := Route(c, tgt, Options{Effort: effort, Seed: 7})
		require.NoError(t, err)
		requireLegal(t, res.Circuit, tgt)
		requireEquivalent(t, c, res, tgt.NumQubits)
	}
}

func TestRouteCalibrationAware(t *testing.T) {
	tgt := target.Line(4)
	tgt.SetProps("cx", []int{0, 1}, target.GateProps{Error: 0.05})
	tgt.SetProps("cx", []int{1, 2}, target.GateProps{Error: 0.001})
	tgt.SetProps("cx", []int{2, 3}, target.GateProps{Error: 0.001})

	c := circuit.New(4, 0)
	c.Gate("cx", 0, 3)
	c.Gate("cx", 1, 2)

	res, err := Route(c, tgt, Options{Effort: 3, Seed: 5})
	require.NoError(t, err)
	requireLegal(t, res.Circuit, tgt)
	requireEquivalent(t, c, res, tgt.NumQubits)
}

func TestRouteDisconnectedTarget(t *testing.T) {
	tgt := target.New("split", 4, []string{"rz", "sx", "x", "cx"}, false)
	tgt.AddEdge(0, 1)
	tgt.AddEdge(2, 3)

	c := circuit.New(4, 0)
	c.Gate("cx", 0, 3)

	_, err := Route(c, tgt, Options{Effort: 1, Seed: 1})
	var ierr *qerr.InfeasibleMappingError
	require.ErrorAs(t, err, &ierr)
}

func TestRouteTooManyQubits(t *testing.T) {
	c := circuit.New(5, 0)
	c.Gate("cx", 0, 4)
	_, err := Route(c, target.Line(3), Options{})
	var verr *qerr.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestRouteRejectsWideOps(t *testing.T) {
	c := circuit.New(3, 0)
	c.Gate("ccx", 0, 1, 2)
	_, err := Route(c, target.Line(3), Options{Effort: 1})
	var verr *qerr.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestFindLayoutThenRouteFrom(t *testing.T) {
	tgt := target.Line(4)
	c := circuit.New(4, 0)
	c.Gate("cx", 0, 3)
	c.Gate("cx", 1, 3)

	init, err := FindLayout(c, tgt, Options{Effort: 2, Seed: 3})
	require.NoError(t, err)

	// V2P and P2V stay mutually inverse
	for v, p := range init.V2P {
		require.Equal(t, v, init.P2V[p])
	}

	res, err := RouteFrom(c, tgt, init, Options{Effort: 2, Seed: 3})
	require.NoError(t, err)
	require.Equal(t, init.V2P, res.Initial.V2P)
	requireLegal(t, res.Circuit, tgt)
	requireEquivalent(t, c, res, tgt.NumQubits)
}

func TestTrivialLayout(t *testing.T) {
	l, err := Trivial(2, 4)
	require.NoError(t, err)
	require.Equal(t, []int{0, 1, 2, 3}, l.V2P)

	_, err = Trivial(5, 3)
	require.Error(t, err)
}

func TestLayoutSwapPhys(t *testing.T) {
	l, err := Trivial(3, 3)
	require.NoError(t, err)
	l.SwapPhys(0, 2)
	require.Equal(t, 2, l.Phys(0))
	require.Equal(t, 0, l.Phys(2))
	require.Equal(t, 1, l.Phys(1))
	for v, p := range l.V2P {
		require.Equal(t, v, l.P2V[p])
	}
}

func TestRandomLayoutBijection(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	l, err := Random(3, 6, rng)
	require.NoError(t, err)
	seen := map[int]bool{}
	for v, p := range l.V2P {
		require.False(t, seen[p])
		seen[p] = true
		require.Equal(t, v, l.P2V[p])
	}
}
