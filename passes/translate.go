package passes

import (
	"qpiler/circuit"
	"qpiler/dag"
	"qpiler/equiv"
	"qpiler/pipeline"
	"qpiler/qerr"
	"qpiler/target"
)

// subDAG builds a substitution graph from local-wire operations.
func subDAG(numQubits, numClbits int, ops []circuit.Operation) (*dag.DAG, error) {
	c := circuit.New(numQubits, numClbits)
	for _, op := range ops {
		c.Append(op)
	}
	return dag.FromCircuit(c)
}

// Unroll3q decomposes every operation above two qubits into the
// standard one- and two-qubit vocabulary so layout and routing only
// ever see pairs.
type Unroll3q struct{}

func (Unroll3q) Name() string { return "unroll-3q" }

// twoQubitClosure is a pseudo-target whose basis is every standard
// gate of at most two qubits; translating into it strips wider gates.
var twoQubitClosure = target.New("2q-closure", 64, []string{
	"id", "x", "y", "z", "h", "s", "sdg", "t", "tdg", "sx", "sxdg",
	"rx", "ry", "rz", "p", "u1", "u2", "u3",
	"cx", "cz", "ch", "swap", "ecr", "iswap", "crx", "cry", "crz", "cp",
}, false)

func (Unroll3q) Transform(ctx *pipeline.Context, g *dag.DAG) (bool, error) {
	tr := equiv.NewTranslator(nil, twoQubitClosure)
	changed := false
	for _, id := range g.OpsInOrder() {
		op := g.Node(id).Op
		if len(op.Qubits) <= 2 || op.Name == "barrier" {
			continue
		}
		local, err := tr.TranslateLocal(op)
		if err != nil {
			return changed, err
		}
		sub, err := subDAG(len(op.Qubits), len(op.Clbits), local)
		if err != nil {
			return changed, err
		}
		if err := g.SubstituteNode(id, sub); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// BasisTranslation rewrites every non-native gate into the target
// basis along the cheapest known identity chain.
type BasisTranslation struct {
	Library *equiv.Library // nil selects the standard set
}

func (BasisTranslation) Name() string { return "basis-translation" }

func (p BasisTranslation) Transform(ctx *pipeline.Context, g *dag.DAG) (bool, error) {
	tr := equiv.NewTranslator(p.Library, ctx.Target)
	changed := false
	for _, id := range g.OpsInOrder() {
		op := g.Node(id).Op
		if op.Directive() || ctx.Target.Supports(op.Name) {
			continue
		}
		local, err := tr.TranslateLocal(op)
		if err != nil {
			return changed, err
		}
		sub, err := subDAG(len(op.Qubits), len(op.Clbits), local)
		if err != nil {
			return changed, err
		}
		if err := g.SubstituteNode(id, sub); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}

// symmetric2q lists two-qubit gates whose matrix is unchanged by
// operand exchange.
func symmetric2q(name string) bool {
	switch name {
	case "swap", "cz", "cp", "iswap":
		return true
	}
	return false
}

// GateDirection flips entangling gates that sit against the grain of
// a directed coupling graph. Symmetric gates flip by exchanging their
// operands, cx by conjugation with h on both wires; anything else
// against the direction is an error.
type GateDirection struct{}

func (GateDirection) Name() string { return "gate-direction" }

func (GateDirection) Transform(ctx *pipeline.Context, g *dag.DAG) (bool, error) {
	if !ctx.Target.Directed {
		return false, nil
	}
	changed := false
	for _, id := range g.OpsInOrder() {
		op := g.Node(id).Op
		if len(op.Qubits) != 2 || op.Name == "barrier" {
			continue
		}
		if ctx.Target.HasEdge(op.Qubits[0], op.Qubits[1]) {
			continue
		}
		if !ctx.Target.HasEdge(op.Qubits[1], op.Qubits[0]) {
			return changed, &qerr.StructuralError{Detail: "two-qubit operation on uncoupled pair after routing"}
		}
		if symmetric2q(op.Name) {
			n := g.Node(id)
			n.Op.Qubits[0], n.Op.Qubits[1] = n.Op.Qubits[1], n.Op.Qubits[0]
			changed = true
			continue
		}
		if op.Name != "cx" {
			return changed, &qerr.UnsupportedOperationError{Op: op.Name, Basis: ctx.Target.Basis}
		}
		flipped := []circuit.Operation{
			{Name: "h", Qubits: []int{0}},
			{Name: "h", Qubits: []int{1}},
			{Name: "cx", Qubits: []int{1, 0}},
			{Name: "h", Qubits: []int{0}},
			{Name: "h", Qubits: []int{1}},
		}
		sub, err := subDAG(2, 0, flipped)
		if err != nil {
			return changed, err
		}
		if err := g.SubstituteNode(id, sub); err != nil {
			return changed, err
		}
		changed = true
	}
	return changed, nil
}
