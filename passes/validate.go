package passes

import (
	"fmt"

	"qpiler/dag"
	"qpiler/pipeline"
	"qpiler/qerr"
)

// ValidateCircuit checks the incoming graph against the target before
// any transformation runs: structural soundness and qubit capacity.
type ValidateCircuit struct{}

func (ValidateCircuit) Name() string { return "validate-circuit" }

func (ValidateCircuit) Analyze(ctx *pipeline.Context, g *dag.DAG) error {
	if err := g.Validate(); err != nil {
		return err
	}
	if g.NumQubits > ctx.Target.NumQubits {
		return &qerr.ValidationError{Detail: fmt.Sprintf(
			"circuit needs %d qubits, target %s has %d", g.NumQubits, ctx.Target.Name, ctx.Target.NumQubits)}
	}
	if err := ctx.Target.Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateRouted verifies the routing postcondition: every two-qubit
// operation sits on a coupled physical pair.
type ValidateRouted struct{}

func (ValidateRouted) Name() string { return "validate-routed" }

func (ValidateRouted) Analyze(ctx *pipeline.Context, g *dag.DAG) error {
	for _, id := range g.OpsInOrder() {
		op := g.Node(id).Op
		if len(op.Qubits) != 2 || op.Name == "barrier" {
			continue
		}
		if !ctx.Target.Coupled(op.Qubits[0], op.Qubits[1]) {
			return &qerr.StructuralError{Detail: fmt.Sprintf(
				"%s on uncoupled pair (%d, %d)", op.Name, op.Qubits[0], op.Qubits[1])}
		}
	}
	return nil
}

// ValidateBasis verifies the translation postcondition: every gate
// name is native to the target.
type ValidateBasis struct{}

func (ValidateBasis) Name() string { return "validate-basis" }

func (ValidateBasis) Analyze(ctx *pipeline.Context, g *dag.DAG) error {
	for _, id := range g.OpsInOrder() {
		op := g.Node(id).Op
		if !ctx.Target.Supports(op.Name) {
			return &qerr.UnsupportedOperationError{Op: op.Name, Basis: ctx.Target.Basis}
		}
	}
	return nil
}
