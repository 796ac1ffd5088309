package route

import (
	"fmt"

	"qpiler/circuit"
	"qpiler/qerr"
	"qpiler/target"
)

// routeBasic walks the program in order, moving operands together
// along a shortest path whenever a two-qubit operation spans
// non-adjacent physical qubits. It is the deterministic fallback every
// effort level can rely on: on a connected target it always succeeds.
func routeBasic(c *circuit.Circuit, tgt *target.Target, initial *Layout) (*circuit.Circuit, *Layout, error) {
	l := initial.Clone()
	out := circuit.New(tgt.NumQubits, c.NumClbits)

	for _, op := range c.Ops {
		if len(op.Qubits) > 2 && op.Name != "barrier" {
			return nil, nil, &qerr.ValidationError{Op: op.Name, Detail: "operations above two qubits must be decomposed before routing"}
		}
		if len(op.Qubits) == 2 {
			pa, pb := l.Phys(op.Qubits[0]), l.Phys(op.Qubits[1])
			if !tgt.Coupled(pa, pb) {
				path := tgt.ShortestPath(pa, pb)
				if path == nil {
					return nil, nil, &qerr.InfeasibleMappingError{Trials: 1}
				}
				for i := 0; i+2 < len(path); i++ {
					out.Append(circuit.Operation{Name: "swap", Qubits: []int{path[i], path[i+1]}})
					l.SwapPhys(path[i], path[i+1])
				}
			}
		}
		out.Append(mapOp(op, l))
	}
	return out, l, nil
}

// mapOp rewrites an operation's qubit operands through the layout.
func mapOp(op circuit.Operation, l *Layout) circuit.Operation {
	mapped := op.Clone()
	for i, q := range mapped.Qubits {
		mapped.Qubits[i] = l.Phys(q)
	}
	return mapped
}

// checkRoutable validates a circuit against a target before routing.
func checkRoutable(c *circuit.Circuit, tgt *target.Target) error {
	if c.NumQubits > tgt.NumQubits {
		return &qerr.ValidationError{Detail: fmt.Sprintf("circuit needs %d qubits, target has %d", c.NumQubits, tgt.NumQubits)}
	}
	for _, op := range c.Ops {
		if len(op.Qubits) > 2 && op.Name != "barrier" {
			return &qerr.ValidationError{Op: op.Name, Detail: "operations above two qubits must be decomposed before routing"}
		}
	}
	return nil
}
