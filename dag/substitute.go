package dag

import (
	"fmt"

	"qpiler/circuit"
	"qpiler/qerr"
)

// SubstituteNode replaces one operation node with the contents of a
// smaller graph. The replacement's qubit wire i maps onto the replaced
// operation's i-th qubit operand, and likewise for classical bits. A
// classical guard on the replaced operation is inherited by every
// non-directive operation of the replacement.
//
// On wire-count mismatch the graph is left untouched and a
// StructuralError is returned.
func (d *DAG) SubstituteNode(id NodeID, sub *DAG) error {
	n := &d.nodes[id]
	if n.Kind != KindOp {
		return &qerr.StructuralError{Detail: fmt.Sprintf("node %d is not an operation", id)}
	}
	if sub.NumQubits != len(n.Op.Qubits) {
		return &qerr.StructuralError{Detail: fmt.Sprintf(
			"replacement spans %d qubits, %s takes %d", sub.NumQubits, n.Op.Name, len(n.Op.Qubits))}
	}
	if sub.NumClbits != len(n.Op.Clbits) {
		return &qerr.StructuralError{Detail: fmt.Sprintf(
			"replacement spans %d clbits, %s takes %d", sub.NumClbits, n.Op.Name, len(n.Op.Clbits))}
	}

	old := n.Op
	subOps := sub.OpsInOrder()

	// Remap each replacement operation onto the replaced node's
	// operands before touching the graph, so failures cannot leave it
	// half-spliced.
	remapped := make([]circuit.Operation, 0, len(subOps))
	for _, sid := range subOps {
		op := sub.nodes[sid].Op.Clone()
		if op.Name == "barrier" && len(op.Qubits) == 0 {
			// A bare barrier spans its own graph, never the host's.
			op.Qubits = make([]int, sub.NumQubits)
			for i := range op.Qubits {
				op.Qubits[i] = i
			}
		}
		for i, q := range op.Qubits {
			if q < 0 || q >= len(old.Qubits) {
				return &qerr.StructuralError{Detail: fmt.Sprintf(
					"replacement references qubit wire %d beyond %s operands", q, old.Name)}
			}
			op.Qubits[i] = old.Qubits[q]
		}
		for i, b := range op.Clbits {
			if b < 0 || b >= len(old.Clbits) {
				return &qerr.StructuralError{Detail: fmt.Sprintf(
					"replacement references clbit wire %d beyond %s operands", b, old.Name)}
			}
			op.Clbits[i] = old.Clbits[b]
		}
		if old.Cond != nil && !op.Directive() {
			cond := *old.Cond
			op.Cond = &cond
		}
		remapped = append(remapped, op)
	}

	// Detach the replaced node, remembering its neighborhood per wire.
	cursor := make(map[Wire]NodeID)
	after := make(map[Wire]NodeID)
	for _, w := range d.opWires(old) {
		prev := d.predOn(id, w)
		next := d.succOn(id, w)
		d.removeEdge(prev, id, w)
		d.removeEdge(id, next, w)
		cursor[w] = prev
		after[w] = next
	}
	n.Kind = kindDead
	n.Op = circuit.Operation{}
	d.opCount--

	// Thread the remapped operations through the gap, one wire at a
	// time. Wires the replacement never touches close back up at the
	// end.
	for _, op := range remapped {
		nid := d.newNode(Node{Kind: KindOp, Op: op})
		for _, w := range d.opWires(op) {
			prev, ok := cursor[w]
			if !ok {
				// Wire not touched by the replaced node. Splice at the
				// end of that wire instead.
				nxt := d.out[w]
				prev = d.predOn(nxt, w)
				d.removeEdge(prev, nxt, w)
				after[w] = nxt
			}
			d.addEdge(prev, nid, w)
			cursor[w] = nid
		}
		d.opCount++
	}
	for w, prev := range cursor {
		d.addEdge(prev, after[w], w)
	}
	return nil
}

// SemanticEqual reports whether two graphs linearize to the same
// per-wire operation sequences, with symbolic parameters matching any
// value.
func (d *DAG) SemanticEqual(other *DAG) bool {
	if d.NumQubits != other.NumQubits || d.NumClbits != other.NumClbits {
		return false
	}
	a := d.ToCircuit()
	b := other.ToCircuit()
	if len(a.Ops) != len(b.Ops) {
		return false
	}
	for i := range a.Ops {
		x, y := a.Ops[i], b.Ops[i]
		if !x.SemanticEqual(y) {
			return false
		}
		for j := range x.Qubits {
			if x.Qubits[j] != y.Qubits[j] {
				return false
			}
		}
		for j := range x.Clbits {
			if x.Clbits[j] != y.Clbits[j] {
				return false
			}
		}
	}
	return true
}
