package passes

import (
	"math"

	"qpiler/circuit"
	"qpiler/dag"
	"qpiler/pipeline"
)

const cancelEps = 1e-10

func diagonal1q(name string) bool {
	switch name {
	case "z", "s", "sdg", "t", "tdg", "rz", "p", "u1":
		return true
	}
	return false
}

func xAxis1q(name string) bool {
	switch name {
	case "x", "sx", "sxdg", "rx":
		return true
	}
	return false
}

var selfInverse = map[string]bool{
	"id": true, "x": true, "y": true, "z": true, "h": true,
	"cx": true, "cz": true, "swap": true, "ccx": true,
}

var inversePair = map[string]string{
	"s": "sdg", "sdg": "s",
	"t": "tdg", "tdg": "t",
	"sx": "sxdg", "sxdg": "sx",
}

func inverseOps(a, b circuit.Operation) bool {
	if len(a.Qubits) != len(b.Qubits) {
		return false
	}
	for i := range a.Qubits {
		if a.Qubits[i] != b.Qubits[i] {
			return false
		}
	}
	if selfInverse[a.Name] && a.Name == b.Name {
		return true
	}
	return inversePair[a.Name] == b.Name
}

// rotationFamily groups gate names whose rotations add when adjacent
// on the same wire. rz, p and u1 differ only by global phase.
func rotationFamily(name string) string {
	switch name {
	case "rz", "p", "u1":
		return "rz"
	case "rx":
		return "rx"
	case "ry":
		return "ry"
	}
	return ""
}

// commutesThrough reports whether a one-qubit gate of the given class
// may slide past op along wire q.
func commutesThrough(diag bool, op circuit.Operation, q int) bool {
	if op.Cond != nil || op.Directive() {
		return false
	}
	switch len(op.Qubits) {
	case 1:
		if diag {
			return diagonal1q(op.Name)
		}
		return xAxis1q(op.Name)
	case 2:
		switch op.Name {
		case "cz", "cp", "crz":
			return diag
		case "cx":
			if diag {
				return op.Qubits[0] == q
			}
			return op.Qubits[1] == q
		}
	}
	return false
}

// CommutativeCancellation removes adjacent inverse pairs and merges
// rotation runs, sliding gates past operations they commute with:
// diagonal gates through cx controls, X-axis gates through cx
// targets. One call makes a single sweep; the optimization loop
// reruns it until nothing changes.
type CommutativeCancellation struct{}

func (CommutativeCancellation) Name() string { return "commutative-cancellation" }

func (CommutativeCancellation) Transform(ctx *pipeline.Context, g *dag.DAG) (bool, error) {
	changed := false
	for _, id := range g.OpsInOrder() {
		n := g.Node(id)
		if n.Kind != dag.KindOp || n.Op.Cond != nil {
			continue
		}
		op := n.Op
		switch len(op.Qubits) {
		case 1:
			if op.Directive() {
				continue
			}
			if cancel1q(g, id) {
				changed = true
			}
		case 2:
			if op.Name == "cx" || op.Name == "cz" || op.Name == "swap" {
				if cancel2q(g, id) {
					changed = true
				}
			}
		}
	}
	return changed, nil
}

func cancel1q(g *dag.DAG, id dag.NodeID) bool {
	op := g.Node(id).Op
	q := op.Qubits[0]
	w := dag.Q(q)
	diag := diagonal1q(op.Name)
	canSlide := diag || xAxis1q(op.Name)

	cur := g.SuccOn(id, w)
	for cur >= 0 {
		n := g.Node(cur)
		if n.Kind != dag.KindOp {
			return false
		}
		other := n.Op

		if fam := rotationFamily(op.Name); fam != "" && rotationFamily(other.Name) == fam &&
			other.Cond == nil && other.Qubits[0] == q &&
			!op.Params[0].Symbolic() && !other.Params[0].Symbolic() {
			merged := wrapAngle(op.Params[0].Value + other.Params[0].Value)
			g.RemoveOp(id)
			if math.Abs(merged) < cancelEps {
				g.RemoveOp(cur)
			} else {
				n.Op.Params = []circuit.Param{circuit.Num(merged)}
			}
			return true
		}
		if other.Cond == nil && inverseOps(op, other) {
			g.RemoveOp(id)
			g.RemoveOp(cur)
			return true
		}
		if !canSlide || !commutesThrough(diag, other, q) {
			return false
		}
		cur = g.SuccOn(cur, w)
	}
	return false
}

// slideClass selects which one-qubit gates may sit between a two-qubit
// gate and its cancellation partner on one wire.
type slideClass int

const (
	slideNone slideClass = iota
	slideDiag
	slideX
)

func (c slideClass) passes(name string) bool {
	switch c {
	case slideDiag:
		return diagonal1q(name)
	case slideX:
		return xAxis1q(name)
	}
	return false
}

func cancel2q(g *dag.DAG, id dag.NodeID) bool {
	op := g.Node(id).Op
	w0, w1 := dag.Q(op.Qubits[0]), dag.Q(op.Qubits[1])

	// Slide along both wires independently; a cancellation partner
	// must be reachable on each. Diagonal gates pass a cx control or
	// either cz wire, X-axis gates pass a cx target, nothing passes a
	// swap.
	var c0, c1 slideClass
	switch op.Name {
	case "cx":
		c0, c1 = slideDiag, slideX
	case "cz":
		c0, c1 = slideDiag, slideDiag
	default:
		c0, c1 = slideNone, slideNone
	}
	m0 := slide2q(g, id, w0, c0)
	m1 := slide2q(g, id, w1, c1)
	if m0 < 0 || m0 != m1 {
		return false
	}
	other := g.Node(m0).Op
	if other.Cond != nil || !inverseOps(op, other) {
		return false
	}
	g.RemoveOp(id)
	g.RemoveOp(m0)
	return true
}

func slide2q(g *dag.DAG, id dag.NodeID, w dag.Wire, class slideClass) dag.NodeID {
	cur := g.SuccOn(id, w)
	for cur >= 0 {
		n := g.Node(cur)
		if n.Kind != dag.KindOp {
			return -1
		}
		if len(n.Op.Qubits) >= 2 || n.Op.Cond != nil || n.Op.Directive() {
			return cur
		}
		if !class.passes(n.Op.Name) {
			return cur
		}
		cur = g.SuccOn(cur, w)
	}
	return -1
}

func wrapAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a <= -math.Pi {
		a += 2 * math.Pi
	}
	return a
}
