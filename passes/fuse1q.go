package passes

import (
	"qpiler/circuit"
	"qpiler/dag"
	"qpiler/pipeline"
	"qpiler/synth"
	"qpiler/target"
)

// emitter1q picks the single-qubit rewrite vocabulary the target
// supports, or nil when it carries neither an rz/sx nor an rz/ry set.
func emitter1q(tgt *target.Target) synth.Emit1Q {
	switch {
	case tgt.Supports("rz") && tgt.Supports("sx"):
		haveX := tgt.Supports("x")
		return func(u synth.Mat2, q int) []circuit.Operation {
			return synth.ZSXOps(u, q, haveX)
		}
	case tgt.Supports("rz") && tgt.Supports("ry"):
		return func(u synth.Mat2, q int) []circuit.Operation {
			return synth.ZYZOps(u, q)
		}
	}
	return nil
}

// Fuse1qRuns multiplies runs of adjacent one-qubit gates into a
// single matrix and re-emits the product in the target's rotation
// vocabulary, keeping the rewrite only when it is strictly shorter.
type Fuse1qRuns struct{}

func (Fuse1qRuns) Name() string { return "fuse-1q-runs" }

func (Fuse1qRuns) Transform(ctx *pipeline.Context, g *dag.DAG) (bool, error) {
	emit := emitter1q(ctx.Target)
	if emit == nil {
		return false, nil
	}

	changed := false
	for q := 0; q < g.NumQubits; q++ {
		w := dag.Q(q)
		var run []dag.NodeID
		cur := g.SuccOn(g.InNode(w), w)
		for cur >= 0 {
			n := g.Node(cur)
			next := g.SuccOn(cur, w)
			if fusable1q(n, q) {
				run = append(run, cur)
			} else {
				if fuseRun(g, run, q, emit) {
					changed = true
				}
				run = nil
			}
			if n.Kind == dag.KindOut {
				break
			}
			cur = next
		}
		if fuseRun(g, run, q, emit) {
			changed = true
		}
	}
	return changed, nil
}

func fusable1q(n *dag.Node, q int) bool {
	if n.Kind != dag.KindOp {
		return false
	}
	op := n.Op
	if op.Cond != nil || op.Directive() || len(op.Qubits) != 1 || op.Qubits[0] != q {
		return false
	}
	_, ok := synth.Gate1(op.Name, op.Params)
	return ok
}

// fuseRun replaces a run of one-qubit gates by the emitter's
// rendition of their product when that is shorter.
func fuseRun(g *dag.DAG, run []dag.NodeID, q int, emit synth.Emit1Q) bool {
	if len(run) < 2 {
		return false
	}
	acc := synth.I2
	for _, id := range run {
		u, _ := synth.Gate1(g.Node(id).Op.Name, g.Node(id).Op.Params)
		acc = synth.Mul2(u, acc)
	}
	fused := emit(acc, 0)
	if len(fused) >= len(run) {
		return false
	}
	for _, id := range run[1:] {
		g.RemoveOp(id)
	}
	if len(fused) == 0 {
		g.RemoveOp(run[0])
		return true
	}
	sub, err := subDAG(1, 0, fused)
	if err != nil {
		return false
	}
	return g.SubstituteNode(run[0], sub) == nil
}
