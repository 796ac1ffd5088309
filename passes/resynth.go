package passes

import (
	"qpiler/circuit"
	"qpiler/dag"
	"qpiler/pipeline"
	"qpiler/synth"
)

// block is a maximal contiguous group of operations confined to one
// qubit pair.
type block struct {
	a, b   int   // physical qubits, a < b by first-op order
	ops    []int // indices into the linearized program
	twoQ   int
	closed bool
}

// Resynthesize2q collects maximal two-qubit blocks, multiplies each
// into a 4x4 unitary and rebuilds it from scratch with at most three
// entangling gates, keeping the rewrite only when it beats the
// original block. Approximation degree below one lets the rebuild
// snap weak interactions away.
type Resynthesize2q struct{}

func (Resynthesize2q) Name() string { return "resynthesize-2q" }

func (Resynthesize2q) Transform(ctx *pipeline.Context, g *dag.DAG) (bool, error) {
	emit := emitter1q(ctx.Target)
	if emit == nil || !ctx.Target.Supports("cx") {
		return false, nil
	}

	c := g.ToCircuit()
	blocks := collectBlocks(c)

	replacement := make(map[int][]circuit.Operation) // first op index -> new ops
	skip := make(map[int]bool)
	for _, bl := range blocks {
		if bl.twoQ < 2 {
			continue
		}
		ops := make([]circuit.Operation, len(bl.ops))
		for i, idx := range bl.ops {
			ops[i] = c.Ops[idx]
		}
		u, ok := synth.SequenceMatrix4(ops, map[int]int{bl.a: 0, bl.b: 1})
		if !ok {
			continue
		}
		newOps, ok := synth.Decompose2Q(u, bl.a, bl.b, emit, ctx.Opts.ApproximationDegree)
		if !ok {
			continue
		}
		newTwoQ := 0
		for _, op := range newOps {
			if len(op.Qubits) == 2 {
				newTwoQ++
			}
		}
		if newTwoQ > bl.twoQ || (newTwoQ == bl.twoQ && len(newOps) >= len(bl.ops)) {
			continue
		}
		replacement[bl.ops[0]] = newOps
		for _, idx := range bl.ops[1:] {
			skip[idx] = true
		}
	}
	if len(replacement) == 0 {
		return false, nil
	}

	out := circuit.New(c.NumQubits, c.NumClbits)
	for i, op := range c.Ops {
		if skip[i] {
			continue
		}
		if newOps, ok := replacement[i]; ok {
			for _, nop := range newOps {
				out.Append(nop)
			}
			continue
		}
		out.Append(op)
	}
	rebuilt, err := dag.FromCircuit(out)
	if err != nil {
		return false, err
	}
	*g = *rebuilt
	return true, nil
}

// collectBlocks scans the linear program, growing one open block per
// qubit pair. Any operation that leaves the pair, carries a guard or
// has no known matrix closes the blocks on its qubits.
func collectBlocks(c *circuit.Circuit) []*block {
	var blocks []*block
	open := make(map[int]*block) // qubit -> open block

	closeOn := func(q int) {
		if bl := open[q]; bl != nil && !bl.closed {
			bl.closed = true
			delete(open, bl.a)
			delete(open, bl.b)
		}
	}

	for i, op := range c.Ops {
		switch {
		case op.Cond == nil && len(op.Qubits) == 2 && !op.Directive() && matrixKnown2(op):
			a, b := op.Qubits[0], op.Qubits[1]
			bl := open[a]
			if bl != nil && bl == open[b] {
				bl.ops = append(bl.ops, i)
				bl.twoQ++
				continue
			}
			closeOn(a)
			closeOn(b)
			bl = &block{a: a, b: b, ops: []int{i}, twoQ: 1}
			open[a], open[b] = bl, bl
			blocks = append(blocks, bl)
		case op.Cond == nil && len(op.Qubits) == 1 && !op.Directive() && matrixKnown1(op):
			if bl := open[op.Qubits[0]]; bl != nil {
				bl.ops = append(bl.ops, i)
			}
		default:
			qs := op.Qubits
			if op.Name == "barrier" && len(qs) == 0 {
				for q := range open {
					qs = append(qs, q)
				}
			}
			for _, q := range qs {
				closeOn(q)
			}
		}
	}
	return blocks
}

func matrixKnown1(op circuit.Operation) bool {
	_, ok := synth.Gate1(op.Name, op.Params)
	return ok
}

func matrixKnown2(op circuit.Operation) bool {
	_, ok := synth.Gate2(op.Name, op.Params)
	return ok
}
