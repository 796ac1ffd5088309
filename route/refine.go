package route

import (
	"qpiler/circuit"
	"qpiler/target"
)

// refineSubgraph relocates a routed program onto a lower-error region
// of the device. Each round proposes moving one occupied physical
// qubit to an idle one, keeps a proposal only when every two-qubit
// operation still sits on a coupled pair, and applies the move with
// the lowest aggregate calibrated error. The search stops at the first
// round with no strict improvement.
func refineSubgraph(out *circuit.Circuit, init, final *Layout, numVirt int, tgt *target.Target) (*circuit.Circuit, *Layout, *Layout) {
	if !tgt.HasCalibration() {
		return out, init, final
	}
	cost := routedCost(out, tgt, true)
	for round := 0; round < tgt.NumQubits; round++ {
		used := make([]bool, tgt.NumQubits)
		for _, op := range out.Ops {
			for _, q := range op.Qubits {
				used[q] = true
			}
		}
		for v := 0; v < numVirt; v++ {
			used[init.V2P[v]] = true
			used[final.V2P[v]] = true
		}

		bestCost := cost
		bestP, bestQ := -1, -1
		for p := 0; p < tgt.NumQubits; p++ {
			if !used[p] {
				continue
			}
			for q := 0; q < tgt.NumQubits; q++ {
				if used[q] {
					continue
				}
				cand := relabelPhys(out, p, q)
				if !coupledEverywhere(cand, tgt) {
					continue
				}
				if c := routedCost(cand, tgt, true); c < bestCost-1e-12 {
					bestCost, bestP, bestQ = c, p, q
				}
			}
		}
		if bestP < 0 {
			break
		}
		out = relabelPhys(out, bestP, bestQ)
		init = init.Clone()
		init.SwapPhys(bestP, bestQ)
		final = final.Clone()
		final.SwapPhys(bestP, bestQ)
		cost = bestCost
	}
	return out, init, final
}

// relabelPhys exchanges two physical wire labels throughout a routed
// circuit.
func relabelPhys(c *circuit.Circuit, p, q int) *circuit.Circuit {
	out := circuit.New(c.NumQubits, c.NumClbits)
	for _, op := range c.Ops {
		m := op.Clone()
		for i, w := range m.Qubits {
			switch w {
			case p:
				m.Qubits[i] = q
			case q:
				m.Qubits[i] = p
			}
		}
		out.Append(m)
	}
	return out
}

func coupledEverywhere(c *circuit.Circuit, tgt *target.Target) bool {
	for _, op := range c.Ops {
		if len(op.Qubits) == 2 && op.Name != "barrier" && !tgt.Coupled(op.Qubits[0], op.Qubits[1]) {
			return false
		}
	}
	return true
}
