package route

import (
	"math/rand"

	"qpiler/circuit"
	"qpiler/qerr"
	"qpiler/target"
)

const (
	lookaheadWindow = 20
	lookaheadWeight = 0.5
	decayDelta      = 0.001
)

// depGraph is the dependency structure of a flat program: op i
// precedes op j when they share a wire and i comes first.
type depGraph struct {
	succs [][]int
	indeg []int
}

func buildDeps(c *circuit.Circuit) *depGraph {
	n := len(c.Ops)
	g := &depGraph{succs: make([][]int, n), indeg: make([]int, n)}
	last := make(map[int]int) // wire -> op index; clbits offset past qubits
	clOff := c.NumQubits
	for i, op := range c.Ops {
		wires := append([]int(nil), op.Qubits...)
		if op.Name == "barrier" && len(op.Qubits) == 0 {
			for q := 0; q < c.NumQubits; q++ {
				wires = append(wires, q)
			}
		}
		for _, b := range op.Clbits {
			wires = append(wires, clOff+b)
		}
		if op.Cond != nil {
			wires = append(wires, clOff+op.Cond.Clbit)
		}
		seen := map[int]bool{}
		for _, w := range wires {
			if p, ok := last[w]; ok && !seen[p] {
				g.succs[p] = append(g.succs[p], i)
				g.indeg[i]++
				seen[p] = true
			}
			last[w] = i
		}
	}
	return g
}

type sabreRouter struct {
	c     *circuit.Circuit
	tgt   *target.Target
	deps  *depGraph
	rng   *rand.Rand
	decay []float64
}

// run routes the whole program from one initial layout. The returned
// layout is the final placement after every inserted swap.
func (s *sabreRouter) run(initial *Layout) (*circuit.Circuit, *Layout, error) {
	l := initial.Clone()
	out := circuit.New(s.tgt.NumQubits, s.c.NumClbits)
	indeg := append([]int(nil), s.deps.indeg...)
	done := make([]bool, len(s.c.Ops))
	for i := range s.decay {
		s.decay[i] = 1
	}

	var front []int
	for i := range s.c.Ops {
		if indeg[i] == 0 {
			front = append(front, i)
		}
	}

	remaining := len(s.c.Ops)
	stalled := 0
	maxStall := s.tgt.NumQubits*s.tgt.NumQubits + 100

	for remaining > 0 {
		// Flush every dependency-free operation that is already
		// executable under the current layout.
		progressed := true
		for progressed {
			progressed = false
			next := front[:0:0]
			for _, i := range front {
				op := s.c.Ops[i]
				if len(op.Qubits) == 2 && !s.tgt.Coupled(l.Phys(op.Qubits[0]), l.Phys(op.Qubits[1])) {
					next = append(next, i)
					continue
				}
				out.Append(mapOp(op, l))
				done[i] = true
				remaining--
				progressed = true
				for _, sc := range s.deps.succs[i] {
					indeg[sc]--
					if indeg[sc] == 0 {
						next = append(next, sc)
					}
				}
			}
			front = next
			if progressed {
				stalled = 0
				for i := range s.decay {
					s.decay[i] = 1
				}
			}
		}
		if remaining == 0 {
			break
		}

		p1, p2, ok := s.pickSwap(front, done, l)
		if !ok {
			return nil, nil, &qerr.InfeasibleMappingError{Trials: 1}
		}
		out.Append(circuit.Operation{Name: "swap", Qubits: []int{p1, p2}})
		l.SwapPhys(p1, p2)
		s.decay[p1] += decayDelta
		s.decay[p2] += decayDelta
		stalled++
		if stalled > maxStall {
			return nil, nil, &qerr.InfeasibleMappingError{Trials: stalled}
		}
	}
	return out, l, nil
}

// pickSwap scores candidate swaps on edges touching the blocked front
// and returns the best one. The score sums front distances after the
// swap plus a damped lookahead over upcoming two-qubit operations;
// recently moved qubits are penalized so the search does not thrash.
func (s *sabreRouter) pickSwap(front []int, done []bool, l *Layout) (int, int, bool) {
	involved := map[int]bool{}
	for _, i := range front {
		for _, v := range s.c.Ops[i].Qubits {
			involved[l.Phys(v)] = true
		}
	}

	type cand struct{ p1, p2 int }
	var cands []cand
	for _, e := range s.tgt.Edges() {
		if involved[e[0]] || involved[e[1]] {
			cands = append(cands, cand{e[0], e[1]})
		}
	}
	if len(cands) == 0 {
		return 0, 0, false
	}

	window := s.lookahead(front, done)

	best := make([]cand, 0, 4)
	bestScore := 0.0
	for _, c := range cands {
		trial := l.Clone()
		trial.SwapPhys(c.p1, c.p2)

		score := 0.0
		for _, i := range front {
			op := s.c.Ops[i]
			d := s.tgt.Distance(trial.Phys(op.Qubits[0]), trial.Phys(op.Qubits[1]))
			if d < 0 {
				score = -1
				break
			}
			score += float64(d)
		}
		if score < 0 {
			continue
		}
		score /= float64(len(front))
		if len(window) > 0 {
			la := 0.0
			for _, i := range window {
				op := s.c.Ops[i]
				la += float64(s.tgt.Distance(trial.Phys(op.Qubits[0]), trial.Phys(op.Qubits[1])))
			}
			score += lookaheadWeight * la / float64(len(window))
		}
		score *= max(s.decay[c.p1], s.decay[c.p2])

		switch {
		case len(best) == 0 || score < bestScore-1e-12:
			best = append(best[:0], c)
			bestScore = score
		case score < bestScore+1e-12:
			best = append(best, c)
		}
	}
	if len(best) == 0 {
		return 0, 0, false
	}
	pick := best[s.rng.Intn(len(best))]
	return pick.p1, pick.p2, true
}

// lookahead collects upcoming two-qubit operations beyond the front,
// in program order.
func (s *sabreRouter) lookahead(front []int, done []bool) []int {
	inFront := map[int]bool{}
	for _, i := range front {
		inFront[i] = true
	}
	var window []int
	for i, op := range s.c.Ops {
		if done[i] || inFront[i] || len(op.Qubits) != 2 {
			continue
		}
		window = append(window, i)
		if len(window) == lookaheadWindow {
			break
		}
	}
	return window
}

// trialLayout seeds one routing trial. The first trial starts from the
// trivial layout only at efforts that include the identity-assignment
// attempt; everything else draws a random bijection.
func trialLayout(t, virt, phys int, rng *rand.Rand, includeTrivial bool) (*Layout, error) {
	if t == 0 && includeTrivial {
		return Trivial(virt, phys)
	}
	return Random(virt, phys, rng)
}

// routeSabre runs seeded trials with forward/reverse layout
// alternation, keeps the cheapest routed result, and finishes with a
// calibrated subgraph refinement when the target reports error rates.
func routeSabre(c *circuit.Circuit, tgt *target.Target, seed int64, trials, effort int) (*circuit.Circuit, *Layout, *Layout, error) {
	useCalibration := effort >= 3
	includeTrivial := effort < 2
	rng := rand.New(rand.NewSource(seed))
	rev := c.Reverse()

	var bestOut *circuit.Circuit
	var bestInit, bestFinal *Layout
	bestCost := 0.0

	for t := 0; t < trials; t++ {
		init, err := trialLayout(t, c.NumQubits, tgt.NumQubits, rng, includeTrivial)
		if err != nil {
			return nil, nil, nil, err
		}

		// Alternate forward and reverse routing: the final layout of
		// each direction seeds the other, pulling the initial
		// placement toward the program's real interaction pattern.
		s := &sabreRouter{c: c, tgt: tgt, deps: buildDeps(c), rng: rng, decay: make([]float64, tgt.NumQubits)}
		sr := &sabreRouter{c: rev, tgt: tgt, deps: buildDeps(rev), rng: rng, decay: make([]float64, tgt.NumQubits)}
		ok := true
		for round := 0; round < 2; round++ {
			_, fin, err := s.run(init)
			if err != nil {
				ok = false
				break
			}
			_, fin, err = sr.run(fin)
			if err != nil {
				ok = false
				break
			}
			init = fin
		}
		if !ok {
			continue
		}

		out, final, err := s.run(init)
		if err != nil {
			continue
		}
		cost := routedCost(out, tgt, useCalibration)
		if bestOut == nil || cost < bestCost {
			bestOut, bestInit, bestFinal, bestCost = out, init, final, cost
		}
	}
	if bestOut == nil {
		return nil, nil, nil, &qerr.InfeasibleMappingError{Trials: trials}
	}
	bestOut, bestInit, bestFinal = refineSubgraph(bestOut, bestInit, bestFinal, c.NumQubits, tgt)
	return bestOut, bestInit, bestFinal, nil
}

// routedCost ranks routed candidates: summed calibrated error when
// the target reports it, otherwise the two-qubit operation count.
func routedCost(c *circuit.Circuit, tgt *target.Target, useCalibration bool) float64 {
	if !useCalibration || !tgt.HasCalibration() {
		return float64(c.TwoQubitOps())
	}
	cost := 0.0
	for _, op := range c.Ops {
		if len(op.Qubits) != 2 || op.Name == "barrier" {
			continue
		}
		factor := 1.0
		name := op.Name
		if name == "swap" {
			// A swap lowers to three entangling gates.
			factor, name = 3.0, "cx"
		}
		if p, ok := tgt.Props(name, op.Qubits...); ok {
			cost += factor * p.Error
		} else if p, ok := tgt.Props(name, op.Qubits[1], op.Qubits[0]); ok {
			cost += factor * p.Error
		} else {
			cost += factor * 0.01
		}
	}
	return cost
}
