package route

import (
	"math/rand"

	"qpiler/circuit"
	"qpiler/qerr"
	"qpiler/target"
)

// Options selects the routing effort.
type Options struct {
	// Effort 0 routes greedily along shortest paths from a trivial
	// layout. Levels 1-3 run increasingly many seeded heuristic trials
	// and finish with a calibrated subgraph refinement when the target
	// reports error rates; levels 2 and up skip the identity-assignment
	// attempt, and level 3 also ranks trial candidates by calibrated
	// error.
	Effort int

	// Seed drives every randomized choice. Equal seeds give
	// byte-identical results.
	Seed int64

	// Trials overrides the per-effort trial count when positive.
	Trials int
}

func trialsFor(o Options) int {
	if o.Trials > 0 {
		return o.Trials
	}
	switch {
	case o.Effort <= 1:
		return 2
	case o.Effort == 2:
		return 5
	default:
		return 20
	}
}

// Result carries the routed program and the layouts bounding it.
type Result struct {
	Circuit *circuit.Circuit
	Initial *Layout
	Final   *Layout
}

// Route maps a logical circuit onto the target, inserting swaps until
// every two-qubit operation sits on a coupled pair. The output is
// over physical qubits. When every heuristic trial fails, routing
// falls back to the greedy level-0 strategy rather than erroring.
func Route(c *circuit.Circuit, tgt *target.Target, opts Options) (*Result, error) {
	if err := checkRoutable(c, tgt); err != nil {
		return nil, err
	}

	if opts.Effort <= 0 {
		return routeLevel0(c, tgt)
	}

	out, init, final, err := routeSabre(c, tgt, opts.Seed, trialsFor(opts), opts.Effort)
	if err != nil {
		if _, infeasible := err.(*qerr.InfeasibleMappingError); infeasible {
			return routeLevel0(c, tgt)
		}
		return nil, err
	}
	return &Result{Circuit: out, Initial: init, Final: final}, nil
}

// FindLayout selects an initial placement without committing to a
// routed circuit. Effort 0 returns the trivial layout; higher efforts
// run seeded routing trials and keep the initial layout of the
// cheapest one.
func FindLayout(c *circuit.Circuit, tgt *target.Target, opts Options) (*Layout, error) {
	if err := checkRoutable(c, tgt); err != nil {
		return nil, err
	}
	if opts.Effort <= 0 {
		return Trivial(c.NumQubits, tgt.NumQubits)
	}
	_, init, _, err := routeSabre(c, tgt, opts.Seed, trialsFor(opts), opts.Effort)
	if err != nil {
		// Heuristic search failed; the trivial layout still lets the
		// greedy router make progress.
		return Trivial(c.NumQubits, tgt.NumQubits)
	}
	return init, nil
}

// RouteFrom routes from a fixed initial layout. Effort 0 uses the
// greedy router; higher efforts run one heuristic pass and fall back
// to greedy when it cannot converge.
func RouteFrom(c *circuit.Circuit, tgt *target.Target, init *Layout, opts Options) (*Result, error) {
	if err := checkRoutable(c, tgt); err != nil {
		return nil, err
	}
	if opts.Effort > 0 {
		s := &sabreRouter{
			c:     c,
			tgt:   tgt,
			deps:  buildDeps(c),
			rng:   rand.New(rand.NewSource(opts.Seed)),
			decay: make([]float64, tgt.NumQubits),
		}
		out, final, err := s.run(init)
		if err == nil {
			return &Result{Circuit: out, Initial: init.Clone(), Final: final}, nil
		}
		if _, infeasible := err.(*qerr.InfeasibleMappingError); !infeasible {
			return nil, err
		}
	}
	out, final, err := routeBasic(c, tgt, init)
	if err != nil {
		return nil, err
	}
	return &Result{Circuit: out, Initial: init.Clone(), Final: final}, nil
}

func routeLevel0(c *circuit.Circuit, tgt *target.Target) (*Result, error) {
	init, err := Trivial(c.NumQubits, tgt.NumQubits)
	if err != nil {
		return nil, err
	}
	out, final, err := routeBasic(c, tgt, init)
	if err != nil {
		return nil, err
	}
	return &Result{Circuit: out, Initial: init, Final: final}, nil
}
