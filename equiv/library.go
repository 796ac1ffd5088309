// Package equiv holds gate equivalences and the basis translator that
// rewrites circuits into a target's native vocabulary along the
// cheapest chain of known identities.
package equiv

import (
	"math"

	"qpiler/circuit"
)

// Expansion produces the replacement sequence for one source gate,
// over local qubit indices 0..arity-1, given the source parameters.
// It returns false when the identity needs parameter arithmetic that
// a symbolic parameter cannot satisfy.
type Expansion func(params []circuit.Param) ([]circuit.Operation, bool)

// Rule is one registered identity: a source gate name, the names the
// expansion produces (used for path costing), and the expansion
// itself.
type Rule struct {
	Src      string
	Produces []string
	Expand   Expansion
}

// Library is an ordered rule collection. Registration order breaks
// cost ties, so the standard library lists preferred identities
// first.
type Library struct {
	rules []Rule
	bySrc map[string][]int
}

// NewLibrary returns an empty library.
func NewLibrary() *Library {
	return &Library{bySrc: make(map[string][]int)}
}

// Add registers a rule.
func (l *Library) Add(r Rule) {
	l.bySrc[r.Src] = append(l.bySrc[r.Src], len(l.rules))
	l.rules = append(l.rules, r)
}

// Rules returns every rule with the given source name, in
// registration order.
func (l *Library) Rules(src string) []Rule {
	idxs := l.bySrc[src]
	out := make([]Rule, len(idxs))
	for i, idx := range idxs {
		out[i] = l.rules[idx]
	}
	return out
}

func g(name string, qubits ...int) circuit.Operation {
	return circuit.Operation{Name: name, Qubits: qubits}
}

func gp(name string, angle float64, qubits ...int) circuit.Operation {
	return circuit.Operation{Name: name, Qubits: qubits, Params: []circuit.Param{circuit.Num(angle)}}
}

// gv forwards a source parameter unchanged.
func gv(name string, p circuit.Param, qubits ...int) circuit.Operation {
	return circuit.Operation{Name: name, Qubits: qubits, Params: []circuit.Param{p}}
}

// fixed wraps a parameterless expansion.
func fixed(ops ...circuit.Operation) Expansion {
	return func([]circuit.Param) ([]circuit.Operation, bool) {
		out := make([]circuit.Operation, len(ops))
		for i, op := range ops {
			out[i] = op.Clone()
		}
		return out, true
	}
}

// halved builds an expansion needing params[0]/2; symbolic input is
// rejected.
func halved(build func(half float64) []circuit.Operation) Expansion {
	return func(params []circuit.Param) ([]circuit.Operation, bool) {
		if params[0].Symbolic() {
			return nil, false
		}
		return build(params[0].Value / 2), true
	}
}

// Standard returns the built-in identity set covering the standard
// vocabulary. Every rule was checked against the gate matrices in
// package synth.
func Standard() *Library {
	l := NewLibrary()
	pi := math.Pi

	l.Add(Rule{Src: "id", Produces: nil, Expand: fixed()})
	l.Add(Rule{Src: "z", Produces: []string{"rz"}, Expand: fixed(gp("rz", pi, 0))})
	l.Add(Rule{Src: "s", Produces: []string{"rz"}, Expand: fixed(gp("rz", pi/2, 0))})
	l.Add(Rule{Src: "sdg", Produces: []string{"rz"}, Expand: fixed(gp("rz", -pi/2, 0))})
	l.Add(Rule{Src: "t", Produces: []string{"rz"}, Expand: fixed(gp("rz", pi/4, 0))})
	l.Add(Rule{Src: "tdg", Produces: []string{"rz"}, Expand: fixed(gp("rz", -pi/4, 0))})
	l.Add(Rule{Src: "x", Produces: []string{"sx"}, Expand: fixed(g("sx", 0), g("sx", 0))})
	l.Add(Rule{Src: "x", Produces: []string{"h", "z"}, Expand: fixed(g("h", 0), g("z", 0), g("h", 0))})
	l.Add(Rule{Src: "y", Produces: []string{"x", "rz"}, Expand: fixed(g("x", 0), gp("rz", pi, 0))})
	l.Add(Rule{Src: "h", Produces: []string{"rz", "sx"}, Expand: fixed(gp("rz", pi/2, 0), g("sx", 0), gp("rz", pi/2, 0))})
	l.Add(Rule{Src: "sx", Produces: []string{"rz", "h"}, Expand: fixed(gp("rz", -pi/2, 0), g("h", 0), gp("rz", -pi/2, 0))})
	l.Add(Rule{Src: "sxdg", Produces: []string{"rz", "sx"}, Expand: fixed(gp("rz", pi, 0), g("sx", 0), gp("rz", pi, 0))})

	l.Add(Rule{Src: "rx", Produces: []string{"h", "rz"}, Expand: func(p []circuit.Param) ([]circuit.Operation, bool) {
		return []circuit.Operation{g("h", 0), gv("rz", p[0], 0), g("h", 0)}, true
	}})
	l.Add(Rule{Src: "ry", Produces: []string{"s", "sdg", "rx"}, Expand: func(p []circuit.Param) ([]circuit.Operation, bool) {
		return []circuit.Operation{g("sdg", 0), gv("rx", p[0], 0), g("s", 0)}, true
	}})
	l.Add(Rule{Src: "p", Produces: []string{"rz"}, Expand: func(p []circuit.Param) ([]circuit.Operation, bool) {
		return []circuit.Operation{gv("rz", p[0], 0)}, true
	}})
	l.Add(Rule{Src: "u1", Produces: []string{"p"}, Expand: func(p []circuit.Param) ([]circuit.Operation, bool) {
		return []circuit.Operation{gv("p", p[0], 0)}, true
	}})
	l.Add(Rule{Src: "u2", Produces: []string{"rz", "ry"}, Expand: func(p []circuit.Param) ([]circuit.Operation, bool) {
		return []circuit.Operation{gv("rz", p[1], 0), gp("ry", pi/2, 0), gv("rz", p[0], 0)}, true
	}})
	l.Add(Rule{Src: "u3", Produces: []string{"rz", "ry"}, Expand: func(p []circuit.Param) ([]circuit.Operation, bool) {
		return []circuit.Operation{gv("rz", p[2], 0), gv("ry", p[0], 0), gv("rz", p[1], 0)}, true
	}})

	l.Add(Rule{Src: "cz", Produces: []string{"h", "cx"}, Expand: fixed(g("h", 1), g("cx", 0, 1), g("h", 1))})
	l.Add(Rule{Src: "cx", Produces: []string{"h", "cz"}, Expand: fixed(g("h", 1), g("cz", 0, 1), g("h", 1))})
	l.Add(Rule{Src: "cx", Produces: []string{"x", "ecr", "rz", "rx"}, Expand: fixed(
		g("x", 0), g("ecr", 0, 1), gp("rz", pi/2, 0), gp("rx", pi/2, 1))})
	l.Add(Rule{Src: "ecr", Produces: []string{"x", "cx", "rz", "rx"}, Expand: fixed(
		g("x", 0), g("cx", 0, 1), gp("rz", -pi/2, 0), gp("rx", -pi/2, 1))})
	l.Add(Rule{Src: "swap", Produces: []string{"cx"}, Expand: fixed(g("cx", 0, 1), g("cx", 1, 0), g("cx", 0, 1))})
	l.Add(Rule{Src: "iswap", Produces: []string{"s", "h", "cx"}, Expand: fixed(
		g("s", 0), g("s", 1), g("h", 0), g("cx", 0, 1), g("cx", 1, 0), g("h", 1))})
	l.Add(Rule{Src: "ch", Produces: []string{"s", "sdg", "h", "t", "tdg", "cx"}, Expand: fixed(
		g("s", 1), g("h", 1), g("t", 1), g("cx", 0, 1), g("tdg", 1), g("h", 1), g("sdg", 1))})

	l.Add(Rule{Src: "crz", Produces: []string{"rz", "cx"}, Expand: halved(func(h float64) []circuit.Operation {
		return []circuit.Operation{gp("rz", h, 1), g("cx", 0, 1), gp("rz", -h, 1), g("cx", 0, 1)}
	})})
	l.Add(Rule{Src: "crx", Produces: []string{"h", "crz"}, Expand: func(p []circuit.Param) ([]circuit.Operation, bool) {
		return []circuit.Operation{g("h", 1), gv("crz", p[0], 0, 1), g("h", 1)}, true
	}})
	l.Add(Rule{Src: "cry", Produces: []string{"s", "sdg", "crx"}, Expand: func(p []circuit.Param) ([]circuit.Operation, bool) {
		return []circuit.Operation{g("sdg", 1), gv("crx", p[0], 0, 1), g("s", 1)}, true
	}})
	l.Add(Rule{Src: "cp", Produces: []string{"p", "cx"}, Expand: halved(func(h float64) []circuit.Operation {
		return []circuit.Operation{gp("p", h, 0), g("cx", 0, 1), gp("p", -h, 1), g("cx", 0, 1), gp("p", h, 1)}
	})})

	l.Add(Rule{Src: "ccx", Produces: []string{"h", "t", "tdg", "cx"}, Expand: fixed(
		g("h", 2),
		g("cx", 1, 2), g("tdg", 2),
		g("cx", 0, 2), g("t", 2),
		g("cx", 1, 2), g("tdg", 2),
		g("cx", 0, 2),
		g("t", 1), g("t", 2), g("h", 2),
		g("cx", 0, 1), g("t", 0), g("tdg", 1),
		g("cx", 0, 1),
	)})

	return l
}
