// Package circuit holds the flat operation-list form of a quantum
// program: the shape circuits arrive in and the shape the transpiler
// hands back. The graph form lives in package dag.
package circuit

import (
	"fmt"
	"math"
	"strings"
)

// Param is a single operation parameter: either a bound numeric value
// or a symbolic (unbound) placeholder identified by name.
type Param struct {
	Name  string // non-empty for a symbolic parameter
	Value float64
}

// Num returns a bound numeric parameter.
func Num(v float64) Param { return Param{Value: v} }

// Sym returns a symbolic parameter with the given name.
func Sym(name string) Param { return Param{Name: name} }

// Symbolic reports whether the parameter is unbound.
func (p Param) Symbolic() bool { return p.Name != "" }

// Equal compares two parameters the way pattern matching requires:
// a symbolic parameter on either side matches unconditionally.
func (p Param) Equal(q Param) bool {
	if p.Symbolic() || q.Symbolic() {
		return true
	}
	return math.Abs(p.Value-q.Value) < 1e-12
}

func (p Param) String() string {
	if p.Symbolic() {
		return p.Name
	}
	return FormatParam(p.Value)
}

// Condition is a classical guard: the operation executes only when the
// named classical bit holds the given value.
type Condition struct {
	Clbit int
	Value int
}

// Operation is one instruction in the flat program: a name, ordered
// qubit operands, ordered classical-bit operands, an optional classical
// guard, and parameters.
type Operation struct {
	Name   string
	Qubits []int
	Clbits []int
	Cond   *Condition
	Params []Param
}

// NumParams built-in arity table for the standard vocabulary. Unknown
// names report -1: any parameter count is accepted for them.
var numParams = map[string]int{
	"id": 0, "x": 0, "y": 0, "z": 0, "h": 0, "s": 0, "sdg": 0,
	"t": 0, "tdg": 0, "sx": 0, "sxdg": 0,
	"rx": 1, "ry": 1, "rz": 1, "p": 1, "u1": 1, "u2": 2, "u3": 3,
	"cx": 0, "cz": 0, "ch": 0, "swap": 0, "ecr": 0, "iswap": 0,
	"crx": 1, "cry": 1, "crz": 1, "cp": 1,
	"ccx": 0,
	"measure": 0, "reset": 0, "barrier": 0,
}

// numQubits built-in qubit arity table. Unknown names report -1.
var numQubits = map[string]int{
	"id": 1, "x": 1, "y": 1, "z": 1, "h": 1, "s": 1, "sdg": 1,
	"t": 1, "tdg": 1, "sx": 1, "sxdg": 1,
	"rx": 1, "ry": 1, "rz": 1, "p": 1, "u1": 1, "u2": 1, "u3": 1,
	"cx": 2, "cz": 2, "ch": 2, "swap": 2, "ecr": 2, "iswap": 2,
	"crx": 2, "cry": 2, "crz": 2, "cp": 2,
	"ccx": 3,
	"measure": 1, "reset": 1,
}

// StandardQubitArity returns the fixed qubit arity of a standard gate
// name, or -1 when the name is not in the built-in vocabulary.
func StandardQubitArity(name string) int {
	if n, ok := numQubits[name]; ok {
		return n
	}
	return -1
}

// StandardParamArity returns the fixed parameter count of a standard
// gate name, or -1 when the name is not in the built-in vocabulary.
func StandardParamArity(name string) int {
	if n, ok := numParams[name]; ok {
		return n
	}
	return -1
}

// Clone deep-copies the operation.
func (o Operation) Clone() Operation {
	c := o
	c.Qubits = append([]int(nil), o.Qubits...)
	c.Clbits = append([]int(nil), o.Clbits...)
	c.Params = append([]Param(nil), o.Params...)
	if o.Cond != nil {
		cond := *o.Cond
		c.Cond = &cond
	}
	return c
}

// SemanticEqual reports whether two operations are equal for
// pattern-matching purposes: name, qubit count and classical-bit count
// must match, and every parameter must match, where symbolic
// parameters match unconditionally.
func (o Operation) SemanticEqual(p Operation) bool {
	if o.Name != p.Name || len(o.Qubits) != len(p.Qubits) || len(o.Clbits) != len(p.Clbits) {
		return false
	}
	if len(o.Params) != len(p.Params) {
		return false
	}
	for i := range o.Params {
		if !o.Params[i].Equal(p.Params[i]) {
			return false
		}
	}
	return true
}

// Directive reports whether the operation is a non-unitary directive
// (measure, reset, barrier) rather than a gate.
func (o Operation) Directive() bool {
	switch o.Name {
	case "measure", "reset", "barrier":
		return true
	}
	return false
}

// ParamSignature returns a cache key describing the operation's
// parameter shape: the count plus a bound/symbolic mask. Two operations
// with the same name and signature share a decomposition skeleton.
func (o Operation) ParamSignature() string {
	if len(o.Params) == 0 {
		return "0"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:", len(o.Params))
	for _, p := range o.Params {
		if p.Symbolic() {
			sb.WriteByte('s')
		} else {
			sb.WriteByte('b')
		}
	}
	return sb.String()
}

func (o Operation) String() string {
	var sb strings.Builder
	sb.WriteString(o.Name)
	if len(o.Params) > 0 {
		sb.WriteByte('(')
		for i, p := range o.Params {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(p.String())
		}
		sb.WriteByte(')')
	}
	for _, q := range o.Qubits {
		fmt.Fprintf(&sb, " q%d", q)
	}
	for _, c := range o.Clbits {
		fmt.Fprintf(&sb, " c%d", c)
	}
	return sb.String()
}
