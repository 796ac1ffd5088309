package circuit

import (
	"fmt"

	"qpiler/qerr"
)

// Circuit is an ordered flat operation list over logical qubits and
// classical bits. Order within the list is program order.
type Circuit struct {
	NumQubits int
	NumClbits int
	Ops       []Operation
}

// New returns an empty circuit over the given register sizes.
func New(numQubits, numClbits int) *Circuit {
	return &Circuit{NumQubits: numQubits, NumClbits: numClbits}
}

// Append adds an operation, growing the registers if the operands
// exceed them.
func (c *Circuit) Append(op Operation) {
	for _, q := range op.Qubits {
		if q+1 > c.NumQubits {
			c.NumQubits = q + 1
		}
	}
	for _, b := range op.Clbits {
		if b+1 > c.NumClbits {
			c.NumClbits = b + 1
		}
	}
	if op.Cond != nil && op.Cond.Clbit+1 > c.NumClbits {
		c.NumClbits = op.Cond.Clbit + 1
	}
	c.Ops = append(c.Ops, op)
}

// Gate appends a named gate on the given qubits.
func (c *Circuit) Gate(name string, qubits ...int) {
	c.Append(Operation{Name: name, Qubits: qubits})
}

// PGate appends a parameterized gate.
func (c *Circuit) PGate(name string, params []Param, qubits ...int) {
	c.Append(Operation{Name: name, Qubits: qubits, Params: params})
}

// Measure appends a measurement from a qubit into a classical bit.
func (c *Circuit) Measure(qubit, clbit int) {
	c.Append(Operation{Name: "measure", Qubits: []int{qubit}, Clbits: []int{clbit}})
}

// Clone deep-copies the circuit.
func (c *Circuit) Clone() *Circuit {
	out := &Circuit{NumQubits: c.NumQubits, NumClbits: c.NumClbits}
	out.Ops = make([]Operation, len(c.Ops))
	for i, op := range c.Ops {
		out.Ops[i] = op.Clone()
	}
	return out
}

// Reverse returns the circuit with operation order reversed. Reversing
// does not change connectivity requirements, which is what the routing
// engine's alternating passes rely on.
func (c *Circuit) Reverse() *Circuit {
	out := &Circuit{NumQubits: c.NumQubits, NumClbits: c.NumClbits}
	out.Ops = make([]Operation, len(c.Ops))
	for i := range c.Ops {
		out.Ops[i] = c.Ops[len(c.Ops)-1-i].Clone()
	}
	return out
}

// Validate checks every operation for out-of-range wire references,
// duplicate operands and arity mismatches against the standard
// vocabulary. The first violation is returned as a ValidationError.
func (c *Circuit) Validate() error {
	for i, op := range c.Ops {
		if op.Name == "" {
			return &qerr.ValidationError{Detail: fmt.Sprintf("operation %d has no name", i)}
		}
		seen := map[int]bool{}
		for _, q := range op.Qubits {
			if q < 0 || q >= c.NumQubits {
				return &qerr.ValidationError{Op: op.Name, Detail: fmt.Sprintf("qubit %d outside register of size %d", q, c.NumQubits)}
			}
			if seen[q] {
				return &qerr.ValidationError{Op: op.Name, Detail: fmt.Sprintf("duplicate qubit operand %d", q)}
			}
			seen[q] = true
		}
		for _, b := range op.Clbits {
			if b < 0 || b >= c.NumClbits {
				return &qerr.ValidationError{Op: op.Name, Detail: fmt.Sprintf("clbit %d outside register of size %d", b, c.NumClbits)}
			}
		}
		if op.Cond != nil && (op.Cond.Clbit < 0 || op.Cond.Clbit >= c.NumClbits) {
			return &qerr.ValidationError{Op: op.Name, Detail: fmt.Sprintf("guard clbit %d outside register of size %d", op.Cond.Clbit, c.NumClbits)}
		}
		if op.Name == "barrier" {
			continue // any qubit count
		}
		if want := StandardQubitArity(op.Name); want >= 0 && want != len(op.Qubits) {
			return &qerr.ValidationError{Op: op.Name, Detail: fmt.Sprintf("expects %d qubits, got %d", want, len(op.Qubits))}
		}
		if want := StandardParamArity(op.Name); want >= 0 && want != len(op.Params) {
			return &qerr.ValidationError{Op: op.Name, Detail: fmt.Sprintf("expects %d params, got %d", want, len(op.Params))}
		}
	}
	return nil
}

// CountOps returns per-name operation counts.
func (c *Circuit) CountOps() map[string]int {
	counts := make(map[string]int)
	for _, op := range c.Ops {
		counts[op.Name]++
	}
	return counts
}

// Depth returns the circuit depth: the longest chain of operations
// sharing wires, barriers excluded from the count but still ordering.
func (c *Circuit) Depth() int {
	level := make(map[int]int) // wire (qubits >=0, clbits offset) -> depth
	clOff := c.NumQubits
	depth := 0
	for _, op := range c.Ops {
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
		d := 0
		for _, w := range wires {
			if level[w] > d {
				d = level[w]
			}
		}
		if op.Name != "barrier" {
			d++
		}
		for _, w := range wires {
			level[w] = d
		}
		if d > depth {
			depth = d
		}
	}
	return depth
}

// TwoQubitOps returns the number of operations touching two or more
// qubits.
func (c *Circuit) TwoQubitOps() int {
	n := 0
	for _, op := range c.Ops {
		if len(op.Qubits) >= 2 && op.Name != "barrier" {
			n++
		}
	}
	return n
}
