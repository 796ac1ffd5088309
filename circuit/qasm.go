package circuit

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"qpiler/qerr"
)

// Pre-compiled regexps for QASM parsing.
var (
	gateRegex    = regexp.MustCompile(`^(\w+)\s*(?:\(\s*(` + paramPattern + `(?:\s*,\s*` + paramPattern + `)*)\s*\))?\s+q\[(\d+)\](?:\s*,\s*q\[(\d+)\])?(?:\s*,\s*q\[(\d+)\])?;?$`)
	measureRegex = regexp.MustCompile(`^measure\s+q\[(\d+)\]\s*->\s*(\w+)\[(\d+)\];?$`)
	resetRegex   = regexp.MustCompile(`^reset\s+q\[(\d+)\];?$`)
	ifRegex      = regexp.MustCompile(`^if\s*\(\s*(\w+)(?:\[(\d+)\])?\s*==\s*(\d+)\s*\)\s+(.*)$`)
	qregRegex    = regexp.MustCompile(`qreg\s+(\w+)\[(\d+)\]`)
	cregRegex    = regexp.MustCompile(`creg\s+(\w+)\[(\d+)\]`)
	barrierRegex = regexp.MustCompile(`^barrier\b(.*);?$`)
	qubitRefRe   = regexp.MustCompile(`q\[(\d+)\]`)
)

// ToQASM renders the circuit as QASM 2.0. Operations carrying names
// outside the QASM vocabulary are emitted verbatim; round-tripping is
// only guaranteed for the standard vocabulary.
func (c *Circuit) ToQASM() string {
	var sb strings.Builder
	sb.WriteString("OPENQASM 2.0;\n")
	sb.WriteString("include \"qelib1.inc\";\n\n")
	fmt.Fprintf(&sb, "qreg q[%d];\n", max(c.NumQubits, 1))
	fmt.Fprintf(&sb, "creg c[%d];\n\n", max(c.NumClbits, 1))

	for _, op := range c.Ops {
		if op.Cond != nil {
			fmt.Fprintf(&sb, "if (c[%d]==%d) ", op.Cond.Clbit, op.Cond.Value)
		}
		switch op.Name {
		case "measure":
			fmt.Fprintf(&sb, "measure q[%d] -> c[%d];\n", op.Qubits[0], op.Clbits[0])
		case "reset":
			fmt.Fprintf(&sb, "reset q[%d];\n", op.Qubits[0])
		case "barrier":
			qubits := op.Qubits
			if len(qubits) == 0 {
				qubits = make([]int, c.NumQubits)
				for q := range qubits {
					qubits[q] = q
				}
			}
			refs := make([]string, len(qubits))
			for i, q := range qubits {
				refs[i] = fmt.Sprintf("q[%d]", q)
			}
			fmt.Fprintf(&sb, "barrier %s;\n", strings.Join(refs, ", "))
		default:
			sb.WriteString(op.Name)
			if len(op.Params) > 0 {
				sb.WriteByte('(')
				for i, p := range op.Params {
					if i > 0 {
						sb.WriteString(", ")
					}
					sb.WriteString(p.String())
				}
				sb.WriteByte(')')
			}
			for i, q := range op.Qubits {
				if i > 0 {
					sb.WriteByte(',')
				}
				fmt.Fprintf(&sb, " q[%d]", q)
			}
			sb.WriteString(";\n")
		}
	}

	return sb.String()
}

// ParseQASM parses QASM 2.0 text into a fresh circuit. Named classical
// registers are flattened into a single classical register in
// declaration order.
func ParseQASM(qasm string) (*Circuit, error) {
	c := &Circuit{}

	// Classical register map for resolving classical bit references
	cregMap := make(map[string]int)
	cregOffset := 0

	resolveCBit := func(regName, bitIdx string) int {
		startBit, ok := cregMap[regName]
		if !ok {
			return 0
		}
		if bitIdx != "" {
			offset, _ := strconv.Atoi(bitIdx)
			return startBit + offset
		}
		return startBit
	}

	for lineNum, raw := range strings.Split(qasm, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if strings.HasPrefix(line, "OPENQASM") || strings.HasPrefix(line, "include") {
			continue
		}
		if strings.HasPrefix(line, "qreg") {
			if m := qregRegex.FindStringSubmatch(line); len(m) > 2 {
				n, _ := strconv.Atoi(m[2])
				c.NumQubits += n
			}
			continue
		}
		if strings.HasPrefix(line, "creg") {
			if m := cregRegex.FindStringSubmatch(line); len(m) > 2 {
				size, _ := strconv.Atoi(m[2])
				cregMap[m[1]] = cregOffset
				cregOffset += size
				c.NumClbits = cregOffset
			}
			continue
		}

		var cond *Condition
		if m := ifRegex.FindStringSubmatch(line); m != nil {
			val, _ := strconv.Atoi(m[3])
			cond = &Condition{Clbit: resolveCBit(m[1], m[2]), Value: val}
			line = strings.TrimSpace(m[4])
		}

		op, err := parseStatement(line, resolveCBit)
		if err != nil {
			return nil, &qerr.ValidationError{Detail: fmt.Sprintf("line %d: %v", lineNum+1, err)}
		}
		if op == nil {
			continue
		}
		op.Cond = cond
		c.Append(*op)
	}

	return c, nil
}

// parseStatement parses one QASM gate/measure/reset/barrier statement.
func parseStatement(line string, resolveCBit func(string, string) int) (*Operation, error) {
	if m := measureRegex.FindStringSubmatch(line); m != nil {
		q, _ := strconv.Atoi(m[1])
		return &Operation{Name: "measure", Qubits: []int{q}, Clbits: []int{resolveCBit(m[2], m[3])}}, nil
	}
	if m := resetRegex.FindStringSubmatch(line); m != nil {
		q, _ := strconv.Atoi(m[1])
		return &Operation{Name: "reset", Qubits: []int{q}}, nil
	}
	if m := barrierRegex.FindStringSubmatch(line); m != nil {
		var qubits []int
		for _, ref := range qubitRefRe.FindAllStringSubmatch(m[1], -1) {
			q, _ := strconv.Atoi(ref[1])
			qubits = append(qubits, q)
		}
		return &Operation{Name: "barrier", Qubits: qubits}, nil
	}
	if m := gateRegex.FindStringSubmatch(line); m != nil {
		name := strings.ToLower(m[1])
		var params []Param
		if m[2] != "" {
			for _, tok := range strings.Split(m[2], ",") {
				p, ok := ParseParam(tok)
				if !ok {
					return nil, fmt.Errorf("bad parameter %q", strings.TrimSpace(tok))
				}
				params = append(params, p)
			}
		}
		var qubits []int
		for _, idx := range m[3:6] {
			if idx == "" {
				continue
			}
			q, _ := strconv.Atoi(idx)
			qubits = append(qubits, q)
		}
		return &Operation{Name: name, Qubits: qubits, Params: params}, nil
	}
	return nil, fmt.Errorf("unrecognized statement %q", line)
}
