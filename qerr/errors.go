// Package qerr defines the error taxonomy shared by every stage of the
// transpilation pipeline.
//
// The first three kinds (validation, unsupported operation, structural)
// abort a pipeline run immediately with no partial output. A timeout is
// recoverable by the caller: retry with a larger deadline or a lower
// effort level. An infeasible mapping is defined for completeness; the
// routing stage always has a deterministic fallback and is not expected
// to produce one in practice.
package qerr

import "fmt"

// ValidationError reports malformed input: an arity mismatch or a
// reference to a wire that does not exist.
type ValidationError struct {
	Op     string // offending operation name, may be empty
	Detail string
}

func (e *ValidationError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("invalid circuit: %s", e.Detail)
	}
	return fmt.Sprintf("invalid operation %q: %s", e.Op, e.Detail)
}

// UnsupportedOperationError reports an operation with no decomposition
// path into the target's basis set.
type UnsupportedOperationError struct {
	Op    string
	Basis []string
}

func (e *UnsupportedOperationError) Error() string {
	return fmt.Sprintf("no decomposition of %q into basis %v", e.Op, e.Basis)
}

// StructuralError reports a graph mutation that would violate the DAG
// invariants. The graph is left untouched when one is returned.
type StructuralError struct {
	Detail string
}

func (e *StructuralError) Error() string {
	return "structural: " + e.Detail
}

// InfeasibleMappingError reports that the routing trial budget was
// exhausted without producing a legal mapping.
type InfeasibleMappingError struct {
	Trials int
}

func (e *InfeasibleMappingError) Error() string {
	return fmt.Sprintf("no legal qubit mapping found within %d trials", e.Trials)
}

// TimeoutError reports that the run deadline was reached. It is only
// raised between passes, never mid-pass.
type TimeoutError struct {
	Stage string
	Pass  string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("deadline reached before pass %q in stage %q", e.Pass, e.Stage)
}
