package passes

import (
	"qpiler/circuit"
	"qpiler/dag"
	"qpiler/pipeline"
)

// PropDuration is the property key for the scheduled makespan.
const PropDuration = "total_duration"

// ScheduledOp is one program operation with its start time, in
// nanoseconds from circuit start.
type ScheduledOp struct {
	Index    int
	Op       circuit.Operation
	Start    float64
	Duration float64
}

// Fallback durations for targets without calibration data.
const (
	default1qDuration      = 35
	default2qDuration      = 300
	defaultMeasureDuration = 1000
)

// ASAPSchedule annotates the program with as-soon-as-possible start
// times: every operation begins the moment all of its wires are
// free. The schedule is advisory; the graph is not reordered.
type ASAPSchedule struct{}

func (ASAPSchedule) Name() string { return "asap-schedule" }

func (ASAPSchedule) Analyze(ctx *pipeline.Context, g *dag.DAG) error {
	c := g.ToCircuit()
	free := make(map[int]float64) // wire -> earliest free time; clbits offset
	clOff := c.NumQubits

	sched := make([]ScheduledOp, 0, len(c.Ops))
	makespan := 0.0
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

		start := 0.0
		for _, w := range wires {
			if free[w] > start {
				start = free[w]
			}
		}
		dur := opDuration(ctx, op)
		for _, w := range wires {
			free[w] = start + dur
		}
		if start+dur > makespan {
			makespan = start + dur
		}
		sched = append(sched, ScheduledOp{Index: i, Op: op, Start: start, Duration: dur})
	}

	ctx.Props[PropSchedule] = sched
	ctx.Props[PropDuration] = makespan
	return nil
}

func opDuration(ctx *pipeline.Context, op circuit.Operation) float64 {
	if p, ok := ctx.Target.Props(op.Name, op.Qubits...); ok && p.Duration > 0 {
		return p.Duration
	}
	switch {
	case op.Name == "barrier":
		return 0
	case op.Name == "measure" || op.Name == "reset":
		return defaultMeasureDuration
	case len(op.Qubits) >= 2:
		return default2qDuration
	default:
		return default1qDuration
	}
}
