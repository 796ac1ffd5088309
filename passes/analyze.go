// Package passes holds the concrete pipeline passes: validation,
// layout and routing wrappers, basis translation, the optimization
// rewrites and scheduling.
package passes

import (
	"qpiler/dag"
	"qpiler/pipeline"
)

// Property set keys written by the analysis passes.
const (
	PropCountOps    = "count_ops"
	PropDepth       = "depth"
	PropSize        = "size"
	PropTwoQubitOps = "two_qubit_ops"
	PropLayoutInit  = "layout_initial"
	PropLayoutFinal = "layout_final"
	PropSchedule    = "schedule"
)

// GateCountAnalysis records per-name counts, total size, depth and
// two-qubit operation count.
type GateCountAnalysis struct{}

func (GateCountAnalysis) Name() string { return "gate-count-analysis" }

func (GateCountAnalysis) Analyze(ctx *pipeline.Context, g *dag.DAG) error {
	c := g.ToCircuit()
	ctx.Props[PropCountOps] = c.CountOps()
	ctx.Props[PropSize] = len(c.Ops)
	ctx.Props[PropDepth] = c.Depth()
	ctx.Props[PropTwoQubitOps] = c.TwoQubitOps()
	return nil
}

// LayoutAnalysis publishes the routing pass's layouts into the
// property set once they exist.
type LayoutAnalysis struct{}

func (LayoutAnalysis) Name() string { return "layout-analysis" }

func (LayoutAnalysis) Analyze(ctx *pipeline.Context, _ *dag.DAG) error {
	if ctx.Layout != nil {
		ctx.Props[PropLayoutFinal] = ctx.Layout.Clone()
	}
	return nil
}
