package passes

import (
	"qpiler/dag"
	"qpiler/pipeline"
	"qpiler/route"
)

func routeOptions(ctx *pipeline.Context) route.Options {
	return route.Options{
		Effort: ctx.Opts.Effort,
		Seed:   ctx.Opts.Seed,
	}
}

// ChooseLayout selects the initial virtual-to-physical placement and
// publishes it. Effort 0 takes the trivial placement; higher efforts
// search with seeded routing trials.
type ChooseLayout struct{}

func (ChooseLayout) Name() string { return "choose-layout" }

func (ChooseLayout) Analyze(ctx *pipeline.Context, g *dag.DAG) error {
	l, err := route.FindLayout(g.ToCircuit(), ctx.Target, routeOptions(ctx))
	if err != nil {
		return err
	}
	ctx.Layout = l
	ctx.Props[PropLayoutInit] = l.Clone()
	return nil
}

// SwapRouting rewrites the graph over physical qubits, inserting
// swaps from the layout chosen earlier, and leaves the final layout
// on the context.
type SwapRouting struct{}

func (SwapRouting) Name() string { return "swap-routing" }

func (SwapRouting) Transform(ctx *pipeline.Context, g *dag.DAG) (bool, error) {
	c := g.ToCircuit()
	init := ctx.Layout
	if init == nil {
		var err error
		if init, err = route.Trivial(c.NumQubits, ctx.Target.NumQubits); err != nil {
			return false, err
		}
	}
	res, err := route.RouteFrom(c, ctx.Target, init, routeOptions(ctx))
	if err != nil {
		return false, err
	}
	routed, err := dag.FromCircuit(res.Circuit)
	if err != nil {
		return false, err
	}
	*g = *routed
	ctx.Layout = res.Final
	return true, nil
}
