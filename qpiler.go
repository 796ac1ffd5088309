// Package qpiler rewrites logical quantum circuits into the native
// gate set and coupling constraints of a hardware target.
package qpiler

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"qpiler/circuit"
	"qpiler/dag"
	"qpiler/passes"
	"qpiler/pipeline"
	"qpiler/route"
	"qpiler/target"
)

// Options configures one transpilation.
type Options struct {
	// Effort selects layout and routing quality, 0 (fast, trivial
	// placement) through 3 (widest search, calibration-aware).
	Effort int

	// Seed drives every randomized choice. Negative draws a seed from
	// the clock; equal non-negative seeds give identical output.
	Seed int64

	// ApproximationDegree in (0, 1]; 1 keeps every rewrite exact.
	ApproximationDegree float64

	// Deadline bounds the whole run; zero means unbounded.
	Deadline time.Duration

	Callback pipeline.Callback
	Logger   *zap.Logger
}

// Result is a finished transpilation: the output circuit over
// physical qubits, the layouts bounding it, and the analysis
// properties of the final program.
type Result struct {
	Circuit       *circuit.Circuit
	InitialLayout *route.Layout
	FinalLayout   *route.Layout
	Properties    pipeline.PropertySet
}

// DefaultStages assembles the standard six-stage pipeline.
func DefaultStages() []pipeline.Stage {
	return []pipeline.Stage{
		{Name: "init", Passes: []pipeline.Pass{
			passes.ValidateCircuit{},
			passes.Unroll3q{},
			passes.GateCountAnalysis{},
		}},
		{Name: "layout", Passes: []pipeline.Pass{
			passes.ChooseLayout{},
		}},
		{Name: "routing", Passes: []pipeline.Pass{
			passes.SwapRouting{},
			passes.ValidateRouted{},
		}},
		{Name: "translation", Passes: []pipeline.Pass{
			passes.BasisTranslation{},
			passes.GateDirection{},
			passes.BasisTranslation{},
			passes.ValidateBasis{},
		}},
		{Name: "optimization", Loop: true, Passes: []pipeline.Pass{
			passes.CommutativeCancellation{},
			passes.Fuse1qRuns{},
			passes.Resynthesize2q{},
			passes.GateDirection{},
			passes.BasisTranslation{},
		}},
		{Name: "scheduling", Passes: []pipeline.Pass{
			passes.ValidateBasis{},
			passes.ValidateRouted{},
			passes.ASAPSchedule{},
			passes.GateCountAnalysis{},
			passes.LayoutAnalysis{},
		}},
	}
}

// Transpile compiles one circuit for one target.
func Transpile(ctx context.Context, c *circuit.Circuit, tgt *target.Target, opts Options) (*Result, error) {
	seed := opts.Seed
	if seed < 0 {
		seed = time.Now().UnixNano()
	}

	g, err := dag.FromCircuit(c)
	if err != nil {
		return nil, err
	}

	m := pipeline.NewManager(pipeline.Options{
		Effort:              opts.Effort,
		Seed:                seed,
		ApproximationDegree: opts.ApproximationDegree,
		Deadline:            opts.Deadline,
		Callback:            opts.Callback,
		Logger:              opts.Logger,
	}, DefaultStages()...)

	props, err := m.Run(ctx, g, tgt)
	if err != nil {
		return nil, err
	}

	res := &Result{Circuit: g.ToCircuit(), Properties: props}
	if l, ok := props[passes.PropLayoutInit].(*route.Layout); ok {
		res.InitialLayout = l
	}
	if l, ok := props[passes.PropLayoutFinal].(*route.Layout); ok {
		res.FinalLayout = l
	}
	return res, nil
}

// TranspileAll compiles a batch concurrently, one derived seed per
// circuit so batch output is reproducible under a fixed seed. The
// first failure cancels the rest.
func TranspileAll(ctx context.Context, circs []*circuit.Circuit, tgt *target.Target, opts Options) ([]*Result, error) {
	base := opts.Seed
	if base < 0 {
		base = time.Now().UnixNano()
	}

	results := make([]*Result, len(circs))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, c := range circs {
		i, c := i, c
		o := opts
		o.Seed = base + int64(i)*1000003
		eg.Go(func() error {
			r, err := Transpile(ctx, c, tgt, o)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
