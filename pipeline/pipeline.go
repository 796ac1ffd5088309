// Package pipeline runs ordered pass stages over a circuit graph,
// tracking shared analysis results, budgets and instrumentation.
package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"qpiler/dag"
	"qpiler/qerr"
	"qpiler/route"
	"qpiler/target"
)

// PropertySet is the shared blackboard analysis passes write and
// later passes read: gate counts, depth, layouts, schedules.
type PropertySet map[string]any

// Clone returns a shallow snapshot for callback consumers.
func (p PropertySet) Clone() PropertySet {
	out := make(PropertySet, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Pass is anything the manager can schedule.
type Pass interface {
	Name() string
}

// AnalysisPass inspects the graph and records findings in the
// property set. It must not mutate the graph.
type AnalysisPass interface {
	Pass
	Analyze(ctx *Context, g *dag.DAG) error
}

// TransformationPass rewrites the graph, reporting whether anything
// changed. It reads the property set but does not write it.
type TransformationPass interface {
	Pass
	Transform(ctx *Context, g *dag.DAG) (bool, error)
}

// Context is handed to every pass in one run.
type Context struct {
	Target *target.Target
	Props  PropertySet
	Opts   Options
	Log    *zap.Logger

	// Layout holds the virtual-to-physical placement once routing has
	// run. It lives outside the property set so transformation passes
	// can publish it while the property set stays analysis-owned.
	Layout *route.Layout
}

// CallbackEvent describes one completed pass.
type CallbackEvent struct {
	Stage    string
	Pass     string
	Ordinal  int
	Duration time.Duration
	Props    PropertySet
}

// Callback observes pass completion. It runs synchronously between
// passes; slow callbacks slow the pipeline.
type Callback func(ev CallbackEvent)

// Options configures one pipeline run.
type Options struct {
	// Effort selects how hard layout and routing try, 0 through 3.
	Effort int

	// Seed drives every randomized choice. Negative means derive one
	// from entropy; equal non-negative seeds give identical output.
	Seed int64

	// ApproximationDegree in (0, 1] relaxes resynthesis accuracy.
	// 1 keeps every rewrite exact.
	ApproximationDegree float64

	// Deadline bounds the whole run. Zero means unbounded. The check
	// sits between passes; an expired deadline aborts with no
	// partial output.
	Deadline time.Duration

	// MaxOptIterations caps the optimization fixed-point loop.
	MaxOptIterations int

	Callback Callback
	Logger   *zap.Logger
}

func (o Options) logger() *zap.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return zap.NewNop()
}

// Stage is an ordered pass group. A looping stage reruns until no
// transformation reports a change or the iteration cap is hit.
type Stage struct {
	Name    string
	Passes  []Pass
	Loop    bool
	MaxIter int
}

// Manager executes stages in order over one graph.
type Manager struct {
	stages []Stage
	opts   Options
}

// NewManager builds a manager over the given stages.
func NewManager(opts Options, stages ...Stage) *Manager {
	if opts.MaxOptIterations <= 0 {
		opts.MaxOptIterations = 10
	}
	if opts.ApproximationDegree <= 0 || opts.ApproximationDegree > 1 {
		opts.ApproximationDegree = 1
	}
	return &Manager{stages: stages, opts: opts}
}

// Run executes every stage over g, mutating it in place, and returns
// the final property set. On any error, including deadline expiry,
// the graph may be half-transformed and must be discarded by the
// caller.
func (m *Manager) Run(ctx context.Context, g *dag.DAG, tgt *target.Target) (PropertySet, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := m.opts.logger().With(zap.String("run_id", runID))
	pctx := &Context{Target: tgt, Props: make(PropertySet), Opts: m.opts, Log: log}

	var deadline time.Time
	if m.opts.Deadline > 0 {
		deadline = start.Add(m.opts.Deadline)
	}

	log.Info("pipeline start",
		zap.String("target", tgt.Name),
		zap.Int("effort", m.opts.Effort),
		zap.Int("ops", g.NumOps()))

	ordinal := 0
	for _, st := range m.stages {
		iters := 1
		if st.Loop {
			iters = st.MaxIter
			if iters <= 0 {
				iters = m.opts.MaxOptIterations
			}
		}
		for it := 0; it < iters; it++ {
			changed := false
			for _, p := range st.Passes {
				if err := expired(ctx, deadline); err != nil {
					runsTotal.WithLabelValues("timeout").Inc()
					return nil, &qerr.TimeoutError{Stage: st.Name, Pass: p.Name()}
				}
				t0 := time.Now()
				var err error
				switch pp := p.(type) {
				case TransformationPass:
					var ch bool
					ch, err = pp.Transform(pctx, g)
					changed = changed || ch
				case AnalysisPass:
					err = pp.Analyze(pctx, g)
				}
				dur := time.Since(t0)
				passDuration.WithLabelValues(st.Name, p.Name()).Observe(dur.Seconds())
				if err != nil {
					runsTotal.WithLabelValues("error").Inc()
					log.Warn("pass failed",
						zap.String("stage", st.Name),
						zap.String("pass", p.Name()),
						zap.Error(err))
					return nil, err
				}
				ordinal++
				log.Debug("pass complete",
					zap.String("stage", st.Name),
					zap.String("pass", p.Name()),
					zap.Duration("took", dur))
				if m.opts.Callback != nil {
					m.opts.Callback(CallbackEvent{
						Stage:    st.Name,
						Pass:     p.Name(),
						Ordinal:  ordinal,
						Duration: dur,
						Props:    pctx.Props.Clone(),
					})
				}
			}
			if !changed {
				if st.Loop {
					optIterations.Observe(float64(it + 1))
				}
				break
			}
		}
	}

	runsTotal.WithLabelValues("ok").Inc()
	log.Info("pipeline done",
		zap.Duration("took", time.Since(start)),
		zap.Int("ops", g.NumOps()))
	return pctx.Props, nil
}

func expired(ctx context.Context, deadline time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		return context.DeadlineExceeded
	}
	return nil
}
