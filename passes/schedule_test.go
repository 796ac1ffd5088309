package passes

import (
	"testing"

	"github.com/stretchr/testify/require"

	"qpiler/circuit"
	"qpiler/target"
)

func TestASAPScheduleDefaults(t *testing.T) {
	c := circuit.New(2, 1)
	c.Gate("h", 0)      // 35ns
	c.Gate("cx", 0, 1)  // 300ns, waits for h
	c.Measure(1, 0)     // 1000ns, waits for cx
	g := mustDAG(t, c)

	ctx := testCtx(target.Line(2))
	require.NoError(t, ASAPSchedule{}.Analyze(ctx, g))

	sched := ctx.Props[PropSchedule].([]ScheduledOp)
	require.Len(t, sched, 3)
	require.Equal(t, 0.0, sched[0].Start)
	require.Equal(t, 35.0, sched[1].Start)
	require.Equal(t, 335.0, sched[2].Start)
	require.Equal(t, 1335.0, ctx.Props[PropDuration])
}

func TestASAPScheduleParallelWires(t *testing.T) {
	c := circuit.New(2, 0)
	c.Gate("h", 0)
	c.Gate("h", 1)
	g := mustDAG(t, c)

	ctx := testCtx(target.Line(2))
	require.NoError(t, ASAPSchedule{}.Analyze(ctx, g))

	sched := ctx.Props[PropSchedule].([]ScheduledOp)
	require.Equal(t, 0.0, sched[0].Start)
	require.Equal(t, 0.0, sched[1].Start)
	require.Equal(t, 35.0, ctx.Props[PropDuration])
}

func TestASAPScheduleCalibratedDurations(t *testing.T) {
	tgt := target.Line(2)
	tgt.SetProps("cx", []int{0, 1}, target.GateProps{Duration: 220})

	c := circuit.New(2, 0)
	c.Gate("cx", 0, 1)
	g := mustDAG(t, c)

	ctx := testCtx(tgt)
	require.NoError(t, ASAPSchedule{}.Analyze(ctx, g))
	require.Equal(t, 220.0, ctx.Props[PropDuration])
}

func TestASAPScheduleBarrierOrdersWithoutDuration(t *testing.T) {
	c := circuit.New(2, 0)
	c.Gate("h", 0)
	c.Append(circuit.Operation{Name: "barrier"})
	c.Gate("h", 1)
	g := mustDAG(t, c)

	ctx := testCtx(target.Line(2))
	require.NoError(t, ASAPSchedule{}.Analyze(ctx, g))

	sched := ctx.Props[PropSchedule].([]ScheduledOp)
	// the barrier pins the second h behind the first
	require.Equal(t, 35.0, sched[2].Start)
	require.Equal(t, 70.0, ctx.Props[PropDuration])
}
