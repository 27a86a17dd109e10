package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitsubo413/XQsim-library/internal/runtime"
	"github.com/seitsubo413/XQsim-library/internal/testutils"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
)

func newSim(t *testing.T) *testutils.ScriptedSim {
	return testutils.NewScriptedSim(testutils.IdleGrid(t, 2, 2), "qif", "lmu")
}

func TestGovernor_NormalTerminationWaitsForStability(t *testing.T) {
	sim := newSim(t)
	sim.ScriptUnit("qif", testutils.UnitScript{DoneFrom: 5})
	sim.ScriptUnit("lmu", testutils.UnitScript{DoneFrom: 5})

	preds := runtime.NewPredicateTable()
	preds.Register("qif", runtime.DoneLatch)
	preds.Register("lmu", runtime.DoneLatch)

	gov := runtime.NewGovernor(sim, preds, runtime.Config{MaxCycles: 100, StabilityWindow: 3})
	out, err := gov.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.TermNormal, out.Reason)
	// Done first holds at cycle 5; the third consecutive reading is cycle 7.
	assert.Equal(t, uint64(7), out.Cycles)
	assert.Empty(t, out.ForcedTerminations)
	assert.EqualValues(t, 4, out.StabilityFailures["qif"], "cycles 1-4 read false")
}

func TestGovernor_SingleCycleDoneIsNoise(t *testing.T) {
	sim := newSim(t)
	// The latch settles at cycle 5 but flaps false every few cycles, so the
	// conjunction never holds for 4 consecutive readings.
	sim.ScriptUnit("qif", testutils.UnitScript{DoneFrom: 5, FlapFalseAt: []uint64{7, 10, 13, 16, 19, 22, 25, 28}})
	sim.ScriptUnit("lmu", testutils.UnitScript{DoneFrom: 1})

	preds := runtime.NewPredicateTable()
	preds.Register("qif", runtime.DoneLatch)
	preds.Register("lmu", runtime.DoneLatch)

	gov := runtime.NewGovernor(sim, preds, runtime.Config{MaxCycles: 30, StabilityWindow: 4})
	out, err := gov.Run(context.Background())
	require.NoError(t, err)

	assert.NotEqual(t, domain.TermNormal, out.Reason)
	assert.Equal(t, domain.TermMaxCycles, out.Reason)
}

func TestGovernor_MaxCyclesFlushesCounters(t *testing.T) {
	sim := newSim(t)
	sim.ScriptUnit("qif", testutils.UnitScript{DoneFrom: 1})
	sim.ScriptUnit("lmu", testutils.UnitScript{NeverDone: true})

	preds := runtime.NewPredicateTable()
	preds.Register("qif", runtime.DoneLatch)
	preds.Register("lmu", runtime.DoneLatch)

	gov := runtime.NewGovernor(sim, preds, runtime.Config{MaxCycles: 50, StabilityWindow: 5})
	out, err := gov.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, domain.TermMaxCycles, out.Reason)
	assert.Equal(t, uint64(50), out.Cycles)
	assert.Contains(t, out.ForcedTerminations, "max_cycles")
	assert.Contains(t, out.FailingUnits, "lmu")
	assert.NotContains(t, out.FailingUnits, "qif")
	assert.EqualValues(t, 50, out.StabilityFailures["lmu"])
}

func TestGovernor_DeadlineClassifiedAsTimeout(t *testing.T) {
	sim := newSim(t)
	sim.ScriptUnit("lmu", testutils.UnitScript{NeverDone: true})

	preds := runtime.NewPredicateTable()
	preds.Register("lmu", runtime.DoneLatch)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gov := runtime.NewGovernor(sim, preds, runtime.Config{MaxCycles: 100, StabilityWindow: 2})
	out, err := gov.Run(ctx)
	require.NoError(t, err)

	assert.Equal(t, domain.TermTimeout, out.Reason)
	assert.Contains(t, out.ForcedTerminations, "wall_clock")
}

func TestGovernor_FaultIsStructured(t *testing.T) {
	t.Run("Panic Intercepted", func(t *testing.T) {
		sim := newSim(t)
		sim.At(3, testutils.CycleAction{Panic: "invalid pchpp in PIU.dyndec"})
		sim.ScriptUnit("lmu", testutils.UnitScript{NeverDone: true})

		preds := runtime.NewPredicateTable()
		preds.Register("lmu", runtime.DoneLatch)

		gov := runtime.NewGovernor(sim, preds, runtime.Config{MaxCycles: 100, StabilityWindow: 2})
		out, err := gov.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, domain.TermFault, out.Reason)
		require.NotNil(t, out.Fault)
		assert.Contains(t, out.Fault.Error(), "invalid pchpp")
	})

	t.Run("Step Error", func(t *testing.T) {
		sim := newSim(t)
		sim.At(2, testutils.CycleAction{Err: errors.New("bus conflict")})

		preds := runtime.NewPredicateTable()
		preds.Register("qif", runtime.DoneLatch)

		gov := runtime.NewGovernor(sim, preds, runtime.Config{MaxCycles: 100, StabilityWindow: 2})
		out, err := gov.Run(context.Background())
		require.NoError(t, err)

		assert.Equal(t, domain.TermFault, out.Reason)
		require.NotNil(t, out.Fault)
	})
}

type recordingObserver struct {
	cycles  []uint64
	retired []ports.Retirement
}

func (r *recordingObserver) Observe(cycle uint64, ret *ports.Retirement, grid *domain.PatchGrid) {
	r.cycles = append(r.cycles, cycle)
	if ret != nil {
		r.retired = append(r.retired, *ret)
	}
}

func TestGovernor_ObserverSeesEveryCycle(t *testing.T) {
	sim := newSim(t)
	sim.ScriptUnit("qif", testutils.UnitScript{DoneFrom: 2})
	sim.ScriptUnit("lmu", testutils.UnitScript{DoneFrom: 2})
	sim.At(1, testutils.CycleAction{Retire: &ports.Retirement{QISAIdx: 0, Inst: "LQI"}})

	preds := runtime.NewPredicateTable()
	preds.Register("qif", runtime.DoneLatch)
	preds.Register("lmu", runtime.DoneLatch)

	obs := &recordingObserver{}
	gov := runtime.NewGovernor(sim, preds, runtime.Config{MaxCycles: 100, StabilityWindow: 2},
		runtime.WithObserver(obs))
	_, err := gov.Run(context.Background())
	require.NoError(t, err)

	// Cycle 0 (initial snapshot) plus every stepped cycle.
	require.NotEmpty(t, obs.cycles)
	assert.Equal(t, uint64(0), obs.cycles[0])
	require.Len(t, obs.retired, 1)
	assert.Equal(t, "LQI", obs.retired[0].Inst)
}

func TestPredicateTable_ValidateRejectsUnknownUnit(t *testing.T) {
	sim := newSim(t)
	preds := runtime.NewPredicateTable()
	preds.Register("tcu", runtime.DoneLatch)

	gov := runtime.NewGovernor(sim, preds, runtime.Config{})
	_, err := gov.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tcu")
}

func TestPredicateTable_EvaluateReportsEveryFailingConjunct(t *testing.T) {
	sim := newSim(t)
	sim.ScriptUnit("qif", testutils.UnitScript{NeverDone: true})
	sim.ScriptUnit("lmu", testutils.UnitScript{NeverDone: true})

	preds := runtime.NewPredicateTable()
	preds.Register("qif", runtime.DoneLatch)
	preds.Register("lmu", runtime.DoneLatch)

	done, failing := preds.Evaluate(sim)
	assert.False(t, done)
	assert.Equal(t, []string{"qif", "lmu"}, failing)
}
