package correlate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitsubo413/XQsim-library/pkg/correlate"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/trace"
)

func TestCorrelate_PPMBinding(t *testing.T) {
	gates := []domain.CompiledGate{
		{GateIdx: 0, Name: "cx", Qubits: []int{0, 1}},
	}
	ops := []domain.PPROperation{
		{
			OpIdx: 0, Kind: domain.OpPPM,
			PauliProduct:      []string{"Z", "Z"},
			TargetQubits:      []int{0, 1},
			SourceGateIndices: []int{0},
			InstRange:         domain.InstRange{Start: 2, End: 5},
		},
	}
	retirements := []trace.InstRecord{
		{QISAIdx: 0, Inst: "LQI", Cycle: 5},
		{QISAIdx: 2, Inst: domain.InstMergeInfo, Cycle: 30},
		{QISAIdx: 5, Inst: domain.InstSplitInfo, Cycle: 80},
	}

	out, warnings := correlate.New(gates, ops).Correlate(retirements, 100)
	require.Empty(t, warnings)
	require.Len(t, out.Gates, 1)

	g := out.Gates[0]
	assert.Equal(t, domain.ExecPPM, g.ExecutionType)
	require.NotNil(t, g.CycleStart)
	require.NotNil(t, g.CycleEnd)
	assert.Equal(t, uint64(30), *g.CycleStart)
	assert.Equal(t, uint64(80), *g.CycleEnd)
	assert.Less(t, *g.CycleStart, *g.CycleEnd)

	assert.True(t, out.Summary.AllGatesTraced)
	assert.True(t, out.Verify(len(gates)))
}

func TestCorrelate_InOrderPairConsumption(t *testing.T) {
	// Two PPR operations whose compiled ranges both cover the first MERGE:
	// consumption order must stay strict, never reordered.
	gates := []domain.CompiledGate{
		{GateIdx: 0, Name: "t", Qubits: []int{0}},
		{GateIdx: 1, Name: "t", Qubits: []int{1}},
	}
	ops := []domain.PPROperation{
		{OpIdx: 0, Kind: domain.OpPPR, SourceGateIndices: []int{0}, InstRange: domain.InstRange{Start: 0, End: 10}},
		{OpIdx: 1, Kind: domain.OpPPR, SourceGateIndices: []int{1}, InstRange: domain.InstRange{Start: 0, End: 10}},
	}
	retirements := []trace.InstRecord{
		{QISAIdx: 1, Inst: domain.InstMergeInfo, Cycle: 10},
		{QISAIdx: 2, Inst: domain.InstSplitInfo, Cycle: 20},
		{QISAIdx: 6, Inst: domain.InstMergeInfo, Cycle: 50},
		{QISAIdx: 7, Inst: domain.InstSplitInfo, Cycle: 60},
	}

	out, warnings := correlate.New(gates, ops).Correlate(retirements, 100)
	require.Empty(t, warnings)
	require.Len(t, out.Gates, 2)

	assert.Equal(t, uint64(10), *out.Gates[0].CycleStart)
	assert.Equal(t, uint64(50), *out.Gates[1].CycleStart)
}

func TestCorrelate_ManyToOne(t *testing.T) {
	// Several Clifford gates absorbed into one tracked PPM: each gate gets
	// its own entry, all sharing the operation's cycle range.
	gates := []domain.CompiledGate{
		{GateIdx: 0, Name: "h", Qubits: []int{0}},
		{GateIdx: 1, Name: "cx", Qubits: []int{0, 1}},
	}
	ops := []domain.PPROperation{
		{OpIdx: 0, Kind: domain.OpPPM, SourceGateIndices: []int{0, 1}, InstRange: domain.InstRange{Start: 0, End: 4}},
	}
	retirements := []trace.InstRecord{
		{QISAIdx: 1, Inst: domain.InstMergeInfo, Cycle: 15},
		{QISAIdx: 3, Inst: domain.InstSplitInfo, Cycle: 35},
	}

	out, _ := correlate.New(gates, ops).Correlate(retirements, 50)
	require.Len(t, out.Gates, 2)
	assert.Equal(t, *out.Gates[0].CycleStart, *out.Gates[1].CycleStart)
	assert.Equal(t, *out.Gates[0].OpIdx, *out.Gates[1].OpIdx)
	assert.Equal(t, 2, out.Summary.PPMCount)
}

func TestCorrelate_SQMWindow(t *testing.T) {
	gates := []domain.CompiledGate{
		{GateIdx: 0, Name: "measure", Qubits: []int{0}},
	}
	ops := []domain.PPROperation{
		{
			OpIdx: 0, Kind: domain.OpSQM,
			PauliProduct:      []string{"Z"},
			SourceGateIndices: []int{0},
			InstRange:         domain.InstRange{Start: 5, End: 6},
		},
	}
	retirements := []trace.InstRecord{
		{QISAIdx: 4, Inst: "LQM_Z", Cycle: 40},
		{QISAIdx: 7, Inst: "LQI", Cycle: 90},
	}

	out, warnings := correlate.New(gates, ops).Correlate(retirements, 200)
	require.Empty(t, warnings)
	require.Len(t, out.Gates, 1)

	g := out.Gates[0]
	assert.Equal(t, domain.ExecSQM, g.ExecutionType)
	assert.Equal(t, "Z", g.Basis)
	assert.Equal(t, uint64(40), *g.CycleAfter)
	assert.Equal(t, uint64(90), *g.CycleBefore)

	t.Run("Clamps To Run Bounds", func(t *testing.T) {
		out, _ := correlate.New(gates, ops).Correlate(nil, 200)
		require.Len(t, out.Gates, 1)
		assert.Equal(t, uint64(0), *out.Gates[0].CycleAfter)
		assert.Equal(t, uint64(200), *out.Gates[0].CycleBefore)
	})
}

func TestCorrelate_PauliFrameAndNoEffect(t *testing.T) {
	gates := []domain.CompiledGate{
		{GateIdx: 0, Name: "h", Qubits: []int{0}},
		{GateIdx: 1, Name: "cx", Qubits: []int{0, 1}},
		{GateIdx: 2, Name: "barrier", Qubits: []int{0}},
	}

	out, warnings := correlate.New(gates, nil).Correlate(nil, 10)
	require.Empty(t, warnings)
	require.Len(t, out.Gates, 3)

	h := out.Gates[0]
	assert.Equal(t, domain.ExecPauliFrame, h.ExecutionType)
	require.Len(t, h.Absorptions, 1)
	assert.Equal(t, domain.EffectTransformPauli, h.Absorptions[0].Effect)
	assert.Nil(t, h.CycleStart, "frame absorption carries no cycle")

	cx := out.Gates[1]
	assert.Equal(t, domain.ExecPauliFrame, cx.ExecutionType)
	require.Len(t, cx.Absorptions, 2)
	assert.Equal(t, domain.EffectPropagatePauli, cx.Absorptions[0].Effect)

	assert.Equal(t, domain.ExecNoEffect, out.Gates[2].ExecutionType)
	assert.True(t, out.Summary.AllGatesTraced)
}

func TestCorrelate_UnboundOperationIsWarningNotSilence(t *testing.T) {
	gates := []domain.CompiledGate{
		{GateIdx: 0, Name: "t", Qubits: []int{0}},
	}
	ops := []domain.PPROperation{
		{OpIdx: 0, Kind: domain.OpPPR, SourceGateIndices: []int{0}, InstRange: domain.InstRange{Start: 0, End: 3}},
	}

	// No MERGE/SPLIT ever retired.
	out, warnings := correlate.New(gates, ops).Correlate(nil, 10)

	assert.NotEmpty(t, warnings)
	assert.Empty(t, out.Gates)
	assert.False(t, out.Summary.AllGatesTraced)
	assert.Equal(t, 1, out.Summary.TotalGates)
	// The flag must agree with the counts.
	assert.True(t, out.Verify(1))
}
