package presentation_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/seitsubo413/XQsim-library/internal/presentation"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

func TestSummary(t *testing.T) {
	res := &domain.TraceResult{
		Meta: domain.Meta{
			Config:            "example_cmos",
			BlockType:         "Standard",
			CodeDistance:      5,
			PatchGrid:         domain.GridDims{Rows: 2, Cols: 3},
			NumPatches:        6,
			TotalCycles:       123,
			TerminationReason: domain.TermMaxCycles,
			ForcedTerminations: []string{"max_cycles"},
		},
		Compiled: domain.CompiledInfo{JobName: "job_q3"},
		ExecutionTrace: domain.ExecutionTrace{
			Summary: domain.TraceSummary{TotalGates: 3, PPRCount: 1, SQMCount: 1, PauliFrameCount: 1, AllGatesTraced: false},
		},
	}

	out := presentation.Summary(res)
	assert.Contains(t, out, "job_q3")
	assert.Contains(t, out, "max_cycles after 123 cycles")
	assert.Contains(t, out, "not all gates were traced")
	assert.Contains(t, out, "forced by:    max_cycles")
}

func TestGrid(t *testing.T) {
	patches := []domain.PatchState{
		{PchIdx: 0, PchType: domain.PatchZTop, Merged: domain.MergedFlags{Reg: 1}},
		{PchIdx: 1, Row: 0, Col: 1, PchType: domain.PatchData},
		{PchIdx: 2, Row: 1, Col: 0, PchType: domain.PatchIdle},
		{PchIdx: 3, Row: 1, Col: 1, PchType: domain.PatchMagic},
	}

	out := presentation.Grid(patches, 2, 2)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "zt*")
	assert.Contains(t, lines[1], "m")

	assert.Empty(t, presentation.Grid(patches, 3, 2), "dimension mismatch renders nothing")
}

func TestEvents(t *testing.T) {
	out := presentation.Events([]domain.PatchEvent{
		{Seq: 0, Cycle: 10, QISAIdx: 2, Inst: domain.InstMergeInfo,
			PatchDelta: []domain.PatchState{{}, {}}},
	})
	assert.Equal(t, "#0 cycle 10 qisa 2 MERGE_INFO (2 patches)\n", out)
}
