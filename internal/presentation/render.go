// Package presentation renders trace results for human eyes: a run summary
// and an ASCII view of the patch grid. The JSON result stays the machine
// interface; this is for the CLI and for eyeballing a run quickly.
package presentation

import (
	"fmt"
	"strings"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

// Summary formats the run-level facts of a result.
func Summary(res *domain.TraceResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "job:          %s\n", res.Compiled.JobName)
	fmt.Fprintf(&sb, "config:       %s\n", res.Meta.Config)
	fmt.Fprintf(&sb, "block:        %s d=%d (%dx%d, %d patches)\n",
		res.Meta.BlockType, res.Meta.CodeDistance,
		res.Meta.PatchGrid.Rows, res.Meta.PatchGrid.Cols, res.Meta.NumPatches)
	fmt.Fprintf(&sb, "termination:  %s after %d cycles (%.2fs)\n",
		res.Meta.TerminationReason, res.Meta.TotalCycles, res.Meta.ElapsedSeconds)
	fmt.Fprintf(&sb, "patch events: %d\n", len(res.Patch.Events))

	s := res.ExecutionTrace.Summary
	fmt.Fprintf(&sb, "gates:        %d total (ppr %d, ppm %d, sqm %d, frame %d, no-effect %d)\n",
		s.TotalGates, s.PPRCount, s.PPMCount, s.SQMCount, s.PauliFrameCount, s.NoEffectCount)
	if !s.AllGatesTraced {
		sb.WriteString("warning:      not all gates were traced\n")
	}
	for _, w := range res.Meta.Warnings {
		fmt.Fprintf(&sb, "warning:      %s\n", w)
	}
	for _, f := range res.Meta.ForcedTerminations {
		fmt.Fprintf(&sb, "forced by:    %s\n", f)
	}
	return sb.String()
}

// Grid draws a patch snapshot as rows of cells. Each cell shows the patch
// type plus a * when either merge latch is up.
func Grid(patches []domain.PatchState, rows, cols int) string {
	if rows <= 0 || cols <= 0 || len(patches) != rows*cols {
		return ""
	}

	width := 0
	for _, p := range patches {
		if n := cellWidth(p); n > width {
			width = n
		}
	}

	var sb strings.Builder
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			p := patches[r*cols+c]
			cell := string(p.PchType)
			if p.Merged.Reg != 0 || p.Merged.Mem != 0 {
				cell += "*"
			}
			fmt.Fprintf(&sb, "%-*s", width+1, cell)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Events lists the patch events one per line.
func Events(events []domain.PatchEvent) string {
	var sb strings.Builder
	for _, e := range events {
		fmt.Fprintf(&sb, "#%d cycle %d qisa %d %s (%d patches)\n",
			e.Seq, e.Cycle, e.QISAIdx, e.Inst, len(e.PatchDelta))
	}
	return sb.String()
}

func cellWidth(p domain.PatchState) int {
	n := len(p.PchType)
	if p.Merged.Reg != 0 || p.Merged.Mem != 0 {
		n++
	}
	return n
}
