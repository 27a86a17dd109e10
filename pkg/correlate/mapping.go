package correlate

import (
	"fmt"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

// BuildMapping derives the static logical-qubit-to-patch assignment from the
// compiled block layout. Ancilla slots own their anchor patch plus the
// vertically adjacent one below it; data and padding slots own a single
// patch. Every patch belongs to at most one logical qubit; patches claimed
// twice are a layout defect and rejected outright.
func BuildMapping(layout *domain.BlockLayout) ([]domain.LogicalQubitMapping, error) {
	if layout == nil {
		return nil, fmt.Errorf("nil block layout")
	}
	if layout.Rows <= 0 || layout.Cols <= 0 {
		return nil, fmt.Errorf("invalid layout dimensions %dx%d", layout.Rows, layout.Cols)
	}

	owner := make(map[int]int) // pchidx -> lq_idx
	mappings := make([]domain.LogicalQubitMapping, 0, len(layout.Qubits))

	for _, q := range layout.Qubits {
		var indices []int
		var coords [][2]int

		anchor, err := patchIndex(layout, q.Row, q.Col)
		if err != nil {
			return nil, fmt.Errorf("lq %d: %w", q.LQIdx, err)
		}
		indices = append(indices, anchor)
		coords = append(coords, [2]int{q.Row, q.Col})

		if q.Role.IsAncilla() {
			below, err := patchIndex(layout, q.Row+1, q.Col)
			if err != nil {
				return nil, fmt.Errorf("lq %d: ancilla bottom patch: %w", q.LQIdx, err)
			}
			indices = append(indices, below)
			coords = append(coords, [2]int{q.Row + 1, q.Col})
		}

		for _, idx := range indices {
			if prev, taken := owner[idx]; taken {
				return nil, fmt.Errorf("patch %d claimed by both lq %d and lq %d", idx, prev, q.LQIdx)
			}
			owner[idx] = q.LQIdx
		}

		mappings = append(mappings, domain.LogicalQubitMapping{
			LQIdx:        q.LQIdx,
			Role:         q.Role,
			QubitIndex:   q.QubitIndex,
			PatchIndices: indices,
			PatchCoords:  coords,
			PchType:      q.PchType,
		})
	}

	return mappings, nil
}

func patchIndex(layout *domain.BlockLayout, row, col int) (int, error) {
	if row < 0 || row >= layout.Rows || col < 0 || col >= layout.Cols {
		return 0, fmt.Errorf("patch coordinates (%d,%d) outside %dx%d grid", row, col, layout.Rows, layout.Cols)
	}
	return row*layout.Cols + col, nil
}
