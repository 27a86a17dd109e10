package domain

import "fmt"

// PatchType is the surface-code role of a patch cell.
type PatchType string

const (
	PatchZTop        PatchType = "zt"
	PatchZBottom     PatchType = "zb"
	PatchMagicTop    PatchType = "mt"
	PatchMagicBottom PatchType = "mb"
	PatchMagic       PatchType = "m"
	PatchData        PatchType = "x"
	PatchAncillaWE   PatchType = "awe"
	PatchIdle        PatchType = "i"
)

// MergedFlags mirrors the simulator's register and memory merge latches.
type MergedFlags struct {
	Reg int `json:"reg"`
	Mem int `json:"mem"`
}

// FaceBoundary holds the four face boundary conditions.
// The simulator unpacks faces in (w, n, e, s) order; field order here follows it.
type FaceBoundary struct {
	W string `json:"w"`
	N string `json:"n"`
	E string `json:"e"`
	S string `json:"s"`
}

// CornerBoundary holds the four corner boundary conditions, in (nw, ne, sw, se) order.
type CornerBoundary struct {
	NW string `json:"nw"`
	NE string `json:"ne"`
	SW string `json:"sw"`
	SE string `json:"se"`
}

// PatchState is the full observable state of one patch. It is a value type:
// two observations of the same patch compare equal iff every field matches,
// which is exactly the tuple the differ keys on.
type PatchState struct {
	PchIdx   int            `json:"pchidx"`
	Row      int            `json:"row"`
	Col      int            `json:"col"`
	PchType  PatchType      `json:"pchtype"`
	Merged   MergedFlags    `json:"merged"`
	FaceBD   FaceBoundary   `json:"facebd"`
	CornerBD CornerBoundary `json:"cornerbd"`
}

// PatchGrid is one observation of the whole lattice. Patches are indexed by
// pchidx = row*cols + col and that index is stable for the life of a run.
type PatchGrid struct {
	Rows    int          `json:"rows"`
	Cols    int          `json:"cols"`
	Patches []PatchState `json:"patches"`
}

// NewPatchGrid validates dimensional consistency and returns the grid.
func NewPatchGrid(rows, cols int, patches []PatchState) (*PatchGrid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d", rows, cols)
	}
	if len(patches) != rows*cols {
		return nil, fmt.Errorf("grid %dx%d expects %d patches, got %d", rows, cols, rows*cols, len(patches))
	}
	for i, p := range patches {
		if p.PchIdx != i {
			return nil, fmt.Errorf("patch at position %d carries pchidx %d", i, p.PchIdx)
		}
		if p.Row*cols+p.Col != i {
			return nil, fmt.Errorf("patch %d coordinates (%d,%d) do not match its index", i, p.Row, p.Col)
		}
	}
	return &PatchGrid{Rows: rows, Cols: cols, Patches: patches}, nil
}

// Clone returns a deep copy. Observations handed out by the simulator are
// reused between cycles, so anything that outlives a cycle must be cloned.
func (g *PatchGrid) Clone() *PatchGrid {
	cp := &PatchGrid{Rows: g.Rows, Cols: g.Cols, Patches: make([]PatchState, len(g.Patches))}
	copy(cp.Patches, g.Patches)
	return cp
}

// At returns the patch with the given pchidx.
func (g *PatchGrid) At(pchidx int) (PatchState, bool) {
	if pchidx < 0 || pchidx >= len(g.Patches) {
		return PatchState{}, false
	}
	return g.Patches[pchidx], true
}
