// Package trace turns the stream of per-cycle grid observations into the
// initial snapshot plus the ordered list of minimal patch events.
package trace

import (
	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
)

// InstRecord is one accepted instruction with the cycle it was accepted on.
// The assembler keeps the full retirement log because the correlator needs
// instruction/cycle pairings beyond the event-class mnemonics.
type InstRecord struct {
	QISAIdx int    `json:"qisa_idx"`
	Inst    string `json:"inst"`
	Cycle   uint64 `json:"cycle"`
}

// Assembler implements the governor's per-cycle observer. The first
// observation becomes the initial snapshot; afterwards, a patch event is
// emitted whenever an event-class instruction is accepted and the grid
// actually changed since the last emitted snapshot.
type Assembler struct {
	initial     []domain.PatchState
	prev        *domain.PatchGrid
	events      []domain.PatchEvent
	retirements []InstRecord
}

// NewAssembler returns an empty assembler for one run.
func NewAssembler() *Assembler {
	return &Assembler{}
}

// Observe consumes one cycle's observation. It never mutates the grid it is
// handed; anything retained is cloned first.
func (a *Assembler) Observe(cycle uint64, ret *ports.Retirement, grid *domain.PatchGrid) {
	if a.prev == nil {
		a.prev = grid.Clone()
		a.initial = make([]domain.PatchState, len(grid.Patches))
		copy(a.initial, grid.Patches)
		return
	}

	if ret == nil {
		return
	}
	a.retirements = append(a.retirements, InstRecord{QISAIdx: ret.QISAIdx, Inst: ret.Inst, Cycle: cycle})

	if !domain.IsEventInst(ret.Inst) {
		return
	}

	// The reference snapshot only advances when we actually look, so changes
	// accumulated across non-event cycles surface in the next event's delta.
	delta := domain.Diff(a.prev, grid)
	a.prev = grid.Clone()
	if len(delta) == 0 {
		return
	}

	a.events = append(a.events, domain.PatchEvent{
		Seq:        len(a.events),
		Cycle:      cycle,
		QISAIdx:    ret.QISAIdx,
		Inst:       ret.Inst,
		PatchDelta: delta,
	})
}

// Initial returns the first observed snapshot.
func (a *Assembler) Initial() []domain.PatchState { return a.initial }

// Events returns the ordered event list.
func (a *Assembler) Events() []domain.PatchEvent { return a.events }

// Retirements returns the full accepted-instruction log in cycle order.
func (a *Assembler) Retirements() []InstRecord { return a.retirements }

// InitialGrid rebuilds the initial snapshot as a grid, for replay checks.
func (a *Assembler) InitialGrid(rows, cols int) (*domain.PatchGrid, error) {
	patches := make([]domain.PatchState, len(a.initial))
	copy(patches, a.initial)
	return domain.NewPatchGrid(rows, cols, patches)
}
