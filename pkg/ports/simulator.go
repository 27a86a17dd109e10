package ports

import (
	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

// UnitSnapshot is a read-only view of one functional unit's state at the
// current cycle. It is deliberately opaque: the governor's predicates decide
// what "done" means per unit, the snapshot only exposes the raw signals.
type UnitSnapshot interface {
	// Done returns the unit's own completion latch. Empirically unreliable
	// for some units and instruction mixes; never trust a single reading.
	Done() bool

	// State returns the unit's named FSM state ("ready", "busy", ...), or ""
	// when the unit has no explicit state machine.
	State() string
}

// Retirement reports the instruction accepted by the patch information unit
// on the cycle just stepped, if any.
type Retirement struct {
	// QISAIdx is the acceptance-ordered index into the instruction stream.
	QISAIdx int `json:"qisa_idx"`
	// Inst is the decoded mnemonic.
	Inst string `json:"inst"`
}

// Simulator is the cycle-stepping handle onto the external simulator. All
// methods are observation-only except Step; the core never mutates simulator
// internals.
type Simulator interface {
	// Step advances exactly one cycle. An error (or a panic, which the
	// governor intercepts) signals an unrecoverable fault.
	Step() error

	// Cycle is the current cycle counter.
	Cycle() uint64

	// UnitNames lists the functional units in a stable order.
	UnitNames() []string

	// Unit returns the snapshot for a named unit.
	Unit(name string) (UnitSnapshot, bool)

	// Grid returns the current patch grid. The returned value may be reused
	// between cycles; observers must clone what they keep.
	Grid() *domain.PatchGrid

	// Retired returns the instruction accepted on the last stepped cycle.
	Retired() (Retirement, bool)
}
