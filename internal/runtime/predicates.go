package runtime

import (
	"fmt"
	"sort"

	"github.com/seitsubo413/XQsim-library/pkg/ports"
)

// Predicate evaluates one unit's contribution to the global done condition
// against its opaque snapshot.
type Predicate func(ports.UnitSnapshot) bool

// DoneLatch is the plain predicate: trust the unit's own done flag.
func DoneLatch(s ports.UnitSnapshot) bool { return s.Done() }

// StateEquals builds a predicate that requires the unit's FSM to sit in a
// named state.
func StateEquals(state string) Predicate {
	return func(s ports.UnitSnapshot) bool { return s.State() == state }
}

// DoneAndReady requires both the latch and a quiescent FSM. Used for units
// whose latch is known to flap while the pipeline is still draining.
func DoneAndReady(s ports.UnitSnapshot) bool {
	return s.Done() && (s.State() == "" || s.State() == "ready")
}

// PredicateTable is the registered set of unit predicates forming the global
// done conjunction. Units are evaluated in registration order so failure
// records stay deterministic. The governor never hard-codes the unit list;
// adding a unit is a registration, not a control-flow change.
type PredicateTable struct {
	order []string
	preds map[string]Predicate
}

// NewPredicateTable returns an empty table.
func NewPredicateTable() *PredicateTable {
	return &PredicateTable{preds: make(map[string]Predicate)}
}

// Register adds or replaces the predicate for a unit.
func (t *PredicateTable) Register(unit string, p Predicate) {
	if _, exists := t.preds[unit]; !exists {
		t.order = append(t.order, unit)
	}
	t.preds[unit] = p
}

// Units returns the registered unit names in registration order.
func (t *PredicateTable) Units() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Evaluate runs the full conjunction against the simulator. It always visits
// every conjunct, returning the aggregate plus the names of the failing
// ones; early exit would hide exactly the diagnostics the stability check
// exists for.
func (t *PredicateTable) Evaluate(sim ports.Simulator) (bool, []string) {
	all := true
	var failing []string
	for _, unit := range t.order {
		snap, ok := sim.Unit(unit)
		if !ok {
			all = false
			failing = append(failing, unit)
			continue
		}
		if !t.preds[unit](snap) {
			all = false
			failing = append(failing, unit)
		}
	}
	return all, failing
}

// Validate checks the table against the simulator's advertised units, so a
// typo'd registration fails loudly at run start instead of stalling a run.
func (t *PredicateTable) Validate(sim ports.Simulator) error {
	known := make(map[string]bool)
	for _, u := range sim.UnitNames() {
		known[u] = true
	}
	var missing []string
	for _, u := range t.order {
		if !known[u] {
			missing = append(missing, u)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("predicates registered for unknown units: %v", missing)
	}
	return nil
}

// DefaultPredicates covers the control processor's functional units. The
// fetch and measurement units carry the empirically unstable latches, so
// they additionally require a quiescent FSM; the rest use their latch as-is.
func DefaultPredicates() *PredicateTable {
	t := NewPredicateTable()
	t.Register("qif", DoneAndReady)
	t.Register("qid", DoneLatch)
	t.Register("pdu", DoneLatch)
	t.Register("piu", DoneLatch)
	t.Register("psu", DoneLatch)
	t.Register("pfu", DoneLatch)
	t.Register("lmu", DoneAndReady)
	return t
}
