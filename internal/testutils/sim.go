// Package testutils provides scripted stand-ins for the external simulator
// and compiler collaborators, so the core can be exercised cycle-by-cycle
// without the real toolchain.
package testutils

import (
	"context"
	"testing"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
)

// UnitScript drives one fake unit's observable signals as a function of the
// cycle counter.
type UnitScript struct {
	// DoneFrom is the cycle from which the done latch reads true.
	DoneFrom uint64
	// NeverDone forces the latch to stay false, modelling the known-defect
	// units whose latch never settles.
	NeverDone bool
	// FlapFalseAt lists cycles on which the latch momentarily reads false
	// even after DoneFrom.
	FlapFalseAt []uint64
	// ReadyFrom is the cycle from which State() reads "ready"; before it the
	// unit reports "busy". Zero means the unit has no FSM.
	ReadyFrom uint64
}

type unitView struct {
	script *UnitScript
	sim    *ScriptedSim
}

func (v unitView) Done() bool {
	c := v.sim.cycle
	if v.script.NeverDone {
		return false
	}
	for _, f := range v.script.FlapFalseAt {
		if f == c {
			return false
		}
	}
	return c >= v.script.DoneFrom
}

func (v unitView) State() string {
	if v.script.ReadyFrom == 0 {
		return ""
	}
	if v.sim.cycle >= v.script.ReadyFrom {
		return "ready"
	}
	return "busy"
}

// CycleAction is what happens on the step into a given cycle.
type CycleAction struct {
	Retire *ports.Retirement
	Mutate func(*domain.PatchGrid)
	Panic  string
	Err    error
}

// ScriptedSim implements ports.Simulator from a per-cycle script.
type ScriptedSim struct {
	cycle   uint64
	grid    *domain.PatchGrid
	order   []string
	units   map[string]*UnitScript
	script  map[uint64]CycleAction
	lastRet *ports.Retirement
}

// NewScriptedSim builds a simulator over the given grid. Units default to
// done-from-cycle-zero with no FSM.
func NewScriptedSim(grid *domain.PatchGrid, unitNames ...string) *ScriptedSim {
	s := &ScriptedSim{
		grid:   grid,
		units:  make(map[string]*UnitScript),
		script: make(map[uint64]CycleAction),
	}
	for _, n := range unitNames {
		s.order = append(s.order, n)
		s.units[n] = &UnitScript{}
	}
	return s
}

// ScriptUnit replaces the script for a named unit.
func (s *ScriptedSim) ScriptUnit(name string, script UnitScript) {
	if _, ok := s.units[name]; !ok {
		s.order = append(s.order, name)
	}
	s.units[name] = &script
}

// At registers the action performed when stepping into the given cycle.
func (s *ScriptedSim) At(cycle uint64, action CycleAction) {
	s.script[cycle] = action
}

func (s *ScriptedSim) Step() error {
	s.cycle++
	s.lastRet = nil
	act, ok := s.script[s.cycle]
	if !ok {
		return nil
	}
	if act.Err != nil {
		return act.Err
	}
	if act.Panic != "" {
		panic(act.Panic)
	}
	s.lastRet = act.Retire
	if act.Mutate != nil {
		act.Mutate(s.grid)
	}
	return nil
}

func (s *ScriptedSim) Cycle() uint64 { return s.cycle }

func (s *ScriptedSim) UnitNames() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *ScriptedSim) Unit(name string) (ports.UnitSnapshot, bool) {
	u, ok := s.units[name]
	if !ok {
		return nil, false
	}
	return unitView{script: u, sim: s}, true
}

func (s *ScriptedSim) Grid() *domain.PatchGrid { return s.grid }

func (s *ScriptedSim) Retired() (ports.Retirement, bool) {
	if s.lastRet == nil {
		return ports.Retirement{}, false
	}
	return *s.lastRet, true
}

var _ ports.Simulator = (*ScriptedSim)(nil)

// IdleGrid builds a rows x cols grid of idle patches.
func IdleGrid(t *testing.T, rows, cols int) *domain.PatchGrid {
	t.Helper()
	patches := make([]domain.PatchState, rows*cols)
	for i := range patches {
		patches[i] = domain.PatchState{
			PchIdx:  i,
			Row:     i / cols,
			Col:     i % cols,
			PchType: domain.PatchIdle,
		}
	}
	g, err := domain.NewPatchGrid(rows, cols, patches)
	if err != nil {
		t.Fatalf("IdleGrid: %v", err)
	}
	return g
}

// SetMerged returns a grid mutation flipping the reg merge latch on the
// given patch indices.
func SetMerged(val int, indices ...int) func(*domain.PatchGrid) {
	return func(g *domain.PatchGrid) {
		for _, i := range indices {
			g.Patches[i].Merged.Reg = val
		}
	}
}

// FakeCompiler returns canned artifacts, optionally writing a marker file
// into the workdir so cleanup can be asserted.
type FakeCompiler struct {
	Artifacts *ports.Artifacts
	Err       error
	// Block, when non-nil, is closed by the test to let Compile return;
	// used to drive deadline expiry during compilation.
	Block <-chan struct{}
}

func (c *FakeCompiler) Compile(ctx context.Context, qasm, workdir string) (*ports.Artifacts, error) {
	if c.Block != nil {
		select {
		case <-c.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if c.Err != nil {
		return nil, c.Err
	}
	return c.Artifacts, nil
}

// FakeFactory hands out a prebuilt simulator.
type FakeFactory struct {
	Sim ports.Simulator
	Err error
}

func (f *FakeFactory) Create(ctx context.Context, art *ports.Artifacts, configName string) (ports.Simulator, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Sim, nil
}
