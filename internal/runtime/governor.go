package runtime

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seitsubo413/XQsim-library/internal/logging"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
)

// Observer receives, for every cycle, the read-only grid snapshot and the
// instruction retirement (if any) before the governor advances further. The
// trace assembler implements this.
type Observer interface {
	Observe(cycle uint64, ret *ports.Retirement, grid *domain.PatchGrid)
}

// Config bounds one simulation run.
type Config struct {
	// MaxCycles is the hard cycle ceiling. Zero means the built-in cap.
	MaxCycles uint64

	// StabilityWindow is the number of consecutive cycles the full done
	// conjunction must hold before it is trusted. A single-cycle true
	// reading is noise, not completion.
	StabilityWindow int
}

// DefaultMaxCycles is the runaway guard used when no ceiling is configured.
const DefaultMaxCycles = 10_000_000

// DefaultStabilityWindow is the minimum consecutive-done streak accepted as
// normal termination.
const DefaultStabilityWindow = 10

// Outcome is the audit record of one run: why it ended, how far it got, and
// which conjuncts were lying along the way.
type Outcome struct {
	Reason domain.TerminationReason
	Cycles uint64

	// StabilityFailures counts, per unit, the cycles on which its conjunct
	// read false.
	StabilityFailures map[string]uint64

	// FailingUnits are the conjuncts still false at the final evaluation.
	FailingUnits []string

	// ForcedTerminations names the guard that fired when Reason is not
	// normal ("max_cycles", "wall_clock").
	ForcedTerminations []string

	// Fault is set when Reason is TermFault.
	Fault *domain.SimulationFault
}

// Governor drives one simulation run to a terminal state. It wraps the
// untouched simulator interface: completion is decided entirely out here, by
// the predicate conjunction and the stability window, so "why did the run
// end" stays auditable.
type Governor struct {
	sim    ports.Simulator
	preds  *PredicateTable
	obs    Observer
	cfg    Config
	logger *slog.Logger
}

// GovernorOption configures a Governor.
type GovernorOption func(*Governor)

// WithObserver attaches the per-cycle observer.
func WithObserver(obs Observer) GovernorOption {
	return func(g *Governor) { g.obs = obs }
}

// WithLogger sets the governor's logger.
func WithLogger(logger *slog.Logger) GovernorOption {
	return func(g *Governor) { g.logger = logger }
}

// NewGovernor creates a governor over the given simulator and predicate
// table.
func NewGovernor(sim ports.Simulator, preds *PredicateTable, cfg Config, opts ...GovernorOption) *Governor {
	if cfg.MaxCycles == 0 {
		cfg.MaxCycles = DefaultMaxCycles
	}
	if cfg.StabilityWindow <= 0 {
		cfg.StabilityWindow = DefaultStabilityWindow
	}
	g := &Governor{
		sim:    sim,
		preds:  preds,
		cfg:    cfg,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Run steps the simulator until one of the terminal conditions holds:
// stable global done, cycle ceiling, context deadline, or simulator fault.
// The outcome is always returned; buffered counters are never discarded on a
// forced termination. The error return is reserved for setup problems.
//
// Cancellation is cooperative: the context is checked once per cycle, so it
// has bounded but non-zero latency (one cycle-step).
func (g *Governor) Run(ctx context.Context) (*Outcome, error) {
	if err := g.preds.Validate(g.sim); err != nil {
		return nil, err
	}

	out := &Outcome{
		StabilityFailures: make(map[string]uint64),
	}

	// Cycle-zero observation: the assembler's initial snapshot must predate
	// the first step.
	if g.obs != nil {
		g.obs.Observe(g.sim.Cycle(), nil, g.sim.Grid())
	}

	streak := 0
	for {
		// Checkpoint 1: wall clock / cancellation.
		if err := ctx.Err(); err != nil {
			out.Reason = domain.TermTimeout
			out.Cycles = g.sim.Cycle()
			out.ForcedTerminations = append(out.ForcedTerminations, "wall_clock")
			g.logger.Warn("run forced to terminate", "guard", "wall_clock", "cycle", out.Cycles)
			return out, nil
		}

		// Checkpoint 2: cycle ceiling.
		if g.sim.Cycle() >= g.cfg.MaxCycles {
			out.Reason = domain.TermMaxCycles
			out.Cycles = g.sim.Cycle()
			out.ForcedTerminations = append(out.ForcedTerminations, "max_cycles")
			g.logger.Warn("run forced to terminate", "guard", "max_cycles", "cycle", out.Cycles)
			return out, nil
		}

		if fault := g.step(out); fault != nil {
			out.Reason = domain.TermFault
			out.Cycles = g.sim.Cycle()
			out.Fault = fault
			g.logger.Error("simulator fault", "err", fault, "cycle", out.Cycles)
			return out, nil
		}

		if g.obs != nil {
			var ret *ports.Retirement
			if r, ok := g.sim.Retired(); ok {
				ret = &r
			}
			g.obs.Observe(g.sim.Cycle(), ret, g.sim.Grid())
		}

		done, failing := g.preds.Evaluate(g.sim)
		for _, unit := range failing {
			out.StabilityFailures[unit]++
		}
		if done {
			streak++
		} else {
			streak = 0
			out.FailingUnits = failing
		}
		if done && streak >= g.cfg.StabilityWindow {
			out.Reason = domain.TermNormal
			out.Cycles = g.sim.Cycle()
			out.FailingUnits = nil
			g.logger.Debug("run completed normally", "cycle", out.Cycles, "stability_window", g.cfg.StabilityWindow)
			return out, nil
		}
	}
}

// step advances one cycle, converting both error returns and panics from the
// external simulator (including process-abort-style exits) into a structured
// fault.
func (g *Governor) step(out *Outcome) (fault *domain.SimulationFault) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			fault = &domain.SimulationFault{Cycle: g.sim.Cycle(), Cause: err}
		}
	}()

	if err := g.sim.Step(); err != nil {
		return &domain.SimulationFault{Cycle: g.sim.Cycle(), Cause: err}
	}
	return nil
}
