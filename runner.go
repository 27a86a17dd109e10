package xqsim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/seitsubo413/XQsim-library/internal/runtime"
	"github.com/seitsubo413/XQsim-library/pkg/correlate"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
	"github.com/seitsubo413/XQsim-library/pkg/session"
	"github.com/seitsubo413/XQsim-library/pkg/trace"
)

// run is the per-session pipeline state. It exists so ProduceTrace stays a
// thin admission wrapper and every stage shares the same session context.
type run struct {
	service   *Service
	session   *session.Session
	qasm      string
	numQubits int
	config    string
	logger    *slog.Logger
}

// execute drives compile -> simulate -> correlate -> assemble. The deadline
// on ctx covers all stages; expiry before simulation starts is a hard
// *domain.TimeoutError, expiry during the step loop yields a partial result.
func (r *run) execute(ctx context.Context) (*domain.TraceResult, error) {
	started := time.Now()

	art, err := r.service.compiler.Compile(ctx, r.qasm, r.session.Workdir)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, &domain.TimeoutError{Phase: "compile", Cause: err}
		}
		return nil, fmt.Errorf("compilation failed: %w", err)
	}
	r.logger.Info("compilation finished",
		"job", art.JobName,
		"gates", len(art.Gates),
		"operations", len(art.Operations),
		"qisa", len(art.QISA),
	)

	mapping, err := correlate.BuildMapping(art.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to derive logical qubit mapping: %w", err)
	}

	sim, err := r.service.factory.Create(ctx, art, r.config)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, &domain.TimeoutError{Phase: "simulator setup", Cause: err}
		}
		return nil, fmt.Errorf("failed to create simulator: %w", err)
	}
	// Process-backed simulators hold a child that must be reaped.
	if closer, ok := sim.(io.Closer); ok {
		defer closer.Close()
	}

	asm := trace.NewAssembler()
	gov := runtime.NewGovernor(sim, r.service.preds,
		runtime.Config{
			MaxCycles:       r.service.maxCycles,
			StabilityWindow: r.service.stabilityWindow,
		},
		runtime.WithObserver(asm),
		runtime.WithLogger(r.logger),
	)
	outcome, err := gov.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("simulation setup failed: %w", err)
	}
	r.logger.Info("simulation finished",
		"reason", string(outcome.Reason),
		"cycles", outcome.Cycles,
	)

	corr := correlate.New(art.Gates, art.Operations, correlate.WithLogger(r.logger))
	execTrace, warnings := corr.Correlate(asm.Retirements(), outcome.Cycles)

	res := r.assemble(art, mapping, asm, execTrace, outcome, warnings, time.Since(started))
	if outcome.Reason == domain.TermFault {
		// The events and counters captured before the fault are still good;
		// hand them back next to the typed error.
		return res, outcome.Fault
	}
	return res, nil
}

// assemble builds the result object from the run's pieces. Nothing here can
// fail; every field is already validated upstream.
func (r *run) assemble(
	art *ports.Artifacts,
	mapping []domain.LogicalQubitMapping,
	asm *trace.Assembler,
	execTrace *domain.ExecutionTrace,
	outcome *runtime.Outcome,
	warnings []string,
	elapsed time.Duration,
) *domain.TraceResult {
	meta := domain.Meta{
		Version:           ResultVersion,
		Config:            r.config,
		TotalCycles:       outcome.Cycles,
		ElapsedSeconds:    elapsed.Seconds(),
		TerminationReason: outcome.Reason,
		Warnings:          warnings,
	}
	if len(outcome.StabilityFailures) > 0 {
		meta.StabilityCheckFailures = outcome.StabilityFailures
	}
	meta.ForcedTerminations = outcome.ForcedTerminations
	if art.Layout != nil {
		meta.BlockType = art.Layout.BlockType
		meta.CodeDistance = art.Layout.CodeDistance
		meta.PatchGrid = domain.GridDims{Rows: art.Layout.Rows, Cols: art.Layout.Cols}
		meta.NumPatches = art.Layout.Rows * art.Layout.Cols
	}

	return &domain.TraceResult{
		Meta: meta,
		Input: domain.InputInfo{
			QASM:          r.qasm,
			NumQubits:     r.numQubits,
			CompileQubits: art.NumCompileQubits,
		},
		Compiled: domain.CompiledInfo{
			CliffordTQASM: art.CliffordTQASM,
			QISA:          art.QISA,
			JobName:       art.JobName,
		},
		Patch: domain.PatchTrace{
			Initial: asm.Initial(),
			Events:  asm.Events(),
		},
		LogicalQubitMapping: mapping,
		ExecutionTrace:      *execTrace,
	}
}
