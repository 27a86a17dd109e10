// Package correlate builds the four-level execution trace: original gate ->
// Clifford+T gate -> Pauli-product operation -> instruction range -> cycle
// range, plus the static logical-qubit-to-patch assignment.
package correlate

import (
	"fmt"
	"log/slog"

	"github.com/seitsubo413/XQsim-library/internal/logging"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/trace"
)

// mergeSplitPair is one realized MERGE/SPLIT instruction bracket. The
// correlation graph is kept as flat records with integer cross-references,
// so it serializes trivially and cannot form pointer cycles.
type mergeSplitPair struct {
	mergeQISA  int
	splitQISA  int
	mergeCycle uint64
	splitCycle uint64
	consumed   bool
}

// Correlator consumes the static compiler lists and the dynamic retirement
// log of one run.
type Correlator struct {
	gates  []domain.CompiledGate
	ops    []domain.PPROperation
	logger *slog.Logger
}

// Option configures a Correlator.
type Option func(*Correlator)

// WithLogger sets the correlator's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Correlator) { c.logger = logger }
}

// New creates a correlator over the compiled gate and operation lists.
func New(gates []domain.CompiledGate, ops []domain.PPROperation, opts ...Option) *Correlator {
	c := &Correlator{gates: gates, ops: ops, logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Correlate produces one GateTraceEntry per compiled gate. totalCycles
// bounds the SQM windows when no neighbouring instruction exists. Gates that
// cannot be bound are reported as warnings and omitted, which makes the
// summary's AllGatesTraced false by count equality rather than by decree.
func (c *Correlator) Correlate(retirements []trace.InstRecord, totalCycles uint64) (*domain.ExecutionTrace, []string) {
	var warnings []string

	pairs := buildPairs(retirements)
	bindings := c.bindOperations(pairs, &warnings)

	opByGate := make(map[int]int) // gate_idx -> op_idx
	for _, op := range c.ops {
		for _, g := range op.SourceGateIndices {
			if _, claimed := opByGate[g]; !claimed {
				opByGate[g] = op.OpIdx
			}
		}
	}

	frm := newFrame()
	out := &domain.ExecutionTrace{}
	for _, gate := range c.gates {
		entry, ok := c.traceGate(gate, opByGate, bindings, retirements, totalCycles, frm, &warnings)
		if !ok {
			continue
		}
		out.Gates = append(out.Gates, entry)
		switch entry.ExecutionType {
		case domain.ExecPPR:
			out.Summary.PPRCount++
		case domain.ExecPPM:
			out.Summary.PPMCount++
		case domain.ExecSQM:
			out.Summary.SQMCount++
		case domain.ExecPauliFrame:
			out.Summary.PauliFrameCount++
		case domain.ExecNoEffect:
			out.Summary.NoEffectCount++
		}
	}

	out.Summary.TotalGates = len(c.gates)
	out.Summary.AllGatesTraced = len(out.Gates) == len(c.gates)
	if !out.Summary.AllGatesTraced {
		c.logger.Warn("correlation incomplete",
			"gates", len(c.gates), "traced", len(out.Gates), "warnings", len(warnings))
	}
	return out, warnings
}

// buildPairs brackets MERGE/SPLIT acceptances in instruction order: each
// SPLIT closes the earliest still-open MERGE.
func buildPairs(retirements []trace.InstRecord) []mergeSplitPair {
	var pairs []mergeSplitPair
	var open []trace.InstRecord
	for _, r := range retirements {
		switch r.Inst {
		case domain.InstMergeInfo:
			open = append(open, r)
		case domain.InstSplitInfo:
			if len(open) == 0 {
				continue
			}
			m := open[0]
			open = open[1:]
			pairs = append(pairs, mergeSplitPair{
				mergeQISA:  m.QISAIdx,
				splitQISA:  r.QISAIdx,
				mergeCycle: m.Cycle,
				splitCycle: r.Cycle,
			})
		}
	}
	return pairs
}

// bindOperations assigns each PPR/PPM operation a realized pair. Operations
// consume instruction ranges in strict sequence; the tie-break when several
// pairs could match is always the earliest unconsumed one.
func (c *Correlator) bindOperations(pairs []mergeSplitPair, warnings *[]string) map[int]mergeSplitPair {
	bindings := make(map[int]mergeSplitPair) // op_idx -> realized pair
	for _, op := range c.ops {
		if op.Kind != domain.OpPPR && op.Kind != domain.OpPPM {
			continue
		}
		bound := -1
		// First preference: an unconsumed pair whose MERGE falls inside the
		// operation's compiled instruction range.
		for i := range pairs {
			if !pairs[i].consumed && op.InstRange.Covers(pairs[i].mergeQISA) {
				bound = i
				break
			}
		}
		// Fallback: strict in-order consumption.
		if bound < 0 {
			for i := range pairs {
				if !pairs[i].consumed {
					bound = i
					break
				}
			}
		}
		if bound < 0 {
			*warnings = append(*warnings,
				fmt.Sprintf("operation %d (%s) has no realized MERGE/SPLIT pair", op.OpIdx, op.Kind))
			continue
		}
		pairs[bound].consumed = true
		bindings[op.OpIdx] = pairs[bound]
	}
	return bindings
}

// traceGate classifies one compiled gate. The bool return is false when the
// gate could not be matched at all.
func (c *Correlator) traceGate(
	gate domain.CompiledGate,
	opByGate map[int]int,
	bindings map[int]mergeSplitPair,
	retirements []trace.InstRecord,
	totalCycles uint64,
	frm frame,
	warnings *[]string,
) (domain.GateTraceEntry, bool) {
	entry := domain.GateTraceEntry{
		GateIdx: gate.GateIdx,
		Gate:    gate.Name,
		Qubits:  gate.Qubits,
	}

	opIdx, hasOp := opByGate[gate.GateIdx]
	if hasOp {
		op := c.opByIdx(opIdx)
		if op == nil {
			*warnings = append(*warnings, fmt.Sprintf("gate %d references unknown operation %d", gate.GateIdx, opIdx))
			return entry, false
		}
		switch op.Kind {
		case domain.OpPPR, domain.OpPPM:
			pair, ok := bindings[opIdx]
			if !ok {
				*warnings = append(*warnings,
					fmt.Sprintf("gate %d: operation %d never bound to an instruction range", gate.GateIdx, opIdx))
				return entry, false
			}
			entry.ExecutionType = domain.ExecPPR
			if op.Kind == domain.OpPPM {
				entry.ExecutionType = domain.ExecPPM
			}
			entry.OpIdx = &op.OpIdx
			start, end := pair.mergeCycle, pair.splitCycle
			entry.CycleStart = &start
			entry.CycleEnd = &end
			return entry, true

		case domain.OpSQM:
			entry.ExecutionType = domain.ExecSQM
			entry.OpIdx = &op.OpIdx
			entry.Basis = sqmBasis(op)
			after, before := sqmWindow(op, retirements, totalCycles)
			entry.CycleAfter = &after
			entry.CycleBefore = &before
			return entry, true
		}
	}

	// No physical operation: either a frame absorption or a no-op.
	switch {
	case len(gate.Qubits) == 1 && singleQubitClifford(gate.Name):
		q := gate.Qubits[0]
		before := frm.get(q)
		after := conjugateSingle(gate.Name, before)
		frm.set(q, after)
		entry.ExecutionType = domain.ExecPauliFrame
		entry.Absorptions = []domain.AbsorptionInfo{{
			Effect: domain.EffectTransformPauli,
			Qubit:  q,
			Before: before,
			After:  after,
		}}
		return entry, true

	case len(gate.Qubits) == 2 && twoQubitClifford(gate.Name):
		ctrl, tgt := gate.Qubits[0], gate.Qubits[1]
		beforeC, beforeT := frm.get(ctrl), frm.get(tgt)
		afterC, afterT := frm.propagate(gate.Name, ctrl, tgt)
		entry.ExecutionType = domain.ExecPauliFrame
		entry.Absorptions = []domain.AbsorptionInfo{
			{Effect: domain.EffectPropagatePauli, Qubit: ctrl, Before: beforeC, After: afterC},
			{Effect: domain.EffectPropagatePauli, Qubit: tgt, Before: beforeT, After: afterT},
		}
		return entry, true

	default:
		entry.ExecutionType = domain.ExecNoEffect
		return entry, true
	}
}

func (c *Correlator) opByIdx(opIdx int) *domain.PPROperation {
	for i := range c.ops {
		if c.ops[i].OpIdx == opIdx {
			return &c.ops[i]
		}
	}
	return nil
}

// sqmBasis extracts the measurement basis from the operation's Pauli label.
func sqmBasis(op *domain.PPROperation) string {
	for _, p := range op.PauliProduct {
		if p != "I" && p != "" {
			return p
		}
	}
	return "Z"
}

// sqmWindow bounds the logical measurement: the cycle of the instruction
// immediately preceding the operation's range and the cycle of the one
// immediately following it. There is no discrete physical marker to pin it
// down further, so the bounds clamp to the run's start and end.
func sqmWindow(op *domain.PPROperation, retirements []trace.InstRecord, totalCycles uint64) (uint64, uint64) {
	var after uint64
	before := totalCycles
	for _, r := range retirements {
		if r.QISAIdx < op.InstRange.Start && r.Cycle > after {
			after = r.Cycle
		}
		if r.QISAIdx > op.InstRange.End && r.Cycle < before {
			before = r.Cycle
		}
	}
	return after, before
}
