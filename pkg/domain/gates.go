package domain

// OpKind classifies a Pauli-product operation emitted by the compiler.
type OpKind string

const (
	OpPPR OpKind = "PPR"
	OpPPM OpKind = "PPM"
	OpSQM OpKind = "SQM"
)

// CompiledGate is one Clifford+T-decomposed gate, read-only from the
// compiler. GateIdx is the compiler's own numbering.
type CompiledGate struct {
	GateIdx int    `json:"gate_idx"`
	Name    string `json:"gate_name"`
	Qubits  []int  `json:"qubits"`
}

// InstRange is a window onto the instruction stream: the compiled
// instructions [Start, End] (inclusive) realize one operation.
type InstRange struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Covers reports whether the instruction index falls inside the range.
func (r InstRange) Covers(qisaIdx int) bool {
	return qisaIdx >= r.Start && qisaIdx <= r.End
}

// PPROperation is one Pauli-product operation. SourceGateIndices back-
// references the CompiledGate entries absorbed into or realized by it.
type PPROperation struct {
	OpIdx             int       `json:"op_idx"`
	Kind              OpKind    `json:"kind"`
	PauliProduct      []string  `json:"pauli_product"`
	Sign              int       `json:"sign"`
	TargetQubits      []int     `json:"target_qubits"`
	SourceGateIndices []int     `json:"source_gate_indices"`
	InstRange         InstRange `json:"inst_range"`
}

// ExecutionType tags how a compiled gate was realized on the lattice.
type ExecutionType string

const (
	ExecPPR        ExecutionType = "ppr"
	ExecPPM        ExecutionType = "ppm"
	ExecSQM        ExecutionType = "sqm"
	ExecPauliFrame ExecutionType = "pauli_frame"
	ExecNoEffect   ExecutionType = "no_effect"
)

// AbsorptionEffect is the symbolic effect of a Clifford gate absorbed into
// the Pauli frame.
type AbsorptionEffect string

const (
	EffectTransformPauli AbsorptionEffect = "transform_pauli"
	EffectPropagatePauli AbsorptionEffect = "propagate_pauli"
)

// AbsorptionInfo records one symbolic frame update. Before/After are Pauli
// labels ("I", "X", "Y", "Z") for the named qubit.
type AbsorptionInfo struct {
	Effect AbsorptionEffect `json:"effect"`
	Qubit  int              `json:"qubit"`
	Before string           `json:"before"`
	After  string           `json:"after"`
}

// GateTraceEntry is the per-gate output record. The cycle fields are variant
// over ExecutionType: ppr/ppm carry CycleStart/CycleEnd (MERGE and SPLIT
// instruction cycles); sqm carries the bounding range (CycleAfter,
// CycleBefore) because the logical measurement leaves no discrete boundary
// event; pauli_frame carries Absorptions and no cycles at all.
type GateTraceEntry struct {
	GateIdx       int           `json:"gate_idx"`
	Gate          string        `json:"gate"`
	Qubits        []int         `json:"qubits"`
	ExecutionType ExecutionType `json:"execution_type"`

	OpIdx      *int    `json:"op_idx,omitempty"`
	CycleStart *uint64 `json:"cycle_start,omitempty"`
	CycleEnd   *uint64 `json:"cycle_end,omitempty"`

	Basis       string  `json:"basis,omitempty"`
	CycleAfter  *uint64 `json:"cycle_after,omitempty"`
	CycleBefore *uint64 `json:"cycle_before,omitempty"`

	Absorptions []AbsorptionInfo `json:"absorptions,omitempty"`
}

// TraceSummary aggregates the execution trace. AllGatesTraced must reflect
// exact count equality with the compiled gate list; callers are expected to
// re-verify it rather than trust the flag.
type TraceSummary struct {
	TotalGates      int  `json:"total_gates"`
	PPRCount        int  `json:"ppr_count"`
	PPMCount        int  `json:"ppm_count"`
	SQMCount        int  `json:"sqm_count"`
	PauliFrameCount int  `json:"pauli_frame_count"`
	NoEffectCount   int  `json:"no_effect_count"`
	AllGatesTraced  bool `json:"all_gates_traced"`
}

// ExecutionTrace is the four-level correlation output: one entry per
// compiled gate plus the summary.
type ExecutionTrace struct {
	Gates   []GateTraceEntry `json:"gates"`
	Summary TraceSummary     `json:"summary"`
}

// Verify recomputes the summary counts from the entries and checks them
// against the recorded summary and the compiled gate count. It returns false
// when the flag and the counts disagree, which indicates a correlator bug.
func (t *ExecutionTrace) Verify(numCompiledGates int) bool {
	counts := map[ExecutionType]int{}
	for _, g := range t.Gates {
		counts[g.ExecutionType]++
	}
	if counts[ExecPPR] != t.Summary.PPRCount ||
		counts[ExecPPM] != t.Summary.PPMCount ||
		counts[ExecSQM] != t.Summary.SQMCount ||
		counts[ExecPauliFrame] != t.Summary.PauliFrameCount ||
		counts[ExecNoEffect] != t.Summary.NoEffectCount {
		return false
	}
	traced := len(t.Gates) == numCompiledGates
	return t.Summary.AllGatesTraced == traced && t.Summary.TotalGates == numCompiledGates
}
