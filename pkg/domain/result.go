package domain

// TerminationReason classifies how a simulation run ended. All reasons are
// terminal; a run is never retried in place.
type TerminationReason string

const (
	TermNormal    TerminationReason = "normal"
	TermMaxCycles TerminationReason = "max_cycles"
	TermTimeout   TerminationReason = "timeout"
	TermFault     TerminationReason = "fault"
)

// GridDims is the immutable patch grid geometry.
type GridDims struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Meta carries run-level counters and the termination audit trail.
type Meta struct {
	Version      int      `json:"version"`
	Config       string   `json:"config"`
	BlockType    string   `json:"block_type"`
	CodeDistance int      `json:"code_distance"`
	PatchGrid    GridDims `json:"patch_grid"`
	NumPatches   int      `json:"num_patches"`

	TotalCycles    uint64  `json:"total_cycles"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`

	TerminationReason TerminationReason `json:"termination_reason"`
	// StabilityCheckFailures counts, per unit predicate, the cycles on which
	// that conjunct read false. It is what makes a never-settling done latch
	// diagnosable from the result alone.
	StabilityCheckFailures map[string]uint64 `json:"stability_check_failures,omitempty"`
	// ForcedTerminations names the guards that fired (cycle ceiling,
	// wall clock) when the run did not end normally.
	ForcedTerminations []string `json:"forced_terminations,omitempty"`
	Warnings           []string `json:"warnings,omitempty"`
}

// InputInfo echoes the request back into the result. CompileQubits reflects
// the odd-qubit padding rule: the compiler's logical qubit count only works
// out when the compiled circuit has an odd number of qubits, so even inputs
// are padded by one.
type InputInfo struct {
	QASM          string `json:"qasm"`
	NumQubits     int    `json:"num_qasm_qubits"`
	CompileQubits int    `json:"num_compile_qubits"`
}

// CompiledInfo carries the compiler artifacts surfaced to the client.
type CompiledInfo struct {
	CliffordTQASM string   `json:"clifford_t_qasm"`
	QISA          []string `json:"qisa"`
	JobName       string   `json:"qbin_name"`
}

// PatchTrace is the initial snapshot plus the ordered event list. Replaying
// Events[0..k] over Initial reconstructs the grid at Events[k].Cycle.
type PatchTrace struct {
	Initial []PatchState `json:"initial"`
	Events  []PatchEvent `json:"events"`
}

// TraceResult is the single result object handed to the transport layer.
type TraceResult struct {
	Meta                Meta                  `json:"meta"`
	Input               InputInfo             `json:"input"`
	Compiled            CompiledInfo          `json:"compiled"`
	Patch               PatchTrace            `json:"patch"`
	LogicalQubitMapping []LogicalQubitMapping `json:"logical_qubit_mapping"`
	ExecutionTrace      ExecutionTrace        `json:"clifford_t_execution_trace"`
}
