package ports

import (
	"context"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

// Artifacts is everything the compiler toolchain produces for one job. File
// paths live under the session working directory and are removed with it.
type Artifacts struct {
	JobName string

	CliffordTQASM string
	QISA          []string

	Gates      []domain.CompiledGate
	Operations []domain.PPROperation
	Layout     *domain.BlockLayout

	NumQASMQubits    int
	NumCompileQubits int

	// Files are the intermediate artifact paths (qasm, qtrp, qisa, qbin).
	Files []string
}

// Compiler runs the external QASM -> Clifford+T -> Pauli-product -> assembly
// toolchain. Implementations write their intermediates under workdir only.
type Compiler interface {
	Compile(ctx context.Context, qasm string, workdir string) (*Artifacts, error)
}

// SimulatorFactory constructs a simulator instance for one compiled job.
type SimulatorFactory interface {
	Create(ctx context.Context, art *Artifacts, configName string) (Simulator, error)
}
