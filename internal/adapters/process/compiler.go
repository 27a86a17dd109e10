// Package process drives the external simulator toolchain as child
// processes. The compiler runs once per session; the simulator is a
// long-lived child spoken to over a JSON line protocol.
package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
)

// Compiler shells out to the QASM compilation toolchain. The contract with
// the child is file-based: the program is written to input.qasm inside the
// workdir, the command runs with the workdir as its working directory, and
// it must leave an artifacts.json behind describing everything it produced.
type Compiler struct {
	command string
	args    []string
}

// NewCompiler creates a compiler adapter around the given command.
func NewCompiler(command string, args ...string) *Compiler {
	return &Compiler{command: command, args: args}
}

// artifactsFile mirrors the toolchain's artifacts.json schema. Field names
// follow the compiler's own output, not ours.
type artifactsFile struct {
	JobName          string          `json:"qbin_name"`
	CliffordTQASM    string          `json:"clifford_t_qasm"`
	QISA             []string        `json:"qisa"`
	Gates            json.RawMessage `json:"gates"`
	Operations       json.RawMessage `json:"operations"`
	Layout           map[string]any  `json:"block_layout"`
	NumQASMQubits    int             `json:"num_qasm_qubits"`
	NumCompileQubits int             `json:"num_compile_qubits"`
	Files            []string        `json:"files"`
}

// Compile implements ports.Compiler.
func (c *Compiler) Compile(ctx context.Context, qasm string, workdir string) (*ports.Artifacts, error) {
	inputPath := filepath.Join(workdir, "input.qasm")
	if err := os.WriteFile(inputPath, []byte(qasm), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write qasm input: %w", err)
	}

	args := append(append([]string(nil), c.args...), inputPath)
	cmd := exec.CommandContext(ctx, c.command, args...)
	cmd.Dir = workdir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("compiler failed: %w (stderr: %s)", err, stderr.String())
	}

	data, err := os.ReadFile(filepath.Join(workdir, "artifacts.json"))
	if err != nil {
		return nil, fmt.Errorf("compiler produced no artifacts.json: %w", err)
	}

	var f artifactsFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse artifacts.json: %w", err)
	}

	art := &ports.Artifacts{
		JobName:          f.JobName,
		CliffordTQASM:    f.CliffordTQASM,
		QISA:             f.QISA,
		NumQASMQubits:    f.NumQASMQubits,
		NumCompileQubits: f.NumCompileQubits,
	}
	for _, rel := range f.Files {
		art.Files = append(art.Files, filepath.Join(workdir, rel))
	}
	if len(f.Gates) > 0 {
		if err := json.Unmarshal(f.Gates, &art.Gates); err != nil {
			return nil, fmt.Errorf("failed to parse compiled gates: %w", err)
		}
	}
	if len(f.Operations) > 0 {
		if err := json.Unmarshal(f.Operations, &art.Operations); err != nil {
			return nil, fmt.Errorf("failed to parse operations: %w", err)
		}
	}
	if len(f.Layout) > 0 {
		// The toolchain emits the layout from Python, where every number is a
		// float. A weakly typed decode tolerates that.
		layout, err := domain.LayoutFromMetadata(f.Layout)
		if err != nil {
			return nil, fmt.Errorf("failed to parse block layout: %w", err)
		}
		art.Layout = layout
	}
	return art, nil
}

var _ ports.Compiler = (*Compiler)(nil)
