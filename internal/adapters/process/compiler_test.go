package process_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitsubo413/XQsim-library/internal/adapters/process"
)

// writeScript drops an executable shell script for use as a fake toolchain.
func writeScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable")
	}
	path := filepath.Join(t.TempDir(), "tool.sh")
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755))
	return path
}

func TestCompiler_ParsesArtifacts(t *testing.T) {
	script := writeScript(t, `cat > artifacts.json <<'EOF'
{
  "qbin_name": "job_q3",
  "clifford_t_qasm": "t q[0];",
  "qisa": ["LQI", "MERGE_INFO"],
  "gates": [{"gate_idx": 0, "gate_name": "t", "qubits": [0]}],
  "operations": [{"op_idx": 0, "kind": "PPR", "inst_range": {"start": 1, "end": 1}}],
  "block_layout": {"block_type": "Standard", "rows": 2, "cols": 3},
  "num_qasm_qubits": 2,
  "num_compile_qubits": 3,
  "files": ["job_q3.qisa"]
}
EOF
`)
	workdir := t.TempDir()

	art, err := process.NewCompiler(script).Compile(context.Background(), "OPENQASM 2.0;", workdir)
	require.NoError(t, err)

	assert.Equal(t, "job_q3", art.JobName)
	assert.Equal(t, []string{"LQI", "MERGE_INFO"}, art.QISA)
	require.Len(t, art.Gates, 1)
	assert.Equal(t, "t", art.Gates[0].Name)
	require.Len(t, art.Operations, 1)
	assert.Equal(t, 1, art.Operations[0].InstRange.Start)
	require.NotNil(t, art.Layout)
	assert.Equal(t, 3, art.Layout.Cols)
	assert.Equal(t, 3, art.NumCompileQubits)
	require.Len(t, art.Files, 1)
	assert.Equal(t, filepath.Join(workdir, "job_q3.qisa"), art.Files[0])

	// The program text was handed over on disk.
	data, err := os.ReadFile(filepath.Join(workdir, "input.qasm"))
	require.NoError(t, err)
	assert.Equal(t, "OPENQASM 2.0;", string(data))
}

func TestCompiler_SurfacesStderr(t *testing.T) {
	script := writeScript(t, `echo "qasm parse error near line 3" >&2
exit 1
`)

	_, err := process.NewCompiler(script).Compile(context.Background(), "OPENQASM 2.0;", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "qasm parse error near line 3")
}

func TestCompiler_MissingArtifacts(t *testing.T) {
	script := writeScript(t, `exit 0
`)

	_, err := process.NewCompiler(script).Compile(context.Background(), "OPENQASM 2.0;", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "artifacts.json")
}

func TestCompiler_RespectsContext(t *testing.T) {
	script := writeScript(t, `sleep 10
`)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := process.NewCompiler(script).Compile(ctx, "OPENQASM 2.0;", t.TempDir())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
