package validator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seitsubo413/XQsim-library/internal/validator"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

const bell = `OPENQASM 2.0;
include "qelib1.inc";
qreg q[2];
creg c[2];
h q[0];
cx q[0],q[1];
measure q[0] -> c[0];
measure q[1] -> c[1];
`

func TestCheckQASM_Accepts(t *testing.T) {
	qubits, err := validator.CheckQASM(bell, validator.Limits{MaxSizeBytes: 1024, MaxQubits: 8, MaxGates: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, qubits)
}

func TestCheckQASM_SumsRegisters(t *testing.T) {
	src := "OPENQASM 2.0;\nqreg a[2];\nqreg b[3];\nh a[0];\n"
	qubits, err := validator.CheckQASM(src, validator.Limits{})
	require.NoError(t, err)
	assert.Equal(t, 5, qubits)
}

func TestCheckQASM_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		qasm   string
		limits validator.Limits
		reason string
	}{
		{"empty", "   \n", validator.Limits{}, "empty"},
		{"oversized", bell, validator.Limits{MaxSizeBytes: 10}, "bytes"},
		{"no header", "qreg q[2];\nh q[0];", validator.Limits{}, "OPENQASM"},
		{"no qreg", "OPENQASM 2.0;\nh q[0];", validator.Limits{}, "qreg"},
		{"zero width", "OPENQASM 2.0;\nqreg q[0];", validator.Limits{}, "invalid qreg size"},
		{"too many qubits", bell, validator.Limits{MaxQubits: 1}, "qubits"},
		{"too many gates", bell, validator.Limits{MaxGates: 2}, "gate statements"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.CheckQASM(tc.qasm, tc.limits)
			require.Error(t, err)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, err.Error(), tc.reason)
		})
	}
}

func TestCheckQASM_GateCountIgnoresDeclarations(t *testing.T) {
	// 3 qregs/cregs plus 2 gates; only the gates count toward the limit.
	src := "OPENQASM 2.0;\nqreg q[3];\ncreg c[3];\nh q[0];\nt q[1];\n"
	_, err := validator.CheckQASM(src, validator.Limits{MaxGates: 2})
	assert.NoError(t, err)

	_, err = validator.CheckQASM(src+strings.Repeat("x q[0];\n", 3), validator.Limits{MaxGates: 2})
	assert.Error(t, err)
}
