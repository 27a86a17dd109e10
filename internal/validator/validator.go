// Package validator rejects malformed or oversized QASM before a session is
// admitted. Everything here is cheap static inspection; the compiler does the
// real parsing later, inside the session.
package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

// Limits bounds the accepted input. Zero fields disable the corresponding
// check.
type Limits struct {
	MaxSizeBytes int
	MaxQubits    int
	MaxGates     int
}

var qregRe = regexp.MustCompile(`(?m)^\s*qreg\s+\w+\s*\[\s*(\d+)\s*\]`)

// CheckQASM validates one QASM program against the limits and returns the
// declared qubit count. Errors are *domain.ValidationError.
func CheckQASM(qasm string, limits Limits) (int, error) {
	if strings.TrimSpace(qasm) == "" {
		return 0, &domain.ValidationError{Field: "qasm", Reason: "empty program"}
	}
	if limits.MaxSizeBytes > 0 && len(qasm) > limits.MaxSizeBytes {
		return 0, &domain.ValidationError{
			Field:  "qasm",
			Reason: fmt.Sprintf("program is %d bytes, limit is %d", len(qasm), limits.MaxSizeBytes),
		}
	}
	if !strings.Contains(qasm, "OPENQASM") {
		return 0, &domain.ValidationError{Field: "qasm", Reason: "missing OPENQASM header"}
	}

	qubits := 0
	matches := qregRe.FindAllStringSubmatch(qasm, -1)
	if len(matches) == 0 {
		return 0, &domain.ValidationError{Field: "qasm", Reason: "no qreg declaration"}
	}
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 {
			return 0, &domain.ValidationError{Field: "qasm", Reason: "invalid qreg size " + m[1]}
		}
		qubits += n
	}
	if limits.MaxQubits > 0 && qubits > limits.MaxQubits {
		return 0, &domain.ValidationError{
			Field:  "qasm",
			Reason: fmt.Sprintf("declares %d qubits, limit is %d", qubits, limits.MaxQubits),
		}
	}

	if limits.MaxGates > 0 {
		if gates := countGates(qasm); gates > limits.MaxGates {
			return 0, &domain.ValidationError{
				Field:  "qasm",
				Reason: fmt.Sprintf("contains %d gate statements, limit is %d", gates, limits.MaxGates),
			}
		}
	}

	return qubits, nil
}

// countGates counts executable statements, skipping declarations and
// directives. An overcount is harmless here; the limit is a guard against
// runaway inputs, not an exact budget.
func countGates(qasm string) int {
	count := 0
	for _, line := range strings.Split(qasm, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		switch {
		case strings.HasPrefix(line, "OPENQASM"),
			strings.HasPrefix(line, "include"),
			strings.HasPrefix(line, "qreg"),
			strings.HasPrefix(line, "creg"),
			strings.HasPrefix(line, "barrier"):
			continue
		}
		count += strings.Count(line, ";")
	}
	return count
}
