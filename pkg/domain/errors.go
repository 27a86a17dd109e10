package domain

import (
	"errors"
	"fmt"
)

// ErrBusy is returned when a trace request arrives while another session
// holds the execution slot. Callers must retry later; requests are never
// queued.
var ErrBusy = errors.New("trace session already in progress")

// ErrTraceNotFound is returned by trace stores for unknown trace IDs.
var ErrTraceNotFound = errors.New("trace not found")

// ValidationError rejects malformed or oversized input before a session is
// admitted.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// SimulationFault is an unrecoverable fault raised inside the external
// simulator, converted to a structured failure instead of aborting the host
// process.
type SimulationFault struct {
	Unit  string
	Cycle uint64
	Cause error
}

func (e *SimulationFault) Error() string {
	if e.Unit != "" {
		return fmt.Sprintf("simulation fault in %s at cycle %d: %v", e.Unit, e.Cycle, e.Cause)
	}
	return fmt.Sprintf("simulation fault at cycle %d: %v", e.Cycle, e.Cause)
}

func (e *SimulationFault) Unwrap() error { return e.Cause }

// TimeoutError is returned when the end-to-end deadline expires before any
// partial trace could be captured (e.g. during compilation). Expiry inside
// the step loop yields a partial result instead.
type TimeoutError struct {
	Phase string
	Cause error
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("trace deadline exceeded during %s: %v", e.Phase, e.Cause)
}

func (e *TimeoutError) Unwrap() error { return e.Cause }
