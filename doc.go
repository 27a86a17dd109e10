// Package xqsim produces compact execution traces from a cycle-accurate
// surface-code control processor simulation.
//
// A trace request carries an OpenQASM 2.0 program. The service compiles it
// through the Clifford+T and Pauli-product toolchain, drives the simulator
// cycle by cycle under a termination governor, and condenses the run into a
// single result: the initial patch-grid snapshot, the ordered list of
// minimal patch-state deltas, the logical-qubit-to-patch mapping, and the
// per-gate execution trace correlating source gates down to cycle ranges.
//
// Exactly one trace session runs at a time. Concurrent requests are refused
// with domain.ErrBusy rather than queued, because the simulator backend
// holds mutable on-disk state for the whole run.
package xqsim
