// Package domain contains the core data model of the patch trace library:
// patch grid snapshots and their minimal deltas, compiled gate and
// Pauli-product operation records, the per-gate execution trace, and the
// final trace result object.
//
// Everything here is plain data. The types are designed to serialize to the
// JSON shape consumed by the visualization client, and nothing in this
// package performs I/O or touches the simulator.
package domain
