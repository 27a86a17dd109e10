// Package ports defines the boundary interfaces of the trace core: the
// external simulator and compiler collaborators it consumes, and the trace
// result store the serve layer persists into. Adapters implement these;
// the core never depends on a concrete collaborator.
package ports
