package ports

import (
	"context"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
)

// TraceStore persists completed trace results so the serve layer can hand
// them out again by job name. Stores are optional; the core itself never
// requires one.
type TraceStore interface {
	// Save persists the result under the given trace ID.
	Save(ctx context.Context, id string, res *domain.TraceResult) error

	// Load retrieves a stored result.
	// Returns domain.ErrTraceNotFound if the ID is unknown.
	Load(ctx context.Context, id string) (*domain.TraceResult, error)

	// Delete removes a stored result.
	Delete(ctx context.Context, id string) error

	// List returns the known trace IDs.
	List(ctx context.Context) ([]string, error)
}
