package tests

import (
	"context"
	"testing"

	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports"
)

// TraceStoreContractTest is a reusable suite verifying that an adapter
// complies with ports.TraceStore.
func TraceStoreContractTest(t *testing.T, store ports.TraceStore) {
	t.Helper()
	ctx := context.Background()

	res := &domain.TraceResult{
		Meta: domain.Meta{
			Version:           1,
			TerminationReason: domain.TermNormal,
			TotalCycles:       42,
		},
		Compiled: domain.CompiledInfo{JobName: "job_a"},
	}

	t.Run("Save_Load", func(t *testing.T) {
		if err := store.Save(ctx, "job_a", res); err != nil {
			t.Fatalf("unexpected save error: %v", err)
		}
		got, err := store.Load(ctx, "job_a")
		if err != nil {
			t.Fatalf("unexpected load error: %v", err)
		}
		if got.Meta.TotalCycles != res.Meta.TotalCycles {
			t.Errorf("loaded cycles mismatch: got %d, want %d", got.Meta.TotalCycles, res.Meta.TotalCycles)
		}
		if got.Meta.TerminationReason != domain.TermNormal {
			t.Errorf("loaded reason mismatch: got %s", got.Meta.TerminationReason)
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := store.Load(ctx, "no-such-trace")
		if err != domain.ErrTraceNotFound {
			t.Errorf("expected ErrTraceNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		ids, err := store.List(ctx)
		if err != nil {
			t.Fatalf("unexpected list error: %v", err)
		}
		found := false
		for _, id := range ids {
			if id == "job_a" {
				found = true
			}
		}
		if !found {
			t.Errorf("job_a missing from list %v", ids)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		if err := store.Delete(ctx, "job_a"); err != nil {
			t.Fatalf("unexpected delete error: %v", err)
		}
		if _, err := store.Load(ctx, "job_a"); err != domain.ErrTraceNotFound {
			t.Errorf("expected ErrTraceNotFound after delete, got %v", err)
		}
	})
}
