package memory_test

import (
	"context"
	"sync"
	"testing"

	"github.com/seitsubo413/XQsim-library/internal/adapters/memory"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports/tests"
)

func TestMemoryStore_Contract(t *testing.T) {
	tests.TraceStoreContractTest(t, memory.New())
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := &domain.TraceResult{Meta: domain.Meta{Version: 1}}
			_ = store.Save(ctx, "shared", res)
			_, _ = store.Load(ctx, "shared")
			_, _ = store.List(ctx)
		}()
	}
	wg.Wait()

	if _, err := store.Load(ctx, "shared"); err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
}

func TestMemoryStore_LoadReturnsCopy(t *testing.T) {
	store := memory.New()
	ctx := context.Background()

	res := &domain.TraceResult{Meta: domain.Meta{TotalCycles: 10}}
	if err := store.Save(ctx, "a", res); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	got, err := store.Load(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	got.Meta.TotalCycles = 999

	again, err := store.Load(ctx, "a")
	if err != nil {
		t.Fatalf("unexpected load error: %v", err)
	}
	if again.Meta.TotalCycles != 10 {
		t.Errorf("store leaked mutable state: got %d cycles", again.Meta.TotalCycles)
	}
}
