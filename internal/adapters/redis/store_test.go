package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"

	"github.com/seitsubo413/XQsim-library/internal/adapters/redis"
	"github.com/seitsubo413/XQsim-library/pkg/domain"
	"github.com/seitsubo413/XQsim-library/pkg/ports/tests"
)

func TestRedisStore_Contract(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})

	store := redis.NewFromClient(client)
	tests.TraceStoreContractTest(t, store)
}

func TestRedisStore_TTLExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	defer mr.Close()

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	store := redis.NewFromClient(client, redis.WithTTL(time.Second))
	ctx := context.Background()

	res := &domain.TraceResult{Compiled: domain.CompiledInfo{JobName: "job_ttl"}}
	if err := store.Save(ctx, "job_ttl", res); err != nil {
		t.Fatalf("unexpected save error: %v", err)
	}

	mr.FastForward(2 * time.Second)

	if _, err := store.Load(ctx, "job_ttl"); err != domain.ErrTraceNotFound {
		t.Errorf("expected ErrTraceNotFound after expiry, got %v", err)
	}
}
