package rate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newLimiter(t *testing.T, cfg Config) (*Limiter, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return New(client, cfg), mr
}

func TestLimiterBudgetExhaustion(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxLoginAttempts: 3, LoginCooldown: time.Minute})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := l.CheckLogin(ctx, "alice"); err != nil {
			t.Fatalf("attempt %d: CheckLogin error: %v", i, err)
		}
		if err := l.IncrementLogin(ctx, "alice"); err != nil {
			t.Fatalf("attempt %d: IncrementLogin error: %v", i, err)
		}
	}

	// Third failure consumes the last of the budget.
	if err := l.IncrementLogin(ctx, "alice"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited on final increment, got %v", err)
	}
	if err := l.CheckLogin(ctx, "alice"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected CheckLogin to refuse, got %v", err)
	}

	// Other identifiers are unaffected.
	if err := l.CheckLogin(ctx, "bob"); err != nil {
		t.Fatalf("expected bob to be unthrottled, got %v", err)
	}
}

func TestLimiterReset(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxLoginAttempts: 1, LoginCooldown: time.Minute})
	ctx := context.Background()

	if err := l.IncrementLogin(ctx, "alice"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected budget of one to exhaust immediately, got %v", err)
	}
	if err := l.ResetLogin(ctx, "alice"); err != nil {
		t.Fatalf("ResetLogin error: %v", err)
	}
	if err := l.CheckLogin(ctx, "alice"); err != nil {
		t.Fatalf("expected budget restored after reset, got %v", err)
	}
}

func TestLimiterCooldownExpiry(t *testing.T) {
	l, mr := newLimiter(t, Config{MaxLoginAttempts: 1, LoginCooldown: time.Minute})
	ctx := context.Background()

	if err := l.IncrementLogin(ctx, "alice"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	mr.FastForward(2 * time.Minute)

	if err := l.CheckLogin(ctx, "alice"); err != nil {
		t.Fatalf("expected budget restored after cooldown, got %v", err)
	}
}

func TestLimiterInertWithoutRedis(t *testing.T) {
	ctx := context.Background()
	l := New(nil, Config{MaxLoginAttempts: 1, LoginCooldown: time.Minute})

	for i := 0; i < 10; i++ {
		if err := l.IncrementLogin(ctx, "alice"); err != nil {
			t.Fatalf("expected inert limiter to accept increments, got %v", err)
		}
	}
	if err := l.CheckLogin(ctx, "alice"); err != nil {
		t.Fatalf("expected inert limiter to pass checks, got %v", err)
	}
}

func TestLimiterInertWithZeroBudget(t *testing.T) {
	l, _ := newLimiter(t, Config{MaxLoginAttempts: 0, LoginCooldown: time.Minute})
	ctx := context.Background()

	if err := l.IncrementLogin(ctx, "alice"); err != nil {
		t.Fatalf("expected disabled limiter to accept increments, got %v", err)
	}
	if err := l.CheckLogin(ctx, "alice"); err != nil {
		t.Fatalf("expected disabled limiter to pass checks, got %v", err)
	}
}

func TestLimiterBackendLoss(t *testing.T) {
	l, mr := newLimiter(t, Config{MaxLoginAttempts: 3, LoginCooldown: time.Minute})
	ctx := context.Background()

	mr.Close()

	if err := l.CheckLogin(ctx, "alice"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
	if err := l.IncrementLogin(ctx, "alice"); !errors.Is(err, ErrRedisUnavailable) {
		t.Fatalf("expected ErrRedisUnavailable, got %v", err)
	}
}
