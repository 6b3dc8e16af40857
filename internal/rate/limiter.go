// Package rate enforces the failed-login budget with Redis counters.
//
// The limiter is deliberately inert when built without a Redis client:
// every check passes and every increment is a no-op. Single-process hosts
// that want throttling still need Redis; an in-process counter would reset
// on restart and give a false sense of enforcement across replicas.
package rate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRateLimited is returned when an identifier has exhausted its
// failed-login budget.
var ErrRateLimited = errors.New("rate limited")

// ErrRedisUnavailable is returned when the counter backend cannot be
// reached.
var ErrRedisUnavailable = errors.New("rate limiter redis unavailable")

// Config holds the throttle policy.
type Config struct {
	// MaxLoginAttempts bounds consecutive failed logins per identifier.
	// Zero disables the limiter entirely.
	MaxLoginAttempts int

	// LoginCooldown is the TTL applied to the failure counter; after a
	// quiet cooldown window the budget resets.
	LoginCooldown time.Duration
}

// Limiter counts failed logins per identifier in Redis.
type Limiter struct {
	redis  redis.UniversalClient
	config Config
}

// New creates a login limiter. A nil client yields an inert limiter.
func New(client redis.UniversalClient, cfg Config) *Limiter {
	return &Limiter{redis: client, config: cfg}
}

func (l *Limiter) inert() bool {
	return l == nil || l.redis == nil || l.config.MaxLoginAttempts <= 0
}

func loginKey(identifier string) string {
	return "cask:rl:login:" + identifier
}

// CheckLogin reports whether identifier still has budget. It does not
// consume an attempt.
func (l *Limiter) CheckLogin(ctx context.Context, identifier string) error {
	if l.inert() {
		return nil
	}

	count, err := l.redis.Get(ctx, loginKey(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	if count >= int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}
	return nil
}

// IncrementLogin records one failed attempt and starts (or keeps) the
// cooldown window. Returns ErrRateLimited when the budget is now exhausted.
func (l *Limiter) IncrementLogin(ctx context.Context, identifier string) error {
	if l.inert() {
		return nil
	}

	key := loginKey(identifier)
	pipe := l.redis.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, l.config.LoginCooldown)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	if incr.Val() >= int64(l.config.MaxLoginAttempts) {
		return ErrRateLimited
	}
	return nil
}

// ResetLogin clears the failure counter after a successful login or
// password change.
func (l *Limiter) ResetLogin(ctx context.Context, identifier string) error {
	if l.inert() {
		return nil
	}

	if err := l.redis.Del(ctx, loginKey(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}
