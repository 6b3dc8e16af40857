package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Backend retention floor. A zero session timeout still writes the record
// so logout bookkeeping works; validity is decided by the record's expiry,
// not the key TTL.
const minRetention = time.Second

// RedisRegistry is a Redis-backed [Registry] for hosts that run more than
// one process against the same session population.
type RedisRegistry struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisRegistry creates a registry on the given client. prefix
// namespaces all keys.
func NewRedisRegistry(client redis.UniversalClient, prefix string) *RedisRegistry {
	if prefix == "" {
		prefix = "cask"
	}
	return &RedisRegistry{redis: client, prefix: prefix}
}

func (r *RedisRegistry) key(sessionID string) string {
	return r.prefix + ":s:" + sessionID
}

func (r *RedisRegistry) userKey(username string) string {
	return r.prefix + ":u:" + username
}

// Save persists the encoded record and indexes it under its user.
func (r *RedisRegistry) Save(ctx context.Context, rec *Record, ttl time.Duration) error {
	data, err := Encode(rec)
	if err != nil {
		return err
	}
	if ttl < minRetention {
		ttl = minRetention
	}

	_, err = r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key(rec.SessionID), data, ttl)
		pipe.SAdd(ctx, r.userKey(rec.Username), rec.SessionID)
		pipe.Expire(ctx, r.userKey(rec.Username), ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Get fetches and decodes a record, discarding it if expired.
func (r *RedisRegistry) Get(ctx context.Context, sessionID string) (*Record, error) {
	data, err := r.redis.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rec, err := Decode(data)
	if err != nil {
		return nil, err
	}
	rec.SessionID = sessionID

	if rec.Expired(time.Now()) {
		if err := r.drop(ctx, rec.Username, sessionID); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}

	return rec, nil
}

// Delete revokes a session and reports whether it was tracked.
func (r *RedisRegistry) Delete(ctx context.Context, sessionID string) (bool, error) {
	data, err := r.redis.Get(ctx, r.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	rec, err := Decode(data)
	if err != nil {
		// Unknown blob: still remove the key so a corrupt entry cannot linger.
		if delErr := r.redis.Del(ctx, r.key(sessionID)).Err(); delErr != nil {
			return false, fmt.Errorf("%w: %v", ErrUnavailable, delErr)
		}
		return true, nil
	}

	if err := r.drop(ctx, rec.Username, sessionID); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteAllForUser revokes every tracked session of username.
func (r *RedisRegistry) DeleteAllForUser(ctx context.Context, username string) error {
	sessionIDs, err := r.redis.SMembers(ctx, r.userKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	keys := make([]string, 0, len(sessionIDs)+1)
	for _, sessionID := range sessionIDs {
		keys = append(keys, r.key(sessionID))
	}
	keys = append(keys, r.userKey(username))

	if err := r.redis.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// ActiveSessionIDs lists tracked session IDs for username.
func (r *RedisRegistry) ActiveSessionIDs(ctx context.Context, username string) ([]string, error) {
	ids, err := r.redis.SMembers(ctx, r.userKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ids, nil
}

func (r *RedisRegistry) drop(ctx context.Context, username, sessionID string) error {
	_, err := r.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.key(sessionID))
		pipe.SRem(ctx, r.userKey(username), sessionID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
