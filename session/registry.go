package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a session is absent, revoked, or lazily
// discarded after its expiry instant passed.
var ErrNotFound = errors.New("session not found")

// ErrUnavailable is returned when the registry backend cannot be reached.
var ErrUnavailable = errors.New("session registry unavailable")

// Registry tracks live sessions so explicit logout revokes a token that is
// otherwise self-validating. Implementations perform lazy invalidation:
// Get never returns an expired record, but there is no background sweep;
// an expired record simply sits until touched or superseded.
type Registry interface {
	// Save records a freshly issued session. ttl bounds backend retention;
	// validity is still governed solely by the record's expiry instant.
	Save(ctx context.Context, rec *Record, ttl time.Duration) error

	// Get returns the live record for sessionID, or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*Record, error)

	// Delete revokes a session. Reports whether the session existed;
	// deleting an unknown session is not an error.
	Delete(ctx context.Context, sessionID string) (bool, error)

	// DeleteAllForUser revokes every tracked session of username.
	DeleteAllForUser(ctx context.Context, username string) error

	// ActiveSessionIDs lists the tracked session IDs for username. The
	// result may include sessions that expire before the caller acts on it.
	ActiveSessionIDs(ctx context.Context, username string) ([]string, error)
}
