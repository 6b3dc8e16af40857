package session

import "time"

// Record is the server-side view of one live session. The signed token is
// the client's proof; the Record is what the registry tracks so logout is a
// real revocation rather than a polite request.
type Record struct {
	SessionID string
	Username  string
	Role      string

	CreatedAt int64
	ExpiresAt int64
}

// Expired reports whether the record's expiry instant has passed at now.
// The comparison mirrors token expiry: a record whose expiry equals the
// current second is already expired, so a zero session timeout invalidates
// a session created moments earlier.
func (r *Record) Expired(now time.Time) bool {
	return !now.Before(time.Unix(r.ExpiresAt, 0))
}
