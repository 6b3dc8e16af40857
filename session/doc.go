// Package session tracks live sessions so logout is an actual revocation.
//
// # Model
//
// Tokens are self-validating (see the token package); the registry exists
// for the one thing a signed token cannot express: that the server has
// stopped honoring it. [MemoryRegistry] serves single-process hosts,
// [RedisRegistry] shares the session population across processes using a
// compact binary record encoding.
//
// # Expiry discipline
//
// Expiry is evaluated lazily against the wall clock on every Get. There is
// no background sweep; backend TTLs only bound retention and never stand
// in for the validity check.
//
// # What this package must NOT do
//
//   - Interpret or verify signed tokens.
//   - Make authorization decisions.
//   - Import any other cask package.
package session
