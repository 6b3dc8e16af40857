// Package token issues and verifies the signed session tokens carried in
// the host's cookie.
//
// # Token shape
//
// Tokens are HS256 JWTs whose claims embed the username (sub), role, a
// unique session ID (jti), and the expiry instant (exp). Signature and
// expiry checks are self-contained; revocation tracking lives in the
// session package.
//
// # Architecture boundaries
//
// This package owns signing and parsing only. It does not read cookies,
// consult the session registry, or decide authorization.
//
// # What this package must NOT do
//
//   - Import any other cask package.
//   - Cache validation results; expiry is re-evaluated on every Parse.
//   - Accept unsigned or non-HS256 tokens.
package token
