// Package password implements credential hashing and verification with
// Argon2id defaults.
//
// # Output format
//
// Digests are encoded in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// The username is bound into the key material, so identical passwords held
// by different users never share a digest. [Hasher.DummyVerify] runs a
// full-cost derivation against a decoy digest; the Engine calls it for
// unknown usernames so "no such user" and "wrong password" take
// indistinguishable time.
//
// # Architecture boundaries
//
// This package owns hashing and verification only. Credential lookup and
// the dummy-verification decision belong to the Engine.
//
// # What this package must NOT do
//
//   - Store or retrieve credentials — callers supply plaintext and receive digests.
//   - Import any other cask package.
//   - Log plaintext passwords or digest parameters at runtime.
package password
