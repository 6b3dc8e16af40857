// Package cask is an embeddable authentication and authorization core for
// Go applications: accounts with argon2id-hashed passwords, signed session
// tokens with server-side revocation, and level-threshold role checks, all
// persisted as plain JSON files a host can inspect and hand-edit.
//
// # Usage
//
// Build an engine, seed it, and call its operations:
//
//	st, err := store.Open("./authdata", store.WithInitialize())
//	if err != nil { ... }
//
//	engine, err := cask.New().
//		WithStore(st).
//		WithSigningKey(key).
//		Build()
//	if err != nil { ... }
//	defer engine.Close()
//
//	err = engine.Bootstrap(ctx,
//		map[string]int{"admin": 100, "user": 50},
//		[]cask.SeedUser{{Username: "admin", Password: "admin", Role: "admin"}},
//	)
//
// Login returns a token for the host to place in a cookie; Validate and
// Require check it on later requests. The middleware package adapts these
// to net/http for hosts that want cookie handling done for them.
//
// # Architecture boundaries
//
// The root package orchestrates; mechanisms live in subpackages. password
// hashes and verifies, token signs and parses, session tracks revocable
// sessions, store persists the collections. Subpackages never import each
// other or the root.
//
// # What this package must NOT do
//
//   - Serve HTTP, render pages, or manage routes.
//   - Send email or talk to external identity providers.
//   - Cache store contents between operations.
package cask
