package cask

import (
	"time"

	"github.com/caskauth/cask/store"
)

// User is the persisted account record, re-exported from the store package
// so hosts implementing their own [Store] need only the root import.
type User = store.User

// Store is the persistence contract the engine operates against. The
// bundled implementation is [github.com/caskauth/cask/store.FileStore];
// hosts may substitute any backend that round-trips whole collections.
//
// Load methods return fresh copies; the engine never mutates a returned
// map in place and never caches one between operations.
type Store interface {
	LoadRoles() (map[string]int, error)
	SaveRoles(roles map[string]int) error
	LoadUsers() (map[string]User, error)
	SaveUsers(users map[string]User) error
}

// LoginResult carries the material a host needs to establish a session:
// the signed token to place in a cookie and the expiry to stamp on it.
type LoginResult struct {
	Token     string
	SessionID string
	Username  string
	Role      string
	ExpiresAt time.Time
}

// AuthResult identifies the authenticated principal after a successful
// validation. Role and Level reflect the store at validation time, not the
// values baked into the token at login.
type AuthResult struct {
	Username  string
	Role      string
	Level     int
	SessionID string
	ExpiresAt time.Time
}

// SeedUser describes an account for [Engine.Bootstrap]. Password is
// plaintext and is hashed during seeding; it never reaches the store.
type SeedUser struct {
	Username    string
	Password    string
	Role        string
	Email       string
	Description string
}
