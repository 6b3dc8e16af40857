package cask

import (
	"errors"

	"github.com/caskauth/cask/session"
	"github.com/caskauth/cask/store"
)

// Sentinel errors returned by Engine operations. Hosts branch with
// errors.Is; wrapped variants carry contextual detail.
var (
	// ErrInvalidCredentials covers every authentication failure: unknown
	// username, wrong password. The two are deliberately indistinguishable
	// to the caller.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionExpired is returned when a session token is authentic but
	// its expiry instant has passed.
	ErrSessionExpired = errors.New("session expired")

	// ErrSessionInvalid is returned for tokens that are malformed, tampered
	// with, revoked, or reference an account that no longer exists.
	ErrSessionInvalid = errors.New("session invalid")

	// ErrPermissionDenied is returned when an authenticated user's role
	// level is below the required threshold.
	ErrPermissionDenied = errors.New("permission denied")

	ErrRoleExists   = errors.New("role already exists")
	ErrRoleNotFound = errors.New("role not found")
	ErrRoleInUse    = errors.New("role still referenced by users")
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")

	// ErrLoginRateLimited is returned when the failed-login budget for an
	// identifier is exhausted.
	ErrLoginRateLimited = errors.New("login rate limited")

	// ErrEngineNotReady is returned when an Engine method is called on a
	// nil or incompletely built engine.
	ErrEngineNotReady = errors.New("engine not ready")
)

// Store and registry failures surface under the subpackage sentinels, re-
// exported here so hosts only import the root package.
var (
	ErrStoreNotFound       = store.ErrNotFound
	ErrStoreCorrupt        = store.ErrCorrupt
	ErrRegistryUnavailable = session.ErrUnavailable
)
