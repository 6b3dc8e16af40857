package cask

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/caskauth/cask/session"
	"github.com/caskauth/cask/token"
)

// Validate checks a session token end to end: signature, expiry against
// the wall clock at call time, revocation, and the continued existence of
// the account. Nothing is cached — a token that validated a moment ago can
// legitimately fail now.
//
// The returned result carries the account's current role and level from
// the store, not the values baked into the token at login.
func (e *Engine) Validate(ctx context.Context, tokenStr string) (*AuthResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}

	claims, err := e.tokens.Parse(tokenStr)
	if err != nil {
		if errors.Is(err, token.ErrExpired) {
			e.metricInc(MetricValidateExpired)
			return nil, ErrSessionExpired
		}
		e.metricInc(MetricValidateRejected)
		return nil, ErrSessionInvalid
	}

	rec, err := e.registry.Get(ctx, claims.SessionID())
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			// Revoked by logout, or lost with an in-process registry
			// restart. Either way the session no longer stands.
			e.metricInc(MetricValidateRejected)
			e.emitAudit(ctx, auditEventValidateRejected, false, claims.Username(), claims.SessionID(), ErrSessionInvalid, func() map[string]string {
				return map[string]string{"reason": "session_revoked"}
			})
			return nil, ErrSessionInvalid
		}
		return nil, err
	}
	if rec.Username != claims.Username() {
		e.metricInc(MetricValidateRejected)
		return nil, ErrSessionInvalid
	}

	result, err := e.resolvePrincipal(claims.Username())
	if err != nil {
		e.metricInc(MetricValidateRejected)
		e.emitAudit(ctx, auditEventValidateRejected, false, claims.Username(), claims.SessionID(), err, nil)
		return nil, err
	}

	result.SessionID = claims.SessionID()
	result.ExpiresAt = time.Unix(rec.ExpiresAt, 0).UTC()

	e.metricInc(MetricValidateSuccess)
	return result, nil
}

// resolvePrincipal re-reads the account and its role level from the store.
// A session whose account or role vanished since login is invalid.
func (e *Engine) resolvePrincipal(username string) (*AuthResult, error) {
	users, err := e.store.LoadUsers()
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	user, ok := users[username]
	if !ok {
		return nil, fmt.Errorf("%w: account removed", ErrSessionInvalid)
	}

	roles, err := e.store.LoadRoles()
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	level, ok := roles[user.Role]
	if !ok {
		return nil, fmt.Errorf("%w: role removed", ErrSessionInvalid)
	}

	return &AuthResult{
		Username: username,
		Role:     user.Role,
		Level:    level,
	}, nil
}
