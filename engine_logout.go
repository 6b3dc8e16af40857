package cask

import (
	"context"
	"errors"

	"github.com/caskauth/cask/token"
)

// Logout revokes the session carried by tokenStr. Logging out with an
// expired, malformed, or already-revoked token is a no-op success: the
// caller's intent — that the session must not stand — already holds.
func (e *Engine) Logout(ctx context.Context, tokenStr string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	claims, err := e.tokens.Parse(tokenStr)
	if err != nil {
		if errors.Is(err, token.ErrExpired) || errors.Is(err, token.ErrInvalid) {
			return nil
		}
		return err
	}

	existed, err := e.registry.Delete(ctx, claims.SessionID())
	if err != nil {
		return err
	}
	if existed {
		e.metricInc(MetricLogout)
		e.metricInc(MetricSessionInvalidated)
	}
	e.emitAudit(ctx, auditEventLogout, true, claims.Username(), claims.SessionID(), nil, nil)
	return nil
}

// LogoutAll revokes every tracked session of username, regardless of which
// device or token established it.
func (e *Engine) LogoutAll(ctx context.Context, username string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	username = e.normalize(username)

	if err := e.registry.DeleteAllForUser(ctx, username); err != nil {
		e.emitAudit(ctx, auditEventLogoutAll, false, username, "", err, nil)
		return err
	}

	e.metricInc(MetricLogoutAll)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventLogoutAll, true, username, "", nil, nil)
	return nil
}
