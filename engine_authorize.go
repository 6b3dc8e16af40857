package cask

import (
	"context"
	"fmt"
)

// Authorize reports whether username's role level meets the threshold of
// requiredRole. It answers false for unknown users, unknown roles, and any
// store failure — authorization never errs on the permissive side.
func (e *Engine) Authorize(username, requiredRole string) bool {
	if !e.ready() {
		return false
	}
	username = e.normalize(username)

	roles, err := e.store.LoadRoles()
	if err != nil {
		e.logger.Warn("authorize role load failed", "error", err)
		return false
	}
	required, ok := roles[requiredRole]
	if !ok {
		e.metricInc(MetricAuthorizeDenied)
		return false
	}

	users, err := e.store.LoadUsers()
	if err != nil {
		e.logger.Warn("authorize user load failed", "error", err)
		return false
	}
	user, ok := users[username]
	if !ok {
		e.metricInc(MetricAuthorizeDenied)
		return false
	}

	level, ok := roles[user.Role]
	if !ok || level < required {
		e.metricInc(MetricAuthorizeDenied)
		return false
	}

	e.metricInc(MetricAuthorizeAllowed)
	return true
}

// Require validates the session token and then enforces the role
// threshold in one call, so hosts branch exactly once: validation failures
// surface as [ErrSessionExpired] or [ErrSessionInvalid], an insufficient
// level as [ErrPermissionDenied].
func (e *Engine) Require(ctx context.Context, tokenStr, requiredRole string) (*AuthResult, error) {
	result, err := e.Validate(ctx, tokenStr)
	if err != nil {
		return nil, err
	}

	roles, err := e.store.LoadRoles()
	if err != nil {
		return nil, fmt.Errorf("load roles: %w", err)
	}
	required, ok := roles[requiredRole]
	if !ok || result.Level < required {
		e.metricInc(MetricAuthorizeDenied)
		e.emitAudit(ctx, auditEventValidateRejected, false, result.Username, result.SessionID, ErrPermissionDenied, func() map[string]string {
			return map[string]string{"required_role": requiredRole}
		})
		return nil, ErrPermissionDenied
	}

	e.metricInc(MetricAuthorizeAllowed)
	return result, nil
}
