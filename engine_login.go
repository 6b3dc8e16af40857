package cask

import (
	"context"
	"errors"
	"fmt"

	"github.com/caskauth/cask/internal/rate"
	"github.com/caskauth/cask/session"
)

// Login verifies the username/password pair and establishes a session.
// Unknown-user and wrong-password failures are indistinguishable: both
// return [ErrInvalidCredentials] and both cost one full hash computation.
//
// The empty string is an ordinary username and an ordinary password; a
// stored account with empty credentials authenticates like any other.
func (e *Engine) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	username = e.normalize(username)

	if err := e.checkLoginBudget(ctx, username); err != nil {
		return nil, err
	}

	users, err := e.store.LoadUsers()
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	user, exists := users[username]
	if !exists {
		// Burn the same hashing cost as a real verification so timing does
		// not reveal whether the account exists.
		e.hasher.DummyVerify(username, password)
		return nil, e.failLogin(ctx, username, "unknown_user")
	}

	ok, verr := e.hasher.Verify(username, password, user.PasswordHash)
	if verr != nil || !ok {
		return nil, e.failLogin(ctx, username, "password_mismatch")
	}

	if e.config.Password.UpgradeOnLogin {
		e.upgradeHash(username, password, user)
	}

	signed, claims, err := e.tokens.Issue(username, user.Role)
	if err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, username, "", err, nil)
		return nil, err
	}

	rec := &session.Record{
		SessionID: claims.SessionID(),
		Username:  username,
		Role:      user.Role,
		CreatedAt: claims.IssuedAt.Unix(),
		ExpiresAt: claims.ExpiresAt.Unix(),
	}
	if err := e.registry.Save(ctx, rec, e.config.Session.Timeout); err != nil {
		e.metricInc(MetricLoginFailure)
		e.emitAudit(ctx, auditEventLoginFailure, false, username, rec.SessionID, err, nil)
		return nil, err
	}

	if e.limiter != nil {
		// Best effort: a stale failure counter must not block a login that
		// already proved its credentials.
		if err := e.limiter.ResetLogin(ctx, username); err != nil {
			e.logger.Warn("login limiter reset failed", "error", err)
		}
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.emitAudit(ctx, auditEventLoginSuccess, true, username, rec.SessionID, nil, nil)

	return &LoginResult{
		Token:     signed,
		SessionID: rec.SessionID,
		Username:  username,
		Role:      user.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (e *Engine) checkLoginBudget(ctx context.Context, username string) error {
	if e.limiter == nil {
		return nil
	}

	err := e.limiter.CheckLogin(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, rate.ErrRateLimited) {
		// Counter backend loss fails closed: letting attempts through
		// unthrottled would defeat the budget exactly when it matters.
		e.logger.Warn("login limiter unavailable", "error", err)
	}
	e.metricInc(MetricLoginRateLimited)
	e.emitAudit(ctx, auditEventLoginRateLimited, false, username, "", ErrLoginRateLimited, nil)
	return ErrLoginRateLimited
}

func (e *Engine) failLogin(ctx context.Context, username, reason string) error {
	if e.limiter != nil {
		if err := e.limiter.IncrementLogin(ctx, username); err != nil && !errors.Is(err, rate.ErrRateLimited) {
			e.logger.Warn("login limiter increment failed", "error", err)
		}
	}
	e.metricInc(MetricLoginFailure)
	e.emitAudit(ctx, auditEventLoginFailure, false, username, "", ErrInvalidCredentials, func() map[string]string {
		return map[string]string{"reason": reason}
	})
	return ErrInvalidCredentials
}

// upgradeHash rehashes a verified password whose stored digest predates the
// current cost parameters. Best effort: failures are logged, never surfaced.
func (e *Engine) upgradeHash(username, plaintext string, user User) {
	needs, err := e.hasher.NeedsUpgrade(user.PasswordHash)
	if err != nil || !needs {
		return
	}

	upgraded, err := e.hasher.Hash(username, plaintext)
	if err != nil {
		e.logger.Warn("password hash upgrade generation failed", "error", err)
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	users, err := e.store.LoadUsers()
	if err != nil {
		e.logger.Warn("password hash upgrade load failed", "error", err)
		return
	}
	current, ok := users[username]
	if !ok || current.PasswordHash != user.PasswordHash {
		// The account changed underneath us; do not clobber it.
		return
	}
	current.PasswordHash = upgraded
	users[username] = current
	if err := e.store.SaveUsers(users); err != nil {
		e.logger.Warn("password hash upgrade save failed", "error", err)
	}
}
