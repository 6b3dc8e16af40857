package cask

import (
	"context"
	"fmt"
	"time"
)

// Roles returns a copy of the role collection.
func (e *Engine) Roles() (map[string]int, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	return e.store.LoadRoles()
}

// Users returns a copy of the user collection, keyed by username.
func (e *Engine) Users() (map[string]User, error) {
	if !e.ready() {
		return nil, ErrEngineNotReady
	}
	return e.store.LoadUsers()
}

// RegisterRole creates a role with the given authorization level.
func (e *Engine) RegisterRole(ctx context.Context, name string, level int) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	if level < 0 {
		return fmt.Errorf("role level cannot be negative: %d", level)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	roles, err := e.store.LoadRoles()
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	if _, exists := roles[name]; exists {
		return fmt.Errorf("%w: %q", ErrRoleExists, name)
	}

	roles[name] = level
	if err := e.store.SaveRoles(roles); err != nil {
		return fmt.Errorf("save roles: %w", err)
	}

	e.metricInc(MetricRoleRegistered)
	e.emitAudit(ctx, auditEventRoleRegistered, true, "", "", nil, func() map[string]string {
		return map[string]string{"role": name, "level": fmt.Sprint(level)}
	})
	return nil
}

// DeleteRole removes a role. A role still referenced by any user cannot be
// deleted; drop or reassign the users first.
func (e *Engine) DeleteRole(ctx context.Context, name string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	roles, err := e.store.LoadRoles()
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	if _, exists := roles[name]; !exists {
		return fmt.Errorf("%w: %q", ErrRoleNotFound, name)
	}

	users, err := e.store.LoadUsers()
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	for username, user := range users {
		if user.Role == name {
			return fmt.Errorf("%w: %q held by %q", ErrRoleInUse, name, username)
		}
	}

	delete(roles, name)
	if err := e.store.SaveRoles(roles); err != nil {
		return fmt.Errorf("save roles: %w", err)
	}

	e.metricInc(MetricRoleDeleted)
	e.emitAudit(ctx, auditEventRoleDeleted, true, "", "", nil, func() map[string]string {
		return map[string]string{"role": name}
	})
	return nil
}

// RegisterUser creates an account with a freshly hashed password. The role
// must already exist.
func (e *Engine) RegisterUser(ctx context.Context, username, password, role, email, description string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	username = e.normalize(username)

	e.mu.Lock()
	defer e.mu.Unlock()

	roles, err := e.store.LoadRoles()
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}
	if _, exists := roles[role]; !exists {
		return fmt.Errorf("%w: %q", ErrRoleNotFound, role)
	}

	users, err := e.store.LoadUsers()
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if _, exists := users[username]; exists {
		return fmt.Errorf("%w: %q", ErrUserExists, username)
	}

	hash, err := e.hasher.Hash(username, password)
	if err != nil {
		return err
	}

	users[username] = User{
		Role:         role,
		PasswordHash: hash,
		Email:        email,
		Description:  description,
		CreatedAt:    time.Now().UTC(),
	}
	if err := e.store.SaveUsers(users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	e.metricInc(MetricUserRegistered)
	e.emitAudit(ctx, auditEventUserRegistered, true, username, "", nil, func() map[string]string {
		return map[string]string{"role": role}
	})
	return nil
}

// DeleteUser removes an account and revokes its live sessions.
func (e *Engine) DeleteUser(ctx context.Context, username string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	username = e.normalize(username)

	e.mu.Lock()
	defer e.mu.Unlock()

	users, err := e.store.LoadUsers()
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	if _, exists := users[username]; !exists {
		return fmt.Errorf("%w: %q", ErrUserNotFound, username)
	}

	delete(users, username)
	if err := e.store.SaveUsers(users); err != nil {
		return fmt.Errorf("save users: %w", err)
	}

	// Validation already fails closed for removed accounts; revocation here
	// just keeps the registry from carrying dead records.
	if err := e.registry.DeleteAllForUser(ctx, username); err != nil {
		e.logger.Warn("session revocation after user deletion failed", "username", username, "error", err)
	}

	e.metricInc(MetricUserDeleted)
	e.emitAudit(ctx, auditEventUserDeleted, true, username, "", nil, nil)
	return nil
}

// ChangePassword verifies the current password, stores a fresh hash of the
// new one, and revokes every live session of the account.
func (e *Engine) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	if !e.ready() {
		return ErrEngineNotReady
	}
	username = e.normalize(username)

	e.mu.Lock()
	defer e.mu.Unlock()

	users, err := e.store.LoadUsers()
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}
	user, exists := users[username]
	if !exists {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, username, "", ErrUserNotFound, nil)
		return fmt.Errorf("%w: %q", ErrUserNotFound, username)
	}

	ok, verr := e.hasher.Verify(username, oldPassword, user.PasswordHash)
	if verr != nil || !ok {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, username, "", ErrInvalidCredentials, func() map[string]string {
			return map[string]string{"reason": "old_password_mismatch"}
		})
		return ErrInvalidCredentials
	}

	hash, err := e.hasher.Hash(username, newPassword)
	if err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, username, "", err, nil)
		return err
	}

	user.PasswordHash = hash
	users[username] = user
	if err := e.store.SaveUsers(users); err != nil {
		e.metricInc(MetricPasswordChangeFailure)
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, username, "", err, nil)
		return fmt.Errorf("save users: %w", err)
	}

	// Sessions established under the old password do not survive it.
	if err := e.registry.DeleteAllForUser(ctx, username); err != nil {
		e.emitAudit(ctx, auditEventPasswordChangeFailure, false, username, "", err, func() map[string]string {
			return map[string]string{"reason": "session_revocation_failed"}
		})
		return err
	}

	if e.limiter != nil {
		if err := e.limiter.ResetLogin(ctx, username); err != nil {
			e.logger.Warn("login limiter reset failed after password change", "error", err)
		}
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.metricInc(MetricSessionInvalidated)
	e.emitAudit(ctx, auditEventPasswordChangeSuccess, true, username, "", nil, nil)
	return nil
}
