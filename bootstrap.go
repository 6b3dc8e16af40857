package cask

import (
	"context"
	"fmt"
	"time"
)

// Bootstrap seeds roles and users that do not yet exist. It is idempotent:
// records already present are left untouched, never overwritten, so hosts
// can run it unconditionally at every startup.
//
// Seed users must reference a role that exists after the role seeding pass.
func (e *Engine) Bootstrap(ctx context.Context, roles map[string]int, users []SeedUser) error {
	if !e.ready() {
		return ErrEngineNotReady
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	current, err := e.store.LoadRoles()
	if err != nil {
		return fmt.Errorf("load roles: %w", err)
	}

	rolesAdded := 0
	for name, level := range roles {
		if level < 0 {
			return fmt.Errorf("role level cannot be negative: %q=%d", name, level)
		}
		if _, exists := current[name]; exists {
			continue
		}
		current[name] = level
		rolesAdded++
	}
	if rolesAdded > 0 {
		if err := e.store.SaveRoles(current); err != nil {
			return fmt.Errorf("save roles: %w", err)
		}
	}

	existing, err := e.store.LoadUsers()
	if err != nil {
		return fmt.Errorf("load users: %w", err)
	}

	usersAdded := 0
	for _, seed := range users {
		username := e.normalize(seed.Username)
		if _, exists := existing[username]; exists {
			continue
		}
		if _, ok := current[seed.Role]; !ok {
			return fmt.Errorf("%w: %q for seed user %q", ErrRoleNotFound, seed.Role, username)
		}

		hash, err := e.hasher.Hash(username, seed.Password)
		if err != nil {
			return fmt.Errorf("hash seed password for %q: %w", username, err)
		}

		existing[username] = User{
			Role:         seed.Role,
			PasswordHash: hash,
			Email:        seed.Email,
			Description:  seed.Description,
			CreatedAt:    time.Now().UTC(),
		}
		usersAdded++
	}
	if usersAdded > 0 {
		if err := e.store.SaveUsers(existing); err != nil {
			return fmt.Errorf("save users: %w", err)
		}
	}

	e.emitAudit(ctx, auditEventBootstrap, true, "", "", nil, func() map[string]string {
		return map[string]string{
			"roles_added": fmt.Sprint(rolesAdded),
			"users_added": fmt.Sprint(usersAdded),
		}
	})
	return nil
}
