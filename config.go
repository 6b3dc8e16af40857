package cask

import (
	"errors"
	"time"
)

// Config defines the engine's policy surface.
//
// Config instances are intended to be configured during initialization and
// then treated as immutable.
type Config struct {
	Session  SessionConfig
	Token    TokenConfig
	Password PasswordConfig
	Security SecurityConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// SessionConfig governs session lifetime and registry key layout.
type SessionConfig struct {
	// Timeout is the session lifetime. Zero is honored literally: every
	// session is expired at its issuance instant, so the next validation
	// fails. Useful for hosts that want login to prove credentials without
	// establishing a durable session.
	Timeout time.Duration

	// RedisPrefix namespaces registry keys when a Redis client is
	// configured. Defaults to "cask".
	RedisPrefix string
}

// TokenConfig holds the signing material for session tokens.
type TokenConfig struct {
	// SigningKey is the HMAC-SHA256 key. Required.
	SigningKey []byte

	Issuer string

	// Leeway tolerates clock drift between issuer and validator. Capped at
	// two minutes.
	Leeway time.Duration
}

// PasswordConfig holds the argon2id cost parameters and credential policy.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32

	// MinPasswordBytes rejects short passwords at registration and password
	// change. Zero means no minimum: the empty password is an ordinary
	// credential.
	MinPasswordBytes int

	// UpgradeOnLogin rehashes a verified password when its stored digest
	// was produced with weaker parameters than the current configuration.
	UpgradeOnLogin bool
}

// SecurityConfig holds identity normalization and throttling policy.
type SecurityConfig struct {
	// NormalizeUsernames lowercases usernames on every operation, making
	// identities case-insensitive. Off by default: usernames compare
	// byte-for-byte.
	NormalizeUsernames bool

	// MaxLoginAttempts bounds consecutive failed logins per identifier.
	// Zero disables throttling. Enforcement requires a Redis client; with
	// no client the limiter is inert.
	MaxLoginAttempts int

	// LoginCooldown is the window after which the failed-login counter
	// resets.
	LoginCooldown time.Duration
}

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int

	// DropIfFull sheds events when the buffer is full instead of blocking
	// the emitting operation. Dropped counts are observable via
	// [Engine.AuditDropped].
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled bool
}

func defaultConfig() Config {
	return Config{
		Session: SessionConfig{
			Timeout:     30 * time.Minute,
			RedisPrefix: "cask",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Security: SecurityConfig{
			MaxLoginAttempts: 10,
			LoginCooldown:    15 * time.Minute,
		},
		Audit: AuditConfig{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate reports the first policy violation in the configuration.
// Password parameters are validated separately by the hasher.
func (c Config) Validate() error {
	if len(c.Token.SigningKey) == 0 {
		return errors.New("token signing key required")
	}
	if c.Session.Timeout < 0 {
		return errors.New("session timeout cannot be negative")
	}
	if c.Token.Leeway < 0 {
		return errors.New("token leeway cannot be negative")
	}
	if c.Security.MaxLoginAttempts < 0 {
		return errors.New("max login attempts cannot be negative")
	}
	if c.Security.MaxLoginAttempts > 0 && c.Security.LoginCooldown <= 0 {
		return errors.New("login cooldown required when throttling is enabled")
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return errors.New("audit buffer size cannot be negative")
	}
	return nil
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.Token.SigningKey = cloneBytes(cfg.Token.SigningKey)
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
