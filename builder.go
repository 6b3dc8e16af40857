package cask

import (
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/caskauth/cask/internal/rate"
	"github.com/caskauth/cask/password"
	"github.com/caskauth/cask/session"
	"github.com/caskauth/cask/token"
)

// Builder assembles an [Engine]. A builder is single-use: Build consumes it.
type Builder struct {
	config Config
	store  Store
	redis  *redis.Client
	sink   AuditSink
	logger *slog.Logger

	built bool
}

// New starts a builder with the default configuration.
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration. Call it before the targeted
// With* setters or it overwrites them.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithSigningKey sets the HMAC key for session tokens.
func (b *Builder) WithSigningKey(key []byte) *Builder {
	b.config.Token.SigningKey = cloneBytes(key)
	return b
}

// WithSessionTimeout sets the session lifetime.
func (b *Builder) WithSessionTimeout(timeout time.Duration) *Builder {
	b.config.Session.Timeout = timeout
	return b
}

// WithStore sets the persistence backend. Required.
func (b *Builder) WithStore(st Store) *Builder {
	b.store = st
	return b
}

// WithRedis enables the shared session registry and the login limiter.
// Without a client the engine runs an in-process registry and no limiter.
func (b *Builder) WithRedis(client *redis.Client) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets the audit destination. Events are only dispatched when
// Config.Audit.Enabled is set.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.sink = sink
	return b
}

// WithLogger sets the logger for operational warnings. Defaults to
// [slog.Default].
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	b.logger = l
	return b
}

// Build validates the configuration and assembles the engine.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.store == nil {
		return nil, errors.New("store required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:           cfg.Password.Memory,
		Time:             cfg.Password.Time,
		Parallelism:      cfg.Password.Parallelism,
		SaltLength:       cfg.Password.SaltLength,
		KeyLength:        cfg.Password.KeyLength,
		MinPasswordBytes: cfg.Password.MinPasswordBytes,
	})
	if err != nil {
		return nil, err
	}

	tokens, err := token.NewManager(token.Config{
		Key:    cloneBytes(cfg.Token.SigningKey),
		TTL:    cfg.Session.Timeout,
		Issuer: cfg.Token.Issuer,
		Leeway: cfg.Token.Leeway,
	})
	if err != nil {
		return nil, err
	}

	var registry session.Registry
	if b.redis != nil {
		registry = session.NewRedisRegistry(b.redis, cfg.Session.RedisPrefix)
	} else {
		registry = session.NewMemoryRegistry()
	}

	var limiter *rate.Limiter
	if b.redis != nil && cfg.Security.MaxLoginAttempts > 0 {
		limiter = rate.New(b.redis, rate.Config{
			MaxLoginAttempts: cfg.Security.MaxLoginAttempts,
			LoginCooldown:    cfg.Security.LoginCooldown,
		})
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	engine := &Engine{
		config:   cfg,
		store:    b.store,
		hasher:   hasher,
		tokens:   tokens,
		registry: registry,
		limiter:  limiter,
		audit:    newAuditDispatcher(cfg.Audit, b.sink),
		metrics:  NewMetrics(cfg.Metrics),
		logger:   logger,
	}

	b.built = true

	return engine, nil
}
