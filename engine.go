package cask

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/caskauth/cask/internal/rate"
	"github.com/caskauth/cask/password"
	"github.com/caskauth/cask/session"
	"github.com/caskauth/cask/token"
)

// Engine is the authentication and authorization core. Build one with
// [New]; a zero Engine is not usable.
//
// Engine instances are safe for concurrent use. Every operation reads the
// store fresh, so an engine observes external edits to the collections on
// its next call.
type Engine struct {
	config   Config
	store    Store
	hasher   *password.Hasher
	tokens   *token.Manager
	registry session.Registry
	limiter  *rate.Limiter
	audit    *auditDispatcher
	metrics  *Metrics
	logger   *slog.Logger

	// mu serializes read-modify-write cycles against the store. The store
	// itself only serializes individual saves; without this two concurrent
	// RegisterUser calls could each load, extend, and save, losing one
	// record.
	mu sync.Mutex
}

// Close flushes and stops the audit dispatcher. The engine must not be
// used afterwards.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// AuditDropped reports how many audit events were shed because the buffer
// was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

// MetricsSnapshot copies the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

func (e *Engine) ready() bool {
	return e != nil && e.store != nil && e.hasher != nil && e.tokens != nil && e.registry != nil
}

// normalize applies the configured username normalization. Identities are
// byte-for-byte by default.
func (e *Engine) normalize(username string) string {
	if e.config.Security.NormalizeUsernames {
		return strings.ToLower(username)
	}
	return username
}
