package cask

import (
	"sync/atomic"
)

// MetricID identifies one engine counter.
type MetricID uint16

const (
	MetricLoginSuccess MetricID = iota
	MetricLoginFailure
	MetricLoginRateLimited
	MetricValidateSuccess
	MetricValidateExpired
	MetricValidateRejected
	MetricAuthorizeAllowed
	MetricAuthorizeDenied
	MetricSessionCreated
	MetricSessionInvalidated
	MetricLogout
	MetricLogoutAll
	MetricUserRegistered
	MetricUserDeleted
	MetricRoleRegistered
	MetricRoleDeleted
	MetricPasswordChangeSuccess
	MetricPasswordChangeFailure
	metricIDCount
)

var metricNames = [metricIDCount]string{
	MetricLoginSuccess:          "login_success",
	MetricLoginFailure:          "login_failure",
	MetricLoginRateLimited:      "login_rate_limited",
	MetricValidateSuccess:       "validate_success",
	MetricValidateExpired:       "validate_expired",
	MetricValidateRejected:      "validate_rejected",
	MetricAuthorizeAllowed:      "authorize_allowed",
	MetricAuthorizeDenied:       "authorize_denied",
	MetricSessionCreated:        "session_created",
	MetricSessionInvalidated:    "session_invalidated",
	MetricLogout:                "logout",
	MetricLogoutAll:             "logout_all",
	MetricUserRegistered:        "user_registered",
	MetricUserDeleted:           "user_deleted",
	MetricRoleRegistered:        "role_registered",
	MetricRoleDeleted:           "role_deleted",
	MetricPasswordChangeSuccess: "password_change_success",
	MetricPasswordChangeFailure: "password_change_failure",
}

// MetricName returns the stable snake_case name of a counter, used by
// exporters. Unknown IDs yield the empty string.
func MetricName(id MetricID) string {
	if id >= metricIDCount {
		return ""
	}
	return metricNames[id]
}

const cacheLineSize = 64

// paddedCounter keeps each counter on its own cache line so concurrent
// increments of different counters never contend.
type paddedCounter struct {
	value uint64
	_     [cacheLineSize - 8]byte
}

// Metrics is a fixed set of lock-free counters.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]paddedCounter
}

// MetricsSnapshot is a point-in-time copy of every counter.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// NewMetrics creates the counter set. A disabled set ignores increments
// and snapshots to zeroes.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Enabled reports whether counters are being recorded.
func (m *Metrics) Enabled() bool {
	return m != nil && m.enabled
}

// Inc increments the counter for id.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	atomic.AddUint64(&m.counters[id].value, 1)
}

// Snapshot copies every counter. Individual reads are atomic; the snapshot
// as a whole is not a consistent cut across counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, metricIDCount),
	}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = atomic.LoadUint64(&m.counters[id].value)
	}
	return snap
}
