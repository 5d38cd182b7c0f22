package device

import (
	"sync"
	"time"

	"edgeagent/pkg/apis/shifu/v1alpha1"
	"edgeagent/pkg/logging"
	pkgstrings "edgeagent/pkg/strings"
)

// Metrics tracks health checking and phase update counters for one agent.
//
// This provides visibility into check cadence and status write health. High
// update failure rates may indicate:
//   - Kubernetes API server issues
//   - RBAC permission problems
//   - network connectivity issues
//   - a missing or misdefined EdgeDevice CRD
type Metrics struct {
	mu sync.RWMutex

	healthChecks        int64
	healthCheckFailures int64
	updateAttempts      int64
	updateSuccesses     int64
	updateFailures      int64
	lastPhase           v1alpha1.EdgeDevicePhase
	lastCheckError      string
	lastCheckAt         time.Time
	lastUpdateAt        time.Time
}

func newMetrics() *Metrics {
	return &Metrics{}
}

// RecordHealthCheck records a successful health check and its verdict.
func (m *Metrics) RecordHealthCheck(phase v1alpha1.EdgeDevicePhase) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.healthChecks++
	m.lastPhase = phase
	m.lastCheckError = ""
	m.lastCheckAt = time.Now()
}

// RecordHealthCheckFailure records a health check that returned an error or
// panicked. The reason is collapsed onto one line so multi-line errors stay
// readable in snapshots and logs.
func (m *Metrics) RecordHealthCheckFailure(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.healthCheckFailures++
	m.lastCheckError = pkgstrings.TruncateOneLine(reason, pkgstrings.DefaultReasonMaxLen)
	m.lastCheckAt = time.Now()
}

// RecordUpdateAttempt records a phase reconciliation attempt.
func (m *Metrics) RecordUpdateAttempt() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateAttempts++
	m.lastUpdateAt = time.Now()
}

// RecordUpdateSuccess records a reconciliation that left the remote phase
// matching the desired one.
func (m *Metrics) RecordUpdateSuccess(phase v1alpha1.EdgeDevicePhase) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateSuccesses++
	m.lastPhase = phase
}

// RecordUpdateFailure records a reconciliation that could not read or write
// the resource.
func (m *Metrics) RecordUpdateFailure(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.updateFailures++

	logging.Warn("metrics", "Phase update failure: %s (failures: %d)",
		pkgstrings.TruncateOneLine(reason, pkgstrings.DefaultReasonMaxLen), m.updateFailures)
}

// MetricsSnapshot is a read-only view of the agent's counters.
type MetricsSnapshot struct {
	HealthChecks        int64                    `json:"health_checks"`
	HealthCheckFailures int64                    `json:"health_check_failures"`
	UpdateAttempts      int64                    `json:"update_attempts"`
	UpdateSuccesses     int64                    `json:"update_successes"`
	UpdateFailures      int64                    `json:"update_failures"`
	LastPhase           v1alpha1.EdgeDevicePhase `json:"last_phase,omitempty"`
	LastCheckError      string                   `json:"last_check_error,omitempty"`
	LastCheckAt         time.Time                `json:"last_check_at,omitempty"`
	LastUpdateAt        time.Time                `json:"last_update_at,omitempty"`
}

// Snapshot returns a consistent copy of all counters.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return MetricsSnapshot{
		HealthChecks:        m.healthChecks,
		HealthCheckFailures: m.healthCheckFailures,
		UpdateAttempts:      m.updateAttempts,
		UpdateSuccesses:     m.updateSuccesses,
		UpdateFailures:      m.updateFailures,
		LastPhase:           m.lastPhase,
		LastCheckError:      m.lastCheckError,
		LastCheckAt:         m.lastCheckAt,
		LastUpdateAt:        m.lastUpdateAt,
	}
}
