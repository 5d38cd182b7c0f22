package device

import (
	"context"
	"fmt"
	"time"

	"edgeagent/pkg/apis/shifu/v1alpha1"
	"edgeagent/pkg/logging"
)

// HealthCheck reports the current device phase. It is called on every tick of
// the monitoring loop with the loop's context; implementations that probe the
// device over the network should honor cancellation. Returning an error (or
// panicking) marks the tick failed and drives the resource phase to Failed.
type HealthCheck func(ctx context.Context) (v1alpha1.EdgeDevicePhase, error)

// DefaultInterval is the cadence between health checks when none is
// configured.
const DefaultInterval = 3 * time.Second

// Summary logging bounds: one summary line per summaryEveryChecks successful
// checks, and at least one whenever summaryMaxSilence has passed since the
// previous summary.
const (
	summaryEveryChecks = 20
	summaryMaxSilence  = 60 * time.Second
)

// healthMonitor runs the periodic check-and-reconcile loop for one device.
type healthMonitor struct {
	deviceName string
	reconciler *phaseReconciler
	metrics    *Metrics
	check      HealthCheck

	// checksSinceSummary counts successful checks since the last
	// count-triggered summary. Time-triggered summaries do not reset it.
	checksSinceSummary int

	// lastSummary is when the previous summary was logged. The zero value
	// makes the very first check log a summary.
	lastSummary time.Time
}

// Run executes the loop until the context is cancelled. Without a registered
// health check it logs a warning and returns immediately.
func (m *healthMonitor) Run(ctx context.Context, interval time.Duration) error {
	if m.check == nil {
		logging.Warn("monitor", "No health check registered for device %s, not starting", m.deviceName)
		return nil
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	logging.Info("monitor", "Starting health monitoring loop for device %s (interval %s)", m.deviceName, interval)

	// Do an initial check immediately
	m.tick(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Info("monitor", "Health monitoring loop stopped for device %s", m.deviceName)
			return ctx.Err()
		case <-ticker.C:
			m.tick(ctx)
		}
	}
}

// tick performs one health check and reconciles the result. A failed check
// does not advance the check counter; it surfaces as a best-effort Failed
// phase write instead.
func (m *healthMonitor) tick(ctx context.Context) {
	phase, err := m.runCheck(ctx)
	if err != nil {
		logging.Error("monitor", err, "Health check failed for device %s", m.deviceName)
		m.metrics.RecordHealthCheckFailure(err.Error())
		m.reconciler.Reconcile(ctx, v1alpha1.EdgeDeviceFailed)
		return
	}

	m.metrics.RecordHealthCheck(phase)
	m.checksSinceSummary++

	ok := m.reconciler.Reconcile(ctx, phase)

	m.maybeLogSummary(phase)

	if !ok {
		logging.Warn("monitor", "Failed to update EdgeDevice phase for device %s, continuing", m.deviceName)
	}
}

// runCheck invokes the callback, converting a panic into an error so a buggy
// health check cannot take down the owning process.
func (m *healthMonitor) runCheck(ctx context.Context) (phase v1alpha1.EdgeDevicePhase, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("health check panicked: %v", r)
		}
	}()
	return m.check(ctx)
}

// maybeLogSummary writes the periodic one-line status summary. Only the count
// trigger resets the counter, so a time-triggered summary does not postpone
// the next count-based one.
func (m *healthMonitor) maybeLogSummary(phase v1alpha1.EdgeDevicePhase) {
	now := time.Now()
	countTriggered := m.checksSinceSummary >= summaryEveryChecks
	timeTriggered := now.Sub(m.lastSummary) > summaryMaxSilence

	if !countTriggered && !timeTriggered {
		return
	}

	logging.Info("monitor", "Health check #%d for device %s: device status = %s",
		m.metrics.Snapshot().HealthChecks, m.deviceName, phase)

	m.lastSummary = now
	if countTriggered {
		m.checksSinceSummary = 0
	}
}
