package device

import (
	"context"

	"edgeagent/pkg/apis/shifu/v1alpha1"
	"edgeagent/pkg/logging"
)

// phaseReconciler drives status.edgedevicephase toward a desired value.
//
// Reconciliation is idempotent: the current phase is read first and the patch
// is skipped when the remote value already matches, so repeated calls with
// the same phase perform exactly one write. All failures are absorbed into
// the boolean result so the health loop never stops over a flaky API server.
type phaseReconciler struct {
	resource *resourceClient
	events   *eventRecorder
	metrics  *Metrics
}

// Reconcile makes the remote phase match desired. It reports whether the
// remote phase is known to match afterwards; a missing resource or a failed
// read or write yields false, never an error.
func (r *phaseReconciler) Reconcile(ctx context.Context, desired v1alpha1.EdgeDevicePhase) bool {
	r.metrics.RecordUpdateAttempt()

	obj, err := r.resource.Fetch(ctx)
	if err != nil {
		if IsNotFound(err) {
			logging.Warn("device", "EdgeDevice %s/%s not found, skipping phase update", r.resource.namespace, r.resource.name)
		} else {
			logging.Error("device", err, "Failed to fetch EdgeDevice %s/%s", r.resource.namespace, r.resource.name)
		}
		r.metrics.RecordUpdateFailure(err.Error())
		return false
	}

	current := observedPhase(obj)
	if current == desired {
		logging.Debug("device", "EdgeDevice %s/%s already in phase %s", r.resource.namespace, r.resource.name, desired)
		r.metrics.RecordUpdateSuccess(desired)
		return true
	}

	if err := r.resource.PatchStatus(ctx, desired); err != nil {
		logging.Error("device", err, "Failed to update phase for EdgeDevice %s/%s", r.resource.namespace, r.resource.name)
		r.metrics.RecordUpdateFailure(err.Error())
		return false
	}

	logging.Info("device", "EdgeDevice %s/%s phase updated to %s", r.resource.namespace, r.resource.name, desired)
	r.events.RecordTransition(ctx, obj, current, desired)
	r.metrics.RecordUpdateSuccess(desired)
	return true
}
