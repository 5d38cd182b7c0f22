package device

import (
	"context"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/client-go/kubernetes"

	"edgeagent/pkg/apis/shifu/v1alpha1"
	"edgeagent/pkg/logging"
)

// reasonPhaseChanged is the Event reason attached to phase transitions.
const reasonPhaseChanged = "PhaseChanged"

// eventRecorder emits Kubernetes Events against the EdgeDevice when its phase
// transitions, so `kubectl describe` shows the device history. Recording is
// best effort: failures are logged and never affect reconciliation.
type eventRecorder struct {
	client    kubernetes.Interface
	namespace string
}

// RecordTransition emits one Event for a phase transition. Transitions into
// Failed are warnings, everything else is normal.
func (e *eventRecorder) RecordTransition(ctx context.Context, obj *unstructured.Unstructured, from, to v1alpha1.EdgeDevicePhase) {
	if e == nil || e.client == nil {
		return
	}

	eventType := corev1.EventTypeNormal
	if to == v1alpha1.EdgeDeviceFailed {
		eventType = corev1.EventTypeWarning
	}

	fromLabel := string(from)
	if fromLabel == "" {
		fromLabel = "<none>"
	}

	event := &corev1.Event{
		ObjectMeta: metav1.ObjectMeta{
			GenerateName: obj.GetName() + "-",
			Namespace:    e.namespace,
		},
		InvolvedObject: corev1.ObjectReference{
			APIVersion: obj.GetAPIVersion(),
			Kind:       obj.GetKind(),
			Name:       obj.GetName(),
			Namespace:  e.namespace,
			UID:        obj.GetUID(),
		},
		Reason:         reasonPhaseChanged,
		Message:        fmt.Sprintf("Device phase changed from %s to %s", fromLabel, to),
		Type:           eventType,
		Source:         corev1.EventSource{Component: "edgeagent"},
		FirstTimestamp: metav1.NewTime(time.Now()),
		LastTimestamp:  metav1.NewTime(time.Now()),
		Count:          1,
	}

	if _, err := e.client.CoreV1().Events(e.namespace).Create(ctx, event, metav1.CreateOptions{}); err != nil {
		logging.Debug("device", "Failed to record phase transition event for %s/%s: %v", e.namespace, obj.GetName(), err)
	}
}
