package device

import (
	"context"
	"encoding/json"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/client-go/dynamic"

	"edgeagent/pkg/apis/shifu/v1alpha1"
	"edgeagent/pkg/logging"
)

// StatusPatchMode selects how phase updates are written to the control plane.
type StatusPatchMode string

const (
	// StatusPatchAuto tries the status subresource first and falls back to a
	// whole-object patch when the CRD does not serve the subresource.
	StatusPatchAuto StatusPatchMode = "auto"

	// StatusPatchSubresource always patches through the status subresource.
	StatusPatchSubresource StatusPatchMode = "subresource"

	// StatusPatchObject always patches the whole object.
	StatusPatchObject StatusPatchMode = "object"
)

// phaseField is the status field the agent owns on the EdgeDevice resource.
const phaseField = "edgedevicephase"

// resourceClient performs the raw reads and status writes for one EdgeDevice
// through the dynamic API. The dynamic client is required here: group,
// version, and resource plural are runtime configuration, so no compiled-in
// typed client can address the resource.
type resourceClient struct {
	client    dynamic.Interface
	gvr       schema.GroupVersionResource
	namespace string
	name      string
	patchMode StatusPatchMode
}

// Fetch reads the current EdgeDevice object.
func (r *resourceClient) Fetch(ctx context.Context) (*unstructured.Unstructured, error) {
	obj, err := r.client.Resource(r.gvr).Namespace(r.namespace).Get(ctx, r.name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, NewNotFoundError(r.namespace, r.name, err)
		}
		return nil, NewTransportError("fetch edgedevice", err)
	}
	return obj, nil
}

// PatchStatus writes the phase with a merge patch that touches nothing but
// the agent-owned status field.
func (r *resourceClient) PatchStatus(ctx context.Context, phase v1alpha1.EdgeDevicePhase) error {
	body, err := json.Marshal(map[string]interface{}{
		"status": map[string]interface{}{
			phaseField: string(phase),
		},
	})
	if err != nil {
		return fmt.Errorf("encoding status patch: %w", err)
	}

	switch r.patchMode {
	case StatusPatchSubresource:
		return r.patch(ctx, body, "status")
	case StatusPatchObject:
		return r.patch(ctx, body)
	default:
		err := r.patch(ctx, body, "status")
		if err == nil {
			return nil
		}
		if shouldFallBackToObjectPatch(err) {
			logging.Debug("device", "Status subresource unavailable for %s/%s, patching whole object", r.namespace, r.name)
			return r.patch(ctx, body)
		}
		return err
	}
}

func (r *resourceClient) patch(ctx context.Context, body []byte, subresources ...string) error {
	_, err := r.client.Resource(r.gvr).Namespace(r.namespace).Patch(ctx, r.name, types.MergePatchType, body, metav1.PatchOptions{}, subresources...)
	if err != nil {
		if apierrors.IsNotFound(err) {
			return NewNotFoundError(r.namespace, r.name, err)
		}
		return NewTransportError("patch edgedevice status", err)
	}
	return nil
}

// shouldFallBackToObjectPatch reports whether a subresource patch failed in a
// way a whole-object patch could still serve. CRDs installed without the
// status subresource answer NotFound or MethodNotSupported on the status
// endpoint; a genuinely missing object fails the fallback patch with the same
// NotFound, so the caller still observes the right error.
func shouldFallBackToObjectPatch(err error) bool {
	return IsNotFound(err) || apierrors.IsMethodNotSupported(err)
}

// observedPhase extracts status.edgedevicephase from a raw object. Absent or
// malformed values come back as the empty phase.
func observedPhase(obj *unstructured.Unstructured) v1alpha1.EdgeDevicePhase {
	phase, found, err := unstructured.NestedString(obj.Object, "status", phaseField)
	if err != nil || !found {
		return ""
	}
	return v1alpha1.EdgeDevicePhase(phase)
}
