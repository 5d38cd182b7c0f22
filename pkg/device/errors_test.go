package device

import (
	"errors"
	"fmt"
	"testing"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	"k8s.io/apimachinery/pkg/runtime/schema"
)

func TestConfigurationError(t *testing.T) {
	cause := errors.New("no such file")
	err := NewConfigurationError("no usable Kubernetes credentials", cause)

	if !IsConfiguration(err) {
		t.Error("Expected IsConfiguration to be true for ConfigurationError")
	}

	if !errors.Is(err, cause) {
		t.Error("Expected ConfigurationError to unwrap to its cause")
	}

	wrapped := fmt.Errorf("starting agent: %w", err)
	if !IsConfiguration(wrapped) {
		t.Error("Expected IsConfiguration to see through wrapping")
	}

	if IsConfiguration(errors.New("unrelated")) {
		t.Error("Expected IsConfiguration to be false for unrelated errors")
	}
}

func TestConfigurationErrorMessage(t *testing.T) {
	withCause := NewConfigurationError("bad option", errors.New("boom"))
	if withCause.Error() != "configuration error: bad option: boom" {
		t.Errorf("Unexpected message: %s", withCause.Error())
	}

	withoutCause := NewConfigurationError("bad option", nil)
	if withoutCause.Error() != "configuration error: bad option" {
		t.Errorf("Unexpected message: %s", withoutCause.Error())
	}
}

func TestIsNotFound(t *testing.T) {
	gr := schema.GroupResource{Group: "shifu.edgenesis.io", Resource: "edgedevices"}
	statusErr := apierrors.NewNotFound(gr, "thermometer")

	tests := []struct {
		name     string
		err      error
		expected bool
	}{
		{"typed not found", NewNotFoundError("devices", "thermometer", statusErr), true},
		{"wrapped typed not found", fmt.Errorf("fetching: %w", NewNotFoundError("devices", "thermometer", nil)), true},
		{"raw kubernetes not found", statusErr, true},
		{"wrapped raw not found", fmt.Errorf("fetching: %w", statusErr), true},
		{"transport error", NewTransportError("fetch edgedevice", errors.New("connection refused")), false},
		{"nil", nil, false},
		{"unrelated", errors.New("boom"), false},
	}

	for _, test := range tests {
		if got := IsNotFound(test.err); got != test.expected {
			t.Errorf("IsNotFound(%s) = %v, expected %v", test.name, got, test.expected)
		}
	}
}

func TestNotFoundErrorMessage(t *testing.T) {
	err := NewNotFoundError("devices", "thermometer", nil)
	if err.Error() != "edgedevice devices/thermometer not found" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestTransportError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewTransportError("fetch edgedevice", cause)

	if !IsTransport(err) {
		t.Error("Expected IsTransport to be true for TransportError")
	}

	if !errors.Is(err, cause) {
		t.Error("Expected TransportError to unwrap to its cause")
	}

	if IsTransport(NewNotFoundError("devices", "thermometer", nil)) {
		t.Error("Expected IsTransport to be false for NotFoundError")
	}

	if err.Error() != "fetch edgedevice: connection refused" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
}

func TestTransportErrorPreservesAPIStatus(t *testing.T) {
	// Wrapping a Kubernetes status error must not hide its reason from the
	// apimachinery helpers.
	gr := schema.GroupResource{Group: "shifu.edgenesis.io", Resource: "edgedevices"}
	forbidden := apierrors.NewForbidden(gr, "thermometer", errors.New("rbac"))

	wrapped := NewTransportError("patch edgedevice status", forbidden)
	if !apierrors.IsForbidden(wrapped) {
		t.Error("Expected apierrors.IsForbidden to see through TransportError")
	}
}
