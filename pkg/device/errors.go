package device

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// ConfigurationError represents a fatal problem with the agent's own setup:
// a missing device name, an unusable credential source, or an invalid option.
// Operations fail with a ConfigurationError before any remote call is made.
type ConfigurationError struct {
	// Reason describes what part of the configuration is unusable.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface for ConfigurationError.
func (e *ConfigurationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("configuration error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("configuration error: %s", e.Reason)
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// IsConfiguration checks if an error is a ConfigurationError using error
// unwrapping.
func IsConfiguration(err error) bool {
	var configurationErr *ConfigurationError
	return errors.As(err, &configurationErr)
}

// NewConfigurationError creates a new ConfigurationError with the specified
// reason and optional cause.
func NewConfigurationError(reason string, err error) *ConfigurationError {
	return &ConfigurationError{
		Reason: reason,
		Err:    err,
	}
}

// NotFoundError indicates the EdgeDevice resource this agent mirrors does not
// exist in the control plane.
//
// The error includes the resource coordinates for precise error reporting and
// wraps the underlying Kubernetes status error when one is available.
type NotFoundError struct {
	// Name is the EdgeDevice resource name that was not found.
	Name string

	// Namespace is the namespace that was searched.
	Namespace string

	// Err is the underlying Kubernetes API error, if any.
	Err error
}

// Error implements the error interface for NotFoundError.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("edgedevice %s/%s not found", e.Namespace, e.Name)
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *NotFoundError) Unwrap() error {
	return e.Err
}

// IsNotFound checks if an error indicates a missing EdgeDevice. It recognizes
// both this package's NotFoundError and a raw Kubernetes NotFound status
// error, supporting wrapped errors in either case.
//
// Example:
//
//	edgeDevice, err := agent.GetEdgeDevice(ctx)
//	if device.IsNotFound(err) {
//	    // The resource has not been applied to the cluster yet.
//	}
func IsNotFound(err error) bool {
	var notFoundErr *NotFoundError
	if errors.As(err, &notFoundErr) {
		return true
	}
	return apierrors.IsNotFound(err)
}

// NewNotFoundError creates a new NotFoundError for the given resource
// coordinates, wrapping the underlying API error.
func NewNotFoundError(namespace, name string, err error) *NotFoundError {
	return &NotFoundError{
		Name:      name,
		Namespace: namespace,
		Err:       err,
	}
}

// TransportError represents a remote API failure that is not a NotFound
// condition: connection refused, timeouts, authorization failures, malformed
// responses. The failed operation is recorded for log context.
type TransportError struct {
	// Op names the operation that failed (e.g. "fetch edgedevice").
	Op string

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface for TransportError.
func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause for use with errors.Is and errors.As.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransport checks if an error is a TransportError using error unwrapping.
func IsTransport(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}

// NewTransportError creates a new TransportError for the given operation.
func NewTransportError(op string, err error) *TransportError {
	return &TransportError{
		Op:  op,
		Err: err,
	}
}

// ErrNilHealthCheck is returned when a nil health check is registered.
var ErrNilHealthCheck = errors.New("health check must not be nil")
