// Package probe provides ready-made health checks for common device
// reachability patterns. The device package stays free of device I/O, so
// consumers wire one of these (or their own callback) into the monitoring
// loop.
package probe

import (
	"context"
	"errors"
	"net"
	"time"

	"edgeagent/pkg/apis/shifu/v1alpha1"
	"edgeagent/pkg/device"
)

// DefaultDialTimeout bounds a single TCP reachability probe.
const DefaultDialTimeout = 2 * time.Second

// Static returns a health check that always reports the given phase. Useful
// for smoke tests and for devices whose liveness is managed elsewhere.
func Static(phase v1alpha1.EdgeDevicePhase) device.HealthCheck {
	return func(ctx context.Context) (v1alpha1.EdgeDevicePhase, error) {
		return phase, nil
	}
}

// TCPDial returns a health check that reports Running while a TCP connection
// to address succeeds and Failed otherwise. A refused or timed-out dial is a
// verdict about the device, not a probe error. The dial honors both the
// timeout and the loop context.
func TCPDial(address string, timeout time.Duration) device.HealthCheck {
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}
	dialer := &net.Dialer{Timeout: timeout}

	return func(ctx context.Context) (v1alpha1.EdgeDevicePhase, error) {
		if address == "" {
			return v1alpha1.EdgeDeviceUnknown, errors.New("no device address to probe")
		}

		conn, err := dialer.DialContext(ctx, "tcp", address)
		if err != nil {
			return v1alpha1.EdgeDeviceFailed, nil
		}
		_ = conn.Close()
		return v1alpha1.EdgeDeviceRunning, nil
	}
}
