package app

import (
	"context"
	"fmt"
	"strings"

	"edgeagent/internal/probe"
	"edgeagent/pkg/apis/shifu/v1alpha1"
	"edgeagent/pkg/device"
	"edgeagent/pkg/logging"
)

// parsePhase maps a flag value onto an EdgeDevice phase, case-insensitively.
func parsePhase(value string) (v1alpha1.EdgeDevicePhase, error) {
	phases := []v1alpha1.EdgeDevicePhase{
		v1alpha1.EdgeDevicePending,
		v1alpha1.EdgeDeviceRunning,
		v1alpha1.EdgeDeviceFailed,
		v1alpha1.EdgeDeviceUnknown,
	}
	for _, phase := range phases {
		if strings.EqualFold(value, string(phase)) {
			return phase, nil
		}
	}
	return "", fmt.Errorf("unknown device phase %q", value)
}

// buildHealthCheck constructs the configured probe. The TCP target defaults
// to the resource's spec.address, resolved once at startup.
func (a *Application) buildHealthCheck(ctx context.Context) (device.HealthCheck, error) {
	switch a.config.Check {
	case CheckTCP:
		address := a.config.Address
		if address == "" {
			address = a.agent.Address(ctx)
		}
		if address == "" {
			return nil, fmt.Errorf("tcp check needs an address: none configured and the EdgeDevice spec carries none")
		}
		logging.Info("app", "Probing device %s over TCP at %s", a.agent.Name(), address)
		return probe.TCPDial(address, a.config.DialTimeout), nil
	default:
		phase, err := parsePhase(a.config.Phase)
		if err != nil {
			return nil, err
		}
		return probe.Static(phase), nil
	}
}
