// Package device implements the in-process agent that mirrors one managed
// device as an EdgeDevice resource in a Kubernetes control plane.
//
// The agent owns exactly one field of the mirrored resource:
// status.edgedevicephase. A registered health check computes the device phase
// on a fixed cadence and the agent reconciles the remote field toward it,
// patching only when the value actually changes. Reads of the device spec
// (address, protocol) degrade to empty values so consumers never have to
// handle transport errors on the hot path.
//
// The resource coordinate (group, version, plural) is runtime configuration,
// which is why all remote access goes through the dynamic client rather than
// a compiled-in typed client. Credentials resolve from the in-cluster service
// account first and fall back to the local kubeconfig profile.
//
// Typical usage:
//
//	agent, err := device.NewFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := agent.Setup(ctx, func(ctx context.Context) (v1alpha1.EdgeDevicePhase, error) {
//	    if deviceReachable(ctx) {
//	        return v1alpha1.EdgeDeviceRunning, nil
//	    }
//	    return v1alpha1.EdgeDeviceFailed, nil
//	}); err != nil {
//	    log.Fatal(err)
//	}
//	if err := agent.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
//	    log.Fatal(err)
//	}
package device
