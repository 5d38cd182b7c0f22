package probe

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"edgeagent/pkg/apis/shifu/v1alpha1"
)

func TestStatic(t *testing.T) {
	phases := []v1alpha1.EdgeDevicePhase{
		v1alpha1.EdgeDevicePending,
		v1alpha1.EdgeDeviceRunning,
		v1alpha1.EdgeDeviceFailed,
		v1alpha1.EdgeDeviceUnknown,
	}

	for _, want := range phases {
		check := Static(want)
		got, err := check(context.Background())
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestTCPDialRunning(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer listener.Close()

	check := TCPDial(listener.Addr().String(), time.Second)
	phase, err := check(context.Background())
	require.NoError(t, err)
	assert.Equal(t, v1alpha1.EdgeDeviceRunning, phase)
}

func TestTCPDialFailed(t *testing.T) {
	// Grab a port that is then closed again so the dial is refused.
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	check := TCPDial(address, 500*time.Millisecond)
	phase, err := check(context.Background())
	require.NoError(t, err, "an unreachable device is a verdict, not a probe error")
	assert.Equal(t, v1alpha1.EdgeDeviceFailed, phase)
}

func TestTCPDialWithoutAddress(t *testing.T) {
	check := TCPDial("", time.Second)
	phase, err := check(context.Background())
	require.Error(t, err)
	assert.Equal(t, v1alpha1.EdgeDeviceUnknown, phase)
}
