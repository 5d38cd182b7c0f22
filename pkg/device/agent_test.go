package device

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	k8sfake "k8s.io/client-go/kubernetes/fake"

	"edgeagent/pkg/apis/shifu/v1alpha1"
)

// testDeviceName mirrors the device naming used against live clusters.
func testDeviceName() string {
	return "test-device-" + uuid.NewString()[:8]
}

func newTestAgent(t *testing.T, name string, objects ...runtime.Object) (*Agent, *dynamicfake.FakeDynamicClient) {
	t.Helper()
	client := newFakeDynamicClient(t, objects...)
	agent, err := New(Options{Name: name, Client: client})
	require.NoError(t, err)
	return agent, client
}

func countPatches(client *dynamicfake.FakeDynamicClient) int {
	patches := 0
	for _, action := range client.Actions() {
		if action.GetVerb() == "patch" {
			patches++
		}
	}
	return patches
}

func TestNewValidation(t *testing.T) {
	_, err := New(Options{})
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))

	_, err = New(Options{Name: "thermometer", StatusPatch: "bogus"})
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
}

func TestNewAppliesDefaults(t *testing.T) {
	agent, err := New(Options{Name: "thermometer"})
	require.NoError(t, err)

	assert.Equal(t, DefaultNamespace, agent.opts.Namespace)
	assert.Equal(t, DefaultGroup, agent.opts.Group)
	assert.Equal(t, DefaultVersion, agent.opts.Version)
	assert.Equal(t, DefaultPlural, agent.opts.Plural)
	assert.Equal(t, DefaultInterval, agent.opts.Interval)
	assert.Equal(t, StatusPatchAuto, agent.opts.StatusPatch)
	assert.False(t, agent.opts.RecordEvents)
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv(EnvDeviceName, "thermometer")
	t.Setenv(EnvDeviceNamespace, "factory")
	t.Setenv(EnvAPIGroup, "example.com")
	t.Setenv(EnvAPIVersion, "v1beta2")
	t.Setenv(EnvAPIPlural, "machines")
	t.Setenv(EnvStatusPatch, "object")
	t.Setenv(EnvRecordEvents, "true")

	agent, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "thermometer", agent.Name())
	assert.Equal(t, "factory", agent.Namespace())
	assert.Equal(t, "example.com", agent.opts.Group)
	assert.Equal(t, "v1beta2", agent.opts.Version)
	assert.Equal(t, "machines", agent.opts.Plural)
	assert.Equal(t, StatusPatchObject, agent.opts.StatusPatch)
	assert.True(t, agent.opts.RecordEvents)
}

func TestNewFromEnvDefaults(t *testing.T) {
	t.Setenv(EnvDeviceName, "thermometer")
	t.Setenv(EnvDeviceNamespace, "")
	t.Setenv(EnvAPIGroup, "")
	t.Setenv(EnvAPIVersion, "")
	t.Setenv(EnvAPIPlural, "")
	t.Setenv(EnvStatusPatch, "")
	t.Setenv(EnvRecordEvents, "")

	agent, err := NewFromEnv()
	require.NoError(t, err)

	assert.Equal(t, DefaultNamespace, agent.Namespace())
	assert.Equal(t, DefaultGroup, agent.opts.Group)
	assert.Equal(t, DefaultVersion, agent.opts.Version)
	assert.Equal(t, DefaultPlural, agent.opts.Plural)
	assert.Equal(t, StatusPatchAuto, agent.opts.StatusPatch)
}

func TestNewFromEnvMissingName(t *testing.T) {
	t.Setenv(EnvDeviceName, "")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
}

func TestNewFromEnvInvalidRecordEvents(t *testing.T) {
	t.Setenv(EnvDeviceName, "thermometer")
	t.Setenv(EnvRecordEvents, "not-a-bool")

	_, err := NewFromEnv()
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
}

func TestUpdatePhaseIsIdempotent(t *testing.T) {
	name := testDeviceName()
	agent, client := newTestAgent(t, name, newEdgeDeviceObject(name, DefaultNamespace, ""))

	ctx := context.Background()
	assert.True(t, agent.UpdatePhase(ctx, v1alpha1.EdgeDeviceRunning))
	assert.True(t, agent.UpdatePhase(ctx, v1alpha1.EdgeDeviceRunning))
	assert.True(t, agent.UpdatePhase(ctx, v1alpha1.EdgeDeviceRunning))

	assert.Equal(t, 1, countPatches(client), "repeated updates with an unchanged phase must write exactly once")
}

func TestUpdatePhaseRoundTrip(t *testing.T) {
	name := testDeviceName()
	agent, _ := newTestAgent(t, name, newEdgeDeviceObject(name, DefaultNamespace, ""))

	ctx := context.Background()
	phases := []v1alpha1.EdgeDevicePhase{
		v1alpha1.EdgeDeviceRunning,
		v1alpha1.EdgeDeviceFailed,
		v1alpha1.EdgeDevicePending,
		v1alpha1.EdgeDeviceUnknown,
	}

	for _, phase := range phases {
		require.True(t, agent.UpdatePhase(ctx, phase))

		edgeDevice, err := agent.GetEdgeDevice(ctx)
		require.NoError(t, err)
		assert.Equal(t, phase, edgeDevice.Status.EdgeDevicePhase)
	}
}

func TestUpdatePhaseMissingDevice(t *testing.T) {
	agent, client := newTestAgent(t, "missing-device")

	// A missing resource is reported, never raised.
	assert.False(t, agent.UpdatePhase(context.Background(), v1alpha1.EdgeDeviceRunning))
	assert.Zero(t, countPatches(client))
}

func TestGetEdgeDevice(t *testing.T) {
	name := testDeviceName()
	agent, _ := newTestAgent(t, name, newEdgeDeviceObject(name, DefaultNamespace, v1alpha1.EdgeDevicePending))

	edgeDevice, err := agent.GetEdgeDevice(context.Background())
	require.NoError(t, err)

	assert.Equal(t, name, edgeDevice.Name)
	require.NotNil(t, edgeDevice.Spec.Sku)
	assert.Equal(t, "TAS-WS-R0020", *edgeDevice.Spec.Sku)
	require.NotNil(t, edgeDevice.Spec.Address)
	assert.Equal(t, "192.168.15.48:9090", *edgeDevice.Spec.Address)
	assert.Equal(t, v1alpha1.EdgeDevicePending, edgeDevice.Status.EdgeDevicePhase)
}

func TestGetEdgeDeviceNotFound(t *testing.T) {
	agent, _ := newTestAgent(t, "missing-device")

	_, err := agent.GetEdgeDevice(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestAddressAndProtocol(t *testing.T) {
	name := testDeviceName()
	agent, _ := newTestAgent(t, name, newEdgeDeviceObject(name, DefaultNamespace, ""))

	ctx := context.Background()
	assert.Equal(t, "192.168.15.48:9090", agent.Address(ctx))
	assert.Equal(t, "HTTP", agent.Protocol(ctx))
}

func TestAddressDegradesToEmpty(t *testing.T) {
	ctx := context.Background()

	// Missing resource.
	missing, _ := newTestAgent(t, "missing-device")
	assert.Equal(t, "", missing.Address(ctx))
	assert.Equal(t, "", missing.Protocol(ctx))

	// Present resource without the optional fields.
	name := testDeviceName()
	obj := newEdgeDeviceObject(name, DefaultNamespace, "")
	unstructured.RemoveNestedField(obj.Object, "spec", "address")
	unstructured.RemoveNestedField(obj.Object, "spec", "protocol")

	agent, _ := newTestAgent(t, name, obj)
	assert.Equal(t, "", agent.Address(ctx))
	assert.Equal(t, "", agent.Protocol(ctx))
}

func TestRegisterHealthCheckNil(t *testing.T) {
	agent, _ := newTestAgent(t, "thermometer")

	err := agent.RegisterHealthCheck(nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNilHealthCheck)
}

func TestPhaseTransitionRecordsEvents(t *testing.T) {
	name := testDeviceName()
	client := newFakeDynamicClient(t, newEdgeDeviceObject(name, DefaultNamespace, ""))
	events := k8sfake.NewClientset()

	agent, err := New(Options{
		Name:         name,
		Client:       client,
		EventClient:  events,
		RecordEvents: true,
	})
	require.NoError(t, err)

	ctx := context.Background()
	require.True(t, agent.UpdatePhase(ctx, v1alpha1.EdgeDeviceRunning))
	require.True(t, agent.UpdatePhase(ctx, v1alpha1.EdgeDeviceRunning)) // unchanged, no event
	require.True(t, agent.UpdatePhase(ctx, v1alpha1.EdgeDeviceFailed))

	list, err := events.CoreV1().Events(DefaultNamespace).List(ctx, metav1.ListOptions{})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)

	var normal, warning int
	for _, item := range list.Items {
		assert.Equal(t, reasonPhaseChanged, item.Reason)
		assert.Equal(t, name, item.InvolvedObject.Name)
		switch item.Type {
		case corev1.EventTypeNormal:
			normal++
		case corev1.EventTypeWarning:
			warning++
		}
	}
	assert.Equal(t, 1, normal, "transition to Running should be a normal event")
	assert.Equal(t, 1, warning, "transition to Failed should be a warning event")
}

func TestMetricsSnapshot(t *testing.T) {
	name := testDeviceName()
	agent, _ := newTestAgent(t, name, newEdgeDeviceObject(name, DefaultNamespace, ""))

	ctx := context.Background()
	agent.UpdatePhase(ctx, v1alpha1.EdgeDeviceRunning)
	agent.UpdatePhase(ctx, v1alpha1.EdgeDeviceRunning)

	snapshot := agent.Metrics()
	assert.Equal(t, int64(2), snapshot.UpdateAttempts)
	assert.Equal(t, int64(2), snapshot.UpdateSuccesses)
	assert.Equal(t, int64(0), snapshot.UpdateFailures)
	assert.Equal(t, v1alpha1.EdgeDeviceRunning, snapshot.LastPhase)
}

func TestSetup(t *testing.T) {
	name := testDeviceName()
	agent, _ := newTestAgent(t, name, newEdgeDeviceObject(name, DefaultNamespace, ""))

	check := func(ctx context.Context) (v1alpha1.EdgeDevicePhase, error) {
		return v1alpha1.EdgeDeviceRunning, nil
	}
	require.NoError(t, agent.Setup(context.Background(), check))
}

func TestSetupRejectsNilCheck(t *testing.T) {
	name := testDeviceName()
	agent, _ := newTestAgent(t, name, newEdgeDeviceObject(name, DefaultNamespace, ""))

	err := agent.Setup(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNilHealthCheck)
}

func TestLogDeviceInfoDoesNotFail(t *testing.T) {
	name := testDeviceName()
	agent, _ := newTestAgent(t, name, newEdgeDeviceObject(name, DefaultNamespace, v1alpha1.EdgeDeviceRunning))
	agent.LogDeviceInfo(context.Background())

	// Logging info for a missing device degrades to an error log.
	missing, _ := newTestAgent(t, "missing-device")
	missing.LogDeviceInfo(context.Background())
}
