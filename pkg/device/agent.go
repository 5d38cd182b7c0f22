package device

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"

	"edgeagent/pkg/apis/shifu/v1alpha1"
	"edgeagent/pkg/logging"
)

// Environment variables consumed by NewFromEnv.
const (
	EnvDeviceName      = "EDGEDEVICE_NAME"
	EnvDeviceNamespace = "EDGEDEVICE_NAMESPACE"
	EnvAPIGroup        = "SHIFU_API_GROUP"
	EnvAPIVersion      = "SHIFU_API_VERSION"
	EnvAPIPlural       = "SHIFU_API_PLURAL"
	EnvStatusPatch     = "EDGEDEVICE_STATUS_PATCH"
	EnvRecordEvents    = "EDGEDEVICE_RECORD_EVENTS"
)

// Default coordinates of the mirrored resource.
const (
	DefaultNamespace = "devices"
	DefaultGroup     = "shifu.edgenesis.io"
	DefaultVersion   = "v1alpha1"
	DefaultPlural    = "edgedevices"
)

// Options configures a device Agent. The zero value of every field except
// Name is usable; defaults are applied by New.
type Options struct {
	// Name is the EdgeDevice resource name. Required.
	Name string

	// Namespace is where the resource lives. Defaults to DefaultNamespace.
	Namespace string

	// Group, Version, and Plural form the API coordinate of the EdgeDevice
	// resource. They default to DefaultGroup, DefaultVersion, and
	// DefaultPlural.
	Group   string
	Version string
	Plural  string

	// Interval is the health check cadence used by Run. Defaults to
	// DefaultInterval.
	Interval time.Duration

	// StatusPatch selects how phase writes reach the resource. Defaults to
	// StatusPatchAuto.
	StatusPatch StatusPatchMode

	// Kubeconfig optionally pins the kubeconfig file used when in-cluster
	// credentials are unavailable.
	Kubeconfig string

	// RecordEvents enables Kubernetes Events on phase transitions.
	RecordEvents bool

	// Client and EventClient inject pre-built API clients, primarily for
	// tests. When nil they are built from resolved credentials during
	// initialization.
	Client      dynamic.Interface
	EventClient kubernetes.Interface
}

// Agent mirrors one managed device as an EdgeDevice resource. All methods
// are safe for concurrent use.
type Agent struct {
	opts Options

	mu          sync.Mutex
	initialized bool
	check       HealthCheck
	resource    *resourceClient
	reconciler  *phaseReconciler

	metrics *Metrics
}

// New creates an Agent from explicit options. It validates the options and
// applies defaults; no remote call is made until Initialize or the first
// operation that needs the API.
func New(opts Options) (*Agent, error) {
	if opts.Name == "" {
		return nil, NewConfigurationError("device name is required", nil)
	}
	if opts.Namespace == "" {
		opts.Namespace = DefaultNamespace
	}
	if opts.Group == "" {
		opts.Group = DefaultGroup
	}
	if opts.Version == "" {
		opts.Version = DefaultVersion
	}
	if opts.Plural == "" {
		opts.Plural = DefaultPlural
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}

	switch opts.StatusPatch {
	case "":
		opts.StatusPatch = StatusPatchAuto
	case StatusPatchAuto, StatusPatchSubresource, StatusPatchObject:
	default:
		return nil, NewConfigurationError(fmt.Sprintf("invalid status patch mode %q", opts.StatusPatch), nil)
	}

	return &Agent{
		opts:    opts,
		metrics: newMetrics(),
	}, nil
}

// OptionsFromEnv reads the conventional environment variables into Options.
// EDGEDEVICE_NAME is required; everything else falls back to the package
// defaults when New applies them.
func OptionsFromEnv() (Options, error) {
	name := os.Getenv(EnvDeviceName)
	if name == "" {
		return Options{}, NewConfigurationError(EnvDeviceName+" environment variable is required", nil)
	}

	recordEvents := false
	if raw := os.Getenv(EnvRecordEvents); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return Options{}, NewConfigurationError(fmt.Sprintf("invalid %s value %q", EnvRecordEvents, raw), err)
		}
		recordEvents = parsed
	}

	return Options{
		Name:         name,
		Namespace:    os.Getenv(EnvDeviceNamespace),
		Group:        os.Getenv(EnvAPIGroup),
		Version:      os.Getenv(EnvAPIVersion),
		Plural:       os.Getenv(EnvAPIPlural),
		StatusPatch:  StatusPatchMode(os.Getenv(EnvStatusPatch)),
		RecordEvents: recordEvents,
	}, nil
}

// NewFromEnv creates an Agent from the environment, see OptionsFromEnv.
func NewFromEnv() (*Agent, error) {
	opts, err := OptionsFromEnv()
	if err != nil {
		return nil, err
	}
	return New(opts)
}

// Initialize resolves credentials and builds the API clients. It is safe to
// call more than once; later calls are no-ops. Operations initialize lazily
// on first use, so calling Initialize up front is only needed to surface
// credential problems early.
func (a *Agent) Initialize(ctx context.Context) error {
	_ = ctx
	return a.ensureInitialized()
}

func (a *Agent) ensureInitialized() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.initialized {
		return nil
	}

	dyn := a.opts.Client
	core := a.opts.EventClient
	if dyn == nil {
		built, err := newClients(a.opts.Kubeconfig)
		if err != nil {
			return err
		}
		dyn = built.dynamic
		if core == nil {
			core = built.core
		}
	}

	a.resource = &resourceClient{
		client: dyn,
		gvr: schema.GroupVersionResource{
			Group:    a.opts.Group,
			Version:  a.opts.Version,
			Resource: a.opts.Plural,
		},
		namespace: a.opts.Namespace,
		name:      a.opts.Name,
		patchMode: a.opts.StatusPatch,
	}

	var events *eventRecorder
	if a.opts.RecordEvents && core != nil {
		events = &eventRecorder{client: core, namespace: a.opts.Namespace}
	}

	a.reconciler = &phaseReconciler{
		resource: a.resource,
		events:   events,
		metrics:  a.metrics,
	}
	a.initialized = true

	logging.Info("device", "Agent initialized for EdgeDevice %s/%s (API %s/%s, plural %s)",
		a.opts.Namespace, a.opts.Name, a.opts.Group, a.opts.Version, a.opts.Plural)
	return nil
}

// GetEdgeDevice fetches the mirrored resource and decodes it into its typed
// form. A missing resource yields a NotFoundError, any other remote failure
// a TransportError.
func (a *Agent) GetEdgeDevice(ctx context.Context) (*v1alpha1.EdgeDevice, error) {
	if err := a.ensureInitialized(); err != nil {
		return nil, err
	}

	obj, err := a.resource.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	edgeDevice := &v1alpha1.EdgeDevice{}
	if err := runtime.DefaultUnstructuredConverter.FromUnstructured(obj.Object, edgeDevice); err != nil {
		return nil, NewTransportError("decode edgedevice", err)
	}
	return edgeDevice, nil
}

// UpdatePhase reconciles status.edgedevicephase toward phase. It reports
// whether the remote phase is known to match afterwards; failures of any
// kind, including a missing resource, are logged and yield false, never an
// error. The write is skipped when the remote phase already matches.
func (a *Agent) UpdatePhase(ctx context.Context, phase v1alpha1.EdgeDevicePhase) bool {
	if err := a.ensureInitialized(); err != nil {
		logging.Error("device", err, "Cannot update phase for device %s", a.opts.Name)
		return false
	}
	return a.reconciler.Reconcile(ctx, phase)
}

// RegisterHealthCheck sets the callback the monitoring loop invokes each
// tick. Registering again replaces the previous callback.
func (a *Agent) RegisterHealthCheck(check HealthCheck) error {
	if check == nil {
		return ErrNilHealthCheck
	}

	a.mu.Lock()
	a.check = check
	a.mu.Unlock()

	logging.Info("device", "Health check registered for device %s", a.opts.Name)
	return nil
}

// Run starts the health monitoring loop with the configured interval and
// blocks until ctx is cancelled, returning the context's error. Without a
// registered health check it logs a warning and returns nil immediately.
func (a *Agent) Run(ctx context.Context) error {
	return a.RunEvery(ctx, a.opts.Interval)
}

// RunEvery is Run with an explicit check interval.
func (a *Agent) RunEvery(ctx context.Context, interval time.Duration) error {
	a.mu.Lock()
	check := a.check
	a.mu.Unlock()

	if check == nil {
		logging.Warn("monitor", "No health check registered for device %s, not starting", a.opts.Name)
		return nil
	}

	if err := a.ensureInitialized(); err != nil {
		return err
	}

	monitor := &healthMonitor{
		deviceName: a.opts.Name,
		reconciler: a.reconciler,
		metrics:    a.metrics,
		check:      check,
	}
	return monitor.Run(ctx, interval)
}

// Address returns spec.address of the mirrored resource, or the empty string
// when the resource or the field is unavailable.
func (a *Agent) Address(ctx context.Context) string {
	return a.specString(ctx, "address")
}

// Protocol returns spec.protocol of the mirrored resource, or the empty
// string when the resource or the field is unavailable.
func (a *Agent) Protocol(ctx context.Context) string {
	return a.specString(ctx, "protocol")
}

func (a *Agent) specString(ctx context.Context, field string) string {
	if err := a.ensureInitialized(); err != nil {
		logging.Debug("device", "Cannot read spec.%s for device %s: %v", field, a.opts.Name, err)
		return ""
	}

	obj, err := a.resource.Fetch(ctx)
	if err != nil {
		logging.Debug("device", "Cannot read spec.%s for device %s: %v", field, a.opts.Name, err)
		return ""
	}

	value, _, _ := unstructured.NestedString(obj.Object, "spec", field)
	return value
}

// LogDeviceInfo logs a snapshot of the device: coordinates, address,
// protocol, and current phase. Intended for startup diagnostics; failures
// are logged, not returned.
func (a *Agent) LogDeviceInfo(ctx context.Context) {
	edgeDevice, err := a.GetEdgeDevice(ctx)
	if err != nil {
		logging.Error("device", err, "Failed to log device info for device %s", a.opts.Name)
		return
	}

	phase := edgeDevice.Status.EdgeDevicePhase
	if phase == "" {
		phase = v1alpha1.EdgeDeviceUnknown
	}

	logging.Info("device", "Device: %s/%s", a.opts.Namespace, a.opts.Name)
	logging.Info("device", "Device address: %s", stringValue(edgeDevice.Spec.Address))
	logging.Info("device", "Device protocol: %s", stringValue(edgeDevice.Spec.Protocol))
	logging.Info("device", "Current phase: %s", phase)
	logging.Info("device", "Using API %s/%s, plural %s", a.opts.Group, a.opts.Version, a.opts.Plural)
}

// Setup initializes the agent, logs the device snapshot, and registers the
// health check in one call. Convenience for the common main() flow.
func (a *Agent) Setup(ctx context.Context, check HealthCheck) error {
	if err := a.Initialize(ctx); err != nil {
		return err
	}
	a.LogDeviceInfo(ctx)
	if err := a.RegisterHealthCheck(check); err != nil {
		return err
	}

	logging.Info("device", "Agent setup completed for device %s", a.opts.Name)
	return nil
}

// Metrics returns a snapshot of the agent's counters.
func (a *Agent) Metrics() MetricsSnapshot {
	return a.metrics.Snapshot()
}

// Name returns the EdgeDevice resource name this agent manages.
func (a *Agent) Name() string {
	return a.opts.Name
}

// Namespace returns the namespace of the managed EdgeDevice.
func (a *Agent) Namespace() string {
	return a.opts.Namespace
}

// stringValue dereferences an optional spec field.
func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
