package app

import (
	"fmt"
	"time"

	"edgeagent/internal/probe"
	"edgeagent/pkg/apis/shifu/v1alpha1"
	"edgeagent/pkg/deviceconfig"
)

// Built-in health check kinds selectable on the command line.
const (
	CheckStatic = "static"
	CheckTCP    = "tcp"
)

// Config holds the agent process configuration assembled from command line
// flags. Zero-valued fields defer to the environment or package defaults.
type Config struct {
	// Debug enables debug-level logging.
	Debug bool

	// Kubeconfig pins the kubeconfig file used when running outside the
	// cluster.
	Kubeconfig string

	// Interval overrides the health check cadence.
	Interval time.Duration

	// StatusPatch overrides how phase writes reach the resource:
	// auto, subresource, or object.
	StatusPatch string

	// RecordEvents enables Kubernetes Events on phase transitions.
	RecordEvents bool

	// Check selects the built-in health check (CheckStatic or CheckTCP).
	Check string

	// Phase is the verdict the static check reports.
	Phase string

	// Address is the TCP probe target. Empty falls back to the EdgeDevice's
	// spec.address.
	Address string

	// DialTimeout bounds a single TCP probe.
	DialTimeout time.Duration

	// ConfigDir is the mounted device configuration directory.
	ConfigDir string

	// WatchConfig reloads the device configuration when the mount changes.
	WatchConfig bool
}

// DefaultConfig returns the usual run defaults: a static Running check and
// the conventional configuration mount.
func DefaultConfig() *Config {
	return &Config{
		Check:       CheckStatic,
		Phase:       string(v1alpha1.EdgeDeviceRunning),
		DialTimeout: probe.DefaultDialTimeout,
		ConfigDir:   deviceconfig.DefaultDir,
	}
}

// Validate checks the flag-provided values before any client is built.
func (c *Config) Validate() error {
	switch c.Check {
	case CheckStatic, CheckTCP:
	default:
		return fmt.Errorf("unknown health check %q (want %s or %s)", c.Check, CheckStatic, CheckTCP)
	}

	if _, err := parsePhase(c.Phase); err != nil {
		return err
	}
	return nil
}
