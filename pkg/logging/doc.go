// Package logging provides structured logging for edgeagent with unified
// log handling and level filtering.
//
// It is a thin layer over Go's standard slog package that keeps every log
// line tagged with the subsystem it came from.
//
// # Log Levels
//
//   - Debug: detailed information for debugging and development
//   - Info: general informational messages about agent operation
//   - Warn: warning messages that indicate potential issues
//   - Error: error messages for failures and exceptional conditions
//
// # Usage
//
//	import "edgeagent/pkg/logging"
//
//	// Initialize with Info level logging to stderr
//	logging.Init(logging.LevelInfo, os.Stderr)
//
//	// Log messages
//	logging.Info("device", "Agent initialized for EdgeDevice %s/%s", namespace, name)
//	logging.Debug("deviceconfig", "Loaded configuration from %s", dir)
//	logging.Warn("monitor", "No health check registered for device %s", name)
//	logging.Error("device", err, "Failed to update phase")
//
// Before Init is called the package falls back to the process-wide slog
// default, so library consumers that never initialize it still get output.
//
// # Subsystem Organization
//
// Logs are tagged by subsystem to enable filtering:
//
//   - device: agent lifecycle and resource operations
//   - monitor: the health checking loop
//   - metrics: counter snapshots and failure totals
//   - deviceconfig: configuration loading and watching
//   - app, cmd: process assembly and the CLI
//
// # Thread Safety
//
// The package is safe for concurrent use from multiple goroutines.
package logging
