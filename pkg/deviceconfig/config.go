// Package deviceconfig reads the device configuration that Kubernetes mounts
// into the agent's filesystem.
//
// A ConfigMap mounted via volumeMounts appears as plain files in a directory.
// This package reads those files directly, it never talks to the Kubernetes
// API. Every loader degrades to an empty section on missing files, unreadable
// content, or a YAML root that is not a mapping, so consumers always receive
// a fully populated Config.
package deviceconfig

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"edgeagent/pkg/logging"
)

// DefaultDir is where the device ConfigMap is mounted by convention.
const DefaultDir = "/etc/edgedevice/config"

// Section file basenames inside the mounted directory. Each may also carry a
// .yaml or .yml extension; the extensionless file wins when several exist.
const (
	driverPropertiesFile = "driverProperties"
	instructionsFile     = "instructions"
	telemetriesFile      = "telemetries"
)

// Config is the normalized view of the mounted device configuration.
type Config struct {
	// DriverProperties holds free-form driver metadata such as the driver
	// SKU and image reference.
	DriverProperties map[string]interface{} `json:"driverProperties" yaml:"driverProperties"`

	// Instructions describes the commands the device accepts.
	Instructions Instructions `json:"instructions" yaml:"instructions"`

	// Telemetries describes the readings the device publishes and how often
	// they are collected.
	Telemetries Telemetries `json:"telemetries" yaml:"telemetries"`
}

// Instructions wraps the instruction table from the instructions file.
type Instructions struct {
	Instructions map[string]interface{} `json:"instructions" yaml:"instructions"`
}

// Telemetries wraps the telemetry table and its collection settings from the
// telemetries file.
type Telemetries struct {
	TelemetrySettings map[string]interface{} `json:"telemetrySettings" yaml:"telemetrySettings"`
	Telemetries       map[string]interface{} `json:"telemetries" yaml:"telemetries"`
}

// Load reads the three section files from dir and returns the normalized
// configuration. It never fails: absent or malformed sections come back as
// empty maps. An empty dir argument falls back to DefaultDir.
func Load(dir string) *Config {
	if dir == "" {
		dir = DefaultDir
	}

	rawDriverProperties := readSection(dir, driverPropertiesFile)
	rawInstructions := readSection(dir, instructionsFile)
	rawTelemetries := readSection(dir, telemetriesFile)

	return &Config{
		DriverProperties: rawDriverProperties,
		Instructions: Instructions{
			Instructions: subsection(rawInstructions, "instructions"),
		},
		Telemetries: Telemetries{
			TelemetrySettings: subsection(rawTelemetries, "telemetrySettings"),
			Telemetries:       subsection(rawTelemetries, "telemetries"),
		},
	}
}

// LoadDriverProperties returns only the driver properties section.
func LoadDriverProperties(dir string) map[string]interface{} {
	return Load(dir).DriverProperties
}

// LoadInstructions returns only the instruction table.
func LoadInstructions(dir string) map[string]interface{} {
	return Load(dir).Instructions.Instructions
}

// LoadTelemetries returns only the telemetries section.
func LoadTelemetries(dir string) Telemetries {
	return Load(dir).Telemetries
}

// readSection loads one section file as a YAML mapping. Returns an empty map
// when the file is absent, unreadable, or its root is not a mapping.
func readSection(dir, base string) map[string]interface{} {
	path, ok := firstExistingFile(dir, base)
	if !ok {
		return map[string]interface{}{}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		logging.Error("deviceconfig", err, "Failed to read config file %s", path)
		return map[string]interface{}{}
	}

	var root interface{}
	if err := yaml.Unmarshal(data, &root); err != nil {
		logging.Error("deviceconfig", err, "Failed to parse YAML file %s", path)
		return map[string]interface{}{}
	}
	if root == nil {
		return map[string]interface{}{}
	}

	section, ok := root.(map[string]interface{})
	if !ok {
		logging.Warn("deviceconfig", "YAML root in %s is not a mapping, using empty section", path)
		return map[string]interface{}{}
	}
	return section
}

// firstExistingFile resolves base against dir, preferring the extensionless
// file, then base.yaml, then base.yml.
func firstExistingFile(dir, base string) (string, bool) {
	for _, name := range []string{base, base + ".yaml", base + ".yml"} {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// subsection extracts a nested mapping by key, normalizing anything else to an
// empty map.
func subsection(section map[string]interface{}, key string) map[string]interface{} {
	if nested, ok := section[key].(map[string]interface{}); ok {
		return nested
	}
	return map[string]interface{}{}
}
