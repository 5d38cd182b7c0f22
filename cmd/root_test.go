package cmd

import (
	"errors"
	"testing"

	"edgeagent/pkg/device"
)

func TestSetVersion(t *testing.T) {
	originalVersion := rootCmd.Version
	defer func() { rootCmd.Version = originalVersion }()

	testVersion := "1.2.3-test"
	SetVersion(testVersion)

	if rootCmd.Version != testVersion {
		t.Errorf("Expected version to be %s, got %s", testVersion, rootCmd.Version)
	}
	if GetVersion() != testVersion {
		t.Errorf("GetVersion() = %s, want %s", GetVersion(), testVersion)
	}
}

func TestRootCommand(t *testing.T) {
	if rootCmd.Use != "edgeagent" {
		t.Errorf("Expected Use to be 'edgeagent', got %s", rootCmd.Use)
	}

	if rootCmd.Short == "" {
		t.Error("Expected Short description to be set")
	}

	if rootCmd.Long == "" {
		t.Error("Expected Long description to be set")
	}

	if !rootCmd.SilenceUsage {
		t.Error("Expected SilenceUsage to be true")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "configuration error",
			err:  device.NewConfigurationError("missing device name", nil),
			want: ExitCodeConfig,
		},
		{
			name: "wrapped configuration error",
			err:  errors.Join(errors.New("context"), device.NewConfigurationError("bad", nil)),
			want: ExitCodeConfig,
		},
		{
			name: "generic error",
			err:  errors.New("boom"),
			want: ExitCodeError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := getExitCode(tt.err); got != tt.want {
				t.Errorf("getExitCode() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"run", "info", "version"} {
		if !names[want] {
			t.Errorf("root command is missing the %q subcommand", want)
		}
	}
}
