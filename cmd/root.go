package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"edgeagent/pkg/device"
	"edgeagent/pkg/logging"
)

// Exit codes for CLI commands.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeConfig indicates the agent could not be configured: missing
	// environment variables, invalid flag values, or unresolvable
	// Kubernetes credentials.
	ExitCodeConfig = 2
)

// rootDebug enables verbose logging across all subcommands.
var rootDebug bool

// rootCmd represents the base command for the edgeagent application.
// It is the entry point when the application is called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "edgeagent",
	Short: "Mirror a managed device as an EdgeDevice resource",
	Long: `edgeagent keeps the status of one managed device in sync with its
EdgeDevice custom resource. It runs a health check on a fixed cadence and
reconciles status.edgedevicephase with the verdict, skipping the write when
nothing changed.

The device is addressed through the conventional environment variables
(EDGEDEVICE_NAME, EDGEDEVICE_NAMESPACE, SHIFU_API_GROUP, SHIFU_API_VERSION,
SHIFU_API_PLURAL); flags refine the behavior per command.`,
	// SilenceUsage prevents Cobra from printing the usage message on errors
	// that are handled by the application.
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logging.LevelInfo
		if rootDebug {
			level = logging.LevelDebug
		}
		logging.Init(level, os.Stderr)
	},
}

// SetVersion sets the version for the root command.
// This function is typically called from the main package to inject the
// application version at build time.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application. It initializes
// and executes the root command, which in turn handles subcommands and
// flags. This function is called by main.main().
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "edgeagent version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types onto semantic exit codes for scripting and
// automation.
func getExitCode(err error) int {
	if device.IsConfiguration(err) {
		return ExitCodeConfig
	}
	return ExitCodeError
}

// init registers global flags and subcommands on the root command.
func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")

	rootCmd.AddCommand(newVersionCmd())
}
