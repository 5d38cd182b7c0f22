package cmd

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"edgeagent/internal/app"
	"edgeagent/pkg/logging"
)

// runEnvFile optionally points at a dotenv file loaded before the agent
// reads its environment. Without the flag, a .env in the working directory
// is picked up when present.
var runEnvFile string

// runConfig collects the run command's flag values.
var runConfig = app.DefaultConfig()

// runCmd defines the run command structure. This is the main command of
// edgeagent: it starts the health monitoring loop and keeps the EdgeDevice
// phase in sync until terminated.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the device agent loop",
	Long: `Starts the agent for the device named by EDGEDEVICE_NAME and drives its
health check on a fixed cadence. Each tick reconciles status.edgedevicephase
with the check's verdict; a failing or panicking check marks the device
Failed.

Credentials are resolved in-cluster first, then from the local kubeconfig
(KUBECONFIG or ~/.kube/config, overridable with --kubeconfig).

The built-in checks cover the common cases:
  static   always report a fixed phase (--phase, default Running)
  tcp      dial the device and report Running/Failed (--address, default
           the EdgeDevice's spec.address)

SIGINT and SIGTERM shut the loop down gracefully.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

// runRun is the main entry point for the run command.
func runRun(cmd *cobra.Command, args []string) error {
	if runEnvFile != "" {
		if err := godotenv.Load(runEnvFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", runEnvFile, err)
		}
		logging.Info("cmd", "Loaded environment from %s", runEnvFile)
	} else if err := godotenv.Load(); err == nil {
		logging.Debug("cmd", "Loaded environment from .env")
	}

	runConfig.Debug = rootDebug

	application, err := app.NewApplication(runConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize agent: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.Run(ctx)
}

// init registers the run command and its flags with the root command.
func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVar(&runEnvFile, "env-file", "", "Load environment variables from this dotenv file")
	runCmd.Flags().StringVar(&runConfig.Kubeconfig, "kubeconfig", "", "Kubeconfig file used outside the cluster")
	runCmd.Flags().DurationVar(&runConfig.Interval, "interval", 0, "Health check interval (default 3s)")
	runCmd.Flags().StringVar(&runConfig.StatusPatch, "status-patch", "", "Status write strategy: auto, subresource, or object")
	runCmd.Flags().BoolVar(&runConfig.RecordEvents, "record-events", false, "Record Kubernetes Events on phase transitions")
	runCmd.Flags().StringVar(&runConfig.Check, "check", runConfig.Check, "Built-in health check: static or tcp")
	runCmd.Flags().StringVar(&runConfig.Phase, "phase", runConfig.Phase, "Phase the static check reports")
	runCmd.Flags().StringVar(&runConfig.Address, "address", "", "TCP probe target (default the EdgeDevice's spec.address)")
	runCmd.Flags().DurationVar(&runConfig.DialTimeout, "dial-timeout", runConfig.DialTimeout, "Timeout for a single TCP probe")
	runCmd.Flags().StringVar(&runConfig.ConfigDir, "config-dir", runConfig.ConfigDir, "Mounted device configuration directory")
	runCmd.Flags().BoolVar(&runConfig.WatchConfig, "watch-config", false, "Reload the device configuration when the mount changes")
}
