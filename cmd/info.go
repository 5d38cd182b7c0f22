package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"sigs.k8s.io/yaml"

	"edgeagent/pkg/apis/shifu/v1alpha1"
	"edgeagent/pkg/device"
	pkgstrings "edgeagent/pkg/strings"
)

var (
	// infoOutputFormat selects how the resource is rendered.
	infoOutputFormat string
	// infoKubeconfig pins the kubeconfig file used outside the cluster.
	infoKubeconfig string
)

// infoCmd defines the info command structure. It fetches the mirrored
// EdgeDevice once and prints it, without starting the monitoring loop.
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show the mirrored EdgeDevice resource",
	Long: `Fetches the EdgeDevice named by EDGEDEVICE_NAME and prints its spec and
current phase. Useful to verify credentials, API coordinates, and the
resource itself before running the agent.

Examples:
  edgeagent info
  edgeagent info -o yaml`,
	Args: cobra.NoArgs,
	RunE: runInfo,
}

// runInfo is the main entry point for the info command.
func runInfo(cmd *cobra.Command, args []string) error {
	opts, err := device.OptionsFromEnv()
	if err != nil {
		return err
	}
	if infoKubeconfig != "" {
		opts.Kubeconfig = infoKubeconfig
	}

	agent, err := device.New(opts)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	edgeDevice, err := agent.GetEdgeDevice(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch EdgeDevice %s/%s: %w", agent.Namespace(), agent.Name(), err)
	}

	switch infoOutputFormat {
	case "yaml":
		data, err := yaml.Marshal(edgeDevice)
		if err != nil {
			return fmt.Errorf("failed to render EdgeDevice: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(data))
		return nil
	case "table":
		renderDeviceTable(cmd.OutOrStdout(), edgeDevice)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table or yaml)", infoOutputFormat)
	}
}

// renderDeviceTable prints the device snapshot as a two-column table.
func renderDeviceTable(out io.Writer, edgeDevice *v1alpha1.EdgeDevice) {
	phase := edgeDevice.Status.EdgeDevicePhase
	if phase == "" {
		phase = v1alpha1.EdgeDeviceUnknown
	}

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"FIELD", "VALUE"})
	t.AppendRows([]table.Row{
		{"Name", edgeDevice.Name},
		{"Namespace", edgeDevice.Namespace},
		{"SKU", stringOrDash(edgeDevice.Spec.Sku)},
		{"Connection", stringOrDash(edgeDevice.Spec.Connection)},
		{"Address", stringOrDash(edgeDevice.Spec.Address)},
		{"Protocol", stringOrDash(edgeDevice.Spec.Protocol)},
		{"Phase", string(phase)},
	})
	t.Render()
}

func stringOrDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return pkgstrings.TruncateOneLine(*s, pkgstrings.DefaultValueMaxLen)
}

// init registers the info command and its flags with the root command.
func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().StringVarP(&infoOutputFormat, "output", "o", "table", "Output format (table, yaml)")
	infoCmd.Flags().StringVar(&infoKubeconfig, "kubeconfig", "", "Kubeconfig file used outside the cluster")
}
