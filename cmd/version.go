package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newVersionCmd creates the Cobra command for displaying the application
// version. The actual version information is managed by the root command.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of edgeagent",
		Long:  `All software has versions. This is edgeagent's.`,
		Run: func(cmd *cobra.Command, args []string) {
			// rootCmd.Version is set in main() via SetVersion.
			fmt.Fprintf(cmd.OutOrStdout(), "edgeagent version %s\n", rootCmd.Version)
		},
	}
}
