// Command cyclesync answers cycle and task-affinity questions from the
// terminal without starting the server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "cyclesync",
		Short:        "Cycle-aware task planning from the command line",
		SilenceUsage: true,
	}
	root.AddCommand(newStateCmd(), newAffinityCmd(), newVersionCmd())
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "cyclesync version %s (%s)\n", Version, GitCommit)
		},
	}
}
