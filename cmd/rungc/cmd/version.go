package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/rungc/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, version.String())
		for _, name := range []string{"compiler", "history", "watch", "preview"} {
			fmt.Fprintf(out, "  %-9s %s\n", name+":", version.ComponentVersion(name))
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
