package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/rungc/internal/compiler"
)

var checkCmd = &cobra.Command{
	Use:   "check <source>",
	Short: "Validate a source file without writing output",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	svc := compiler.NewService(compiler.DefaultConfig(), logger, nil)

	result, err := svc.CompileFile(cmd.Context(), compiler.Request{Source: args[0], DryRun: true})
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "OK %s: %s\n", args[0], describe(result.Summary))
	return nil
}
