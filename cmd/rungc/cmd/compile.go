package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/rungc/internal/compiler"
	"github.com/msto63/rungc/internal/compiler/parser"
)

var (
	compileSource string
	compileOutput string
	compileStdout bool
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile a ladder logic source file",
	Long: `Compile a ladder logic source file into the target program.

The output file is written only when the whole program compiled.
Use "-o -" or --stdout to print the program instead.`,
	Example: `  rungc compile -s plant.ld
  rungc compile -s plant.ld -o build/plant.out
  rungc compile -s plant.ld --stdout`,
	Args: cobra.NoArgs,
	RunE: runCompile,
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileSource, "source-file", "s", "", "ladder logic source file")
	compileCmd.Flags().StringVarP(&compileOutput, "out", "o", "", "output file (default from config: Program.out)")
	compileCmd.Flags().BoolVar(&compileStdout, "stdout", false, "write the program to stdout")
	compileCmd.MarkFlagRequired("source-file")
}

func runCompile(cmd *cobra.Command, args []string) error {
	st := openHistory()
	defer closeHistory(st)

	svc := compiler.NewService(compiler.Config{Output: appConfig.Compiler.Output}, logger, st)

	req := compiler.Request{
		Source:   compileSource,
		Output:   compileOutput,
		ToStdout: compileStdout || compileOutput == "-",
		Stdout:   cmd.OutOrStdout(),
	}

	result, err := svc.CompileFile(cmd.Context(), req)
	if err != nil {
		return err
	}

	// Keep stdout clean for the program itself
	out := cmd.OutOrStdout()
	if req.ToStdout {
		out = cmd.ErrOrStderr()
	}
	printSummary(out, compileSource, result)
	return nil
}

func printSummary(w io.Writer, source string, result *compiler.Result) {
	target := result.Output
	if target == "" {
		target = "(not written)"
	}
	fmt.Fprintf(w, "Compiled %s -> %s: %s in %s\n", source, target, describe(result.Summary), result.Duration.Round(time.Microsecond))
}

func describe(s parser.Summary) string {
	return fmt.Sprintf("%s, %s, %s, %s, %s",
		plural(s.Tasks, "task"),
		plural(s.Routines, "routine"),
		plural(s.Rungs, "rung"),
		plural(s.Tags, "tag"),
		plural(s.Instructions, "instruction"))
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
