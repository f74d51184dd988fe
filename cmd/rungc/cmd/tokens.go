package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
	"github.com/msto63/rungc/internal/compiler/lexer"
)

var tokensCmd = &cobra.Command{
	Use:   "tokens <source>",
	Short: "Print the token stream of a source file",
	Long: `Print one token per line as: line KIND "text".

Tokens read before a lexical error are printed, then the error is reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runTokens,
}

func init() {
	rootCmd.AddCommand(tokensCmd)
}

func runTokens(cmd *cobra.Command, args []string) error {
	source, err := os.ReadFile(args[0])
	if err != nil {
		return mdwerror.Wrap(err, "failed to read source").
			WithCode(mdwerror.CodeIO).
			WithDetail("path", args[0])
	}

	out := cmd.OutOrStdout()
	lex := lexer.New(string(source))
	for {
		tok, err := lex.NextToken()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%d %s %q\n", tok.Line, tok.Kind, tok.Text)
		if tok.Kind == lexer.EOF {
			return nil
		}
	}
}
