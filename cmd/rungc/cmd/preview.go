package cmd

import (
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
	"github.com/msto63/rungc/internal/compiler"
	"github.com/msto63/rungc/internal/tui/preview"
)

var previewCmd = &cobra.Command{
	Use:   "preview <source>",
	Short: "Interactive viewer for a source file and its compiled program",
	Long: `Show the source file and the compiled program side by side in
a full-screen terminal viewer.

Keys:
  tab     switch between source and output
  r       recompile
  q       quit`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)
}

func runPreview(cmd *cobra.Command, args []string) error {
	if !isTerminal(os.Stdout) {
		return mdwerror.New("preview requires an interactive terminal").
			WithCode(mdwerror.CodeInvalidInput)
	}

	model := preview.New(args[0], loadAndCompile)
	_, err := tea.NewProgram(model).Run()
	return err
}

func loadAndCompile(path string) (string, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", mdwerror.Wrap(err, "failed to read source").
			WithCode(mdwerror.CodeIO).
			WithDetail("path", path)
	}
	program, _, err := compiler.Compile(string(data))
	return string(data), program, err
}
