package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	mdwlog "github.com/msto63/rungc/foundation/core/log"
	"github.com/msto63/rungc/internal/history/store"
	"github.com/msto63/rungc/internal/tui"
	"github.com/msto63/rungc/pkg/core/config"
	"github.com/msto63/rungc/pkg/core/logging"
)

var (
	cfgFile string
	verbose bool

	appConfig  *config.Config
	configPath string
	logger     = mdwlog.Discard()
	logFile    *logging.FileWriter
)

var rootCmd = &cobra.Command{
	Use:   "rungc",
	Short: "rungc - Ladder Logic Compiler",
	Long: `rungc compiles ladder logic programs (tasks, routines, rungs and tags)
into the indentation structured target program.

Commands:
  compile  - compile a source file
  check    - validate a source file without writing
  tokens   - print the token stream
  watch    - recompile on every change
  preview  - interactive source/output viewer
  history  - inspect recorded compilation runs
  doctor   - check configuration, output and history`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

// Execute runs the command tree and prints a diagnostic on failure
func Execute() error {
	defer closeLogFile()

	err := rootCmd.Execute()
	if err != nil {
		printError(rootCmd.ErrOrStderr(), err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./configs/rungc.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

// setup loads the configuration and builds the logger for every command
func setup(cmd *cobra.Command, args []string) error {
	cfg, path, err := config.Resolve(cfgFile)
	if err != nil {
		return err
	}
	appConfig = cfg
	configPath = path

	logCfg := logging.DefaultLoggerConfig("rungc")
	logCfg.Level = cfg.General.LogLevel
	logCfg.Format = cfg.General.LogFormat
	logCfg.Output = cmd.ErrOrStderr()
	if verbose {
		logCfg.Level = "debug"
	}

	if cfg.General.LogFile != "" {
		w, err := logging.NewFileWriter(logging.DefaultFileWriterConfig(cfg.General.LogFile))
		if err != nil {
			return err
		}
		logFile = w
		logCfg.AdditionalOutputs = []io.Writer{w}
	}

	logger = logging.NewLogger(logCfg)
	mdwlog.SetDefault(logger)

	if path != "" {
		logger.Debug("Configuration loaded", mdwlog.Fields{"path": path})
	}
	return nil
}

func closeLogFile() {
	if logFile == nil {
		return
	}
	logFile.Close()
	logFile = nil
}

// openHistory opens the configured history store; nil when disabled or unavailable
func openHistory() store.Store {
	if appConfig == nil || !appConfig.History.Enabled {
		return nil
	}
	st, err := store.NewSQLiteStore(store.Config{Path: appConfig.History.Path})
	if err != nil {
		logger.WarnWithErr("History disabled", err)
		return nil
	}
	return st
}

func closeHistory(st store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		logger.WarnWithErr("Failed to close history", err)
	}
}

// isTerminal reports whether w is an interactive terminal
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func printError(w io.Writer, err error) {
	fmt.Fprintln(w, tui.RenderDiagnostic(err, isTerminal(w)))
}
