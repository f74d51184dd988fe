package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/rungc/internal/compiler"
	"github.com/msto63/rungc/internal/watch"
)

var (
	watchSource   string
	watchOutput   string
	watchInterval time.Duration
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Recompile a source file whenever it changes",
	Long: `Compile the source once, then recompile on every change until
interrupted. Compile errors are reported and watching continues.`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchSource, "source-file", "s", "", "ladder logic source file")
	watchCmd.Flags().StringVarP(&watchOutput, "out", "o", "", "output file (default from config: Program.out)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "debounce and polling interval (default from config: 1s)")
	watchCmd.MarkFlagRequired("source-file")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st := openHistory()
	defer closeHistory(st)

	svc := compiler.NewService(compiler.Config{
		Output:       appConfig.Compiler.Output,
		CacheEntries: 16,
	}, logger, st)

	interval := watchInterval
	if interval <= 0 {
		interval = appConfig.Watch.Interval.Duration
	}

	w := &watch.Watcher{
		Path:     watchSource,
		Interval: interval,
		Logger:   logger,
		OnChange: func(ctx context.Context) error {
			result, err := svc.CompileFile(ctx, compiler.Request{Source: watchSource, Output: watchOutput})
			if err != nil {
				return err
			}
			printSummary(cmd.OutOrStdout(), watchSource, result)
			return nil
		},
		OnError: func(err error) {
			printError(cmd.ErrOrStderr(), err)
		},
	}

	return w.Run(ctx)
}
