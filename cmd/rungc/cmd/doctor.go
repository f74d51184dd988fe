package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
	"github.com/msto63/rungc/internal/history/store"
	"github.com/msto63/rungc/pkg/core/health"
	"github.com/msto63/rungc/pkg/core/version"
)

var doctorFormat string

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration, output location and history database",
	Args:  cobra.NoArgs,
	RunE:  runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)

	doctorCmd.Flags().StringVar(&doctorFormat, "format", "table", "output format: table, json or yaml")
}

func runDoctor(cmd *cobra.Command, args []string) error {
	registry := health.NewRegistry("rungc", version.Release)

	registry.RegisterFunc("config", func(ctx context.Context) health.CheckResult {
		result := health.CheckResult{Status: health.StatusHealthy, Message: "built-in defaults"}
		if configPath != "" {
			result.Message = configPath
		}
		return result
	})
	registry.Register(health.FileDirCheck("output", appConfig.Compiler.Output))

	if appConfig.History.Enabled {
		registry.Register(health.ErrorCheck("history", func(ctx context.Context) error {
			st, err := store.NewSQLiteStore(store.Config{Path: appConfig.History.Path})
			if err != nil {
				return err
			}
			defer st.Close()
			_, err = st.Stats(ctx)
			return err
		}))
	} else {
		registry.Register(health.Disabled("history", "disabled in configuration"))
	}

	if appConfig.General.LogFile != "" {
		registry.Register(health.FileDirCheck("log file", appConfig.General.LogFile))
	}

	report := registry.CheckWithTimeout(10 * time.Second)

	if err := render(cmd.OutOrStdout(), doctorFormat, report, func(w io.Writer) { printReport(w, report) }); err != nil {
		return err
	}

	if !report.Healthy() {
		return mdwerror.New("one or more checks failed").WithCode(mdwerror.CodeInternal)
	}
	return nil
}

func printReport(w io.Writer, report *health.Report) {
	t := newTable("CHECK", "STATUS", "MESSAGE")
	for _, check := range report.Checks {
		t.Row(check.Name, string(check.Status), check.Message)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, report.String())
}
