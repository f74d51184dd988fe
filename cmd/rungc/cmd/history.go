package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	mdwerror "github.com/msto63/rungc/foundation/core/error"
	mdwlog "github.com/msto63/rungc/foundation/core/log"
	"github.com/msto63/rungc/internal/history/store"
	"github.com/msto63/rungc/internal/tui"
)

var (
	historyFormat    string
	historyLimit     int
	historySource    string
	historyFailed    bool
	historyOlderThan time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect recorded compilation runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent compilation runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryList,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single compilation run",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated run statistics",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStats,
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than a duration",
	Long: `Delete runs older than --older-than. Without the flag the configured
retention (history.retention_days) is used.`,
	Args: cobra.NoArgs,
	RunE: runHistoryPrune,
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyListCmd, historyShowCmd, historyStatsCmd, historyPruneCmd)

	historyCmd.PersistentFlags().StringVar(&historyFormat, "format", "table", "output format: table, json or yaml")

	historyListCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum number of runs")
	historyListCmd.Flags().StringVar(&historySource, "source", "", "only runs of this source file")
	historyListCmd.Flags().BoolVar(&historyFailed, "failed", false, "only failed runs")

	historyPruneCmd.Flags().DurationVar(&historyOlderThan, "older-than", 0, "age of the runs to delete, e.g. 720h")
}

// requireHistory opens the store for history commands, which fail without one
func requireHistory() (store.Store, error) {
	if !appConfig.History.Enabled {
		return nil, mdwerror.New("history is disabled in the configuration").
			WithCode(mdwerror.CodeInvalidInput)
	}
	return store.NewSQLiteStore(store.Config{Path: appConfig.History.Path})
}

func runHistoryList(cmd *cobra.Command, args []string) error {
	st, err := requireHistory()
	if err != nil {
		return err
	}
	defer closeHistory(st)

	runs, err := st.List(cmd.Context(), store.Filter{
		Source:     historySource,
		OnlyFailed: historyFailed,
		Limit:      historyLimit,
	})
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), historyFormat, runs, func(w io.Writer) {
		t := newTable("ID", "TIME", "SOURCE", "STATUS", "RUNGS", "DURATION")
		for _, run := range runs {
			t.Row(
				shortID(run.ID),
				run.Timestamp.Local().Format("2006-01-02 15:04:05"),
				run.Source,
				status(run),
				strconv.Itoa(run.Rungs),
				fmt.Sprintf("%.2fms", run.DurationMS),
			)
		}
		fmt.Fprintln(w, t.Render())
	})
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	st, err := requireHistory()
	if err != nil {
		return err
	}
	defer closeHistory(st)

	run, err := st.Get(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), historyFormat, run, func(w io.Writer) {
		t := newTable("FIELD", "VALUE")
		t.Row("id", run.ID)
		t.Row("time", run.Timestamp.Local().Format(time.RFC3339))
		t.Row("source", run.Source)
		t.Row("output", run.Output)
		t.Row("status", status(run))
		if !run.Success {
			t.Row("error", fmt.Sprintf("[%s] %s", run.ErrorCode, run.ErrorMessage))
		}
		t.Row("summary", fmt.Sprintf("%d tasks, %d routines, %d rungs, %d tags, %d instructions",
			run.Tasks, run.Routines, run.Rungs, run.Tags, run.Instructions))
		t.Row("duration", fmt.Sprintf("%.2fms", run.DurationMS))
		fmt.Fprintln(w, t.Render())
	})
}

func runHistoryStats(cmd *cobra.Command, args []string) error {
	st, err := requireHistory()
	if err != nil {
		return err
	}
	defer closeHistory(st)

	stats, err := st.Stats(cmd.Context())
	if err != nil {
		return err
	}

	return render(cmd.OutOrStdout(), historyFormat, stats, func(w io.Writer) {
		t := newTable("METRIC", "VALUE")
		t.Row("total runs", strconv.FormatInt(stats.TotalRuns, 10))
		t.Row("succeeded", strconv.FormatInt(stats.Succeeded, 10))
		t.Row("failed", strconv.FormatInt(stats.Failed, 10))
		t.Row("avg duration", fmt.Sprintf("%.2fms", stats.AvgDurationMS))
		if !stats.LastRun.IsZero() {
			t.Row("last run", stats.LastRun.Local().Format(time.RFC3339))
		}

		codes := make([]string, 0, len(stats.ErrorsByCode))
		for code := range stats.ErrorsByCode {
			codes = append(codes, code)
		}
		sort.Strings(codes)
		for _, code := range codes {
			t.Row("errors "+code, strconv.FormatInt(stats.ErrorsByCode[code], 10))
		}
		fmt.Fprintln(w, t.Render())
	})
}

func runHistoryPrune(cmd *cobra.Command, args []string) error {
	olderThan := historyOlderThan
	if olderThan <= 0 {
		olderThan = appConfig.Retention()
	}
	if olderThan <= 0 {
		return mdwerror.New("nothing to prune: retention is disabled and --older-than is not set").
			WithCode(mdwerror.CodeInvalidInput)
	}

	st, err := requireHistory()
	if err != nil {
		return err
	}
	defer closeHistory(st)

	deleted, err := st.Prune(cmd.Context(), olderThan)
	if err != nil {
		return err
	}

	logger.Debug("History pruned", mdwlog.Fields{"deleted": deleted, "older_than": olderThan.String()})
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d runs older than %s\n", deleted, olderThan)
	return nil
}

// render writes v as json or yaml, or calls asTable for the table format
func render(w io.Writer, format string, v interface{}, asTable func(io.Writer)) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		asTable(w)
		return nil
	default:
		return mdwerror.Newf("unknown format %q (want table, json or yaml)", format).
			WithCode(mdwerror.CodeInvalidInput)
	}
}

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(tui.ColorMuted)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return tui.TitleStyle.Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func status(run *store.Run) string {
	if run.Success {
		return "ok"
	}
	return "failed " + run.ErrorCode
}
