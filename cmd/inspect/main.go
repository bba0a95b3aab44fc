package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/config"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/dataset"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/eval"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/journal"
	"github.com/spf13/cobra"
)

// #region flags

var (
	configPath  string
	datasetPath string
	journalPath string
	last        int
	runID       string
	jsonOut     bool
)

// #endregion flags

// #region main

var rootCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Report on a generated dataset and its run journal",
	Long: `Validates the dataset file (label range, duplicates, short texts, band
coverage) and lists recent runs from the SQLite journal with their cycle
outcomes.`,
	SilenceUsage: true,
	RunE:         runInspect,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "actiongen.yaml", "config file")
	rootCmd.Flags().StringVar(&datasetPath, "dataset", "", "dataset CSV (default from config)")
	rootCmd.Flags().StringVar(&journalPath, "journal", "", "journal database (default from config)")
	rootCmd.Flags().IntVar(&last, "last", 10, "show N most recent runs")
	rootCmd.Flags().StringVar(&runID, "run", "", "show a single run")
	rootCmd.Flags().BoolVar(&jsonOut, "json", false, "output as JSON instead of tables")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// #endregion main

// #region report

type runRow struct {
	journal.Run
	Outcomes     map[string]int `json:"outcomes"`
	FallbackRate float64        `json:"fallback_rate"`
}

type report struct {
	Dataset string           `json:"dataset"`
	Eval    *eval.EvalResult `json:"eval,omitempty"`
	Runs    []runRow         `json:"runs,omitempty"`
}

func runInspect(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if datasetPath == "" {
		datasetPath = cfg.DatasetPath()
	}
	if journalPath == "" && cfg.Journal.Enabled {
		journalPath = cfg.Journal.Path
	}

	rep := report{Dataset: datasetPath}

	store, err := dataset.NewStore(datasetPath, nil)
	if err != nil {
		return err
	}
	records, err := store.Records()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read dataset: %w", err)
	}
	ec := eval.DefaultEvalConfig()
	ec.MinTokens = cfg.Run.MinTokens
	result := eval.NewEvalHarness(ec).Run(records)
	rep.Eval = &result

	if journalPath != "" {
		if _, statErr := os.Stat(journalPath); statErr == nil {
			rep.Runs, err = loadRuns(journalPath, runID, last)
			if err != nil {
				return err
			}
		}
	}

	out := cmd.OutOrStdout()
	if jsonOut {
		return printJSON(out, rep)
	}
	printReport(out, rep)
	return nil
}

func loadRuns(path, id string, limit int) ([]runRow, error) {
	js, err := journal.NewStore(path)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer js.Close()

	var runs []journal.Run
	if id != "" {
		run, err := js.GetRun(id)
		if err != nil {
			return nil, err
		}
		runs = []journal.Run{run}
	} else if runs, err = js.ListRuns(limit); err != nil {
		return nil, err
	}

	rows := make([]runRow, 0, len(runs))
	for _, r := range runs {
		counts, err := js.OutcomeCounts(r.RunID)
		if err != nil {
			return nil, err
		}
		rate, err := js.FallbackRate(r.RunID)
		if err != nil {
			return nil, err
		}
		rows = append(rows, runRow{Run: r, Outcomes: counts, FallbackRate: rate})
	}
	return rows, nil
}

// #endregion report

// #region output

func printReport(w io.Writer, rep report) {
	fmt.Fprintf(w, "Dataset: %s\n", rep.Dataset)
	if rep.Eval != nil {
		status := "PASS"
		if !rep.Eval.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(w, "Eval:    %s (%s)\n\n", status, rep.Eval.Reason)
		for _, m := range rep.Eval.Metrics {
			mark := "ok"
			if !m.Pass {
				mark = "!!"
			}
			fmt.Fprintf(w, "  %-20s %10.2f  %s\n", m.Name, m.Value, mark)
		}

		fmt.Fprintf(w, "\nLabel histogram:\n")
		maxN := 0
		for _, n := range rep.Eval.Histogram {
			maxN = max(maxN, n)
		}
		for b, n := range rep.Eval.Histogram {
			bar := 0
			if maxN > 0 {
				bar = n * 40 / maxN
			}
			fmt.Fprintf(w, "  %2d %6d %s\n", b, n, strings.Repeat("#", bar))
		}
	}

	if len(rep.Runs) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%-8s  %-9s  %-6s  %-7s  %9s  %6s  %8s  %s\n",
		"Run", "Status", "Mode", "Range", "Accepted", "Cycles", "Fallback", "Started")
	fmt.Fprintf(w, "%-8s+-%-9s+-%-6s+-%-7s+-%9s+-%6s+-%8s+-%s\n",
		"--------", "---------", "------", "-------", "---------", "------", "--------", "--------------------")
	for _, r := range rep.Runs {
		fmt.Fprintf(w, "%-8s  %-9s  %-6s  %-7s  %9s  %6d  %7.0f%%  %s\n",
			shortID(r.RunID), r.Status, r.Mode, fmt.Sprintf("%d-%d", r.Min, r.Max),
			fmt.Sprintf("%d/%d", r.Accepted, r.Target), r.Cycles, r.FallbackRate*100,
			r.StartedAt.Format("2006-01-02T15:04:05Z"))
	}

	latest := rep.Runs[0]
	fmt.Fprintf(w, "\nCycle outcomes (%s):\n", shortID(latest.RunID))
	names := make([]string, 0, len(latest.Outcomes))
	for k := range latest.Outcomes {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Fprintf(w, "  %-20s %d\n", k, latest.Outcomes[k])
	}
}

func printJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// #endregion output
