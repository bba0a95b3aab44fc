package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/config"
	"github.com/danielpatrickdp/xp-complexity/go-generator/internal/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// #region flags

var (
	configPath  string
	writeConfig string
	assumeYes   bool
	verbose     bool
	jsonLogs    bool

	datasetName string
	minC        int
	maxC        int
	quota       int
	mode        string
	maxCycles   int
	sensorKind  string
	noJournal   bool

	cfg    *config.Config
	logger *zap.Logger
)

// #endregion flags

// #region commands

var rootCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a labeled action-complexity dataset",
	Long: `Asks a generation model for short action descriptions at a target
difficulty, filters and deduplicates them, has a judge model score each one,
and appends text;complexity rows to a UTF-16 CSV file. Requests pause while
the GPU is above the high-water temperature.

Run parameters not given as flags are asked for on the terminal.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		applyFlags(cmd, cfg)
		logger, err = logging.New(cfg.Logging.Level, cfg.Logging.JSON)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGenerate,
}

func init() {
	f := rootCmd.Flags()
	f.StringVarP(&configPath, "config", "c", "actiongen.yaml", "config file")
	f.StringVar(&writeConfig, "write-config", "", "write the effective config to this path and exit")
	f.BoolVarP(&assumeYes, "yes", "y", false, "never prompt; use config values for missing parameters")
	f.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	f.BoolVar(&jsonLogs, "json-logs", false, "JSON log output")

	f.StringVarP(&datasetName, "name", "n", "", "dataset file name inside the dataset dir")
	f.IntVar(&minC, "min", 0, "minimum target complexity (random mode)")
	f.IntVar(&maxC, "max", 10, "maximum target complexity (random mode)")
	f.IntVarP(&quota, "quota", "q", 0, "number of records to add")
	f.StringVarP(&mode, "mode", "m", "random", "schedule mode: random|1 or ramp|0")
	f.IntVar(&maxCycles, "max-cycles", 0, "stop after this many cycles (0 = unbounded)")
	f.StringVar(&sensorKind, "sensor", "", "temperature sensor: nvidia-smi, hwmon or none")
	f.BoolVar(&noJournal, "no-journal", false, "do not write the SQLite run journal")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// #endregion commands

// #region run

func runGenerate(cmd *cobra.Command, _ []string) error {
	if !assumeYes && isTerminal(os.Stdin) {
		p := newPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
		if err := fillRunParams(p, cfg, cmd.Flags().Changed); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if writeConfig != "" {
		return cfg.Save(writeConfig)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := buildPipeline(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer p.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Dataset: %s | known phrases: %d\n", p.store.Path(), p.orch.Known())
	fmt.Fprintf(out, "Generating %d records (%s, %d-%d). Ctrl+C to stop.\n",
		cfg.Run.Quota, cfg.Schedule.Mode, cfg.Schedule.Min, cfg.Schedule.Max)

	sum, runErr := p.orch.Run(ctx, cfg.Run.Quota)
	p.finish(sum, runErr, logger)

	fmt.Fprintf(out, "\nDone: %d/%d added in %d cycles (%s). Unique records in dataset: %d\n",
		sum.Accepted, sum.Target, sum.Cycles, sum.Elapsed.Round(time.Second), sum.Known)
	return runErr
}

// applyFlags copies explicitly set flags over the loaded config.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("name") {
		cfg.Dataset.Name = datasetName
	}
	if f.Changed("min") {
		cfg.Schedule.Min = minC
	}
	if f.Changed("max") {
		cfg.Schedule.Max = maxC
	}
	if f.Changed("quota") {
		cfg.Run.Quota = quota
	}
	if f.Changed("mode") {
		cfg.Schedule.Mode = mode
	}
	if f.Changed("max-cycles") {
		cfg.Run.MaxCycles = maxCycles
	}
	if f.Changed("sensor") {
		cfg.Thermal.Sensor = sensorKind
	}
	if noJournal {
		cfg.Journal.Enabled = false
	}
	if verbose {
		cfg.Logging.Level = "debug"
	}
	if jsonLogs {
		cfg.Logging.JSON = true
	}
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}

// #endregion run
