package main

import (
	"fmt"
	"os"

	"github.com/raykavin/trendscan"
	"github.com/raykavin/trendscan/internal/config"
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/feed"
	"github.com/raykavin/trendscan/pkg/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Command line flags shared by every command
var (
	configPath string
	logLevel   string
	window     string
)

// flagKeys maps command line flags to the configuration keys they override
var flagKeys = map[string]string{
	"log-level":      "log.level",
	"strategy":       "backtest.strategy",
	"capital":        "backtest.initial_capital",
	"mode":           "backtest.mode",
	"long-only":      "backtest.long_only",
	"exclude-forced": "backtest.exclude_forced_exits",
	"points":         "backtest.equity_points",
	"parallelism":    "scan.parallelism",
	"db":             "storage.path",
	"fast":           "overrides.fast_period",
	"slow":           "overrides.slow_period",
	"medium":         "overrides.medium_period",
	"long":           "overrides.long_period",
	"rsi":            "overrides.rsi_period",
	"rsi-lower":      "overrides.rsi_lower",
	"rsi-upper":      "overrides.rsi_upper",
}

func main() {
	rootCmd := &cobra.Command{
		Use:          "trendscan",
		Short:        "Technical indicator backtests over daily price histories",
		Version:      "1.0.0",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Configuration file (e.g. ./trendscan.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")

	rootCmd.AddCommand(
		buildBacktestCmd(),
		buildScanCmd(),
		buildOptimizeCmd(),
		buildHistoryCmd(),
		buildInitCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// addRequestFlags registers the flags that shape an analysis request
func addRequestFlags(flags *pflag.FlagSet, withStrategy bool) {
	if withStrategy {
		flags.StringP("strategy", "s", "", "Strategy (hybrid, crossover_fast_slow, oscillator_reversal, crossover_long)")
	}
	flags.Float64("capital", 0, "Initial capital")
	flags.StringP("mode", "m", "", "Position mode (flip or flat)")
	flags.Bool("long-only", false, "Never open short positions")
	flags.Bool("exclude-forced", false, "Leave positions closed at the last bar out of trade counts")
	flags.StringVarP(&window, "window", "w", "", "Keep only the trailing window of each series (e.g. 365d)")

	flags.Int("fast", 0, "Fast EMA length")
	flags.Int("slow", 0, "Slow EMA length")
	flags.Int("medium", 0, "Medium SMA length")
	flags.Int("long", 0, "Long SMA length")
	flags.Int("rsi", 0, "RSI lookback")
	flags.Float64("rsi-lower", 0, "Oversold threshold")
	flags.Float64("rsi-upper", 0, "Overbought threshold")
}

// loadConfig merges defaults, the configuration file, the environment and the
// flags the command was given
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	v := config.New()
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return nil, err
	}
	return config.LoadWith(v, configPath)
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		// list flags select several values and are read by the command itself
		if flag == nil || !flag.Changed || flag.Value.Type() == "stringSlice" {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// newAnalyzer builds the analyzer with the configured logger
func newAnalyzer(cfg *config.Config) (*trendscan.Analyzer, logger.Logger, error) {
	log, err := cfg.Logger()
	if err != nil {
		return nil, nil, err
	}
	return trendscan.NewAnalyzer(trendscan.WithLogger(log)), log, nil
}

// loadSeries reads a CSV history and trims it to the requested window
func loadSeries(path, symbol string) (core.PriceSeries, error) {
	series, err := feed.ReadCSV(path, symbol)
	if err != nil {
		return series, fmt.Errorf("failed to load %s: %w", path, err)
	}

	if window == "" {
		return series, nil
	}
	return feed.Limit(series, window)
}

func buildInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [path]",
		Short: "Write a default configuration file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultConfigPath
			if len(args) == 1 {
				path = args[0]
			}

			if err := config.SaveDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "configuration written to %s\n", path)
			return nil
		},
	}
}
