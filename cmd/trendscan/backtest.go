package main

import (
	"encoding/json"
	"fmt"

	"github.com/raykavin/trendscan"
	"github.com/raykavin/trendscan/pkg/report"
	"github.com/raykavin/trendscan/pkg/storage"
	"github.com/raykavin/trendscan/pkg/strategy"
	"github.com/spf13/cobra"
)

// Backtest command flags
var (
	inputFile  string
	symbol     string
	allKinds   bool
	jsonOutput bool
	showTrades bool
	archive    bool
	returnsDir string
)

func buildBacktestCmd() *cobra.Command {
	backtestCmd := &cobra.Command{
		Use:   "backtest",
		Short: "Backtest strategies over one price history",
		RunE:  runBacktest,
	}

	addRequestFlags(backtestCmd.Flags(), true)
	backtestCmd.Flags().StringVarP(&inputFile, "file", "f", "", "CSV price history (e.g. ./petr4.csv)")
	backtestCmd.Flags().StringVar(&symbol, "symbol", "", "Symbol name (default: file name)")
	backtestCmd.Flags().BoolVarP(&allKinds, "all", "a", false, "Run every strategy over the same indicators")
	backtestCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print results as JSON")
	backtestCmd.Flags().Int("points", 0, "Maximum equity curve points in JSON output")
	backtestCmd.Flags().BoolVar(&showTrades, "trades", true, "List every trade")
	backtestCmd.Flags().BoolVar(&archive, "save", false, "Archive the results (implied by --db)")
	backtestCmd.Flags().String("db", "", "Report archive path")
	backtestCmd.Flags().StringVar(&returnsDir, "returns", "", "Directory for per-trade return CSV files")

	backtestCmd.MarkFlagRequired("file")

	return backtestCmd
}

func runBacktest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	req, err := cfg.Request()
	if err != nil {
		return err
	}

	analyzer, log, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	series, err := loadSeries(inputFile, symbol)
	if err != nil {
		return err
	}

	kinds := []strategy.Kind{req.Strategy}
	if allKinds {
		kinds = strategy.Kinds()
	}

	results, err := analyzer.AnalyzeAll(series, req, kinds...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		payload := make([]trendscan.Result, 0, len(results))
		for _, r := range results {
			payload = append(payload, r.Downsampled(cfg.Backtest.EquityPoints))
		}

		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(payload); err != nil {
			return fmt.Errorf("failed to encode results: %w", err)
		}
	} else {
		if err := trendscan.Summary(out, results...); err != nil {
			return err
		}
		if showTrades {
			for _, r := range results {
				fmt.Fprintf(out, "\n-- %s / %s --\n", r.Symbol, r.Strategy)
				report.TradesTable(out, r.Trades)
			}
		}
	}

	if returnsDir != "" {
		if err := trendscan.SaveReturns(returnsDir, results...); err != nil {
			return err
		}
	}

	if !archive && !cmd.Flags().Changed("db") {
		return nil
	}

	db, err := storage.FromFile(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	for _, r := range results {
		stored := r.Downsampled(cfg.Backtest.EquityPoints)
		saved, err := db.Save(&stored)
		if err != nil {
			return err
		}
		log.WithField("id", saved.ID).Infof("archived %s / %s", r.Symbol, r.Strategy)
	}
	return nil
}
