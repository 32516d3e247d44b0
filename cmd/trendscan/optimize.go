package main

import (
	"fmt"

	"github.com/raykavin/trendscan/pkg/optimizer"
	"github.com/spf13/cobra"
)

// Optimize command flags
var (
	method     string
	iterations int
	metricName string
	minimize   bool
	csvOutput  string
	seed       int64
	showTop    int
)

func buildOptimizeCmd() *cobra.Command {
	optimizeCmd := &cobra.Command{
		Use:   "optimize",
		Short: "Search the horizons of a strategy for the best metric",
		RunE:  runOptimize,
	}

	addRequestFlags(optimizeCmd.Flags(), true)
	optimizeCmd.Flags().StringVarP(&inputFile, "file", "f", "", "CSV price history (e.g. ./petr4.csv)")
	optimizeCmd.Flags().StringVar(&symbol, "symbol", "", "Symbol name (default: file name)")
	optimizeCmd.Flags().StringVar(&method, "method", "grid", "Search method (grid or random)")
	optimizeCmd.Flags().IntVarP(&iterations, "iterations", "i", 100, "Maximum parameter sets to evaluate")
	optimizeCmd.Flags().StringVar(&metricName, "metric", string(optimizer.MetricTotalReturn), "Metric to optimize")
	optimizeCmd.Flags().BoolVar(&minimize, "minimize", false, "Minimize the metric instead of maximizing it")
	optimizeCmd.Flags().IntP("parallelism", "p", 0, "Evaluations running at once")
	optimizeCmd.Flags().IntVarP(&showTop, "top", "n", 10, "Results to display")
	optimizeCmd.Flags().StringVar(&csvOutput, "csv", "", "Write every result to a CSV file")
	optimizeCmd.Flags().Int64Var(&seed, "seed", 0, "Random search seed (default: clock)")

	optimizeCmd.MarkFlagRequired("file")

	return optimizeCmd
}

func runOptimize(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	req, err := cfg.Request()
	if err != nil {
		return err
	}

	target, err := optimizer.ParseMetricName(metricName)
	if err != nil {
		return err
	}

	parameters, err := optimizer.StrategyParameters(req.Strategy)
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

	optimizerConfig := optimizer.NewConfig().
		WithParameters(parameters...).
		WithMaxIterations(iterations).
		WithParallelism(cfg.Scan.Parallelism).
		WithLogger(log).
		WithTargetMetric(target, !minimize).
		WithTopN(showTop).
		WithSeed(seed)

	var search optimizer.Optimizer
	switch method {
	case "grid":
		search, err = optimizer.NewGridSearch(optimizerConfig)
	case "random":
		search, err = optimizer.NewRandomSearch(optimizerConfig)
	default:
		return fmt.Errorf("unknown method %q: must be grid or random", method)
	}
	if err != nil {
		return err
	}

	evaluator := optimizer.NewAnalyzerEvaluator(analyzer, series, req)
	results, err := search.Optimize(cmd.Context(), evaluator, target, !minimize)
	if err != nil {
		return err
	}

	optimizer.PrintResults(cmd.OutOrStdout(), results, target, optimizerConfig.TopN)

	if csvOutput != "" {
		if err := optimizer.SaveResultsToCSV(results, csvOutput); err != nil {
			return err
		}
		log.Infof("results written to %s", csvOutput)
	}
	return nil
}
