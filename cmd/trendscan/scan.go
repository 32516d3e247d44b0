package main

import (
	"fmt"
	"path/filepath"

	"github.com/raykavin/trendscan"
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/scanner"
	"github.com/raykavin/trendscan/pkg/strategy"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

// Scan command flags
var (
	scanFiles []string
	scanKinds []string
	topN      int
)

func buildScanCmd() *cobra.Command {
	scanCmd := &cobra.Command{
		Use:   "scan [file or glob]...",
		Short: "Rank strategies across many price histories",
		RunE:  runScan,
	}

	addRequestFlags(scanCmd.Flags(), false)
	scanCmd.Flags().StringSliceVarP(&scanFiles, "file", "f", nil, "CSV price histories or glob patterns")
	scanCmd.Flags().StringSliceVarP(&scanKinds, "strategy", "s", nil, "Strategies to scan (default: all)")
	scanCmd.Flags().IntP("parallelism", "p", 0, "Analyses running at once")
	scanCmd.Flags().IntVarP(&topN, "top", "n", 0, "Show only the N best results")

	return scanCmd
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	req, err := cfg.Request()
	if err != nil {
		return err
	}

	kinds, err := parseKinds(scanKinds)
	if err != nil {
		return err
	}

	analyzer, log, err := newAnalyzer(cfg)
	if err != nil {
		return err
	}

	paths, err := expandPaths(append(scanFiles, args...))
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no price history given: use --file or pass files as arguments")
	}

	series := make([]core.PriceSeries, 0, len(paths))
	for _, path := range paths {
		s, err := loadSeries(path, "")
		if err != nil {
			return err
		}
		series = append(series, s)
	}

	progressBar := progressbar.Default(int64(scanner.Tasks(series, kinds...)), "scanning")
	s := scanner.New(analyzer,
		scanner.WithParallelism(cfg.Scan.Parallelism),
		scanner.WithLogger(log),
		scanner.WithProgress(func(o scanner.Outcome) {
			progressBar.Describe(fmt.Sprintf("%s/%s", o.Symbol, o.Strategy))
			progressBar.Add(1)
		}),
	)

	outcomes, err := s.Scan(cmd.Context(), series, req, kinds...)
	progressBar.Finish()
	if err != nil {
		return err
	}

	if failed := scanner.Failed(outcomes); len(failed) > 0 {
		log.Warnf("%d of %d analyses skipped", len(failed), len(outcomes))
	}

	ranked := scanner.Rank(outcomes)
	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}

	results := lo.Map(ranked, func(o scanner.Outcome, _ int) *trendscan.Result { return o.Result })
	fmt.Fprintln(cmd.OutOrStdout())
	return trendscan.Summary(cmd.OutOrStdout(), results...)
}

func parseKinds(names []string) ([]strategy.Kind, error) {
	kinds := make([]strategy.Kind, 0, len(names))
	for _, name := range names {
		kind, err := strategy.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

// expandPaths resolves glob patterns, keeping plain paths as given
func expandPaths(patterns []string) ([]string, error) {
	var paths []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			matches = []string{pattern}
		}
		paths = append(paths, matches...)
	}
	return lo.Uniq(paths), nil
}
