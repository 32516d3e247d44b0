package scanner

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/StudioSol/set"
	"github.com/raykavin/trendscan"
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/logger"
	"github.com/raykavin/trendscan/pkg/strategy"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

// Outcome is the result of one (symbol, strategy) analysis. Err holds
// per-task failures such as insufficient data; they do not stop the scan.
type Outcome struct {
	Symbol   string
	Strategy strategy.Kind
	Result   *trendscan.Result
	Err      error
}

// Option configures a Scanner
type Option func(*Scanner)

// WithParallelism bounds the number of analyses running at once
func WithParallelism(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.parallelism = n
		}
	}
}

// WithProgress registers a callback invoked after every finished task.
// It may be called from several goroutines, one call at a time.
func WithProgress(fn func(Outcome)) Option {
	return func(s *Scanner) {
		s.progress = fn
	}
}

// WithLogger sets the scan logger
func WithLogger(log logger.Logger) Option {
	return func(s *Scanner) {
		s.log = log
	}
}

// Scanner runs independent analyses over many series in parallel
type Scanner struct {
	analyzer    *trendscan.Analyzer
	parallelism int
	progress    func(Outcome)
	log         logger.Logger
}

// New creates a scanner that runs one analysis at a time unless configured
func New(analyzer *trendscan.Analyzer, options ...Option) *Scanner {
	s := &Scanner{
		analyzer:    analyzer,
		parallelism: 1,
		log:         trendscan.DefaultLog,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Tasks returns the number of analyses a scan of the given inputs runs
func Tasks(series []core.PriceSeries, kinds ...strategy.Kind) int {
	if len(kinds) == 0 {
		kinds = strategy.Kinds()
	}
	return len(dedupe(series)) * len(kinds)
}

// Scan analyses every series with every kind, all kinds when none are given.
// Series with a symbol already seen are skipped. Outcomes are ordered by
// symbol order of first appearance, then by kind order.
func (s *Scanner) Scan(ctx context.Context, series []core.PriceSeries, req trendscan.Request, kinds ...strategy.Kind) ([]Outcome, error) {
	if len(kinds) == 0 {
		kinds = strategy.Kinds()
	}
	unique := dedupe(series)

	outcomes := make([]Outcome, len(unique)*len(kinds))
	var mu sync.Mutex

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(s.parallelism)

	for i, ps := range unique {
		for j, kind := range kinds {
			index := i*len(kinds) + j

			group.Go(func() error {
				if err := ctx.Err(); err != nil {
					return err
				}

				taskReq := req
				taskReq.Strategy = kind
				result, err := s.analyzer.Analyze(ps, taskReq)

				outcome := Outcome{Symbol: ps.Symbol, Strategy: kind, Result: result, Err: err}
				outcomes[index] = outcome

				if err != nil {
					s.log.WithError(err).WithField("symbol", ps.Symbol).Warnf("%s skipped", kind)
				}

				if s.progress != nil {
					mu.Lock()
					s.progress(outcome)
					mu.Unlock()
				}
				return nil
			})
		}
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// dedupe keeps the first series of every symbol
func dedupe(series []core.PriceSeries) []core.PriceSeries {
	seen := set.NewLinkedHashSetString()
	unique := make([]core.PriceSeries, 0, len(series))
	for _, ps := range series {
		// a known symbol leaves the length unchanged
		n := seen.Length()
		if seen.Add(ps.Symbol); seen.Length() == n {
			continue
		}
		unique = append(unique, ps)
	}
	return unique
}

// Rank returns the successful outcomes ordered by total return, best first
func Rank(outcomes []Outcome) []Outcome {
	ranked := lo.Filter(outcomes, func(o Outcome, _ int) bool {
		return o.Err == nil && o.Result != nil
	})

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Result.TotalReturn > ranked[j].Result.TotalReturn
	})
	return ranked
}

// Failed returns the outcomes that carry an error
func Failed(outcomes []Outcome) []Outcome {
	return lo.Filter(outcomes, func(o Outcome, _ int) bool { return o.Err != nil })
}

// IsInsufficientData reports whether the outcome failed for lack of bars
func (o Outcome) IsInsufficientData() bool {
	return errors.Is(o.Err, core.ErrInsufficientData)
}
