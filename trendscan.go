package trendscan

import (
	"fmt"
	"io"

	"github.com/raykavin/trendscan/pkg/backtest"
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/indicator"
	"github.com/raykavin/trendscan/pkg/logger"
	"github.com/raykavin/trendscan/pkg/metric"
	"github.com/raykavin/trendscan/pkg/report"
	"github.com/raykavin/trendscan/pkg/strategy"
	"github.com/samber/lo"
)

// DefaultLog is the default logger instance
var DefaultLog logger.Logger

// DefaultInitialCapital is the starting capital of a request that sets none
const DefaultInitialCapital = 100_000.0

// Request describes one analysis of a price series
type Request struct {
	Strategy           strategy.Kind      `json:"strategy"`
	InitialCapital     float64            `json:"initialCapital"`
	Mode               backtest.Mode      `json:"mode"`
	LongOnly           bool               `json:"longOnly"`
	Overrides          strategy.Overrides `json:"overrides"`
	ExcludeForcedExits bool               `json:"excludeForcedExits"`
}

// DefaultRequest runs the hybrid strategy in flip mode
func DefaultRequest() Request {
	return Request{
		Strategy:       strategy.KindHybrid,
		InitialCapital: DefaultInitialCapital,
		Mode:           backtest.ModeFlip,
	}
}

func (r Request) withDefaults() Request {
	if r.Strategy == "" {
		r.Strategy = strategy.KindHybrid
	}
	if r.InitialCapital == 0 {
		r.InitialCapital = DefaultInitialCapital
	}
	if r.Mode == "" {
		r.Mode = backtest.ModeFlip
	}
	return r
}

// Validate rejects requests the engine cannot run
func (r Request) Validate() error {
	if r.InitialCapital <= 0 {
		return core.NewInvalidParameter("initial_capital", r.InitialCapital, "must be positive")
	}
	if _, err := strategy.ParseKind(string(r.Strategy)); err != nil {
		return err
	}
	if _, err := backtest.ParseMode(string(r.Mode)); err != nil {
		return err
	}
	return r.Overrides.Validate()
}

// Result is the outcome of one analysis, shaped for JSON consumers
type Result struct {
	Symbol   string        `json:"symbol"`
	Strategy strategy.Kind `json:"strategy"`
	Mode     backtest.Mode `json:"mode"`

	TotalTrades   int     `json:"totalTrades"`
	WinningTrades int     `json:"winningTrades"`
	LosingTrades  int     `json:"losingTrades"`
	ForcedExits   int     `json:"forcedExits"`
	WinRate       float64 `json:"winRate"`
	TotalReturn   float64 `json:"totalReturn"`
	MaxDrawdown   float64 `json:"maxDrawdown"`
	SharpeLike    float64 `json:"sharpeLike"`
	AverageReturn float64 `json:"averageReturn"`
	Payoff        float64 `json:"payoff"`
	ProfitFactor  float64 `json:"profitFactor"`
	SQN           float64 `json:"sqn"`
	BestTrade     float64 `json:"bestTrade"`
	WorstTrade    float64 `json:"worstTrade"`

	InitialCapital float64                `json:"initialCapital"`
	FinalCapital   float64                `json:"finalCapital"`
	Trades         []backtest.Trade       `json:"trades"`
	EquityCurve    []backtest.EquityPoint `json:"equityCurve"`
}

func newResult(run *backtest.Run, kind strategy.Kind, mode backtest.Mode, s metric.Summary) *Result {
	return &Result{
		Symbol:         run.Symbol,
		Strategy:       kind,
		Mode:           mode,
		TotalTrades:    s.TotalTrades,
		WinningTrades:  s.WinningTrades,
		LosingTrades:   s.LosingTrades,
		ForcedExits:    s.ForcedExits,
		WinRate:        s.WinRate,
		TotalReturn:    s.TotalReturn,
		MaxDrawdown:    s.MaxDrawdown,
		SharpeLike:     s.SharpeLike,
		AverageReturn:  s.AverageReturn,
		Payoff:         s.Payoff,
		ProfitFactor:   s.ProfitFactor,
		SQN:            s.SQN,
		BestTrade:      s.BestTrade,
		WorstTrade:     s.WorstTrade,
		InitialCapital: run.InitialCapital,
		FinalCapital:   run.FinalCapital,
		Trades:         run.Trades,
		EquityCurve:    run.Equity,
	}
}

// Summary returns the statistics part of the result
func (r *Result) Summary() metric.Summary {
	return metric.Summary{
		TotalTrades:   r.TotalTrades,
		WinningTrades: r.WinningTrades,
		LosingTrades:  r.LosingTrades,
		ForcedExits:   r.ForcedExits,
		WinRate:       r.WinRate,
		TotalReturn:   r.TotalReturn,
		MaxDrawdown:   r.MaxDrawdown,
		SharpeLike:    r.SharpeLike,
		AverageReturn: r.AverageReturn,
		Payoff:        r.Payoff,
		ProfitFactor:  r.ProfitFactor,
		SQN:           r.SQN,
		BestTrade:     r.BestTrade,
		WorstTrade:    r.WorstTrade,
	}
}

// Returns lists the percentage result of every trade
func (r *Result) Returns() []float64 {
	return lo.Map(r.Trades, func(t backtest.Trade, _ int) float64 { return t.PnLPercent })
}

// Downsampled returns a copy whose equity curve holds at most maxPoints points
func (r Result) Downsampled(maxPoints int) Result {
	r.EquityCurve = report.Downsample(r.EquityCurve, maxPoints)
	return r
}

// Analyzer runs the indicator, signal, backtest and statistics pipeline.
// It keeps no state between calls and is safe for concurrent use.
type Analyzer struct {
	log        logger.Logger
	indicators indicator.Config
}

// NewAnalyzer creates an analyzer with the default indicator horizons
func NewAnalyzer(options ...Option) *Analyzer {
	analyzer := &Analyzer{
		log:        DefaultLog,
		indicators: indicator.DefaultConfig(),
	}
	for _, option := range options {
		option(analyzer)
	}
	return analyzer
}

// Analyze runs one strategy over the series
func (a *Analyzer) Analyze(series core.PriceSeries, req Request) (*Result, error) {
	results, err := a.AnalyzeAll(series, req, req.withDefaults().Strategy)
	if err != nil {
		return nil, err
	}
	return results[0], nil
}

// AnalyzeAll runs every given strategy over the series against one shared
// indicator frame, all kinds when none are given. Capital, mode and overrides
// of req apply to each of them.
func (a *Analyzer) AnalyzeAll(series core.PriceSeries, req Request, kinds ...strategy.Kind) ([]*Result, error) {
	req = req.withDefaults()
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		kinds = strategy.Kinds()
	}

	strategies := make([]strategy.Strategy, 0, len(kinds))
	cfg := a.indicators
	minBars := 1
	for _, kind := range kinds {
		s, err := strategy.NewFromConfig(kind, req.Overrides, a.indicators)
		if err != nil {
			return nil, err
		}
		cfg = s.Configure(cfg)
		minBars = max(minBars, s.MinBars())
		strategies = append(strategies, s)
	}

	if err := series.Validate(minBars); err != nil {
		return nil, err
	}

	log := a.log.WithField("symbol", series.Symbol)
	df := core.NewDataframe(series)
	frame, err := indicator.NewFrame(df, cfg)
	if err != nil {
		return nil, err
	}
	log.Debugf("indicators ready for %d bars, warm-up %d", frame.Len(), frame.Warmup())

	engineOptions := []backtest.Option{backtest.WithMode(req.Mode)}
	if req.LongOnly {
		engineOptions = append(engineOptions, backtest.WithLongOnly())
	}
	engine := backtest.NewEngine(engineOptions...)

	results := make([]*Result, 0, len(strategies))
	for _, s := range strategies {
		signals := s.Evaluate(df, frame)
		buys, sells := signals.Count()

		run, err := engine.Run(series, signals, req.InitialCapital)
		if err != nil {
			return nil, fmt.Errorf("%s backtest: %w", s.Kind(), err)
		}

		summary := metric.Summarize(run, metric.Options{ExcludeForcedExits: req.ExcludeForcedExits})
		log.WithFields(map[string]any{
			"strategy": s.Kind(),
			"buys":     buys,
			"sells":    sells,
			"trades":   summary.TotalTrades,
		}).Debugf("backtest finished with %.2f%% return", summary.TotalReturn)

		results = append(results, newResult(run, s.Kind(), engine.Mode(), summary))
	}

	return results, nil
}

// Summary displays the statistics of every result and the distribution of
// their trade returns
func Summary(w io.Writer, results ...*Result) error {
	rows := lo.Map(results, func(r *Result, _ int) report.Row {
		return report.Row{
			Symbol:         r.Symbol,
			Strategy:       string(r.Strategy),
			InitialCapital: r.InitialCapital,
			FinalCapital:   r.FinalCapital,
			Summary:        r.Summary(),
		}
	})
	report.SummaryTable(w, rows)

	returns := lo.FlatMap(results, func(r *Result, _ int) []float64 { return r.Returns() })
	return report.ReturnsHistogram(w, returns, 15)
}

// SaveReturns writes the trade returns of every result to outputDir/<symbol>-<strategy>.csv
func SaveReturns(outputDir string, results ...*Result) error {
	for _, r := range results {
		outputFile := fmt.Sprintf("%s/%s-%s.csv", outputDir, r.Symbol, r.Strategy)
		if err := report.SaveReturns(outputFile, r.Returns()); err != nil {
			return err
		}
	}
	return nil
}
