package optimizer

import (
	"context"
	"fmt"
	"time"

	"github.com/raykavin/trendscan"
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/strategy"
)

// AnalyzerEvaluator evaluates horizon overrides by running a full analysis of
// one price series
type AnalyzerEvaluator struct {
	analyzer *trendscan.Analyzer
	series   core.PriceSeries
	request  trendscan.Request
}

// NewAnalyzerEvaluator creates an evaluator for the strategy in req. The
// overrides of req are the base that every parameter set replaces.
func NewAnalyzerEvaluator(analyzer *trendscan.Analyzer, series core.PriceSeries, req trendscan.Request) *AnalyzerEvaluator {
	return &AnalyzerEvaluator{
		analyzer: analyzer,
		series:   series,
		request:  req,
	}
}

// Evaluate runs the analysis with the given parameters and returns its metrics
func (e *AnalyzerEvaluator) Evaluate(ctx context.Context, params ParameterSet) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startTime := time.Now()

	overrides, err := strategy.OverridesFromParams(params)
	if err != nil {
		return nil, fmt.Errorf("invalid parameters %s: %w", FormatParameterSet(params), err)
	}

	req := e.request
	req.Overrides = mergeOverrides(req.Overrides, overrides)

	analysis, err := e.analyzer.Analyze(e.series, req)
	if err != nil {
		return nil, fmt.Errorf("analysis with %s failed: %w", FormatParameterSet(params), err)
	}

	return &Result{
		Parameters: params,
		Metrics:    collectMetrics(analysis),
		Duration:   time.Since(startTime),
	}, nil
}

// collectMetrics extracts the optimizable metrics of one analysis
func collectMetrics(r *trendscan.Result) map[string]float64 {
	return map[string]float64{
		string(MetricTotalReturn):  r.TotalReturn,
		string(MetricWinRate):      r.WinRate,
		string(MetricPayoff):       r.Payoff,
		string(MetricProfitFactor): r.ProfitFactor,
		string(MetricSQN):          r.SQN,
		string(MetricDrawdown):     r.MaxDrawdown,
		string(MetricSharpeLike):   r.SharpeLike,
		string(MetricTradeCount):   float64(r.TotalTrades),
	}
}

func mergeOverrides(base, patch strategy.Overrides) strategy.Overrides {
	if patch.FastPeriod != 0 {
		base.FastPeriod = patch.FastPeriod
	}
	if patch.SlowPeriod != 0 {
		base.SlowPeriod = patch.SlowPeriod
	}
	if patch.MediumPeriod != 0 {
		base.MediumPeriod = patch.MediumPeriod
	}
	if patch.LongPeriod != 0 {
		base.LongPeriod = patch.LongPeriod
	}
	if patch.RSIPeriod != 0 {
		base.RSIPeriod = patch.RSIPeriod
	}
	if patch.RSILower != 0 {
		base.RSILower = patch.RSILower
	}
	if patch.RSIUpper != 0 {
		base.RSIUpper = patch.RSIUpper
	}
	return base
}

// StrategyParameters returns the horizons worth sweeping for a strategy kind
func StrategyParameters(kind strategy.Kind) ([]Parameter, error) {
	switch kind {
	case strategy.KindCrossoverFastSlow:
		return []Parameter{
			{Name: strategy.ParamFast, Description: "Fast EMA length", Default: 9, Min: 5, Max: 15, Step: 2, Type: TypeInt},
			{Name: strategy.ParamSlow, Description: "Slow EMA length", Default: 21, Min: 18, Max: 34, Step: 4, Type: TypeInt},
		}, nil
	case strategy.KindOscillatorReversal:
		return []Parameter{
			{Name: strategy.ParamRSI, Description: "RSI lookback", Default: 14, Min: 7, Max: 21, Step: 7, Type: TypeInt},
			{Name: strategy.ParamRSILower, Description: "Oversold threshold", Default: 30.0, Min: 20.0, Max: 35.0, Step: 5.0, Type: TypeFloat},
			{Name: strategy.ParamRSIUpper, Description: "Overbought threshold", Default: 70.0, Min: 65.0, Max: 80.0, Step: 5.0, Type: TypeFloat},
		}, nil
	case strategy.KindCrossoverLong:
		return []Parameter{
			{Name: strategy.ParamMedium, Description: "Medium SMA length", Default: 50, Min: 30, Max: 70, Step: 10, Type: TypeInt},
			{Name: strategy.ParamLong, Description: "Long SMA length", Default: 200, Min: 150, Max: 250, Step: 50, Type: TypeInt},
		}, nil
	default:
		return nil, core.NewInvalidParameter("strategy", string(kind), "has no sweepable horizons")
	}
}
