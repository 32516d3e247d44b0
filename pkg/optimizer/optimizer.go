// Package optimizer searches strategy horizons for the values that maximize
// or minimize one backtest metric.
package optimizer

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/logger"
	"golang.org/x/sync/errgroup"
)

// ParameterType is the value type of a Parameter
type ParameterType string

const (
	TypeInt         ParameterType = "int"
	TypeFloat       ParameterType = "float"
	TypeBool        ParameterType = "bool"
	TypeString      ParameterType = "string"
	TypeCategorical ParameterType = "categorical"
)

// Parameter describes one searchable input. Min, Max and Step hold values of
// the parameter type; Options lists the values of string and categorical
// parameters.
type Parameter struct {
	Name        string
	Description string
	Default     any
	Min         any
	Max         any
	Step        any
	Options     []any
	Type        ParameterType
}

// Check reports whether value has the type the parameter expects
func (p Parameter) Check(value any) error {
	var ok bool
	switch p.Type {
	case TypeInt:
		_, ok = value.(int)
	case TypeFloat:
		_, ok = value.(float64)
	case TypeBool:
		_, ok = value.(bool)
	case TypeString:
		_, ok = value.(string)
	case TypeCategorical:
		ok = slices.Contains(p.Options, value)
	default:
		return fmt.Errorf("parameter %s has unsupported type %s", p.Name, p.Type)
	}

	if !ok {
		return fmt.Errorf("parameter %s: %v is not a valid %s", p.Name, value, p.Type)
	}
	return nil
}

// ParameterSet maps parameter names to the values of one evaluation
type ParameterSet map[string]any

// ValidateParameterSet checks that params holds a well typed value for every definition
func ValidateParameterSet(params ParameterSet, definitions []Parameter) error {
	for _, def := range definitions {
		value, exists := params[def.Name]
		if !exists {
			return fmt.Errorf("missing parameter: %s", def.Name)
		}
		if err := def.Check(value); err != nil {
			return err
		}
	}
	return nil
}

// Result is one evaluated parameter set
type Result struct {
	Parameters ParameterSet
	Metrics    map[string]float64
	Duration   time.Duration
}

// MetricName names a metric an evaluator reports
type MetricName string

const (
	MetricTotalReturn  MetricName = "total_return"
	MetricWinRate      MetricName = "win_rate"
	MetricPayoff       MetricName = "payoff"
	MetricProfitFactor MetricName = "profit_factor"
	MetricSQN          MetricName = "sqn"
	MetricDrawdown     MetricName = "drawdown"
	MetricSharpeLike   MetricName = "sharpe_like"
	MetricTradeCount   MetricName = "trade_count"
)

// MetricNames lists every metric an AnalyzerEvaluator reports
func MetricNames() []MetricName {
	return []MetricName{
		MetricTotalReturn, MetricWinRate, MetricPayoff, MetricProfitFactor,
		MetricSQN, MetricDrawdown, MetricSharpeLike, MetricTradeCount,
	}
}

// ParseMetricName validates a metric name
func ParseMetricName(s string) (MetricName, error) {
	for _, name := range MetricNames() {
		if string(name) == s {
			return name, nil
		}
	}
	return "", core.NewInvalidParameter("metric", s, "unknown metric")
}

// Evaluator scores one parameter set
type Evaluator interface {
	Evaluate(ctx context.Context, params ParameterSet) (*Result, error)
}

// Optimizer is a search method over parameter sets
type Optimizer interface {
	// Optimize evaluates the search space and returns the results best first
	Optimize(ctx context.Context, evaluator Evaluator, targetMetric MetricName, maximize bool) ([]*Result, error)
	SetParameters(params []Parameter) error
	SetMaxIterations(iterations int)
	SetParallelism(n int)
}

// Config holds the settings of a search
type Config struct {
	Parameters    []Parameter
	MaxIterations int // grid: cap on combinations (0 = all); random: number of draws
	Parallelism   int
	Logger        logger.Logger
	TargetMetric  MetricName
	Maximize      bool
	TopN          int
	Seed          int64 // random search only; 0 seeds from the clock
}

// NewConfig returns a config that maximizes total return over 100 iterations
func NewConfig() *Config {
	return &Config{
		Parameters:    []Parameter{},
		MaxIterations: 100,
		Parallelism:   1,
		TargetMetric:  MetricTotalReturn,
		Maximize:      true,
		TopN:          5,
	}
}

func (c *Config) WithParameters(params ...Parameter) *Config {
	c.Parameters = append(c.Parameters, params...)
	return c
}

func (c *Config) WithMaxIterations(iterations int) *Config {
	c.MaxIterations = iterations
	return c
}

func (c *Config) WithParallelism(n int) *Config {
	c.Parallelism = n
	return c
}

func (c *Config) WithLogger(logger logger.Logger) *Config {
	c.Logger = logger
	return c
}

func (c *Config) WithTargetMetric(metric MetricName, maximize bool) *Config {
	c.TargetMetric = metric
	c.Maximize = maximize
	return c
}

func (c *Config) WithTopN(n int) *Config {
	c.TopN = n
	return c
}

func (c *Config) WithSeed(seed int64) *Config {
	c.Seed = seed
	return c
}

// ResultSorter orders results by one metric, best first
type ResultSorter struct {
	Results    []*Result
	MetricName string
	Maximize   bool
}

func (s ResultSorter) Len() int      { return len(s.Results) }
func (s ResultSorter) Swap(i, j int) { s.Results[i], s.Results[j] = s.Results[j], s.Results[i] }

func (s ResultSorter) Less(i, j int) bool {
	valueI := s.Results[i].Metrics[s.MetricName]
	valueJ := s.Results[j].Metrics[s.MetricName]

	if s.Maximize {
		return valueI > valueJ
	}
	return valueI < valueJ
}

// sortResults orders results best first, keeping evaluation order on ties
func sortResults(results []*Result, targetMetric MetricName, maximize bool) {
	sort.Stable(ResultSorter{
		Results:    results,
		MetricName: string(targetMetric),
		Maximize:   maximize,
	})
}

// search holds what grid and random search share: the parameter space,
// the evaluation budget and the worker bound
type search struct {
	name          string
	parameters    []Parameter
	maxIterations int
	parallelism   int
	log           logger.Logger
}

func newSearch(name string, config *Config) (search, error) {
	if config == nil {
		return search{}, fmt.Errorf("config cannot be nil")
	}
	if len(config.Parameters) == 0 {
		return search{}, fmt.Errorf("at least one parameter must be provided")
	}

	return search{
		name:          name,
		parameters:    config.Parameters,
		maxIterations: config.MaxIterations,
		parallelism:   config.Parallelism,
		log:           config.Logger,
	}, nil
}

// SetParameters replaces the parameter space
func (s *search) SetParameters(params []Parameter) error {
	if len(params) == 0 {
		return fmt.Errorf("at least one parameter must be provided")
	}
	s.parameters = params
	return nil
}

// SetMaxIterations sets the evaluation budget
func (s *search) SetMaxIterations(iterations int) {
	s.maxIterations = iterations
}

// SetParallelism sets the number of evaluations running at once
func (s *search) SetParallelism(n int) {
	s.parallelism = n
}

func (s *search) logf(format string, args ...any) {
	if s.log != nil {
		s.log.Infof(format, args...)
	}
}

func (s *search) debugf(format string, args ...any) {
	if s.log != nil {
		s.log.Debugf(format, args...)
	}
}

// run evaluates every set and returns the results best first. Ties keep
// the order of the sets.
func (s *search) run(
	ctx context.Context,
	evaluator Evaluator,
	parameterSets []ParameterSet,
	targetMetric MetricName,
	maximize bool,
) ([]*Result, error) {
	if evaluator == nil {
		return nil, fmt.Errorf("evaluator cannot be nil")
	}

	s.logf("Starting %s with %d parameter sets", s.name, len(parameterSets))

	results, err := evaluateAll(ctx, evaluator, parameterSets, s.parallelism, s.debugf)
	if err != nil {
		return nil, err
	}

	sortResults(results, targetMetric, maximize)

	s.logf("%s completed with %d results", s.name, len(results))
	return results, nil
}

// evaluateAll runs the evaluator over every parameter set with at most
// parallelism evaluations in flight. Results keep the order of the sets.
// The first failed evaluation cancels the rest.
func evaluateAll(
	ctx context.Context,
	evaluator Evaluator,
	parameterSets []ParameterSet,
	parallelism int,
	logf func(format string, args ...any),
) ([]*Result, error) {
	results := make([]*Result, len(parameterSets))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(parallelism, 1))

	for i, params := range parameterSets {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			logf("Evaluating parameter set %d/%d", i+1, len(parameterSets))

			result, err := evaluator.Evaluate(ctx, params)
			if err != nil {
				return fmt.Errorf("evaluation error: %w", err)
			}
			results[i] = result
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
