package optimizer

import (
	"context"
	"math/rand"
	"time"
)

// RandomSearch evaluates MaxIterations parameter sets drawn uniformly from
// the parameter ranges
type RandomSearch struct {
	search
	rng *rand.Rand
}

// NewRandomSearch creates a new random search optimizer. A zero Config.Seed
// seeds the generator from the clock.
func NewRandomSearch(config *Config) (*RandomSearch, error) {
	base, err := newSearch("random search", config)
	if err != nil {
		return nil, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &RandomSearch{
		search: base,
		rng:    rand.New(rand.NewSource(seed)),
	}, nil
}

// Optimize runs the random search optimization process
func (r *RandomSearch) Optimize(ctx context.Context, evaluator Evaluator, targetMetric MetricName, maximize bool) ([]*Result, error) {
	return r.run(ctx, evaluator, r.generateRandomParameterSets(), targetMetric, maximize)
}

// generateRandomParameterSets draws every set before any evaluation starts,
// so a fixed seed yields the same sets at any parallelism
func (r *RandomSearch) generateRandomParameterSets() []ParameterSet {
	parameterSets := make([]ParameterSet, max(r.maxIterations, 0))

	for i := range parameterSets {
		paramSet := make(ParameterSet, len(r.parameters))
		for _, param := range r.parameters {
			paramSet[param.Name] = r.generateRandomValue(param)
		}
		parameterSets[i] = paramSet
	}

	return parameterSets
}

// generateRandomValue draws one value of the parameter type, falling back to
// the default when the range is unusable
func (r *RandomSearch) generateRandomValue(param Parameter) any {
	switch param.Type {
	case TypeInt:
		lower, okMin := param.Min.(int)
		upper, okMax := param.Max.(int)
		switch {
		case !okMin:
			return intOr(param.Default)
		case !okMax || lower >= upper:
			return lower
		}
		return lower + r.rng.Intn(upper-lower+1)

	case TypeFloat:
		lower, okMin := param.Min.(float64)
		upper, okMax := param.Max.(float64)
		switch {
		case !okMin:
			return floatOr(param.Default)
		case !okMax || lower >= upper:
			return lower
		}
		return lower + r.rng.Float64()*(upper-lower)

	case TypeBool:
		return r.rng.Intn(2) == 1

	case TypeString, TypeCategorical:
		if len(param.Options) == 0 {
			return param.Default
		}
		return param.Options[r.rng.Intn(len(param.Options))]

	default:
		return param.Default
	}
}

func intOr(value any) int {
	v, _ := value.(int)
	return v
}

func floatOr(value any) float64 {
	v, _ := value.(float64)
	return v
}
