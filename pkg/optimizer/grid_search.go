package optimizer

import (
	"context"
	"fmt"
	"maps"
)

// GridSearch evaluates every combination of parameter values, in parameter
// order, up to MaxIterations combinations when it is positive
type GridSearch struct {
	search
}

// NewGridSearch creates a new grid search optimizer
func NewGridSearch(config *Config) (*GridSearch, error) {
	base, err := newSearch("grid search", config)
	if err != nil {
		return nil, err
	}
	return &GridSearch{search: base}, nil
}

// Optimize runs the grid search optimization process
func (g *GridSearch) Optimize(ctx context.Context, evaluator Evaluator, targetMetric MetricName, maximize bool) ([]*Result, error) {
	parameterSets, err := g.generateParameterSets()
	if err != nil {
		return nil, err
	}

	if g.maxIterations > 0 && len(parameterSets) > g.maxIterations {
		g.logf("Limiting parameter combinations from %d to %d", len(parameterSets), g.maxIterations)
		parameterSets = parameterSets[:g.maxIterations]
	}

	return g.run(ctx, evaluator, parameterSets, targetMetric, maximize)
}

// generateParameterSets creates all possible combinations of parameter values
func (g *GridSearch) generateParameterSets() ([]ParameterSet, error) {
	parameterSets := []ParameterSet{make(ParameterSet)}

	for _, param := range g.parameters {
		values, err := generateParameterValues(param)
		if err != nil {
			return nil, err
		}

		// Extend every existing set with each value
		newSets := make([]ParameterSet, 0, len(parameterSets)*len(values))
		for _, set := range parameterSets {
			for _, value := range values {
				newSet := maps.Clone(set)
				newSet[param.Name] = value
				newSets = append(newSets, newSet)
			}
		}
		parameterSets = newSets
	}

	return parameterSets, nil
}

// generateParameterValues lists the grid points of one parameter
func generateParameterValues(param Parameter) ([]any, error) {
	switch param.Type {
	case TypeInt:
		return steppedValues[int](param, func(lower, step, i int) int { return lower + i*step })
	case TypeFloat:
		// index based so rounding does not accumulate
		return steppedValues[float64](param, func(lower, step float64, i int) float64 { return lower + float64(i)*step })
	case TypeBool:
		return []any{true, false}, nil
	case TypeString, TypeCategorical:
		if len(param.Options) == 0 {
			return nil, fmt.Errorf("parameter %s of type %s must have options", param.Name, param.Type)
		}
		return param.Options, nil
	}
	return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
}

// steppedValues walks [Min, Max] by Step. All three bounds must hold T.
func steppedValues[T int | float64](param Parameter, at func(lower, step T, i int) T) ([]any, error) {
	bounds := [3]any{param.Min, param.Max, param.Step}
	var typed [3]T
	for i, name := range [3]string{"min", "max", "step"} {
		v, ok := bounds[i].(T)
		if !ok {
			return nil, fmt.Errorf("parameter %s %s %v is not a %s", param.Name, name, bounds[i], param.Type)
		}
		typed[i] = v
	}

	lower, upper, step := typed[0], typed[1], typed[2]
	if step <= 0 {
		return nil, fmt.Errorf("parameter %s step must be positive", param.Name)
	}

	// float tolerance of a billionth of a step keeps the upper bound reachable
	limit := float64(upper) + float64(step)*1e-9
	var values []any
	for i := 0; ; i++ {
		v := at(lower, step, i)
		if float64(v) > limit {
			return values, nil
		}
		values = append(values, v)
	}
}
