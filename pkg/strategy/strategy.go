package strategy

import (
	"fmt"
	"strings"

	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/indicator"
)

// Kind selects one of the signal rules
type Kind string

const (
	KindHybrid             Kind = "hybrid"
	KindCrossoverFastSlow  Kind = "crossover_fast_slow"
	KindOscillatorReversal Kind = "oscillator_reversal"
	KindCrossoverLong      Kind = "crossover_long"
)

// Kinds returns every supported strategy kind in display order
func Kinds() []Kind {
	return []Kind{KindHybrid, KindCrossoverFastSlow, KindOscillatorReversal, KindCrossoverLong}
}

// ParseKind converts a selector string into a Kind
func ParseKind(s string) (Kind, error) {
	kind := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, k := range Kinds() {
		if k == kind {
			return k, nil
		}
	}
	return "", core.NewInvalidParameter("strategy", s, "unknown strategy")
}

func (k Kind) String() string { return string(k) }

type Strategy interface {
	// Kind identifies the rule set
	Kind() Kind
	// MinBars is the shortest series the strategy accepts.
	MinBars() int
	// Configure returns cfg with the horizons this strategy reads replaced by its own.
	Configure(cfg indicator.Config) indicator.Config
	// Evaluate turns indicator state into buy and sell flags aligned with the dataframe.
	// It never mutates the frame.
	Evaluate(df *core.Dataframe, frame *indicator.Frame) core.SignalFrame
}

const (
	defaultMinBars = 50
	longMinBars    = 200

	DefaultRSILower = 30.0
	DefaultRSIUpper = 70.0
)

// New builds the strategy of the given kind with the overrides applied
// on top of the default horizons.
func New(kind Kind, overrides Overrides) (Strategy, error) {
	return NewFromConfig(kind, overrides, indicator.DefaultConfig())
}

// NewFromConfig builds the strategy of the given kind with the overrides
// applied on top of base. Bands always come from base.
func NewFromConfig(kind Kind, overrides Overrides, base indicator.Config) (Strategy, error) {
	if err := overrides.Validate(); err != nil {
		return nil, err
	}

	cfg := overrides.Apply(base)

	switch kind {
	case KindHybrid:
		return &Hybrid{Bands: cfg.Bands}, nil
	case KindCrossoverFastSlow:
		return &CrossoverFastSlow{Fast: cfg.EMAFast, Slow: cfg.EMASlow}, nil
	case KindOscillatorReversal:
		return &OscillatorReversal{
			Period: cfg.RSIPeriod,
			Lower:  valueOr(overrides.RSILower, DefaultRSILower),
			Upper:  valueOr(overrides.RSIUpper, DefaultRSIUpper),
		}, nil
	case KindCrossoverLong:
		return &CrossoverLong{Medium: cfg.SMAMedium, Long: cfg.SMALong}, nil
	default:
		return nil, core.NewInvalidParameter("strategy", string(kind), "unknown strategy")
	}
}

// Overrides replaces default horizons and thresholds. Zero keeps the default.
type Overrides struct {
	FastPeriod   int     `mapstructure:"fast_period" json:"fastPeriod,omitempty"`
	SlowPeriod   int     `mapstructure:"slow_period" json:"slowPeriod,omitempty"`
	MediumPeriod int     `mapstructure:"medium_period" json:"mediumPeriod,omitempty"`
	LongPeriod   int     `mapstructure:"long_period" json:"longPeriod,omitempty"`
	RSIPeriod    int     `mapstructure:"rsi_period" json:"rsiPeriod,omitempty"`
	RSILower     float64 `mapstructure:"rsi_lower" json:"rsiLower,omitempty"`
	RSIUpper     float64 `mapstructure:"rsi_upper" json:"rsiUpper,omitempty"`
}

// Validate rejects negative horizons and thresholds outside (0, 100)
func (o Overrides) Validate() error {
	periods := []struct {
		name  string
		value int
	}{
		{"fast_period", o.FastPeriod},
		{"slow_period", o.SlowPeriod},
		{"medium_period", o.MediumPeriod},
		{"long_period", o.LongPeriod},
		{"rsi_period", o.RSIPeriod},
	}
	for _, p := range periods {
		if p.value < 0 {
			return core.NewInvalidParameter(p.name, p.value, "must not be negative")
		}
	}

	if o.RSILower < 0 || o.RSILower >= 100 {
		return core.NewInvalidParameter("rsi_lower", o.RSILower, "must be within [0, 100)")
	}
	if o.RSIUpper < 0 || o.RSIUpper >= 100 {
		return core.NewInvalidParameter("rsi_upper", o.RSIUpper, "must be within [0, 100)")
	}

	lower := valueOr(o.RSILower, DefaultRSILower)
	upper := valueOr(o.RSIUpper, DefaultRSIUpper)
	if lower >= upper {
		return core.NewInvalidParameter("rsi_lower", lower, fmt.Sprintf("must be below rsi_upper %g", upper))
	}

	return nil
}

// Apply returns cfg with every non-zero horizon override applied
func (o Overrides) Apply(cfg indicator.Config) indicator.Config {
	cfg.EMAFast = valueOr(o.FastPeriod, cfg.EMAFast)
	cfg.EMASlow = valueOr(o.SlowPeriod, cfg.EMASlow)
	cfg.SMAMedium = valueOr(o.MediumPeriod, cfg.SMAMedium)
	cfg.SMALong = valueOr(o.LongPeriod, cfg.SMALong)
	cfg.RSIPeriod = valueOr(o.RSIPeriod, cfg.RSIPeriod)
	return cfg
}

// Parameter names understood by OverridesFromParams
const (
	ParamFast     = "fast"
	ParamSlow     = "slow"
	ParamMedium   = "medium"
	ParamLong     = "long"
	ParamRSI      = "rsi"
	ParamRSILower = "rsi_lower"
	ParamRSIUpper = "rsi_upper"
)

// OverridesFromParams builds overrides from a named parameter set, as produced
// by a parameter sweep. Unknown names are rejected.
func OverridesFromParams(params map[string]any) (Overrides, error) {
	var o Overrides

	for name, value := range params {
		var err error
		switch name {
		case ParamFast:
			o.FastPeriod, err = toInt(name, value)
		case ParamSlow:
			o.SlowPeriod, err = toInt(name, value)
		case ParamMedium:
			o.MediumPeriod, err = toInt(name, value)
		case ParamLong:
			o.LongPeriod, err = toInt(name, value)
		case ParamRSI:
			o.RSIPeriod, err = toInt(name, value)
		case ParamRSILower:
			o.RSILower, err = toFloat(name, value)
		case ParamRSIUpper:
			o.RSIUpper, err = toFloat(name, value)
		default:
			err = core.NewInvalidParameter(name, value, "unknown parameter")
		}
		if err != nil {
			return Overrides{}, err
		}
	}

	return o, o.Validate()
}

func toInt(name string, value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, core.NewInvalidParameter(name, value, "must be a whole number")
		}
		return int(v), nil
	default:
		return 0, core.NewInvalidParameter(name, value, "must be an integer")
	}
}

func toFloat(name string, value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	default:
		return 0, core.NewInvalidParameter(name, value, "must be a number")
	}
}

func valueOr[T int | float64](value, fallback T) T {
	if value == 0 {
		return fallback
	}
	return value
}
