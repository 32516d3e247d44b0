package trendscan

import (
	"github.com/raykavin/trendscan/pkg/indicator"
	"github.com/raykavin/trendscan/pkg/logger"
)

// Option is a functional option for configuring an Analyzer
type Option func(*Analyzer)

// WithLogger sets the logger used for run milestones
func WithLogger(log logger.Logger) Option {
	return func(a *Analyzer) {
		if log != nil {
			a.log = log
		}
	}
}

// WithIndicatorConfig replaces the base indicator horizons and bands. Request
// overrides still take precedence over it.
func WithIndicatorConfig(cfg indicator.Config) Option {
	return func(a *Analyzer) {
		a.indicators = cfg
	}
}

// WithLogLevel sets the level of a logger derived for this analyzer, so
// DefaultLog keeps its level. Apply it after WithLogger. A logrus backend
// shares one level across all of its derived loggers.
func WithLogLevel(level logger.Level) Option {
	return func(a *Analyzer) {
		a.log = a.log.WithFields(nil)
		a.log.SetLevel(level)
	}
}
