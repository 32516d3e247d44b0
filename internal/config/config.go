// Package config loads the command line configuration with Viper: defaults,
// an optional YAML file and TRENDSCAN_* environment variables, in increasing
// precedence.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/raykavin/trendscan"
	"github.com/raykavin/trendscan/pkg/backtest"
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/logger"
	"github.com/raykavin/trendscan/pkg/logger/logrus"
	"github.com/raykavin/trendscan/pkg/logger/zerolog"
	"github.com/raykavin/trendscan/pkg/report"
	"github.com/raykavin/trendscan/pkg/strategy"
	"github.com/spf13/viper"
)

// Constants for configuration
const (
	EnvPrefix          = "TRENDSCAN"
	DefaultConfigPath  = "./trendscan.yaml"
	DefaultStoragePath = "./trendscan.db"
)

// Log backends
const (
	BackendZerolog = "zerolog"
	BackendLogrus  = "logrus"
)

// Config holds the application configuration
type Config struct {
	Log       LogConfig          `mapstructure:"log"`
	Backtest  BacktestConfig     `mapstructure:"backtest"`
	Overrides strategy.Overrides `mapstructure:"overrides"`
	Scan      ScanConfig         `mapstructure:"scan"`
	Storage   StorageConfig      `mapstructure:"storage"`
}

// LogConfig selects and formats the logger
type LogConfig struct {
	Backend    string `mapstructure:"backend"`
	Level      string `mapstructure:"level"`
	TimeFormat string `mapstructure:"time_format"`
	Color      bool   `mapstructure:"color"`
	JSON       bool   `mapstructure:"json"`
}

// BacktestConfig holds the defaults of every analysis request
type BacktestConfig struct {
	Strategy           string  `mapstructure:"strategy"`
	InitialCapital     float64 `mapstructure:"initial_capital"`
	Mode               string  `mapstructure:"mode"`
	LongOnly           bool    `mapstructure:"long_only"`
	ExcludeForcedExits bool    `mapstructure:"exclude_forced_exits"`
	EquityPoints       int     `mapstructure:"equity_points"`
}

// ScanConfig holds the scanner settings
type ScanConfig struct {
	Parallelism int `mapstructure:"parallelism"`
}

// StorageConfig locates the report archive
type StorageConfig struct {
	Path string `mapstructure:"path"`
}

// Default returns the configuration used when nothing else is set
func Default() Config {
	return Config{
		Log: LogConfig{
			Backend:    BackendZerolog,
			Level:      "info",
			TimeFormat: "2006-01-02 15:04:05",
			Color:      true,
		},
		Backtest: BacktestConfig{
			Strategy:       string(strategy.KindHybrid),
			InitialCapital: trendscan.DefaultInitialCapital,
			Mode:           string(backtest.ModeFlip),
			EquityPoints:   report.DefaultPoints,
		},
		Scan: ScanConfig{
			Parallelism: 4,
		},
		Storage: StorageConfig{
			Path: DefaultStoragePath,
		},
	}
}

// New returns a Viper instance carrying the defaults and the environment binding
func New() *viper.Viper {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("log.backend", cfg.Log.Backend)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.time_format", cfg.Log.TimeFormat)
	v.SetDefault("log.color", cfg.Log.Color)
	v.SetDefault("log.json", cfg.Log.JSON)

	v.SetDefault("backtest.strategy", cfg.Backtest.Strategy)
	v.SetDefault("backtest.initial_capital", cfg.Backtest.InitialCapital)
	v.SetDefault("backtest.mode", cfg.Backtest.Mode)
	v.SetDefault("backtest.long_only", cfg.Backtest.LongOnly)
	v.SetDefault("backtest.exclude_forced_exits", cfg.Backtest.ExcludeForcedExits)
	v.SetDefault("backtest.equity_points", cfg.Backtest.EquityPoints)

	// zero keeps the strategy default, registered so env variables bind
	v.SetDefault("overrides.fast_period", cfg.Overrides.FastPeriod)
	v.SetDefault("overrides.slow_period", cfg.Overrides.SlowPeriod)
	v.SetDefault("overrides.medium_period", cfg.Overrides.MediumPeriod)
	v.SetDefault("overrides.long_period", cfg.Overrides.LongPeriod)
	v.SetDefault("overrides.rsi_period", cfg.Overrides.RSIPeriod)
	v.SetDefault("overrides.rsi_lower", cfg.Overrides.RSILower)
	v.SetDefault("overrides.rsi_upper", cfg.Overrides.RSIUpper)

	v.SetDefault("scan.parallelism", cfg.Scan.Parallelism)
	v.SetDefault("storage.path", cfg.Storage.Path)
}

// Load reads the configuration file at path, if any, applies environment
// overrides and validates the result
func Load(path string) (*Config, error) {
	return LoadWith(New(), path)
}

// LoadWith is Load over a caller prepared Viper instance, such as one with
// command line flags bound to it
func LoadWith(v *viper.Viper, path string) (*Config, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings no command can run with
func (c *Config) Validate() error {
	switch c.Log.Backend {
	case BackendZerolog, BackendLogrus:
	default:
		return core.NewInvalidParameter("log.backend", c.Log.Backend, "must be zerolog or logrus")
	}

	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return core.NewInvalidParameter("log.level", c.Log.Level, err.Error())
	}

	if c.Backtest.EquityPoints < 2 {
		return core.NewInvalidParameter("backtest.equity_points", c.Backtest.EquityPoints, "must be at least 2")
	}

	if c.Scan.Parallelism < 1 {
		return core.NewInvalidParameter("scan.parallelism", c.Scan.Parallelism, "must be at least 1")
	}

	if strings.TrimSpace(c.Storage.Path) == "" {
		return core.NewInvalidParameter("storage.path", c.Storage.Path, "must not be empty")
	}

	req, err := c.Request()
	if err != nil {
		return err
	}
	return req.Validate()
}

// Request converts the backtest section into an analysis request
func (c *Config) Request() (trendscan.Request, error) {
	kind, err := strategy.ParseKind(c.Backtest.Strategy)
	if err != nil {
		return trendscan.Request{}, err
	}

	mode, err := backtest.ParseMode(c.Backtest.Mode)
	if err != nil {
		return trendscan.Request{}, err
	}

	return trendscan.Request{
		Strategy:           kind,
		InitialCapital:     c.Backtest.InitialCapital,
		Mode:               mode,
		LongOnly:           c.Backtest.LongOnly,
		Overrides:          c.Overrides,
		ExcludeForcedExits: c.Backtest.ExcludeForcedExits,
	}, nil
}

// Logger builds the logger of the configured backend
func (c *Config) Logger() (logger.Logger, error) {
	level, err := logger.ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	var log logger.Logger
	switch c.Log.Backend {
	case BackendLogrus:
		log, err = logrus.New("info", c.Log.TimeFormat, c.Log.Color, c.Log.JSON)
	default:
		log, err = zerolog.New("info", c.Log.TimeFormat, c.Log.Color, c.Log.JSON)
	}
	if err != nil {
		return nil, err
	}

	log.SetLevel(level)
	return log, nil
}

// SaveDefault writes the default configuration as YAML, creating the
// directory when needed
func SaveDefault(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create configuration directory: %w", err)
		}
	}

	cfg := Default()
	v := viper.New()
	v.Set("log", map[string]any{
		"backend":     cfg.Log.Backend,
		"level":       cfg.Log.Level,
		"time_format": cfg.Log.TimeFormat,
		"color":       cfg.Log.Color,
		"json":        cfg.Log.JSON,
	})
	v.Set("backtest", map[string]any{
		"strategy":             cfg.Backtest.Strategy,
		"initial_capital":      cfg.Backtest.InitialCapital,
		"mode":                 cfg.Backtest.Mode,
		"long_only":            cfg.Backtest.LongOnly,
		"exclude_forced_exits": cfg.Backtest.ExcludeForcedExits,
		"equity_points":        cfg.Backtest.EquityPoints,
	})
	v.Set("scan", map[string]any{"parallelism": cfg.Scan.Parallelism})
	v.Set("storage", map[string]any{"path": cfg.Storage.Path})

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not save default configuration: %w", err)
	}
	return nil
}
