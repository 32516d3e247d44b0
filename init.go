package trendscan

import (
	"fmt"
	"os"
	"strconv"

	"github.com/raykavin/trendscan/pkg/logger"
	"github.com/raykavin/trendscan/pkg/logger/zerolog"
)

// Environment variables read when the package initializes DefaultLog
const (
	envLogLevel      = "TRENDSCAN_LOG_LEVEL"
	envLogTimeFormat = "TRENDSCAN_LOG_TIME_FORMAT"
	envLogColor      = "TRENDSCAN_LOG_COLOR"
	envLogJSON       = "TRENDSCAN_LOG_JSON"
)

func init() {
	log, err := defaultLogger(os.LookupEnv)
	if err != nil {
		panic(err)
	}
	DefaultLog = log
}

// defaultLogger builds the package logger from the environment: info level,
// coloured console output and a seconds resolution timestamp unless overridden
func defaultLogger(lookup func(string) (string, bool)) (logger.Logger, error) {
	env := func(key, fallback string) string {
		if value, ok := lookup(key); ok && value != "" {
			return value
		}
		return fallback
	}

	level, err := logger.ParseLevel(env(envLogLevel, "info"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", envLogLevel, err)
	}

	colored, err := strconv.ParseBool(env(envLogColor, "true"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", envLogColor, err)
	}

	jsonFormat, err := strconv.ParseBool(env(envLogJSON, "false"))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", envLogJSON, err)
	}

	log, err := zerolog.New("info", env(envLogTimeFormat, "2006-01-02 15:04:05"), colored, jsonFormat)
	if err != nil {
		return nil, err
	}
	log.SetLevel(level)
	return log, nil
}
