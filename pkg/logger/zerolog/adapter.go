package zerolog

import (
	"fmt"

	"github.com/raykavin/trendscan/pkg/logger"
	"github.com/rs/zerolog"
)

// ZerologAdapter implements logger.Logger on top of a zerolog.Logger
type ZerologAdapter struct {
	*zerolog.Logger
}

// NewAdapter wraps an existing zerolog logger
func NewAdapter(logger *zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger}
}

func (z *ZerologAdapter) derive(ctx zerolog.Context) logger.Logger {
	derived := ctx.Logger()
	return &ZerologAdapter{&derived}
}

// WithError returns a logger that attaches err to every event
func (z *ZerologAdapter) WithError(err error) logger.Logger {
	return z.derive(z.With().Err(err))
}

// WithField returns a logger that attaches key=value to every event
func (z *ZerologAdapter) WithField(key string, value any) logger.Logger {
	return z.derive(z.With().Interface(key, value))
}

// WithFields returns a logger that attaches every field to every event
func (z *ZerologAdapter) WithFields(fields map[string]any) logger.Logger {
	return z.derive(z.With().Fields(fields))
}

// GetLevel returns the minimum level of this logger
func (z *ZerologAdapter) GetLevel() logger.Level {
	return toLevel(z.Logger.GetLevel())
}

// SetLevel changes the minimum level of this logger only; loggers derived
// before the call keep their level.
func (z *ZerologAdapter) SetLevel(level logger.Level) {
	leveled := z.Logger.Level(toZerologLevel(level))
	z.Logger = &leveled
}

func (z *ZerologAdapter) Print(args ...any) { z.Logger.Print(args...) }
func (z *ZerologAdapter) Trace(args ...any) { z.Logger.Trace().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Debug(args ...any) { z.Logger.Debug().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Info(args ...any)  { z.Logger.Info().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Warn(args ...any)  { z.Logger.Warn().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Error(args ...any) { z.Logger.Error().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Fatal(args ...any) { z.Logger.Fatal().Msg(fmt.Sprint(args...)) }
func (z *ZerologAdapter) Panic(args ...any) { z.Logger.Panic().Msg(fmt.Sprint(args...)) }

func (z *ZerologAdapter) Printf(format string, args ...any) { z.Logger.Printf(format, args...) }
func (z *ZerologAdapter) Tracef(format string, args ...any) { z.Logger.Trace().Msgf(format, args...) }
func (z *ZerologAdapter) Debugf(format string, args ...any) { z.Logger.Debug().Msgf(format, args...) }
func (z *ZerologAdapter) Infof(format string, args ...any)  { z.Logger.Info().Msgf(format, args...) }
func (z *ZerologAdapter) Warnf(format string, args ...any)  { z.Logger.Warn().Msgf(format, args...) }
func (z *ZerologAdapter) Errorf(format string, args ...any) { z.Logger.Error().Msgf(format, args...) }
func (z *ZerologAdapter) Fatalf(format string, args ...any) { z.Logger.Fatal().Msgf(format, args...) }
func (z *ZerologAdapter) Panicf(format string, args ...any) { z.Logger.Panic().Msgf(format, args...) }

// levelPairs maps every logger level to its zerolog counterpart
var levelPairs = []struct {
	level logger.Level
	zl    zerolog.Level
}{
	{logger.Disabled, zerolog.Disabled},
	{logger.TraceLevel, zerolog.TraceLevel},
	{logger.DebugLevel, zerolog.DebugLevel},
	{logger.InfoLevel, zerolog.InfoLevel},
	{logger.WarnLevel, zerolog.WarnLevel},
	{logger.ErrorLevel, zerolog.ErrorLevel},
	{logger.FatalLevel, zerolog.FatalLevel},
	{logger.PanicLevel, zerolog.PanicLevel},
	{logger.NoLevel, zerolog.NoLevel},
}

func toLevel(level zerolog.Level) logger.Level {
	for _, pair := range levelPairs {
		if pair.zl == level {
			return pair.level
		}
	}
	return logger.NoLevel
}

func toZerologLevel(level logger.Level) zerolog.Level {
	for _, pair := range levelPairs {
		if pair.level == level {
			return pair.zl
		}
	}
	return zerolog.NoLevel
}
