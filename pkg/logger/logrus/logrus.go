package logrus

import (
	"fmt"
	"io"
	"os"

	"github.com/raykavin/trendscan/pkg/logger"
	"github.com/sirupsen/logrus"
)

// LogrusAdapter implements logger.Logger on top of a logrus entry
type LogrusAdapter struct {
	*logrus.Entry
}

// New creates a stdout logrus logger with the given level name.
// jsonFormat switches from the text formatter to the JSON formatter.
func New(level, dateTimeLayout string, colored, jsonFormat bool) (*LogrusAdapter, error) {
	return NewWithOutput(os.Stdout, level, dateTimeLayout, colored, jsonFormat)
}

// NewWithOutput is New writing to out
func NewWithOutput(out io.Writer, level, dateTimeLayout string, colored, jsonFormat bool) (*LogrusAdapter, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	log := logrus.New()
	log.SetOutput(out)
	log.SetLevel(lvl)

	if jsonFormat {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: dateTimeLayout})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: dateTimeLayout,
			ForceColors:     colored,
			DisableColors:   !colored,
		})
	}

	return NewAdapter(logrus.NewEntry(log)), nil
}

// NewAdapter wraps an existing logrus entry
func NewAdapter(entry *logrus.Entry) *LogrusAdapter {
	return &LogrusAdapter{entry}
}

// WithField implements logger.Logger.
func (l *LogrusAdapter) WithField(key string, value any) logger.Logger {
	return &LogrusAdapter{l.Entry.WithField(key, value)}
}

// WithFields implements logger.Logger.
func (l *LogrusAdapter) WithFields(fields map[string]any) logger.Logger {
	return &LogrusAdapter{l.Entry.WithFields(fields)}
}

// WithError implements logger.Logger.
func (l *LogrusAdapter) WithError(err error) logger.Logger {
	return &LogrusAdapter{l.Entry.WithError(err)}
}

// SetLevel implements logger.Logger.
func (l *LogrusAdapter) SetLevel(level logger.Level) {
	if level == logger.Disabled {
		l.Entry.Logger.SetOutput(io.Discard)
		return
	}
	l.Entry.Logger.SetLevel(toLogrusLevel(level))
}

// GetLevel implements logger.Logger.
func (l *LogrusAdapter) GetLevel() logger.Level {
	return toLevel(l.Entry.Logger.GetLevel())
}

func toLevel(level logrus.Level) logger.Level {
	switch level {
	case logrus.TraceLevel:
		return logger.TraceLevel
	case logrus.DebugLevel:
		return logger.DebugLevel
	case logrus.InfoLevel:
		return logger.InfoLevel
	case logrus.WarnLevel:
		return logger.WarnLevel
	case logrus.ErrorLevel:
		return logger.ErrorLevel
	case logrus.FatalLevel:
		return logger.FatalLevel
	case logrus.PanicLevel:
		return logger.PanicLevel
	default:
		return logger.NoLevel
	}
}

func toLogrusLevel(level logger.Level) logrus.Level {
	switch level {
	case logger.TraceLevel:
		return logrus.TraceLevel
	case logger.DebugLevel:
		return logrus.DebugLevel
	case logger.WarnLevel:
		return logrus.WarnLevel
	case logger.ErrorLevel:
		return logrus.ErrorLevel
	case logger.FatalLevel:
		return logrus.FatalLevel
	case logger.PanicLevel:
		return logrus.PanicLevel
	default:
		return logrus.InfoLevel
	}
}
