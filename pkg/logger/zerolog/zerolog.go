package zerolog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/goterm/term"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// New creates a stdout logger adapter. When jsonFormat is set every event is
// written as one JSON object, otherwise as a coloured console line.
func New(level, dateTimeLayout string, colored, jsonFormat bool) (*ZerologAdapter, error) {
	return NewWithOutput(os.Stdout, level, dateTimeLayout, colored, jsonFormat)
}

// NewWithOutput is New writing to out
func NewWithOutput(out io.Writer, level, dateTimeLayout string, colored, jsonFormat bool) (*ZerologAdapter, error) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logMode, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var output io.Writer = out
	if !jsonFormat {
		console := zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    !colored,
			TimeFormat: dateTimeLayout,
		}
		if colored {
			console.FormatLevel = formatLevel
			console.FormatMessage = formatMessage
			console.FormatCaller = formatCaller
			console.FormatTimestamp = func(i any) string {
				return formatTimestamp(i, dateTimeLayout)
			}
		}
		output = console
	}

	logger := zerolog.New(output).
		Level(logMode).
		With().
		Timestamp().
		CallerWithSkipFrameCount(3).
		Logger()

	return NewAdapter(&logger), nil
}

// Console column widths
const (
	messageWidth = 80
	fileWidth    = 18
	lineWidth    = 4
)

type badge struct {
	tag   string
	paint func(format string, args ...any) string
}

var levelBadges = map[string]badge{
	zerolog.LevelTraceValue: {"TRC", term.Cyanf},
	zerolog.LevelDebugValue: {"DBG", term.Cyanf},
	zerolog.LevelInfoValue:  {"INF", term.Greenf},
	zerolog.LevelWarnValue:  {"WAR", term.Yellowf},
	zerolog.LevelErrorValue: {"ERR", term.Redf},
	zerolog.LevelFatalValue: {"FTL", term.Redf},
	zerolog.LevelPanicValue: {"PAN", term.Redf},
}

func formatLevel(i any) string {
	level, _ := i.(string)
	b, ok := levelBadges[level]
	if !ok {
		b = badge{"UNK", term.Whitef}
	}
	return b.paint("[%s]", b.tag)
}

// formatMessage fits the message into a fixed column so fields line up
func formatMessage(i any) string {
	msg, _ := i.(string)
	if msg == "" {
		return ">"
	}
	if len(msg) > messageWidth {
		msg = msg[:messageWidth]
	}
	return term.Whitef("> %-*s", messageWidth, msg)
}

// formatCaller renders file:line with the file name cut or padded to a
// fixed width and only the last digits of long line numbers
func formatCaller(i any) string {
	path, _ := i.(string)
	if path == "" {
		return ""
	}

	file, line, found := strings.Cut(filepath.Base(path), ":")
	if !found {
		return filepath.Base(path)
	}

	if len(file) > fileWidth {
		file = file[:fileWidth]
	}
	if len(line) > lineWidth {
		line = line[len(line)-lineWidth:]
	}
	return term.Yellowf("[%-*s:%*s]", fileWidth, file, lineWidth, line)
}

func formatTimestamp(i any, layout string) string {
	raw, ok := i.(string)
	if !ok {
		return term.Cyanf("[%v]", i)
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		raw = ts.Local().Format(layout)
	}
	return term.Cyanf("[%s]", raw)
}
