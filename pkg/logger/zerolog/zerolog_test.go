package zerolog

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/raykavin/trendscan/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithOutput_JSON(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := NewWithOutput(buf, "info", "2006-01-02", false, true)
	require.NoError(t, err)

	log.WithFields(map[string]any{"symbol": "TCS"}).WithError(errors.New("boom")).Error("run failed")

	var event map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &event))
	assert.Equal(t, "run failed", event["message"])
	assert.Equal(t, "TCS", event["symbol"])
	assert.Equal(t, "boom", event["error"])
	assert.Equal(t, "error", event["level"])
}

func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := NewWithOutput(buf, "debug", "", false, true)
	require.NoError(t, err)
	assert.Equal(t, logger.DebugLevel, log.GetLevel())

	log.SetLevel(logger.ErrorLevel)
	assert.Equal(t, logger.ErrorLevel, log.GetLevel())

	log.Warn("hidden")
	assert.Zero(t, buf.Len())
}

func TestLevelConversion(t *testing.T) {
	for _, level := range []logger.Level{
		logger.TraceLevel, logger.DebugLevel, logger.InfoLevel,
		logger.WarnLevel, logger.ErrorLevel, logger.FatalLevel, logger.PanicLevel,
	} {
		assert.Equal(t, level, toLevel(toZerologLevel(level)))
	}
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New("loud", "", false, false)
	require.Error(t, err)
}

func TestConsoleFormatters(t *testing.T) {
	assert.Contains(t, formatLevel("info"), "[INF]")
	assert.Contains(t, formatLevel("nonsense"), "[UNK]")
	assert.Contains(t, formatLevel(42), "[UNK]")

	assert.Equal(t, ">", formatMessage(""))
	assert.Contains(t, formatMessage("short"), "> short"+strings.Repeat(" ", messageWidth-len("short")))
	assert.NotContains(t, formatMessage(strings.Repeat("x", 100)), strings.Repeat("x", messageWidth+1))

	assert.Contains(t, formatCaller("/src/pkg/scanner/scanner.go:123"), "[scanner.go        : 123]")
	assert.Contains(t, formatCaller("/src/a_really_long_file_name_here.go:12345"), "[a_really_long_file:2345]")
	assert.Equal(t, "", formatCaller(""))
	assert.Equal(t, "noline.go", formatCaller("/x/noline.go"))
}
