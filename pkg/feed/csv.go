package feed

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/raykavin/trendscan/pkg/core"
	"github.com/samber/lo"
	"github.com/xhit/go-str2duration/v2"
)

var (
	ErrEmptyFile = errors.New("empty price file")

	defaultHeaderMap = map[string]int{
		"time": 0, "open": 1, "close": 2, "low": 3, "high": 4, "volume": 5,
	}
	requiredHeaders = []string{"time", "open", "close", "low", "high", "volume"}
	dateLayouts     = []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"}
)

// ReadCSV loads a price history file. Rows default to the column order
// time,open,close,low,high,volume; a header row may name the columns in any order.
func ReadCSV(path, symbol string) (core.PriceSeries, error) {
	file, err := os.Open(path)
	if err != nil {
		return core.PriceSeries{}, err
	}
	defer file.Close()

	if symbol == "" {
		symbol = SymbolFromPath(path)
	}

	series, err := Read(file, symbol)
	if err != nil {
		return core.PriceSeries{}, fmt.Errorf("%s: %w", path, err)
	}
	return series, nil
}

// Read parses price rows from r
func Read(r io.Reader, symbol string) (core.PriceSeries, error) {
	lines, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return core.PriceSeries{}, err
	}

	// skip blank rows
	lines = lo.Filter(lines, func(line []string, _ int) bool {
		return len(line) > 1 || (len(line) == 1 && strings.TrimSpace(line[0]) != "")
	})
	if len(lines) == 0 {
		return core.PriceSeries{}, ErrEmptyFile
	}

	headerMap, hasHeader, err := parseHeaders(lines[0])
	if err != nil {
		return core.PriceSeries{}, err
	}
	if hasHeader {
		lines = lines[1:]
	}

	bars := make([]core.Bar, 0, len(lines))
	for i, line := range lines {
		bar, err := parseBar(line, headerMap)
		if err != nil {
			return core.PriceSeries{}, fmt.Errorf("row %d: %w", i+1, err)
		}
		bars = append(bars, bar)
	}

	return core.NewPriceSeries(symbol, bars), nil
}

// parseHeaders returns the column index of every field. A first row whose
// first cell parses as a timestamp is data, not a header.
func parseHeaders(headers []string) (map[string]int, bool, error) {
	if _, err := parseTime(headers[0]); err == nil {
		return defaultHeaderMap, false, nil
	}

	headerMap := make(map[string]int, len(headers))
	for index, header := range headers {
		headerMap[strings.ToLower(strings.TrimSpace(header))] = index
	}
	if _, ok := headerMap["date"]; ok {
		if _, ok := headerMap["time"]; !ok {
			headerMap["time"] = headerMap["date"]
		}
	}

	missing := lo.Filter(requiredHeaders, func(h string, _ int) bool {
		_, ok := headerMap[h]
		return !ok
	})
	if len(missing) > 0 {
		return nil, true, fmt.Errorf("missing columns: %s", strings.Join(missing, ", "))
	}

	return headerMap, true, nil
}

func parseBar(line []string, headerMap map[string]int) (core.Bar, error) {
	field := func(name string) (string, error) {
		index := headerMap[name]
		if index >= len(line) {
			return "", fmt.Errorf("missing %s", name)
		}
		return strings.TrimSpace(line[index]), nil
	}

	raw, err := field("time")
	if err != nil {
		return core.Bar{}, err
	}
	timestamp, err := parseTime(raw)
	if err != nil {
		return core.Bar{}, err
	}

	bar := core.Bar{Time: timestamp}
	targets := []struct {
		name string
		dest *float64
	}{
		{"open", &bar.Open},
		{"close", &bar.Close},
		{"low", &bar.Low},
		{"high", &bar.High},
		{"volume", &bar.Volume},
	}
	for _, target := range targets {
		raw, err := field(target.name)
		if err != nil {
			return core.Bar{}, err
		}
		if *target.dest, err = strconv.ParseFloat(raw, 64); err != nil {
			return core.Bar{}, fmt.Errorf("invalid %s %q: %w", target.name, raw, err)
		}
	}

	return bar, nil
}

// parseTime accepts unix seconds or a calendar date
func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC(), nil
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", raw)
}

// WriteCSV stores the series with the default column order and a header row
func WriteCSV(path string, series core.PriceSeries, precision int) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(requiredHeaders); err != nil {
		return err
	}
	for _, bar := range series.Bars {
		if err := writer.Write(bar.ToSlice(precision)); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// Limit keeps only the bars within window of the last bar. The window uses
// day and week units as well as Go durations, e.g. "365d" or "52w".
func Limit(series core.PriceSeries, window string) (core.PriceSeries, error) {
	if window == "" || series.Len() == 0 {
		return series, nil
	}

	duration, err := str2duration.ParseDuration(window)
	if err != nil {
		return core.PriceSeries{}, core.NewInvalidParameter("window", window, err.Error())
	}
	if duration <= 0 {
		return core.PriceSeries{}, core.NewInvalidParameter("window", window, "must be positive")
	}

	start := series.Last().Time.Add(-duration)
	bars := lo.Filter(series.Bars, func(bar core.Bar, _ int) bool {
		return !bar.Time.Before(start)
	})
	return core.NewPriceSeries(series.Symbol, bars), nil
}

// SymbolFromPath derives a symbol from a file name: data/infy.ns.csv becomes INFY.NS
func SymbolFromPath(path string) string {
	base := filepath.Base(path)
	return strings.ToUpper(strings.TrimSuffix(base, filepath.Ext(base)))
}
