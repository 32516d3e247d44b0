package optimizer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// SaveResultsToCSV writes one row per result, in the given order. Parameter and
// metric columns are the sorted union over all results; absent cells stay empty.
func SaveResultsToCSV(results []*Result, filePath string) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("create %s: %w", filePath, err)
	}
	defer file.Close()

	params := sortedKeys(lo.FlatMap(results, func(r *Result, _ int) []string { return lo.Keys(r.Parameters) }))
	metrics := sortedKeys(lo.FlatMap(results, func(r *Result, _ int) []string { return lo.Keys(r.Metrics) }))

	records := make([][]string, 0, len(results)+1)
	records = append(records, append(append([]string{"Rank", "Duration"}, params...), metrics...))
	for i, result := range results {
		record := []string{strconv.Itoa(i + 1), result.Duration.String()}
		record = append(record, cells(result.Parameters, params, formatValue)...)
		record = append(record, cells(result.Metrics, metrics, func(v float64) string {
			return strconv.FormatFloat(v, 'f', 4, 64)
		})...)
		records = append(records, record)
	}

	if err := csv.NewWriter(file).WriteAll(records); err != nil {
		return fmt.Errorf("write %s: %w", filePath, err)
	}
	return nil
}

// cells formats m[key] for each key, leaving missing keys blank
func cells[V any](m map[string]V, keys []string, format func(V) string) []string {
	return lo.Map(keys, func(key string, _ int) string {
		if v, ok := m[key]; ok {
			return format(v)
		}
		return ""
	})
}

// PrintResults writes the first topN results, in their current order, as a table
func PrintResults(w io.Writer, results []*Result, targetMetric MetricName, topN int) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No results to display")
		return
	}

	if topN > 0 && topN < len(results) {
		results = results[:topN]
	}

	fmt.Fprintf(w, "\n=== Top %d Results (by %s) ===\n\n", len(results), targetMetric)

	metricNames := lo.Filter(MetricNames(), func(m MetricName, _ int) bool { return m != targetMetric })

	header := []string{"Rank", "Parameters", string(targetMetric)}
	header = append(header, lo.Map(metricNames, func(m MetricName, _ int) string { return string(m) })...)
	header = append(header, "Duration")

	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i, result := range results {
		row := []string{
			strconv.Itoa(i + 1),
			FormatParameterSet(result.Parameters),
			fmt.Sprintf("%.4f", result.Metrics[string(targetMetric)]),
		}
		for _, name := range metricNames {
			row = append(row, fmt.Sprintf("%.4f", result.Metrics[string(name)]))
		}
		row = append(row, result.Duration.Round(time.Millisecond).String())
		table.Append(row)
	}

	table.Render()
}

// FormatParameterSet formats a parameter set as a string with sorted keys
func FormatParameterSet(params ParameterSet) string {
	names := lo.Keys(params)
	sort.Strings(names)

	parts := lo.Map(names, func(name string, _ int) string {
		return fmt.Sprintf("%s: %s", name, formatValue(params[name]))
	})
	return "{" + strings.Join(parts, ", ") + "}"
}

func formatValue(value any) string {
	switch v := value.(type) {
	case int:
		return strconv.Itoa(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}

func sortedKeys(names []string) []string {
	unique := lo.Uniq(names)
	sort.Strings(unique)
	return unique
}
