package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/trendscan/pkg/backtest"
	"github.com/raykavin/trendscan/pkg/metric"
	"github.com/samber/lo"
)

// DefaultPoints is the equity curve size handed to charting consumers
const DefaultPoints = 100

// Downsample reduces the curve to at most maxPoints evenly spaced points.
// The first and the last point are always kept. maxPoints <= 0 uses DefaultPoints.
func Downsample(curve []backtest.EquityPoint, maxPoints int) []backtest.EquityPoint {
	if maxPoints <= 0 {
		maxPoints = DefaultPoints
	}

	if len(curve) <= maxPoints {
		return append([]backtest.EquityPoint(nil), curve...)
	}

	if maxPoints == 1 {
		return []backtest.EquityPoint{curve[len(curve)-1]}
	}

	sampled := make([]backtest.EquityPoint, maxPoints)
	last := len(curve) - 1
	for i := range sampled {
		sampled[i] = curve[i*last/(maxPoints-1)]
	}
	return sampled
}

// Row is one line of a summary table
type Row struct {
	Symbol         string
	Strategy       string
	InitialCapital float64
	FinalCapital   float64
	Summary        metric.Summary
}

// SummaryTable writes one line per row plus a totals footer
func SummaryTable(w io.Writer, rows []Row) {
	buffer := bytes.NewBuffer(nil)
	table := tablewriter.NewWriter(buffer)
	table.SetHeader([]string{"Symbol", "Strategy", "Trades", "Win", "Loss", "% Win",
		"Payoff", "Pr Fact.", "SQN", "Sharpe", "Max DD", "Return"})
	table.SetFooterAlignment(tablewriter.ALIGN_RIGHT)

	var trades, wins, losses int
	for _, row := range rows {
		s := row.Summary
		table.Append([]string{
			row.Symbol,
			row.Strategy,
			strconv.Itoa(s.TotalTrades),
			strconv.Itoa(s.WinningTrades),
			strconv.Itoa(s.LosingTrades),
			fmt.Sprintf("%.1f %%", s.WinRate),
			fmt.Sprintf("%.3f", s.Payoff),
			fmt.Sprintf("%.3f", s.ProfitFactor),
			fmt.Sprintf("%.1f", s.SQN),
			fmt.Sprintf("%.2f", s.SharpeLike),
			fmt.Sprintf("%.2f %%", s.MaxDrawdown),
			fmt.Sprintf("%.2f %%", s.TotalReturn),
		})
		trades += s.TotalTrades
		wins += s.WinningTrades
		losses += s.LosingTrades
	}

	winRate := 0.0
	if trades > 0 {
		winRate = float64(wins) / float64(trades) * 100
	}
	avgReturn := 0.0
	if len(rows) > 0 {
		avgReturn = lo.SumBy(rows, func(r Row) float64 { return r.Summary.TotalReturn }) / float64(len(rows))
	}

	table.SetFooter([]string{
		"TOTAL", "",
		strconv.Itoa(trades),
		strconv.Itoa(wins),
		strconv.Itoa(losses),
		fmt.Sprintf("%.1f %%", winRate),
		"", "", "", "", "",
		fmt.Sprintf("%.2f %%", avgReturn),
	})
	table.Render()

	fmt.Fprintln(w, buffer.String())
}

// TradesTable writes the trade ledger of one run
func TradesTable(w io.Writer, trades []backtest.Trade) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"#", "Side", "Entry", "Entry Price", "Exit", "Exit Price", "PnL %", "PnL", "Note"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)

	for i, t := range trades {
		note := ""
		if t.ForcedExit {
			note = "open at end"
		}
		table.Append([]string{
			strconv.Itoa(i + 1),
			string(t.Side),
			t.EntryTime.Format("2006-01-02"),
			fmt.Sprintf("%.2f", t.EntryPrice),
			t.ExitTime.Format("2006-01-02"),
			fmt.Sprintf("%.2f", t.ExitPrice),
			fmt.Sprintf("%.2f", t.PnLPercent),
			fmt.Sprintf("%.2f", t.PnLAbsolute),
			note,
		})
	}

	table.Render()
}

// ReturnsHistogram plots the distribution of trade returns in percent
func ReturnsHistogram(w io.Writer, returns []float64, bins int) error {
	fmt.Fprintln(w, "------ RETURN -------")
	if len(returns) == 0 {
		_, err := fmt.Fprintln(w, "no trades")
		return err
	}

	hist := histogram.Hist(bins, returns)
	if err := histogram.Fprint(w, hist, histogram.Linear(10)); err != nil {
		return fmt.Errorf("plot returns: %w", err)
	}
	_, err := fmt.Fprintln(w)
	return err
}

// SaveReturns writes the return percentages to a file, one per line
func SaveReturns(filename string, returns []float64) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, value := range returns {
		if _, err = fmt.Fprintf(file, "%.4f\n", value); err != nil {
			return err
		}
	}

	return nil
}
