package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/raykavin/trendscan/pkg/report"
	"github.com/raykavin/trendscan/pkg/storage"
	"github.com/spf13/cobra"
)

// History command flags
var (
	historySymbol   string
	historyStrategy string
	reportID        int64
)

func buildHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List archived backtest reports",
		RunE:  runHistory,
	}

	historyCmd.Flags().String("db", "", "Report archive path")
	historyCmd.Flags().StringVar(&historySymbol, "symbol", "", "Only reports of this symbol")
	historyCmd.Flags().StringVarP(&historyStrategy, "strategy", "s", "", "Only reports of this strategy")
	historyCmd.Flags().Int64Var(&reportID, "id", 0, "Show the trades of one report")

	return historyCmd
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	db, err := storage.FromFile(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	out := cmd.OutOrStdout()

	if reportID > 0 {
		stored, err := db.Get(reportID)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "#%d %s / %s saved %s\n", stored.ID, stored.Result.Symbol, stored.Result.Strategy,
			stored.SavedAt.Local().Format("2006-01-02 15:04"))
		report.TradesTable(out, stored.Result.Trades)
		return nil
	}

	var filters []storage.ReportFilter
	if historySymbol != "" {
		filters = append(filters, storage.WithSymbol(historySymbol))
	}
	if historyStrategy != "" {
		filters = append(filters, storage.WithStrategy(historyStrategy))
	}

	reports, err := db.Reports(filters...)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintln(out, "no archived reports")
		return nil
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Saved", "Symbol", "Strategy", "Mode", "Trades", "% Win", "Max DD", "Return"})
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	for _, r := range reports {
		table.Append([]string{
			strconv.FormatInt(r.ID, 10),
			r.SavedAt.Local().Format("2006-01-02 15:04"),
			r.Result.Symbol,
			string(r.Result.Strategy),
			string(r.Result.Mode),
			strconv.Itoa(r.Result.TotalTrades),
			fmt.Sprintf("%.1f %%", r.Result.WinRate),
			fmt.Sprintf("%.1f %%", r.Result.MaxDrawdown),
			fmt.Sprintf("%.2f %%", r.Result.TotalReturn),
		})
	}
	table.Render()
	return nil
}
