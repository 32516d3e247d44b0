package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/raykavin/trendscan"
	"github.com/raykavin/trendscan/pkg/backtest"
	"github.com/raykavin/trendscan/pkg/core"
	"github.com/raykavin/trendscan/pkg/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResult(symbol string, kind strategy.Kind, totalReturn float64) *trendscan.Result {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &trendscan.Result{
		Symbol:         symbol,
		Strategy:       kind,
		Mode:           backtest.ModeFlip,
		TotalTrades:    1,
		WinningTrades:  1,
		WinRate:        100,
		TotalReturn:    totalReturn,
		InitialCapital: 100_000,
		FinalCapital:   100_000 * (1 + totalReturn/100),
		Trades: []backtest.Trade{{
			Side:        core.SideLong,
			EntryIndex:  1,
			EntryTime:   start,
			EntryPrice:  100,
			ExitIndex:   2,
			ExitTime:    start.AddDate(0, 0, 1),
			ExitPrice:   100 + totalReturn,
			PnLPercent:  totalReturn,
			PnLAbsolute: 1000 * totalReturn,
		}},
		EquityCurve: []backtest.EquityPoint{
			{Time: start, Capital: 100_000},
			{Time: start.AddDate(0, 0, 1), Capital: 100_000 * (1 + totalReturn/100)},
		},
	}
}

func TestBuntStorage_SaveAndGet(t *testing.T) {
	db, err := FromMemory()
	require.NoError(t, err)
	defer db.Close()

	savedAt := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	db.now = func() time.Time { return savedAt }

	report, err := db.Save(sampleResult("PETR4", strategy.KindHybrid, 4.5))
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.ID)
	assert.Equal(t, savedAt, report.SavedAt)

	loaded, err := db.Get(report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, loaded.ID)
	assert.True(t, savedAt.Equal(loaded.SavedAt))
	require.NotNil(t, loaded.Result)
	assert.Equal(t, "PETR4", loaded.Result.Symbol)
	assert.Equal(t, 4.5, loaded.Result.TotalReturn)
	require.Len(t, loaded.Result.Trades, 1)
	assert.Equal(t, core.SideLong, loaded.Result.Trades[0].Side)
	assert.Len(t, loaded.Result.EquityCurve, 2)

	_, err = db.Get(99)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = db.Save(nil)
	assert.Error(t, err)
}

func TestBuntStorage_Reports(t *testing.T) {
	db, err := FromMemory()
	require.NoError(t, err)
	defer db.Close()

	inputs := []*trendscan.Result{
		sampleResult("PETR4", strategy.KindHybrid, 1),
		sampleResult("VALE3", strategy.KindHybrid, 2),
		sampleResult("PETR4", strategy.KindOscillatorReversal, 3),
	}
	for i := 0; i < 12; i++ {
		inputs = append(inputs, sampleResult("ITUB4", strategy.KindCrossoverLong, float64(10+i)))
	}
	for _, r := range inputs {
		_, err := db.Save(r)
		require.NoError(t, err)
	}

	all, err := db.Reports()
	require.NoError(t, err)
	require.Len(t, all, len(inputs))
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].ID, all[i].ID)
	}

	petr, err := db.Reports(WithSymbol("PETR4"))
	require.NoError(t, err)
	require.Len(t, petr, 2)
	assert.Equal(t, 1.0, petr[0].Result.TotalReturn)
	assert.Equal(t, 3.0, petr[1].Result.TotalReturn)

	oscillator, err := db.Reports(WithSymbol("PETR4"), WithStrategy("oscillator_reversal"))
	require.NoError(t, err)
	require.Len(t, oscillator, 1)

	none, err := db.Reports(WithSymbol("BBAS3"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBuntStorage_Delete(t *testing.T) {
	db, err := FromMemory()
	require.NoError(t, err)
	defer db.Close()

	report, err := db.Save(sampleResult("PETR4", strategy.KindHybrid, 1))
	require.NoError(t, err)

	require.NoError(t, db.Delete(report.ID))
	_, err = db.Get(report.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, db.Delete(report.ID), ErrNotFound)
}

func TestBuntStorage_FileResumesIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports.db")

	db, err := FromFile(path)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err := db.Save(sampleResult("PETR4", strategy.KindHybrid, float64(i)))
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	reopened, err := FromFile(path)
	require.NoError(t, err)
	defer reopened.Close()

	report, err := reopened.Save(sampleResult("VALE3", strategy.KindHybrid, 9))
	require.NoError(t, err)
	assert.Equal(t, int64(4), report.ID)

	all, err := reopened.Reports()
	require.NoError(t, err)
	assert.Len(t, all, 4)
}
