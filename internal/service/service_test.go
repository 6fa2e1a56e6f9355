package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logbook/internal/config"
	"logbook/internal/store"
	"logbook/internal/store/model"
	"logbook/internal/store/sqlite"
)

func testAuthConfig() config.AuthConfig {
	return config.AuthConfig{MaxTraders: 3, PinMinLen: 4, PinMaxLen: 8}
}

func newServices(t *testing.T) (*TraderService, *TradeService, *StatsService) {
	t.Helper()
	st, err := sqlite.NewSqliteStore(filepath.Join(t.TempDir(), "logbook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return NewTraderService(st, nil, testAuthConfig()),
		NewTradeService(st, nil),
		NewStatsService(st)
}

func registerTrader(t *testing.T, traders *TraderService, name string) *model.TraderModel {
	t.Helper()
	tr, err := traders.Register(context.Background(), name, "1234")
	require.NoError(t, err)
	return tr
}

func fp(v float64) *float64 { return &v }

func closedTrade(entry, stop, exit float64) CreateTradeRequest {
	return CreateTradeRequest{
		Ticker:     "ES",
		DateEntry:  time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
		PriceEntry: entry,
		PriceStop:  stop,
		PriceExit:  fp(exit),
		Contracts:  100,
		Multiplier: 1,
	}
}

func TestTraderService_RegisterDefaultsAndLimits(t *testing.T) {
	traders, _, _ := newServices(t)
	ctx := context.Background()

	alice := registerTrader(t, traders, "Alice")
	assert.Equal(t, 10000.0, alice.AccountStart)
	assert.Equal(t, 0.005, alice.BaseRiskPct)
	assert.Equal(t, 1.5, alice.RiskMultiplier)
	assert.Equal(t, 30.0, alice.StepsizeUp)
	assert.True(t, alice.GamificationEnabled)

	_, err := traders.Register(ctx, "alice", "5678")
	assert.ErrorIs(t, err, ErrNameTaken)

	_, err = traders.Register(ctx, "Bob", "123")
	assert.ErrorIs(t, err, ErrPinLength)
	_, err = traders.Register(ctx, "Bob", "123456789")
	assert.ErrorIs(t, err, ErrPinLength)

	registerTrader(t, traders, "Bob")
	registerTrader(t, traders, "Carol")
	_, err = traders.Register(ctx, "Dave", "1234")
	assert.ErrorIs(t, err, ErrTraderLimit)
}

func TestTraderService_Authenticate(t *testing.T) {
	traders, _, _ := newServices(t)
	ctx := context.Background()
	registerTrader(t, traders, "Alice")

	tr, err := traders.Authenticate(ctx, "ALICE", "1234")
	require.NoError(t, err)
	assert.Equal(t, "Alice", tr.Name)

	_, err = traders.Authenticate(ctx, "Alice", "0000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = traders.Authenticate(ctx, "Nobody", "1234")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestTraderService_UpdateSettings(t *testing.T) {
	traders, _, _ := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")
	bob := registerTrader(t, traders, "Bob")

	settings := model.TraderSettings{
		AccountStart:        20000,
		BaseRiskPct:         0.01,
		RiskMultiplier:      2,
		StepsizeUp:          20,
		TargetEV:            0.5,
		GamificationEnabled: false,
	}
	err := traders.UpdateSettings(ctx, bob.ID, alice.ID, settings)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, traders.UpdateSettings(ctx, alice.ID, alice.ID, settings))
	got, err := traders.Get(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 20000.0, got.AccountStart)
	assert.False(t, got.GamificationEnabled)

	settings.BaseRiskPct = 0
	err = traders.UpdateSettings(ctx, alice.ID, alice.ID, settings)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTradeService_CreateDerivesSnapshot(t *testing.T) {
	traders, trades, _ := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")

	trade, err := trades.Create(ctx, alice.ID, closedTrade(100, 95, 110))
	require.NoError(t, err)

	assert.Equal(t, 1, trade.TradeNumber)
	assert.Equal(t, 10000.0, trade.EquityBefore)
	assert.Equal(t, 50.0, trade.PlannedRiskUSD)
	assert.Equal(t, 500.0, trade.UsdAtRisk)
	assert.Equal(t, 10.0, trade.RiskRFactor)
	require.NotNil(t, trade.TradeR)
	assert.Equal(t, 2.0, *trade.TradeR)
	require.NotNil(t, trade.NettR)
	assert.Equal(t, 20.0, *trade.NettR)
	require.NotNil(t, trade.PnlUSD)
	assert.Equal(t, 1000.0, *trade.PnlUSD)
	require.NotNil(t, trade.EquityAfter)
	assert.Equal(t, 11000.0, *trade.EquityAfter)
	require.NotNil(t, trade.SumR)
	assert.Equal(t, 20.0, *trade.SumR)
	assert.Equal(t, 0, trade.Level)
	assert.Equal(t, 30, trade.LevelToGo)
	assert.Equal(t, 0.005, trade.RiskPct)
	assert.Equal(t, 1.0, trade.PowerNorm)
}

func TestTradeService_CreateChainsEquityAndLevel(t *testing.T) {
	traders, trades, _ := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")

	first, err := trades.Create(ctx, alice.ID, closedTrade(100, 95, 110))
	require.NoError(t, err)
	require.NotNil(t, first.EquityAfter)

	// First outcome was +20R, still below the 30R step: level stays 0 but
	// the next trade starts from the new equity. Planned risk is now 55, so
	// an 1100 PnL is another +20R.
	second, err := trades.Create(ctx, alice.ID, closedTrade(200, 190, 211))
	require.NoError(t, err)
	assert.Equal(t, 2, second.TradeNumber)
	assert.Equal(t, 11000.0, second.EquityBefore)
	assert.Equal(t, 0, second.Level)
	assert.Equal(t, 10, second.LevelToGo)
	require.NotNil(t, second.SumR)
	assert.Equal(t, 40.0, *second.SumR)

	// 20 + 20 = 40 cumulative R crossed the step: the third trade is sized
	// at level 1 risk (0.005 * 1.5).
	third, err := trades.Create(ctx, alice.ID, closedTrade(300, 290, 300))
	require.NoError(t, err)
	assert.Equal(t, 1, third.Level)
	assert.Equal(t, 20, third.LevelToGo)
	assert.Equal(t, 0.0075, third.RiskPct)
	assert.Equal(t, 1.5, third.PowerNorm)
}

func TestTradeService_CreateOpenTrade(t *testing.T) {
	traders, trades, _ := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")

	req := closedTrade(100, 95, 0)
	req.PriceExit = nil
	trade, err := trades.Create(ctx, alice.ID, req)
	require.NoError(t, err)

	assert.Nil(t, trade.TradeR)
	assert.Nil(t, trade.NettR)
	assert.Nil(t, trade.PnlUSD)
	assert.Nil(t, trade.EquityAfter)
	// sum_r still records the running total so far, which is zero here.
	require.NotNil(t, trade.SumR)
	assert.Equal(t, 0.0, *trade.SumR)

	// The open trade contributes nothing to the next trade's equity chain.
	next, err := trades.Create(ctx, alice.ID, closedTrade(100, 95, 105))
	require.NoError(t, err)
	assert.Equal(t, 10000.0, next.EquityBefore)
}

func TestTradeService_OpenTradeCarriesSumR(t *testing.T) {
	traders, trades, _ := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")

	_, err := trades.Create(ctx, alice.ID, closedTrade(100, 95, 110))
	require.NoError(t, err)

	req := closedTrade(100, 95, 0)
	req.PriceExit = nil
	open, err := trades.Create(ctx, alice.ID, req)
	require.NoError(t, err)

	assert.Nil(t, open.NettR)
	require.NotNil(t, open.SumR)
	assert.Equal(t, 20.0, *open.SumR)
}

func TestTradeService_CreateValidation(t *testing.T) {
	traders, trades, _ := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")

	req := closedTrade(100, 95, 110)
	req.Ticker = ""
	_, err := trades.Create(ctx, alice.ID, req)
	assert.ErrorIs(t, err, ErrValidation)

	req = closedTrade(100, 95, 110)
	req.Contracts = 0
	_, err = trades.Create(ctx, alice.ID, req)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestTradeService_UpdateReviewKeepsSnapshot(t *testing.T) {
	traders, trades, _ := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")
	bob := registerTrader(t, traders, "Bob")

	trade, err := trades.Create(ctx, alice.ID, closedTrade(100, 95, 110))
	require.NoError(t, err)

	_, err = trades.UpdateReview(ctx, bob.ID, trade.ID, ReviewUpdate{Analysed: boolPtr(true)})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := trades.UpdateReview(ctx, alice.ID, trade.ID, ReviewUpdate{
		Analysed:      boolPtr(true),
		MaxWinR:       fp(3.2),
		ReasonForLoss: strPtr("stopped out early"),
		Tags:          []string{"breakout"},
		PriceExit:     fp(120),
	})
	require.NoError(t, err)
	assert.True(t, updated.Analysed)
	require.NotNil(t, updated.MaxWinR)
	assert.Equal(t, 3.2, *updated.MaxWinR)
	assert.Equal(t, "stopped out early", updated.ReasonForLoss)
	require.NotNil(t, updated.PriceExit)
	assert.Equal(t, 120.0, *updated.PriceExit)

	// The derived snapshot never moves with a late exit edit.
	require.NotNil(t, updated.NettR)
	assert.Equal(t, 20.0, *updated.NettR)
	require.NotNil(t, updated.EquityAfter)
	assert.Equal(t, 11000.0, *updated.EquityAfter)
}

func TestTradeService_Delete(t *testing.T) {
	traders, trades, _ := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")
	bob := registerTrader(t, traders, "Bob")

	first, err := trades.Create(ctx, alice.ID, closedTrade(100, 95, 110))
	require.NoError(t, err)
	second, err := trades.Create(ctx, alice.ID, closedTrade(100, 95, 90))
	require.NoError(t, err)

	assert.ErrorIs(t, trades.Delete(ctx, bob.ID, first.ID), ErrForbidden)
	require.NoError(t, trades.Delete(ctx, alice.ID, first.ID))
	_, err = trades.Get(ctx, alice.ID, first.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	// The surviving trade keeps its number and snapshot.
	kept, err := trades.Get(ctx, alice.ID, second.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, kept.TradeNumber)
	assert.Equal(t, 11000.0, kept.EquityBefore)
}

func TestStatsService_ForTrader(t *testing.T) {
	traders, trades, stats := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")

	_, err := trades.Create(ctx, alice.ID, closedTrade(100, 95, 110)) // +20R
	require.NoError(t, err)
	_, err = trades.Create(ctx, alice.ID, closedTrade(100, 95, 97.5)) // losing trade
	require.NoError(t, err)
	open := closedTrade(100, 95, 0)
	open.PriceExit = nil
	_, err = trades.Create(ctx, alice.ID, open)
	require.NoError(t, err)

	block, err := stats.ForTrader(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, alice.ID, block.TraderID)
	assert.Equal(t, 2, block.Summary.TotalTrades)
	assert.Equal(t, 3, block.TotalLogged)
	assert.Equal(t, 1, block.OpenTrades)
	assert.Equal(t, 2, block.Unanalysed)
	assert.Equal(t, 0.5, block.Summary.WinRate)
	assert.Equal(t, 0.4, block.TargetEV)
}

func TestStatsService_ForTraderEmpty(t *testing.T) {
	traders, _, stats := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")

	block, err := stats.ForTrader(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, block.Summary.TotalTrades)
	assert.Equal(t, 0.0, block.Summary.WinRate)
	assert.Equal(t, 10000.0, block.CurrentEquity)
	assert.Equal(t, 0, block.Level.Level)
	assert.Equal(t, 30.0, block.Level.RToNextLevel)
}

func TestStatsService_ForAll(t *testing.T) {
	traders, trades, stats := newServices(t)
	ctx := context.Background()
	alice := registerTrader(t, traders, "Alice")
	registerTrader(t, traders, "Bob")

	_, err := trades.Create(ctx, alice.ID, closedTrade(100, 95, 110))
	require.NoError(t, err)

	blocks, err := stats.ForAll(ctx)
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	byName := map[string]TraderStats{}
	for _, b := range blocks {
		byName[b.Name] = b
	}
	assert.Equal(t, 1, byName["Alice"].Summary.TotalTrades)
	assert.Equal(t, 11000.0, byName["Alice"].CurrentEquity)
	assert.Equal(t, 0, byName["Bob"].Summary.TotalTrades)
}

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }
