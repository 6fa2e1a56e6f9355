package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"logbook/internal/store"
	"logbook/internal/store/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SqliteStore {
	t.Helper()
	s, err := NewSqliteStore(filepath.Join(t.TempDir(), "logbook.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedTrader(t *testing.T, s *SqliteStore, name string) *model.TraderModel {
	t.Helper()
	trader := &model.TraderModel{
		Name:                name,
		PinHash:             "hash",
		AccountStart:        10000,
		BaseRiskPct:         0.005,
		RiskMultiplier:      1.5,
		StepsizeUp:          30,
		TargetEV:            0.4,
		GamificationEnabled: true,
	}
	require.NoError(t, s.Traders().Create(context.Background(), trader))
	return trader
}

func TestTraderRepo_FindByNameIgnoresCase(t *testing.T) {
	s := newTestStore(t)
	seedTrader(t, s, "Alice")

	got, err := s.Traders().FindByName(context.Background(), "aLiCe")
	require.NoError(t, err)
	assert.Equal(t, "Alice", got.Name)

	_, err = s.Traders().FindByName(context.Background(), "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTraderRepo_CountAndUpdateSettings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	trader := seedTrader(t, s, "bob")

	count, err := s.Traders().Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	err = s.Traders().UpdateSettings(ctx, trader.ID, model.TraderSettings{
		AccountStart:        25000,
		BaseRiskPct:         0.01,
		RiskMultiplier:      2,
		StepsizeUp:          20,
		TargetEV:            0.5,
		GamificationEnabled: false,
	})
	require.NoError(t, err)

	got, err := s.Traders().FindByID(ctx, trader.ID)
	require.NoError(t, err)
	assert.Equal(t, 25000.0, got.AccountStart)
	assert.Equal(t, 20.0, got.StepsizeUp)
	assert.False(t, got.GamificationEnabled)

	err = s.Traders().UpdateSettings(ctx, 9999, model.TraderSettings{})
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func insertTrade(t *testing.T, s *SqliteStore, traderID int64, number int, nettR, equityAfter *float64) *model.TradeModel {
	t.Helper()
	trade := &model.TradeModel{
		TraderID:    traderID,
		TradeNumber: number,
		Ticker:      "ES",
		DateEntry:   time.Date(2024, 1, number, 9, 30, 0, 0, time.UTC),
		PriceEntry:  100,
		PriceStop:   95,
		Contracts:   10,
		Multiplier:  1,
		NettR:       nettR,
		EquityAfter: equityAfter,
	}
	require.NoError(t, s.Trades().Insert(context.Background(), trade))
	return trade
}

func fp(v float64) *float64 { return &v }

func TestTradeRepo_SequenceAndReplayInputs(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	trader := seedTrader(t, s, "carol")

	next, err := s.Trades().NextTradeNumber(ctx, trader.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, next)

	insertTrade(t, s, trader.ID, 1, fp(2), fp(10100))
	insertTrade(t, s, trader.ID, 2, nil, nil) // open trade
	insertTrade(t, s, trader.ID, 3, fp(-1), fp(10050))

	next, err = s.Trades().NextTradeNumber(ctx, trader.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, next)

	equity, ok, err := s.Trades().LastEquityAfter(ctx, trader.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 10050.0, equity)

	rs, err := s.Trades().ClosedNettRs(ctx, trader.ID)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, -1}, rs)

	trades, err := s.Trades().ListByTrader(ctx, trader.ID)
	require.NoError(t, err)
	require.Len(t, trades, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{trades[0].TradeNumber, trades[1].TradeNumber, trades[2].TradeNumber})
}

func TestTradeRepo_LastEquityAbsentForNewTrader(t *testing.T) {
	s := newTestStore(t)
	trader := seedTrader(t, s, "dave")

	_, ok, err := s.Trades().LastEquityAfter(context.Background(), trader.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTradeRepo_UniqueTradeNumberPerTrader(t *testing.T) {
	s := newTestStore(t)
	trader := seedTrader(t, s, "erin")
	insertTrade(t, s, trader.ID, 1, nil, nil)

	dup := &model.TradeModel{TraderID: trader.ID, TradeNumber: 1, Ticker: "NQ", DateEntry: time.Now(), Contracts: 1, Multiplier: 1}
	assert.Error(t, s.Trades().Insert(context.Background(), dup))

	// same number on another trader is fine
	other := seedTrader(t, s, "frank")
	insertTrade(t, s, other.ID, 1, nil, nil)
}

func TestTradeRepo_UpdateReviewAndDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	trader := seedTrader(t, s, "grace")
	trade := insertTrade(t, s, trader.ID, 1, nil, nil)

	err := s.Trades().UpdateReview(ctx, trade.ID, map[string]any{
		"analysed":        true,
		"reason_for_loss": "late entry",
		"max_win_r":       3.5,
	})
	require.NoError(t, err)

	got, err := s.Trades().FindByID(ctx, trade.ID)
	require.NoError(t, err)
	assert.True(t, got.Analysed)
	assert.Equal(t, "late entry", got.ReasonForLoss)
	require.NotNil(t, got.MaxWinR)
	assert.Equal(t, 3.5, *got.MaxWinR)

	assert.ErrorIs(t, s.Trades().UpdateReview(ctx, 9999, map[string]any{"analysed": true}), store.ErrNotFound)

	require.NoError(t, s.Trades().Delete(ctx, trade.ID))
	_, err = s.Trades().FindByID(ctx, trade.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, s.Trades().Delete(ctx, trade.ID), store.ErrNotFound)
}

func TestUnitOfWork_RollbackDiscardsInsert(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	trader := seedTrader(t, s, "heidi")

	uow, err := s.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, uow.Trades().Insert(ctx, &model.TradeModel{
		TraderID: trader.ID, TradeNumber: 1, Ticker: "CL", DateEntry: time.Now(), Contracts: 1, Multiplier: 1,
	}))
	require.NoError(t, uow.Rollback())

	trades, err := s.Trades().ListByTrader(ctx, trader.ID)
	require.NoError(t, err)
	assert.Empty(t, trades)
}
