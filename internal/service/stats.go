package service

import (
	"context"
	"fmt"

	"logbook/internal/journal"
	"logbook/internal/store"
	"logbook/internal/store/model"
)

// TraderStats is one trader's dashboard block.
type TraderStats struct {
	TraderID      int64              `json:"traderId"`
	Name          string             `json:"name"`
	Summary       journal.Summary    `json:"summary"`
	Level         journal.LevelState `json:"level"`
	CurrentEquity float64            `json:"currentEquity"`
	TargetEV      float64            `json:"targetEv"`
	OpenTrades    int                `json:"openTrades"`
	Unanalysed    int                `json:"unanalysed"`
	TotalLogged   int                `json:"totalLogged"`
}

// StatsService aggregates read-only dashboard statistics. It never writes and
// never recomputes stored derived fields.
type StatsService struct {
	store store.Store
}

func NewStatsService(st store.Store) *StatsService {
	return &StatsService{store: st}
}

// ForTrader builds the dashboard block for one trader.
func (s *StatsService) ForTrader(ctx context.Context, traderID int64) (*TraderStats, error) {
	trader, err := s.store.Traders().FindByID(ctx, traderID)
	if err != nil {
		return nil, err
	}
	trades, err := s.store.Trades().ListByTrader(ctx, traderID)
	if err != nil {
		return nil, fmt.Errorf("list trades: %w", err)
	}
	block := buildStats(trader, trades)
	return &block, nil
}

// ForAll builds one block per trader, in trader listing order.
func (s *StatsService) ForAll(ctx context.Context) ([]TraderStats, error) {
	traders, err := s.store.Traders().List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TraderStats, 0, len(traders))
	for i := range traders {
		trades, err := s.store.Trades().ListByTrader(ctx, traders[i].ID)
		if err != nil {
			return nil, fmt.Errorf("list trades for %s: %w", traders[i].Name, err)
		}
		out = append(out, buildStats(&traders[i], trades))
	}
	return out, nil
}

func buildStats(trader *model.TraderModel, trades []model.TradeModel) TraderStats {
	outcomes := make([]journal.Outcome, 0, len(trades))
	var nettRs []float64
	equity := trader.AccountStart
	open, unanalysed := 0, 0
	for _, t := range trades {
		outcomes = append(outcomes, journal.Outcome{NettR: t.NettR, PnlUSD: t.PnlUSD, MaxWinR: t.MaxWinR})
		if t.NettR == nil {
			open++
			continue
		}
		nettRs = append(nettRs, *t.NettR)
		if t.EquityAfter != nil {
			equity = *t.EquityAfter
		}
		if !t.Analysed {
			unanalysed++
		}
	}

	return TraderStats{
		TraderID:      trader.ID,
		Name:          trader.Name,
		Summary:       journal.Summarize(outcomes),
		Level:         journal.Replay(nettRs, journalSettings(trader)),
		CurrentEquity: equity,
		TargetEV:      trader.TargetEV,
		OpenTrades:    open,
		Unanalysed:    unanalysed,
		TotalLogged:   len(trades),
	}
}
