package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"

	"logbook/internal/audit"
	"logbook/internal/journal"
	"logbook/internal/logger"
	"logbook/internal/store"
	"logbook/internal/store/model"
)

// CreateTradeRequest carries the raw inputs of a new trade. Exit-side fields
// may be present when the trade is logged after the fact.
type CreateTradeRequest struct {
	Ticker     string     `json:"ticker"`
	DateEntry  time.Time  `json:"dateEntry"`
	DateExit   *time.Time `json:"dateExit"`
	PriceEntry float64    `json:"priceEntry"`
	PriceStop  float64    `json:"priceStop"`
	PriceTP    string     `json:"priceTp"`
	PriceExit  *float64   `json:"priceExit"`
	Contracts  float64    `json:"contracts"`
	Multiplier float64    `json:"multiplier"`
	Notes      string     `json:"notes"`
	Tags       []string   `json:"tags"`
}

// ReviewUpdate is the owner-editable slice of a stored trade. Nil pointers
// leave the stored value untouched.
type ReviewUpdate struct {
	DateExit        *time.Time `json:"dateExit"`
	PriceExit       *float64   `json:"priceExit"`
	PriceTP         *string    `json:"priceTp"`
	Analysed        *bool      `json:"analysed"`
	MaxWinR         *float64   `json:"maxWinR"`
	ReasonForLoss   *string    `json:"reasonForLoss"`
	WinOptimization *string    `json:"winOptimization"`
	Screenshots     []string   `json:"screenshots"`
	Tags            []string   `json:"tags"`
	Notes           *string    `json:"notes"`
}

// TradeService creates, reviews and deletes logged trades.
type TradeService struct {
	store store.Store
	audit *audit.Store
}

func NewTradeService(st store.Store, au *audit.Store) *TradeService {
	return &TradeService{store: st, audit: au}
}

// Create logs a new trade for the acting trader. The whole derivation runs in
// one transaction: sequence number, equity chain, level replay and the field
// snapshot are all read and written atomically, so concurrent submissions for
// the same trader can never interleave half a history.
func (s *TradeService) Create(ctx context.Context, traderID int64, req CreateTradeRequest) (*model.TradeModel, error) {
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	uow, err := s.store.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer uow.Rollback()

	trader, err := uow.Traders().FindByID(ctx, traderID)
	if err != nil {
		return nil, err
	}
	settings := journalSettings(trader)

	tradeNumber, err := uow.Trades().NextTradeNumber(ctx, traderID)
	if err != nil {
		return nil, fmt.Errorf("next trade number: %w", err)
	}

	equityBefore, ok, err := uow.Trades().LastEquityAfter(ctx, traderID)
	if err != nil {
		return nil, fmt.Errorf("last equity: %w", err)
	}
	if !ok {
		equityBefore = trader.AccountStart
	}

	nettRs, err := uow.Trades().ClosedNettRs(ctx, traderID)
	if err != nil {
		return nil, fmt.Errorf("closed outcomes: %w", err)
	}
	state := journal.Replay(nettRs, settings)

	multiplier := req.Multiplier
	if multiplier == 0 {
		multiplier = 1
	}
	fields := journal.Calculate(journal.TradeInput{
		PriceEntry: req.PriceEntry,
		PriceStop:  req.PriceStop,
		PriceExit:  req.PriceExit,
		TakeProfit: req.PriceTP,
		Contracts:  req.Contracts,
		Multiplier: multiplier,
	}, equityBefore, state.CurrentRiskPct, trader.BaseRiskPct)

	// sum_r always carries the running total; an open trade inherits the
	// prior outcomes unchanged.
	total := 0.0
	for _, r := range nettRs {
		total += r
	}
	if fields.NettR != nil {
		total += *fields.NettR
	}
	sumR := roundTo(total, 4)

	tags, err := toJSONList(req.Tags)
	if err != nil {
		return nil, err
	}

	trade := &model.TradeModel{
		TraderID:       traderID,
		TradeNumber:    tradeNumber,
		Ticker:         req.Ticker,
		DateEntry:      req.DateEntry,
		DateExit:       req.DateExit,
		PriceEntry:     req.PriceEntry,
		PriceStop:      req.PriceStop,
		PriceTP:        req.PriceTP,
		PriceExit:      req.PriceExit,
		Contracts:      req.Contracts,
		Multiplier:     multiplier,
		TradeR:         fields.TradeR,
		NettR:          fields.NettR,
		SumR:           &sumR,
		PlannedRiskUSD: fields.PlannedRiskUSD,
		UsdAtRisk:      fields.UsdAtRisk,
		RiskRFactor:    fields.RiskRFactor,
		PnlUSD:         fields.PnlUSD,
		EquityBefore:   fields.EquityBefore,
		EquityAfter:    fields.EquityAfter,
		Level:          state.Level,
		LevelToGo:      int(math.Ceil(state.RToNextLevel)),
		RiskPct:        fields.RiskPct,
		NormalRiskPct:  fields.NormalRiskPct,
		PowerNorm:      fields.PowerNorm,
		Notes:          req.Notes,
		Tags:           tags,
	}
	if err := uow.Trades().Insert(ctx, trade); err != nil {
		return nil, fmt.Errorf("insert trade: %w", err)
	}
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("commit trade: %w", err)
	}

	s.recordEvent(ctx, traderID, audit.ActionTradeCreated, trade.ID, trade.Ticker)
	logger.Debugf("trade created: trader=%d number=%d ticker=%s", traderID, tradeNumber, trade.Ticker)
	return trade, nil
}

// Get returns one trade, enforcing ownership.
func (s *TradeService) Get(ctx context.Context, actorID, tradeID int64) (*model.TradeModel, error) {
	trade, err := s.store.Trades().FindByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade.TraderID != actorID {
		return nil, ErrForbidden
	}
	return trade, nil
}

// ListByTrader returns a trader's trades in trade-number order.
func (s *TradeService) ListByTrader(ctx context.Context, traderID int64) ([]model.TradeModel, error) {
	return s.store.Trades().ListByTrader(ctx, traderID)
}

// ListAll returns every trade, newest first. The journal is shared reading:
// any logged-in trader can see all trades, but only mutate their own.
func (s *TradeService) ListAll(ctx context.Context) ([]model.TradeModel, error) {
	return s.store.Trades().ListAll(ctx)
}

// UpdateReview patches the mutable exit-side and analysis fields of a trade
// the actor owns. The derived snapshot stays frozen: filling in an exit later
// records the raw values without recomputing R-multiples or the equity chain.
func (s *TradeService) UpdateReview(ctx context.Context, actorID, tradeID int64, upd ReviewUpdate) (*model.TradeModel, error) {
	trade, err := s.store.Trades().FindByID(ctx, tradeID)
	if err != nil {
		return nil, err
	}
	if trade.TraderID != actorID {
		return nil, ErrForbidden
	}

	fields := map[string]any{}
	if upd.DateExit != nil {
		fields["date_exit"] = *upd.DateExit
	}
	if upd.PriceExit != nil {
		fields["price_exit"] = *upd.PriceExit
	}
	if upd.PriceTP != nil {
		fields["price_tp"] = *upd.PriceTP
	}
	if upd.Analysed != nil {
		fields["analysed"] = *upd.Analysed
	}
	if upd.MaxWinR != nil {
		fields["max_win_r"] = *upd.MaxWinR
	}
	if upd.ReasonForLoss != nil {
		fields["reason_for_loss"] = *upd.ReasonForLoss
	}
	if upd.WinOptimization != nil {
		fields["win_optimization"] = *upd.WinOptimization
	}
	if upd.Notes != nil {
		fields["notes"] = *upd.Notes
	}
	if upd.Screenshots != nil {
		v, err := toJSONList(upd.Screenshots)
		if err != nil {
			return nil, err
		}
		fields["screenshots"] = v
	}
	if upd.Tags != nil {
		v, err := toJSONList(upd.Tags)
		if err != nil {
			return nil, err
		}
		fields["tags"] = v
	}
	if len(fields) == 0 {
		return trade, nil
	}

	if err := s.store.Trades().UpdateReview(ctx, tradeID, fields); err != nil {
		return nil, err
	}
	s.recordEvent(ctx, actorID, audit.ActionTradeReviewed, tradeID, trade.Ticker)
	return s.store.Trades().FindByID(ctx, tradeID)
}

// Delete removes a trade the actor owns. Later trades keep their numbers and
// stored equity chain untouched.
func (s *TradeService) Delete(ctx context.Context, actorID, tradeID int64) error {
	trade, err := s.store.Trades().FindByID(ctx, tradeID)
	if err != nil {
		return err
	}
	if trade.TraderID != actorID {
		return ErrForbidden
	}
	if err := s.store.Trades().Delete(ctx, tradeID); err != nil {
		return err
	}
	s.recordEvent(ctx, actorID, audit.ActionTradeDeleted, tradeID, trade.Ticker)
	return nil
}

func (s *TradeService) recordEvent(ctx context.Context, traderID int64, action string, tradeID int64, detail string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, traderID, action, tradeID, detail); err != nil {
		logger.Warnf("record audit event %s: %v", action, err)
	}
}

func validateCreate(req CreateTradeRequest) error {
	if req.Ticker == "" {
		return fmt.Errorf("%w: ticker is required", ErrValidation)
	}
	if req.DateEntry.IsZero() {
		return fmt.Errorf("%w: dateEntry is required", ErrValidation)
	}
	if req.PriceEntry <= 0 {
		return fmt.Errorf("%w: priceEntry must be positive", ErrValidation)
	}
	if req.PriceStop < 0 {
		return fmt.Errorf("%w: priceStop cannot be negative", ErrValidation)
	}
	if req.Contracts <= 0 {
		return fmt.Errorf("%w: contracts must be positive", ErrValidation)
	}
	if req.Multiplier < 0 {
		return fmt.Errorf("%w: multiplier cannot be negative", ErrValidation)
	}
	return nil
}

func toJSONList(items []string) (datatypes.JSON, error) {
	if items == nil {
		return nil, nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode list: %w", err)
	}
	return datatypes.JSON(raw), nil
}

func roundTo(v float64, places int32) float64 {
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
