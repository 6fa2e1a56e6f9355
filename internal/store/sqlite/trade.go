package sqlite

import (
	"context"
	"errors"

	"logbook/internal/store"
	"logbook/internal/store/model"

	"gorm.io/gorm"
)

// tradeRepository implements the TradeRepository interface.
type tradeRepository struct {
	db *gorm.DB
}

// NewTradeRepo creates a new tradeRepository.
func NewTradeRepo(db *gorm.DB) *tradeRepository {
	return &tradeRepository{db: db}
}

// Insert persists a trade with its derived snapshot.
func (r *tradeRepository) Insert(ctx context.Context, trade *model.TradeModel) error {
	if trade == nil {
		return errors.New("trade cannot be nil")
	}
	return r.db.WithContext(ctx).Create(trade).Error
}

// FindByID loads one trade by primary key.
func (r *tradeRepository) FindByID(ctx context.Context, id int64) (*model.TradeModel, error) {
	var trade model.TradeModel
	err := r.db.WithContext(ctx).First(&trade, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trade, nil
}

// ListByTrader returns the trader's full history in replay order.
func (r *tradeRepository) ListByTrader(ctx context.Context, traderID int64) ([]model.TradeModel, error) {
	var trades []model.TradeModel
	if err := r.db.WithContext(ctx).
		Where("trader_id = ?", traderID).
		Order("trade_number ASC").
		Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// ListAll returns every trade, newest entries first.
func (r *tradeRepository) ListAll(ctx context.Context) ([]model.TradeModel, error) {
	var trades []model.TradeModel
	if err := r.db.WithContext(ctx).
		Order("date_entry DESC, trade_number DESC").
		Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// NextTradeNumber returns the next strictly increasing per-trader sequence
// number, starting at 1.
func (r *tradeRepository) NextTradeNumber(ctx context.Context, traderID int64) (int, error) {
	var last int
	err := r.db.WithContext(ctx).Model(&model.TradeModel{}).
		Where("trader_id = ?", traderID).
		Select("COALESCE(MAX(trade_number), 0)").
		Scan(&last).Error
	if err != nil {
		return 0, err
	}
	return last + 1, nil
}

// LastEquityAfter returns the newest non-null equity_after for the trader.
func (r *tradeRepository) LastEquityAfter(ctx context.Context, traderID int64) (float64, bool, error) {
	var trade model.TradeModel
	err := r.db.WithContext(ctx).
		Where("trader_id = ? AND equity_after IS NOT NULL", traderID).
		Order("trade_number DESC").
		First(&trade).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	if trade.EquityAfter == nil {
		return 0, false, nil
	}
	return *trade.EquityAfter, true, nil
}

// ClosedNettRs returns realized outcomes oldest first for the level replay.
func (r *tradeRepository) ClosedNettRs(ctx context.Context, traderID int64) ([]float64, error) {
	var rs []float64
	err := r.db.WithContext(ctx).Model(&model.TradeModel{}).
		Where("trader_id = ? AND nett_r IS NOT NULL", traderID).
		Order("trade_number ASC").
		Pluck("nett_r", &rs).Error
	if err != nil {
		return nil, err
	}
	return rs, nil
}

// UpdateReview patches the mutable review columns; derived columns are never
// touched here.
func (r *tradeRepository) UpdateReview(ctx context.Context, id int64, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.TradeModel{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// Delete removes a trade. Later trades keep their numbers and snapshots.
func (r *tradeRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&model.TradeModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
