package sqlite

import (
	"context"
	"errors"

	"logbook/internal/store"
	"logbook/internal/store/model"

	"gorm.io/gorm"
)

// traderRepository implements the TraderRepository interface.
type traderRepository struct {
	db *gorm.DB
}

// NewTraderRepo creates a new traderRepository.
func NewTraderRepo(db *gorm.DB) *traderRepository {
	return &traderRepository{db: db}
}

// Create inserts a new trader row.
func (r *traderRepository) Create(ctx context.Context, trader *model.TraderModel) error {
	if trader == nil {
		return errors.New("trader cannot be nil")
	}
	return r.db.WithContext(ctx).Create(trader).Error
}

// FindByID loads a trader by primary key.
func (r *traderRepository) FindByID(ctx context.Context, id int64) (*model.TraderModel, error) {
	var trader model.TraderModel
	err := r.db.WithContext(ctx).First(&trader, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trader, nil
}

// FindByName matches the unique trader name, ignoring case.
func (r *traderRepository) FindByName(ctx context.Context, name string) (*model.TraderModel, error) {
	var trader model.TraderModel
	err := r.db.WithContext(ctx).Where("LOWER(name) = LOWER(?)", name).First(&trader).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trader, nil
}

// List returns all traders ordered by id.
func (r *traderRepository) List(ctx context.Context) ([]model.TraderModel, error) {
	var traders []model.TraderModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&traders).Error; err != nil {
		return nil, err
	}
	return traders, nil
}

// Count returns the number of registered traders.
func (r *traderRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.TraderModel{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// UpdateSettings overwrites the owner-editable configuration columns.
func (r *traderRepository) UpdateSettings(ctx context.Context, id int64, s model.TraderSettings) error {
	res := r.db.WithContext(ctx).Model(&model.TraderModel{}).Where("id = ?", id).Updates(map[string]any{
		"account_start":        s.AccountStart,
		"base_risk_pct":        s.BaseRiskPct,
		"risk_multiplier":      s.RiskMultiplier,
		"stepsize_up":          s.StepsizeUp,
		"target_ev":            s.TargetEV,
		"gamification_enabled": s.GamificationEnabled,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
