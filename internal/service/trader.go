package service

import (
	"context"
	"fmt"
	"strings"

	"logbook/internal/audit"
	"logbook/internal/auth"
	"logbook/internal/config"
	"logbook/internal/journal"
	"logbook/internal/logger"
	"logbook/internal/store"
	"logbook/internal/store/model"
)

// Default trader configuration applied at registration.
const (
	defaultAccountStart   = 10000.0
	defaultBaseRiskPct    = 0.005
	defaultRiskMultiplier = 1.5
	defaultStepsizeUp     = 30.0
	defaultTargetEV       = 0.4
)

// TraderService manages trader accounts: registration, login and settings.
type TraderService struct {
	store store.Store
	audit *audit.Store
	cfg   config.AuthConfig
}

func NewTraderService(st store.Store, au *audit.Store, cfg config.AuthConfig) *TraderService {
	return &TraderService{store: st, audit: au, cfg: cfg}
}

// Register creates a new trader with default settings. The trader cap and the
// case-insensitive name uniqueness are both enforced here, not in the schema.
func (s *TraderService) Register(ctx context.Context, name, pin string) (*model.TraderModel, error) {
	name = strings.TrimSpace(name)
	if name == "" || len(name) > 50 {
		return nil, fmt.Errorf("%w: name must be 1-50 characters", ErrValidation)
	}
	if len(pin) < s.cfg.PinMinLen || len(pin) > s.cfg.PinMaxLen {
		return nil, fmt.Errorf("%w: pin must be %d-%d characters", ErrPinLength, s.cfg.PinMinLen, s.cfg.PinMaxLen)
	}

	count, err := s.store.Traders().Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count traders: %w", err)
	}
	if count >= int64(s.cfg.MaxTraders) {
		return nil, ErrTraderLimit
	}
	if _, err := s.store.Traders().FindByName(ctx, name); err == nil {
		return nil, ErrNameTaken
	} else if err != store.ErrNotFound {
		return nil, fmt.Errorf("check trader name: %w", err)
	}

	hash, err := auth.HashPin(pin)
	if err != nil {
		return nil, fmt.Errorf("hash pin: %w", err)
	}

	trader := &model.TraderModel{
		Name:                name,
		PinHash:             hash,
		AccountStart:        defaultAccountStart,
		BaseRiskPct:         defaultBaseRiskPct,
		RiskMultiplier:      defaultRiskMultiplier,
		StepsizeUp:          defaultStepsizeUp,
		TargetEV:            defaultTargetEV,
		GamificationEnabled: true,
	}
	if err := s.store.Traders().Create(ctx, trader); err != nil {
		return nil, fmt.Errorf("create trader: %w", err)
	}
	s.recordEvent(ctx, trader.ID, audit.ActionTraderRegistered, 0, trader.Name)
	logger.Infof("trader registered: id=%d name=%s", trader.ID, trader.Name)
	return trader, nil
}

// Authenticate checks name and PIN and returns the trader on success. Name
// matching is case-insensitive; unknown names and wrong PINs are
// indistinguishable to the caller.
func (s *TraderService) Authenticate(ctx context.Context, name, pin string) (*model.TraderModel, error) {
	trader, err := s.store.Traders().FindByName(ctx, strings.TrimSpace(name))
	if err == store.ErrNotFound {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find trader: %w", err)
	}
	if !auth.VerifyPin(pin, trader.PinHash) {
		return nil, ErrInvalidCredentials
	}
	return trader, nil
}

// Get returns one trader by id.
func (s *TraderService) Get(ctx context.Context, id int64) (*model.TraderModel, error) {
	return s.store.Traders().FindByID(ctx, id)
}

// List returns all traders.
func (s *TraderService) List(ctx context.Context) ([]model.TraderModel, error) {
	return s.store.Traders().List(ctx)
}

// UpdateSettings replaces the owner-editable settings of the acting trader.
// The new settings apply to subsequent trades only; stored derived snapshots
// never change.
func (s *TraderService) UpdateSettings(ctx context.Context, actorID, traderID int64, settings model.TraderSettings) error {
	if actorID != traderID {
		return ErrForbidden
	}
	if settings.AccountStart <= 0 {
		return fmt.Errorf("%w: account_start must be positive", ErrValidation)
	}
	if settings.BaseRiskPct <= 0 || settings.BaseRiskPct > 1 {
		return fmt.Errorf("%w: base_risk_pct must be in (0, 1]", ErrValidation)
	}
	if settings.RiskMultiplier < 1 {
		return fmt.Errorf("%w: risk_multiplier must be >= 1", ErrValidation)
	}
	if settings.StepsizeUp <= 0 {
		return fmt.Errorf("%w: stepsize_up must be positive", ErrValidation)
	}
	if err := s.store.Traders().UpdateSettings(ctx, traderID, settings); err != nil {
		return err
	}
	s.recordEvent(ctx, traderID, audit.ActionSettingsUpdated, 0, "")
	return nil
}

func (s *TraderService) recordEvent(ctx context.Context, traderID int64, action string, tradeID int64, detail string) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Record(ctx, traderID, action, tradeID, detail); err != nil {
		logger.Warnf("record audit event %s: %v", action, err)
	}
}

// journalSettings converts a trader row to calculator settings.
func journalSettings(t *model.TraderModel) journal.Settings {
	return journal.Settings{
		AccountStart:        t.AccountStart,
		BaseRiskPct:         t.BaseRiskPct,
		RiskMultiplier:      t.RiskMultiplier,
		StepsizeUp:          t.StepsizeUp,
		GamificationEnabled: t.GamificationEnabled,
	}
}
