package store

import (
	"context"
	"errors"

	"logbook/internal/store/model"
)

// ErrNotFound is returned when a trader or trade does not exist.
var ErrNotFound = errors.New("record not found")

// UnitOfWork defines a transaction scope. Trade creation must run entirely
// inside one unit of work per trader so that the equity/level replay never
// sees a half-written history.
type UnitOfWork interface {
	// Commit commits the transaction.
	Commit() error
	// Rollback rolls back the transaction.
	Rollback() error

	// Traders returns the trader repository within this transaction.
	Traders() TraderRepository
	// Trades returns the trade repository within this transaction.
	Trades() TradeRepository
}

// Store is the entry point for database access.
type Store interface {
	// Begin starts a new UnitOfWork (transaction).
	Begin(ctx context.Context) (UnitOfWork, error)
	// Traders returns a trader repository outside any transaction.
	Traders() TraderRepository
	// Trades returns a trade repository outside any transaction.
	Trades() TradeRepository
	// Close closes the store connection.
	Close() error
}

// TraderRepository handles trader accounts and their settings.
type TraderRepository interface {
	Create(ctx context.Context, trader *model.TraderModel) error
	FindByID(ctx context.Context, id int64) (*model.TraderModel, error)
	// FindByName matches the trader name case-insensitively.
	FindByName(ctx context.Context, name string) (*model.TraderModel, error)
	List(ctx context.Context) ([]model.TraderModel, error)
	Count(ctx context.Context) (int64, error)
	UpdateSettings(ctx context.Context, id int64, s model.TraderSettings) error
}

// TradeRepository handles logged trades and their derived snapshots.
type TradeRepository interface {
	Insert(ctx context.Context, trade *model.TradeModel) error
	FindByID(ctx context.Context, id int64) (*model.TradeModel, error)
	// ListByTrader returns a trader's trades ordered by trade_number ASC,
	// the ordering the replay contract requires.
	ListByTrader(ctx context.Context, traderID int64) ([]model.TradeModel, error)
	// ListAll returns every trade ordered date_entry DESC, trade_number DESC.
	ListAll(ctx context.Context) ([]model.TradeModel, error)
	NextTradeNumber(ctx context.Context, traderID int64) (int, error)
	// LastEquityAfter returns the most recent non-null equity_after, or
	// ok=false when the trader has no closed trades yet.
	LastEquityAfter(ctx context.Context, traderID int64) (float64, bool, error)
	// ClosedNettRs returns the realized nett R outcomes in trade-number order.
	ClosedNettRs(ctx context.Context, traderID int64) ([]float64, error)
	UpdateReview(ctx context.Context, id int64, fields map[string]any) error
	Delete(ctx context.Context, id int64) error
}
