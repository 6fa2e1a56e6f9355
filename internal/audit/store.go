package audit

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	_ "modernc.org/sqlite"
)

// Store is an append-only log of journal mutations (registrations, trade
// creations, edits, deletions). It lives in its own SQLite file so the trade
// database stays portable without the operational history.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Event is one recorded mutation.
type Event struct {
	ID       int64  `json:"id"`
	EventID  string `json:"event_id"`
	TS       int64  `json:"ts"`
	TraderID int64  `json:"trader_id"`
	Action   string `json:"action"`
	TradeID  int64  `json:"trade_id,omitempty"`
	Detail   string `json:"detail,omitempty"`
}

// Actions recorded by the services.
const (
	ActionTraderRegistered = "trader_registered"
	ActionSettingsUpdated  = "settings_updated"
	ActionTradeCreated     = "trade_created"
	ActionTradeReviewed    = "trade_reviewed"
	ActionTradeDeleted     = "trade_deleted"
	ActionSeedImported     = "seed_imported"
)

// NewStore opens (or creates) the event log database.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("audit log path cannot be empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying DB.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func ensureSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			trader_id INTEGER NOT NULL,
			action TEXT NOT NULL,
			trade_id INTEGER,
			detail TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_trader ON events(trader_id, id DESC)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Record appends one event. Failures here must never abort the mutation that
// caused them; callers log and move on.
func (s *Store) Record(ctx context.Context, traderID int64, action string, tradeID int64, detail string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return fmt.Errorf("audit store is closed")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (event_id, ts, trader_id, action, trade_id, detail) VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), time.Now().Unix(), traderID, action, tradeID, detail)
	return err
}

// ListRecent returns the newest events, most recent first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, fmt.Errorf("audit store is closed")
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, ts, trader_id, action, COALESCE(trade_id, 0), COALESCE(detail, '')
		 FROM events ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var ev Event
		if err := rows.Scan(&ev.ID, &ev.EventID, &ev.TS, &ev.TraderID, &ev.Action, &ev.TradeID, &ev.Detail); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}
