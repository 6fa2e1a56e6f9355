package audit

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuditStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "events.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_RecordAndListRecent(t *testing.T) {
	s := newTestAuditStore(t)
	ctx := context.Background()

	require.NoError(t, s.Record(ctx, 1, ActionTraderRegistered, 0, ""))
	require.NoError(t, s.Record(ctx, 1, ActionTradeCreated, 7, "EURUSD"))
	require.NoError(t, s.Record(ctx, 2, ActionTradeDeleted, 3, ""))

	events, err := s.ListRecent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)

	// Newest first.
	assert.Equal(t, ActionTradeDeleted, events[0].Action)
	assert.Equal(t, int64(2), events[0].TraderID)
	assert.Equal(t, ActionTradeCreated, events[1].Action)
	assert.Equal(t, int64(7), events[1].TradeID)
	assert.Equal(t, "EURUSD", events[1].Detail)
	assert.Equal(t, ActionTraderRegistered, events[2].Action)
	assert.NotEmpty(t, events[0].EventID)
}

func TestStore_ListRecentLimit(t *testing.T) {
	s := newTestAuditStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Record(ctx, 1, ActionTradeReviewed, int64(i+1), ""))
	}

	events, err := s.ListRecent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(5), events[0].TradeID)
	assert.Equal(t, int64(4), events[1].TradeID)
}

func TestStore_ClosedErrors(t *testing.T) {
	s := newTestAuditStore(t)
	require.NoError(t, s.Close())

	err := s.Record(context.Background(), 1, ActionTradeCreated, 1, "")
	assert.Error(t, err)

	_, err = s.ListRecent(context.Background(), 10)
	assert.Error(t, err)
}
