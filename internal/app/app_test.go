package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"logbook/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, config.WriteStarter(cfgPath))
	cfg, err := config.Load(cfgPath)
	require.NoError(t, err)
	cfg.Database.Path = filepath.Join(dir, "logbook.db")
	cfg.Database.AuditPath = filepath.Join(dir, "events.db")
	return cfg
}

func TestAppBuilder_Build(t *testing.T) {
	cfg := testConfig(t)

	a, err := NewAppBuilder(cfg).Build(context.Background())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	require.NotNil(t, a.Server())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	a.Server().Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Registration works end to end through the wired stack.
	req = httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Alice","pin":"1234"}`))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	a.Server().Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotEmpty(t, rec.Result().Cookies())
}
