package logbookhttp

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"logbook/internal/audit"
	"logbook/internal/auth"
	"logbook/internal/export"
	"logbook/internal/logger"
	"logbook/internal/report"
	"logbook/internal/seed"
	"logbook/internal/service"
	"logbook/internal/store"
)

// Router mounts the journal API.
type Router struct {
	Traders  *service.TraderService
	Trades   *service.TradeService
	Stats    *service.StatsService
	Exporter *export.Exporter
	Reports  *report.Renderer
	Importer *seed.Importer
	Events   *audit.Store
	Sessions *auth.Manager
	SeedPath string
}

// Register mounts all routes under the given group. Registration and login
// are public; everything else requires a session cookie.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.POST("/auth/register", r.handleRegister)
	group.POST("/auth/login", r.handleLogin)
	group.POST("/auth/logout", r.handleLogout)

	authed := group.Group("", sessionRequired(r.Sessions))
	authed.GET("/auth/me", r.handleMe)

	authed.GET("/traders", r.handleListTraders)
	authed.GET("/traders/:id", r.handleGetTrader)
	authed.PUT("/traders/:id", r.handleUpdateSettings)

	authed.GET("/trades", r.handleListTrades)
	authed.POST("/trades", r.handleCreateTrade)
	authed.GET("/trades/:id", r.handleGetTrade)
	authed.PUT("/trades/:id", r.handleUpdateTrade)
	authed.DELETE("/trades/:id", r.handleDeleteTrade)

	authed.GET("/stats", r.handleStats)
	authed.GET("/export", r.handleExport)
	authed.GET("/report", r.handleReport)
	authed.GET("/events", r.handleEvents)
	if r.Importer != nil {
		authed.POST("/seed", r.handleSeed)
	}
}

// writeError maps service sentinels to HTTP statuses. Unknown errors are
// logged and surfaced as 500 without their internals.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation), errors.Is(err, service.ErrPinLength):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, service.ErrNameTaken), errors.Is(err, service.ErrTraderLimit):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Errorf("[api] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
