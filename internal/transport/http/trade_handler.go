package logbookhttp

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"logbook/internal/service"
)

func (r *Router) handleListTrades(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := strings.TrimSpace(c.Query("trader_id")); raw != "" {
		traderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || traderID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trader_id"})
			return
		}
		trades, err := r.Trades.ListByTrader(ctx, traderID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"trades": trades})
		return
	}
	trades, err := r.Trades.ListAll(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trades": trades})
}

func (r *Router) handleCreateTrade(c *gin.Context) {
	var req service.CreateTradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := currentSession(c)
	trade, err := r.Trades.Create(c.Request.Context(), sess.TraderID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trade": trade})
}

func (r *Router) handleGetTrade(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sess := currentSession(c)
	trade, err := r.Trades.Get(c.Request.Context(), sess.TraderID, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

func (r *Router) handleUpdateTrade(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var upd service.ReviewUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := currentSession(c)
	trade, err := r.Trades.UpdateReview(c.Request.Context(), sess.TraderID, id, upd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trade": trade})
}

func (r *Router) handleDeleteTrade(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sess := currentSession(c)
	if err := r.Trades.Delete(c.Request.Context(), sess.TraderID, id); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
