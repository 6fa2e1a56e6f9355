package logbookhttp

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"logbook/internal/export"
	"logbook/internal/logger"
)

func (r *Router) handleStats(c *gin.Context) {
	ctx := c.Request.Context()
	if raw := strings.TrimSpace(c.Query("trader_id")); raw != "" {
		traderID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || traderID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trader_id"})
			return
		}
		block, err := r.Stats.ForTrader(ctx, traderID)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"stats": []any{block}})
		return
	}
	blocks, err := r.Stats.ForAll(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": blocks})
}

func (r *Router) handleExport(c *gin.Context) {
	var traderID int64
	if raw := strings.TrimSpace(c.Query("trader_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trader_id"})
			return
		}
		traderID = id
	}
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(time.Now())+`"`)
	if err := r.Exporter.Write(c.Request.Context(), c.Writer, traderID); err != nil {
		logger.Errorf("[api] export failed ip=%s err=%v", c.ClientIP(), err)
		// headers are already out; nothing useful left to send
		c.Abort()
	}
}

func (r *Router) handleReport(c *gin.Context) {
	var traderID int64
	if raw := strings.TrimSpace(c.Query("trader_id")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid trader_id"})
			return
		}
		traderID = id
	}
	// render to a buffer so a bad trader id still gets a JSON error
	var buf bytes.Buffer
	if err := r.Reports.RenderHTML(c.Request.Context(), &buf, traderID); err != nil {
		logger.Errorf("[api] report render failed ip=%s err=%v", c.ClientIP(), err)
		writeError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (r *Router) handleEvents(c *gin.Context) {
	if r.Events == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event log not enabled"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit > 500 {
		limit = 500
	}
	events, err := r.Events.ListRecent(c.Request.Context(), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events})
}

func (r *Router) handleSeed(c *gin.Context) {
	if r.SeedPath == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "seed file not configured"})
		return
	}
	res, err := r.Importer.ImportFile(c.Request.Context(), r.SeedPath)
	if err != nil {
		writeError(c, err)
		return
	}
	sess := currentSession(c)
	logger.Infof("[api] seed import by trader=%d traders=%d trades=%d", sess.TraderID, res.TradersCreated, res.TradesCreated)
	c.JSON(http.StatusOK, gin.H{
		"traders_created": res.TradersCreated,
		"traders_skipped": res.TradersSkipped,
		"trades_created":  res.TradesCreated,
	})
}
