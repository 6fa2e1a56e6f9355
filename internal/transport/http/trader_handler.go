package logbookhttp

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"logbook/internal/store/model"
)

func (r *Router) handleListTraders(c *gin.Context) {
	traders, err := r.Traders.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"traders": traders})
}

func (r *Router) handleGetTrader(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	trader, err := r.Traders.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trader": trader})
}

func (r *Router) handleUpdateSettings(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var settings model.TraderSettings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess := currentSession(c)
	if err := r.Traders.UpdateSettings(c.Request.Context(), sess.TraderID, id, settings); err != nil {
		writeError(c, err)
		return
	}
	trader, err := r.Traders.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trader": trader})
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
