package logbookhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"logbook/internal/auth"
	"logbook/internal/logger"
)

type credentialsRequest struct {
	Name string `json:"name" binding:"required"`
	Pin  string `json:"pin" binding:"required"`
}

func (r *Router) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and pin are required"})
		return
	}
	trader, err := r.Traders.Register(c.Request.Context(), req.Name, req.Pin)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := r.issueSession(c, trader.ID, trader.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"trader": trader})
}

func (r *Router) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and pin are required"})
		return
	}
	trader, err := r.Traders.Authenticate(c.Request.Context(), req.Name, req.Pin)
	if err != nil {
		logger.Warnf("[api] login failed ip=%s name=%s", c.ClientIP(), req.Name)
		writeError(c, err)
		return
	}
	if err := r.issueSession(c, trader.ID, trader.Name); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trader": trader})
}

func (r *Router) handleLogout(c *gin.Context) {
	http.SetCookie(c.Writer, auth.ClearCookie())
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (r *Router) handleMe(c *gin.Context) {
	sess := currentSession(c)
	trader, err := r.Traders.Get(c.Request.Context(), sess.TraderID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"trader": trader})
}

func (r *Router) issueSession(c *gin.Context, traderID int64, name string) error {
	token, err := r.Sessions.IssueToken(traderID, name)
	if err != nil {
		return err
	}
	http.SetCookie(c.Writer, r.Sessions.SessionCookie(token))
	return nil
}
