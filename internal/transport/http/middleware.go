package logbookhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"logbook/internal/auth"
)

const sessionKey = "session"

// sessionRequired resolves the session cookie and stashes the verified
// session on the request context. Requests without a valid session stop here.
func sessionRequired(sessions *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(auth.CookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
			return
		}
		sess, err := sessions.VerifyToken(token)
		if err != nil {
			c.SetCookie(auth.CookieName, "", -1, "/", "", false, true)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session expired"})
			return
		}
		c.Set(sessionKey, sess)
		c.Next()
	}
}

func currentSession(c *gin.Context) auth.Session {
	v, _ := c.Get(sessionKey)
	sess, _ := v.(auth.Session)
	return sess
}
