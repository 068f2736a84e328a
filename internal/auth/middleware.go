package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookieName is the cookie carrying the session id.
const SessionCookieName = "session_id"

const (
	contextKeyUserID      = "user_id"
	contextKeyHouseholdID = "household_id"
)

// UserIDFromContext returns the current user ID set by RequireSession. 0 if not set.
func UserIDFromContext(c *gin.Context) int64 {
	return int64From(c, contextKeyUserID)
}

// HouseholdIDFromContext returns the household of the current user. 0 if not set.
func HouseholdIDFromContext(c *gin.Context) int64 {
	return int64From(c, contextKeyHouseholdID)
}

func int64From(c *gin.Context, key string) int64 {
	v, ok := c.Get(key)
	if !ok {
		return 0
	}
	id, ok := v.(int64)
	if !ok {
		return 0
	}
	return id
}

// SetSession puts s into the request context the way RequireSession does.
func SetSession(c *gin.Context, s Session) {
	c.Set(contextKeyUserID, s.UserID)
	c.Set(contextKeyHouseholdID, s.HouseholdID)
}

// RequireSession returns a middleware that checks for a valid session cookie
// and sets the current user and household in context. If missing or invalid,
// responds with 401.
func RequireSession(sessions Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := c.Cookie(SessionCookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		sess, ok, err := sessions.Get(c.Request.Context(), sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "session lookup failed"})
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		SetSession(c, sess)
		c.Next()
	}
}
