package util

import (
	"errors"

	"github.com/gin-gonic/gin"
)

// SessionIDKey is the gin context key set by the session token middleware.
const SessionIDKey = "session_id"

// GetSessionIDFromContext gets the authenticated cooking session ID from the context.
func GetSessionIDFromContext(c *gin.Context) (string, error) {
	val, ok := c.Get(SessionIDKey)
	if !ok {
		return "", errors.New("no session information")
	}

	sessionID, ok := val.(string)
	if !ok || sessionID == "" {
		return "", errors.New("session information is of the wrong type")
	}

	return sessionID, nil
}
