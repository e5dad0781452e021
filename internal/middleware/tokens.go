package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/windoze95/chefremy-api/internal/config"
	"github.com/windoze95/chefremy-api/internal/util"
)

// SessionTokenTTL is how long a cooking session token stays valid.
const SessionTokenTTL = 12 * time.Hour

const sessionTokenType = "session"

// GenerateSessionToken signs a token that grants access to one cooking session.
func GenerateSessionToken(secret, sessionID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"session_id": sessionID,
		"exp":        now.Add(ttl).Unix(),
		"iat":        now.Unix(),
		"type":       sessionTokenType,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseSessionToken validates a session token and returns its session ID.
func ParseSessionToken(secret, tokenString string) (string, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	// Ensure this is a session token
	tokenType, ok := claims["type"].(string)
	if !ok || tokenType != sessionTokenType {
		return "", errors.New("invalid token type")
	}

	sessionID, ok := claims["session_id"].(string)
	if !ok || sessionID == "" {
		return "", errors.New("invalid session_id in token")
	}
	return sessionID, nil
}

// VerifySessionTokenMiddleware verifies the session token in the
// Authorization header and that it belongs to the :session_id in the path.
func VerifySessionTokenMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		tokenString = strings.TrimSpace(tokenString)

		sessionID, err := ParseSessionToken(cfg.EnvVars.SessionSecret, tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}

		if param := c.Param("session_id"); param != "" && param != sessionID {
			c.JSON(http.StatusForbidden, gin.H{"error": "Token does not grant access to this session"})
			c.Abort()
			return
		}

		c.Set(util.SessionIDKey, sessionID)
		c.Next()
	}
}
