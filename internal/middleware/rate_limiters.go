package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/windoze95/chefremy-api/internal/logger"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// limiterInfo is a struct that holds a rate limiter and the last time it was seen.
type limiterInfo struct {
	limiter  *rate.Limiter
	mu       sync.Mutex
	lastSeen time.Time
}

func (l *limiterInfo) touch() {
	l.mu.Lock()
	l.lastSeen = time.Now()
	l.mu.Unlock()
}

func (l *limiterInfo) idleFor() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return time.Since(l.lastSeen)
}

// RateLimitByIP allows each client IP rps requests per second with a burst
// of the same size. Limiters idle longer than expiration are dropped every
// cleanupInterval.
func RateLimitByIP(rps int, cleanupInterval time.Duration, expiration time.Duration) gin.HandlerFunc {
	if rps <= 0 {
		rps = 1
	}
	var limiters sync.Map

	// Cleanup goroutine
	go func() {
		for range time.Tick(cleanupInterval) {
			limiters.Range(func(key, value interface{}) bool {
				if value.(*limiterInfo).idleFor() > expiration {
					limiters.Delete(key)
				}
				return true
			})
		}
	}()

	return func(c *gin.Context) {
		ip := c.ClientIP()

		actual, _ := limiters.LoadOrStore(ip, &limiterInfo{
			limiter:  rate.NewLimiter(rate.Limit(rps), rps),
			lastSeen: time.Now(),
		})

		info := actual.(*limiterInfo)
		info.touch()

		if !info.limiter.Allow() {
			logger.FromGin(c).Warn("rate limit exceeded",
				zap.String("client_ip", ip),
				zap.String("path", c.FullPath()),
			)
			c.Header("Retry-After", "1")
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":    "Too many requests",
				"response": "I'm getting a lot of requests right now. Please wait a moment and try again.",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}
