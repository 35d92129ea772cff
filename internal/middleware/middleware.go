package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter throttles mutating auction calls per account. One account gets
// one listing, bid, stake or settle per interval; reads come from the snapshot
// cache and are never throttled.
type RateLimiter struct {
	accounts map[string]time.Time
	mu       sync.Mutex
	limit    time.Duration
}

func NewRateLimiter(limit time.Duration) *RateLimiter {
	return &RateLimiter{
		accounts: make(map[string]time.Time),
		limit:    limit,
	}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		account := c.GetHeader("X-Account-ID")
		if account == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "X-Account-ID header required"})
			c.Abort()
			return
		}
		r.mu.Lock()
		last, exists := r.accounts[account]
		if exists && time.Since(last) < r.limit {
			r.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		r.accounts[account] = time.Now()
		r.mu.Unlock()
		c.Next()
	}
}
