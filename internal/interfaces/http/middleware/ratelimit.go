package middleware

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/bizcms/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed window limiter keyed by caller
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	period  time.Duration
	now     func() time.Time
}

type window struct {
	remaining int
	start     time.Time
}

// NewRateLimiter allows limit requests per key per period
func NewRateLimiter(limit int, period time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		period:  period,
		now:     time.Now,
	}
}

// Run drops idle keys every two periods until ctx is done
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.period * 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.sweep()
		}
	}
}

func (rl *RateLimiter) sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, w := range rl.clients {
		if now.Sub(w.start) > rl.period*2 {
			delete(rl.clients, key)
		}
	}
}

// Allow consumes one request for key and returns what is left in the window
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.start) >= rl.period {
		rl.clients[key] = &window{remaining: rl.limit - 1, start: now}
		return true, rl.limit - 1
	}
	if w.remaining > 0 {
		w.remaining--
		return true, w.remaining
	}
	return false, 0
}

// RateLimit limits per tenant and client IP
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return RateLimitByKey(limiter, func(c *gin.Context) string {
		key := c.ClientIP()
		if tenant := c.GetHeader(TenantHeader); tenant != "" {
			key = tenant + ":" + key
		}
		return key
	})
}

// RateLimitByKey returns a rate limiting middleware with custom key extractor
func RateLimitByKey(limiter *RateLimiter, keyFunc func(*gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, remaining := limiter.Allow(keyFunc(c))
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !ok {
			abortWithError(c, dto.ErrCodeRateLimited, "Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
