package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/intellimanage/platform/internal/ratelimit"
)

// ipLimiter stores token-bucket limiters per client IP.
type ipLimiter struct {
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
	rate     rate.Limit
	burst    int
}

func newIPLimiter(rateLimit rate.Limit, burst int) *ipLimiter {
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rateLimit,
		burst:    burst,
	}
}

func (rl *ipLimiter) get(ip string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, ok := rl.limiters[ip]
	if !ok {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[ip] = limiter
	}
	return limiter
}

// RateLimitMiddleware limits requests per client IP.
func RateLimitMiddleware(requestsPerMinute, burst int) gin.HandlerFunc {
	limiter := newIPLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), burst)

	return func(c *gin.Context) {
		ip := c.ClientIP()
		if ip == "" {
			ip = c.RemoteIP()
		}
		if !limiter.get(ip).Allow() {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// AuthRateLimitMiddleware covers login, register and logout. Generous
// enough for normal usage, tight enough to slow credential stuffing.
func AuthRateLimitMiddleware() gin.HandlerFunc {
	return RateLimitMiddleware(30, 15)
}

// AssistantRateLimitMiddleware admits assistant calls through the
// per-user guard. Unauthenticated callers share the anonymous bucket.
func AssistantRateLimitMiddleware(guard *ratelimit.Guard) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := ""
		if user, ok := UserFromContext(c); ok {
			key = user.ID
		}
		if !guard.Admit(key) {
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many assistant requests, try again in a minute"})
			c.Abort()
			return
		}
		c.Next()
	}
}
