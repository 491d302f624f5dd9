package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

type ipLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP. Buckets idle
// longer than maxIdle are evicted, so the map does not grow with every
// address ever seen.
type RateLimiter struct {
	mu      sync.Mutex
	ips     map[string]*ipLimiter
	rate    rate.Limit
	burst   int
	maxIdle time.Duration
}

func NewRateLimiter(r rate.Limit, b int, maxIdle time.Duration) *RateLimiter {
	return &RateLimiter{
		ips:     make(map[string]*ipLimiter),
		rate:    r,
		burst:   b,
		maxIdle: maxIdle,
	}
}

// Allow reports whether the client may proceed, creating its bucket on
// first sight.
func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.ips[ip]
	if !ok {
		entry = &ipLimiter{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.ips[ip] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

// prune drops buckets that have been idle past the cutoff.
func (rl *RateLimiter) prune(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, entry := range rl.ips {
		if now.Sub(entry.lastSeen) > rl.maxIdle {
			delete(rl.ips, ip)
		}
	}
}

func (rl *RateLimiter) startPruning(interval time.Duration) {
	go func() {
		for range time.Tick(interval) {
			rl.prune(time.Now())
		}
	}()
}

// LoginRateLimit throttles credential checks per client IP.
func LoginRateLimit() gin.HandlerFunc {
	rl := NewRateLimiter(rate.Every(time.Minute/20), 10, 10*time.Minute)
	rl.startPruning(time.Minute)

	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Rate limit exceeded"})
			return
		}
		c.Next()
	}
}
