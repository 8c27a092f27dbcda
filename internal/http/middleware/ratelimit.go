package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// idleWindow is how long an inactive client keeps its token bucket before
// the entry is dropped.
const idleWindow = 5 * time.Minute

// RateLimiter throttles requests per client IP with one token bucket each.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	visitors map[string]*visitor
}

type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter sizes buckets from a requests-per-minute allowance. Burst
// is a tenth of the allowance, at least one. A non-positive allowance
// returns nil, which Handler treats as throttling disabled.
func NewRateLimiter(requestsPerMinute int) *RateLimiter {
	if requestsPerMinute <= 0 {
		return nil
	}
	burst := requestsPerMinute / 10
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit:    rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:    burst,
		visitors: make(map[string]*visitor),
	}
}

// Handler returns the gin middleware enforcing the limit.
func (r *RateLimiter) Handler() gin.HandlerFunc {
	if r == nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		if !r.bucketFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"msg":     "Too many requests. Please slow down.",
			})
			return
		}
		c.Next()
	}
}

func (r *RateLimiter) bucketFor(ip string) *rate.Limiter {
	now := time.Now()
	r.mu.Lock()
	defer r.mu.Unlock()

	if v, ok := r.visitors[ip]; ok {
		v.lastSeen = now
		return v.bucket
	}

	bucket := rate.NewLimiter(r.limit, r.burst)
	r.visitors[ip] = &visitor{bucket: bucket, lastSeen: now}
	r.evictIdleLocked(now)
	return bucket
}

func (r *RateLimiter) evictIdleLocked(now time.Time) {
	for ip, v := range r.visitors {
		if now.Sub(v.lastSeen) > idleWindow {
			delete(r.visitors, ip)
		}
	}
}
