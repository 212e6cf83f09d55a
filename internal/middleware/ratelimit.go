package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// FixedWindowLimiter limits requests per key (client IP) with a fixed window
// counter. Good enough at this scale; a burst at a window edge can briefly
// exceed the limit.
type FixedWindowLimiter struct {
	mu     sync.Mutex
	counts map[string]*windowCount
	limit  int
	window time.Duration
	lastGC time.Time
}

type windowCount struct {
	start time.Time
	n     int
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		counts: make(map[string]*windowCount),
		limit:  limit,
		window: window,
		lastGC: time.Now(),
	}
}

func (l *FixedWindowLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	if now.Sub(l.lastGC) > l.window {
		for k, w := range l.counts {
			if now.Sub(w.start) > l.window {
				delete(l.counts, k)
			}
		}
		l.lastGC = now
	}
	w := l.counts[key]
	if w == nil || now.Sub(w.start) > l.window {
		l.counts[key] = &windowCount{start: now, n: 1}
		return true
	}
	if w.n >= l.limit {
		return false
	}
	w.n++
	return true
}

func RateLimit(limiter *FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
