package http_ratelimit_middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/humanbelnik/cinematheque/internal/metrics"
	"golang.org/x/time/rate"
)

const defaultCleanupInterval = 5 * time.Minute

// Limiter keeps one token bucket per client IP.
type Limiter struct {
	rate            rate.Limit
	burst           int
	cleanupInterval time.Duration
	now             func() time.Time

	mu          sync.Mutex
	perIP       map[string]*rate.Limiter
	lastCleanup time.Time
}

type Option func(*Limiter)

func WithCleanupInterval(d time.Duration) Option {
	return func(l *Limiter) {
		l.cleanupInterval = d
	}
}

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

func New(rps float64, burst int, opts ...Option) *Limiter {
	l := &Limiter{
		rate:            rate.Limit(rps),
		burst:           burst,
		cleanupInterval: defaultCleanupInterval,
		now:             time.Now,
		perIP:           make(map[string]*rate.Limiter),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastCleanup = l.now()
	return l
}

func (l *Limiter) Allow(clientIP string) bool {
	l.mu.Lock()
	now := l.now()
	if now.Sub(l.lastCleanup) >= l.cleanupInterval {
		// Dropped buckets come back full.
		l.perIP = make(map[string]*rate.Limiter)
		l.lastCleanup = now
	}
	limiter, ok := l.perIP[clientIP]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.perIP[clientIP] = limiter
	}
	l.mu.Unlock()

	return limiter.AllowN(now, 1)
}

func (l *Limiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if l.Allow(c.ClientIP()) {
			c.Next()
			return
		}

		metrics.RecordRateLimited()
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "Too many requests",
			"code":  http.StatusTooManyRequests,
		})
	}
}
