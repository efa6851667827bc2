package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/use-agent/solvewatch/config"
	"github.com/use-agent/solvewatch/models"
)

const (
	// limiterMaxIdle is how long a caller's bucket survives without
	// traffic before pruning reclaims it.
	limiterMaxIdle = time.Hour

	// limiterPruneEvery is the pruning cadence.
	limiterPruneEvery = 5 * time.Minute
)

// visitor is one caller's token bucket plus the idle-pruning timestamp.
type visitor struct {
	bucket  *rate.Limiter
	touched time.Time
}

// callerLimiter hands each caller identity its own token bucket and prunes
// buckets idle past limiterMaxIdle so the map cannot grow without bound.
type callerLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
}

func newCallerLimiter(cfg config.RateLimitConfig) *callerLimiter {
	cl := &callerLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(cfg.RequestsPerSecond),
		burst:    cfg.Burst,
	}
	go cl.pruneLoop()
	return cl
}

func (cl *callerLimiter) allow(identity string) bool {
	cl.mu.Lock()
	v, ok := cl.visitors[identity]
	if !ok {
		v = &visitor{bucket: rate.NewLimiter(cl.rps, cl.burst)}
		cl.visitors[identity] = v
	}
	v.touched = time.Now()
	cl.mu.Unlock()
	return v.bucket.Allow()
}

func (cl *callerLimiter) pruneLoop() {
	ticker := time.NewTicker(limiterPruneEvery)
	defer ticker.Stop()
	for range ticker.C {
		stale := time.Now().Add(-limiterMaxIdle)
		cl.mu.Lock()
		for id, v := range cl.visitors {
			if v.touched.Before(stale) {
				delete(cl.visitors, id)
			}
		}
		cl.mu.Unlock()
	}
}

// RateLimit returns token-bucket rate limiting middleware. Authenticated
// requests are limited per API key (recorded by Auth under callerKey);
// unauthenticated ones fall back to the client IP.
func RateLimit(cfg config.RateLimitConfig) gin.HandlerFunc {
	cl := newCallerLimiter(cfg)

	return func(c *gin.Context) {
		identity := c.GetString(callerKey)
		if identity == "" {
			identity = c.ClientIP()
		}
		if !cl.allow(identity) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, models.ClassifyResponse{
				Success: false,
				Error: &models.ErrorDetail{
					Code:    models.ErrCodeRateLimited,
					Message: "rate limit exceeded, slow down",
				},
			})
			return
		}
		c.Next()
	}
}
