package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// staleClientAge is how long a client may stay idle before its bucket is
// dropped from the limiter.
const staleClientAge = 10 * time.Minute

// RateLimiter applies a per-client token bucket to the operational API.
// Buckets refill at rps tokens per second up to burst.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientBucket
	rps     int
	burst   int
	cleanup *time.Ticker
	done    chan struct{}
	logger  *zap.Logger
}

type clientBucket struct {
	tokens     int
	lastUpdate time.Time
}

// NewRateLimiter starts a limiter, including the background sweep that evicts
// idle client buckets.
func NewRateLimiter(rps, burst int, logger *zap.Logger) *RateLimiter {
	limiter := &RateLimiter{
		clients: make(map[string]*clientBucket),
		rps:     rps,
		burst:   burst,
		cleanup: time.NewTicker(5 * time.Minute),
		done:    make(chan struct{}),
		logger:  logger,
	}
	go limiter.sweepStaleClients()

	return limiter
}

// Limit is the gin middleware enforcing the per-client budget.
func (rl *RateLimiter) Limit() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		if !rl.allow(clientIP) {
			rl.logger.Warn("rate limit exceeded",
				zap.String("client_ip", clientIP),
				zap.String("path", c.Request.URL.Path))

			c.JSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": 60,
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

func (rl *RateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, exists := rl.clients[clientIP]
	if !exists {
		bucket = &clientBucket{tokens: rl.burst, lastUpdate: time.Now()}
		rl.clients[clientIP] = bucket
	}

	now := time.Now()
	elapsed := now.Sub(bucket.lastUpdate)
	bucket.tokens += int(elapsed.Seconds() * float64(rl.rps))
	if bucket.tokens > rl.burst {
		bucket.tokens = rl.burst
	}
	bucket.lastUpdate = now

	if bucket.tokens > 0 {
		bucket.tokens--
		return true
	}
	return false
}

func (rl *RateLimiter) sweepStaleClients() {
	for {
		select {
		case <-rl.cleanup.C:
			rl.mu.Lock()
			now := time.Now()
			for ip, bucket := range rl.clients {
				if now.Sub(bucket.lastUpdate) > staleClientAge {
					delete(rl.clients, ip)
				}
			}
			rl.mu.Unlock()
		case <-rl.done:
			return
		}
	}
}

// Stop ends the background sweep.
func (rl *RateLimiter) Stop() {
	rl.cleanup.Stop()
	close(rl.done)
}
