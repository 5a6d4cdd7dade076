package middleware

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/smallsteps/backend/internal/apierror"
	"github.com/smallsteps/backend/internal/logger"
)

// RateLimiter is a fixed-window request counter per client IP
type RateLimiter struct {
	requests map[string]*clientInfo
	mu       sync.Mutex
	rate     int
	window   time.Duration
	name     string
	now      func() time.Time
}

type clientInfo struct {
	count       int
	windowStart time.Time
}

// NewRateLimiter allows rate requests per window for each client. name
// identifies the limiter in logs.
func NewRateLimiter(rate int, window time.Duration, name string) *RateLimiter {
	return &RateLimiter{
		requests: make(map[string]*clientInfo),
		rate:     rate,
		window:   window,
		name:     name,
		now:      time.Now,
	}
}

// Run evicts idle clients every two windows until ctx is done
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if cleaned := rl.evictIdle(); cleaned > 0 {
				logger.Default().Debug("rate limiter cleanup completed",
					logger.String("name", rl.name),
					logger.Int("cleaned", cleaned),
				)
			}
		}
	}
}

func (rl *RateLimiter) evictIdle() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	cleaned := 0
	for ip, info := range rl.requests {
		if now.Sub(info.windowStart) > rl.window*2 {
			delete(rl.requests, ip)
			cleaned++
		}
	}
	return cleaned
}

// allow counts one request for ip. When it is refused, retryAfter is the
// time left in the client's window.
func (rl *RateLimiter) allow(ip string) (ok bool, remaining int, retryAfter time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	info, exists := rl.requests[ip]
	if !exists || now.Sub(info.windowStart) >= rl.window {
		rl.requests[ip] = &clientInfo{count: 1, windowStart: now}
		return true, rl.rate - 1, 0
	}

	info.count++
	if info.count > rl.rate {
		return false, 0, rl.window - now.Sub(info.windowStart)
	}
	return true, rl.rate - info.count, 0
}

// Middleware rejects clients over the limit with a 429 problem
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		ok, remaining, retryAfter := rl.allow(ip)
		c.Header("X-RateLimit-Limit", strconv.Itoa(rl.rate))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !ok {
			seconds := int(math.Ceil(retryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			logger.Ctx(c.Request.Context()).Warn("rate limit exceeded",
				logger.String("limiter", rl.name),
				logger.String("client_ip", ip),
				logger.Int("limit", rl.rate),
				logger.Duration("window", rl.window),
			)
			apierror.WriteProblem(c, apierror.NewRateLimitError(apierror.GetRequestID(c), seconds))
			return
		}

		c.Next()
	}
}
