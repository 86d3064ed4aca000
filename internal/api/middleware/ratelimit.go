package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/shiftpool/marketplace-api/internal/api/metrics"
)

// RateLimitConfig sets the per-client budget for one route group.
type RateLimitConfig struct {
	PerMinute int
	Burst     int
}

// RateLimit applies a token bucket per client IP. The scope names the route
// group in logs and metrics; rejected requests carry a Retry-After hint.
func RateLimit(scope string, cfg RateLimitConfig) echo.MiddlewareFunc {
	buckets := &keyedLimiters{
		rate:      rate.Limit(float64(cfg.PerMinute) / 60.0),
		burst:     cfg.Burst,
		lastSweep: time.Now(),
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			limiter := buckets.get(c.RealIP())
			if limiter.Allow() {
				return next(c)
			}

			reservation := limiter.Reserve()
			delay := reservation.Delay()
			reservation.Cancel()

			retryAfter := int(delay.Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfter))

			metrics.RateLimitRejectionsTotal.WithLabelValues(scope).Inc()
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "too many requests"})
		}
	}
}

type keyedLimiters struct {
	limiters  sync.Map // map[string]*rate.Limiter
	rate      rate.Limit
	burst     int
	mu        sync.Mutex
	lastSweep time.Time
}

func (k *keyedLimiters) get(key string) *rate.Limiter {
	if l, ok := k.limiters.Load(key); ok {
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(k.rate, k.burst)
	actual, loaded := k.limiters.LoadOrStore(key, l)
	if !loaded {
		k.maybeSweep()
	}
	return actual.(*rate.Limiter)
}

// maybeSweep drops buckets that refilled completely, so one-off clients do
// not accumulate forever.
func (k *keyedLimiters) maybeSweep() {
	k.mu.Lock()
	defer k.mu.Unlock()
	if time.Since(k.lastSweep) < 5*time.Minute {
		return
	}
	k.lastSweep = time.Now()

	k.limiters.Range(func(key, value any) bool {
		if value.(*rate.Limiter).Tokens() >= float64(k.burst) {
			k.limiters.Delete(key)
		}
		return true
	})
}
