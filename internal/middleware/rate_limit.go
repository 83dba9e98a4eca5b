package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	// DefaultRateLimit is the allowed sustained request rate per minute.
	DefaultRateLimit = 120
	// DefaultBurstSize bounds short spikes above the sustained rate.
	DefaultBurstSize = 20

	cleanupInterval = 5 * time.Minute
	limiterTTL      = 10 * time.Minute
)

// RateLimiter applies a token bucket per Auth0 subject. Buckets for subjects
// that go quiet are dropped by a background sweep.
type RateLimiter struct {
	mu        sync.RWMutex
	limiters  map[string]*limiterEntry
	perSecond float64
	burst     int
	stopCh    chan struct{}
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultRateLimit, DefaultBurstSize)
}

func NewRateLimiterWithConfig(requestsPerMinute, burst int) *RateLimiter {
	rl := &RateLimiter{
		limiters:  make(map[string]*limiterEntry),
		perSecond: float64(requestsPerMinute) / 60.0,
		burst:     burst,
		stopCh:    make(chan struct{}),
	}
	go rl.sweep()
	return rl
}

// Allow reports whether the subject may make another request right now.
func (r *RateLimiter) Allow(subject string) bool {
	return r.limiterFor(subject).Allow()
}

func (r *RateLimiter) limiterFor(subject string) *rate.Limiter {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.limiters[subject]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(rate.Limit(r.perSecond), r.burst)}
		r.limiters[subject] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter
}

// GetState returns the approximate remaining budget and when the bucket
// refills, for the X-RateLimit response headers.
func (r *RateLimiter) GetState(subject string) (remaining int, resetTime time.Time) {
	r.mu.RLock()
	entry, ok := r.limiters[subject]
	r.mu.RUnlock()

	if !ok {
		return r.burst, time.Now().Add(time.Minute)
	}

	tokens := int(entry.limiter.Tokens())
	if tokens < 0 {
		tokens = 0
	}
	refill := time.Duration(float64(r.burst-tokens)/r.perSecond) * time.Second
	return tokens, time.Now().Add(refill)
}

func (r *RateLimiter) sweep() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.mu.Lock()
			cutoff := time.Now().Add(-limiterTTL)
			for subject, entry := range r.limiters {
				if entry.lastSeen.Before(cutoff) {
					delete(r.limiters, subject)
					log.Debug().Str("subject", subject).Msg("Dropped idle rate limiter")
				}
			}
			r.mu.Unlock()
		case <-r.stopCh:
			return
		}
	}
}

// Stop terminates the background sweep.
func (r *RateLimiter) Stop() {
	close(r.stopCh)
}

// RateLimitMiddleware throttles authenticated requests per Auth0 subject.
// Requests without a subject pass through untouched; CORS preflights and the
// health endpoint never reach this middleware authenticated.
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			subject := GetAuth0ID(c)
			if subject == "" {
				return next(c)
			}

			allowed := rl.Allow(subject)
			remaining, resetTime := rl.GetState(subject)

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(DefaultRateLimit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				retryAfter := int(time.Until(resetTime).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				h.Set("X-RateLimit-Remaining", "0")
				h.Set("Retry-After", strconv.Itoa(retryAfter))

				log.Warn().
					Str("subject", subject).
					Int("retry_after", retryAfter).
					Msg("Rate limit exceeded")

				return c.JSON(http.StatusTooManyRequests, problemDetails{
					Type:     "https://taxmate.app/errors/rate-limit",
					Title:    "Rate Limit Exceeded",
					Status:   http.StatusTooManyRequests,
					Detail:   fmt.Sprintf("Too many requests. Please retry after %d seconds.", retryAfter),
					Instance: c.Request().URL.Path,
				})
			}

			return next(c)
		}
	}
}
