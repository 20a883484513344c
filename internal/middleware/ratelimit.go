package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/aminulnv/Year-In-Review/internal/model"
)

// RateLimiter is a per-client token bucket. Each bucket holds up to
// rate+burst tokens and refills continuously at rate tokens per window.
// The server puts it in front of submission and sheet append routes.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     int           // Requests per window
	window   time.Duration // Time window
	burst    int           // Extra capacity above rate
	cleanup  time.Duration // Cleanup interval for idle buckets
	key      func(*http.Request) string
	now      func() time.Time
	stopChan chan struct{}
}

type bucket struct {
	tokens  float64
	updated time.Time
}

// RateLimitConfig holds rate limiter configuration
type RateLimitConfig struct {
	Rate    int                        // Requests per window (default 100)
	Window  time.Duration              // Time window (default 1 minute)
	Burst   int                        // Max burst (default 20)
	Cleanup time.Duration              // Cleanup interval (default 5 minutes)
	Key     func(*http.Request) string // Bucket key (default ClientKey)
	Now     func() time.Time
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.Rate == 0 {
		cfg.Rate = 100
	}
	if cfg.Window == 0 {
		cfg.Window = time.Minute
	}
	if cfg.Burst == 0 {
		cfg.Burst = 20
	}
	if cfg.Cleanup == 0 {
		cfg.Cleanup = 5 * time.Minute
	}
	if cfg.Key == nil {
		cfg.Key = ClientKey
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	rl := &RateLimiter{
		buckets:  make(map[string]*bucket),
		rate:     cfg.Rate,
		window:   cfg.Window,
		burst:    cfg.Burst,
		cleanup:  cfg.Cleanup,
		key:      cfg.Key,
		now:      cfg.Now,
		stopChan: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop stops the rate limiter cleanup goroutine
func (rl *RateLimiter) Stop() {
	close(rl.stopChan)
}

// Limit is the number of requests allowed per window.
func (rl *RateLimiter) Limit() int { return rl.rate }

func (rl *RateLimiter) capacity() float64 { return float64(rl.rate + rl.burst) }

// perToken is how long one token takes to refill.
func (rl *RateLimiter) perToken() time.Duration {
	return rl.window / time.Duration(rl.rate)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupExpired()
		case <-rl.stopChan:
			return
		}
	}
}

// cleanupExpired drops buckets idle for two windows; they would be full again.
func (rl *RateLimiter) cleanupExpired() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := rl.now().Add(-rl.window * 2)
	for key, b := range rl.buckets {
		if b.updated.Before(cutoff) {
			delete(rl.buckets, key)
		}
	}
}

// Allow takes a token for key. resetTime is when the next token becomes
// available if denied, or when the bucket is full again if allowed.
func (rl *RateLimiter) Allow(key string) (allowed bool, remaining int, resetTime time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, exists := rl.buckets[key]
	if !exists {
		b = &bucket{tokens: rl.capacity(), updated: now}
		rl.buckets[key] = b
	} else if elapsed := now.Sub(b.updated); elapsed > 0 {
		b.tokens = math.Min(rl.capacity(), b.tokens+float64(rl.rate)*elapsed.Seconds()/rl.window.Seconds())
		b.updated = now
	}

	if b.tokens < 1 {
		wait := time.Duration((1 - b.tokens) * float64(rl.perToken()))
		return false, 0, now.Add(wait)
	}

	b.tokens--
	missing := rl.capacity() - b.tokens
	return true, int(b.tokens), now.Add(time.Duration(missing * float64(rl.perToken())))
}

// RateLimit returns a middleware that applies rate limiting
func RateLimit(limiter *RateLimiter) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, resetTime := limiter.Allow(limiter.key(r))

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				retryAfter := int(math.Ceil(resetTime.Sub(limiter.now()).Seconds()))
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))

				model.NewRateLimitError(retryAfter).WriteJSON(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
