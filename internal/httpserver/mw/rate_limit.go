package mw

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/productbazar/bazar/internal/session"
	"github.com/productbazar/bazar/internal/utils"
)

// RateLimitConfig tunes the per-caller token bucket. Callers are keyed by
// session id when the request carries one, so one busy tab cannot starve a
// whole NAT; requests that have not minted a session yet fall back to the
// client IP.
type RateLimitConfig struct {
	Burst        int
	RefillPerMin int
	MaxEntries   int
	IdleTTL      time.Duration
	TrustProxy   bool // resolve IP from proxy headers when true
}

type bucket struct {
	tokens float64
	last   time.Time
}

type limiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens per second
	capacity float64
	max      int
	idleTTL  time.Duration
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.Burst < 1 {
		cfg.Burst = 1
	}
	if cfg.RefillPerMin < 1 {
		cfg.RefillPerMin = 1
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10_000
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	return &limiter{
		buckets:  make(map[string]*bucket, 1024),
		rate:     float64(cfg.RefillPerMin) / 60.0,
		capacity: float64(cfg.Burst),
		max:      cfg.MaxEntries,
		idleTTL:  cfg.IdleTTL,
	}
}

// take refills key's bucket for the elapsed time and spends one token. When
// the bucket is empty it reports how long until the next token accrues.
func (l *limiter) take(key string, now time.Time) (ok bool, remaining int, wait time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b := l.buckets[key]
	if b == nil {
		if len(l.buckets) >= l.max {
			l.evictIdle(now)
		}
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[key] = b
	}

	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.rate)
	}
	b.last = now

	if b.tokens >= 1.0 {
		b.tokens--
		return true, int(b.tokens), 0
	}
	return false, 0, time.Duration((1.0 - b.tokens) / l.rate * float64(time.Second))
}

// evictIdle drops buckets idle past the TTL. An idle bucket is full again,
// so forgetting it loses nothing.
func (l *limiter) evictIdle(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
}

// callerKey prefers the session id over the client IP. The prefixes keep a
// session named like an address from sharing that address's bucket.
func callerKey(r *http.Request, trustProxy bool) string {
	if id := r.Header.Get(session.Header); id != "" {
		return "s:" + id
	}
	return "ip:" + utils.ClientIP(r, trustProxy)
}

// RateLimit rejects callers that exhaust their token bucket with a 429 in
// the gateway's error envelope, carrying Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limitStr := strconv.Itoa(cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, remaining, wait := l.take(callerKey(r, cfg.TrustProxy), time.Now())

			w.Header().Set("X-RateLimit-Limit", limitStr)
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !ok {
				retry := int(math.Ceil(wait.Seconds()))
				if retry < 1 {
					retry = 1
				}
				w.Header().Set("Retry-After", strconv.Itoa(retry))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"success": false,
					"message": "too many requests, slow down",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
