package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"stable-app-go/pkg/logger"
)

const defaultLimiterIdleTTL = 10 * time.Minute

// KeyFunc picks the bucket a request is counted against. Returning false skips limiting.
type KeyFunc func(r *http.Request) (string, bool)

type RateLimitRecorder interface {
	RecordRateLimited(limiter string)
}

type visitor struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter keeps one token bucket per key and evicts idle buckets in the background.
type RateLimiter struct {
	name     string
	limit    rate.Limit
	burst    int
	retry    int
	key      KeyFunc
	recorder RateLimitRecorder
	log      logger.Logger
	idleTTL  time.Duration

	mu       sync.Mutex
	visitors map[string]*visitor

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewRateLimiter returns nil when perMinute is not positive; a nil limiter lets every request through.
func NewRateLimiter(name string, perMinute, burst int, key KeyFunc, recorder RateLimitRecorder, log logger.Logger) *RateLimiter {
	if perMinute <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}

	rl := &RateLimiter{
		name:     name,
		limit:    rate.Limit(float64(perMinute) / 60.0),
		burst:    burst,
		retry:    (60 + perMinute - 1) / perMinute,
		key:      key,
		recorder: recorder,
		log:      log,
		idleTTL:  defaultLimiterIdleTTL,
		visitors: make(map[string]*visitor),
		stopCh:   make(chan struct{}),
	}
	go rl.cleanupLoop()

	return rl
}

func (rl *RateLimiter) Stop() {
	if rl == nil {
		return
	}
	rl.stopOnce.Do(func() { close(rl.stopCh) })
}

func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	if rl == nil {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key, ok := rl.key(r)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.allow(key, time.Now()) {
			if rl.recorder != nil {
				rl.recorder.RecordRateLimited(rl.name)
			}
			rl.log.Warn("ratelimit: request rejected", "limiter", rl.name, "key", key)
			writeRateLimitResponse(w, rl.retry)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

func (rl *RateLimiter) allow(key string, now time.Time) bool {
	rl.mu.Lock()
	v, ok := rl.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.visitors[key] = v
	}
	v.lastAccess = now
	rl.mu.Unlock()

	return v.limiter.AllowN(now, 1)
}

func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.idleTTL / 2)
	defer ticker.Stop()

	for {
		select {
		case now := <-ticker.C:
			rl.evictIdle(now)
		case <-rl.stopCh:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, v := range rl.visitors {
		if now.Sub(v.lastAccess) > rl.idleTTL {
			delete(rl.visitors, key)
		}
	}
}

// ByClientIP keys on the remote address; mount it after chi's RealIP.
func ByClientIP(r *http.Request) (string, bool) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return host, host != ""
}

func ByUser(r *http.Request) (string, bool) {
	return UserIDFromContext(r.Context())
}

// writeRateLimitResponse sets Retry-After to the whole seconds needed to refill one token.
func writeRateLimitResponse(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	writeError(w, http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests")
}
