package middleware

import (
	"sync"
	"time"

	"github.com/yourusername/relay/http1"
	"github.com/yourusername/relay/route"
)

// tokenBucket is a hand-rolled limiter, not golang.org/x/time/rate:
// the rest of this module's dependency pack never imports x/time, so
// reaching for it here would be a dependency this codebase otherwise
// has no footprint for. The algorithm mirrors the one
// bolt/middleware/ratelimit.go implements per-key.
type tokenBucket struct {
	mu       sync.Mutex
	tokens   float64
	capacity float64
	rate     float64 // tokens per second
	last     time.Time
}

func newTokenBucket(rps, burst int) *tokenBucket {
	return &tokenBucket{
		tokens:   float64(burst),
		capacity: float64(burst),
		rate:     float64(rps),
		last:     time.Now(),
	}
}

func (b *tokenBucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.last).Seconds()
	b.last = now

	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// limiterEntry pairs a bucket with the time it was last touched, so
// cleanup can evict buckets for clients that stopped sending requests.
type limiterEntry struct {
	bucket     *tokenBucket
	mu         sync.Mutex
	lastAccess time.Time
}

func (e *limiterEntry) touch() {
	e.mu.Lock()
	e.lastAccess = time.Now()
	e.mu.Unlock()
}

func (e *limiterEntry) idleSince() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return time.Since(e.lastAccess)
}

// limiterStore holds one tokenBucket per rate-limit key, the way
// bolt/middleware/ratelimit.go's limiterStore keys by client IP. Keys
// here come from http1.Request.RemoteAddr.
type limiterStore struct {
	limiters sync.Map // string -> *limiterEntry
	rps      int
	burst    int
	maxAge   time.Duration
}

func newLimiterStore(rps, burst int) *limiterStore {
	return &limiterStore{rps: rps, burst: burst, maxAge: 5 * time.Minute}
}

func (ls *limiterStore) get(key string) *limiterEntry {
	if entry, ok := ls.limiters.Load(key); ok {
		e := entry.(*limiterEntry)
		e.touch()
		return e
	}
	entry := &limiterEntry{bucket: newTokenBucket(ls.rps, ls.burst), lastAccess: time.Now()}
	actual, loaded := ls.limiters.LoadOrStore(key, entry)
	if loaded {
		return actual.(*limiterEntry)
	}
	return entry
}

func (ls *limiterStore) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for range ticker.C {
		ls.limiters.Range(func(key, value any) bool {
			if value.(*limiterEntry).idleSince() > ls.maxAge {
				ls.limiters.Delete(key)
			}
			return true
		})
	}
}

// RateLimit returns middleware enforcing a per-remote-address token
// bucket of rps tokens per second with the given burst capacity.
// Clients are distinguished by http1.Request.RemoteAddr; requests
// with no remote address (e.g. in-process tests) all share one
// bucket keyed by the empty string.
func RateLimit(rps, burst int) Middleware {
	store := newLimiterStore(rps, burst)
	go store.cleanup(time.Minute)

	return func(next route.Handler) route.Handler {
		return func(req *http1.Request) *http1.Response {
			entry := store.get(req.RemoteAddr)
			if !entry.bucket.allow() {
				return http1.NewResponse(429, []byte("Too Many Requests"))
			}
			return next(req)
		}
	}
}
