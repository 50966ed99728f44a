package httpapi

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// ipRateLimiter tracks a token bucket per client IP, evicting buckets that
// have gone idle past staleAfter.
type ipRateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*clientLimiter
	rps        rate.Limit
	burst      int
	staleAfter time.Duration
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newIPRateLimiter(requestsPerSecond float64, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		limiters:   make(map[string]*clientLimiter),
		rps:        rate.Limit(requestsPerSecond),
		burst:      burst,
		staleAfter: 10 * time.Minute,
	}
}

func (l *ipRateLimiter) allow(clientID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	cl, ok := l.limiters[clientID]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[clientID] = cl
	}
	cl.lastSeen = time.Now()
	l.evictStale()
	return cl.limiter.Allow()
}

func (l *ipRateLimiter) evictStale() {
	cutoff := time.Now().Add(-l.staleAfter)
	for id, cl := range l.limiters {
		if cl.lastSeen.Before(cutoff) {
			delete(l.limiters, id)
		}
	}
}

func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}

func (l *ipRateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.allow(clientIP(r)) {
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error:     errorDetails{Code: "RATE_LIMITED", Message: "too many requests"},
				Timestamp: time.Now().UTC(),
				Path:      r.URL.Path,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}
