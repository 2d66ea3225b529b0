package auth

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/calendarapp/calendar/internal/rest"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTTL   = 3 * time.Minute
	limiterPruneTick = time.Minute
)

type client struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimiter keeps one token bucket per remote address.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	r         rate.Limit
	burst     int
	lastPrune time.Time
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*client),
		r:       rate.Limit(rps),
		burst:   burst,
	}
}

func (rl *RateLimiter) Allow(key string) bool {
	return rl.get(key, time.Now()).Allow()
}

func (rl *RateLimiter) get(key string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.Sub(rl.lastPrune) > limiterPruneTick {
		for k, c := range rl.clients {
			if now.Sub(c.seen) > limiterIdleTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastPrune = now
	}

	if c, ok := rl.clients[key]; ok {
		c.seen = now
		return c.lim
	}
	l := rate.NewLimiter(rl.r, rl.burst)
	rl.clients[key] = &client{lim: l, seen: now}
	return l
}

// Middleware rejects requests over the limit with 429.
func (rl *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := remoteHost(r)
		if !rl.Allow(key) {
			log.Debugf("rate limit exceeded for %s on %s", key, r.URL.Path)
			rest.WriteError(w, http.StatusTooManyRequests, "Too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
