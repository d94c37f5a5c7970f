package handlers

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/chairlinked/api/internal/platform/httpx"
)

const (
	corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"
	corsAllowHeaders = "Authorization, Content-Type, Idempotency-Key, X-Request-ID"
	corsMaxAge       = "600"
)

// corsMiddleware answers browser preflights for the editor frontends listed in
// origins. A "*" entry allows any origin.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(origins))
	wildcard := false
	for _, origin := range origins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if origin == "*" {
			wildcard = true
			continue
		}
		allowed[strings.ToLower(origin)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			_, ok := allowed[strings.ToLower(origin)]
			if !ok && !wildcard {
				next.ServeHTTP(w, r)
				return
			}

			h := w.Header()
			h.Add("Vary", "Origin")
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Expose-Headers", "Location, Retry-After, X-Request-ID")

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				h.Set("Access-Control-Allow-Methods", corsAllowMethods)
				h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
				h.Set("Access-Control-Max-Age", corsMaxAge)
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// requestThrottle applies a token bucket per client address.
type requestThrottle struct {
	limit      rate.Limit
	burst      int
	retryAfter time.Duration
	clock      func() time.Time

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

func newRequestThrottle(perMinute int, clock func() time.Time) *requestThrottle {
	if perMinute <= 0 {
		return nil
	}
	if clock == nil {
		clock = time.Now
	}
	return &requestThrottle{
		limit:      rate.Limit(float64(perMinute) / 60),
		burst:      perMinute,
		retryAfter: time.Minute / time.Duration(perMinute),
		clock:      clock,
		clients:    make(map[string]*clientLimiter),
	}
}

func (t *requestThrottle) allow(key string) bool {
	now := t.clock()
	t.mu.Lock()
	defer t.mu.Unlock()

	client, ok := t.clients[key]
	if !ok {
		t.pruneLocked(now)
		client = &clientLimiter{limiter: rate.NewLimiter(t.limit, t.burst)}
		t.clients[key] = client
	}
	client.lastSeen = now
	return client.limiter.AllowN(now, 1)
}

func (t *requestThrottle) pruneLocked(now time.Time) {
	for key, client := range t.clients {
		if now.Sub(client.lastSeen) > 10*time.Minute {
			delete(t.clients, key)
		}
	}
}

func (t *requestThrottle) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if !t.allow(clientAddress(r)) {
			httpx.WriteError(r.Context(), w, httpx.NewError("rate_limited", "too many requests, slow down", http.StatusTooManyRequests).WithRetryAfter(t.retryAfter))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientAddress(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
