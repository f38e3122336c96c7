package middleware

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const (
	MsgTooManyRequests = "Too many requests from this IP, please try again later."
	defaultClients     = 4096
)

// RateLimiter allows every client ip Requests per Window. Limiters of the
// least recently seen clients are evicted once Clients ips are tracked.
type RateLimiter struct {
	Requests int
	Window   time.Duration
	Clients  int

	limit    rate.Limit
	limiters *lru.Cache[string, *rate.Limiter]

	// serializes limiter creation for a new ip
	createLock sync.Mutex
	logger     *logrus.Entry
}

func (rl *RateLimiter) Start() error {
	rl.logger = logrus.WithFields(
		logrus.Fields{
			"from": "rate_limiter",
		},
	)
	if rl.Clients <= 0 {
		rl.Clients = defaultClients
	}

	rl.limit = rate.Inf
	if rl.Requests > 0 && rl.Window > 0 {
		rl.limit = rate.Limit(float64(rl.Requests) / rl.Window.Seconds())
	}

	cache, err := lru.New[string, *rate.Limiter](rl.Clients)
	if err != nil {
		return err
	}
	rl.limiters = cache
	return nil
}

// Allow reports whether a request from ip fits the budget of that ip.
func (rl *RateLimiter) Allow(ip string) bool {
	if rl.limit == rate.Inf {
		return true
	}
	return rl.limiter(ip).Allow()
}

func (rl *RateLimiter) limiter(ip string) *rate.Limiter {
	if l, ok := rl.limiters.Get(ip); ok {
		return l
	}

	rl.createLock.Lock()
	defer rl.createLock.Unlock()
	if l, ok := rl.limiters.Get(ip); ok {
		return l
	}
	l := rate.NewLimiter(rl.limit, rl.Requests)
	rl.limiters.Add(ip, l)
	return l
}

// Handler rejects requests over budget with 429. It keys on r.RemoteAddr,
// put chi's RealIP in front of it when running behind a proxy.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if rl.Allow(ip) {
			next.ServeHTTP(w, r)
			return
		}

		rl.logger.WithField("ip", ip).Warn("rate limit exceeded")
		retryAfter := int(rl.Window.Seconds()) / max(rl.Requests, 1)
		w.Header().Set("Retry-After", strconv.Itoa(max(retryAfter, 1)))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": MsgTooManyRequests,
		})
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
