package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"ghpayroll/internal/transport/http/api"
)

// KeyFunc names the caller a request is counted against.
type KeyFunc func(r *http.Request) string

type counter struct {
	hits    int
	resetAt time.Time
}

// limiter is a fixed-window counter per key.
type limiter struct {
	mu        sync.Mutex
	limit     int
	period    time.Duration
	counters  map[string]*counter
	nextSweep time.Time
	now       func() time.Time
}

type verdict struct {
	allowed   bool
	remaining int
	resetIn   time.Duration
}

func newLimiter(limit int, period time.Duration) *limiter {
	return &limiter{limit: limit, period: period, counters: map[string]*counter{}, now: time.Now}
}

func (l *limiter) take(key string) verdict {
	now := l.now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if !now.Before(l.nextSweep) {
		for k, c := range l.counters {
			if now.After(c.resetAt) {
				delete(l.counters, k)
			}
		}
		l.nextSweep = now.Add(l.period)
	}

	c, ok := l.counters[key]
	if !ok || now.After(c.resetAt) {
		c = &counter{resetAt: now.Add(l.period)}
		l.counters[key] = c
	}
	c.hits++
	return verdict{
		allowed:   c.hits <= l.limit,
		remaining: max(l.limit-c.hits, 0),
		resetIn:   c.resetAt.Sub(now),
	}
}

func (l *limiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.counters)
}

// admit counts r against l under key and writes the 429 response when the
// budget is spent.
func admit(w http.ResponseWriter, r *http.Request, l *limiter, key string) bool {
	if l.limit <= 0 {
		return true
	}
	if key == "" {
		key = ClientIP(r)
	}
	v := l.take(key)
	resetSec := int((v.resetIn + time.Second - 1) / time.Second)
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(v.remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.Itoa(resetSec))
	if v.allowed {
		return true
	}
	w.Header().Set("Retry-After", strconv.Itoa(max(resetSec, 1)))
	slog.Warn("rate limit exceeded", "key", key, "method", r.Method, "path", r.URL.Path, "limit", l.limit)
	api.Fail(w, http.StatusTooManyRequests, "rate_limited", "too many requests", GetRequestID(r.Context()))
	return false
}

// RateLimit allows limit requests per period for each caller.
func RateLimit(limit int, period time.Duration) func(http.Handler) http.Handler {
	l := newLimiter(limit, period)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if admit(w, r, l, CallerKey(r)) {
				next.ServeHTTP(w, r)
			}
		})
	}
}

const (
	policyLogin   = "login"
	policyCompute = "compute"
)

var sensitiveRoutes = map[string]string{
	"POST /auth/login":        policyLogin,
	"POST /payroll/batch":     policyCompute,
	"POST /payroll/recompute": policyCompute,
}

// SensitiveRateLimit adds tighter budgets on login (per IP and per submitted
// email, a quarter of base) and on batch and recompute (per caller, half of
// base). Other routes pass through.
func SensitiveRateLimit(base int, period time.Duration) func(http.Handler) http.Handler {
	loginByIP := newLimiter(max(base/4, 1), period)
	loginByEmail := newLimiter(max(base/4, 1), period)
	compute := newLimiter(max(base/2, 1), period)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := strings.TrimPrefix(r.URL.Path, "/api/v1")
			switch sensitiveRoutes[r.Method+" "+path] {
			case policyLogin:
				if !admit(w, r, loginByIP, ClientIP(r)) || !admit(w, r, loginByEmail, loginEmailKey(r)) {
					return
				}
			case policyCompute:
				if !admit(w, r, compute, CallerKey(r)) {
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// CallerKey is the signed-in user's email, or the client IP.
func CallerKey(r *http.Request) string {
	if user, ok := GetUser(r.Context()); ok && user.Email != "" {
		return "user:" + strings.ToLower(user.Email)
	}
	return ClientIP(r)
}

// ClientIP prefers the first X-Forwarded-For hop over RemoteAddr.
func ClientIP(r *http.Request) string {
	if first, _, _ := strings.Cut(r.Header.Get("X-Forwarded-For"), ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

// loginEmailKey peeks at the login body's email and restores the body for
// the handler.
func loginEmailKey(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, 16<<10))
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return ""
	}
	var body struct {
		Email string `json:"email"`
	}
	if json.Unmarshal(raw, &body) != nil || strings.TrimSpace(body.Email) == "" {
		return ""
	}
	return "email:" + strings.ToLower(strings.TrimSpace(body.Email))
}
