// Package ratelimit throttles requests per client with token buckets.
package ratelimit

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	dErrors "surety/pkg/domain-errors"
	"surety/pkg/platform/audit"
	"surety/pkg/platform/httputil"
	"surety/pkg/requestcontext"
)

const (
	DefaultIdleTTL  = 3 * time.Minute
	sweepInterval   = time.Minute
	anonymousClient = "unknown"
)

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Metrics struct {
	Rejected *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		Rejected: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "surety_rate_limit_rejected_total",
			Help: "Requests rejected by the per-client rate limiter",
		}, []string{"scope"}),
	}
}

func (m *Metrics) reject(scope string) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(scope).Inc()
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Limiter keeps one token bucket per client key. Idle buckets are swept on
// access.
type Limiter struct {
	scope string
	limit rate.Limit
	burst int
	ttl   time.Duration
	now   func() time.Time

	mu        sync.Mutex
	visitors  map[string]*visitor
	lastSweep time.Time

	logger  *slog.Logger
	metrics *Metrics
	audit   AuditPublisher
}

type Option func(*Limiter)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Limiter) {
		l.logger = logger
	}
}

func WithMetrics(m *Metrics) Option {
	return func(l *Limiter) {
		l.metrics = m
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(l *Limiter) {
		l.audit = p
	}
}

func WithIdleTTL(ttl time.Duration) Option {
	return func(l *Limiter) {
		l.ttl = ttl
	}
}

func withClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// New allows rps sustained requests per client with the given burst. A
// non-positive rps disables limiting.
func New(scope string, rps float64, burst int, opts ...Option) *Limiter {
	l := &Limiter{
		scope:    scope,
		limit:    rate.Limit(rps),
		burst:    max(burst, 1),
		ttl:      DefaultIdleTTL,
		now:      time.Now,
		visitors: make(map[string]*visitor),
		logger:   slog.Default(),
	}
	if rps <= 0 {
		l.limit = rate.Inf
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Allow consumes a token for key and reports the wait before the next token.
func (l *Limiter) Allow(key string) (bool, time.Duration) {
	now := l.now()
	lim := l.visitor(key, now)
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

func (l *Limiter) visitor(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= sweepInterval {
		for k, v := range l.visitors {
			if now.Sub(v.lastSeen) > l.ttl {
				delete(l.visitors, k)
			}
		}
		l.lastSweep = now
	}

	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = now
	return v.limiter
}

// Len reports the number of tracked clients.
func (l *Limiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Middleware keys on the authenticated actor when present, else the client IP.
func (l *Limiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := requestcontext.Actor(ctx)
		if key == "" {
			key = requestcontext.ClientIP(ctx)
		}
		if key == "" {
			key = anonymousClient
		}

		allowed, retryAfter := l.Allow(key)
		if l.limit != rate.Inf {
			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.burst))
		}
		if !allowed {
			l.rejected(ctx, key)
			w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
			httputil.WriteError(w, dErrors.New(dErrors.CodeRateLimited, "too many requests, retry later"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (l *Limiter) rejected(ctx context.Context, key string) {
	l.metrics.reject(l.scope)
	l.logger.WarnContext(ctx, "rate limit exceeded",
		"scope", l.scope,
		"request_id", requestcontext.RequestID(ctx),
	)
	if l.audit == nil {
		return
	}
	_ = l.audit.Emit(ctx, audit.Event{
		Wallet:   requestcontext.Actor(ctx),
		Action:   string(audit.EventRateLimitExceeded),
		Decision: l.scope,
		Reason:   key,
	})
}
