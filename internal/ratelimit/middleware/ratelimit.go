// Package middleware throttles custody API calls per caller.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"custody/internal/ratelimit/metrics"
	"custody/internal/ratelimit/models"
	"custody/pkg/platform/circuit"
	"custody/pkg/platform/httputil"
	"custody/pkg/requestcontext"
)

const (
	HeaderLimit     = "X-RateLimit-Limit"
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
	HeaderStatus    = "X-RateLimit-Status"
)

// Limiter admits or rejects one request for key.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

type Middleware struct {
	primary  Limiter
	fallback Limiter
	breaker  *circuit.Breaker
	limits   map[models.Class]models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Middleware)

// WithFallback sets the limiter used while the primary store is failing.
func WithFallback(fallback Limiter) Option {
	return func(m *Middleware) {
		m.fallback = fallback
	}
}

func WithMetrics(mm *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = mm
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(m *Middleware) {
		m.breaker = b
	}
}

func New(primary Limiter, limits map[models.Class]models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		primary: primary,
		limits:  limits,
		logger:  logger,
		breaker: circuit.New("ratelimit"),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ClassFor maps safe methods to the read budget and everything else to the
// write budget.
func ClassFor(method string) models.Class {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return models.ClassRead
	default:
		return models.ClassWrite
	}
}

// RateLimit rejects requests over budget with 429. Requests are keyed by the
// authenticated caller, or by client IP when there is none.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		class := ClassFor(r.Method)
		limit, ok := m.limits[class]
		if !ok || limit.RequestsPerWindow <= 0 {
			next.ServeHTTP(w, r)
			return
		}

		key := models.IPKey(class, requestcontext.ClientIP(ctx))
		if caller := requestcontext.Caller(ctx); !caller.IsZero() {
			key = models.CallerKey(class, caller)
		}

		result, degraded := m.check(ctx, key, limit)
		if degraded {
			w.Header().Set(HeaderStatus, "degraded")
		}
		if result == nil {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set(HeaderLimit, strconv.Itoa(result.Limit))
		w.Header().Set(HeaderRemaining, strconv.Itoa(result.Remaining))
		w.Header().Set(HeaderReset, strconv.FormatInt(result.ResetAt.Unix(), 10))

		if !result.Allowed {
			m.metrics.IncrementRejected(string(class))
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"request_id", requestcontext.RequestID(ctx),
				"class", class,
				"caller", requestcontext.Caller(ctx),
			)
			retryAfter := result.RetryAfter(requestcontext.Now(ctx))
			w.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds())))
			httputil.WriteJSON(w, http.StatusTooManyRequests, httputil.ErrorResponse{
				Error:            "rate_limit_exceeded",
				ErrorDescription: "Too many requests; retry after " + retryAfter.String(),
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// check consults the primary store and falls back to process memory while it
// fails. A nil result admits the request.
func (m *Middleware) check(ctx context.Context, key string, limit models.Limit) (*models.Result, bool) {
	result, err := m.primary.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
	if err == nil {
		if _, change := m.breaker.RecordSuccess(); change.Closed {
			m.metrics.SetDegraded(false)
			m.logger.InfoContext(ctx, "rate limiter recovered; primary store in use")
		}
		return result, false
	}

	m.metrics.IncrementLimiterErrors()
	useFallback, change := m.breaker.RecordFailure()
	if change.Opened {
		m.metrics.SetDegraded(true)
		m.logger.ErrorContext(ctx, "rate limiter store failing; using in-memory fallback", "error", err)
	} else {
		m.logger.WarnContext(ctx, "rate limit check failed", "error", err)
	}
	if !useFallback || m.fallback == nil {
		return nil, false
	}
	result, err = m.fallback.Allow(ctx, key, limit.RequestsPerWindow, limit.Window)
	if err != nil {
		return nil, true
	}
	return result, true
}
