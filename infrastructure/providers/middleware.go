// Package providers implements the HTTP fetch adapters for the reputation
// providers, plus the cross-cutting middleware chain applied to every
// adapter: timeout, rate limiting, retry, metrics, and tracing.
package providers

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// Middleware wraps a ProviderAdapter with additional behavior.
type Middleware func(ports.ProviderAdapter) ports.ProviderAdapter

// Chain applies middleware to an adapter in order, so the first middleware
// listed is the outermost wrapper.
func Chain(adapter ports.ProviderAdapter, mws ...Middleware) ports.ProviderAdapter {
	for i := len(mws) - 1; i >= 0; i-- {
		adapter = mws[i](adapter)
	}
	return adapter
}

// timeoutAdapter bounds every fetch with a deadline.
type timeoutAdapter struct {
	next    ports.ProviderAdapter
	timeout time.Duration
}

// TimeoutMiddleware creates middleware that enforces a per-fetch deadline,
// ensuring a stalled provider resolves to absent instead of hanging the
// batch.
func TimeoutMiddleware(timeout time.Duration) Middleware {
	return func(next ports.ProviderAdapter) ports.ProviderAdapter {
		return &timeoutAdapter{next: next, timeout: timeout}
	}
}

func (t *timeoutAdapter) ProviderID() string { return t.next.ProviderID() }

func (t *timeoutAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	res, err := t.next.Fetch(ctx, input)
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, ports.NewAdapterError(t.next.ProviderID(), "fetch", ports.ErrTimeout)
	}
	return res, err
}

// rateLimitedAdapter paces fetches with a token bucket.
type rateLimitedAdapter struct {
	next    ports.ProviderAdapter
	limiter *rate.Limiter
}

// RateLimitMiddleware creates middleware that paces requests to a provider
// using a token bucket, keeping the fan-out inside the provider's API
// limits.
func RateLimitMiddleware(limit rate.Limit, burst int) Middleware {
	limiter := rate.NewLimiter(limit, burst)
	return func(next ports.ProviderAdapter) ports.ProviderAdapter {
		return &rateLimitedAdapter{next: next, limiter: limiter}
	}
}

func (r *rateLimitedAdapter) ProviderID() string { return r.next.ProviderID() }

func (r *rateLimitedAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return r.next.Fetch(ctx, input)
}

// retryAdapter retries transient faults with exponential backoff.
type retryAdapter struct {
	next       ports.ProviderAdapter
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

// RetryMiddleware creates middleware that retries transient fetch failures
// with exponential backoff and jitter. Not-found and missing-credential
// outcomes are never retried; they cannot change within a request.
func RetryMiddleware(maxRetries int, baseDelay, maxDelay time.Duration) Middleware {
	return func(next ports.ProviderAdapter) ports.ProviderAdapter {
		return &retryAdapter{next: next, maxRetries: maxRetries, baseDelay: baseDelay, maxDelay: maxDelay}
	}
}

func (r *retryAdapter) ProviderID() string { return r.next.ProviderID() }

func (r *retryAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		res, err := r.next.Fetch(ctx, input)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if errors.Is(err, ports.ErrSubjectUnknown) ||
			errors.Is(err, ports.ErrMissingCredential) ||
			ctx.Err() != nil ||
			attempt == r.maxRetries {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.delay(attempt)):
		}
	}
	return nil, lastErr
}

func (r *retryAdapter) delay(attempt int) time.Duration {
	if attempt > 30 {
		attempt = 30
	}
	delay := time.Duration(float64(r.baseDelay) * float64(uint(1)<<uint(attempt)))

	// Jitter of roughly ±25% spreads retries from concurrent fetches.
	jitter := time.Duration(rand.Float64() * float64(delay) * 0.5)
	delay = delay + jitter - delay/4

	if delay > r.maxDelay {
		delay = r.maxDelay
	}
	return delay
}

// metricsAdapter records fetch latency and outcome counters.
type metricsAdapter struct {
	next    ports.ProviderAdapter
	metrics ports.MetricsCollector
}

// MetricsMiddleware creates middleware that records per-provider fetch
// latency and outcomes.
func MetricsMiddleware(metrics ports.MetricsCollector) Middleware {
	return func(next ports.ProviderAdapter) ports.ProviderAdapter {
		return &metricsAdapter{next: next, metrics: metrics}
	}
}

func (m *metricsAdapter) ProviderID() string { return m.next.ProviderID() }

func (m *metricsAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	labels := map[string]string{"provider": m.next.ProviderID()}
	start := time.Now()
	res, err := m.next.Fetch(ctx, input)
	m.metrics.RecordLatency("provider_request", time.Since(start), labels)
	if err != nil {
		m.metrics.RecordCounter("provider_request_errors_total", 1, labels)
	} else {
		m.metrics.RecordCounter("provider_requests_total", 1, labels)
	}
	return res, err
}

// tracedAdapter wraps fetches in OpenTelemetry spans.
type tracedAdapter struct {
	next   ports.ProviderAdapter
	tracer trace.Tracer
}

// TracingMiddleware creates middleware that records each fetch as a span
// with the provider id and outcome attached.
func TracingMiddleware() Middleware {
	tracer := otel.Tracer("provider-adapter")
	return func(next ports.ProviderAdapter) ports.ProviderAdapter {
		return &tracedAdapter{next: next, tracer: tracer}
	}
}

func (t *tracedAdapter) ProviderID() string { return t.next.ProviderID() }

func (t *tracedAdapter) Fetch(ctx context.Context, input string) (*domain.RawResult, error) {
	ctx, span := t.tracer.Start(ctx, "ProviderAdapter.Fetch",
		trace.WithAttributes(attribute.String("provider.id", t.next.ProviderID())),
	)
	defer span.End()

	res, err := t.next.Fetch(ctx, input)
	if err != nil {
		span.RecordError(err)
		if !errors.Is(err, ports.ErrSubjectUnknown) {
			span.SetStatus(codes.Error, err.Error())
		}
		return nil, err
	}
	span.SetAttributes(attribute.Float64("provider.raw_score", res.Score))
	return res, nil
}
