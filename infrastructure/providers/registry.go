package providers

import (
	"time"

	"golang.org/x/time/rate"

	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// Config assembles the per-provider adapter settings for one deployment.
type Config struct {
	// Passport configures the sybil-signal adapter.
	Passport AdapterConfig

	// Talent configures the builder-score adapter.
	Talent AdapterConfig

	// SocialID configures the id-resolution adapter.
	SocialID AdapterConfig

	// SocialGraph configures the graph-score adapter.
	SocialGraph AdapterConfig

	// WebOfScore configures the credibility adapter.
	WebOfScore AdapterConfig

	// RequestTimeout bounds each outbound provider request. Zero selects
	// a default.
	RequestTimeout time.Duration

	// RequestsPerSecond paces each provider's token bucket. Zero selects
	// a default.
	RequestsPerSecond float64

	// MaxRetries is the number of retry attempts for transient faults.
	MaxRetries int
}

// Default pacing for outbound provider traffic.
const (
	DefaultRequestTimeout    = 5 * time.Second
	DefaultRequestsPerSecond = 5.0
	DefaultMaxRetries        = 2
)

// BuildAdapters constructs every concrete adapter and wraps each in the
// shared middleware chain: tracing outermost, then metrics, retry, rate
// limiting, and the request timeout closest to the wire. Each provider
// gets its own rate limiter; the chain itself is shared configuration.
func BuildAdapters(cfg Config, metrics ports.MetricsCollector) map[string]ports.ProviderAdapter {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultRequestsPerSecond
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = DefaultMaxRetries
	}

	wrap := func(a ports.ProviderAdapter) ports.ProviderAdapter {
		mws := []Middleware{TracingMiddleware()}
		if metrics != nil {
			mws = append(mws, MetricsMiddleware(metrics))
		}
		mws = append(mws,
			RetryMiddleware(retries, 200*time.Millisecond, 2*time.Second),
			RateLimitMiddleware(rate.Limit(rps), int(rps)*2),
			TimeoutMiddleware(timeout),
		)
		return Chain(a, mws...)
	}

	return map[string]ports.ProviderAdapter{
		PassportProviderID:    wrap(NewPassportAdapter(cfg.Passport)),
		TalentProviderID:      wrap(NewTalentAdapter(cfg.Talent)),
		SocialIDProviderID:    wrap(NewSocialIDAdapter(cfg.SocialID)),
		SocialGraphProviderID: wrap(NewSocialGraphAdapter(cfg.SocialGraph)),
		WebOfScoreProviderID:  wrap(NewWebOfScoreAdapter(cfg.WebOfScore)),
	}
}
