package scoring

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// DefaultFetchTimeout bounds a single provider adapter call. A provider
// that has not answered within the bound is absent, not a hang.
const DefaultFetchTimeout = 8 * time.Second

// Orchestrator fans a subject out to every enabled provider adapter and
// collects the results. Independent providers are fetched concurrently;
// dependent providers run after their dependency resolves. One adapter's
// failure never aborts the batch.
type Orchestrator struct {
	registry *Registry
	adapters map[string]ports.ProviderAdapter
	timeout  time.Duration
	logger   *slog.Logger
	metrics  ports.MetricsCollector
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithFetchTimeout overrides the per-adapter call bound.
func WithFetchTimeout(d time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithMetrics attaches a metrics collector to the orchestrator.
func WithMetrics(m ports.MetricsCollector) OrchestratorOption {
	return func(o *Orchestrator) { o.metrics = m }
}

// NewOrchestrator builds an orchestrator over the given registry and
// adapter set. An enabled provider without a matching adapter resolves to
// absent at fetch time and is logged as a deployment defect, never a crash.
func NewOrchestrator(
	reg *Registry,
	adapters map[string]ports.ProviderAdapter,
	logger *slog.Logger,
	opts ...OrchestratorOption,
) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		registry: reg,
		adapters: adapters,
		timeout:  DefaultFetchTimeout,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Fetch produces a result-set entry for every enabled provider. Entries are
// nil for absent providers; absence never propagates as an error.
func (o *Orchestrator) Fetch(ctx context.Context, subject common.Address) domain.ResultSet {
	enabled := o.registry.Enabled()

	results := make(domain.ResultSet, len(enabled))
	var mu sync.Mutex

	independents := make([]domain.ProviderDescriptor, 0, len(enabled))
	dependents := make([]domain.ProviderDescriptor, 0)
	for _, d := range enabled {
		if d.Independent() {
			independents = append(independents, d)
		} else {
			dependents = append(dependents, d)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, d := range independents {
		g.Go(func() error {
			res := o.fetchOne(gctx, d, subject.Hex())
			mu.Lock()
			results[d.ID] = res
			mu.Unlock()
			// Absence is a result, not an error; never fail the group.
			return nil
		})
	}
	_ = g.Wait()

	// Dependents run strictly after their dependency resolved. The set is
	// small and each entry is bounded, so sequential fetch is fine here.
	for _, d := range dependents {
		input, ok := results.Derived(d.DependsOn, d.DerivedField)
		if !ok {
			o.logger.Info("dependency unmet, skipping provider",
				"provider", d.ID, "depends_on", d.DependsOn, "field", d.DerivedField)
			results[d.ID] = nil
			continue
		}
		results[d.ID] = o.fetchOne(ctx, d, input)
	}

	return results
}

// fetchOne runs a single bounded adapter call and absorbs every failure
// mode into an absent result.
func (o *Orchestrator) fetchOne(ctx context.Context, d domain.ProviderDescriptor, input string) *domain.RawResult {
	adapter, ok := o.adapters[d.ID]
	if !ok {
		o.logger.Error("no adapter registered for enabled provider", "provider", d.ID)
		o.count("provider_fetch_absent_total", d.ID, "unconfigured")
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	res, err := adapter.Fetch(cctx, input)
	if o.metrics != nil {
		o.metrics.RecordLatency("provider_fetch", time.Since(start), map[string]string{"provider": d.ID})
	}
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrSubjectUnknown):
			o.logger.Info("subject unknown to provider", "provider", d.ID)
			o.count("provider_fetch_absent_total", d.ID, "not_found")
		case errors.Is(err, ports.ErrMissingCredential):
			o.logger.Error("provider credential not configured", "provider", d.ID)
			o.count("provider_fetch_absent_total", d.ID, "credential")
		default:
			o.logger.Warn("provider fetch failed", "provider", d.ID, "err", err)
			o.count("provider_fetch_absent_total", d.ID, "transport")
		}
		return nil
	}
	o.count("provider_fetch_ok_total", d.ID, "ok")
	return res
}

func (o *Orchestrator) count(metric, provider, outcome string) {
	if o.metrics == nil {
		return
	}
	o.metrics.RecordCounter(metric, 1, map[string]string{"provider": provider, "outcome": outcome})
}
