package application

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/singleflight"

	"github.com/Callmedas69/ssa-sub000/internal/attest"
	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/scoring"
)

// DefaultIndexTTL bounds how long a computed index may be served from the
// in-process cache before the providers are consulted again.
const DefaultIndexTTL = 5 * time.Minute

// Service is the facade the transport layer calls. It owns the scoring
// cache and delegates issuance to the attestation and voucher issuers.
type Service struct {
	orchestrator *scoring.Orchestrator
	registry     *scoring.Registry
	issuer       *attest.Issuer
	vouchers     *attest.VoucherIssuer
	logger       *slog.Logger

	indexTTL time.Duration
	now      func() time.Time

	// sf collapses concurrent index requests for the same subject into
	// one provider fan-out.
	sf    singleflight.Group
	mu    sync.RWMutex
	cache map[common.Address]cachedIndex
}

type cachedIndex struct {
	index   domain.Index
	fetched time.Time
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithIndexTTL overrides the index cache lifetime.
func WithIndexTTL(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.indexTTL = d
		}
	}
}

// WithServiceClock replaces the service clock. Intended for tests.
func WithServiceClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService wires the facade over the scoring and issuance components.
func NewService(
	orchestrator *scoring.Orchestrator,
	registry *scoring.Registry,
	issuer *attest.Issuer,
	vouchers *attest.VoucherIssuer,
	logger *slog.Logger,
	opts ...ServiceOption,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		orchestrator: orchestrator,
		registry:     registry,
		issuer:       issuer,
		vouchers:     vouchers,
		logger:       logger,
		indexTTL:     DefaultIndexTTL,
		now:          time.Now,
		cache:        make(map[common.Address]cachedIndex),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetIndex computes the subject's current index. The call is read-only and
// side-effect free for callers; results are cached for a bounded interval
// and concurrent requests for the same subject share one provider fan-out.
func (s *Service) GetIndex(ctx context.Context, rawSubject string) (domain.Index, error) {
	subject, err := ParseSubject(rawSubject)
	if err != nil {
		return domain.Index{}, err
	}
	return s.indexFor(ctx, subject)
}

// GetAttestation computes a fresh index for the subject and asks the
// issuer to sign it. The caller is the authenticated address making the
// request; refusals come back as typed RefusalError values.
func (s *Service) GetAttestation(ctx context.Context, rawCaller, rawSubject string) (domain.SignedAttestation, error) {
	caller, err := ParseSubject(rawCaller)
	if err != nil {
		return domain.SignedAttestation{}, err
	}
	subject, err := ParseSubject(rawSubject)
	if err != nil {
		return domain.SignedAttestation{}, err
	}

	// Attestations always score fresh; a cached index must never be
	// signed after its providers have moved on.
	results := s.orchestrator.Fetch(ctx, subject)
	index := scoring.Aggregate(s.registry, results)

	return s.issuer.Issue(ctx, caller, subject, index)
}

// GetMintVoucher issues a signed, single-use mint authorization for the
// subject.
func (s *Service) GetMintVoucher(ctx context.Context, rawSubject string) (domain.SignedVoucher, error) {
	subject, err := ParseSubject(rawSubject)
	if err != nil {
		return domain.SignedVoucher{}, err
	}
	return s.vouchers.Issue(ctx, subject)
}

func (s *Service) indexFor(ctx context.Context, subject common.Address) (domain.Index, error) {
	s.mu.RLock()
	cached, ok := s.cache[subject]
	s.mu.RUnlock()
	if ok && s.now().Sub(cached.fetched) < s.indexTTL {
		return cached.index, nil
	}

	v, err, _ := s.sf.Do(subject.Hex(), func() (any, error) {
		results := s.orchestrator.Fetch(ctx, subject)
		index := scoring.Aggregate(s.registry, results)

		s.mu.Lock()
		s.cache[subject] = cachedIndex{index: index, fetched: s.now()}
		s.mu.Unlock()
		return index, nil
	})
	if err != nil {
		return domain.Index{}, err
	}
	return v.(domain.Index), nil
}
