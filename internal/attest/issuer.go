package attest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
	"github.com/Callmedas69/ssa-sub000/internal/scoring"
)

// SubmissionInterval is the minimum wait between two accepted score
// submissions for the same subject. A request at exactly the boundary is
// allowed.
const SubmissionInterval = 24 * time.Hour

// Issuer signs score attestations after running the freshness and
// authorization pre-checks. Refusals are typed results; signing, once
// performed, is never rolled back.
type Issuer struct {
	registry *scoring.Registry
	contract ports.ScoreContract
	signer   ports.AttestationSigner
	logger   *slog.Logger
	now      func() time.Time
}

// NewIssuer builds an attestation issuer. The now function defaults to
// time.Now and exists for tests that pin the clock.
func NewIssuer(
	reg *scoring.Registry,
	contract ports.ScoreContract,
	signer ports.AttestationSigner,
	logger *slog.Logger,
) *Issuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Issuer{
		registry: reg,
		contract: contract,
		signer:   signer,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the issuer's clock. Intended for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue runs the pre-checks and, if they all pass, signs an attestation of
// the given index for the subject.
//
// Checks, in order: the caller must be the subject (no signing on behalf of
// a mismatched address), the contract must not be paused, and the subject's
// last recorded submission must be at least SubmissionInterval old. Each
// refusal is a typed RefusalError; cooldown refusals carry the remaining
// wait. Contract read failures surface as service errors, distinct from
// refusals. Before signing, every payload provider id is checked against
// the contract's allowlist.
func (i *Issuer) Issue(
	ctx context.Context,
	caller common.Address,
	subject common.Address,
	index domain.Index,
) (domain.SignedAttestation, error) {
	if caller != subject {
		return domain.SignedAttestation{}, domain.NewRefusal(domain.RefusalSubjectMismatch)
	}

	paused, err := i.contract.IsPaused(ctx)
	if err != nil {
		return domain.SignedAttestation{}, fmt.Errorf("reading pause state: %w", err)
	}
	if paused {
		return domain.SignedAttestation{}, domain.NewRefusal(domain.RefusalPaused)
	}

	last, err := i.contract.LastSubmissionTimestamp(ctx, subject)
	if err != nil {
		return domain.SignedAttestation{}, fmt.Errorf("reading last submission: %w", err)
	}

	now := i.now()
	if last > 0 {
		eligible := time.Unix(int64(last), 0).Add(SubmissionInterval)
		if now.Before(eligible) {
			return domain.SignedAttestation{}, domain.NewCooldownRefusal(eligible.Sub(now))
		}
	}

	payload, err := BuildPayload(subject, index, i.registry, now)
	if err != nil {
		return domain.SignedAttestation{}, err
	}

	// A payload carrying an id the contract has not registered would be
	// silently rejected on submission; catch the mismatch here instead.
	for _, entry := range payload.Entries {
		allowed, err := i.contract.IsProviderAllowed(ctx, entry.ProviderID)
		if err != nil {
			return domain.SignedAttestation{}, fmt.Errorf("reading provider allowlist: %w", err)
		}
		if !allowed {
			return domain.SignedAttestation{}, fmt.Errorf("%w: provider id 0x%x not registered on contract",
				domain.ErrInvalidConfiguration, entry.ProviderID[:])
		}
	}

	sig, err := i.signer.SignAttestation(ctx, payload)
	if err != nil {
		return domain.SignedAttestation{}, fmt.Errorf("signing attestation: %w", err)
	}

	i.logger.Info("attestation issued",
		"subject", subject.Hex(), "score", payload.Score, "providers", len(payload.Entries))

	return domain.SignedAttestation{Payload: payload, Signature: sig}, nil
}
