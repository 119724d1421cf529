// Package ports defines the core interfaces that form the contract between
// the domain/application layers and the infrastructure layer.
// These interfaces enable dependency inversion and make the system testable.
package ports

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
)

// ProviderAdapter turns a resolved fetch input into a raw provider result.
// Adapters are stateless and safe for concurrent use; one adapter instance
// serves every subject.
type ProviderAdapter interface {
	// ProviderID returns the registry id of the provider this adapter
	// serves.
	ProviderID() string

	// Fetch resolves the input into a raw result. The input is the
	// subject address string for address-kind providers, or the derived
	// value extracted from the dependency's metadata for derived-id
	// providers.
	//
	// Absence is signalled by error, never by a fabricated result:
	// return ErrSubjectUnknown when the provider has no data for the
	// input, ErrMissingCredential when the adapter is unconfigured, and
	// any other error for transport faults. The orchestrator absorbs all
	// of these into an absent entry; none of them abort the batch.
	Fetch(ctx context.Context, input string) (*domain.RawResult, error)
}

// ScoreContract is the read surface of the on-chain attestation and profile
// contracts. Writes are performed by the caller, never by this pipeline.
type ScoreContract interface {
	// LastSubmissionTimestamp returns the unix second of the subject's
	// most recent accepted score submission, zero if none.
	LastSubmissionTimestamp(ctx context.Context, subject common.Address) (uint64, error)

	// IsPaused reports whether the contract currently refuses
	// submissions.
	IsPaused(ctx context.Context) (bool, error)

	// IsProviderAllowed reports whether the contract accepts scores for
	// the given on-chain provider id.
	IsProviderAllowed(ctx context.Context, id domain.ProviderID) (bool, error)

	// HasMinted reports whether the subject already holds a profile
	// token.
	HasMinted(ctx context.Context, subject common.Address) (bool, error)
}

// AttestationSigner produces authoritative signatures over typed payloads.
// Implementations bind every signature to a fixed domain (name, version,
// chain id, verifying contract); a signature is invalid for use against any
// other domain.
type AttestationSigner interface {
	// SignAttestation signs a score attestation payload under the
	// scoring domain.
	SignAttestation(ctx context.Context, payload domain.AttestationPayload) ([]byte, error)

	// SignVoucher signs a mint voucher under the voucher domain. The two
	// domains are distinct; their signatures are not interchangeable.
	SignVoucher(ctx context.Context, voucher domain.MintVoucher) ([]byte, error)

	// SignerAddress returns the address corresponding to the signing
	// key, which the contracts must recognize as authorized.
	SignerAddress() common.Address
}

// MetricsCollector abstracts metrics collection so scoring and issuance
// code does not depend on a concrete metrics backend.
type MetricsCollector interface {
	// RecordLatency records the duration of an operation.
	RecordLatency(operation string, duration time.Duration, labels map[string]string)

	// RecordCounter increments a counter metric.
	RecordCounter(metric string, value float64, labels map[string]string)

	// RecordGauge sets a gauge metric.
	RecordGauge(metric string, value float64, labels map[string]string)
}
