package application

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Callmedas69/ssa-sub000/internal/attest"
	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
	"github.com/Callmedas69/ssa-sub000/internal/scoring"
)

// countingAdapter returns a fixed score and counts its fetches.
type countingAdapter struct {
	id    string
	score float64
	calls atomic.Int64
}

func (a *countingAdapter) ProviderID() string { return a.id }

func (a *countingAdapter) Fetch(context.Context, string) (*domain.RawResult, error) {
	a.calls.Add(1)
	return &domain.RawResult{Score: a.score}, nil
}

type stubContract struct {
	paused bool
	minted bool
}

func (s *stubContract) LastSubmissionTimestamp(context.Context, common.Address) (uint64, error) {
	return 0, nil
}
func (s *stubContract) IsPaused(context.Context) (bool, error) { return s.paused, nil }
func (s *stubContract) IsProviderAllowed(context.Context, domain.ProviderID) (bool, error) {
	return true, nil
}
func (s *stubContract) HasMinted(context.Context, common.Address) (bool, error) {
	return s.minted, nil
}

type stubSigner struct{}

func (stubSigner) SignAttestation(context.Context, domain.AttestationPayload) ([]byte, error) {
	return []byte{0x01}, nil
}
func (stubSigner) SignVoucher(context.Context, domain.MintVoucher) ([]byte, error) {
	return []byte{0x02}, nil
}
func (stubSigner) SignerAddress() common.Address { return common.Address{} }

// settableClock is a manually advanced clock shared by service components.
type settableClock struct{ now time.Time }

func (c *settableClock) Now() time.Time { return c.now }

func newTestService(t *testing.T, contract ports.ScoreContract, clock *settableClock) (*Service, *countingAdapter) {
	t.Helper()

	var onChain domain.ProviderID
	onChain[31] = 1
	reg, err := scoring.NewRegistry([]domain.ProviderDescriptor{{
		ID:             "builder",
		OnChainID:      onChain,
		Weight:         1.0,
		Normalization:  domain.NormalizeNone,
		InputKind:      domain.InputAddress,
		IncludeInScore: true,
		Enabled:        true,
	}})
	require.NoError(t, err)

	adapter := &countingAdapter{id: "builder", score: 64}
	orchestrator := scoring.NewOrchestrator(reg,
		map[string]ports.ProviderAdapter{"builder": adapter}, nil)

	signer := stubSigner{}
	issuer := attest.NewIssuer(reg, contract, signer, nil).WithClock(clock.Now)
	vouchers := attest.NewVoucherIssuer(contract, signer, attest.NewNonceLedger(), nil).WithClock(clock.Now)

	svc := NewService(orchestrator, reg, issuer, vouchers, nil,
		WithIndexTTL(time.Minute),
		WithServiceClock(clock.Now))
	return svc, adapter
}

const testSubjectHex = "0x00000000000000000000000000000000000000aa"

// TestServiceGetIndex verifies subject validation, the computed index, and
// the bounded cache.
func TestServiceGetIndex(t *testing.T) {
	clock := &settableClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc, adapter := newTestService(t, &stubContract{}, clock)
	ctx := context.Background()

	t.Run("invalid subject is rejected", func(t *testing.T) {
		_, err := svc.GetIndex(ctx, "not-an-address")
		assert.ErrorIs(t, err, domain.ErrInvalidSubject)
		assert.Zero(t, adapter.calls.Load())
	})

	index, err := svc.GetIndex(ctx, testSubjectHex)
	require.NoError(t, err)
	assert.Equal(t, 64, index.Score)
	assert.Equal(t, domain.TierTrusted, index.Tier)
	assert.Equal(t, int64(1), adapter.calls.Load())

	t.Run("repeat within the cache lifetime is served from cache", func(t *testing.T) {
		again, err := svc.GetIndex(ctx, testSubjectHex)
		require.NoError(t, err)
		assert.Equal(t, index, again)
		assert.Equal(t, int64(1), adapter.calls.Load())
	})

	t.Run("cache expires after the lifetime", func(t *testing.T) {
		clock.now = clock.now.Add(2 * time.Minute)
		_, err := svc.GetIndex(ctx, testSubjectHex)
		require.NoError(t, err)
		assert.Equal(t, int64(2), adapter.calls.Load())
	})
}

// TestServiceGetAttestation verifies that attestations always score fresh,
// bypassing the index cache.
func TestServiceGetAttestation(t *testing.T) {
	clock := &settableClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc, adapter := newTestService(t, &stubContract{}, clock)
	ctx := context.Background()

	_, err := svc.GetIndex(ctx, testSubjectHex)
	require.NoError(t, err)
	require.Equal(t, int64(1), adapter.calls.Load())

	signed, err := svc.GetAttestation(ctx, testSubjectHex, testSubjectHex)
	require.NoError(t, err)
	assert.Equal(t, uint8(64), signed.Payload.Score)
	assert.Equal(t, int64(2), adapter.calls.Load(), "attestations must never sign a cached index")

	t.Run("mismatched caller is refused", func(t *testing.T) {
		_, err := svc.GetAttestation(ctx, "0x00000000000000000000000000000000000000bb", testSubjectHex)
		refusal, ok := domain.AsRefusal(err)
		require.True(t, ok)
		assert.Equal(t, domain.RefusalSubjectMismatch, refusal.Reason)
	})

	t.Run("paused contract is refused", func(t *testing.T) {
		pausedSvc, _ := newTestService(t, &stubContract{paused: true}, clock)
		_, err := pausedSvc.GetAttestation(ctx, testSubjectHex, testSubjectHex)
		refusal, ok := domain.AsRefusal(err)
		require.True(t, ok)
		assert.Equal(t, domain.RefusalPaused, refusal.Reason)
	})
}

// TestServiceGetMintVoucher verifies the voucher path through the facade.
func TestServiceGetMintVoucher(t *testing.T) {
	clock := &settableClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	svc, _ := newTestService(t, &stubContract{}, clock)
	ctx := context.Background()

	signed, err := svc.GetMintVoucher(ctx, testSubjectHex)
	require.NoError(t, err)
	assert.Equal(t, clock.now.Add(attest.VoucherLifetime).Unix(), signed.Voucher.ExpiresAt)
	assert.NotNil(t, signed.Voucher.Nonce)

	t.Run("already minted surfaces as a terminal refusal", func(t *testing.T) {
		mintedSvc, _ := newTestService(t, &stubContract{minted: true}, clock)
		_, err := mintedSvc.GetMintVoucher(ctx, testSubjectHex)
		refusal, ok := domain.AsRefusal(err)
		require.True(t, ok)
		assert.True(t, refusal.Terminal())
	})

	t.Run("invalid subject is rejected", func(t *testing.T) {
		_, err := svc.GetMintVoucher(ctx, "0x12")
		assert.ErrorIs(t, err, domain.ErrInvalidSubject)
	})
}
