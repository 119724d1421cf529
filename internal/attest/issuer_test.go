package attest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/scoring"
)

// fakeContract is a canned-state contract reader for issuer tests.
type fakeContract struct {
	paused   bool
	last     uint64
	minted   bool
	disallow bool
	readErr  error
}

func (f *fakeContract) LastSubmissionTimestamp(context.Context, common.Address) (uint64, error) {
	return f.last, f.readErr
}

func (f *fakeContract) IsPaused(context.Context) (bool, error) {
	return f.paused, f.readErr
}

func (f *fakeContract) IsProviderAllowed(context.Context, domain.ProviderID) (bool, error) {
	return !f.disallow, f.readErr
}

func (f *fakeContract) HasMinted(context.Context, common.Address) (bool, error) {
	return f.minted, f.readErr
}

// fakeSigner records what it signed and returns a fixed signature.
type fakeSigner struct {
	attestations []domain.AttestationPayload
	vouchers     []domain.MintVoucher
	err          error
}

func (f *fakeSigner) SignAttestation(_ context.Context, p domain.AttestationPayload) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.attestations = append(f.attestations, p)
	return []byte{0x01}, nil
}

func (f *fakeSigner) SignVoucher(_ context.Context, v domain.MintVoucher) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.vouchers = append(f.vouchers, v)
	return []byte{0x02}, nil
}

func (f *fakeSigner) SignerAddress() common.Address { return common.Address{} }

func onChainID(b byte) domain.ProviderID {
	var id domain.ProviderID
	id[31] = b
	return id
}

func issuerRegistry(t *testing.T) *scoring.Registry {
	t.Helper()
	reg, err := scoring.NewRegistry([]domain.ProviderDescriptor{
		{
			ID:             "builder",
			OnChainID:      onChainID(1),
			Weight:         1.0,
			Normalization:  domain.NormalizeNone,
			InputKind:      domain.InputAddress,
			IncludeInScore: true,
			Enabled:        true,
		},
	})
	require.NoError(t, err)
	return reg
}

func testIndex(score int) domain.Index {
	raw := float64(score)
	return domain.Index{
		Score: score,
		Tier:  domain.TierForScore(score),
		Breakdown: []domain.IndexBreakdown{
			{ProviderID: "builder", RawScore: &raw, NormalizedScore: raw, Weight: 1.0, Contribution: raw},
		},
	}
}

var (
	subjectA = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	subjectB = common.HexToAddress("0x00000000000000000000000000000000000000bb")
)

// TestIssuerRefusesSubjectMismatch verifies that the issuer never signs a
// score for anyone but the authenticated caller, before touching the chain.
func TestIssuerRefusesSubjectMismatch(t *testing.T) {
	signer := &fakeSigner{}
	issuer := NewIssuer(issuerRegistry(t), &fakeContract{readErr: errors.New("must not be read")}, signer, nil)

	_, err := issuer.Issue(context.Background(), subjectA, subjectB, testIndex(50))

	refusal, ok := domain.AsRefusal(err)
	require.True(t, ok)
	assert.Equal(t, domain.RefusalSubjectMismatch, refusal.Reason)
	assert.False(t, refusal.Retryable())
	assert.Empty(t, signer.attestations, "a refused request must never reach the signer")
}

// TestIssuerRefusesWhenPaused verifies the pause refusal and that it is
// reported as retryable.
func TestIssuerRefusesWhenPaused(t *testing.T) {
	signer := &fakeSigner{}
	issuer := NewIssuer(issuerRegistry(t), &fakeContract{paused: true}, signer, nil)

	_, err := issuer.Issue(context.Background(), subjectA, subjectA, testIndex(50))

	refusal, ok := domain.AsRefusal(err)
	require.True(t, ok)
	assert.Equal(t, domain.RefusalPaused, refusal.Reason)
	assert.True(t, refusal.Retryable())
	assert.Empty(t, signer.attestations)
}

// TestIssuerCooldown verifies the minimum interval between submissions,
// including exact boundary behavior: one second short is refused with the
// remaining wait, the boundary instant itself is allowed.
func TestIssuerCooldown(t *testing.T) {
	lastSubmission := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	testCases := []struct {
		name       string
		last       uint64
		now        time.Time
		wantsAllow bool
		wantsWait  time.Duration
	}{
		{
			name:       "no prior submission",
			last:       0,
			now:        lastSubmission,
			wantsAllow: true,
		},
		{
			name:      "one hour before the boundary",
			last:      uint64(lastSubmission.Unix()),
			now:       lastSubmission.Add(23 * time.Hour),
			wantsWait: time.Hour,
		},
		{
			name:      "one second before the boundary",
			last:      uint64(lastSubmission.Unix()),
			now:       lastSubmission.Add(SubmissionInterval - time.Second),
			wantsWait: time.Second,
		},
		{
			name:       "exactly at the boundary",
			last:       uint64(lastSubmission.Unix()),
			now:        lastSubmission.Add(SubmissionInterval),
			wantsAllow: true,
		},
		{
			name:       "well past the boundary",
			last:       uint64(lastSubmission.Unix()),
			now:        lastSubmission.Add(48 * time.Hour),
			wantsAllow: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			signer := &fakeSigner{}
			issuer := NewIssuer(issuerRegistry(t), &fakeContract{last: tc.last}, signer, nil).
				WithClock(func() time.Time { return tc.now })

			signed, err := issuer.Issue(context.Background(), subjectA, subjectA, testIndex(72))

			if tc.wantsAllow {
				require.NoError(t, err)
				assert.Equal(t, uint8(72), signed.Payload.Score)
				assert.Equal(t, tc.now.Unix(), signed.Payload.Timestamp)
				assert.NotEmpty(t, signed.Signature)
				return
			}

			refusal, ok := domain.AsRefusal(err)
			require.True(t, ok)
			assert.Equal(t, domain.RefusalCooldown, refusal.Reason)
			assert.Equal(t, tc.wantsWait, refusal.RetryAfter)
			assert.True(t, refusal.Retryable())
			assert.Empty(t, signer.attestations)
		})
	}
}

// TestIssuerRejectsUnregisteredProviderID verifies that a payload carrying
// an id the contract does not recognize is caught before signing; the
// contract would silently reject it on submission.
func TestIssuerRejectsUnregisteredProviderID(t *testing.T) {
	signer := &fakeSigner{}
	issuer := NewIssuer(issuerRegistry(t), &fakeContract{disallow: true}, signer, nil)

	_, err := issuer.Issue(context.Background(), subjectA, subjectA, testIndex(50))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	_, ok := domain.AsRefusal(err)
	assert.False(t, ok, "a configuration fault is not a refusal")
	assert.Empty(t, signer.attestations)
}

// TestIssuerContractReadFailure verifies that a failed chain read surfaces
// as a plain service error, never as a refusal.
func TestIssuerContractReadFailure(t *testing.T) {
	issuer := NewIssuer(issuerRegistry(t), &fakeContract{readErr: errors.New("rpc down")}, &fakeSigner{}, nil)

	_, err := issuer.Issue(context.Background(), subjectA, subjectA, testIndex(50))

	require.Error(t, err)
	_, ok := domain.AsRefusal(err)
	assert.False(t, ok, "an infrastructure fault is not a refusal")
}

// TestIssuerSignerFailure verifies that a signing fault propagates after the
// pre-checks passed.
func TestIssuerSignerFailure(t *testing.T) {
	signer := &fakeSigner{err: domain.ErrSignerUnavailable}
	issuer := NewIssuer(issuerRegistry(t), &fakeContract{}, signer, nil)

	_, err := issuer.Issue(context.Background(), subjectA, subjectA, testIndex(50))

	assert.ErrorIs(t, err, domain.ErrSignerUnavailable)
}
