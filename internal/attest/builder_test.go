package attest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/scoring"
)

func payloadRegistry(t *testing.T) *scoring.Registry {
	t.Helper()
	reg, err := scoring.NewRegistry([]domain.ProviderDescriptor{
		{
			// Sybil signal: fetched and displayed, never signed.
			ID:            "sybil",
			Normalization: domain.NormalizeMultiply,
			InputKind:     domain.InputAddress,
			Enabled:       true,
		},
		{
			ID:             "builder",
			OnChainID:      onChainID(1),
			Weight:         0.6,
			Normalization:  domain.NormalizeNone,
			InputKind:      domain.InputAddress,
			IncludeInScore: true,
			Enabled:        true,
		},
		{
			ID:             "credibility",
			OnChainID:      onChainID(2),
			Weight:         0.4,
			Normalization:  domain.NormalizeNone,
			InputKind:      domain.InputAddress,
			IncludeInScore: true,
			Enabled:        true,
		},
	})
	require.NoError(t, err)
	return reg
}

func breakdownEntry(id string, normalized float64) domain.IndexBreakdown {
	raw := normalized
	return domain.IndexBreakdown{ProviderID: id, RawScore: &raw, NormalizedScore: normalized}
}

// TestBuildPayload verifies entry ordering, on-chain id mapping, per-entry
// rounding, and the timestamp binding.
func TestBuildPayload(t *testing.T) {
	reg := payloadRegistry(t)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	index := domain.Index{
		Score: 55,
		Tier:  domain.TierEstablished,
		Breakdown: []domain.IndexBreakdown{
			breakdownEntry("builder", 49.5),
			breakdownEntry("credibility", 62.4),
		},
	}

	payload, err := BuildPayload(subjectA, index, reg, now)
	require.NoError(t, err)

	assert.Equal(t, subjectA, payload.Subject)
	assert.Equal(t, uint8(55), payload.Score)
	assert.Equal(t, now.Unix(), payload.Timestamp)

	require.Len(t, payload.Entries, 2)
	assert.Equal(t, onChainID(1), payload.Entries[0].ProviderID)
	assert.Equal(t, uint8(50), payload.Entries[0].Score, "per-entry rounding is independent")
	assert.Equal(t, onChainID(2), payload.Entries[1].ProviderID)
	assert.Equal(t, uint8(62), payload.Entries[1].Score)

	t.Run("parallel arrays derive from the entry sequence", func(t *testing.T) {
		assert.Equal(t, []domain.ProviderID{onChainID(1), onChainID(2)}, payload.ProviderIDs())
		assert.Equal(t, []uint8{50, 62}, payload.Scores())
	})
}

// TestBuildPayloadExcludesUnscoredProviders verifies that a provider outside
// the weighted index never appears in a signed payload, even when the
// breakdown carries it.
func TestBuildPayloadExcludesUnscoredProviders(t *testing.T) {
	reg := payloadRegistry(t)

	index := domain.Index{
		Score: 80,
		Tier:  domain.TierExemplary,
		Breakdown: []domain.IndexBreakdown{
			breakdownEntry("sybil", 100),
			breakdownEntry("builder", 80),
		},
	}

	payload, err := BuildPayload(subjectA, index, reg, time.Now())
	require.NoError(t, err)

	require.Len(t, payload.Entries, 1)
	assert.Equal(t, onChainID(1), payload.Entries[0].ProviderID)
}

// TestBuildPayloadRejectsBadInput verifies the guard rails: unknown
// breakdown providers and out-of-range index scores are build failures.
func TestBuildPayloadRejectsBadInput(t *testing.T) {
	reg := payloadRegistry(t)

	t.Run("unknown provider in breakdown", func(t *testing.T) {
		index := domain.Index{
			Score:     10,
			Breakdown: []domain.IndexBreakdown{breakdownEntry("ghost", 10)},
		}
		_, err := BuildPayload(subjectA, index, reg, time.Now())
		assert.ErrorIs(t, err, domain.ErrUnknownProvider)
	})

	t.Run("score outside range", func(t *testing.T) {
		index := domain.Index{Score: 101}
		_, err := BuildPayload(subjectA, index, reg, time.Now())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside [0,100]")
	})
}
