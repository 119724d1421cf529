package domain

// Tier is a named band over the index's 0-100 range. Bands are ascending,
// contiguous, and cover the whole range with no gaps or overlaps; the tier
// is determined solely by the final score.
type Tier string

const (
	TierMinimal     Tier = "minimal"
	TierEmerging    Tier = "emerging"
	TierEstablished Tier = "established"
	TierTrusted     Tier = "trusted"
	TierExemplary   Tier = "exemplary"
)

// tierBand pairs a tier with the lowest score that reaches it.
type tierBand struct {
	floor int
	tier  Tier
}

// tierBands is ordered descending so lookup takes the first floor the score
// clears.
var tierBands = []tierBand{
	{80, TierExemplary},
	{60, TierTrusted},
	{40, TierEstablished},
	{20, TierEmerging},
	{0, TierMinimal},
}

// TierForScore returns the band containing the given score. Scores outside
// [0,100] are clamped before lookup.
func TierForScore(score int) Tier {
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	for _, b := range tierBands {
		if score >= b.floor {
			return b.tier
		}
	}
	return TierMinimal
}

// LowestTier returns the band covering score zero.
func LowestTier() Tier { return TierMinimal }

// HighestTier returns the band covering score one hundred.
func HighestTier() Tier { return TierExemplary }

// IndexBreakdown is the per-provider view of one aggregation. Every scored
// provider appears exactly once, in registry order, whether or not it
// reported.
type IndexBreakdown struct {
	// ProviderID is the registry key of the provider.
	ProviderID string `json:"provider_id"`

	// RawScore is the provider's raw score, or nil when the provider was
	// absent from this aggregation.
	RawScore *float64 `json:"raw_score"`

	// NormalizedScore is the 0-100 normalized value. Fractional precision
	// is retained here; rounding happens only at the payload boundary.
	NormalizedScore float64 `json:"normalized_score"`

	// Weight is the provider's configured weight.
	Weight float64 `json:"weight"`

	// Contribution is NormalizedScore*Weight when the raw score is
	// present, else zero.
	Contribution float64 `json:"contribution"`
}

// Index is the final weighted, tiered reputation score for a subject.
// It is computed fresh on every aggregation call and never mutated.
type Index struct {
	// Score is the rounded weighted index in [0,100].
	Score int `json:"score"`

	// Tier is the named band containing Score.
	Tier Tier `json:"tier"`

	// Breakdown lists every scored provider in registry order.
	Breakdown []IndexBreakdown `json:"breakdown"`
}
