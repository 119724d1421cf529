package scoring

import (
	"math"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
)

// Normalize maps a raw provider score onto the 0-100 scale using the
// descriptor's rule. Results are clamped to [0,100] and retain fractional
// precision; rounding happens only at the payload boundary.
func Normalize(d domain.ProviderDescriptor, raw float64) float64 {
	var normalized float64
	switch d.Normalization {
	case domain.NormalizeMultiply:
		normalized = raw * 100
	case domain.NormalizeDivide:
		normalized = raw / d.Cap * 100
	case domain.NormalizeNone:
		normalized = raw
	}
	if normalized < 0 {
		return 0
	}
	return math.Min(normalized, 100)
}

// Aggregate combines a fetch result set into a single weighted, tiered
// index. It is a pure function of the registry and the result set:
// deterministic, order-insensitive over the map, and free of side effects.
//
// Only providers with IncludeInScore participate. Absent providers are
// excluded from both the weighted sum and the total weight, so a provider
// that failed to report does not drag the score toward zero; it still
// appears in the breakdown with a nil raw score. When every scored provider
// is absent the score is zero.
func Aggregate(reg *Registry, results domain.ResultSet) domain.Index {
	scored := reg.Scored()
	breakdown := make([]domain.IndexBreakdown, 0, len(scored))

	var totalWeight, weightedSum float64
	for _, d := range scored {
		entry := domain.IndexBreakdown{
			ProviderID: d.ID,
			Weight:     d.Weight,
		}

		if res, ok := results[d.ID]; ok && res != nil {
			raw := res.Score
			entry.RawScore = &raw
			entry.NormalizedScore = Normalize(d, raw)
			entry.Contribution = entry.NormalizedScore * d.Weight
			totalWeight += d.Weight
			weightedSum += entry.Contribution
		}

		breakdown = append(breakdown, entry)
	}

	score := 0
	if totalWeight > 0 {
		score = int(math.Round(weightedSum / totalWeight))
	}
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return domain.Index{
		Score:     score,
		Tier:      domain.TierForScore(score),
		Breakdown: breakdown,
	}
}
