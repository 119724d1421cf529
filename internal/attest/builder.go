// Package attest builds, pre-checks, and signs score attestations and mint
// vouchers. The issuer enforces freshness and authorization before signing
// as defense in depth; the on-chain contract independently re-validates
// signature, freshness, and replay state and remains the final authority.
package attest

import (
	"fmt"
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/scoring"
)

// BuildPayload converts an index into the typed structure the signer hashes
// and the contract verifies. Entries are emitted by iterating the breakdown
// in its fixed registry order, keeping only providers that participated in
// scoring; the sybil-resistance signal is never part of a signed payload.
//
// Each entry's score is the provider's normalized score rounded
// independently. The entry scores are not required to sum to the overall
// index score; that residue is accepted breakdown noise, not something to
// reconcile silently.
func BuildPayload(
	subject common.Address,
	index domain.Index,
	reg *scoring.Registry,
	now time.Time,
) (domain.AttestationPayload, error) {
	entries := make([]domain.ScoreEntry, 0, len(index.Breakdown))
	for _, b := range index.Breakdown {
		desc, err := reg.Get(b.ProviderID)
		if err != nil {
			return domain.AttestationPayload{}, fmt.Errorf("building payload: %w", err)
		}
		if !desc.IncludeInScore {
			continue
		}
		entries = append(entries, domain.ScoreEntry{
			ProviderID: desc.OnChainID,
			Score:      uint8(math.Round(b.NormalizedScore)),
		})
	}

	if index.Score < 0 || index.Score > 100 {
		return domain.AttestationPayload{}, fmt.Errorf("index score %d outside [0,100]", index.Score)
	}

	return domain.AttestationPayload{
		Subject:   subject,
		Score:     uint8(index.Score),
		Entries:   entries,
		Timestamp: now.Unix(),
	}, nil
}
