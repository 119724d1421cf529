package domain

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// ScoreEntry pairs a provider's on-chain id with its rounded normalized
// score. Keeping the pair in one sequence, rather than two independently
// indexed lists, removes the possibility of the id and score arrays ever
// drifting out of sync; the wire-format parallel arrays are derived from
// this sequence at serialization time.
type ScoreEntry struct {
	// ProviderID is the 32-byte identifier the contract registered for
	// this provider.
	ProviderID ProviderID `json:"provider_id"`

	// Score is the provider's normalized score rounded to an integer.
	// Per-entry rounding is independent of the overall index rounding,
	// so the entries need not sum to the index score.
	Score uint8 `json:"score"`
}

// AttestationPayload is the typed structure the backend signs and the
// attestation contract verifies. Field order and types are bound by the
// signing scheme; the payload is only valid for the exact domain it was
// signed under.
type AttestationPayload struct {
	// Subject is the address the score attests to.
	Subject common.Address `json:"subject"`

	// Score is the overall index score.
	Score uint8 `json:"score"`

	// Entries lists the scored providers in registry order. Providers
	// excluded from scoring, such as the sybil-resistance signal, never
	// appear here.
	Entries []ScoreEntry `json:"entries"`

	// Timestamp is the signer's wall-clock time at signing, in whole
	// seconds.
	Timestamp int64 `json:"timestamp"`
}

// ProviderIDs returns the on-chain provider ids in entry order, for the
// contract's parallel-array calldata.
func (p AttestationPayload) ProviderIDs() []ProviderID {
	ids := make([]ProviderID, len(p.Entries))
	for i, e := range p.Entries {
		ids[i] = e.ProviderID
	}
	return ids
}

// Scores returns the per-provider scores in entry order, matching
// ProviderIDs index for index.
func (p AttestationPayload) Scores() []uint8 {
	scores := make([]uint8, len(p.Entries))
	for i, e := range p.Entries {
		scores[i] = e.Score
	}
	return scores
}

// SignedAttestation bundles a payload with its authoritative signature.
// Once issued it is never rolled back; the contract is the final authority
// on acceptance.
type SignedAttestation struct {
	Payload   AttestationPayload `json:"payload"`
	Signature []byte             `json:"signature"`
}

// MintVoucher is a single-use, time-bounded authorization for one mint
// attempt by one subject. Nonce uniqueness is enforced per subject by the
// issuer's ledger.
type MintVoucher struct {
	// Subject is the address authorized to mint.
	Subject common.Address `json:"subject"`

	// ExpiresAt is the unix second after which the voucher is void.
	ExpiresAt int64 `json:"expires_at"`

	// Nonce is unique per subject across all vouchers ever issued by
	// this process.
	Nonce *big.Int `json:"nonce"`
}

// Expired reports whether the voucher is void at the given instant.
func (v MintVoucher) Expired(now time.Time) bool {
	return now.Unix() > v.ExpiresAt
}

// SignedVoucher bundles a voucher with its signature.
type SignedVoucher struct {
	Voucher   MintVoucher `json:"voucher"`
	Signature []byte      `json:"signature"`
}
