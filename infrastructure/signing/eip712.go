// Package signing implements the typed-data signer backing attestation and
// voucher issuance. Signatures follow EIP-712: every payload is hashed under
// a fixed domain (name, version, chain id, verifying contract), so a
// signature produced here is invalid against any other domain, contract, or
// chain by construction.
package signing

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
)

// Typed-data domain names and primary types. The scoring and voucher
// domains are deliberately distinct so their signatures can never be
// replayed against each other.
const (
	AttestationDomainName = "SocialScoreAttestator"
	VoucherDomainName     = "ProfileSBT"
	DomainVersion         = "1"

	attestationPrimaryType = "SocialScore"
	voucherPrimaryType     = "MintVoucher"
)

// Domain identifies the verifying contract a signature is bound to.
type Domain struct {
	// ChainID is the EVM chain the verifying contract lives on.
	ChainID int64

	// VerifyingContract is the checksummed address of the contract that
	// will verify signatures under this domain.
	VerifyingContract string
}

var typedDataTypes = apitypes.Types{
	"EIP712Domain": {
		{Name: "name", Type: "string"},
		{Name: "version", Type: "string"},
		{Name: "chainId", Type: "uint256"},
		{Name: "verifyingContract", Type: "address"},
	},
	attestationPrimaryType: {
		{Name: "subject", Type: "address"},
		{Name: "score", Type: "uint8"},
		{Name: "providers", Type: "bytes32[]"},
		{Name: "scores", Type: "uint8[]"},
		{Name: "timestamp", Type: "uint256"},
	},
	voucherPrimaryType: {
		{Name: "subject", Type: "address"},
		{Name: "expiresAt", Type: "uint256"},
		{Name: "nonce", Type: "uint256"},
	},
}

// AttestationTypedData builds the EIP-712 structure for a score payload.
// The wire-format parallel arrays are emitted from the payload's single
// ordered entry sequence, so they cannot desynchronize.
func AttestationTypedData(d Domain, p domain.AttestationPayload) apitypes.TypedData {
	providers := make([]any, len(p.Entries))
	scores := make([]any, len(p.Entries))
	for i, e := range p.Entries {
		providers[i] = hexutil.Encode(e.ProviderID[:])
		scores[i] = math.NewHexOrDecimal256(int64(e.Score))
	}

	return apitypes.TypedData{
		Types:       typedDataTypes,
		PrimaryType: attestationPrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              AttestationDomainName,
			Version:           DomainVersion,
			ChainId:           math.NewHexOrDecimal256(d.ChainID),
			VerifyingContract: d.VerifyingContract,
		},
		Message: apitypes.TypedDataMessage{
			"subject":   p.Subject.Hex(),
			"score":     math.NewHexOrDecimal256(int64(p.Score)),
			"providers": providers,
			"scores":    scores,
			"timestamp": math.NewHexOrDecimal256(p.Timestamp),
		},
	}
}

// VoucherTypedData builds the EIP-712 structure for a mint voucher under
// the voucher domain.
func VoucherTypedData(d Domain, v domain.MintVoucher) apitypes.TypedData {
	return apitypes.TypedData{
		Types:       typedDataTypes,
		PrimaryType: voucherPrimaryType,
		Domain: apitypes.TypedDataDomain{
			Name:              VoucherDomainName,
			Version:           DomainVersion,
			ChainId:           math.NewHexOrDecimal256(d.ChainID),
			VerifyingContract: d.VerifyingContract,
		},
		Message: apitypes.TypedDataMessage{
			"subject":   v.Subject.Hex(),
			"expiresAt": math.NewHexOrDecimal256(v.ExpiresAt),
			"nonce":     (*math.HexOrDecimal256)(v.Nonce),
		},
	}
}

// HashTypedData computes the EIP-712 digest for the given typed data.
func HashTypedData(td apitypes.TypedData) ([]byte, error) {
	digest, _, err := apitypes.TypedDataAndHash(td)
	if err != nil {
		return nil, fmt.Errorf("hashing typed data: %w", err)
	}
	return digest, nil
}
