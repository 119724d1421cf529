package signing

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/signer/core/apitypes"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

var _ ports.AttestationSigner = (*LocalSigner)(nil)

// LocalSigner signs typed payloads with an in-process ECDSA key. The key is
// the contract-side authorized signer; losing custody of it is equivalent
// to losing the attestation authority.
type LocalSigner struct {
	key     *ecdsa.PrivateKey
	address common.Address

	attestDomain  Domain
	voucherDomain Domain
}

// NewLocalSigner creates a signer from a hex-encoded private key and the
// two verifying-contract domains. An empty key is a configuration fault
// surfaced as ErrSignerUnavailable; issuance endpoints translate it into a
// service error, never a caller error.
func NewLocalSigner(hexKey string, attestDomain, voucherDomain Domain) (*LocalSigner, error) {
	if hexKey == "" {
		return nil, domain.ErrSignerUnavailable
	}
	key, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSignerUnavailable, err)
	}
	return &LocalSigner{
		key:           key,
		address:       crypto.PubkeyToAddress(key.PublicKey),
		attestDomain:  attestDomain,
		voucherDomain: voucherDomain,
	}, nil
}

// SignAttestation signs a score payload under the scoring domain and
// returns the 65-byte signature with the recovery id in its on-chain form.
func (s *LocalSigner) SignAttestation(ctx context.Context, p domain.AttestationPayload) ([]byte, error) {
	return s.sign(AttestationTypedData(s.attestDomain, p))
}

// SignVoucher signs a mint voucher under the voucher domain.
func (s *LocalSigner) SignVoucher(ctx context.Context, v domain.MintVoucher) ([]byte, error) {
	return s.sign(VoucherTypedData(s.voucherDomain, v))
}

// SignerAddress returns the address the contracts must recognize as the
// authorized signer.
func (s *LocalSigner) SignerAddress() common.Address { return s.address }

func (s *LocalSigner) sign(td apitypes.TypedData) ([]byte, error) {
	digest, err := HashTypedData(td)
	if err != nil {
		return nil, err
	}
	sig, err := crypto.Sign(digest, s.key)
	if err != nil {
		return nil, fmt.Errorf("signing digest: %w", err)
	}
	// Solidity's ecrecover expects v in {27, 28}.
	sig[64] += 27
	return sig, nil
}
