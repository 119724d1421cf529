package attest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
	"github.com/Callmedas69/ssa-sub000/internal/ports"
)

// VoucherLifetime bounds how long an issued mint voucher stays valid.
const VoucherLifetime = time.Hour

// VoucherIssuer produces single-use, time-bounded mint authorizations.
// Nonces are unique per subject even under burst issuance within the same
// millisecond; uniqueness is the ledger's job, not the caller's.
type VoucherIssuer struct {
	contract ports.ScoreContract
	signer   ports.AttestationSigner
	ledger   *NonceLedger
	logger   *slog.Logger
	now      func() time.Time
}

// NewVoucherIssuer builds a voucher issuer over the given contract reader
// and signer.
func NewVoucherIssuer(
	contract ports.ScoreContract,
	signer ports.AttestationSigner,
	ledger *NonceLedger,
	logger *slog.Logger,
) *VoucherIssuer {
	if logger == nil {
		logger = slog.Default()
	}
	return &VoucherIssuer{
		contract: contract,
		signer:   signer,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the issuer's clock. Intended for tests.
func (vi *VoucherIssuer) WithClock(now func() time.Time) *VoucherIssuer {
	vi.now = now
	return vi
}

// Issue produces a signed voucher authorizing one mint attempt for the
// subject. A subject that already minted receives an already-minted
// refusal, which callers surface as idempotent success rather than a
// failure. The nonce is reserved in the ledger before the voucher leaves
// this method, and the signature is never rolled back afterwards; an
// abandoned voucher simply expires.
func (vi *VoucherIssuer) Issue(ctx context.Context, subject common.Address) (domain.SignedVoucher, error) {
	minted, err := vi.contract.HasMinted(ctx, subject)
	if err != nil {
		return domain.SignedVoucher{}, fmt.Errorf("reading mint state: %w", err)
	}
	if minted {
		return domain.SignedVoucher{}, domain.NewRefusal(domain.RefusalAlreadyMinted)
	}

	now := vi.now()
	voucher := domain.MintVoucher{
		Subject:   subject,
		ExpiresAt: now.Add(VoucherLifetime).Unix(),
		Nonce:     vi.ledger.Reserve(subject, now),
	}

	sig, err := vi.signer.SignVoucher(ctx, voucher)
	if err != nil {
		return domain.SignedVoucher{}, fmt.Errorf("signing voucher: %w", err)
	}

	vi.logger.Info("mint voucher issued",
		"subject", subject.Hex(), "expires_at", voucher.ExpiresAt, "nonce", voucher.Nonce)

	return domain.SignedVoucher{Voucher: voucher, Signature: sig}, nil
}
