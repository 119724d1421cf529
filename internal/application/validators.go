package application

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/go-playground/validator/v10"

	"github.com/Callmedas69/ssa-sub000/internal/domain"
)

// RegisterValidators registers the custom validation functions used by the
// configuration structs beyond basic struct-tag validation.
func RegisterValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("eth_addr", validateEthAddress); err != nil {
		return fmt.Errorf("failed to register eth_addr validator: %w", err)
	}
	return nil
}

// validateEthAddress accepts a 0x-prefixed, 20-byte hex address.
func validateEthAddress(fl validator.FieldLevel) bool {
	return common.IsHexAddress(fl.Field().String())
}

// ParseSubject validates and parses a caller-supplied subject address.
// Malformed input is a client fault rejected before any fetch or signing
// attempt, distinct from a subject no provider knows.
func ParseSubject(raw string) (common.Address, error) {
	if !common.IsHexAddress(raw) {
		return common.Address{}, fmt.Errorf("%w: %q", domain.ErrInvalidSubject, raw)
	}
	return common.HexToAddress(raw), nil
}

// decodeProviderID parses a 0x-prefixed 32-byte hex identifier.
func decodeProviderID(raw string) (domain.ProviderID, error) {
	var id domain.ProviderID
	trimmed := strings.TrimPrefix(raw, "0x")
	decoded, err := hex.DecodeString(trimmed)
	if err != nil {
		return id, fmt.Errorf("%w: on-chain id %q is not hex", domain.ErrInvalidConfiguration, raw)
	}
	if len(decoded) != 32 {
		return id, fmt.Errorf("%w: on-chain id %q is %d bytes, want 32", domain.ErrInvalidConfiguration, raw, len(decoded))
	}
	copy(id[:], decoded)
	return id, nil
}
