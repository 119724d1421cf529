package domain

import (
	"errors"
	"fmt"
	"time"
)

// Common domain errors returned by the scoring and issuance pipeline.
var (
	// ErrInvalidSubject indicates a malformed subject address, rejected
	// before any fetch or signing attempt. Distinct from "not found".
	ErrInvalidSubject = errors.New("invalid subject address")

	// ErrUnknownProvider indicates a provider id that is not registered.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrInvalidConfiguration indicates a registry or descriptor
	// configuration that fails startup validation.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrSignerUnavailable indicates missing or unusable signing
	// credentials. This is a service fault, never a caller fault.
	ErrSignerUnavailable = errors.New("signer unavailable")
)

// RefusalReason is the machine-readable cause of an issuance refusal.
// Callers branch on the reason without parsing error text.
type RefusalReason string

const (
	// RefusalCooldown means the subject's last on-chain submission is too
	// recent. The refusal carries the remaining wait.
	RefusalCooldown RefusalReason = "cooldown"

	// RefusalPaused means the target contract reports itself paused.
	RefusalPaused RefusalReason = "contract_paused"

	// RefusalSubjectMismatch means the requested subject is not the
	// authenticated caller.
	RefusalSubjectMismatch RefusalReason = "subject_mismatch"

	// RefusalAlreadyMinted means the subject already holds the token the
	// voucher would authorize. This is an idempotent success for callers,
	// not a failure.
	RefusalAlreadyMinted RefusalReason = "already_minted"
)

// RefusalError is a typed issuance refusal. Refusals are results, not
// control flow: the issuer performed its pre-checks and declined to sign.
type RefusalError struct {
	// Reason is the machine-readable refusal cause.
	Reason RefusalReason

	// RetryAfter is the remaining wait before the request can succeed.
	// Only set for cooldown refusals.
	RetryAfter time.Duration
}

// Error implements the error interface for RefusalError.
func (e *RefusalError) Error() string {
	if e.Reason == RefusalCooldown {
		return fmt.Sprintf("issuance refused: reason=%s, retry_after=%s", e.Reason, e.RetryAfter)
	}
	return fmt.Sprintf("issuance refused: reason=%s", e.Reason)
}

// Retryable reports whether waiting can resolve the refusal.
func (e *RefusalError) Retryable() bool {
	return e.Reason == RefusalCooldown || e.Reason == RefusalPaused
}

// Terminal reports whether the refusal represents an already-satisfied
// request, which callers should surface as success.
func (e *RefusalError) Terminal() bool { return e.Reason == RefusalAlreadyMinted }

// NewRefusal creates a RefusalError with the given reason.
func NewRefusal(reason RefusalReason) *RefusalError {
	return &RefusalError{Reason: reason}
}

// NewCooldownRefusal creates a cooldown refusal carrying the remaining wait.
func NewCooldownRefusal(retryAfter time.Duration) *RefusalError {
	return &RefusalError{Reason: RefusalCooldown, RetryAfter: retryAfter}
}

// AsRefusal unwraps err into a RefusalError if it is one.
func AsRefusal(err error) (*RefusalError, bool) {
	var r *RefusalError
	if errors.As(err, &r) {
		return r, true
	}
	return nil, false
}

// ValidationError aggregates descriptor validation failures discovered
// during registry construction.
type ValidationError struct {
	// Entity is the name of the entity that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error for %s: %s", e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors for %s: %v", e.Entity, e.Errors)
}

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(entity string) *ValidationError {
	return &ValidationError{Entity: entity, Errors: make([]string, 0)}
}
