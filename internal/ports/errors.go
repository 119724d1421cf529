package ports

import (
	"errors"
	"fmt"
)

// Common infrastructure errors that can occur during external service
// interactions.
var (
	// ErrSubjectUnknown indicates the provider has no data for the
	// subject, such as a 404 from the provider API. Identical to a
	// transport fault in aggregation effect, but logged distinctly.
	ErrSubjectUnknown = errors.New("subject unknown to provider")

	// ErrMissingCredential indicates the adapter lacks a required API
	// credential. A deployment defect, logged at error severity, but
	// still absorbed as an absent result.
	ErrMissingCredential = errors.New("provider credential not configured")

	// ErrTimeout indicates that an operation exceeded its bound.
	ErrTimeout = errors.New("operation timed out")

	// ErrInvalidResponse indicates that the service returned a payload
	// the adapter could not interpret.
	ErrInvalidResponse = errors.New("invalid response")

	// ErrServiceUnavailable indicates that the external service is
	// unavailable.
	ErrServiceUnavailable = errors.New("service unavailable")
)

// AdapterError represents a failure from a provider adapter. It carries the
// provider id and operation for logging; the orchestrator absorbs it into
// an absent result and never propagates it past the adapter boundary.
type AdapterError struct {
	// Provider is the registry id of the provider that failed.
	Provider string

	// Operation is the name of the operation that failed.
	Operation string

	// Err is the underlying error that occurred.
	Err error
}

// Error implements the error interface for AdapterError.
func (e *AdapterError) Error() string {
	return fmt.Sprintf("adapter error: provider=%s, operation=%s, err=%v", e.Provider, e.Operation, e.Err)
}

// Unwrap returns the underlying error.
func (e *AdapterError) Unwrap() error { return e.Err }

// NotFound reports whether the failure means the subject is unknown to the
// provider rather than a transport fault.
func (e *AdapterError) NotFound() bool { return errors.Is(e.Err, ErrSubjectUnknown) }

// NewAdapterError creates a new AdapterError with the given details.
func NewAdapterError(provider, operation string, err error) *AdapterError {
	return &AdapterError{Provider: provider, Operation: operation, Err: err}
}

// ContractError represents a failure reading the on-chain contract surface.
type ContractError struct {
	// Method is the contract method that failed.
	Method string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface for ContractError.
func (e *ContractError) Error() string {
	return fmt.Sprintf("contract error: method=%s, err=%v", e.Method, e.Err)
}

// Unwrap returns the underlying error.
func (e *ContractError) Unwrap() error { return e.Err }

// NewContractError creates a new ContractError with the given details.
func NewContractError(method string, err error) *ContractError {
	return &ContractError{Method: method, Err: err}
}
