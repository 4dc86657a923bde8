package model

import (
	"errors"
	"fmt"
)

// ErrorResponse is the consistent JSON structure for all API error responses.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// Sentinel errors for the wallet session and transfer flows.
var (
	// ErrWalletUnavailable means no wallet provider is configured or reachable.
	// Not retryable until the user configures a wallet.
	ErrWalletUnavailable = errors.New("no wallet provider available, please configure a wallet")

	// ErrUserRejected means the wallet denied an account or signing request.
	// The user may retry.
	ErrUserRejected = errors.New("wallet request was rejected")

	// ErrSubmissionInProgress means a transfer is already submitting or
	// awaiting confirmation. The user must wait for it to finish.
	ErrSubmissionInProgress = errors.New("a transfer is already in progress, please wait")
)

// ValidationError is an error for malformed user input. Validation failures
// never reach the provider - submission is blocked before any network call.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// IsValidationError checks if error is ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ProviderError wraps an unexpected failure from the wallet or RPC layer.
// Callers log it and keep their previous state.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error during %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// IsProviderError checks if error is ProviderError
func IsProviderError(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe)
}
