// Package errors provides standardized error handling for the purchase core.
package errors

import (
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

// Purchase pipeline error codes. Input errors and eligibility denials are
// never retryable; infrastructure errors usually are.
const (
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"

	ErrCodeAccountSuspended    ErrorCode = "ACCOUNT_SUSPENDED"
	ErrCodeAccountNotFound     ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeInsufficientBalance ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeDailyLimitExceeded  ErrorCode = "DAILY_LIMIT_EXCEEDED"
	ErrCodeRateLimited         ErrorCode = "RATE_LIMITED"
	ErrCodePurchaseInProgress  ErrorCode = "PURCHASE_IN_PROGRESS"
	ErrCodePriceMismatch       ErrorCode = "PRICE_MISMATCH"

	ErrCodeDatabaseUnavailable ErrorCode = "DATABASE_UNAVAILABLE"
	ErrCodeStoreUnavailable    ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeProviderUnavailable ErrorCode = "PROVIDER_UNAVAILABLE"
	ErrCodeWalletUnavailable   ErrorCode = "WALLET_UNAVAILABLE"

	ErrCodeCommitFailed   ErrorCode = "COMMIT_FAILED"
	ErrCodeOrphanDetected ErrorCode = "ORPHAN_DETECTED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// IsRetryable reports whether err is a StandardError marked retryable.
func IsRetryable(err error) bool {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Retryable
	}
	return false
}

// CodeOf extracts the error code, or UNKNOWN for errors from outside the
// taxonomy.
func CodeOf(err error) ErrorCode {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr.Code
	}
	return ErrorCode("UNKNOWN")
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Purchase input failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAccountSuspendedError creates a non-retryable eligibility denial.
func NewAccountSuspendedError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAccountSuspended,
		Message:   "Account is suspended",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewAccountNotFoundError creates a non-retryable eligibility denial for
// a user missing from the persistent store.
func NewAccountNotFoundError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeAccountNotFound,
		Message:   "Account not found",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInsufficientBalanceError creates a non-retryable eligibility denial.
func NewInsufficientBalanceError(balance, required float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeInsufficientBalance,
		Message:   "Insufficient balance",
		Details:   fmt.Sprintf("balance: %.2f, required: %.2f", balance, required),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDailyLimitExceededError creates a non-retryable eligibility denial
// carrying the remaining daily budget.
func NewDailyLimitExceededError(remaining float64) *StandardError {
	return &StandardError{
		Code:      ErrCodeDailyLimitExceeded,
		Message:   fmt.Sprintf("Daily spending limit reached, %.2f remaining today", remaining),
		Retryable: false,
		Metadata:  map[string]interface{}{"remaining": remaining},
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError creates a non-retryable, provider-neutral velocity denial.
func NewRateLimitedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many purchase attempts, please wait before trying again",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPurchaseInProgressError creates the expected lock-contention outcome.
func NewPurchaseInProgressError(userID string) *StandardError {
	return &StandardError{
		Code:      ErrCodePurchaseInProgress,
		Message:   "Another purchase in progress, please try again",
		Details:   fmt.Sprintf("userId: %s", userID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewPriceMismatchError creates a non-retryable price verification failure.
func NewPriceMismatchError(claimed, fresh float64) *StandardError {
	return &StandardError{
		Code:      ErrCodePriceMismatch,
		Message:   "Price verification failed, the offer may have changed",
		Details:   fmt.Sprintf("claimed: %.4f, current: %.4f", claimed, fresh),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseUnavailableError creates a retryable persistent store error.
func NewDatabaseUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseUnavailable,
		Message:   "Database error during purchase processing",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable counter/lock store error.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Counter store error during purchase processing",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderUnavailableError creates a retryable upstream provider error.
func NewProviderUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderUnavailable,
		Message:   "Number provider error",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWalletUnavailableError creates a retryable wallet collaborator error.
func NewWalletUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWalletUnavailable,
		Message:   "Wallet error during purchase processing",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCommitFailedError marks a local commit failure after the provider call
// succeeded. Never retryable: retrying risks double-provisioning, the orphan
// recovery procedure owns this state instead.
func NewCommitFailedError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCommitFailed,
		Message:   "Local commit failed after provider purchase",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
