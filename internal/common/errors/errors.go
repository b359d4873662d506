// Package errors provides standardized error handling for the dashboard API.
package errors

import (
	"errors"
	"fmt"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	// Validation / input errors
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
	ErrCodeInvalidZipcode   ErrorCode = "INVALID_ZIPCODE"
	ErrCodeInvalidPayload   ErrorCode = "INVALID_PAYLOAD"

	// Resource errors
	ErrCodeDealNotFound       ErrorCode = "DEAL_NOT_FOUND"
	ErrCodeFundNotFound       ErrorCode = "FUND_NOT_FOUND"
	ErrCodeGPNotFound         ErrorCode = "GP_NOT_FOUND"
	ErrCodeMarketDataNotFound ErrorCode = "MARKET_DATA_NOT_FOUND"

	// External provider errors
	ErrCodeCensusAPIFailed   ErrorCode = "CENSUS_API_FAILED"
	ErrCodeRentCastAPIFailed ErrorCode = "RENTCAST_API_FAILED"
	ErrCodeFREDAPIFailed     ErrorCode = "FRED_API_FAILED"
	ErrCodeProviderTimeout   ErrorCode = "PROVIDER_TIMEOUT"

	// Infrastructure errors
	ErrCodeDatabaseFailed    ErrorCode = "DATABASE_FAILED"
	ErrCodeCacheFailed       ErrorCode = "CACHE_FAILED"
	ErrCodeSearchIndexFailed ErrorCode = "SEARCH_INDEX_FAILED"

	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
	ErrCodeInternal    ErrorCode = "INTERNAL_ERROR"
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

// AsStandardError unwraps err into a *StandardError if possible.
func AsStandardError(err error) (*StandardError, bool) {
	var se *StandardError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// ==========================
// 2. Error Constructors
// ==========================

// NewInvalidParameterError reports a violated input invariant. Always
// raised before any computation proceeds; recoverable by correcting input.
func NewInvalidParameterError(field, details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidParameter,
		Message:   fmt.Sprintf("invalid parameter: %s", field),
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"field": field},
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidZipcodeError creates a non-retryable ZIP format error.
func NewInvalidZipcodeError(zipcode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidZipcode,
		Message:   "ZIP code must be exactly 5 digits",
		Details:   fmt.Sprintf("zipcode: %q", zipcode),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewInvalidPayloadError creates a non-retryable request body validation error.
func NewInvalidPayloadError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidPayload,
		Message:   "Request payload failed validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewDealNotFoundError creates a non-retryable missing deal error.
func NewDealNotFoundError(dealID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeDealNotFound,
		Message:   "Deal not found",
		Details:   fmt.Sprintf("dealId: %d", dealID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewFundNotFoundError creates a non-retryable missing fund error.
func NewFundNotFoundError(fundID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeFundNotFound,
		Message:   "Fund not found",
		Details:   fmt.Sprintf("fundId: %d", fundID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewGPNotFoundError creates a non-retryable missing general partner error.
func NewGPNotFoundError(gpID int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeGPNotFound,
		Message:   "General partner not found",
		Details:   fmt.Sprintf("gpId: %d", gpID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMarketDataNotFoundError reports that no provider had data for a ZIP.
func NewMarketDataNotFoundError(zipcode string) *StandardError {
	return &StandardError{
		Code:      ErrCodeMarketDataNotFound,
		Message:   "No market data available for ZIP code",
		Details:   fmt.Sprintf("zipcode: %s", zipcode),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewCensusAPIError creates a retryable Census provider error.
func NewCensusAPIError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCensusAPIFailed,
		Message:   "Census API request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRentCastAPIError creates a retryable RentCast provider error.
func NewRentCastAPIError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeRentCastAPIFailed,
		Message:   "RentCast API request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewFREDAPIError creates a retryable FRED provider error.
func NewFREDAPIError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeFREDAPIFailed,
		Message:   "FRED API request failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewProviderTimeoutError creates a retryable provider timeout error.
func NewProviderTimeoutError(provider string) *StandardError {
	return &StandardError{
		Code:      ErrCodeProviderTimeout,
		Message:   fmt.Sprintf("Provider '%s' timeout", provider),
		Details:   "request exceeded the configured timeout",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewDatabaseError creates a retryable database error.
func NewDatabaseError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeDatabaseFailed,
		Message:   "Database operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewCacheError creates a retryable cache error.
func NewCacheError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeCacheFailed,
		Message:   "Cache operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewSearchIndexError creates a retryable Elasticsearch error.
func NewSearchIndexError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeSearchIndexFailed,
		Message:   "Search index operation failed",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewRateLimitedError reports a client exceeding the request budget.
func NewRateLimitedError() *StandardError {
	return &StandardError{
		Code:      ErrCodeRateLimited,
		Message:   "Too many requests",
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewInternalError wraps an unexpected failure.
func NewInternalError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Internal server error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}
