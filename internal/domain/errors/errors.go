package errors

import (
	"errors"
	"fmt"
)

// Error types for the computation engines
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
	ErrorTypeInternal   ErrorType = "internal"
)

// AppError represents a structured engine error
type AppError struct {
	Type    ErrorType              `json:"type"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Cause   error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so callers can compare against the predefined errors
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithDetail adds a single detail entry
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors
func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Code:    code,
		Message: message,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Code:    "RESOURCE_NOT_FOUND",
		Message: fmt.Sprintf("%s not found", resource),
	}
}

func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Code:    "CONFLICT",
		Message: message,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Code:    "INTERNAL_ERROR",
		Message: message,
	}
}

// Validation codes shared by both engines
const (
	CodeEmptyCashFlows        = "EMPTY_CASH_FLOWS"
	CodeInsufficientCashFlows = "INSUFFICIENT_CASH_FLOWS"
	CodeNegativeDiscountRate  = "NEGATIVE_DISCOUNT_RATE"
	CodeNegativePeriod        = "NEGATIVE_PERIOD"
	CodeNegativeInvestment    = "NEGATIVE_INVESTMENT"
	CodeInvalidPeriods        = "INVALID_PERIODS"
	CodeUnknownGrowthMethod   = "UNKNOWN_GROWTH_METHOD"
	CodeInvalidVolatility     = "INVALID_VOLATILITY"
	CodeUnknownParameter      = "UNKNOWN_PARAMETER"
	CodeInvalidProbabilities  = "INVALID_PROBABILITIES"
	CodeInvalidMultiplier     = "INVALID_MULTIPLIER"
	CodeInvalidDistribution   = "INVALID_DISTRIBUTION"
	CodeInvalidSimulationRuns = "INVALID_SIMULATION_RUNS"
	CodeInvalidRiskFactor     = "INVALID_RISK_FACTOR"
	CodeInvalidProfile        = "INVALID_COMPANY_PROFILE"
	CodeUnknownRegulation     = "UNKNOWN_REGULATION"
	CodeInvalidConstraint     = "INVALID_CONSTRAINT"
	CodeInvalidInput          = "INVALID_INPUT"
)

// Predefined common errors
var (
	ErrInvalidInput   = NewValidationError(CodeInvalidInput, "Invalid input provided")
	ErrEmptyCashFlows = NewValidationError(CodeEmptyCashFlows, "cash flows cannot be empty")
)

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsValidation reports whether err is a validation failure
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// CodeOf extracts the error code, or "" for foreign errors
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
