// Package apperr provides the typed error taxonomy shared across the
// analytical core and its HTTP/CLI consumers.
package apperr

import (
	"errors"
	"fmt"
)

// Sentinel base errors, comparable with errors.Is.
var (
	ErrNotFound                  = errors.New("resource not found")
	ErrInsufficientHistory       = errors.New("insufficient cost history")
	ErrInsufficientRepairHistory = errors.New("insufficient repair history")
	ErrNoValidIntervals          = errors.New("no valid time-between-failure intervals")
	ErrNoData                    = errors.New("no data supplied")
	ErrUnsupportedRecoveryPeriod = errors.New("unsupported MACRS recovery period")
	ErrInvalidArgument           = errors.New("invalid argument")
	ErrStoreError                = errors.New("store operation failed")
)

// ErrorCode is a stable, machine-readable error classification.
type ErrorCode string

const (
	CodeNotFound                  ErrorCode = "NOT_FOUND"
	CodeInsufficientHistory       ErrorCode = "INSUFFICIENT_HISTORY"
	CodeInsufficientRepairHistory ErrorCode = "INSUFFICIENT_REPAIR_HISTORY"
	CodeNoValidIntervals          ErrorCode = "NO_VALID_INTERVALS"
	CodeNoData                    ErrorCode = "NO_DATA"
	CodeUnsupportedRecoveryPeriod ErrorCode = "UNSUPPORTED_RECOVERY_PERIOD"
	CodeInvalidArgument           ErrorCode = "INVALID_ARGUMENT"
	CodeStoreError                ErrorCode = "STORE_ERROR"
)

// AppError is an application error carrying a stable code plus context.
type AppError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError wrapping an optional underlying error.
func New(code ErrorCode, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// WithDetails attaches contextual key/value pairs, returning the receiver.
func (e *AppError) WithDetails(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// NotFound builds a CodeNotFound error for the given asset/equipment tag.
func NotFound(what, ref string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found: %s", what, ref), ErrNotFound).
		WithDetails("ref", ref)
}

// InsufficientHistory builds a CodeInsufficientHistory error.
func InsufficientHistory(ref string, months int) *AppError {
	return New(CodeInsufficientHistory,
		fmt.Sprintf("fewer than 6 months of cost history for %s", ref), ErrInsufficientHistory).
		WithDetails("ref", ref).WithDetails("months", months)
}

// InsufficientRepairHistory builds a CodeInsufficientRepairHistory error.
func InsufficientRepairHistory(ref string, count int) *AppError {
	return New(CodeInsufficientRepairHistory,
		fmt.Sprintf("fewer than 2 corrective repairs for %s", ref), ErrInsufficientRepairHistory).
		WithDetails("ref", ref).WithDetails("repair_count", count)
}

// NoValidIntervals builds a CodeNoValidIntervals error.
func NoValidIntervals(ref string) *AppError {
	return New(CodeNoValidIntervals,
		fmt.Sprintf("no positive time-between-failure intervals for %s", ref), ErrNoValidIntervals).
		WithDetails("ref", ref)
}

// NoData builds a CodeNoData error.
func NoData(what string) *AppError {
	return New(CodeNoData, fmt.Sprintf("%s: no data supplied", what), ErrNoData)
}

// UnsupportedRecoveryPeriod builds a CodeUnsupportedRecoveryPeriod error.
func UnsupportedRecoveryPeriod(years int) *AppError {
	return New(CodeUnsupportedRecoveryPeriod,
		fmt.Sprintf("unsupported MACRS recovery period: %d years (must be 5 or 7)", years),
		ErrUnsupportedRecoveryPeriod).WithDetails("years", years)
}

// InvalidArgument builds a CodeInvalidArgument error.
func InvalidArgument(message string) *AppError {
	return New(CodeInvalidArgument, message, ErrInvalidArgument)
}

// StoreError wraps a lower-level store failure with operation context.
func StoreError(err error, operation string) *AppError {
	if err == nil {
		return nil
	}
	return New(CodeStoreError, fmt.Sprintf("store operation failed: %s", operation), err)
}

// IsNotFound reports whether err is, or wraps, a CodeNotFound AppError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeNotFound
	}
	return errors.Is(err, ErrNotFound)
}

// Code extracts the ErrorCode from err, if it is an AppError.
func Code(err error) (ErrorCode, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code, true
	}
	return "", false
}
