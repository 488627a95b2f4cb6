package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Error codes for categorization
const (
	// Browser interaction errors
	ErrCodeNavigation          = "NAVIGATION_ERROR"
	ErrCodeElementNotFound     = "ELEMENT_NOT_FOUND"
	ErrCodeNotInteractable     = "ELEMENT_NOT_INTERACTABLE"
	ErrCodeSteadyStateTimeout  = "STEADY_STATE_TIMEOUT"
	ErrCodeAssertion           = "ASSERTION_FAILED"
	ErrCodeAuthTimeout         = "AUTHENTICATION_TIMEOUT"
	ErrCodeUnsupportedEngine   = "UNSUPPORTED_ENGINE"
	ErrCodeUnsupportedStrategy = "UNSUPPORTED_STRATEGY"

	// Generic errors
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeInternal   = "INTERNAL_ERROR"
)

// Metadata keys attached to browser errors
const (
	MetaLocator   = "locator"
	MetaExpected  = "expected"
	MetaActual    = "actual"
	MetaURL       = "url"
	MetaTimeout   = "timeout"
	MetaEngine    = "engine"
	MetaStrategy  = "strategy"
	MetaCondition = "condition"
)

// AppError is the base error type for all suite errors
type AppError struct {
	// Error code for programmatic handling
	Code string `json:"code"`

	// Human-readable message
	Message string `json:"message"`

	// Original error (for error wrapping)
	Cause error `json:"-"`

	// Metadata for additional context (locator, expected/actual, ...)
	Metadata map[string]interface{} `json:"metadata,omitempty"`

	// Timestamp when error occurred
	Timestamp time.Time `json:"timestamp"`

	// NonFatal errors may be logged and ignored by the caller
	NonFatal bool `json:"non_fatal,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is for error comparison
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithCause adds the underlying cause
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

// WithMetadata adds metadata to the error
func (e *AppError) WithMetadata(key string, value interface{}) *AppError {
	if e.Metadata == nil {
		e.Metadata = make(map[string]interface{})
	}
	e.Metadata[key] = value
	return e
}

// MarkNonFatal flags the error as safe to log and continue past
func (e *AppError) MarkNonFatal() *AppError {
	e.NonFatal = true
	return e
}

// ToJSON serializes the error to JSON
func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(e)
	return data
}

// NewError creates a new AppError
func NewError(code, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
}

// Browser errors

func ErrNavigation(url string, err error) *AppError {
	return NewError(ErrCodeNavigation, fmt.Sprintf("navigation to %s failed", url)).
		WithCause(err).
		WithMetadata(MetaURL, url)
}

func ErrElementNotFound(locator string, timeout time.Duration, err error) *AppError {
	return NewError(ErrCodeElementNotFound, fmt.Sprintf("element %s not found within %s", locator, timeout)).
		WithCause(err).
		WithMetadata(MetaLocator, locator).
		WithMetadata(MetaTimeout, timeout.String())
}

func ErrNotInteractable(locator, action string, err error) *AppError {
	return NewError(ErrCodeNotInteractable, fmt.Sprintf("element %s is not interactable (%s)", locator, action)).
		WithCause(err).
		WithMetadata(MetaLocator, locator)
}

func ErrSteadyStateTimeout(timeout time.Duration, err error) *AppError {
	return NewError(ErrCodeSteadyStateTimeout, fmt.Sprintf("page did not settle within %s", timeout)).
		WithCause(err).
		WithMetadata(MetaTimeout, timeout.String()).
		MarkNonFatal()
}

func ErrAssertion(condition, target string, expected, actual interface{}) *AppError {
	return NewError(ErrCodeAssertion, fmt.Sprintf("expected %s %s: want %v, got %v", target, condition, expected, actual)).
		WithMetadata(MetaCondition, condition).
		WithMetadata(MetaLocator, target).
		WithMetadata(MetaExpected, expected).
		WithMetadata(MetaActual, actual)
}

func ErrAuthTimeout(strategy string, err error) *AppError {
	return NewError(ErrCodeAuthTimeout, fmt.Sprintf("%s login never reached its success marker", strategy)).
		WithCause(err).
		WithMetadata(MetaStrategy, strategy)
}

func ErrUnsupportedEngine(engine string) *AppError {
	return NewError(ErrCodeUnsupportedEngine, fmt.Sprintf("unsupported browser engine: %q", engine)).
		WithMetadata(MetaEngine, engine)
}

func ErrUnsupportedStrategy(kind string) *AppError {
	return NewError(ErrCodeUnsupportedStrategy, fmt.Sprintf("unsupported authentication strategy: %q", kind)).
		WithMetadata(MetaStrategy, kind)
}

func ErrValidation(message string) *AppError {
	return NewError(ErrCodeValidation, message)
}

func ErrValidationField(field, message string) *AppError {
	return NewError(ErrCodeValidation, message).
		WithMetadata("field", field)
}

func ErrInternal(message string, err error) *AppError {
	if message == "" {
		message = "internal error"
	}
	return NewError(ErrCodeInternal, message).WithCause(err)
}

// Helper functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetErrorCode returns the error code for an error
func GetErrorCode(err error) string {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// IsNonFatal reports whether err is an AppError flagged non-fatal
func IsNonFatal(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.NonFatal
	}
	return false
}

// Sentinel errors for comparison (used with errors.Is)
var (
	ErrNavigationSentinel        = NewError(ErrCodeNavigation, "navigation failed")
	ErrElementNotFoundSentinel   = NewError(ErrCodeElementNotFound, "element not found")
	ErrNotInteractableSentinel   = NewError(ErrCodeNotInteractable, "element not interactable")
	ErrSteadyStateSentinel       = NewError(ErrCodeSteadyStateTimeout, "steady state timeout")
	ErrAssertionSentinel         = NewError(ErrCodeAssertion, "assertion failed")
	ErrAuthTimeoutSentinel       = NewError(ErrCodeAuthTimeout, "authentication timeout")
	ErrUnsupportedEngineSentinel = NewError(ErrCodeUnsupportedEngine, "unsupported engine")
	ErrValidationSentinel        = NewError(ErrCodeValidation, "validation failed")
)
