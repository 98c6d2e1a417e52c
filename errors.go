package newsbrief

import (
	"errors"
	"fmt"
	"time"
)

// ErrEmptyInput is returned when a required input slice is empty.
var ErrEmptyInput = errors.New("empty input")

// ErrBackendsExhausted is matched by every *ExhaustedError.
var ErrBackendsExhausted = errors.New("all backends exhausted")

// ErrValidationExhausted is matched by every *ValidationExhaustedError.
var ErrValidationExhausted = errors.New("validation attempts exhausted")

// ErrorCategory classifies errors by how they should be handled.
type ErrorCategory string

const (
	// ErrorTransient indicates the error is temporary and the operation can be retried.
	// Examples: rate limits, temporary network issues, server overload.
	ErrorTransient ErrorCategory = "transient"

	// ErrorPermanent indicates the error is not recoverable through retry.
	// Examples: invalid API key, insufficient permissions, model not found.
	ErrorPermanent ErrorCategory = "permanent"

	// ErrorUserInput indicates the caller provided invalid input that must be corrected.
	// Examples: malformed request, invalid parameters.
	ErrorUserInput ErrorCategory = "user_input"
)

// CategorizedError is an error that provides information about how it should be handled.
type CategorizedError interface {
	error
	Category() ErrorCategory
	Retryable() bool           // convenience: returns true if Category == ErrorTransient
	StatusCode() int           // HTTP status code if applicable, 0 otherwise
	RetryAfter() time.Duration // suggested retry delay from server, 0 if not available
}

// Error is a categorized error with metadata for error handling decisions.
type Error struct {
	Msg        string
	Cat        ErrorCategory
	Code       int           // HTTP status code, 0 if not applicable
	RetryDelay time.Duration // from Retry-After header, 0 if not available
	Cause      error         // underlying error
}

// Error returns the error message.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Cause)
	}
	return e.Msg
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Category returns the error category.
func (e *Error) Category() ErrorCategory {
	return e.Cat
}

// Retryable returns true if the error is transient and can be retried.
func (e *Error) Retryable() bool {
	return e.Cat == ErrorTransient
}

// StatusCode returns the HTTP status code, or 0 if not applicable.
func (e *Error) StatusCode() int {
	return e.Code
}

// RetryAfter returns the suggested retry delay, or 0 if not available.
func (e *Error) RetryAfter() time.Duration {
	return e.RetryDelay
}

// NewTransientError creates a transient error that can be retried.
func NewTransientError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Msg:   msg,
		Cat:   ErrorTransient,
		Code:  statusCode,
		Cause: cause,
	}
}

// NewTransientErrorWithRetry creates a transient error with a suggested retry delay.
func NewTransientErrorWithRetry(msg string, statusCode int, retryAfter time.Duration, cause error) *Error {
	return &Error{
		Msg:        msg,
		Cat:        ErrorTransient,
		Code:       statusCode,
		RetryDelay: retryAfter,
		Cause:      cause,
	}
}

// NewPermanentError creates a permanent error that should not be retried.
func NewPermanentError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Msg:   msg,
		Cat:   ErrorPermanent,
		Code:  statusCode,
		Cause: cause,
	}
}

// NewUserInputError creates an error indicating invalid caller input.
func NewUserInputError(msg string, statusCode int, cause error) *Error {
	return &Error{
		Msg:   msg,
		Cat:   ErrorUserInput,
		Code:  statusCode,
		Cause: cause,
	}
}

// IsTransient returns true if the error is categorized as transient.
func IsTransient(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ErrorTransient
	}
	return false
}

// IsPermanent returns true if the error is categorized as permanent.
func IsPermanent(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ErrorPermanent
	}
	return false
}

// IsUserInput returns true if the error is categorized as a user input error.
func IsUserInput(err error) bool {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == ErrorUserInput
	}
	return false
}

// StatusCodeOf returns the HTTP status code from a categorized error, or 0.
func StatusCodeOf(err error) int {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.StatusCode()
	}
	return 0
}

// RetryAfterOf returns the retry delay from a categorized error, or 0.
func RetryAfterOf(err error) time.Duration {
	var ce CategorizedError
	if errors.As(err, &ce) {
		return ce.RetryAfter()
	}
	return 0
}

// RejectedError reports that a backend executed the request but declined to
// answer, usually because of a content-safety or recitation block.
type RejectedError struct {
	Backend string
	Reason  string // block or finish reason reported by the backend, "" if unknown
}

func (e *RejectedError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "unknown"
	}
	if e.Backend == "" {
		return fmt.Sprintf("response blocked: %s", reason)
	}
	return fmt.Sprintf("%s: response blocked: %s", e.Backend, reason)
}

// TransportError reports a network or protocol level failure talking to a backend.
type TransportError struct {
	Backend string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Backend, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ExhaustedError is returned when no backend in a chain produced an answer
// within its retry budget.
type ExhaustedError struct {
	Backends []string
	Attempts int
	Last     error // last attempt failure
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("all %d backends failed after %d attempts", len(e.Backends), e.Attempts)
	if e.Last != nil {
		msg += fmt.Sprintf(" (last: %v)", e.Last)
	}
	return msg
}

// Is matches ErrBackendsExhausted.
func (e *ExhaustedError) Is(target error) bool {
	return target == ErrBackendsExhausted
}

func (e *ExhaustedError) Unwrap() error {
	return e.Last
}

// ContractError reports a raw answer that is well-formed text but does not
// satisfy the declared output contract.
type ContractError struct {
	Contract string
	Raw      string
	Reason   string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("%s contract violated: %s", e.Contract, e.Reason)
}

// ValidationExhaustedError is returned by strict extractors when every
// attempt produced an answer that violated the contract.
type ValidationExhaustedError struct {
	Task     string
	Attempts int
	Last     *ContractError
}

func (e *ValidationExhaustedError) Error() string {
	if e.Last == nil {
		return fmt.Sprintf("%s: no valid answer after %d attempts", e.Task, e.Attempts)
	}
	return fmt.Sprintf("%s: no valid answer after %d attempts: %v", e.Task, e.Attempts, e.Last)
}

// Is matches ErrValidationExhausted.
func (e *ValidationExhaustedError) Is(target error) bool {
	return target == ErrValidationExhausted
}

func (e *ValidationExhaustedError) Unwrap() error {
	if e.Last == nil {
		return nil
	}
	return e.Last
}
