package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError is the unified library error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// OperatorFailed creates a new AppError for an operator that could not process a value.
func OperatorFailed(operator string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeOperatorFailed, Message: fmt.Sprintf("The %s operator failed.", operator),
		Retryable: false, Cause: cause,
		Details: map[string]any{"operator": operator},
	}
}

// ProducerPanic creates a new AppError for a recovered panic. The panic value
// becomes the cause when it is an error, and a detail otherwise.
func ProducerPanic(recovered any) *AppError {
	e := &AppError{
		Code: ErrCodeProducerPanic, Message: fmt.Sprintf("Producer panicked: %v", recovered),
		Retryable: false,
		Details:   map[string]any{"panic": fmt.Sprint(recovered)},
	}
	if cause, ok := recovered.(error); ok {
		e.Cause = cause
	}
	return e
}

// Cancelled creates a new AppError for a subscription cancelled by its owner.
func Cancelled() *AppError {
	return &AppError{
		Code: ErrCodeCancelled, Message: "The subscription was cancelled.",
		Retryable: false,
	}
}

// Rejected creates a new AppError for work a scheduler refused to accept.
func Rejected(scheduler string) *AppError {
	return &AppError{
		Code: ErrCodeRejected, Message: fmt.Sprintf("The %s scheduler rejected the task.", scheduler),
		Retryable: true,
		Details:   map[string]any{"scheduler": scheduler},
	}
}

// SchedulerStopped creates a new AppError for an operation on a scheduler that is not running.
func SchedulerStopped(scheduler string) *AppError {
	return &AppError{
		Code: ErrCodeSchedulerStopped, Message: fmt.Sprintf("The %s scheduler is not running.", scheduler),
		Retryable: true,
		Details:   map[string]any{"scheduler": scheduler},
	}
}

// InvalidConfig creates a new AppError for an invalid configuration value.
func InvalidConfig(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidConfig, Message: fmt.Sprintf("Invalid configuration: %s", reason),
		Retryable: false, Details: details,
	}
}

// Internal creates a new AppError for an unexpected internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred.",
		Retryable: false, Cause: cause,
	}
}

// --- Inspection ---

// AsAppError finds the first *AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// CodeOf returns the code of the first *AppError in err's chain, or "" when there is none.
func CodeOf(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ""
}

// Is reports whether err's chain contains an *AppError with the given code.
func Is(err error, code ErrorCode) bool {
	return err != nil && CodeOf(err) == code
}

// IsRetryable reports whether err is an *AppError marked retryable.
func IsRetryable(err error) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Retryable
	}
	return false
}
