package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Pipeline errors
const (
	// ErrCodeOperatorFailed indicates an operator function could not complete.
	ErrCodeOperatorFailed ErrorCode = "OPERATOR_FAILED"
	// ErrCodeProducerPanic indicates a producer panicked while running.
	ErrCodeProducerPanic ErrorCode = "PRODUCER_PANIC"
	// ErrCodeCancelled indicates the subscription was cancelled by its owner.
	ErrCodeCancelled ErrorCode = "CANCELLED"
)

// Scheduling errors (retryable)
const (
	// ErrCodeRejected indicates a scheduler refused a unit of work.
	ErrCodeRejected ErrorCode = "REJECTED"
	// ErrCodeSchedulerStopped indicates the scheduler is not running.
	ErrCodeSchedulerStopped ErrorCode = "SCHEDULER_STOPPED"
)

// Configuration errors
const (
	// ErrCodeInvalidConfig indicates a configuration value is invalid.
	ErrCodeInvalidConfig ErrorCode = "INVALID_CONFIG"
)

// Internal errors
const (
	// ErrCodeInternal indicates an unexpected internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeRejected:         true,
	ErrCodeSchedulerStopped: true,
	ErrCodeInternal:         false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
