// Package errors provides the structured error type used across rxkit.
//
// Every failure the library itself originates (a recovered panic, a rejected
// task, a cancelled subscription, an invalid configuration) is an *AppError
// carrying a machine-readable ErrorCode. Errors returned by user functions
// are never wrapped; they travel down a pipeline unchanged.
package errors
