// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrFutureTimestamp = errors.New("timestamp cannot be in the future")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrImmutable        = errors.New("record is immutable")

	// Storage errors. The orchestrator must be able to distinguish a failed
	// read/write from a validation failure, so storage problems carry their
	// own kind.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageCorrupt     = errors.New("stored data is corrupt")

	// External service errors
	ErrExternalService = errors.New("external service error")
	ErrTimeout         = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "learner", "session", "insight"
	Op      string // Operation that failed, e.g., "Award", "Append"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Learner domain errors
var (
	ErrLearnerNotFound      = NewDomainError("learner", "Find", ErrNotFound, "learner profile not found")
	ErrLearnerAlreadyExists = NewDomainError("learner", "Create", ErrAlreadyExists, "learner profile already exists")
	ErrInvalidLearnerID     = NewDomainError("learner", "Validate", ErrInvalidID, "invalid learner ID")
)

// Session domain errors
var (
	ErrSessionNotFound   = NewDomainError("session", "Find", ErrNotFound, "study session not found")
	ErrInvalidDuration   = NewDomainError("session", "Validate", ErrValueOutOfRange, "duration must be positive")
	ErrInvalidQuizScore  = NewDomainError("session", "Validate", ErrValueOutOfRange, "quiz score must be between 0 and 100")
	ErrSessionInFuture   = NewDomainError("session", "Validate", ErrFutureTimestamp, "session cannot start in the future")
	ErrSessionImmutable  = NewDomainError("session", "Update", ErrImmutable, "study sessions are append-only")
	ErrInvalidSessionLog = NewDomainError("session", "Load", ErrStorageCorrupt, "session log entry is corrupt")
)

// Catalog domain errors
var (
	ErrTopicNotFound   = NewDomainError("catalog", "Find", ErrNotFound, "topic not found in catalog")
	ErrUnknownCategory = NewDomainError("catalog", "Find", ErrNotFound, "unknown topic category")
)

// Notification domain errors
var (
	ErrNotificationFailed = NewDomainError("notification", "Notify", ErrExternalService, "failed to deliver notification")
	ErrInvalidSink        = NewDomainError("notification", "Validate", ErrInvalidInput, "notification sink is not configured")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrFutureTimestamp)
}

// IsStorage checks if the error came from the persistence layer.
func IsStorage(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrStorageCorrupt)
}

// IsRetryable checks if the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStorageUnavailable) || errors.Is(err, ErrTimeout)
}
