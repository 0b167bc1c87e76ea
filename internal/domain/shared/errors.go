// Package shared contains common domain types, errors and events used across
// all domain packages of the progression engine. This package has zero
// external dependencies.
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
	ErrInvalidEntity = errors.New("invalid entity")

	// Validation errors
	ErrValidation    = errors.New("validation error")
	ErrInvalidID     = errors.New("invalid ID")
	ErrInvalidInput  = errors.New("invalid input")
	ErrNegativeValue = errors.New("value cannot be negative")

	// State errors
	ErrInvalidState     = errors.New("invalid state")
	ErrAlreadyProcessed = errors.New("already processed")
	ErrNotEligible      = errors.New("conditions not met")

	// Concurrency errors
	ErrConcurrentModification = errors.New("concurrent modification detected")

	// External service errors
	ErrExternalService    = errors.New("external service error")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "progression", "achievement", "challenge"
	Op      string // Operation that failed, e.g., "ApplyDelta", "Claim"
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

// Progression domain errors
var (
	ErrUserNotFound  = NewDomainError("progression", "Find", ErrNotFound, "user not found")
	ErrInvalidUserID = NewDomainError("progression", "Validate", ErrInvalidID, "invalid user ID")
)

// Achievement domain errors
var (
	ErrAchievementNotFound        = NewDomainError("achievement", "Find", ErrNotFound, "achievement not found")
	ErrAchievementAlreadyUnlocked = NewDomainError("achievement", "Unlock", ErrAlreadyExists, "achievement already unlocked")
	ErrUnknownConditionType       = NewDomainError("achievement", "Evaluate", ErrInvalidEntity, "unknown condition type")
)

// Challenge domain errors
var (
	ErrChallengeNotFound     = NewDomainError("challenge", "Find", ErrNotFound, "daily challenge not found")
	ErrAlreadyClaimed        = NewDomainError("challenge", "Claim", ErrAlreadyProcessed, "reward already claimed")
	ErrChallengeNotCompleted = NewDomainError("challenge", "Claim", ErrNotEligible, "challenge not completed")
	ErrUnknownChallengeKind  = NewDomainError("challenge", "Validate", ErrInvalidInput, "unknown challenge kind")
)

// Session activity source errors
var (
	ErrSessionSourceUnavailable = NewDomainError("session", "Read", ErrServiceUnavailable, "session activity source unavailable")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if the error is an "already exists" error.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsRejection checks if the error is an expected user-facing rejection
// (already claimed, conditions not met). Rejections are not logged as errors.
func IsRejection(err error) bool {
	return errors.Is(err, ErrAlreadyProcessed) || errors.Is(err, ErrNotEligible)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNegativeValue)
}
